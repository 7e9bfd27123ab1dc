package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AGLOP-1354/taskboard/internal/api"
	"github.com/AGLOP-1354/taskboard/internal/form"
	"github.com/AGLOP-1354/taskboard/internal/task"
	"github.com/AGLOP-1354/taskboard/internal/view"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.snapshot(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, api.HealthResponse{Status: "unavailable", Backend: s.store.Backend()})
		return
	}
	writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok", Backend: s.store.Backend(), Tasks: len(tasks)})
}

// handleList returns the collection, optionally filtered and sorted with
// the status, priority, sort and order query parameters.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := view.ParseFilter(q.Get("status"), q.Get("priority"), q.Get("sort"), q.Get("order"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	tasks, err := s.snapshot(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	tasks = view.Derive(tasks, f)
	if title := q.Get("title"); title != "" {
		if tasks, err = view.MatchTitle(tasks, title); err != nil {
			s.writeStoreError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, api.ListResponse{Tasks: tasks})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var data task.NewTaskData
	if !decodeBody(w, r, &data) {
		return
	}

	errs := form.Validate(form.Input{
		Title:       data.Title,
		Description: data.Description,
		Priority:    data.Priority,
		DueDate:     data.DueDate,
	}, s.now())
	if errs.Any() {
		field := errs.Fields()[0]
		writeError(w, http.StatusBadRequest, api.CodeInvalid, errs.Message(field), field)
		return
	}

	id, err := s.store.Create(r.Context(), data)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.CreateResponse{ID: id})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch task.Patch
	if !decodeBody(w, r, &patch) {
		return
	}
	if errs := validatePatch(patch, s.now()); errs.Any() {
		field := errs.Fields()[0]
		writeError(w, http.StatusBadRequest, api.CodeInvalid, errs.Message(field), field)
		return
	}
	if err := s.store.Update(r.Context(), chi.URLParam(r, "id"), patch); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// validatePatch applies the form rules to the fields a patch supplies.
func validatePatch(patch task.Patch, now time.Time) form.Errors {
	var in form.Input
	var fields []string
	if patch.Title != nil {
		in.Title = *patch.Title
		fields = append(fields, form.FieldTitle)
	}
	if patch.Description != nil {
		in.Description = *patch.Description
		fields = append(fields, form.FieldDescription)
	}
	if patch.DueDate != nil && !patch.ClearDueDate {
		in.DueDate = patch.DueDate
		fields = append(fields, form.FieldDueDate)
	}
	errs := form.Errors{}
	for _, field := range fields {
		if verr := form.ValidateField(field, in, now); verr != nil {
			errs[field] = verr
		}
	}
	return errs
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, api.CodeBadRequest, "invalid request body: "+err.Error(), "")
		return false
	}
	return true
}
