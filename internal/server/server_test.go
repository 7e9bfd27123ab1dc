package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AGLOP-1354/taskboard/internal/api"
	"github.com/AGLOP-1354/taskboard/internal/store"
	"github.com/AGLOP-1354/taskboard/internal/task"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	mem *store.Memory
	srv *Server
	ts  *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemory("todos")
	srv := New(mem, "127.0.0.1:0", WithClock(func() time.Time { return now }))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		ts.Close()
		_ = mem.Close()
	})
	return &fixture{mem: mem, srv: srv, ts: ts}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, f.ts.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := f.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodGet, api.HealthPath, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	h := decode[api.HealthResponse](t, resp)
	if h.Status != "ok" || h.Backend != store.BackendMemory || h.Tasks != 0 {
		t.Errorf("health = %+v", h)
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name      string
		body      any
		status    int
		wantField string
	}{
		{"valid", task.NewTaskData{Title: "ship it", Priority: task.PriorityHigh}, http.StatusCreated, ""},
		{"blank title", task.NewTaskData{Title: "  "}, http.StatusBadRequest, "title"},
		{"long title", task.NewTaskData{Title: strings.Repeat("x", 101)}, http.StatusBadRequest, "title"},
		{"past due date", task.NewTaskData{Title: "x", DueDate: ptr(now.Add(-time.Millisecond))}, http.StatusBadRequest, "dueDate"},
		{"unknown field", map[string]any{"title": "x", "owner": "me"}, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, http.MethodPost, api.TasksPath, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.status == http.StatusCreated {
				if got := decode[api.CreateResponse](t, resp); got.ID == "" {
					t.Error("empty id")
				}
				return
			}
			got := decode[api.ErrorResponse](t, resp)
			if got.Field != tt.wantField {
				t.Errorf("field = %q, want %q", got.Field, tt.wantField)
			}
		})
	}
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	high, _ := f.mem.Create(ctx, task.NewTaskData{Title: "Fix login", Priority: task.PriorityHigh})
	_, _ = f.mem.Create(ctx, task.NewTaskData{Title: "Tidy docs", Priority: task.PriorityLow})
	done, _ := f.mem.Create(ctx, task.NewTaskData{Title: "Fix logout", Priority: task.PriorityHigh})
	_ = f.mem.Update(ctx, done, task.MoveTo(task.StatusCompleted))

	tests := []struct {
		query string
		want  []string
	}{
		{"?status=todo&priority=high", []string{high}},
		{"?status=done", []string{done}},
		{"?title=fix*&sort=createdAt&order=asc", []string{high, done}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := f.do(t, http.MethodGet, api.TasksPath+tt.query, nil)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			got := decode[api.ListResponse](t, resp).Tasks
			if len(got) != len(tt.want) {
				t.Fatalf("got %d tasks, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i].ID != tt.want[i] {
					t.Errorf("tasks[%d] = %s, want %s", i, got[i].ID, tt.want[i])
				}
			}
		})
	}

	resp := f.do(t, http.MethodGet, api.TasksPath+"?sort=title", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad sort key status = %d", resp.StatusCode)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	id, _ := f.mem.Create(context.Background(), task.NewTaskData{Title: "x"})

	resp := f.do(t, http.MethodPatch, api.TaskPath(id), task.MoveTo(task.StatusInProgress))
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("PATCH status = %d", resp.StatusCode)
	}

	resp = f.do(t, http.MethodPatch, api.TaskPath("missing"), task.MoveTo(task.StatusCompleted))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("PATCH missing status = %d", resp.StatusCode)
	}
	if got := decode[api.ErrorResponse](t, resp); got.Code != api.CodeNotFound {
		t.Errorf("code = %q", got.Code)
	}

	resp = f.do(t, http.MethodPatch, api.TaskPath(id), map[string]string{"status": "someday"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("PATCH bad status = %d", resp.StatusCode)
	}

	invalid := []struct {
		name  string
		patch task.Patch
		field string
	}{
		{"empty title", task.Patch{Title: ptr("  ")}, "title"},
		{"long title", task.Patch{Title: ptr(strings.Repeat("a", 101))}, "title"},
		{"long description", task.Patch{Description: ptr(strings.Repeat("d", 501))}, "description"},
		{"past due date", task.Patch{DueDate: ptr(now.Add(-48 * time.Hour))}, "dueDate"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, http.MethodPatch, api.TaskPath(id), tt.patch)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("PATCH status = %d, want 400", resp.StatusCode)
			}
			got := decode[api.ErrorResponse](t, resp)
			if got.Code != api.CodeInvalid || got.Field != tt.field {
				t.Errorf("error = %+v, want code %q field %q", got, api.CodeInvalid, tt.field)
			}
		})
	}

	resp = f.do(t, http.MethodPatch, api.TaskPath(id), task.Patch{
		Title:        ptr(strings.Repeat("a", 100)),
		DueDate:      ptr(now.Add(-time.Hour)),
		ClearDueDate: true,
	})
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("PATCH boundary title with cleared due date status = %d", resp.StatusCode)
	}
	tasks, err := store.Fetch(context.Background(), f.mem)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(tasks) != 1 || len([]rune(tasks[0].Title)) != 100 || tasks[0].DueDate != nil {
		t.Errorf("stored task = %+v, want the 100-char title and no due date", tasks)
	}

	resp = f.do(t, http.MethodDelete, api.TaskPath(id), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE status = %d", resp.StatusCode)
	}
	resp = f.do(t, http.MethodDelete, api.TaskPath(id), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second DELETE status = %d", resp.StatusCode)
	}
}

func ptr[T any](v T) *T { return &v }
