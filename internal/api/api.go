// Package api defines the HTTP and WebSocket wire format shared by
// `taskboard serve` and the remote store backend.
package api

import "github.com/AGLOP-1354/taskboard/internal/task"

// Route paths.
const (
	HealthPath = "/api/health"
	TasksPath  = "/api/tasks"
	WatchPath  = "/api/tasks/watch"
)

// TaskPath returns the path of a single task resource.
func TaskPath(id string) string {
	return TasksPath + "/" + id
}

// Error codes carried by ErrorResponse.
const (
	CodeNotFound   = "not_found"
	CodeInvalid    = "invalid"
	CodeBadRequest = "bad_request"
	CodeInternal   = "internal"
)

// CreateResponse is returned by POST /api/tasks.
type CreateResponse struct {
	ID string `json:"id"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// SnapshotFrame is one WebSocket text message on the watch stream. Every
// frame carries the entire collection ordered newest first.
type SnapshotFrame struct {
	Seq   uint64      `json:"seq"`
	Tasks []task.Task `json:"tasks"`
}

// ListResponse is returned by GET /api/tasks.
type ListResponse struct {
	Tasks []task.Task `json:"tasks"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Tasks   int    `json:"tasks"`
}
