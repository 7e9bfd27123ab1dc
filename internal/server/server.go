// Package server exposes a task store over HTTP so that other taskboard
// processes can use it through the remote backend. Writes are JSON
// requests; snapshots are pushed over a WebSocket, one frame per change.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/AGLOP-1354/taskboard/internal/api"
	"github.com/AGLOP-1354/taskboard/internal/errors"
	"github.com/AGLOP-1354/taskboard/internal/logging"
	"github.com/AGLOP-1354/taskboard/internal/store"
	"github.com/AGLOP-1354/taskboard/internal/task"
)

const (
	// writeTimeout bounds a single snapshot frame write.
	writeTimeout = 10 * time.Second
	// maxBodyBytes bounds request bodies.
	maxBodyBytes = 1 << 20
)

// Server serves one store.
type Server struct {
	store      store.Store
	logger     *logging.Logger
	now        func() time.Time
	httpServer *http.Server
	router     chi.Router
	snapshots  singleflight.Group

	mu       sync.Mutex
	watchers map[*websocket.Conn]struct{}
	closing  chan struct{}
	closed   bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used to validate due dates.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a server for st listening on addr.
func New(st store.Store, addr string, opts ...Option) *Server {
	s := &Server{
		store:    st,
		logger:   logging.NopLogger(),
		now:      time.Now,
		watchers: make(map[*websocket.Conn]struct{}),
		closing:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("server").WithBackend(st.Backend())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get(api.HealthPath, s.handleHealth)
	r.Route(api.TasksPath, func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Get(strings.TrimPrefix(api.WatchPath, api.TasksPath), s.handleWatch)
		r.Post("/", s.handleCreate)
		r.Patch("/{id}", s.handleUpdate)
		r.Delete("/{id}", s.handleDelete)
	})
	s.router = r

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe listens on the configured address and blocks until the
// server is shut down.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. It returns nil after Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("taskboard server listening", "addr", ln.Addr().String())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown closes every watch stream with StatusGoingAway and then stops
// the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.closing)
	}
	for conn := range s.watchers {
		_ = conn.Close(websocket.StatusGoingAway, "server shutdown")
		delete(s.watchers, conn)
	}
	s.mu.Unlock()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// snapshot fetches the current collection. Concurrent callers share one
// subscription round trip.
func (s *Server) snapshot(ctx context.Context) ([]task.Task, error) {
	v, err, _ := s.snapshots.Do("snapshot", func() (any, error) {
		return store.Fetch(ctx, s.store)
	})
	if err != nil {
		return nil, err
	}
	return v.([]task.Task), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message, field string) {
	writeJSON(w, status, api.ErrorResponse{Error: message, Code: code, Field: field})
}

// writeStoreError maps a store failure to a response.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	var verr *errors.ValidationError
	switch {
	case errors.IsNotFound(err):
		writeError(w, http.StatusNotFound, api.CodeNotFound, err.Error(), "")
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, api.CodeInvalid, verr.Message(), verr.Field)
	default:
		s.logger.Error("store operation failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, api.CodeInternal, err.Error(), "")
	}
}
