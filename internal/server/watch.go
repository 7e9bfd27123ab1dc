package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"

	"github.com/AGLOP-1354/taskboard/internal/api"
	"github.com/AGLOP-1354/taskboard/internal/task"
)

// handleWatch streams the full collection to a WebSocket client: once on
// connect and again after every change. A client that falls behind only
// receives the newest snapshot.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.logger.Warn("watch accept failed", "error", err.Error())
		return
	}
	if !s.addWatcher(conn) {
		_ = conn.Close(websocket.StatusGoingAway, "server shutdown")
		return
	}
	defer s.removeWatcher(conn)

	// The client never sends data; CloseRead handles its close frame.
	ctx := conn.CloseRead(r.Context())

	latest := make(chan []task.Task, 1)
	unsubscribe, err := s.store.Subscribe(func(tasks []task.Task) {
		select {
		case <-latest:
		default:
		}
		latest <- tasks
	})
	if err != nil {
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer unsubscribe()

	s.logger.Debug("watch client connected", "remote", r.RemoteAddr)
	var seq uint64
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("watch client disconnected", "remote", r.RemoteAddr)
			return
		case <-s.closing:
			return
		case tasks := <-latest:
			seq++
			data, err := json.Marshal(api.SnapshotFrame{Seq: seq, Tasks: tasks})
			if err != nil {
				s.logger.Error("marshal snapshot frame", "error", err.Error())
				continue
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err = conn.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				s.logger.Debug("watch write failed", "error", err.Error())
				return
			}
		}
	}
}

func (s *Server) addWatcher(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.watchers[conn] = struct{}{}
	return true
}

func (s *Server) removeWatcher(conn *websocket.Conn) {
	s.mu.Lock()
	_, tracked := s.watchers[conn]
	delete(s.watchers, conn)
	s.mu.Unlock()
	if tracked {
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}
}
