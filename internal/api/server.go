package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/td0m/tracker/pkg/task"
)

// Server is the HTTP API over a task.Manager. Every call into the manager
// holds one lock, the manager itself does no locking.
type Server struct {
	mu  sync.Mutex
	m   task.Manager
	log *slog.Logger
	mux *http.ServeMux
}

// New creates a new Server.
func New(m task.Manager, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		m:   m,
		log: log,
		mux: http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", id)

	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	start := time.Now()
	s.mux.ServeHTTP(sw, r)
	s.log.Info("request",
		"id", id,
		"method", r.Method,
		"path", r.URL.Path,
		"status", sw.status,
		"took", time.Since(start),
	)
}

// resource is one of the three entity collections.
type resource struct {
	kind   task.Kind
	list   func() []task.Task
	get    func(task.ID) (task.Task, error)
	create func(task.Task) (task.Task, error)
	update func(task.Task) (task.Task, error)
	delete func(task.ID) error
	clear  func() error
}

func (s *Server) routes() {
	resources := map[string]resource{
		"/tasks": {
			kind: task.KindTask, list: s.m.Tasks, get: s.m.GetTask,
			create: s.m.CreateTask, update: s.m.UpdateTask,
			delete: s.m.DeleteTask, clear: s.m.ClearTasks,
		},
		"/epics": {
			kind: task.KindEpic, list: s.m.Epics, get: s.m.GetEpic,
			create: s.m.CreateEpic, update: s.m.UpdateEpic,
			delete: s.m.DeleteEpic, clear: s.m.ClearEpics,
		},
		"/subtasks": {
			kind: task.KindSubtask, list: s.m.Subtasks, get: s.m.GetSubtask,
			create: s.m.CreateSubtask, update: s.m.UpdateSubtask,
			delete: s.m.DeleteSubtask, clear: s.m.ClearSubtasks,
		},
	}
	for path, res := range resources {
		s.mux.HandleFunc("GET "+path, s.locked(s.handleList(res)))
		s.mux.HandleFunc("POST "+path, s.locked(s.handleCreate(res)))
		s.mux.HandleFunc("DELETE "+path, s.locked(s.handleClear(res)))
		s.mux.HandleFunc("GET "+path+"/{id}", s.locked(s.handleGet(res)))
		s.mux.HandleFunc("POST "+path+"/{id}", s.locked(s.handleUpdate(res)))
		s.mux.HandleFunc("DELETE "+path+"/{id}", s.locked(s.handleDelete(res)))
	}
	s.mux.HandleFunc("GET /epics/{id}/subtasks", s.locked(s.handleEpicSubtasks))
	s.mux.HandleFunc("GET /history", s.locked(s.handleHistory))
	s.mux.HandleFunc("GET /prioritized", s.locked(s.handlePrioritized))

	s.mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func (s *Server) locked(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		h(w, r)
	}
}

// fail writes err with the status its kind maps to.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, task.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, task.ErrConflict):
		code = http.StatusNotAcceptable
	}
	if code == http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeError(w, code, err.Error())
}

func pathID(r *http.Request) (task.ID, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id " + strconv.Quote(r.PathValue("id")))
	}
	return task.ID(id), nil
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json;charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write json", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
