package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/matryer/is"
	"github.com/td0m/tracker/pkg/task"
)

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestServer_Tasks(t *testing.T) {
	is := is.New(t)
	s := New(task.NewStore(), nil)

	w := do(t, s, "POST", "/tasks", `{"title":"write","description":"docs","duration":60,"startTime":"2025-06-05T10:00:00"}`)
	is.Equal(w.Code, http.StatusCreated)
	created := decode[taskJSON](t, w)
	is.Equal(created.ID, task.ID(1))
	is.Equal(created.Type, "TASK")
	is.Equal(created.Status, "NEW")
	is.Equal(*created.EndTime, "2025-06-05T11:00:00")

	w = do(t, s, "POST", "/tasks", `{"title":"clash","duration":30,"startTime":"2025-06-05T10:30:00"}`)
	is.Equal(w.Code, http.StatusNotAcceptable)

	w = do(t, s, "POST", "/tasks/1", `{"title":"write more","status":"IN_PROGRESS","duration":60,"startTime":"2025-06-05T10:00"}`)
	is.Equal(w.Code, http.StatusOK)
	is.Equal(decode[taskJSON](t, w).Status, "IN_PROGRESS")

	w = do(t, s, "GET", "/tasks/1", "")
	is.Equal(w.Code, http.StatusOK)
	is.Equal(decode[taskJSON](t, w).Title, "write more")

	w = do(t, s, "GET", "/tasks", "")
	is.Equal(w.Code, http.StatusOK)
	is.Equal(len(decode[[]taskJSON](t, w)), 1)

	w = do(t, s, "DELETE", "/tasks/1", "")
	is.Equal(w.Code, http.StatusOK)

	w = do(t, s, "GET", "/tasks/1", "")
	is.Equal(w.Code, http.StatusNotFound)
	is.True(decode[map[string]string](t, w)["error"] != "")
}

func TestServer_BadRequests(t *testing.T) {
	s := New(task.NewStore(), nil)
	tests := []struct {
		method, path, body string
		want               int
	}{
		{"GET", "/tasks/abc", "", http.StatusBadRequest},
		{"GET", "/tasks/0", "", http.StatusBadRequest},
		{"POST", "/tasks", `{"title":`, http.StatusBadRequest},
		{"POST", "/tasks", `{"title":"x","status":"LATER"}`, http.StatusBadRequest},
		{"POST", "/tasks", `{"title":"x","startTime":"tomorrow"}`, http.StatusBadRequest},
		{"POST", "/tasks", `{"title":"x","colour":"red"}`, http.StatusBadRequest},
		{"POST", "/tasks", `{"title":"x","duration":-5}`, http.StatusInternalServerError},
		{"POST", "/subtasks", `{"title":"orphan","epicId":9}`, http.StatusNotFound},
		{"GET", "/epics/9/subtasks", "", http.StatusNotFound},
		{"PUT", "/tasks", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path+" "+tt.body, func(t *testing.T) {
			is := is.New(t)
			w := do(t, s, tt.method, tt.path, tt.body)
			is.Equal(w.Code, tt.want)
		})
	}
}

func TestServer_EpicsAndSubtasks(t *testing.T) {
	is := is.New(t)
	s := New(task.NewStore(), nil)

	w := do(t, s, "POST", "/epics", `{"title":"release"}`)
	is.Equal(w.Code, http.StatusCreated)
	epic := decode[taskJSON](t, w)
	is.Equal(len(epic.SubtaskIDs), 0)
	is.Equal(epic.Duration, nil)

	w = do(t, s, "POST", "/subtasks", `{"title":"tag","epicId":1,"status":"DONE","duration":30,"startTime":"2025-06-05T09:00:00"}`)
	is.Equal(w.Code, http.StatusCreated)
	w = do(t, s, "POST", "/subtasks", `{"title":"announce","epicId":1}`)
	is.Equal(w.Code, http.StatusCreated)

	w = do(t, s, "GET", "/epics/1", "")
	is.Equal(w.Code, http.StatusOK)
	epic = decode[taskJSON](t, w)
	is.Equal(epic.Status, "IN_PROGRESS")
	is.Equal(epic.SubtaskIDs, []task.ID{2, 3})
	is.Equal(*epic.Duration, int64(30))
	is.Equal(*epic.StartTime, "2025-06-05T09:00:00")

	w = do(t, s, "GET", "/epics/1/subtasks", "")
	is.Equal(len(decode[[]taskJSON](t, w)), 2)

	w = do(t, s, "POST", "/subtasks/2", `{"title":"tag","epicId":2}`)
	is.Equal(w.Code, http.StatusInternalServerError) // own id as epic

	w = do(t, s, "DELETE", "/epics", "")
	is.Equal(w.Code, http.StatusOK)
	w = do(t, s, "GET", "/subtasks", "")
	is.Equal(len(decode[[]taskJSON](t, w)), 0)
}

func TestServer_HistoryAndPrioritized(t *testing.T) {
	is := is.New(t)
	s := New(task.NewStore(), nil)

	do(t, s, "POST", "/tasks", `{"title":"late","duration":60,"startTime":"2025-06-05T15:00:00"}`)
	do(t, s, "POST", "/tasks", `{"title":"early","duration":60,"startTime":"2025-06-05T08:00:00"}`)
	do(t, s, "POST", "/tasks", `{"title":"unscheduled"}`)
	do(t, s, "GET", "/tasks/1", "")
	do(t, s, "GET", "/tasks/3", "")
	do(t, s, "GET", "/tasks/1", "")

	w := do(t, s, "GET", "/history", "")
	is.Equal(w.Code, http.StatusOK)
	hist := decode[[]taskJSON](t, w)
	is.Equal(len(hist), 2)
	is.Equal(hist[0].ID, task.ID(3))
	is.Equal(hist[1].ID, task.ID(1))

	w = do(t, s, "GET", "/prioritized", "")
	prio := decode[[]taskJSON](t, w)
	is.Equal(len(prio), 2)
	is.Equal(prio[0].Title, "early")
	is.Equal(prio[1].Title, "late")
}

func TestServer_RequestID(t *testing.T) {
	is := is.New(t)
	s := New(task.NewStore(), nil)

	w := do(t, s, "GET", "/health", "")
	is.Equal(w.Code, http.StatusOK)
	is.True(w.Header().Get("X-Request-ID") != "")

	r := httptest.NewRequest("GET", "/tasks", nil)
	r.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, r)
	is.Equal(rec.Header().Get("X-Request-ID"), "abc")
}

func TestServer_Concurrent(t *testing.T) {
	is := is.New(t)
	s := New(task.NewStore(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			s.ServeHTTP(w, httptest.NewRequest("POST", "/tasks", strings.NewReader(`{"title":"x"}`)))
		}()
	}
	wg.Wait()

	w := do(t, s, "GET", "/tasks", "")
	is.Equal(len(decode[[]taskJSON](t, w)), 50)
}
