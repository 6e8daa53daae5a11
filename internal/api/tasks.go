package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/td0m/tracker/pkg/task"
)

func (s *Server) handleList(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, toJSON(res.list()))
	}
}

func (s *Server) handleGet(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		t, err := res.get(id)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newTaskJSON(t))
	}
}

func (s *Server) handleCreate(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := decodeTask(r, res.kind)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		created, err := res.create(t)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newTaskJSON(created))
	}
}

// handleUpdate replaces the entity at the path id; an id in the body is ignored.
func (s *Server) handleUpdate(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		t, err := decodeTask(r, res.kind)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		t.ID = id
		updated, err := res.update(t)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newTaskJSON(updated))
	}
}

func (s *Server) handleDelete(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := res.delete(id); err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": fmt.Sprintf("%s deleted", res.kind), "id": id})
	}
}

func (s *Server) handleClear(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := res.clear(); err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": fmt.Sprintf("%s cleared", res.kind)})
	}
}

func (s *Server) handleEpicSubtasks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	subs, err := s.m.EpicSubtasks(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toJSON(subs))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toJSON(s.m.History()))
}

func (s *Server) handlePrioritized(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toJSON(s.m.Prioritized()))
}

func decodeTask(r *http.Request, kind task.Kind) (task.Task, error) {
	var in taskJSON
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return task.Task{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return in.task(kind)
}
