package persist

import (
	"fmt"
	"time"

	"github.com/td0m/tracker/pkg/task"
)

// row is the flat shape every backend stores. Durations are whole minutes and
// start times are local wall-clock minutes, so all backends round-trip the same
// instants.
type row struct {
	ID          task.ID     `json:"id"`
	Kind        task.Kind   `json:"kind"`
	Title       string      `json:"title"`
	Status      task.Status `json:"status"`
	Description string      `json:"description,omitempty"`
	Minutes     *int64      `json:"minutes,omitempty"`
	Start       *time.Time  `json:"start,omitempty"`
	Epic        task.ID     `json:"epic,omitempty"`
}

func newRow(t task.Task) row {
	r := row{
		ID:          t.ID,
		Kind:        t.Kind,
		Title:       t.Title,
		Status:      t.Status,
		Description: t.Description,
	}
	if t.Duration != nil {
		m := int64(*t.Duration / time.Minute)
		r.Minutes = &m
	}
	if t.StartTime != nil {
		s := t.StartTime.In(time.Local).Truncate(time.Minute)
		r.Start = &s
	}
	if t.Kind == task.KindSubtask {
		r.Epic = t.EpicID
	}
	return r
}

func (r row) task() task.Task {
	t := task.Task{
		ID:          r.ID,
		Kind:        r.Kind,
		Title:       r.Title,
		Status:      r.Status,
		Description: r.Description,
		EpicID:      r.Epic,
	}
	if r.Minutes != nil {
		d := time.Duration(*r.Minutes) * time.Minute
		t.Duration = &d
	}
	if r.Start != nil {
		s := *r.Start
		t.StartTime = &s
	}
	return t
}

// savable is a snapshot flattened into rows: tasks, then epics, then subtasks,
// followed by the history ids in view order.
type savable struct {
	Rows    []row     `json:"rows"`
	History []task.ID `json:"history"`
}

func newSavable(snap task.Snapshot) savable {
	s := savable{
		Rows:    make([]row, 0, len(snap.Tasks)+len(snap.Epics)+len(snap.Subtasks)),
		History: snap.History,
	}
	for _, group := range [][]task.Task{snap.Tasks, snap.Epics, snap.Subtasks} {
		for _, t := range group {
			s.Rows = append(s.Rows, newRow(t))
		}
	}
	return s
}

// Snapshot sorts rows back into their kinds. Rows order is kept within a kind.
func (s savable) Snapshot() (task.Snapshot, error) {
	var snap task.Snapshot
	for _, r := range s.Rows {
		switch r.Kind {
		case task.KindTask:
			snap.Tasks = append(snap.Tasks, r.task())
		case task.KindEpic:
			snap.Epics = append(snap.Epics, r.task())
		case task.KindSubtask:
			snap.Subtasks = append(snap.Subtasks, r.task())
		default:
			return task.Snapshot{}, fmt.Errorf("row %d: unknown kind %d: %w", r.ID, r.Kind, ErrMalformedRow)
		}
	}
	snap.History = s.History
	return snap, nil
}

// wallClock reinterprets t's wall clock in the local zone. Databases hand
// timestamps back in UTC even when they were written as local time.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.Local)
}
