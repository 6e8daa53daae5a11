package api

import (
	"fmt"
	"time"

	"github.com/td0m/tracker/pkg/task"
)

const timeLayout = "2006-01-02T15:04:05"

// taskJSON is the wire form of every kind. Times are local without a zone,
// durations whole minutes.
type taskJSON struct {
	ID          task.ID   `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Duration    *int64    `json:"duration"`
	StartTime   *string   `json:"startTime"`
	EndTime     *string   `json:"endTime"`
	EpicID      task.ID   `json:"epicId,omitempty"`
	SubtaskIDs  []task.ID `json:"subtaskIds,omitempty"`
}

func newTaskJSON(t task.Task) taskJSON {
	out := taskJSON{
		ID:          t.ID,
		Type:        t.Kind.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status.String(),
		EpicID:      t.EpicID,
		SubtaskIDs:  t.SubtaskIDs,
	}
	if t.Duration != nil {
		m := int64(*t.Duration / time.Minute)
		out.Duration = &m
	}
	if t.StartTime != nil {
		s := t.StartTime.Format(timeLayout)
		out.StartTime = &s
	}
	if end := t.EndTime(); end != nil {
		s := end.Format(timeLayout)
		out.EndTime = &s
	}
	return out
}

func toJSON(ts []task.Task) []taskJSON {
	out := make([]taskJSON, len(ts))
	for i, t := range ts {
		out[i] = newTaskJSON(t)
	}
	return out
}

// task converts the body of a create or update. Fields the store derives
// (type, end time, subtask ids) are ignored.
func (j taskJSON) task(kind task.Kind) (task.Task, error) {
	t := task.Task{
		ID:          j.ID,
		Kind:        kind,
		Title:       j.Title,
		Description: j.Description,
		EpicID:      j.EpicID,
	}
	if j.Status != "" {
		s, err := task.ParseStatus(j.Status)
		if err != nil {
			return task.Task{}, err
		}
		t.Status = s
	}
	if j.Duration != nil {
		d := time.Duration(*j.Duration) * time.Minute
		t.Duration = &d
	}
	if j.StartTime != nil {
		start, err := parseTime(*j.StartTime)
		if err != nil {
			return task.Task{}, err
		}
		t.StartTime = &start
	}
	return t, nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{timeLayout, "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("startTime %q: want %s", s, timeLayout)
}
