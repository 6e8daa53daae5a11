package task

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// ID identifies a task, epic or subtask. Zero means the store has not assigned one yet.
type ID int

// MaxID bounds ids read back from storage; it is the largest value every
// backend column can hold. Restore rejects stored ids at or above it.
const MaxID ID = math.MaxInt32

type Kind int

const (
	KindTask Kind = iota
	KindEpic
	KindSubtask
)

var kindNames = [...]string{"TASK", "EPIC", "SUBTASK"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown kind %q", s)
}

type Status int

const (
	StatusNew Status = iota
	StatusInProgress
	StatusDone
)

var statusNames = [...]string{"NEW", "IN_PROGRESS", "DONE"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

func ParseStatus(s string) (Status, error) {
	for i, name := range statusNames {
		if strings.EqualFold(s, name) {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", s)
}

// Next cycles NEW -> IN_PROGRESS -> DONE -> NEW.
func (s Status) Next() Status {
	return (s + 1) % Status(len(statusNames))
}

// Task is the shared shape of all three kinds.
// Duration and StartTime of an epic are derived by the store from its subtasks,
// values set by callers are ignored.
type Task struct {
	ID          ID
	Kind        Kind
	Title       string
	Description string
	Status      Status
	Duration    *time.Duration
	StartTime   *time.Time

	// subtasks only
	EpicID ID
	// epics only, in attachment order
	SubtaskIDs []ID

	// derived end of an epic window
	end *time.Time
}

func New(title, description string) Task {
	return Task{Kind: KindTask, Title: title, Description: description}
}

func NewEpic(title, description string) Task {
	return Task{Kind: KindEpic, Title: title, Description: description}
}

func NewSubtask(epic ID, title, description string) Task {
	return Task{Kind: KindSubtask, Title: title, Description: description, EpicID: epic}
}

// Scheduled returns a copy of t with the given interval.
func (t Task) Scheduled(start time.Time, d time.Duration) Task {
	t.StartTime = &start
	t.Duration = &d
	return t
}

// Equal reports whether t and o are the same entity. Only ids are compared.
func (t Task) Equal(o Task) bool {
	return t.ID == o.ID
}

// EndTime is StartTime+Duration, or the derived window end for epics.
func (t Task) EndTime() *time.Time {
	if t.Kind == KindEpic {
		return t.end
	}
	if t.StartTime == nil || t.Duration == nil {
		return nil
	}
	end := t.StartTime.Add(*t.Duration)
	return &end
}

// interval reports whether t takes part in overlap checks.
func (t Task) interval() (start, end time.Time, ok bool) {
	if t.StartTime == nil || t.Duration == nil {
		return time.Time{}, time.Time{}, false
	}
	return *t.StartTime, t.StartTime.Add(*t.Duration), true
}

func (t Task) validate() error {
	if t.Duration != nil && *t.Duration < 0 {
		return fmt.Errorf("negative duration %s: %w", *t.Duration, ErrInvalidArgument)
	}
	return nil
}

// clone copies t so callers never share pointers or slices with the store.
func (t Task) clone() Task {
	if t.Duration != nil {
		d := *t.Duration
		t.Duration = &d
	}
	if t.StartTime != nil {
		s := *t.StartTime
		t.StartTime = &s
	}
	if t.end != nil {
		e := *t.end
		t.end = &e
	}
	t.SubtaskIDs = slices.Clone(t.SubtaskIDs)
	return t
}

func (t Task) String() string {
	return fmt.Sprintf("%s{id=%d, title=%q, status=%s}", t.Kind, t.ID, t.Title, t.Status)
}
