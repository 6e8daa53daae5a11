package task

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestRestore_RoundTrip(t *testing.T) {
	is := is.New(t)
	s := NewStore()

	late, _ := s.CreateTask(New("late", "").Scheduled(at(15, 0), time.Hour))
	e, _ := s.CreateEpic(NewEpic("epic", "with, commas"))
	early, _ := s.CreateSubtask(NewSubtask(e.ID, "early", "").Scheduled(at(9, 0), time.Hour))
	done := NewSubtask(e.ID, "done", "")
	done.Status = StatusDone
	done, _ = s.CreateSubtask(done)
	_, _ = s.GetEpic(e.ID)
	_, _ = s.GetTask(late.ID)

	restored, skipped := Restore(s.Snapshot())
	is.Equal(len(skipped), 0)

	is.Equal(ids(restored.Tasks()), ids(s.Tasks()))
	is.Equal(ids(restored.Subtasks()), ids(s.Subtasks()))
	is.Equal(ids(restored.Prioritized()), []ID{early.ID, late.ID})
	is.Equal(ids(restored.History()), []ID{e.ID, late.ID})

	got, err := restored.GetEpic(e.ID)
	is.NoErr(err)
	is.Equal(got.Status, StatusInProgress)
	is.Equal(got.SubtaskIDs, []ID{early.ID, done.ID})
	is.Equal(*got.StartTime, at(9, 0))

	// ids continue after the highest restored one
	next, err := restored.CreateTask(New("next", ""))
	is.NoErr(err)
	is.Equal(next.ID, done.ID+1)

	// restored intervals still conflict
	_, err = restored.CreateTask(New("clash", "").Scheduled(at(9, 30), time.Minute))
	is.True(errors.Is(err, ErrConflict))
}

func TestRestore_Skips(t *testing.T) {
	is := is.New(t)

	snap := Snapshot{
		Tasks: []Task{
			{ID: 1, Title: "ok"},
			{ID: 1, Title: "duplicate"},
			{Title: "no id"},
		},
		Epics: []Task{
			// derived fields and a status from the file are ignored
			{ID: 2, Title: "epic", Status: StatusDone, SubtaskIDs: []ID{99}},
		},
		Subtasks: []Task{
			{ID: 4, Title: "orphan", EpicID: 30},
			{ID: 3, Title: "sub", EpicID: 2},
			{ID: 5, Title: "self", EpicID: 5},
		},
		History: []ID{3, 42, 1},
	}

	s, skipped := Restore(snap)
	is.Equal(len(skipped), 5) // duplicate, no id, orphan, self, history 42

	is.Equal(ids(s.Tasks()), []ID{1})
	is.Equal(s.Tasks()[0].Title, "ok")
	is.Equal(ids(s.Subtasks()), []ID{3})
	is.Equal(ids(s.History()), []ID{3, 1})

	e, err := s.GetEpic(2)
	is.NoErr(err)
	is.Equal(e.SubtaskIDs, []ID{3})
	is.Equal(e.Status, StatusNew)

	var notFound int
	for _, err := range skipped {
		if errors.Is(err, ErrNotFound) {
			notFound++
		}
	}
	is.Equal(notFound, 2)

	// the counter skips past ids that were rejected
	next, _ := s.CreateTask(New("next", ""))
	is.Equal(next.ID, ID(4))
}

func TestRestore_IDRange(t *testing.T) {
	is := is.New(t)

	snap := Snapshot{
		Tasks: []Task{
			{ID: 7, Title: "ok"},
			{ID: MaxID, Title: "at limit"},
			{ID: math.MaxInt, Title: "huge"},
		},
		Epics: []Task{{ID: 3, Title: "epic"}},
		Subtasks: []Task{
			{ID: math.MinInt + 1, Title: "negative", EpicID: 3},
			{ID: 5, Title: "b", EpicID: 3},
			{ID: 4, Title: "a", EpicID: 3},
		},
	}

	s, skipped := Restore(snap)
	is.Equal(len(skipped), 3) // at limit, huge, negative
	for _, err := range skipped {
		is.True(errors.Is(err, ErrInvalidArgument))
	}
	is.Equal(ids(s.Tasks()), []ID{7})

	e, err := s.GetEpic(3)
	is.NoErr(err)
	is.Equal(e.SubtaskIDs, []ID{4, 5})

	next, err := s.CreateTask(New("next", ""))
	is.NoErr(err)
	is.Equal(next.ID, ID(8))
}

func TestRestore_OverlapsWithSlotGrid(t *testing.T) {
	is := is.New(t)
	snap := Snapshot{Tasks: []Task{
		scheduled(1, at(10, 0), time.Hour),
		scheduled(2, at(10, 30), time.Hour),
	}}

	s, skipped := Restore(snap, WithSlotGrid())
	is.Equal(len(skipped), 0)
	is.NoErr(s.DeleteTask(1))

	_, err := s.CreateTask(New("clash", "").Scheduled(at(10, 45), 15*time.Minute))
	is.True(errors.Is(err, ErrConflict))
}
