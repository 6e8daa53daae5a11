package task

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func at(hour, min int) time.Time {
	return time.Date(2025, time.June, 5, hour, min, 0, 0, time.UTC)
}

func TestTask_Equal(t *testing.T) {
	is := is.New(t)

	a := New("a", "first")
	a.ID = 1
	b := NewEpic("b", "second")
	b.ID = 1
	c := New("a", "first")
	c.ID = 2

	is.True(a.Equal(b))  // same id, different fields
	is.True(!a.Equal(c)) // same fields, different id
}

func TestTask_EndTime(t *testing.T) {
	is := is.New(t)

	is.Equal(New("a", "").EndTime(), nil)

	task := New("a", "").Scheduled(at(10, 0), time.Hour)
	is.Equal(*task.EndTime(), at(11, 0))

	noDuration := New("a", "")
	start := at(10, 0)
	noDuration.StartTime = &start
	is.Equal(noDuration.EndTime(), nil)
}

func TestParse(t *testing.T) {
	is := is.New(t)

	k, err := ParseKind("subtask")
	is.NoErr(err)
	is.Equal(k, KindSubtask)
	_, err = ParseKind("story")
	is.True(err != nil)

	s, err := ParseStatus("IN_PROGRESS")
	is.NoErr(err)
	is.Equal(s, StatusInProgress)
	_, err = ParseStatus("blocked")
	is.True(err != nil)

	is.Equal(StatusNew.Next(), StatusInProgress)
	is.Equal(StatusDone.Next(), StatusNew)
	is.Equal(KindEpic.String(), "EPIC")
}

func TestTask_cloneDoesNotAlias(t *testing.T) {
	is := is.New(t)

	e := NewEpic("e", "")
	e.SubtaskIDs = []ID{1, 2}
	e = e.Scheduled(at(9, 0), time.Minute)

	c := e.clone()
	c.SubtaskIDs[0] = 99
	*c.StartTime = at(12, 0)

	is.Equal(e.SubtaskIDs[0], ID(1))
	is.Equal(*e.StartTime, at(9, 0))
}
