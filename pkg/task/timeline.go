package task

import (
	"sort"
	"time"
)

type slot struct {
	id       ID
	start    time.Time
	duration *time.Duration
}

func (s slot) before(o slot) bool {
	if s.start.Equal(o.start) {
		return s.id < o.id
	}
	return s.start.Before(o.start)
}

func (s slot) end() (time.Time, bool) {
	if s.duration == nil {
		return time.Time{}, false
	}
	return s.start.Add(*s.duration), true
}

// Timeline orders every entity that has a start time by ascending start.
// Equal starts are ordered by id, which is creation order, so a reloaded
// store lists them exactly as the saved one did.
type Timeline struct {
	slots []slot
	start map[ID]time.Time
	// longest is the largest duration ever inserted. It bounds how far back
	// Overlapping has to look.
	longest time.Duration
}

func NewTimeline() *Timeline {
	return &Timeline{start: map[ID]time.Time{}}
}

// Insert adds t, replacing any previous entry with the same id.
// Tasks without a start time are ignored.
func (tl *Timeline) Insert(t Task) {
	tl.Remove(t.ID)
	if t.StartTime == nil {
		return
	}
	s := slot{id: t.ID, start: *t.StartTime}
	if t.Duration != nil {
		d := *t.Duration
		s.duration = &d
		tl.longest = max(tl.longest, d)
	}
	i := sort.Search(len(tl.slots), func(i int) bool {
		return s.before(tl.slots[i])
	})
	tl.slots = append(tl.slots, slot{})
	copy(tl.slots[i+1:], tl.slots[i:])
	tl.slots[i] = s
	tl.start[t.ID] = s.start
}

func (tl *Timeline) Remove(id ID) {
	start, ok := tl.start[id]
	if !ok {
		return
	}
	delete(tl.start, id)
	key := slot{id: id, start: start}
	i := sort.Search(len(tl.slots), func(i int) bool {
		return !tl.slots[i].before(key)
	})
	if i < len(tl.slots) && tl.slots[i].id == id {
		tl.slots = append(tl.slots[:i], tl.slots[i+1:]...)
	}
}

// RemoveIf drops every entry whose id matches.
func (tl *Timeline) RemoveIf(match func(ID) bool) {
	kept := tl.slots[:0]
	for _, s := range tl.slots {
		if match(s.id) {
			delete(tl.start, s.id)
			continue
		}
		kept = append(kept, s)
	}
	tl.slots = kept
}

func (tl *Timeline) Len() int {
	return len(tl.slots)
}

// List returns ids in ascending start order.
func (tl *Timeline) List() []ID {
	out := make([]ID, len(tl.slots))
	for i, s := range tl.slots {
		out[i] = s.id
	}
	return out
}

// Overlapping returns a member whose half-open interval intersects t's.
// A member with t's own id is skipped so updates never conflict with themselves.
// Entities missing a start time or duration never overlap anything.
func (tl *Timeline) Overlapping(t Task) (ID, bool) {
	start, end, ok := t.interval()
	if !ok {
		return 0, false
	}
	// members starting at or after end cannot intersect
	i := sort.Search(len(tl.slots), func(i int) bool {
		return !tl.slots[i].start.Before(end)
	})
	for i--; i >= 0; i-- {
		s := tl.slots[i]
		if !s.start.Add(tl.longest).After(start) {
			break
		}
		if t.ID != 0 && s.id == t.ID {
			continue
		}
		sEnd, ok := s.end()
		if !ok {
			continue
		}
		if start.Before(sEnd) && s.start.Before(end) {
			return s.id, true
		}
	}
	return 0, false
}
