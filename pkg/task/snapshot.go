package task

import (
	"cmp"
	"fmt"
	"slices"
)

// Snapshot is the complete state of a Store: every entity plus the view history.
// Epics carry their derived fields; Restore ignores them.
type Snapshot struct {
	Tasks    []Task
	Epics    []Task
	Subtasks []Task
	History  []ID
}

func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Tasks:    s.Tasks(),
		Epics:    s.Epics(),
		Subtasks: s.Subtasks(),
		History:  s.history.List(),
	}
}

// Restore rebuilds a Store from snap. Tasks and epics are placed first so that
// subtasks can be attached to their epics, then every scheduled entity is
// indexed and the history replayed in order. Entries that cannot be placed are
// skipped and reported; they never abort the restore. The id counter continues
// from the highest id seen.
func Restore(snap Snapshot, opts ...Option) (*Store, []error) {
	s := NewStore(opts...)
	var skipped []error

	place := func(t Task, kind Kind, into map[ID]Task) bool {
		if t.ID <= 0 {
			skipped = append(skipped, fmt.Errorf("%s %q has no id: %w", kind, t.Title, ErrInvalidArgument))
			return false
		}
		if t.ID >= MaxID {
			skipped = append(skipped, fmt.Errorf("%s %d: id out of range: %w", kind, t.ID, ErrInvalidArgument))
			return false
		}
		if _, taken := s.lookup(t.ID); taken {
			skipped = append(skipped, fmt.Errorf("%s %d: duplicate id: %w", kind, t.ID, ErrInvalidArgument))
			return false
		}
		t = t.clone()
		t.Kind, t.end = kind, nil
		if kind != KindSubtask {
			t.EpicID = 0
		}
		// rebuilt from subtask rows
		t.SubtaskIDs = nil
		if kind == KindEpic {
			t.Duration, t.StartTime = nil, nil
		}
		into[t.ID] = t
		s.lastID = max(s.lastID, t.ID)
		return true
	}

	for _, t := range snap.Tasks {
		place(t, KindTask, s.tasks)
	}
	for _, e := range snap.Epics {
		place(e, KindEpic, s.epics)
	}
	subtasks := slices.Clone(snap.Subtasks)
	slices.SortStableFunc(subtasks, func(a, b Task) int { return cmp.Compare(a.ID, b.ID) })
	for _, st := range subtasks {
		if st.EpicID == st.ID {
			skipped = append(skipped, fmt.Errorf("subtask %d cannot be its own epic: %w", st.ID, ErrInvalidArgument))
			continue
		}
		epic, ok := s.epics[st.EpicID]
		if !ok {
			skipped = append(skipped, fmt.Errorf("subtask %d: %w", st.ID, notFound(KindEpic, st.EpicID)))
			continue
		}
		if !place(st, KindSubtask, s.subtasks) {
			continue
		}
		epic.SubtaskIDs = append(epic.SubtaskIDs, st.ID)
		s.epics[epic.ID] = epic
	}
	for id := range s.epics {
		s.refreshEpic(id)
	}

	for _, t := range s.tasks {
		s.index(t)
	}
	for _, st := range s.subtasks {
		s.index(st)
	}

	for _, id := range snap.History {
		if _, ok := s.lookup(id); !ok {
			skipped = append(skipped, fmt.Errorf("history entry %d: %w", id, ErrNotFound))
			continue
		}
		s.history.Record(id)
	}

	for _, err := range skipped {
		s.log.Warn("skipped while restoring", "err", err)
	}
	return s, skipped
}
