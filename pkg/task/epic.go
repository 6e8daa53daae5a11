package task

import "time"

// epicStatus derives an epic's status from its subtasks:
// no subtasks or all NEW is NEW, all DONE is DONE, anything else is IN_PROGRESS.
func epicStatus(statuses []Status) Status {
	if len(statuses) == 0 {
		return StatusNew
	}
	allDone, allNew := true, true
	for _, s := range statuses {
		if s != StatusDone {
			allDone = false
		}
		if s != StatusNew {
			allNew = false
		}
	}
	switch {
	case allDone:
		return StatusDone
	case allNew:
		return StatusNew
	default:
		return StatusInProgress
	}
}

// refreshEpic recomputes and stores the status of epic id.
func (s *Store) refreshEpic(id ID) {
	e, ok := s.epics[id]
	if !ok {
		return
	}
	statuses := make([]Status, 0, len(e.SubtaskIDs))
	for _, sid := range e.SubtaskIDs {
		if st, ok := s.subtasks[sid]; ok {
			statuses = append(statuses, st.Status)
		}
	}
	e.Status = epicStatus(statuses)
	s.epics[id] = e
}

// derive returns a copy of e with duration and window computed from its subtasks.
// Duration is the sum of defined subtask durations, start the earliest defined
// start, end the latest defined end. Each stays nil when no subtask defines it.
func (s *Store) derive(e Task) Task {
	e = e.clone()
	e.Duration, e.StartTime, e.end = nil, nil, nil

	var (
		total    time.Duration
		hasTotal bool
	)
	for _, sid := range e.SubtaskIDs {
		st, ok := s.subtasks[sid]
		if !ok {
			continue
		}
		if st.Duration != nil {
			total += *st.Duration
			hasTotal = true
		}
		if st.StartTime != nil && (e.StartTime == nil || st.StartTime.Before(*e.StartTime)) {
			start := *st.StartTime
			e.StartTime = &start
		}
		if end := st.EndTime(); end != nil && (e.end == nil || end.After(*e.end)) {
			e.end = end
		}
	}
	if hasTotal {
		e.Duration = &total
	}
	return e
}
