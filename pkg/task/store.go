package task

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
)

// Manager is the full set of operations on tasks, epics and subtasks.
// Reads return copies; nothing handed out aliases the store's state.
type Manager interface {
	CreateTask(Task) (Task, error)
	GetTask(ID) (Task, error)
	UpdateTask(Task) (Task, error)
	DeleteTask(ID) error
	ClearTasks() error
	Tasks() []Task

	CreateEpic(Task) (Task, error)
	GetEpic(ID) (Task, error)
	UpdateEpic(Task) (Task, error)
	DeleteEpic(ID) error
	ClearEpics() error
	Epics() []Task
	EpicSubtasks(ID) ([]Task, error)

	CreateSubtask(Task) (Task, error)
	GetSubtask(ID) (Task, error)
	UpdateSubtask(Task) (Task, error)
	DeleteSubtask(ID) error
	ClearSubtasks() error
	Subtasks() []Task

	History() []Task
	Prioritized() []Task
}

var _ Manager = &Store{}

// conflictIndex finds a scheduled entity whose interval intersects t.
type conflictIndex interface {
	Insert(Task)
	Remove(ID)
	Overlapping(Task) (ID, bool)
}

// Store owns every entity. Epics hold subtask ids, never subtasks, and their
// derived fields are computed from the subtask map on every read.
// A Store is not safe for concurrent use.
type Store struct {
	tasks    map[ID]Task
	epics    map[ID]Task
	subtasks map[ID]Task
	lastID   ID

	history  *History
	timeline *Timeline
	grid     *SlotGrid

	log *slog.Logger
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSlotGrid checks conflicts on a 15 minute slot grid instead of exact intervals.
func WithSlotGrid() Option {
	return func(s *Store) {
		s.grid = NewSlotGrid(SlotSize)
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		tasks:    map[ID]Task{},
		epics:    map[ID]Task{},
		subtasks: map[ID]Task{},
		history:  NewHistory(),
		timeline: NewTimeline(),
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) generateID() ID {
	s.lastID++
	return s.lastID
}

func (s *Store) conflicts() conflictIndex {
	if s.grid != nil {
		return s.grid
	}
	return s.timeline
}

func (s *Store) checkConflict(t Task) error {
	if other, ok := s.conflicts().Overlapping(t); ok {
		return fmt.Errorf("%s %q overlaps %d: %w", t.Kind, t.Title, other, ErrConflict)
	}
	return nil
}

func (s *Store) index(t Task) {
	s.timeline.Insert(t)
	if s.grid != nil {
		s.grid.Insert(t)
	}
}

// drop removes id from every secondary structure.
func (s *Store) drop(id ID) {
	s.timeline.Remove(id)
	if s.grid != nil {
		s.grid.Remove(id)
	}
	s.history.Forget(id)
}

// dropAll removes every id in m from the secondary structures in one pass
// over the timeline.
func (s *Store) dropAll(m map[ID]Task) {
	s.timeline.RemoveIf(func(id ID) bool {
		_, ok := m[id]
		return ok
	})
	for id := range m {
		if s.grid != nil {
			s.grid.Remove(id)
		}
		s.history.Forget(id)
	}
}

func (s *Store) lookup(id ID) (Task, bool) {
	if t, ok := s.tasks[id]; ok {
		return t, true
	}
	if e, ok := s.epics[id]; ok {
		return s.derive(e), true
	}
	if st, ok := s.subtasks[id]; ok {
		return st, true
	}
	return Task{}, false
}

func (s *Store) resolve(ids []ID) []Task {
	out := make([]Task, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.lookup(id); ok {
			out = append(out, t.clone())
		}
	}
	return out
}

func (s *Store) sorted(m map[ID]Task) []Task {
	return s.resolve(slices.Sorted(maps.Keys(m)))
}

func (s *Store) CreateTask(t Task) (Task, error) {
	if err := t.validate(); err != nil {
		return Task{}, err
	}
	t = t.clone()
	t.ID, t.Kind, t.EpicID, t.SubtaskIDs, t.end = 0, KindTask, 0, nil, nil
	if err := s.checkConflict(t); err != nil {
		return Task{}, err
	}
	t.ID = s.generateID()
	s.tasks[t.ID] = t
	s.index(t)
	s.log.Debug("task created", "id", t.ID, "title", t.Title)
	return t.clone(), nil
}

func (s *Store) GetTask(id ID) (Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return Task{}, notFound(KindTask, id)
	}
	s.history.Record(id)
	return t.clone(), nil
}

func (s *Store) UpdateTask(t Task) (Task, error) {
	if err := t.validate(); err != nil {
		return Task{}, err
	}
	if _, ok := s.tasks[t.ID]; !ok {
		return Task{}, notFound(KindTask, t.ID)
	}
	t = t.clone()
	t.Kind, t.EpicID, t.SubtaskIDs, t.end = KindTask, 0, nil, nil
	if err := s.checkConflict(t); err != nil {
		return Task{}, err
	}
	s.tasks[t.ID] = t
	s.index(t)
	s.log.Debug("task updated", "id", t.ID)
	return t.clone(), nil
}

func (s *Store) DeleteTask(id ID) error {
	if _, ok := s.tasks[id]; !ok {
		return notFound(KindTask, id)
	}
	delete(s.tasks, id)
	s.drop(id)
	s.log.Debug("task deleted", "id", id)
	return nil
}

func (s *Store) ClearTasks() error {
	s.dropAll(s.tasks)
	s.tasks = map[ID]Task{}
	return nil
}

func (s *Store) Tasks() []Task {
	return s.sorted(s.tasks)
}

func (s *Store) CreateEpic(e Task) (Task, error) {
	e = e.clone()
	e.ID, e.Kind, e.EpicID, e.SubtaskIDs = 0, KindEpic, 0, nil
	e.Duration, e.StartTime, e.end = nil, nil, nil
	e.Status = StatusNew
	e.ID = s.generateID()
	s.epics[e.ID] = e
	s.log.Debug("epic created", "id", e.ID, "title", e.Title)
	return s.derive(e), nil
}

func (s *Store) GetEpic(id ID) (Task, error) {
	e, ok := s.epics[id]
	if !ok {
		return Task{}, notFound(KindEpic, id)
	}
	s.history.Record(id)
	return s.derive(e), nil
}

// UpdateEpic keeps the stored subtask list; status is always re-derived.
func (s *Store) UpdateEpic(e Task) (Task, error) {
	old, ok := s.epics[e.ID]
	if !ok {
		return Task{}, notFound(KindEpic, e.ID)
	}
	old.Title = e.Title
	old.Description = e.Description
	s.epics[e.ID] = old
	s.refreshEpic(e.ID)
	s.log.Debug("epic updated", "id", e.ID)
	return s.derive(s.epics[e.ID]), nil
}

func (s *Store) DeleteEpic(id ID) error {
	e, ok := s.epics[id]
	if !ok {
		return notFound(KindEpic, id)
	}
	for _, sid := range e.SubtaskIDs {
		delete(s.subtasks, sid)
		s.drop(sid)
	}
	delete(s.epics, id)
	s.drop(id)
	s.log.Debug("epic deleted", "id", id, "subtasks", len(e.SubtaskIDs))
	return nil
}

// ClearEpics removes every epic and, with them, every subtask.
func (s *Store) ClearEpics() error {
	s.clearSubtasks()
	s.dropAll(s.epics)
	s.epics = map[ID]Task{}
	return nil
}

func (s *Store) Epics() []Task {
	return s.sorted(s.epics)
}

func (s *Store) EpicSubtasks(id ID) ([]Task, error) {
	e, ok := s.epics[id]
	if !ok {
		return nil, notFound(KindEpic, id)
	}
	return s.resolve(e.SubtaskIDs), nil
}

func (s *Store) CreateSubtask(st Task) (Task, error) {
	if err := st.validate(); err != nil {
		return Task{}, err
	}
	if st.ID != 0 && st.EpicID == st.ID {
		return Task{}, fmt.Errorf("subtask %d cannot be its own epic: %w", st.ID, ErrInvalidArgument)
	}
	epic, ok := s.epics[st.EpicID]
	if !ok {
		return Task{}, notFound(KindEpic, st.EpicID)
	}
	st = st.clone()
	st.ID, st.Kind, st.SubtaskIDs, st.end = 0, KindSubtask, nil, nil
	if err := s.checkConflict(st); err != nil {
		return Task{}, err
	}
	st.ID = s.generateID()
	s.subtasks[st.ID] = st
	epic.SubtaskIDs = append(epic.SubtaskIDs, st.ID)
	s.epics[epic.ID] = epic
	s.refreshEpic(epic.ID)
	s.index(st)
	s.log.Debug("subtask created", "id", st.ID, "epic", st.EpicID)
	return st.clone(), nil
}

func (s *Store) GetSubtask(id ID) (Task, error) {
	st, ok := s.subtasks[id]
	if !ok {
		return Task{}, notFound(KindSubtask, id)
	}
	s.history.Record(id)
	return st.clone(), nil
}

// UpdateSubtask replaces a subtask. A zero EpicID keeps the current owner;
// the owner itself cannot change.
func (s *Store) UpdateSubtask(st Task) (Task, error) {
	if err := st.validate(); err != nil {
		return Task{}, err
	}
	old, ok := s.subtasks[st.ID]
	if !ok {
		return Task{}, notFound(KindSubtask, st.ID)
	}
	switch st.EpicID {
	case st.ID:
		return Task{}, fmt.Errorf("subtask %d cannot be its own epic: %w", st.ID, ErrInvalidArgument)
	case 0, old.EpicID:
	default:
		return Task{}, fmt.Errorf("subtask %d belongs to epic %d, not %d: %w", st.ID, old.EpicID, st.EpicID, ErrInvalidArgument)
	}
	st = st.clone()
	st.Kind, st.EpicID, st.SubtaskIDs, st.end = KindSubtask, old.EpicID, nil, nil
	if err := s.checkConflict(st); err != nil {
		return Task{}, err
	}
	s.subtasks[st.ID] = st
	s.index(st)
	s.refreshEpic(st.EpicID)
	s.log.Debug("subtask updated", "id", st.ID)
	return st.clone(), nil
}

func (s *Store) DeleteSubtask(id ID) error {
	st, ok := s.subtasks[id]
	if !ok {
		return notFound(KindSubtask, id)
	}
	delete(s.subtasks, id)
	s.drop(id)
	if e, ok := s.epics[st.EpicID]; ok {
		e.SubtaskIDs = slices.DeleteFunc(slices.Clone(e.SubtaskIDs), func(sid ID) bool { return sid == id })
		s.epics[e.ID] = e
		s.refreshEpic(e.ID)
	}
	s.log.Debug("subtask deleted", "id", id, "epic", st.EpicID)
	return nil
}

func (s *Store) ClearSubtasks() error {
	s.clearSubtasks()
	return nil
}

func (s *Store) clearSubtasks() {
	s.dropAll(s.subtasks)
	s.subtasks = map[ID]Task{}
	for id, e := range s.epics {
		e.SubtaskIDs = nil
		s.epics[id] = e
		s.refreshEpic(id)
	}
}

func (s *Store) Subtasks() []Task {
	return s.sorted(s.subtasks)
}

// History returns viewed entities from oldest to newest.
func (s *Store) History() []Task {
	return s.resolve(s.history.List())
}

// Prioritized returns every task and subtask with a start time, earliest first.
func (s *Store) Prioritized() []Task {
	return s.resolve(s.timeline.List())
}
