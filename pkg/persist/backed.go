package persist

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/td0m/tracker/pkg/task"
)

// Backed is a Store that saves itself through a Persistor after every
// successful mutation. A failed save is reported with task.ErrPersistence but
// the in-memory change it followed is kept. Reads never save.
type Backed struct {
	store *task.Store
	p     Persistor
}

var _ task.Manager = &Backed{}

func NewBacked(s *task.Store, p Persistor) *Backed {
	return &Backed{store: s, p: p}
}

// Open loads p into a new Backed store. A backing file that does not exist
// yet is an empty store.
func Open(p Persistor, opts ...task.Option) (*Backed, error) {
	snap, err := p.Load()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return NewBacked(task.NewStore(opts...), p), nil
	case err != nil:
		return nil, fmt.Errorf("%w: %w", task.ErrPersistence, err)
	}
	s, _ := task.Restore(snap, opts...)
	return NewBacked(s, p), nil
}

// Flush saves the current state.
func (b *Backed) Flush() error {
	if err := b.p.Save(b.store.Snapshot()); err != nil {
		return fmt.Errorf("%w: %w", task.ErrPersistence, err)
	}
	return nil
}

func (b *Backed) CreateTask(t task.Task) (task.Task, error) {
	t, err := b.store.CreateTask(t)
	if err != nil {
		return task.Task{}, err
	}
	return t, b.Flush()
}

func (b *Backed) GetTask(id task.ID) (task.Task, error) {
	return b.store.GetTask(id)
}

func (b *Backed) UpdateTask(t task.Task) (task.Task, error) {
	t, err := b.store.UpdateTask(t)
	if err != nil {
		return task.Task{}, err
	}
	return t, b.Flush()
}

func (b *Backed) DeleteTask(id task.ID) error {
	if err := b.store.DeleteTask(id); err != nil {
		return err
	}
	return b.Flush()
}

func (b *Backed) ClearTasks() error {
	if err := b.store.ClearTasks(); err != nil {
		return err
	}
	return b.Flush()
}

func (b *Backed) Tasks() []task.Task {
	return b.store.Tasks()
}

func (b *Backed) CreateEpic(e task.Task) (task.Task, error) {
	e, err := b.store.CreateEpic(e)
	if err != nil {
		return task.Task{}, err
	}
	return e, b.Flush()
}

func (b *Backed) GetEpic(id task.ID) (task.Task, error) {
	return b.store.GetEpic(id)
}

func (b *Backed) UpdateEpic(e task.Task) (task.Task, error) {
	e, err := b.store.UpdateEpic(e)
	if err != nil {
		return task.Task{}, err
	}
	return e, b.Flush()
}

func (b *Backed) DeleteEpic(id task.ID) error {
	if err := b.store.DeleteEpic(id); err != nil {
		return err
	}
	return b.Flush()
}

func (b *Backed) ClearEpics() error {
	if err := b.store.ClearEpics(); err != nil {
		return err
	}
	return b.Flush()
}

func (b *Backed) Epics() []task.Task {
	return b.store.Epics()
}

func (b *Backed) EpicSubtasks(id task.ID) ([]task.Task, error) {
	return b.store.EpicSubtasks(id)
}

func (b *Backed) CreateSubtask(st task.Task) (task.Task, error) {
	st, err := b.store.CreateSubtask(st)
	if err != nil {
		return task.Task{}, err
	}
	return st, b.Flush()
}

func (b *Backed) GetSubtask(id task.ID) (task.Task, error) {
	return b.store.GetSubtask(id)
}

func (b *Backed) UpdateSubtask(st task.Task) (task.Task, error) {
	st, err := b.store.UpdateSubtask(st)
	if err != nil {
		return task.Task{}, err
	}
	return st, b.Flush()
}

func (b *Backed) DeleteSubtask(id task.ID) error {
	if err := b.store.DeleteSubtask(id); err != nil {
		return err
	}
	return b.Flush()
}

func (b *Backed) ClearSubtasks() error {
	if err := b.store.ClearSubtasks(); err != nil {
		return err
	}
	return b.Flush()
}

func (b *Backed) Subtasks() []task.Task {
	return b.store.Subtasks()
}

func (b *Backed) History() []task.Task {
	return b.store.History()
}

func (b *Backed) Prioritized() []task.Task {
	return b.store.Prioritized()
}
