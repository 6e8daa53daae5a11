package persist

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/td0m/tracker/pkg/task"
)

type failing struct {
	saves int
}

func (f *failing) Save(task.Snapshot) error {
	f.saves++
	return errors.New("disk full")
}

func (f *failing) Load() (task.Snapshot, error) {
	return task.Snapshot{}, nil
}

func TestBacked_Reopen(t *testing.T) {
	is := is.New(t)
	file := filepath.Join(t.TempDir(), "tasks.csv")

	b, err := Open(InCSV(file))
	is.NoErr(err)
	is.Equal(len(b.Tasks()), 0)

	tk, err := b.CreateTask(task.New("a", "").Scheduled(at(10, 0), time.Hour))
	is.NoErr(err)
	e, err := b.CreateEpic(task.NewEpic("e", ""))
	is.NoErr(err)
	st, err := b.CreateSubtask(task.NewSubtask(e.ID, "s", "").Scheduled(at(8, 0), time.Hour))
	is.NoErr(err)
	_, _ = b.GetTask(tk.ID)
	_, _ = b.GetEpic(e.ID)
	is.NoErr(b.Flush())

	again, err := Open(InCSV(file))
	is.NoErr(err)
	is.Equal(len(again.Tasks()), 1)
	is.Equal(len(again.Subtasks()), 1)
	subs, err := again.EpicSubtasks(e.ID)
	is.NoErr(err)
	is.Equal(subs[0].ID, st.ID)

	prio := again.Prioritized()
	is.Equal(len(prio), 2)
	is.Equal(prio[0].ID, st.ID)
	is.Equal(prio[1].ID, tk.ID)

	hist := again.History()
	is.Equal(len(hist), 2)
	is.Equal(hist[0].ID, tk.ID)
	is.Equal(hist[1].ID, e.ID)

	// ids continue after the loaded ones
	next, err := again.CreateTask(task.New("b", ""))
	is.NoErr(err)
	is.Equal(next.ID, st.ID+1)

	// conflicts survive a reload
	_, err = again.CreateTask(task.New("clash", "").Scheduled(at(10, 30), time.Minute))
	is.True(errors.Is(err, task.ErrConflict))
}

func TestBacked_SavesMutations(t *testing.T) {
	is := is.New(t)
	file := filepath.Join(t.TempDir(), "tasks.csv")
	b, err := Open(InCSV(file))
	is.NoErr(err)

	tk, err := b.CreateTask(task.New("a", ""))
	is.NoErr(err)
	tk.Title = "renamed"
	_, err = b.UpdateTask(tk)
	is.NoErr(err)

	snap, err := InCSV(file).Load()
	is.NoErr(err)
	is.Equal(snap.Tasks[0].Title, "renamed")

	is.NoErr(b.ClearTasks())
	snap, err = InCSV(file).Load()
	is.NoErr(err)
	is.Equal(len(snap.Tasks), 0)
}

func TestBacked_SaveFailureKeepsChange(t *testing.T) {
	is := is.New(t)
	p := &failing{}
	b, err := Open(p)
	is.NoErr(err)

	created, err := b.CreateTask(task.New("a", ""))
	is.True(errors.Is(err, task.ErrPersistence))
	is.Equal(created.ID, task.ID(1))
	is.Equal(len(b.Tasks()), 1)
	is.Equal(p.saves, 1)

	// rejected operations never reach the persistor
	_, err = b.GetTask(99)
	is.True(errors.Is(err, task.ErrNotFound))
	err = b.DeleteEpic(99)
	is.True(errors.Is(err, task.ErrNotFound))
	is.Equal(p.saves, 1)

	// reads do not save
	_ = b.Tasks()
	_, _ = b.GetTask(created.ID)
	is.Equal(p.saves, 1)
}
