package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path"
	"time"

	"github.com/td0m/tracker/pkg/persist"
	"github.com/td0m/tracker/pkg/task"
)

var (
	years  = flag.Int("years", 10, "Years of tasks to generate")
	perDay = flag.Int("per-day", 30, "Tasks per day")
)

func main() {
	flag.Parse()
	total := 365 * *perDay * *years
	p := persist.InCSV(path.Join(os.TempDir(), "tasks.csv"))

	store := task.NewStore()
	start := time.Now().Truncate(24 * time.Hour)
	slot := 24 * time.Hour / time.Duration(*perDay)
	var epic task.Task
	buildTime := measureTime(func() {
		for i := 0; i < total; i++ {
			at := start.Add(time.Duration(i) * slot)
			switch {
			case i%10 == 0:
				var err error
				epic, err = store.CreateEpic(task.NewEpic(randomString(10), randomString(40)))
				check(err)
				fallthrough
			case i%10 < 4:
				_, err := store.CreateSubtask(task.NewSubtask(epic.ID, randomString(10), randomString(40)).Scheduled(at, slot/2))
				check(err)
			default:
				_, err := store.CreateTask(task.New(randomString(10), randomString(40)).Scheduled(at, slot/2))
				check(err)
			}
		}
	})

	snap := store.Snapshot()
	writeTime := measureTime(func() {
		check(p.Save(snap))
	})

	var loaded task.Snapshot
	readTime := measureTime(func() {
		var err error
		loaded, err = p.Load()
		check(err)
	})

	var skipped []error
	restoreTime := measureTime(func() {
		_, skipped = task.Restore(loaded)
	})

	info, err := os.Stat(p.File())
	check(err)
	fmt.Printf("Tasks: %d years, %d per day (%d total)\n", *years, *perDay, total)
	fmt.Printf("Epics: %d, subtasks: %d, tasks: %d\n", len(snap.Epics), len(snap.Subtasks), len(snap.Tasks))
	fmt.Printf("File size: %dMB\n", info.Size()/1024/1024)
	fmt.Printf("Build time: %dms\n", buildTime.Milliseconds())
	fmt.Printf("Write time: %dms\n", writeTime.Milliseconds())
	fmt.Printf("Read time: %dms\n", readTime.Milliseconds())
	fmt.Printf("Restore time: %dms (%d skipped)\n", restoreTime.Milliseconds(), len(skipped))
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func measureTime(fn func()) time.Duration {
	start := time.Now()
	fn()
	return time.Since(start)
}

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 ,&"

func randomString(l int) string {
	b := make([]byte, l)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
