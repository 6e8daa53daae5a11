package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/td0m/tracker/internal/ui"
	"github.com/td0m/tracker/pkg/task"
)

var listCmd = &cobra.Command{
	Use:       "list [tasks|epics|subtasks|history|prioritized]",
	Short:     "Print a table of entities",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"tasks", "epics", "subtasks", "history", "prioritized"},
	RunE:      runList,
}

func runList(cmd *cobra.Command, args []string) error {
	what := "prioritized"
	if len(args) == 1 {
		what = args[0]
	}
	store, closer, err := openStore(cmd.Context(), logger)
	if err != nil {
		return err
	}
	defer closer()

	var ts []task.Task
	switch what {
	case "tasks":
		ts = store.Tasks()
	case "epics":
		ts = store.Epics()
	case "subtasks":
		ts = store.Subtasks()
	case "history":
		ts = store.History()
	case "prioritized":
		ts = store.Prioritized()
	default:
		return fmt.Errorf("unknown list %q", what)
	}
	return printTable(cmd.OutOrStdout(), ts)
}

func printTable(out io.Writer, ts []task.Task) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tTITLE\tSTART\tDURATION\tEPIC")
	for _, t := range ts {
		start, dur, epic := "-", "-", "-"
		if t.StartTime != nil {
			start = t.StartTime.Format("2006-01-02 15:04")
		}
		if t.Duration != nil {
			dur = t.Duration.Round(time.Minute).String()
		}
		if t.Kind == task.KindSubtask {
			epic = fmt.Sprint(t.EpicID)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Kind, ui.StatusLabel(t.Status), t.Title, start, dur, epic)
	}
	return w.Flush()
}
