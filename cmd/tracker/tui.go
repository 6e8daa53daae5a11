package main

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/td0m/tracker/internal/ui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal UI",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	// the alt screen owns the terminal, logs would garble it
	quiet := slog.New(slog.DiscardHandler)
	store, closer, err := openStore(cmd.Context(), quiet)
	if err != nil {
		return err
	}
	defer closer()

	p := tea.NewProgram(ui.NewApp(store, nil))

	// enable full terminal mode
	p.EnterAltScreen()
	defer p.ExitAltScreen()

	if err := p.Start(); err != nil {
		return err
	}
	// views are only saved with the next mutation otherwise
	return store.Flush()
}
