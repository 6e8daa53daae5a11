package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/td0m/tracker/internal/config"
	"github.com/td0m/tracker/pkg/persist"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Copy the store to another backend, or print it as CSV",
	Long: `Without --to the store is written to stdout in the CSV file format.
With --to the whole store, history included, replaces the content of the
target, which uses --to-backend (csv by default).`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("to", "", "Target file")
	exportCmd.Flags().String("to-backend", config.BackendCSV, "Target backend: csv, sqlite or json")
}

func runExport(cmd *cobra.Command, args []string) error {
	store, closer, err := openStore(cmd.Context(), logger)
	if err != nil {
		return err
	}
	defer closer()

	to, _ := cmd.Flags().GetString("to")
	if to == "" {
		return persist.Encode(cmd.OutOrStdout(), store.Snapshot())
	}
	backend, _ := cmd.Flags().GetString("to-backend")
	switch backend {
	case config.BackendCSV, config.BackendSQLite, config.BackendJSON:
	default:
		return fmt.Errorf("export to %q: want csv, sqlite or json", backend)
	}
	target := config.Config{File: to, Backend: backend}
	p, closeTarget, err := openPersistor(cmd.Context(), target, logger)
	if err != nil {
		return err
	}
	defer closeTarget()
	if err := p.Save(store.Snapshot()); err != nil {
		return err
	}
	logger.Info("exported", "to", to, "backend", backend)
	return nil
}
