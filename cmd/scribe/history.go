// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/scribe/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect previous processing runs",
	Long: `History reads the SQLite run ledger written during processing. The bare
command lists recent runs; subcommands show a run's per-file outcomes or
export the ledger as YAML.`,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show per-file outcomes of one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recent runs as YAML",
	RunE:  runHistoryExport,
}

func init() {
	historyCmd.PersistentFlags().String("db", "", "history database path (default from configuration)")
	historyCmd.Flags().Int("limit", 20, "number of runs to list")
	historyExportCmd.Flags().Int("limit", 20, "number of runs to export")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

func openLedger(cmd *cobra.Command) (*history.Store, error) {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = viper.GetString("history_path")
	}
	if path == "" {
		path = "scribe-history.db"
	}
	return history.Open(path)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	ledger, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer ledger.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := ledger.RecentRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, r := range runs {
		status := "running"
		if !r.FinishedAt.IsZero() {
			status = "finished " + r.FinishedAt.Local().Format(time.RFC3339)
		}
		fmt.Printf("run %d  %s  %d file(s)  started %s  %s\n",
			r.ID, r.Model, r.Total, r.StartedAt.Local().Format(time.RFC3339), status)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	runID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run id %q", args[0])
	}

	ledger, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer ledger.Close()

	records, err := ledger.RunOutcomes(runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("run %d has no recorded files", runID)
	}
	for _, rec := range records {
		if rec.Success {
			fmt.Printf("ok      %s -> %s\n", rec.SourcePath, rec.NotePath)
		} else {
			fmt.Printf("failed  %s: %s\n", rec.SourcePath, rec.Err)
		}
	}
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	ledger, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer ledger.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	return ledger.Export(os.Stdout, limit)
}
