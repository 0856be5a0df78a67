// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/scribe/internal/batch"
	"github.com/mesh-intelligence/scribe/internal/extract"
	"github.com/mesh-intelligence/scribe/internal/history"
	"github.com/mesh-intelligence/scribe/internal/note"
	"github.com/mesh-intelligence/scribe/internal/secrets"
	"github.com/mesh-intelligence/scribe/internal/vault"
	"github.com/mesh-intelligence/scribe/pkg/types"
)

var processCmd = &cobra.Command{
	Use:   "process [files or folders...]",
	Short: "Transcribe handwritten notes into Markdown",
	Long: `Process sends each input document to the vision backend, renders the
transcription through the note template, and writes one Markdown note per
input. Folder arguments are expanded to the supported input types (pdf,
png, jpg, jpeg, webp, gif). Paths are relative to the vault root.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	f := processCmd.Flags()
	f.String("vault", ".", "vault root directory")
	f.String("output", "", "folder for rendered notes")
	f.String("model", "", "vision model identifier")
	f.Int("workers", 0, "concurrent backend calls (1-10)")
	f.Bool("move", false, "move sources into the processed folder after their note is written")
	f.String("processed-folder", "", "destination folder for processed sources")
	f.Bool("open", false, "open each created note")
	f.Bool("no-progress", false, "suppress progress output")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	settings, err := buildSettings(cmd)
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	vaultRoot, _ := cmd.Flags().GetString("vault")
	store, err := vault.NewFS(vaultRoot)
	if err != nil {
		return err
	}

	files, err := collectInputs(store, args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported input files found")
	}

	assembler := &note.Assembler{
		Vault:    store,
		Settings: settings,
		Open: func(path string) error {
			return openPath(filepath.Join(store.Root(), path))
		},
	}

	proc := &batch.Processor{
		Settings:  settings,
		Vault:     store,
		Client:    &extract.Client{Backend: &extract.GeminiBackend{APIKey: settings.APIKey}, Model: settings.Model},
		Assembler: assembler,
	}

	if settings.ShowProgress {
		proc.OnProgress = func(p types.Progress) {
			if p.CurrentFile != "" {
				fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", p.Current, p.Total, p.CurrentFile)
			}
		}
	}
	proc.OnResult = func(path string, out types.Outcome) {
		if out.Success {
			fmt.Printf("processed %s -> %s\n", path, out.NotePath)
		} else {
			fmt.Printf("failed  %s: %s\n", path, out.Err)
		}
	}

	var ledger *history.Store
	var runID int64
	if settings.HistoryPath != "" {
		ledger, err = history.Open(settings.HistoryPath)
		if err != nil {
			return err
		}
		defer ledger.Close()
		if runID, err = ledger.BeginRun(settings.Model, len(files)); err != nil {
			return err
		}
	}

	results, err := proc.Process(context.Background(), files)
	if err != nil {
		return err
	}

	if ledger != nil {
		for path, out := range results {
			if err := ledger.RecordOutcome(runID, path, out); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}
		}
		if err := ledger.FinishRun(runID); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	summary := types.Summarize(results)
	fmt.Printf("\n%d processed, %d failed\n", summary.Succeeded, summary.Failed)
	if summary.HasFailures() {
		return fmt.Errorf("%d file(s) failed", summary.Failed)
	}
	return nil
}

// buildSettings layers configuration: file/env via viper, then defaults,
// then command-line flag overrides, then the secrets fallback for the key.
func buildSettings(cmd *cobra.Command) (types.Settings, error) {
	var settings types.Settings
	if err := viper.Unmarshal(&settings); err != nil {
		return types.Settings{}, fmt.Errorf("reading configuration: %w", err)
	}
	settings = settings.WithDefaults()

	flags := cmd.Flags()
	if v, _ := flags.GetString("output"); v != "" {
		settings.OutputFolder = v
	}
	if v, _ := flags.GetString("model"); v != "" {
		settings.Model = v
	}
	if v, _ := flags.GetInt("workers"); v != 0 {
		settings.Workers = v
	}
	if v, _ := flags.GetBool("move"); v {
		settings.MoveAfterProcessing = true
	}
	if v, _ := flags.GetString("processed-folder"); v != "" {
		settings.ProcessedFolder = v
	}
	if v, _ := flags.GetBool("open"); v {
		settings.AutoOpen = true
	}
	if v, _ := flags.GetBool("no-progress"); v {
		settings.ShowProgress = false
	}

	settings.APIKey = secrets.Get(loadedSecrets, secrets.APIKeyFile, settings.APIKey)
	return settings, nil
}

// collectInputs expands folder arguments into their supported files and
// passes file arguments through untouched; unsupported files are rejected
// per-file by the batch, not here.
func collectInputs(store *vault.FS, args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		if store.IsDir(arg) {
			listed, err := store.List(arg, types.SupportedExtensions())
			if err != nil {
				return nil, err
			}
			files = append(files, listed...)
			continue
		}
		files = append(files, arg)
	}
	return files, nil
}

// openPath asks the desktop environment to open a file, best effort.
func openPath(path string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", path).Start()
	default:
		return exec.Command("xdg-open", path).Start()
	}
}
