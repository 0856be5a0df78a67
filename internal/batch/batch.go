// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch schedules per-file extraction over a bounded worker pool.
package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/scribe/internal/extract"
	"github.com/mesh-intelligence/scribe/internal/note"
	"github.com/mesh-intelligence/scribe/internal/vault"
	"github.com/mesh-intelligence/scribe/pkg/types"
)

// ErrMissingAPIKey aborts a batch before any file is queued.
var ErrMissingAPIKey = errors.New("no API key configured")

// ErrUnsupportedType marks inputs whose extension is outside the allow-list.
// Such files are rejected before any backend call is attempted.
var ErrUnsupportedType = errors.New("unsupported file type")

// ErrEmptyContent marks extractions that decoded but transcribed no text.
// An empty note is a failure, not a success with empty content.
var ErrEmptyContent = errors.New("no text extracted")

// Processor drives a batch: workers pull files from a shared queue, run
// extraction and note assembly, and record one Outcome per input.
type Processor struct {
	Settings  types.Settings
	Vault     vault.Store
	Client    *extract.Client
	Assembler *note.Assembler

	// OnProgress receives transient snapshots; it must not block for long
	// and must not panic. Optional.
	OnProgress func(types.Progress)

	// OnResult fires once per file as its outcome is recorded. Completion
	// order is not input order; workers race. Optional.
	OnResult func(path string, outcome types.Outcome)
}

// Process runs the batch to completion and returns a map with exactly one
// Outcome per input path. Per-file errors never abort sibling workers; the
// only up-front failure is a missing API key, checked once before any file
// is queued. Cancelling ctx stops workers between files; already queued
// files are recorded as failed rather than dropped.
func (p *Processor) Process(ctx context.Context, files []string) (map[string]types.Outcome, error) {
	if strings.TrimSpace(p.Settings.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	results := make(map[string]types.Outcome, len(files))
	if len(files) == 0 {
		return results, nil
	}

	workers := p.Settings.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}

	queue := make(chan string, len(files))
	for _, f := range files {
		queue <- f
	}
	close(queue)

	var (
		mu        sync.Mutex
		completed int
		inflight  int
	)
	total := len(files)

	record := func(path string, out types.Outcome) {
		mu.Lock()
		completed++
		inflight--
		results[path] = out
		snap := types.Progress{Current: completed + inflight, Total: total}
		mu.Unlock()
		p.emit(snap)
		if p.OnResult != nil {
			p.OnResult(path, out)
		}
	}

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for path := range queue {
				mu.Lock()
				inflight++
				snap := types.Progress{Current: completed + inflight, Total: total, CurrentFile: filepath.Base(path)}
				mu.Unlock()
				p.emit(snap)

				if err := ctx.Err(); err != nil {
					record(path, types.Outcome{Err: fmt.Sprintf("batch cancelled: %v", err)})
					continue
				}

				record(path, p.processFile(ctx, path))
			}
			return nil
		})
	}
	// Workers reduce every failure to an Outcome and always return nil.
	_ = g.Wait()

	return results, nil
}

// processFile handles one input end to end. Every error is reduced to a
// failed Outcome here; nothing propagates past the file boundary.
func (p *Processor) processFile(ctx context.Context, path string) types.Outcome {
	mimeType, ok := types.MediaType(path)
	if !ok {
		return failure(fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedType))
	}

	data, err := p.Vault.Read(path)
	if err != nil {
		return failure(fmt.Errorf("reading source: %w", err))
	}

	log.Debug().Str("file", path).Str("mime", mimeType).Int("bytes", len(data)).Msg("extracting")

	var res types.ExtractionResult
	if mimeType == "application/pdf" {
		res, err = p.Client.ExtractPDF(ctx, data, p.Settings.Prompt, p.Settings.Variables)
	} else {
		res, err = p.Client.ExtractImage(ctx, data, mimeType, p.Settings.Prompt, p.Settings.Variables)
	}
	if err != nil {
		return failure(fmt.Errorf("extraction failed: %w", err))
	}

	if strings.TrimSpace(res.Content) == "" {
		return failure(fmt.Errorf("%s: %w", filepath.Base(path), ErrEmptyContent))
	}

	notePath, err := p.Assembler.Assemble(path, res, extract.PageCount(data, mimeType))
	if err != nil {
		out := failure(err)
		out.NotePath = notePath
		return out
	}

	log.Debug().Str("file", path).Str("note", notePath).Msg("note written")
	return types.Outcome{Success: true, NotePath: notePath}
}

func (p *Processor) emit(snap types.Progress) {
	if p.OnProgress != nil {
		p.OnProgress(snap)
	}
}

func failure(err error) types.Outcome {
	return types.Outcome{Err: err.Error()}
}
