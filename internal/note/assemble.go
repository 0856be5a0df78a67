// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package note assembles rendered Markdown notes from extraction results
// and persists them through the vault collaborator.
package note

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mesh-intelligence/scribe/internal/render"
	"github.com/mesh-intelligence/scribe/internal/vault"
	"github.com/mesh-intelligence/scribe/pkg/types"
)

// Assembler combines one extraction result with the tag merge and
// file-move policy into a written note.
type Assembler struct {
	Vault    vault.Store
	Settings types.Settings

	// FormatLink renders a backlink to the source file for embedding in
	// the note. Defaults to a wiki-style [[path]] link.
	FormatLink func(target string) string

	// Open requests a created note be opened in the host application.
	// Optional and best effort.
	Open func(path string) error

	// Now is the clock, overridable in tests.
	Now func() time.Time
}

// Assemble renders and writes the note for one source file. On success it
// returns the note path. When the post-write source move fails, the note
// stays in place and the returned path accompanies the error so the
// failure message can name the surviving note.
func (a *Assembler) Assemble(sourcePath string, res types.ExtractionResult, pageCount int) (string, error) {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	ts := now().Format(time.RFC3339)
	sourceName := filepath.Base(sourcePath)

	filename := render.Filename(a.Settings.FilenameTemplate, sourceName, res.Variables, now())

	if err := a.Vault.EnsureFolder(a.Settings.OutputFolder); err != nil {
		return "", fmt.Errorf("preparing output folder: %w", err)
	}

	// Under the move policy, backlinks must reference the source's future
	// location so they are not stale once the move runs.
	finalSource := sourcePath
	if a.Settings.MoveAfterProcessing {
		finalSource = filepath.Join(a.Settings.ProcessedFolder, sourceName)
	}

	ctx := render.Context{
		Content:        res.Content,
		Tags:           MergeTags(a.Settings.DefaultTags, res.Variables["tags"]),
		SourceFilename: sourceName,
		SourcePath:     finalSource,
		SourceLink:     a.link(finalSource),
		Timestamp:      ts,
		PageCount:      pageCount,
		Model:          a.Settings.Model,
		Variables:      mergeVariables(a.Settings.CustomVariables, res.Variables),
	}

	notePath := filepath.Join(a.Settings.OutputFolder, filename)
	if err := a.Vault.Overwrite(notePath, []byte(render.Content(a.Settings.NoteTemplate, ctx))); err != nil {
		return "", fmt.Errorf("writing note: %w", err)
	}

	if a.Settings.MoveAfterProcessing {
		if err := a.moveSource(sourcePath, ts); err != nil {
			return notePath, fmt.Errorf("note written to %s, but moving source failed: %w", notePath, err)
		}
	}

	if a.Settings.AutoOpen && a.Open != nil {
		if err := a.Open(notePath); err != nil {
			log.Debug().Str("note", notePath).Err(err).Msg("auto-open failed")
		}
	}

	return notePath, nil
}

// moveSource relocates a processed source file into the processed folder.
// A name collision at the destination is resolved by appending a sanitized
// timestamp to the base name; existing processed files are never
// overwritten silently.
func (a *Assembler) moveSource(sourcePath, ts string) error {
	if err := a.Vault.EnsureFolder(a.Settings.ProcessedFolder); err != nil {
		return fmt.Errorf("preparing processed folder: %w", err)
	}

	name := filepath.Base(sourcePath)
	dest := filepath.Join(a.Settings.ProcessedFolder, name)
	if a.Vault.Exists(dest) {
		ext := filepath.Ext(name)
		base := name[:len(name)-len(ext)]
		dest = filepath.Join(a.Settings.ProcessedFolder, base+"-"+render.SanitizeTimestamp(ts)+ext)
	}

	return a.Vault.Move(sourcePath, dest)
}

func (a *Assembler) link(target string) string {
	if a.FormatLink != nil {
		return a.FormatLink(target)
	}
	return "[[" + target + "]]"
}

// MergeTags combines statically configured default tags with extracted
// tags. The extracted value is normalized to a sequence (a bare string
// becomes a single-element sequence) and each tag is appended unless
// already present; matching is case-sensitive and order is defaults first,
// then new extracted tags in source order.
func MergeTags(defaults []string, extracted types.Value) []string {
	merged := make([]string, 0, len(defaults))
	seen := make(map[string]bool, len(defaults))
	for _, t := range defaults {
		if seen[t] {
			continue
		}
		seen[t] = true
		merged = append(merged, t)
	}
	for _, t := range extracted.Strings() {
		if seen[t] {
			continue
		}
		seen[t] = true
		merged = append(merged, t)
	}
	return merged
}

// mergeVariables overlays extracted variables on the static custom
// variable bag; extracted values win on name collision.
func mergeVariables(custom map[string]string, extracted map[string]types.Value) map[string]types.Value {
	merged := make(map[string]types.Value, len(custom)+len(extracted))
	for k, v := range custom {
		merged[k] = types.StringValue(v)
	}
	for k, v := range extracted {
		merged[k] = v
	}
	return merged
}
