// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultPrompt instructs the backend to transcribe verbatim.
const DefaultPrompt = `Transcribe this handwritten note verbatim. Preserve the original line breaks. Write mathematical notation as LaTeX delimited by $. Do not summarize, correct, or annotate the text.`

// DefaultNoteTemplate is the note body rendered when the user supplies none.
const DefaultNoteTemplate = `---
tags: {{tags}}
source: "{{sourceLink}}"
processed: {{timestamp}}
---

{{content}}
`

// DefaultFilenameTemplate names output notes after their source file.
const DefaultFilenameTemplate = "{{baseName}}.md"

// Settings is the full user-facing configuration surface. Construct with
// DefaultSettings or apply WithDefaults to a partially populated struct,
// then Validate once before a batch starts. Immutable during a run.
type Settings struct {
	// APIKey authenticates against the vision backend. No default; a batch
	// refuses to start without one.
	APIKey string `mapstructure:"api_key" yaml:"api_key,omitempty"`

	// Model is the vision model identifier.
	Model string `mapstructure:"model" yaml:"model"`

	// Prompt is the base extraction prompt sent with every document.
	Prompt string `mapstructure:"prompt" yaml:"prompt"`

	// Variables lists the structured fields the backend is asked to find.
	Variables []VariableSpec `mapstructure:"variables" yaml:"variables"`

	// NoteTemplate and FilenameTemplate drive the renderer.
	NoteTemplate     string `mapstructure:"note_template" yaml:"note_template"`
	FilenameTemplate string `mapstructure:"filename_template" yaml:"filename_template"`

	// OutputFolder receives rendered notes.
	OutputFolder string `mapstructure:"output_folder" yaml:"output_folder"`

	// Workers bounds concurrent backend calls (1-10).
	Workers int `mapstructure:"workers" yaml:"workers"`

	ShowProgress bool `mapstructure:"show_progress" yaml:"show_progress"`
	Debug        bool `mapstructure:"debug" yaml:"debug"`

	// MoveAfterProcessing relocates sources into ProcessedFolder once their
	// note is written.
	MoveAfterProcessing bool   `mapstructure:"move_after_processing" yaml:"move_after_processing"`
	ProcessedFolder     string `mapstructure:"processed_folder" yaml:"processed_folder"`

	// DefaultTags are merged ahead of extracted tags in every note.
	DefaultTags []string `mapstructure:"default_tags" yaml:"default_tags"`

	// CustomVariables are static fields merged into the template variable
	// bag; extracted variables of the same name take precedence.
	CustomVariables map[string]string `mapstructure:"custom_variables" yaml:"custom_variables"`

	// AutoOpen requests created notes be opened after a batch, best effort.
	AutoOpen bool `mapstructure:"auto_open" yaml:"auto_open"`

	// HistoryPath locates the SQLite run ledger. Filled with the default
	// ledger path by WithDefaults.
	HistoryPath string `mapstructure:"history_path" yaml:"history_path"`
}

// DefaultSettings returns the configuration used when nothing is set.
func DefaultSettings() Settings {
	return Settings{
		Model:            "gemini-2.0-flash",
		Prompt:           DefaultPrompt,
		Variables:        []VariableSpec{{Name: "tags", Type: VarArray, Description: "hashtags appearing in the note, without the leading #"}},
		NoteTemplate:     DefaultNoteTemplate,
		FilenameTemplate: DefaultFilenameTemplate,
		OutputFolder:     "Handwritten Notes",
		Workers:          4,
		ShowProgress:     true,
		ProcessedFolder:  "Handwritten Notes/Processed",
		HistoryPath:      "scribe-history.db",
	}
}

// WithDefaults fills every zero-valued field from DefaultSettings and
// returns the result. Boolean toggles keep their value; absence and false
// are indistinguishable, so defaults for toggles are all false except
// ShowProgress, which callers opt out of explicitly.
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if s.Model == "" {
		s.Model = d.Model
	}
	if s.Prompt == "" {
		s.Prompt = d.Prompt
	}
	if s.Variables == nil {
		s.Variables = d.Variables
	}
	if s.NoteTemplate == "" {
		s.NoteTemplate = d.NoteTemplate
	}
	if s.FilenameTemplate == "" {
		s.FilenameTemplate = d.FilenameTemplate
	}
	if s.OutputFolder == "" {
		s.OutputFolder = d.OutputFolder
	}
	if s.Workers == 0 {
		s.Workers = d.Workers
	}
	if s.ProcessedFolder == "" {
		s.ProcessedFolder = d.ProcessedFolder
	}
	if s.HistoryPath == "" {
		s.HistoryPath = d.HistoryPath
	}
	return s
}

// Validate checks the configuration once, before any file is queued.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Model, validation.Required),
		validation.Field(&s.Prompt, validation.Required),
		validation.Field(&s.NoteTemplate, validation.Required),
		validation.Field(&s.FilenameTemplate, validation.Required),
		validation.Field(&s.OutputFolder, validation.Required),
		validation.Field(&s.Workers, validation.Min(1), validation.Max(10)),
		validation.Field(&s.Variables, validation.By(uniqueVariableNames)),
	)
}

func uniqueVariableNames(value any) error {
	specs, _ := value.([]VariableSpec)
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if spec.Name == "" {
			return validation.NewError("validation_variable_name", "variable name must not be empty")
		}
		if seen[spec.Name] {
			return validation.NewError("validation_variable_name", "duplicate variable name: "+spec.Name)
		}
		seen[spec.Name] = true
		switch spec.Type {
		case VarString, VarArray, VarNumber:
		default:
			return validation.NewError("validation_variable_type", "unknown variable type: "+string(spec.Type))
		}
	}
	return nil
}

// mediaTypes maps supported input extensions to their MIME types. Anything
// else is rejected before a backend call is attempted.
var mediaTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// MediaType returns the MIME type for a supported input path, or ok=false
// for an unsupported extension.
func MediaType(path string) (string, bool) {
	mt, ok := mediaTypes[strings.ToLower(filepath.Ext(path))]
	return mt, ok
}

// SupportedExtensions lists the accepted input extensions without dots.
func SupportedExtensions() []string {
	return []string{"pdf", "png", "jpg", "jpeg", "webp", "gif"}
}
