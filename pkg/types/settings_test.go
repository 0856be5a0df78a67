// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"testing"
)

func TestWithDefaultsFillsZeroFields(t *testing.T) {
	got := Settings{}.WithDefaults()
	want := DefaultSettings()

	if got.Model != want.Model {
		t.Errorf("Model = %q, want %q", got.Model, want.Model)
	}
	if got.Prompt != want.Prompt {
		t.Errorf("Prompt = %q", got.Prompt)
	}
	if got.NoteTemplate != want.NoteTemplate {
		t.Errorf("NoteTemplate = %q", got.NoteTemplate)
	}
	if got.FilenameTemplate != want.FilenameTemplate {
		t.Errorf("FilenameTemplate = %q", got.FilenameTemplate)
	}
	if got.OutputFolder != want.OutputFolder {
		t.Errorf("OutputFolder = %q", got.OutputFolder)
	}
	if got.Workers != want.Workers {
		t.Errorf("Workers = %d, want %d", got.Workers, want.Workers)
	}
	if got.ProcessedFolder != want.ProcessedFolder {
		t.Errorf("ProcessedFolder = %q", got.ProcessedFolder)
	}
	// A default run must record history; the ledger path may not stay empty.
	if got.HistoryPath != want.HistoryPath {
		t.Errorf("HistoryPath = %q, want %q", got.HistoryPath, want.HistoryPath)
	}
	if len(got.Variables) != 1 || got.Variables[0].Name != "tags" {
		t.Errorf("Variables = %v", got.Variables)
	}
}

func TestWithDefaultsKeepsExplicitValues(t *testing.T) {
	s := Settings{
		Model:     "custom-model",
		Workers:   2,
		Variables: []VariableSpec{},
	}
	got := s.WithDefaults()

	if got.Model != "custom-model" {
		t.Errorf("Model = %q", got.Model)
	}
	if got.Workers != 2 {
		t.Errorf("Workers = %d", got.Workers)
	}
	// An explicitly empty spec list disables extraction hints; it must not
	// be replaced by the default tags spec.
	if len(got.Variables) != 0 {
		t.Errorf("Variables = %v, want empty", got.Variables)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{name: "defaults pass", mutate: func(*Settings) {}},
		{
			name:    "missing model",
			mutate:  func(s *Settings) { s.Model = "" },
			wantErr: "Model",
		},
		{
			name:    "workers below range",
			mutate:  func(s *Settings) { s.Workers = 0 },
			wantErr: "Workers",
		},
		{
			name:    "workers above range",
			mutate:  func(s *Settings) { s.Workers = 11 },
			wantErr: "Workers",
		},
		{
			name: "duplicate variable name",
			mutate: func(s *Settings) {
				s.Variables = []VariableSpec{
					{Name: "topic", Type: VarString},
					{Name: "topic", Type: VarArray},
				}
			},
			wantErr: "duplicate variable name",
		},
		{
			name: "empty variable name",
			mutate: func(s *Settings) {
				s.Variables = []VariableSpec{{Name: "", Type: VarString}}
			},
			wantErr: "variable name must not be empty",
		},
		{
			name: "unknown variable type",
			mutate: func(s *Settings) {
				s.Variables = []VariableSpec{{Name: "topic", Type: "boolean"}}
			},
			wantErr: "unknown variable type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestMediaType(t *testing.T) {
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"scan.pdf", "application/pdf", true},
		{"notes/scan.PDF", "application/pdf", true},
		{"scan.png", "image/png", true},
		{"scan.jpg", "image/jpeg", true},
		{"scan.jpeg", "image/jpeg", true},
		{"scan.webp", "image/webp", true},
		{"scan.gif", "image/gif", true},
		{"scan.txt", "", false},
		{"scan", "", false},
		{"scan.md", "", false},
	}
	for _, tt := range tests {
		got, ok := MediaType(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("MediaType(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSupportedExtensionsMatchMediaTypes(t *testing.T) {
	for _, ext := range SupportedExtensions() {
		if _, ok := MediaType("file." + ext); !ok {
			t.Errorf("extension %q is listed but not mapped", ext)
		}
	}
	if len(SupportedExtensions()) != len(mediaTypes) {
		t.Errorf("extension list and media type map disagree on size")
	}
}
