// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mesh-intelligence/scribe/pkg/types"
)

// --- mock backend ---

type mockBackend struct {
	reply string // canned reply text
	err   error  // forced transport error
	calls int    // call counter
	model string // model seen on the last call
	parts []Part // parts seen on the last call
}

func (m *mockBackend) Generate(_ context.Context, model string, parts []Part) (string, error) {
	m.calls++
	m.model = model
	m.parts = parts
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func TestBuildPrompt(t *testing.T) {
	specs := []types.VariableSpec{
		{Name: "tags", Type: types.VarArray, Description: "hashtags in the note"},
		{Name: "author", Type: types.VarString, Description: "author name"},
		{Name: "page", Type: types.VarNumber, Description: "page number"},
	}

	prompt, err := buildPrompt("Transcribe this.", specs)
	if err != nil {
		t.Fatalf("buildPrompt: %v", err)
	}

	if !strings.HasPrefix(prompt, "Transcribe this.") {
		t.Errorf("prompt does not start with the base prompt:\n%s", prompt)
	}
	for _, want := range []string{
		"- tags (array): hashtags in the note",
		"- author (string): author name",
		"- page (number): page number",
		`"content": "the transcribed text"`,
		`"tags": []`,
		`"author": ""`,
		`"page": 0`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptNoSpecs(t *testing.T) {
	prompt, err := buildPrompt("Transcribe this.", nil)
	if err != nil {
		t.Fatalf("buildPrompt: %v", err)
	}
	if strings.Contains(prompt, "extract the following") {
		t.Errorf("variable section should be absent with no specs:\n%s", prompt)
	}
	// The JSON example always appears so the backend stays on format.
	if !strings.Contains(prompt, `"content"`) {
		t.Errorf("prompt missing the JSON example:\n%s", prompt)
	}
}

func TestExtractImage(t *testing.T) {
	backend := &mockBackend{reply: `{"content":"hello","tags":["a"]}`}
	client := &Client{Backend: backend, Model: "test-model"}
	specs := []types.VariableSpec{{Name: "tags", Type: types.VarArray}}

	res, err := client.ExtractImage(context.Background(), []byte{0x89, 0x50}, "image/png", "Transcribe.", specs)
	if err != nil {
		t.Fatalf("ExtractImage: %v", err)
	}

	if res.Content != "hello" {
		t.Errorf("content = %q", res.Content)
	}
	if backend.model != "test-model" {
		t.Errorf("model = %q", backend.model)
	}
	if len(backend.parts) != 2 {
		t.Fatalf("parts = %d, want prompt + document", len(backend.parts))
	}
	if backend.parts[0].Text == "" || backend.parts[0].Data != nil {
		t.Errorf("first part should be the prompt text")
	}
	if backend.parts[1].MIMEType != "image/png" || backend.parts[1].Data == nil {
		t.Errorf("second part should carry the image, got %+v", backend.parts[1])
	}
}

func TestExtractPDFEnvelope(t *testing.T) {
	backend := &mockBackend{reply: `{"content":"doc"}`}
	client := &Client{Backend: backend, Model: "test-model"}

	if _, err := client.ExtractPDF(context.Background(), []byte("%PDF-1.4"), "Transcribe.", nil); err != nil {
		t.Fatalf("ExtractPDF: %v", err)
	}
	if backend.parts[1].MIMEType != "application/pdf" {
		t.Errorf("mime = %q, want application/pdf", backend.parts[1].MIMEType)
	}
}

func TestExtractBackendError(t *testing.T) {
	backend := &mockBackend{err: errors.New("boom")}
	client := &Client{Backend: backend, Model: "test-model"}

	_, err := client.ExtractImage(context.Background(), nil, "image/png", "Transcribe.", nil)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("want wrapped backend error, got %v", err)
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		name string
		data string
		mime string
		want int
	}{
		{"image counts one", "not a pdf", "image/png", 1},
		{"two pages", "<</Type /Page>> <</Type /Page>>", "application/pdf", 2},
		{"pages node excluded", "<</Type /Pages>> <</Type /Page>>", "application/pdf", 1},
		{"unreadable pdf falls back to one", "%PDF-1.4 garbage", "application/pdf", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PageCount([]byte(tt.data), tt.mime); got != tt.want {
				t.Errorf("PageCount = %d, want %d", got, tt.want)
			}
		})
	}
}
