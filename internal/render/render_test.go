// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"strings"
	"testing"

	"github.com/mesh-intelligence/scribe/pkg/types"
)

func TestContentScalars(t *testing.T) {
	ctx := Context{
		Content:        "Shopping list",
		SourceFilename: "note.png",
		SourcePath:     "Processed/note.png",
		SourceLink:     "[[Processed/note.png]]",
		Timestamp:      "2026-08-29T10:00:00Z",
		PageCount:      3,
		Model:          "gemini-2.0-flash",
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"plain substitution", "{{content}}", "Shopping list"},
		{"surrounding text", "# {{sourceFilename}} done", "# note.png done"},
		{"inner whitespace", "{{  timestamp  }}", "2026-08-29T10:00:00Z"},
		{"leading dot", "{{.model}}", "gemini-2.0-flash"},
		{"number field", "{{pageCount}} pages", "3 pages"},
		{"unmatched token left verbatim", "{{missing}} here", "{{missing}} here"},
		{"empty braces are literal", "{{}} x", "{{}} x"},
		{"unterminated braces are literal", "{{content", "{{content"},
		{"two tokens", "{{sourceLink}} at {{timestamp}}", "[[Processed/note.png]] at 2026-08-29T10:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Content(tt.template, ctx); got != tt.want {
				t.Errorf("Content(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestContentEscapesTranscribedBraces(t *testing.T) {
	ctx := Context{
		Content:   "before {{x}} after",
		Variables: map[string]types.Value{"x": types.StringValue("BOOM")},
	}

	got := Content("{{content}}", ctx)
	if strings.Contains(got, "BOOM") {
		t.Fatalf("transcribed braces were expanded as a token: %q", got)
	}
	if got != `before \{\{x\}\} after` {
		t.Errorf("got %q, want escaped braces", got)
	}
}

func TestContentTags(t *testing.T) {
	tests := []struct {
		name     string
		ctx      Context
		template string
		want     string
	}{
		{
			name:     "empty tag list renders flow form",
			ctx:      Context{Tags: []string{}},
			template: "tags: {{tags}}",
			want:     "tags: []",
		},
		{
			name:     "block sequence preserves order",
			ctx:      Context{Tags: []string{"meeting", "todo"}},
			template: "tags: {{tags}}",
			want:     "tags:\n  - meeting\n  - todo",
		},
		{
			name:     "key line keeps no trailing space before a block sequence",
			ctx:      Context{Tags: []string{"one"}},
			template: "tags: {{tags}}\nnext: x",
			want:     "tags:\n  - one\nnext: x",
		},
		{
			name: "tags fall back to the variable bag",
			ctx: Context{
				Variables: map[string]types.Value{"tags": types.ArrayValue("a", "b")},
			},
			template: "tags: {{tags}}",
			want:     "tags:\n  - a\n  - b",
		},
		{
			name:     "missing tags everywhere renders empty list",
			ctx:      Context{},
			template: "tags: {{tags}}",
			want:     "tags: []",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Content(tt.template, tt.ctx); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContentVariables(t *testing.T) {
	ctx := Context{
		Model: "gemini-2.0-flash",
		Variables: map[string]types.Value{
			"author":   types.StringValue("Ada"),
			"page":     types.NumberValue(12),
			"topics":   types.ArrayValue("math", "logic"),
			"model":    types.StringValue("shadowed"),
			"emptyArr": types.ArrayValue(),
		},
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"bare form", "{{author}}", "Ada"},
		{"customVariables form", "{{customVariables.author}}", "Ada"},
		{"number variable", "p. {{page}}", "p. 12"},
		{"array variable block form", "topics: {{topics}}", "topics:\n  - math\n  - logic"},
		{"empty array variable", "topics: {{emptyArr}}", "topics: []"},
		{"built-in wins over custom on collision", "{{model}}", "gemini-2.0-flash"},
		{"shadowed custom reachable via prefix", "{{customVariables.model}}", "shadowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Content(tt.template, ctx); got != tt.want {
				t.Errorf("Content(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestContentIdempotent(t *testing.T) {
	ctx := Context{
		Content:   "body",
		Tags:      []string{"a"},
		Variables: map[string]types.Value{"author": types.StringValue("Ada")},
	}
	template := "---\ntags: {{tags}}\n---\n{{content}} by {{author}}"

	first := Content(template, ctx)
	second := Content(template, ctx)
	if first != second {
		t.Errorf("rendering is not idempotent:\n%q\n%q", first, second)
	}
}

func TestParseNodes(t *testing.T) {
	nodes := parse("a {{x}} b {{ .y }} c")
	var tokens []string
	for _, n := range nodes {
		if n.token != "" {
			tokens = append(tokens, n.token)
		}
	}
	if len(tokens) != 2 || tokens[0] != "x" || tokens[1] != "y" {
		t.Errorf("parse tokens = %v, want [x y]", tokens)
	}
}
