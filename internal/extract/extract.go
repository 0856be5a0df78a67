// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns document images and PDFs into transcribed text and
// structured variables by prompting an AI vision backend.
package extract

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/mesh-intelligence/scribe/pkg/types"
)

// Part is one element of a multimodal backend request: either prompt text
// or inline binary data with its MIME type.
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

// Backend abstracts the vision API so tests can supply a mock. It returns
// the raw text reply for one document.
type Backend interface {
	Generate(ctx context.Context, model string, parts []Part) (string, error)
}

// Client drives structured extraction for single documents.
type Client struct {
	Backend Backend
	Model   string
}

// ExtractImage extracts from a raster image with the given MIME type.
func (c *Client) ExtractImage(ctx context.Context, data []byte, mimeType, basePrompt string, specs []types.VariableSpec) (types.ExtractionResult, error) {
	return c.extract(ctx, Part{MIMEType: mimeType, Data: data}, basePrompt, specs)
}

// ExtractPDF extracts from a PDF document. Same prompt and parsing path as
// ExtractImage; only the media envelope differs.
func (c *Client) ExtractPDF(ctx context.Context, data []byte, basePrompt string, specs []types.VariableSpec) (types.ExtractionResult, error) {
	return c.extract(ctx, Part{MIMEType: "application/pdf", Data: data}, basePrompt, specs)
}

func (c *Client) extract(ctx context.Context, doc Part, basePrompt string, specs []types.VariableSpec) (types.ExtractionResult, error) {
	prompt, err := buildPrompt(basePrompt, specs)
	if err != nil {
		return types.ExtractionResult{}, fmt.Errorf("building prompt: %w", err)
	}

	reply, err := c.Backend.Generate(ctx, c.Model, []Part{{Text: prompt}, doc})
	if err != nil {
		return types.ExtractionResult{}, fmt.Errorf("calling vision backend: %w", err)
	}

	return parseReply(reply, specs)
}

// promptTmpl frames the base prompt with the variable request and a JSON
// example so the backend is steered toward well-formed output without hard
// schema enforcement.
var promptTmpl = template.Must(template.New("extraction").Parse(`{{.BasePrompt}}
{{if .Variables}}
Additionally, extract the following information from the document if present:
{{.Variables}}{{end}}
Respond with a single JSON object shaped like this example:

{{.Example}}
`))

// buildPrompt concatenates the base prompt, a human-readable list of the
// requested variables, and an example JSON object with one type-appropriate
// placeholder per variable.
func buildPrompt(basePrompt string, specs []types.VariableSpec) (string, error) {
	var vars strings.Builder
	for _, spec := range specs {
		fmt.Fprintf(&vars, "- %s (%s): %s\n", spec.Name, spec.Type, spec.Description)
	}

	var example strings.Builder
	example.WriteString("{\n  \"content\": \"the transcribed text\"")
	for _, spec := range specs {
		fmt.Fprintf(&example, ",\n  %q: %s", spec.Name, placeholder(spec.Type))
	}
	example.WriteString("\n}")

	var b strings.Builder
	err := promptTmpl.Execute(&b, struct {
		BasePrompt, Variables, Example string
	}{basePrompt, vars.String(), example.String()})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

func placeholder(typ types.VariableType) string {
	switch typ {
	case types.VarArray:
		return "[]"
	case types.VarNumber:
		return "0"
	default:
		return `""`
	}
}
