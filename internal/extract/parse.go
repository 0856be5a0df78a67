// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/scribe/pkg/types"
)

// ErrNoResponse indicates the backend reply was empty or absent.
var ErrNoResponse = errors.New("no response")

// ErrMalformedResponse indicates the reply contained no decodable JSON.
var ErrMalformedResponse = errors.New("malformed response")

// parseReply decodes a backend reply into an ExtractionResult. The reply is
// free text that may wrap JSON in a fenced code block; parseReply prefers a
// ```json fence, then any fence, then the raw text, and within that slices
// from the first "{" to the last "}" to tolerate surrounding commentary.
// Only keys matching a declared spec are projected into Variables; a
// missing "content" key yields an empty Content, which the caller treats
// as a no-text failure.
func parseReply(reply string, specs []types.VariableSpec) (types.ExtractionResult, error) {
	if strings.TrimSpace(reply) == "" {
		return types.ExtractionResult{}, ErrNoResponse
	}

	payload := fencedBlock(reply)
	start := strings.Index(payload, "{")
	end := strings.LastIndex(payload, "}")
	if start < 0 || end <= start {
		return types.ExtractionResult{}, fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(payload[start:end+1]), &raw); err != nil {
		return types.ExtractionResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	result := types.ExtractionResult{Variables: make(map[string]types.Value)}
	if content, ok := raw["content"].(string); ok {
		result.Content = content
	}
	for _, spec := range specs {
		rawValue, ok := raw[spec.Name]
		if !ok {
			continue
		}
		if v, ok := types.CoerceValue(rawValue, spec.Type); ok {
			result.Variables[spec.Name] = v
		}
	}
	return result, nil
}

// fencedBlock returns the contents of the first ```json code fence, else
// the first fence of any label, else the text unchanged.
func fencedBlock(text string) string {
	if inner, ok := betweenFences(text, "```json"); ok {
		return inner
	}
	if inner, ok := betweenFences(text, "```"); ok {
		return inner
	}
	return text
}

func betweenFences(text, opening string) (string, bool) {
	open := strings.Index(text, opening)
	if open < 0 {
		return "", false
	}
	rest := text[open+len(opening):]
	close := strings.Index(rest, "```")
	if close < 0 {
		return "", false
	}
	return rest[:close], true
}
