// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mesh-intelligence/scribe/internal/httputil"
)

// geminiAPIURL is the Gemini generateContent endpoint, parameterized by
// model. Package-level var for test substitution.
var geminiAPIURL = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"

// GeminiBackend calls the Gemini API to transcribe one document per request.
type GeminiBackend struct {
	APIKey     string
	Client     *http.Client
	MaxRetries int
}

// geminiRequest is the request body for the generateContent API.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

// geminiContent is one message in the request.
type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

// geminiPart is either prompt text or inline base64 document data.
type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

// geminiResponse is the response body from the generateContent API.
type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate sends one multimodal request and returns the concatenated text
// of the first candidate.
func (g *GeminiBackend) Generate(ctx context.Context, model string, parts []Part) (string, error) {
	reqBody := geminiRequest{Contents: []geminiContent{{Parts: make([]geminiPart, 0, len(parts))}}}
	for _, p := range parts {
		if p.Data != nil {
			reqBody.Contents[0].Parts = append(reqBody.Contents[0].Parts, geminiPart{
				InlineData: &geminiInlineData{
					MIMEType: p.MIMEType,
					Data:     base64.StdEncoding.EncodeToString(p.Data),
				},
			})
			continue
		}
		reqBody.Contents[0].Parts = append(reqBody.Contents[0].Parts, geminiPart{Text: p.Text})
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf(geminiAPIURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.APIKey)

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, g.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Gemini API returned %d: %s", resp.StatusCode, string(body))
	}

	var gResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return "", fmt.Errorf("decoding Gemini response: %w", err)
	}

	if len(gResp.Candidates) == 0 {
		return "", nil
	}

	var text bytes.Buffer
	for _, p := range gResp.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return text.String(), nil
}
