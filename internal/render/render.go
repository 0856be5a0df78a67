// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render substitutes {{name}} tokens in note and filename templates.
// Rendering is pure string work: no I/O, no shared state. Templates are
// parsed into an explicit sequence of literal and token nodes so that
// unmatched tokens pass through verbatim by construction rather than as a
// regex side effect.
package render

import (
	"strconv"
	"strings"

	"github.com/mesh-intelligence/scribe/pkg/types"
)

// Context carries the fields available to note templates.
//
// Token lookup resolves built-in field names first, then the variable bag;
// a custom variable that shadows a built-in name is therefore unreachable
// through its bare form and must be addressed as {{customVariables.name}}.
type Context struct {
	Content        string
	Tags           []string
	SourceFilename string
	SourcePath     string
	SourceLink     string
	Timestamp      string
	PageCount      int
	Model          string
	Variables      map[string]types.Value
}

const varPrefix = "customVariables."

// Content renders a note template against ctx. Scalar tokens substitute in
// place, array values expand to YAML block sequences, and unmatched tokens
// are left verbatim.
func Content(template string, ctx Context) string {
	var b strings.Builder
	for _, n := range parse(template) {
		if n.token == "" {
			b.WriteString(n.text)
			continue
		}
		value, ok := ctx.lookup(n.token)
		if !ok {
			b.WriteString(n.text) // verbatim, including braces
			continue
		}
		if strings.HasPrefix(value, "\n") {
			// A block sequence starts its own line; drop the space after
			// "key:" so the key line has no trailing whitespace.
			trimKeyLine(&b)
		}
		b.WriteString(value)
	}
	return b.String()
}

// trimKeyLine removes trailing spaces from the text accumulated so far.
func trimKeyLine(b *strings.Builder) {
	s := b.String()
	trimmed := strings.TrimRight(s, " ")
	if len(trimmed) == len(s) {
		return
	}
	b.Reset()
	b.WriteString(trimmed)
}

// lookup resolves a token name to its replacement text.
func (ctx Context) lookup(name string) (string, bool) {
	switch name {
	case "content":
		return escapeBraces(ctx.Content), true
	case "tags":
		return yamlSequence(ctx.mergedTags()), true
	case "sourceFilename":
		return ctx.SourceFilename, true
	case "sourcePath":
		return ctx.SourcePath, true
	case "sourceLink":
		return ctx.SourceLink, true
	case "timestamp":
		return ctx.Timestamp, true
	case "pageCount":
		return strconv.Itoa(ctx.PageCount), true
	case "model":
		return ctx.Model, true
	}

	key := strings.TrimPrefix(name, varPrefix)
	v, ok := ctx.Variables[key]
	if !ok {
		return "", false
	}
	if v.IsArray() {
		return yamlSequence(v.Items), true
	}
	return v.Scalar(), true
}

// mergedTags returns the top-level tag list, falling back to a "tags"
// entry in the variable bag. Both spellings occur in user templates.
func (ctx Context) mergedTags() []string {
	if ctx.Tags != nil {
		return ctx.Tags
	}
	if v, ok := ctx.Variables["tags"]; ok {
		return v.Strings()
	}
	return nil
}

// yamlSequence formats items as a YAML block sequence. An empty sequence
// renders as the flow form so "key: {{key}}" stays valid YAML.
func yamlSequence(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	var b strings.Builder
	for _, item := range items {
		b.WriteString("\n  - ")
		b.WriteString(item)
	}
	return b.String()
}

// escapeBraces backslash-prefixes template-like brace pairs in transcribed
// text so a body containing "{{x}}" is never mistaken for a token by
// downstream tooling that re-renders the note.
func escapeBraces(s string) string {
	s = strings.ReplaceAll(s, "{{", `\{\{`)
	return strings.ReplaceAll(s, "}}", `\}\}`)
}

// node is one parsed template segment. token is empty for literals; for
// token nodes, text keeps the original source so unmatched tokens can be
// emitted unchanged.
type node struct {
	text  string
	token string
}

// parse splits a template into literal and token nodes. A token is
// "{{ name }}" with arbitrary inner whitespace and an optional leading dot.
// Malformed or empty braces are treated as literal text.
func parse(template string) []node {
	var nodes []node
	rest := template
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			break
		}
		close := strings.Index(rest[open+2:], "}}")
		if close < 0 {
			break
		}
		inner := rest[open+2 : open+2+close]
		name := strings.TrimPrefix(strings.TrimSpace(inner), ".")

		if open > 0 {
			nodes = append(nodes, node{text: rest[:open]})
		}
		raw := rest[open : open+2+close+2]
		if name == "" || strings.ContainsAny(name, "{}\n") {
			nodes = append(nodes, node{text: raw})
		} else {
			nodes = append(nodes, node{text: raw, token: name})
		}
		rest = rest[open+2+close+2:]
	}
	if rest != "" {
		nodes = append(nodes, node{text: rest})
	}
	return nodes
}
