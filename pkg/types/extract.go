// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data model shared across scribe's pipeline stages.
package types

import "strconv"

// VariableType enumerates the value shapes an extractable variable may take.
type VariableType string

const (
	VarString VariableType = "string"
	VarArray  VariableType = "array"
	VarNumber VariableType = "number"
)

// VariableSpec declares a named field the extraction prompt asks the vision
// backend to locate within a document. Names are unique per run and the list
// is immutable while a batch is running.
type VariableSpec struct {
	Name        string       `json:"name" yaml:"name"`
	Type        VariableType `json:"type" yaml:"type"`
	Description string       `json:"description" yaml:"description"`
}

// ValueKind discriminates the dynamic type of an extracted Value.
type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindArray
)

// Value is a loosely typed extracted value: a string, a number, or an
// ordered sequence of scalars. The backend returns best-effort JSON, so
// values are validated against the declared VariableType at ingestion
// rather than trusted blindly.
type Value struct {
	Kind  ValueKind
	Str   string
	Num   float64
	Items []string
}

// StringValue wraps s as a string-kinded Value.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// NumberValue wraps n as a number-kinded Value.
func NumberValue(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// ArrayValue wraps items as an array-kinded Value, preserving order.
func ArrayValue(items ...string) Value { return Value{Kind: KindArray, Items: items} }

// IsArray reports whether v holds an ordered sequence.
func (v Value) IsArray() bool { return v.Kind == KindArray }

// Scalar formats a non-array value for substitution into rendered text.
// Numbers use the shortest representation that round-trips.
func (v Value) Scalar() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return v.Str
	}
}

// Strings returns the value as a sequence: array items as-is, a scalar as a
// single-element sequence. An empty string yields an empty sequence.
func (v Value) Strings() []string {
	if v.Kind == KindArray {
		return v.Items
	}
	s := v.Scalar()
	if s == "" {
		return nil
	}
	return []string{s}
}

// CoerceValue validates a raw decoded JSON value against the declared type.
// Lossless conversions are accepted (a bare scalar for an array variable
// becomes a single-element array, a number for a string variable is
// formatted); anything else is dropped and ok is false.
func CoerceValue(raw any, typ VariableType) (Value, bool) {
	switch typ {
	case VarString:
		switch x := raw.(type) {
		case string:
			return StringValue(x), true
		case float64:
			return StringValue(NumberValue(x).Scalar()), true
		}
	case VarNumber:
		if x, ok := raw.(float64); ok {
			return NumberValue(x), true
		}
	case VarArray:
		switch x := raw.(type) {
		case []any:
			items := make([]string, 0, len(x))
			for _, el := range x {
				switch e := el.(type) {
				case string:
					items = append(items, e)
				case float64:
					items = append(items, NumberValue(e).Scalar())
				}
			}
			return ArrayValue(items...), true
		case string:
			return ArrayValue(x), true
		case float64:
			return ArrayValue(NumberValue(x).Scalar()), true
		}
	}
	return Value{}, false
}

// ExtractionResult is the typed outcome of one backend call for one document.
// Content is the transcribed body text. Variables holds one entry per
// declared VariableSpec name the backend actually returned; a missing key
// means "not found", never an error.
type ExtractionResult struct {
	Content   string
	Variables map[string]Value
}
