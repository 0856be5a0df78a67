// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Outcome records the result of processing one input file. Every file handed
// to a batch yields exactly one Outcome, keyed by its source path.
type Outcome struct {
	Success  bool   `json:"success" yaml:"success"`
	NotePath string `json:"note_path,omitempty" yaml:"note_path,omitempty"`
	Err      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Progress is a transient snapshot emitted on every batch state change:
// once when a file is picked up (CurrentFile set) and once when it
// completes (CurrentFile empty). Snapshots are not retained.
type Progress struct {
	Current     int
	Total       int
	CurrentFile string
}

// BatchSummary holds counts from a completed batch run.
type BatchSummary struct {
	Succeeded int
	Failed    int
}

// Total returns the number of files processed.
func (s BatchSummary) Total() int { return s.Succeeded + s.Failed }

// HasFailures reports whether any files failed.
func (s BatchSummary) HasFailures() bool { return s.Failed > 0 }

// Summarize tallies a batch result map.
func Summarize(results map[string]Outcome) BatchSummary {
	var s BatchSummary
	for _, o := range results {
		if o.Success {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}
