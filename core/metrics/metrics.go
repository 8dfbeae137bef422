package metrics

import "time"

// BuildRecord describes one attempt to construct a service instance.
type BuildRecord struct {
	Service  string
	Adapter  string
	Shared   bool
	Duration time.Duration
	Err      error
	Time     time.Time
}

// Outcome returns "ok" or "error".
func (r BuildRecord) Outcome() string {
	if r.Err != nil {
		return "error"
	}
	return "ok"
}

// Recorder records build attempts for observability purposes.
type Recorder interface {
	RecordBuild(rec BuildRecord) error
}

// NopRecorder discards all records.
type NopRecorder struct{}

func (NopRecorder) RecordBuild(BuildRecord) error { return nil }

// MultiRecorder fans out records to multiple recorders.
type MultiRecorder struct {
	Recorders []Recorder
}

// NewMultiRecorder creates a MultiRecorder with the provided recorders.
func NewMultiRecorder(recs ...Recorder) *MultiRecorder {
	return &MultiRecorder{Recorders: recs}
}

// RecordBuild forwards the record to all recorders, returning the first error
// encountered. Every recorder is called even after a failure.
func (m *MultiRecorder) RecordBuild(rec BuildRecord) error {
	var first error
	for _, r := range m.Recorders {
		if err := r.RecordBuild(rec); err != nil && first == nil {
			first = err
		}
	}
	return first
}
