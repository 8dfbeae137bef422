package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingRecorder struct {
	count int
	err   error
}

func (r *countingRecorder) RecordBuild(BuildRecord) error {
	r.count++
	return r.err
}

// TestMultiRecorder ensures records are forwarded to all recorders.
func TestMultiRecorder(t *testing.T) {
	boom := errors.New("boom")
	r1 := &countingRecorder{err: boom}
	r2 := &countingRecorder{}
	m := NewMultiRecorder(r1, r2)

	err := m.RecordBuild(BuildRecord{Service: "cache"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, r1.count)
	assert.Equal(t, 1, r2.count)
}

func TestBuildRecordOutcome(t *testing.T) {
	assert.Equal(t, "ok", BuildRecord{}.Outcome())
	assert.Equal(t, "error", BuildRecord{Err: errors.New("x")}.Outcome())
}
