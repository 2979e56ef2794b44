package emit

import (
	"time"

	"github.com/google/uuid"

	"github.com/richarddahl/sqlemit"
)

// Rendered pairs a statement name with its fully rendered SQL text, for
// dry-run review and export.
type Rendered struct {
	Name string
	Text string
}

// StatementFailure records one failed statement within a batch.
type StatementFailure struct {
	Name string
	Kind sqlemit.Kind
	Err  error
}

// BatchResult reports the outcome of one executor invocation.
type BatchResult struct {
	// ID uniquely identifies the batch for correlation in logs and events.
	ID uuid.UUID

	// Label is the emitter (or registry) the batch was emitted for.
	Label string

	// Succeeded lists the names of applied statements, in execution order.
	Succeeded []string

	// Skipped lists statements skipped under the ExistsSkip policy.
	Skipped []string

	// Failures lists failed statements. In fail-fast mode it holds at most
	// one entry; under WithContinueOnError it collects every failure.
	Failures []*StatementFailure

	// Rendered holds the ordered, fully rendered statements. Always
	// populated, including in dry-run mode.
	Rendered []Rendered

	// DryRun reports whether the batch was rendered without execution.
	DryRun bool

	// Duration is the wall-clock time spent executing the batch.
	Duration time.Duration
}

// Failed returns the first failure, or nil if every statement succeeded.
func (r *BatchResult) Failed() *StatementFailure {
	if len(r.Failures) == 0 {
		return nil
	}
	return r.Failures[0]
}

// OK reports whether the batch completed without failures.
func (r *BatchResult) OK() bool { return len(r.Failures) == 0 }

// SQL returns the rendered batch as one reviewable script, each statement
// preceded by a comment naming it.
func (r *BatchResult) SQL() string {
	var b []byte
	for _, s := range r.Rendered {
		b = append(b, "-- "...)
		b = append(b, s.Name...)
		b = append(b, '\n')
		b = append(b, s.Text...)
		if n := len(s.Text); n > 0 && s.Text[n-1] != '\n' {
			b = append(b, '\n')
		}
		b = append(b, '\n')
	}
	return string(b)
}

func newBatchResult(label string, ordered []*sqlemit.Statement, dryRun bool) *BatchResult {
	r := &BatchResult{
		ID:       uuid.New(),
		Label:    label,
		Rendered: make([]Rendered, len(ordered)),
		DryRun:   dryRun,
	}
	for i, s := range ordered {
		r.Rendered[i] = Rendered{Name: s.Name(), Text: s.Text()}
	}
	return r
}
