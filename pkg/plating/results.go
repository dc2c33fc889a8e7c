package plating

import (
	"fmt"
	"sync"

	"github.com/provide-io/plating/pkg/bundle"
	"github.com/provide-io/plating/pkg/errors"
)

// Outcome classifies what happened to one bundle during a run.
type Outcome string

// Per-bundle outcomes.
const (
	// OutcomeWritten means the bundle's documentation was rendered and
	// written (new file, or overwritten under force).
	OutcomeWritten Outcome = "written"

	// OutcomeCreated means adorn synthesized a new bundle skeleton.
	OutcomeCreated Outcome = "created"

	// OutcomeValidated means a dry-run render succeeded.
	OutcomeValidated Outcome = "validated"

	// OutcomeSkippedExists means the target already exists and force
	// was not set.
	OutcomeSkippedExists Outcome = "skipped-exists"

	// OutcomeSkippedUndocumented means the bundle has no main template.
	OutcomeSkippedUndocumented Outcome = "skipped-undocumented"

	// OutcomeFailed means the bundle's task failed; Err carries detail.
	OutcomeFailed Outcome = "failed"
)

// Result is one bundle's outcome. Every result is tagged with the
// bundle identity it came from: completion order is not input order.
type Result struct {
	Ref     bundle.Ref
	Outcome Outcome
	Path    string
	Err     error
}

// RunReport aggregates the results of one orchestrator call. It is
// safe for concurrent appends while a run is in flight and read-only
// afterwards.
type RunReport struct {
	mu      sync.Mutex
	results []Result
}

// add records one result.
func (r *RunReport) add(res Result) {
	r.mu.Lock()
	r.results = append(r.results, res)
	r.mu.Unlock()
}

// Results returns all recorded results in completion order.
func (r *RunReport) Results() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Result, len(r.results))
	copy(out, r.results)
	return out
}

// count tallies results matching any of the given outcomes.
func (r *RunReport) count(outcomes ...Outcome) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, res := range r.results {
		for _, o := range outcomes {
			if res.Outcome == o {
				n++
			}
		}
	}
	return n
}

// Succeeded returns the number of written/created/validated bundles.
func (r *RunReport) Succeeded() int {
	return r.count(OutcomeWritten, OutcomeCreated, OutcomeValidated)
}

// Skipped returns the number of skipped bundles.
func (r *RunReport) Skipped() int {
	return r.count(OutcomeSkippedExists, OutcomeSkippedUndocumented)
}

// Failed returns the number of failed bundles.
func (r *RunReport) Failed() int {
	return r.count(OutcomeFailed)
}

// Failures returns the failed results only.
func (r *RunReport) Failures() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Result, 0)
	for _, res := range r.results {
		if res.Outcome == OutcomeFailed {
			out = append(out, res)
		}
	}
	return out
}

// Err returns nil for a clean run, or a joined error describing every
// per-bundle failure. Skips alone never make a run an error.
func (r *RunReport) Err() error {
	failures := r.Failures()
	if len(failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(failures))
	for _, res := range failures {
		errs = append(errs, fmt.Errorf("%s: %w", res.Ref, res.Err))
	}
	return errors.Join(errs...)
}

// Summary returns a one-line human summary.
func (r *RunReport) Summary() string {
	return fmt.Sprintf("%d succeeded, %d skipped, %d failed",
		r.Succeeded(), r.Skipped(), r.Failed())
}
