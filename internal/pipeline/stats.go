package pipeline

import (
	"sort"
	"sync"
)

// Outcome is a file's terminal state within a run.
type Outcome string

const (
	OutcomeOrganized Outcome = "organized"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeFailed    Outcome = "failed"
)

// Failure records why one path could not be organized.
type Failure struct {
	Path   string
	Reason string
	Err    error // nil for unreadable subdirectories
}

// RunResult aggregates the outcomes of one root. Every discovered file
// that was scheduled lands in exactly one of the four counters; files left
// unscheduled after an interrupt are counted in NotProcessed only.
type RunResult struct {
	Root      string
	OutputDir string
	Total     int // files discovered

	Organized int
	Skipped   int
	Duplicate int
	Failed    int
	// Failures lists failed files in processing order, preceded by any
	// subdirectories that could not be listed (not counted in Failed).
	Failures []Failure

	Interrupted  bool
	NotProcessed int
	BytesMoved   int64

	// Err is set when the root itself could not be processed.
	Err error
}

// Processed returns the number of files that reached a terminal outcome.
func (r *RunResult) Processed() int {
	return r.Organized + r.Skipped + r.Duplicate + r.Failed
}

// tally is the mutex-guarded accumulator workers report into. Failures are
// keyed by file index so the final list follows processing order no matter
// which worker finished first.
type tally struct {
	mu       sync.Mutex
	res      RunResult
	failures []indexedFailure
}

type indexedFailure struct {
	idx int
	Failure
}

func (t *tally) add(idx int, path string, o Outcome, err error, moved int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.res.BytesMoved += moved
	switch o {
	case OutcomeOrganized:
		t.res.Organized++
	case OutcomeSkipped:
		t.res.Skipped++
	case OutcomeDuplicate:
		t.res.Duplicate++
	case OutcomeFailed:
		t.res.Failed++
		t.failures = append(t.failures, indexedFailure{idx, Failure{Path: path, Reason: err.Error(), Err: err}})
	}
}

// interrupt marks the run as cancelled with n files never scheduled.
func (t *tally) interrupt(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.res.Interrupted = true
	t.res.NotProcessed += n
}

// unreadable records subdirectories Discover had to prune.
func (t *tally) unreadable(fs []Failure) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, f := range fs {
		t.failures = append(t.failures, indexedFailure{i - len(fs), f})
	}
}

// finish returns the aggregate with failures sorted into file order.
// Failures recorded before any file (unreadable subdirectories) use
// negative indices and come first.
func (t *tally) finish() RunResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	sort.SliceStable(t.failures, func(i, j int) bool { return t.failures[i].idx < t.failures[j].idx })
	res := t.res
	res.Failures = make([]Failure, len(t.failures))
	for i, f := range t.failures {
		res.Failures[i] = f.Failure
	}
	return res
}
