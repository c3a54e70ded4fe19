// Package pipeline orchestrates font discovery, per-file placement, batch
// runs and summary reporting.
//
// A run walks one root, then sends every font file through
// extract → identity → target → duplicate check → move on a bounded
// worker pool. Each file ends in exactly one outcome (organized, skipped,
// duplicate or failed) and [RunResult] aggregates them. Per-file errors
// never abort a run; only an unreadable root does.
//
// Files:
//   - runner.go: Run, per-file placement, logging, journal and metrics hooks
//   - discover.go: Discover (extension filter, hidden and duplicates dirs pruned)
//   - batch.go: ReadBatchFile, RunBatch
//   - analyze.go: Analyze (identity table, nothing moved)
//   - stats.go: RunResult and the mutex-guarded tally
package pipeline
