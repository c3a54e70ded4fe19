package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/backmassage/fontsort/internal/config"
	"github.com/backmassage/fontsort/internal/display"
	"github.com/backmassage/fontsort/internal/fontmeta"
	"github.com/backmassage/fontsort/internal/fsutil"
	"github.com/backmassage/fontsort/internal/journal"
	"github.com/backmassage/fontsort/internal/logging"
	"github.com/backmassage/fontsort/internal/metrics"
	"github.com/backmassage/fontsort/internal/naming"
	"github.com/backmassage/fontsort/internal/planner"
)

var (
	// ErrIO marks a per-file filesystem failure. It wraps the os error.
	ErrIO = errors.New("i/o error")
	// ErrRootUnreadable is returned when a run's root cannot be listed.
	ErrRootUnreadable = errors.New("root unreadable")
)

// Option configures optional run sinks.
type Option func(*runner)

// WithJournal records the run and every placement in j.
func WithJournal(j *journal.Journal) Option {
	return func(r *runner) { r.journal = j }
}

// WithMetrics records per-file metrics in m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *runner) { r.metrics = m }
}

type runner struct {
	cfg     *config.Config
	log     *logging.Logger
	planner *planner.Planner
	journal *journal.Journal
	metrics *metrics.Recorder

	root, out string
	total     int
	done      atomic.Int64

	// jctx outlives cancellation so in-flight placements are still journaled.
	jctx  context.Context
	runID string

	tally tally
}

// placement is the terminal state of one file.
type placement struct {
	outcome Outcome
	plan    *planner.PlacementPlan // nil when extraction failed
	target  string
	reason  string
	err     error // set for OutcomeFailed
	bytes   int64
}

// Run organizes cfg.InputDir into cfg.OutputDir. It discovers font files,
// plans and places each one on a bounded worker pool, and returns the
// aggregate result. Per-file failures are recorded in the result; only an
// unreadable root (or an unusable configuration) is returned as an error.
//
// Cancelling ctx stops scheduling new files. Files already scheduled run to
// completion so no move is left half done.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, opts ...Option) (RunResult, error) {
	root, out, err := resolveDirs(cfg)
	if err != nil {
		return RunResult{Root: root, Err: err}, err
	}

	fail := func(cause error) (RunResult, error) {
		err := fmt.Errorf("%w: %s: %w", ErrRootUnreadable, root, cause)
		log.Error("Cannot read %s: %v", root, cause)
		return RunResult{Root: root, OutputDir: out, Err: err}, err
	}
	fi, err := os.Stat(root)
	if err != nil {
		return fail(err)
	}
	if !fi.IsDir() {
		return fail(errors.New("not a directory"))
	}

	skip := []string{filepath.Join(out, cfg.DuplicatesDir)}
	if out != root {
		skip = append(skip, out)
	}
	files, unreadable, err := Discover(root, cfg.Extensions, skip...)
	if err != nil {
		return fail(err)
	}

	p, err := planner.New(cfg, out, fsutil.HashFile)
	if err != nil {
		log.Error("Invalid configuration: %v", err)
		return RunResult{Root: root, OutputDir: out, Err: err}, err
	}

	r := &runner{
		cfg:     cfg,
		log:     log,
		planner: p,
		root:    root,
		out:     out,
		total:   len(files),
		jctx:    context.WithoutCancel(ctx),
	}
	for _, o := range opts {
		o(r)
	}
	r.tally.res = RunResult{Root: root, OutputDir: out, Total: len(files)}
	r.tally.unreadable(unreadable)
	for _, f := range unreadable {
		log.Warn("Cannot read directory %s: %s", f.Path, f.Reason)
	}

	r.begin()

	var g errgroup.Group
	g.SetLimit(max(cfg.Workers, 1))
	for i, path := range files {
		if ctx.Err() != nil {
			r.tally.interrupt(len(files) - i)
			log.Warn("Interrupted, %d file(s) not processed", len(files)-i)
			break
		}
		g.Go(func() error {
			r.processFile(i, path)
			return nil
		})
	}
	_ = g.Wait()

	res := r.tally.finish()
	r.finish(&res)
	return res, nil
}

// processFile runs one file through extract → plan → place and records
// its outcome. It never fails the run.
func (r *runner) processFile(idx int, path string) {
	start := time.Now()
	pl := r.place(path)
	r.record(idx, path, pl, time.Since(start))
}

func (r *runner) place(path string) placement {
	// --- Extract ---
	md, err := fontmeta.Extract(path)
	if err != nil {
		if !errors.Is(err, fontmeta.ErrInvalidFont) {
			err = ioErr(err)
		}
		return failed(nil, err)
	}

	// --- Hash and plan (identity → target → duplicate check) ---
	hash, err := fsutil.HashFile(path)
	if err != nil {
		return failed(nil, ioErr(err))
	}
	plan, err := r.planner.Plan(md, hash)
	if err != nil {
		return failed(nil, ioErr(err))
	}

	switch {
	case plan.Duplicate:
		return r.duplicate(plan)
	case plan.Action == naming.ActionSkip:
		return placement{outcome: OutcomeSkipped, plan: plan, target: plan.TargetPath, reason: plan.Reason}
	}

	// --- Dry-run ---
	if r.cfg.DryRun {
		return placement{outcome: OutcomeOrganized, plan: plan, target: plan.TargetPath}
	}

	// --- Move ---
	res, err := fsutil.Move(plan.SourcePath, plan.TargetPath)
	if err != nil {
		r.planner.Release(plan)
		return failed(plan, ioErr(err))
	}
	if res.SourceRemoveErr != nil {
		r.log.Warn("Copied %s but could not remove the original: %v", r.relIn(path), res.SourceRemoveErr)
	}
	return placement{outcome: OutcomeOrganized, plan: plan, target: plan.TargetPath, bytes: res.Bytes}
}

// duplicate handles identical content: left in place by default, or moved
// under the duplicates folder.
func (r *runner) duplicate(plan *planner.PlacementPlan) placement {
	pl := placement{outcome: OutcomeDuplicate, plan: plan, target: plan.DuplicateOf, reason: plan.Reason}
	if r.cfg.Duplicates != config.DuplicatesMove {
		return pl
	}

	d, err := r.planner.Aside(plan)
	if err != nil {
		return failed(plan, ioErr(err))
	}
	if d.Action == naming.ActionSkip {
		pl.reason += ", already in " + r.cfg.DuplicatesDir
		return pl
	}
	pl.target = d.Path
	if r.cfg.DryRun {
		return pl
	}
	res, err := fsutil.Move(plan.SourcePath, d.Path)
	if err != nil {
		r.planner.ReleaseAside(d, plan.SourcePath)
		return failed(plan, ioErr(err))
	}
	pl.bytes = res.Bytes
	return pl
}

func failed(plan *planner.PlacementPlan, err error) placement {
	return placement{outcome: OutcomeFailed, plan: plan, reason: err.Error(), err: err}
}

// ioErr tags err as an I/O failure unless it already is one.
func ioErr(err error) error {
	if errors.Is(err, ErrIO) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}

// --- Recording ---

func (r *runner) record(idx int, path string, pl placement, elapsed time.Duration) {
	r.tally.add(idx, path, pl.outcome, pl.err, pl.bytes)
	r.metrics.ObserveFile(string(pl.outcome), elapsed)
	r.metrics.AddBytes(pl.bytes)

	n := r.done.Add(1)
	r.logPlacement(n, path, pl)

	fields := []zap.Field{
		zap.String("path", path),
		zap.String("outcome", string(pl.outcome)),
		zap.String("target", pl.target),
		zap.Int64("bytes", pl.bytes),
		zap.Duration("elapsed", elapsed),
	}
	var hash uint64
	if p := pl.plan; p != nil {
		hash = p.Hash
		fields = append(fields,
			zap.Stringer("action", p.Action),
			zap.String("family", p.Identity.Family),
			zap.String("subfamily", p.Identity.Subfamily),
			zap.Int("weight", p.Identity.Weight.Value),
			zap.String("foundry", p.Identity.Foundry),
			zap.String("foundry_source", string(p.FoundrySource)),
		)
	}
	if pl.reason != "" {
		fields = append(fields, zap.String("reason", pl.reason))
	}
	r.log.Event("placement", fields...)

	if r.journal != nil && r.runID != "" {
		err := r.journal.Record(r.jctx, journal.Placement{
			RunID:   r.runID,
			Seq:     idx,
			Source:  path,
			Target:  pl.target,
			Outcome: string(pl.outcome),
			Reason:  pl.reason,
			Hash:    hash,
			Bytes:   pl.bytes,
		})
		if err != nil {
			r.log.Warn("Journal: %v", err)
		}
	}
}

func (r *runner) logPlacement(n int64, path string, pl placement) {
	prefix := fmt.Sprintf("[%d/%d] %s", n, r.total, r.relIn(path))
	switch pl.outcome {
	case OutcomeOrganized:
		verb := "->"
		if r.cfg.DryRun {
			verb = "[DRY] would move to"
		}
		line := fmt.Sprintf("%s %s %s", prefix, verb, r.relOut(pl.target))
		if pl.plan.Action == naming.ActionRenameSuffix {
			line += fmt.Sprintf(" (name taken, suffix %d)", pl.plan.Suffix)
		}
		r.log.Success("%s", line)
	case OutcomeSkipped:
		r.log.Info("%s: skip (%s)", prefix, pl.reason)
	case OutcomeDuplicate:
		if r.cfg.Duplicates == config.DuplicatesMove && pl.target != pl.plan.DuplicateOf {
			r.log.Dup("%s: %s, moved to %s", prefix, r.relDup(pl.plan.DuplicateOf), r.relOut(pl.target))
		} else {
			r.log.Dup("%s: %s", prefix, r.relDup(pl.plan.DuplicateOf))
		}
	case OutcomeFailed:
		r.log.Error("%s: %s", prefix, pl.reason)
	}
	if p := pl.plan; p != nil {
		r.log.Debug(r.cfg.Verbose, "  %s / %s / %s / foundry %s (%s)",
			p.Identity.Family, orDash(p.Identity.Subfamily), p.Identity.Weight, p.Identity.Foundry, p.FoundrySource)
	}
}

func (r *runner) relDup(dupOf string) string {
	return "duplicate of " + r.relOut(dupOf)
}

func (r *runner) relIn(path string) string  { return relTo(r.root, path) }
func (r *runner) relOut(path string) string { return relTo(r.out, path) }

func relTo(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// --- Run start / finish ---

func (r *runner) begin() {
	cfg := r.cfg
	r.log.Info("Found %d font files in %s", r.total, r.root)
	if r.out != r.root {
		r.log.Info("Output: %s", r.out)
	}
	layout := "Family/"
	if cfg.GroupByFoundry || cfg.Scheme == naming.SchemeFoundryFamilyDirectory {
		layout = "Foundry/Family/"
	}
	r.log.Info("Scheme: %s (%s), workers: %d", cfg.Scheme, layout, max(cfg.Workers, 1))
	if cfg.Duplicates == config.DuplicatesMove {
		r.log.Info("Duplicates: moved to %s", filepath.Join(r.out, cfg.DuplicatesDir))
	} else {
		r.log.Info("Duplicates: left in place")
	}
	if cfg.DryRun {
		r.log.Warn("DRY RUN: no files will be moved")
	}

	r.log.Event("run_start",
		zap.String("root", r.root),
		zap.String("output", r.out),
		zap.Stringer("scheme", cfg.Scheme),
		zap.Int("files", r.total),
		zap.Bool("dry_run", cfg.DryRun),
	)

	if r.journal == nil {
		return
	}
	id, err := r.journal.BeginRun(r.jctx, journal.Run{
		Root:      r.root,
		OutputDir: r.out,
		Scheme:    cfg.Scheme.String(),
		DryRun:    cfg.DryRun,
	})
	if err != nil {
		r.log.Warn("Journal disabled for this run: %v", err)
		return
	}
	r.runID = id
	r.log.Debug(cfg.Verbose, "Journal run id: %s", id)
}

func (r *runner) finish(res *RunResult) {
	now := time.Now()
	r.metrics.RunFinished(now)
	if r.journal != nil && r.runID != "" {
		err := r.journal.FinishRun(r.jctx, r.runID, journal.Summary{
			Organized:    res.Organized,
			Skipped:      res.Skipped,
			Duplicate:    res.Duplicate,
			Failed:       res.Failed,
			NotProcessed: res.NotProcessed,
			BytesMoved:   res.BytesMoved,
			Interrupted:  res.Interrupted,
			FinishedAt:   now,
		})
		if err != nil {
			r.log.Warn("Journal: %v", err)
		}
	}
	r.log.Event("run_finish",
		zap.String("root", r.root),
		zap.Int("organized", res.Organized),
		zap.Int("skipped", res.Skipped),
		zap.Int("duplicate", res.Duplicate),
		zap.Int("failed", res.Failed),
		zap.Int("not_processed", res.NotProcessed),
		zap.Int64("bytes_moved", res.BytesMoved),
	)
	logSummary(r.cfg, r.log, res)
}

func logSummary(cfg *config.Config, log *logging.Logger, res *RunResult) {
	log.Info("==============================")
	log.Info("Done: %d organized, %d skipped, %d duplicate, %d failed",
		res.Organized, res.Skipped, res.Duplicate, res.Failed)
	log.Info("  Total files processed: %d of %d", res.Processed(), res.Total)
	if res.NotProcessed > 0 {
		log.Warn("  Not processed (interrupted): %d", res.NotProcessed)
	}
	if cfg.DryRun {
		log.Info("  Bytes moved: n/a (dry run)")
	} else {
		log.Success("  Bytes moved: %s", display.FormatBytes(res.BytesMoved))
	}
	if len(res.Failures) > 0 {
		log.Error("  Failures:")
		for _, f := range res.Failures {
			log.Error("    %s: %s", relTo(res.Root, f.Path), f.Reason)
		}
	}
}
