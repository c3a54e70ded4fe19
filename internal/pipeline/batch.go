package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/backmassage/fontsort/internal/config"
	"github.com/backmassage/fontsort/internal/display"
	"github.com/backmassage/fontsort/internal/logging"
)

// ReadBatchFile returns the root directories listed in path, one per line,
// in file order. Blank lines and lines starting with '#' are ignored.
func ReadBatchFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("batch file: %w", err)
	}
	defer f.Close()

	var roots []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		roots = append(roots, config.NormalizeDirArg(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("batch file %s: %w", path, err)
	}
	return roots, nil
}

// RunBatch organizes each root in place, one after another, and returns
// the results in input order. An unreadable root is logged, recorded in its
// result and skipped; the remaining roots still run and the joined root
// errors are returned. Cancellation stops before the next root.
func RunBatch(ctx context.Context, cfg *config.Config, log *logging.Logger, roots []string, opts ...Option) ([]RunResult, error) {
	results := make([]RunResult, 0, len(roots))
	var errs []error

	for i, root := range roots {
		if ctx.Err() != nil {
			log.Warn("Interrupted, %d director(ies) not processed", len(roots)-i)
			break
		}
		log.Info("=== [%d/%d] %s ===", i+1, len(roots), root)

		c := *cfg
		c.InputDir, c.OutputDir = root, root
		res, err := Run(ctx, &c, log, opts...)
		if err != nil {
			errs = append(errs, err)
		}
		results = append(results, res)
		log.Info("")
	}

	if len(results) > 1 {
		logBatchSummary(cfg, log, results)
	}
	return results, errors.Join(errs...)
}

func logBatchSummary(cfg *config.Config, log *logging.Logger, results []RunResult) {
	var total RunResult
	var unreadable int
	for _, r := range results {
		if r.Err != nil {
			unreadable++
			continue
		}
		total.Organized += r.Organized
		total.Skipped += r.Skipped
		total.Duplicate += r.Duplicate
		total.Failed += r.Failed
		total.NotProcessed += r.NotProcessed
		total.BytesMoved += r.BytesMoved
	}
	log.Info("==============================")
	log.Info("Batch: %d directories, %d organized, %d skipped, %d duplicate, %d failed",
		len(results), total.Organized, total.Skipped, total.Duplicate, total.Failed)
	if unreadable > 0 {
		log.Error("  Unreadable directories: %d", unreadable)
	}
	if total.NotProcessed > 0 {
		log.Warn("  Not processed (interrupted): %d", total.NotProcessed)
	}
	if !cfg.DryRun {
		log.Success("  Bytes moved: %s", display.FormatBytes(total.BytesMoved))
	}
}
