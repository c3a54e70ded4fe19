// Command fontsort is the CLI entrypoint for the fontsort font organizer.
//
// It parses flags, validates configuration and paths, then runs the
// environment check (--check), prints the identity table (--analyze) or
// organizes one root or a batch of roots.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/backmassage/fontsort/internal/check"
	"github.com/backmassage/fontsort/internal/config"
	"github.com/backmassage/fontsort/internal/display"
	"github.com/backmassage/fontsort/internal/journal"
	"github.com/backmassage/fontsort/internal/logging"
	"github.com/backmassage/fontsort/internal/metrics"
	"github.com/backmassage/fontsort/internal/pipeline"
)

// commit is injected at build time via -ldflags "-X main.commit=...".
var commit = "unknown"

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr.
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "fontsort: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "fontsort: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fontsort: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available; all output goes through log from here on.
	display.PrintBanner()
	log.Info("=== fontsort v%s (%s) ===", config.Version(), commit)
	if cfg.ConfigFile != "" {
		log.Info("Config: %s", cfg.ConfigFile)
	}

	// Phase 3: Signal handling. Cancel on SIGINT/SIGTERM so no new files
	// are scheduled; moves already under way complete.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("Received interrupt, finishing files in progress…")
		cancel()
	}()

	if cfg.CheckOnly {
		if !check.RunCheck(&cfg, log) {
			return 1
		}
		return 0
	}

	if cfg.BatchFile != "" {
		return runBatch(ctx, &cfg, log)
	}
	return runRoot(ctx, &cfg, log)
}

// runRoot validates the root and output paths, then analyzes or organizes.
func runRoot(ctx context.Context, cfg *config.Config, log *logging.Logger) int {
	inputAbs, err := absPath(cfg.InputDir)
	if err != nil {
		log.Error("Input not found: %s", cfg.InputDir)
		return 1
	}
	if cfg.OutputDir != cfg.InputDir && !cfg.DryRun && !cfg.Analyze {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			log.Error("Cannot create output directory: %s", cfg.OutputDir)
			return 1
		}
	}
	outputAbs, err := absPath(cfg.OutputDir)
	if err != nil {
		// A dry run may name an output directory that does not exist yet.
		if outputAbs, err = filepath.Abs(cfg.OutputDir); err != nil {
			log.Error("Cannot resolve output path: %s", cfg.OutputDir)
			return 1
		}
	}
	if err := cfg.ValidatePaths(inputAbs, outputAbs); err != nil {
		log.Error("%v", err)
		log.Error("Choose an output path outside: %s", cfg.InputDir)
		return 1
	}
	if err := check.CheckPaths(cfg); err != nil {
		log.Error("%v", err)
		return 1
	}

	if cfg.Analyze {
		if err := pipeline.Analyze(ctx, cfg, log); err != nil {
			return 1
		}
		return 0
	}

	opts, done := openSinks(cfg, log)
	defer done()

	if _, err := pipeline.Run(ctx, cfg, log, opts...); err != nil {
		return 1
	}
	return 0
}

// runBatch organizes every root listed in the batch file, in place.
func runBatch(ctx context.Context, cfg *config.Config, log *logging.Logger) int {
	roots, err := pipeline.ReadBatchFile(cfg.BatchFile)
	if err != nil {
		log.Error("%v", err)
		return 1
	}
	if len(roots) == 0 {
		log.Warn("Batch file %s lists no directories", cfg.BatchFile)
		return 0
	}
	log.Info("Batch: %d directories from %s", len(roots), cfg.BatchFile)

	if cfg.Analyze {
		code := 0
		for _, root := range roots {
			if ctx.Err() != nil {
				break
			}
			c := *cfg
			c.InputDir, c.OutputDir = root, root
			if err := pipeline.Analyze(ctx, &c, log); err != nil {
				code = 1
			}
		}
		return code
	}

	opts, done := openSinks(cfg, log)
	defer done()

	// Unreadable roots were logged as they were reached.
	if _, err := pipeline.RunBatch(ctx, cfg, log, roots, opts...); err != nil {
		return 1
	}
	return 0
}

// openSinks opens the optional journal and metrics recorder. Neither can
// fail the run: problems are logged and the sink is skipped. The returned
// func closes the journal and writes the metrics file.
func openSinks(cfg *config.Config, log *logging.Logger) ([]pipeline.Option, func()) {
	var opts []pipeline.Option
	var j *journal.Journal
	var m *metrics.Recorder

	if cfg.JournalPath != "" {
		var err error
		if j, err = journal.Open(cfg.JournalPath); err != nil {
			log.Warn("Journal disabled: %v", err)
			j = nil
		} else {
			opts = append(opts, pipeline.WithJournal(j))
			log.Info("Journal: %s", cfg.JournalPath)
		}
	}
	if cfg.MetricsFile != "" {
		m = metrics.New()
		opts = append(opts, pipeline.WithMetrics(m))
	}

	return opts, func() {
		if j != nil {
			if err := j.Close(); err != nil {
				log.Warn("Journal: %v", err)
			}
		}
		if m != nil {
			if err := m.WriteFile(cfg.MetricsFile); err != nil {
				log.Warn("Cannot write metrics to %s: %v", cfg.MetricsFile, err)
			} else {
				log.Debug(cfg.Verbose, "Metrics written to %s", cfg.MetricsFile)
			}
		}
	}
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of input vs output directory hierarchies.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
