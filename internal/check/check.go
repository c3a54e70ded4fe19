// Package check provides environment diagnostics (--check mode) and the
// pre-run path validation (CheckPaths) for roots, the output directory and
// the optional journal and metrics sinks.
package check

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/backmassage/fontsort/internal/config"
	"github.com/backmassage/fontsort/internal/fontmeta"
	"github.com/backmassage/fontsort/internal/journal"
	"github.com/backmassage/fontsort/internal/pipeline"
)

// Sentinel errors returned by CheckPaths.
var (
	ErrRootNotDir        = errors.New("root is not a readable directory")
	ErrOutputNotWritable = errors.New("output directory is not writable")
	ErrParserSelfTest    = errors.New("font parser self-test failed")
)

// Logger is the subset of *logging.Logger used by RunCheck.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// RunCheck runs the interactive --check flow: the font parser self-test,
// every configured root, the output directory, whether moves will be
// renames or copies, and the journal and metrics destinations. It keeps
// going after a failure and reports whether everything passed.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkParser(log)
	roots, rootsOK := checkRoots(cfg, log)
	ok = rootsOK && ok
	if cfg.InputDir != "" && !cfg.Analyze {
		ok = checkOutput(cfg, log) && ok
	}
	for _, root := range roots {
		checkSameDevice(root, outputFor(cfg, root), log)
	}
	ok = checkJournal(cfg, log) && ok
	ok = checkMetricsFile(cfg, log) && ok

	if ok {
		log.Success("All checks passed")
	} else {
		log.Error("Some checks failed")
	}
	return ok
}

// checkParser parses an embedded TrueType font to prove the parser works
// in this build.
func checkParser(log Logger) bool {
	if err := parserSelfTest(); err != nil {
		log.Error("Font parser: %v", err)
		return false
	}
	log.Success("Font parser: TrueType/OpenType/collections, WOFF and WOFF2")
	return true
}

func parserSelfTest() error {
	md, err := fontmeta.SFNTParser{}.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrParserSelfTest, err)
	}
	if md.Family != "Go" {
		return fmt.Errorf("%w: family %q, want \"Go\"", ErrParserSelfTest, md.Family)
	}
	return nil
}

// checkRoots verifies the root (or every batch root) is a readable
// directory and returns the ones that are.
func checkRoots(cfg *config.Config, log Logger) ([]string, bool) {
	var roots []string
	switch {
	case cfg.BatchFile != "":
		r, err := pipeline.ReadBatchFile(cfg.BatchFile)
		if err != nil {
			log.Error("%v", err)
			return nil, false
		}
		log.Info("Batch file: %s (%d directories)", cfg.BatchFile, len(r))
		roots = r
	case cfg.InputDir != "":
		roots = []string{cfg.InputDir}
	default:
		log.Info("No root given; skipping path checks")
		return nil, true
	}

	ok := true
	var readable []string
	for _, root := range roots {
		if err := CheckRoot(root); err != nil {
			log.Error("Root %s: %v", root, err)
			ok = false
			continue
		}
		files, _, err := pipeline.Discover(root, cfg.Extensions)
		if err != nil {
			log.Error("Root %s: %v", root, err)
			ok = false
			continue
		}
		log.Success("Root %s: %d font files", root, len(files))
		readable = append(readable, root)
	}
	return readable, ok
}

func checkOutput(cfg *config.Config, log Logger) bool {
	if err := CheckWritable(cfg.OutputDir); err != nil {
		log.Error("Output %s: %v", cfg.OutputDir, err)
		return false
	}
	log.Success("Output %s: writable", cfg.OutputDir)
	return true
}

// checkSameDevice reports whether moves from root into out will be plain
// renames or the copy, verify and delete fallback. Informational only.
func checkSameDevice(root, out string, log Logger) {
	if root == out {
		return
	}
	same, err := SameDevice(root, out)
	switch {
	case err != nil:
		log.Debug(true, "Could not compare devices of %s and %s: %v", root, out, err)
	case same:
		log.Info("Moves from %s: rename", root)
	default:
		log.Warn("Moves from %s cross filesystems: files will be copied, verified, then deleted", root)
	}
}

func checkJournal(cfg *config.Config, log Logger) bool {
	if cfg.JournalPath == "" {
		return true
	}
	j, err := journal.Open(cfg.JournalPath)
	if err != nil {
		log.Error("Journal %s: %v", cfg.JournalPath, err)
		return false
	}
	j.Close()
	log.Success("Journal %s: ok", cfg.JournalPath)
	return true
}

func checkMetricsFile(cfg *config.Config, log Logger) bool {
	if cfg.MetricsFile == "" {
		return true
	}
	if err := CheckWritable(filepath.Dir(cfg.MetricsFile)); err != nil {
		log.Error("Metrics file %s: %v", cfg.MetricsFile, err)
		return false
	}
	log.Success("Metrics file %s: directory writable", cfg.MetricsFile)
	return true
}

// CheckPaths is the pre-run validation for a single root: the root must
// be a readable directory and, unless nothing will be written, the output
// directory must accept new files. Returns a sentinel error on failure.
func CheckPaths(cfg *config.Config) error {
	if err := CheckRoot(cfg.InputDir); err != nil {
		return err
	}
	if cfg.DryRun || cfg.Analyze {
		return nil
	}
	return CheckWritable(outputFor(cfg, cfg.InputDir))
}

// CheckRoot reports whether root is a directory that can be listed.
func CheckRoot(root string) error {
	f, err := os.Open(root)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRootNotDir, err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRootNotDir, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("%w: %s", ErrRootNotDir, root)
	}
	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrRootNotDir, err)
	}
	return nil
}

// CheckWritable creates and removes a scratch file in dir. A missing dir is
// checked through its nearest existing parent, since moves create it.
func CheckWritable(dir string) error {
	dir, err := existingDir(dir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOutputNotWritable, err)
	}
	f, err := os.CreateTemp(dir, ".fontsort-check-*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOutputNotWritable, err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

// existingDir returns dir, or its nearest ancestor that exists.
func existingDir(dir string) (string, error) {
	for {
		fi, err := os.Stat(dir)
		if err == nil {
			if !fi.IsDir() {
				return "", fmt.Errorf("%s is not a directory", dir)
			}
			return dir, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", err
		}
		dir = parent
	}
}

// SameDevice reports whether a and b live on the same filesystem, by
// attempting a rename of a scratch file from a into b (or the nearest
// existing ancestor of b).
func SameDevice(a, b string) (bool, error) {
	b, err := existingDir(b)
	if err != nil {
		return false, err
	}
	f, err := os.CreateTemp(a, ".fontsort-dev-*")
	if err != nil {
		return false, err
	}
	src := f.Name()
	f.Close()
	defer os.Remove(src)

	dst := filepath.Join(b, filepath.Base(src))
	err = os.Rename(src, dst)
	switch {
	case err == nil:
		os.Remove(dst)
		return true, nil
	case errors.Is(err, syscall.EXDEV):
		return false, nil
	default:
		return false, err
	}
}

func outputFor(cfg *config.Config, root string) string {
	if cfg.BatchFile != "" || cfg.OutputDir == "" {
		return root
	}
	return cfg.OutputDir
}
