// Package config holds runtime configuration: defaults, an optional YAML
// file, CLI flag parsing, and validation. Precedence is defaults < file <
// flags.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/backmassage/fontsort/internal/foundry"
	"github.com/backmassage/fontsort/internal/naming"
)

// --- Enum types for validated string fields ---

// DuplicateMode controls what happens to identical-content duplicates.
type DuplicateMode string

const (
	DuplicatesLeave DuplicateMode = "leave" // Leave duplicates where they are (default).
	DuplicatesMove  DuplicateMode = "move"  // Move duplicates into DuplicatesDir.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// DefaultExtensions are the font file extensions discovered by default.
var DefaultExtensions = []string{".ttf", ".otf", ".ttc", ".otc", ".woff", ".woff2"}

// Config holds all runtime settings. It is populated by [DefaultConfig],
// overlaid by [LoadFile] and then by [ParseFlags] before being passed (by
// pointer) to packages that need it.
type Config struct {
	// Paths (set from positional args).
	InputDir   string
	OutputDir  string // Default: InputDir (organize in place).
	BatchFile  string // --batch: one root per line, organized in place.
	ConfigFile string // --config: YAML file applied before flags.

	// Organization.
	Scheme         naming.Scheme      // Default: family-subfamily.
	GroupByFoundry bool               // Nest family folders under a foundry folder.
	Duplicates     DuplicateMode      // Default: "leave".
	DuplicatesDir  string             // Default: "duplicates", relative to the output root.
	Extensions     []string           // Default: DefaultExtensions.
	FoundryRules   []foundry.RuleSpec // Tried before the built-in foundry table.
	Workers        int                // Default: runtime.NumCPU().

	// Behavior flags.
	DryRun    bool
	Analyze   bool // Print the identity table and exit without moving.
	CheckOnly bool // Run environment diagnostics and exit.

	// Run records.
	JournalPath string // SQLite run journal (optional).
	MetricsFile string // Prometheus textfile output (optional).

	// Display and logging.
	Verbose   bool      // --debug / --verbose.
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional structured log file path.
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// [LoadFile] and [ParseFlags] apply overrides.
func DefaultConfig() Config {
	return Config{
		Scheme:        naming.SchemeFamilySubfamily,
		Duplicates:    DuplicatesLeave,
		DuplicatesDir: "duplicates",
		Extensions:    append([]string(nil), DefaultExtensions...),
		Workers:       runtime.NumCPU(),
		ColorMode:     ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and ranges, normalizes extensions, and
// requires either a root directory or a batch file (not both).
func (c *Config) Validate() error {
	if c.Scheme < naming.SchemeFamilySubfamily || c.Scheme > naming.SchemeFoundryFamilyDirectory {
		return fmt.Errorf("invalid scheme (use one of %s)", strings.Join(naming.SchemeNames(), ", "))
	}

	switch c.Duplicates {
	case DuplicatesLeave, DuplicatesMove:
		// valid
	default:
		return errors.New("invalid duplicates mode (use 'leave' or 'move')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1 (got %d)", c.Workers)
	}

	dd := filepath.Clean(c.DuplicatesDir)
	if c.DuplicatesDir == "" || filepath.IsAbs(dd) || dd == "." || strings.HasPrefix(dd, "..") {
		return fmt.Errorf("duplicates_dir must be a relative directory inside the output root (got %q)", c.DuplicatesDir)
	}
	c.DuplicatesDir = dd

	exts, err := normalizeExtensions(c.Extensions)
	if err != nil {
		return err
	}
	c.Extensions = exts

	if _, err := foundry.CompileRules(c.FoundryRules); err != nil {
		return err
	}

	if c.BatchFile != "" {
		if c.InputDir != "" {
			return errors.New("--batch cannot be combined with a root directory")
		}
		return nil
	}
	if c.InputDir == "" && c.CheckOnly {
		return nil
	}
	if c.InputDir == "" {
		return errors.New("need a root directory (or --batch <file>)")
	}
	if c.OutputDir == "" {
		c.OutputDir = c.InputDir
	}
	return nil
}

// normalizeExtensions lower-cases entries, adds a leading dot, and drops
// duplicates while keeping order.
func normalizeExtensions(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, e := range raw {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, errors.New("extensions must not be empty")
	}
	return out, nil
}

// ValidatePaths ensures a separate output directory is not nested inside
// the input directory, which would make discovery walk its own output.
// Equal paths mean in-place organization and are allowed. Both arguments
// must be absolute, symlink-resolved paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	if outputAbs == inputAbs {
		return nil
	}
	sep := string(filepath.Separator)
	if strings.HasPrefix(outputAbs+sep, inputAbs+sep) {
		return errors.New("output directory must not be inside input directory (pass only the root to organize in place)")
	}
	return nil
}
