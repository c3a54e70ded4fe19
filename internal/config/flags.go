package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into organization, behavior, records, display, and utility.
// Negated and exclusive flags are applied after Parse so Config defaults hold unless set.

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/backmassage/fontsort/internal/naming"
)

// version is shown in --version and help; override at build time with
// -ldflags "-X github.com/backmassage/fontsort/internal/config.version=...".
var version = "1.0.0-dev"

// Version returns the build version string.
func Version() string { return version }

// ParseFlags parses os.Args into cfg. On --help or --version it prints and exits.
// On error it returns non-nil (e.g. unknown flag, missing positional args).
func ParseFlags(cfg *Config) error {
	return ParseArgs(cfg, os.Args[1:])
}

// ParseArgs is ParseFlags over an explicit argument list. A --config file,
// if named, is loaded before flags so flags override it.
func ParseArgs(cfg *Config, args []string) error {
	if path := configArg(args); path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return fmt.Errorf("config file: %w", err)
		}
	}

	fs := flag.NewFlagSet("fontsort", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs) }

	// Negated/exclusive flags: we capture them then apply to cfg after Parse,
	// so that defaults (and file values) hold unless the user passes the flag.
	var post postFlags

	defineOrganizationFlags(fs, cfg, &post)
	defineBehaviorFlags(fs, cfg)
	defineRecordFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &post)
	defineUtilityFlags(fs, &post)

	if err := fs.Parse(args); err != nil {
		return err
	}

	if post.showHelp {
		printUsage(fs)
		os.Exit(0)
	}
	if post.showVersion {
		fmt.Fprintln(os.Stdout, "fontsort v"+version)
		os.Exit(0)
	}

	if err := applyPostFlags(cfg, &post); err != nil {
		return err
	}
	return parsePositionalArgs(fs, cfg)
}

// postFlags holds flags that are applied after Parse.
// These either invert a default, select a scheme exclusively, or trigger exit.
type postFlags struct {
	scheme                 string
	foundryFamilySubfamily bool
	familyWeight           bool
	foundryFamily          bool
	forceColor             bool
	noColor                bool
	showVersion            bool
	showHelp               bool
}

// configArg finds the value of --config/-config in args without parsing
// the rest, so the file can seed flag defaults.
func configArg(args []string) string {
	for i, a := range args {
		if a == "--" {
			break
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if !strings.HasPrefix(a, "-") || name != "config" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// defineOrganizationFlags registers the scheme selectors, --group-by-foundry, duplicates handling, extensions and workers.
func defineOrganizationFlags(fs *flag.FlagSet, cfg *Config, p *postFlags) {
	fs.StringVar(&p.scheme, "scheme", "", "Naming scheme: "+strings.Join(naming.SchemeNames(), " | "))
	fs.BoolVar(&p.foundryFamilySubfamily, "foundry-family-subfamily", false, "Name files \"Foundry Family (Subfamily)\"")
	fs.BoolVar(&p.familyWeight, "family-weight", false, "Name files \"Family 700\"")
	fs.BoolVar(&p.foundryFamily, "foundry-family", false, "Place files under Foundry/Family/")
	fs.BoolVar(&cfg.GroupByFoundry, "group-by-foundry", cfg.GroupByFoundry, "Nest family folders under a foundry folder")
	fs.Var(&duplicateModeValue{&cfg.Duplicates}, "duplicates", "Identical duplicates: leave | move")
	fs.StringVar(&cfg.DuplicatesDir, "duplicates-dir", cfg.DuplicatesDir, "Folder for moved duplicates, relative to the output root")
	fs.Var(&listValue{&cfg.Extensions}, "extensions", "Comma-separated font extensions to discover")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of files processed in parallel")
	fs.IntVar(&cfg.Workers, "j", cfg.Workers, "Same as --workers")
}

// defineBehaviorFlags registers dry-run, analyze, check, batch and config.
func defineBehaviorFlags(fs *flag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Preview only; do not move files")
	fs.BoolVar(&cfg.DryRun, "d", false, "Same as --dry-run")
	fs.BoolVar(&cfg.Analyze, "analyze", false, "Print resolved identities and targets, then exit")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run environment diagnostics and exit")
	fs.StringVar(&cfg.BatchFile, "batch", "", "File listing root directories, one per line")
	fs.StringVar(&cfg.BatchFile, "b", "", "Same as --batch")
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "YAML config file (applied before flags)")
}

// defineRecordFlags registers --journal and --metrics-file.
func defineRecordFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.JournalPath, "journal", cfg.JournalPath, "Record runs and placements in a SQLite journal")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write Prometheus metrics to this textfile")
}

// defineDisplayFlags registers --color, --no-color, --debug, verbose, --log.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, p *postFlags) {
	fs.BoolVar(&p.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&p.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "debug", cfg.Verbose, "Debug output")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Same as --debug")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Same as --debug")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append structured JSON logs to file")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "Same as --log")
}

// defineUtilityFlags registers --version and --help (exit after printing).
func defineUtilityFlags(fs *flag.FlagSet, p *postFlags) {
	fs.BoolVar(&p.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&p.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&p.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&p.showHelp, "h", false, "Same as --help")
}

// applyPostFlags resolves the scheme selectors (at most one) and the color overrides.
func applyPostFlags(cfg *Config, p *postFlags) error {
	var picked []string
	if p.scheme != "" {
		s, err := naming.ParseScheme(p.scheme)
		if err != nil {
			return err
		}
		cfg.Scheme = s
		picked = append(picked, "--scheme")
	}
	if p.foundryFamilySubfamily {
		cfg.Scheme = naming.SchemeFoundryFamilySubfamily
		picked = append(picked, "--foundry-family-subfamily")
	}
	if p.familyWeight {
		cfg.Scheme = naming.SchemeFamilyWeight
		picked = append(picked, "--family-weight")
	}
	if p.foundryFamily {
		cfg.Scheme = naming.SchemeFoundryFamilyDirectory
		picked = append(picked, "--foundry-family")
	}
	if len(picked) > 1 {
		return fmt.Errorf("naming scheme flags are mutually exclusive (got %s)", strings.Join(picked, ", "))
	}

	if p.noColor {
		cfg.ColorMode = ColorNever
	} else if p.forceColor {
		cfg.ColorMode = ColorAlways
	}
	return nil
}

// parsePositionalArgs sets InputDir and OutputDir from <root> [output_dir].
// Batch mode takes no positional args.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()
	if cfg.BatchFile != "" {
		if len(args) != 0 {
			return fmt.Errorf("--batch takes no positional arguments (got %d)", len(args))
		}
		return nil
	}
	switch len(args) {
	case 0:
		if cfg.CheckOnly {
			return nil
		}
		return fmt.Errorf("need <root> [output_dir] or --batch <file>")
	case 1:
		cfg.InputDir = NormalizeDirArg(args[0])
		cfg.OutputDir = cfg.InputDir
	case 2:
		cfg.InputDir = NormalizeDirArg(args[0])
		cfg.OutputDir = NormalizeDirArg(args[1])
	default:
		return fmt.Errorf("need <root> [output_dir] or --batch <file>")
	}
	return nil
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(fs *flag.FlagSet) {
	const col1 = 34 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "fontsort v" + version + ": organize font files by foundry, family and weight"},
		{"", ""},
		{"  fontsort [OPTIONS] <root> [output_dir]", ""},
		{"  fontsort [OPTIONS] --batch <file>", ""},
		{"", ""},
		{"Naming", ""},
		{"  --scheme <name>", "family-subfamily (default), foundry-family-subfamily,"},
		{"", strings.Repeat(" ", col1) + "family-weight, foundry-family"},
		{"  --foundry-family-subfamily", "\"Linotype Helvetica (Bold).ttf\""},
		{"  --family-weight", "\"Helvetica 700.ttf\""},
		{"  --foundry-family", "Linotype/Helvetica/\"Helvetica (Bold).ttf\""},
		{"  --group-by-foundry", "Nest family folders under a foundry folder"},
		{"", ""},
		{"Behavior", ""},
		{"  -d, --dry-run", "Preview only; do not move files"},
		{"  --analyze", "Print resolved identities and targets, then exit"},
		{"  --check", "Check parser, paths, journal and metrics output, then exit"},
		{"  -b, --batch <file>", "Organize each directory listed in <file>"},
		{"  --duplicates <leave|move>", "Identical duplicates (default: leave)"},
		{"  --duplicates-dir <dir>", "Folder for moved duplicates (default: duplicates)"},
		{"  --extensions <list>", "Extensions to discover (default: " + strings.Join(DefaultExtensions, ",") + ")"},
		{"  -j, --workers <n>", "Files processed in parallel (default: CPU count)"},
		{"  --config <file>", "YAML config file (flags override it)"},
		{"", ""},
		{"Records", ""},
		{"  --journal <db>", "Record runs and placements in a SQLite journal"},
		{"  --metrics-file <path>", "Write Prometheus metrics (textfile format)"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --debug", "Debug output"},
		{"  -l, --log <path>", "Append structured JSON logs to file"},
		{"", ""},
		{"Utility", ""},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(os.Stderr)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(os.Stderr, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(os.Stderr, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// flag.Value adapters so we can use enum and list types with flag.Var.

type duplicateModeValue struct{ p *DuplicateMode }

func (d *duplicateModeValue) String() string { return string(*d.p) }
func (d *duplicateModeValue) Set(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "leave":
		*d.p = DuplicatesLeave
	case "move":
		*d.p = DuplicatesMove
	default:
		return fmt.Errorf("invalid duplicates mode %q (use 'leave' or 'move')", s)
	}
	return nil
}

type colorModeValue struct{ p *ColorMode }

func (c *colorModeValue) String() string { return string(*c.p) }
func (c *colorModeValue) Set(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto":
		*c.p = ColorAuto
	case "always":
		*c.p = ColorAlways
	case "never":
		*c.p = ColorNever
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", s)
	}
	return nil
}

type listValue struct{ p *[]string }

func (l *listValue) String() string {
	if l.p == nil {
		return ""
	}
	return strings.Join(*l.p, ",")
}
func (l *listValue) Set(s string) error {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fmt.Errorf("empty list %q", s)
	}
	*l.p = out
	return nil
}
