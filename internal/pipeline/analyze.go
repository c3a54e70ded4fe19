package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/backmassage/fontsort/internal/config"
	"github.com/backmassage/fontsort/internal/fontmeta"
	"github.com/backmassage/fontsort/internal/foundry"
	"github.com/backmassage/fontsort/internal/fsutil"
	"github.com/backmassage/fontsort/internal/logging"
	"github.com/backmassage/fontsort/internal/planner"
	"github.com/backmassage/fontsort/internal/term"
)

// fileRow holds the resolved identity of one file for the analysis table.
type fileRow struct {
	Name      string
	Family    string
	Subfamily string
	Weight    string
	Foundry   string
	Source    foundry.Source
	Target    string
	Invalid   string // extraction error, empty when the font parsed
}

// Analyze discovers font files under cfg.InputDir, resolves each one and
// prints a table of family, subfamily, weight, foundry and target path.
// Nothing is moved or claimed.
func Analyze(ctx context.Context, cfg *config.Config, log *logging.Logger) error {
	return analyze(ctx, cfg, log, os.Stdout)
}

func analyze(ctx context.Context, cfg *config.Config, log *logging.Logger, w io.Writer) error {
	root, out, err := resolveDirs(cfg)
	if err != nil {
		return err
	}

	files, unreadable, err := Discover(root, cfg.Extensions, filepath.Join(out, cfg.DuplicatesDir))
	if err != nil {
		log.Error("Cannot read %s: %v", root, err)
		return fmt.Errorf("%w: %s: %w", ErrRootUnreadable, root, err)
	}
	for _, f := range unreadable {
		log.Warn("Cannot read directory %s: %s", f.Path, f.Reason)
	}
	if len(files) == 0 {
		log.Warn("No font files found in %s", root)
		return nil
	}

	p, err := planner.New(cfg, out, fsutil.HashFile)
	if err != nil {
		return err
	}

	total := len(files)
	log.Info("Analyzing %d files in %s …", total, root)

	isTTY := w == os.Stdout && term.IsTerminal(os.Stdout)
	rows := make([]fileRow, 0, total)
	for i, path := range files {
		if ctx.Err() != nil {
			if isTTY {
				clearProgress(w)
			}
			log.Warn("Interrupted")
			return nil
		}
		printProgress(w, isTTY, i+1, total, filepath.Base(path))

		name := relTo(root, path)
		md, err := fontmeta.Extract(path)
		if err != nil {
			rows = append(rows, fileRow{Name: name, Invalid: err.Error()})
			continue
		}
		id, res, target := p.Preview(md)
		rows = append(rows, fileRow{
			Name:      name,
			Family:    id.Family,
			Subfamily: id.Subfamily,
			Weight:    id.Weight.String(),
			Foundry:   id.Foundry,
			Source:    res.Source,
			Target:    target.RelPath(),
		})
	}
	if isTTY {
		clearProgress(w)
	}

	printAnalysisTable(w, rows)
	printAnalysisSummary(log, rows)
	return nil
}

// column widths are capped so one long name cannot push the table off
// the screen.
const maxColumn = 40

func printAnalysisTable(w io.Writer, rows []fileRow) {
	headers := []string{"File", "Family", "Subfamily", "Weight", "Foundry", "Target"}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, r := range rows {
		for i, cell := range r.cells() {
			widths[i] = max(widths[i], min(displayLen(cell), maxColumn))
		}
	}

	var header strings.Builder
	for i, h := range headers {
		fmt.Fprintf(&header, "  %-*s", widths[i], h)
	}
	line := strings.TrimRight(header.String(), " ")
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "  "+strings.Repeat("─", displayLen(line)-2))

	for _, r := range rows {
		cells := r.cells()
		var b strings.Builder
		for i, cell := range cells {
			cell = ellipsize(cell, widths[i])
			// Pad the plain text first, then wrap in ANSI color so escape
			// bytes do not count toward the column width.
			b.WriteString("  ")
			b.WriteString(colorPad(cell, widths[i], r.style(i)))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
	fmt.Fprintln(w)
}

func (r fileRow) cells() []string {
	if r.Invalid != "" {
		return []string{r.Name, "invalid", "", "", "", r.Invalid}
	}
	return []string{r.Name, r.Family, orDash(r.Subfamily), r.Weight, r.Foundry, r.Target}
}

// style returns the highlight of column i.
func (r fileRow) style(i int) term.Style {
	switch {
	case r.Invalid != "" && i == 1:
		return term.Invalid
	case r.Invalid == "" && i == 4 && r.Foundry == foundry.Unknown:
		return term.Unresolved
	}
	return term.Plain
}

func printAnalysisSummary(log *logging.Logger, rows []fileRow) {
	var invalid, unknown int
	bySource := map[foundry.Source]int{}
	for _, r := range rows {
		switch {
		case r.Invalid != "":
			invalid++
		case r.Foundry == foundry.Unknown:
			unknown++
		default:
			bySource[r.Source]++
		}
	}

	log.Info("Analyzed %d files", len(rows))
	for _, s := range []foundry.Source{foundry.SourceHint, foundry.SourceVendorID, foundry.SourcePostScript, foundry.SourceRule} {
		if n := bySource[s]; n > 0 {
			log.Info("  Foundry from %s: %d", s, n)
		}
	}
	if unknown > 0 {
		log.Dup("  %d file(s) with unknown foundry", unknown)
	}
	if invalid > 0 {
		log.Error("  %d file(s) could not be read as fonts", invalid)
	}
	if unknown == 0 && invalid == 0 {
		log.Success("  Every font resolved")
	}
}

// colorPad pads a plain string to width, then wraps it in ANSI color.
func colorPad(s string, width int, style term.Style) string {
	return term.Paint(style, s+strings.Repeat(" ", max(width-displayLen(s), 0)))
}

func displayLen(s string) int { return len([]rune(s)) }

func ellipsize(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

// printProgress shows a live counter on a TTY. In piped output it is a
// no-op.
func printProgress(w io.Writer, isTTY bool, current, total int, name string) {
	if !isTTY {
		return
	}
	width := term.Width()
	status := fmt.Sprintf("  Reading [%d/%d] %d%% %s", current, total, current*100/total, ellipsize(name, 40))
	if n := displayLen(status); n < width {
		status += strings.Repeat(" ", width-n)
	}
	fmt.Fprintf(w, "\r%s", ellipsize(status, width))
}

// clearProgress erases the inline progress line on a TTY.
func clearProgress(w io.Writer) {
	fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", term.Width()))
}
