package naming

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Target is a sanitized relative placement: directory segments, a file
// stem and an extension (lower-case, with its dot).
type Target struct {
	Dir  []string
	Stem string
	Ext  string
}

// FileName returns the stem joined with the extension.
func (t Target) FileName() string {
	return t.Stem + t.Ext
}

// RelPath returns the target relative to the output root.
func (t Target) RelPath() string {
	parts := append(append([]string(nil), t.Dir...), t.FileName())
	return filepath.Join(parts...)
}

// WithSuffix returns the target with " (n)" appended to the stem.
func (t Target) WithSuffix(n int) Target {
	t.Stem = fmt.Sprintf("%s (%d)", t.Stem, n)
	return t
}

// Formatter renders identities under one scheme.
type Formatter struct {
	Scheme Scheme
	// GroupByFoundry nests the family folder under a foundry folder for
	// schemes that do not already do so.
	GroupByFoundry bool
}

// Format renders id under scheme with the default layout.
func Format(id Identity, scheme Scheme, ext string) Target {
	return Formatter{Scheme: scheme}.Format(id, ext)
}

// Format renders id into a Target. Every segment is sanitized.
func (f Formatter) Format(id Identity, ext string) Target {
	family := Sanitize(id.Family)
	foundry := Sanitize(id.Foundry)

	var stem string
	switch f.Scheme {
	case SchemeFoundryFamilySubfamily:
		stem = withSubfamily(id.Foundry+" "+id.Family, id.Subfamily)
	case SchemeFamilyWeight:
		stem = fmt.Sprintf("%s %d", id.Family, id.Weight.Value)
		if id.Italic {
			stem += " Italic"
		}
	default:
		stem = withSubfamily(id.Family, id.Subfamily)
	}

	t := Target{Stem: Sanitize(stem), Ext: normalizeExt(ext)}
	if f.Scheme == SchemeFoundryFamilyDirectory || f.GroupByFoundry {
		t.Dir = []string{foundry, family}
	} else {
		t.Dir = []string{family}
	}
	return t
}

func withSubfamily(name, sub string) string {
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return name
	}
	return name + " (" + sub + ")"
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
