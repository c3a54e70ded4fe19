// Package foundry resolves the foundry (type vendor) of a font from its
// metadata hint, its PostScript name, or recognizable family naming
// conventions.
//
// Resolution never fails: when nothing identifies the foundry the sentinel
// [Unknown] is returned.
package foundry

import (
	"strings"
)

// Unknown is the sentinel foundry for fonts that cannot be attributed.
const Unknown = "Unknown"

// Source records which step produced a resolution, for debug logging.
type Source string

const (
	SourceHint       Source = "hint"
	SourceVendorID   Source = "vendor-id"
	SourcePostScript Source = "postscript"
	SourceRule       Source = "rule"
	SourceFallback   Source = "fallback"
)

// Result is the outcome of a resolution.
type Result struct {
	Foundry string
	Source  Source
	Rule    string // name of the matching rule when Source is SourceRule
}

// Resolver evaluates foundry rules in a fixed order. A Resolver is
// immutable after construction and safe for concurrent use.
type Resolver struct {
	rules []Rule
}

// NewResolver returns a resolver that tries extra rules (in the given
// order) before the built-in table.
func NewResolver(extra ...Rule) *Resolver {
	rules := make([]Rule, 0, len(extra)+len(builtinRules))
	rules = append(rules, extra...)
	rules = append(rules, builtinRules...)
	return &Resolver{rules: rules}
}

// Rules returns a copy of the resolver's rule table in evaluation order.
func (r *Resolver) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Input carries the metadata fields the resolver looks at.
type Input struct {
	Family         string
	Hint           string // manufacturer name from the name table
	VendorID       string // OS/2 achVendID
	PostScriptName string
}

// Resolve determines the foundry for a font.
//
//  1. A non-placeholder hint wins (vendor codes are expanded).
//  2. A known OS/2 vendor id; unknown ids are ignored.
//  3. A "CODE-Name" PostScript name with a known vendor code.
//  4. The first rule whose pattern matches the family.
//  5. [Unknown].
func (r *Resolver) Resolve(in Input) Result {
	if !isPlaceholder(in.Hint) {
		if name, ok := lookupVendor(in.Hint); ok {
			return Result{Foundry: name, Source: SourceHint}
		}
		if name := NormalizeName(in.Hint); name != "" {
			return Result{Foundry: name, Source: SourceHint}
		}
	}

	if name, ok := lookupVendor(in.VendorID); ok {
		return Result{Foundry: name, Source: SourceVendorID}
	}

	if prefix, _, ok := strings.Cut(in.PostScriptName, "-"); ok {
		if name, ok := lookupVendor(prefix); ok {
			return Result{Foundry: name, Source: SourcePostScript}
		}
	}

	family := strings.TrimSpace(in.Family)
	for _, rule := range r.rules {
		if rule.Pattern.MatchString(family) {
			return Result{Foundry: rule.Foundry, Source: SourceRule, Rule: rule.Name}
		}
	}
	return Result{Foundry: Unknown, Source: SourceFallback}
}
