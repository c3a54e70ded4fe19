// Package weight maps raw font weight and style tokens onto the canonical
// CSS/OpenType weight scale (100–900).
//
// Normalization is total: every input produces a [Weight]. Unrecognized or
// absent tokens fall back to 400/Regular.
package weight

import (
	"math"
	"strconv"
	"strings"
)

// Weight is a canonical weight step. Value and Keyword always agree with
// the canonical table; construct values through [FromClass], [Normalize]
// or the package-level constants.
type Weight struct {
	Value   int
	Keyword string
}

// String renders the weight as "700 Bold".
func (w Weight) String() string {
	return strconv.Itoa(w.Value) + " " + w.Keyword
}

// Canonical weight steps.
var (
	Thin       = Weight{100, "Thin"}
	ExtraLight = Weight{200, "ExtraLight"}
	Light      = Weight{300, "Light"}
	Regular    = Weight{400, "Regular"}
	Medium     = Weight{500, "Medium"}
	SemiBold   = Weight{600, "SemiBold"}
	Bold       = Weight{700, "Bold"}
	ExtraBold  = Weight{800, "ExtraBold"}
	Black      = Weight{900, "Black"}
)

// steps is indexed by Value/100 - 1.
var steps = [9]Weight{Thin, ExtraLight, Light, Regular, Medium, SemiBold, Bold, ExtraBold, Black}

// keywordRule pairs separator-free lowercase fragments with a weight.
// Rules are checked in order; compound words come before the simple words
// they contain ("extrabold" before "bold", "semilight" before "light").
type keywordRule struct {
	fragments []string
	weight    Weight
}

var keywordRules = []keywordRule{
	{[]string{"hairline", "thin"}, Thin},
	{[]string{"extralight", "ultralight"}, ExtraLight},
	{[]string{"semilight", "demilight", "light"}, Light},
	{[]string{"semibold", "demibold", "demi"}, SemiBold},
	{[]string{"extrabold", "ultrabold"}, ExtraBold},
	{[]string{"extrablack", "ultrablack", "black", "heavy"}, Black},
	{[]string{"bold"}, Bold},
	{[]string{"medium"}, Medium},
	{[]string{"regular", "normal", "book", "roman", "plain", "text"}, Regular},
}

// FromClass maps a numeric weight class to the nearest canonical step.
// Values 1–9 are the legacy usWeightClass scale of OS/2 table version 0
// (1 Ultra-light … 9 Ultra-bold), still found in old fonts, and are
// scaled by 100 rather than snapped to 100. Values ≤ 0 are not a weight and yield Regular.
func FromClass(n int) Weight {
	switch {
	case n <= 0:
		return Regular
	case n < 10:
		n *= 100
	}
	step := int(math.Round(float64(n) / 100))
	if step < 1 {
		step = 1
	}
	if step > 9 {
		step = 9
	}
	return steps[step-1]
}

// Normalize maps a raw token (numeric class or style keyword) to a Weight.
func Normalize(raw string) Weight {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Regular
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		switch {
		case math.IsNaN(f), f <= 0:
			return Regular
		case f > 1000:
			return Black
		}
		return FromClass(int(math.Round(f)))
	}

	key := squash(s)
	for _, r := range keywordRules {
		for _, frag := range r.fragments {
			if strings.Contains(key, frag) {
				return r.weight
			}
		}
	}
	return Regular
}

// IsItalic reports whether a subfamily or style token names an italic or
// oblique face.
func IsItalic(style string) bool {
	key := squash(style)
	return strings.Contains(key, "italic") || strings.Contains(key, "oblique")
}

// IsRegularStyle reports whether a subfamily carries no information beyond
// the default face ("Regular", "Normal", "Roman", "Book" or empty).
func IsRegularStyle(style string) bool {
	switch squash(style) {
	case "", "regular", "normal", "roman", "book", "plain", "standard":
		return true
	}
	return false
}

// squash lowercases s and drops separators so "Extra-Bold", "extra bold"
// and "ExtraBold" compare equal.
func squash(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '-', '_', '.', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
