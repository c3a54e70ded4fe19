package foundry

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule pairs a compiled pattern over the family name with the foundry it
// implies. Rules are evaluated in order by [Resolver.Resolve]; first match
// wins.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Foundry string
}

// RuleSpec is the uncompiled form of a rule, as read from a config file.
type RuleSpec struct {
	Pattern string `yaml:"pattern"`
	Foundry string `yaml:"foundry"`
}

// CompileRules compiles user rule specs in declaration order.
func CompileRules(specs []RuleSpec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for i, s := range specs {
		if strings.TrimSpace(s.Foundry) == "" {
			return nil, fmt.Errorf("foundry rule %d: empty foundry", i+1)
		}
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("foundry rule %d: %w", i+1, err)
		}
		rules = append(rules, Rule{
			Name:    fmt.Sprintf("user-%d", i+1),
			Pattern: re,
			Foundry: strings.TrimSpace(s.Foundry),
		})
	}
	return rules, nil
}

// prefixFoundries lists foundries whose name commonly leads the family
// name ("Adobe Garamond", "ITC Avant Garde"). Order matters: it is the
// precedence of the original alternation and must not be re-sorted.
var prefixFoundries = []string{
	"Adobe", "Monotype", "Linotype", "ITC", "URW", "Bitstream", "Google",
	"Microsoft", "Apple", "IBM", "Hoefler", "Typekit", "FontFont", "Emigre",
	"Dalton Maag", "Font Bureau", "House Industries", "P22", "Typotheque",
	"Underware", "Fontfabric", "Fontsmith", "Klim", "Process", "Commercial",
	"Grilli", "Production", "Sudtipos", "Typofonderie", "Canada", "Rosetta",
	"Darden", "Positype", "Typonine", "Latinotype", "Typejockeys", "Suitcase",
	"Elsner+Flake", "Scangraphic", "Berthold", "Letraset", "Agfa", "Paratype",
	"Fontshop", "Letterhead", "Neufville",
}

// suffixAbbreviations lists trailing vendor abbreviations ("Futura BT",
// "Helvetica Neue LT Std") in the original precedence order. Abbreviations
// without a well-known expansion keep the abbreviation as the foundry.
var suffixAbbreviations = []struct {
	abbr    string
	foundry string
}{
	{"LT", "Linotype"},
	{"MT", "Monotype"},
	{"ITC", "ITC"},
	{"URW", "URW"},
	{"BT", "Bitstream"},
	{"MS", "Microsoft"},
	{"GD", "GD"},
	{"FF", "FontFont"},
	{"DF", "DF"},
	{"DM", "Dalton Maag"},
	{"FB", "Font Bureau"},
	{"HI", "House Industries"},
	{"P22", "P22"},
	{"TT", "TT"},
	{"UW", "Underware"},
	{"FS", "Fontsmith"},
	{"KT", "KT"},
	{"PT", "Paratype"},
	{"CT", "CT"},
	{"GT", "Grilli"},
	{"ST", "ST"},
	{"TF", "TF"},
	{"CD", "CD"},
	{"RT", "RT"},
	{"DD", "DD"},
	{"TN", "Typonine"},
	{"TJ", "Typejockeys"},
	{"SC", "Scangraphic"},
	{"EF", "Elsner+Flake"},
	{"SG", "SG"},
	{"LS", "Letraset"},
	{"AG", "Agfa"},
	{"LH", "Letterhead"},
	{"NV", "Neufville"},
}

// builtinRules is compiled once at init and never mutated afterwards.
var builtinRules = buildBuiltinRules()

func buildBuiltinRules() []Rule {
	rules := make([]Rule, 0, len(prefixFoundries)+len(suffixAbbreviations))
	for _, name := range prefixFoundries {
		rules = append(rules, Rule{
			Name:    "prefix-" + name,
			Pattern: regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(name) + `\s+\S`),
			Foundry: name,
		})
	}
	// The abbreviation must stand alone as the last word, optionally
	// followed by a Std/Pro edition tag, so "Bolt" never reads as "LT".
	for _, s := range suffixAbbreviations {
		rules = append(rules, Rule{
			Name:    "suffix-" + s.abbr,
			Pattern: regexp.MustCompile(`\S[\s_-]+` + regexp.QuoteMeta(s.abbr) + `(?:[\s_-]+(?:Std|Pro))?$`),
			Foundry: s.foundry,
		})
	}
	return rules
}

// BuiltinRules returns a copy of the built-in rule table in evaluation
// order.
func BuiltinRules() []Rule {
	out := make([]Rule, len(builtinRules))
	copy(out, builtinRules)
	return out
}
