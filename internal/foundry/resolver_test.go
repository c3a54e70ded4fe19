package foundry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	r := NewResolver()
	cases := []struct {
		name   string
		in     Input
		want   string
		source Source
	}{
		{"hint wins", Input{Family: "Adobe Garamond", Hint: "Linotype"}, "Linotype", SourceHint},
		{"hint normalized", Input{Family: "X", Hint: "  dalton   maag  "}, "Dalton Maag", SourceHint},
		{"hint corporate suffix", Input{Family: "X", Hint: "Adobe Systems Incorporated"}, "Adobe Systems", SourceHint},
		{"hint upper case", Input{Family: "X", Hint: "MONOTYPE IMAGING INC."}, "Monotype Imaging", SourceHint},
		{"hint vendor code", Input{Family: "X", Hint: "ADBE"}, "Adobe", SourceHint},
		{"placeholder hint ignored", Input{Family: "Futura BT", Hint: "Unknown"}, "Bitstream", SourceRule},
		{"nul padded placeholder", Input{Family: "Plain", Hint: "\x00\x00"}, Unknown, SourceFallback},
		{"vendor id", Input{Family: "Whatever", VendorID: "GOOG"}, "Google", SourceVendorID},
		{"padded vendor id", Input{Family: "Whatever", VendorID: "MS  "}, "Microsoft", SourceVendorID},
		{"unknown vendor id ignored", Input{Family: "Arial MT", VendorID: "ZZZZ"}, "Monotype", SourceRule},
		{"placeholder vendor id", Input{Family: "Plain", VendorID: "PfEd"}, Unknown, SourceFallback},
		{"postscript prefix", Input{Family: "Myriad", PostScriptName: "ADBE-MyriadPro"}, "Adobe", SourcePostScript},
		{"postscript unknown prefix", Input{Family: "Myriad", PostScriptName: "MyriadPro-Bold"}, Unknown, SourceFallback},
		{"prefix rule", Input{Family: "Adobe Caslon"}, "Adobe", SourceRule},
		{"prefix rule case insensitive", Input{Family: "itc avant garde"}, "ITC", SourceRule},
		{"multi word prefix", Input{Family: "House Industries Neutra"}, "House Industries", SourceRule},
		{"suffix LT", Input{Family: "Helvetica Neue LT"}, "Linotype", SourceRule},
		{"suffix LT Std", Input{Family: "Helvetica Neue LT Std"}, "Linotype", SourceRule},
		{"unknown vendor id falls through to rules", Input{Family: "Helvetica Neue LT Std", VendorID: "ABCD"}, "Linotype", SourceRule},
		{"suffix MT", Input{Family: "Arial MT"}, "Monotype", SourceRule},
		{"suffix BT", Input{Family: "Futura BT"}, "Bitstream", SourceRule},
		{"suffix keeps abbreviation", Input{Family: "Somefont GD"}, "GD", SourceRule},
		{"no false suffix inside word", Input{Family: "Bolt"}, Unknown, SourceFallback},
		{"bare abbreviation is not a suffix", Input{Family: "MT"}, Unknown, SourceFallback},
		{"glued abbreviation is not a suffix", Input{Family: "ArialMT"}, Unknown, SourceFallback},
		{"fallback", Input{Family: "Helvetica"}, Unknown, SourceFallback},
		{"empty family", Input{}, Unknown, SourceFallback},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := r.Resolve(tc.in)
			assert.Equal(t, tc.want, got.Foundry)
			assert.Equal(t, tc.source, got.Source)
			assert.NotEmpty(t, got.Foundry)
		})
	}
}

func TestResolve_FirstRuleWins(t *testing.T) {
	// "ITC Bookman BT" matches both the ITC prefix rule and the BT suffix
	// rule; prefix rules are declared first.
	got := NewResolver().Resolve(Input{Family: "ITC Bookman BT"})
	assert.Equal(t, "ITC", got.Foundry)
	assert.Equal(t, "prefix-ITC", got.Rule)

	// Between two prefix rules the earlier declaration wins.
	got = NewResolver().Resolve(Input{Family: "Adobe Linotype Mix"})
	assert.Equal(t, "Adobe", got.Foundry)
}

func TestResolve_Deterministic(t *testing.T) {
	families := []string{"ITC Bookman BT", "Arial MT", "Adobe Caslon", "Bolt", "Futura BT", "House Industries Neutra"}
	first := make(map[string]string)
	r := NewResolver()
	for _, f := range families {
		first[f] = r.Resolve(Input{Family: f}).Foundry
	}
	for i := 0; i < 200; i++ {
		r := NewResolver()
		for _, f := range families {
			require.Equal(t, first[f], r.Resolve(Input{Family: f}).Foundry, "family %q", f)
		}
	}
}

func TestUserRulesPrecedeBuiltins(t *testing.T) {
	rules, err := CompileRules([]RuleSpec{
		{Pattern: `^Futura`, Foundry: "Bauer"},
		{Pattern: `^Fut`, Foundry: "Never"},
	})
	require.NoError(t, err)
	r := NewResolver(rules...)

	got := r.Resolve(Input{Family: "Futura BT"})
	assert.Equal(t, "Bauer", got.Foundry)
	assert.Equal(t, "user-1", got.Rule)
	assert.Len(t, r.Rules(), len(BuiltinRules())+2)
}

func TestCompileRules_Errors(t *testing.T) {
	_, err := CompileRules([]RuleSpec{{Pattern: `(`, Foundry: "X"}})
	assert.Error(t, err)

	_, err = CompileRules([]RuleSpec{{Pattern: `^A`, Foundry: "  "}})
	assert.Error(t, err)
}

func TestBuiltinRulesOrder(t *testing.T) {
	rules := BuiltinRules()
	require.NotEmpty(t, rules)
	assert.Equal(t, "prefix-Adobe", rules[0].Name)
	assert.Equal(t, "prefix-"+prefixFoundries[len(prefixFoundries)-1], rules[len(prefixFoundries)-1].Name)
	assert.Equal(t, "suffix-LT", rules[len(prefixFoundries)].Name)

	// Callers get a copy.
	rules[0].Foundry = "mutated"
	assert.Equal(t, "Adobe", BuiltinRules()[0].Foundry)
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"URW":                   "URW",
		"ADOBE":                 "Adobe",
		"FontFont":              "FontFont",
		"Bigelow & Holmes Inc.": "Bigelow & Holmes",
		"Paratype, Inc":         "Paratype",
		"Elsner+Flake":          "Elsner+Flake",
		"  Klim\x00\x00 ":       "Klim",
		"Linotype GmbH":         "Linotype",
		"Inc":                   "Inc",
		"google   fonts":        "Google Fonts",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeName(in), "input %q", in)
	}
}
