package foundry

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// vendorCodes maps OS/2 achVendID values and PostScript name prefixes to
// foundry names. Keys are upper-case with padding trimmed.
var vendorCodes = map[string]string{
	"ADBE": "Adobe",
	"MONO": "Monotype",
	"LINO": "Linotype",
	"ITC":  "ITC",
	"URW":  "URW",
	"BITS": "Bitstream",
	"GOOG": "Google",
	"MSFT": "Microsoft",
	"MS":   "Microsoft",
	"APPL": "Apple",
	"IBM":  "IBM",
	"B&H":  "Bigelow & Holmes",
	"EMGR": "Emigre",
	"DAMA": "Dalton Maag",
	"HOUS": "House Industries",
	"TPTQ": "Typotheque",
	"UNDT": "Underware",
	"PARA": "Paratype",
	"P22":  "P22",
	"FBI":  "Font Bureau",
}

// placeholders are hint values that carry no foundry information.
var placeholders = map[string]bool{
	"":        true,
	"UNKNOWN": true,
	"UKWN":    true,
	"NONE":    true,
	"NULL":    true,
	"N/A":     true,
	"PFED":    true, // FontForge default vendor id
	"XXXX":    true,
	"DEFAULT": true,
	"ALTS":    true,
}

// corporateSuffixes are stripped from manufacturer strings, longest first.
var corporateSuffixes = []string{
	"Incorporated", "Corporation", "Company", "Limited", "GmbH", "Corp.",
	"Corp", "Inc.", "Inc", "Ltd.", "Ltd", "LLC", "S.A.", "AG", "Co.",
}

// lookupVendor resolves a vendor code; ok is false for unknown codes.
func lookupVendor(code string) (string, bool) {
	name, ok := vendorCodes[strings.ToUpper(strings.TrimSpace(code))]
	return name, ok
}

// isPlaceholder reports whether hint is empty or a generic stand-in.
func isPlaceholder(hint string) bool {
	cleaned := strings.TrimFunc(hint, func(r rune) bool {
		return unicode.IsSpace(r) || r == 0
	})
	return placeholders[strings.ToUpper(cleaned)]
}

// NormalizeName cleans a foundry name from metadata: NUL padding and
// repeated whitespace are removed, trailing corporate designators are
// dropped, and single-case words are title-cased while short acronyms
// ("URW", "ITC") keep their capitals.
func NormalizeName(s string) string {
	s = strings.ReplaceAll(s, "\x00", " ")
	words := strings.Fields(s)
	for len(words) > 1 {
		last := strings.TrimRight(words[len(words)-1], ",")
		if !hasSuffixWord(last) {
			break
		}
		words = words[:len(words)-1]
		words[len(words)-1] = strings.TrimRight(words[len(words)-1], ",")
	}
	for i, w := range words {
		words[i] = fixCase(w)
	}
	return strings.Join(words, " ")
}

func hasSuffixWord(w string) bool {
	for _, s := range corporateSuffixes {
		if strings.EqualFold(w, s) {
			return true
		}
	}
	return false
}

func fixCase(w string) string {
	lower := strings.ToLower(w)
	upper := strings.ToUpper(w)
	if w == upper && len([]rune(w)) <= 4 || w != lower && w != upper || w == lower && w == upper {
		return w
	}
	// Casers carry state and must not be shared between workers.
	return cases.Title(language.Und).String(lower)
}
