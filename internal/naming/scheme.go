package naming

import (
	"fmt"
	"strings"
)

// Scheme selects how a resolved identity is rendered into a path. One
// scheme applies to a whole run.
type Scheme int

const (
	// SchemeFamilySubfamily renders "Family (Subfamily)".
	SchemeFamilySubfamily Scheme = iota
	// SchemeFoundryFamilySubfamily renders "Foundry Family (Subfamily)".
	SchemeFoundryFamilySubfamily
	// SchemeFamilyWeight renders "Family 700", with " Italic" for italic faces.
	SchemeFamilyWeight
	// SchemeFoundryFamilyDirectory nests files under Foundry/Family/.
	SchemeFoundryFamilyDirectory
)

var schemeNames = [...]string{
	SchemeFamilySubfamily:        "family-subfamily",
	SchemeFoundryFamilySubfamily: "foundry-family-subfamily",
	SchemeFamilyWeight:           "family-weight",
	SchemeFoundryFamilyDirectory: "foundry-family",
}

func (s Scheme) String() string {
	if s < 0 || int(s) >= len(schemeNames) {
		return fmt.Sprintf("Scheme(%d)", int(s))
	}
	return schemeNames[s]
}

// SchemeNames lists the accepted scheme names in declaration order.
func SchemeNames() []string {
	return append([]string(nil), schemeNames[:]...)
}

// ParseScheme accepts a scheme name case-insensitively; underscores may
// stand in for hyphens.
func ParseScheme(s string) (Scheme, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for i, name := range schemeNames {
		if key == name {
			return Scheme(i), nil
		}
	}
	return 0, fmt.Errorf("unknown naming scheme %q (want %s)", s, strings.Join(schemeNames[:], ", "))
}
