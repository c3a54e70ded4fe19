package naming

import "github.com/backmassage/fontsort/internal/weight"

// Identity is the normalized identity a file is named from. Family and
// Foundry are never empty once resolved; Subfamily is empty for the
// default face.
type Identity struct {
	Family    string
	Subfamily string
	Weight    weight.Weight
	Foundry   string
	Italic    bool
}
