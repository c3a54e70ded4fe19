package planner

import (
	"strings"

	"github.com/backmassage/fontsort/internal/fontmeta"
	"github.com/backmassage/fontsort/internal/foundry"
	"github.com/backmassage/fontsort/internal/naming"
	"github.com/backmassage/fontsort/internal/weight"
)

// ResolveIdentity normalizes extracted metadata into the identity files are
// named from. The default face ("Regular", "Normal", "Book", …) has an
// empty subfamily; italics are taken from the OS/2 flag or the subfamily.
func ResolveIdentity(md *fontmeta.FontMetadata, r *foundry.Resolver) (naming.Identity, foundry.Result) {
	family := collapse(md.Family)
	if family == "" {
		family = naming.Unknown
	}
	sub := collapse(md.Subfamily)
	if weight.IsRegularStyle(sub) {
		sub = ""
	}

	res := r.Resolve(foundry.Input{
		Family:         family,
		Hint:           md.FoundryHint,
		VendorID:       md.VendorID,
		PostScriptName: md.PostScriptName,
	})

	return naming.Identity{
		Family:    family,
		Subfamily: sub,
		Weight:    weight.Normalize(md.WeightRaw),
		Foundry:   res.Foundry,
		Italic:    md.Italic || weight.IsItalic(md.Subfamily),
	}, res
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
