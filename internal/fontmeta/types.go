package fontmeta

import "errors"

// ErrInvalidFont is returned for empty, truncated or unparseable files.
var ErrInvalidFont = errors.New("invalid font")

// Format is the container format detected from a file's magic bytes.
type Format int

const (
	FormatUnknown Format = iota
	FormatTrueType
	FormatOpenType // CFF outlines ("OTTO")
	FormatCollection
	FormatWOFF
	FormatWOFF2
)

var formatNames = [...]string{
	FormatUnknown:    "unknown",
	FormatTrueType:   "truetype",
	FormatOpenType:   "opentype",
	FormatCollection: "collection",
	FormatWOFF:       "woff",
	FormatWOFF2:      "woff2",
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return "unknown"
	}
	return formatNames[f]
}

// Wrapped reports whether the format must be unwrapped to SFNT before
// its tables can be read.
func (f Format) Wrapped() bool {
	return f == FormatWOFF || f == FormatWOFF2
}

// FontMetadata is the identity read from one font file. It is immutable
// after extraction.
type FontMetadata struct {
	Family         string
	Subfamily      string
	WeightRaw      string // OS/2 usWeightClass in decimal, else the subfamily
	FoundryHint    string // name ID 8 (manufacturer), empty when absent
	PostScriptName string
	VendorID       string // OS/2 achVendID, padding trimmed
	Italic         bool   // OS/2 fsSelection italic bit
	SourcePath     string
	Format         Format
}
