package fontmeta

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/tdewolff/font"
	"golang.org/x/image/font/sfnt"
)

// Parser turns raw font bytes into metadata. Implementations must not
// retain data and must be safe for concurrent use.
type Parser interface {
	Parse(data []byte) (*FontMetadata, error)
}

// SFNTParser is the default Parser, backed by golang.org/x/image/font/sfnt.
// Only the first font of a collection is read.
type SFNTParser struct{}

var defaultParser Parser = SFNTParser{}

// Extract reads the font at path with the default parser.
func Extract(path string) (*FontMetadata, error) {
	return ExtractWith(defaultParser, path)
}

// ExtractWith reads the file at path and parses it with p. Read failures
// are returned as-is so callers can tell I/O errors from bad fonts.
func ExtractWith(p Parser, path string) (*FontMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	md, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	md.SourcePath = path
	return md, nil
}

// Parse implements Parser.
func (SFNTParser) Parse(data []byte) (*FontMetadata, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidFont)
	}
	format := Sniff(data)
	if format == FormatUnknown {
		return nil, fmt.Errorf("%w: unrecognized signature %q", ErrInvalidFont, data[:min(4, len(data))])
	}

	raw := data
	if format.Wrapped() {
		var err error
		if raw, err = font.ToSFNT(data); err != nil {
			return nil, fmt.Errorf("%w: unwrap %s: %w", ErrInvalidFont, format, err)
		}
	}

	coll, err := sfnt.ParseCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFont, err)
	}
	f, err := coll.Font(0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFont, err)
	}

	var buf sfnt.Buffer
	name := func(ids ...sfnt.NameID) string {
		for _, id := range ids {
			if s, err := f.Name(&buf, id); err == nil {
				if s = cleanName(s); s != "" {
					return s
				}
			}
		}
		return ""
	}

	md := &FontMetadata{
		Family:         name(sfnt.NameIDTypographicFamily, sfnt.NameIDFamily),
		Subfamily:      name(sfnt.NameIDTypographicSubfamily, sfnt.NameIDSubfamily),
		PostScriptName: name(sfnt.NameIDPostScript),
		FoundryHint:    name(sfnt.NameIDManufacturer),
		Format:         format,
	}
	if md.Family == "" {
		return nil, fmt.Errorf("%w: no family name", ErrInvalidFont)
	}
	if md.Subfamily == "" {
		if i := strings.LastIndexByte(md.PostScriptName, '-'); i >= 0 && i < len(md.PostScriptName)-1 {
			md.Subfamily = md.PostScriptName[i+1:]
		}
	}

	os2, ok := readOS2(raw)
	if ok {
		md.VendorID = os2.VendorID
		md.Italic = os2.Italic
	}
	if ok && os2.WeightClass > 0 {
		md.WeightRaw = strconv.Itoa(os2.WeightClass)
	} else {
		md.WeightRaw = md.Subfamily
	}
	return md, nil
}

// cleanName drops NUL and other control characters that some fonts leave
// in name records and trims surrounding whitespace.
func cleanName(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
