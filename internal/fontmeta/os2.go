package fontmeta

import (
	"encoding/binary"
	"strings"
)

// os2Info holds the OS/2 fields the extractor uses. The sfnt package does
// not expose this table, so it is located through the table directory.
type os2Info struct {
	WeightClass int
	VendorID    string
	Italic      bool
}

const (
	sfntHeaderLen  = 12
	tableRecordLen = 16

	os2WeightOffset      = 4
	os2VendorOffset      = 58
	os2FsSelectionOffset = 62
	fsSelectionItalic    = 1 << 0
)

// readOS2 returns the OS/2 fields of the first font in data, which must be
// plain SFNT or a collection. ok is false when the table is missing or
// truncated; fields beyond a short table's end are left zero.
func readOS2(data []byte) (info os2Info, ok bool) {
	base := 0
	if len(data) >= 4 && string(data[:4]) == "ttcf" {
		if len(data) < 16 || binary.BigEndian.Uint32(data[8:12]) == 0 {
			return info, false
		}
		base = int(binary.BigEndian.Uint32(data[12:16]))
	}
	if base < 0 || base+sfntHeaderLen > len(data) {
		return info, false
	}
	numTables := int(binary.BigEndian.Uint16(data[base+4 : base+6]))

	for i := 0; i < numTables; i++ {
		rec := base + sfntHeaderLen + i*tableRecordLen
		if rec+tableRecordLen > len(data) {
			return info, false
		}
		if string(data[rec:rec+4]) != "OS/2" {
			continue
		}
		off := int(binary.BigEndian.Uint32(data[rec+8 : rec+12]))
		length := int(binary.BigEndian.Uint32(data[rec+12 : rec+16]))
		if off < 0 || length < os2WeightOffset+2 || off+length > len(data) {
			return info, false
		}
		table := data[off : off+length]

		info.WeightClass = int(binary.BigEndian.Uint16(table[os2WeightOffset:]))
		if len(table) >= os2VendorOffset+4 {
			info.VendorID = cleanVendorID(table[os2VendorOffset : os2VendorOffset+4])
		}
		if len(table) >= os2FsSelectionOffset+2 {
			info.Italic = binary.BigEndian.Uint16(table[os2FsSelectionOffset:])&fsSelectionItalic != 0
		}
		return info, true
	}
	return info, false
}

// cleanVendorID trims space and NUL padding and drops non-printable tags.
func cleanVendorID(raw []byte) string {
	id := strings.TrimRight(string(raw), " \x00")
	for _, r := range id {
		if r < 0x20 || r > 0x7e {
			return ""
		}
	}
	return id
}
