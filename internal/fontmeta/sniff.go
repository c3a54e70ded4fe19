package fontmeta

// Sniff determines the container format from the first bytes of a file.
// Fewer than four bytes, or an unrecognized tag, yield FormatUnknown.
func Sniff(header []byte) Format {
	if len(header) < 4 {
		return FormatUnknown
	}
	switch string(header[:4]) {
	case "\x00\x01\x00\x00", "true":
		return FormatTrueType
	case "OTTO":
		return FormatOpenType
	case "ttcf":
		return FormatCollection
	case "wOFF":
		return FormatWOFF
	case "wOF2":
		return FormatWOFF2
	default:
		return FormatUnknown
	}
}
