package fontmeta

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/backmassage/fontsort/internal/weight"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func TestSniff(t *testing.T) {
	cases := []struct {
		header string
		want   Format
	}{
		{"\x00\x01\x00\x00rest", FormatTrueType},
		{"true", FormatTrueType},
		{"OTTO", FormatOpenType},
		{"ttcf", FormatCollection},
		{"wOFF", FormatWOFF},
		{"wOF2", FormatWOFF2},
		{"%PDF", FormatUnknown},
		{"OTT", FormatUnknown},
		{"", FormatUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.want.String()+"/"+tc.header, func(t *testing.T) {
			assert.Equal(t, tc.want, Sniff([]byte(tc.header)))
		})
	}
}

func TestExtract_GoFonts(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name   string
		data   []byte
		weight weight.Weight
		italic bool
	}{
		{"Go-Regular.ttf", goregular.TTF, weight.Regular, false},
		{"Go-Bold.ttf", gobold.TTF, weight.Bold, false},
		{"Go-Italic.ttf", goitalic.TTF, weight.Regular, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, dir, tc.name, tc.data)
			md, err := Extract(path)
			require.NoError(t, err)

			assert.Equal(t, "Go", md.Family)
			assert.NotEmpty(t, md.Subfamily)
			assert.Equal(t, path, md.SourcePath)
			assert.Equal(t, FormatTrueType, md.Format)
			assert.Equal(t, tc.weight, weight.Normalize(md.WeightRaw))
			assert.Equal(t, tc.italic, md.Italic || weight.IsItalic(md.Subfamily))
		})
	}
}

func TestExtract_WOFF(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name      string
		data      []byte
		compress  bool
		subfamily string
		weight    weight.Weight
	}{
		{"Go-Regular.woff", goregular.TTF, false, "Regular", weight.Regular},
		{"Go-Bold.woff", gobold.TTF, true, "Bold", weight.Bold},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, dir, tc.name, wrapWOFF(t, tc.data, tc.compress))
			md, err := Extract(path)
			require.NoError(t, err)

			assert.Equal(t, FormatWOFF, md.Format)
			assert.Equal(t, "Go", md.Family)
			assert.Equal(t, tc.subfamily, md.Subfamily)
			assert.Equal(t, tc.weight, weight.Normalize(md.WeightRaw))
		})
	}
}

// wrapWOFF packs an SFNT font into a WOFF 1.0 container. Tables are
// zlib-compressed when compress is set and that makes them smaller.
func wrapWOFF(t *testing.T, sfnt []byte, compress bool) []byte {
	t.Helper()
	type table struct {
		tag          string
		orig, stored []byte
		checksum     uint32
	}
	numTables := int(binary.BigEndian.Uint16(sfnt[4:]))
	tables := make([]table, 0, numTables)
	for i := 0; i < numTables; i++ {
		rec := sfnt[12+16*i:]
		off := binary.BigEndian.Uint32(rec[8:])
		n := binary.BigEndian.Uint32(rec[12:])
		tb := table{tag: string(rec[:4]), orig: sfnt[off : off+n]}
		tb.checksum = tableChecksum(tb.tag, tb.orig)
		tb.stored = tb.orig
		if compress {
			var buf bytes.Buffer
			zw := zlib.NewWriter(&buf)
			_, err := zw.Write(tb.orig)
			require.NoError(t, err)
			require.NoError(t, zw.Close())
			if buf.Len() < len(tb.orig) {
				tb.stored = buf.Bytes()
			}
		}
		tables = append(tables, tb)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].tag < tables[j].tag })

	pad4 := func(n int) int { return (n + 3) &^ 3 }
	offset := 44 + 20*numTables
	total := offset
	sfntSize := 12 + 16*numTables
	for _, tb := range tables {
		total += pad4(len(tb.stored))
		sfntSize += pad4(len(tb.orig))
	}

	out := make([]byte, total)
	copy(out[0:], "wOFF")
	copy(out[4:], sfnt[:4])
	binary.BigEndian.PutUint32(out[8:], uint32(total))
	binary.BigEndian.PutUint16(out[12:], uint16(numTables))
	binary.BigEndian.PutUint32(out[16:], uint32(sfntSize))
	binary.BigEndian.PutUint16(out[20:], 1)
	for i, tb := range tables {
		rec := out[44+20*i:]
		copy(rec[0:], tb.tag)
		binary.BigEndian.PutUint32(rec[4:], uint32(offset))
		binary.BigEndian.PutUint32(rec[8:], uint32(len(tb.stored)))
		binary.BigEndian.PutUint32(rec[12:], uint32(len(tb.orig)))
		binary.BigEndian.PutUint32(rec[16:], tb.checksum)
		copy(out[offset:], tb.stored)
		offset += pad4(len(tb.stored))
	}
	return out
}

// tableChecksum is the SFNT table checksum over the zero-padded data, with
// head.checkSumAdjustment counted as zero.
func tableChecksum(tag string, data []byte) uint32 {
	buf := make([]byte, (len(data)+3)&^3)
	copy(buf, data)
	if tag == "head" && len(buf) >= 12 {
		binary.BigEndian.PutUint32(buf[8:], 0)
	}
	var sum uint32
	for i := 0; i < len(buf); i += 4 {
		sum += binary.BigEndian.Uint32(buf[i:])
	}
	return sum
}

func TestExtract_InvalidFonts(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name string
		data []byte
	}{
		{"empty.ttf", nil},
		{"garbage.otf", []byte("this is not a font at all")},
		{"truncated.ttf", goregular.TTF[:100]},
		{"fake.woff", append([]byte("wOFF"), make([]byte, 40)...)},
		{"fake.woff2", append([]byte("wOF2"), make([]byte, 40)...)},
		{"short.ttf", []byte{0x00, 0x01}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, dir, tc.name, tc.data)
			_, err := Extract(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidFont), "got %v", err)
		})
	}
}

func TestExtract_MissingFileIsNotInvalidFont(t *testing.T) {
	_, err := Extract(filepath.Join(t.TempDir(), "missing.ttf"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidFont))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

type stubParser struct {
	md  FontMetadata
	err error
}

func (s stubParser) Parse([]byte) (*FontMetadata, error) {
	if s.err != nil {
		return nil, s.err
	}
	md := s.md
	return &md, nil
}

func TestExtractWith_Parser(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.ttf", []byte("x"))

	md, err := ExtractWith(stubParser{md: FontMetadata{Family: "Stub"}}, path)
	require.NoError(t, err)
	assert.Equal(t, "Stub", md.Family)
	assert.Equal(t, path, md.SourcePath)

	_, err = ExtractWith(stubParser{err: ErrInvalidFont}, path)
	assert.ErrorIs(t, err, ErrInvalidFont)
	assert.Contains(t, err.Error(), path)
}

// sfntWithOS2 builds a minimal table directory holding one OS/2 table,
// placed at base so it can be embedded in a collection.
func sfntWithOS2(base int, os2 []byte) []byte {
	dirLen := sfntHeaderLen + tableRecordLen
	out := make([]byte, dirLen, dirLen+len(os2))
	binary.BigEndian.PutUint32(out[0:], 0x00010000)
	binary.BigEndian.PutUint16(out[4:], 1)
	rec := out[sfntHeaderLen:]
	copy(rec[0:4], "OS/2")
	binary.BigEndian.PutUint32(rec[8:], uint32(base+dirLen))
	binary.BigEndian.PutUint32(rec[12:], uint32(len(os2)))
	return append(out, os2...)
}

func os2Table(weightClass uint16, vendor string, fsSelection uint16) []byte {
	t := make([]byte, 78)
	binary.BigEndian.PutUint16(t[os2WeightOffset:], weightClass)
	copy(t[os2VendorOffset:os2VendorOffset+4], vendor)
	binary.BigEndian.PutUint16(t[os2FsSelectionOffset:], fsSelection)
	return t
}

func TestReadOS2(t *testing.T) {
	info, ok := readOS2(sfntWithOS2(0, os2Table(700, "ADBE", 1)))
	require.True(t, ok)
	assert.Equal(t, 700, info.WeightClass)
	assert.Equal(t, "ADBE", info.VendorID)
	assert.True(t, info.Italic)

	info, ok = readOS2(sfntWithOS2(0, os2Table(300, "MS\x00\x00", 0)))
	require.True(t, ok)
	assert.Equal(t, "MS", info.VendorID)
	assert.False(t, info.Italic)
}

func TestReadOS2_Collection(t *testing.T) {
	header := make([]byte, 16)
	copy(header, "ttcf")
	binary.BigEndian.PutUint32(header[4:], 0x00010000)
	binary.BigEndian.PutUint32(header[8:], 1)
	binary.BigEndian.PutUint32(header[12:], 16)
	data := append(header, sfntWithOS2(16, os2Table(900, "B&H ", 0))...)

	info, ok := readOS2(data)
	require.True(t, ok)
	assert.Equal(t, 900, info.WeightClass)
	assert.Equal(t, "B&H", info.VendorID)
}

func TestReadOS2_Malformed(t *testing.T) {
	valid := sfntWithOS2(0, os2Table(400, "GOOG", 0))

	_, ok := readOS2(valid[:sfntHeaderLen+4])
	assert.False(t, ok, "truncated directory")

	_, ok = readOS2(valid[:len(valid)-10])
	assert.False(t, ok, "table past end of data")

	short, ok := readOS2(sfntWithOS2(0, os2Table(500, "GOOG", 0)[:8]))
	assert.True(t, ok, "short table still yields weight")
	assert.Equal(t, 500, short.WeightClass)
	assert.Empty(t, short.VendorID)

	_, ok = readOS2([]byte("ttcf\x00\x01\x00\x00\x00\x00\x00\x00"))
	assert.False(t, ok, "collection without fonts")

	_, ok = readOS2(nil)
	assert.False(t, ok)
}

func TestReadOS2_GoRegular(t *testing.T) {
	info, ok := readOS2(goregular.TTF)
	require.True(t, ok)
	assert.Equal(t, weight.Regular, weight.FromClass(info.WeightClass))
}
