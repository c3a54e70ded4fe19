package naming

import (
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/fontsort/internal/weight"
)

func TestFormat_Schemes(t *testing.T) {
	helvetica := Identity{Family: "Helvetica", Subfamily: "Bold", Weight: weight.Bold, Foundry: "Linotype"}

	cases := []struct {
		name   string
		id     Identity
		scheme Scheme
		group  bool
		want   string
	}{
		{"family subfamily", helvetica, SchemeFamilySubfamily, false, "Helvetica/Helvetica (Bold).ttf"},
		{"foundry family subfamily", helvetica, SchemeFoundryFamilySubfamily, false, "Helvetica/Linotype Helvetica (Bold).ttf"},
		{"family weight", helvetica, SchemeFamilyWeight, false, "Helvetica/Helvetica 700.ttf"},
		{"foundry directory", helvetica, SchemeFoundryFamilyDirectory, false, "Linotype/Helvetica/Helvetica (Bold).ttf"},
		{"group by foundry", helvetica, SchemeFamilyWeight, true, "Linotype/Helvetica/Helvetica 700.ttf"},
		{
			"regular omitted", Identity{Family: "Arial", Weight: weight.Regular, Foundry: "Unknown"},
			SchemeFamilySubfamily, false, "Arial/Arial.ttf",
		},
		{
			"italic weight", Identity{Family: "Garamond", Subfamily: "Italic", Weight: weight.Regular, Foundry: "Adobe", Italic: true},
			SchemeFamilyWeight, false, "Garamond/Garamond 400 Italic.ttf",
		},
		{
			"unknown foundry", Identity{Family: "Arial", Weight: weight.Regular, Foundry: "Unknown"},
			SchemeFoundryFamilySubfamily, false, "Arial/Unknown Arial.ttf",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Formatter{Scheme: tc.scheme, GroupByFoundry: tc.group}.Format(tc.id, ".TTF")
			assert.Equal(t, filepath.FromSlash(tc.want), got.RelPath())
		})
	}
}

func TestFormat_FileNames(t *testing.T) {
	id := Identity{Family: "Helvetica", Subfamily: "Bold", Weight: weight.Bold, Foundry: "Linotype"}
	assert.Equal(t, "Helvetica (Bold).ttf", Format(id, SchemeFamilySubfamily, "ttf").FileName())
	assert.Equal(t, "Linotype Helvetica (Bold).ttf", Format(id, SchemeFoundryFamilySubfamily, ".ttf").FileName())
	assert.Equal(t, "Helvetica 700.ttf", Format(id, SchemeFamilyWeight, ".ttf").FileName())
}

func TestFormat_SegmentsNeverEmpty(t *testing.T) {
	ids := []Identity{
		{Family: "", Foundry: ""},
		{Family: "...", Subfamily: "   ", Foundry: "///"},
		{Family: "\x00\x01", Foundry: "Unknown"},
		{Family: "A/B", Subfamily: "C:D", Foundry: "E|F"},
	}
	for _, id := range ids {
		for s := range schemeNames {
			tgt := Formatter{Scheme: Scheme(s), GroupByFoundry: true}.Format(id, ".otf")
			require.NotEmpty(t, tgt.Stem)
			for _, d := range tgt.Dir {
				assert.NotEmpty(t, d)
				assert.NotContains(t, d, "/")
			}
			assert.NotContains(t, tgt.Stem, "/")
		}
	}
}

func TestTarget_WithSuffix(t *testing.T) {
	tgt := Target{Dir: []string{"Arial"}, Stem: "Arial", Ext: ".ttf"}
	assert.Equal(t, "Arial (1).ttf", tgt.WithSuffix(1).FileName())
	assert.Equal(t, "Arial.ttf", tgt.FileName(), "receiver unchanged")
}

func TestSanitize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Helvetica", "Helvetica"},
		{`a<b>c:d"e/f\g|h?i*j`, "a_b_c_d_e_f_g_h_i_j"},
		{"  many   spaces\there ", "many spaces here"},
		{"..dots..", "dots"},
		{"", Unknown},
		{" . ", Unknown},
		{"tab\x07bell", "tab_bell"},
		{"CON", "CON_"},
		{"lpt1", "lpt1_"},
		{"nul.txt", "nul_.txt"},
		{"Console", "Console"},
		{"Café", "Café"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Sanitize(tc.in))
		})
	}
}

func TestSanitize_Truncates(t *testing.T) {
	got := Sanitize(strings.Repeat("é", 300))
	assert.LessOrEqual(t, len(got), maxSegmentBytes)
	assert.True(t, strings.HasPrefix(got, "é"))
	assert.NotContains(t, got, "�")
}

func TestParseScheme(t *testing.T) {
	for i, name := range SchemeNames() {
		s, err := ParseScheme(name)
		require.NoError(t, err)
		assert.Equal(t, Scheme(i), s)
		assert.Equal(t, name, s.String())
	}
	s, err := ParseScheme(" Family_Weight ")
	require.NoError(t, err)
	assert.Equal(t, SchemeFamilyWeight, s)

	_, err = ParseScheme("alphabetical")
	assert.Error(t, err)
}

// --- DuplicateResolver ---

func fnvHash(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	h := fnv.New64a()
	h.Write(data)
	return h.Sum64(), nil
}

func hashOf(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

func put(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

var arial = Target{Dir: []string{"Arial"}, Stem: "Arial", Ext: ".ttf"}

func TestDuplicateResolver_DistinctContentGetsSuffix(t *testing.T) {
	root := t.TempDir()
	r := NewDuplicateResolver(fnvHash)

	d1, err := r.Resolve(Request{Source: "/in/a.ttf", Hash: hashOf("a"), Root: root, Target: arial})
	require.NoError(t, err)
	assert.Equal(t, ActionMove, d1.Action)
	assert.Equal(t, filepath.Join(root, "Arial", "Arial.ttf"), d1.Path)

	d2, err := r.Resolve(Request{Source: "/in/b.ttf", Hash: hashOf("b"), Root: root, Target: arial})
	require.NoError(t, err)
	assert.Equal(t, ActionRenameSuffix, d2.Action)
	assert.Equal(t, 1, d2.Suffix)
	assert.Equal(t, filepath.Join(root, "Arial", "Arial (1).ttf"), d2.Path)
}

func TestDuplicateResolver_IdenticalContentIsDuplicate(t *testing.T) {
	root := t.TempDir()
	r := NewDuplicateResolver(fnvHash)

	_, err := r.Resolve(Request{Source: "/in/a.ttf", Hash: hashOf("same"), Root: root, Target: arial})
	require.NoError(t, err)
	d, err := r.Resolve(Request{Source: "/in/b.ttf", Hash: hashOf("same"), Root: root, Target: arial})
	require.NoError(t, err)
	assert.Equal(t, ActionSkip, d.Action)
	assert.True(t, d.Duplicate)
	assert.Equal(t, filepath.Join(root, "Arial", "Arial.ttf"), d.DuplicateOf)
	assert.Equal(t, "/in/b.ttf", d.Path)
}

func TestDuplicateResolver_OnDiskOccupant(t *testing.T) {
	root := t.TempDir()
	put(t, filepath.Join(root, "Arial", "Arial.ttf"), "existing")
	r := NewDuplicateResolver(fnvHash)

	d, err := r.Resolve(Request{Source: "/in/x.ttf", Hash: hashOf("existing"), Root: root, Target: arial})
	require.NoError(t, err)
	assert.True(t, d.Duplicate)

	d, err = r.Resolve(Request{Source: "/in/y.ttf", Hash: hashOf("other"), Root: root, Target: arial})
	require.NoError(t, err)
	assert.Equal(t, ActionRenameSuffix, d.Action)
	assert.Equal(t, 1, d.Suffix)
}

func TestDuplicateResolver_OccupantMovedAway(t *testing.T) {
	root := t.TempDir()
	occupant := filepath.Join(root, "Arial", "Arial.ttf")
	put(t, occupant, "leaving")

	// The occupant disappears between the stat and the hash, as when a
	// concurrent worker moves it to its own target.
	hash := func(path string) (uint64, error) {
		require.NoError(t, os.Remove(path))
		return 0, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	r := NewDuplicateResolver(hash)

	d, err := r.Resolve(Request{Source: "/in/x.ttf", Hash: hashOf("new"), Root: root, Target: arial})
	require.NoError(t, err)
	assert.Equal(t, ActionMove, d.Action)
	assert.Equal(t, occupant, d.Path)
}

func TestDuplicateResolver_AlreadyInPlace(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "Arial", "Arial (1).ttf")
	put(t, filepath.Join(root, "Arial", "Arial.ttf"), "first")
	put(t, src, "second")
	r := NewDuplicateResolver(fnvHash)

	d, err := r.Resolve(Request{Source: src, Hash: hashOf("second"), Root: root, Target: arial})
	require.NoError(t, err)
	assert.Equal(t, ActionSkip, d.Action)
	assert.False(t, d.Duplicate)
	assert.Equal(t, src, d.Path)
}

func TestDuplicateResolver_SuffixBound(t *testing.T) {
	for _, n := range []int{0, 1, 3, 7} {
		root := t.TempDir()
		put(t, filepath.Join(root, "Arial", "Arial.ttf"), "v0")
		for i := 1; i < n; i++ {
			put(t, filepath.Join(root, arial.WithSuffix(i).RelPath()), "v"+string(rune('0'+i)))
		}
		r := NewDuplicateResolver(fnvHash)

		d, err := r.Resolve(Request{Source: "/in/new.ttf", Hash: hashOf("new"), Root: root, Target: arial})
		require.NoError(t, err)
		assert.LessOrEqual(t, d.Suffix, n+1)
		_, statErr := os.Stat(d.Path)
		assert.True(t, os.IsNotExist(statErr), "chosen path %s must be free", d.Path)
	}
}

func TestDuplicateResolver_Concurrent(t *testing.T) {
	root := t.TempDir()
	r := NewDuplicateResolver(fnvHash)

	const workers = 32
	paths := make([]string, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := r.Resolve(Request{
				Source: filepath.Join("/in", string(rune('a'+i))+".ttf"),
				Hash:   uint64(i + 1),
				Root:   root,
				Target: arial,
			})
			assert.NoError(t, err)
			paths[i] = d.Path
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, p := range paths {
		assert.False(t, seen[p], "path %s claimed twice", p)
		seen[p] = true
	}
	assert.Equal(t, workers, r.Claimed())
}

func TestDuplicateResolver_Release(t *testing.T) {
	root := t.TempDir()
	r := NewDuplicateResolver(fnvHash)

	d, err := r.Resolve(Request{Source: "/in/a.ttf", Hash: 1, Root: root, Target: arial})
	require.NoError(t, err)
	r.Release(d.Path, "/in/other.ttf")
	assert.Equal(t, 1, r.Claimed(), "only the claimant may release")
	r.Release(d.Path, "/in/a.ttf")
	assert.Equal(t, 0, r.Claimed())

	d, err = r.Resolve(Request{Source: "/in/b.ttf", Hash: 2, Root: root, Target: arial})
	require.NoError(t, err)
	assert.Equal(t, ActionMove, d.Action)
}
