package pipeline

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/fontsort/internal/config"
)

// Discover walks root and collects regular files whose extension matches
// one of exts (lowercase, with leading dot) case-insensitively. Hidden
// directories and the directories listed in skip are pruned; symlinks below
// root are not followed, but a symlinked root is resolved first. Paths are returned sorted lexicographically for
// deterministic processing order.
//
// An unreadable root is an error. Unreadable subdirectories are pruned and
// returned as failures so the run can report them.
func Discover(root string, exts []string, skip ...string) ([]string, []Failure, error) {
	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		want[strings.ToLower(e)] = true
	}
	pruned := make(map[string]bool, len(skip))
	for _, s := range skip {
		if s != "" {
			pruned[filepath.Clean(s)] = true
		}
	}
	root = filepath.Clean(root)
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	var files []string
	var unreadable []Failure
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			unreadable = append(unreadable, Failure{Path: path, Reason: err.Error()})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), ".") || pruned[path]) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if want[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	sort.Strings(files)
	return files, unreadable, nil
}

// resolveDirs returns the absolute, symlink-resolved root and output
// directory for cfg. An empty output means in place. An output that does
// not exist yet keeps its absolute path; a root that cannot be resolved is
// returned as is so the caller's stat reports the real error.
func resolveDirs(cfg *config.Config) (root, out string, err error) {
	if root, err = filepath.Abs(cfg.InputDir); err != nil {
		return cfg.InputDir, "", err
	}
	if resolved, rerr := filepath.EvalSymlinks(root); rerr == nil {
		root = resolved
	}
	if cfg.OutputDir == "" {
		return root, root, nil
	}
	if out, err = filepath.Abs(cfg.OutputDir); err != nil {
		return root, "", err
	}
	if resolved, rerr := filepath.EvalSymlinks(out); rerr == nil {
		out = resolved
	}
	return root, out, nil
}
