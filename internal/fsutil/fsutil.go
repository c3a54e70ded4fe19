// Package fsutil implements the filesystem operations placement needs:
// content hashing for duplicate detection and a move that never
// overwrites and survives cross-device targets.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/cespare/xxhash/v2"
)

var (
	// ErrExists is returned when the destination is already occupied.
	ErrExists = errors.New("destination exists")
	// ErrVerify is returned when a copied file does not hash like its source.
	ErrVerify = errors.New("copy verification failed")
)

// rename is swapped in tests to simulate cross-device moves.
var rename = os.Rename

// HashFile returns the xxhash64 digest of the file's contents.
func HashFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, fmt.Errorf("hash %s: %w", path, err)
	}
	return h.Sum64(), nil
}

// MoveResult describes a completed move.
type MoveResult struct {
	Bytes  int64
	Copied bool // true when the cross-device fallback was used
	// SourceRemoveErr is set when the copy succeeded but the source could
	// not be deleted. The destination is complete and verified.
	SourceRemoveErr error
}

// Move relocates src to dst, creating parent directories. It refuses to
// replace an existing dst. When rename fails across filesystems the file is
// copied, synced, verified against its source hash and only then is the
// source removed; a partial copy is always cleaned up.
func Move(src, dst string) (MoveResult, error) {
	fi, err := os.Stat(src)
	if err != nil {
		return MoveResult{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return MoveResult{}, err
	}
	if _, err := os.Lstat(dst); err == nil {
		return MoveResult{}, fmt.Errorf("%s: %w", dst, ErrExists)
	} else if !errors.Is(err, os.ErrNotExist) {
		return MoveResult{}, err
	}

	err = rename(src, dst)
	if err == nil {
		return MoveResult{Bytes: fi.Size()}, nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return MoveResult{}, err
	}
	return copyMove(src, dst, fi)
}

func copyMove(src, dst string, fi os.FileInfo) (res MoveResult, err error) {
	want, err := HashFile(src)
	if err != nil {
		return res, err
	}

	in, err := os.Open(src)
	if err != nil {
		return res, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fi.Mode().Perm())
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return res, fmt.Errorf("%s: %w", dst, ErrExists)
		}
		return res, err
	}
	defer func() {
		if err != nil {
			os.Remove(dst)
		}
	}()

	n, err := io.Copy(out, in)
	if err == nil {
		err = out.Sync()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return res, fmt.Errorf("copy %s: %w", src, err)
	}

	got, err := HashFile(dst)
	if err != nil {
		return res, err
	}
	if got != want {
		return res, fmt.Errorf("%s: %w", dst, ErrVerify)
	}
	_ = os.Chtimes(dst, fi.ModTime(), fi.ModTime())

	res = MoveResult{Bytes: n, Copied: true}
	if rerr := os.Remove(src); rerr != nil {
		res.SourceRemoveErr = rerr
	}
	return res, nil
}
