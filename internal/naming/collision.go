package naming

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Action is what the placement engine must do with a file.
type Action int

const (
	// ActionMove places the file at the candidate path.
	ActionMove Action = iota
	// ActionSkip leaves the file where it is.
	ActionSkip
	// ActionRenameSuffix places the file at the candidate path with a
	// " (n)" suffix.
	ActionRenameSuffix
)

func (a Action) String() string {
	switch a {
	case ActionMove:
		return "move"
	case ActionSkip:
		return "skip"
	case ActionRenameSuffix:
		return "rename-suffix"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// HashFunc returns the content hash of the file at path.
type HashFunc func(path string) (uint64, error)

// Request asks where a source file should go.
type Request struct {
	Source string // absolute source path
	Hash   uint64 // content hash of Source
	Root   string // output root the target is relative to
	Target Target
}

// Decision is the resolver's answer. Path is the absolute destination
// (the source path itself for skips).
type Decision struct {
	Action Action
	Path   string
	Suffix int // n for ActionRenameSuffix

	// Duplicate is set when an identical file already occupies the target;
	// DuplicateOf names it.
	Duplicate   bool
	DuplicateOf string
}

type claim struct {
	source string
	hash   uint64
}

// DuplicateResolver tracks target paths claimed during a run and decides,
// per file, between moving, skipping and renaming with a numeric suffix.
// Occupied targets are compared by content hash: identical content is a
// duplicate, different content gets the smallest free " (n)" suffix. All
// methods are goroutine-safe; check-and-claim is atomic.
type DuplicateResolver struct {
	mu     sync.Mutex
	claims map[string]claim // absolute target path → claimant
	hash   HashFunc
}

// NewDuplicateResolver creates a resolver that hashes on-disk occupants
// with hash.
func NewDuplicateResolver(hash HashFunc) *DuplicateResolver {
	return &DuplicateResolver{
		claims: make(map[string]claim),
		hash:   hash,
	}
}

// Resolve decides the placement for req and claims the chosen path. An
// error means an occupant could not be inspected; nothing is claimed.
func (r *DuplicateResolver) Resolve(req Request) (Decision, error) {
	src := filepath.Clean(req.Source)

	r.mu.Lock()
	defer r.mu.Unlock()

	for n := 0; ; n++ {
		t := req.Target
		if n > 0 {
			t = t.WithSuffix(n)
		}
		candidate := filepath.Join(req.Root, t.RelPath())

		// Already in place, possibly under an earlier suffix.
		if candidate == src {
			r.claims[candidate] = claim{source: src, hash: req.Hash}
			return Decision{Action: ActionSkip, Path: src}, nil
		}

		if c, ok := r.claims[candidate]; ok {
			if c.hash == req.Hash {
				return Decision{Action: ActionSkip, Path: src, Duplicate: true, DuplicateOf: candidate}, nil
			}
			continue
		}

		occupied, err := exists(candidate)
		if err != nil {
			return Decision{}, err
		}
		if occupied {
			h, err := r.hash(candidate)
			if errors.Is(err, fs.ErrNotExist) {
				// Moved away by another worker since the stat; look again.
				n--
				continue
			}
			if err != nil {
				return Decision{}, fmt.Errorf("hash occupant %s: %w", candidate, err)
			}
			if h == req.Hash {
				return Decision{Action: ActionSkip, Path: src, Duplicate: true, DuplicateOf: candidate}, nil
			}
			continue
		}

		r.claims[candidate] = claim{source: src, hash: req.Hash}
		if n == 0 {
			return Decision{Action: ActionMove, Path: candidate}, nil
		}
		return Decision{Action: ActionRenameSuffix, Path: candidate, Suffix: n}, nil
	}
}

// Release drops a claim made for source, after a failed move, so later
// files can use the path.
func (r *DuplicateResolver) Release(path, source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.claims[path]; ok && c.source == filepath.Clean(source) {
		delete(r.claims, path)
	}
}

// Claimed reports how many paths are claimed.
func (r *DuplicateResolver) Claimed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.claims)
}

func exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
}
