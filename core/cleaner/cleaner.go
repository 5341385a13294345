package cleaner

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Reconciler plans and applies the cleanup of one destination root.
type Reconciler struct {
	fs   afero.Fs
	root string
	keep *KeepMatcher
}

// New creates a Reconciler for root on fsys. A relative root is resolved against the
// working directory. Keep patterns are compiled once.
func New(fsys afero.Fs, root string, keepPatterns []string) (*Reconciler, error) {
	if fsys == nil {
		return nil, errors.New("filesystem is required")
	}
	if root == "" {
		return nil, errors.New("destination root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination root %s: %w", root, err)
	}
	return &Reconciler{
		fs:   fsys,
		root: abs,
		keep: NewKeepMatcher(keepPatterns),
	}, nil
}

// Root returns the absolute destination root.
func (r *Reconciler) Root() string {
	return r.root
}

// KeepPatterns returns the effective keep patterns.
func (r *Reconciler) KeepPatterns() []string {
	return r.keep.Patterns()
}
