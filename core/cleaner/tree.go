package cleaner

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// CurrentTree enumerates every entry below the root, dotfiles included, and splits
// off the entries matched by a keep pattern. Kept directories are not descended into.
// A missing root yields an empty tree.
func (r *Reconciler) CurrentTree() (*Tree, error) {
	tree := &Tree{
		Entries: make(map[string]Entry),
		Kept:    make(PathSet),
	}

	info, err := lstat(r.fs, r.root)
	if err != nil {
		if isNotExist(err) {
			return tree, nil
		}
		return nil, &TraversalError{Root: r.root, Path: r.root, Err: err}
	}
	if !info.IsDir() {
		return nil, &TraversalError{Root: r.root, Path: r.root, Err: ErrRootNotDirectory}
	}

	err = afero.Walk(r.fs, r.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return &TraversalError{Root: r.root, Path: path, Err: err}
		}
		if path == r.root {
			return nil
		}
		if name := filepath.Base(path); name == "." || name == ".." {
			return nil
		}

		if r.isKept(path) {
			tree.Kept.Add(path)
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		entry := Entry{IsDir: info.IsDir()}
		if !entry.IsDir {
			entry.Size = info.Size()
		}
		tree.Entries[path] = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	return tree, nil
}

// isKept matches p against the keep patterns using its root-relative form.
func (r *Reconciler) isKept(p string) bool {
	rel, err := filepath.Rel(r.root, p)
	if err != nil {
		return false
	}
	return r.keep.Match(filepath.ToSlash(rel))
}

// lstat does not follow symlinks when the filesystem supports it.
func lstat(fsys afero.Fs, name string) (os.FileInfo, error) {
	if l, ok := fsys.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(name)
		return info, err
	}
	return fsys.Stat(name)
}
