package cleaner

import (
	"iter"
	"os"
	"path/filepath"
)

// DesiredFiles maps every site file to its cleaned destination under the root.
func (r *Reconciler) DesiredFiles(files iter.Seq[SiteFile]) PathSet {
	set := make(PathSet)
	if files == nil {
		return set
	}
	for f := range files {
		set.Add(filepath.Clean(f.Destination(r.root)))
	}
	return set
}

// DesiredDirs returns every directory between the root and a desired file, the root
// included. Destinations outside the root imply no directory.
func (r *Reconciler) DesiredDirs(files PathSet) PathSet {
	dirs := make(PathSet)
	for p := range files {
		for _, dir := range ancestors(r.root, p) {
			if dirs.Has(dir) {
				// The rest of the chain was added with it.
				break
			}
			dirs.Add(dir)
		}
	}
	return dirs
}

// TypeConflicts returns the desired directories currently occupied by something that
// is not a directory: a plain file, or a symlink that does not resolve to a directory.
// The root is never a conflict.
func (r *Reconciler) TypeConflicts(dirs PathSet) (PathSet, error) {
	conflicts := make(PathSet)
	for dir := range dirs {
		if dir == r.root {
			continue
		}
		blocked, err := r.blocksDirectory(dir)
		if err != nil {
			return nil, &TraversalError{Root: r.root, Path: dir, Err: err}
		}
		if blocked {
			conflicts.Add(dir)
		}
	}
	return conflicts, nil
}

func (r *Reconciler) blocksDirectory(p string) (bool, error) {
	info, err := lstat(r.fs, p)
	if err != nil {
		if isNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := r.fs.Stat(p)
		if err != nil {
			if isNotExist(err) {
				// Dangling link still prevents mkdir.
				return true, nil
			}
			return false, err
		}
		return !target.IsDir(), nil
	}
	return true, nil
}
