package cleaner

import (
	"iter"
	"slices"
	"sort"
)

// SiteFile is anything the generator will write. Destination returns the absolute
// path of the output under the given destination root.
type SiteFile interface {
	Destination(root string) string
}

// Files adapts a fixed list of site files into the iteration form Plan consumes.
func Files(files ...SiteFile) iter.Seq[SiteFile] {
	return slices.Values(files)
}

// RelativeFile is a SiteFile addressed by a slash-separated path relative to the root.
type RelativeFile string

// Destination joins the relative path onto root.
func (f RelativeFile) Destination(root string) string {
	return joinRoot(root, string(f))
}

// PathSet is an unordered set of cleaned paths.
type PathSet map[string]struct{}

// Add inserts p into the set.
func (s PathSet) Add(p string) {
	s[p] = struct{}{}
}

// Has reports whether p is in the set.
func (s PathSet) Has(p string) bool {
	_, ok := s[p]
	return ok
}

// Sorted returns the members in lexicographic order.
func (s PathSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Entry describes one filesystem entry found under the destination root.
type Entry struct {
	// IsDir is true for directories (symlinks are never directories here).
	IsDir bool `json:"is_dir"`

	// Size is the entry size in bytes as reported by lstat.
	Size int64 `json:"size"`
}

// Tree is the CurrentTree of a destination root.
type Tree struct {
	// Entries holds every non-kept entry keyed by absolute path.
	Entries map[string]Entry

	// Kept holds the entries excluded by a keep pattern.
	Kept PathSet
}

// Paths returns the entry paths as a set.
func (t *Tree) Paths() PathSet {
	set := make(PathSet, len(t.Entries))
	for p := range t.Entries {
		set.Add(p)
	}
	return set
}

// ActionType represents the reason a path is being removed.
type ActionType string

const (
	// ActionRemove removes a path the next build no longer produces.
	ActionRemove ActionType = "remove"
	// ActionReplace removes a plain file so a directory can be created in its place.
	ActionReplace ActionType = "replace"
)

// Action represents a planned removal.
type Action struct {
	// Type specifies why the path is removed.
	Type ActionType `json:"type"`

	// Path is the absolute path to remove, recursively.
	Path string `json:"path"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`

	// Size is the lstat size of the entry; zero for directories.
	Size int64 `json:"size"`
}

// Plan is the ObsoleteSet of a destination root together with a summary.
type Plan struct {
	// Root is the destination root the plan was computed for.
	Root string `json:"root"`

	// Actions contains one removal per obsolete path, sorted by path.
	Actions []Action `json:"actions"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate statistics for a plan.
type PlanSummary struct {
	// Existing is the number of entries found under the root, kept ones excluded.
	Existing int `json:"existing"`

	// Kept is the number of entries matched by a keep pattern.
	Kept int `json:"kept"`

	// DesiredFiles is the number of distinct output files.
	DesiredFiles int `json:"desired_files"`

	// DesiredDirs is the number of distinct directories implied by the output files.
	DesiredDirs int `json:"desired_dirs"`

	// TypeConflicts counts plain files that must give way to a directory.
	TypeConflicts int `json:"type_conflicts"`

	// Obsolete counts the paths planned for removal.
	Obsolete int `json:"obsolete"`

	// ReclaimBytes is the total size of the plain files that the plan removes.
	ReclaimBytes int64 `json:"reclaim_bytes"`
}

// Paths returns the obsolete paths in plan order.
func (p *Plan) Paths() []string {
	out := make([]string, 0, len(p.Actions))
	for _, a := range p.Actions {
		out = append(out, a.Path)
	}
	return out
}

// Empty reports whether the plan removes nothing.
func (p *Plan) Empty() bool {
	return len(p.Actions) == 0
}

// Roots returns the minimal subset of obsolete paths whose recursive removal covers
// the whole plan: a path is dropped when one of its ancestors is also obsolete.
func (p *Plan) Roots() []string {
	obsolete := make(PathSet, len(p.Actions))
	for _, a := range p.Actions {
		obsolete.Add(a.Path)
	}

	var roots []string
	for _, path := range p.Paths() {
		covered := false
		for _, dir := range ancestors(p.Root, path) {
			if obsolete.Has(dir) {
				covered = true
				break
			}
		}
		if !covered {
			roots = append(roots, path)
		}
	}
	return roots
}

// Options controls how a plan is applied.
type Options struct {
	// DryRun prevents any removal if true.
	DryRun bool
}
