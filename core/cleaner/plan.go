package cleaner

import (
	"context"
	"fmt"
	"iter"
	"sort"
)

// Plan computes the obsolete paths of the root for the given site files.
// It does NOT remove anything; use Apply for that.
func (r *Reconciler) Plan(files iter.Seq[SiteFile]) (*Plan, error) {
	tree, err := r.CurrentTree()
	if err != nil {
		return nil, err
	}

	desiredFiles := r.DesiredFiles(files)
	desiredDirs := r.DesiredDirs(desiredFiles)

	conflicts, err := r.TypeConflicts(desiredDirs)
	if err != nil {
		return nil, err
	}

	// Removing a directory that holds a kept entry would remove the kept entry too.
	protected := make(PathSet)
	for kept := range tree.Kept {
		for _, dir := range ancestors(r.root, kept) {
			if protected.Has(dir) {
				break
			}
			protected.Add(dir)
		}
	}

	actions := make(map[string]Action)
	for path, entry := range tree.Entries {
		if desiredFiles.Has(path) || desiredDirs.Has(path) || protected.Has(path) {
			continue
		}
		actions[path] = Action{
			Type:   ActionRemove,
			Path:   path,
			Reason: "not produced by the next build",
			Size:   entry.Size,
		}
	}
	for path := range conflicts {
		if r.isKept(path) {
			continue
		}
		actions[path] = Action{
			Type:   ActionReplace,
			Path:   path,
			Reason: "plain file where a directory is needed",
			Size:   tree.Entries[path].Size,
		}
	}

	plan := &Plan{
		Root:    r.root,
		Actions: make([]Action, 0, len(actions)),
		Summary: PlanSummary{
			Existing:      len(tree.Entries),
			Kept:          len(tree.Kept),
			DesiredFiles:  len(desiredFiles),
			DesiredDirs:   len(desiredDirs),
			TypeConflicts: len(conflicts),
			Obsolete:      len(actions),
		},
	}
	for _, action := range actions {
		plan.Actions = append(plan.Actions, action)
		plan.Summary.ReclaimBytes += action.Size
	}
	sort.Slice(plan.Actions, func(i, j int) bool {
		return plan.Actions[i].Path < plan.Actions[j].Path
	})

	return plan, nil
}

// Apply removes every path in the plan, recursively. Paths that no longer exist are
// skipped silently. The first failure stops the run; the returned count is the number
// of paths processed before it.
func (r *Reconciler) Apply(ctx context.Context, plan *Plan, opts Options) (executed int, err error) {
	if opts.DryRun {
		return 0, nil
	}
	if plan.Root != r.root {
		return 0, fmt.Errorf("%w: %s", ErrRootMismatch, plan.Root)
	}

	for _, action := range plan.Actions {
		if err := ctx.Err(); err != nil {
			return executed, err
		}
		if action.Path == r.root || !isWithin(r.root, action.Path) {
			return executed, &DeletionError{Path: action.Path, Err: ErrOutsideRoot}
		}
		if err := r.fs.RemoveAll(action.Path); err != nil && !isNotExist(err) {
			return executed, &DeletionError{Path: action.Path, Err: err}
		}
		executed++
	}

	return executed, nil
}

// Cleanup is a convenience wrapper that plans and applies in one call.
func (r *Reconciler) Cleanup(ctx context.Context, files iter.Seq[SiteFile], opts Options) (*Plan, int, error) {
	plan, err := r.Plan(files)
	if err != nil {
		return nil, 0, err
	}

	executed, err := r.Apply(ctx, plan, opts)
	return plan, executed, err
}
