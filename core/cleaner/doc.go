// Package cleaner reconciles a build-output directory with the set of files a
// generator is about to write.
//
// Before a build writes its outputs, the destination root may still hold files
// from earlier builds that the next build will not produce. The cleaner computes
// the obsolete paths and removes them, leaving everything the next build still
// needs and everything matched by a keep pattern.
//
// # Derived Sets
//
// A plan is built from four sets of cleaned, absolute paths:
//
//  1. CurrentTree: every entry under the root (dotfiles included), minus keep matches.
//  2. DesiredFiles: the destinations of the site files about to be written.
//  3. DesiredDirs: every directory between the root and a desired file.
//  4. TypeConflicts: desired directories that currently exist as plain files.
//
// The obsolete set is (CurrentTree - DesiredFiles - DesiredDirs) plus TypeConflicts.
// Directories that contain a kept entry are never obsolete, so a recursive removal
// cannot reach a kept path.
//
// # Usage
//
//	r, err := cleaner.New(afero.NewOsFs(), "/srv/site/_site", []string{".git", ".svn"})
//	if err != nil {
//	    return err
//	}
//	plan, err := r.Plan(cleaner.Files(siteFiles...))
//	if err != nil {
//	    return err
//	}
//	removed, err := r.Apply(ctx, plan, cleaner.Options{})
//
// The package is synchronous and holds no locks. Callers that may run cleanups of the
// same root concurrently must serialize them.
package cleaner
