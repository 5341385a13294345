package manifest

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"site-cleaner/core/cleaner"
)

var (
	// ErrUnknownSource is returned when a source name is not registered.
	ErrUnknownSource = errors.New("unknown manifest source")

	// ErrInvalidPath is returned for entries that are absolute or escape the root.
	ErrInvalidPath = errors.New("invalid manifest path")
)

// Source produces the site files of the next build.
type Source interface {
	// Name returns the unique name of this source (e.g., "file", "storage").
	Name() string

	// Load returns one site file per output path.
	Load(ctx context.Context) ([]cleaner.SiteFile, error)
}

// Registry holds the configured sources by name.
type Registry struct {
	sources map[string]Source
}

// NewRegistry creates a registry holding the given sources.
func NewRegistry(sources ...Source) *Registry {
	r := &Registry{sources: make(map[string]Source)}
	for _, s := range sources {
		r.Register(s)
	}
	return r
}

// Register adds or replaces a source.
func (r *Registry) Register(s Source) {
	r.sources[s.Name()] = s
}

// Get returns the source registered under name.
func (r *Registry) Get(name string) (Source, error) {
	s, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
	return s, nil
}

// Names returns the registered source names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CleanPath validates a manifest entry and returns it in clean slash form.
func CleanPath(rel string) (string, error) {
	rel = strings.TrimSpace(strings.ReplaceAll(rel, "\\", "/"))
	if rel == "" || strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, rel)
	}
	clean := path.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, rel)
	}
	return clean, nil
}

// toSiteFiles validates every entry and converts it, de-duplicating as it goes.
func toSiteFiles(paths []string) ([]cleaner.SiteFile, error) {
	seen := make(map[string]struct{}, len(paths))
	files := make([]cleaner.SiteFile, 0, len(paths))
	for _, p := range paths {
		clean, err := CleanPath(p)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[clean]; dup {
			continue
		}
		seen[clean] = struct{}{}
		files = append(files, cleaner.RelativeFile(clean))
	}
	return files, nil
}
