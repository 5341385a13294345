package manifest

import (
	"context"
	"fmt"

	"site-cleaner/core/cleaner"

	"github.com/spf13/afero"
)

// FileSource reads a manifest file from a filesystem.
type FileSource struct {
	fs   afero.Fs
	path string
}

// NewFileSource creates a source for the manifest at path.
func NewFileSource(fsys afero.Fs, path string) *FileSource {
	return &FileSource{fs: fsys, path: path}
}

// Name returns "file".
func (s *FileSource) Name() string {
	return "file"
}

// Load reads and parses the manifest.
func (s *FileSource) Load(ctx context.Context) ([]cleaner.SiteFile, error) {
	if s.path == "" {
		return nil, fmt.Errorf("manifest path is not configured")
	}
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", s.path, err)
	}
	paths, err := Parse(s.path, data)
	if err != nil {
		return nil, err
	}
	return toSiteFiles(paths)
}
