package cleaner

import (
	"path/filepath"
	"strings"
)

// joinRoot joins a slash-separated relative path onto root.
func joinRoot(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}

// isWithin reports whether p is parent itself or lies below it.
func isWithin(parent, p string) bool {
	if p == parent {
		return true
	}
	prefix := parent
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(p, prefix)
}

// ancestors returns the strict ancestors of p that lie inside root, nearest first.
// The root itself is included when p is below it.
func ancestors(root, p string) []string {
	var out []string
	if p == root || !isWithin(root, p) {
		return out
	}
	for dir := filepath.Dir(p); ; dir = filepath.Dir(dir) {
		out = append(out, dir)
		if dir == root || dir == filepath.Dir(dir) {
			return out
		}
	}
}
