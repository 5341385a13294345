package cleaner

import (
	"path/filepath"
	"regexp"
	"strings"
)

// KeepMatcher decides whether a path is protected by a keep pattern.
//
// Patterns are literal path fragments such as ".git" or "assets/vendor". A path is
// kept when one of its components starts with a pattern, so ".git" keeps ".git/HEAD"
// and also ".gitignore". Matching happens on the root-relative path only.
type KeepMatcher struct {
	patterns []string
	re       *regexp.Regexp
}

// NewKeepMatcher compiles patterns into a single alternation. Blank patterns are
// ignored; with no usable pattern the matcher never matches.
func NewKeepMatcher(patterns []string) *KeepMatcher {
	m := &KeepMatcher{}
	quoted := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(p)), "/")
		if p == "" {
			continue
		}
		m.patterns = append(m.patterns, p)
		quoted = append(quoted, regexp.QuoteMeta(p))
	}
	if len(quoted) > 0 {
		m.re = regexp.MustCompile("/(?:" + strings.Join(quoted, "|") + ")")
	}
	return m
}

// Patterns returns the patterns the matcher was built from, blanks removed.
func (m *KeepMatcher) Patterns() []string {
	return append([]string(nil), m.patterns...)
}

// Match reports whether rel, a slash-separated path relative to the root, is kept.
func (m *KeepMatcher) Match(rel string) bool {
	if m == nil || m.re == nil {
		return false
	}
	return m.re.MatchString("/" + strings.TrimPrefix(rel, "/"))
}
