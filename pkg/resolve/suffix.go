package resolve

import (
	"path/filepath"
	"sort"
	"strings"
)

// SuffixSet is a set of allowed file extensions, stored lowercased with a
// leading dot
type SuffixSet map[string]struct{}

// NewSuffixSet builds a set from extensions such as ".jpg", "JPG" or "heic"
func NewSuffixSet(suffixes ...string) SuffixSet {
	set := make(SuffixSet, len(suffixes))
	for _, s := range suffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		set[s] = struct{}{}
	}
	return set
}

// Allows reports whether the lowercased extension of name is in the set
func (s SuffixSet) Allows(name string) bool {
	_, ok := s[strings.ToLower(filepath.Ext(name))]
	return ok
}

// List returns the suffixes in sorted order
func (s SuffixSet) List() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
