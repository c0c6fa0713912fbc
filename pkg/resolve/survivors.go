package resolve

import (
	"path/filepath"
	"sort"
	"strings"
)

// SurvivorSet is the set of base file names selected for copying.
// Names keep their case; membership compares them with the extension
// lowercased, so IMG_0001.JPG and IMG_0001.jpg are the same member.
type SurvivorSet struct {
	names map[string]string
}

func newSurvivorSet() *SurvivorSet {
	return &SurvivorSet{names: make(map[string]string)}
}

// Contains reports whether name is a member
func (s *SurvivorSet) Contains(name string) bool {
	_, ok := s.names[memberKey(name)]
	return ok
}

// Len returns the number of members
func (s *SurvivorSet) Len() int {
	return len(s.names)
}

// sortedNames returns the members in sorted order
func (s *SurvivorSet) sortedNames() []string {
	out := make([]string, 0, len(s.names))
	for _, n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (s *SurvivorSet) add(name string) {
	s.names[memberKey(name)] = name
}

func (s *SurvivorSet) remove(name string) {
	delete(s.names, memberKey(name))
}

func memberKey(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + strings.ToLower(ext)
}
