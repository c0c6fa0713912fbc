package plan

import "fmt"

// CollisionTable counts how many files were assigned each timestamp
// candidate during a planning run
type CollisionTable map[string]int

// NewCollisionTable creates an empty table
func NewCollisionTable() CollisionTable {
	return make(CollisionTable)
}

// Assign records one more file for candidate and returns its stem: the
// candidate itself for the first file, candidate_N for the Nth.
func (t CollisionTable) Assign(candidate string) string {
	n := t[candidate] + 1
	t[candidate] = n
	if n == 1 {
		return candidate
	}
	return fmt.Sprintf("%s_%d", candidate, n)
}

// Duplicates returns how many files were given a numbered name because an
// earlier file shared their candidate
func (t CollisionTable) Duplicates() int {
	var n int
	for _, count := range t {
		n += count - 1
	}
	return n
}
