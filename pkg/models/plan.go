package models

import (
	"path/filepath"
	"time"
)

// CopyPlanEntry is a single copy instruction
type CopyPlanEntry struct {
	// Source is the file to copy
	Source FileRef

	// DestFolder is the directory the file lands in
	DestFolder FolderRef

	// DestName is the file name inside DestFolder, unique within that folder
	DestName string
}

// SourcePath returns the absolute source path of the entry
func (e CopyPlanEntry) SourcePath() string {
	return e.Source.Path()
}

// DestPath returns the full destination path of the entry
func (e CopyPlanEntry) DestPath() string {
	return filepath.Join(e.DestFolder.Path, e.DestName)
}

// CopyPlan is the ordered list of copy instructions produced by the planner.
// Entries are ordered by source path.
type CopyPlan struct {
	ID         string
	SourceRoot string
	DestRoot   string
	CreatedAt  time.Time
	Entries    []CopyPlanEntry
}

// NewCopyPlan creates an empty plan
func NewCopyPlan(id, sourceRoot, destRoot string) *CopyPlan {
	return &CopyPlan{
		ID:         id,
		SourceRoot: sourceRoot,
		DestRoot:   destRoot,
		CreatedAt:  time.Now(),
		Entries:    []CopyPlanEntry{},
	}
}

// Add appends an entry to the plan
func (p *CopyPlan) Add(entry CopyPlanEntry) {
	p.Entries = append(p.Entries, entry)
}

// Len returns the number of entries
func (p *CopyPlan) Len() int {
	return len(p.Entries)
}

// IsEmpty returns true if there is nothing to copy
func (p *CopyPlan) IsEmpty() bool {
	return len(p.Entries) == 0
}

// Folders returns the distinct destination folders in first-use order
func (p *CopyPlan) Folders() []FolderRef {
	seen := make(map[string]bool)
	var folders []FolderRef
	for _, e := range p.Entries {
		if seen[e.DestFolder.Path] {
			continue
		}
		seen[e.DestFolder.Path] = true
		folders = append(folders, e.DestFolder)
	}
	return folders
}
