package models

import "sort"

// FileRef is an opaque handle to a source file produced by an enumerator.
// It is immutable once produced.
type FileRef interface {
	// Path returns the absolute source path
	Path() string
}

// FolderRef identifies a destination directory
type FolderRef struct {
	// Path is the absolute directory path
	Path string `json:"path" yaml:"path"`
}

// Enumeration maps absolute source paths to their file handles.
// It is built once per run and read-only afterwards.
type Enumeration map[string]FileRef

// Add records a file handle under its absolute path
func (e Enumeration) Add(ref FileRef) {
	e[ref.Path()] = ref
}

// SortedPaths returns the enumerated paths in lexicographic order
func (e Enumeration) SortedPaths() []string {
	paths := make([]string, 0, len(e))
	for p := range e {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
