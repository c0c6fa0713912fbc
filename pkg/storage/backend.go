package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo describes one directory entry. A non-directory FileInfo is the
// opaque source handle handed to the planner (it implements models.FileRef).
type FileInfo struct {
	AbsPath     string
	Name        string
	Size        int64
	ModTime     time.Time
	IsDir       bool
	Permissions uint32
}

// Path returns the absolute path of the entry
func (f *FileInfo) Path() string {
	return f.AbsPath
}

// Backend defines the interface for storage operations on absolute paths.
// It is the enumerator boundary for the planner and the I/O boundary for
// the copy executor.
type Backend interface {
	// ReadDir lists the direct children of a directory
	ReadDir(ctx context.Context, dir string) ([]FileInfo, error)

	// Open opens a file for reading
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Write creates or overwrites a file with the given content
	// If metadata is provided, attempts to preserve timestamps and permissions
	Write(ctx context.Context, path string, reader io.Reader, size int64, metadata *FileInfo) error

	// Delete removes a single file
	Delete(ctx context.Context, path string) error

	// Rename moves a file, replacing newPath if it exists
	Rename(ctx context.Context, oldPath, newPath string) error

	// Exists checks if a file or directory exists
	Exists(ctx context.Context, path string) (bool, error)

	// Stat returns file metadata
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// MkdirAll creates a directory and all necessary parents
	MkdirAll(ctx context.Context, path string) error

	// Close releases any resources held by the backend
	Close() error
}
