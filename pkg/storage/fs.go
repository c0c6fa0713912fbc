package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FS is a storage backend over an afero filesystem
type FS struct {
	fs afero.Fs
}

// NewFS creates a backend over the given filesystem
func NewFS(fs afero.Fs) *FS {
	return &FS{fs: fs}
}

// NewLocal creates a backend over the operating system filesystem
func NewLocal() *FS {
	return NewFS(afero.NewOsFs())
}

// ReadDir lists the direct children of dir, sorted by name
func (b *FS) ReadDir(ctx context.Context, dir string) ([]FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos, err := afero.ReadDir(b.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	entries := make([]FileInfo, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, toFileInfo(filepath.Join(dir, info.Name()), info))
	}
	return entries, nil
}

// Open opens a file for reading
func (b *FS) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := b.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Write creates or overwrites a file
func (b *FS) Write(ctx context.Context, path string, reader io.Reader, size int64, metadata *FileInfo) error {
	if err := b.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := b.fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(file, reader)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if size >= 0 && written != size {
		return fmt.Errorf("incomplete write: expected %d bytes, wrote %d", size, written)
	}

	if metadata != nil {
		if !metadata.ModTime.IsZero() {
			if err := b.fs.Chtimes(path, metadata.ModTime, metadata.ModTime); err != nil {
				return fmt.Errorf("failed to set modification time: %w", err)
			}
		}
		if metadata.Permissions != 0 {
			if err := b.fs.Chmod(path, os.FileMode(metadata.Permissions)); err != nil {
				return fmt.Errorf("failed to set permissions: %w", err)
			}
		}
	}

	return nil
}

// Delete removes a single file
func (b *FS) Delete(ctx context.Context, path string) error {
	if err := b.fs.Remove(path); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	return nil
}

// Rename moves a file, replacing newPath if it exists
func (b *FS) Rename(ctx context.Context, oldPath, newPath string) error {
	if err := b.fs.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("failed to rename: %w", err)
	}
	return nil
}

// Exists checks if a file or directory exists
func (b *FS) Exists(ctx context.Context, path string) (bool, error) {
	ok, err := afero.Exists(b.fs, path)
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return ok, nil
}

// Stat returns file metadata
func (b *FS) Stat(ctx context.Context, path string) (*FileInfo, error) {
	info, err := b.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	fi := toFileInfo(path, info)
	return &fi, nil
}

// MkdirAll creates a directory and all necessary parents
func (b *FS) MkdirAll(ctx context.Context, path string) error {
	if err := b.fs.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// Close releases resources (no-op for afero filesystems)
func (b *FS) Close() error {
	return nil
}

func toFileInfo(path string, info os.FileInfo) FileInfo {
	return FileInfo{
		AbsPath:     path,
		Name:        info.Name(),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		IsDir:       info.IsDir(),
		Permissions: uint32(info.Mode().Perm()),
	}
}
