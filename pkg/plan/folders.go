package plan

import (
	"context"
	"sort"

	"github.com/sdejongh/photoharvest/pkg/models"
	"github.com/sdejongh/photoharvest/pkg/storage"
)

// FolderMaker makes a destination folder available and returns its handle.
// It must be idempotent.
type FolderMaker interface {
	MakeFolder(ctx context.Context, path string) (models.FolderRef, error)
}

// BackendFolderMaker creates folders on a storage backend
type BackendFolderMaker struct {
	backend storage.Backend
}

// NewBackendFolderMaker creates a folder maker over backend
func NewBackendFolderMaker(backend storage.Backend) *BackendFolderMaker {
	return &BackendFolderMaker{backend: backend}
}

// MakeFolder creates path and its parents if absent
func (m *BackendFolderMaker) MakeFolder(ctx context.Context, path string) (models.FolderRef, error) {
	if err := m.backend.MkdirAll(ctx, path); err != nil {
		return models.FolderRef{}, err
	}
	return models.FolderRef{Path: path}, nil
}

// DryRunFolderMaker hands out folder handles without touching any storage
type DryRunFolderMaker struct{}

// MakeFolder returns a handle for path
func (DryRunFolderMaker) MakeFolder(ctx context.Context, path string) (models.FolderRef, error) {
	return models.FolderRef{Path: path}, nil
}

// FolderCache asks its maker at most once per distinct folder path
type FolderCache struct {
	maker   FolderMaker
	folders map[string]models.FolderRef
}

// NewFolderCache creates an empty cache over maker
func NewFolderCache(maker FolderMaker) *FolderCache {
	return &FolderCache{
		maker:   maker,
		folders: make(map[string]models.FolderRef),
	}
}

// Ensure returns the cached handle for path, making the folder on first use
func (c *FolderCache) Ensure(ctx context.Context, path string) (models.FolderRef, error) {
	if ref, ok := c.folders[path]; ok {
		return ref, nil
	}

	ref, err := c.maker.MakeFolder(ctx, path)
	if err != nil {
		return models.FolderRef{}, err
	}
	c.folders[path] = ref
	return ref, nil
}

// Paths returns the folders made so far, sorted
func (c *FolderCache) Paths() []string {
	out := make([]string, 0, len(c.folders))
	for p := range c.folders {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
