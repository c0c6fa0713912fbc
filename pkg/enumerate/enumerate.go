// Package enumerate walks a source tree and catalogs every file under the
// folders selected by a folder-name filter.
package enumerate

import (
	"context"
	"strings"

	"github.com/sdejongh/photoharvest/pkg/logging"
	"github.com/sdejongh/photoharvest/pkg/models"
	"github.com/sdejongh/photoharvest/pkg/storage"
)

// Enumerator lists files under a root through a storage backend
type Enumerator struct {
	backend storage.Backend
	logger  logging.Logger
}

// New creates an enumerator reading from backend
func New(backend storage.Backend, logger logging.Logger) *Enumerator {
	return &Enumerator{
		backend: backend,
		logger:  logging.OrNull(logger),
	}
}

// Enumerate walks root depth-first and returns every file found in the
// visited folders, keyed by absolute path.
//
// With an empty filter every subfolder is visited. Otherwise a subfolder is
// visited only if its name contains one of the filter substrings; skipped
// subfolders contribute nothing. The root itself is always visited.
//
// A folder that cannot be read aborts the walk with a *models.TraversalError.
func (e *Enumerator) Enumerate(ctx context.Context, root string, filter []string) (models.Enumeration, error) {
	result := models.Enumeration{}
	pending := []string{root}

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		entries, err := e.backend.ReadDir(ctx, dir)
		if err != nil {
			return nil, &models.TraversalError{Path: dir, Err: err}
		}

		// Push in reverse so folders are visited in name order
		for i := len(entries) - 1; i >= 0; i-- {
			entry := entries[i]
			if !entry.IsDir {
				continue
			}
			if !MatchesFilter(entry.Name, filter) {
				e.logger.Debug(ctx, "Ignore folder", logging.Fields{"path": entry.AbsPath})
				continue
			}
			e.logger.Debug(ctx, "Listing folder", logging.Fields{"path": entry.AbsPath})
			pending = append(pending, entry.AbsPath)
		}

		for i := range entries {
			if entries[i].IsDir {
				continue
			}
			ref := entries[i]
			result.Add(&ref)
		}
	}

	e.logger.Info(ctx, "Enumeration complete", logging.Fields{
		"root":  root,
		"files": len(result),
	})

	return result, nil
}

// MatchesFilter reports whether a folder name passes the filter.
// An empty filter matches everything; matching is a case-sensitive
// substring test.
func MatchesFilter(name string, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if strings.Contains(name, f) {
			return true
		}
	}
	return false
}
