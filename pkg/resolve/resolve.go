// Package resolve decides which of an edited/original pair of files is kept.
package resolve

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/sdejongh/photoharvest/pkg/logging"
)

// Resolver computes survivor sets
type Resolver struct {
	marker Marker
	logger logging.Logger
}

// NewResolver creates a resolver using the given marker
func NewResolver(marker Marker, logger logging.Logger) *Resolver {
	return &Resolver{marker: marker, logger: logging.OrNull(logger)}
}

// ResolveSurvivors resolves paths with the default marker and no logging
func ResolveSurvivors(paths []string, suffixes SuffixSet) *SurvivorSet {
	return NewResolver(DefaultMarker, nil).Resolve(context.Background(), paths, suffixes)
}

// Resolve returns the base names that survive variant resolution.
//
// Paths with a disallowed extension are ignored. The rest are processed in
// sorted path order: an edited name is always added and evicts its original
// if present; an original is added only when neither it nor its edited
// counterpart is already in the set. Because later names can retract earlier
// decisions the iteration order matters.
func (r *Resolver) Resolve(ctx context.Context, paths []string, suffixes SuffixSet) *SurvivorSet {
	sorted := make([]string, 0, len(paths))
	for _, p := range paths {
		if suffixes.Allows(p) {
			sorted = append(sorted, p)
		}
	}
	sort.Strings(sorted)

	set := newSurvivorSet()
	for _, p := range sorted {
		name := filepath.Base(p)

		if r.marker.IsEdited(name) {
			if !set.Contains(name) {
				set.add(name)
			}
			original := r.marker.OriginalOf(name)
			if set.Contains(original) {
				set.remove(original)
				r.logger.Debug(ctx, "Edited variant replaces original", logging.Fields{
					"removed": original,
					"added":   name,
				})
			}
			continue
		}

		if set.Contains(name) {
			continue
		}
		if edited := r.marker.EditedOf(name); edited != "" && set.Contains(edited) {
			continue
		}
		set.add(name)
	}

	return set
}
