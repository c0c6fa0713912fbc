package plan

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sdejongh/photoharvest/internal/platform"
	"github.com/sdejongh/photoharvest/pkg/logging"
	"github.com/sdejongh/photoharvest/pkg/metadata"
	"github.com/sdejongh/photoharvest/pkg/models"
	"github.com/sdejongh/photoharvest/pkg/timestamp"
)

// DefaultNamePrefix is prepended to timestamp derived names
const DefaultNamePrefix = "IMG_"

// Options configures a NamePlanner
type Options struct {
	SourceRoot string
	DestRoot   string

	// NamePrefix defaults to DefaultNamePrefix
	NamePrefix string

	// Provider defaults to metadata.None
	Provider metadata.Provider

	// Converter defaults to timestamp.DefaultConfig
	Converter *timestamp.Converter

	// Folders defaults to DryRunFolderMaker
	Folders FolderMaker

	Logger logging.Logger
}

// NamePlanner computes the destination folder and name of source files.
// A NamePlanner holds the collision state of one planning run and is not
// safe for concurrent use.
type NamePlanner struct {
	sourceRoot string
	destRoot   string
	prefix     string
	provider   metadata.Provider
	converter  *timestamp.Converter
	folders    *FolderCache
	collisions CollisionTable
	taken      map[string]map[string]struct{}
	logger     logging.Logger
}

// NewNamePlanner creates a planner with fresh collision state
func NewNamePlanner(opts Options) (*NamePlanner, error) {
	if opts.SourceRoot == "" {
		return nil, &models.ValidationError{Field: "source", Message: "source root is required"}
	}
	if opts.DestRoot == "" {
		return nil, &models.ValidationError{Field: "dest", Message: "destination root is required"}
	}

	if opts.NamePrefix == "" {
		opts.NamePrefix = DefaultNamePrefix
	}
	if opts.Provider == nil {
		opts.Provider = metadata.None{}
	}
	if opts.Converter == nil {
		conv, err := timestamp.NewConverter(timestamp.DefaultConfig())
		if err != nil {
			return nil, err
		}
		opts.Converter = conv
	}
	if opts.Folders == nil {
		opts.Folders = DryRunFolderMaker{}
	}

	return &NamePlanner{
		sourceRoot: platform.NormalizePath(opts.SourceRoot),
		destRoot:   platform.NormalizePath(opts.DestRoot),
		prefix:     opts.NamePrefix,
		provider:   opts.Provider,
		converter:  opts.Converter,
		folders:    NewFolderCache(opts.Folders),
		collisions: NewCollisionTable(),
		taken:      make(map[string]map[string]struct{}),
		logger:     logging.OrNull(opts.Logger),
	}, nil
}

// PlanName returns the destination folder and file name for ref.
//
// The folder mirrors the position of ref under the source root. The name is
// built from the capture timestamp when the provider has one and is the
// source name otherwise. Names are unique within their folder for the
// lifetime of the planner.
func (p *NamePlanner) PlanName(ctx context.Context, ref models.FileRef) (models.FolderRef, string, error) {
	source := ref.Path()
	rel, ok := platform.TrimRoot(p.sourceRoot, source)
	if !ok || rel == "" {
		return models.FolderRef{}, "", &models.PathLayoutError{Path: source, Root: p.sourceRoot}
	}

	folderPath := filepath.Join(p.destRoot, filepath.Dir(rel))
	folder, err := p.folders.Ensure(ctx, folderPath)
	if err != nil {
		return models.FolderRef{}, "", fmt.Errorf("failed to create folder %s: %w", folderPath, err)
	}

	raw, err := p.provider.CaptureTimestamp(ctx, ref)
	if err != nil {
		return models.FolderRef{}, "", fmt.Errorf("failed to read capture time of %s: %w", source, err)
	}
	candidate, err := p.converter.Convert(raw)
	if err != nil {
		return models.FolderRef{}, "", fmt.Errorf("failed to convert capture time of %s: %w", source, err)
	}

	var name string
	if candidate == "" {
		name = p.passthroughName(folder.Path, filepath.Base(source))
	} else {
		name = p.timestampName(folder.Path, candidate, strings.ToLower(filepath.Ext(source)))
	}
	p.take(folder.Path, name)

	p.logger.Debug(ctx, "Planned entry", logging.Fields{
		"source":    source,
		"folder":    folder.Path,
		"name":      name,
		"timestamp": candidate,
	})
	return folder, name, nil
}

// Collisions returns the collision table of this run
func (p *NamePlanner) Collisions() CollisionTable {
	return p.collisions
}

// Folders returns the destination folders ensured so far
func (p *NamePlanner) Folders() []string {
	return p.folders.Paths()
}

func (p *NamePlanner) timestampName(folder, candidate, ext string) string {
	for {
		name := p.prefix + p.collisions.Assign(candidate) + ext
		if !p.isTaken(folder, name) {
			return name
		}
	}
}

// passthroughName keeps the source name unless a timestamp derived name
// already claimed it in the same folder
func (p *NamePlanner) passthroughName(folder, name string) string {
	if !p.isTaken(folder, name) {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 2; ; n++ {
		alt := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if !p.isTaken(folder, alt) {
			return alt
		}
	}
}

func (p *NamePlanner) isTaken(folder, name string) bool {
	_, ok := p.taken[folder][strings.ToLower(name)]
	return ok
}

func (p *NamePlanner) take(folder, name string) {
	names, ok := p.taken[folder]
	if !ok {
		names = make(map[string]struct{})
		p.taken[folder] = names
	}
	names[strings.ToLower(name)] = struct{}{}
}
