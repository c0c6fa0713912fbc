package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/photoharvest/pkg/enumerate"
	"github.com/sdejongh/photoharvest/pkg/logging"
	"github.com/sdejongh/photoharvest/pkg/models"
	"github.com/sdejongh/photoharvest/pkg/resolve"
	"github.com/sdejongh/photoharvest/pkg/storage"
)

// ConsolidatorConfig holds the inputs of one planning run
type ConsolidatorConfig struct {
	// Backend lists the source tree
	Backend storage.Backend

	// Filter selects subfolders by name substring; empty visits all
	Filter []string

	Suffixes resolve.SuffixSet
	Marker   resolve.Marker
	Strict   bool

	// Naming configures the NamePlanner
	Naming Options
}

// Consolidator runs enumerate, resolve and assemble in sequence
type Consolidator struct {
	config     ConsolidatorConfig
	enumerator *enumerate.Enumerator
	resolver   *resolve.Resolver
	logger     logging.Logger
}

// NewConsolidator creates a consolidator
func NewConsolidator(config ConsolidatorConfig) (*Consolidator, error) {
	if config.Backend == nil {
		return nil, &models.ValidationError{Field: "backend", Message: "a source backend is required"}
	}
	if len(config.Suffixes) == 0 {
		return nil, &models.ValidationError{Field: "suffixes", Message: "at least one suffix is required"}
	}
	if config.Marker.EditedPrefix == "" {
		config.Marker = resolve.DefaultMarker
	}

	logger := logging.OrNull(config.Naming.Logger)
	return &Consolidator{
		config:     config,
		enumerator: enumerate.New(config.Backend, logger),
		resolver:   resolve.NewResolver(config.Marker, logger),
		logger:     logger,
	}, nil
}

// Plan walks the source tree and returns the copy plan. Each call uses a
// fresh NamePlanner so collision numbering restarts.
func (c *Consolidator) Plan(ctx context.Context) (*models.CopyPlan, error) {
	start := time.Now()
	root := c.config.Naming.SourceRoot
	c.logger.Debug(ctx, "Planning started", logging.Fields{
		"source":   root,
		"dest":     c.config.Naming.DestRoot,
		"filter":   c.config.Filter,
		"suffixes": c.config.Suffixes.List(),
		"strict":   c.config.Strict,
	})

	enumeration, err := c.enumerator.Enumerate(ctx, root, c.config.Filter)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate %s: %w", root, err)
	}

	survivors := c.resolver.Resolve(ctx, enumeration.SortedPaths(), c.config.Suffixes)

	planner, err := NewNamePlanner(c.config.Naming)
	if err != nil {
		return nil, err
	}
	assembler := NewAssembler(planner, c.config.Suffixes, c.config.Strict, c.logger)

	plan, err := assembler.BuildPlan(ctx, enumeration, survivors)
	if err != nil {
		return nil, fmt.Errorf("failed to build plan: %w", err)
	}
	plan.ID = uuid.New().String()

	c.logger.Info(ctx, "Plan built", logging.Fields{
		"plan_id":    plan.ID,
		"files":      len(enumeration),
		"survivors":  survivors.Len(),
		"entries":    plan.Len(),
		"folders":    len(planner.Folders()),
		"duplicates": planner.Collisions().Duplicates(),
		"duration":   time.Since(start).String(),
	})
	return plan, nil
}
