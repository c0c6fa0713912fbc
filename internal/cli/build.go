package cli

import (
	"fmt"
	"io"

	"github.com/sdejongh/photoharvest/pkg/config"
	"github.com/sdejongh/photoharvest/pkg/logging"
	"github.com/sdejongh/photoharvest/pkg/metadata"
	"github.com/sdejongh/photoharvest/pkg/models"
	"github.com/sdejongh/photoharvest/pkg/plan"
	"github.com/sdejongh/photoharvest/pkg/resolve"
	"github.com/sdejongh/photoharvest/pkg/storage"
	"github.com/sdejongh/photoharvest/pkg/timestamp"
)

// unclosable hides Close so closing a logger never closes stderr
type unclosable struct {
	io.Writer
}

// createLogger creates a logger based on configuration
func createLogger(cfg config.LoggingConfig, stderr io.Writer) (logging.Logger, error) {
	if !cfg.Enabled {
		return logging.NewNullLogger(), nil
	}

	format := logging.ParseFormat(cfg.Format)
	level := logging.ParseLevel(cfg.Level)

	if cfg.File == "" {
		return logging.NewStreamLogger(unclosable{stderr}, format, level), nil
	}

	return logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       cfg.File,
		Format:     format,
		Level:      level,
		MaxSize:    10 * 1024 * 1024, // 10 MB
		MaxBackups: 5,
	})
}

// newConsolidator wires the planner for op. Dry runs never create folders.
func newConsolidator(cfg *config.Config, op *models.ConsolidateOperation, backend storage.Backend, logger logging.Logger) (*plan.Consolidator, error) {
	converter, err := timestamp.NewConverter(cfg.TimestampConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to configure time conversion: %w", err)
	}

	var provider metadata.Provider = metadata.NewExifProvider(backend, logger)
	if op.KeepNames {
		provider = metadata.None{}
	}

	var folders plan.FolderMaker = plan.NewBackendFolderMaker(backend)
	if op.DryRun {
		folders = plan.DryRunFolderMaker{}
	}

	return plan.NewConsolidator(plan.ConsolidatorConfig{
		Backend:  backend,
		Filter:   op.FolderFilter,
		Suffixes: resolve.NewSuffixSet(op.Suffixes...),
		Marker:   cfg.Marker(),
		Strict:   op.StrictSurvivors,
		Naming: plan.Options{
			SourceRoot: op.SourceRoot,
			DestRoot:   op.DestRoot,
			NamePrefix: cfg.Plan.NamePrefix,
			Provider:   provider,
			Converter:  converter,
			Folders:    folders,
			Logger:     logger,
		},
	})
}
