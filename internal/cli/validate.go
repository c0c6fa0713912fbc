package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sdejongh/photoharvest/internal/platform"
	"github.com/sdejongh/photoharvest/pkg/config"
	"github.com/sdejongh/photoharvest/pkg/models"
)

// validateRunFlags checks the source and destination and resolves both to
// absolute paths. With createDest a missing destination is created.
func validateRunFlags(requireDest, createDest bool) error {
	for _, p := range []string{runFlags.Source, runFlags.Dest} {
		if err := platform.ValidatePath(p); err != nil {
			return err
		}
	}

	sourceAbs, err := filepath.Abs(runFlags.Source)
	if err != nil {
		return fmt.Errorf("failed to resolve source path: %w", err)
	}
	destAbs, err := filepath.Abs(runFlags.Dest)
	if err != nil {
		return fmt.Errorf("failed to resolve destination path: %w", err)
	}

	info, err := os.Stat(sourceAbs)
	if os.IsNotExist(err) {
		return fmt.Errorf("source path does not exist: %s", runFlags.Source)
	} else if err != nil {
		return fmt.Errorf("failed to access source path: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("source path is not a directory: %s", runFlags.Source)
	}

	destInfo, err := os.Stat(destAbs)
	switch {
	case os.IsNotExist(err):
		if createDest {
			if err := os.MkdirAll(destAbs, 0755); err != nil {
				return fmt.Errorf("failed to create destination directory: %w", err)
			}
		} else if requireDest {
			return fmt.Errorf("destination path does not exist: %s (use --create-dest to create it)", runFlags.Dest)
		}
	case err != nil:
		return fmt.Errorf("failed to access destination path: %w", err)
	case !destInfo.IsDir():
		return fmt.Errorf("destination path exists but is not a directory: %s", runFlags.Dest)
	}

	if sourceAbs == destAbs {
		return fmt.Errorf("source and destination cannot be the same: %s", sourceAbs)
	}
	if platform.IsNested(sourceAbs, destAbs) {
		return fmt.Errorf("source and destination cannot be nested: %s, %s", sourceAbs, destAbs)
	}

	runFlags.Source = sourceAbs
	runFlags.Dest = destAbs
	return nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with the flags set on cmd
func applyFlagsToConfig(cmd *cobra.Command, cfg *config.Config) error {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("filter") {
		cfg.Plan.FolderFilter = runFlags.Filter
	}
	if changed("suffix") {
		cfg.Plan.Suffixes = runFlags.Suffixes
	}
	if changed("strict") {
		cfg.Plan.StrictSurvivors = runFlags.Strict
	}
	if changed("source-zone") {
		cfg.Time.SourceZone = runFlags.SourceZone
	}
	if changed("target-zone") {
		cfg.Time.TargetZone = runFlags.TargetZone
	}
	if changed("output") {
		cfg.Output.Format = runFlags.Output
	}

	if changed("mode") {
		cfg.Copy.Mode = models.CopyMode(runFlags.Mode)
	}
	if changed("verify") {
		cfg.Copy.Verify = models.VerifyMethod(runFlags.Verify)
	}
	if changed("parallel") {
		cfg.Copy.MaxWorkers = runFlags.Parallel
	}
	if changed("bandwidth") {
		limit, err := parseBandwidth(runFlags.Bandwidth)
		if err != nil {
			return err
		}
		cfg.Copy.BandwidthLimit = limit
	}
	if changed("overwrite") {
		cfg.Copy.Overwrite = runFlags.Overwrite
	}

	if globalFlags.LogFile != "" {
		cfg.Logging.Enabled = true
		cfg.Logging.File = globalFlags.LogFile
	}
	if globalFlags.LogFormat != "" {
		cfg.Logging.Format = globalFlags.LogFormat
	}
	if globalFlags.LogLevel != "" {
		cfg.Logging.Level = globalFlags.LogLevel
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}

	// Verbose logs everything to stderr unless a log file is set
	if globalFlags.Verbose {
		cfg.Logging.Enabled = true
		cfg.Logging.Level = "debug"
	}

	return cfg.Validate()
}

// createOperation creates a consolidation operation from configuration
func createOperation(cfg *config.Config, dryRun bool) (*models.ConsolidateOperation, error) {
	operation := &models.ConsolidateOperation{
		ID:              uuid.New().String(),
		SourceRoot:      runFlags.Source,
		DestRoot:        runFlags.Dest,
		Suffixes:        cfg.Plan.Suffixes,
		FolderFilter:    cfg.Plan.FolderFilter,
		StrictSurvivors: cfg.Plan.StrictSurvivors,
		KeepNames:       runFlags.KeepNames,
		Mode:            cfg.Copy.Mode,
		Verify:          cfg.Copy.Verify,
		Overwrite:       cfg.Copy.Overwrite,
		DryRun:          dryRun,
		MaxWorkers:      cfg.Copy.MaxWorkers,
		BandwidthLimit:  cfg.Copy.BandwidthLimit,
		BufferSize:      cfg.Copy.BufferSize,
		CreatedAt:       time.Now(),
	}

	if err := operation.Validate(); err != nil {
		return nil, err
	}

	return operation, nil
}

// parseBandwidth parses sizes such as "512K", "10M" or "1G" into bytes per
// second. A bare number is taken as bytes.
func parseBandwidth(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	s = strings.TrimSuffix(strings.TrimSuffix(s, "/S"), "B")
	if s == "" || s == "0" {
		return 0, nil
	}

	multiplier := int64(1)
	switch s[len(s)-1] {
	case 'K':
		multiplier = 1 << 10
	case 'M':
		multiplier = 1 << 20
	case 'G':
		multiplier = 1 << 30
	}
	if multiplier > 1 {
		s = s[:len(s)-1]
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid bandwidth limit: %q", s)
	}
	return int64(value * float64(multiplier)), nil
}
