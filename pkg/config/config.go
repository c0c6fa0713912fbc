package config

import (
	"strings"

	"github.com/sdejongh/photoharvest/pkg/models"
	"github.com/sdejongh/photoharvest/pkg/resolve"
	"github.com/sdejongh/photoharvest/pkg/timestamp"
)

// Config represents the application configuration
type Config struct {
	Plan    PlanConfig    `yaml:"plan"`
	Time    TimeConfig    `yaml:"time"`
	Copy    CopyConfig    `yaml:"copy"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// PlanConfig holds planning settings
type PlanConfig struct {
	Suffixes        []string `yaml:"suffixes"`
	FolderFilter    []string `yaml:"folder_filter"`   // Substrings, empty visits every folder
	EditedMarker    string   `yaml:"edited_marker"`   // Prefix of edited variants
	OriginalPrefix  string   `yaml:"original_prefix"` // Replaces EditedMarker to find the original
	StrictSurvivors bool     `yaml:"strict_survivors"`
	NamePrefix      string   `yaml:"name_prefix"`
}

// TimeConfig holds capture time conversion settings
type TimeConfig struct {
	SourceLayout string `yaml:"source_layout"`
	SourceZone   string `yaml:"source_zone"`
	TargetZone   string `yaml:"target_zone"`
	OutputLayout string `yaml:"output_layout"`
}

// CopyConfig holds execution settings
type CopyConfig struct {
	Mode           models.CopyMode     `yaml:"mode"`
	MaxWorkers     int                 `yaml:"max_workers"`
	BufferSize     int                 `yaml:"buffer_size"`
	BandwidthLimit int64               `yaml:"bandwidth_limit"` // Bytes per second, 0 = unlimited
	Verify         models.VerifyMethod `yaml:"verify"`
	Overwrite      bool                `yaml:"overwrite"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human", "json" or "yaml"
	Progress bool   `yaml:"progress"` // Show a progress bar on terminals
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // "json" or "text"
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	File    string `yaml:"file"`   // Log file path (empty = stderr)
}

// Default returns the default configuration
func Default() *Config {
	ts := timestamp.DefaultConfig()
	return &Config{
		Plan: PlanConfig{
			Suffixes:       []string{".heic", ".jpg"},
			FolderFilter:   []string{},
			EditedMarker:   resolve.DefaultMarker.EditedPrefix,
			OriginalPrefix: resolve.DefaultMarker.OriginalPrefix,
			NamePrefix:     "IMG_",
		},
		Time: TimeConfig{
			SourceLayout: ts.SourceLayout,
			SourceZone:   ts.SourceZone,
			TargetZone:   ts.TargetZone,
			OutputLayout: ts.OutputLayout,
		},
		Copy: CopyConfig{
			Mode:       models.ModeCopy,
			MaxWorkers: 4,
			BufferSize: 65536,
			Verify:     models.VerifySize,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
		},
		Logging: LoggingConfig{
			Enabled: false,
			Format:  "text",
			Level:   "info",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Plan.Suffixes) == 0 {
		return &models.ValidationError{
			Field:   "plan.suffixes",
			Message: "at least one suffix is required",
		}
	}

	if c.Plan.EditedMarker == "" || c.Plan.OriginalPrefix == "" {
		return &models.ValidationError{
			Field:   "plan.edited_marker",
			Message: "edited marker and original prefix must both be set",
		}
	}

	if strings.EqualFold(c.Plan.EditedMarker, c.Plan.OriginalPrefix) {
		return &models.ValidationError{
			Field:   "plan.edited_marker",
			Message: "edited marker must differ from the original prefix",
		}
	}

	if _, err := timestamp.NewConverter(c.TimestampConfig()); err != nil {
		return &models.ValidationError{
			Field:   "time",
			Message: err.Error(),
		}
	}

	if c.Copy.Mode != models.ModeCopy && c.Copy.Mode != models.ModeMove {
		return &models.ValidationError{
			Field:   "copy.mode",
			Message: "must be 'copy' or 'move'",
		}
	}

	if c.Copy.MaxWorkers < 1 {
		return &models.ValidationError{
			Field:   "copy.max_workers",
			Message: "must be at least 1",
		}
	}

	if c.Copy.BufferSize < 1024 {
		return &models.ValidationError{
			Field:   "copy.buffer_size",
			Message: "must be at least 1024 bytes",
		}
	}

	if c.Copy.BandwidthLimit < 0 {
		return &models.ValidationError{
			Field:   "copy.bandwidth_limit",
			Message: "must not be negative",
		}
	}

	validVerify := map[models.VerifyMethod]bool{models.VerifyNone: true, models.VerifySize: true, models.VerifyHash: true}
	if !validVerify[c.Copy.Verify] {
		return &models.ValidationError{
			Field:   "copy.verify",
			Message: "must be 'none', 'size' or 'hash'",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true, "yaml": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human', 'json' or 'yaml'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}

// SuffixSet returns the allowed suffixes
func (c *Config) SuffixSet() resolve.SuffixSet {
	return resolve.NewSuffixSet(c.Plan.Suffixes...)
}

// Marker returns the edited variant marker
func (c *Config) Marker() resolve.Marker {
	return resolve.Marker{EditedPrefix: c.Plan.EditedMarker, OriginalPrefix: c.Plan.OriginalPrefix}
}

// TimestampConfig returns the capture time conversion settings
func (c *Config) TimestampConfig() timestamp.Config {
	return timestamp.Config{
		SourceLayout: c.Time.SourceLayout,
		SourceZone:   c.Time.SourceZone,
		TargetZone:   c.Time.TargetZone,
		OutputLayout: c.Time.OutputLayout,
	}
}
