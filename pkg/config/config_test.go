package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sdejongh/photoharvest/pkg/models"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}

	suffixes := cfg.SuffixSet()
	if !suffixes.Allows("IMG_0001.HEIC") || !suffixes.Allows("a.jpg") || suffixes.Allows("clip.mov") {
		t.Errorf("unexpected default suffixes: %v", suffixes.List())
	}
	if m := cfg.Marker(); m.EditedPrefix != "IMG_E" || m.OriginalPrefix != "IMG_" {
		t.Errorf("unexpected marker: %+v", m)
	}
	if cfg.Time.TargetZone != "Asia/Shanghai" {
		t.Errorf("target zone = %q", cfg.Time.TargetZone)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"No suffixes", func(c *Config) { c.Plan.Suffixes = nil }, "plan.suffixes"},
		{"Missing marker", func(c *Config) { c.Plan.EditedMarker = "" }, "plan.edited_marker"},
		{"Marker equals prefix", func(c *Config) { c.Plan.EditedMarker = "IMG_" }, "plan.edited_marker"},
		{"Unknown zone", func(c *Config) { c.Time.TargetZone = "Mars/Olympus" }, "time"},
		{"Bad mode", func(c *Config) { c.Copy.Mode = "sync" }, "copy.mode"},
		{"No workers", func(c *Config) { c.Copy.MaxWorkers = 0 }, "copy.max_workers"},
		{"Small buffer", func(c *Config) { c.Copy.BufferSize = 10 }, "copy.buffer_size"},
		{"Negative bandwidth", func(c *Config) { c.Copy.BandwidthLimit = -1 }, "copy.bandwidth_limit"},
		{"Bad verify", func(c *Config) { c.Copy.Verify = "crc" }, "copy.verify"},
		{"Bad output", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"Bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"Bad log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			var valErr *models.ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if valErr.Field != tt.field {
				t.Errorf("field = %q, want %q", valErr.Field, tt.field)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Plan.FolderFilter = []string{"202301"}
	cfg.Copy.Mode = models.ModeMove
	cfg.Time.TargetZone = "Europe/Brussels"

	if err := SaveToFile(cfg, path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if len(loaded.Plan.FolderFilter) != 1 || loaded.Plan.FolderFilter[0] != "202301" {
		t.Errorf("folder filter = %v", loaded.Plan.FolderFilter)
	}
	if loaded.Copy.Mode != models.ModeMove || loaded.Time.TargetZone != "Europe/Brussels" {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestLoadFromFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:    "Partial file keeps defaults",
			content: "time:\n  target_zone: Europe/Brussels\n",
			check: func(t *testing.T, cfg *Config) {
				if cfg.Time.TargetZone != "Europe/Brussels" {
					t.Errorf("target zone = %q", cfg.Time.TargetZone)
				}
				if cfg.Time.SourceZone != Default().Time.SourceZone {
					t.Errorf("source zone = %q, want default", cfg.Time.SourceZone)
				}
			},
		},
		{
			name:    "Comments only",
			content: "# nothing yet\n",
			check: func(t *testing.T, cfg *Config) {
				if len(cfg.Plan.Suffixes) != 2 {
					t.Errorf("suffixes = %v, want defaults", cfg.Plan.Suffixes)
				}
			},
		},
		{
			name:    "Misspelled key",
			content: "time:\n  target_zon: Europe/Brussels\n",
			wantErr: "target_zon",
		},
		{
			name:    "Unknown section",
			content: "sync:\n  mode: two-way\n",
			wantErr: "sync",
		},
		{
			name:    "Invalid value",
			content: "copy:\n  mode: mirror\n",
			wantErr: "copy.mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			cfg, err := LoadFromFile(path)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("LoadFromFile() error = %v, want mention of %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFromFile() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestSaveToFile_WritesHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := SaveToFile(Default(), path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), fileHeader) {
		t.Errorf("saved file does not start with the header:\n%s", data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only config.yaml", len(entries))
	}
}

func TestSaveToFile_RejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.Copy.MaxWorkers = 0
	if err := SaveToFile(cfg, filepath.Join(t.TempDir(), "config.yaml")); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("DefaultConfigPath failed: %v", err)
	}
	if filepath.Base(path) != "config.yaml" || filepath.Base(filepath.Dir(path)) != "photoharvest" {
		t.Errorf("path = %s", path)
	}

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault failed: %v", err)
	}
	if cfg.Copy.MaxWorkers != Default().Copy.MaxWorkers {
		t.Error("LoadDefault without a file should return defaults")
	}
}
