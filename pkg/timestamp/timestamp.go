// Package timestamp normalizes capture timestamps reported by metadata
// providers into compact, sortable destination name stems.
package timestamp

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // zone database for hosts without one (Windows)
)

// Layouts understood out of the box
const (
	// LayoutExif is the EXIF DateTimeOriginal layout
	LayoutExif = "2006:01:02 15:04:05"
	// LayoutShellProperty is the layout of Windows shell date properties
	// (fractional seconds are accepted after the seconds field)
	LayoutShellProperty = "2006/01/02:15:04:05"
	// LayoutCompact is the default output layout, e.g. 20230115_101500
	LayoutCompact = "20060102_150405"
)

// Config describes a conversion
type Config struct {
	SourceLayout string
	SourceZone   string
	TargetZone   string
	OutputLayout string
}

// DefaultConfig returns the reference conversion: EXIF timestamps read as
// UTC and rendered in Asia/Shanghai
func DefaultConfig() Config {
	return Config{
		SourceLayout: LayoutExif,
		SourceZone:   "UTC",
		TargetZone:   "Asia/Shanghai",
		OutputLayout: LayoutCompact,
	}
}

// FormatError reports a timestamp that does not match the source layout
type FormatError struct {
	Value  string
	Layout string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("timestamp %q does not match layout %q: %v", e.Value, e.Layout, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Converter parses raw provider timestamps and re-renders them in the
// target zone
type Converter struct {
	sourceLayout string
	outputLayout string
	source       *time.Location
	target       *time.Location
}

// NewConverter validates cfg and loads its time zones
func NewConverter(cfg Config) (*Converter, error) {
	if cfg.SourceLayout == "" {
		cfg.SourceLayout = LayoutExif
	}
	if cfg.OutputLayout == "" {
		cfg.OutputLayout = LayoutCompact
	}

	source, err := loadZone(cfg.SourceZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load source zone: %w", err)
	}
	target, err := loadZone(cfg.TargetZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load target zone: %w", err)
	}

	return &Converter{
		sourceLayout: cfg.SourceLayout,
		outputLayout: cfg.OutputLayout,
		source:       source,
		target:       target,
	}, nil
}

// Parse reads raw in the source layout and zone
func (c *Converter) Parse(raw string) (time.Time, error) {
	raw = clean(raw)
	t, err := time.ParseInLocation(c.sourceLayout, raw, c.source)
	if err != nil {
		return time.Time{}, &FormatError{Value: raw, Layout: c.sourceLayout, Err: err}
	}
	return t, nil
}

// Convert turns a raw provider timestamp into the output representation.
// An empty raw value means no timestamp and yields "" without error.
func (c *Converter) Convert(raw string) (string, error) {
	if clean(raw) == "" {
		return "", nil
	}
	t, err := c.Parse(raw)
	if err != nil {
		return "", err
	}
	return t.In(c.target).Format(c.outputLayout), nil
}

func loadZone(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "UTC") {
		return time.UTC, nil
	}
	if strings.EqualFold(name, "Local") {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// clean strips padding EXIF writers commonly leave around values
func clean(raw string) string {
	return strings.TrimSpace(strings.Trim(raw, "\x00"))
}
