// Package metadata supplies capture timestamps for source files.
package metadata

import (
	"context"

	"github.com/sdejongh/photoharvest/pkg/models"
)

// Provider returns the raw capture timestamp of a file.
//
// An empty string means the file has no capture timestamp; that is a normal
// outcome, not an error. Errors are reserved for failures to reach the file.
type Provider interface {
	CaptureTimestamp(ctx context.Context, ref models.FileRef) (string, error)
}

// ProviderFunc adapts a function to the Provider interface
type ProviderFunc func(ctx context.Context, ref models.FileRef) (string, error)

// CaptureTimestamp calls f
func (f ProviderFunc) CaptureTimestamp(ctx context.Context, ref models.FileRef) (string, error) {
	return f(ctx, ref)
}

// None reports no timestamp for any file, so every file keeps its name
type None struct{}

// CaptureTimestamp always returns ""
func (None) CaptureTimestamp(ctx context.Context, ref models.FileRef) (string, error) {
	return "", nil
}
