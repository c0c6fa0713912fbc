// Package compare checks that a copied file matches its source.
package compare

import (
	"context"
	"fmt"

	"github.com/sdejongh/photoharvest/pkg/models"
	"github.com/sdejongh/photoharvest/pkg/storage"
)

// Result represents the outcome of comparing two files
type Result string

const (
	// Same indicates files are identical
	Same Result = "same"
	// Different indicates files differ
	Different Result = "different"
	// SourceMissing indicates the source file is gone
	SourceMissing Result = "source_missing"
	// DestMissing indicates the destination file is absent
	DestMissing Result = "dest_missing"
)

// Comparison holds the result of comparing two files
type Comparison struct {
	SourcePath string
	DestPath   string
	Result     Result
	Reason     string
}

// Comparator defines the interface for file comparison algorithms
type Comparator interface {
	// Compare compares two files and returns the result
	Compare(ctx context.Context, source, dest storage.Backend, sourcePath, destPath string) (*Comparison, error)

	// Name returns the name of the comparison method
	Name() string
}

// New returns the comparator for a verify method, or nil for VerifyNone
func New(method models.VerifyMethod, bufferSize int) (Comparator, error) {
	switch method {
	case models.VerifyNone, "":
		return nil, nil
	case models.VerifySize:
		return NewSizeComparator(), nil
	case models.VerifyHash:
		return NewHashComparator(bufferSize), nil
	default:
		return nil, fmt.Errorf("unknown verify method: %s", method)
	}
}

// statBoth stats both files and returns a terminal comparison when either
// is missing
func statBoth(ctx context.Context, source, dest storage.Backend, sourcePath, destPath string) (*storage.FileInfo, *storage.FileInfo, *Comparison, error) {
	result := &Comparison{SourcePath: sourcePath, DestPath: destPath}

	ok, err := source.Exists(ctx, sourcePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to check source existence: %w", err)
	}
	if !ok {
		result.Result = SourceMissing
		result.Reason = "source file does not exist"
		return nil, nil, result, nil
	}

	ok, err = dest.Exists(ctx, destPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to check destination existence: %w", err)
	}
	if !ok {
		result.Result = DestMissing
		result.Reason = "destination file does not exist"
		return nil, nil, result, nil
	}

	sourceInfo, err := source.Stat(ctx, sourcePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to stat source file: %w", err)
	}
	destInfo, err := dest.Stat(ctx, destPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to stat destination file: %w", err)
	}

	if sourceInfo.Size != destInfo.Size {
		result.Result = Different
		result.Reason = fmt.Sprintf("file sizes differ (%d != %d)", sourceInfo.Size, destInfo.Size)
		return nil, nil, result, nil
	}
	return sourceInfo, destInfo, nil, nil
}
