package compare

import (
	"context"

	"github.com/sdejongh/photoharvest/pkg/storage"
)

// SizeComparator compares files by size only. Destination names are
// generated, so names are not compared.
type SizeComparator struct{}

// NewSizeComparator creates a size comparator
func NewSizeComparator() *SizeComparator {
	return &SizeComparator{}
}

// Compare reports Same when both files exist with equal sizes
func (c *SizeComparator) Compare(ctx context.Context, source, dest storage.Backend, sourcePath, destPath string) (*Comparison, error) {
	_, _, done, err := statBoth(ctx, source, dest, sourcePath, destPath)
	if err != nil || done != nil {
		return done, err
	}

	return &Comparison{
		SourcePath: sourcePath,
		DestPath:   destPath,
		Result:     Same,
		Reason:     "sizes match",
	}, nil
}

// Name returns the comparator name
func (c *SizeComparator) Name() string {
	return "size"
}
