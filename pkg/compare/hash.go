package compare

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sync"

	"github.com/sdejongh/photoharvest/pkg/storage"
)

// HashComparator compares files using SHA-256
type HashComparator struct {
	bufferPool *sync.Pool
}

// NewHashComparator creates a hash comparator reading with bufferSize
// byte buffers
func NewHashComparator(bufferSize int) *HashComparator {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &HashComparator{
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// Compare hashes both files in parallel once sizes match
func (c *HashComparator) Compare(ctx context.Context, source, dest storage.Backend, sourcePath, destPath string) (*Comparison, error) {
	_, _, done, err := statBoth(ctx, source, dest, sourcePath, destPath)
	if err != nil || done != nil {
		return done, err
	}

	var sourceHash, destHash string
	var sourceErr, destErr error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		sourceHash, sourceErr = c.Sum(ctx, source, sourcePath)
	}()
	go func() {
		defer wg.Done()
		destHash, destErr = c.Sum(ctx, dest, destPath)
	}()
	wg.Wait()

	if sourceErr != nil {
		return nil, fmt.Errorf("failed to hash source: %w", sourceErr)
	}
	if destErr != nil {
		return nil, fmt.Errorf("failed to hash destination: %w", destErr)
	}

	result := &Comparison{SourcePath: sourcePath, DestPath: destPath, Result: Same, Reason: "file hashes match"}
	if sourceHash != destHash {
		result.Result = Different
		result.Reason = "file hashes differ"
	}
	return result, nil
}

// Sum returns the hex SHA-256 of a file
func (c *HashComparator) Sum(ctx context.Context, backend storage.Backend, path string) (string, error) {
	reader, err := backend.Open(ctx, path)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	bufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(bufPtr)
	buffer := *bufPtr

	hasher := sha256.New()
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, err := reader.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Name returns the comparator name
func (c *HashComparator) Name() string {
	return "hash"
}
