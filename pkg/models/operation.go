package models

import (
	"time"
)

// CopyMode defines what happens to the source file once copied
type CopyMode string

const (
	// ModeCopy leaves the source untouched
	ModeCopy CopyMode = "copy"
	// ModeMove removes the source after a successful copy
	ModeMove CopyMode = "move"
)

// VerifyMethod defines how a copied file is checked against its source
type VerifyMethod string

const (
	// VerifyNone skips verification
	VerifyNone VerifyMethod = "none"
	// VerifySize compares file sizes
	VerifySize VerifyMethod = "size"
	// VerifyHash compares SHA-256 hashes
	VerifyHash VerifyMethod = "hash"
)

// ConsolidateOperation represents one consolidation run
type ConsolidateOperation struct {
	ID         string
	SourceRoot string
	DestRoot   string

	// Planning
	Suffixes        []string
	FolderFilter    []string
	StrictSurvivors bool
	KeepNames       bool

	// Execution
	Mode           CopyMode
	Verify         VerifyMethod
	Overwrite      bool
	DryRun         bool
	MaxWorkers     int
	BandwidthLimit int64 // bytes per second, 0 = unlimited
	BufferSize     int

	CreatedAt time.Time
}

// Validate checks if the operation configuration is valid
func (op *ConsolidateOperation) Validate() error {
	if op.SourceRoot == "" {
		return &ValidationError{Field: "SourceRoot", Message: "source path is required"}
	}
	if op.DestRoot == "" {
		return &ValidationError{Field: "DestRoot", Message: "destination path is required"}
	}
	if len(op.Suffixes) == 0 {
		return &ValidationError{Field: "Suffixes", Message: "at least one suffix is required"}
	}
	if op.Mode != ModeCopy && op.Mode != ModeMove {
		return &ValidationError{Field: "Mode", Message: "mode must be 'copy' or 'move'"}
	}
	switch op.Verify {
	case VerifyNone, VerifySize, VerifyHash:
	default:
		return &ValidationError{Field: "Verify", Message: "verify must be 'none', 'size' or 'hash'"}
	}
	if op.MaxWorkers < 1 {
		return &ValidationError{Field: "MaxWorkers", Message: "max workers must be at least 1"}
	}
	if op.BufferSize < 1024 {
		return &ValidationError{Field: "BufferSize", Message: "buffer size must be at least 1024 bytes"}
	}
	return nil
}
