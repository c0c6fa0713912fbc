package models

import (
	"time"
)

// ExecutionReport represents the results of executing a copy plan
type ExecutionReport struct {
	// Operation details
	OperationID string
	PlanID      string
	SourceRoot  string
	DestRoot    string
	Mode        CopyMode
	DryRun      bool

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Statistics
	Stats Statistics

	// Results holds one outcome per plan entry, in plan order
	Results []EntryResult

	// Errors encountered
	Errors []CopyError

	// Overall status
	Status ExecutionStatus
}

// Statistics holds execution metrics
type Statistics struct {
	FilesPlanned  int
	FilesCopied   int
	FilesMoved    int
	FilesSkipped  int
	FilesVerified int
	FilesErrored  int

	BytesTransferred int64
}

// EntryOutcome describes what happened to one plan entry
type EntryOutcome string

const (
	// OutcomeCopied indicates the file was copied
	OutcomeCopied EntryOutcome = "copied"
	// OutcomeMoved indicates the file was copied and its source removed
	OutcomeMoved EntryOutcome = "moved"
	// OutcomeSkipped indicates the destination already existed
	OutcomeSkipped EntryOutcome = "skipped"
	// OutcomeFailed indicates the copy failed
	OutcomeFailed EntryOutcome = "failed"
	// OutcomePending indicates the entry was never processed
	OutcomePending EntryOutcome = "pending"
)

// EntryResult is the outcome of one plan entry
type EntryResult struct {
	SourcePath string
	DestPath   string
	Outcome    EntryOutcome
	Bytes      int64
	Verified   bool
	Duration   time.Duration
	Error      string
}

// ExecutionStatus represents the overall result
type ExecutionStatus string

const (
	// StatusSuccess indicates all entries completed successfully
	StatusSuccess ExecutionStatus = "success"
	// StatusPartial indicates some entries failed
	StatusPartial ExecutionStatus = "partial"
	// StatusFailed indicates the run failed
	StatusFailed ExecutionStatus = "failed"
	// StatusCancelled indicates the run was cancelled
	StatusCancelled ExecutionStatus = "cancelled"
)

// CopyError represents an error while executing one entry
type CopyError struct {
	FilePath  string
	Error     string
	Timestamp time.Time
}

// ExitCode returns the appropriate exit code for the status
func (s ExecutionStatus) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartial:
		return 1
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}
