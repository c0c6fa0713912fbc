// Package output renders copy plans and execution progress for the CLI.
package output

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/sdejongh/photoharvest/pkg/models"
)

// Progress event types
const (
	EventFileStart    = "file_start"
	EventFileProgress = "file_progress"
	EventFileComplete = "file_complete"
	EventFileSkipped  = "file_skipped"
	EventFileError    = "file_error"
)

// ProgressUpdate represents a progress notification during execution
type ProgressUpdate struct {
	Type         string
	SourcePath   string
	DestPath     string
	BytesWritten int64
	TotalBytes   int64
	CurrentFile  int
	TotalFiles   int
	Error        error
}

// Formatter defines the interface for execution output
type Formatter interface {
	// Start initializes the formatter for a new execution
	Start(writer io.Writer, totalFiles int, totalBytes int64) error

	// Progress reports progress during execution. It may be called from
	// several workers at once.
	Progress(update ProgressUpdate) error

	// Complete finalizes output and displays the summary
	Complete(report *models.ExecutionReport) error

	// Error reports an error that aborted the execution
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// NewFormatter returns the formatter for format. With progress set, human
// output gets a progress bar.
func NewFormatter(format string, progress bool) (Formatter, error) {
	switch format {
	case "", "human":
		if progress {
			return NewProgressFormatter(), nil
		}
		return NewHumanFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	case "yaml":
		return NewYAMLFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// formatBytes formats bytes in human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
