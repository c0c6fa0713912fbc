package output

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sdejongh/photoharvest/pkg/models"
)

// HumanFormatter prints one line per finished file and a summary
type HumanFormatter struct {
	mu         sync.Mutex
	writer     io.Writer
	totalFiles int
	totalBytes int64
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, totalFiles int, totalBytes int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writer = writer
	f.totalFiles = totalFiles
	f.totalBytes = totalBytes

	if writer != nil {
		fmt.Fprintf(writer, "Copying %d files, %s total\n", totalFiles, formatBytes(totalBytes))
	}
	return nil
}

// Progress prints completed, skipped and failed files
func (f *HumanFormatter) Progress(update ProgressUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer == nil {
		return nil
	}

	switch update.Type {
	case EventFileComplete:
		fmt.Fprintf(f.writer, "[%d/%d] ✓ %s -> %s (%s)\n",
			update.CurrentFile, f.totalFiles, update.SourcePath, update.DestPath, formatBytes(update.BytesWritten))
	case EventFileSkipped:
		fmt.Fprintf(f.writer, "[%d/%d] = %s (exists)\n",
			update.CurrentFile, f.totalFiles, update.DestPath)
	case EventFileError:
		fmt.Fprintf(f.writer, "[%d/%d] ✗ %s: %v\n",
			update.CurrentFile, f.totalFiles, update.SourcePath, update.Error)
	}
	return nil
}

// Complete prints the summary
func (f *HumanFormatter) Complete(report *models.ExecutionReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer == nil {
		f.writer = io.Discard
	}
	writeSummary(f.writer, report)
	return nil
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer != nil {
		fmt.Fprintf(f.writer, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

func writeSummary(w io.Writer, report *models.ExecutionReport) {
	verb := "Copy"
	if report.Mode == models.ModeMove {
		verb = "Move"
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "%s completed in %s\n", verb, report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Files planned:   %d\n", report.Stats.FilesPlanned)
	fmt.Fprintf(w, "  Files copied:    %d\n", report.Stats.FilesCopied)
	fmt.Fprintf(w, "  Files moved:     %d\n", report.Stats.FilesMoved)
	fmt.Fprintf(w, "  Files skipped:   %d\n", report.Stats.FilesSkipped)
	fmt.Fprintf(w, "  Files verified:  %d\n", report.Stats.FilesVerified)
	fmt.Fprintf(w, "  Files errored:   %d\n", report.Stats.FilesErrored)
	fmt.Fprintf(w, "  Data:            %s\n", formatBytes(report.Stats.BytesTransferred))

	if report.Duration.Seconds() > 0 {
		avgSpeed := float64(report.Stats.BytesTransferred) / report.Duration.Seconds()
		fmt.Fprintf(w, "  Average speed:   %s/s\n", formatBytes(int64(avgSpeed)))
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Status: %s\n", report.Status)

	if len(report.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors:\n")
		for _, e := range report.Errors {
			fmt.Fprintf(w, "  %s: %s\n", e.FilePath, e.Error)
		}
	}
}
