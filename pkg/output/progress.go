package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"

	"github.com/sdejongh/photoharvest/pkg/models"
)

const progressTemplate = `{{counters . }} {{bar . "[" "=" ">" " " "]"}} {{percent . }} {{speed . }} {{string . "file"}}`

// ProgressFormatter shows a byte progress bar over the whole execution
type ProgressFormatter struct {
	mu      sync.Mutex
	writer  io.Writer
	bar     *pb.ProgressBar
	perFile map[int]int64
}

// NewProgressFormatter creates a progress bar formatter
func NewProgressFormatter() *ProgressFormatter {
	return &ProgressFormatter{perFile: make(map[int]int64)}
}

// Start creates and starts the bar
func (f *ProgressFormatter) Start(writer io.Writer, totalFiles int, totalBytes int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer

	f.bar = pb.New64(totalBytes)
	f.bar.SetWriter(writer)
	f.bar.SetTemplateString(progressTemplate)
	f.bar.SetRefreshRate(200 * time.Millisecond)
	f.bar.Set(pb.Bytes, true)
	f.bar.Set("file", "")
	f.bar.Start()
	return nil
}

// Progress advances the bar by the bytes written since the last update of
// the same file
func (f *ProgressFormatter) Progress(update ProgressUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar == nil {
		return nil
	}

	switch update.Type {
	case EventFileStart:
		f.perFile[update.CurrentFile] = 0
		f.bar.Set("file", filepath.Base(update.SourcePath))
	case EventFileProgress, EventFileComplete:
		f.advance(update.CurrentFile, update.BytesWritten)
		if update.Type == EventFileComplete {
			delete(f.perFile, update.CurrentFile)
		}
	case EventFileSkipped:
		f.bar.Add64(update.TotalBytes)
	case EventFileError:
		// Count the unwritten remainder so the bar still reaches the end
		f.advance(update.CurrentFile, update.TotalBytes)
		delete(f.perFile, update.CurrentFile)
	}
	return nil
}

func (f *ProgressFormatter) advance(file int, written int64) {
	delta := written - f.perFile[file]
	if delta > 0 {
		f.bar.Add64(delta)
		f.perFile[file] = written
	}
}

// Complete stops the bar and prints the summary
func (f *ProgressFormatter) Complete(report *models.ExecutionReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar != nil {
		f.bar.Set("file", "")
		f.bar.Finish()
	}
	if f.writer == nil {
		f.writer = io.Discard
	}
	writeSummary(f.writer, report)
	return nil
}

// Error stops the bar and prints the error
func (f *ProgressFormatter) Error(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar != nil {
		f.bar.Finish()
	}
	if f.writer != nil {
		fmt.Fprintf(f.writer, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}
