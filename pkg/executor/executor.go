// Package executor performs a copy plan against storage backends.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/photoharvest/pkg/compare"
	"github.com/sdejongh/photoharvest/pkg/logging"
	"github.com/sdejongh/photoharvest/pkg/models"
	"github.com/sdejongh/photoharvest/pkg/output"
	"github.com/sdejongh/photoharvest/pkg/ratelimit"
	"github.com/sdejongh/photoharvest/pkg/storage"
)

// Executor carries out a copy plan
type Executor interface {
	Execute(ctx context.Context, plan *models.CopyPlan) (*models.ExecutionReport, error)
}

// Options configures a Worker
type Options struct {
	Mode           models.CopyMode
	MaxWorkers     int
	BufferSize     int
	BandwidthLimit int64
	Verify         models.VerifyMethod
	Overwrite      bool

	// Formatter receives progress events; nil disables them
	Formatter output.Formatter
	Output    io.Writer

	Logger logging.Logger
}

// ErrVerification is returned for entries whose copy does not match the
// source
var ErrVerification = errors.New("verification failed")

// partialSuffix marks a copy that is still being written or verified
const partialSuffix = ".partial"

// Worker executes plan entries in parallel with a bounded pool
type Worker struct {
	source     storage.Backend
	dest       storage.Backend
	opts       Options
	semaphore  chan struct{}
	limiter    *ratelimit.Limiter
	comparator compare.Comparator
	logger     logging.Logger
}

// NewWorker creates a worker reading from source and writing to dest
func NewWorker(source, dest storage.Backend, opts Options) (*Worker, error) {
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}
	if opts.Mode == "" {
		opts.Mode = models.ModeCopy
	}
	if opts.Mode != models.ModeCopy && opts.Mode != models.ModeMove {
		return nil, &models.ValidationError{Field: "mode", Message: "mode must be 'copy' or 'move'"}
	}

	comparator, err := compare.New(opts.Verify, opts.BufferSize)
	if err != nil {
		return nil, err
	}

	return &Worker{
		source:     source,
		dest:       dest,
		opts:       opts,
		semaphore:  make(chan struct{}, opts.MaxWorkers),
		limiter:    ratelimit.NewLimiter(opts.BandwidthLimit),
		comparator: comparator,
		logger:     logging.OrNull(opts.Logger),
	}, nil
}

// Execute copies every entry of plan. Per-entry failures are recorded in the
// report and do not stop the run. Cancellation stops scheduling new entries,
// leaves the unscheduled ones pending and returns the context error with the
// report.
func (w *Worker) Execute(ctx context.Context, plan *models.CopyPlan) (*models.ExecutionReport, error) {
	report := &models.ExecutionReport{
		OperationID: uuid.New().String(),
		PlanID:      plan.ID,
		SourceRoot:  plan.SourceRoot,
		DestRoot:    plan.DestRoot,
		Mode:        w.opts.Mode,
		StartTime:   time.Now(),
		Results:     make([]models.EntryResult, plan.Len()),
		Errors:      []models.CopyError{},
	}
	report.Stats.FilesPlanned = plan.Len()

	for i, entry := range plan.Entries {
		report.Results[i] = models.EntryResult{
			SourcePath: entry.SourcePath(),
			DestPath:   entry.DestPath(),
			Outcome:    models.OutcomePending,
		}
	}

	if plan.IsEmpty() {
		w.logger.Info(ctx, "Nothing to do", logging.Fields{"plan_id": plan.ID})
		return w.finish(ctx, report), nil
	}

	sizes := w.sizes(ctx, plan)
	var totalBytes int64
	for _, s := range sizes {
		totalBytes += s
	}
	if w.opts.Formatter != nil {
		w.opts.Formatter.Start(w.opts.Output, plan.Len(), totalBytes)
	}

	w.logger.Info(ctx, "Execution started", logging.Fields{
		"operation_id": report.OperationID,
		"plan_id":      plan.ID,
		"files":        plan.Len(),
		"bytes":        totalBytes,
		"mode":         string(w.opts.Mode),
		"workers":      w.opts.MaxWorkers,
		"bandwidth":    w.limiter.Rate(),
	})

	var wg sync.WaitGroup
	var mu sync.Mutex

schedule:
	for i := range plan.Entries {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break schedule
		case w.semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			defer func() { <-w.semaphore }()

			result := w.process(ctx, index, plan.Entries[index], sizes[index], plan.Len())

			mu.Lock()
			defer mu.Unlock()
			report.Results[index] = result
			w.record(report, result)
		}(i)
	}

	wg.Wait()

	report = w.finish(ctx, report)
	if w.opts.Formatter != nil {
		w.opts.Formatter.Complete(report)
	}
	if report.Status == models.StatusCancelled {
		return report, ctx.Err()
	}
	return report, nil
}

// process handles one entry and never panics on I/O errors
func (w *Worker) process(ctx context.Context, index int, entry models.CopyPlanEntry, size int64, total int) models.EntryResult {
	start := time.Now()
	fileNum := index + 1
	result := models.EntryResult{
		SourcePath: entry.SourcePath(),
		DestPath:   entry.DestPath(),
	}

	w.progress(output.ProgressUpdate{
		Type:        output.EventFileStart,
		SourcePath:  result.SourcePath,
		DestPath:    result.DestPath,
		TotalBytes:  size,
		CurrentFile: fileNum,
		TotalFiles:  total,
	})

	written, skipped, verified, err := w.transfer(ctx, entry, size, fileNum, total)
	result.Duration = time.Since(start)

	switch {
	case err != nil:
		result.Outcome = models.OutcomeFailed
		result.Error = err.Error()
		w.logger.Error(ctx, "Failed to copy file", err, logging.Fields{"source": result.SourcePath, "dest": result.DestPath})
		w.progress(output.ProgressUpdate{
			Type:        output.EventFileError,
			SourcePath:  result.SourcePath,
			DestPath:    result.DestPath,
			TotalBytes:  size,
			CurrentFile: fileNum,
			TotalFiles:  total,
			Error:       err,
		})
	case skipped:
		result.Outcome = models.OutcomeSkipped
		w.logger.Debug(ctx, "Destination exists, skipping", logging.Fields{"dest": result.DestPath})
		w.progress(output.ProgressUpdate{
			Type:        output.EventFileSkipped,
			SourcePath:  result.SourcePath,
			DestPath:    result.DestPath,
			TotalBytes:  size,
			CurrentFile: fileNum,
			TotalFiles:  total,
		})
	default:
		result.Outcome = models.OutcomeCopied
		if w.opts.Mode == models.ModeMove {
			result.Outcome = models.OutcomeMoved
		}
		result.Bytes = written
		result.Verified = verified
		w.logger.Debug(ctx, "File transferred", logging.Fields{
			"source":   result.SourcePath,
			"dest":     result.DestPath,
			"bytes":    written,
			"verified": verified,
			"outcome":  string(result.Outcome),
		})
		w.progress(output.ProgressUpdate{
			Type:         output.EventFileComplete,
			SourcePath:   result.SourcePath,
			DestPath:     result.DestPath,
			BytesWritten: written,
			TotalBytes:   size,
			CurrentFile:  fileNum,
			TotalFiles:   total,
		})
	}
	return result
}

// transfer copies, verifies and, in move mode, removes the source
func (w *Worker) transfer(ctx context.Context, entry models.CopyPlanEntry, size int64, fileNum, total int) (written int64, skipped, verified bool, err error) {
	src := entry.SourcePath()
	dst := entry.DestPath()

	if !w.opts.Overwrite {
		exists, err := w.dest.Exists(ctx, dst)
		if err != nil {
			return 0, false, false, fmt.Errorf("failed to check destination: %w", err)
		}
		if exists {
			return 0, true, false, nil
		}
	}

	info, err := w.source.Stat(ctx, src)
	if err != nil {
		return 0, false, false, fmt.Errorf("failed to get source metadata: %w", err)
	}

	reader, err := w.source.Open(ctx, src)
	if err != nil {
		return 0, false, false, fmt.Errorf("failed to read source: %w", err)
	}
	defer reader.Close()

	limited := ratelimit.NewReader(ctx, reader, w.limiter)
	tracked := newProgressReader(limited, func(read int64) {
		w.progress(output.ProgressUpdate{
			Type:         output.EventFileProgress,
			SourcePath:   src,
			DestPath:     dst,
			BytesWritten: read,
			TotalBytes:   size,
			CurrentFile:  fileNum,
			TotalFiles:   total,
		})
	})

	// dst only ever holds a complete, verified copy
	tmp := dst + partialSuffix
	if err := w.dest.Write(ctx, tmp, tracked, info.Size, info); err != nil {
		w.discard(ctx, tmp)
		return 0, false, false, fmt.Errorf("failed to write destination: %w", err)
	}

	if w.comparator != nil {
		cmp, err := w.comparator.Compare(ctx, w.source, w.dest, src, tmp)
		if err != nil {
			w.discard(ctx, tmp)
			return 0, false, false, fmt.Errorf("failed to verify copy: %w", err)
		}
		if cmp.Result != compare.Same {
			w.discard(ctx, tmp)
			return 0, false, false, fmt.Errorf("%w: %s", ErrVerification, cmp.Reason)
		}
		verified = true
	}

	if err := w.dest.Rename(ctx, tmp, dst); err != nil {
		w.discard(ctx, tmp)
		return 0, false, false, fmt.Errorf("failed to finalize destination: %w", err)
	}

	if w.opts.Mode == models.ModeMove {
		if err := w.source.Delete(ctx, src); err != nil {
			return info.Size, false, verified, fmt.Errorf("failed to remove source after copy: %w", err)
		}
	}
	return info.Size, false, verified, nil
}

// discard removes an unfinished copy
func (w *Worker) discard(ctx context.Context, path string) {
	exists, err := w.dest.Exists(ctx, path)
	if err != nil || !exists {
		return
	}
	if err := w.dest.Delete(ctx, path); err != nil {
		w.logger.Warn(ctx, "Failed to remove unfinished copy", logging.Fields{"path": path, "error": err.Error()})
	}
}

// record updates counters; callers hold the report lock
func (w *Worker) record(report *models.ExecutionReport, result models.EntryResult) {
	switch result.Outcome {
	case models.OutcomeCopied:
		report.Stats.FilesCopied++
	case models.OutcomeMoved:
		report.Stats.FilesMoved++
	case models.OutcomeSkipped:
		report.Stats.FilesSkipped++
	case models.OutcomeFailed:
		report.Stats.FilesErrored++
		report.Errors = append(report.Errors, models.CopyError{
			FilePath:  result.SourcePath,
			Error:     result.Error,
			Timestamp: time.Now(),
		})
	}
	if result.Verified {
		report.Stats.FilesVerified++
	}
	report.Stats.BytesTransferred += result.Bytes
}

func (w *Worker) finish(ctx context.Context, report *models.ExecutionReport) *models.ExecutionReport {
	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)

	switch {
	case ctx.Err() != nil:
		report.Status = models.StatusCancelled
	case report.Stats.FilesErrored == 0:
		report.Status = models.StatusSuccess
	case report.Stats.FilesErrored == report.Stats.FilesPlanned:
		report.Status = models.StatusFailed
	default:
		report.Status = models.StatusPartial
	}

	w.logger.Info(ctx, "Execution finished", logging.Fields{
		"operation_id": report.OperationID,
		"status":       string(report.Status),
		"copied":       report.Stats.FilesCopied,
		"moved":        report.Stats.FilesMoved,
		"skipped":      report.Stats.FilesSkipped,
		"errored":      report.Stats.FilesErrored,
		"bytes":        report.Stats.BytesTransferred,
		"duration":     report.Duration.String(),
	})
	return report
}

// sizes returns the source size of each entry, 0 when unknown
func (w *Worker) sizes(ctx context.Context, plan *models.CopyPlan) []int64 {
	sizes := make([]int64, plan.Len())
	for i, entry := range plan.Entries {
		if info, ok := entry.Source.(*storage.FileInfo); ok {
			sizes[i] = info.Size
			continue
		}
		if info, err := w.source.Stat(ctx, entry.SourcePath()); err == nil {
			sizes[i] = info.Size
		}
	}
	return sizes
}

func (w *Worker) progress(update output.ProgressUpdate) {
	if w.opts.Formatter != nil {
		w.opts.Formatter.Progress(update)
	}
}
