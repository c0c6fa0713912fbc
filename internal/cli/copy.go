package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/photoharvest/pkg/executor"
	"github.com/sdejongh/photoharvest/pkg/logging"
	"github.com/sdejongh/photoharvest/pkg/models"
	"github.com/sdejongh/photoharvest/pkg/output"
	"github.com/sdejongh/photoharvest/pkg/storage"
)

// ExitError carries a process exit code for a finished run
type ExitError struct {
	Code   int
	Status models.ExecutionStatus
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("copy finished with status %s", e.Status)
}

// NewCopyCommand creates the copy command
func NewCopyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Consolidate photos from a source tree into a destination",
		Long: `Plan the consolidation and copy (or move) every planned file into the
destination tree. Files are named after their capture time when it is
available; existing destination files are left untouched unless --overwrite
is given.`,
		RunE: runCopy,
	}

	addPlanFlags(cmd)
	addCopyFlags(cmd)

	return cmd
}

func runCopy(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := validateRunFlags(!runFlags.DryRun, runFlags.CreateDest && !runFlags.DryRun); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlagsToConfig(cmd, cfg); err != nil {
		return err
	}

	operation, err := createOperation(cfg, runFlags.DryRun)
	if err != nil {
		return fmt.Errorf("failed to create operation: %w", err)
	}

	logger, err := createLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()
	logger = logger.WithFields(logging.Fields{"operation_id": operation.ID})

	backend := storage.NewLocal()
	defer backend.Close()

	consolidator, err := newConsolidator(cfg, operation, backend, logger)
	if err != nil {
		return err
	}

	copyPlan, err := consolidator.Plan(ctx)
	if err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}

	if operation.DryRun {
		return output.WritePlan(cmd.OutOrStdout(), copyPlan, cfg.Output.Format)
	}

	if copyPlan.IsEmpty() {
		if !cfg.Output.Quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "nothing to do")
		}
		return nil
	}

	var formatter output.Formatter
	if !cfg.Output.Quiet {
		progress := cfg.Output.Progress && output.IsTerminal(cmd.OutOrStdout())
		formatter, err = output.NewFormatter(cfg.Output.Format, progress)
		if err != nil {
			return err
		}
	}

	worker, err := executor.NewWorker(backend, backend, executor.Options{
		Mode:           operation.Mode,
		MaxWorkers:     operation.MaxWorkers,
		BufferSize:     operation.BufferSize,
		BandwidthLimit: operation.BandwidthLimit,
		Verify:         operation.Verify,
		Overwrite:      operation.Overwrite,
		Formatter:      formatter,
		Output:         cmd.OutOrStdout(),
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create executor: %w", err)
	}

	report, err := worker.Execute(ctx, copyPlan)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("copy failed: %w", err)
	}

	if code := report.Status.ExitCode(); code != 0 {
		return &ExitError{Code: code, Status: report.Status}
	}
	return nil
}
