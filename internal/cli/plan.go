package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/photoharvest/pkg/logging"
	"github.com/sdejongh/photoharvest/pkg/models"
	"github.com/sdejongh/photoharvest/pkg/output"
	"github.com/sdejongh/photoharvest/pkg/storage"
)

// NewPlanCommand creates the plan command
func NewPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show where every photo would be copied",
		Long: `Walk the source tree, resolve edited/original variants and print the
resulting copy plan without touching the destination.`,
		RunE: runPlan,
	}

	addPlanFlags(cmd)
	cmd.Flags().StringVar(&runFlags.OutFile, "out", "", "write the plan to a file instead of stdout")

	return cmd
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := validateRunFlags(false, false); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlagsToConfig(cmd, cfg); err != nil {
		return err
	}

	operation, err := createOperation(cfg, true)
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

	if runFlags.OutFile == "" {
		if err := output.WritePlan(cmd.OutOrStdout(), copyPlan, cfg.Output.Format); err != nil {
			return fmt.Errorf("failed to write plan: %w", err)
		}
		return nil
	}

	file, err := os.Create(runFlags.OutFile)
	if err != nil {
		return fmt.Errorf("failed to create plan file: %w", err)
	}
	return writePlanFile(file, copyPlan, cfg.Output.Format)
}

// writePlanFile writes the plan to w and closes it. A failed close fails the
// write.
func writePlanFile(w io.WriteCloser, copyPlan *models.CopyPlan, format string) error {
	if err := output.WritePlan(w, copyPlan, format); err != nil {
		w.Close()
		return fmt.Errorf("failed to write plan: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close plan file: %w", err)
	}
	return nil
}
