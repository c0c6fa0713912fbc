// Package cli implements the photoharvest command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand assembles the photoharvest command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "photoharvest",
		Short: "Consolidate photos from a device into a dated archive",
		Long: `photoharvest copies photos and videos from a source tree, such as the
DCIM folder of a mounted phone, into a destination tree that mirrors the
source layout. Edited variants replace their originals and files are renamed
after their capture time.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(NewPlanCommand())
	rootCmd.AddCommand(NewCopyCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
