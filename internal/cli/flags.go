package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool

	// Logging
	LogFile   string
	LogFormat string
	LogLevel  string
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $HOME/.config/photoharvest/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"verbose output (debug logs to stderr)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"suppress non-error output",
	)
	cmd.PersistentFlags().StringVar(&globalFlags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.PersistentFlags().StringVar(&globalFlags.LogFormat, "log-format", "", "log format: text, json")
	cmd.PersistentFlags().StringVar(&globalFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")
}

// GetGlobalFlags returns the global flags
func GetGlobalFlags() *GlobalFlags {
	return &globalFlags
}

// RunFlags holds the flags shared by the plan and copy commands
type RunFlags struct {
	Source     string
	Dest       string
	Filter     []string
	Suffixes   []string
	Strict     bool
	KeepNames  bool
	SourceZone string
	TargetZone string
	Output     string
	OutFile    string

	// copy only
	Mode       string
	Verify     string
	Parallel   int
	Bandwidth  string
	Overwrite  bool
	CreateDest bool
	DryRun     bool
}

var runFlags RunFlags

// addPlanFlags registers the planning flags on cmd
func addPlanFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&runFlags.Source, "source", "s", "", "source directory, e.g. the DCIM folder of a device (required)")
	cmd.Flags().StringVarP(&runFlags.Dest, "dest", "d", "", "destination directory (required)")
	cmd.MarkFlagRequired("source")
	cmd.MarkFlagRequired("dest")

	cmd.Flags().StringSliceVar(&runFlags.Filter, "filter", nil, "only descend into folders whose name contains one of these substrings")
	cmd.Flags().StringSliceVar(&runFlags.Suffixes, "suffix", nil, "file extensions to consolidate (default .heic,.jpg)")
	cmd.Flags().BoolVar(&runFlags.Strict, "strict", false, "plan surviving variants only; originals replaced by an edit are skipped")
	cmd.Flags().BoolVar(&runFlags.KeepNames, "keep-names", false, "keep source file names instead of naming by capture time")
	cmd.Flags().StringVar(&runFlags.SourceZone, "source-zone", "", "time zone of capture timestamps (default UTC)")
	cmd.Flags().StringVar(&runFlags.TargetZone, "target-zone", "", "time zone used in destination names (default Asia/Shanghai)")
	cmd.Flags().StringVarP(&runFlags.Output, "output", "o", "", "output format: human, json, yaml")
}

// addCopyFlags registers the execution flags on cmd
func addCopyFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&runFlags.Mode, "mode", "m", "", "copy or move")
	cmd.Flags().StringVar(&runFlags.Verify, "verify", "", "post-copy verification: none, size, hash")
	cmd.Flags().IntVarP(&runFlags.Parallel, "parallel", "p", 0, "number of parallel workers")
	cmd.Flags().StringVarP(&runFlags.Bandwidth, "bandwidth", "b", "", "bandwidth limit (e.g., \"10M\", \"1G\")")
	cmd.Flags().BoolVar(&runFlags.Overwrite, "overwrite", false, "replace files that already exist at the destination")
	cmd.Flags().BoolVar(&runFlags.CreateDest, "create-dest", false, "create destination directory if it doesn't exist")
	cmd.Flags().BoolVar(&runFlags.DryRun, "dry-run", false, "print the plan without copying")
}
