package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time via ldflags.
	Version = "dev"

	// Global flags.
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "boxflow",
	Short: "boxflow - hierarchical action runtime on a virtual clock",
	Long: `boxflow runs boxworks: hierarchical state machines whose guarded
transitions and per-context acts are stepped cooperatively by a
virtual-time scheduler. The runtime is meant to be embedded; this
binary runs a built-in demo boxwork and prints version information.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level override (trace|debug|info|warn|error|off)")
}
