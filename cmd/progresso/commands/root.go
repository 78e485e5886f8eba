// Package commands implements the progresso command line.
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	progresso "github.com/axondata/go-progresso"
)

var (
	// Version information injected at build time.
	Version = progresso.Version
	Commit  = "none"

	// Global flags.
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "progresso",
	Short: "Drive host services to a declared state, one at a time",
	Long: `progresso reads an ordered list of services with their desired end
state, starts or stops each one in turn, verifies the transition by polling,
waits for CPU load to settle before moving on, and rewrites a timestamped
progress document after every service.

Use "progresso [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		info := progresso.GetVersion()
		fmt.Fprintf(cmd.OutOrStdout(), "progresso %s (commit: %s)\n", Version, Commit)
		fmt.Fprintf(cmd.OutOrStdout(), "backends: %s\nformats: %s\n",
			strings.Join(info.Backends, ", "), strings.Join(info.Formats, ", "))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "progresso.yaml", "config file (missing file means defaults)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
