// Tourguide runs guided product tours over live web pages.
//
// It drives a Chrome page over the DevTools protocol, resolves each step's
// target element, scrolls it into view and positions the tour panel next to
// it. A terminal preview runs the same engine against a simulated page, and
// a WebSocket bridge lets other tools follow and drive a running tour.
//
// Usage:
//
//	tourguide [command] [flags]
//
// See 'tourguide --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/tourguide/internal/config"
	"github.com/muurk/tourguide/internal/logging"
	"github.com/muurk/tourguide/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	logLevel   string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "tourguide",
	Short: "Guided tour overlay engine",
	Long: `Run guided product tours over web pages.

A tour is a YAML file listing steps. Each step points at an element tagged
with data-tour="<key>" and shows a panel next to it. Finished tours are
remembered so users only see them once.`,
	Version:       version.Short(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Initialize(logLevel); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to $"+logging.LogLevelEnvVar)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Registry file (default: user config directory)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tourguide %s\n", version.Full())
	},
}

// loadRegistry loads the registry from --config or the default location.
func loadRegistry() (*config.Registry, error) {
	if configPath != "" {
		return config.LoadRegistryFrom(configPath)
	}
	return config.LoadRegistry()
}
