package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"postcrawler/pkg/config"
	"postcrawler/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "postcrawler",
	Short: "Resumable crawler for a member's forum posts",
	Long: `postcrawler walks a forum search listing filtered to one member, newest
first, and writes every post it finds to a JSON array.

Features:
  - Headless Chromium rendering (waits out anti-bot interstitials)
  - Checkpoint after every page; rerun to resume exactly where it stopped
  - Crash-safe output that never duplicates a post on resume
  - Optional page pacing and per-run page budget
  - Session cookies for members-only listings`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet || logLevel == "error" {
			ui.SetQuietMode(true)
		}
		if verbose && logLevel == "info" {
			logLevel = "debug"
		}

		if cmd.Name() != "version" && cmd.Name() != "help" {
			ui.PrintLogo()
		}
	},
}

// versionCmd prints the same text as --version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("postcrawler %s\nGo Version: %s\nOS/Arch: %s/%s\n",
			rootCmd.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .postcrawler.yaml or $HOME/.config/postcrawler/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show per-page progress and debug logs")

	rootCmd.SetVersionTemplate(`postcrawler {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads configuration from every source, with the global
// --log-level flag applied on top of flags
func loadConfig(flags map[string]interface{}) (*config.Config, error) {
	if flags == nil {
		flags = make(map[string]interface{})
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}
	return config.Load(configFile, flags)
}
