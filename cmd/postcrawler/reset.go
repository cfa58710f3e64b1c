package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"postcrawler/pkg/checkpoint"
	"postcrawler/pkg/ui"
)

var forceReset bool

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard saved progress and output",
	Long: `Delete the checkpoint and the output file so the next crawl starts from the
most recent page. Requires --force.`,
	Run: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVar(&forceReset, "force", false, "actually delete the files")
	resetCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory holding the output and checkpoint files")
}

func runReset(cmd *cobra.Command, args []string) {
	flags := make(map[string]interface{})
	if cmd.Flags().Changed("output") {
		flags["output"] = outputDir
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	if !forceReset {
		ui.PrintWarning("This deletes", cfg.CheckpointPath()+" and "+cfg.OutputPath())
		ui.PrintInfo("To continue", "postcrawler reset --force")
		return
	}

	if err := checkpoint.NewManager(cfg.CheckpointPath()).Delete(); err != nil {
		ui.PrintError("Failed to delete checkpoint", err.Error())
		os.Exit(1)
	}
	if err := os.Remove(cfg.OutputPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		ui.PrintError("Failed to delete output", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Progress reset")
}
