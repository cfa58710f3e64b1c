package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"postcrawler/pkg/checkpoint"
	"postcrawler/pkg/ui"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the saved crawl progress",
	Long: `Show the checkpoint left by an unfinished crawl: the cursor the next run
starts from, how many posts are already saved, and when the checkpoint was
last written.`,
	Run: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory holding the output and checkpoint files")
}

func runStatus(cmd *cobra.Command, args []string) {
	flags := make(map[string]interface{})
	if cmd.Flags().Changed("output") {
		flags["output"] = outputDir
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	info, err := checkpoint.NewManager(cfg.CheckpointPath()).Info()
	if err != nil {
		ui.PrintError("Checkpoint is unreadable", err.Error())
		os.Exit(1)
	}

	ui.PrintInfo("Target member", cfg.Listing.TargetUser)
	ui.PrintInfo("Output", cfg.OutputPath())

	if info == nil {
		if _, err := os.Stat(cfg.OutputPath()); err == nil {
			ui.PrintSuccess("No crawl in progress; output is complete")
		} else {
			ui.PrintSuccess("No crawl in progress")
		}
		return
	}

	cursor := info.Cursor
	if cursor == "" {
		cursor = "(most recent page)"
	}

	ui.PrintHighlight("Crawl in progress")
	ui.PrintInfo("Checkpoint", info.Path)
	ui.PrintInfo("Posts saved", fmt.Sprintf("%d", info.RecordCount))
	ui.PrintInfo("Next page older than", cursor)
	ui.PrintInfo("Last update", fmt.Sprintf("%s (%s ago)",
		info.UpdatedAt.Format("2006-01-02 15:04:05"), ui.FormatDuration(info.Age())))
}
