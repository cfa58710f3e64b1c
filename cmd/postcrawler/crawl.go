package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"postcrawler/pkg/auth"
	"postcrawler/pkg/checkpoint"
	"postcrawler/pkg/config"
	"postcrawler/pkg/crawler"
	crawlerrors "postcrawler/pkg/errors"
	"postcrawler/pkg/logger"
	"postcrawler/pkg/render"
	"postcrawler/pkg/ui"
)

var (
	// Crawl command flags
	baseURL        string
	outputDir      string
	chromePath     string
	headless       bool
	readyTimeout   time.Duration
	navTimeout     time.Duration
	pagesPerMinute int
	maxPages       int
	accountName    string
	notify         bool
)

// crawlCmd represents the crawl command
var crawlCmd = &cobra.Command{
	Use:   "crawl [member]",
	Short: "Crawl a member's posts, resuming from the last checkpoint",
	Long: `Crawl every post of a forum member, newest first, into a JSON array.

Progress is checkpointed after every page. If the run is interrupted, fails,
or stops at the --max-pages budget, running the same command again continues
from the last committed page without re-fetching or duplicating posts.

The member defaults to listing.target_user from the configuration.`,
	Example: `  # Crawl the configured member
  postcrawler crawl

  # Crawl a specific member into ./out
  postcrawler crawl Silent --output ./out

  # Use a stored session and a visible browser
  postcrawler crawl Silent --account main --headless=false

  # Fetch at most 10 pages per run, at 6 pages per minute
  postcrawler crawl --max-pages 10 --pages-per-minute 6`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runCrawl(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(crawlCmd)
	addCrawlFlags(crawlCmd)

	// The root command crawls too, so `postcrawler Silent` works
	addCrawlFlags(rootCmd)
	rootCmd.Args = cobra.MaximumNArgs(1)
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		runCrawl(cmd, args)
		return nil
	}
}

func addCrawlFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&baseURL, "base-url", "", "search endpoint of the forum listing")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for the output and checkpoint files")
	cmd.Flags().StringVar(&chromePath, "chrome-path", "", "Chromium executable (default: downloaded by the browser launcher)")
	cmd.Flags().BoolVar(&headless, "headless", false, "run the browser without a window")
	cmd.Flags().DurationVar(&readyTimeout, "ready-timeout", 30*time.Second, "how long to wait for listing content on each page")
	cmd.Flags().DurationVar(&navTimeout, "navigate-timeout", 30*time.Second, "how long a page load may take before the run fails")
	cmd.Flags().IntVar(&pagesPerMinute, "pages-per-minute", 0, "page pacing (0 disables)")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "pause after this many pages (0 means no limit)")
	cmd.Flags().StringVarP(&accountName, "account", "a", "", "stored session to send as cookies")
	cmd.Flags().BoolVar(&notify, "notify", false, "send a desktop notification when the run ends")
}

// crawlFlags collects the flags the user actually set
func crawlFlags(cmd *cobra.Command, args []string) map[string]interface{} {
	flags := make(map[string]interface{})
	if len(args) > 0 {
		flags["user"] = args[0]
	}

	set := cmd.Flags().Changed
	if set("base-url") {
		flags["base-url"] = baseURL
	}
	if set("output") {
		flags["output"] = outputDir
	}
	if set("chrome-path") {
		flags["chrome-path"] = chromePath
	}
	if set("headless") {
		flags["headless"] = headless
	}
	if set("ready-timeout") {
		flags["ready-timeout"] = readyTimeout
	}
	if set("navigate-timeout") {
		flags["navigate-timeout"] = navTimeout
	}
	if set("pages-per-minute") {
		flags["pages-per-minute"] = pagesPerMinute
	}
	if set("max-pages") {
		flags["max-pages"] = maxPages
	}
	if set("account") {
		flags["account"] = accountName
	}
	return flags
}

func runCrawl(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(crawlFlags(cmd, args))
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logging", err.Error())
		os.Exit(1)
	}
	logger.SetLogger(logger.WithFields(map[string]interface{}{
		"run_id": uuid.NewString(),
		"target": cfg.Listing.TargetUser,
	}))
	logger.WithField("version", version).Info("postcrawler starting")

	ui.PrintInfo("Target member", cfg.Listing.TargetUser)

	cookies, err := sessionCookies(cfg)
	if err != nil {
		ui.PrintError("Session not available", err.Error())
		ui.PrintInfo("Stored sessions", "Use 'postcrawler auth list' to see stored sessions")
		os.Exit(1)
	}

	startRecords := 0
	if info, err := checkpoint.NewManager(cfg.CheckpointPath()).Info(); err == nil && info != nil {
		startRecords = info.RecordCount
		ui.PrintInfo("Resuming", fmt.Sprintf("%d posts already saved, older than %s", info.RecordCount, info.Cursor))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	browser, err := render.Launch(ctx, render.Options{
		Browser:    cfg.Browser,
		Selectors:  cfg.Selectors,
		Origin:     cfg.ListingOrigin(),
		IdleWindow: cfg.Crawl.IdleWindow,
		Cookies:    cookies,
	})
	if err != nil {
		logger.WithError(err).Error("Failed to launch browser")
		ui.PrintError("Failed to launch browser", err.Error())
		os.Exit(1)
	}
	defer browser.Close()

	display := ui.NewProgressDisplay(cfg.Listing.TargetUser, startRecords, verbose)
	c, err := crawler.NewFromConfig(cfg, browser, crawler.Options{
		Reporter: display,
	})
	if err != nil {
		ui.PrintError("Invalid listing configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("[CRAWL STARTED]")
	res, err := c.Run(ctx)

	var notifier *ui.Notifier
	if notify {
		notifier = ui.NewNotifier()
	}

	switch res.State {
	case crawler.StateDone:
		display.Complete(res.OutputPath)
		if notifier != nil {
			notifier.SendSuccess("Crawl complete", fmt.Sprintf("%d posts saved", res.Records))
		}
	case crawler.StatePaused:
		ui.PrintWarning("Page budget reached", fmt.Sprintf("%d pages, %d posts saved", res.Pages, res.Records))
		ui.PrintInfo("Checkpoint", res.CheckpointPath)
		ui.PrintInfo("Next step", "run again to continue")
		if notifier != nil {
			notifier.SendNotification("Crawl paused", fmt.Sprintf("%d posts saved so far", res.Records))
		}
	default:
		browser.Close()
		reportFailure(err, res)
		if notifier != nil {
			notifier.SendError("Crawl failed", err.Error())
		}
		stop()
		os.Exit(1)
	}
}

func reportFailure(err error, res *crawler.Result) {
	switch {
	case errors.Is(err, context.Canceled):
		ui.PrintError("Crawl interrupted")
	case crawlerrors.IsType(err, crawlerrors.ErrorTypeContentNotReady):
		ui.PrintError("Listing did not render in time", err.Error())
	default:
		ui.PrintError("Crawl failed", err.Error())
	}
	ui.PrintInfo("Checkpoint preserved", res.CheckpointPath)
	ui.PrintInfo("Posts saved", fmt.Sprintf("%d (rerun to resume)", res.Records))
}

// sessionCookies returns the Cookie header of the session to use. A named
// account must exist; otherwise the default session is used when one is
// stored, and the listing is crawled anonymously when none is.
func sessionCookies(cfg *config.Config) (string, error) {
	manager, err := auth.NewManager()
	if err != nil {
		if cfg.Auth.Account == "" {
			logger.WithError(err).Debug("Credential stores unavailable, crawling anonymously")
			return "", nil
		}
		return "", err
	}

	var account *auth.Account
	if cfg.Auth.Account != "" {
		account, err = manager.Retrieve(cfg.Auth.Account)
		if err != nil {
			return "", err
		}
	} else {
		account, err = manager.RetrieveDefault()
		if errors.Is(err, auth.ErrCredentialsNotFound) {
			logger.Debug("No stored session, crawling anonymously")
			return "", nil
		}
		if err != nil {
			return "", err
		}
	}

	if account.UserAgent != "" {
		cfg.Browser.UserAgent = account.UserAgent
	}

	logger.WithField("account", account.Name).Info("Using stored session")
	ui.PrintInfo("Using session", account.Name)
	return account.Cookies, nil
}
