package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"postcrawler/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage postcrawler configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.postcrawler.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging every source:
  - Command line flags
  - Environment variables
  - Configuration file
  - Default values`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Validate the effective configuration.

This command checks:
  - YAML syntax
  - Required fields (listing, selectors, output files)
  - Value ranges
  - Output and log directory accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# postcrawler configuration file
#
# Every key can be overridden by environment variables (see comments) or by
# command line flags. Values from a .env file are loaded as environment.

# Headless Chromium settings
browser:
  # Path to a Chromium/Chrome binary (CHROME_PATH)
  # Leave empty to download a matching build on first run
  executable_path: ""

  # Run without a window (BROWSER_HEADLESS)
  headless: false

  viewport:
    width: 1280   # VIEWPORT_WIDTH
    height: 800   # VIEWPORT_HEIGHT

  # User agent sent with every request (USER_AGENT)
  user_agent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36"

# The listing to crawl
listing:
  # Search endpoint, without a query string (BASE_URL)
  base_url: "https://www.reef2reef.com/search/5928544/"

  # Member whose posts are listed (TARGET_USER)
  target_user: "Silent"

  # Origin used to resolve relative post links
  # Derived from base_url when empty
  origin: ""

# Crawl loop
crawl:
  # How long to wait for listing content on each page (POSTCRAWLER_READY_TIMEOUT)
  ready_timeout: 30s

  # How long a page load may take (POSTCRAWLER_NAVIGATE_TIMEOUT)
  navigate_timeout: 30s

  # Quiet network period that counts as "page loaded"
  idle_window: 500ms

  # Page pacing; 0 disables (POSTCRAWLER_PAGES_PER_MINUTE)
  pages_per_minute: 0

  # Pause after this many pages per run; 0 means no limit
  max_pages: 0

# CSS selectors for the rendered listing
selectors:
  row: ".block-row"
  title: ".contentRow-title"
  title_link: ".contentRow-title a"
  snippet: ".contentRow-snippet"
  author: ".username"
  time: "time"
  post_number: ".contentRow-minor li:nth-child(2)"
  forum: ".contentRow-minor a:last-child"
  interstitial: "div#challenge-running"
  empty_results: ".blockMessage"

# Output files
output:
  # Directory for both files (POSTCRAWLER_OUTPUT_DIR)
  directory: "."
  file: "scraped_posts.json"
  checkpoint_file: "scraping_checkpoint.json"

# Stored session to send as cookies (POSTCRAWLER_ACCOUNT)
# Create one with 'postcrawler auth login'
auth:
  account: ""

# Logging
logging:
  # debug, info, warn, error (POSTCRAWLER_LOG_LEVEL)
  level: "info"

  # Optional log file; logs also go to the console
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".postcrawler.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Set listing.base_url and listing.target_user")
	fmt.Println("2. Run 'postcrawler config validate' to check the configuration")
	fmt.Println("3. Start crawling with 'postcrawler crawl'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (POSTCRAWLER_*, BASE_URL, TARGET_USER, ...)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (default search path)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile != "" {
		ui.PrintInfo("Validating configuration", configFile)
	}

	cfg, err := loadConfig(nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	var problems []string
	if err := os.MkdirAll(cfg.Output.Directory, 0755); err != nil {
		problems = append(problems, fmt.Sprintf("Cannot create output directory: %v", err))
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	if len(problems) > 0 {
		ui.PrintError("Configuration has errors")
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
		os.Exit(1)
	}

	if cfg.Crawl.PagesPerMinute == 0 {
		ui.PrintWarning("Page pacing is disabled", "pages are fetched back to back")
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Listing: %s (member %s)\n", cfg.Listing.BaseURL, cfg.Listing.TargetUser)
	fmt.Printf("  Output: %s\n", cfg.OutputPath())
	fmt.Printf("  Checkpoint: %s\n", cfg.CheckpointPath())
	fmt.Printf("  Navigate timeout: %s\n", cfg.Crawl.NavigateTimeout)
	fmt.Printf("  Ready timeout: %s\n", cfg.Crawl.ReadyTimeout)
	fmt.Printf("  Pacing: %d pages/minute\n", cfg.Crawl.PagesPerMinute)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
