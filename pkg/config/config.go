package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the post crawler
type Config struct {
	// Headless browser settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Which listing to crawl
	Listing ListingConfig `yaml:"listing" json:"listing"`

	// Crawl loop tuning
	Crawl CrawlConfig `yaml:"crawl" json:"crawl"`

	// CSS selectors used to read the rendered listing
	Selectors SelectorConfig `yaml:"selectors" json:"selectors"`

	// Output and checkpoint locations
	Output OutputConfig `yaml:"output" json:"output"`

	// Stored session to use
	Auth AuthConfig `yaml:"auth" json:"auth"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// BrowserConfig holds renderer settings
type BrowserConfig struct {
	ExecutablePath string         `yaml:"executable_path" json:"executable_path"`
	Headless       bool           `yaml:"headless" json:"headless"`
	Viewport       ViewportConfig `yaml:"viewport" json:"viewport"`
	UserAgent      string         `yaml:"user_agent" json:"user_agent"`
}

// ViewportConfig holds the browser window dimensions
type ViewportConfig struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// ListingConfig identifies the listing being crawled
type ListingConfig struct {
	BaseURL    string `yaml:"base_url" json:"base_url"`
	TargetUser string `yaml:"target_user" json:"target_user"`
	// Origin resolves relative post links. Derived from BaseURL when empty.
	Origin string `yaml:"origin" json:"origin"`
}

// CrawlConfig holds crawl loop settings
type CrawlConfig struct {
	ReadyTimeout    time.Duration `yaml:"ready_timeout" json:"ready_timeout"`
	NavigateTimeout time.Duration `yaml:"navigate_timeout" json:"navigate_timeout"`
	IdleWindow      time.Duration `yaml:"idle_window" json:"idle_window"`
	PagesPerMinute  int           `yaml:"pages_per_minute" json:"pages_per_minute"`
	MaxPages        int           `yaml:"max_pages" json:"max_pages"`
}

// SelectorConfig holds the CSS selectors for the listing markup
type SelectorConfig struct {
	Row          string `yaml:"row" json:"row"`
	Title        string `yaml:"title" json:"title"`
	TitleLink    string `yaml:"title_link" json:"title_link"`
	Snippet      string `yaml:"snippet" json:"snippet"`
	Author       string `yaml:"author" json:"author"`
	Time         string `yaml:"time" json:"time"`
	PostNumber   string `yaml:"post_number" json:"post_number"`
	Forum        string `yaml:"forum" json:"forum"`
	Interstitial string `yaml:"interstitial" json:"interstitial"`
	EmptyResults string `yaml:"empty_results" json:"empty_results"`
}

// OutputConfig holds output file configuration
type OutputConfig struct {
	Directory      string `yaml:"directory" json:"directory"`
	File           string `yaml:"file" json:"file"`
	CheckpointFile string `yaml:"checkpoint_file" json:"checkpoint_file"`
}

// AuthConfig selects a stored session
type AuthConfig struct {
	Account string `yaml:"account" json:"account"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			ExecutablePath: "",
			Headless:       false,
			Viewport: ViewportConfig{
				Width:  1280,
				Height: 800,
			},
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36",
		},
		Listing: ListingConfig{
			BaseURL:    "https://www.reef2reef.com/search/5928544/",
			TargetUser: "Silent",
		},
		Crawl: CrawlConfig{
			ReadyTimeout:    30 * time.Second,
			NavigateTimeout: 30 * time.Second,
			IdleWindow:      500 * time.Millisecond,
			PagesPerMinute:  0,
			MaxPages:        0,
		},
		Selectors: SelectorConfig{
			Row:          ".block-row",
			Title:        ".contentRow-title",
			TitleLink:    ".contentRow-title a",
			Snippet:      ".contentRow-snippet",
			Author:       ".username",
			Time:         "time",
			PostNumber:   ".contentRow-minor li:nth-child(2)",
			Forum:        ".contentRow-minor a:last-child",
			Interstitial: "div#challenge-running",
			EmptyResults: ".blockMessage",
		},
		Output: OutputConfig{
			Directory:      ".",
			File:           "scraped_posts.json",
			CheckpointFile: "scraping_checkpoint.json",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// OutputPath returns the full path of the output document
func (c *Config) OutputPath() string {
	return filepath.Join(c.Output.Directory, c.Output.File)
}

// CheckpointPath returns the full path of the checkpoint document
func (c *Config) CheckpointPath() string {
	return filepath.Join(c.Output.Directory, c.Output.CheckpointFile)
}

// ListingOrigin returns the scheme and host used to resolve relative links
func (c *Config) ListingOrigin() string {
	if c.Listing.Origin != "" {
		return strings.TrimRight(c.Listing.Origin, "/")
	}
	u, err := url.Parse(c.Listing.BaseURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// Browser
	if path := os.Getenv("CHROME_PATH"); path != "" {
		c.Browser.ExecutablePath = path
	}
	if headless := os.Getenv("BROWSER_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) == "true"
	}
	if width := os.Getenv("VIEWPORT_WIDTH"); width != "" {
		val, err := strconv.Atoi(width)
		if err != nil {
			return fmt.Errorf("invalid VIEWPORT_WIDTH: %w", err)
		}
		c.Browser.Viewport.Width = val
	}
	if height := os.Getenv("VIEWPORT_HEIGHT"); height != "" {
		val, err := strconv.Atoi(height)
		if err != nil {
			return fmt.Errorf("invalid VIEWPORT_HEIGHT: %w", err)
		}
		c.Browser.Viewport.Height = val
	}
	if userAgent := os.Getenv("USER_AGENT"); userAgent != "" {
		c.Browser.UserAgent = userAgent
	}

	// Listing
	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		c.Listing.BaseURL = baseURL
	}
	if targetUser := os.Getenv("TARGET_USER"); targetUser != "" {
		c.Listing.TargetUser = targetUser
	}

	// Crawl
	if timeout := os.Getenv("POSTCRAWLER_READY_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid POSTCRAWLER_READY_TIMEOUT: %w", err)
		}
		c.Crawl.ReadyTimeout = d
	}
	if timeout := os.Getenv("POSTCRAWLER_NAVIGATE_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid POSTCRAWLER_NAVIGATE_TIMEOUT: %w", err)
		}
		c.Crawl.NavigateTimeout = d
	}
	if ppm := os.Getenv("POSTCRAWLER_PAGES_PER_MINUTE"); ppm != "" {
		var val int
		fmt.Sscanf(ppm, "%d", &val)
		if val >= 0 {
			c.Crawl.PagesPerMinute = val
		}
	}

	// Output directory
	if outputDir := os.Getenv("POSTCRAWLER_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}

	// Session
	if account := os.Getenv("POSTCRAWLER_ACCOUNT"); account != "" {
		c.Auth.Account = account
	}

	// Logging level
	if logLevel := os.Getenv("POSTCRAWLER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".postcrawler.yaml",
		".postcrawler.yml",
		filepath.Join(home, ".config", "postcrawler", "config.yaml"),
		filepath.Join(home, ".config", "postcrawler", "config.yml"),
		filepath.Join(home, ".postcrawler.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Browser
	if c.Browser.Viewport.Width <= 0 || c.Browser.Viewport.Height <= 0 {
		errs = append(errs, errors.New("viewport dimensions must be positive"))
	}
	if c.Browser.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}

	// Listing
	if c.Listing.BaseURL == "" {
		errs = append(errs, errors.New("listing base URL is required"))
	} else if u, err := url.Parse(c.Listing.BaseURL); err != nil || u.Host == "" {
		errs = append(errs, fmt.Errorf("listing base URL %q is not absolute", c.Listing.BaseURL))
	}
	if strings.TrimSpace(c.Listing.TargetUser) == "" {
		errs = append(errs, errors.New("target user is required"))
	}

	// Crawl
	if c.Crawl.ReadyTimeout <= 0 {
		errs = append(errs, errors.New("ready timeout must be positive"))
	}
	if c.Crawl.NavigateTimeout <= 0 {
		errs = append(errs, errors.New("navigate timeout must be positive"))
	}
	if c.Crawl.IdleWindow < 0 {
		errs = append(errs, errors.New("idle window cannot be negative"))
	}
	if c.Crawl.PagesPerMinute < 0 {
		errs = append(errs, errors.New("pages per minute cannot be negative"))
	}
	if c.Crawl.MaxPages < 0 {
		errs = append(errs, errors.New("max pages cannot be negative"))
	}

	// Selectors
	if c.Selectors.Row == "" {
		errs = append(errs, errors.New("row selector is required"))
	}
	if c.Selectors.Time == "" {
		errs = append(errs, errors.New("time selector is required"))
	}

	// Output
	if c.Output.File == "" {
		errs = append(errs, errors.New("output file is required"))
	}
	if c.Output.CheckpointFile == "" {
		errs = append(errs, errors.New("checkpoint file is required"))
	}
	if c.Output.File != "" && c.Output.File == c.Output.CheckpointFile {
		errs = append(errs, errors.New("output file and checkpoint file must differ"))
	}

	// Logging
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if baseURL, ok := flags["base-url"].(string); ok && baseURL != "" {
		c.Listing.BaseURL = baseURL
	}
	if user, ok := flags["user"].(string); ok && user != "" {
		c.Listing.TargetUser = user
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if chrome, ok := flags["chrome-path"].(string); ok && chrome != "" {
		c.Browser.ExecutablePath = chrome
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if timeout, ok := flags["ready-timeout"].(time.Duration); ok && timeout > 0 {
		c.Crawl.ReadyTimeout = timeout
	}
	if timeout, ok := flags["navigate-timeout"].(time.Duration); ok && timeout > 0 {
		c.Crawl.NavigateTimeout = timeout
	}
	if ppm, ok := flags["pages-per-minute"].(int); ok && ppm >= 0 {
		c.Crawl.PagesPerMinute = ppm
	}
	if maxPages, ok := flags["max-pages"].(int); ok && maxPages >= 0 {
		c.Crawl.MaxPages = maxPages
	}
	if account, ok := flags["account"].(string); ok && account != "" {
		c.Auth.Account = account
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".postcrawler.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
