package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, 30*time.Second, config.Crawl.ReadyTimeout)
	assert.Equal(t, 30*time.Second, config.Crawl.NavigateTimeout)
	assert.Equal(t, 1280, config.Browser.Viewport.Width)
	assert.Equal(t, 800, config.Browser.Viewport.Height)
	assert.Equal(t, "Silent", config.Listing.TargetUser)
	assert.Equal(t, ".block-row", config.Selectors.Row)
	assert.Equal(t, "scraped_posts.json", config.Output.File)
	assert.Equal(t, "scraping_checkpoint.json", config.Output.CheckpointFile)
	assert.NoError(t, config.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("CHROME_PATH", "/usr/bin/chromium")
	os.Setenv("BROWSER_HEADLESS", "true")
	os.Setenv("VIEWPORT_WIDTH", "1920")
	os.Setenv("VIEWPORT_HEIGHT", "1080")
	os.Setenv("USER_AGENT", "test-agent")
	os.Setenv("BASE_URL", "https://forum.example.com/search/1/")
	os.Setenv("TARGET_USER", "someone")
	os.Setenv("POSTCRAWLER_READY_TIMEOUT", "45s")
	os.Setenv("POSTCRAWLER_NAVIGATE_TIMEOUT", "1m")
	os.Setenv("POSTCRAWLER_OUTPUT_DIR", "/tmp/crawl")
	os.Setenv("POSTCRAWLER_LOG_LEVEL", "debug")

	defer func() {
		os.Unsetenv("CHROME_PATH")
		os.Unsetenv("BROWSER_HEADLESS")
		os.Unsetenv("VIEWPORT_WIDTH")
		os.Unsetenv("VIEWPORT_HEIGHT")
		os.Unsetenv("USER_AGENT")
		os.Unsetenv("BASE_URL")
		os.Unsetenv("TARGET_USER")
		os.Unsetenv("POSTCRAWLER_READY_TIMEOUT")
		os.Unsetenv("POSTCRAWLER_NAVIGATE_TIMEOUT")
		os.Unsetenv("POSTCRAWLER_OUTPUT_DIR")
		os.Unsetenv("POSTCRAWLER_LOG_LEVEL")
	}()

	config := DefaultConfig()
	require.NoError(t, config.LoadFromEnv())

	assert.Equal(t, "/usr/bin/chromium", config.Browser.ExecutablePath)
	assert.True(t, config.Browser.Headless)
	assert.Equal(t, 1920, config.Browser.Viewport.Width)
	assert.Equal(t, 1080, config.Browser.Viewport.Height)
	assert.Equal(t, "test-agent", config.Browser.UserAgent)
	assert.Equal(t, "https://forum.example.com/search/1/", config.Listing.BaseURL)
	assert.Equal(t, "someone", config.Listing.TargetUser)
	assert.Equal(t, 45*time.Second, config.Crawl.ReadyTimeout)
	assert.Equal(t, time.Minute, config.Crawl.NavigateTimeout)
	assert.Equal(t, "/tmp/crawl", config.Output.Directory)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoadFromEnvInvalidViewport(t *testing.T) {
	os.Setenv("VIEWPORT_WIDTH", "wide")
	defer os.Unsetenv("VIEWPORT_WIDTH")

	config := DefaultConfig()
	assert.Error(t, config.LoadFromEnv())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantError bool
	}{
		{
			name:      "defaults",
			mutate:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "missing target user",
			mutate:    func(c *Config) { c.Listing.TargetUser = "" },
			wantError: true,
		},
		{
			name:      "relative base URL",
			mutate:    func(c *Config) { c.Listing.BaseURL = "/search/1/" },
			wantError: true,
		},
		{
			name:      "zero ready timeout",
			mutate:    func(c *Config) { c.Crawl.ReadyTimeout = 0 },
			wantError: true,
		},
		{
			name:      "negative navigate timeout",
			mutate:    func(c *Config) { c.Crawl.NavigateTimeout = -time.Second },
			wantError: true,
		},
		{
			name:      "negative max pages",
			mutate:    func(c *Config) { c.Crawl.MaxPages = -1 },
			wantError: true,
		},
		{
			name:      "zero viewport",
			mutate:    func(c *Config) { c.Browser.Viewport.Width = 0 },
			wantError: true,
		},
		{
			name: "output and checkpoint collide",
			mutate: func(c *Config) {
				c.Output.CheckpointFile = c.Output.File
			},
			wantError: true,
		},
		{
			name:      "invalid log level",
			mutate:    func(c *Config) { c.Logging.Level = "verbose" },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()

	flags := map[string]interface{}{
		"user":             "flag-user",
		"output":           "/flag/output",
		"headless":         true,
		"ready-timeout":    10 * time.Second,
		"navigate-timeout": 5 * time.Second,
		"max-pages":        3,
		"account":          "main",
		"log-level":        "error",
	}

	config.MergeCommandLineFlags(flags)

	assert.Equal(t, "flag-user", config.Listing.TargetUser)
	assert.Equal(t, "/flag/output", config.Output.Directory)
	assert.True(t, config.Browser.Headless)
	assert.Equal(t, 10*time.Second, config.Crawl.ReadyTimeout)
	assert.Equal(t, 5*time.Second, config.Crawl.NavigateTimeout)
	assert.Equal(t, 3, config.Crawl.MaxPages)
	assert.Equal(t, "main", config.Auth.Account)
	assert.Equal(t, "error", config.Logging.Level)
}

func TestSaveAndLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	config := DefaultConfig()
	config.Listing.TargetUser = "saved-user"
	config.Crawl.ReadyTimeout = 12 * time.Second
	config.Crawl.MaxPages = 7

	require.NoError(t, config.Save(configPath))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(configPath))

	assert.Equal(t, "saved-user", loaded.Listing.TargetUser)
	assert.Equal(t, 12*time.Second, loaded.Crawl.ReadyTimeout)
	assert.Equal(t, 7, loaded.Crawl.MaxPages)
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listing: [unterminated"), 0644))

	assert.Error(t, DefaultConfig().LoadFromFile(path))
}

func TestPaths(t *testing.T) {
	config := DefaultConfig()
	config.Output.Directory = "/data"

	assert.Equal(t, filepath.Join("/data", "scraped_posts.json"), config.OutputPath())
	assert.Equal(t, filepath.Join("/data", "scraping_checkpoint.json"), config.CheckpointPath())
	assert.Equal(t, "https://www.reef2reef.com", config.ListingOrigin())

	config.Listing.Origin = "https://mirror.example.com/"
	assert.Equal(t, "https://mirror.example.com", config.ListingOrigin())
}

func ExampleConfig_MergeCommandLineFlags() {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"user":             "Silent",
		"output":           "crawl",
		"max-pages":        10,
		"navigate-timeout": 45 * time.Second,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Println("invalid:", err)
		return
	}

	fmt.Println(cfg.Listing.TargetUser)
	fmt.Println(cfg.OutputPath())
	fmt.Println(cfg.CheckpointPath())
	fmt.Println(cfg.Crawl.MaxPages, cfg.Crawl.NavigateTimeout)
	// Output:
	// Silent
	// crawl/scraped_posts.json
	// crawl/scraping_checkpoint.json
	// 10 45s
}
