package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"postcrawler/pkg/auth"
	"postcrawler/pkg/config"
	"postcrawler/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage forum sessions",
	Long: `Manage stored forum sessions used for members-only listings.

Sessions are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (POSTCRAWLER_COOKIES)

Never share your session cookies or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Store a session's cookies securely",
	Long: `Store the Cookie header of a logged-in browser session in the system
keychain or an encrypted file.

You will be prompted for:
  - A name for the session (if not provided)
  - The Cookie header value (hidden as you type)
  - User Agent (optional, press Enter to keep the configured one)`,
	Example: `  # Interactive login
  postcrawler auth login

  # Login with a session name
  postcrawler auth login main`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout <name>",
	Short: "Remove a stored session",
	Args:  cobra.ExactArgs(1),
	Run:   runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	Long:  `List stored sessions with cookie values masked.`,
	Run:   runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	origin := config.DefaultConfig().ListingOrigin()
	if cfg, err := loadConfig(nil); err == nil {
		origin = cfg.ListingOrigin()
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	auth.WriteCookieGuide(os.Stdout, origin)
	fmt.Println()

	if name == "" {
		fmt.Print("Session name: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			ui.PrintError("Failed to read session name", err.Error())
			os.Exit(1)
		}
		name = strings.TrimSpace(input)
	}
	if name == "" {
		ui.PrintError("Session name is required")
		os.Exit(1)
	}

	if existing, _ := manager.Retrieve(name); existing != nil {
		fmt.Printf("\nSession '%s' already exists. Replace it? (y/N): ", name)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Print("\nCookie header value (hidden): ")
	cookies, err := readPassword(reader)
	if err != nil {
		ui.PrintError("Failed to read cookies", err.Error())
		os.Exit(1)
	}

	fmt.Print("User Agent (press Enter to keep the configured one): ")
	userAgent, _ := reader.ReadString('\n')

	account := &auth.Account{
		Name:      name,
		Cookies:   strings.TrimSpace(cookies),
		UserAgent: strings.TrimSpace(userAgent),
	}
	if err := manager.Store(account); err != nil {
		ui.PrintError("Failed to store session", err.Error())
		os.Exit(1)
	}

	sanitized := auth.SanitizeAccount(account)
	ui.PrintSuccess("Session saved: " + name)
	ui.PrintInfo("Cookies", sanitized.Cookies)
	if auth.IsKeyringAvailable() {
		ui.PrintInfo("Stored in", "system keychain")
	} else {
		ui.PrintInfo("Stored in", "encrypted file")
	}
	fmt.Printf("\nUse it with:\n  postcrawler crawl --account %s\n", name)
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	if err := manager.Delete(args[0]); err != nil {
		ui.PrintError("Failed to remove session", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Session removed: " + args[0])
}

func runList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	accounts, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list sessions", err.Error())
		os.Exit(1)
	}

	if len(accounts) == 0 {
		ui.PrintInfo("No stored sessions", "Use 'postcrawler auth login' to add one")
		return
	}

	ui.PrintHighlight("Stored Sessions")
	fmt.Println()

	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Printf("%d. %s\n", i+1, sanitized.Name)
		fmt.Printf("   Cookies: %s\n", sanitized.Cookies)
		if sanitized.UserAgent != "" {
			fmt.Printf("   User Agent: %s\n", sanitized.UserAgent)
		}
		fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
}

// readPassword reads a secret from stdin without echoing when stdin is a
// terminal
func readPassword(reader *bufio.Reader) (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return string(secret), nil
		}
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
