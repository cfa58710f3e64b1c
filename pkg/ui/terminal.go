package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Banner printed at the start of interactive runs
const Banner = `
 ┌─┐┌─┐┌─┐┌┬┐┌─┐┬─┐┌─┐┬ ┬┬  ┌─┐┬─┐
 ├─┘│ │└─┐ │ │  ├┬┘├─┤││││  ├┤ ├┬┘
 ┴  └─┘└─┘ ┴ └─┘┴└─┴ ┴└┴┘┴─┘└─┘┴└─
`

var (
	cyan    = lipgloss.Color("#00D7FF")
	yellow  = lipgloss.Color("#FFD700")
	red     = lipgloss.Color("#FF5F5F")
	green   = lipgloss.Color("#5FFF87")
	magenta = lipgloss.Color("#FF5FD7")
	grey    = lipgloss.Color("#8A8A8A")

	labelStyle     = lipgloss.NewStyle().Foreground(cyan).Bold(true)
	valueStyle     = lipgloss.NewStyle().Foreground(yellow)
	errorStyle     = lipgloss.NewStyle().Foreground(red).Bold(true)
	successStyle   = lipgloss.NewStyle().Foreground(green).Bold(true)
	highlightStyle = lipgloss.NewStyle().Foreground(magenta)
	dimStyle       = lipgloss.NewStyle().Foreground(grey)
)

// Color helpers for inline use
var (
	Cyan    = render(lipgloss.NewStyle().Foreground(cyan))
	Yellow  = render(valueStyle)
	Red     = render(lipgloss.NewStyle().Foreground(red))
	Green   = render(lipgloss.NewStyle().Foreground(green))
	Magenta = render(highlightStyle)
	Dim     = render(dimStyle)
)

func render(style lipgloss.Style) func(string) string {
	return func(text string) string {
		return style.Render(text)
	}
}

var (
	modeMu    sync.RWMutex
	quietMode bool
	out       io.Writer = os.Stdout
)

// SetQuietMode suppresses everything but errors
func SetQuietMode(quiet bool) {
	modeMu.Lock()
	defer modeMu.Unlock()
	quietMode = quiet
}

// IsQuietMode reports whether quiet mode is on
func IsQuietMode() bool {
	modeMu.RLock()
	defer modeMu.RUnlock()
	return quietMode
}

// SetOutput redirects terminal output. A nil writer restores stdout.
func SetOutput(w io.Writer) {
	modeMu.Lock()
	defer modeMu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	out = w
}

func writer() io.Writer {
	modeMu.RLock()
	defer modeMu.RUnlock()
	return out
}

func printLine(s string) {
	if IsQuietMode() {
		return
	}
	fmt.Fprintln(writer(), s)
}

// PrintLogo prints the banner
func PrintLogo() {
	printLine(labelStyle.Render(Banner))
}

// PrintError prints an error message. Errors are shown even in quiet mode.
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	fmt.Fprintln(os.Stderr, errorStyle.Render(msg))
}

// PrintSuccess prints a success message
func PrintSuccess(msg string) {
	printLine(successStyle.Render(msg))
}

// PrintInfo prints a label and value
func PrintInfo(label string, value string) {
	printLine(fmt.Sprintf("%s: %s", labelStyle.Render(label), valueStyle.Render(value)))
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	printLine(valueStyle.Render(msg))
}

// PrintHighlight prints a highlighted message
func PrintHighlight(msg string) {
	printLine(highlightStyle.Render(msg))
}
