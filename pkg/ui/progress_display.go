package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"

	"postcrawler/pkg/models"
)

const titleWidth = 48

// ProgressDisplay shows a single updating line with crawl progress
type ProgressDisplay struct {
	mu        sync.Mutex
	target    string
	pages     int
	records   int
	startRecs int
	lastTitle string
	startTime time.Time
	isDebug   bool
}

// NewProgressDisplay creates a progress display. startRecords is the count
// already committed by earlier runs.
func NewProgressDisplay(target string, startRecords int, debug bool) *ProgressDisplay {
	return &ProgressDisplay{
		target:    target,
		records:   startRecords,
		startRecs: startRecords,
		startTime: time.Now(),
		isDebug:   debug,
	}
}

// PageStarted is called before a page is loaded
func (p *ProgressDisplay) PageStarted(page int, url string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isDebug {
		printLine(fmt.Sprintf("%s Loading page %d: %s", Magenta("→"), page, Dim(url)))
	}
}

// PageCommitted is called after a page is written and checkpointed
func (p *ProgressDisplay) PageCommitted(page, records, total int, last models.Record) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pages = page
	p.records = total
	p.lastTitle = last.String()

	if p.isDebug {
		printLine(fmt.Sprintf("%s Page %d • %d records • %d total", Green("✓"), page, records, total))
		return
	}
	p.printProgress()
}

func (p *ProgressDisplay) printProgress() {
	if IsQuietMode() {
		return
	}
	line := p.line()
	fmt.Fprintf(writer(), "\r%s\r%s", strings.Repeat(" ", runewidth.StringWidth(line)+10), line)
}

// line renders the progress line without color
func (p *ProgressDisplay) line() string {
	elapsed := time.Since(p.startTime)
	rate := 0.0
	if m := elapsed.Minutes(); m > 0 {
		rate = float64(p.records-p.startRecs) / m
	}

	line := fmt.Sprintf("%s • page %d • %d records • %.1f/min",
		p.target, p.pages, p.records, rate)
	if p.lastTitle != "" {
		line += " • " + Truncate(p.lastTitle, titleWidth)
	}
	return line
}

// Complete prints the final summary of a finished crawl
func (p *ProgressDisplay) Complete(outputPath string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.startTime)
	printLine("")
	printLine(fmt.Sprintf("%s Saved %d posts by %s to %s",
		Green("✓"), p.records, p.target, outputPath))
	printLine(fmt.Sprintf("  %s %d new in %s", Dim("•"), p.records-p.startRecs, FormatDuration(elapsed)))
}

// Truncate shortens s to at most width terminal cells, adding an ellipsis
func Truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, width, "…")
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
