// Package logger provides structured logging for postcrawler.
//
// It wraps zerolog behind the Logger interface so that the crawler and the
// CLI never depend on zerolog directly. Console output is colored and goes
// to stderr; when a log file is configured, entries are written to both.
//
// Basic usage:
//
//	err := logger.Initialize(&config.LoggingConfig{Level: "info"})
//	logger.GetLogger().WithField("run_id", runID).Info("Crawl started")
//
// The crawl helpers (LogPage, LogNavigation, LogCheckpoint, LogRecord) use
// the global logger and attach consistent field names, so a run can be
// followed by filtering on "page" or "cursor".
//
// Tests that need to assert on log output use NewTestLogger, which captures
// every message in memory.
package logger
