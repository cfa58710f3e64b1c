package logger

import (
	"time"
)

// LogNavigation logs a page load and where the browser actually landed
func LogNavigation(requested, landed string, duration time.Duration) {
	fields := map[string]interface{}{
		"url":         requested,
		"duration_ms": duration.Milliseconds(),
	}
	if landed != "" && landed != requested {
		fields["landed_url"] = landed
		GetLogger().WarnWithFields("Navigation redirected", fields)
		return
	}
	GetLogger().DebugWithFields("Navigation completed", fields)
}

// LogPage logs a committed listing page
func LogPage(page int, records int, cursor string, total int) {
	GetLogger().InfoWithFields("Page committed", map[string]interface{}{
		"page":         page,
		"page_records": records,
		"cursor":       cursor,
		"total":        total,
	})
}

// LogRecord logs a single record as it is appended to the output
func LogRecord(index int, title, date string) {
	GetLogger().DebugWithFields("Record written", map[string]interface{}{
		"index": index,
		"title": title,
		"date":  date,
	})
}

// LogCheckpoint logs checkpoint lifecycle events
func LogCheckpoint(action, path string, recordCount int) {
	GetLogger().DebugWithFields("Checkpoint "+action, map[string]interface{}{
		"path":         path,
		"record_count": recordCount,
	})
}

// LogComponentStart logs a long-lived component (the browser, a crawl run)
// coming up, with its settings
func LogComponentStart(component string, settings map[string]interface{}) {
	GetLogger().WithField("component", component).InfoWithFields("Component started", settings)
}

// LogComponentStop logs a component shutting down and why
func LogComponentStop(component string, reason string) {
	GetLogger().InfoWithFields("Component stopped", map[string]interface{}{
		"component": component,
		"reason":    reason,
	})
}

// LogMetrics logs throughput figures for an operation
func LogMetrics(operation string, metrics map[string]interface{}) {
	GetLogger().WithFields(map[string]interface{}{
		"operation": operation,
		"type":      "metrics",
	}).InfoWithFields("Run metrics", metrics)
}
