package models

import (
	"fmt"
	"strings"
	"time"
)

// Record is a single post extracted from a listing page. Every field is
// nullable; a nil field is written as JSON null.
type Record struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	URL        *string `json:"url"`
	Author     *string `json:"author"`
	PostNumber *string `json:"postNumber"`
	Date       *string `json:"date"`
	Forum      *string `json:"forum"`
}

// dateLayouts are tried in order when resolving a record's date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
}

// Timestamp resolves the record's date to an absolute instant.
func (r Record) Timestamp() (time.Time, error) {
	if r.Date == nil || strings.TrimSpace(*r.Date) == "" {
		return time.Time{}, fmt.Errorf("record has no date")
	}
	raw := strings.TrimSpace(*r.Date)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", raw)
}

// String returns a short human readable label for logs.
func (r Record) String() string {
	switch {
	case r.Title != nil:
		return *r.Title
	case r.URL != nil:
		return *r.URL
	default:
		return "<untitled>"
	}
}

// Str returns a pointer to s, or nil when s is empty.
func Str(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
