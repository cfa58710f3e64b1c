package listing

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Builder turns a cursor into the URL of the next listing page
type Builder struct {
	baseURL string
	filter  string
}

// NewBuilder creates a builder for the given search endpoint and member filter
func NewBuilder(baseURL, filter string) *Builder {
	return &Builder{
		baseURL: strings.TrimSpace(baseURL),
		filter:  strings.TrimSpace(filter),
	}
}

// Validate checks that the builder can produce fetchable URLs
func (b *Builder) Validate() error {
	if b.filter == "" {
		return errors.New("listing filter is required")
	}
	u, err := url.Parse(b.baseURL)
	if err != nil {
		return fmt.Errorf("invalid listing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("listing base URL must be http(s), got %q", b.baseURL)
	}
	if u.RawQuery != "" {
		return fmt.Errorf("listing base URL must not carry a query string")
	}
	return nil
}

// Build returns the listing URL for cursor. A nil cursor selects the most
// recent page.
func (b *Builder) Build(cursor *string) string {
	// Brackets stay literal; the forum expects c[users] rather than c%5Busers%5D.
	var sb strings.Builder
	sb.WriteString(b.baseURL)
	sb.WriteString("?q=%2A&c[users]=")
	sb.WriteString(url.QueryEscape(b.filter))
	sb.WriteString("&o=date")
	if cursor != nil {
		sb.WriteString("&c[older_than]=")
		sb.WriteString(url.QueryEscape(*cursor))
	}
	return sb.String()
}

// CursorFrom encodes t as a cursor: Unix seconds, truncated
func CursorFrom(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}

// ParseCursor decodes a cursor back into its Unix seconds value
func ParseCursor(cursor string) (int64, error) {
	v, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cursor %q: %w", cursor, err)
	}
	return v, nil
}
