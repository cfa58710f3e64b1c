package extract

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"postcrawler/pkg/config"
	crawlerrors "postcrawler/pkg/errors"
	"postcrawler/pkg/models"
)

// Extractor maps rendered listing markup to records
type Extractor struct {
	sel    config.SelectorConfig
	origin *url.URL
}

// New creates an extractor. origin is used to resolve relative post links.
func New(sel config.SelectorConfig, origin string) (*Extractor, error) {
	if sel.Row == "" {
		return nil, fmt.Errorf("row selector is required")
	}
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	return &Extractor{sel: sel, origin: u}, nil
}

// FromReader parses an HTML document and extracts its records
func (e *Extractor) FromReader(r io.Reader) ([]models.Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, crawlerrors.New(crawlerrors.ErrorTypeExtraction, "parsing listing HTML", err)
	}
	return e.FromDocument(doc), nil
}

// FromHTML is FromReader for an HTML string
func (e *Extractor) FromHTML(html string) ([]models.Record, error) {
	return e.FromReader(strings.NewReader(html))
}

// FromDocument extracts one record per result row, in document order
func (e *Extractor) FromDocument(doc *goquery.Document) []models.Record {
	rows := doc.Find(e.sel.Row)
	records := make([]models.Record, 0, rows.Length())
	rows.Each(func(_ int, row *goquery.Selection) {
		records = append(records, e.record(row))
	})
	return records
}

func (e *Extractor) record(row *goquery.Selection) models.Record {
	return models.Record{
		Title:      text(row, e.sel.Title),
		Content:    text(row, e.sel.Snippet),
		URL:        e.link(row),
		Author:     text(row, e.sel.Author),
		PostNumber: text(row, e.sel.PostNumber),
		Date:       attr(row, e.sel.Time, "datetime"),
		Forum:      text(row, e.sel.Forum),
	}
}

// link resolves the title link against the origin. Absolute links are kept.
func (e *Extractor) link(row *goquery.Selection) *string {
	href := attr(row, e.sel.TitleLink, "href")
	if href == nil {
		return nil
	}
	ref, err := url.Parse(*href)
	if err != nil {
		return href
	}
	resolved := e.origin.ResolveReference(ref).String()
	return &resolved
}

// text returns the trimmed text of the first match, or nil when nothing
// matches. A matching but empty element yields an empty string.
func text(row *goquery.Selection, selector string) *string {
	if selector == "" {
		return nil
	}
	match := row.Find(selector).First()
	if match.Length() == 0 {
		return nil
	}
	s := strings.TrimSpace(match.Text())
	return &s
}

// attr returns a non-empty attribute of the first match, or nil
func attr(row *goquery.Selection, selector, name string) *string {
	if selector == "" {
		return nil
	}
	v, ok := row.Find(selector).First().Attr(name)
	if !ok {
		return nil
	}
	return models.Str(strings.TrimSpace(v))
}
