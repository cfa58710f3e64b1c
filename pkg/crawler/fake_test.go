package crawler

import (
	"context"
	"fmt"
	"time"

	crawlerrors "postcrawler/pkg/errors"
	"postcrawler/pkg/listing"
	"postcrawler/pkg/models"
	"postcrawler/pkg/render"
)

// fakeSite serves canned listing pages keyed by URL
type fakeSite struct {
	urls        *listing.Builder
	pages       map[string][]models.Record
	notReady    map[string]bool
	navFail     map[string]error
	hang        map[string]bool
	navigations []string
}

func newFakeSite(urls *listing.Builder) *fakeSite {
	return &fakeSite{
		urls:     urls,
		pages:    make(map[string][]models.Record),
		notReady: make(map[string]bool),
		navFail:  make(map[string]error),
		hang:     make(map[string]bool),
	}
}

// serve registers the records shown for cursor; nil is the first page
func (s *fakeSite) serve(cursor *string, records ...models.Record) {
	s.pages[s.urls.Build(cursor)] = records
}

func (s *fakeSite) Navigate(ctx context.Context, url string) (*render.Handle, error) {
	s.navigations = append(s.navigations, url)
	if err := ctx.Err(); err != nil {
		return nil, crawlerrors.Navigation(url, err)
	}
	if s.hang[url] {
		// A page load that never settles, like a stalled browser.
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err, ok := s.navFail[url]; ok {
		return nil, crawlerrors.Navigation(url, err)
	}
	return &render.Handle{RequestedURL: url, LandedURL: url}, nil
}

func (s *fakeSite) AwaitReady(ctx context.Context, h *render.Handle, timeout time.Duration) error {
	if s.notReady[h.RequestedURL] {
		return crawlerrors.ContentNotReady(h.RequestedURL, context.DeadlineExceeded)
	}
	return nil
}

func (s *fakeSite) ExtractRecords(ctx context.Context, h *render.Handle) ([]models.Record, error) {
	return s.pages[h.RequestedURL], nil
}

// post builds a record dated at the given Unix time
func post(id int, unix int64) models.Record {
	date := time.Unix(unix, 0).UTC().Format(time.RFC3339)
	return models.Record{
		Title:  models.Str(fmt.Sprintf("Post %d", id)),
		URL:    models.Str(fmt.Sprintf("https://forum.example.com/posts/%d/", id)),
		Author: models.Str("Silent"),
		Date:   &date,
	}
}

func cursor(unix int64) *string {
	s := listing.CursorFrom(time.Unix(unix, 0))
	return &s
}

// recordingReporter captures progress callbacks
type recordingReporter struct {
	started   []int
	committed []int
}

func (r *recordingReporter) PageStarted(page int, url string) {
	r.started = append(r.started, page)
}

func (r *recordingReporter) PageCommitted(page, records, total int, last models.Record) {
	r.committed = append(r.committed, total)
}

func timeOf(unix int64) time.Time {
	return time.Unix(unix, 0)
}
