package crawler

import (
	"context"
	"time"

	"postcrawler/pkg/models"
	"postcrawler/pkg/render"
)

// Renderer loads listing pages and reads records from them
type Renderer interface {
	Navigate(ctx context.Context, url string) (*render.Handle, error)
	AwaitReady(ctx context.Context, h *render.Handle, timeout time.Duration) error
	ExtractRecords(ctx context.Context, h *render.Handle) ([]models.Record, error)
}

// Reporter receives progress updates for display
type Reporter interface {
	PageStarted(page int, url string)
	PageCommitted(page, records, total int, last models.Record)
}

// Observer is called on every state transition
type Observer func(from, to State)
