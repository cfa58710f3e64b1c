package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"postcrawler/pkg/config"
	crawlerrors "postcrawler/pkg/errors"
	"postcrawler/pkg/extract"
	"postcrawler/pkg/logger"
	"postcrawler/pkg/models"
)

// Handle identifies a loaded page
type Handle struct {
	RequestedURL string
	LandedURL    string
	page         *rod.Page
}

// Options configure a Browser
type Options struct {
	Browser    config.BrowserConfig
	Selectors  config.SelectorConfig
	Origin     string
	IdleWindow time.Duration
	// Cookies is a Cookie header value injected before the first page load
	Cookies string
}

// Browser renders pages in a Chromium instance driven by go-rod
type Browser struct {
	opts      Options
	launcher  *launcher.Launcher
	browser   *rod.Browser
	page      *rod.Page
	extractor *extract.Extractor
	logger    logger.Logger
}

// Launch starts Chromium and opens the tab used for the crawl
func Launch(ctx context.Context, opts Options) (*Browser, error) {
	extractor, err := extract.New(opts.Selectors, opts.Origin)
	if err != nil {
		return nil, err
	}

	b := &Browser{
		opts:      opts,
		extractor: extractor,
		logger:    logger.GetLogger().WithField("component", "renderer"),
	}

	b.launcher = launcher.New().Headless(opts.Browser.Headless)
	if opts.Browser.ExecutablePath != "" {
		b.launcher = b.launcher.Bin(opts.Browser.ExecutablePath)
	}

	controlURL, err := b.launcher.Context(ctx).Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b.browser = rod.New().Context(ctx).ControlURL(controlURL)
	if err := b.browser.Connect(); err != nil {
		b.launcher.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	if err := b.openPage(); err != nil {
		b.Close()
		return nil, err
	}

	logger.LogComponentStart("renderer", map[string]interface{}{
		"headless":   opts.Browser.Headless,
		"executable": opts.Browser.ExecutablePath,
		"viewport":   fmt.Sprintf("%dx%d", opts.Browser.Viewport.Width, opts.Browser.Viewport.Height),
	})
	return b, nil
}

func (b *Browser) openPage() error {
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	b.page = page

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             b.opts.Browser.Viewport.Width,
		Height:            b.opts.Browser.Viewport.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return fmt.Errorf("failed to set viewport: %w", err)
	}

	if ua := b.opts.Browser.UserAgent; ua != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
			return fmt.Errorf("failed to set user agent: %w", err)
		}
	}

	if b.opts.Cookies != "" {
		params, err := cookieParams(b.opts.Cookies, b.opts.Origin)
		if err != nil {
			return err
		}
		if err := page.SetCookies(params); err != nil {
			return fmt.Errorf("failed to set session cookies: %w", err)
		}
		b.logger.DebugWithFields("Session cookies injected", map[string]interface{}{
			"count": len(params),
		})
	}

	return nil
}

// Navigate loads url and waits for network quiescence
func (b *Browser) Navigate(ctx context.Context, url string) (*Handle, error) {
	start := time.Now()
	page := b.page.Context(ctx)

	waitIdle := page.WaitRequestIdle(b.opts.IdleWindow, nil, nil, nil)
	if err := page.Navigate(url); err != nil {
		return nil, crawlerrors.Navigation(url, err)
	}
	waitIdle()

	if err := ctx.Err(); err != nil {
		return nil, crawlerrors.Navigation(url, err)
	}

	landed := url
	if info, err := page.Info(); err == nil {
		landed = info.URL
	}
	logger.LogNavigation(url, landed, time.Since(start))

	return &Handle{RequestedURL: url, LandedURL: landed, page: b.page}, nil
}

// AwaitReady waits until the interstitial is gone and either result rows or
// the empty-results message is present
func (b *Browser) AwaitReady(ctx context.Context, h *Handle, timeout time.Duration) error {
	page := h.page.Context(ctx).Timeout(timeout)
	defer page.CancelTimeout()

	sel := b.opts.Selectors
	if sel.Interstitial != "" {
		err := page.Wait(rod.Eval(`(sel) => !document.querySelector(sel)`, sel.Interstitial))
		if err != nil {
			return b.readyError(ctx, h, err)
		}
	}

	markers := []string{sel.Row}
	if sel.EmptyResults != "" {
		markers = append(markers, sel.EmptyResults)
	}
	if _, err := page.Element(strings.Join(markers, ", ")); err != nil {
		return b.readyError(ctx, h, err)
	}
	return nil
}

func (b *Browser) readyError(ctx context.Context, h *Handle, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return crawlerrors.ContentNotReady(h.RequestedURL, err)
	}
	return crawlerrors.New(crawlerrors.ErrorTypeContentNotReady, "waiting for listing", err)
}

// ExtractRecords reads the rendered DOM of h
func (b *Browser) ExtractRecords(ctx context.Context, h *Handle) ([]models.Record, error) {
	html, err := h.page.Context(ctx).HTML()
	if err != nil {
		return nil, crawlerrors.New(crawlerrors.ErrorTypeExtraction, "reading rendered page", err)
	}
	return b.extractor.FromHTML(html)
}

// Close shuts down the tab and the browser process
func (b *Browser) Close() error {
	if b.browser == nil && b.launcher == nil {
		return nil
	}

	var errs []error
	if b.page != nil {
		if err := b.page.Close(); err != nil {
			errs = append(errs, err)
		}
		b.page = nil
	}
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			errs = append(errs, err)
		}
		b.browser = nil
	}
	if b.launcher != nil {
		b.launcher.Cleanup()
		b.launcher = nil
	}
	err := errors.Join(errs...)
	reason := "closed"
	if err != nil {
		reason = err.Error()
	}
	logger.LogComponentStop("renderer", reason)
	return err
}
