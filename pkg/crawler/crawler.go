package crawler

import (
	"context"
	"fmt"
	"time"

	"postcrawler/pkg/checkpoint"
	"postcrawler/pkg/config"
	crawlerrors "postcrawler/pkg/errors"
	"postcrawler/pkg/listing"
	"postcrawler/pkg/logger"
	"postcrawler/pkg/models"
	"postcrawler/pkg/output"
	"postcrawler/pkg/ratelimit"
	"postcrawler/pkg/render"
)

const (
	defaultReadyTimeout    = 30 * time.Second
	defaultNavigateTimeout = 30 * time.Second
)

// Options tune a Crawler. Zero values are usable.
type Options struct {
	ReadyTimeout    time.Duration
	NavigateTimeout time.Duration
	// MaxPages pauses the crawl after this many committed pages; 0 means no limit
	MaxPages int
	Limiter  ratelimit.Limiter
	Reporter Reporter
	Observer Observer
	Logger   logger.Logger
}

// Result describes how a run ended
type Result struct {
	State          State
	Pages          int // pages committed by this run
	NewRecords     int // records committed by this run
	Records        int // records committed across all runs
	Resumed        bool
	OutputPath     string
	CheckpointPath string
}

// Crawler drives the fetch, extract, write, checkpoint loop
type Crawler struct {
	renderer        Renderer
	urls            *listing.Builder
	checkpoints     *checkpoint.Manager
	output          *output.Writer
	limiter         ratelimit.Limiter
	readyTimeout    time.Duration
	navigateTimeout time.Duration
	maxPages        int
	reporter        Reporter
	observer        Observer
	logger          logger.Logger
}

// runState is the in-memory state of one invocation
type runState struct {
	cp      *checkpoint.Checkpoint
	url     string
	handle  *render.Handle
	page    []models.Record
	next    string
	pages   int
	written int
	resumed bool
	started time.Time
}

// New creates a crawler from its collaborators
func New(r Renderer, urls *listing.Builder, checkpoints *checkpoint.Manager, out *output.Writer, opts Options) *Crawler {
	c := &Crawler{
		renderer:        r,
		urls:            urls,
		checkpoints:     checkpoints,
		output:          out,
		limiter:         opts.Limiter,
		readyTimeout:    opts.ReadyTimeout,
		navigateTimeout: opts.NavigateTimeout,
		maxPages:        opts.MaxPages,
		reporter:        opts.Reporter,
		observer:        opts.Observer,
		logger:          opts.Logger,
	}
	if c.limiter == nil {
		c.limiter = ratelimit.Unlimited{}
	}
	if c.readyTimeout <= 0 {
		c.readyTimeout = defaultReadyTimeout
	}
	if c.navigateTimeout <= 0 {
		c.navigateTimeout = defaultNavigateTimeout
	}
	if c.logger == nil {
		c.logger = logger.GetLogger()
	}
	c.logger = c.logger.WithField("component", "crawler")
	return c
}

// NewFromConfig wires a crawler from configuration. opts supplies the
// reporter, observer and logger; the remaining fields come from cfg.
func NewFromConfig(cfg *config.Config, r Renderer, opts Options) (*Crawler, error) {
	urls := listing.NewBuilder(cfg.Listing.BaseURL, cfg.Listing.TargetUser)
	if err := urls.Validate(); err != nil {
		return nil, err
	}

	opts.ReadyTimeout = cfg.Crawl.ReadyTimeout
	opts.NavigateTimeout = cfg.Crawl.NavigateTimeout
	opts.MaxPages = cfg.Crawl.MaxPages
	opts.Limiter = ratelimit.PerMinute(cfg.Crawl.PagesPerMinute)

	return New(r, urls,
		checkpoint.NewManager(cfg.CheckpointPath()),
		output.NewWriter(cfg.OutputPath()),
		opts,
	), nil
}

// Run crawls until the listing is exhausted, the page budget is spent or an
// error occurs. On error the checkpoint is left in place and the returned
// Result has State StateFailed.
func (c *Crawler) Run(ctx context.Context) (*Result, error) {
	run := &runState{started: time.Now()}
	state := StateInit

	for {
		var (
			next State
			err  error
		)

		switch state {
		case StateInit:
			next, err = c.init(run)
		case StateFetching:
			next, err = c.fetch(ctx, run)
		case StateExtracting:
			next, err = c.extract(ctx, run)
		case StateWriting:
			next, err = c.write(run)
		case StateCheckpointing:
			next, err = c.commit(run)
		case StateDone:
			if err := c.finish(run); err != nil {
				c.transition(state, StateFailed)
				return c.fail(run, err)
			}
			c.logMetrics(run, StateDone)
			return c.result(run, StateDone), nil
		case StatePaused:
			if err := c.output.Close(); err != nil {
				c.transition(state, StateFailed)
				return c.fail(run, err)
			}
			c.logger.InfoWithFields("Page budget reached, pausing", map[string]interface{}{
				"pages":  run.pages,
				"cursor": run.cp.Cursor(),
			})
			c.logMetrics(run, StatePaused)
			return c.result(run, StatePaused), nil
		default:
			return c.fail(run, fmt.Errorf("unknown crawl state %q", state))
		}

		if err != nil {
			c.transition(state, StateFailed)
			return c.fail(run, err)
		}
		c.transition(state, next)
		state = next
	}
}

func (c *Crawler) transition(from, to State) {
	c.logger.DebugWithFields("State transition", map[string]interface{}{
		"from": string(from),
		"to":   string(to),
	})
	if c.observer != nil {
		c.observer(from, to)
	}
}

func (c *Crawler) init(run *runState) (State, error) {
	cp, err := c.checkpoints.Load()
	if err != nil {
		return StateFailed, err
	}

	fresh := cp == nil
	if fresh {
		cp = checkpoint.New()
	} else if cp.IsFirstPost != (cp.PostCounter == 0) {
		c.logger.WarnWithFields("Checkpoint stream flag disagrees with its record count, trusting the count", map[string]interface{}{
			"is_first_post": cp.IsFirstPost,
			"post_counter":  cp.PostCounter,
		})
		cp.IsFirstPost = cp.PostCounter == 0
	}
	run.cp = cp
	run.resumed = !fresh

	if err := c.output.OpenIfNeeded(fresh, cp.PostCounter); err != nil {
		return StateFailed, err
	}

	fields := map[string]interface{}{
		"output":     c.output.Path(),
		"checkpoint": c.checkpoints.Path(),
	}
	if run.resumed {
		fields["cursor"] = cp.Cursor()
		fields["record_count"] = cp.PostCounter
		c.logger.InfoWithFields("Resuming crawl", fields)
	} else {
		c.logger.InfoWithFields("Starting crawl", fields)
	}
	return StateFetching, nil
}

func (c *Crawler) fetch(ctx context.Context, run *runState) (State, error) {
	run.url = c.urls.Build(run.cp.OlderThan)
	if c.reporter != nil {
		c.reporter.PageStarted(run.pages+1, run.url)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return StateFailed, crawlerrors.Navigation(run.url, err)
	}

	navCtx, cancel := context.WithTimeout(ctx, c.navigateTimeout)
	h, err := c.renderer.Navigate(navCtx, run.url)
	cancel()
	if err != nil {
		if crawlerrors.TypeOf(err) == crawlerrors.ErrorTypeUnknown {
			err = crawlerrors.Navigation(run.url, err)
		}
		return StateFailed, err
	}
	if err := c.renderer.AwaitReady(ctx, h, c.readyTimeout); err != nil {
		return StateFailed, err
	}

	run.handle = h
	return StateExtracting, nil
}

func (c *Crawler) extract(ctx context.Context, run *runState) (State, error) {
	records, err := c.renderer.ExtractRecords(ctx, run.handle)
	if err != nil {
		return StateFailed, err
	}
	if len(records) == 0 {
		c.logger.InfoWithFields("Empty page, listing exhausted", map[string]interface{}{
			"url": run.url,
		})
		return StateDone, nil
	}

	next, err := c.nextCursor(run.cp, records[len(records)-1])
	if err != nil {
		return StateFailed, err
	}

	run.page = records
	run.next = next
	return StateWriting, nil
}

// nextCursor derives the cursor of the following page from the oldest record
func (c *Crawler) nextCursor(cp *checkpoint.Checkpoint, oldest models.Record) (string, error) {
	ts, err := oldest.Timestamp()
	if err != nil {
		date := ""
		if oldest.Date != nil {
			date = *oldest.Date
		}
		return "", crawlerrors.MalformedTimestamp(date, err)
	}
	next := listing.CursorFrom(ts)

	if cp.OlderThan != nil {
		current, err := listing.ParseCursor(*cp.OlderThan)
		if err != nil {
			return "", crawlerrors.New(crawlerrors.ErrorTypeStalledCursor, "reading current cursor", err)
		}
		if ts.Unix() >= current {
			return "", crawlerrors.StalledCursor(*cp.OlderThan, next)
		}
	}
	return next, nil
}

func (c *Crawler) write(run *runState) (State, error) {
	first := !run.cp.StreamStarted() && c.output.Records() == 0
	for i, rec := range run.page {
		if err := c.output.Append(rec, first && i == 0); err != nil {
			return StateFailed, err
		}
		date := ""
		if rec.Date != nil {
			date = *rec.Date
		}
		logger.LogRecord(run.cp.PostCounter+i+1, rec.String(), date)
	}

	if err := c.output.Sync(); err != nil {
		return StateFailed, err
	}
	return StateCheckpointing, nil
}

func (c *Crawler) commit(run *runState) (State, error) {
	run.cp.Advance(len(run.page), run.next)
	if err := c.checkpoints.Save(run.cp); err != nil {
		return StateFailed, err
	}

	run.pages++
	run.written += len(run.page)
	logger.LogPage(run.pages, len(run.page), run.next, run.cp.PostCounter)
	if c.reporter != nil {
		c.reporter.PageCommitted(run.pages, len(run.page), run.cp.PostCounter, run.page[len(run.page)-1])
	}

	run.page = nil
	run.handle = nil
	if c.maxPages > 0 && run.pages >= c.maxPages {
		return StatePaused, nil
	}
	return StateFetching, nil
}

func (c *Crawler) finish(run *runState) error {
	if err := c.output.Finalize(); err != nil {
		return err
	}
	if err := c.checkpoints.Delete(); err != nil {
		return err
	}

	c.logger.InfoWithFields("Crawl complete", map[string]interface{}{
		"records": run.cp.PostCounter,
		"pages":   run.pages,
		"output":  c.output.Path(),
	})
	return nil
}

func (c *Crawler) logMetrics(run *runState, state State) {
	elapsed := time.Since(run.started)
	perSecond := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		perSecond = float64(run.written) / secs
	}
	logger.LogMetrics("crawl", map[string]interface{}{
		"state":           string(state),
		"pages":           run.pages,
		"new_records":     run.written,
		"elapsed":         elapsed.String(),
		"records_per_sec": perSecond,
	})
}

func (c *Crawler) fail(run *runState, err error) (*Result, error) {
	if closeErr := c.output.Close(); closeErr != nil {
		c.logger.WithError(closeErr).Warn("Failed to close output")
	}

	fields := map[string]interface{}{
		"error_type": string(crawlerrors.TypeOf(err)),
		"checkpoint": c.checkpoints.Path(),
	}
	if run.cp != nil {
		fields["cursor"] = run.cp.Cursor()
		fields["record_count"] = run.cp.PostCounter
	}
	c.logger.WithError(err).ErrorWithFields("Crawl failed, checkpoint preserved", fields)
	c.logMetrics(run, StateFailed)

	return c.result(run, StateFailed), err
}

func (c *Crawler) result(run *runState, state State) *Result {
	res := &Result{
		State:          state,
		Pages:          run.pages,
		NewRecords:     run.written,
		Resumed:        run.resumed,
		OutputPath:     c.output.Path(),
		CheckpointPath: c.checkpoints.Path(),
	}
	if run.cp != nil {
		res.Records = run.cp.PostCounter
	}
	return res
}
