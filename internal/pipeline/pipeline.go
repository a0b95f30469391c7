package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/quake-risk-service/internal/domain"
	"github.com/couchcryptid/quake-risk-service/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// EventSource fetches raw feed events with origin times in [start, end].
type EventSource interface {
	FetchEvents(ctx context.Context, start, end time.Time) ([]domain.Event, error)
}

// AssetSource loads the client portfolio.
type AssetSource interface {
	LoadAssets(ctx context.Context) ([]domain.Asset, error)
}

// Publisher delivers a finished report downstream.
type Publisher interface {
	Publish(ctx context.Context, report domain.Report) error
}

// Options tune a Refresher.
type Options struct {
	TopN            int
	FeedWindow      time.Duration // range requested from the feed
	RecentWindow    time.Duration // range of events analysed
	ExcludedSources []string
	Interval        time.Duration
	Workers         int
	Clock           clockwork.Clock // nil means the domain package clock
}

// Refresher periodically rebuilds the risk report from fresh feed and
// portfolio data and fans it out to subscribers.
type Refresher struct {
	events    EventSource
	assets    AssetSource
	publisher Publisher
	opts      Options
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics

	latest  atomic.Pointer[domain.Report]
	trigger chan struct{}

	mu          sync.Mutex
	subscribers []chan domain.Report
}

// New creates a Refresher. publisher may be nil to skip publishing.
func New(events EventSource, assets AssetSource, publisher Publisher, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Refresher {
	c := opts.Clock
	if c == nil {
		c = domain.Clock()
	}
	return &Refresher{
		events:    events,
		assets:    assets,
		publisher: publisher,
		opts:      opts,
		clock:     c,
		logger:    logger,
		metrics:   metrics,
		trigger:   make(chan struct{}, 1),
	}
}

// CheckReadiness returns nil once a report has been produced.
func (r *Refresher) CheckReadiness(_ context.Context) error {
	if r.latest.Load() == nil {
		return errors.New("no report has been produced yet")
	}
	return nil
}

// Latest returns the most recent report, if any.
func (r *Refresher) Latest() (domain.Report, bool) {
	p := r.latest.Load()
	if p == nil {
		return domain.Report{}, false
	}
	return *p, true
}

// Subscribe returns a channel that receives every new report. Slow
// subscribers only ever see the newest report; stale ones are dropped.
func (r *Refresher) Subscribe() <-chan domain.Report {
	ch := make(chan domain.Report, 1)
	r.mu.Lock()
	r.subscribers = append(r.subscribers, ch)
	r.mu.Unlock()
	return ch
}

// Trigger requests an immediate refresh from a running Run loop.
func (r *Refresher) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run refreshes immediately and then every Interval until the context is
// cancelled. Failed refreshes are retried with exponential backoff; the
// previous report stays current meanwhile.
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.Info("refresh loop started", "interval", r.opts.Interval, "top_n", r.opts.TopN)
	r.metrics.PipelineRunning.Set(1)
	defer r.metrics.PipelineRunning.Set(0)

	backoff := initialBackoff
	for {
		if _, err := r.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.logger.Error("refresh failed", "error", err, "retry_in", backoff)
			if !r.wait(ctx, backoff) {
				return nil
			}
			backoff = retry.NextBackoff(backoff, maxBackoff)
			continue
		}

		backoff = initialBackoff
		if !r.wait(ctx, r.opts.Interval) {
			return nil
		}
	}
}

// Refresh runs one fetch-analyse-publish cycle and returns the new report.
func (r *Refresher) Refresh(ctx context.Context) (domain.Report, error) {
	start := time.Now()
	report, err := r.build(ctx)
	r.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		r.metrics.Refreshes.WithLabelValues("error").Inc()
		return domain.Report{}, err
	}

	r.latest.Store(&report)
	r.observe(report)
	r.broadcast(report)
	r.publish(ctx, report)

	r.metrics.Refreshes.WithLabelValues("success").Inc()
	r.logger.Info("report refreshed",
		"report_id", report.ID,
		"events_fetched", report.EventsFetched,
		"events_analyzed", report.EventsAnalyzed,
		"assets", len(report.Assets),
	)
	return report, nil
}

func (r *Refresher) build(ctx context.Context) (domain.Report, error) {
	now := r.clock.Now()

	events, err := r.events.FetchEvents(ctx, now.Add(-r.opts.FeedWindow), now)
	if err != nil {
		return domain.Report{}, fmt.Errorf("fetch events: %w", err)
	}
	assets, err := r.assets.LoadAssets(ctx)
	if err != nil {
		return domain.Report{}, fmt.Errorf("load assets: %w", err)
	}

	filter := domain.EarthquakeFilter(now, r.opts.RecentWindow, r.opts.ExcludedSources)
	selected := domain.SelectEvents(events, filter)

	return domain.Report{
		ID:            uuid.NewString(),
		GeneratedAt:   now,
		WindowStart:   filter.Since,
		WindowEnd:     now,
		EventsFetched: len(events),
		Analysis:      domain.AnalyzeParallel(selected, assets, r.opts.TopN, r.opts.Workers),
	}, nil
}

func (r *Refresher) observe(report domain.Report) {
	r.metrics.EventsAnalyzed.Set(float64(report.EventsAnalyzed))
	for tier, n := range report.TierCounts() {
		r.metrics.AssetsByRisk.WithLabelValues(tier.String()).Set(float64(n))
	}
}

func (r *Refresher) broadcast(report domain.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ch := range r.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- report
	}
}

// publish is best-effort: a failed publication is logged and counted but the
// report stays current locally.
func (r *Refresher) publish(ctx context.Context, report domain.Report) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(ctx, report); err != nil {
		r.metrics.PublishErrors.Inc()
		r.logger.Warn("publish report failed", "report_id", report.ID, "error", err)
		return
	}
	r.metrics.ReportsPublished.Inc()
}

// wait sleeps for d on the refresher's clock. Returns false if the context
// was cancelled; a Trigger ends the wait early.
func (r *Refresher) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := r.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-r.trigger:
		return true
	case <-timer.Chan():
		return true
	}
}
