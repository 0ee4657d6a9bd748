package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sm-junior0/ndarehe-sub001/internal/api"
	"github.com/sm-junior0/ndarehe-sub001/internal/events"
	"github.com/sm-junior0/ndarehe-sub001/internal/metrics"
	"github.com/sm-junior0/ndarehe-sub001/internal/models"
	"github.com/sm-junior0/ndarehe-sub001/internal/worker"
)

const (
	DefaultInterval = 10 * time.Second
	DefaultLimit    = 10
)

var (
	// ErrSuperseded is returned by a feed fetch overtaken by a newer one.
	ErrSuperseded = errors.New("dashboard: feed response superseded")
	// ErrPollSkipped is returned by Poll while a manual page change is pending.
	ErrPollSkipped = errors.New("dashboard: poll skipped, manual fetch pending")
)

type Backend interface {
	Dashboard(ctx context.Context) (models.DashboardStats, error)
	Activity(ctx context.Context, page, limit int) (models.Page[models.Activity], error)
}

// Snapshot is a consistent copy of the aggregator state.
type Snapshot struct {
	Stats    models.DashboardStats
	StatsErr error
	Feed     models.Page[models.Activity]
	FeedErr  error
	Page     int
	Failures int
	NextPoll time.Duration
}

// Aggregator holds the dashboard stats and the activity feed. It is the
// only owner of feed fetches: manual navigation cancels an in-flight poll,
// and polls are skipped while a manual fetch is pending.
type Aggregator struct {
	backend  Backend
	limit    int
	interval time.Duration
	retry    worker.RetryPolicy
	logger   *zerolog.Logger
	bus      events.Publisher

	mu       sync.Mutex
	stats    models.DashboardStats
	statsErr error
	feed     models.Page[models.Activity]
	feedErr  error
	page     int
	epoch    uint64
	manual   int
	inflight context.CancelFunc
	failures int
}

type Option func(*Aggregator)

func WithInterval(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.interval = d
		}
	}
}

// WithMaxInterval caps the poll delay reached after repeated failures.
func WithMaxInterval(d time.Duration) Option {
	return func(a *Aggregator) {
		a.retry.MaxDelay = d
	}
}

func WithLimit(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.limit = n
		}
	}
}

func WithLogger(logger *zerolog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func WithPublisher(bus events.Publisher) Option {
	return func(a *Aggregator) {
		a.bus = bus
	}
}

func New(backend Backend, opts ...Option) *Aggregator {
	nop := zerolog.Nop()
	a := &Aggregator{
		backend:  backend,
		limit:    DefaultLimit,
		interval: DefaultInterval,
		logger:   &nop,
		page:     1,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.retry.InitialDelay = 2 * a.interval
	a.retry.BackoffFactor = 2
	if a.retry.MaxDelay <= 0 {
		a.retry.MaxDelay = 12 * a.interval
	}
	return a
}

// Start loads the stats and the first feed page.
func (a *Aggregator) Start(ctx context.Context) error {
	statsErr := a.RefreshStats(ctx)
	feedErr := a.GoToPage(ctx, 1)
	return errors.Join(statsErr, feedErr)
}

func (a *Aggregator) RefreshStats(ctx context.Context) error {
	stats, err := a.backend.Dashboard(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.statsErr = err
		a.logger.Error().Err(err).Msg("failed to load dashboard stats")
		events.Notify(a.bus, events.Notice{Level: events.LevelError, Resource: "dashboard", Message: api.Message(err, "Failed to fetch dashboard data")})
		return err
	}
	a.stats, a.statsErr = stats, nil
	return nil
}

// Run polls the feed until ctx ends. Failures stretch the delay before the
// next poll; a success restores the base interval.
func (a *Aggregator) Run(ctx context.Context) error {
	timer := time.NewTimer(a.NextPoll())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			a.cancelInflight()
			return ctx.Err()
		case <-timer.C:
			if err := a.Poll(ctx); err != nil && !errors.Is(err, ErrPollSkipped) && !errors.Is(err, ErrSuperseded) {
				a.logger.Debug().Err(err).Int("failures", a.Failures()).Msg("activity poll failed")
			}
			timer.Reset(a.NextPoll())
		}
	}
}

// Poll refetches the current feed page once.
func (a *Aggregator) Poll(ctx context.Context) error {
	a.mu.Lock()
	if a.manual > 0 {
		a.mu.Unlock()
		metrics.IncPoll("skipped")
		return ErrPollSkipped
	}
	epoch, fetchCtx, page := a.begin(ctx)
	a.mu.Unlock()

	feed, err := a.backend.Activity(fetchCtx, page, a.limit)

	a.mu.Lock()
	defer a.mu.Unlock()
	if epoch != a.epoch {
		metrics.IncPoll("superseded")
		return ErrSuperseded
	}
	a.end()

	if err != nil {
		a.failures++
		a.feedErr = err
		metrics.IncPoll("error")
		if a.failures == 1 {
			a.logger.Warn().Err(err).Msg("activity feed refresh failed")
			events.Notify(a.bus, events.Notice{Level: events.LevelWarn, Resource: "dashboard", Message: api.Message(err, "Failed to refresh activity feed")})
		}
		return err
	}

	if a.failures > 0 {
		a.logger.Info().Int("failures", a.failures).Msg("activity feed recovered")
		events.Notify(a.bus, events.Notice{Level: events.LevelInfo, Resource: "dashboard", Message: "Activity feed recovered"})
	}
	a.failures = 0
	a.apply(feed)
	metrics.IncPoll("ok")
	return nil
}

// GoToPage loads a feed page on operator request, cancelling any poll in
// flight.
func (a *Aggregator) GoToPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}

	a.mu.Lock()
	a.page = page
	a.manual++
	epoch, fetchCtx, _ := a.begin(ctx)
	a.mu.Unlock()

	feed, err := a.backend.Activity(fetchCtx, page, a.limit)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.manual--
	if epoch != a.epoch {
		return ErrSuperseded
	}
	a.end()

	if err != nil {
		a.feedErr = err
		a.logger.Error().Err(err).Int("page", page).Msg("failed to load activity page")
		events.Notify(a.bus, events.Notice{Level: events.LevelError, Resource: "dashboard", Message: api.Message(err, "Failed to fetch activity")})
		return err
	}
	a.failures = 0
	a.apply(feed)
	return nil
}

func (a *Aggregator) Next(ctx context.Context) error {
	return a.GoToPage(ctx, a.Page()+1)
}

func (a *Aggregator) Prev(ctx context.Context) error {
	return a.GoToPage(ctx, a.Page()-1)
}

func (a *Aggregator) Page() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.page
}

func (a *Aggregator) Failures() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.failures
}

// NextPoll is the delay before the next scheduled poll.
func (a *Aggregator) NextPoll() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.delay()
}

func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Snapshot{
		Stats:    a.stats,
		StatsErr: a.statsErr,
		Feed:     a.feed,
		FeedErr:  a.feedErr,
		Page:     a.page,
		Failures: a.failures,
		NextPoll: a.delay(),
	}
}

func (a *Aggregator) delay() time.Duration {
	if a.failures == 0 {
		return a.interval
	}
	return a.retry.NextDelay(a.failures)
}

// begin must be called with mu held. It supersedes whatever fetch is in flight.
func (a *Aggregator) begin(ctx context.Context) (uint64, context.Context, int) {
	a.epoch++
	if a.inflight != nil {
		a.inflight()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	a.inflight = cancel
	return a.epoch, fetchCtx, a.page
}

// end must be called with mu held by the fetch owning the current epoch.
func (a *Aggregator) end() {
	if a.inflight != nil {
		a.inflight()
		a.inflight = nil
	}
}

func (a *Aggregator) apply(feed models.Page[models.Activity]) {
	normalized, _ := feed.Normalize(a.limit)
	if normalized.TotalItems > 0 {
		a.page = normalized.Page
	}
	a.feed, a.feedErr = normalized, nil
}

func (a *Aggregator) cancelInflight() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.end()
	a.epoch++
}
