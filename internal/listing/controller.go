package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sm-junior0/ndarehe-sub001/internal/api"
	"github.com/sm-junior0/ndarehe-sub001/internal/events"
	"github.com/sm-junior0/ndarehe-sub001/internal/metrics"
	"github.com/sm-junior0/ndarehe-sub001/internal/models"
)

// ErrSuperseded is returned by a load whose response arrived after a newer
// load was started. The response is discarded.
var ErrSuperseded = errors.New("listing: response superseded by a newer request")

// ErrNotFound is returned by Mutate when no loaded record has the id.
var ErrNotFound = errors.New("listing: record not on current page")

type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Fetcher loads one page for a query.
type Fetcher[T any] func(ctx context.Context, q models.ListQuery) (models.Page[T], error)

// View is a consistent snapshot of a controller.
type View[T any] struct {
	State   State
	Query   models.ListQuery
	Page    models.Page[T]
	Err     error
	Message string
}

func (v View[T]) Empty() bool {
	return v.State == StateLoaded && v.Page.Empty()
}

// Summary is the pager footer of a view.
type Summary struct {
	State      State
	Page       int
	TotalPages int
	TotalItems int
	Message    string
}

func (v View[T]) Summary() Summary {
	return Summary{
		State:      v.State,
		Page:       v.Page.Page,
		TotalPages: v.Page.TotalPages,
		TotalItems: v.Page.TotalItems,
		Message:    v.Message,
	}
}

// Controller owns the filter, search and page state of one list screen and
// the last page the server returned.
type Controller[T models.Record] struct {
	name     string
	fetch    Fetcher[T]
	logger   *zerolog.Logger
	bus      events.Publisher
	emptyMsg string
	errorMsg string

	mu     sync.Mutex
	query  models.ListQuery
	page   models.Page[T]
	state  State
	err    error
	epoch  uint64
	cancel context.CancelFunc
}

type Option[T models.Record] func(*Controller[T])

func WithLogger[T models.Record](logger *zerolog.Logger) Option[T] {
	return func(c *Controller[T]) {
		if logger != nil {
			l := logger.With().Str("screen", c.name).Logger()
			c.logger = &l
		}
	}
}

func WithPublisher[T models.Record](bus events.Publisher) Option[T] {
	return func(c *Controller[T]) {
		c.bus = bus
	}
}

// WithEmptyMessage sets the text shown when the query matches nothing.
func WithEmptyMessage[T models.Record](msg string) Option[T] {
	return func(c *Controller[T]) {
		c.emptyMsg = msg
	}
}

// WithErrorMessage sets the fallback text of error notices.
func WithErrorMessage[T models.Record](msg string) Option[T] {
	return func(c *Controller[T]) {
		c.errorMsg = msg
	}
}

func WithFilters[T models.Record](filters map[string]string) Option[T] {
	return func(c *Controller[T]) {
		for k, v := range filters {
			c.query = c.query.WithFilter(k, v)
		}
	}
}

func New[T models.Record](name string, pageSize int, fetch Fetcher[T], opts ...Option[T]) *Controller[T] {
	nop := zerolog.Nop()
	c := &Controller[T]{
		name:     name,
		fetch:    fetch,
		logger:   &nop,
		emptyMsg: "No " + name + " found",
		errorMsg: "Failed to fetch " + name,
		query:    models.NewListQuery(pageSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller[T]) Name() string {
	return c.name
}

func (c *Controller[T]) EmptyMessage() string {
	return c.emptyMsg
}

func (c *Controller[T]) Query() models.ListQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.Clone()
}

func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := View[T]{
		State: c.state,
		Query: c.query.Clone(),
		Page:  c.page,
		Err:   c.err,
	}
	switch {
	case c.state == StateErrored:
		v.Message = api.Message(c.err, c.errorMsg)
	case c.state == StateLoaded && c.page.Empty():
		v.Message = c.emptyMsg
	}
	return v
}

func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page.Items
}

// SetFilter changes one filter field and reloads from page 1.
// An empty value removes the filter.
func (c *Controller[T]) SetFilter(ctx context.Context, field, value string) error {
	return c.update(ctx, func(q models.ListQuery) models.ListQuery {
		return q.WithFilter(field, value)
	})
}

func (c *Controller[T]) ClearFilter(ctx context.Context, field string) error {
	return c.SetFilter(ctx, field, "")
}

func (c *Controller[T]) SetSearch(ctx context.Context, term string) error {
	return c.update(ctx, func(q models.ListQuery) models.ListQuery {
		return q.WithSearch(term)
	})
}

// ResetFilters clears every filter and the search term in one step.
func (c *Controller[T]) ResetFilters(ctx context.Context) error {
	return c.update(ctx, func(q models.ListQuery) models.ListQuery {
		return q.WithoutFilters()
	})
}

func (c *Controller[T]) SetPage(ctx context.Context, page int) error {
	return c.update(ctx, func(q models.ListQuery) models.ListQuery {
		return q.WithPage(page)
	})
}

func (c *Controller[T]) Next(ctx context.Context) error {
	return c.update(ctx, func(q models.ListQuery) models.ListQuery {
		return q.WithPage(q.Page + 1)
	})
}

func (c *Controller[T]) Prev(ctx context.Context) error {
	return c.update(ctx, func(q models.ListQuery) models.ListQuery {
		return q.WithPage(q.Page - 1)
	})
}

// SetQuery replaces filters, search and page in one load. The page size
// stays fixed.
func (c *Controller[T]) SetQuery(ctx context.Context, q models.ListQuery) error {
	return c.update(ctx, func(cur models.ListQuery) models.ListQuery {
		q = q.Clone()
		q.PageSize = cur.PageSize
		if q.Page < 1 {
			q.Page = 1
		}
		return q
	})
}

// Refresh reloads the current query.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	return c.update(ctx, func(q models.ListQuery) models.ListQuery { return q })
}

// Load is Refresh; it is the entry point for the first fetch.
func (c *Controller[T]) Load(ctx context.Context) error {
	return c.Refresh(ctx)
}

func (c *Controller[T]) update(ctx context.Context, change func(models.ListQuery) models.ListQuery) error {
	c.mu.Lock()
	c.query = change(c.query)
	q := c.query.Clone()
	c.epoch++
	epoch := c.epoch
	if c.cancel != nil {
		c.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state = StateLoading
	c.mu.Unlock()

	page, err := c.fetch(fetchCtx, q)
	if err == nil {
		if clamped, ok := outOfRange(page, q); ok {
			// past the last page: show the last page instead
			c.logger.Debug().Int("page", q.Page).Int("clamped", clamped).Msg("requested page out of range, refetching")
			q = q.WithPage(clamped)
			page, err = c.fetch(fetchCtx, q)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch {
		metrics.IncStale(c.name)
		c.logger.Debug().Int("page", q.Page).Msg("discarding superseded list response")
		return ErrSuperseded
	}
	cancel()
	c.cancel = nil

	if err != nil {
		// keep the last good page on screen
		c.state = StateErrored
		c.err = err
		c.logger.Error().Err(err).Int("page", q.Page).Msg("list fetch failed")
		events.Notify(c.bus, events.Notice{
			Level:    events.LevelError,
			Resource: c.name,
			Message:  api.Message(err, c.errorMsg),
		})
		return err
	}

	normalized, truncated := page.Normalize(q.PageSize)
	if truncated {
		c.logger.Warn().Int("page_size", q.PageSize).Int("received", len(page.Items)).Msg("server returned more items than page size")
	}
	if normalized.TotalItems > 0 && normalized.Page != c.query.Page {
		c.query = c.query.WithPage(normalized.Page)
	}
	c.page = normalized
	c.state = StateLoaded
	c.err = nil
	return nil
}

// outOfRange reports the page to load instead when the server answered a
// page past the end with no items.
func outOfRange[T any](page models.Page[T], q models.ListQuery) (int, bool) {
	normalized, _ := page.Normalize(q.PageSize)
	if normalized.TotalItems > 0 && normalized.Page != q.Page && len(normalized.Items) == 0 {
		return normalized.Page, true
	}
	return 0, false
}

// Mutate applies a server-acknowledged change to one record. call runs the
// request; on success the record with id is replaced by patch(record) in a
// new slice, leaving every other element untouched. Nothing changes on failure.
func (c *Controller[T]) Mutate(ctx context.Context, id string, call func(ctx context.Context) error, patch func(T) T) error {
	if err := call(ctx); err != nil {
		c.logger.Error().Err(err).Str("id", id).Msg("update failed")
		events.Notify(c.bus, events.Notice{
			Level:    events.LevelError,
			Resource: c.name,
			RecordID: id,
			Message:  api.Message(err, "Failed to update "+c.name),
		})
		return err
	}

	if !c.PatchByID(id, patch) {
		return ErrNotFound
	}
	events.Notify(c.bus, events.Notice{
		Level:    events.LevelSuccess,
		Resource: c.name,
		RecordID: id,
		Message:  "Updated successfully",
	})
	return nil
}

// PatchByID replaces the matching record with patch(record). It reports
// whether a record matched.
func (c *Controller[T]) PatchByID(id string, patch func(T) T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i, item := range c.page.Items {
		if item.RecordID() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	items := make([]T, len(c.page.Items))
	copy(items, c.page.Items)
	items[idx] = patch(items[idx])
	c.page.Items = items
	return true
}

// Close cancels any in-flight load.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.epoch++
}
