package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sm-junior0/ndarehe-sub001/internal/api"
	"github.com/sm-junior0/ndarehe-sub001/internal/events"
	"github.com/sm-junior0/ndarehe-sub001/internal/models"
)

func sampleUsers(n int) []models.User {
	out := make([]models.User, n)
	for i := range out {
		out[i] = models.User{ID: fmt.Sprintf("usr-%03d", i+1), FirstName: "User", Role: models.RoleUser, IsActive: true}
		if i%5 == 0 {
			out[i].Role = models.RoleAdmin
		}
	}
	return out
}

// pager serves users from memory and records every query it receives.
type pager struct {
	mu      sync.Mutex
	users   []models.User
	queries []models.ListQuery
	extra   int
	err     error
}

func (p *pager) fetch(_ context.Context, q models.ListQuery) (models.Page[models.User], error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queries = append(p.queries, q.Clone())
	if p.err != nil {
		return models.Page[models.User]{}, p.err
	}

	var matched []models.User
	for _, u := range p.users {
		if role := q.Filter(models.FilterRole); role != "" && string(u.Role) != role {
			continue
		}
		matched = append(matched, u)
	}
	total := len(matched)
	pages := (total + q.PageSize - 1) / q.PageSize
	start := (q.Page - 1) * q.PageSize
	end := start + q.PageSize + p.extra
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return models.Page[models.User]{Items: matched[start:end], Page: q.Page, TotalPages: pages, TotalItems: total}, nil
}

func (p *pager) last() models.ListQuery {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queries[len(p.queries)-1]
}

func TestControllerLoad(t *testing.T) {
	p := &pager{users: sampleUsers(25)}
	c := New[models.User]("users", 10, p.fetch)

	assert.Equal(t, StateIdle, c.View().State)
	require.NoError(t, c.Load(context.Background()))

	v := c.View()
	assert.Equal(t, StateLoaded, v.State)
	assert.Len(t, v.Page.Items, 10)
	assert.Equal(t, 3, v.Page.TotalPages)
	assert.Equal(t, 25, v.Page.TotalItems)
	assert.Empty(t, v.Message)
	assert.Equal(t, "loaded", v.State.String())
}

func TestFilterAndSearchResetPage(t *testing.T) {
	p := &pager{users: sampleUsers(25)}
	c := New[models.User]("users", 10, p.fetch)
	ctx := context.Background()

	require.NoError(t, c.SetPage(ctx, 3))
	assert.Equal(t, 3, p.last().Page)

	require.NoError(t, c.SetFilter(ctx, models.FilterRole, "ADMIN"))
	assert.Equal(t, 1, p.last().Page)
	assert.Equal(t, "ADMIN", p.last().Filter(models.FilterRole))

	require.NoError(t, c.SetPage(ctx, 1))
	require.NoError(t, c.SetFilter(ctx, models.FilterRole, ""))
	require.NoError(t, c.SetPage(ctx, 2))
	require.NoError(t, c.SetSearch(ctx, "grace"))
	assert.Equal(t, 1, p.last().Page)
	assert.Equal(t, "grace", p.last().Search)

	require.NoError(t, c.SetPage(ctx, 2))
	require.NoError(t, c.ResetFilters(ctx))
	q := p.last()
	assert.Equal(t, 1, q.Page)
	assert.Empty(t, q.Filters)
	assert.Empty(t, q.Search)
}

func TestPageNeverExceedsPageSize(t *testing.T) {
	p := &pager{users: sampleUsers(25), extra: 4}
	c := New[models.User]("users", 10, p.fetch)

	require.NoError(t, c.Load(context.Background()))
	assert.Len(t, c.Items(), 10)
}

func TestPageClampedToTotalPages(t *testing.T) {
	p := &pager{users: sampleUsers(25)}
	c := New[models.User]("users", 10, func(ctx context.Context, q models.ListQuery) (models.Page[models.User], error) {
		page, err := p.fetch(ctx, q)
		page.Page = 9
		return page, err
	})

	require.NoError(t, c.SetPage(context.Background(), 9))
	v := c.View()
	assert.Equal(t, 3, v.Page.Page)
	assert.Equal(t, 3, c.Query().Page)
	require.Len(t, v.Page.Items, 5)
	assert.Equal(t, "usr-021", v.Page.Items[0].ID)
	assert.False(t, v.Empty())
	assert.Equal(t, 3, p.last().Page)
}

func TestNextFromLastPageKeepsItems(t *testing.T) {
	p := &pager{users: sampleUsers(25)}
	c := New[models.User]("users", 10, p.fetch)
	ctx := context.Background()

	require.NoError(t, c.SetPage(ctx, 3))
	require.Len(t, c.Items(), 5)

	require.NoError(t, c.Next(ctx))
	v := c.View()
	assert.Equal(t, StateLoaded, v.State)
	assert.Equal(t, 3, v.Page.Page)
	assert.Equal(t, 3, v.Page.TotalPages)
	assert.Equal(t, 3, c.Query().Page)
	require.Len(t, v.Page.Items, 5)
	assert.Equal(t, "usr-021", v.Page.Items[0].ID)
	assert.Empty(t, v.Message)

	p.mu.Lock()
	pages := []int{p.queries[1].Page, p.queries[2].Page}
	p.mu.Unlock()
	assert.Equal(t, []int{4, 3}, pages)
}

func TestEmptyResultIsNotAnError(t *testing.T) {
	bus := events.NewEventBus()
	var notices []events.Notice
	bus.Subscribe(events.EventNotice, func(e *events.Event) error {
		n, err := events.DecodeNotice(e)
		notices = append(notices, n)
		return err
	})

	p := &pager{users: nil}
	c := New("users", 10, p.fetch, WithPublisher[models.User](bus))

	require.NoError(t, c.SetFilter(context.Background(), models.FilterRole, "ADMIN"))
	v := c.View()
	assert.Equal(t, StateLoaded, v.State)
	assert.True(t, v.Empty())
	assert.Equal(t, "No users found", v.Message)
	assert.NoError(t, v.Err)
	assert.Empty(t, notices)
}

func TestErrorRetainsLastGoodPage(t *testing.T) {
	bus := events.NewEventBus()
	var notices []events.Notice
	bus.Subscribe(events.EventNotice, func(e *events.Event) error {
		n, _ := events.DecodeNotice(e)
		notices = append(notices, n)
		return nil
	})

	p := &pager{users: sampleUsers(25)}
	c := New("bookings", 10, p.fetch, WithPublisher[models.User](bus))
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))
	before := c.Items()

	p.err = &api.HTTPError{Status: 500, Message: "database unavailable"}
	err := c.Next(ctx)
	require.Error(t, err)

	v := c.View()
	assert.Equal(t, StateErrored, v.State)
	assert.Equal(t, before, v.Page.Items)
	assert.Equal(t, "database unavailable", v.Message)
	require.Len(t, notices, 1)
	assert.Equal(t, events.LevelError, notices[0].Level)
	assert.Equal(t, "bookings", notices[0].Resource)

	p.err = nil
	require.NoError(t, c.Refresh(ctx))
	assert.Equal(t, StateLoaded, c.View().State)
	assert.Equal(t, 2, c.View().Page.Page)
}

func TestErrorFallbackMessage(t *testing.T) {
	p := &pager{err: &api.TransportError{Method: "GET", Path: "/admin/tours", Err: errors.New("connection refused")}}
	c := New("tours", 10, p.fetch, WithErrorMessage[models.User]("Could not load tours"))

	require.Error(t, c.Load(context.Background()))
	assert.Equal(t, "Could not load tours", c.View().Message)
}

func TestStaleResponseDiscarded(t *testing.T) {
	p := &pager{users: sampleUsers(30)}
	entered := make(chan struct{})
	release := make(chan struct{})

	c := New[models.User]("bookings", 10, func(ctx context.Context, q models.ListQuery) (models.Page[models.User], error) {
		if q.Page == 2 {
			close(entered)
			<-release
		}
		return p.fetch(ctx, q)
	})
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	slow := make(chan error, 1)
	go func() { slow <- c.Next(ctx) }()
	<-entered

	require.NoError(t, c.Next(ctx))
	close(release)
	assert.ErrorIs(t, <-slow, ErrSuperseded)

	v := c.View()
	assert.Equal(t, 3, v.Query.Page)
	assert.Equal(t, 3, v.Page.Page)
	assert.Equal(t, "usr-021", v.Page.Items[0].ID)
	assert.Equal(t, StateLoaded, v.State)
}

func TestMutatePatchesOnlyTarget(t *testing.T) {
	p := &pager{users: sampleUsers(10)}
	c := New[models.User]("users", 10, p.fetch)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))
	before := c.Items()

	called := false
	err := c.Mutate(ctx, "usr-004", func(context.Context) error {
		called = true
		return nil
	}, func(u models.User) models.User {
		u.IsActive = false
		return u
	})
	require.NoError(t, err)
	assert.True(t, called)

	after := c.Items()
	require.Len(t, after, len(before))
	for i := range before {
		if before[i].ID == "usr-004" {
			assert.False(t, after[i].IsActive)
			assert.True(t, before[i].IsActive, "original slice must not be mutated")
			continue
		}
		assert.Equal(t, before[i], after[i])
	}
	assert.NotSame(t, &before[0], &after[0])
}

func TestMutateFailureLeavesState(t *testing.T) {
	p := &pager{users: sampleUsers(5)}
	c := New[models.User]("users", 10, p.fetch)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))
	before := c.Items()

	boom := &api.HTTPError{Status: 404, Message: "User not found"}
	err := c.Mutate(ctx, "usr-001", func(context.Context) error { return boom }, func(u models.User) models.User {
		u.IsVerified = true
		return u
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, c.Items())
}

func TestMutateUnknownID(t *testing.T) {
	p := &pager{users: sampleUsers(5)}
	c := New[models.User]("users", 10, p.fetch)
	require.NoError(t, c.Load(context.Background()))

	err := c.Mutate(context.Background(), "usr-999", func(context.Context) error { return nil }, func(u models.User) models.User { return u })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWithFiltersSeedsQuery(t *testing.T) {
	p := &pager{users: sampleUsers(12)}
	c := New("users", 5, p.fetch, WithFilters[models.User](map[string]string{models.FilterRole: "ADMIN"}))

	require.NoError(t, c.Load(context.Background()))
	q := p.last()
	assert.Equal(t, "ADMIN", q.Filter(models.FilterRole))
	assert.Equal(t, 5, q.PageSize)
	assert.Len(t, c.Items(), 3)
}
