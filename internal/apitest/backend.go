// Package apitest serves the ndarehe admin REST API from memory. Tests use it
// through httptest; cmd/stubapi serves it for local development.
package apitest

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sm-junior0/ndarehe-sub001/internal/models"
)

// Request is one request the backend received.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
	Header http.Header
}

type failure struct {
	status  int
	message string
}

type Backend struct {
	mu     sync.Mutex
	token  string
	now    func() time.Time
	nextID int

	users          *collection[models.User]
	bookings       *collection[models.Booking]
	accommodations *collection[models.Accommodation]
	transportation *collection[models.Transportation]
	tours          *collection[models.Tour]
	articles       *collection[models.HelpArticle]
	tickets        *collection[models.SupportTicket]
	activities     *collection[models.Activity]

	categories []models.HelpCategory
	stats      *models.DashboardStats
	settings   []models.SettingEntry

	requests []Request
	failures map[string][]failure
	delay    func(*http.Request) time.Duration

	engine *gin.Engine
}

// New returns an empty backend that accepts only the given bearer token.
// An empty token disables the auth check.
// New builds an empty backend. gin leaves debug mode for test mode unless
// the caller already picked a mode.
func New(token string) *Backend {
	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.TestMode)
	}
	b := &Backend{
		token:    token,
		now:      time.Now,
		failures: make(map[string][]failure),
	}
	b.users = newCollection("users", "user", userMatches, userText)
	b.bookings = newCollection("bookings", "booking", bookingMatches, bookingText)
	b.accommodations = newCollection("accommodations", "accommodation", accommodationMatches, func(a models.Accommodation) string {
		return a.Name + " " + a.LocationName + " " + a.Address
	})
	b.transportation = newCollection("transportation", "transportation", transportationMatches, func(t models.Transportation) string {
		return t.Name + " " + t.VehicleType + " " + t.LocationName
	})
	b.tours = newCollection("tours", "tour", tourMatches, func(t models.Tour) string {
		return t.Name + " " + t.LocationName
	})
	b.articles = newCollection("articles", "article", articleMatches, func(a models.HelpArticle) string {
		return a.Title + " " + a.Content
	})
	b.tickets = newCollection("tickets", "ticket", ticketMatches, func(t models.SupportTicket) string {
		return t.Subject + " " + t.Name + " " + t.Email
	})
	b.activities = newCollection("activities", "activity", func(models.Activity, url.Values) bool { return true }, func(a models.Activity) string {
		return a.Description
	})
	b.engine = b.routes()
	return b
}

func (b *Backend) Handler() http.Handler {
	return b.engine
}

// Serve starts an httptest server closed at test cleanup.
func (b *Backend) Serve(t testing.TB) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(b.engine)
	t.Cleanup(srv.Close)
	return srv
}

func (b *Backend) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

// FailNext makes the next request matching method and path fail. Status 200
// produces a success=false envelope.
func (b *Backend) FailNext(method, path string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + path
	b.failures[key] = append(b.failures[key], failure{status: status, message: message})
}

// SetDelay delays responses by the returned duration. The delay ends early
// when the client goes away.
func (b *Backend) SetDelay(fn func(*http.Request) time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delay = fn
}

func (b *Backend) Requests(path string) []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Request
	for _, r := range b.requests {
		if path == "" || r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (b *Backend) LastRequest(path string) (Request, bool) {
	reqs := b.Requests(path)
	if len(reqs) == 0 {
		return Request{}, false
	}
	return reqs[len(reqs)-1], true
}

func (b *Backend) ResetRequests() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = nil
}

func (b *Backend) AddUsers(items ...models.User) {
	b.add(func() { b.users.add(items...) })
}

func (b *Backend) AddBookings(items ...models.Booking) {
	b.add(func() { b.bookings.add(items...) })
}

func (b *Backend) AddAccommodations(items ...models.Accommodation) {
	b.add(func() { b.accommodations.add(items...) })
}

func (b *Backend) AddTransportation(items ...models.Transportation) {
	b.add(func() { b.transportation.add(items...) })
}

func (b *Backend) AddTours(items ...models.Tour) {
	b.add(func() { b.tours.add(items...) })
}

func (b *Backend) AddArticles(items ...models.HelpArticle) {
	b.add(func() { b.articles.add(items...) })
}

func (b *Backend) AddTickets(items ...models.SupportTicket) {
	b.add(func() { b.tickets.add(items...) })
}

func (b *Backend) AddActivities(items ...models.Activity) {
	b.add(func() { b.activities.add(items...) })
}

func (b *Backend) AddCategories(items ...models.HelpCategory) {
	b.add(func() { b.categories = append(b.categories, items...) })
}

func (b *Backend) SetSettings(entries ...models.SettingEntry) {
	b.add(func() { b.settings = entries })
}

func (b *Backend) SetStats(stats models.DashboardStats) {
	b.add(func() { b.stats = &stats })
}

func (b *Backend) add(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn()
}

func (b *Backend) Users() []models.User {
	return snapshot(b, b.users)
}

func (b *Backend) Bookings() []models.Booking {
	return snapshot(b, b.bookings)
}

func (b *Backend) Accommodations() []models.Accommodation {
	return snapshot(b, b.accommodations)
}

func (b *Backend) Tours() []models.Tour {
	return snapshot(b, b.tours)
}

func (b *Backend) Tickets() []models.SupportTicket {
	return snapshot(b, b.tickets)
}

func (b *Backend) Settings() []models.SettingEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.SettingEntry(nil), b.settings...)
}

func snapshot[T models.Record](b *Backend, c *collection[T]) []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]T(nil), c.items...)
}

func (b *Backend) middleware(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	b.mu.Lock()
	b.requests = append(b.requests, Request{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Query:  c.Request.URL.Query(),
		Body:   body,
		Header: c.Request.Header.Clone(),
	})
	key := c.Request.Method + " " + c.Request.URL.Path
	var injected *failure
	if queue := b.failures[key]; len(queue) > 0 {
		injected = &queue[0]
		b.failures[key] = queue[1:]
	}
	delayFn := b.delay
	token := b.token
	b.mu.Unlock()

	if delayFn != nil {
		if d := delayFn(c.Request); d > 0 {
			select {
			case <-time.After(d):
			case <-c.Request.Context().Done():
				c.Abort()
				return
			}
		}
	}

	if token != "" && c.GetHeader("Authorization") != "Bearer "+token {
		fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if injected != nil {
		if injected.status == http.StatusOK {
			c.AbortWithStatusJSON(http.StatusOK, gin.H{"success": false, "error": injected.message})
			return
		}
		fail(c, injected.status, injected.message)
		return
	}
	c.Next()
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}
