package apitest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sm-junior0/ndarehe-sub001/internal/models"
)

func (b *Backend) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), b.middleware)

	admin := r.Group("/admin")

	admin.GET("/dashboard", b.handleDashboard)
	admin.GET("/activity", listHandler(b, b.activities))

	admin.GET("/users", listHandler(b, b.users))
	admin.POST("/users", createHandler(b, b.users, buildUser))
	admin.PUT("/users/:id/status", statusHandler(b, b.users, func(u models.User, body map[string]json.RawMessage) (models.User, error) {
		var active bool
		if err := decodeField(body, "isActive", &active); err != nil {
			return u, err
		}
		u.IsActive = active
		return u, nil
	}))

	admin.GET("/bookings", listHandler(b, b.bookings))
	admin.POST("/bookings", createHandler(b, b.bookings, buildBooking))
	admin.PUT("/bookings/:id/status", statusHandler(b, b.bookings, func(bk models.Booking, body map[string]json.RawMessage) (models.Booking, error) {
		var status models.BookingStatus
		if err := decodeField(body, "status", &status); err != nil {
			return bk, err
		}
		if !status.Valid() {
			return bk, errors.New("Invalid booking status")
		}
		bk.Status = status
		return bk, nil
	}))

	catalog(b, admin, "/accommodations", b.accommodations, buildAccommodation, func(a models.Accommodation, v bool) models.Accommodation {
		a.IsVerified = v
		return a
	})
	catalog(b, admin, "/transportation", b.transportation, buildTransportation, func(t models.Transportation, v bool) models.Transportation {
		t.IsVerified = v
		return t
	})
	catalog(b, admin, "/tours", b.tours, buildTour, func(t models.Tour, v bool) models.Tour {
		t.IsVerified = v
		return t
	})

	admin.GET("/settings", b.handleSettings)
	admin.PUT("/settings/bulk", b.handleSettingsBulk)

	admin.GET("/help/categories", b.handleCategories)
	admin.GET("/help/articles", listHandler(b, b.articles))
	admin.POST("/help/articles", createHandler(b, b.articles, buildArticle))
	admin.GET("/help/tickets", listHandler(b, b.tickets))
	admin.POST("/help/tickets", createHandler(b, b.tickets, buildTicket))
	admin.PUT("/help/tickets/:id/status", statusHandler(b, b.tickets, func(t models.SupportTicket, body map[string]json.RawMessage) (models.SupportTicket, error) {
		var status models.TicketStatus
		if err := decodeField(body, "status", &status); err != nil {
			return t, err
		}
		if !status.Valid() {
			return t, errors.New("Invalid ticket status")
		}
		t.Status = status
		return t, nil
	}))

	admin.GET("/reports/:kind", b.handleReport)

	return r
}

func catalog[T models.Record, In any](b *Backend, g *gin.RouterGroup, path string, c *collection[T], build func(*Backend, In, *T) (T, error), verify func(T, bool) T) {
	g.GET(path, listHandler(b, c))
	g.POST(path, createHandler(b, c, build))
	g.PUT(path+"/:id", updateHandler(b, c, build))
	g.DELETE(path+"/:id", deleteHandler(b, c))
	g.PUT(path+"/:id/verify", statusHandler(b, c, func(item T, body map[string]json.RawMessage) (T, error) {
		var verified bool
		if err := decodeField(body, "isVerified", &verified); err != nil {
			return item, err
		}
		return verify(item, verified), nil
	}))
}

func listHandler[T models.Record](b *Backend, c *collection[T]) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		b.mu.Lock()
		items, p := c.list(ctx.Request.URL.Query())
		b.mu.Unlock()
		if items == nil {
			items = []T{}
		}
		ok(ctx, http.StatusOK, gin.H{c.key: items, "pagination": p})
	}
}

func createHandler[T models.Record, In any](b *Backend, c *collection[T], build func(*Backend, In, *T) (T, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var in In
		if err := ctx.ShouldBindJSON(&in); err != nil {
			fail(ctx, http.StatusBadRequest, "Invalid request body")
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		item, err := build(b, in, nil)
		if err != nil {
			fail(ctx, http.StatusBadRequest, err.Error())
			return
		}
		c.prepend(item)
		ok(ctx, http.StatusCreated, gin.H{c.single: item})
	}
}

func updateHandler[T models.Record, In any](b *Backend, c *collection[T], build func(*Backend, In, *T) (T, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var in In
		if err := ctx.ShouldBindJSON(&in); err != nil {
			fail(ctx, http.StatusBadRequest, "Invalid request body")
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		i := c.index(ctx.Param("id"))
		if i < 0 {
			fail(ctx, http.StatusNotFound, notFound(c.single))
			return
		}
		existing := c.items[i]
		item, err := build(b, in, &existing)
		if err != nil {
			fail(ctx, http.StatusBadRequest, err.Error())
			return
		}
		c.items[i] = item
		ok(ctx, http.StatusOK, gin.H{c.single: item})
	}
}

func deleteHandler[T models.Record](b *Backend, c *collection[T]) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		i := c.index(ctx.Param("id"))
		if i < 0 {
			fail(ctx, http.StatusNotFound, notFound(c.single))
			return
		}
		c.remove(i)
		ok(ctx, http.StatusOK, nil)
	}
}

func statusHandler[T models.Record](b *Backend, c *collection[T], apply func(T, map[string]json.RawMessage) (T, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var body map[string]json.RawMessage
		if err := ctx.ShouldBindJSON(&body); err != nil {
			fail(ctx, http.StatusBadRequest, "Invalid request body")
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		i := c.index(ctx.Param("id"))
		if i < 0 {
			fail(ctx, http.StatusNotFound, notFound(c.single))
			return
		}
		item, err := apply(c.items[i], body)
		if err != nil {
			fail(ctx, http.StatusBadRequest, err.Error())
			return
		}
		c.items[i] = item
		ok(ctx, http.StatusOK, gin.H{c.single: item})
	}
}

func decodeField(body map[string]json.RawMessage, key string, out any) error {
	raw, found := body[key]
	if !found {
		return fmt.Errorf("%s is required", key)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s is invalid", key)
	}
	return nil
}

func notFound(single string) string {
	return strings.ToUpper(single[:1]) + single[1:] + " not found"
}

func (b *Backend) handleDashboard(ctx *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stats != nil {
		ok(ctx, http.StatusOK, gin.H{"stats": b.stats})
		return
	}

	stats := models.DashboardStats{
		TotalUsers:          len(b.users.items),
		TotalBookings:       len(b.bookings.items),
		TotalAccommodations: len(b.accommodations.items),
		TotalTransportation: len(b.transportation.items),
		TotalTours:          len(b.tours.items),
	}
	for _, u := range b.users.items {
		if u.IsActive {
			stats.ActiveUsers++
		}
	}
	for _, bk := range b.bookings.items {
		switch bk.Status {
		case models.BookingPending:
			stats.PendingBookings++
		case models.BookingConfirmed:
			stats.ConfirmedBookings++
			stats.TotalRevenue += bk.TotalAmount
		case models.BookingCompleted:
			stats.TotalRevenue += bk.TotalAmount
		}
	}
	for _, a := range b.accommodations.items {
		if !a.IsVerified {
			stats.PendingVerification++
		}
	}
	ok(ctx, http.StatusOK, gin.H{"stats": stats})
}

func (b *Backend) handleSettings(ctx *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	settings := b.settings
	if settings == nil {
		settings = []models.SettingEntry{}
	}
	ok(ctx, http.StatusOK, gin.H{"settings": settings})
}

func (b *Backend) handleSettingsBulk(ctx *gin.Context) {
	var body struct {
		Settings []models.SettingEntry `json:"settings"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		fail(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, entry := range body.Settings {
		if strings.TrimSpace(entry.Key) == "" {
			fail(ctx, http.StatusBadRequest, "Setting key is required")
			return
		}
	}
	for _, entry := range body.Settings {
		replaced := false
		for i := range b.settings {
			if b.settings[i].Key == entry.Key {
				b.settings[i] = entry
				replaced = true
				break
			}
		}
		if !replaced {
			b.settings = append(b.settings, entry)
		}
	}
	ok(ctx, http.StatusOK, gin.H{"settings": b.settings})
}

func (b *Backend) handleCategories(ctx *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cats := make([]models.HelpCategory, len(b.categories))
	copy(cats, b.categories)
	for i := range cats {
		count := 0
		for _, a := range b.articles.items {
			if a.CategoryID == cats[i].ID {
				count++
			}
		}
		cats[i].ArticleCount = count
	}
	ok(ctx, http.StatusOK, gin.H{"categories": cats})
}

func (b *Backend) handleReport(ctx *gin.Context) {
	kind, err := models.ParseReportKind(ctx.Param("kind"))
	if err != nil {
		fail(ctx, http.StatusNotFound, "Unknown report")
		return
	}
	q := ctx.Request.URL.Query()
	groupBy := q.Get("groupBy")
	if groupBy == "" {
		groupBy = "day"
	}
	start, err := parseDay(q.Get("startDate"), time.Time{})
	if err != nil {
		fail(ctx, http.StatusBadRequest, "Invalid startDate")
		return
	}
	end, err := parseDay(q.Get("endDate"), time.Time{})
	if err != nil {
		fail(ctx, http.StatusBadRequest, "Invalid endDate")
		return
	}

	inRange := func(t time.Time) bool {
		if !start.IsZero() && t.Before(start) {
			return false
		}
		if !end.IsZero() && !t.Before(end.AddDate(0, 0, 1)) {
			return false
		}
		return true
	}

	b.mu.Lock()
	rows := map[string]*models.ReportRow{}
	bump := func(t time.Time, amount float64) {
		key := period(t, groupBy)
		row, found := rows[key]
		if !found {
			row = &models.ReportRow{Period: key}
			rows[key] = row
		}
		row.Count++
		row.Amount += amount
	}
	switch kind {
	case models.ReportRevenue:
		for _, bk := range b.bookings.items {
			if (bk.Status == models.BookingConfirmed || bk.Status == models.BookingCompleted) && inRange(bk.CreatedAt) {
				bump(bk.CreatedAt, bk.TotalAmount)
			}
		}
	case models.ReportBookings:
		for _, bk := range b.bookings.items {
			if inRange(bk.CreatedAt) {
				bump(bk.CreatedAt, bk.TotalAmount)
			}
		}
	case models.ReportActivity:
		for _, a := range b.activities.items {
			if inRange(a.CreatedAt) {
				bump(a.CreatedAt, 0)
			}
		}
	}
	b.mu.Unlock()

	report := models.Report{
		Kind:      kind,
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		GroupBy:   groupBy,
		Rows:      []models.ReportRow{},
	}
	for _, row := range rows {
		report.Rows = append(report.Rows, *row)
		report.TotalCount += row.Count
		report.TotalAmount += row.Amount
	}
	sort.Slice(report.Rows, func(i, j int) bool { return report.Rows[i].Period < report.Rows[j].Period })
	ok(ctx, http.StatusOK, gin.H{"report": report})
}

func parseDay(s string, def time.Time) (time.Time, error) {
	if s == "" {
		return def, nil
	}
	return time.Parse("2006-01-02", s)
}

func period(t time.Time, groupBy string) string {
	switch groupBy {
	case "month":
		return t.Format("2006-01")
	case "week":
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	default:
		return t.Format("2006-01-02")
	}
}
