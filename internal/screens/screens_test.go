package screens

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sm-junior0/ndarehe-sub001/internal/api"
	"github.com/sm-junior0/ndarehe-sub001/internal/apitest"
	"github.com/sm-junior0/ndarehe-sub001/internal/auth"
	"github.com/sm-junior0/ndarehe-sub001/internal/config"
	"github.com/sm-junior0/ndarehe-sub001/internal/database"
	"github.com/sm-junior0/ndarehe-sub001/internal/events"
	"github.com/sm-junior0/ndarehe-sub001/internal/export"
	"github.com/sm-junior0/ndarehe-sub001/internal/listing"
	"github.com/sm-junior0/ndarehe-sub001/internal/models"
	"github.com/sm-junior0/ndarehe-sub001/internal/notify"
)

const testToken = "admin-test-token"

var (
	seedTime = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	today    = time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC)
)

type fixture struct {
	backend *apitest.Backend
	console *Console
	notices *notify.Collector
	journal *database.DB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := apitest.New(testToken)
	backend.Seed(seedTime)
	srv := backend.Serve(t)
	client := api.NewClient(srv.URL, auth.NewToken(testToken))

	dir := t.TempDir()
	cfg := &config.Config{
		Exports: config.ExportConfig{Path: filepath.Join(dir, "exports"), Cap: 1000},
		Screens: config.ScreensConfig{
			Users: 10, Bookings: 10, Accommodations: 5, Transportation: 10,
			Tours: 10, HelpArticles: 10, SupportTickets: 10,
		},
		Dashboard: config.DashboardConfig{PollInterval: 10 * time.Second, ActivityLimit: 10},
	}

	bus := events.NewEventBus()
	notices := &notify.Collector{}
	notify.Attach(bus, nil, notices)

	db, err := database.NewDB(filepath.Join(dir, "journal.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	database.NewJournal(db, "ops@ndarehe.com", nil).Attach(bus)

	console := NewConsoleWithClock(cfg, client, bus, nil, func() time.Time { return today })
	t.Cleanup(console.Close)
	return &fixture{backend: backend, console: console, notices: notices, journal: db}
}

func levels(notices []events.Notice) []events.Level {
	out := make([]events.Level, len(notices))
	for i, n := range notices {
		out[i] = n.Level
	}
	return out
}

func TestUsersRoleFilterAndEmptyState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	users := f.console.Users

	require.NoError(t, users.Load(ctx))
	require.NoError(t, users.List.SetPage(ctx, 2))
	require.NoError(t, users.List.SetSearch(ctx, ""))
	require.NoError(t, users.List.SetFilter(ctx, models.FilterRole, "ADMIN"))

	req, ok := f.backend.LastRequest("/admin/users")
	require.True(t, ok)
	assert.Equal(t, "ADMIN", req.Query.Get("role"))
	assert.Equal(t, "1", req.Query.Get("page"))
	_, hasSearch := req.Query["search"]
	assert.False(t, hasSearch, "empty search must not be sent")

	view := users.List.View()
	assert.Equal(t, 3, view.Page.TotalItems)
	for _, u := range view.Page.Items {
		assert.Equal(t, models.RoleAdmin, u.Role)
	}

	f.notices.Drain()
	require.NoError(t, users.List.SetSearch(ctx, "nobody-matches-this"))
	view = users.List.View()
	assert.True(t, view.Empty())
	assert.Equal(t, listing.StateLoaded, view.State)
	assert.Equal(t, "No users found", view.Message)
	assert.NotContains(t, levels(f.notices.Drain()), events.LevelError)
}

func TestUsersSetActivePatchesOneRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	users := f.console.Users
	require.NoError(t, users.Load(ctx))

	before := users.List.Items()
	target := before[1]
	require.NoError(t, users.SetActive(ctx, target.ID, !target.IsActive))

	after := users.List.Items()
	require.Len(t, after, len(before))
	for i := range before {
		if i == 1 {
			assert.Equal(t, !target.IsActive, after[i].IsActive)
			continue
		}
		assert.Equal(t, before[i], after[i])
	}
	assert.Len(t, f.backend.Requests("/admin/users"), 1, "a toggle does not refetch the list")

	entries, err := f.journal.ListAudit(ctx, database.AuditFilter{Resource: "user"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "status", entries[0].Action)
	assert.Equal(t, target.ID, entries[0].RecordID)
}

func TestBookingsStaleResponseDiscarded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookings := f.console.Bookings
	require.NoError(t, bookings.Load(ctx))

	started := make(chan struct{})
	var once sync.Once
	f.backend.SetDelay(func(r *http.Request) time.Duration {
		if r.URL.Path == "/admin/bookings" && r.URL.Query().Get("page") == "2" {
			once.Do(func() { close(started) })
			return 5 * time.Second
		}
		return 0
	})

	errs := make(chan error, 1)
	go func() { errs <- bookings.List.SetPage(ctx, 2) }()
	<-started
	require.NoError(t, bookings.List.SetPage(ctx, 3))

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, listing.ErrSuperseded)
	case <-time.After(3 * time.Second):
		t.Fatal("page 2 load did not return after being superseded")
	}

	view := bookings.List.View()
	assert.Equal(t, 3, view.Query.Page)
	assert.Equal(t, 3, view.Page.Page)
	require.NotEmpty(t, view.Page.Items)
	assert.Equal(t, "bkg-021", view.Page.Items[0].ID)
}

func TestBookingsSetStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookings := f.console.Bookings
	require.NoError(t, bookings.Load(ctx))

	id := bookings.List.Items()[0].ID
	require.NoError(t, bookings.SetStatus(ctx, id, models.BookingConfirmed))
	assert.Equal(t, models.BookingConfirmed, bookings.List.Items()[0].Status)

	err := bookings.SetStatus(ctx, id, models.BookingStatus("LOST"))
	require.Error(t, err)
	assert.Equal(t, models.BookingConfirmed, bookings.List.Items()[0].Status)
}

func TestAccommodationCreateSendsNaNAsNull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	accs := f.console.Accommodations
	require.NoError(t, accs.Load(ctx))

	accs.Form.Open()
	require.NoError(t, accs.Form.Set("name", "Kivu Sunset Lodge"))
	require.NoError(t, accs.Form.Set("pricePerNight", "abc"))
	require.NoError(t, accs.Form.Set("maxGuests", "4"))

	err := accs.Form.Submit(ctx)
	require.Error(t, err)

	req, ok := f.backend.LastRequest("/admin/accommodations")
	require.True(t, ok)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Contains(t, string(req.Body), `"pricePerNight":null`)
	assert.True(t, accs.Form.IsOpen())
	assert.Equal(t, "pricePerNight must be a number", accs.Form.Message())

	require.NoError(t, accs.Form.Set("pricePerNight", "95000 RWF"))
	require.NoError(t, accs.Form.Submit(ctx))
	assert.False(t, accs.Form.IsOpen())

	items := accs.List.Items()
	require.NotEmpty(t, items)
	assert.Equal(t, "Kivu Sunset Lodge", items[0].Name)
	assert.Equal(t, 95000.0, items[0].PricePerNight)
}

func TestCatalogEditVerifyDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tours := f.console.Tours
	require.NoError(t, tours.Load(ctx))

	target := tours.List.Items()[0]
	require.NoError(t, tours.EditRecord(target.ID))
	assert.Equal(t, target.Name, tours.Form.Values()["name"])
	require.NoError(t, tours.Form.Set("pricePerPerson", "75000"))
	require.NoError(t, tours.Form.Submit(ctx))

	req, ok := f.backend.LastRequest("/admin/tours/" + target.ID)
	require.True(t, ok)
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, 75000.0, tours.List.Items()[0].PricePerPerson)

	before := tours.List.Items()
	require.NoError(t, tours.SetVerified(ctx, target.ID, !target.IsVerified))
	after := tours.List.Items()
	assert.Equal(t, !target.IsVerified, after[0].IsVerified)
	assert.Equal(t, before[1:], after[1:])

	require.NoError(t, tours.Delete(ctx, target.ID))
	for _, tour := range tours.List.Items() {
		assert.NotEqual(t, target.ID, tour.ID)
	}
	assert.Len(t, f.backend.Tours(), 5)

	assert.ErrorIs(t, tours.EditRecord("tour-999"), listing.ErrNotFound)

	entries, err := f.journal.ListAudit(ctx, database.AuditFilter{Resource: "tour"})
	require.NoError(t, err)
	actions := map[string]bool{}
	for _, e := range entries {
		actions[e.Action] = true
	}
	assert.Equal(t, map[string]bool{"update": true, "verify": true, "delete": true}, actions)
}

func TestExportUsesFiltersNotPage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	accs := f.console.Accommodations

	require.NoError(t, accs.List.SetFilter(ctx, models.FilterIsVerified, "true"))
	require.Len(t, accs.List.Items(), 5)

	res, err := accs.ExportCurrent(ctx, export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Rows)
	assert.Equal(t, "accommodations-export-2026-10-18.csv", res.FileName)
	assert.Equal(t, "text/csv", res.MIME)

	req, ok := f.backend.LastRequest("/admin/accommodations")
	require.True(t, ok)
	assert.Equal(t, "1000", req.Query.Get("limit"))
	assert.Equal(t, "true", req.Query.Get("isVerified"))

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 7)
	assert.Contains(t, string(data), `"Hotel des Mille Collines, Kigali"`)

	exports, err := f.journal.ListExports(ctx, 10)
	require.NoError(t, err)
	require.Len(t, exports, 1)
	assert.Equal(t, res.Path, exports[0].Path)
}

func TestHelpDesk(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	help := f.console.Help

	cats, err := help.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 3)

	require.NoError(t, help.Tickets.Load(ctx))
	id := help.Tickets.List.Items()[0].ID
	require.NoError(t, help.SetTicketStatus(ctx, id, models.TicketResolved))
	assert.Equal(t, models.TicketResolved, help.Tickets.List.Items()[0].Status)

	require.NoError(t, help.Articles.Load(ctx))
	help.Articles.Form.Open()
	require.NoError(t, help.Articles.Form.Set("categoryId", "cat-1"))
	require.NoError(t, help.Articles.Form.Set("title", "Changing your booking dates"))
	require.NoError(t, help.Articles.Form.Set("tags", "bookings, dates, "))
	require.NoError(t, help.Articles.Form.Submit(ctx))
	assert.Equal(t, "Changing your booking dates", help.Articles.List.Items()[0].Title)
	assert.Equal(t, []string{"bookings", "dates"}, help.Articles.List.Items()[0].Tags)

	help.Tickets.Form.Open()
	require.NoError(t, help.Tickets.Form.Set("subject", "Refund"))
	err = help.Tickets.Form.Submit(ctx)
	require.Error(t, err, "email is required")
	assert.True(t, help.Tickets.Form.IsOpen())
}

func TestReportsExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	params := models.ReportParams{StartDate: seedTime.AddDate(0, 0, -30), EndDate: seedTime, GroupBy: "week"}

	res, err := f.console.Reports.Export(ctx, models.ReportRevenue, params, export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "revenue-report-2026-10-18.csv", res.FileName)
	assert.FileExists(t, res.Path)
	assert.Equal(t, []string{"Period", "Count", "Amount"}, res.Header)

	pdf, err := f.console.Reports.Export(ctx, models.ReportBookings, params, export.FormatPDF)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf.Data), "%PDF"))

	_, err = f.console.Reports.Export(ctx, models.ReportActivity, params, export.FormatXLSX)
	assert.Error(t, err)
}

func TestSettingsRoundTripThroughConsole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := f.console.Settings

	require.NoError(t, store.Load(ctx))
	require.NoError(t, store.Set("siteName", "Ndarehe Admin"))
	require.NoError(t, store.SetBool("maintenanceMode", true))
	require.NoError(t, store.Save(ctx))
	want := store.Form()

	store.Reset()
	require.NoError(t, store.Load(ctx))
	assert.Equal(t, want, store.Form())

	entries, err := f.journal.ListAudit(ctx, database.AuditFilter{Resource: "settings"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "bulk_update", entries[0].Action)
}

func TestDashboardStart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.console.Dashboard.Start(ctx))
	snap := f.console.Dashboard.Snapshot()
	assert.Equal(t, 25, snap.Stats.TotalUsers)
	assert.Len(t, snap.Feed.Items, 10)
	require.NoError(t, f.console.Dashboard.Next(ctx))
	assert.Equal(t, 2, f.console.Dashboard.Page())
}

func TestShowTableAndLocate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookings := f.console.Bookings

	require.NoError(t, bookings.Show(ctx, 1, "", map[string]string{models.FilterServiceType: string(models.ServiceTour)}))
	require.Len(t, f.backend.Requests("/admin/bookings"), 1)
	req, _ := f.backend.LastRequest("/admin/bookings")
	assert.Equal(t, "TOUR", req.Query.Get(models.FilterServiceType))

	sum := bookings.Summary()
	assert.Equal(t, 10, sum.TotalItems)
	assert.Equal(t, 1, sum.Page)
	assert.Equal(t, 1, sum.TotalPages)

	header, rows := bookings.Table()
	assert.Equal(t, "ID", header[0])
	require.Len(t, rows, 10)

	require.NoError(t, bookings.Show(ctx, 1, "", nil))
	require.NoError(t, bookings.Locate(ctx, "bkg-027"))
	assert.Equal(t, 3, bookings.List.View().Query.Page)
	assert.ErrorIs(t, bookings.Locate(ctx, "bkg-999"), listing.ErrNotFound)
}

func TestCreateAndUpdateHelpers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trn := f.console.Transportation
	require.NoError(t, trn.Load(ctx))

	require.NoError(t, trn.Create(ctx, map[string]string{
		"name":         "Kigali Airport Shuttle",
		"capacity":     "12",
		"pricePerTrip": "30000",
	}))
	created := trn.List.Items()[0]
	assert.Equal(t, "Kigali Airport Shuttle", created.Name)

	require.NoError(t, trn.Update(ctx, created.ID, map[string]string{"capacity": "14 seats"}))
	assert.Equal(t, 14, trn.List.Items()[0].Capacity)
	assert.Equal(t, 30000.0, trn.List.Items()[0].PricePerTrip)

	err := trn.Create(ctx, map[string]string{"colour": "blue"})
	assert.Error(t, err)
	assert.False(t, trn.Form.IsOpen())

	err = f.console.Users.Update(ctx, "usr-001", map[string]string{"firstName": "Aline"})
	assert.Error(t, err)
}
