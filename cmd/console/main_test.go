package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sm-junior0/ndarehe-sub001/internal/api"
	"github.com/sm-junior0/ndarehe-sub001/internal/apitest"
)

const testToken = "console-test-token"

type harness struct {
	config  string
	backend *apitest.Backend
	dir     string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := apitest.New(testToken)
	backend.Seed(time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC))
	srv := backend.Serve(t)

	dir := t.TempDir()
	cfg := fmt.Sprintf(`app:
  name: ndarehe-admin
  environment: test
logging:
  level: error
  output: stderr
api:
  base_url: %s
  token: %s
  timeout: 5s
database:
  path: %s
exports:
  path: %s
  cap: 1000
screens:
  users_page_size: 10
`, srv.URL, testToken, filepath.Join(dir, "journal.db"), filepath.Join(dir, "exports"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return &harness{config: path, backend: backend, dir: dir}
}

func (h *harness) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), append([]string{"-config", h.config}, args...), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestListWithFilters(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run(t, "list", "users", "-filter", "role=ADMIN")
	require.NoError(t, err)
	assert.Contains(t, out, "usr-001")
	assert.Contains(t, out, "usr-011")
	assert.Contains(t, out, "page 1 of 1, 3 total")

	req, ok := h.backend.LastRequest("/admin/users")
	require.True(t, ok)
	assert.Equal(t, "ADMIN", req.Query.Get("role"))
	assert.Equal(t, "Bearer "+testToken, req.Header.Get("Authorization"))

	out, stderr, err := h.run(t, "list", "users", "-search", "nobody-matches-this")
	require.NoError(t, err)
	assert.Equal(t, "No users found\n", out)
	assert.NotContains(t, stderr, "[error]")
}

func TestExportWritesFilteredRows(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run(t, "export", "accommodations", "-filter", "isVerified=true")
	require.NoError(t, err)
	assert.Contains(t, out, "(6 rows)")
	assert.Contains(t, out, filepath.Join(h.dir, "exports"))

	out, _, err = h.run(t, "audit", "-resource", "accommodations")
	require.NoError(t, err)
	assert.Contains(t, out, "export")
	assert.Contains(t, out, "ndarehe-admin")
}

func TestCreateSurfacesServerMessage(t *testing.T) {
	h := newHarness(t)

	_, stderr, err := h.run(t, "create", "accommodations", "name=Kivu Sunset Lodge", "pricePerNight=abc", "maxGuests=2")
	require.Error(t, err)
	assert.Equal(t, "pricePerNight must be a number", api.Message(err, ""))
	assert.Contains(t, stderr, "[error] pricePerNight must be a number")

	req, ok := h.backend.LastRequest("/admin/accommodations")
	require.True(t, ok)
	assert.Contains(t, string(req.Body), `"pricePerNight":null`)

	out, stderr, err := h.run(t, "create", "accommodations", "name=Kivu Sunset Lodge", "pricePerNight=95000", "maxGuests=2")
	require.NoError(t, err)
	assert.Contains(t, out, "Kivu Sunset Lodge")
	assert.Contains(t, stderr, "[success] Created accommodation successfully")
}

func TestVerifyAndAudit(t *testing.T) {
	h := newHarness(t)

	_, stderr, err := h.run(t, "verify", "tours", "tour-002", "-off")
	require.NoError(t, err)
	assert.Contains(t, stderr, "[success] Updated successfully")
	assert.False(t, h.backend.Tours()[1].IsVerified)

	out, _, err := h.run(t, "audit", "-resource", "tour")
	require.NoError(t, err)
	assert.Contains(t, out, "tour-002")
	assert.Contains(t, out, "verify")

	_, _, err = h.run(t, "verify", "users", "usr-001")
	assert.EqualError(t, err, "users cannot be verified")
}

func TestStatusCommands(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run(t, "booking-status", "bkg-025", "confirmed")
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", string(h.backend.Bookings()[24].Status))

	_, _, err = h.run(t, "booking-status", "bkg-025", "lost")
	assert.Error(t, err)

	_, _, err = h.run(t, "user-status", "usr-002", "inactive")
	require.NoError(t, err)
	assert.False(t, h.backend.Users()[1].IsActive)

	_, _, err = h.run(t, "ticket-status", "tkt-001", "resolved")
	require.NoError(t, err)
	assert.Equal(t, "RESOLVED", string(h.backend.Tickets()[0].Status))

	h.backend.ResetRequests()
	_, _, err = h.run(t, "ticket-status", "tkt-002", "reopened")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown ticket status")
	assert.Empty(t, h.backend.Requests("/admin/help/tickets"))
	assert.Equal(t, "IN_PROGRESS", string(h.backend.Tickets()[1].Status))
}

func TestSettingsRoundTrip(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run(t, "settings", "siteName=Ndarehe Admin", "maintenanceMode=true")
	require.NoError(t, err)
	assert.Contains(t, out, "Ndarehe Admin")

	out, _, err = h.run(t, "settings")
	require.NoError(t, err)
	assert.Contains(t, out, "Ndarehe Admin")

	_, _, err = h.run(t, "settings", "favouriteColour=blue")
	assert.Error(t, err)
}

func TestReportAndDashboard(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run(t, "report", "bookings", "-from", "2026-04-01", "-to", "2026-05-10", "-group", "month", "-format", "pdf")
	require.NoError(t, err)
	assert.Contains(t, out, "bookings-report-")
	path := strings.TrimSpace(strings.SplitN(strings.TrimPrefix(out, "wrote "), " (", 2)[0])
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	_, _, err = h.run(t, "report", "weather")
	assert.Error(t, err)

	out, _, err = h.run(t, "dashboard", "-page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Users")
	assert.Contains(t, out, "25")
	assert.Contains(t, out, "page 2 of 4, 40 total")

	out, _, err = h.run(t, "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "Payments")
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t)

	_, stderr, err := h.run(t)
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr, "usage: console")

	_, stderr, err = h.run(t, "launch")
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr, `unknown command "launch"`)

	_, _, err = h.run(t, "list", "planets")
	assert.EqualError(t, err, `unknown screen "planets"`)

	_, _, err = h.run(t, "create", "users", "firstName")
	assert.Error(t, err)
}
