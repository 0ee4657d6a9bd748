package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		ObserveAPI("GET", "users", "ok", 20*time.Millisecond)
		IncPoll("error")
		IncNotice("warn")
	})
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(staleResponses.WithLabelValues("bookings"))
	IncStale("bookings")
	assert.Equal(t, before+1, testutil.ToFloat64(staleResponses.WithLabelValues("bookings")))

	beforeRows := testutil.ToFloat64(exportRows.WithLabelValues("users", "csv"))
	AddExportRows("users", "csv", 42)
	assert.Equal(t, beforeRows+42, testutil.ToFloat64(exportRows.WithLabelValues("users", "csv")))
}
