package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sm-junior0/ndarehe-sub001/internal/dashboard"
	"github.com/sm-junior0/ndarehe-sub001/internal/events"
	"github.com/sm-junior0/ndarehe-sub001/internal/listing"
)

// printSink writes notices as one line each, the terminal's toast.
type printSink struct {
	w io.Writer
}

func (s *printSink) Handle(n events.Notice) error {
	_, err := fmt.Fprintf(s.w, "[%s] %s\n", n.Level, n.Message)
	return err
}

func printTable(w io.Writer, header []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

func printScreen(w io.Writer, s screen) {
	sum := s.Summary()
	switch {
	case sum.State == listing.StateErrored:
		fmt.Fprintln(w, sum.Message)
		return
	case sum.TotalItems == 0:
		fmt.Fprintln(w, sum.Message)
		return
	}
	header, rows := s.Table()
	printTable(w, header, rows)
	fmt.Fprintln(w, footer(sum))
}

func footer(sum listing.Summary) string {
	return fmt.Sprintf("page %d of %d, %d total", sum.Page, sum.TotalPages, sum.TotalItems)
}

func printDashboard(w io.Writer, snap dashboard.Snapshot) {
	if snap.StatsErr == nil {
		st := snap.Stats
		printTable(w, []string{"Metric", "Value"}, [][]string{
			{"Users", strconv.Itoa(st.TotalUsers)},
			{"Active users", strconv.Itoa(st.ActiveUsers)},
			{"Bookings", strconv.Itoa(st.TotalBookings)},
			{"Pending bookings", strconv.Itoa(st.PendingBookings)},
			{"Confirmed bookings", strconv.Itoa(st.ConfirmedBookings)},
			{"Accommodations", strconv.Itoa(st.TotalAccommodations)},
			{"Transportation", strconv.Itoa(st.TotalTransportation)},
			{"Tours", strconv.Itoa(st.TotalTours)},
			{"Pending verifications", strconv.Itoa(st.PendingVerification)},
			{"Revenue", strconv.FormatFloat(st.TotalRevenue, 'f', 0, 64)},
		})
		fmt.Fprintln(w)
	}
	if snap.FeedErr != nil {
		return
	}

	rows := make([][]string, len(snap.Feed.Items))
	for i, act := range snap.Feed.Items {
		rows[i] = []string{act.CreatedAt.Format(time.RFC3339), act.Type, act.Description}
	}
	printTable(w, []string{"When", "Type", "Activity"}, rows)
	fmt.Fprintln(w, footer(listing.Summary{Page: snap.Feed.Page, TotalPages: snap.Feed.TotalPages, TotalItems: snap.Feed.TotalItems}))
}
