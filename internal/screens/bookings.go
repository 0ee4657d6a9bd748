package screens

import (
	"context"
	"strconv"

	"github.com/sm-junior0/ndarehe-sub001/internal/api"
	"github.com/sm-junior0/ndarehe-sub001/internal/export"
	"github.com/sm-junior0/ndarehe-sub001/internal/forms"
	"github.com/sm-junior0/ndarehe-sub001/internal/models"
)

var bookingColumns = []export.Column[models.Booking]{
	{Header: "ID", Value: func(b models.Booking) string { return b.ID }},
	{Header: "Guest", Value: func(b models.Booking) string { return b.GuestName }},
	{Header: "Email", Value: func(b models.Booking) string { return b.GuestEmail }},
	{Header: "Service Type", Value: func(b models.Booking) string { return string(b.ServiceType) }},
	{Header: "Service", Value: func(b models.Booking) string { return b.ServiceName }},
	{Header: "Start", Value: func(b models.Booking) string { return formatDate(b.StartDate) }},
	{Header: "End", Value: func(b models.Booking) string { return formatDate(b.EndDate) }},
	{Header: "People", Value: func(b models.Booking) string { return strconv.Itoa(b.NumberOfPeople) }},
	{Header: "Amount", Value: func(b models.Booking) string { return formatFloat(b.TotalAmount) }},
	{Header: "Currency", Value: func(b models.Booking) string { return b.Currency }},
	{Header: "Status", Value: func(b models.Booking) string { return string(b.Status) }},
	{Header: "Payment", Value: func(b models.Booking) string { return string(b.PaymentStatus) }},
	{Header: "Created", Value: func(b models.Booking) string { return formatDate(b.CreatedAt) }},
}

func bookingFields() *forms.Fields {
	return forms.NewFields(
		forms.Text("userId", "Guest").Require(),
		forms.Text("serviceType", "Service type").WithDefault(string(models.ServiceAccommodation)),
		forms.Text("serviceId", "Service").Require(),
		forms.Text("startDate", "Start date").Require(),
		forms.Text("endDate", "End date"),
		forms.Int("numberOfPeople", "Number of people").WithDefault("1"),
		forms.Float("totalAmount", "Total amount"),
		forms.Text("currency", "Currency").WithDefault("RWF"),
		forms.Text("specialRequests", "Special requests"),
	)
}

func buildBookingInput(f *forms.Fields) models.BookingInput {
	return models.BookingInput{
		UserID:         f.String("userId"),
		ServiceType:    models.ServiceType(f.String("serviceType")),
		ServiceID:      f.String("serviceId"),
		StartDate:      f.String("startDate"),
		EndDate:        f.String("endDate"),
		NumberOfPeople: f.Int("numberOfPeople"),
		TotalAmount:    f.Float("totalAmount"),
		Currency:       f.String("currency"),
		SpecialNotes:   f.String("specialRequests"),
	}
}

// Bookings is the booking management screen. Filters: status, serviceType.
type Bookings struct {
	*Screen[models.Booking, models.BookingInput]
	client *api.Client
}

func NewBookings(client *api.Client, opts Options) *Bookings {
	spec := formSpec[models.Booking, models.BookingInput]{fields: bookingFields, build: buildBookingInput}
	return &Bookings{
		Screen: newScreen("bookings", "booking", Resource[models.Booking, models.BookingInput](client.Bookings()), bookingColumns, spec, opts, nil),
		client: client,
	}
}

// SetStatus moves one booking to status.
func (b *Bookings) SetStatus(ctx context.Context, id string, status models.BookingStatus) error {
	return b.toggle(ctx, id, "status", "status="+string(status),
		func(ctx context.Context) error {
			_, err := b.client.SetBookingStatus(ctx, id, status)
			return err
		},
		func(bk models.Booking) models.Booking {
			bk.Status = status
			return bk
		})
}
