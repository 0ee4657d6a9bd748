package forms

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sm-junior0/ndarehe-sub001/internal/api"
	"github.com/sm-junior0/ndarehe-sub001/internal/events"
	"github.com/sm-junior0/ndarehe-sub001/internal/models"
)

func accommodationFields() *Fields {
	return NewFields(
		Text("name", "Name").Require(),
		Text("type", "Type").WithDefault("HOTEL"),
		Float("pricePerNight", "Price per night"),
		Int("maxGuests", "Max guests"),
		List("amenities", "Amenities"),
		Bool("isActive", "Active").WithDefault("true"),
	)
}

func buildAccommodation(f *Fields) models.AccommodationInput {
	return models.AccommodationInput{
		Name:          f.String("name"),
		Type:          f.String("type"),
		PricePerNight: f.Float("pricePerNight"),
		MaxGuests:     f.Int("maxGuests"),
		Amenities:     f.List("amenities"),
	}
}

type recorder struct {
	calls  []models.AccommodationInput
	ids    []string
	err    error
	refets int
}

func (r *recorder) submit(_ context.Context, id string, in models.AccommodationInput) (string, error) {
	r.calls = append(r.calls, in)
	r.ids = append(r.ids, id)
	if r.err != nil {
		return "", r.err
	}
	if id == "" {
		return "acc-1001", nil
	}
	return id, nil
}

func (r *recorder) refetch(context.Context) error {
	r.refets++
	return nil
}

func TestFieldsAccessors(t *testing.T) {
	f := accommodationFields()
	assert.Equal(t, "HOTEL", f.String("type"))
	assert.True(t, f.Bool("isActive"))

	require.NoError(t, f.Set("isActive", "no"))
	assert.False(t, f.Bool("isActive"))
	require.NoError(t, f.Set("isActive", "on"))
	assert.True(t, f.Bool("isActive"))

	require.NoError(t, f.Set("amenities", "WiFi, Pool"))
	assert.Equal(t, []string{"WiFi", "Pool"}, f.List("amenities"))

	assert.Error(t, f.Set("bogus", "x"))

	f.Reset()
	assert.Empty(t, f.String("amenities"))
}

func TestFieldsValidate(t *testing.T) {
	f := accommodationFields()
	require.NoError(t, f.Set("pricePerNight", "abc"))
	require.NoError(t, f.Set("maxGuests", "four"))

	err := f.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 3)
	assert.Equal(t, "name", verr.Errors[0].Field)
	assert.Equal(t, "pricePerNight", verr.Errors[1].Field)
	assert.Equal(t, "maxGuests", verr.Errors[2].Field)
	assert.Contains(t, err.Error(), "Name is required")

	require.NoError(t, f.Set("name", "Lodge"))
	require.NoError(t, f.Set("pricePerNight", "12.5"))
	require.NoError(t, f.Set("maxGuests", "4"))
	assert.NoError(t, f.Validate())
}

func TestModalSubmitsNaNWhenNotStrict(t *testing.T) {
	r := &recorder{}
	m := NewModal("accommodations", accommodationFields(), buildAccommodation, r.submit, WithRefetch[models.AccommodationInput](r.refetch))

	m.Open()
	require.NoError(t, m.Set("name", "Kivu Lodge"))
	require.NoError(t, m.Set("pricePerNight", "abc"))
	require.NoError(t, m.Set("maxGuests", "4"))
	require.NoError(t, m.Submit(context.Background()))

	require.Len(t, r.calls, 1)
	assert.True(t, r.calls[0].PricePerNight.IsNaN())

	body, err := json.Marshal(r.calls[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), `"pricePerNight":null`)
	assert.Contains(t, string(body), `"maxGuests":4`)
}

func TestModalStrictBlocksNaN(t *testing.T) {
	r := &recorder{}
	m := NewModal("accommodations", accommodationFields(), buildAccommodation, r.submit, WithStrictNumbers[models.AccommodationInput](true))

	m.Open()
	require.NoError(t, m.Set("name", "Kivu Lodge"))
	require.NoError(t, m.Set("pricePerNight", "abc"))

	err := m.Submit(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, r.calls)
	assert.True(t, m.IsOpen())
	assert.Equal(t, "Price per night must be a number", m.Message())
}

func TestModalRequiresRequiredFields(t *testing.T) {
	r := &recorder{}
	m := NewModal("accommodations", accommodationFields(), buildAccommodation, r.submit)
	m.Open()

	assert.Error(t, m.Submit(context.Background()))
	assert.Empty(t, r.calls)
	assert.True(t, m.IsOpen())
}

func TestModalSuccessClosesResetsAndRefetches(t *testing.T) {
	bus := events.NewEventBus()
	var mutations []events.MutationPayload
	bus.Subscribe(events.EventRecordMutated, func(e *events.Event) error {
		var p events.MutationPayload
		err := json.Unmarshal(e.Payload, &p)
		mutations = append(mutations, p)
		return err
	})

	r := &recorder{}
	m := NewModal("accommodations", accommodationFields(), buildAccommodation, r.submit,
		WithRefetch[models.AccommodationInput](r.refetch),
		WithModalPublisher[models.AccommodationInput](bus),
	)
	m.Open()
	require.NoError(t, m.Set("name", "Kivu Lodge"))
	require.NoError(t, m.Submit(context.Background()))

	assert.False(t, m.IsOpen())
	assert.Empty(t, m.Message())
	assert.Empty(t, m.Values()["name"])
	assert.Equal(t, 1, r.refets)
	require.Len(t, mutations, 1)
	assert.Equal(t, events.MutationPayload{Resource: "accommodations", RecordID: "acc-1001", Action: "create"}, mutations[0])
}

func TestModalFailureStaysOpen(t *testing.T) {
	r := &recorder{err: &api.HTTPError{Status: 400, Message: "pricePerNight must be a number"}}
	m := NewModal("accommodations", accommodationFields(), buildAccommodation, r.submit, WithRefetch[models.AccommodationInput](r.refetch))

	m.Open()
	require.NoError(t, m.Set("name", "Kivu Lodge"))
	require.NoError(t, m.Set("pricePerNight", "abc"))
	require.Error(t, m.Submit(context.Background()))

	assert.True(t, m.IsOpen())
	assert.Equal(t, "pricePerNight must be a number", m.Message())
	assert.Equal(t, "Kivu Lodge", m.Values()["name"])
	assert.Zero(t, r.refets)

	r.err = errors.New("connection reset")
	require.Error(t, m.Submit(context.Background()))
	assert.Equal(t, "Failed to create accommodations", m.Message())
}

func TestModalEdit(t *testing.T) {
	r := &recorder{}
	m := NewModal("accommodations", accommodationFields(), buildAccommodation, r.submit)

	m.Edit("acc-007", map[string]string{"name": "Virunga Lodge", "pricePerNight": "90000", "unknown": "x"})
	assert.Equal(t, "acc-007", m.EditingID())
	assert.Equal(t, 90000.0, m.Preview().PricePerNight.Float())
	require.NoError(t, m.Submit(context.Background()))
	assert.Equal(t, []string{"acc-007"}, r.ids)
	assert.Empty(t, m.EditingID())
}

func TestModalClosed(t *testing.T) {
	r := &recorder{}
	m := NewModal("accommodations", accommodationFields(), buildAccommodation, r.submit)
	assert.ErrorIs(t, m.Set("name", "x"), ErrNotOpen)
	assert.ErrorIs(t, m.Submit(context.Background()), ErrNotOpen)

	m.Open()
	m.Cancel()
	assert.False(t, m.IsOpen())
}
