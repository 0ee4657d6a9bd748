package screens

import (
	"context"
	"strconv"

	"github.com/sm-junior0/ndarehe-sub001/internal/api"
	"github.com/sm-junior0/ndarehe-sub001/internal/export"
	"github.com/sm-junior0/ndarehe-sub001/internal/forms"
	"github.com/sm-junior0/ndarehe-sub001/internal/models"
)

// Verifier is implemented by catalog resources.
type Verifier[T any] interface {
	Verify(ctx context.Context, id string, verified bool) (T, error)
}

// Catalog is a provider listing screen with full CRUD and verification.
type Catalog[T models.Record, In any] struct {
	*Screen[T, In]
	verifier    Verifier[T]
	setVerified func(T, bool) T
}

func newCatalog[T models.Record, In any](name, entity string, res api.Resource[T, In], columns []export.Column[T], spec formSpec[T, In], setVerified func(T, bool) T, opts Options) *Catalog[T, In] {
	spec.editable = true
	return &Catalog[T, In]{
		Screen:      newScreen[T, In](name, entity, res, columns, spec, opts, nil),
		verifier:    res,
		setVerified: setVerified,
	}
}

// SetVerified flips isVerified on one record.
func (c *Catalog[T, In]) SetVerified(ctx context.Context, id string, verified bool) error {
	return c.toggle(ctx, id, "verify", "isVerified="+formatBool(verified),
		func(ctx context.Context) error {
			_, err := c.verifier.Verify(ctx, id, verified)
			return err
		},
		func(item T) T {
			return c.setVerified(item, verified)
		})
}

type (
	Accommodations = Catalog[models.Accommodation, models.AccommodationInput]
	Transportation = Catalog[models.Transportation, models.TransportationInput]
	Tours          = Catalog[models.Tour, models.TourInput]
)

var accommodationColumns = []export.Column[models.Accommodation]{
	{Header: "ID", Value: func(a models.Accommodation) string { return a.ID }},
	{Header: "Name", Value: func(a models.Accommodation) string { return a.Name }},
	{Header: "Type", Value: func(a models.Accommodation) string { return a.Type }},
	{Header: "Category", Value: func(a models.Accommodation) string { return a.Category }},
	{Header: "Location", Value: func(a models.Accommodation) string { return a.LocationName }},
	{Header: "Address", Value: func(a models.Accommodation) string { return a.Address }},
	{Header: "Price per Night", Value: func(a models.Accommodation) string { return formatFloat(a.PricePerNight) }},
	{Header: "Currency", Value: func(a models.Accommodation) string { return a.Currency }},
	{Header: "Max Guests", Value: func(a models.Accommodation) string { return strconv.Itoa(a.MaxGuests) }},
	{Header: "Rating", Value: func(a models.Accommodation) string { return formatFloat(a.Rating) }},
	{Header: "Verified", Value: func(a models.Accommodation) string { return formatBool(a.IsVerified) }},
	{Header: "Active", Value: func(a models.Accommodation) string { return formatBool(a.IsActive) }},
}

func accommodationFields() *forms.Fields {
	return forms.NewFields(
		forms.Text("name", "Name").Require(),
		forms.Text("description", "Description"),
		forms.Text("type", "Type").WithDefault("HOTEL"),
		forms.Text("category", "Category").WithDefault("STANDARD"),
		forms.Text("locationId", "Location"),
		forms.Text("address", "Address"),
		forms.Float("pricePerNight", "Price per night"),
		forms.Text("currency", "Currency").WithDefault("RWF"),
		forms.Int("maxGuests", "Max guests"),
		forms.Int("bedrooms", "Bedrooms"),
		forms.Int("bathrooms", "Bathrooms"),
		forms.List("amenities", "Amenities"),
		forms.List("images", "Images"),
	)
}

func buildAccommodationInput(f *forms.Fields) models.AccommodationInput {
	return models.AccommodationInput{
		Name:          f.String("name"),
		Description:   f.String("description"),
		Type:          f.String("type"),
		Category:      f.String("category"),
		LocationID:    f.String("locationId"),
		Address:       f.String("address"),
		PricePerNight: f.Float("pricePerNight"),
		Currency:      f.String("currency"),
		MaxGuests:     f.Int("maxGuests"),
		Bedrooms:      f.Int("bedrooms"),
		Bathrooms:     f.Int("bathrooms"),
		Amenities:     f.List("amenities"),
		Images:        f.List("images"),
	}
}

func accommodationValues(a models.Accommodation) map[string]string {
	return map[string]string{
		"name":          a.Name,
		"description":   a.Description,
		"type":          a.Type,
		"category":      a.Category,
		"locationId":    a.LocationID,
		"address":       a.Address,
		"pricePerNight": formatFloat(a.PricePerNight),
		"currency":      a.Currency,
		"maxGuests":     strconv.Itoa(a.MaxGuests),
		"bedrooms":      strconv.Itoa(a.Bedrooms),
		"bathrooms":     strconv.Itoa(a.Bathrooms),
		"amenities":     forms.JoinList(a.Amenities),
		"images":        forms.JoinList(a.Images),
	}
}

func NewAccommodations(client *api.Client, opts Options) *Accommodations {
	spec := formSpec[models.Accommodation, models.AccommodationInput]{
		fields: accommodationFields,
		build:  buildAccommodationInput,
		values: accommodationValues,
	}
	return newCatalog("accommodations", "accommodation", client.Accommodations(), accommodationColumns, spec,
		func(a models.Accommodation, v bool) models.Accommodation {
			a.IsVerified = v
			return a
		}, opts)
}

var transportationColumns = []export.Column[models.Transportation]{
	{Header: "ID", Value: func(t models.Transportation) string { return t.ID }},
	{Header: "Name", Value: func(t models.Transportation) string { return t.Name }},
	{Header: "Type", Value: func(t models.Transportation) string { return t.Type }},
	{Header: "Vehicle", Value: func(t models.Transportation) string { return t.VehicleType }},
	{Header: "Location", Value: func(t models.Transportation) string { return t.LocationName }},
	{Header: "Capacity", Value: func(t models.Transportation) string { return strconv.Itoa(t.Capacity) }},
	{Header: "Price per Trip", Value: func(t models.Transportation) string { return formatFloat(t.PricePerTrip) }},
	{Header: "Price per Hour", Value: func(t models.Transportation) string { return formatFloat(t.PricePerHour) }},
	{Header: "Currency", Value: func(t models.Transportation) string { return t.Currency }},
	{Header: "Verified", Value: func(t models.Transportation) string { return formatBool(t.IsVerified) }},
	{Header: "Active", Value: func(t models.Transportation) string { return formatBool(t.IsActive) }},
}

func transportationFields() *forms.Fields {
	return forms.NewFields(
		forms.Text("name", "Name").Require(),
		forms.Text("description", "Description"),
		forms.Text("type", "Type").WithDefault("AIRPORT_PICKUP"),
		forms.Text("vehicleType", "Vehicle type").WithDefault("SEDAN"),
		forms.Text("locationId", "Location"),
		forms.Int("capacity", "Capacity"),
		forms.Float("pricePerTrip", "Price per trip"),
		forms.Float("pricePerHour", "Price per hour"),
		forms.Text("currency", "Currency").WithDefault("RWF"),
		forms.List("amenities", "Amenities"),
		forms.List("images", "Images"),
	)
}

func buildTransportationInput(f *forms.Fields) models.TransportationInput {
	return models.TransportationInput{
		Name:         f.String("name"),
		Description:  f.String("description"),
		Type:         f.String("type"),
		VehicleType:  f.String("vehicleType"),
		LocationID:   f.String("locationId"),
		Capacity:     f.Int("capacity"),
		PricePerTrip: f.Float("pricePerTrip"),
		PricePerHour: f.Float("pricePerHour"),
		Currency:     f.String("currency"),
		Amenities:    f.List("amenities"),
		Images:       f.List("images"),
	}
}

func transportationValues(t models.Transportation) map[string]string {
	return map[string]string{
		"name":         t.Name,
		"description":  t.Description,
		"type":         t.Type,
		"vehicleType":  t.VehicleType,
		"locationId":   t.LocationID,
		"capacity":     strconv.Itoa(t.Capacity),
		"pricePerTrip": formatFloat(t.PricePerTrip),
		"pricePerHour": formatFloat(t.PricePerHour),
		"currency":     t.Currency,
		"amenities":    forms.JoinList(t.Amenities),
		"images":       forms.JoinList(t.Images),
	}
}

func NewTransportation(client *api.Client, opts Options) *Transportation {
	spec := formSpec[models.Transportation, models.TransportationInput]{
		fields: transportationFields,
		build:  buildTransportationInput,
		values: transportationValues,
	}
	return newCatalog("transportation", "transportation", client.Transportation(), transportationColumns, spec,
		func(t models.Transportation, v bool) models.Transportation {
			t.IsVerified = v
			return t
		}, opts)
}

var tourColumns = []export.Column[models.Tour]{
	{Header: "ID", Value: func(t models.Tour) string { return t.ID }},
	{Header: "Name", Value: func(t models.Tour) string { return t.Name }},
	{Header: "Type", Value: func(t models.Tour) string { return t.Type }},
	{Header: "Category", Value: func(t models.Tour) string { return t.Category }},
	{Header: "Location", Value: func(t models.Tour) string { return t.LocationName }},
	{Header: "Duration (h)", Value: func(t models.Tour) string { return strconv.Itoa(t.Duration) }},
	{Header: "Participants", Value: func(t models.Tour) string {
		return strconv.Itoa(t.MinParticipants) + "-" + strconv.Itoa(t.MaxParticipants)
	}},
	{Header: "Price per Person", Value: func(t models.Tour) string { return formatFloat(t.PricePerPerson) }},
	{Header: "Currency", Value: func(t models.Tour) string { return t.Currency }},
	{Header: "Verified", Value: func(t models.Tour) string { return formatBool(t.IsVerified) }},
	{Header: "Active", Value: func(t models.Tour) string { return formatBool(t.IsActive) }},
}

func tourFields() *forms.Fields {
	return forms.NewFields(
		forms.Text("name", "Name").Require(),
		forms.Text("description", "Description"),
		forms.Text("type", "Type").WithDefault("WILDLIFE"),
		forms.Text("category", "Category").WithDefault("NATURE"),
		forms.Text("locationId", "Location"),
		forms.Int("duration", "Duration (hours)"),
		forms.Int("minParticipants", "Min participants").WithDefault("1"),
		forms.Int("maxParticipants", "Max participants"),
		forms.Float("pricePerPerson", "Price per person"),
		forms.Text("currency", "Currency").WithDefault("RWF"),
		forms.List("itinerary", "Itinerary"),
		forms.List("includes", "Includes"),
		forms.List("excludes", "Excludes"),
		forms.List("images", "Images"),
	)
}

func buildTourInput(f *forms.Fields) models.TourInput {
	return models.TourInput{
		Name:            f.String("name"),
		Description:     f.String("description"),
		Type:            f.String("type"),
		Category:        f.String("category"),
		LocationID:      f.String("locationId"),
		Duration:        f.Int("duration"),
		MinParticipants: f.Int("minParticipants"),
		MaxParticipants: f.Int("maxParticipants"),
		PricePerPerson:  f.Float("pricePerPerson"),
		Currency:        f.String("currency"),
		Itinerary:       f.List("itinerary"),
		Includes:        f.List("includes"),
		Excludes:        f.List("excludes"),
		Images:          f.List("images"),
	}
}

func tourValues(t models.Tour) map[string]string {
	return map[string]string{
		"name":            t.Name,
		"description":     t.Description,
		"type":            t.Type,
		"category":        t.Category,
		"locationId":      t.LocationID,
		"duration":        strconv.Itoa(t.Duration),
		"minParticipants": strconv.Itoa(t.MinParticipants),
		"maxParticipants": strconv.Itoa(t.MaxParticipants),
		"pricePerPerson":  formatFloat(t.PricePerPerson),
		"currency":        t.Currency,
		"itinerary":       forms.JoinList(t.Itinerary),
		"includes":        forms.JoinList(t.Includes),
		"excludes":        forms.JoinList(t.Excludes),
		"images":          forms.JoinList(t.Images),
	}
}

func NewTours(client *api.Client, opts Options) *Tours {
	spec := formSpec[models.Tour, models.TourInput]{
		fields: tourFields,
		build:  buildTourInput,
		values: tourValues,
	}
	return newCatalog("tours", "tour", client.Tours(), tourColumns, spec,
		func(t models.Tour, v bool) models.Tour {
			t.IsVerified = v
			return t
		}, opts)
}
