package models

import "time"

type Accommodation struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Type          string    `json:"type"`
	Category      string    `json:"category"`
	LocationID    string    `json:"locationId"`
	LocationName  string    `json:"locationName,omitempty"`
	Address       string    `json:"address"`
	PricePerNight float64   `json:"pricePerNight"`
	Currency      string    `json:"currency"`
	MaxGuests     int       `json:"maxGuests"`
	Bedrooms      int       `json:"bedrooms"`
	Bathrooms     int       `json:"bathrooms"`
	Amenities     []string  `json:"amenities"`
	Images        []string  `json:"images"`
	Rating        float64   `json:"rating,omitempty"`
	IsVerified    bool      `json:"isVerified"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (a Accommodation) RecordID() string {
	return a.ID
}

type AccommodationInput struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Type          string   `json:"type"`
	Category      string   `json:"category"`
	LocationID    string   `json:"locationId"`
	Address       string   `json:"address"`
	PricePerNight Number   `json:"pricePerNight"`
	Currency      string   `json:"currency"`
	MaxGuests     Number   `json:"maxGuests"`
	Bedrooms      Number   `json:"bedrooms"`
	Bathrooms     Number   `json:"bathrooms"`
	Amenities     []string `json:"amenities"`
	Images        []string `json:"images"`
}

type Transportation struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Type         string    `json:"type"`
	VehicleType  string    `json:"vehicleType"`
	LocationID   string    `json:"locationId"`
	LocationName string    `json:"locationName,omitempty"`
	Capacity     int       `json:"capacity"`
	PricePerTrip float64   `json:"pricePerTrip"`
	PricePerHour float64   `json:"pricePerHour,omitempty"`
	Currency     string    `json:"currency"`
	Amenities    []string  `json:"amenities"`
	Images       []string  `json:"images"`
	IsVerified   bool      `json:"isVerified"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (t Transportation) RecordID() string {
	return t.ID
}

type TransportationInput struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Type         string   `json:"type"`
	VehicleType  string   `json:"vehicleType"`
	LocationID   string   `json:"locationId"`
	Capacity     Number   `json:"capacity"`
	PricePerTrip Number   `json:"pricePerTrip"`
	PricePerHour Number   `json:"pricePerHour"`
	Currency     string   `json:"currency"`
	Amenities    []string `json:"amenities"`
	Images       []string `json:"images"`
}

type Tour struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Type            string    `json:"type"`
	Category        string    `json:"category"`
	LocationID      string    `json:"locationId"`
	LocationName    string    `json:"locationName,omitempty"`
	Duration        int       `json:"duration"`
	MinParticipants int       `json:"minParticipants"`
	MaxParticipants int       `json:"maxParticipants"`
	PricePerPerson  float64   `json:"pricePerPerson"`
	Currency        string    `json:"currency"`
	Itinerary       []string  `json:"itinerary"`
	Includes        []string  `json:"includes"`
	Excludes        []string  `json:"excludes"`
	Images          []string  `json:"images"`
	IsVerified      bool      `json:"isVerified"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (t Tour) RecordID() string {
	return t.ID
}

type TourInput struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Type            string   `json:"type"`
	Category        string   `json:"category"`
	LocationID      string   `json:"locationId"`
	Duration        Number   `json:"duration"`
	MinParticipants Number   `json:"minParticipants"`
	MaxParticipants Number   `json:"maxParticipants"`
	PricePerPerson  Number   `json:"pricePerPerson"`
	Currency        string   `json:"currency"`
	Itinerary       []string `json:"itinerary"`
	Includes        []string `json:"includes"`
	Excludes        []string `json:"excludes"`
	Images          []string `json:"images"`
}
