package models

import "time"

type Booking struct {
	ID             string        `json:"id"`
	UserID         string        `json:"userId"`
	GuestName      string        `json:"guestName"`
	GuestEmail     string        `json:"guestEmail"`
	ServiceType    ServiceType   `json:"serviceType"`
	ServiceID      string        `json:"serviceId"`
	ServiceName    string        `json:"serviceName"`
	StartDate      time.Time     `json:"startDate"`
	EndDate        time.Time     `json:"endDate,omitempty"`
	NumberOfPeople int           `json:"numberOfPeople"`
	TotalAmount    float64       `json:"totalAmount"`
	Currency       string        `json:"currency"`
	Status         BookingStatus `json:"status"`
	PaymentStatus  PaymentStatus `json:"paymentStatus"`
	SpecialNotes   string        `json:"specialRequests,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
}

func (b Booking) RecordID() string {
	return b.ID
}

type BookingInput struct {
	UserID         string      `json:"userId"`
	ServiceType    ServiceType `json:"serviceType"`
	ServiceID      string      `json:"serviceId"`
	StartDate      string      `json:"startDate"`
	EndDate        string      `json:"endDate,omitempty"`
	NumberOfPeople Number      `json:"numberOfPeople"`
	TotalAmount    Number      `json:"totalAmount"`
	Currency       string      `json:"currency"`
	SpecialNotes   string      `json:"specialRequests,omitempty"`
}
