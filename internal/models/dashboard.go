package models

import (
	"fmt"
	"time"
)

type DashboardStats struct {
	TotalUsers          int     `json:"totalUsers"`
	TotalBookings       int     `json:"totalBookings"`
	TotalAccommodations int     `json:"totalAccommodations"`
	TotalTransportation int     `json:"totalTransportation"`
	TotalTours          int     `json:"totalTours"`
	TotalRevenue        float64 `json:"totalRevenue"`
	PendingBookings     int     `json:"pendingBookings"`
	ConfirmedBookings   int     `json:"confirmedBookings"`
	ActiveUsers         int     `json:"activeUsers"`
	PendingVerification int     `json:"pendingVerifications"`
}

type Activity struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	UserName    string    `json:"userName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (a Activity) RecordID() string {
	return a.ID
}

type ReportKind string

const (
	ReportRevenue  ReportKind = "revenue"
	ReportBookings ReportKind = "bookings"
	ReportActivity ReportKind = "activity"
)

func ParseReportKind(s string) (ReportKind, error) {
	switch k := ReportKind(s); k {
	case ReportRevenue, ReportBookings, ReportActivity:
		return k, nil
	default:
		return "", fmt.Errorf("unknown report %q", s)
	}
}

type ReportParams struct {
	StartDate time.Time
	EndDate   time.Time
	GroupBy   string // day, week, month
}

type ReportRow struct {
	Period string  `json:"period"`
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

type Report struct {
	Kind        ReportKind  `json:"kind"`
	StartDate   string      `json:"startDate"`
	EndDate     string      `json:"endDate"`
	GroupBy     string      `json:"groupBy"`
	Rows        []ReportRow `json:"rows"`
	TotalCount  int         `json:"totalCount"`
	TotalAmount float64     `json:"totalAmount"`
}
