package models

const DefaultPageSize = 10

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingRefunded  BookingStatus = "REFUNDED"
)

var BookingStatuses = []BookingStatus{
	BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted, BookingRefunded,
}

func (s BookingStatus) Valid() bool {
	for _, known := range BookingStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

type UserRole string

const (
	RoleUser     UserRole = "USER"
	RoleAdmin    UserRole = "ADMIN"
	RoleProvider UserRole = "PROVIDER"
)

type ServiceType string

const (
	ServiceAccommodation  ServiceType = "ACCOMMODATION"
	ServiceTransportation ServiceType = "TRANSPORTATION"
	ServiceTour           ServiceType = "TOUR"
)

type TicketStatus string

const (
	TicketOpen       TicketStatus = "OPEN"
	TicketInProgress TicketStatus = "IN_PROGRESS"
	TicketResolved   TicketStatus = "RESOLVED"
	TicketClosed     TicketStatus = "CLOSED"
)

var TicketStatuses = []TicketStatus{TicketOpen, TicketInProgress, TicketResolved, TicketClosed}

func (s TicketStatus) Valid() bool {
	for _, known := range TicketStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type TicketPriority string

const (
	PriorityLow    TicketPriority = "LOW"
	PriorityMedium TicketPriority = "MEDIUM"
	PriorityHigh   TicketPriority = "HIGH"
	PriorityUrgent TicketPriority = "URGENT"
)

// Filter field names understood by the admin API.
const (
	FilterRole        = "role"
	FilterIsActive    = "isActive"
	FilterIsVerified  = "isVerified"
	FilterStatus      = "status"
	FilterServiceType = "serviceType"
	FilterType        = "type"
	FilterCategory    = "category"
	FilterPriority    = "priority"
)
