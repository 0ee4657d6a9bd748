package apitest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sm-junior0/ndarehe-sub001/internal/models"
)

func (b *Backend) newID(prefix string) string {
	b.nextID++
	return fmt.Sprintf("%s-%04d", prefix, b.nextID)
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func number(field string, n models.Number) (float64, error) {
	if n.IsNaN() {
		return 0, fmt.Errorf("%s must be a number", field)
	}
	return n.Float(), nil
}

func buildUser(b *Backend, in models.UserInput, existing *models.User) (models.User, error) {
	if err := required("email", in.Email); err != nil {
		return models.User{}, err
	}
	if err := required("firstName", in.FirstName); err != nil {
		return models.User{}, err
	}
	for _, u := range b.users.items {
		if strings.EqualFold(u.Email, in.Email) && (existing == nil || u.ID != existing.ID) {
			return models.User{}, errors.New("User with this email already exists")
		}
	}
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	u := models.User{
		ID:        b.newID("usr"),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Role:      role,
		IsActive:  in.IsActive,
		CreatedAt: b.now(),
	}
	if existing != nil {
		u.ID, u.CreatedAt, u.IsVerified = existing.ID, existing.CreatedAt, existing.IsVerified
	}
	return u, nil
}

func buildBooking(b *Backend, in models.BookingInput, existing *models.Booking) (models.Booking, error) {
	if err := required("serviceId", in.ServiceID); err != nil {
		return models.Booking{}, err
	}
	start, err := time.Parse("2006-01-02", in.StartDate)
	if err != nil {
		return models.Booking{}, errors.New("startDate must be YYYY-MM-DD")
	}
	people, err := number("numberOfPeople", in.NumberOfPeople)
	if err != nil {
		return models.Booking{}, err
	}
	amount, err := number("totalAmount", in.TotalAmount)
	if err != nil {
		return models.Booking{}, err
	}

	bk := models.Booking{
		ID:             b.newID("bkg"),
		UserID:         in.UserID,
		ServiceType:    in.ServiceType,
		ServiceID:      in.ServiceID,
		ServiceName:    b.serviceName(in.ServiceType, in.ServiceID),
		StartDate:      start,
		NumberOfPeople: int(people),
		TotalAmount:    amount,
		Currency:       in.Currency,
		Status:         models.BookingPending,
		PaymentStatus:  models.PaymentPending,
		SpecialNotes:   in.SpecialNotes,
		CreatedAt:      b.now(),
	}
	if in.EndDate != "" {
		end, err := time.Parse("2006-01-02", in.EndDate)
		if err != nil {
			return models.Booking{}, errors.New("endDate must be YYYY-MM-DD")
		}
		bk.EndDate = end
	}
	for _, u := range b.users.items {
		if u.ID == in.UserID {
			bk.GuestName, bk.GuestEmail = u.FullName(), u.Email
		}
	}
	if existing != nil {
		bk.ID, bk.CreatedAt, bk.Status, bk.PaymentStatus = existing.ID, existing.CreatedAt, existing.Status, existing.PaymentStatus
	}
	return bk, nil
}

func (b *Backend) serviceName(kind models.ServiceType, id string) string {
	switch kind {
	case models.ServiceAccommodation:
		if i := b.accommodations.index(id); i >= 0 {
			return b.accommodations.items[i].Name
		}
	case models.ServiceTransportation:
		if i := b.transportation.index(id); i >= 0 {
			return b.transportation.items[i].Name
		}
	case models.ServiceTour:
		if i := b.tours.index(id); i >= 0 {
			return b.tours.items[i].Name
		}
	}
	return ""
}

func buildAccommodation(b *Backend, in models.AccommodationInput, existing *models.Accommodation) (models.Accommodation, error) {
	if err := required("name", in.Name); err != nil {
		return models.Accommodation{}, err
	}
	price, err := number("pricePerNight", in.PricePerNight)
	if err != nil {
		return models.Accommodation{}, err
	}
	guests, err := number("maxGuests", in.MaxGuests)
	if err != nil {
		return models.Accommodation{}, err
	}

	a := models.Accommodation{
		ID:            b.newID("acc"),
		Name:          in.Name,
		Description:   in.Description,
		Type:          in.Type,
		Category:      in.Category,
		LocationID:    in.LocationID,
		Address:       in.Address,
		PricePerNight: price,
		Currency:      in.Currency,
		MaxGuests:     int(guests),
		Bedrooms:      in.Bedrooms.Int(),
		Bathrooms:     in.Bathrooms.Int(),
		Amenities:     in.Amenities,
		Images:        in.Images,
		IsActive:      true,
		CreatedAt:     b.now(),
	}
	if existing != nil {
		a.ID, a.CreatedAt, a.IsVerified, a.IsActive = existing.ID, existing.CreatedAt, existing.IsVerified, existing.IsActive
		a.LocationName, a.Rating = existing.LocationName, existing.Rating
	}
	return a, nil
}

func buildTransportation(b *Backend, in models.TransportationInput, existing *models.Transportation) (models.Transportation, error) {
	if err := required("name", in.Name); err != nil {
		return models.Transportation{}, err
	}
	capacity, err := number("capacity", in.Capacity)
	if err != nil {
		return models.Transportation{}, err
	}
	perTrip, err := number("pricePerTrip", in.PricePerTrip)
	if err != nil {
		return models.Transportation{}, err
	}

	t := models.Transportation{
		ID:           b.newID("trn"),
		Name:         in.Name,
		Description:  in.Description,
		Type:         in.Type,
		VehicleType:  in.VehicleType,
		LocationID:   in.LocationID,
		Capacity:     int(capacity),
		PricePerTrip: perTrip,
		Currency:     in.Currency,
		Amenities:    in.Amenities,
		Images:       in.Images,
		IsActive:     true,
		CreatedAt:    b.now(),
	}
	if !in.PricePerHour.IsNaN() {
		t.PricePerHour = in.PricePerHour.Float()
	}
	if existing != nil {
		t.ID, t.CreatedAt, t.IsVerified, t.IsActive = existing.ID, existing.CreatedAt, existing.IsVerified, existing.IsActive
		t.LocationName = existing.LocationName
	}
	return t, nil
}

func buildTour(b *Backend, in models.TourInput, existing *models.Tour) (models.Tour, error) {
	if err := required("name", in.Name); err != nil {
		return models.Tour{}, err
	}
	price, err := number("pricePerPerson", in.PricePerPerson)
	if err != nil {
		return models.Tour{}, err
	}
	maxP, err := number("maxParticipants", in.MaxParticipants)
	if err != nil {
		return models.Tour{}, err
	}

	t := models.Tour{
		ID:              b.newID("tour"),
		Name:            in.Name,
		Description:     in.Description,
		Type:            in.Type,
		Category:        in.Category,
		LocationID:      in.LocationID,
		Duration:        in.Duration.Int(),
		MinParticipants: in.MinParticipants.Int(),
		MaxParticipants: int(maxP),
		PricePerPerson:  price,
		Currency:        in.Currency,
		Itinerary:       in.Itinerary,
		Includes:        in.Includes,
		Excludes:        in.Excludes,
		Images:          in.Images,
		IsActive:        true,
		CreatedAt:       b.now(),
	}
	if existing != nil {
		t.ID, t.CreatedAt, t.IsVerified, t.IsActive = existing.ID, existing.CreatedAt, existing.IsVerified, existing.IsActive
		t.LocationName = existing.LocationName
	}
	return t, nil
}

func buildArticle(b *Backend, in models.HelpArticleInput, existing *models.HelpArticle) (models.HelpArticle, error) {
	if err := required("title", in.Title); err != nil {
		return models.HelpArticle{}, err
	}
	if err := required("categoryId", in.CategoryID); err != nil {
		return models.HelpArticle{}, err
	}
	a := models.HelpArticle{
		ID:          b.newID("art"),
		CategoryID:  in.CategoryID,
		Title:       in.Title,
		Content:     in.Content,
		Tags:        in.Tags,
		IsPublished: in.IsPublished,
		CreatedAt:   b.now(),
	}
	for _, c := range b.categories {
		if c.ID == in.CategoryID {
			a.Category = c.Name
		}
	}
	if existing != nil {
		a.ID, a.CreatedAt, a.Views = existing.ID, existing.CreatedAt, existing.Views
	}
	return a, nil
}

func buildTicket(b *Backend, in models.SupportTicketInput, existing *models.SupportTicket) (models.SupportTicket, error) {
	if err := required("subject", in.Subject); err != nil {
		return models.SupportTicket{}, err
	}
	if err := required("email", in.Email); err != nil {
		return models.SupportTicket{}, err
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	t := models.SupportTicket{
		ID:        b.newID("tkt"),
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		Status:    models.TicketOpen,
		Priority:  priority,
		CreatedAt: b.now(),
	}
	if existing != nil {
		t.ID, t.CreatedAt, t.Status = existing.ID, existing.CreatedAt, existing.Status
	}
	return t, nil
}
