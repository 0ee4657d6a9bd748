package apitest

import (
	"fmt"
	"time"

	"github.com/sm-junior0/ndarehe-sub001/internal/models"
)

var (
	firstNames = []string{"Aline", "Jean", "Grace", "Eric", "Diane", "Patrick", "Claudine", "Olivier"}
	lastNames  = []string{"Uwase", "Habimana", "Mukamana", "Niyonzima", "Ingabire", "Mugisha"}
	locations  = []string{"Kigali", "Musanze", "Rubavu", "Huye", "Nyungwe", "Akagera"}
)

// Seed fills the backend with deterministic sample data relative to base.
func (b *Backend) Seed(base time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := 0; i < 25; i++ {
		role := models.RoleUser
		switch {
		case i%10 == 0:
			role = models.RoleAdmin
		case i%4 == 0:
			role = models.RoleProvider
		}
		first, last := firstNames[i%len(firstNames)], lastNames[i%len(lastNames)]
		b.users.add(models.User{
			ID:         fmt.Sprintf("usr-%03d", i+1),
			FirstName:  first,
			LastName:   last,
			Email:      fmt.Sprintf("%s.%s%d@example.rw", first, last, i+1),
			Phone:      fmt.Sprintf("+25078%07d", 1000000+i),
			Role:       role,
			IsVerified: i%3 != 0,
			IsActive:   i%7 != 0,
			CreatedAt:  base.AddDate(0, 0, -i),
		})
	}

	accNames := []string{
		"Hotel des Mille Collines, Kigali",
		"Lake Kivu \"Serena\" Lodge",
		"Virunga Lodge",
		"Nyungwe House",
		"Akagera Game Lodge",
		"Heaven Boutique Hotel",
		"Kigali Marriott",
		"Five Volcanoes Boutique",
		"Mantis Kivu Marina Bay",
		"Ruzizi Tented Lodge",
		"Bisate Lodge",
		"One&Only Gorilla's Nest",
	}
	for i, name := range accNames {
		b.accommodations.add(models.Accommodation{
			ID:            fmt.Sprintf("acc-%03d", i+1),
			Name:          name,
			Description:   "Comfortable stay in " + locations[i%len(locations)],
			Type:          []string{"HOTEL", "LODGE", "GUESTHOUSE"}[i%3],
			Category:      []string{"STANDARD", "LUXURY", "BUDGET"}[i%3],
			LocationID:    fmt.Sprintf("loc-%d", i%len(locations)+1),
			LocationName:  locations[i%len(locations)],
			Address:       fmt.Sprintf("KN %d St", 10+i),
			PricePerNight: float64(45000 + 15000*i),
			Currency:      "RWF",
			MaxGuests:     2 + i%4,
			Bedrooms:      1 + i%3,
			Bathrooms:     1 + i%2,
			Amenities:     []string{"WiFi", "Breakfast"},
			IsVerified:    i%2 == 0,
			IsActive:      true,
			Rating:        4 + float64(i%10)/10,
			CreatedAt:     base.AddDate(0, -1, -i),
		})
	}

	for i := 0; i < 8; i++ {
		b.transportation.add(models.Transportation{
			ID:           fmt.Sprintf("trn-%03d", i+1),
			Name:         fmt.Sprintf("%s Transfer %d", locations[i%len(locations)], i+1),
			Type:         []string{"AIRPORT_PICKUP", "CITY_TRANSPORT", "TOUR_TRANSPORT"}[i%3],
			VehicleType:  []string{"SEDAN", "SUV", "VAN", "BUS"}[i%4],
			LocationID:   fmt.Sprintf("loc-%d", i%len(locations)+1),
			LocationName: locations[i%len(locations)],
			Capacity:     []int{4, 6, 12, 30}[i%4],
			PricePerTrip: float64(20000 + 5000*i),
			Currency:     "RWF",
			IsVerified:   i%3 == 0,
			IsActive:     true,
			CreatedAt:    base.AddDate(0, -2, -i),
		})
	}

	tourNames := []string{"Gorilla Trekking", "Kigali City Tour", "Canopy Walk", "Akagera Safari", "Lake Kivu Boat Trip", "Coffee Farm Visit"}
	for i, name := range tourNames {
		b.tours.add(models.Tour{
			ID:              fmt.Sprintf("tour-%03d", i+1),
			Name:            name,
			Type:            []string{"WILDLIFE", "CULTURAL", "ADVENTURE"}[i%3],
			Category:        []string{"NATURE", "CITY", "HISTORICAL"}[i%3],
			LocationID:      fmt.Sprintf("loc-%d", i%len(locations)+1),
			LocationName:    locations[i%len(locations)],
			Duration:        4 + i,
			MinParticipants: 1,
			MaxParticipants: 8 + i,
			PricePerPerson:  float64(60000 + 20000*i),
			Currency:        "RWF",
			Itinerary:       []string{"Pickup", "Briefing", "Activity", "Return"},
			Includes:        []string{"Guide", "Water"},
			IsVerified:      i%2 == 1,
			IsActive:        true,
			CreatedAt:       base.AddDate(0, -3, -i),
		})
	}

	for i := 0; i < 30; i++ {
		user := b.users.items[i%len(b.users.items)]
		bk := models.Booking{
			ID:             fmt.Sprintf("bkg-%03d", i+1),
			UserID:         user.ID,
			GuestName:      user.FullName(),
			GuestEmail:     user.Email,
			NumberOfPeople: 1 + i%4,
			Currency:       "RWF",
			Status:         models.BookingStatuses[i%len(models.BookingStatuses)],
			PaymentStatus:  models.PaymentPending,
			CreatedAt:      base.AddDate(0, 0, -i),
		}
		switch i % 3 {
		case 0:
			acc := b.accommodations.items[i%len(b.accommodations.items)]
			bk.ServiceType, bk.ServiceID, bk.ServiceName, bk.TotalAmount = models.ServiceAccommodation, acc.ID, acc.Name, acc.PricePerNight*2
		case 1:
			trn := b.transportation.items[i%len(b.transportation.items)]
			bk.ServiceType, bk.ServiceID, bk.ServiceName, bk.TotalAmount = models.ServiceTransportation, trn.ID, trn.Name, trn.PricePerTrip
		default:
			tour := b.tours.items[i%len(b.tours.items)]
			bk.ServiceType, bk.ServiceID, bk.ServiceName, bk.TotalAmount = models.ServiceTour, tour.ID, tour.Name, tour.PricePerPerson*float64(bk.NumberOfPeople)
		}
		bk.StartDate = bk.CreatedAt.AddDate(0, 0, 14)
		if bk.Status == models.BookingConfirmed || bk.Status == models.BookingCompleted {
			bk.PaymentStatus = models.PaymentPaid
		}
		b.bookings.add(bk)
	}

	b.categories = append(b.categories,
		models.HelpCategory{ID: "cat-1", Name: "Bookings", Description: "Making and managing bookings"},
		models.HelpCategory{ID: "cat-2", Name: "Payments", Description: "Cards, mobile money and refunds"},
		models.HelpCategory{ID: "cat-3", Name: "Providers", Description: "Listing accommodations and tours"},
	)
	articles := []string{"How to cancel a booking", "Refund timelines", "Paying with MTN MoMo", "Listing a new lodge", "Verification checklist"}
	for i, title := range articles {
		cat := b.categories[i%len(b.categories)]
		b.articles.add(models.HelpArticle{
			ID:          fmt.Sprintf("art-%03d", i+1),
			CategoryID:  cat.ID,
			Category:    cat.Name,
			Title:       title,
			Content:     title + ": step by step.",
			Tags:        []string{"faq"},
			IsPublished: i != 4,
			Views:       10 * (i + 1),
			CreatedAt:   base.AddDate(0, 0, -7*i),
		})
	}

	subjects := []string{"Double charge on card", "Cannot log in", "Change tour date", "Provider not responding"}
	for i, subject := range subjects {
		user := b.users.items[i]
		b.tickets.add(models.SupportTicket{
			ID:        fmt.Sprintf("tkt-%03d", i+1),
			UserID:    user.ID,
			Name:      user.FullName(),
			Email:     user.Email,
			Subject:   subject,
			Message:   subject + ", please help.",
			Status:    []models.TicketStatus{models.TicketOpen, models.TicketInProgress, models.TicketResolved, models.TicketClosed}[i],
			Priority:  []models.TicketPriority{models.PriorityUrgent, models.PriorityHigh, models.PriorityMedium, models.PriorityLow}[i],
			CreatedAt: base.AddDate(0, 0, -i),
		})
	}

	for i := 0; i < 40; i++ {
		bk := b.bookings.items[i%len(b.bookings.items)]
		b.activities.add(models.Activity{
			ID:          fmt.Sprintf("act-%03d", i+1),
			Type:        "BOOKING_" + string(bk.Status),
			Description: fmt.Sprintf("%s booked %s", bk.GuestName, bk.ServiceName),
			UserName:    bk.GuestName,
			CreatedAt:   base.Add(-time.Duration(i) * time.Hour),
		})
	}

	b.nextID = 1000
}
