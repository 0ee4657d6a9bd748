package apitest

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/sm-junior0/ndarehe-sub001/internal/models"
)

const maxLimit = 1000

type collection[T models.Record] struct {
	key    string
	single string
	items  []T
	match  func(T, url.Values) bool
	text   func(T) string
}

func newCollection[T models.Record](key, single string, match func(T, url.Values) bool, text func(T) string) *collection[T] {
	return &collection[T]{key: key, single: single, match: match, text: text}
}

func (c *collection[T]) add(items ...T) {
	c.items = append(c.items, items...)
}

func (c *collection[T]) prepend(item T) {
	c.items = append([]T{item}, c.items...)
}

func (c *collection[T]) index(id string) int {
	for i, item := range c.items {
		if item.RecordID() == id {
			return i
		}
	}
	return -1
}

func (c *collection[T]) remove(i int) {
	c.items = append(c.items[:i:i], c.items[i+1:]...)
}

func (c *collection[T]) list(q url.Values) ([]T, models.Pagination) {
	search := strings.TrimSpace(q.Get("search"))
	filtered := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if !c.match(item, q) {
			continue
		}
		if search != "" && !containsFold(c.text(item), search) {
			continue
		}
		filtered = append(filtered, item)
	}

	page := positiveInt(q.Get("page"), 1)
	limit := positiveInt(q.Get("limit"), 10)
	if limit > maxLimit {
		limit = maxLimit
	}

	total := len(filtered)
	totalPages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return filtered[start:end], models.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// boolMatch passes when the filter is absent or equals v.
func boolMatch(q url.Values, key string, v bool) bool {
	raw := q.Get(key)
	if raw == "" {
		return true
	}
	want, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return want == v
}

func eqMatch(q url.Values, key, v string) bool {
	raw := q.Get(key)
	return raw == "" || strings.EqualFold(raw, v)
}

func userMatches(u models.User, q url.Values) bool {
	return eqMatch(q, models.FilterRole, string(u.Role)) &&
		boolMatch(q, models.FilterIsActive, u.IsActive) &&
		boolMatch(q, models.FilterIsVerified, u.IsVerified)
}

func userText(u models.User) string {
	return u.FirstName + " " + u.LastName + " " + u.Email + " " + u.Phone
}

func bookingMatches(b models.Booking, q url.Values) bool {
	return eqMatch(q, models.FilterStatus, string(b.Status)) &&
		eqMatch(q, models.FilterServiceType, string(b.ServiceType)) &&
		eqMatch(q, "paymentStatus", string(b.PaymentStatus))
}

func bookingText(b models.Booking) string {
	return b.GuestName + " " + b.GuestEmail + " " + b.ServiceName + " " + b.ID
}

func accommodationMatches(a models.Accommodation, q url.Values) bool {
	return eqMatch(q, models.FilterType, a.Type) &&
		eqMatch(q, models.FilterCategory, a.Category) &&
		boolMatch(q, models.FilterIsVerified, a.IsVerified) &&
		boolMatch(q, models.FilterIsActive, a.IsActive)
}

func transportationMatches(t models.Transportation, q url.Values) bool {
	return eqMatch(q, models.FilterType, t.Type) &&
		eqMatch(q, "vehicleType", t.VehicleType) &&
		boolMatch(q, models.FilterIsVerified, t.IsVerified) &&
		boolMatch(q, models.FilterIsActive, t.IsActive)
}

func tourMatches(t models.Tour, q url.Values) bool {
	return eqMatch(q, models.FilterType, t.Type) &&
		eqMatch(q, models.FilterCategory, t.Category) &&
		boolMatch(q, models.FilterIsVerified, t.IsVerified) &&
		boolMatch(q, models.FilterIsActive, t.IsActive)
}

func articleMatches(a models.HelpArticle, q url.Values) bool {
	return eqMatch(q, "categoryId", a.CategoryID) &&
		boolMatch(q, "isPublished", a.IsPublished)
}

func ticketMatches(t models.SupportTicket, q url.Values) bool {
	return eqMatch(q, models.FilterStatus, string(t.Status)) &&
		eqMatch(q, models.FilterPriority, string(t.Priority))
}
