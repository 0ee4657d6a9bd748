package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sm-junior0/ndarehe-sub001/internal/models"
)

// Resource is one admin collection endpoint, e.g. /admin/tours.
// key names the array in list responses, single the object in record responses.
type Resource[T models.Record, In any] struct {
	client *Client
	path   string
	key    string
	single string
}

func newResource[T models.Record, In any](c *Client, path, key, single string) Resource[T, In] {
	return Resource[T, In]{client: c, path: path, key: key, single: single}
}

func (r Resource[T, In]) Path() string {
	return r.path
}

// List fetches one page. Filters and search come from q.
func (r Resource[T, In]) List(ctx context.Context, q models.ListQuery) (models.Page[T], error) {
	var raw map[string]json.RawMessage
	if err := r.client.get(ctx, r.path, q.Values(), &raw); err != nil {
		return models.Page[T]{}, err
	}
	return decodeList[T](raw, r.key, q)
}

func (r Resource[T, In]) Create(ctx context.Context, in In) (T, error) {
	var raw json.RawMessage
	if err := r.client.send(ctx, http.MethodPost, r.path, in, &raw); err != nil {
		var zero T
		return zero, err
	}
	return decodeRecord[T](raw, r.single)
}

func (r Resource[T, In]) Update(ctx context.Context, id string, in In) (T, error) {
	var raw json.RawMessage
	if err := r.client.send(ctx, http.MethodPut, recordPath(r.path, id), in, &raw); err != nil {
		var zero T
		return zero, err
	}
	return decodeRecord[T](raw, r.single)
}

func (r Resource[T, In]) Delete(ctx context.Context, id string) error {
	return r.client.send(ctx, http.MethodDelete, recordPath(r.path, id), nil, nil)
}

// Verify flips isVerified on a catalog record.
func (r Resource[T, In]) Verify(ctx context.Context, id string, verified bool) (T, error) {
	var raw json.RawMessage
	body := map[string]bool{"isVerified": verified}
	if err := r.client.send(ctx, http.MethodPut, recordPath(r.path, id, "verify"), body, &raw); err != nil {
		var zero T
		return zero, err
	}
	return decodeRecord[T](raw, r.single)
}

func (r Resource[T, In]) setStatus(ctx context.Context, id string, body any) (T, error) {
	var raw json.RawMessage
	if err := r.client.send(ctx, http.MethodPut, recordPath(r.path, id, "status"), body, &raw); err != nil {
		var zero T
		return zero, err
	}
	return decodeRecord[T](raw, r.single)
}

func decodeList[T any](raw map[string]json.RawMessage, key string, q models.ListQuery) (models.Page[T], error) {
	itemsRaw, ok := raw[key]
	if !ok {
		itemsRaw, ok = raw["items"]
	}
	var items []T
	if ok {
		if err := json.Unmarshal(itemsRaw, &items); err != nil {
			return models.Page[T]{}, &EnvelopeError{Message: fmt.Sprintf("unexpected %s list", key), Err: err}
		}
	}

	var p models.Pagination
	if pr, ok := raw["pagination"]; ok {
		if err := json.Unmarshal(pr, &p); err != nil {
			return models.Page[T]{}, &EnvelopeError{Message: "unexpected pagination", Err: err}
		}
	} else {
		p = models.Pagination{Page: q.Page, Limit: q.PageSize, Total: len(items), TotalPages: 1}
		if len(items) == 0 {
			p.TotalPages = 0
		}
	}
	return models.PageOf(items, p), nil
}

// decodeRecord accepts both {"<single>": {...}} and a bare object.
func decodeRecord[T any](raw json.RawMessage, single string) (T, error) {
	var out T
	if len(raw) == 0 {
		return out, nil
	}
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		if inner, ok := wrapped[single]; ok {
			raw = inner
		}
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &EnvelopeError{Message: "unexpected " + single + " record", Err: err}
	}
	return out, nil
}

func (c *Client) Users() Resource[models.User, models.UserInput] {
	return newResource[models.User, models.UserInput](c, "/admin/users", "users", "user")
}

func (c *Client) Bookings() Resource[models.Booking, models.BookingInput] {
	return newResource[models.Booking, models.BookingInput](c, "/admin/bookings", "bookings", "booking")
}

func (c *Client) Accommodations() Resource[models.Accommodation, models.AccommodationInput] {
	return newResource[models.Accommodation, models.AccommodationInput](c, "/admin/accommodations", "accommodations", "accommodation")
}

func (c *Client) Transportation() Resource[models.Transportation, models.TransportationInput] {
	return newResource[models.Transportation, models.TransportationInput](c, "/admin/transportation", "transportation", "transportation")
}

func (c *Client) Tours() Resource[models.Tour, models.TourInput] {
	return newResource[models.Tour, models.TourInput](c, "/admin/tours", "tours", "tour")
}

func (c *Client) HelpArticles() Resource[models.HelpArticle, models.HelpArticleInput] {
	return newResource[models.HelpArticle, models.HelpArticleInput](c, "/admin/help/articles", "articles", "article")
}

func (c *Client) SupportTickets() Resource[models.SupportTicket, models.SupportTicketInput] {
	return newResource[models.SupportTicket, models.SupportTicketInput](c, "/admin/help/tickets", "tickets", "ticket")
}

// SetUserStatus activates or deactivates an account.
func (c *Client) SetUserStatus(ctx context.Context, id string, active bool) (models.User, error) {
	return c.Users().setStatus(ctx, id, map[string]bool{"isActive": active})
}

func (c *Client) SetBookingStatus(ctx context.Context, id string, status models.BookingStatus) (models.Booking, error) {
	if !status.Valid() {
		return models.Booking{}, fmt.Errorf("invalid booking status %q", status)
	}
	return c.Bookings().setStatus(ctx, id, map[string]models.BookingStatus{"status": status})
}

func (c *Client) SetTicketStatus(ctx context.Context, id string, status models.TicketStatus) (models.SupportTicket, error) {
	if !status.Valid() {
		return models.SupportTicket{}, fmt.Errorf("invalid ticket status %q", status)
	}
	return c.SupportTickets().setStatus(ctx, id, map[string]models.TicketStatus{"status": status})
}
