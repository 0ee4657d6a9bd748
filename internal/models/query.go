package models

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Record is anything a list screen can hold and patch by id.
type Record interface {
	RecordID() string
}

// ListQuery describes one page request of a list screen.
// Changing any filter or the search term resets Page to 1.
type ListQuery struct {
	Page     int
	PageSize int
	Filters  map[string]string
	Search   string
}

func NewListQuery(pageSize int) ListQuery {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return ListQuery{Page: 1, PageSize: pageSize}
}

func (q ListQuery) Clone() ListQuery {
	out := q
	if q.Filters != nil {
		out.Filters = make(map[string]string, len(q.Filters))
		for k, v := range q.Filters {
			out.Filters[k] = v
		}
	}
	return out
}

// WithFilter sets (or clears, when value is empty) one filter field.
func (q ListQuery) WithFilter(field, value string) ListQuery {
	out := q.Clone()
	value = strings.TrimSpace(value)
	if value == "" {
		delete(out.Filters, field)
	} else {
		if out.Filters == nil {
			out.Filters = make(map[string]string)
		}
		out.Filters[field] = value
	}
	out.Page = 1
	return out
}

func (q ListQuery) WithSearch(term string) ListQuery {
	out := q.Clone()
	out.Search = term
	out.Page = 1
	return out
}

// WithoutFilters clears every filter and the search term.
func (q ListQuery) WithoutFilters() ListQuery {
	return ListQuery{Page: 1, PageSize: q.PageSize}
}

func (q ListQuery) WithPage(page int) ListQuery {
	out := q.Clone()
	if page < 1 {
		page = 1
	}
	out.Page = page
	return out
}

func (q ListQuery) Filter(field string) string {
	return q.Filters[field]
}

// Values renders the query string. Empty filters and an empty search term
// are omitted.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	page := q.Page
	if page < 1 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))
	if q.PageSize > 0 {
		v.Set("limit", strconv.Itoa(q.PageSize))
	}

	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if val := strings.TrimSpace(q.Filters[k]); val != "" {
			v.Set(k, val)
		}
	}

	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	return v
}

// Pagination is the server's pagination block.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page is one page of records as reported by the server.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	TotalItems int `json:"totalItems"`
}

func PageOf[T any](items []T, p Pagination) Page[T] {
	return Page[T]{
		Items:      items,
		Page:       p.Page,
		TotalPages: p.TotalPages,
		TotalItems: p.Total,
	}
}

func (p Page[T]) Empty() bool {
	return p.TotalItems == 0
}

func (p Page[T]) HasNext() bool {
	return p.Page < p.TotalPages
}

func (p Page[T]) HasPrev() bool {
	return p.Page > 1
}

// Normalize enforces len(Items) <= pageSize and, for non-empty results,
// Page within [1, TotalPages]. It reports whether items were dropped.
func (p Page[T]) Normalize(pageSize int) (Page[T], bool) {
	truncated := false
	if pageSize > 0 && len(p.Items) > pageSize {
		p.Items = p.Items[:pageSize:pageSize]
		truncated = true
	}
	if p.TotalItems < len(p.Items) {
		p.TotalItems = len(p.Items)
	}
	if p.TotalItems == 0 {
		p.Page = 1
		p.TotalPages = 0
		return p, truncated
	}
	if p.TotalPages < 1 {
		p.TotalPages = 1
		if pageSize > 0 {
			p.TotalPages = (p.TotalItems + pageSize - 1) / pageSize
		}
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > p.TotalPages {
		p.Page = p.TotalPages
	}
	return p, truncated
}
