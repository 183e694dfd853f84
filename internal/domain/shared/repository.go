package shared

import "strings"

// Listing defaults
const (
	DefaultPageSize = 15
	MaxPageSize     = 100
)

// Status filter values accepted by listings
const (
	StatusActive   = "ativo"
	StatusInactive = "inativo"
)

// ListFilter is the common listing query: pagination, an optional
// active/inactive status and an optional free-text search. Zero values mean
// "no constraint".
type ListFilter struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Status   string `json:"status,omitempty"`
	Search   string `json:"search,omitempty"`
}

// Normalize clamps pagination and drops unknown status values.
func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	f.Search = strings.TrimSpace(f.Search)
	switch f.Status {
	case StatusActive, StatusInactive:
	default:
		f.Status = ""
	}
	return f
}

// Offset returns the row offset for the current page
func (f ListFilter) Offset() int {
	n := f.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Limit returns the page size
func (f ListFilter) Limit() int {
	return f.Normalize().PageSize
}

// ActiveValue returns the boolean the status filter constrains to, or nil.
func (f ListFilter) ActiveValue() *bool {
	var v bool
	switch f.Status {
	case StatusActive:
		v = true
	case StatusInactive:
		v = false
	default:
		return nil
	}
	return &v
}

// Page is one page of a listing plus the filters that produced it, so a
// consumer can request the next page with the same query.
type Page[T any] struct {
	Items      []T            `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
	Filters    map[string]any `json:"filters"`
}

// NewPage creates a page from a normalized filter
func NewPage[T any](items []T, total int64, filter ListFilter) Page[T] {
	filter = filter.Normalize()
	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}
	if items == nil {
		items = make([]T, 0)
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
		Filters: map[string]any{
			"status": filter.Status,
			"search": filter.Search,
		},
	}
}
