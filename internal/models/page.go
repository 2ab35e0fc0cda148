package models

import (
	"math"

	"github.com/google/uuid"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ListFilter narrows a listing. Zero values mean "no constraint".
type ListFilter struct {
	Status   Status
	Category string
	AuthorID *uuid.UUID
	TopicID  *uuid.UUID
	Search   string
	Page     int
	Limit    int
}

// Normalize clamps paging to page >= 1 and 1 <= limit <= MaxPageLimit.
// Huge pages are capped so the offset cannot overflow.
func (f ListFilter) Normalize() ListFilter {
	f.Page, f.Limit = normalizePaging(f.Page, f.Limit)
	return f
}

// Offset is the number of rows skipped before the page. Call it on a
// normalized filter.
func (f ListFilter) Offset() int {
	return PageOffset(f.Page, f.Limit)
}

// PageOffset returns the row offset of page after normalizing page and limit.
func PageOffset(page, limit int) int {
	page, limit = normalizePaging(page, limit)
	return (page - 1) * limit
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	// Keep (page-1)*limit inside int.
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return page, limit
}

// Page is one slice of a listing.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// NewPage builds a page; page and limit are normalized first.
func NewPage[T any](items []T, total, page, limit int) Page[T] {
	page, limit = normalizePaging(page, limit)
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}
}
