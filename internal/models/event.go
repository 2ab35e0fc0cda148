package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is an entry on the campus calendar.
type Event struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// EventFilter selects events overlapping [From, To].
type EventFilter struct {
	From  *time.Time
	To    *time.Time
	Page  int
	Limit int
}

// Normalize clamps paging the same way ListFilter does.
func (f EventFilter) Normalize() EventFilter {
	f.Page, f.Limit = normalizePaging(f.Page, f.Limit)
	return f
}
