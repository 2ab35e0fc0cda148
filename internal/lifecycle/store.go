package lifecycle

import (
	"context"
	"errors"
	"time"

	"campusboard/internal/models"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates the item does not exist.
	ErrNotFound = errors.New("lifecycle: item not found")
	// ErrStale indicates a conditional write matched no row because the
	// item's status or author no longer matched what the caller read.
	ErrStale = errors.New("lifecycle: item changed concurrently")
)

// Subject is a moderated item: anything that embeds models.Header.
type Subject interface {
	Meta() *models.Header
	Summary() string
}

// Store persists one content type. Every write is conditional on the
// status the engine last observed; a write that matches no row returns
// ErrStale and changes nothing.
type Store[T Subject] interface {
	Get(ctx context.Context, id uuid.UUID) (T, error)
	List(ctx context.Context, filter models.ListFilter) ([]T, int, error)
	Create(ctx context.Context, item T) error
	// Update writes the payload fields, status and updated_at of item when
	// the stored row has status expected and the same author.
	Update(ctx context.Context, item T, expected models.Status) error
	Transition(ctx context.Context, id uuid.UUID, expected models.Status, change Change) (T, error)
	Delete(ctx context.Context, id, authorID uuid.UUID, expected models.Status) error
}

// Change is the set of header fields one transition writes.
type Change struct {
	To             models.Status
	At             time.Time
	StampSubmitted bool
	// StampPublished sets published_at only if it was never set.
	StampPublished bool
	// SetReview overwrites reviewed_by, reviewed_at and review_note. A nil
	// ReviewedBy clears all three.
	SetReview  bool
	ReviewedBy *uuid.UUID
	ReviewNote *string
}

// Apply mutates h the way a Store must.
func (c Change) Apply(h *models.Header) {
	at := c.At
	h.Status = c.To
	h.UpdatedAt = at
	if c.StampSubmitted {
		h.SubmittedAt = &at
	}
	if c.StampPublished && h.PublishedAt == nil {
		h.PublishedAt = &at
	}
	if c.SetReview {
		h.ReviewedBy = c.ReviewedBy
		h.ReviewNote = c.ReviewNote
		h.ReviewedAt = nil
		if c.ReviewedBy != nil {
			h.ReviewedAt = &at
		}
	}
}

// Clock allows deterministic timing in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
