package lifecycle

import (
	"context"
	"time"

	"campusboard/internal/gate"
	"campusboard/internal/models"

	"github.com/google/uuid"
)

// Event describes one attempted action. Err is nil when it succeeded.
type Event struct {
	ContentType models.ContentType
	Action      gate.Action
	ItemID      uuid.UUID
	AuthorID    uuid.UUID
	Summary     string
	From        models.Status
	To          models.Status
	Actor       *models.Account
	Note        *string
	At          time.Time
	Err         error
}

// Succeeded reports whether the action was applied.
func (e Event) Succeeded() bool {
	return e.Err == nil
}

// StatusChanged is true for successful actions that moved the item
// between two states, including deletion.
func (e Event) StatusChanged() bool {
	return e.Err == nil && e.Action != gate.CreateDraft && e.From != e.To
}

// Hook observes engine actions. Errors are logged by the engine and never
// reach the caller.
type Hook interface {
	AfterTransition(ctx context.Context, ev Event) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, ev Event) error

func (f HookFunc) AfterTransition(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}
