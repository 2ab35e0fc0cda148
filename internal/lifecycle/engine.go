// Package lifecycle moves moderated items through their state machine.
// The engine loads an item, asks the gate, checks the payload and then
// performs a single conditional write; concurrent writers lose with
// AlreadyTransitioned instead of overwriting each other.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campusboard/internal/apperr"
	"campusboard/internal/gate"
	"campusboard/internal/logging"
	"campusboard/internal/models"
	"campusboard/internal/oops"

	"github.com/google/uuid"
)

// Validator checks an item's payload before it is written. Returned
// *apperr.Error values are passed through; anything else is treated as a
// validation failure.
type Validator[T Subject] func(ctx context.Context, item T) error

// Payload carries the optional inputs of a transition.
type Payload struct {
	Note string
}

type Engine[T Subject] struct {
	contentType models.ContentType
	machine     Machine
	store       Store[T]
	validate    Validator[T]
	clock       Clock
	hooks       []Hook
}

func NewEngine[T Subject](contentType models.ContentType, machine Machine, store Store[T], validate Validator[T]) *Engine[T] {
	return &Engine[T]{
		contentType: contentType,
		machine:     machine,
		store:       store,
		validate:    validate,
		clock:       systemClock{},
	}
}

// WithClock replaces the engine's clock. Intended for tests.
func (e *Engine[T]) WithClock(clock Clock) *Engine[T] {
	if clock != nil {
		e.clock = clock
	}
	return e
}

// AddHook registers h to run after every action.
func (e *Engine[T]) AddHook(h Hook) {
	e.hooks = append(e.hooks, h)
}

func (e *Engine[T]) ContentType() models.ContentType {
	return e.contentType
}

func (e *Engine[T]) Machine() Machine {
	return e.machine
}

// Get returns an item the caller is allowed to see. Items the caller may
// not see are reported as NotFound so their existence does not leak.
func (e *Engine[T]) Get(ctx context.Context, caller *models.Account, id uuid.UUID) (T, error) {
	var zero T
	if caller == nil {
		return zero, apperr.ErrUnauthenticated
	}
	item, err := e.load(ctx, id)
	if err != nil {
		return zero, err
	}
	if !gate.CanView(caller, gate.TargetOf(item.Meta()), e.machine.Published) {
		return zero, apperr.ErrNotFound
	}
	return item, nil
}

// List returns a page of items. Moderators see everything; everyone else
// sees published items, or all of their own items when filtering by
// themselves as author.
func (e *Engine[T]) List(ctx context.Context, caller *models.Account, filter models.ListFilter) (models.Page[T], error) {
	filter = filter.Normalize()
	if caller == nil {
		return models.Page[T]{}, apperr.ErrUnauthenticated
	}
	if filter.Status != "" && !e.machine.HasStatus(filter.Status) {
		return models.Page[T]{}, apperr.Validation(fmt.Sprintf("unknown status %q", filter.Status))
	}

	if !caller.IsModerator() {
		ownItems := filter.AuthorID != nil && *filter.AuthorID == caller.ID
		if !ownItems {
			if filter.Status != "" && filter.Status != e.machine.Published {
				return models.NewPage[T](nil, 0, filter.Page, filter.Limit), nil
			}
			filter.Status = e.machine.Published
		}
	}

	items, total, err := e.store.List(ctx, filter)
	if err != nil {
		return models.Page[T]{}, oops.New(err, "failed to list %s", e.contentType)
	}
	return models.NewPage(items, total, filter.Page, filter.Limit), nil
}

// Create stores item as a new item authored by caller. Header fields set
// by the client are ignored.
func (e *Engine[T]) Create(ctx context.Context, caller *models.Account, item T) (T, error) {
	var zero T
	if d := e.machine.Policy.Authorize(caller, gate.CreateDraft, gate.Target{}); !d.Allowed {
		return zero, d.Err()
	}

	now := e.clock.Now()
	h := item.Meta()
	*h = models.Header{
		ID:        uuid.New(),
		AuthorID:  caller.ID,
		Status:    e.machine.Initial,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if e.machine.Initial == models.StatusPending {
		h.SubmittedAt = &now
	}

	if err := e.check(ctx, item); err != nil {
		return zero, err
	}
	if err := e.store.Create(ctx, item); err != nil {
		return zero, oops.New(err, "failed to create %s", e.contentType)
	}

	e.emit(ctx, Event{
		Action: gate.CreateDraft,
		ItemID: h.ID, AuthorID: h.AuthorID, Summary: item.Summary(),
		To: h.Status, Actor: caller, At: now,
	})
	return item, nil
}

// Edit applies a payload change to an item. apply may only touch payload
// fields; the header is restored afterwards. Editing a published item (when
// the policy allows it) moves it back to the initial state.
func (e *Engine[T]) Edit(ctx context.Context, caller *models.Account, id uuid.UUID, apply func(T) error) (T, error) {
	var zero T
	if caller == nil {
		return zero, apperr.ErrUnauthenticated
	}
	item, err := e.load(ctx, id)
	if err != nil {
		return zero, err
	}
	original := *item.Meta()

	ev := Event{
		Action: gate.EditDraft,
		ItemID: id, AuthorID: original.AuthorID, Summary: item.Summary(),
		From: original.Status, To: original.Status, Actor: caller, At: e.clock.Now(),
	}

	if d := e.machine.Policy.Authorize(caller, gate.EditDraft, gate.TargetOf(&original)); !d.Allowed {
		return zero, e.fail(ctx, ev, d.Err())
	}
	if err := apply(item); err != nil {
		return zero, e.fail(ctx, ev, asValidation(err))
	}

	h := item.Meta()
	*h = original
	h.UpdatedAt = ev.At
	if original.Status == e.machine.Published {
		h.Status = e.machine.Initial
	}
	ev.To = h.Status

	if err := e.check(ctx, item); err != nil {
		return zero, e.fail(ctx, ev, err)
	}
	if err := e.store.Update(ctx, item, original.Status); err != nil {
		return zero, e.fail(ctx, ev, e.storeError(err, "update"))
	}

	e.emit(ctx, ev)
	return item, nil
}

// Transition performs Submit, Approve, Reject or Rework.
func (e *Engine[T]) Transition(ctx context.Context, caller *models.Account, id uuid.UUID, action gate.Action, payload Payload) (T, error) {
	var zero T
	to, ok := e.machine.target(action)
	if !ok {
		return zero, apperr.ErrInvalidState
	}
	if caller == nil {
		return zero, apperr.ErrUnauthenticated
	}

	item, err := e.load(ctx, id)
	if err != nil {
		return zero, err
	}
	h := item.Meta()
	ev := Event{
		Action: action,
		ItemID: id, AuthorID: h.AuthorID, Summary: item.Summary(),
		From: h.Status, To: to, Actor: caller, At: e.clock.Now(),
	}

	if d := e.machine.Policy.Authorize(caller, action, gate.TargetOf(h)); !d.Allowed {
		err := d.Err()
		if d.Reason == apperr.InvalidState && e.machine.movedOn(action, h.Status) {
			err = apperr.ErrAlreadyTransitioned
		}
		return zero, e.fail(ctx, ev, err)
	}

	var note *string
	if trimmed := strings.TrimSpace(payload.Note); trimmed != "" {
		note = &trimmed
	}
	if action == gate.Reject && e.machine.RequireRejectNote && note == nil {
		return zero, e.fail(ctx, ev, apperr.ErrMissingReviewNote)
	}
	ev.Note = note

	reviewer := caller.ID
	change := Change{To: to, At: ev.At}
	switch action {
	case gate.Submit:
		change.StampSubmitted = true
	case gate.Approve:
		change.StampPublished = true
		change.SetReview = true
		change.ReviewedBy = &reviewer
		change.ReviewNote = note
	case gate.Reject:
		change.SetReview = true
		change.ReviewedBy = &reviewer
		change.ReviewNote = note
	case gate.Rework:
		change.SetReview = true
	}

	updated, err := e.store.Transition(ctx, id, h.Status, change)
	if err != nil {
		return zero, e.fail(ctx, ev, e.storeError(err, string(action)))
	}

	e.emit(ctx, ev)
	return updated, nil
}

// Delete removes an item while the policy still allows it.
func (e *Engine[T]) Delete(ctx context.Context, caller *models.Account, id uuid.UUID) error {
	if caller == nil {
		return apperr.ErrUnauthenticated
	}
	item, err := e.load(ctx, id)
	if err != nil {
		return err
	}
	h := item.Meta()
	ev := Event{
		Action: gate.Delete,
		ItemID: id, AuthorID: h.AuthorID, Summary: item.Summary(),
		From: h.Status, To: models.StatusDeleted, Actor: caller, At: e.clock.Now(),
	}

	if d := e.machine.Policy.Authorize(caller, gate.Delete, gate.TargetOf(h)); !d.Allowed {
		return e.fail(ctx, ev, d.Err())
	}
	if err := e.store.Delete(ctx, id, h.AuthorID, h.Status); err != nil {
		return e.fail(ctx, ev, e.storeError(err, "delete"))
	}

	e.emit(ctx, ev)
	return nil
}

func (e *Engine[T]) load(ctx context.Context, id uuid.UUID) (T, error) {
	item, err := e.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		var zero T
		return zero, apperr.ErrNotFound
	}
	if err != nil {
		var zero T
		return zero, oops.New(err, "failed to load %s %s", e.contentType, id)
	}
	return item, nil
}

func (e *Engine[T]) check(ctx context.Context, item T) error {
	if e.validate == nil {
		return nil
	}
	if err := e.validate(ctx, item); err != nil {
		return asValidation(err)
	}
	return nil
}

func (e *Engine[T]) storeError(err error, op string) error {
	if errors.Is(err, ErrStale) || errors.Is(err, ErrNotFound) {
		return apperr.ErrAlreadyTransitioned
	}
	return oops.New(err, "failed to %s %s", op, e.contentType)
}

func asValidation(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Validation(err.Error())
}

func (e *Engine[T]) fail(ctx context.Context, ev Event, err error) error {
	ev.Err = err
	e.emit(ctx, ev)
	return err
}

func (e *Engine[T]) emit(ctx context.Context, ev Event) {
	ev.ContentType = e.contentType
	for _, h := range e.hooks {
		if err := h.AfterTransition(ctx, ev); err != nil {
			logging.Error().Err(err).
				Str("content_type", string(ev.ContentType)).
				Str("action", string(ev.Action)).
				Str("item_id", ev.ItemID.String()).
				Msg("lifecycle hook failed")
		}
	}
}
