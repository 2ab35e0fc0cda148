package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"campusboard/internal/apperr"
	"campusboard/internal/db"
	"campusboard/internal/gate"
	"campusboard/internal/models"
	"campusboard/internal/oops"
	"campusboard/internal/validation"
)

// EventStore persists calendar events.
type EventStore interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
}

// EventHandler serves the campus calendar.
type EventHandler struct {
	events EventStore
	rules  *validation.Rules
}

// NewEventHandler creates a new event handler.
func NewEventHandler(events EventStore, rules *validation.Rules) *EventHandler {
	return &EventHandler{events: events, rules: rules}
}

type eventInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

func (in eventInput) applyTo(e *models.Event) {
	e.Title = in.Title
	e.Description = in.Description
	e.Location = in.Location
	e.StartsAt = in.StartsAt
	e.EndsAt = in.EndsAt
}

func queryTime(c fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		if t, err = time.Parse(time.DateOnly, raw); err != nil {
			return nil, apperr.Validation(key + " must be an RFC 3339 timestamp or a date")
		}
	}
	return &t, nil
}

func eventError(err error, op string) error {
	if errors.Is(err, db.ErrEventNotFound) {
		return apperr.ErrNotFound
	}
	return oops.New(err, "failed to %s event", op)
}

// List returns events overlapping the from/to window.
func (h *EventHandler) List(c fiber.Ctx) error {
	from, err := queryTime(c, "from")
	if err != nil {
		return respondError(c, err)
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return respondError(c, err)
	}

	filter := models.EventFilter{From: from, To: to, Page: queryInt(c, "page"), Limit: queryInt(c, "limit")}.Normalize()
	events, total, err := h.events.ListEvents(c.Context(), filter)
	if err != nil {
		return respondError(c, oops.New(err, "failed to list events"))
	}
	return jsonSuccess(c, models.NewPage(events, total, filter.Page, filter.Limit))
}

// Create adds an event. Moderators only.
func (h *EventHandler) Create(c fiber.Ctx) error {
	account := caller(c)
	if err := gate.Require(account, models.RoleMod).Err(); err != nil {
		return respondError(c, err)
	}

	var in eventInput
	if err := decodeBody(c, &in); err != nil {
		return respondError(c, err)
	}
	event := &models.Event{CreatedBy: account.ID}
	in.applyTo(event)
	if err := h.rules.Event(event); err != nil {
		return respondError(c, err)
	}

	if err := h.events.CreateEvent(c.Context(), event); err != nil {
		return respondError(c, eventError(err, "create"))
	}
	return jsonCreated(c, event)
}

// Update replaces an event's details. Moderators only.
func (h *EventHandler) Update(c fiber.Ctx) error {
	if err := gate.Require(caller(c), models.RoleMod).Err(); err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	event, err := h.events.GetEvent(c.Context(), id)
	if err != nil {
		return respondError(c, eventError(err, "load"))
	}
	var in eventInput
	if err := decodeBody(c, &in); err != nil {
		return respondError(c, err)
	}
	in.applyTo(event)
	if err := h.rules.Event(event); err != nil {
		return respondError(c, err)
	}

	if err := h.events.UpdateEvent(c.Context(), event); err != nil {
		return respondError(c, eventError(err, "update"))
	}
	return jsonSuccess(c, event)
}

// Delete removes an event. Moderators only.
func (h *EventHandler) Delete(c fiber.Ctx) error {
	if err := gate.Require(caller(c), models.RoleMod).Err(); err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.events.DeleteEvent(c.Context(), id); err != nil {
		return respondError(c, eventError(err, "delete"))
	}
	return jsonSuccess(c, fiber.Map{"id": id})
}
