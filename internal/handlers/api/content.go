package api

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"campusboard/internal/apperr"
	"campusboard/internal/gate"
	"campusboard/internal/lifecycle"
	"campusboard/internal/models"
	"campusboard/internal/oops"
	"campusboard/internal/render"
)

// AuditLog reads the transition history of an item.
type AuditLog interface {
	ListTransitions(ctx context.Context, contentType models.ContentType, id uuid.UUID) ([]models.TransitionAudit, error)
}

// ContentHandler serves one moderated content type.
type ContentHandler[T lifecycle.Subject] struct {
	engine  *lifecycle.Engine[T]
	audit   AuditLog
	newItem func() T
	body    func(T) string
}

// NewContentHandler creates a handler. newItem returns an empty item to
// decode request bodies into; body returns the Markdown source rendered
// into body_html on detail responses.
func NewContentHandler[T lifecycle.Subject](engine *lifecycle.Engine[T], audit AuditLog, newItem func() T, body func(T) string) *ContentHandler[T] {
	return &ContentHandler[T]{engine: engine, audit: audit, newItem: newItem, body: body}
}

// List returns a page of items visible to the caller.
func (h *ContentHandler[T]) List(c fiber.Ctx) error {
	author, err := queryAuthor(c)
	if err != nil {
		return respondError(c, err)
	}
	filter := models.ListFilter{
		Status:   queryStatus(c),
		Category: c.Query("category"),
		AuthorID: author,
		Search:   c.Query("q"),
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
	}

	page, err := h.engine.List(c.Context(), caller(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, page)
}

// Get returns one item with its body rendered to HTML.
func (h *ContentHandler[T]) Get(c fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	item, err := h.engine.Get(c.Context(), caller(c), id)
	if err != nil {
		return respondError(c, err)
	}
	detail, err := h.detail(item)
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, detail)
}

// Create stores a new draft.
func (h *ContentHandler[T]) Create(c fiber.Ctx) error {
	item := h.newItem()
	if err := decodeBody(c, item); err != nil {
		return respondError(c, err)
	}
	created, err := h.engine.Create(c.Context(), caller(c), item)
	if err != nil {
		return respondError(c, err)
	}
	return jsonCreated(c, created)
}

// Edit applies the fields present in the request body. Lifecycle fields in
// the body are ignored.
func (h *ContentHandler[T]) Edit(c fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	body := c.Body()
	if !json.Valid(body) {
		return respondError(c, apperr.Validation("invalid request body"))
	}

	updated, err := h.engine.Edit(c.Context(), caller(c), id, func(item T) error {
		if err := json.Unmarshal(body, item); err != nil {
			return apperr.Validation("invalid request body")
		}
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, updated)
}

// Transition returns a handler applying action to the item in the path.
func (h *ContentHandler[T]) Transition(action gate.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return respondError(c, err)
		}

		var payload struct {
			Note string `json:"note"`
		}
		if len(c.Body()) > 0 {
			if err := decodeBody(c, &payload); err != nil {
				return respondError(c, err)
			}
		}

		item, err := h.engine.Transition(c.Context(), caller(c), id, action, lifecycle.Payload{Note: payload.Note})
		if err != nil {
			return respondError(c, err)
		}
		return jsonSuccess(c, item)
	}
}

// Delete removes an item.
func (h *ContentHandler[T]) Delete(c fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.engine.Delete(c.Context(), caller(c), id); err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, fiber.Map{"id": id})
}

// History returns the audit trail of an item to its author and moderators.
func (h *ContentHandler[T]) History(c fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	account := caller(c)
	item, err := h.engine.Get(c.Context(), account, id)
	if err != nil {
		return respondError(c, err)
	}
	if account.ID != item.Meta().AuthorID && !account.IsModerator() {
		return respondError(c, apperr.ErrNotOwner)
	}

	rows, err := h.audit.ListTransitions(c.Context(), h.engine.ContentType(), id)
	if err != nil {
		return respondError(c, oops.New(err, "failed to load history"))
	}
	if rows == nil {
		rows = []models.TransitionAudit{}
	}
	return jsonSuccess(c, rows)
}

func (h *ContentHandler[T]) detail(item T) (map[string]any, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, oops.New(err, "failed to encode item")
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, oops.New(err, "failed to encode item")
	}

	html, err := render.Markdown(h.body(item))
	if err != nil {
		return nil, oops.New(err, "failed to render body")
	}
	out["body_html"] = html
	return out, nil
}

// Register mounts the handler's routes on r.
func (h *ContentHandler[T]) Register(r fiber.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/:id", h.Get)
	r.Put("/:id", h.Edit)
	r.Delete("/:id", h.Delete)
	r.Get("/:id/history", h.History)
	for _, action := range []gate.Action{gate.Submit, gate.Approve, gate.Reject, gate.Rework} {
		r.Post("/:id/"+string(action), h.Transition(action))
	}
}
