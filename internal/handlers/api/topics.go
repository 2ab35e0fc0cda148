package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"campusboard/internal/apperr"
	"campusboard/internal/db"
	"campusboard/internal/gate"
	"campusboard/internal/lifecycle"
	"campusboard/internal/models"
	"campusboard/internal/oops"
	"campusboard/internal/validation"
)

// TopicStore persists discussion topics.
type TopicStore interface {
	CreateTopic(ctx context.Context, topic *models.Topic) error
	GetTopic(ctx context.Context, id uuid.UUID) (*models.Topic, error)
	ListTopics(ctx context.Context, page, limit int) ([]models.Topic, int, error)
	SetTopicStatus(ctx context.Context, id uuid.UUID, from, to models.TopicStatus) (*models.Topic, error)
}

// TopicHandler serves topics and their comments.
type TopicHandler struct {
	topics   TopicStore
	comments *lifecycle.Engine[*models.Comment]
	rules    *validation.Rules
}

// NewTopicHandler creates a new topic handler.
func NewTopicHandler(topics TopicStore, comments *lifecycle.Engine[*models.Comment], rules *validation.Rules) *TopicHandler {
	return &TopicHandler{topics: topics, comments: comments, rules: rules}
}

func (h *TopicHandler) loadTopic(c fiber.Ctx) (*models.Topic, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}
	topic, err := h.topics.GetTopic(c.Context(), id)
	if errors.Is(err, db.ErrTopicNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, oops.New(err, "failed to load topic %s", id)
	}
	return topic, nil
}

// List returns topics newest first.
func (h *TopicHandler) List(c fiber.Ctx) error {
	f := models.ListFilter{Page: queryInt(c, "page"), Limit: queryInt(c, "limit")}.Normalize()
	topics, total, err := h.topics.ListTopics(c.Context(), f.Page, f.Limit)
	if err != nil {
		return respondError(c, oops.New(err, "failed to list topics"))
	}
	return jsonSuccess(c, models.NewPage(topics, total, f.Page, f.Limit))
}

// Get returns one topic.
func (h *TopicHandler) Get(c fiber.Ctx) error {
	topic, err := h.loadTopic(c)
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, topic)
}

// Create opens a new topic. Moderators only.
func (h *TopicHandler) Create(c fiber.Ctx) error {
	account := caller(c)
	if err := gate.Require(account, models.RoleMod).Err(); err != nil {
		return respondError(c, err)
	}

	var topic models.Topic
	if err := decodeBody(c, &topic); err != nil {
		return respondError(c, err)
	}
	if err := h.rules.Topic(&topic); err != nil {
		return respondError(c, err)
	}
	topic.AuthorID = account.ID

	if err := h.topics.CreateTopic(c.Context(), &topic); err != nil {
		return respondError(c, oops.New(err, "failed to create topic"))
	}
	return jsonCreated(c, topic)
}

// SetStatus returns a handler moving a topic to status. Moderators only.
func (h *TopicHandler) SetStatus(to models.TopicStatus) fiber.Handler {
	return func(c fiber.Ctx) error {
		if err := gate.Require(caller(c), models.RoleMod).Err(); err != nil {
			return respondError(c, err)
		}
		topic, err := h.loadTopic(c)
		if err != nil {
			return respondError(c, err)
		}
		if topic.Status == to {
			return respondError(c, apperr.ErrInvalidState)
		}

		updated, err := h.topics.SetTopicStatus(c.Context(), topic.ID, topic.Status, to)
		if errors.Is(err, db.ErrTopicStateChanged) {
			return respondError(c, apperr.ErrAlreadyTransitioned)
		}
		if err != nil {
			return respondError(c, oops.New(err, "failed to update topic"))
		}
		return jsonSuccess(c, updated)
	}
}

// ListComments returns the comments on a topic visible to the caller.
// ?author=<own id> includes the caller's unapproved comments.
func (h *TopicHandler) ListComments(c fiber.Ctx) error {
	topic, err := h.loadTopic(c)
	if err != nil {
		return respondError(c, err)
	}
	author, err := queryAuthor(c)
	if err != nil {
		return respondError(c, err)
	}
	filter := models.ListFilter{
		TopicID:  &topic.ID,
		Status:   queryStatus(c),
		AuthorID: author,
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
	}
	page, err := h.comments.List(c.Context(), caller(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, page)
}

// CreateComment posts a comment for moderation. Locked topics take no
// new comments.
func (h *TopicHandler) CreateComment(c fiber.Ctx) error {
	topic, err := h.loadTopic(c)
	if err != nil {
		return respondError(c, err)
	}
	if topic.Status != models.TopicOpen {
		return respondError(c, apperr.New(apperr.InvalidState, "topic is locked"))
	}

	var comment models.Comment
	if err := decodeBody(c, &comment); err != nil {
		return respondError(c, err)
	}
	comment.TopicID = topic.ID

	created, err := h.comments.Create(c.Context(), caller(c), &comment)
	if err != nil {
		return respondError(c, err)
	}
	return jsonCreated(c, created)
}
