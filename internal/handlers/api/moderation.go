package api

import (
	"github.com/gofiber/fiber/v3"

	"campusboard/internal/gate"
	"campusboard/internal/lifecycle"
	"campusboard/internal/models"
)

// ModerationHandler serves the moderation queue.
type ModerationHandler struct {
	news        *lifecycle.Engine[*models.News]
	sharespeare *lifecycle.Engine[*models.SharespearePost]
	comments    *lifecycle.Engine[*models.Comment]
}

// NewModerationHandler creates a new API moderation handler.
func NewModerationHandler(news *lifecycle.Engine[*models.News], sharespeare *lifecycle.Engine[*models.SharespearePost], comments *lifecycle.Engine[*models.Comment]) *ModerationHandler {
	return &ModerationHandler{news: news, sharespeare: sharespeare, comments: comments}
}

// Queue returns a page of pending items of every type.
func (h *ModerationHandler) Queue(c fiber.Ctx) error {
	account := caller(c)
	if err := gate.Require(account, models.RoleMod).Err(); err != nil {
		return respondError(c, err)
	}

	filter := models.ListFilter{
		Status: models.StatusPending,
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	}

	news, err := h.news.List(c.Context(), account, filter)
	if err != nil {
		return respondError(c, err)
	}
	posts, err := h.sharespeare.List(c.Context(), account, filter)
	if err != nil {
		return respondError(c, err)
	}
	comments, err := h.comments.List(c.Context(), account, filter)
	if err != nil {
		return respondError(c, err)
	}

	return jsonSuccess(c, fiber.Map{
		"news":        news,
		"sharespeare": posts,
		"comments":    comments,
	})
}
