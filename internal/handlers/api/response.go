package api

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"campusboard/internal/apperr"
	"campusboard/internal/logging"
	"campusboard/internal/middleware"
	"campusboard/internal/models"
)

// jsonSuccess returns a 200 response with data wrapped in the standard envelope.
func jsonSuccess(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

func jsonCreated(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, code apperr.Code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "error",
		"code":   code,
		"error":  message,
	})
}

// respondError maps err onto the error envelope. Internal errors are
// logged and never leak their detail.
func respondError(c fiber.Ctx, err error) error {
	code := apperr.CodeOf(err)
	if code == apperr.Internal {
		logging.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	}
	return jsonError(c, code.HTTPStatus(), code, apperr.Message(err))
}

func caller(c fiber.Ctx) *models.Account {
	return middleware.Account(c)
}

func paramID(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid " + name)
	}
	return id, nil
}

func decodeBody(c fiber.Ctx, v any) error {
	if err := json.Unmarshal(c.Body(), v); err != nil {
		return apperr.Validation("invalid request body")
	}
	return nil
}

func queryInt(c fiber.Ctx, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}

// queryStatus reads ?status= case-insensitively.
func queryStatus(c fiber.Ctx) models.Status {
	return models.Status(strings.ToUpper(strings.TrimSpace(c.Query("status"))))
}

// queryAuthor reads an optional ?author= account id.
func queryAuthor(c fiber.Ctx) (*uuid.UUID, error) {
	raw := c.Query("author")
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.Validation("invalid author")
	}
	return &id, nil
}
