package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"campusboard/internal/apperr"
	"campusboard/internal/db"
	"campusboard/internal/gate"
	"campusboard/internal/logging"
	"campusboard/internal/models"
	"campusboard/internal/oops"
)

// AccountStore manages profiles for the admin console.
type AccountStore interface {
	ListAccounts(ctx context.Context, role models.Role, page, limit int) ([]models.Account, int, error)
	UpdateAccountRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.Account, error)
}

// AccountHandler serves the caller's profile and the admin console.
type AccountHandler struct {
	accounts AccountStore
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(accounts AccountStore) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Me returns the authenticated account.
func (h *AccountHandler) Me(c fiber.Ctx) error {
	account := caller(c)
	if account == nil {
		return respondError(c, apperr.ErrUnauthenticated)
	}
	return jsonSuccess(c, account)
}

// List returns accounts, optionally filtered by role (admin only).
func (h *AccountHandler) List(c fiber.Ctx) error {
	if err := gate.Require(caller(c), models.RoleAdmin).Err(); err != nil {
		return respondError(c, err)
	}

	var role models.Role
	if raw := c.Query("role"); raw != "" {
		parsed, err := models.ParseRole(raw)
		if err != nil {
			return respondError(c, apperr.Validation("unknown role"))
		}
		role = parsed
	}

	f := models.ListFilter{Page: queryInt(c, "page"), Limit: queryInt(c, "limit")}.Normalize()
	accounts, total, err := h.accounts.ListAccounts(c.Context(), role, f.Page, f.Limit)
	if err != nil {
		return respondError(c, oops.New(err, "failed to list accounts"))
	}
	return jsonSuccess(c, models.NewPage(accounts, total, f.Page, f.Limit))
}

// SetRole changes an account's role (admin only). Admins cannot change
// their own role.
func (h *AccountHandler) SetRole(c fiber.Ctx) error {
	admin := caller(c)
	if err := gate.Require(admin, models.RoleAdmin).Err(); err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var body struct {
		Role string `json:"role"`
	}
	if err := decodeBody(c, &body); err != nil {
		return respondError(c, err)
	}
	role, err := models.ParseRole(body.Role)
	if err != nil {
		return respondError(c, apperr.Validation("unknown role"))
	}
	if id == admin.ID && role != admin.Role {
		return respondError(c, apperr.Validation("you cannot change your own role"))
	}

	updated, err := h.accounts.UpdateAccountRole(c.Context(), id, role)
	if errors.Is(err, db.ErrAccountNotFound) {
		return respondError(c, apperr.ErrNotFound)
	}
	if err != nil {
		return respondError(c, oops.New(err, "failed to update role"))
	}

	logging.Info().
		Str("admin", admin.ID.String()).
		Str("account", id.String()).
		Str("role", string(role)).
		Msg("account role changed")
	return jsonSuccess(c, updated)
}
