package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"

	"campusboard/internal/apperr"
	"campusboard/internal/models"
)

const accountKey = "account"

// CallerResolver maps a bearer credential to an account.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, credential string) (*models.Account, error)
}

// AuthMiddleware authenticates requests with bearer tokens.
type AuthMiddleware struct {
	resolver CallerResolver
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(resolver CallerResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// RequireAuth rejects the request with 401 unless a valid credential is present.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	token := bearerToken(c.Get(fiber.HeaderAuthorization))
	if token == "" {
		return unauthorized(c, apperr.ErrUnauthenticated)
	}

	account, err := m.resolver.ResolveCaller(c.Context(), token)
	if err != nil {
		return unauthorized(c, err)
	}

	c.Locals(accountKey, account)
	return c.Next()
}

// Account returns the authenticated caller, or nil.
func Account(c fiber.Ctx) *models.Account {
	account, _ := c.Locals(accountKey).(*models.Account)
	return account
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func unauthorized(c fiber.Ctx, err error) error {
	code := apperr.CodeOf(err)
	if code != apperr.Unauthenticated {
		return err
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status": "error",
		"code":   code,
		"error":  apperr.Message(err),
	})
}
