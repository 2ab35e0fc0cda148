package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/encryptcookie"
	"github.com/gofiber/fiber/v3/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusboard/internal/apperr"
	"campusboard/internal/config"
)

// The encryptcookie + session stack must survive a client replaying its
// encrypted session cookie, which is what the OIDC callback relies on.
func TestEncryptCookieSessionRoundTrip(t *testing.T) {
	app := fiber.New()
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: deriveEncryptionKey("test-secret-that-is-long-enough-for-production"),
	}))
	sessionMiddleware, _ := session.NewWithStore(session.Config{
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
	app.Use(sessionMiddleware)

	app.Post("/state", func(c fiber.Ctx) error {
		session.FromContext(c).Set("oauth_state", "xyz")
		return c.SendString("ok")
	})
	app.Get("/state", func(c fiber.Ctx) error {
		val, _ := session.FromContext(c).Get("oauth_state").(string)
		return c.SendString(val)
	})

	resp, err := app.Test(mustRequest(t, http.MethodPost, "/state"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)

	req := mustRequest(t, http.MethodGet, "/state")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "xyz", string(body))
}

func TestDeriveEncryptionKey(t *testing.T) {
	key := deriveEncryptionKey("secret")
	assert.Len(t, key, 44)
	assert.Equal(t, key, deriveEncryptionKey("secret"))
	assert.NotEqual(t, key, deriveEncryptionKey("other"))
}

func TestErrorHandler(t *testing.T) {
	srv := New(&config.Config{Env: "development", BaseURL: "http://localhost:3000", SessionSecret: "s"}, nil)
	srv.App.Get("/boom", func(fiber.Ctx) error { return errors.New("disk on fire") })
	srv.App.Get("/denied", func(fiber.Ctx) error { return apperr.ErrNotOwner })
	srv.App.Get("/teapot", func(fiber.Ctx) error { return fiber.NewError(fiber.StatusBadRequest, "bad input") })

	tests := []struct {
		path   string
		status int
		code   apperr.Code
		msg    string
	}{
		{"/boom", fiber.StatusInternalServerError, apperr.Internal, "internal server error"},
		{"/denied", fiber.StatusForbidden, apperr.NotOwner, apperr.Message(apperr.ErrNotOwner)},
		{"/teapot", fiber.StatusBadRequest, apperr.ValidationError, "bad input"},
		{"/missing", fiber.StatusNotFound, apperr.NotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := srv.App.Test(mustRequest(t, http.MethodGet, tt.path))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			env := decodeEnvelope(t, resp)
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, string(tt.code), env.Code)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, env.Error)
			}
		})
	}
}

func mustRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, path, nil)
	require.NoError(t, err)
	return req
}
