package api

import (
	"context"
	"crypto/rand"
	"encoding/base64"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"golang.org/x/oauth2"

	"campusboard/internal/apperr"
	"campusboard/internal/authority"
	"campusboard/internal/logging"
	"campusboard/internal/models"
	"campusboard/internal/oops"
)

// AccountUpserter creates or refreshes a profile on sign-in.
type AccountUpserter interface {
	UpsertAccount(ctx context.Context, account *models.Account) error
}

// AuthHandler runs the browser OIDC code flow and hands the resulting ID
// token back to the client, which then sends it as a bearer credential.
type AuthHandler struct {
	oauth2Config oauth2.Config
	verifier     authority.Verifier
	accounts     AccountUpserter
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(oauth2Config oauth2.Config, verifier authority.Verifier, accounts AccountUpserter) *AuthHandler {
	return &AuthHandler{oauth2Config: oauth2Config, verifier: verifier, accounts: accounts}
}

// Login initiates the OIDC login flow.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	state := generateState()

	sess := session.FromContext(c)
	if sess == nil {
		return respondError(c, oops.New(nil, "session not available"))
	}
	sess.Set("oauth_state", state)

	return c.Redirect().To(h.oauth2Config.AuthCodeURL(state))
}

// Callback exchanges the authorization code, signs the account up on first
// login and returns the ID token.
func (h *AuthHandler) Callback(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess == nil {
		return respondError(c, oops.New(nil, "session not available"))
	}

	savedState, _ := sess.Get("oauth_state").(string)
	if savedState == "" || savedState != c.Query("state") {
		return respondError(c, apperr.Validation("invalid state"))
	}
	sess.Delete("oauth_state")

	token, err := h.oauth2Config.Exchange(c.Context(), c.Query("code"))
	if err != nil {
		logging.Warn().Err(err).Msg("oauth code exchange failed")
		return respondError(c, apperr.Validation("failed to exchange code"))
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return respondError(c, apperr.Validation("missing id_token"))
	}

	identity, err := h.verifier.VerifyCredential(c.Context(), rawIDToken)
	if err != nil {
		logging.Warn().Err(err).Msg("id_token verification failed")
		return respondError(c, apperr.ErrUnauthenticated)
	}

	account := &models.Account{
		Subject:     identity.Subject,
		Email:       identity.Email,
		DisplayName: identity.Name,
	}
	if err := h.accounts.UpsertAccount(c.Context(), account); err != nil {
		return respondError(c, oops.New(err, "failed to upsert account"))
	}

	return jsonSuccess(c, fiber.Map{
		"id_token":   rawIDToken,
		"token_type": "Bearer",
		"expires_at": identity.Expiry,
		"account":    account,
	})
}

func generateState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
