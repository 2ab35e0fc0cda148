package server

import (
	"crypto/sha256"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/encryptcookie"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/session"

	"campusboard/internal/apperr"
	"campusboard/internal/config"
	"campusboard/internal/logging"
)

// Server wraps the Fiber app and configuration.
type Server struct {
	App *fiber.App
	Cfg *config.Config
}

// New creates a new server with middleware configured. sessionStorage
// backs the OIDC login state; nil keeps it in memory.
func New(cfg *config.Config, sessionStorage fiber.Storage) *Server {
	app := fiber.New(fiber.Config{
		AppName:      cfg.SiteTitle,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	corsOrigins := cfg.BaseURL
	if cfg.CORSOrigins != "" {
		corsOrigins = cfg.CORSOrigins
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(corsOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: deriveEncryptionKey(cfg.SessionSecret),
	}))

	sessionMiddleware, _ := session.NewWithStore(session.Config{
		Storage:        sessionStorage,
		CookieSecure:   cfg.TLSEnabled || !cfg.IsDev(),
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
	app.Use(sessionMiddleware)

	return &Server{
		App: app,
		Cfg: cfg,
	}
}

// errorHandler renders errors that escaped a handler in the JSON envelope.
func errorHandler(c fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := apperr.Internal
		switch fe.Code {
		case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
			code = apperr.NotFound
		case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnprocessableEntity:
			code = apperr.ValidationError
		case fiber.StatusUnauthorized:
			code = apperr.Unauthenticated
		}
		return c.Status(fe.Code).JSON(fiber.Map{
			"status": "error",
			"code":   code,
			"error":  fe.Message,
		})
	}

	code := apperr.CodeOf(err)
	if code == apperr.Internal {
		logging.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("unhandled error")
	}
	return c.Status(code.HTTPStatus()).JSON(fiber.Map{
		"status": "error",
		"code":   code,
		"error":  apperr.Message(err),
	})
}

// Start starts the server with the configured address and TLS settings.
func (s *Server) Start() error {
	if s.Cfg.TLSEnabled {
		logging.Info().Str("addr", s.Cfg.ServerAddr).Msg("starting server with TLS")
		return s.App.Listen(s.Cfg.ServerAddr, fiber.ListenConfig{
			CertFile:      s.Cfg.TLSCertFile,
			CertKeyFile:   s.Cfg.TLSKeyFile,
			TLSConfigFunc: func(tc *tls.Config) { tc.MinVersion = tls.VersionTLS12 },
		})
	}
	logging.Info().Str("addr", s.Cfg.ServerAddr).Msg("starting server")
	return s.App.Listen(s.Cfg.ServerAddr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}

// deriveEncryptionKey derives a 32-byte encryption key from the session secret.
func deriveEncryptionKey(secret string) string {
	hash := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(hash[:])
}
