package server

import (
	"context"
	"errors"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"campusboard/internal/authority"
	"campusboard/internal/config"
	"campusboard/internal/db"
	"campusboard/internal/email"
	"campusboard/internal/handlers/api"
	"campusboard/internal/lifecycle"
	"campusboard/internal/logging"
	"campusboard/internal/media"
	"campusboard/internal/metrics"
	"campusboard/internal/middleware"
	"campusboard/internal/models"
	"campusboard/internal/validation"
)

// Engines holds one lifecycle engine per content type.
type Engines struct {
	News        *lifecycle.Engine[*models.News]
	Sharespeare *lifecycle.Engine[*models.SharespearePost]
	Comments    *lifecycle.Engine[*models.Comment]
	Rules       *validation.Rules
}

func (e Engines) addHook(h lifecycle.Hook) {
	e.News.AddHook(h)
	e.Sharespeare.AddHook(h)
	e.Comments.AddHook(h)
}

// NewEngines builds the content engines on top of database with audit
// recording attached.
func NewEngines(ctx context.Context, cfg *config.Config, database *db.DB) (Engines, error) {
	policy := cfg.Policy
	if policy == nil {
		policy = config.DefaultPolicy()
	}
	rule, err := lifecycle.ParseEditPublishedRule(policy.EditPublished)
	if err != nil {
		return Engines{}, err
	}

	var checker validation.MediaChecker
	if cfg.IsS3Enabled() {
		s3Checker, err := media.NewS3Checker(ctx, cfg)
		if err != nil {
			return Engines{}, err
		}
		checker = s3Checker
		logging.Info().Str("bucket", cfg.S3Bucket).Msg("media references checked against S3")
	}
	rules := validation.NewRules(policy, checker)

	e := Engines{
		News:        lifecycle.NewEngine[*models.News](models.ContentNews, lifecycle.SubmissionMachine(rule), database.News(), rules.News),
		Sharespeare: lifecycle.NewEngine[*models.SharespearePost](models.ContentSharespeare, lifecycle.SubmissionMachine(rule), database.Sharespeare(), rules.Sharespeare),
		Comments:    lifecycle.NewEngine[*models.Comment](models.ContentComment, lifecycle.CommentMachine(), database.Comments(), rules.Comment),
		Rules:       rules,
	}
	e.addHook(database.AuditRecorder())
	return e, nil
}

// Build wires the engines, hooks and handlers on top of database.
// tokenCache may be nil.
func Build(ctx context.Context, cfg *config.Config, database *db.DB, tokenCache authority.Cache) (Handlers, *email.Notifier, error) {
	if cfg.OIDCIssuer == "" || cfg.OIDCClientID == "" {
		return Handlers{}, nil, errors.New("OIDC_ISSUER and OIDC_CLIENT_ID are required")
	}

	engines, err := NewEngines(ctx, cfg, database)
	if err != nil {
		return Handlers{}, nil, err
	}
	news, sharespeare, comments := engines.News, engines.Sharespeare, engines.Comments

	notifier := email.NewNotifier(cfg, database)
	engines.addHook(notifier)
	engines.addHook(metrics.Init(database))

	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return Handlers{}, nil, err
	}
	verifier := authority.NewOIDCVerifier(provider, cfg.OIDCClientID)
	auth := authority.New(verifier, database, tokenCache, cfg.TokenCacheTTL)

	var login *api.AuthHandler
	if cfg.OIDCClientSecret != "" {
		login = api.NewAuthHandler(oauth2.Config{
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			RedirectURL:  cfg.OIDCRedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		}, verifier, database)
	} else {
		logging.Info().Msg("OIDC_CLIENT_SECRET not set, browser login helpers disabled")
	}

	return Handlers{
		Auth:        middleware.NewAuthMiddleware(auth),
		Login:       login,
		News:        api.NewContentHandler(news, database, func() *models.News { return &models.News{} }, func(n *models.News) string { return n.Body }),
		Sharespeare: api.NewContentHandler(sharespeare, database, func() *models.SharespearePost { return &models.SharespearePost{} }, func(p *models.SharespearePost) string { return p.Body }),
		Comments:    api.NewContentHandler(comments, database, func() *models.Comment { return &models.Comment{} }, func(c *models.Comment) string { return c.Body }),
		Moderation:  api.NewModerationHandler(news, sharespeare, comments),
		Topics:      api.NewTopicHandler(database, comments, engines.Rules),
		Events:      api.NewEventHandler(database, engines.Rules),
		Accounts:    api.NewAccountHandler(database),
		Health:      api.NewHealthHandler(database),
	}, notifier, nil
}
