package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/storage/redis/v3"
	"github.com/spf13/cobra"

	"campusboard/internal/authority"
	"campusboard/internal/config"
	"campusboard/internal/db"
	"campusboard/internal/jobs"
	"campusboard/internal/logging"
	"campusboard/internal/server"
)

var rootCommand = &cobra.Command{
	Use:   "campusboard",
	Short: "Run the campus board API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func main() {
	rootCommand.AddCommand(migrateCommand, seedCommand)
	if err := rootCommand.Execute(); err != nil {
		logging.Fatal().Err(err).Msg("campusboard exited")
	}
}

// setup loads configuration and opens the database.
func setup(ctx context.Context) (*config.Config, *db.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logging.Setup(cfg.LogLevel, cfg.IsDev())

	database, err := db.New(ctx, cfg.DatabaseURL, cfg.DBTraceLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, database, nil
}

func serve(ctx context.Context) error {
	defer logging.LogPanics(nil)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, database, err := setup(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	if cfg.AutoMigrate {
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			return err
		}
		logging.Info().Msg("migrations completed")
	}

	// A nil *redis.Storage must not leak into the interfaces below.
	var (
		tokenCache     authority.Cache
		sessionStorage fiber.Storage
	)
	if cfg.RedisURL != "" {
		store := redis.New(redis.Config{URL: cfg.RedisURL})
		defer store.Close()
		tokenCache = store
		sessionStorage = store
		logging.Info().Dur("ttl", cfg.TokenCacheTTL).Msg("token cache enabled")
	}

	srv := server.New(cfg, sessionStorage)
	handlers, notifier, err := server.Build(ctx, cfg, database, tokenCache)
	if err != nil {
		return err
	}
	srv.RegisterRoutes(handlers)

	if cfg.PendingDigestInterval > 0 {
		digest := jobs.NewPendingDigest(database, notifier, cfg.PendingDigestInterval, cfg.PendingDigestMinAge)
		go digest.Start(ctx)
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Start()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	if err := srv.Shutdown(); err != nil {
		return err
	}
	logging.Info().Msg("server exited")
	return nil
}
