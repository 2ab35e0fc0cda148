package main

import (
	"github.com/spf13/cobra"

	"campusboard/internal/config"
	"campusboard/internal/logging"
	"campusboard/internal/seed"
	"campusboard/internal/server"
)

var migrateCommand = &cobra.Command{
	Use:   "migrate",
	Short: "Apply all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, database, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			return err
		}
		logging.Info().Msg("migrations completed")
		return nil
	},
}

var (
	seedMembers   int
	seedPerMember int
)

var seedCommand = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with sample accounts and content",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, database, err := setup(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			return err
		}
		engines, err := server.NewEngines(ctx, cfg, database)
		if err != nil {
			return err
		}

		policy := cfg.Policy
		if policy == nil {
			policy = config.DefaultPolicy()
		}
		s := &seed.Seeder{
			Accounts:    database,
			Topics:      database,
			Events:      database,
			News:        engines.News,
			Sharespeare: engines.Sharespeare,
			Comments:    engines.Comments,
			Categories:  policy.NewsCategories,
			Kinds:       policy.SharespeareKinds,
			Members:     seedMembers,
			PerMember:   seedPerMember,
		}
		_, err = s.Run(ctx)
		return err
	},
}

func init() {
	seedCommand.Flags().IntVar(&seedMembers, "members", 5, "number of member accounts to create")
	seedCommand.Flags().IntVar(&seedPerMember, "per-member", 4, "news and sharespeare items per member")
}
