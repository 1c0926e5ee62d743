package main

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/open-sspm/oauth-risk/internal/config"
	"github.com/open-sspm/oauth-risk/internal/scopelib"
)

func newMigrateCmd() *cobra.Command {
	var down bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the scope library schema migrations to DATABASE_URL.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadRequireDB()
			if err != nil {
				return invalidInput(err)
			}

			db, err := sql.Open("pgx", cfg.DatabaseURL)
			if err != nil {
				return runError(err)
			}
			defer db.Close()

			m, err := newMigrator(db)
			if err != nil {
				return runError(err)
			}

			apply := m.Up
			if down {
				apply = m.Down
			}
			if err := apply(); err != nil {
				if errors.Is(err, migrate.ErrNoChange) {
					slog.Info("no changes to apply")
					return nil
				}
				return runError(err)
			}

			slog.Info("migrations applied successfully", "down", down)
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "Roll every migration back instead of applying")
	return structuredLog(cmd)
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(scopelib.Migrations(), ".")
	if err != nil {
		return nil, err
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, err
	}
	return migrate.NewWithInstance("iofs", src, "postgres", driver)
}
