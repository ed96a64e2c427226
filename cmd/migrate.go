/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lungsight/apiserver/config"
	"github.com/lungsight/apiserver/internal/db"
	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		dsn, migrationsURL, err := migrationTarget(cfg)
		if err != nil {
			return err
		}

		migrator, err := migrate.New(migrationsURL, dsn)
		if err != nil {
			return fmt.Errorf("init migrator failed: %w", err)
		}
		defer func() {
			_, _ = migrator.Close()
		}()

		if err := migrator.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				return nil
			}
			return fmt.Errorf("migrate up failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
}

// migrationTarget resolves the DSN and migration source for the
// configured database driver.
func migrationTarget(cfg config.Config) (dsn, migrationsURL string, err error) {
	switch cfg.Database.Driver {
	case "sqlite":
		return "sqlite://" + cfg.Database.Path, "file://internal/db/migrations/sqlite", nil
	case "postgres":
		return db.PostgresURL(cfg.Database), "file://internal/db/migrations/postgres", nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}
