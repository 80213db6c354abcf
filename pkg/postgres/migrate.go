package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // postgres:// driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // file:// source
)

// RunMigrations applies every pending migration in source (for example
// "file://migrations"). Being up to date is not an error.
func RunMigrations(dsn, source string) error {
	return migrateWith(dsn, source, "up", (*migrate.Migrate).Up)
}

// RunMigrationsDown rolls every migration back.
func RunMigrationsDown(dsn, source string) error {
	return migrateWith(dsn, source, "down", (*migrate.Migrate).Down)
}

func migrateWith(dsn, source, direction string, step func(*migrate.Migrate) error) error {
	m, err := migrate.New(source, dsn)
	if err != nil {
		return fmt.Errorf("postgres: open migrations %s: %w", source, err)
	}
	defer m.Close()

	if err := step(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: migrate %s: %w", direction, err)
	}
	return nil
}
