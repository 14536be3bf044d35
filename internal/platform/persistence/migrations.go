package persistence

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations brings the schema under databaseURL up to the newest file in dir.
// dir may be a bare path or a file:// URL. A dirty schema is reported, never forced.
func RunMigrations(logger *slog.Logger, databaseURL, dir string) (err error) {
	switch {
	case dir == "":
		return errors.New("migrations path cannot be empty")
	case databaseURL == "":
		return errors.New("database URL cannot be empty")
	}

	m, err := migrate.New(sourceURL(dir), databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open migrations at %s: %w", dir, err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err == nil {
			err = errors.Join(srcErr, dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Warn("No migrations found", "path", dir)
		return nil
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	case dirty:
		return fmt.Errorf("schema version %d is dirty", version)
	}
	logger.Info("Schema is up to date", "version", version)
	return nil
}

func sourceURL(dir string) string {
	if strings.HasPrefix(dir, "file://") {
		return dir
	}
	return "file://" + dir
}
