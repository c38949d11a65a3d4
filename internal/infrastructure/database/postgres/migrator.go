package postgres

import (
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/docsight/docsight/internal/infrastructure/monitoring/logging"
	apperrors "github.com/docsight/docsight/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies all pending schema migrations for the store.  It is safe
// to call on every startup; an already-current schema is not an error.
func Migrate(cfg Config, log logging.Logger) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorageError, "load embedded migrations")
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, "pgx5://"+trimScheme(cfg.DSN()))
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorageError, "init migrator")
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Debug("Schema already current")
			return nil
		}
		return apperrors.Wrap(err, apperrors.ErrCodeStorageError, "apply migrations")
	}

	version, dirty, verr := m.Version()
	if verr == nil {
		log.Info("Applied schema migrations",
			logging.Int("version", int(version)),
			logging.Bool("dirty", dirty),
		)
	}
	return nil
}

// trimScheme drops the postgres:// prefix so the DSN can be re-schemed for
// the pgx5 migrate driver.
func trimScheme(dsn string) string {
	const prefix = "postgres://"
	if len(dsn) > len(prefix) && dsn[:len(prefix)] == prefix {
		return dsn[len(prefix):]
	}
	return dsn
}
