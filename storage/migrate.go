package storage

import (
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies fn to a migrator bound to the embedded schema. The
// migrator owns its own connection since closing it closes the database.
func Migrate(connString string, fn func(m *migrate.Migrate) error) error {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return errors.Wrap(err, "open migration database")
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return errors.Wrap(err, "create postgres driver")
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		db.Close()
		return errors.Wrap(err, "create iofs source")
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		db.Close()
		return errors.Wrap(err, "create migrate instance")
	}
	defer m.Close()

	if err := fn(m); err != nil && errors.Cause(err) != migrate.ErrNoChange {
		return err
	}

	return nil
}

func MigrateUp(connString string) error {
	return Migrate(connString, func(m *migrate.Migrate) error {
		log.Info("applying migrations")
		return errors.Wrap(m.Up(), "migrate up")
	})
}

// MigrateDown rolls back steps migrations, or all of them when steps < 1.
func MigrateDown(connString string, steps int) error {
	return Migrate(connString, func(m *migrate.Migrate) error {
		if steps < 1 {
			log.Warn("rolling back all migrations")
			return errors.Wrap(m.Down(), "migrate down")
		}
		log.WithField("steps", steps).Info("rolling back migrations")
		return errors.Wrap(m.Steps(-steps), "migrate steps")
	})
}

func MigrationVersion(connString string) (version uint, dirty bool, err error) {
	err = Migrate(connString, func(m *migrate.Migrate) error {
		version, dirty, err = m.Version()
		if err == migrate.ErrNilVersion {
			return nil
		}
		return err
	})
	return
}
