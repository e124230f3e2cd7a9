package postgres

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrator applies the SQL files of a migrations directory.
type Migrator struct {
	m *migrate.Migrate
}

// NewMigrator opens dir as a migration source against the database at dsn.
//
// Precondition: dir must contain golang-migrate NNN_name.{up,down}.sql files.
// Postcondition: The caller must Close the returned Migrator.
func NewMigrator(dsn, dir string) (*Migrator, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving migrations dir %q: %w", dir, err)
	}
	m, err := migrate.New("file://"+filepath.ToSlash(abs), dsn)
	if err != nil {
		return nil, fmt.Errorf("creating migrator: %w", err)
	}
	return &Migrator{m: m}, nil
}

// Up applies steps pending migrations, or all of them when steps <= 0.
//
// Postcondition: changed is false when the schema was already current.
func (mg *Migrator) Up(steps int) (changed bool, err error) {
	if steps > 0 {
		return normalize(mg.m.Steps(steps))
	}
	return normalize(mg.m.Up())
}

// Down reverts steps migrations, or all of them when steps <= 0.
func (mg *Migrator) Down(steps int) (changed bool, err error) {
	if steps > 0 {
		return normalize(mg.m.Steps(-steps))
	}
	return normalize(mg.m.Down())
}

// Version reports the applied schema version; 0 means no migration has run.
func (mg *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Close releases the source and database handles.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

func normalize(err error) (bool, error) {
	if errors.Is(err, migrate.ErrNoChange) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("migrating: %w", err)
	}
	return true, nil
}
