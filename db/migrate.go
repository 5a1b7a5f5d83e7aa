package db

import (
	"database/sql"
	"embed"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/promptlab/promptlab/errors"
)

//go:embed sqlite/migrations/*.sql
var migrations embed.FS

const migrationsDir = "sqlite/migrations"

// Migrate brings the prompt library schema up to date, applying any
// embedded migration files that have not run yet. Migration 000 creates
// the schema_migrations bookkeeping table and must sort first.
// A nil logger runs the migrations silently.
func Migrate(db *sql.DB, logger *zap.SugaredLogger) error {
	files, err := migrationFiles()
	if err != nil {
		return err
	}

	var applied int
	for _, filename := range files {
		version := strings.SplitN(filename, "_", 2)[0]

		pending, err := isPending(db, version, filename)
		if err != nil {
			return err
		}
		if !pending {
			if logger != nil {
				logger.Debugw("Migration already applied", "migration", filename)
			}
			continue
		}

		if logger != nil {
			logger.Infow("Applying migration", "migration", filename)
		}
		if err := applyMigration(db, version, filename); err != nil {
			return err
		}
		applied++
	}

	if logger != nil {
		logger.Infow("Prompt library schema up to date",
			"applied", applied,
			"total", len(files),
		)
	}

	return nil
}

// migrationFiles lists the embedded .sql files in lexical order, which
// is also version order given the zero-padded numeric prefixes.
func migrationFiles() ([]string, error) {
	entries, err := migrations.ReadDir(migrationsDir)
	if err != nil {
		return nil, errors.Wrap(err, "read migrations")
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// isPending reports whether the given migration still needs to run.
func isPending(db *sql.DB, version, filename string) (bool, error) {
	var exists bool
	err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)", version).Scan(&exists)
	if err != nil {
		// No bookkeeping table yet: only migration 000 may run against
		// a virgin database.
		if version != "000" {
			return false, errors.Newf("schema_migrations table missing, but migration is not 000: %s", filename)
		}
		return true, nil
	}
	return !exists, nil
}

// applyMigration executes one migration file and records it, atomically.
func applyMigration(db *sql.DB, version, filename string) error {
	sqlBytes, err := migrations.ReadFile(filepath.Join(migrationsDir, filename))
	if err != nil {
		return errors.Wrapf(err, "read %s", filename)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrapf(err, "begin tx for %s", filename)
	}

	if _, err := tx.Exec(string(sqlBytes)); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "execute %s", filename)
	}

	// 000 creates schema_migrations and then records itself
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "record %s", filename)
	}

	return errors.Wrapf(tx.Commit(), "commit %s", filename)
}
