package commands

import (
	"database/sql"

	"github.com/promptlab/promptlab/am"
	"github.com/promptlab/promptlab/db"
	"github.com/promptlab/promptlab/errors"
	"github.com/promptlab/promptlab/logger"
)

// openDatabase opens and migrates the database at dbPath. An empty path
// resolves through config (with the DB_PATH override).
func openDatabase(dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		path, err := resolveDatabasePath()
		if err != nil {
			return nil, err
		}
		dbPath = path
	}

	database, err := db.OpenWithMigrations(dbPath, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", dbPath)
	}
	return database, nil
}

// resolveDatabasePath resolves the database path from config, falling
// back to the default filename next to the working directory.
func resolveDatabasePath() (string, error) {
	path, err := am.GetDatabasePath()
	if err != nil {
		return "", errors.Wrap(err, "failed to get database path")
	}
	if path == "" {
		path = "promptlab.db"
	}
	return path, nil
}
