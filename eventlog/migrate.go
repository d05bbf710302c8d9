package eventlog

import (
	"database/sql"

	"github.com/iov-one/custody/errors"
)

// migrations are applied in order. An applied migration must never be
// modified, append a new one instead.
var migrations = []string{
	`CREATE TABLE events (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT NOT NULL UNIQUE,
		kind       TEXT NOT NULL,
		treasury   TEXT NOT NULL,
		time       INTEGER NOT NULL,
		attributes TEXT NOT NULL
	)`,
	`CREATE INDEX events_treasury ON events (treasury, seq)`,
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "schema version table: %s", err)
	}
	var version int
	switch err := db.QueryRow(`SELECT version FROM schema_version`).Scan(&version); err {
	case nil:
	case sql.ErrNoRows:
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return errors.Wrapf(errors.ErrDatabase, "init schema version: %s", err)
		}
	default:
		return errors.Wrapf(errors.ErrDatabase, "read schema version: %s", err)
	}
	if version > len(migrations) {
		return errors.Wrapf(errors.ErrState, "database schema %d is newer than supported %d", version, len(migrations))
	}

	for i := version; i < len(migrations); i++ {
		tx, err := db.Begin()
		if err != nil {
			return errors.Wrapf(errors.ErrDatabase, "begin: %s", err)
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			tx.Rollback()
			return errors.Wrapf(errors.ErrDatabase, "migration %d: %s", i+1, err)
		}
		if _, err := tx.Exec(`UPDATE schema_version SET version = ?`, i+1); err != nil {
			tx.Rollback()
			return errors.Wrapf(errors.ErrDatabase, "migration %d version: %s", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return errors.Wrapf(errors.ErrDatabase, "migration %d commit: %s", i+1, err)
		}
	}
	return nil
}
