/*
Package eventlog keeps an append-only journal of the events emitted by
committed deliveries. The journal is stored in a SQLite database and serves
audit and analytics readers that must not touch the application state.
*/
package eventlog

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/tendermint/tendermint/libs/common"

	// Pure Go SQLite driver, registered as "sqlite".
	_ "modernc.org/sqlite"
)

// Journal is a SQLite backed event journal. It is safe for concurrent use.
type Journal struct {
	db *sql.DB
}

// Open returns a journal writing to the database file at given path. Parent
// directories are created and pending migrations are applied.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "create directory: %s", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open: %s", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

// Close releases the database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Entry is a single journal record.
type Entry struct {
	ID         string           `json:"id"`
	Seq        int64            `json:"seq"`
	Kind       string           `json:"kind"`
	Treasury   string           `json:"treasury"`
	Time       custody.UnixTime `json:"time"`
	Attributes []Attribute      `json:"attributes"`
}

// Attribute is a key value pair describing an event.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event returns the event this entry was created from.
func (e *Entry) Event() (custody.Event, error) {
	tid, err := hex.DecodeString(e.Treasury)
	if err != nil {
		return custody.Event{}, errors.Wrap(errors.ErrInput, "treasury id")
	}
	attrs := make([]common.KVPair, len(e.Attributes))
	for i, a := range e.Attributes {
		attrs[i] = common.KVPair{Key: []byte(a.Key), Value: []byte(a.Value)}
	}
	return custody.Event{Kind: e.Kind, Treasury: tid, Time: e.Time, Attributes: attrs}, nil
}

// Publish appends all events in a single database transaction, so that a
// delivery is journaled entirely or not at all.
func (j *Journal) Publish(ctx context.Context, events []custody.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrapf(errors.ErrDatabase, "begin: %s", err)
	}
	defer tx.Rollback()

	for _, e := range events {
		attrs := make([]Attribute, len(e.Attributes))
		for i, a := range e.Attributes {
			attrs[i] = Attribute{Key: string(a.Key), Value: string(a.Value)}
		}
		rawAttrs, err := json.Marshal(attrs)
		if err != nil {
			return errors.Wrap(err, "attributes")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO events (id, kind, treasury, time, attributes) VALUES (?, ?, ?, ?, ?)`,
			uuid.New().String(), e.Kind, hex.EncodeToString(e.Treasury), int64(e.Time), string(rawAttrs))
		if err != nil {
			return errors.Wrapf(errors.ErrDatabase, "insert %s: %s", e.Kind, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "commit: %s", err)
	}
	return nil
}

// List returns up to limit oldest entries, in the order they were
// published, for the given treasury. A nil treasury lists entries of all
// treasuries. Only entries with a sequence greater than after are returned,
// which allows to page through the journal.
func (j *Journal) List(ctx context.Context, treasury []byte, after int64, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, errors.Wrap(errors.ErrInput, "limit must be positive")
	}
	query := `SELECT seq, id, kind, treasury, time, attributes FROM events WHERE seq > ?`
	args := []interface{}{after}
	if treasury != nil {
		query += ` AND treasury = ?`
		args = append(args, hex.EncodeToString(treasury))
	}
	query += ` ORDER BY seq LIMIT ?`
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "query: %s", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			t        int64
			rawAttrs string
		)
		if err := rows.Scan(&e.Seq, &e.ID, &e.Kind, &e.Treasury, &t, &rawAttrs); err != nil {
			return nil, errors.Wrapf(errors.ErrDatabase, "scan: %s", err)
		}
		e.Time = custody.UnixTime(t)
		if err := json.Unmarshal([]byte(rawAttrs), &e.Attributes); err != nil {
			return nil, errors.Wrapf(errors.ErrDatabase, "attributes of %s: %s", e.ID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "iterate: %s", err)
	}
	return entries, nil
}
