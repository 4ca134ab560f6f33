// Copyright (c) 2025 The rstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"context"
	"database/sql"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// MaxLimit caps the number of events a single filter may return.
const MaxLimit = 1000

// EventDB indexes operation events in sqlite.
type EventDB struct {
	path          string
	db            *sql.DB
	sqliteVersion string
}

// New opens an event db at path.
func New(path string) (*EventDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// a memory database lives per connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(eventTableSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create schema")
	}
	s, _, _ := sqlite3.Version()
	return &EventDB{
		path:          path,
		db:            db,
		sqliteVersion: s,
	}, nil
}

// NewMem creates a memory sqlite db.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Insert stores events in one transaction and fills in their Seq.
func (db *EventDB) Insert(ctx context.Context, events []*Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, ev := range events {
		res, err := tx.ExecContext(ctx, "INSERT INTO event(kind, era, epoch, time, data) VALUES (?, ?, ?, ?, ?);",
			ev.Kind,
			ev.Era,
			ev.Epoch,
			ev.Time,
			[]byte(ev.Data))
		if err != nil {
			tx.Rollback()
			return errors.Wrap(err, "insert event")
		}
		seq, err := res.LastInsertId()
		if err != nil {
			tx.Rollback()
			return err
		}
		ev.Seq = uint64(seq)
	}
	return tx.Commit()
}

// Filter returns events matching the filter.
func (db *EventDB) Filter(ctx context.Context, filter *Filter) ([]*Event, error) {
	if filter == nil {
		return db.query(ctx, "SELECT seq, kind, era, epoch, time, data FROM event ORDER BY seq ASC LIMIT ?", MaxLimit)
	}
	var args []any
	stmt := "SELECT seq, kind, era, epoch, time, data FROM event WHERE 1"
	if filter.After > 0 {
		args = append(args, filter.After)
		stmt += " AND seq > ? "
	}
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		stmt += " AND era >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND era <= ? "
		}
	}
	if len(filter.Kinds) > 0 {
		stmt += " AND kind IN (" + strings.TrimSuffix(strings.Repeat("?,", len(filter.Kinds)), ",") + ") "
		for _, k := range filter.Kinds {
			args = append(args, k)
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC "
	} else {
		stmt += " ORDER BY seq ASC "
	}

	offset, limit := uint64(0), uint64(MaxLimit)
	if filter.Options != nil {
		offset = filter.Options.Offset
		if filter.Options.Limit < limit {
			limit = filter.Options.Limit
		}
	}
	stmt += " LIMIT ?, ? "
	args = append(args, offset, limit)
	return db.query(ctx, stmt, args...)
}

// Latest returns the event with the highest seq, or nil when the db is empty.
func (db *EventDB) Latest(ctx context.Context) (*Event, error) {
	events, err := db.query(ctx, "SELECT seq, kind, era, epoch, time, data FROM event ORDER BY seq DESC LIMIT 1")
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return events[0], nil
}

func (db *EventDB) query(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			ev   Event
			data []byte
		)
		if err := rows.Scan(
			&ev.Seq,
			&ev.Kind,
			&ev.Era,
			&ev.Epoch,
			&ev.Time,
			&data,
		); err != nil {
			return nil, err
		}
		ev.Data = data
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Path returns the db path.
func (db *EventDB) Path() string {
	return db.path
}

// SQLiteVersion returns the version of the linked sqlite library.
func (db *EventDB) SQLiteVersion() string {
	return db.sqliteVersion
}

// Close closes the db.
func (db *EventDB) Close() error {
	return db.db.Close()
}
