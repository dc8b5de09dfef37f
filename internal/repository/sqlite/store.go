// Package sqlite provides a SQLite-backed store using the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/saadz-khan/smartcampus/internal/model"
	"github.com/saadz-khan/smartcampus/internal/repository"
	"github.com/sirupsen/logrus"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	id TEXT PRIMARY KEY,
	capacity INTEGER NOT NULL CHECK (capacity >= 1),
	location TEXT NOT NULL,
	floor INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS bookings (
	id TEXT PRIMARY KEY,
	room_id TEXT NOT NULL REFERENCES rooms(id),
	date TEXT NOT NULL,
	slot TEXT NOT NULL,
	requester_id TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	UNIQUE (room_id, date, slot)
);
CREATE TABLE IF NOT EXISTS requesters (
	id TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	contact TEXT NOT NULL,
	created_at INTEGER NOT NULL
);`

// Store persists rooms, bookings and requesters in one SQLite file.
type Store struct {
	db *sql.DB
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open opens the database at path and creates the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time; avoids SQLITE_BUSY under concurrent actors.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	logrus.WithField("path", path).Debug("sqlite store ready")
	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LoadRooms returns the catalog ordered by room id.
func (s *Store) LoadRooms(ctx context.Context) ([]model.Room, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, capacity, location, floor FROM rooms ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		var r model.Room
		if err := rows.Scan(&r.ID, &r.Capacity, &r.Location, &r.Floor); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

// SaveRooms upserts rooms in one transaction.
func (s *Store) SaveRooms(ctx context.Context, rooms []model.Room) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, r := range rooms {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO rooms (id, capacity, location, floor) VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET capacity = excluded.capacity, location = excluded.location, floor = excluded.floor`,
			r.ID, r.Capacity, r.Location, r.Floor,
		)
		if err != nil {
			return fmt.Errorf("save room %s: %w", r.ID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListBookings returns every live booking.
func (s *Store) ListBookings(ctx context.Context) ([]model.Booking, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, room_id, date, slot, requester_id, created_at FROM bookings ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		var (
			b       model.Booking
			created int64
		)
		if err := rows.Scan(&b.ID, &b.RoomID, &b.Date, &b.Slot, &b.RequesterID, &created); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		b.CreatedAt = fromMillis(created)
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// InsertBooking stores b. A taken key is reported as repository.ErrConflict.
func (s *Store) InsertBooking(ctx context.Context, b model.Booking) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bookings (id, room_id, date, slot, requester_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.RoomID, b.Date, b.Slot, b.RequesterID, toMillis(b.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("booking %s/%s/%s: %w", b.RoomID, b.Date, b.Slot, repository.ErrConflict)
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// DeleteBooking removes the booking at key, or returns repository.ErrNotFound.
func (s *Store) DeleteBooking(ctx context.Context, key model.BookingKey) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM bookings WHERE room_id = ? AND date = ? AND slot = ?`,
		key.RoomID, key.Date, key.Slot,
	)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListRequesters returns every registered requester.
func (s *Store) ListRequesters(ctx context.Context) ([]model.Requester, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, display_name, contact, created_at FROM requesters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list requesters: %w", err)
	}
	defer rows.Close()

	var requesters []model.Requester
	for rows.Next() {
		var (
			r       model.Requester
			created int64
		)
		if err := rows.Scan(&r.ID, &r.DisplayName, &r.Contact, &created); err != nil {
			return nil, fmt.Errorf("scan requester: %w", err)
		}
		r.CreatedAt = fromMillis(created)
		requesters = append(requesters, r)
	}
	return requesters, rows.Err()
}

// InsertRequester stores r. A known id is reported as repository.ErrConflict.
func (s *Store) InsertRequester(ctx context.Context, r model.Requester) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO requesters (id, display_name, contact, created_at) VALUES (?, ?, ?, ?)`,
		r.ID, r.DisplayName, r.Contact, toMillis(r.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("requester %s: %w", r.ID, repository.ErrConflict)
		}
		return fmt.Errorf("insert requester: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ repository.Store = (*Store)(nil)
