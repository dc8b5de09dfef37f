// Package postgres implements the storage contracts on PostgreSQL using pgx
// directly (no ORM).
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saadz-khan/smartcampus/internal/model"
	"github.com/saadz-khan/smartcampus/internal/repository"
)

// uniqueViolation is the SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	id       TEXT PRIMARY KEY,
	capacity INTEGER NOT NULL CHECK (capacity >= 1),
	location TEXT NOT NULL,
	floor    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS bookings (
	id           TEXT PRIMARY KEY,
	room_id      TEXT NOT NULL REFERENCES rooms(id),
	date         DATE NOT NULL,
	slot         TEXT NOT NULL,
	requester_id TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	UNIQUE (room_id, date, slot)
);
CREATE TABLE IF NOT EXISTS requesters (
	id           TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	contact      TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);`

// Store handles persistence on a pgx pool.
type Store struct {
	db *pgxpool.Pool
}

// NewStore constructs a Store. Call Migrate before first use.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Migrate creates the tables when they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.db.Close()
	return nil
}

// LoadRooms returns the catalog ordered by id.
func (s *Store) LoadRooms(ctx context.Context) ([]model.Room, error) {
	rows, err := s.db.Query(ctx, `SELECT id, capacity, location, floor FROM rooms ORDER BY id`)
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

// SaveRooms upserts the given rooms in one transaction.
func (s *Store) SaveRooms(ctx context.Context, rooms []model.Room) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for _, r := range rooms {
		_, err = tx.Exec(ctx,
			`INSERT INTO rooms (id, capacity, location, floor) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE SET capacity = EXCLUDED.capacity, location = EXCLUDED.location, floor = EXCLUDED.floor`,
			r.ID, r.Capacity, r.Location, r.Floor,
		)
		if err != nil {
			return fmt.Errorf("save room %s: %w", r.ID, err)
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListBookings returns the ledger ordered by creation time.
func (s *Store) ListBookings(ctx context.Context) ([]model.Booking, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, room_id, to_char(date, 'YYYY-MM-DD'), slot, requester_id, created_at
		 FROM bookings
		 ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.RoomID, &b.Date, &b.Slot, &b.RequesterID, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// InsertBooking relies on UNIQUE (room_id, date, slot) so two writers racing
// on the same key cannot both succeed, even outside the coordinator.
func (s *Store) InsertBooking(ctx context.Context, b model.Booking) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO bookings (id, room_id, date, slot, requester_id, created_at)
		 VALUES ($1, $2, $3::date, $4, $5, $6)`,
		b.ID, b.RoomID, b.Date, b.Slot, b.RequesterID, b.CreatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("booking %s/%s/%s: %w", b.RoomID, b.Date, b.Slot, repository.ErrConflict)
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// DeleteBooking removes the booking with the given key or returns ErrNotFound.
func (s *Store) DeleteBooking(ctx context.Context, key model.BookingKey) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM bookings WHERE room_id = $1 AND date = $2::date AND slot = $3`,
		key.RoomID, key.Date, key.Slot,
	)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListRequesters returns every registered requester.
func (s *Store) ListRequesters(ctx context.Context) ([]model.Requester, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, display_name, contact, created_at FROM requesters ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list requesters: %w", err)
	}
	defer rows.Close()

	var requesters []model.Requester
	for rows.Next() {
		var r model.Requester
		if err := rows.Scan(&r.ID, &r.DisplayName, &r.Contact, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan requester: %w", err)
		}
		requesters = append(requesters, r)
	}
	return requesters, rows.Err()
}

// InsertRequester creates a requester or returns ErrConflict.
func (s *Store) InsertRequester(ctx context.Context, r model.Requester) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO requesters (id, display_name, contact, created_at) VALUES ($1, $2, $3, $4)`,
		r.ID, r.DisplayName, r.Contact, r.CreatedAt.UTC(),
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
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

var _ repository.Store = (*Store)(nil)
