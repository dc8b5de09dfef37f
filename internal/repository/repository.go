// Package repository defines the storage contracts behind the booking
// coordinator and the requester registry.
//
// Stores are write-through backing for actor-owned state: the owning actor
// keeps the authoritative in-memory view and persists every mutation inside
// the same critical section. Stores must still enforce uniqueness of the
// booking key and the requester id on their own.
package repository

import (
	"context"
	"errors"

	"github.com/saadz-khan/smartcampus/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert violates a uniqueness constraint.
var ErrConflict = errors.New("already exists")

// BookingStore persists the room catalog and the booking ledger.
type BookingStore interface {
	LoadRooms(ctx context.Context) ([]model.Room, error)
	SaveRooms(ctx context.Context, rooms []model.Room) error
	ListBookings(ctx context.Context) ([]model.Booking, error)
	// InsertBooking returns ErrConflict when the booking key is taken.
	InsertBooking(ctx context.Context, b model.Booking) error
	// DeleteBooking returns ErrNotFound when no booking has the key.
	DeleteBooking(ctx context.Context, key model.BookingKey) error
}

// RequesterStore persists registered requesters.
type RequesterStore interface {
	ListRequesters(ctx context.Context) ([]model.Requester, error)
	// InsertRequester returns ErrConflict when the id is taken.
	InsertRequester(ctx context.Context, r model.Requester) error
}

// Store is a complete storage backend.
type Store interface {
	BookingStore
	RequesterStore
	Close() error
}
