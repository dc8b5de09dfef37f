// Package memory provides an in-process store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/saadz-khan/smartcampus/internal/model"
	"github.com/saadz-khan/smartcampus/internal/repository"
)

// Store keeps everything in maps guarded by one lock.
type Store struct {
	mu         sync.RWMutex
	rooms      map[string]model.Room
	bookings   map[model.BookingKey]model.Booking
	requesters map[string]model.Requester
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		rooms:      make(map[string]model.Room),
		bookings:   make(map[model.BookingKey]model.Booking),
		requesters: make(map[string]model.Requester),
	}
}

// LoadRooms returns the catalog ordered by room id.
func (s *Store) LoadRooms(ctx context.Context) ([]model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]model.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

// SaveRooms adds or replaces rooms in the catalog.
func (s *Store) SaveRooms(ctx context.Context, rooms []model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rooms {
		if r.ID == "" {
			return fmt.Errorf("room id is required")
		}
		s.rooms[r.ID] = r
	}
	return nil
}

// ListBookings returns every live booking.
func (s *Store) ListBookings(ctx context.Context) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings := make([]model.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		bookings = append(bookings, b)
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CreatedAt.Before(bookings[j].CreatedAt) })
	return bookings, nil
}

// InsertBooking stores b, or returns repository.ErrConflict when its key is taken.
func (s *Store) InsertBooking(ctx context.Context, b model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := b.Key()
	if _, taken := s.bookings[key]; taken {
		return fmt.Errorf("booking %s/%s/%s: %w", key.RoomID, key.Date, key.Slot, repository.ErrConflict)
	}
	s.bookings[key] = b
	return nil
}

// DeleteBooking removes the booking at key, or returns repository.ErrNotFound.
func (s *Store) DeleteBooking(ctx context.Context, key model.BookingKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[key]; !ok {
		return repository.ErrNotFound
	}
	delete(s.bookings, key)
	return nil
}

// ListRequesters returns every registered requester.
func (s *Store) ListRequesters(ctx context.Context) ([]model.Requester, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	requesters := make([]model.Requester, 0, len(s.requesters))
	for _, r := range s.requesters {
		requesters = append(requesters, r)
	}
	sort.Slice(requesters, func(i, j int) bool { return requesters[i].ID < requesters[j].ID })
	return requesters, nil
}

// InsertRequester stores r, or returns repository.ErrConflict for a known id.
func (s *Store) InsertRequester(ctx context.Context, r model.Requester) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.requesters[r.ID]; taken {
		return fmt.Errorf("requester %s: %w", r.ID, repository.ErrConflict)
	}
	s.requesters[r.ID] = r
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

var _ repository.Store = (*Store)(nil)
