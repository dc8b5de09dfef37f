package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/saadz-khan/smartcampus/internal/model"
	"github.com/saadz-khan/smartcampus/internal/repository"
)

func TestInsertBookingConflict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore()
	b := model.Booking{ID: "1", RoomID: "101", Date: "2030-01-01", Slot: "10:00-11:00", RequesterID: "12345678", CreatedAt: time.Now()}

	if err := s.InsertBooking(ctx, b); err != nil {
		t.Fatalf("InsertBooking() failed: %v", err)
	}
	b.ID, b.RequesterID = "2", "87654321"
	if err := s.InsertBooking(ctx, b); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("second InsertBooking() error = %v, want ErrConflict", err)
	}

	bookings, _ := s.ListBookings(ctx)
	if len(bookings) != 1 || bookings[0].RequesterID != "12345678" {
		t.Errorf("ListBookings() = %+v", bookings)
	}
}

func TestConcurrentInsertBookingSingleWinner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.InsertBooking(ctx, model.Booking{RoomID: "101", Date: "2030-01-01", Slot: "10:00-11:00"})
			if err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("wins = %d, want 1", wins.Load())
	}
}

func TestDeleteBooking(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore()
	b := model.Booking{RoomID: "102", Date: "2030-01-02", Slot: "09:00-10:00"}
	_ = s.InsertBooking(ctx, b)

	if err := s.DeleteBooking(ctx, b.Key()); err != nil {
		t.Fatalf("DeleteBooking() failed: %v", err)
	}
	if err := s.DeleteBooking(ctx, b.Key()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second DeleteBooking() error = %v, want ErrNotFound", err)
	}
}

func TestRoomsAndRequesters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore()

	if err := s.SaveRooms(ctx, []model.Room{{ID: "102", Capacity: 10}, {ID: "101", Capacity: 4}}); err != nil {
		t.Fatalf("SaveRooms() failed: %v", err)
	}
	rooms, _ := s.LoadRooms(ctx)
	if len(rooms) != 2 || rooms[0].ID != "101" {
		t.Errorf("LoadRooms() = %+v", rooms)
	}

	r := model.Requester{ID: "12345678", DisplayName: "Ada"}
	if err := s.InsertRequester(ctx, r); err != nil {
		t.Fatalf("InsertRequester() failed: %v", err)
	}
	if err := s.InsertRequester(ctx, r); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("duplicate InsertRequester() error = %v, want ErrConflict", err)
	}
}
