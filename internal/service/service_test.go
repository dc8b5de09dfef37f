package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/saadz-khan/smartcampus/internal/actor"
	"github.com/saadz-khan/smartcampus/internal/booking"
	"github.com/saadz-khan/smartcampus/internal/campus"
	"github.com/saadz-khan/smartcampus/internal/directory"
	"github.com/saadz-khan/smartcampus/internal/model"
	"github.com/saadz-khan/smartcampus/internal/repository/memory"
	"github.com/saadz-khan/smartcampus/internal/service"
)

var fixedNow = time.Date(2029, 6, 1, 12, 0, 0, 0, time.UTC)

func start(t *testing.T) *campus.Campus {
	t.Helper()
	return startWithTimeout(t, time.Second)
}

func startWithTimeout(t *testing.T, askTimeout time.Duration) *campus.Campus {
	t.Helper()
	c, err := campus.Start(context.Background(), memory.NewStore(), campus.Options{
		AskTimeout: askTimeout,
		Clock:      func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("campus.Start() failed: %v", err)
	}
	t.Cleanup(c.Shutdown)
	return c
}

func TestBookAndCancel(t *testing.T) {
	t.Parallel()

	c := start(t)
	svc := c.Service
	ctx := context.Background()

	if err := svc.Register(ctx, model.RegisterRequest{RequesterID: "12345678", DisplayName: "Ada", Contact: " ADA@Campus.edu "}); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	b, err := svc.Book(ctx, model.BookingProposal{RoomID: " 101 ", Date: "2029-06-02", Slot: "10:00-11:00", RequesterID: "12345678"})
	if err != nil {
		t.Fatalf("Book() failed: %v", err)
	}
	if b.RoomID != "101" || b.ID == "" {
		t.Errorf("Book() = %+v, want room 101 with an id", b)
	}

	rooms, err := svc.AvailableRooms(ctx, model.AvailabilityQuery{Date: "2029-06-02", Slot: "10:00-11:00"})
	if err != nil {
		t.Fatalf("AvailableRooms() failed: %v", err)
	}
	if len(rooms) != 1 || rooms[0].ID != "102" {
		t.Errorf("AvailableRooms() = %+v, want only 102", rooms)
	}

	if err := svc.Cancel(ctx, model.CancelRequest{RoomID: "101", Date: "2029-06-02", Slot: "10:00-11:00", RequesterID: "12345678"}); err != nil {
		t.Fatalf("Cancel() failed: %v", err)
	}
	err = svc.Cancel(ctx, model.CancelRequest{RoomID: "101", Date: "2029-06-02", Slot: "10:00-11:00", RequesterID: "12345678"})
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("second Cancel() error = %v, want not found", err)
	}
}

func TestErrorKinds(t *testing.T) {
	t.Parallel()

	c := start(t)
	svc := c.Service
	ctx := context.Background()

	if err := svc.Register(ctx, model.RegisterRequest{RequesterID: "12345678", DisplayName: "Ada", Contact: "ada@campus.edu"}); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if _, err := svc.Book(ctx, model.BookingProposal{RoomID: "101", Date: "2029-06-02", Slot: "10:00-11:00", RequesterID: "12345678"}); err != nil {
		t.Fatalf("Book() failed: %v", err)
	}

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{
			name: "missing room",
			call: func() error {
				_, err := svc.Book(ctx, model.BookingProposal{Date: "2029-06-02", Slot: "10:00-11:00", RequesterID: "12345678"})
				return err
			},
			want: model.ErrValidation,
		},
		{
			name: "slot too long",
			call: func() error {
				_, err := svc.Book(ctx, model.BookingProposal{RoomID: "102", Date: "2029-06-03", Slot: "10:00-13:00", RequesterID: "12345678"})
				return err
			},
			want: model.ErrValidation,
		},
		{
			name: "room taken",
			call: func() error {
				_, err := svc.Book(ctx, model.BookingProposal{RoomID: "101", Date: "2029-06-02", Slot: "10:00-11:00", RequesterID: "87654321",
					Registration: &model.Registration{DisplayName: "Bob", Contact: "bob@campus.edu"}})
				return err
			},
			want: model.ErrConflict,
		},
		{
			name: "duplicate requester",
			call: func() error {
				return svc.Register(ctx, model.RegisterRequest{RequesterID: "12345678", DisplayName: "Eve", Contact: "eve@campus.edu"})
			},
			want: model.ErrConflict,
		},
		{
			name: "unknown requester",
			call: func() error { return svc.Exists(ctx, "00000000") },
			want: model.ErrNotFound,
		},
		{
			name: "unknown room directions",
			call: func() error {
				_, err := svc.Directions(ctx, model.DirectionsRequest{CurrentLocation: "Main Gate", RoomID: "999"})
				return err
			},
			want: model.ErrNotFound,
		},
		{
			name: "missing availability date",
			call: func() error {
				_, err := svc.AvailableRooms(ctx, model.AvailabilityQuery{Slot: "10:00-11:00"})
				return err
			},
			want: model.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExistsAndDirections(t *testing.T) {
	t.Parallel()

	c := start(t)
	svc := c.Service
	ctx := context.Background()

	if err := svc.Register(ctx, model.RegisterRequest{RequesterID: "12345678", DisplayName: "Ada", Contact: "ada@campus.edu"}); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if err := svc.Exists(ctx, "12345678"); err != nil {
		t.Errorf("Exists() error = %v, want nil", err)
	}

	d, err := svc.Directions(ctx, model.DirectionsRequest{CurrentLocation: "Main Gate", RoomID: "102", RequesterID: "12345678"})
	if err != nil {
		t.Fatalf("Directions() failed: %v", err)
	}
	if d.Building != "Building B" || d.Floor != 2 || d.From != "Main Gate" {
		t.Errorf("Directions() = %+v", d)
	}
}

func TestMissingRoleIsDependencyUnavailable(t *testing.T) {
	t.Parallel()

	c := start(t)
	c.Directory.Deregister(campus.NavigatorID)

	_, err := c.Service.Directions(context.Background(), model.DirectionsRequest{RoomID: "101"})
	if !errors.Is(err, model.ErrDependencyUnavailable) {
		t.Errorf("Directions() error = %v, want dependency unavailable", err)
	}
}

func TestStoppedActorIsDependencyUnavailable(t *testing.T) {
	t.Parallel()

	c := start(t)
	c.System.Stop(campus.RegistryID)

	err := c.Service.Exists(context.Background(), "12345678")
	if !errors.Is(err, model.ErrDependencyUnavailable) {
		t.Errorf("Exists() error = %v, want dependency unavailable", err)
	}
}

func TestNewRejectsSecondGateway(t *testing.T) {
	t.Parallel()

	c := start(t)
	if _, err := service.New(c.System, directory.New()); err == nil {
		t.Error("New() with a taken gateway id should fail")
	}
}

// slowRegistry replaces the registry actor with one that answers every
// message after delay.
func slowRegistry(t *testing.T, c *campus.Campus, delay time.Duration) {
	t.Helper()
	c.System.Stop(campus.RegistryID)

	behaviours := c.Registry.Behaviours()
	for i := range behaviours {
		handle := behaviours[i].Handle
		behaviours[i].Concurrent = true
		behaviours[i].Handle = func(conv *actor.Conversation) {
			time.Sleep(delay)
			handle(conv)
		}
	}
	if _, err := c.System.Spawn(campus.RegistryID, behaviours...); err != nil {
		t.Fatalf("spawn slow registry: %v", err)
	}
}

func TestBookWithSlowRegistry(t *testing.T) {
	t.Parallel()

	c := startWithTimeout(t, 2*time.Second)
	slowRegistry(t, c, 200*time.Millisecond)

	b, err := c.Service.Book(context.Background(), model.BookingProposal{
		RoomID: "101", Date: "2029-06-02", Slot: "10:00-11:00", RequesterID: "87654321",
		Registration: &model.Registration{DisplayName: "Bob", Contact: "bob@campus.edu"},
	})
	if err != nil {
		t.Fatalf("Book() failed: %v", err)
	}
	if b.RequesterID != "87654321" {
		t.Errorf("Book() = %+v", b)
	}
	if !c.Registry.Exists("87654321") {
		t.Error("requester was not registered on booking")
	}
}

func TestBookTimeoutLeavesNoBooking(t *testing.T) {
	t.Parallel()

	// Exists fits the coordinator's budget, exists plus register does not.
	c := startWithTimeout(t, time.Second)
	slowRegistry(t, c, 600*time.Millisecond)
	ctx := context.Background()
	p := model.BookingProposal{
		RoomID: "101", Date: "2029-06-02", Slot: "10:00-11:00", RequesterID: "87654321",
		Registration: &model.Registration{DisplayName: "Bob", Contact: "bob@campus.edu"},
	}

	_, err := c.Service.Book(ctx, p)
	if !errors.Is(err, model.ErrDependencyUnavailable) {
		t.Fatalf("Book() error = %v, want dependency unavailable", err)
	}
	var outcome *model.Error
	if !errors.As(err, &outcome) || outcome.Reason != booking.ReasonRegistryDown {
		t.Errorf("Book() reason = %v, want %q", err, booking.ReasonRegistryDown)
	}

	// Let the late registration land; the booking must not.
	time.Sleep(700 * time.Millisecond)
	if n := len(c.Coordinator.Bookings()); n != 0 {
		t.Fatalf("ledger holds %d bookings after a failed Book(), want 0", n)
	}

	b, err := c.Service.Book(ctx, p)
	if err != nil {
		t.Fatalf("retried Book() failed: %v", err)
	}
	if b.RoomID != "101" {
		t.Errorf("retried Book() = %+v", b)
	}
}
