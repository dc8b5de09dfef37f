package booking

import (
	"fmt"
	"time"

	"github.com/saadz-khan/smartcampus/internal/model"
)

// Policy holds the configurable booking rules.
type Policy struct {
	// MaxSlotDuration is the longest slot a single booking may hold.
	MaxSlotDuration time.Duration
	// OneBookingPerDay allows at most one live booking per requester per date.
	OneBookingPerDay bool
	// CancelRequiresOwner restricts cancellation to the requester who booked.
	CancelRequiresOwner bool
}

// DefaultPolicy returns the campus rules.
func DefaultPolicy() Policy {
	return Policy{
		MaxSlotDuration:     2 * time.Hour,
		OneBookingPerDay:    true,
		CancelRequiresOwner: true,
	}
}

// DefaultRooms is the catalog seeded into an empty store.
func DefaultRooms() []model.Room {
	return []model.Room{
		{ID: "101", Capacity: 4, Location: "Building A", Floor: 1},
		{ID: "102", Capacity: 10, Location: "Building B", Floor: 2},
	}
}

func humanDuration(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	default:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	}
}
