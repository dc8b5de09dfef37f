package model

// AvailabilityQuery asks the coordinator for free rooms.
type AvailabilityQuery struct {
	Date        string `json:"date"`
	Slot        string `json:"slot"`
	MinCapacity int    `json:"capacity"`
}

// Registration carries optional identity fields attached to a booking so an
// unknown requester can be registered on the fly.
type Registration struct {
	DisplayName string `json:"display_name"`
	Contact     string `json:"contact"`
}

// BookingProposal asks the coordinator to commit a booking.
type BookingProposal struct {
	RoomID       string        `json:"room_id"`
	Date         string        `json:"date"`
	Slot         string        `json:"slot"`
	RequesterID  string        `json:"requester_id"`
	Registration *Registration `json:"registration,omitempty"`
}

// CancelRequest asks the coordinator to remove a booking.
type CancelRequest struct {
	RoomID      string `json:"room_id"`
	Date        string `json:"date"`
	Slot        string `json:"slot"`
	RequesterID string `json:"requester_id"`
}

// RegisterRequest asks the registry to create a requester.
type RegisterRequest struct {
	RequesterID string `json:"requester_id"`
	DisplayName string `json:"display_name"`
	Contact     string `json:"contact"`
}

// ExistsQuery asks the registry whether a requester is known.
type ExistsQuery struct {
	RequesterID string `json:"requester_id"`
}

// DirectionsRequest asks the navigation actor how to reach a room.
type DirectionsRequest struct {
	CurrentLocation string `json:"current_location"`
	RoomID          string `json:"room_id"`
	RequesterID     string `json:"requester_id,omitempty"`
}

// Inform contents that carry no data beyond the outcome.
const (
	OutcomeRegistered = "registered"
	OutcomeExists     = "exists"
	OutcomeCancelled  = "Booking cancelled successfully"
)
