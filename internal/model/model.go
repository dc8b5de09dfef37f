// Package model defines the core domain types for the campus room booking system.
package model

import "time"

// DateLayout is the wire format of booking dates.
const DateLayout = "2006-01-02"

// Room is a bookable facility in the catalog.
type Room struct {
	ID       string `json:"room_id"`
	Capacity int    `json:"capacity"`
	Location string `json:"location"`
	Floor    int    `json:"floor"`
}

// Fits reports whether the room holds at least n people.
func (r Room) Fits(n int) bool {
	return r.Capacity >= n
}

// BookingKey identifies one room for one slot on one date.
// At most one live booking exists per key.
type BookingKey struct {
	RoomID string `json:"room_id"`
	Date   string `json:"date"`
	Slot   string `json:"slot"`
}

// Booking is a committed reservation in the ledger.
type Booking struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"room_id"`
	Date        string    `json:"date"`
	Slot        string    `json:"slot"`
	RequesterID string    `json:"requester_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Key returns the uniqueness key of the booking.
func (b Booking) Key() BookingKey {
	return BookingKey{RoomID: b.RoomID, Date: b.Date, Slot: b.Slot}
}

// Requester is a registered identity allowed to book rooms.
type Requester struct {
	ID          string    `json:"requester_id"`
	DisplayName string    `json:"display_name"`
	Contact     string    `json:"contact"`
	CreatedAt   time.Time `json:"created_at"`
}

// Notification is an outcome event fanned out by the relay.
type Notification struct {
	SubjectID string `json:"subject_id"`
	Category  string `json:"category"`
	Message   string `json:"message"`
}

// Notification categories.
const (
	CategoryBooking      = "Booking"
	CategoryCancellation = "Cancellation"
	CategoryNavigation   = "navigation"
)

// Directions describes how to reach a room.
type Directions struct {
	From          string `json:"from"`
	To            string `json:"to"`
	Building      string `json:"building"`
	Floor         int    `json:"floor"`
	Directions    string `json:"directions"`
	EstimatedTime string `json:"estimated_time"`
}

// ParseDate parses a booking date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
