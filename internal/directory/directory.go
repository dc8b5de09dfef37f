// Package directory maps logical service roles to live actor ids.
package directory

import (
	"fmt"
	"strings"
	"sync"
)

const (
	// FacilityBooking is the booking coordinator role.
	FacilityBooking = "facility-booking"
	// UserManagement is the requester registry role.
	UserManagement = "user-management"
	// Notification is the notification relay role.
	Notification = "notification"
	// Navigation is the directions lookup role.
	Navigation = "navigation"
	// Presentation is the role of every notification listener.
	Presentation = "presentation"
)

// Entry is one registered service.
type Entry struct {
	ServiceType string `json:"service_type"`
	ServiceName string `json:"service_name"`
	ActorID     string `json:"actor_id"`
}

// Directory is an in-process capability registry. Entries of the same type
// are kept in registration order.
type Directory struct {
	mu      sync.RWMutex
	entries []Entry
}

// New creates an empty directory.
func New() *Directory {
	return &Directory{}
}

// Register advertises actorID under serviceType. Registering the same
// actor and type twice replaces the service name.
func (d *Directory) Register(serviceType, serviceName, actorID string) error {
	serviceType = strings.TrimSpace(serviceType)
	actorID = strings.TrimSpace(actorID)
	if serviceType == "" {
		return fmt.Errorf("service type is required")
	}
	if actorID == "" {
		return fmt.Errorf("actor id is required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for i, e := range d.entries {
		if e.ServiceType == serviceType && e.ActorID == actorID {
			d.entries[i].ServiceName = serviceName
			return nil
		}
	}
	d.entries = append(d.entries, Entry{ServiceType: serviceType, ServiceName: serviceName, ActorID: actorID})
	return nil
}

// Deregister removes every entry of actorID.
func (d *Directory) Deregister(actorID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.entries[:0]
	for _, e := range d.entries {
		if e.ActorID != actorID {
			kept = append(kept, e)
		}
	}
	d.entries = kept
}

// Find returns the ids of every actor providing serviceType. An empty
// result means not found.
func (d *Directory) Find(serviceType string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var ids []string
	for _, e := range d.entries {
		if e.ServiceType == serviceType {
			ids = append(ids, e.ActorID)
		}
	}
	return ids
}

// Resolve returns the first actor providing serviceType.
func (d *Directory) Resolve(serviceType string) (string, bool) {
	ids := d.Find(serviceType)
	if len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}

// Entries returns a snapshot of every registration.
func (d *Directory) Entries() []Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Entry(nil), d.entries...)
}
