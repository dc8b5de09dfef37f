package directory

import (
	"slices"
	"sync"
	"testing"
)

func TestResolveFirstRegistered(t *testing.T) {
	t.Parallel()

	d := New()
	if _, ok := d.Resolve(FacilityBooking); ok {
		t.Fatal("empty directory resolved a service")
	}

	mustRegister(t, d, FacilityBooking, "booking", "fba-1")
	mustRegister(t, d, FacilityBooking, "booking", "fba-2")

	id, ok := d.Resolve(FacilityBooking)
	if !ok || id != "fba-1" {
		t.Fatalf("Resolve() = %q, %v; want fba-1", id, ok)
	}
	if got := d.Find(FacilityBooking); !slices.Equal(got, []string{"fba-1", "fba-2"}) {
		t.Errorf("Find() = %v", got)
	}
}

func TestRegisterIsIdempotentPerActor(t *testing.T) {
	t.Parallel()

	d := New()
	mustRegister(t, d, Presentation, "log", "listener")
	mustRegister(t, d, Presentation, "log-v2", "listener")

	entries := d.Entries()
	if len(entries) != 1 || entries[0].ServiceName != "log-v2" {
		t.Fatalf("Entries() = %+v", entries)
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	d := New()
	if err := d.Register("", "x", "a"); err == nil {
		t.Error("expected error for empty service type")
	}
	if err := d.Register(Navigation, "x", " "); err == nil {
		t.Error("expected error for blank actor id")
	}
}

func TestDeregister(t *testing.T) {
	t.Parallel()

	d := New()
	mustRegister(t, d, Presentation, "log", "log-listener")
	mustRegister(t, d, Presentation, "socket.io", "socketio-bridge")
	mustRegister(t, d, Notification, "relay", "log-listener")

	d.Deregister("log-listener")

	if got := d.Find(Presentation); !slices.Equal(got, []string{"socketio-bridge"}) {
		t.Errorf("Find(presentation) = %v", got)
	}
	if got := d.Find(Notification); len(got) != 0 {
		t.Errorf("Find(notification) = %v, want empty", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	d := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = d.Register(Presentation, "listener", "listener")
		}()
		go func() {
			defer wg.Done()
			d.Find(Presentation)
		}()
	}
	wg.Wait()

	if got := d.Find(Presentation); len(got) != 1 {
		t.Errorf("Find() = %v, want one listener", got)
	}
}

func mustRegister(t *testing.T, d *Directory, serviceType, name, id string) {
	t.Helper()
	if err := d.Register(serviceType, name, id); err != nil {
		t.Fatalf("Register(%s, %s) failed: %v", serviceType, id, err)
	}
}
