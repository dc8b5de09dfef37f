// Package campus assembles the actor system: it builds the actors, spawns
// them and advertises their roles in the directory.
package campus

import (
	"context"
	"fmt"
	"time"

	"github.com/saadz-khan/smartcampus/internal/actor"
	"github.com/saadz-khan/smartcampus/internal/booking"
	"github.com/saadz-khan/smartcampus/internal/directory"
	"github.com/saadz-khan/smartcampus/internal/navigation"
	"github.com/saadz-khan/smartcampus/internal/notify"
	"github.com/saadz-khan/smartcampus/internal/registry"
	"github.com/saadz-khan/smartcampus/internal/repository"
	"github.com/saadz-khan/smartcampus/internal/service"
	"github.com/sirupsen/logrus"
)

// Actor ids.
const (
	CoordinatorID = "fba"
	RegistryID    = "uma"
	RelayID       = "notification"
	NavigatorID   = "navigation"
	LogListenerID = "log-listener"
	BridgeID      = "socketio-bridge"
)

// Options configures Start.
type Options struct {
	AskTimeout    time.Duration
	Policy        booking.Policy
	ContactDomain string
	// Clock overrides time.Now in the coordinator and registry.
	Clock func() time.Time
	// Bridge, when set, is spawned as a presentation listener.
	Bridge *notify.Bridge
	Logger logrus.FieldLogger
}

// Campus is a running actor system.
type Campus struct {
	System      *actor.System
	Directory   *directory.Directory
	Coordinator *booking.Coordinator
	Registry    *registry.Registry
	Service     *service.CampusService
}

type component struct {
	id, role, name string
	behaviours     []actor.Behaviour
}

// Start builds every actor over store and registers it in a fresh
// directory. The caller owns the store.
func Start(ctx context.Context, store repository.Store, opts Options) (*Campus, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	policy := opts.Policy
	if policy.MaxSlotDuration <= 0 {
		policy = booking.DefaultPolicy()
	}

	var sysOpts []actor.Option
	if opts.AskTimeout > 0 {
		sysOpts = append(sysOpts, actor.WithAskTimeout(opts.AskTimeout))
	}
	c := &Campus{
		System:    actor.NewSystem(sysOpts...),
		Directory: directory.New(),
	}

	regOpts := []registry.Option{
		registry.WithContactDomain(opts.ContactDomain),
		registry.WithLogger(log.WithField("actor", RegistryID)),
	}
	coordOpts := []booking.Option{
		booking.WithPolicy(policy),
		booking.WithLogger(log.WithField("actor", CoordinatorID)),
	}
	if opts.Clock != nil {
		regOpts = append(regOpts, registry.WithClock(opts.Clock))
		coordOpts = append(coordOpts, booking.WithClock(opts.Clock))
	}

	var err error
	if c.Registry, err = registry.New(ctx, store, regOpts...); err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	if c.Coordinator, err = booking.New(ctx, store, c.Directory, coordOpts...); err != nil {
		return nil, fmt.Errorf("load coordinator: %w", err)
	}

	components := []component{
		{RegistryID, directory.UserManagement, "smart-campus-user-management", c.Registry.Behaviours()},
		{CoordinatorID, directory.FacilityBooking, "smart-campus-facility-booking", c.Coordinator.Behaviours()},
		{RelayID, directory.Notification, "smart-campus-notification", notify.NewRelay(c.Directory).Behaviours()},
		{NavigatorID, directory.Navigation, "smart-campus-navigation", navigation.New(navigation.DefaultGuides(), c.Directory).Behaviours()},
		{LogListenerID, directory.Presentation, "smart-campus-log", notify.NewLogListener(log.WithField("actor", LogListenerID)).Behaviours()},
	}
	if opts.Bridge != nil {
		components = append(components, component{BridgeID, directory.Presentation, "smart-campus-socketio", opts.Bridge.Behaviours()})
	}

	for _, comp := range components {
		if _, err := c.System.Spawn(comp.id, comp.behaviours...); err != nil {
			c.System.Shutdown()
			return nil, fmt.Errorf("spawn %s: %w", comp.id, err)
		}
		if err := c.Directory.Register(comp.role, comp.name, comp.id); err != nil {
			c.System.Shutdown()
			return nil, fmt.Errorf("register %s: %w", comp.id, err)
		}
		log.WithFields(logrus.Fields{"actor": comp.id, "service_type": comp.role}).Debug("actor started")
	}

	if c.Service, err = service.New(c.System, c.Directory); err != nil {
		c.System.Shutdown()
		return nil, err
	}
	return c, nil
}

// Shutdown stops every actor.
func (c *Campus) Shutdown() {
	c.System.Shutdown()
}
