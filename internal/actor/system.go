package actor

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultAskTimeout bounds Ask when the caller's context has no deadline.
const DefaultAskTimeout = 5 * time.Second

// System owns the spawned actors and routes messages between them.
type System struct {
	mu         sync.RWMutex
	actors     map[string]*Actor
	askTimeout time.Duration
}

// Option configures a System.
type Option func(*System)

// WithAskTimeout sets the bound on cross-actor waits.
func WithAskTimeout(d time.Duration) Option {
	return func(s *System) {
		if d > 0 {
			s.askTimeout = d
		}
	}
}

// NewSystem creates an empty actor system.
func NewSystem(opts ...Option) *System {
	s := &System{
		actors:     make(map[string]*Actor),
		askTimeout: DefaultAskTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Spawn starts an actor with the given behaviours.
func (s *System) Spawn(id string, behaviours ...Behaviour) (*Actor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("actor id is required")
	}

	s.mu.Lock()
	if _, exists := s.actors[id]; exists {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrDuplicateActor, id)
	}
	a := newActor(id, s, behaviours)
	s.actors[id] = a
	s.mu.Unlock()

	go a.run()
	a.log.WithField("behaviours", len(behaviours)).Debug("actor spawned")
	return a, nil
}

// Actor returns a spawned actor by id.
func (s *System) Actor(id string) (*Actor, bool) {
	s.mu.RLock()
	a, ok := s.actors[id]
	s.mu.RUnlock()
	return a, ok
}

// Send enqueues msg on every receiver's mailbox and returns immediately.
// Unknown or stopped receivers are reported; the others still get the message.
func (s *System) Send(msg *Message) error {
	if msg == nil || len(msg.Receivers) == 0 {
		return ErrNoReceivers
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}

	var errs []error
	for _, to := range msg.Receivers {
		target, ok := s.Actor(to)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownActor, to))
			continue
		}
		cp := *msg
		if err := target.accept(&cp); err != nil {
			errs = append(errs, fmt.Errorf("deliver to %s: %w", to, err))
		}
	}
	return errors.Join(errs...)
}

// Stop stops one actor and removes it from the system. In-flight
// conversations finish first; queued requests are answered with a failure.
func (s *System) Stop(id string) {
	s.mu.Lock()
	a, ok := s.actors[id]
	delete(s.actors, id)
	s.mu.Unlock()

	if ok {
		a.stop()
		a.log.Debug("actor stopped")
	}
}

// Shutdown stops every actor.
func (s *System) Shutdown() {
	s.mu.Lock()
	actors := make([]*Actor, 0, len(s.actors))
	for _, a := range s.actors {
		actors = append(actors, a)
	}
	s.actors = make(map[string]*Actor)
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, a := range actors {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.stop()
		}()
	}
	wg.Wait()
}
