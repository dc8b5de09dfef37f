// Package registry implements the requester registry actor. It owns the set
// of registered requesters and answers register and exists conversations.
package registry

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/saadz-khan/smartcampus/internal/actor"
	"github.com/saadz-khan/smartcampus/internal/model"
	"github.com/saadz-khan/smartcampus/internal/repository"
	"github.com/sirupsen/logrus"
)

// Rejection reasons.
const (
	ReasonInvalidID        = "Invalid student ID format"
	ReasonDuplicateID      = "Student ID already exists"
	ReasonNameRequired     = "Display name is required"
	ReasonInvalidContact   = "Contact is not a valid email address"
	ReasonNotFound         = "Requester not found"
	reasonStorageFailure   = "Registration could not be saved"
	reasonContactNotDomain = "Contact must be an address at %s"
)

// idPattern is the student id format: exactly eight digits.
var idPattern = regexp.MustCompile(`^\d{8}$`)

// Registry is the requester registry actor state.
type Registry struct {
	mu         sync.RWMutex
	requesters map[string]model.Requester

	store         repository.RequesterStore
	contactDomain string
	now           func() time.Time
	log           logrus.FieldLogger
}

// Option configures a Registry.
type Option func(*Registry)

// WithContactDomain restricts contacts to e-mail addresses at domain.
func WithContactDomain(domain string) Option {
	return func(r *Registry) {
		r.contactDomain = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(domain), "@"))
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithLogger replaces the standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Registry) { r.log = l }
}

// New creates a registry and loads the known requesters from store.
func New(ctx context.Context, store repository.RequesterStore, opts ...Option) (*Registry, error) {
	r := &Registry{
		requesters: make(map[string]model.Requester),
		store:      store,
		now:        time.Now,
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}

	known, err := store.ListRequesters(ctx)
	if err != nil {
		return nil, fmt.Errorf("load requesters: %w", err)
	}
	for _, req := range known {
		r.requesters[req.ID] = req
	}
	r.log.WithField("requesters", len(known)).Info("registry loaded")
	return r, nil
}

// Behaviours returns the registry's behaviour table.
func (r *Registry) Behaviours() []actor.Behaviour {
	return []actor.Behaviour{
		{
			Name:   "register",
			Match:  actor.And(actor.MatchPerformative(actor.Request), actor.MatchContent[model.RegisterRequest]()),
			Handle: r.handleRegister,
		},
		{
			Name:   "exists",
			Match:  actor.And(actor.MatchPerformative(actor.Query), actor.MatchContent[model.ExistsQuery]()),
			Handle: r.handleExists,
		},
	}
}

func (r *Registry) handleRegister(c *actor.Conversation) {
	req := c.Message().Content.(model.RegisterRequest)
	if _, err := r.Register(c.Context(), req); err != nil {
		c.Log().WithError(err).WithField("requester_id", req.RequesterID).Info("registration refused")
		_ = c.Reply(actor.Failure, err)
		return
	}
	_ = c.Reply(actor.Inform, model.OutcomeRegistered)
}

func (r *Registry) handleExists(c *actor.Conversation) {
	q := c.Message().Content.(model.ExistsQuery)
	if !r.Exists(q.RequesterID) {
		_ = c.Reply(actor.Failure, model.NewError(model.KindNotFound, ReasonNotFound))
		return
	}
	_ = c.Reply(actor.Inform, model.OutcomeExists)
}

// Register validates and creates a requester. The id format is checked
// before uniqueness; contact rules apply after both.
func (r *Registry) Register(ctx context.Context, req model.RegisterRequest) (model.Requester, error) {
	id := strings.TrimSpace(req.RequesterID)
	if !idPattern.MatchString(id) {
		return model.Requester{}, model.NewError(model.KindValidation, ReasonInvalidID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.requesters[id]; taken {
		return model.Requester{}, model.NewError(model.KindConflict, ReasonDuplicateID)
	}

	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return model.Requester{}, model.NewError(model.KindValidation, ReasonNameRequired)
	}
	contact := strings.ToLower(strings.TrimSpace(req.Contact))
	if err := r.validateContact(contact); err != nil {
		return model.Requester{}, err
	}

	requester := model.Requester{
		ID:          id,
		DisplayName: name,
		Contact:     contact,
		CreatedAt:   r.now().UTC(),
	}
	if err := r.store.InsertRequester(ctx, requester); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return model.Requester{}, model.WrapError(model.KindConflict, ReasonDuplicateID, err)
		}
		return model.Requester{}, model.WrapError(model.KindInternal, reasonStorageFailure, err)
	}
	r.requesters[id] = requester

	r.log.WithField("requester_id", id).Info("requester registered")
	return requester, nil
}

// Exists reports whether id is registered.
func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.requesters[strings.TrimSpace(id)]
	return ok
}

func (r *Registry) validateContact(contact string) error {
	if !isValidEmail(contact) {
		return model.NewError(model.KindValidation, ReasonInvalidContact)
	}
	if r.contactDomain != "" && !strings.HasSuffix(contact, "@"+r.contactDomain) {
		return model.NewError(model.KindValidation, fmt.Sprintf(reasonContactNotDomain, r.contactDomain))
	}
	return nil
}

// isValidEmail does a basic structural check.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
