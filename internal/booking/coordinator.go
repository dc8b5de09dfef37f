// Package booking implements the booking coordinator actor. It is the only
// owner of the room catalog and the booking ledger.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/saadz-khan/smartcampus/internal/actor"
	"github.com/saadz-khan/smartcampus/internal/directory"
	"github.com/saadz-khan/smartcampus/internal/model"
	"github.com/saadz-khan/smartcampus/internal/repository"
	"github.com/sirupsen/logrus"
)

// Outcome reasons. The wording is shown to end users.
const (
	ReasonBooked           = "Room booked successfully."
	ReasonPastDate         = "Invalid date. Booking date must be in the future."
	ReasonBadDate          = "Invalid date. Expected YYYY-MM-DD."
	ReasonBadSlot          = "Invalid time slot. Expected HH:MM-HH:MM."
	ReasonActiveBooking    = "You already have an active booking. Cancel it before making a new one."
	ReasonRoomTaken        = "Room is already booked for the given date and time slot."
	ReasonRequesterMissing = "Requester ID is required."
	ReasonBookingNotFound  = "Booking not found"
	ReasonNotOwner         = "Booking is held by another requester."
	ReasonBadCapacity      = "Capacity must not be negative."
	ReasonRegistryDown     = "no response from dependency: user-management"
	reasonSaveFailed       = "Booking could not be saved."
	reasonRegistryReply    = "Unexpected reply from user-management."
)

// Coordinator is the booking coordinator actor state.
//
// mu guards rooms, ledger and known. The propose behaviour runs
// conversations concurrently, so the check-and-insert of a booking key
// happens in one critical section that never spans an ask.
type Coordinator struct {
	mu     sync.Mutex
	rooms  map[string]model.Room
	order  []string
	ledger map[model.BookingKey]model.Booking
	known  map[string]struct{}

	store  repository.BookingStore
	dir    *directory.Directory
	policy Policy
	now    func() time.Time
	log    logrus.FieldLogger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPolicy replaces DefaultPolicy.
func WithPolicy(p Policy) Option {
	return func(c *Coordinator) { c.policy = p }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithLogger replaces the standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Coordinator) { c.log = l }
}

// New loads the catalog and ledger from store, seeding DefaultRooms when the
// catalog is empty.
func New(ctx context.Context, store repository.BookingStore, dir *directory.Directory, opts ...Option) (*Coordinator, error) {
	c := &Coordinator{
		rooms:  make(map[string]model.Room),
		ledger: make(map[model.BookingKey]model.Booking),
		known:  make(map[string]struct{}),
		store:  store,
		dir:    dir,
		policy: DefaultPolicy(),
		now:    time.Now,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	rooms, err := store.LoadRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	if len(rooms) == 0 {
		rooms = DefaultRooms()
		if err := store.SaveRooms(ctx, rooms); err != nil {
			return nil, fmt.Errorf("seed rooms: %w", err)
		}
		c.log.WithField("rooms", len(rooms)).Info("room catalog seeded")
	}
	for _, r := range rooms {
		c.rooms[r.ID] = r
		c.order = append(c.order, r.ID)
	}

	bookings, err := store.ListBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	for _, b := range bookings {
		c.ledger[b.Key()] = b
		c.known[b.RequesterID] = struct{}{}
	}

	c.log.WithFields(logrus.Fields{"rooms": len(c.rooms), "bookings": len(c.ledger)}).Info("booking ledger loaded")
	return c, nil
}

// Behaviours returns the coordinator's behaviour table.
func (c *Coordinator) Behaviours() []actor.Behaviour {
	return []actor.Behaviour{
		{
			Name:   "availability",
			Match:  actor.And(actor.MatchPerformative(actor.Request), actor.MatchContent[model.AvailabilityQuery]()),
			Handle: c.handleAvailability,
		},
		{
			Name:       "commit",
			Match:      actor.And(actor.MatchPerformative(actor.Propose), actor.MatchContent[model.BookingProposal]()),
			Handle:     c.handlePropose,
			Concurrent: true,
		},
		{
			Name:   "cancel",
			Match:  actor.And(actor.MatchPerformative(actor.Cancel), actor.MatchContent[model.CancelRequest]()),
			Handle: c.handleCancel,
		},
	}
}

func (c *Coordinator) handleAvailability(conv *actor.Conversation) {
	q := conv.Message().Content.(model.AvailabilityQuery)
	rooms, err := c.Available(q)
	if err != nil {
		_ = conv.Reply(actor.Failure, err)
		return
	}
	_ = conv.Reply(actor.Inform, rooms)
}

func (c *Coordinator) handlePropose(conv *actor.Conversation) {
	p := conv.Message().Content.(model.BookingProposal)
	log := conv.Log().WithFields(logrus.Fields{"room_id": p.RoomID, "requester_id": p.RequesterID})

	b, err := c.commit(conv, p)
	if err != nil {
		var outcome *model.Error
		if !errors.As(err, &outcome) {
			outcome = model.WrapError(model.KindInternal, reasonSaveFailed, err)
		}
		switch outcome.Kind {
		case model.KindDependencyUnavailable, model.KindInternal:
			log.WithError(err).Warn("booking failed")
			_ = conv.Reply(actor.Failure, outcome)
		default:
			log.WithField("reason", outcome.Reason).Info("booking rejected")
			_ = conv.Reply(actor.RejectProposal, outcome)
		}
		return
	}

	log.WithFields(logrus.Fields{"date": b.Date, "slot": b.Slot, "booking_id": b.ID}).Info("booking committed")
	_ = conv.Reply(actor.AcceptProposal, b)
	c.notify(conv, model.Notification{
		SubjectID: b.RequesterID,
		Category:  model.CategoryBooking,
		Message:   fmt.Sprintf("Room booked successfully for %s at %s", b.Date, b.Slot),
	})
}

func (c *Coordinator) handleCancel(conv *actor.Conversation) {
	req := conv.Message().Content.(model.CancelRequest)
	b, err := c.Cancel(conv.Context(), req)
	if err != nil {
		conv.Log().WithError(err).WithField("room_id", req.RoomID).Info("cancellation refused")
		_ = conv.Reply(actor.Failure, err)
		return
	}

	conv.Log().WithFields(logrus.Fields{"room_id": b.RoomID, "date": b.Date, "slot": b.Slot}).Info("booking cancelled")
	_ = conv.Reply(actor.Inform, model.OutcomeCancelled)
	c.notify(conv, model.Notification{
		SubjectID: b.RequesterID,
		Category:  model.CategoryCancellation,
		Message:   fmt.Sprintf("Booking of room %s for %s at %s cancelled", b.RoomID, b.Date, b.Slot),
	})
}

// Available returns every room with at least the requested capacity and no
// live booking on the date and slot, in catalog order.
func (c *Coordinator) Available(q model.AvailabilityQuery) ([]model.Room, error) {
	date, err := parseDate(q.Date)
	if err != nil {
		return nil, err
	}
	slot, err := model.ParseSlot(q.Slot)
	if err != nil {
		return nil, model.WrapError(model.KindValidation, ReasonBadSlot, err)
	}
	if q.MinCapacity < 0 {
		return nil, model.NewError(model.KindValidation, ReasonBadCapacity)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rooms := []model.Room{}
	for _, id := range c.order {
		r := c.rooms[id]
		if !r.Fits(q.MinCapacity) {
			continue
		}
		if _, taken := c.ledger[model.BookingKey{RoomID: id, Date: date, Slot: slot.String()}]; taken {
			continue
		}
		rooms = append(rooms, r)
	}
	return rooms, nil
}

// commit validates a proposal, makes sure the requester is registered and
// inserts the booking.
func (c *Coordinator) commit(conv *actor.Conversation, p model.BookingProposal) (model.Booking, error) {
	b, err := c.validate(p)
	if err != nil {
		return model.Booking{}, err
	}

	if c.policy.OneBookingPerDay {
		c.mu.Lock()
		held := c.holdsBookingOn(b.RequesterID, b.Date)
		c.mu.Unlock()
		if held {
			return model.Booking{}, model.NewError(model.KindConflict, ReasonActiveBooking)
		}
	}

	if err := c.ensureRequester(conv, p); err != nil {
		return model.Booking{}, err
	}

	// Past the deadline the proposer no longer waits for the outcome.
	if err := conv.Context().Err(); err != nil {
		return model.Booking{}, model.WrapError(model.KindDependencyUnavailable, ReasonRegistryDown, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.policy.OneBookingPerDay && c.holdsBookingOn(b.RequesterID, b.Date) {
		return model.Booking{}, model.NewError(model.KindConflict, ReasonActiveBooking)
	}
	if _, taken := c.ledger[b.Key()]; taken {
		return model.Booking{}, model.NewError(model.KindConflict, ReasonRoomTaken)
	}

	b.ID = ulid.Make().String()
	b.CreatedAt = c.now().UTC()
	if err := c.store.InsertBooking(conv.Context(), b); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return model.Booking{}, model.WrapError(model.KindConflict, ReasonRoomTaken, err)
		}
		return model.Booking{}, model.WrapError(model.KindInternal, reasonSaveFailed, err)
	}
	c.ledger[b.Key()] = b
	return b, nil
}

// validate applies the checks that need no other actor: date strictly in
// the future, well-formed slot within the policy maximum, known room.
func (c *Coordinator) validate(p model.BookingProposal) (model.Booking, error) {
	date, err := parseDate(p.Date)
	if err != nil {
		return model.Booking{}, err
	}
	now := c.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day, _ := model.ParseDate(date)
	if !day.After(today) {
		return model.Booking{}, model.NewError(model.KindValidation, ReasonPastDate)
	}

	slot, err := model.ParseSlot(p.Slot)
	if err != nil {
		return model.Booking{}, model.WrapError(model.KindValidation, ReasonBadSlot, err)
	}
	if d := slot.Duration(); d <= 0 || d > c.policy.MaxSlotDuration {
		return model.Booking{}, model.NewError(model.KindValidation,
			fmt.Sprintf("Invalid time slot. Maximum booking duration is %s.", humanDuration(c.policy.MaxSlotDuration)))
	}

	roomID := strings.TrimSpace(p.RoomID)
	c.mu.Lock()
	_, ok := c.rooms[roomID]
	c.mu.Unlock()
	if !ok {
		return model.Booking{}, model.NewError(model.KindValidation, fmt.Sprintf("Room %s does not exist.", roomID))
	}

	requester := strings.TrimSpace(p.RequesterID)
	if requester == "" {
		return model.Booking{}, model.NewError(model.KindValidation, ReasonRequesterMissing)
	}

	return model.Booking{
		RoomID:      roomID,
		Date:        date,
		Slot:        slot.String(),
		RequesterID: requester,
	}, nil
}

// ensureRequester asks the registry whether the requester exists and
// registers it with the proposal's identity fields when it does not.
func (c *Coordinator) ensureRequester(conv *actor.Conversation, p model.BookingProposal) error {
	id := strings.TrimSpace(p.RequesterID)

	c.mu.Lock()
	_, ok := c.known[id]
	c.mu.Unlock()
	if ok {
		return nil
	}

	registry, ok := c.dir.Resolve(directory.UserManagement)
	if !ok {
		return model.NewError(model.KindDependencyUnavailable, ReasonRegistryDown)
	}

	reply, err := conv.Ask(registry, actor.Query, model.ExistsQuery{RequesterID: id})
	if err != nil {
		return model.WrapError(model.KindDependencyUnavailable, ReasonRegistryDown, err)
	}
	switch {
	case reply.Performative == actor.Inform:
	case reply.Performative == actor.Failure && isKind(reply.Content, model.KindNotFound):
		if err := c.register(conv, registry, id, p.Registration); err != nil {
			return err
		}
	default:
		return replyError(reply)
	}

	c.mu.Lock()
	c.known[id] = struct{}{}
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) register(conv *actor.Conversation, registry, id string, reg *model.Registration) error {
	req := model.RegisterRequest{RequesterID: id}
	if reg != nil {
		req.DisplayName = reg.DisplayName
		req.Contact = reg.Contact
	}

	reply, err := conv.Ask(registry, actor.Request, req)
	if err != nil {
		return model.WrapError(model.KindDependencyUnavailable, ReasonRegistryDown, err)
	}
	switch {
	case reply.Performative == actor.Inform:
	case reply.Performative == actor.Failure && isKind(reply.Content, model.KindConflict):
		// Registered by another conversation since the exists query.
		return nil
	default:
		return replyError(reply)
	}
	conv.Log().WithField("requester_id", id).Info("requester registered on booking")
	return nil
}

// Cancel removes the booking with the request's key.
func (c *Coordinator) Cancel(ctx context.Context, req model.CancelRequest) (model.Booking, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return model.Booking{}, err
	}
	slot, err := model.ParseSlot(req.Slot)
	if err != nil {
		return model.Booking{}, model.WrapError(model.KindValidation, ReasonBadSlot, err)
	}
	key := model.BookingKey{RoomID: strings.TrimSpace(req.RoomID), Date: date, Slot: slot.String()}
	requester := strings.TrimSpace(req.RequesterID)

	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.ledger[key]
	if !ok {
		return model.Booking{}, model.NewError(model.KindNotFound, ReasonBookingNotFound)
	}
	if c.policy.CancelRequiresOwner {
		if requester == "" {
			return model.Booking{}, model.NewError(model.KindValidation, ReasonRequesterMissing)
		}
		if requester != b.RequesterID {
			return model.Booking{}, model.NewError(model.KindConflict, ReasonNotOwner)
		}
	}

	if err := c.store.DeleteBooking(ctx, key); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return model.Booking{}, model.WrapError(model.KindInternal, "Booking could not be removed.", err)
	}
	delete(c.ledger, key)
	return b, nil
}

// Bookings returns a snapshot of the ledger ordered by creation time.
func (c *Coordinator) Bookings() []model.Booking {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.Booking, 0, len(c.ledger))
	for _, b := range c.ledger {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// notify hands n to the relay. Delivery is best effort.
func (c *Coordinator) notify(conv *actor.Conversation, n model.Notification) {
	relay, ok := c.dir.Resolve(directory.Notification)
	if !ok {
		conv.Log().WithField("category", n.Category).Warn("no notification relay registered")
		return
	}
	if err := conv.Send(actor.Inform, n, relay); err != nil {
		conv.Log().WithError(err).Warn("notification not delivered to relay")
	}
}

// holdsBookingOn must be called with mu held.
func (c *Coordinator) holdsBookingOn(requester, date string) bool {
	for _, b := range c.ledger {
		if b.RequesterID == requester && b.Date == date {
			return true
		}
	}
	return false
}

func parseDate(s string) (string, error) {
	d, err := model.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return "", model.WrapError(model.KindValidation, ReasonBadDate, err)
	}
	return d.Format(model.DateLayout), nil
}

func isKind(content any, kind model.Kind) bool {
	err, ok := content.(error)
	return ok && errors.Is(err, &model.Error{Kind: kind})
}

// replyError converts a non-success reply from a dependency into an outcome
// error, keeping the dependency's own classification when it has one.
func replyError(reply *actor.Message) error {
	var outcome *model.Error
	if err, ok := reply.Content.(error); ok {
		if errors.As(err, &outcome) {
			return outcome
		}
		return model.WrapError(model.KindInternal, reasonRegistryReply, err)
	}
	return model.NewError(model.KindInternal, reasonRegistryReply)
}
