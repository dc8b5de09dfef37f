// Package service is the client side of the campus protocol. It resolves
// roles through the directory, converses with the actors on behalf of HTTP
// callers and maps replies to Go errors.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/saadz-khan/smartcampus/internal/actor"
	"github.com/saadz-khan/smartcampus/internal/directory"
	"github.com/saadz-khan/smartcampus/internal/model"
)

// GatewayID is the actor id the service speaks as.
const GatewayID = "gateway"

// CampusService orchestrates client operations against the campus actors.
type CampusService struct {
	gateway *actor.Actor
	dir     *directory.Directory
}

// New spawns the gateway actor in sys and returns the service.
func New(sys *actor.System, dir *directory.Directory) (*CampusService, error) {
	gw, err := sys.Spawn(GatewayID)
	if err != nil {
		return nil, fmt.Errorf("spawn gateway: %w", err)
	}
	return &CampusService{gateway: gw, dir: dir}, nil
}

// AvailableRooms lists free rooms for a date and slot.
func (s *CampusService) AvailableRooms(ctx context.Context, q model.AvailabilityQuery) ([]model.Room, error) {
	q.Date = strings.TrimSpace(q.Date)
	q.Slot = strings.TrimSpace(q.Slot)
	if q.Date == "" || q.Slot == "" {
		return nil, model.NewError(model.KindValidation, "date and slot are required")
	}

	reply, err := s.ask(ctx, directory.FacilityBooking, actor.Request, q)
	if err != nil {
		return nil, err
	}
	rooms, ok := reply.Content.([]model.Room)
	if !ok {
		return nil, unexpected(reply)
	}
	return rooms, nil
}

// Book proposes a booking and returns the committed record.
func (s *CampusService) Book(ctx context.Context, p model.BookingProposal) (*model.Booking, error) {
	p.RoomID = strings.TrimSpace(p.RoomID)
	p.RequesterID = strings.TrimSpace(p.RequesterID)
	if p.RoomID == "" {
		return nil, model.NewError(model.KindValidation, "room_id is required")
	}
	if p.RequesterID == "" {
		return nil, model.NewError(model.KindValidation, "requester_id is required")
	}
	if p.Registration != nil {
		p.Registration.DisplayName = strings.TrimSpace(p.Registration.DisplayName)
		p.Registration.Contact = strings.TrimSpace(strings.ToLower(p.Registration.Contact))
	}

	reply, err := s.ask(ctx, directory.FacilityBooking, actor.Propose, p)
	if err != nil {
		return nil, err
	}
	b, ok := reply.Content.(model.Booking)
	if reply.Performative != actor.AcceptProposal || !ok {
		return nil, unexpected(reply)
	}
	return &b, nil
}

// Cancel removes a booking.
func (s *CampusService) Cancel(ctx context.Context, req model.CancelRequest) error {
	req.RoomID = strings.TrimSpace(req.RoomID)
	req.RequesterID = strings.TrimSpace(req.RequesterID)
	if req.RoomID == "" {
		return model.NewError(model.KindValidation, "room_id is required")
	}
	_, err := s.ask(ctx, directory.FacilityBooking, actor.Cancel, req)
	return err
}

// Register creates a requester in the registry.
func (s *CampusService) Register(ctx context.Context, req model.RegisterRequest) error {
	req.RequesterID = strings.TrimSpace(req.RequesterID)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	req.Contact = strings.TrimSpace(strings.ToLower(req.Contact))
	_, err := s.ask(ctx, directory.UserManagement, actor.Request, req)
	return err
}

// Exists returns nil when the requester is registered and a not_found
// error otherwise.
func (s *CampusService) Exists(ctx context.Context, id string) error {
	_, err := s.ask(ctx, directory.UserManagement, actor.Query, model.ExistsQuery{RequesterID: strings.TrimSpace(id)})
	return err
}

// Directions asks the navigation actor how to reach a room.
func (s *CampusService) Directions(ctx context.Context, req model.DirectionsRequest) (*model.Directions, error) {
	if strings.TrimSpace(req.RoomID) == "" {
		return nil, model.NewError(model.KindValidation, "room is required")
	}
	reply, err := s.ask(ctx, directory.Navigation, actor.Request, req)
	if err != nil {
		return nil, err
	}
	d, ok := reply.Content.(model.Directions)
	if !ok {
		return nil, unexpected(reply)
	}
	return &d, nil
}

// ask resolves role and converses with it. Failure and reject replies are
// returned as errors.
func (s *CampusService) ask(ctx context.Context, role string, p actor.Performative, content any) (*actor.Message, error) {
	to, ok := s.dir.Resolve(role)
	if !ok {
		return nil, model.NewError(model.KindDependencyUnavailable, fmt.Sprintf("%s service is unavailable", role))
	}

	reply, err := s.gateway.Ask(ctx, to, p, content)
	if err != nil {
		switch {
		case errors.Is(err, actor.ErrNoResponse), errors.Is(err, actor.ErrUnknownActor), errors.Is(err, actor.ErrActorStopped):
			return nil, model.WrapError(model.KindDependencyUnavailable, fmt.Sprintf("%s: %s", actor.ErrNoResponse, role), err)
		default:
			return nil, model.WrapError(model.KindInternal, "request could not be sent", err)
		}
	}

	switch reply.Performative {
	case actor.Failure, actor.RejectProposal:
		return nil, asError(reply.Content)
	}
	return reply, nil
}

func asError(content any) error {
	err, ok := content.(error)
	if !ok {
		return model.NewError(model.KindInternal, fmt.Sprint(content))
	}
	var outcome *model.Error
	if errors.As(err, &outcome) {
		return outcome
	}
	return model.WrapError(model.KindInternal, err.Error(), err)
}

func unexpected(reply *actor.Message) error {
	return model.NewError(model.KindInternal, fmt.Sprintf("unexpected %s reply from %s", reply.Performative, reply.Sender))
}
