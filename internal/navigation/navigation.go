// Package navigation answers directions requests from a fixed guide table.
package navigation

import (
	"fmt"
	"strings"

	"github.com/saadz-khan/smartcampus/internal/actor"
	"github.com/saadz-khan/smartcampus/internal/directory"
	"github.com/saadz-khan/smartcampus/internal/model"
)

// unknownSubject addresses navigation notifications of anonymous requests.
const unknownSubject = "Unknown"

// Guide is how to reach one room.
type Guide struct {
	Building      string
	Floor         int
	Directions    string
	EstimatedTime string
}

// DefaultGuides covers the seeded catalog.
func DefaultGuides() map[string]Guide {
	return map[string]Guide{
		"101": {Building: "Building A", Floor: 1, Directions: "Take elevator to floor 1, turn right, room is on the left", EstimatedTime: "2 minutes"},
		"102": {Building: "Building B", Floor: 2, Directions: "Walk to Building B, take stairs to floor 2, room is straight ahead", EstimatedTime: "5 minutes"},
	}
}

// Navigator is the navigation actor state. The guide table is copied at
// construction and never changes.
type Navigator struct {
	guides map[string]Guide
	dir    *directory.Directory
}

// New creates a navigator over guides.
func New(guides map[string]Guide, dir *directory.Directory) *Navigator {
	g := make(map[string]Guide, len(guides))
	for id, guide := range guides {
		g[id] = guide
	}
	return &Navigator{guides: g, dir: dir}
}

// Lookup returns directions from from to room.
func (n *Navigator) Lookup(from, room string) (model.Directions, error) {
	room = strings.TrimSpace(room)
	g, ok := n.guides[room]
	if !ok {
		return model.Directions{}, model.NewError(model.KindNotFound, fmt.Sprintf("Room %s not found in the database.", room))
	}
	return model.Directions{
		From:          strings.TrimSpace(from),
		To:            room,
		Building:      g.Building,
		Floor:         g.Floor,
		Directions:    g.Directions,
		EstimatedTime: g.EstimatedTime,
	}, nil
}

// Behaviours answers directions requests.
func (n *Navigator) Behaviours() []actor.Behaviour {
	return []actor.Behaviour{{
		Name:   "directions",
		Match:  actor.And(actor.MatchPerformative(actor.Request), actor.MatchContent[model.DirectionsRequest]()),
		Handle: n.handle,
	}}
}

func (n *Navigator) handle(c *actor.Conversation) {
	req := c.Message().Content.(model.DirectionsRequest)
	subject := strings.TrimSpace(req.RequesterID)
	if subject == "" {
		subject = unknownSubject
	}

	d, err := n.Lookup(req.CurrentLocation, req.RoomID)
	note := model.Notification{SubjectID: subject, Category: model.CategoryNavigation}
	if err != nil {
		_ = c.Reply(actor.Failure, err)
		note.Message = "Navigation failed: " + err.Error()
	} else {
		_ = c.Reply(actor.Inform, d)
		note.Message = fmt.Sprintf("Directions to %s provided successfully.", d.To)
	}

	relay, ok := n.dir.Resolve(directory.Notification)
	if !ok {
		c.Log().Debug("no notification relay registered")
		return
	}
	if err := c.Send(actor.Inform, note, relay); err != nil {
		c.Log().WithError(err).Warn("navigation notification not delivered")
	}
}
