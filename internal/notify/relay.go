// Package notify fans outcome notifications out to presentation listeners.
package notify

import (
	"github.com/saadz-khan/smartcampus/internal/actor"
	"github.com/saadz-khan/smartcampus/internal/directory"
	"github.com/saadz-khan/smartcampus/internal/model"
	"github.com/sirupsen/logrus"
)

// isNotification matches inform messages carrying a model.Notification.
var isNotification = actor.And(
	actor.MatchPerformative(actor.Inform),
	actor.MatchContent[model.Notification](),
)

// Relay is the stateless notification relay. Listeners are resolved through
// the directory on every event, so they may come and go at runtime.
type Relay struct {
	dir *directory.Directory
}

// NewRelay creates a relay over dir.
func NewRelay(dir *directory.Directory) *Relay {
	return &Relay{dir: dir}
}

// Behaviours returns the relay's behaviour table.
func (r *Relay) Behaviours() []actor.Behaviour {
	return []actor.Behaviour{{
		Name:   "forward",
		Match:  isNotification,
		Handle: r.forward,
	}}
}

func (r *Relay) forward(c *actor.Conversation) {
	n := c.Message().Content.(model.Notification)
	log := c.Log().WithFields(logrus.Fields{"subject_id": n.SubjectID, "category": n.Category})

	var listeners []string
	for _, id := range r.dir.Find(directory.Presentation) {
		if id != c.Self() {
			listeners = append(listeners, id)
		}
	}
	if len(listeners) == 0 {
		log.Debug("no listeners for notification")
		return
	}

	if err := c.Send(actor.Inform, n, listeners...); err != nil {
		log.WithError(err).Warn("notification not delivered to every listener")
		return
	}
	log.WithField("listeners", len(listeners)).Debug("notification forwarded")
}
