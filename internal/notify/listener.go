package notify

import (
	"github.com/saadz-khan/smartcampus/internal/actor"
	"github.com/saadz-khan/smartcampus/internal/model"
	"github.com/sirupsen/logrus"
)

// LogListener writes every notification it receives to a logger.
type LogListener struct {
	log logrus.FieldLogger
}

// NewLogListener creates a listener writing to log.
func NewLogListener(log logrus.FieldLogger) *LogListener {
	return &LogListener{log: log}
}

// Behaviours returns the listener's behaviour table.
func (l *LogListener) Behaviours() []actor.Behaviour {
	return []actor.Behaviour{{
		Name:  "log",
		Match: isNotification,
		Handle: func(c *actor.Conversation) {
			n := c.Message().Content.(model.Notification)
			l.log.WithFields(logrus.Fields{
				"subject_id":      n.SubjectID,
				"category":        n.Category,
				"conversation_id": c.Message().ConversationID,
			}).Info(n.Message)
		},
	}}
}
