package actor

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Conversation is the handler's view of one incoming message.
type Conversation struct {
	ctx     context.Context
	actor   *Actor
	msg     *Message
	replied bool
	log     logrus.FieldLogger
}

// Context is canceled when the actor stops or the conversation's deadline
// passes. Asks made through the conversation share that deadline.
func (c *Conversation) Context() context.Context {
	return c.ctx
}

// Message returns the message that started the conversation.
func (c *Conversation) Message() *Message {
	return c.msg
}

// Self returns the id of the handling actor.
func (c *Conversation) Self() string {
	return c.actor.id
}

// Log returns a logger carrying the conversation fields.
func (c *Conversation) Log() logrus.FieldLogger {
	return c.log
}

// Reply answers the sender of the conversation's message.
func (c *Conversation) Reply(p Performative, content any) error {
	c.replied = true
	return c.actor.Send(c.msg.CreateReply(p, content))
}

// Send delivers a new message within this conversation.
func (c *Conversation) Send(p Performative, content any, receivers ...string) error {
	return c.actor.Send(&Message{
		Performative:   p,
		Receivers:      receivers,
		ConversationID: c.msg.ConversationID,
		Content:        content,
	})
}

// Ask queries another actor and suspends this conversation until it replies.
func (c *Conversation) Ask(to string, p Performative, content any) (*Message, error) {
	return c.actor.ask(c.ctx, &Message{
		Performative:   p,
		Receivers:      []string{to},
		ConversationID: c.msg.ConversationID,
		Content:        content,
	})
}
