package actor

import "time"

// Performative names the intent of a message and drives handler dispatch.
type Performative string

const (
	Request        Performative = "request"
	Propose        Performative = "propose"
	Inform         Performative = "inform"
	AcceptProposal Performative = "accept_proposal"
	RejectProposal Performative = "reject_proposal"
	Failure        Performative = "failure"
	Cancel         Performative = "cancel"
	Query          Performative = "query"
)

// ExpectsReply reports whether a message with this performative must be answered.
func (p Performative) ExpectsReply() bool {
	switch p {
	case Request, Propose, Query, Cancel:
		return true
	default:
		return false
	}
}

// Message is the envelope exchanged between actors.
//
// Content is an opaque payload; handlers type-assert it to the structure
// defined for their operation.
type Message struct {
	ID             string       `json:"id"`
	Performative   Performative `json:"performative"`
	Sender         string       `json:"sender"`
	Receivers      []string     `json:"receivers"`
	ConversationID string       `json:"conversation_id,omitempty"`
	ReplyWith      string       `json:"reply_with,omitempty"`
	InReplyTo      string       `json:"in_reply_to,omitempty"`
	Content        any          `json:"content,omitempty"`
	SentAt         time.Time    `json:"sent_at"`
	// ReplyBy is when the asker stops waiting. Zero for plain sends.
	ReplyBy time.Time `json:"reply_by,omitempty"`
}

// CreateReply builds a reply addressed to the sender of m, in the same conversation.
func (m *Message) CreateReply(p Performative, content any) *Message {
	return &Message{
		Performative:   p,
		Receivers:      []string{m.Sender},
		ConversationID: m.ConversationID,
		InReplyTo:      m.ReplyWith,
		Content:        content,
	}
}
