package actor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// HandlerFunc handles one conversation started by a matched message.
type HandlerFunc func(c *Conversation)

// Behaviour binds a template to a handler.
//
// Concurrent behaviours run every matched message on its own goroutine so a
// conversation suspended in Ask does not hold up the rest of the mailbox.
type Behaviour struct {
	Name       string
	Match      Template
	Handle     HandlerFunc
	Concurrent bool
}

// Actor is a spawned mailbox with its behaviour table.
type Actor struct {
	id         string
	system     *System
	mailbox    *Mailbox
	behaviours []Behaviour
	log        logrus.FieldLogger

	waitersMu sync.Mutex
	waiters   map[string]*waiter

	ctx     context.Context
	cancel  context.CancelFunc
	tasks   sync.WaitGroup
	done    chan struct{}
	stopped atomic.Bool
}

// waiter is a conversation suspended until a reply from one actor arrives.
type waiter struct {
	from  string
	reply chan *Message
}

func newActor(id string, system *System, behaviours []Behaviour) *Actor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Actor{
		id:         id,
		system:     system,
		mailbox:    NewMailbox(),
		behaviours: behaviours,
		log:        logger.WithField("actor", id),
		waiters:    make(map[string]*waiter),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// ID returns the actor's identifier.
func (a *Actor) ID() string {
	return a.id
}

// Pending returns the number of messages waiting in the mailbox.
func (a *Actor) Pending() int {
	return a.mailbox.Len()
}

// Send delivers msg with this actor as sender. It never blocks.
func (a *Actor) Send(msg *Message) error {
	msg.Sender = a.id
	return a.system.Send(msg)
}

// Ask sends one message to another actor and waits for its reply.
//
// When ctx has no deadline the system ask timeout applies. On timeout the
// error wraps ErrNoResponse.
func (a *Actor) Ask(ctx context.Context, to string, p Performative, content any) (*Message, error) {
	return a.ask(ctx, &Message{
		Performative: p,
		Receivers:    []string{to},
		Content:      content,
	})
}

func (a *Actor) ask(ctx context.Context, msg *Message) (*Message, error) {
	if len(msg.Receivers) != 1 {
		return nil, fmt.Errorf("ask needs exactly one receiver, got %d", len(msg.Receivers))
	}
	if a.stopped.Load() {
		return nil, ErrActorStopped
	}
	to := msg.Receivers[0]

	token := uuid.NewString()
	msg.ReplyWith = token
	if msg.ConversationID == "" {
		msg.ConversationID = uuid.NewString()
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.system.askTimeout)
		defer cancel()
	}
	msg.ReplyBy, _ = ctx.Deadline()

	w := &waiter{from: to, reply: make(chan *Message, 1)}
	a.waitersMu.Lock()
	a.waiters[token] = w
	a.waitersMu.Unlock()
	defer a.forget(token)

	if err := a.Send(msg); err != nil {
		return nil, err
	}

	select {
	case reply := <-w.reply:
		return reply, nil
	case <-ctx.Done():
		a.log.WithFields(logrus.Fields{
			"to":              to,
			"conversation_id": msg.ConversationID,
		}).Warn("ask timed out")
		return nil, fmt.Errorf("%w: %s: %v", ErrNoResponse, to, ctx.Err())
	case <-a.ctx.Done():
		return nil, ErrActorStopped
	}
}

func (a *Actor) forget(token string) {
	a.waitersMu.Lock()
	delete(a.waiters, token)
	a.waitersMu.Unlock()
}

// accept runs on the sender's goroutine.
func (a *Actor) accept(msg *Message) error {
	if a.stopped.Load() {
		return ErrActorStopped
	}
	if msg.InReplyTo != "" && a.resume(msg) {
		return nil
	}
	if !a.understands(msg) {
		a.deadLetter(msg)
		return nil
	}
	a.mailbox.Put(msg)
	// stop may have drained the mailbox between the check above and Put.
	if a.stopped.Load() && a.mailbox.Remove(msg) {
		return ErrActorStopped
	}
	return nil
}

// resume hands a reply to the conversation waiting for it. Only the actor
// that was asked can resume the conversation.
func (a *Actor) resume(msg *Message) bool {
	a.waitersMu.Lock()
	w, ok := a.waiters[msg.InReplyTo]
	if ok && w.from == msg.Sender {
		delete(a.waiters, msg.InReplyTo)
	} else {
		ok = false
	}
	a.waitersMu.Unlock()

	if ok {
		w.reply <- msg
	}
	return ok
}

func (a *Actor) understands(msg *Message) bool {
	for _, b := range a.behaviours {
		if b.Match == nil || b.Match(msg) {
			return true
		}
	}
	return false
}

func (a *Actor) deadLetter(msg *Message) {
	a.log.WithFields(logrus.Fields{
		"sender":       msg.Sender,
		"performative": msg.Performative,
		"in_reply_to":  msg.InReplyTo,
	}).Warn("dead letter: no behaviour matches message")

	if msg.Performative.ExpectsReply() && msg.Sender != "" {
		a.replyFailure(msg, ErrNotUnderstood)
	}
}

func (a *Actor) replyFailure(msg *Message, reason error) {
	reply := msg.CreateReply(Failure, reason)
	reply.Sender = a.id
	if err := a.system.Send(reply); err != nil {
		a.log.WithError(err).WithField("to", msg.Sender).Debug("failure reply not delivered")
	}
}

func (a *Actor) run() {
	defer close(a.done)

	for {
		a.dispatchPending()

		select {
		case <-a.ctx.Done():
			a.tasks.Wait()
			for _, msg := range a.mailbox.Drain() {
				if msg.Performative.ExpectsReply() && msg.Sender != "" {
					a.replyFailure(msg, ErrActorStopped)
				}
			}
			return
		case <-a.mailbox.Ready():
		}
	}
}

// dispatchPending offers each behaviour one matching message per round until
// a full round consumes nothing.
func (a *Actor) dispatchPending() {
	for progressed := true; progressed; {
		progressed = false
		for i := range a.behaviours {
			if a.ctx.Err() != nil {
				return
			}
			b := &a.behaviours[i]
			msg := a.mailbox.Take(b.Match)
			if msg == nil {
				continue
			}
			progressed = true

			if b.Concurrent {
				a.tasks.Add(1)
				go func() {
					defer a.tasks.Done()
					a.invoke(b, msg)
				}()
				continue
			}
			a.invoke(b, msg)
		}
	}
}

// handlingShare is the part of the asker's remaining wait a conversation
// may spend before it must reply.
const handlingShare = 0.8

// conversationContext bounds one conversation and every ask it makes. The
// deadline falls before the asker's, so even a failure reply arrives in time.
func (a *Actor) conversationContext(msg *Message) (context.Context, context.CancelFunc) {
	budget := a.system.askTimeout
	if !msg.ReplyBy.IsZero() {
		if left := time.Duration(float64(time.Until(msg.ReplyBy)) * handlingShare); left < budget {
			budget = left
		}
	}
	return context.WithTimeout(a.ctx, budget)
}

func (a *Actor) invoke(b *Behaviour, msg *Message) {
	ctx, cancel := a.conversationContext(msg)
	defer cancel()

	c := &Conversation{
		ctx:   ctx,
		actor: a,
		msg:   msg,
		log: a.log.WithFields(logrus.Fields{
			"behaviour":       b.Name,
			"performative":    msg.Performative,
			"sender":          msg.Sender,
			"conversation_id": msg.ConversationID,
		}),
	}
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			c.log.WithField("panic", r).Error("handler panicked")
			if msg.Performative.ExpectsReply() && !c.replied {
				a.replyFailure(msg, ErrHandlerPanic)
			}
			return
		}
		if msg.Performative.ExpectsReply() && !c.replied {
			c.log.Warn("handler returned without reply")
			a.replyFailure(msg, ErrUnanswered)
		}
		c.log.WithField("elapsed", time.Since(started)).Debug("message handled")
	}()

	b.Handle(c)
}

func (a *Actor) stop() {
	if a.stopped.CompareAndSwap(false, true) {
		a.cancel()
	}
	<-a.done
}
