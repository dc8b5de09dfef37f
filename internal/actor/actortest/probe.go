// Package actortest provides helpers for testing actors.
package actortest

import (
	"testing"
	"time"

	"github.com/saadz-khan/smartcampus/internal/actor"
)

// Probe is an actor that records every message it receives.
type Probe struct {
	*actor.Actor
	messages chan *actor.Message
}

// NewProbe spawns a recording actor and stops it when the test ends.
func NewProbe(t testing.TB, sys *actor.System, id string) *Probe {
	t.Helper()

	messages := make(chan *actor.Message, 256)
	a, err := sys.Spawn(id, actor.Behaviour{
		Name:  "record",
		Match: actor.MatchAll(),
		Handle: func(c *actor.Conversation) {
			messages <- c.Message()
		},
	})
	if err != nil {
		t.Fatalf("spawn probe %s: %v", id, err)
	}
	t.Cleanup(func() { sys.Stop(id) })
	return &Probe{Actor: a, messages: messages}
}

// Next waits for the next recorded message.
func (p *Probe) Next(t testing.TB, timeout time.Duration) *actor.Message {
	t.Helper()
	select {
	case msg := <-p.messages:
		return msg
	case <-time.After(timeout):
		t.Fatalf("probe %s: no message within %s", p.ID(), timeout)
		return nil
	}
}

// ExpectNone fails if a message arrives within d.
func (p *Probe) ExpectNone(t testing.TB, d time.Duration) {
	t.Helper()
	select {
	case msg := <-p.messages:
		t.Fatalf("probe %s: unexpected %s message: %+v", p.ID(), msg.Performative, msg.Content)
	case <-time.After(d):
	}
}
