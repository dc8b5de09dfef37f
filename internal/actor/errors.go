package actor

import "errors"

var (
	// ErrUnknownActor is returned when a receiver is not spawned in the system.
	ErrUnknownActor = errors.New("actor not found")

	// ErrActorStopped is returned when delivering to, or asking from, a stopped actor.
	ErrActorStopped = errors.New("actor stopped")

	// ErrDuplicateActor is returned by Spawn when the id is taken.
	ErrDuplicateActor = errors.New("actor already exists")

	// ErrNoReceivers is returned when a message names nobody.
	ErrNoReceivers = errors.New("message has no receivers")

	// ErrNoResponse is returned when an ask times out.
	ErrNoResponse = errors.New("no response from dependency")

	// ErrNotUnderstood is the failure content for messages no behaviour matches.
	ErrNotUnderstood = errors.New("not understood")

	// ErrUnanswered is the failure content for requests a handler left without reply.
	ErrUnanswered = errors.New("request was not answered")

	// ErrHandlerPanic is the failure content for requests whose handler panicked.
	ErrHandlerPanic = errors.New("internal error while handling request")
)
