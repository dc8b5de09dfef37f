// Package actor provides the message-passing runtime the campus agents run on.
//
// The core idea is:
//   - Each [Actor] owns an unbounded [Mailbox] and a fixed table of [Behaviour]s.
//   - A behaviour is a [Template] (predicate over the message) plus a handler.
//   - The actor loop repeatedly offers every behaviour one matching message;
//     messages no behaviour matches right now stay queued for later.
//   - [System.Send] never blocks the sender.
//
// Concurrency model:
//   - Serial behaviours run on the actor goroutine, one message at a time.
//   - Concurrent behaviours run each conversation on its own goroutine; the
//     actor's state must then be guarded by an actor-local lock.
//   - [Conversation.Ask] sends a message and suspends only the calling
//     conversation until the addressed actor replies or the ask timeout fires.
//     Replies are routed straight to the waiting conversation, bypassing the
//     mailbox, so an ask never deadlocks the actor loop.
//
// Every request-like message (request, propose, query, cancel) gets a reply:
// a handler that panics or returns without replying produces a failure, and a
// message no behaviour can ever match is answered with a failure as well.
package actor
