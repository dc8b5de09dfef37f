package actor

import (
	"container/list"
	"sync"
)

// Mailbox is an unbounded FIFO queue with selective receive.
//
// Put never blocks. Take removes the oldest message accepted by a template
// and leaves everything else in place, so per-sender order is preserved for
// each template.
type Mailbox struct {
	mu    sync.Mutex
	queue *list.List
	ready chan struct{}
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{
		queue: list.New(),
		ready: make(chan struct{}, 1),
	}
}

// Put appends a message and wakes the consumer.
func (m *Mailbox) Put(msg *Message) {
	m.mu.Lock()
	m.queue.PushBack(msg)
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
}

// Take removes and returns the oldest message matching t, or nil.
func (m *Mailbox) Take(t Template) *Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	for e := m.queue.Front(); e != nil; e = e.Next() {
		msg := e.Value.(*Message)
		if t == nil || t(msg) {
			m.queue.Remove(e)
			return msg
		}
	}
	return nil
}

// Remove takes msg out of the mailbox and reports whether it was queued.
func (m *Mailbox) Remove(msg *Message) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for e := m.queue.Front(); e != nil; e = e.Next() {
		if e.Value.(*Message) == msg {
			m.queue.Remove(e)
			return true
		}
	}
	return false
}

// Drain removes and returns every queued message.
func (m *Mailbox) Drain() []*Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Message, 0, m.queue.Len())
	for e := m.queue.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*Message))
	}
	m.queue.Init()
	return out
}

// Len returns the number of queued messages.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Len()
}

// Ready is signalled after Put. A signal may cover several messages.
func (m *Mailbox) Ready() <-chan struct{} {
	return m.ready
}
