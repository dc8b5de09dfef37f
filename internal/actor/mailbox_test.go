package actor

import (
	"sync"
	"testing"
)

func TestMailboxTakeLeavesNonMatching(t *testing.T) {
	t.Parallel()

	m := NewMailbox()
	m.Put(&Message{ID: "1", Performative: Inform})
	m.Put(&Message{ID: "2", Performative: Request})
	m.Put(&Message{ID: "3", Performative: Inform})

	got := m.Take(MatchPerformative(Request))
	if got == nil || got.ID != "2" {
		t.Fatalf("Take(request) = %+v, want message 2", got)
	}
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}

	if got := m.Take(MatchPerformative(Request)); got != nil {
		t.Fatalf("second Take(request) = %+v, want nil", got)
	}

	first := m.Take(MatchPerformative(Inform))
	second := m.Take(MatchPerformative(Inform))
	if first.ID != "1" || second.ID != "3" {
		t.Fatalf("inform order = %s,%s, want 1,3", first.ID, second.ID)
	}
}

func TestMailboxTakeBySender(t *testing.T) {
	t.Parallel()

	m := NewMailbox()
	m.Put(&Message{ID: "1", Sender: "alice"})
	m.Put(&Message{ID: "2", Sender: "bob"})
	m.Put(&Message{ID: "3", Sender: "alice"})

	got := m.Take(MatchSender("bob"))
	if got == nil || got.ID != "2" {
		t.Fatalf("Take(bob) = %+v, want message 2", got)
	}
	if m.Take(MatchSender("bob")) != nil {
		t.Fatal("second Take(bob) returned a message")
	}
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want alice's 2 messages left", m.Len())
	}
	if first := m.Take(MatchSender("alice")); first.ID != "1" {
		t.Errorf("first alice message = %s, want 1", first.ID)
	}
}

func TestMailboxRemove(t *testing.T) {
	t.Parallel()

	m := NewMailbox()
	a, b := &Message{ID: "a"}, &Message{ID: "b"}
	m.Put(a)
	m.Put(b)

	if !m.Remove(a) {
		t.Fatal("Remove(a) = false, want true")
	}
	if m.Remove(a) {
		t.Fatal("second Remove(a) = true, want false")
	}
	if got := m.Drain(); len(got) != 1 || got[0] != b {
		t.Fatalf("Drain() = %+v, want only b", got)
	}
	if m.Remove(b) {
		t.Error("Remove(b) after Drain = true, want false")
	}
}

func TestMailboxReadySignal(t *testing.T) {
	t.Parallel()

	m := NewMailbox()
	select {
	case <-m.Ready():
		t.Fatal("empty mailbox signalled ready")
	default:
	}

	m.Put(&Message{ID: "1"})
	m.Put(&Message{ID: "2"})

	select {
	case <-m.Ready():
	default:
		t.Fatal("mailbox not ready after Put")
	}
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
}

func TestMailboxDrain(t *testing.T) {
	t.Parallel()

	m := NewMailbox()
	for i := 0; i < 5; i++ {
		m.Put(&Message{})
	}
	if got := len(m.Drain()); got != 5 {
		t.Fatalf("Drain() returned %d messages, want 5", got)
	}
	if m.Len() != 0 {
		t.Fatalf("Len() after Drain = %d, want 0", m.Len())
	}
}

func TestMailboxConcurrentPut(t *testing.T) {
	t.Parallel()

	m := NewMailbox()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Put(&Message{})
			}
		}()
	}
	wg.Wait()

	if m.Len() != 2000 {
		t.Fatalf("Len() = %d, want 2000", m.Len())
	}
}

func TestPerformativeExpectsReply(t *testing.T) {
	t.Parallel()

	cases := map[Performative]bool{
		Request:        true,
		Propose:        true,
		Query:          true,
		Cancel:         true,
		Inform:         false,
		Failure:        false,
		AcceptProposal: false,
		RejectProposal: false,
	}
	for p, want := range cases {
		if got := p.ExpectsReply(); got != want {
			t.Errorf("%s.ExpectsReply() = %v, want %v", p, got, want)
		}
	}
}
