package navigation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/saadz-khan/smartcampus/internal/actor"
	"github.com/saadz-khan/smartcampus/internal/actor/actortest"
	"github.com/saadz-khan/smartcampus/internal/directory"
	"github.com/saadz-khan/smartcampus/internal/model"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	n := New(DefaultGuides(), directory.New())

	d, err := n.Lookup("Main Gate", "102")
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	want := model.Directions{
		From:          "Main Gate",
		To:            "102",
		Building:      "Building B",
		Floor:         2,
		Directions:    "Walk to Building B, take stairs to floor 2, room is straight ahead",
		EstimatedTime: "5 minutes",
	}
	if d != want {
		t.Errorf("Lookup() = %+v, want %+v", d, want)
	}

	_, err = n.Lookup("Main Gate", "303")
	if !errors.Is(err, model.ErrNotFound) || err.Error() != "Room 303 not found in the database." {
		t.Errorf("Lookup(303) error = %v", err)
	}
}

func TestGuideTableIsCopied(t *testing.T) {
	t.Parallel()

	guides := DefaultGuides()
	n := New(guides, directory.New())
	delete(guides, "101")

	if _, err := n.Lookup("", "101"); err != nil {
		t.Fatalf("caller mutation leaked into navigator: %v", err)
	}
}

func TestDirectionsConversation(t *testing.T) {
	t.Parallel()

	sys := actor.NewSystem(actor.WithAskTimeout(time.Second))
	t.Cleanup(sys.Shutdown)
	dir := directory.New()

	_, _ = sys.Spawn("nav", New(DefaultGuides(), dir).Behaviours()...)
	relay := actortest.NewProbe(t, sys, "relay")
	_ = dir.Register(directory.Notification, "relay", "relay")
	client, _ := sys.Spawn("gui")
	ctx := context.Background()

	reply, err := client.Ask(ctx, "nav", actor.Request, model.DirectionsRequest{CurrentLocation: "Library", RoomID: "101", RequesterID: "12345678"})
	if err != nil {
		t.Fatalf("Ask() failed: %v", err)
	}
	if reply.Performative != actor.Inform || reply.Content.(model.Directions).Building != "Building A" {
		t.Fatalf("reply = %s %v", reply.Performative, reply.Content)
	}
	n := relay.Next(t, time.Second).Content.(model.Notification)
	if n.SubjectID != "12345678" || n.Category != model.CategoryNavigation || n.Message != "Directions to 101 provided successfully." {
		t.Errorf("notification = %+v", n)
	}

	reply, err = client.Ask(ctx, "nav", actor.Request, model.DirectionsRequest{CurrentLocation: "Library", RoomID: "999"})
	if err != nil {
		t.Fatalf("Ask() failed: %v", err)
	}
	if reply.Performative != actor.Failure || !errors.Is(reply.Content.(error), model.ErrNotFound) {
		t.Fatalf("reply = %s %v", reply.Performative, reply.Content)
	}
	n = relay.Next(t, time.Second).Content.(model.Notification)
	if n.SubjectID != "Unknown" || n.Message != "Navigation failed: Room 999 not found in the database." {
		t.Errorf("failure notification = %+v", n)
	}
}
