package server

import (
	"errors"
	"testing"

	"github.com/nupi-ai/plugin-pitch-compare/internal/compare"
	"github.com/nupi-ai/plugin-pitch-compare/internal/session"
	"github.com/nupi-ai/plugin-pitch-compare/internal/timeline"
)

func TestHubDropsForSlowWatchers(t *testing.T) {
	hub := NewHub(testLogger())
	views, unsubscribe := hub.Subscribe(1)

	for i := 0; i < 3; i++ {
		hub.Publish(session.Snapshot{})
	}
	if len(views) != 1 {
		t.Fatalf("queued %d views, want 1", len(views))
	}
	if hub.Dropped() != 2 {
		t.Fatalf("Dropped() = %d, want 2", hub.Dropped())
	}

	unsubscribe()
	if hub.Subscribers() != 0 {
		t.Fatalf("Subscribers() = %d after unsubscribe", hub.Subscribers())
	}
	hub.Publish(session.Snapshot{})
	if len(views) != 1 {
		t.Fatal("unsubscribed watcher received a view")
	}
}

func TestViewMessageRoundTrip(t *testing.T) {
	snap := session.Snapshot{
		Status: session.Status{
			State:     session.Capturing,
			Segment:   2,
			Label:     "line three",
			Playhead:  4.25,
			Frames:    17,
			LastFrame: 45,
			Err:       errors.New("earlier failure"),
		},
		View: compare.View{
			Window:          compare.Window{Start: 4, End: 5.5},
			ReferencePoints: []timeline.PitchSample{{TimeSec: 4, PitchHz: 196}, {TimeSec: 4.1, PitchHz: 0}},
			UserPoints:      []timeline.PitchSample{{TimeSec: 4, PitchHz: 201.5}},
			MaxMagnitude:    201.5,
		},
	}
	wire, err := EncodeSnapshot(snap)
	if err != nil {
		t.Fatal(err)
	}
	msg, err := DecodeViewMessage(wire)
	if err != nil {
		t.Fatal(err)
	}
	want := NewViewMessage(snap)
	if msg.State != "capturing" || msg.Segment != want.Segment || msg.Label != want.Label ||
		msg.Frames != want.Frames || msg.LastFrame != want.LastFrame || msg.Error != want.Error {
		t.Fatalf("decoded %+v, want %+v", msg, want)
	}
	if len(msg.View.ReferencePoints) != 2 || msg.View.ReferencePoints[0] != want.View.ReferencePoints[0] {
		t.Fatalf("reference points = %v", msg.View.ReferencePoints)
	}
	if msg.View.UserPoints[0] != want.View.UserPoints[0] || msg.View.MaxMagnitude != 201.5 {
		t.Fatalf("user view = %+v", msg.View)
	}
}
