package db

import (
	"context"
	"errors"
	"testing"

	"github.com/seckatie/clipd/internal/core"
)

// TestEventKindString tests the String method on EventKind.
func TestEventKindString(t *testing.T) {
	tests := []struct {
		kind     EventKind
		expected string
	}{
		{OnClipCreatedEvent, "clip_created"},
		{OnClipUpdatedEvent, "clip_updated"},
		{OnClipDeletedEvent, "clip_deleted"},
		{EventKind(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

// TestEventTypes tests that event types return correct Kind.
func TestEventTypes(t *testing.T) {
	clip := core.Clip{ID: 1}

	if e := (ClipCreatedEvent{Clip: clip}); e.Kind() != OnClipCreatedEvent {
		t.Errorf("expected OnClipCreatedEvent, got %v", e.Kind())
	}
	if e := (ClipUpdatedEvent{Clip: clip}); e.Kind() != OnClipUpdatedEvent {
		t.Errorf("expected OnClipUpdatedEvent, got %v", e.Kind())
	}
	if e := (ClipDeletedEvent{Clip: clip}); e.Kind() != OnClipDeletedEvent {
		t.Errorf("expected OnClipDeletedEvent, got %v", e.Kind())
	}
}

// TestClipCreatedEvent tests that event is emitted on clip creation.
func TestClipCreatedEvent(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	var receivedEvent ClipCreatedEvent
	db.RegisterEventListener(OnClipCreatedEvent, func(event Event) error {
		receivedEvent = event.(ClipCreatedEvent)
		return nil
	})

	c := mustCreate(t, db, core.CreateInput{Title: "Test Clip", Tags: core.ParseTags("a")})

	if receivedEvent.Clip.ID != c.ID {
		t.Errorf("expected clip ID %d, got %d", c.ID, receivedEvent.Clip.ID)
	}
	if receivedEvent.Clip.Title != "Test Clip" {
		t.Errorf("expected Title 'Test Clip', got %q", receivedEvent.Clip.Title)
	}
}

// TestClipUpdatedEvent tests that event is emitted on clip update.
func TestClipUpdatedEvent(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	c := mustCreate(t, db, core.CreateInput{Title: "Old Title"})

	var receivedEvent ClipUpdatedEvent
	db.RegisterEventListener(OnClipUpdatedEvent, func(event Event) error {
		receivedEvent = event.(ClipUpdatedEvent)
		return nil
	})

	if _, err := db.UpdateClip(context.Background(), c.ID, core.UpdateInput{Title: core.Some("New Title")}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if receivedEvent.Clip.ID != c.ID {
		t.Errorf("expected clip ID %d, got %d", c.ID, receivedEvent.Clip.ID)
	}
	if receivedEvent.Clip.Title != "New Title" {
		t.Errorf("expected Title 'New Title', got %q", receivedEvent.Clip.Title)
	}
}

func TestRejectedUpdateEmitsNothing(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	c := mustCreate(t, db, core.CreateInput{Title: "Stable"})

	called := false
	db.RegisterEventListener(OnClipUpdatedEvent, func(event Event) error {
		called = true
		return nil
	})

	_, _ = db.UpdateClip(context.Background(), c.ID, core.UpdateInput{Title: core.Some("")})
	_, _ = db.UpdateClip(context.Background(), 99999, core.UpdateInput{Title: core.Some("x")})

	if called {
		t.Error("expected no update event for rejected updates")
	}
}

// TestClipDeletedEvent tests that event is emitted on clip deletion.
func TestClipDeletedEvent(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	c := mustCreate(t, db, core.CreateInput{Title: "To Delete"})

	var receivedEvent ClipDeletedEvent
	db.RegisterEventListener(OnClipDeletedEvent, func(event Event) error {
		receivedEvent = event.(ClipDeletedEvent)
		return nil
	})

	if err := db.DeleteClip(context.Background(), c.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if receivedEvent.Clip.ID != c.ID {
		t.Errorf("expected clip ID %d, got %d", c.ID, receivedEvent.Clip.ID)
	}
	if receivedEvent.Clip.Title != "To Delete" {
		t.Errorf("expected Title 'To Delete', got %q", receivedEvent.Clip.Title)
	}
}

// TestMultipleListeners tests that multiple listeners are called.
func TestMultipleListeners(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	callCount := 0
	for _, kind := range AllEventKinds {
		db.RegisterEventListener(kind, func(event Event) error {
			callCount++
			return nil
		})
	}
	db.RegisterEventListener(OnClipCreatedEvent, func(event Event) error {
		callCount++
		return nil
	})

	mustCreate(t, db, core.CreateInput{Title: "Test"})

	if callCount != 2 {
		t.Errorf("expected 2 listeners to be called, got %d", callCount)
	}
}

// TestListenerErrors tests that listener errors are handled gracefully.
func TestListenerErrors(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	secondCalled := false

	db.RegisterEventListener(OnClipCreatedEvent, func(event Event) error {
		return errors.New("first listener error")
	})
	db.RegisterEventListener(OnClipCreatedEvent, func(event Event) error {
		secondCalled = true
		return nil
	})

	// Should not panic and should continue to next listener
	c, err := db.CreateClip(context.Background(), core.CreateInput{Title: "Test"})
	if err != nil {
		t.Fatalf("expected no error from CreateClip, got %v", err)
	}
	if c.ID <= 0 {
		t.Error("expected valid clip ID")
	}
	if !secondCalled {
		t.Error("expected second listener to be called despite first listener error")
	}
}

// TestListenersForDifferentEvents tests that listeners only receive their event type.
func TestListenersForDifferentEvents(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	createdCalled := false
	deletedCalled := false

	db.RegisterEventListener(OnClipCreatedEvent, func(event Event) error {
		createdCalled = true
		return nil
	})
	db.RegisterEventListener(OnClipDeletedEvent, func(event Event) error {
		deletedCalled = true
		return nil
	})

	// Only create a clip, don't delete
	mustCreate(t, db, core.CreateInput{Title: "Test"})

	if !createdCalled {
		t.Error("expected created listener to be called")
	}
	if deletedCalled {
		t.Error("expected deleted listener NOT to be called")
	}
}
