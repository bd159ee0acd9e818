package db

import (
	"github.com/seckatie/clipd/internal/core"
	"github.com/seckatie/clipd/internal/logger"
)

// ------------------------------
// Event System
// ------------------------------
//
// The DB emits typed events when clips are created, updated or deleted.
// Register listeners to react to these changes.
//
// Example usage:
//
//	db.RegisterEventListener(db.OnClipCreatedEvent, func(event db.Event) error {
//	    ev := event.(db.ClipCreatedEvent)
//	    log.Printf("New clip created: %d - %s", ev.Clip.ID, ev.Clip.Title)
//	    return nil
//	})
//
// Event is the common interface for all database events.
type Event interface {
	Kind() EventKind
}

// EventKind represents all the kinds of events that can be emitted by the DB.
type EventKind int

const (
	// OnClipCreatedEvent is emitted when a clip is created or imported.
	OnClipCreatedEvent EventKind = iota
	// OnClipUpdatedEvent is emitted when a clip is updated.
	OnClipUpdatedEvent
	// OnClipDeletedEvent is emitted when a clip is deleted.
	OnClipDeletedEvent
)

// AllEventKinds lists every event kind, for listeners that react to any change.
var AllEventKinds = []EventKind{OnClipCreatedEvent, OnClipUpdatedEvent, OnClipDeletedEvent}

func (k EventKind) String() string {
	switch k {
	case OnClipCreatedEvent:
		return "clip_created"
	case OnClipUpdatedEvent:
		return "clip_updated"
	case OnClipDeletedEvent:
		return "clip_deleted"
	default:
		return "unknown"
	}
}

// ClipCreatedEvent is emitted after a new clip is successfully inserted.
type ClipCreatedEvent struct {
	Clip core.Clip
}

func (e ClipCreatedEvent) Kind() EventKind { return OnClipCreatedEvent }

// ClipUpdatedEvent is emitted after a clip is updated. Clip holds the new state.
type ClipUpdatedEvent struct {
	Clip core.Clip
}

func (e ClipUpdatedEvent) Kind() EventKind { return OnClipUpdatedEvent }

// ClipDeletedEvent is emitted after a clip is deleted.
// The Clip field contains the state before deletion (if available).
type ClipDeletedEvent struct {
	Clip core.Clip
}

func (e ClipDeletedEvent) Kind() EventKind { return OnClipDeletedEvent }

// EventListener is a callback that handles events of a specific kind.
type EventListener func(event Event) error

// RegisterEventListener adds a listener for a specific event kind.
// Listeners are called synchronously in registration order after the DB operation succeeds.
// Register listeners before the DB is shared between goroutines.
func (db *DB) RegisterEventListener(eventKind EventKind, listener EventListener) {
	if db.eventListeners == nil {
		db.eventListeners = make(map[EventKind][]EventListener)
	}
	db.eventListeners[eventKind] = append(db.eventListeners[eventKind], listener)
}

// emit dispatches an event to all registered listeners for that event kind.
func (db *DB) emit(event Event) {
	listeners := db.eventListeners[event.Kind()]
	for _, listener := range listeners {
		if err := listener(event); err != nil {
			db.logger.Warn("event listener failed",
				logger.String("event", event.Kind().String()),
				logger.Error(err))
		}
	}
}
