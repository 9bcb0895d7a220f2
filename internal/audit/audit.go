package audit

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ziadkadry99/riskdesk/internal/events"
)

// ActorType identifies who performed an action.
type ActorType string

const (
	ActorUser   ActorType = "user"
	ActorSystem ActorType = "system"
	ActorAgent  ActorType = "agent"
)

// Action describes what was done.
type Action string

const (
	ActionStatusChanged  Action = "status_changed"
	ActionEventsImported Action = "events_imported"
)

// Scope describes the level at which an action applies.
type Scope string

const (
	ScopeEvent   Scope = "event"
	ScopeDataset Scope = "dataset"
)

// Entry is a single audit trail record.
type Entry struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	ActorType     ActorType `json:"actor_type"`
	ActorID       string    `json:"actor_id"`
	Action        Action    `json:"action"`
	Scope         Scope     `json:"scope"`
	ScopeID       string    `json:"scope_id"`
	Summary       string    `json:"summary"`
	PreviousValue string    `json:"previous_value,omitempty"`
	NewValue      string    `json:"new_value,omitempty"`
	SessionID     string    `json:"session_id,omitempty"`
}

// StatusChangeEntry describes an applied status change. An empty actorID is
// recorded as "anonymous".
func StatusChangeEntry(change events.StatusChange, actor ActorType, actorID, sessionID string) Entry {
	if actorID == "" {
		actorID = "anonymous"
	}
	return Entry{
		ActorType:     actor,
		ActorID:       actorID,
		Action:        ActionStatusChanged,
		Scope:         ScopeEvent,
		ScopeID:       change.EventID,
		Summary:       fmt.Sprintf("Status de %s alterado de %s para %s", change.EventID, change.Previous, change.Current),
		PreviousValue: string(change.Previous),
		NewValue:      string(change.Current),
		SessionID:     sessionID,
	}
}

// ImportEntry describes a bulk import of count events from source.
func ImportEntry(source string, count int, actor ActorType, actorID string) Entry {
	if actorID == "" {
		actorID = "anonymous"
	}
	return Entry{
		ActorType: actor,
		ActorID:   actorID,
		Action:    ActionEventsImported,
		Scope:     ScopeDataset,
		ScopeID:   source,
		Summary:   fmt.Sprintf("%d eventos importados de %s", count, source),
		NewValue:  strconv.Itoa(count),
	}
}
