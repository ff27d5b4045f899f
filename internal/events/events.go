// Package events defines the entity mutation event log. Every create,
// update and archive on a planning entity appends an event in the same
// transaction as the mutation, giving the local store an audit trail.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/almanac/internal/domain"
)

// Op names the mutation an event records.
type Op string

// The recorded mutation operations.
const (
	OpCreate    Op = "create"
	OpUpdate    Op = "update"
	OpArchive   Op = "archive"
	OpPurge     Op = "purge"
	OpGenerate  Op = "generate"
	OpSyncPush  Op = "sync-push"
	OpSyncPull  Op = "sync-pull"
	OpSyncAdopt Op = "sync-adopt"
)

// Event is one entry in the entity event log.
type Event struct {
	// ID is a unique identifier for this event.
	ID uuid.UUID `json:"id"`

	// EntityKind and EntityID identify the mutated entity.
	EntityKind domain.EntityKind `json:"entity_kind"`
	EntityID   uuid.UUID         `json:"entity_id"`

	// Op is the mutation that was applied.
	Op Op `json:"op"`

	// Payload carries operation-specific details serialized as JSON.
	Payload json.RawMessage `json:"payload,omitempty"`

	// CreatedAt is the timestamp when the event was recorded.
	CreatedAt time.Time `json:"created_at"`
}

// New creates an event for the given entity and operation. payload may be
// nil; otherwise it is serialized to JSON.
func New(kind domain.EntityKind, entityID uuid.UUID, op Op, payload any) (*Event, error) {
	event := &Event{
		ID:         uuid.New(),
		EntityKind: kind,
		EntityID:   entityID,
		Op:         op,
		CreatedAt:  time.Now().UTC(),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		event.Payload = raw
	}
	return event, nil
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}
