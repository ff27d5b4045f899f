package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/events"
)

// EventStore defines the interface for the entity event log. Events are
// appended in the same transaction as the mutation they describe.
type EventStore interface {
	// Append adds an event to the log.
	Append(ctx context.Context, event *events.Event) error

	// ListByEntity returns the events recorded for one entity, oldest
	// first.
	ListByEntity(ctx context.Context, kind domain.EntityKind, entityID uuid.UUID) ([]*events.Event, error)
}
