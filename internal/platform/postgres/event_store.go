package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/events"
	"github.com/phrazzld/almanac/internal/platform/logger"
	"github.com/phrazzld/almanac/internal/store"
)

// Compile-time check that EventStore implements store.EventStore.
var _ store.EventStore = (*EventStore)(nil)

// EventStore implements store.EventStore using PostgreSQL.
type EventStore struct {
	db store.DBTX
}

// NewEventStore creates a new EventStore.
func NewEventStore(db store.DBTX) *EventStore {
	return &EventStore{db: db}
}

// Append adds an event to the log.
func (s *EventStore) Append(ctx context.Context, event *events.Event) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO events (id, entity_kind, entity_id, op, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.EntityKind,
		event.EntityID,
		event.Op,
		nullableBytes(event.Payload),
		event.CreatedAt,
	)
	if err != nil {
		log.Error("failed to append event",
			"event_id", event.ID,
			"entity_id", event.EntityID,
			"error", err)
		return mapError(err, store.ErrNotFound)
	}
	return nil
}

// ListByEntity returns the events recorded for one entity, oldest first.
func (s *EventStore) ListByEntity(ctx context.Context, kind domain.EntityKind, entityID uuid.UUID) ([]*events.Event, error) {
	query := `
		SELECT id, entity_kind, entity_id, op, payload, created_at
		FROM events
		WHERE entity_kind = $1 AND entity_id = $2
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, kind, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var list []*events.Event
	for rows.Next() {
		var e events.Event
		err := rows.Scan(
			&e.ID,
			&e.EntityKind,
			&e.EntityID,
			&e.Op,
			&e.Payload,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		list = append(list, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return list, nil
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
