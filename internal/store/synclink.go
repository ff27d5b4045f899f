package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/almanac/internal/domain"
)

// SyncLinkStore defines the interface for sync link persistence. Links
// are weak: a link may point at a remote id that no longer resolves, and
// a local or remote entity may have no link at all. The sync engine
// repairs both situations.
type SyncLinkStore interface {
	// Upsert creates or replaces the link for (kind, local id).
	Upsert(ctx context.Context, link *domain.SyncLink) error

	// GetByLocal retrieves the link for a local entity.
	// Returns ErrLinkNotFound if no link exists.
	GetByLocal(ctx context.Context, kind domain.EntityKind, localID uuid.UUID) (*domain.SyncLink, error)

	// ListByKind returns all links for an entity kind.
	ListByKind(ctx context.Context, kind domain.EntityKind) ([]*domain.SyncLink, error)

	// Delete removes the link for a local entity. Deleting a missing
	// link is not an error.
	Delete(ctx context.Context, kind domain.EntityKind, localID uuid.UUID) error
}
