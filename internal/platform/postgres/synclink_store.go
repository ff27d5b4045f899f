package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/platform/logger"
	"github.com/phrazzld/almanac/internal/store"
)

// Compile-time check that SyncLinkStore implements store.SyncLinkStore.
var _ store.SyncLinkStore = (*SyncLinkStore)(nil)

// SyncLinkStore implements store.SyncLinkStore using PostgreSQL. The
// (kind, local_id) pair is the primary key; Upsert relies on it.
type SyncLinkStore struct {
	db store.DBTX
}

// NewSyncLinkStore creates a new SyncLinkStore.
func NewSyncLinkStore(db store.DBTX) *SyncLinkStore {
	return &SyncLinkStore{db: db}
}

// Upsert creates or replaces the link for (kind, local id).
func (s *SyncLinkStore) Upsert(ctx context.Context, link *domain.SyncLink) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO sync_links (kind, local_id, remote_id, archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (kind, local_id)
		DO UPDATE SET remote_id = EXCLUDED.remote_id, archived = EXCLUDED.archived,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		link.Kind,
		link.LocalID,
		link.RemoteID,
		link.Archived,
		link.CreatedAt,
		link.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to upsert sync link",
			"kind", link.Kind,
			"local_id", link.LocalID,
			"error", err)
		return mapError(err, store.ErrLinkNotFound)
	}
	return nil
}

// GetByLocal retrieves the link for a local entity.
func (s *SyncLinkStore) GetByLocal(ctx context.Context, kind domain.EntityKind, localID uuid.UUID) (*domain.SyncLink, error) {
	query := `
		SELECT kind, local_id, remote_id, archived, created_at, updated_at
		FROM sync_links
		WHERE kind = $1 AND local_id = $2
	`
	var link domain.SyncLink
	err := s.db.QueryRowContext(ctx, query, kind, localID).Scan(
		&link.Kind,
		&link.LocalID,
		&link.RemoteID,
		&link.Archived,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, store.ErrLinkNotFound)
	}
	return &link, nil
}

// ListByKind returns all links for an entity kind.
func (s *SyncLinkStore) ListByKind(ctx context.Context, kind domain.EntityKind) ([]*domain.SyncLink, error) {
	query := `
		SELECT kind, local_id, remote_id, archived, created_at, updated_at
		FROM sync_links
		WHERE kind = $1
	`
	rows, err := s.db.QueryContext(ctx, query, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync links: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var links []*domain.SyncLink
	for rows.Next() {
		var link domain.SyncLink
		err := rows.Scan(
			&link.Kind,
			&link.LocalID,
			&link.RemoteID,
			&link.Archived,
			&link.CreatedAt,
			&link.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync link: %w", err)
		}
		links = append(links, &link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sync links: %w", err)
	}
	return links, nil
}

// Delete removes the link for a local entity. Deleting a missing link is
// not an error.
func (s *SyncLinkStore) Delete(ctx context.Context, kind domain.EntityKind, localID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sync_links WHERE kind = $1 AND local_id = $2`, kind, localID)
	if err != nil {
		return mapError(err, store.ErrLinkNotFound)
	}
	return nil
}
