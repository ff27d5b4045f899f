package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/platform/logger"
	"github.com/phrazzld/almanac/internal/store"
)

// Compile-time check that ChoreStore implements store.ChoreStore.
var _ store.ChoreStore = (*ChoreStore)(nil)

// ChoreStore implements store.ChoreStore using PostgreSQL.
type ChoreStore struct {
	db store.DBTX
}

// NewChoreStore creates a new ChoreStore.
func NewChoreStore(db store.DBTX) *ChoreStore {
	return &ChoreStore{db: db}
}

// Create saves a new chore.
func (s *ChoreStore) Create(ctx context.Context, chore *domain.Chore) error {
	log := logger.FromContext(ctx)

	if err := chore.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	params, err := json.Marshal(chore.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal chore params: %w", err)
	}

	query := `
		INSERT INTO chores (id, project_id, name, params, must_do, active_from, active_until,
			suspended, archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(ctx, query,
		chore.ID,
		chore.ProjectID,
		chore.Name,
		params,
		chore.MustDo,
		chore.ActiveFrom,
		chore.ActiveUntil,
		chore.Suspended,
		chore.Archived,
		chore.CreatedAt,
		chore.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create chore",
			"chore_id", chore.ID,
			"error", err)
		return mapError(err, store.ErrTemplateNotFound)
	}
	return nil
}

// GetByID retrieves a chore by its unique ID.
func (s *ChoreStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Chore, error) {
	query := `
		SELECT id, project_id, name, params, must_do, active_from, active_until,
			suspended, archived, created_at, updated_at
		FROM chores
		WHERE id = $1
	`
	return scanChore(s.db.QueryRowContext(ctx, query, id))
}

// Update persists the current state of the chore.
func (s *ChoreStore) Update(ctx context.Context, chore *domain.Chore) error {
	log := logger.FromContext(ctx)

	if err := chore.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	params, err := json.Marshal(chore.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal chore params: %w", err)
	}

	query := `
		UPDATE chores
		SET project_id = $1, name = $2, params = $3, must_do = $4, active_from = $5,
			active_until = $6, suspended = $7, archived = $8, updated_at = $9
		WHERE id = $10
	`
	result, err := s.db.ExecContext(ctx, query,
		chore.ProjectID,
		chore.Name,
		params,
		chore.MustDo,
		chore.ActiveFrom,
		chore.ActiveUntil,
		chore.Suspended,
		chore.Archived,
		chore.UpdatedAt,
		chore.ID,
	)
	if err != nil {
		log.Error("failed to update chore",
			"chore_id", chore.ID,
			"error", err)
		return mapError(err, store.ErrTemplateNotFound)
	}
	return checkRowsAffected(result, store.ErrTemplateNotFound)
}

// Archive marks the chore archived.
func (s *ChoreStore) Archive(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE chores
		SET archived = TRUE, updated_at = $1
		WHERE id = $2
	`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return mapError(err, store.ErrTemplateNotFound)
	}
	return checkRowsAffected(result, store.ErrTemplateNotFound)
}

// List returns chores matching the filter.
func (s *ChoreStore) List(ctx context.Context, filter store.TemplateFilter) ([]*domain.Chore, error) {
	query := `
		SELECT id, project_id, name, params, must_do, active_from, active_until,
			suspended, archived, created_at, updated_at
		FROM chores
	`
	where, args := templateWhere(filter)
	query += where + ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list chores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var chores []*domain.Chore
	for rows.Next() {
		chore, err := scanChore(rows)
		if err != nil {
			return nil, err
		}
		chores = append(chores, chore)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chores: %w", err)
	}
	return chores, nil
}

func scanChore(row rowScanner) (*domain.Chore, error) {
	var c domain.Chore
	var params []byte
	err := row.Scan(
		&c.ID,
		&c.ProjectID,
		&c.Name,
		&params,
		&c.MustDo,
		&c.ActiveFrom,
		&c.ActiveUntil,
		&c.Suspended,
		&c.Archived,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, store.ErrTemplateNotFound)
	}
	if err := json.Unmarshal(params, &c.Params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chore params: %w", err)
	}
	return &c, nil
}
