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

// Compile-time check that HabitStore implements store.HabitStore.
var _ store.HabitStore = (*HabitStore)(nil)

// HabitStore implements store.HabitStore using PostgreSQL. Recurrence
// params are stored as a JSONB document, matching their shape in the
// domain layer.
type HabitStore struct {
	db store.DBTX
}

// NewHabitStore creates a new HabitStore.
func NewHabitStore(db store.DBTX) *HabitStore {
	return &HabitStore{db: db}
}

// Create saves a new habit.
func (s *HabitStore) Create(ctx context.Context, habit *domain.Habit) error {
	log := logger.FromContext(ctx)

	if err := habit.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	params, err := json.Marshal(habit.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal habit params: %w", err)
	}

	query := `
		INSERT INTO habits (id, project_id, name, params, suspended, archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.db.ExecContext(ctx, query,
		habit.ID,
		habit.ProjectID,
		habit.Name,
		params,
		habit.Suspended,
		habit.Archived,
		habit.CreatedAt,
		habit.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create habit",
			"habit_id", habit.ID,
			"error", err)
		return mapError(err, store.ErrTemplateNotFound)
	}
	return nil
}

// GetByID retrieves a habit by its unique ID.
func (s *HabitStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Habit, error) {
	query := `
		SELECT id, project_id, name, params, suspended, archived, created_at, updated_at
		FROM habits
		WHERE id = $1
	`
	return scanHabit(s.db.QueryRowContext(ctx, query, id))
}

// Update persists the current state of the habit.
func (s *HabitStore) Update(ctx context.Context, habit *domain.Habit) error {
	log := logger.FromContext(ctx)

	if err := habit.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	params, err := json.Marshal(habit.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal habit params: %w", err)
	}

	query := `
		UPDATE habits
		SET project_id = $1, name = $2, params = $3, suspended = $4, archived = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := s.db.ExecContext(ctx, query,
		habit.ProjectID,
		habit.Name,
		params,
		habit.Suspended,
		habit.Archived,
		habit.UpdatedAt,
		habit.ID,
	)
	if err != nil {
		log.Error("failed to update habit",
			"habit_id", habit.ID,
			"error", err)
		return mapError(err, store.ErrTemplateNotFound)
	}
	return checkRowsAffected(result, store.ErrTemplateNotFound)
}

// Archive marks the habit archived.
func (s *HabitStore) Archive(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE habits
		SET archived = TRUE, updated_at = $1
		WHERE id = $2
	`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return mapError(err, store.ErrTemplateNotFound)
	}
	return checkRowsAffected(result, store.ErrTemplateNotFound)
}

// List returns habits matching the filter.
func (s *HabitStore) List(ctx context.Context, filter store.TemplateFilter) ([]*domain.Habit, error) {
	query := `
		SELECT id, project_id, name, params, suspended, archived, created_at, updated_at
		FROM habits
	`
	where, args := templateWhere(filter)
	query += where + ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var habits []*domain.Habit
	for rows.Next() {
		habit, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, habit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate habits: %w", err)
	}
	return habits, nil
}

func scanHabit(row rowScanner) (*domain.Habit, error) {
	var h domain.Habit
	var params []byte
	err := row.Scan(
		&h.ID,
		&h.ProjectID,
		&h.Name,
		&params,
		&h.Suspended,
		&h.Archived,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, store.ErrTemplateNotFound)
	}
	if err := json.Unmarshal(params, &h.Params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal habit params: %w", err)
	}
	return &h, nil
}
