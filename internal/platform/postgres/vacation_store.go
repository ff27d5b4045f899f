package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/platform/logger"
	"github.com/phrazzld/almanac/internal/store"
)

// Compile-time check that VacationStore implements store.VacationStore.
var _ store.VacationStore = (*VacationStore)(nil)

// VacationStore implements store.VacationStore using PostgreSQL.
type VacationStore struct {
	db store.DBTX
}

// NewVacationStore creates a new VacationStore.
func NewVacationStore(db store.DBTX) *VacationStore {
	return &VacationStore{db: db}
}

// Create saves a new vacation.
func (s *VacationStore) Create(ctx context.Context, vacation *domain.Vacation) error {
	log := logger.FromContext(ctx)

	if err := vacation.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO vacations (id, name, start_date, end_date, archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		vacation.ID,
		vacation.Name,
		vacation.StartDate,
		vacation.EndDate,
		vacation.Archived,
		vacation.CreatedAt,
		vacation.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create vacation",
			"vacation_id", vacation.ID,
			"error", err)
		return mapError(err, store.ErrVacationNotFound)
	}
	return nil
}

// GetByID retrieves a vacation by its unique ID.
func (s *VacationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Vacation, error) {
	query := `
		SELECT id, name, start_date, end_date, archived, created_at, updated_at
		FROM vacations
		WHERE id = $1
	`
	return scanVacation(s.db.QueryRowContext(ctx, query, id))
}

// Update persists the current state of the vacation.
func (s *VacationStore) Update(ctx context.Context, vacation *domain.Vacation) error {
	log := logger.FromContext(ctx)

	if err := vacation.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE vacations
		SET name = $1, start_date = $2, end_date = $3, archived = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := s.db.ExecContext(ctx, query,
		vacation.Name,
		vacation.StartDate,
		vacation.EndDate,
		vacation.Archived,
		vacation.UpdatedAt,
		vacation.ID,
	)
	if err != nil {
		log.Error("failed to update vacation",
			"vacation_id", vacation.ID,
			"error", err)
		return mapError(err, store.ErrVacationNotFound)
	}
	return checkRowsAffected(result, store.ErrVacationNotFound)
}

// Archive marks the vacation archived.
func (s *VacationStore) Archive(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE vacations
		SET archived = TRUE, updated_at = $1
		WHERE id = $2
	`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return mapError(err, store.ErrVacationNotFound)
	}
	return checkRowsAffected(result, store.ErrVacationNotFound)
}

// List returns all vacations, optionally including archived ones.
func (s *VacationStore) List(ctx context.Context, includeArchived bool) ([]*domain.Vacation, error) {
	query := `
		SELECT id, name, start_date, end_date, archived, created_at, updated_at
		FROM vacations
	`
	if !includeArchived {
		query += ` WHERE archived = FALSE`
	}
	query += ` ORDER BY start_date`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list vacations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var vacations []*domain.Vacation
	for rows.Next() {
		vacation, err := scanVacation(rows)
		if err != nil {
			return nil, err
		}
		vacations = append(vacations, vacation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vacations: %w", err)
	}
	return vacations, nil
}

func scanVacation(row rowScanner) (*domain.Vacation, error) {
	var v domain.Vacation
	err := row.Scan(
		&v.ID,
		&v.Name,
		&v.StartDate,
		&v.EndDate,
		&v.Archived,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, store.ErrVacationNotFound)
	}
	return &v, nil
}
