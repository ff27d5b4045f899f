package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/almanac/internal/domain"
)

// VacationStore defines the interface for vacation persistence.
type VacationStore interface {
	// Create saves a new vacation.
	Create(ctx context.Context, vacation *domain.Vacation) error

	// GetByID retrieves a vacation by its unique ID.
	// Returns ErrVacationNotFound if the vacation does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Vacation, error)

	// Update persists the current state of the vacation.
	// Returns ErrVacationNotFound if the vacation does not exist.
	Update(ctx context.Context, vacation *domain.Vacation) error

	// Archive marks the vacation archived.
	Archive(ctx context.Context, id uuid.UUID) error

	// List returns all vacations, optionally including archived ones.
	List(ctx context.Context, includeArchived bool) ([]*domain.Vacation, error)
}
