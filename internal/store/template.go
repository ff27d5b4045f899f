package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/almanac/internal/domain"
)

// TemplateFilter narrows template listings. Zero-value fields do not
// filter.
type TemplateFilter struct {
	IDs             []uuid.UUID
	ProjectIDs      []uuid.UUID
	IncludeArchived bool
}

// Matches reports whether a template with the given attributes passes the
// filter. Shared by the in-memory and SQL implementations' tests.
func (f TemplateFilter) Matches(id, projectID uuid.UUID, archived bool) bool {
	if archived && !f.IncludeArchived {
		return false
	}
	if len(f.IDs) > 0 && !containsUUID(f.IDs, id) {
		return false
	}
	if len(f.ProjectIDs) > 0 && !containsUUID(f.ProjectIDs, projectID) {
		return false
	}
	return true
}

func containsUUID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// HabitStore defines the interface for habit persistence.
type HabitStore interface {
	// Create saves a new habit.
	Create(ctx context.Context, habit *domain.Habit) error

	// GetByID retrieves a habit by its unique ID.
	// Returns ErrTemplateNotFound if the habit does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Habit, error)

	// Update persists the current state of the habit.
	// Returns ErrTemplateNotFound if the habit does not exist.
	Update(ctx context.Context, habit *domain.Habit) error

	// Archive marks the habit archived.
	Archive(ctx context.Context, id uuid.UUID) error

	// List returns habits matching the filter.
	List(ctx context.Context, filter TemplateFilter) ([]*domain.Habit, error)
}

// ChoreStore defines the interface for chore persistence.
type ChoreStore interface {
	// Create saves a new chore.
	Create(ctx context.Context, chore *domain.Chore) error

	// GetByID retrieves a chore by its unique ID.
	// Returns ErrTemplateNotFound if the chore does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Chore, error)

	// Update persists the current state of the chore.
	// Returns ErrTemplateNotFound if the chore does not exist.
	Update(ctx context.Context, chore *domain.Chore) error

	// Archive marks the chore archived.
	Archive(ctx context.Context, id uuid.UUID) error

	// List returns chores matching the filter.
	List(ctx context.Context, filter TemplateFilter) ([]*domain.Chore, error)
}

// MetricStore defines the interface for metric persistence.
type MetricStore interface {
	// Create saves a new metric.
	Create(ctx context.Context, metric *domain.Metric) error

	// GetByID retrieves a metric by its unique ID.
	// Returns ErrTemplateNotFound if the metric does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Metric, error)

	// Update persists the current state of the metric.
	// Returns ErrTemplateNotFound if the metric does not exist.
	Update(ctx context.Context, metric *domain.Metric) error

	// Archive marks the metric archived.
	Archive(ctx context.Context, id uuid.UUID) error

	// List returns metrics matching the filter.
	List(ctx context.Context, filter TemplateFilter) ([]*domain.Metric, error)
}

// PersonStore defines the interface for person persistence.
type PersonStore interface {
	// Create saves a new person.
	Create(ctx context.Context, person *domain.Person) error

	// GetByID retrieves a person by its unique ID.
	// Returns ErrTemplateNotFound if the person does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Person, error)

	// Update persists the current state of the person.
	// Returns ErrTemplateNotFound if the person does not exist.
	Update(ctx context.Context, person *domain.Person) error

	// Archive marks the person archived.
	Archive(ctx context.Context, id uuid.UUID) error

	// List returns persons matching the filter.
	List(ctx context.Context, filter TemplateFilter) ([]*domain.Person, error)
}
