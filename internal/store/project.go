package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/almanac/internal/domain"
)

// ProjectStore defines the interface for project persistence.
type ProjectStore interface {
	// Create saves a new project.
	// Returns ErrDuplicate if a project with the same name exists.
	Create(ctx context.Context, project *domain.Project) error

	// GetByID retrieves a project by its unique ID.
	// Returns ErrProjectNotFound if the project does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)

	// GetByName retrieves a project by name.
	// Returns ErrProjectNotFound if the project does not exist.
	GetByName(ctx context.Context, name string) (*domain.Project, error)

	// Update persists the current state of the project.
	// Returns ErrProjectNotFound if the project does not exist.
	Update(ctx context.Context, project *domain.Project) error

	// Archive marks the project archived.
	Archive(ctx context.Context, id uuid.UUID) error

	// List returns all projects, optionally including archived ones.
	List(ctx context.Context, includeArchived bool) ([]*domain.Project, error)
}
