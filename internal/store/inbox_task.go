package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/almanac/internal/domain"
)

// TaskFilter narrows inbox task listings. Zero-value fields do not filter.
type TaskFilter struct {
	Statuses        []domain.TaskStatus
	Origins         []domain.TaskOrigin
	TemplateIDs     []uuid.UUID
	ProjectIDs      []uuid.UUID
	IncludeArchived bool
}

// InboxTaskStore defines the interface for inbox task persistence.
type InboxTaskStore interface {
	// Create saves a new inbox task.
	Create(ctx context.Context, task *domain.InboxTask) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.InboxTask, error)

	// FindByTemplateInterval looks up the generated instance for a
	// (template, origin, period interval) triple, including archived
	// instances not yet swept. The triple is the generator's idempotence
	// key. Returns ErrTaskNotFound if no instance exists.
	FindByTemplateInterval(ctx context.Context, templateID uuid.UUID, origin domain.TaskOrigin, intervalID string) (*domain.InboxTask, error)

	// Update persists the current state of the task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.InboxTask) error

	// Archive marks the task archived.
	Archive(ctx context.Context, id uuid.UUID) error

	// Purge permanently removes the task row. Only the garbage collector
	// calls this, and only after remote-side archival is confirmed.
	Purge(ctx context.Context, id uuid.UUID) error

	// List returns tasks matching the filter.
	List(ctx context.Context, filter TaskFilter) ([]*domain.InboxTask, error)
}
