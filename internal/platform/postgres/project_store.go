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

// Compile-time check that ProjectStore implements store.ProjectStore.
var _ store.ProjectStore = (*ProjectStore)(nil)

// ProjectStore implements store.ProjectStore using PostgreSQL.
type ProjectStore struct {
	db store.DBTX
}

// NewProjectStore creates a new ProjectStore.
func NewProjectStore(db store.DBTX) *ProjectStore {
	return &ProjectStore{db: db}
}

// Create saves a new project.
func (s *ProjectStore) Create(ctx context.Context, project *domain.Project) error {
	log := logger.FromContext(ctx)

	if err := project.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO projects (id, name, archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		project.ID,
		project.Name,
		project.Archived,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create project",
			"project_id", project.ID,
			"error", err)
		return mapError(err, store.ErrProjectNotFound)
	}
	return nil
}

// GetByID retrieves a project by its unique ID.
func (s *ProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	query := `
		SELECT id, name, archived, created_at, updated_at
		FROM projects
		WHERE id = $1
	`
	return s.scanProject(s.db.QueryRowContext(ctx, query, id))
}

// GetByName retrieves a project by name.
func (s *ProjectStore) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	query := `
		SELECT id, name, archived, created_at, updated_at
		FROM projects
		WHERE name = $1
	`
	return s.scanProject(s.db.QueryRowContext(ctx, query, name))
}

// Update persists the current state of the project.
func (s *ProjectStore) Update(ctx context.Context, project *domain.Project) error {
	log := logger.FromContext(ctx)

	if err := project.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE projects
		SET name = $1, archived = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(ctx, query,
		project.Name,
		project.Archived,
		project.UpdatedAt,
		project.ID,
	)
	if err != nil {
		log.Error("failed to update project",
			"project_id", project.ID,
			"error", err)
		return mapError(err, store.ErrProjectNotFound)
	}
	return checkRowsAffected(result, store.ErrProjectNotFound)
}

// Archive marks the project archived.
func (s *ProjectStore) Archive(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE projects
		SET archived = TRUE, updated_at = $1
		WHERE id = $2
	`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return mapError(err, store.ErrProjectNotFound)
	}
	return checkRowsAffected(result, store.ErrProjectNotFound)
}

// List returns all projects, optionally including archived ones.
func (s *ProjectStore) List(ctx context.Context, includeArchived bool) ([]*domain.Project, error) {
	query := `
		SELECT id, name, archived, created_at, updated_at
		FROM projects
	`
	if !includeArchived {
		query += ` WHERE archived = FALSE`
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []*domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Archived, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *ProjectStore) scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(&p.ID, &p.Name, &p.Archived, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapError(err, store.ErrProjectNotFound)
	}
	return &p, nil
}
