package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/platform/logger"
	"github.com/phrazzld/almanac/internal/store"
)

// Compile-time check that InboxTaskStore implements store.InboxTaskStore.
var _ store.InboxTaskStore = (*InboxTaskStore)(nil)

// InboxTaskStore implements store.InboxTaskStore using PostgreSQL. The
// (template_id, origin, interval_id) triple carries a partial unique
// index, so the generator's idempotence holds even under concurrent
// runs.
type InboxTaskStore struct {
	db store.DBTX
}

// NewInboxTaskStore creates a new InboxTaskStore.
func NewInboxTaskStore(db store.DBTX) *InboxTaskStore {
	return &InboxTaskStore{db: db}
}

const taskColumns = `id, project_id, name, origin, template_id, interval_id, status,
	actionable_date, due_date, difficulty, eisenhower, generated_at, created_at, updated_at`

// Create saves a new inbox task.
func (s *InboxTaskStore) Create(ctx context.Context, task *domain.InboxTask) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO inbox_tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.ProjectID,
		task.Name,
		task.Origin,
		nullableUUID(task.TemplateID),
		nullableString(task.IntervalID),
		task.Status,
		task.ActionableDate,
		task.DueDate,
		task.Difficulty,
		task.Eisenhower,
		task.GeneratedAt,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create inbox task",
			"task_id", task.ID,
			"error", err)
		return mapError(err, store.ErrTaskNotFound)
	}
	return nil
}

// GetByID retrieves a task by its unique ID.
func (s *InboxTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.InboxTask, error) {
	query := `SELECT ` + taskColumns + ` FROM inbox_tasks WHERE id = $1`
	return scanTask(s.db.QueryRowContext(ctx, query, id))
}

// FindByTemplateInterval looks up the generated instance for a
// (template, origin, period interval) triple.
func (s *InboxTaskStore) FindByTemplateInterval(ctx context.Context, templateID uuid.UUID, origin domain.TaskOrigin, intervalID string) (*domain.InboxTask, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM inbox_tasks
		WHERE template_id = $1 AND origin = $2 AND interval_id = $3
	`
	return scanTask(s.db.QueryRowContext(ctx, query, templateID, origin, intervalID))
}

// Update persists the current state of the task.
func (s *InboxTaskStore) Update(ctx context.Context, task *domain.InboxTask) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE inbox_tasks
		SET project_id = $1, name = $2, status = $3, actionable_date = $4, due_date = $5,
			difficulty = $6, eisenhower = $7, generated_at = $8, updated_at = $9
		WHERE id = $10
	`
	result, err := s.db.ExecContext(ctx, query,
		task.ProjectID,
		task.Name,
		task.Status,
		task.ActionableDate,
		task.DueDate,
		task.Difficulty,
		task.Eisenhower,
		task.GeneratedAt,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		log.Error("failed to update inbox task",
			"task_id", task.ID,
			"error", err)
		return mapError(err, store.ErrTaskNotFound)
	}
	return checkRowsAffected(result, store.ErrTaskNotFound)
}

// Archive marks the task archived.
func (s *InboxTaskStore) Archive(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE inbox_tasks
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`
	result, err := s.db.ExecContext(ctx, query, domain.TaskStatusArchived, id)
	if err != nil {
		return mapError(err, store.ErrTaskNotFound)
	}
	return checkRowsAffected(result, store.ErrTaskNotFound)
}

// Purge permanently removes the task row.
func (s *InboxTaskStore) Purge(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM inbox_tasks WHERE id = $1`, id)
	if err != nil {
		return mapError(err, store.ErrTaskNotFound)
	}
	return checkRowsAffected(result, store.ErrTaskNotFound)
}

// List returns tasks matching the filter.
func (s *InboxTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.InboxTask, error) {
	query := `SELECT ` + taskColumns + ` FROM inbox_tasks`
	where, args := taskWhere(filter)
	query += where + ` ORDER BY due_date, name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.InboxTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inbox tasks: %w", err)
	}
	return tasks, nil
}

func taskWhere(filter store.TaskFilter) (string, []any) {
	var clauses []string
	var args []any

	if !filter.IncludeArchived && !containsStatus(filter.Statuses, domain.TaskStatusArchived) {
		args = append(args, domain.TaskStatusArchived)
		clauses = append(clauses, fmt.Sprintf("status <> $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		ph := placeholders(len(args)+1, len(filter.Statuses))
		for _, status := range filter.Statuses {
			args = append(args, status)
		}
		clauses = append(clauses, "status IN ("+ph+")")
	}
	if len(filter.Origins) > 0 {
		ph := placeholders(len(args)+1, len(filter.Origins))
		for _, origin := range filter.Origins {
			args = append(args, origin)
		}
		clauses = append(clauses, "origin IN ("+ph+")")
	}
	if len(filter.TemplateIDs) > 0 {
		ph := placeholders(len(args)+1, len(filter.TemplateIDs))
		for _, id := range filter.TemplateIDs {
			args = append(args, id)
		}
		clauses = append(clauses, "template_id IN ("+ph+")")
	}
	if len(filter.ProjectIDs) > 0 {
		ph := placeholders(len(args)+1, len(filter.ProjectIDs))
		for _, id := range filter.ProjectIDs {
			args = append(args, id)
		}
		clauses = append(clauses, "project_id IN ("+ph+")")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func containsStatus(statuses []domain.TaskStatus, status domain.TaskStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

func scanTask(row rowScanner) (*domain.InboxTask, error) {
	var t domain.InboxTask
	var templateID uuid.NullUUID
	var intervalID sql.NullString
	err := row.Scan(
		&t.ID,
		&t.ProjectID,
		&t.Name,
		&t.Origin,
		&templateID,
		&intervalID,
		&t.Status,
		&t.ActionableDate,
		&t.DueDate,
		&t.Difficulty,
		&t.Eisenhower,
		&t.GeneratedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, store.ErrTaskNotFound)
	}
	if templateID.Valid {
		t.TemplateID = templateID.UUID
	}
	if intervalID.Valid {
		t.IntervalID = intervalID.String
	}
	return &t, nil
}

func nullableUUID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
