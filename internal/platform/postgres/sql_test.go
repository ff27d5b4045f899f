package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/store"
)

func TestPlaceholders(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", placeholders(1, 0))
	assert.Equal(t, "$1", placeholders(1, 1))
	assert.Equal(t, "$3, $4, $5", placeholders(3, 3))
}

func TestTemplateWhere(t *testing.T) {
	t.Parallel()

	clause, args := templateWhere(store.TemplateFilter{IncludeArchived: true})
	assert.Equal(t, "", clause)
	assert.Empty(t, args)

	clause, args = templateWhere(store.TemplateFilter{})
	assert.Equal(t, " WHERE archived = FALSE", clause)
	assert.Empty(t, args)

	id := uuid.New()
	projectID := uuid.New()
	clause, args = templateWhere(store.TemplateFilter{
		IDs:        []uuid.UUID{id},
		ProjectIDs: []uuid.UUID{projectID},
	})
	assert.Equal(t, " WHERE archived = FALSE AND id IN ($1) AND project_id IN ($2)", clause)
	assert.Equal(t, []any{id, projectID}, args)
}

func TestTaskWhere(t *testing.T) {
	t.Parallel()

	clause, args := taskWhere(store.TaskFilter{})
	assert.Equal(t, " WHERE status <> $1", clause)
	assert.Equal(t, []any{domain.TaskStatusArchived}, args)

	clause, args = taskWhere(store.TaskFilter{IncludeArchived: true})
	assert.Equal(t, "", clause)
	assert.Empty(t, args)

	// Explicitly asking for archived rows overrides the default exclusion.
	clause, args = taskWhere(store.TaskFilter{Statuses: []domain.TaskStatus{domain.TaskStatusArchived}})
	assert.Equal(t, " WHERE status IN ($1)", clause)
	assert.Equal(t, []any{domain.TaskStatusArchived}, args)

	templateID := uuid.New()
	clause, args = taskWhere(store.TaskFilter{
		Statuses:    []domain.TaskStatus{domain.TaskStatusOpen, domain.TaskStatusDone},
		Origins:     []domain.TaskOrigin{domain.OriginHabit},
		TemplateIDs: []uuid.UUID{templateID},
	})
	assert.Equal(t,
		" WHERE status <> $1 AND status IN ($2, $3) AND origin IN ($4) AND template_id IN ($5)",
		clause)
	require.Len(t, args, 5)
	assert.Equal(t, templateID, args[4])
}

func TestMapError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, mapError(nil, store.ErrTaskNotFound))

	err := mapError(sql.ErrNoRows, store.ErrTaskNotFound)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	unique := &pgconn.PgError{Code: uniqueViolationCode}
	assert.ErrorIs(t, mapError(unique, store.ErrTaskNotFound), store.ErrDuplicate)

	fk := &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "inbox_tasks_project_id_fkey"}
	err = mapError(fk, store.ErrTaskNotFound)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.Contains(t, err.Error(), "inbox_tasks_project_id_fkey")

	plain := errors.New("connection reset")
	assert.Equal(t, plain, mapError(plain, store.ErrTaskNotFound))
}

func TestIsViolationHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.False(t, IsUniqueViolation(errors.New("nope")))
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: foreignKeyViolationCode}))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: uniqueViolationCode}))
}
