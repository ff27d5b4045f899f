package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/almanac/internal/domain"
)

func templateFields() domain.TemplateFields {
	return domain.TemplateFields{
		ProjectID:  uuid.New(),
		Name:       "Water plantsW10",
		DueDate:    time.Date(2020, time.March, 9, 0, 0, 0, 0, time.UTC),
		Difficulty: domain.DifficultyEasy,
	}
}

func TestNewGeneratedTask(t *testing.T) {
	t.Parallel()

	now := time.Date(2020, time.March, 5, 10, 0, 0, 0, time.UTC)
	fields := templateFields()
	task, err := domain.NewGeneratedTask(domain.OriginChore, uuid.New(), "W2020-10", fields, now)
	require.NoError(t, err)

	assert.Equal(t, domain.TaskStatusOpen, task.Status)
	assert.Equal(t, fields.Name, task.Name)
	assert.True(t, task.IsGenerated())
	require.NotNil(t, task.GeneratedAt)
	assert.Equal(t, now, *task.GeneratedAt)

	_, err = domain.NewGeneratedTask(domain.OriginManual, uuid.New(), "W2020-10", fields, now)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = domain.NewGeneratedTask(domain.OriginChore, uuid.Nil, "W2020-10", fields, now)
	assert.Error(t, err)

	_, err = domain.NewGeneratedTask(domain.OriginChore, uuid.New(), "", fields, now)
	assert.Error(t, err)
}

func TestNewManualTask(t *testing.T) {
	t.Parallel()

	task, err := domain.NewManualTask(uuid.New(), "Call plumber", nil, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, domain.OriginManual, task.Origin)
	assert.False(t, task.IsGenerated())

	_, err = domain.NewManualTask(uuid.New(), "", nil, time.Time{})
	assert.ErrorIs(t, err, domain.ErrEmptyName)
}

func TestApplyTemplateFields(t *testing.T) {
	t.Parallel()

	now := time.Date(2020, time.March, 5, 10, 0, 0, 0, time.UTC)
	fields := templateFields()
	task, err := domain.NewGeneratedTask(domain.OriginChore, uuid.New(), "W2020-10", fields, now)
	require.NoError(t, err)

	assert.False(t, task.ApplyTemplateFields(fields, now.Add(time.Hour)), "identical fields are a no-op")
	require.NotNil(t, task.GeneratedAt)
	assert.Equal(t, now, *task.GeneratedAt, "no-op leaves the generation stamp alone")

	task.MarkDone()

	renamed := fields
	renamed.Name = "Water all plantsW10"
	later := now.Add(2 * time.Hour)
	assert.True(t, task.ApplyTemplateFields(renamed, later))
	assert.Equal(t, "Water all plantsW10", task.Name)
	assert.Equal(t, domain.TaskStatusDone, task.Status, "reconciliation never touches status")
	require.NotNil(t, task.GeneratedAt)
	assert.Equal(t, later, *task.GeneratedAt)
}

func TestApplyTemplateFieldsComparesActionableDates(t *testing.T) {
	t.Parallel()

	now := time.Date(2020, time.March, 5, 10, 0, 0, 0, time.UTC)
	actionable := time.Date(2020, time.March, 4, 0, 0, 0, 0, time.UTC)

	fields := templateFields()
	fields.ActionableDate = &actionable
	task, err := domain.NewGeneratedTask(domain.OriginHabit, uuid.New(), "W2020-10", fields, now)
	require.NoError(t, err)

	// Same instant behind a different pointer is still unchanged.
	same := fields
	sameDate := actionable
	same.ActionableDate = &sameDate
	assert.False(t, task.ApplyTemplateFields(same, now))

	moved := fields
	movedDate := actionable.AddDate(0, 0, 1)
	moved.ActionableDate = &movedDate
	assert.True(t, task.ApplyTemplateFields(moved, now))

	cleared := fields
	cleared.ActionableDate = nil
	assert.True(t, task.ApplyTemplateFields(cleared, now))
	assert.Nil(t, task.ActionableDate)
}

func TestParseTaskStatus(t *testing.T) {
	t.Parallel()

	status, err := domain.ParseTaskStatus("done")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusDone, status)

	_, err = domain.ParseTaskStatus("finished")
	assert.ErrorIs(t, err, domain.ErrInvalidTaskStatus)
}

func TestArchiveTakesTaskOutOfOpenStates(t *testing.T) {
	t.Parallel()

	task, err := domain.NewManualTask(uuid.New(), "Call plumber", nil, time.Time{})
	require.NoError(t, err)

	task.Archive()
	assert.Equal(t, domain.TaskStatusArchived, task.Status)
}
