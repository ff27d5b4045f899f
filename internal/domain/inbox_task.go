package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle status of an inbox task.
type TaskStatus string

// The known task statuses.
const (
	TaskStatusOpen     TaskStatus = "open"
	TaskStatusDone     TaskStatus = "done"
	TaskStatusArchived TaskStatus = "archived"
)

// ParseTaskStatus converts a string into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case TaskStatusOpen, TaskStatusDone, TaskStatusArchived:
		return TaskStatus(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTaskStatus, s)
	}
}

// TaskOrigin records where an inbox task came from.
type TaskOrigin string

// The known task origins. Everything except OriginManual marks a task as
// generated from a template, with TemplateID/IntervalID set.
const (
	OriginManual         TaskOrigin = "manual"
	OriginHabit          TaskOrigin = "habit"
	OriginChore          TaskOrigin = "chore"
	OriginMetric         TaskOrigin = "metric"
	OriginPersonCatchUp  TaskOrigin = "person-catch-up"
	OriginPersonBirthday TaskOrigin = "person-birthday"
)

// InboxTask is a concrete, dated task. Generated tasks keep a reference to
// the (template, period interval) pair that produced them; that pair is
// the identity the generator uses to stay idempotent.
type InboxTask struct {
	ID             uuid.UUID  `json:"id"`
	ProjectID      uuid.UUID  `json:"project_id"`
	Name           string     `json:"name"`
	Origin         TaskOrigin `json:"origin"`
	TemplateID     uuid.UUID  `json:"template_id,omitempty"`
	IntervalID     string     `json:"interval_id,omitempty"`
	Status         TaskStatus `json:"status"`
	ActionableDate *time.Time `json:"actionable_date,omitempty"`
	DueDate        time.Time  `json:"due_date"`
	Difficulty     Difficulty `json:"difficulty,omitempty"`
	Eisenhower     Eisenhower `json:"eisenhower,omitempty"`
	GeneratedAt    *time.Time `json:"generated_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TemplateFields is the slice of an inbox task that is derived from its
// template. The generator overwrites exactly these on drift repair,
// leaving status and every user-owned field alone.
type TemplateFields struct {
	ProjectID      uuid.UUID
	Name           string
	ActionableDate *time.Time
	DueDate        time.Time
	Difficulty     Difficulty
	Eisenhower     Eisenhower
}

// NewGeneratedTask creates an inbox task instantiated from a template for
// a specific period interval.
func NewGeneratedTask(origin TaskOrigin, templateID uuid.UUID, intervalID string, fields TemplateFields, now time.Time) (*InboxTask, error) {
	if origin == OriginManual {
		return nil, fmt.Errorf("%w: generated task cannot have manual origin", ErrValidation)
	}
	task := &InboxTask{
		ID:             uuid.New(),
		ProjectID:      fields.ProjectID,
		Name:           fields.Name,
		Origin:         origin,
		TemplateID:     templateID,
		IntervalID:     intervalID,
		Status:         TaskStatusOpen,
		ActionableDate: fields.ActionableDate,
		DueDate:        fields.DueDate,
		Difficulty:     fields.Difficulty,
		Eisenhower:     fields.Eisenhower,
		GeneratedAt:    &now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// NewManualTask creates an inbox task entered directly by the user.
func NewManualTask(projectID uuid.UUID, name string, actionable *time.Time, due time.Time) (*InboxTask, error) {
	now := time.Now().UTC()
	task := &InboxTask{
		ID:             uuid.New(),
		ProjectID:      projectID,
		Name:           name,
		Origin:         OriginManual,
		Status:         TaskStatusOpen,
		ActionableDate: actionable,
		DueDate:        due,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks if the InboxTask has valid data.
func (t *InboxTask) Validate() error {
	if t.ID == uuid.Nil {
		return ErrInvalidID
	}
	if t.ProjectID == uuid.Nil {
		return ErrInvalidID
	}
	if t.Name == "" {
		return ErrEmptyName
	}
	if t.Origin != OriginManual {
		if t.TemplateID == uuid.Nil {
			return fmt.Errorf("%w: generated task needs a template id", ErrValidation)
		}
		if t.IntervalID == "" {
			return fmt.Errorf("%w: generated task needs an interval id", ErrValidation)
		}
	}
	switch t.Status {
	case TaskStatusOpen, TaskStatusDone, TaskStatusArchived:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTaskStatus, t.Status)
	}
	return nil
}

// IsGenerated reports whether the task was instantiated from a template.
func (t *InboxTask) IsGenerated() bool {
	return t.Origin != OriginManual
}

// ApplyTemplateFields reconciles the template-derived fields after a
// template edit, reporting whether anything actually changed. Status and
// user-owned fields are never touched.
func (t *InboxTask) ApplyTemplateFields(fields TemplateFields, now time.Time) bool {
	changed := t.ProjectID != fields.ProjectID ||
		t.Name != fields.Name ||
		!t.DueDate.Equal(fields.DueDate) ||
		t.Difficulty != fields.Difficulty ||
		t.Eisenhower != fields.Eisenhower ||
		!equalDatePtr(t.ActionableDate, fields.ActionableDate)
	if !changed {
		return false
	}
	t.ProjectID = fields.ProjectID
	t.Name = fields.Name
	t.ActionableDate = fields.ActionableDate
	t.DueDate = fields.DueDate
	t.Difficulty = fields.Difficulty
	t.Eisenhower = fields.Eisenhower
	t.GeneratedAt = &now
	t.UpdatedAt = now
	return true
}

// MarkDone completes the task.
func (t *InboxTask) MarkDone() {
	t.Status = TaskStatusDone
	t.UpdatedAt = time.Now().UTC()
}

// Archive takes the task out of every active view. An archived generated
// task is never regenerated for its interval.
func (t *InboxTask) Archive() {
	t.Status = TaskStatusArchived
	t.UpdatedAt = time.Now().UTC()
}

func equalDatePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
