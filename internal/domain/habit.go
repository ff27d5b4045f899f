package domain

import (
	"time"

	"github.com/google/uuid"
)

// Habit is a recurring template for personal-cadence tasks. Habits follow
// their owner, so vacations never exclude them.
type Habit struct {
	ID        uuid.UUID       `json:"id"`
	ProjectID uuid.UUID       `json:"project_id"`
	Name      string          `json:"name"`
	Params    RecurringParams `json:"params"`
	Suspended bool            `json:"suspended"`
	Archived  bool            `json:"archived"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewHabit creates a new Habit in the given project.
// Returns an error if validation fails.
func NewHabit(projectID uuid.UUID, name string, params RecurringParams) (*Habit, error) {
	now := time.Now().UTC()
	habit := &Habit{
		ID:        uuid.New(),
		ProjectID: projectID,
		Name:      name,
		Params:    params,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := habit.Validate(); err != nil {
		return nil, err
	}
	return habit, nil
}

// Validate checks if the Habit has valid data.
func (h *Habit) Validate() error {
	if h.ID == uuid.Nil {
		return ErrInvalidID
	}
	if h.ProjectID == uuid.Nil {
		return ErrInvalidID
	}
	if h.Name == "" {
		return ErrEmptyName
	}
	return h.Params.Validate()
}

// Update changes the habit's name and recurrence configuration, bumping
// the modification timestamp. Out-of-range offsets are rejected here so
// generation never sees them.
func (h *Habit) Update(name string, params RecurringParams) error {
	if name == "" {
		return ErrEmptyName
	}
	if err := params.Validate(); err != nil {
		return err
	}
	h.Name = name
	h.Params = params
	h.UpdatedAt = time.Now().UTC()
	return nil
}

// Suspend pauses generation for the habit.
func (h *Habit) Suspend() {
	h.Suspended = true
	h.UpdatedAt = time.Now().UTC()
}

// Unsuspend resumes generation for the habit.
func (h *Habit) Unsuspend() {
	h.Suspended = false
	h.UpdatedAt = time.Now().UTC()
}

// Template interface.

// Kind identifies the template kind.
func (h *Habit) Kind() EntityKind { return KindHabit }

// TemplateID is the habit's entity id.
func (h *Habit) TemplateID() uuid.UUID { return h.ID }

// TemplateName is the base name copied onto generated instances.
func (h *Habit) TemplateName() string { return h.Name }

// TemplateProjectID is the project generated instances belong to.
func (h *Habit) TemplateProjectID() uuid.UUID { return h.ProjectID }

// GenParams returns the recurrence configuration.
func (h *Habit) GenParams() *RecurringParams { return &h.Params }

// IsSuspended reports whether generation is paused.
func (h *Habit) IsSuspended() bool { return h.Suspended }

// IsMustDo is always true for habits: vacations never exclude them.
func (h *Habit) IsMustDo() bool { return true }

// ActiveSpan returns an open range; habits have no active interval.
func (h *Habit) ActiveSpan() (start, end *time.Time) { return nil, nil }

// ModifiedAt is the habit's last modification time.
func (h *Habit) ModifiedAt() time.Time { return h.UpdatedAt }
