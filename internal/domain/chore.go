package domain

import (
	"time"

	"github.com/google/uuid"
)

// Chore is a recurring template for household-style tasks. Unlike habits,
// chores are excluded by vacations (unless must-do) and can be limited to
// an active interval.
type Chore struct {
	ID          uuid.UUID       `json:"id"`
	ProjectID   uuid.UUID       `json:"project_id"`
	Name        string          `json:"name"`
	Params      RecurringParams `json:"params"`
	MustDo      bool            `json:"must_do"`
	ActiveFrom  *time.Time      `json:"active_from,omitempty"`
	ActiveUntil *time.Time      `json:"active_until,omitempty"`
	Suspended   bool            `json:"suspended"`
	Archived    bool            `json:"archived"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewChore creates a new Chore in the given project.
// Returns an error if validation fails.
func NewChore(projectID uuid.UUID, name string, params RecurringParams) (*Chore, error) {
	now := time.Now().UTC()
	chore := &Chore{
		ID:        uuid.New(),
		ProjectID: projectID,
		Name:      name,
		Params:    params,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := chore.Validate(); err != nil {
		return nil, err
	}
	return chore, nil
}

// Validate checks if the Chore has valid data.
func (c *Chore) Validate() error {
	if c.ID == uuid.Nil {
		return ErrInvalidID
	}
	if c.ProjectID == uuid.Nil {
		return ErrInvalidID
	}
	if c.Name == "" {
		return ErrEmptyName
	}
	if c.ActiveFrom != nil && c.ActiveUntil != nil && !c.ActiveFrom.Before(*c.ActiveUntil) {
		return ErrInvalidDateRange
	}
	return c.Params.Validate()
}

// Update changes the chore's fields, bumping the modification timestamp.
func (c *Chore) Update(name string, params RecurringParams, mustDo bool, activeFrom, activeUntil *time.Time) error {
	if name == "" {
		return ErrEmptyName
	}
	if err := params.Validate(); err != nil {
		return err
	}
	if activeFrom != nil && activeUntil != nil && !activeFrom.Before(*activeUntil) {
		return ErrInvalidDateRange
	}
	c.Name = name
	c.Params = params
	c.MustDo = mustDo
	c.ActiveFrom = activeFrom
	c.ActiveUntil = activeUntil
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Suspend pauses generation for the chore.
func (c *Chore) Suspend() {
	c.Suspended = true
	c.UpdatedAt = time.Now().UTC()
}

// Unsuspend resumes generation for the chore.
func (c *Chore) Unsuspend() {
	c.Suspended = false
	c.UpdatedAt = time.Now().UTC()
}

// Template interface.

// Kind identifies the template kind.
func (c *Chore) Kind() EntityKind { return KindChore }

// TemplateID is the chore's entity id.
func (c *Chore) TemplateID() uuid.UUID { return c.ID }

// TemplateName is the base name copied onto generated instances.
func (c *Chore) TemplateName() string { return c.Name }

// TemplateProjectID is the project generated instances belong to.
func (c *Chore) TemplateProjectID() uuid.UUID { return c.ProjectID }

// GenParams returns the recurrence configuration.
func (c *Chore) GenParams() *RecurringParams { return &c.Params }

// IsSuspended reports whether generation is paused.
func (c *Chore) IsSuspended() bool { return c.Suspended }

// IsMustDo reports whether vacation exclusion is overridden.
func (c *Chore) IsMustDo() bool { return c.MustDo }

// ActiveSpan returns the optional [start, end) active range.
func (c *Chore) ActiveSpan() (start, end *time.Time) { return c.ActiveFrom, c.ActiveUntil }

// ModifiedAt is the chore's last modification time.
func (c *Chore) ModifiedAt() time.Time { return c.UpdatedAt }
