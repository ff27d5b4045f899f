package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Birthday is a (month, day) pair; the year is whichever one tasks are
// generated for.
type Birthday struct {
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// Validate checks the birthday is a real calendar date. Day 29 in
// February is allowed; non-leap years resolve it to March 1.
func (b Birthday) Validate() error {
	if b.Month < time.January || b.Month > time.December {
		return NewConfigurationError("birthday", fmt.Sprintf("month %d out of range", b.Month))
	}
	if b.Day < 1 || b.Day > 31 {
		return NewConfigurationError("birthday", fmt.Sprintf("day %d out of range", b.Day))
	}
	return nil
}

// Person is someone to keep in touch with. Catch-up params generate
// periodic catch-up tasks; a birthday generates a yearly task due on it.
type Person struct {
	ID            uuid.UUID        `json:"id"`
	ProjectID     uuid.UUID        `json:"project_id"`
	Name          string           `json:"name"`
	Relationship  string           `json:"relationship,omitempty"`
	CatchUpParams *RecurringParams `json:"catch_up_params,omitempty"`
	Birthday      *Birthday        `json:"birthday,omitempty"`
	Archived      bool             `json:"archived"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// NewPerson creates a new Person. catchUpParams and birthday may be nil.
func NewPerson(projectID uuid.UUID, name, relationship string, catchUpParams *RecurringParams, birthday *Birthday) (*Person, error) {
	now := time.Now().UTC()
	person := &Person{
		ID:            uuid.New(),
		ProjectID:     projectID,
		Name:          name,
		Relationship:  relationship,
		CatchUpParams: catchUpParams,
		Birthday:      birthday,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := person.Validate(); err != nil {
		return nil, err
	}
	return person, nil
}

// Validate checks if the Person has valid data.
func (p *Person) Validate() error {
	if p.ID == uuid.Nil {
		return ErrInvalidID
	}
	if p.ProjectID == uuid.Nil {
		return ErrInvalidID
	}
	if p.Name == "" {
		return ErrEmptyName
	}
	if p.CatchUpParams != nil {
		if err := p.CatchUpParams.Validate(); err != nil {
			return err
		}
	}
	if p.Birthday != nil {
		return p.Birthday.Validate()
	}
	return nil
}

// Update changes the person's fields, bumping the modification timestamp.
func (p *Person) Update(name, relationship string, catchUpParams *RecurringParams, birthday *Birthday) error {
	if name == "" {
		return ErrEmptyName
	}
	if catchUpParams != nil {
		if err := catchUpParams.Validate(); err != nil {
			return err
		}
	}
	if birthday != nil {
		if err := birthday.Validate(); err != nil {
			return err
		}
	}
	p.Name = name
	p.Relationship = relationship
	p.CatchUpParams = catchUpParams
	p.Birthday = birthday
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Template interface (catch-up generation; birthdays are handled as a
// separate yearly schedule by the generator).

// Kind identifies the template kind.
func (p *Person) Kind() EntityKind { return KindPerson }

// TemplateID is the person's entity id.
func (p *Person) TemplateID() uuid.UUID { return p.ID }

// TemplateName is the base name copied onto generated instances.
func (p *Person) TemplateName() string { return p.Name }

// TemplateProjectID is the project generated instances belong to.
func (p *Person) TemplateProjectID() uuid.UUID { return p.ProjectID }

// GenParams returns the catch-up params, or nil when no catch-up cadence
// is configured.
func (p *Person) GenParams() *RecurringParams { return p.CatchUpParams }

// IsSuspended is false: persons pause by dropping catch-up params.
func (p *Person) IsSuspended() bool { return false }

// IsMustDo is true: catch-ups ignore vacations.
func (p *Person) IsMustDo() bool { return true }

// ActiveSpan returns an open range; persons have no active interval.
func (p *Person) ActiveSpan() (start, end *time.Time) { return nil, nil }

// ModifiedAt is the person's last modification time.
func (p *Person) ModifiedAt() time.Time { return p.UpdatedAt }
