package domain

import (
	"time"

	"github.com/google/uuid"
)

// Project groups templates and inbox tasks. Projects are mirrored before
// anything that references them.
type Project struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProject creates a new Project.
func NewProject(name string) (*Project, error) {
	now := time.Now().UTC()
	project := &Project{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := project.Validate(); err != nil {
		return nil, err
	}
	return project, nil
}

// Validate checks if the Project has valid data.
func (p *Project) Validate() error {
	if p.ID == uuid.Nil {
		return ErrInvalidID
	}
	if p.Name == "" {
		return ErrEmptyName
	}
	return nil
}

// Rename changes the project's name, bumping the modification timestamp.
func (p *Project) Rename(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	p.Name = name
	p.UpdatedAt = time.Now().UTC()
	return nil
}
