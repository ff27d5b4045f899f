package domain

import (
	"time"

	"github.com/google/uuid"
)

// Metric is something measured on a cadence. A metric with collection
// params gets a periodic "record this metric" task; one without is a plain
// record of past measurements and generates nothing.
type Metric struct {
	ID               uuid.UUID        `json:"id"`
	ProjectID        uuid.UUID        `json:"project_id"`
	Name             string           `json:"name"`
	Unit             string           `json:"unit,omitempty"`
	CollectionParams *RecurringParams `json:"collection_params,omitempty"`
	Archived         bool             `json:"archived"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// NewMetric creates a new Metric. collectionParams may be nil.
func NewMetric(projectID uuid.UUID, name, unit string, collectionParams *RecurringParams) (*Metric, error) {
	now := time.Now().UTC()
	metric := &Metric{
		ID:               uuid.New(),
		ProjectID:        projectID,
		Name:             name,
		Unit:             unit,
		CollectionParams: collectionParams,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := metric.Validate(); err != nil {
		return nil, err
	}
	return metric, nil
}

// Validate checks if the Metric has valid data.
func (m *Metric) Validate() error {
	if m.ID == uuid.Nil {
		return ErrInvalidID
	}
	if m.ProjectID == uuid.Nil {
		return ErrInvalidID
	}
	if m.Name == "" {
		return ErrEmptyName
	}
	if m.CollectionParams != nil {
		return m.CollectionParams.Validate()
	}
	return nil
}

// Update changes the metric's fields, bumping the modification timestamp.
func (m *Metric) Update(name, unit string, collectionParams *RecurringParams) error {
	if name == "" {
		return ErrEmptyName
	}
	if collectionParams != nil {
		if err := collectionParams.Validate(); err != nil {
			return err
		}
	}
	m.Name = name
	m.Unit = unit
	m.CollectionParams = collectionParams
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// Template interface.

// Kind identifies the template kind.
func (m *Metric) Kind() EntityKind { return KindMetric }

// TemplateID is the metric's entity id.
func (m *Metric) TemplateID() uuid.UUID { return m.ID }

// TemplateName is the base name copied onto generated instances.
func (m *Metric) TemplateName() string { return m.Name }

// TemplateProjectID is the project generated instances belong to.
func (m *Metric) TemplateProjectID() uuid.UUID { return m.ProjectID }

// GenParams returns the collection params, or nil when the metric is not
// collected on a cadence.
func (m *Metric) GenParams() *RecurringParams { return m.CollectionParams }

// IsSuspended is false: metrics pause by dropping collection params.
func (m *Metric) IsSuspended() bool { return false }

// IsMustDo is true: metric collection ignores vacations.
func (m *Metric) IsMustDo() bool { return true }

// ActiveSpan returns an open range; metrics have no active interval.
func (m *Metric) ActiveSpan() (start, end *time.Time) { return nil, nil }

// ModifiedAt is the metric's last modification time.
func (m *Metric) ModifiedAt() time.Time { return m.UpdatedAt }
