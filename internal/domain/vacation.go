package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vacation is a closed date range [StartDate, EndDate] during which
// non-must-do chores are not generated. Vacations only filter; they own
// no tasks.
type Vacation struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewVacation creates a new Vacation.
// Returns an error if the start date is not before the end date.
func NewVacation(name string, startDate, endDate time.Time) (*Vacation, error) {
	now := time.Now().UTC()
	vacation := &Vacation{
		ID:        uuid.New(),
		Name:      name,
		StartDate: startDate,
		EndDate:   endDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := vacation.Validate(); err != nil {
		return nil, err
	}
	return vacation, nil
}

// Validate checks if the Vacation has valid data.
func (v *Vacation) Validate() error {
	if v.ID == uuid.Nil {
		return ErrInvalidID
	}
	if v.Name == "" {
		return ErrEmptyName
	}
	if !v.StartDate.Before(v.EndDate) {
		return ErrInvalidDateRange
	}
	return nil
}

// Update changes the vacation's fields, bumping the modification timestamp.
func (v *Vacation) Update(name string, startDate, endDate time.Time) error {
	if name == "" {
		return ErrEmptyName
	}
	if !startDate.Before(endDate) {
		return ErrInvalidDateRange
	}
	v.Name = name
	v.StartDate = startDate
	v.EndDate = endDate
	v.UpdatedAt = time.Now().UTC()
	return nil
}

// Covers reports whether the vacation fully contains the given span.
// Partial overlap does not count: only an interval that falls entirely
// inside the vacation is excluded from generation.
func (v *Vacation) Covers(span DateSpan) bool {
	vacStart := startOfDay(v.StartDate)
	vacEnd := startOfDay(v.EndDate).Add(24 * time.Hour) // closed range: the end day belongs to the vacation
	return DateSpan{Start: vacStart, End: vacEnd}.Contains(span)
}

// VacationExcluded reports whether any of the vacations fully covers the
// span. The must-do override is the caller's concern.
func VacationExcluded(vacations []*Vacation, span DateSpan) bool {
	for _, v := range vacations {
		if v.Archived {
			continue
		}
		if v.Covers(span) {
			return true
		}
	}
	return false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
