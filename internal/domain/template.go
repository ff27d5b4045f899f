package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntityKind names a kind of entity for sync links, events and filters.
type EntityKind string

// The entity kinds known to the sync and event machinery.
const (
	KindProject   EntityKind = "project"
	KindHabit     EntityKind = "habit"
	KindChore     EntityKind = "chore"
	KindMetric    EntityKind = "metric"
	KindPerson    EntityKind = "person"
	KindVacation  EntityKind = "vacation"
	KindInboxTask EntityKind = "inbox_task"
)

// ParseEntityKind converts a user-supplied string into an EntityKind,
// accepting "task" as an alias for the inbox task kind.
func ParseEntityKind(s string) (EntityKind, error) {
	lowered := strings.ToLower(s)
	if lowered == "task" {
		return KindInboxTask, nil
	}
	switch EntityKind(lowered) {
	case KindProject, KindHabit, KindChore, KindMetric, KindPerson, KindVacation, KindInboxTask:
		return EntityKind(lowered), nil
	default:
		return "", fmt.Errorf("%w: unknown entity kind %q", ErrValidation, s)
	}
}

// Template is the capability shared by every recurring template kind.
// The generator only sees templates through this interface; a template
// with nil GenParams produces no instances.
type Template interface {
	// Kind identifies the template kind.
	Kind() EntityKind

	// TemplateID is the template's entity id.
	TemplateID() uuid.UUID

	// TemplateName is the base name copied onto generated instances.
	TemplateName() string

	// TemplateProjectID is the project generated instances belong to.
	TemplateProjectID() uuid.UUID

	// GenParams returns the recurrence configuration, or nil if the
	// template currently generates nothing.
	GenParams() *RecurringParams

	// IsSuspended reports whether generation is paused for the template.
	IsSuspended() bool

	// IsMustDo reports whether vacation exclusion is overridden.
	IsMustDo() bool

	// ActiveSpan returns the optional [start, end) range the template is
	// active in. Nil bounds are open.
	ActiveSpan() (start, end *time.Time)

	// ModifiedAt is the template's last modification time.
	ModifiedAt() time.Time
}

// inActiveInterval reports whether a period interval span intersects an
// optional [start, end) active range. Nil bounds are open ends.
func inActiveInterval(span DateSpan, start, end *time.Time) bool {
	if start != nil && !span.End.After(*start) {
		return false
	}
	if end != nil && !span.Start.Before(*end) {
		return false
	}
	return true
}

// InActiveInterval reports whether the given span intersects the
// template's active range.
func InActiveInterval(t Template, span DateSpan) bool {
	start, end := t.ActiveSpan()
	return inActiveInterval(span, start, end)
}
