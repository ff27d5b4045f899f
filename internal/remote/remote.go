// Package remote defines the capability interface for the remote mirror
// workspace: the third-party app local entities are mirrored into. The
// core engines only see this interface, so they are testable against an
// in-memory fake; the HTTP implementation lives in
// internal/platform/notionapi.
package remote

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/almanac/internal/domain"
)

// Errors returned by MirrorClient implementations.
var (
	// ErrMirrorNotFound is returned when a remote id no longer resolves.
	ErrMirrorNotFound = errors.New("mirror not found")

	// ErrRemoteUnavailable is returned on transient network or API
	// failures. Callers do not retry in-process; the entity is picked up
	// again on the next sync invocation.
	ErrRemoteUnavailable = errors.New("remote workspace unavailable")
)

// Mirror is the remote-side representation of a local entity: the flat
// row projection the workspace app stores. Fields that do not apply to a
// kind stay zero.
type Mirror struct {
	// RemoteID is the workspace app's identifier, empty before creation.
	RemoteID string

	// Kind is the local entity kind this mirror belongs to.
	Kind domain.EntityKind

	// LocalID is the local entity id written onto the mirror so the two
	// sides can be re-associated after a lost link. uuid.Nil when the
	// row was created remotely and not yet adopted.
	LocalID uuid.UUID

	Name     string
	Archived bool

	// Task fields.
	Status         string
	ActionableDate *time.Time
	DueDate        *time.Time
	Difficulty     string
	Eisenhower     string

	// Template fields.
	Period    string
	Suspended bool

	// Vacation fields.
	StartDate *time.Time
	EndDate   *time.Time

	// LastEditedAt is the remote side's modification timestamp, used for
	// last-writer-wins drift resolution.
	LastEditedAt time.Time
}

// MirrorClient is the capability interface over the remote workspace.
// Implementations must map transport failures to ErrRemoteUnavailable and
// unresolvable ids to ErrMirrorNotFound.
type MirrorClient interface {
	// CreateMirror creates a remote row for the mirror and returns its
	// remote id.
	CreateMirror(ctx context.Context, m Mirror) (string, error)

	// UpdateMirror overwrites the remote row's fields.
	UpdateMirror(ctx context.Context, remoteID string, m Mirror) error

	// ArchiveMirror archives the remote row. Archiving an already
	// archived or missing row is not an error.
	ArchiveMirror(ctx context.Context, kind domain.EntityKind, remoteID string) error

	// FindMirror retrieves one remote row.
	// Returns ErrMirrorNotFound if the id does not resolve.
	FindMirror(ctx context.Context, kind domain.EntityKind, remoteID string) (*Mirror, error)

	// ListMirrors returns every remote row in the kind's collection,
	// archived ones included.
	ListMirrors(ctx context.Context, kind domain.EntityKind) ([]*Mirror, error)
}
