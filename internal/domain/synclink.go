package domain

import (
	"time"

	"github.com/google/uuid"
)

// SyncLink is the weak association between a local entity and its remote
// mirror. Either side may be missing; the sync engine detects and repairs
// that rather than treating the link as ownership.
type SyncLink struct {
	LocalID   uuid.UUID  `json:"local_id"`
	RemoteID  string     `json:"remote_id"`
	Kind      EntityKind `json:"kind"`
	Archived  bool       `json:"archived"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewSyncLink creates a link between a local entity and a remote mirror.
func NewSyncLink(kind EntityKind, localID uuid.UUID, remoteID string) *SyncLink {
	now := time.Now().UTC()
	return &SyncLink{
		LocalID:   localID,
		RemoteID:  remoteID,
		Kind:      kind,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
