package storetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/remote"
)

// Compile-time check that FakeMirrorClient satisfies remote.MirrorClient.
var _ remote.MirrorClient = (*FakeMirrorClient)(nil)

// FakeMirrorClient is an in-memory remote workspace. Error fields
// inject failures; FailAfterCreates aborts the nth create to exercise
// resumability.
type FakeMirrorClient struct {
	mu     sync.Mutex
	rows   map[domain.EntityKind]map[string]*remote.Mirror
	nextID int

	CreateErr  error
	UpdateErr  error
	ArchiveErr error
	FindErr    error
	ListErr    error

	// FailAfterCreates makes CreateMirror fail once this many creates
	// have succeeded. Zero disables the limit.
	FailAfterCreates int
	creates          int
}

// NewFakeMirrorClient creates an empty fake workspace.
func NewFakeMirrorClient() *FakeMirrorClient {
	return &FakeMirrorClient{
		rows: make(map[domain.EntityKind]map[string]*remote.Mirror),
	}
}

// CreateMirror stores the mirror and returns a generated remote id.
func (c *FakeMirrorClient) CreateMirror(ctx context.Context, m remote.Mirror) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.CreateErr != nil {
		return "", c.CreateErr
	}
	if c.FailAfterCreates > 0 && c.creates >= c.FailAfterCreates {
		return "", remote.ErrRemoteUnavailable
	}
	c.creates++
	c.nextID++
	id := fmt.Sprintf("rem-%d", c.nextID)
	m.RemoteID = id
	m.LastEditedAt = time.Now().UTC()
	c.kindRows(m.Kind)[id] = &m
	return id, nil
}

// UpdateMirror overwrites the stored row.
func (c *FakeMirrorClient) UpdateMirror(ctx context.Context, remoteID string, m remote.Mirror) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.UpdateErr != nil {
		return c.UpdateErr
	}
	if _, ok := c.kindRows(m.Kind)[remoteID]; !ok {
		return remote.ErrMirrorNotFound
	}
	m.RemoteID = remoteID
	m.LastEditedAt = time.Now().UTC()
	c.kindRows(m.Kind)[remoteID] = &m
	return nil
}

// ArchiveMirror archives the stored row; missing rows are a no-op.
func (c *FakeMirrorClient) ArchiveMirror(ctx context.Context, kind domain.EntityKind, remoteID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ArchiveErr != nil {
		return c.ArchiveErr
	}
	if row, ok := c.kindRows(kind)[remoteID]; ok {
		row.Archived = true
		row.LastEditedAt = time.Now().UTC()
	}
	return nil
}

// FindMirror retrieves one stored row.
func (c *FakeMirrorClient) FindMirror(ctx context.Context, kind domain.EntityKind, remoteID string) (*remote.Mirror, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FindErr != nil {
		return nil, c.FindErr
	}
	row, ok := c.kindRows(kind)[remoteID]
	if !ok {
		return nil, remote.ErrMirrorNotFound
	}
	clone := *row
	return &clone, nil
}

// ListMirrors returns every stored row for the kind.
func (c *FakeMirrorClient) ListMirrors(ctx context.Context, kind domain.EntityKind) ([]*remote.Mirror, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ListErr != nil {
		return nil, c.ListErr
	}
	var out []*remote.Mirror
	for _, row := range c.kindRows(kind) {
		clone := *row
		out = append(out, &clone)
	}
	return out, nil
}

// Put seeds a row directly, returning its remote id. Used to model rows
// created on the remote side.
func (c *FakeMirrorClient) Put(m remote.Mirror) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := fmt.Sprintf("rem-%d", c.nextID)
	m.RemoteID = id
	if m.LastEditedAt.IsZero() {
		m.LastEditedAt = time.Now().UTC()
	}
	c.kindRows(m.Kind)[id] = &m
	return id
}

// Get returns the stored row, or nil if absent.
func (c *FakeMirrorClient) Get(kind domain.EntityKind, remoteID string) *remote.Mirror {
	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.kindRows(kind)[remoteID]
	if !ok {
		return nil
	}
	clone := *row
	return &clone
}

// Remove deletes a row outright, simulating remote-side deletion.
func (c *FakeMirrorClient) Remove(kind domain.EntityKind, remoteID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.kindRows(kind), remoteID)
}

// Count returns the number of stored rows for the kind.
func (c *FakeMirrorClient) Count(kind domain.EntityKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.kindRows(kind))
}

func (c *FakeMirrorClient) kindRows(kind domain.EntityKind) map[string]*remote.Mirror {
	rows, ok := c.rows[kind]
	if !ok {
		rows = make(map[string]*remote.Mirror)
		c.rows[kind] = rows
	}
	return rows
}
