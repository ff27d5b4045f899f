// Package syncer implements the local-to-remote reconciliation engine.
// Each run walks every syncable kind in dependency order, repairs lost
// links, pushes local changes, pulls remote edits by last-writer-wins,
// and adopts or removes remote-only rows per the kind's policy. Every
// entity commits independently, so an interrupted run resumes cleanly.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/events"
	"github.com/phrazzld/almanac/internal/platform/logger"
	"github.com/phrazzld/almanac/internal/remote"
	"github.com/phrazzld/almanac/internal/store"
)

// RunOptions narrows a sync run. Empty Kinds reconciles every kind, in
// dependency order. DryRun reports what a run would do without writing
// to either side.
type RunOptions struct {
	Kinds  []domain.EntityKind
	DryRun bool
}

// Report summarizes one sync run.
type Report struct {
	// Pushed counts remote rows created or overwritten from local state.
	Pushed int
	// Pulled counts local entities overwritten from newer remote edits.
	Pulled int
	// Adopted counts remote-only rows imported as local entities.
	Adopted int
	// Archived counts remote rows archived to follow local archival or
	// the remote-only removal policy.
	Archived int
	// Repaired counts links re-established after a lost or broken link.
	Repaired int
	// Unchanged counts entities already in sync.
	Unchanged int
	// Failed counts entities whose reconciliation errored; the run
	// continues past them.
	Failed int
}

// Service is the sync engine.
type Service struct {
	txm    store.TxManager
	client remote.MirrorClient
	now    func() time.Time
	logger *slog.Logger
}

// NewService creates a sync engine over the given store and remote
// client. If log is nil, a default logger will be used.
func NewService(txm store.TxManager, client remote.MirrorClient, log *slog.Logger) *Service {
	if txm == nil {
		panic("txm cannot be nil")
	}
	if client == nil {
		panic("client cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		txm:    txm,
		client: client,
		now:    time.Now,
		logger: log.With(slog.String("component", "syncer")),
	}
}

// Run reconciles every syncable kind. Projects go first because every
// other kind references them; inbox tasks go last because they reference
// templates.
func (s *Service) Run(ctx context.Context, opts RunOptions) (Report, error) {
	ctx = logger.WithLogger(ctx, s.logger)

	var report Report
	for _, c := range s.collections() {
		if !selected(opts.Kinds, c.kind()) {
			continue
		}
		if err := s.syncKind(ctx, c, opts.DryRun, &report); err != nil {
			return report, fmt.Errorf("failed to sync %s: %w", c.kind(), err)
		}
	}

	s.logger.Info("sync run finished",
		slog.Int("pushed", report.Pushed),
		slog.Int("pulled", report.Pulled),
		slog.Int("adopted", report.Adopted),
		slog.Int("archived", report.Archived),
		slog.Int("repaired", report.Repaired),
		slog.Int("unchanged", report.Unchanged),
		slog.Int("failed", report.Failed))
	return report, nil
}

func (s *Service) collections() []collection {
	return []collection{
		&projectCollection{txm: s.txm},
		&habitCollection{txm: s.txm},
		&choreCollection{txm: s.txm},
		&metricCollection{txm: s.txm},
		&personCollection{txm: s.txm},
		&vacationCollection{txm: s.txm},
		&taskCollection{txm: s.txm},
	}
}

// syncKind reconciles one entity kind end to end. Listing failures abort
// the kind; per-entity failures are counted and skipped.
func (s *Service) syncKind(ctx context.Context, c collection, dry bool, report *Report) error {
	kind := c.kind()
	log := s.logger.With(slog.String("kind", string(kind)))
	st := s.txm.Stores()

	locals, err := c.listLocal(ctx)
	if err != nil {
		return fmt.Errorf("failed to list local entities: %w", err)
	}
	links, err := st.Links.ListByKind(ctx, kind)
	if err != nil {
		return fmt.Errorf("failed to list links: %w", err)
	}
	remotes, err := s.client.ListMirrors(ctx, kind)
	if err != nil {
		return fmt.Errorf("failed to list mirrors: %w", err)
	}

	byLocal := make(map[uuid.UUID]*domain.SyncLink, len(links))
	byRemote := make(map[string]*domain.SyncLink, len(links))
	for _, link := range links {
		byLocal[link.LocalID] = link
		byRemote[link.RemoteID] = link
	}
	localByID := make(map[uuid.UUID]localRecord, len(locals))
	for _, local := range locals {
		localByID[local.id] = local
	}

	// Re-associate before pushing: a remote row stamped with a known
	// local id restores a lost link instead of producing a duplicate.
	for _, m := range remotes {
		if m.LocalID == uuid.Nil {
			continue
		}
		if _, linked := byRemote[m.RemoteID]; linked {
			continue
		}
		if _, known := localByID[m.LocalID]; !known {
			continue
		}
		if _, linked := byLocal[m.LocalID]; linked {
			continue
		}
		link := domain.NewSyncLink(kind, m.LocalID, m.RemoteID)
		if !dry {
			if err := s.saveLink(ctx, link); err != nil {
				log.Error("failed to restore link",
					slog.String("local_id", m.LocalID.String()),
					slog.String("error", err.Error()))
				report.Failed++
				continue
			}
		}
		byLocal[link.LocalID] = link
		byRemote[link.RemoteID] = link
		report.Repaired++
	}

	for _, local := range locals {
		if err := s.syncLocal(ctx, c, local, byLocal[local.id], byRemote, dry, report); err != nil {
			log.Error("failed to reconcile entity",
				slog.String("local_id", local.id.String()),
				slog.String("error", err.Error()))
			report.Failed++
		}
	}

	for _, m := range remotes {
		if _, linked := byRemote[m.RemoteID]; linked || m.Archived {
			continue
		}
		if err := s.syncRemoteOnly(ctx, c, m, dry, report); err != nil {
			log.Error("failed to reconcile remote-only row",
				slog.String("remote_id", m.RemoteID),
				slog.String("error", err.Error()))
			report.Failed++
		}
	}

	return nil
}

// syncLocal reconciles one local entity against its mirror.
func (s *Service) syncLocal(
	ctx context.Context,
	c collection,
	local localRecord,
	link *domain.SyncLink,
	byRemote map[string]*domain.SyncLink,
	dry bool,
	report *Report,
) error {
	kind := c.kind()

	if local.archived {
		if link == nil || link.Archived {
			report.Unchanged++
			return nil
		}
		if dry {
			report.Archived++
			return nil
		}
		if err := s.client.ArchiveMirror(ctx, kind, link.RemoteID); err != nil {
			return err
		}
		link.Archived = true
		link.UpdatedAt = s.now().UTC()
		if err := s.saveLink(ctx, link); err != nil {
			return err
		}
		report.Archived++
		return nil
	}

	if link == nil {
		if dry {
			report.Pushed++
			return nil
		}
		remoteID, err := s.client.CreateMirror(ctx, local.mirror)
		if err != nil {
			return err
		}
		link = domain.NewSyncLink(kind, local.id, remoteID)
		if err := s.saveLink(ctx, link); err != nil {
			return err
		}
		byRemote[remoteID] = link
		report.Pushed++
		return s.recordEvent(ctx, kind, local.id, events.OpSyncPush)
	}

	current, err := s.client.FindMirror(ctx, kind, link.RemoteID)
	if errors.Is(err, remote.ErrMirrorNotFound) {
		// Broken link: the remote row was deleted out from under us.
		// Recreate the mirror and point the link at the new row.
		if dry {
			report.Repaired++
			return nil
		}
		remoteID, err := s.client.CreateMirror(ctx, local.mirror)
		if err != nil {
			return err
		}
		link.RemoteID = remoteID
		link.Archived = false
		link.UpdatedAt = s.now().UTC()
		if err := s.saveLink(ctx, link); err != nil {
			return err
		}
		byRemote[remoteID] = link
		report.Repaired++
		return s.recordEvent(ctx, kind, local.id, events.OpSyncPush)
	}
	if err != nil {
		return err
	}

	if mirrorsEqual(local.mirror, *current) {
		report.Unchanged++
		return nil
	}

	// Drift: the side edited most recently wins the whole row.
	if local.modifiedAt.After(current.LastEditedAt) {
		if dry {
			report.Pushed++
			return nil
		}
		if err := s.client.UpdateMirror(ctx, link.RemoteID, local.mirror); err != nil {
			return err
		}
		report.Pushed++
		return s.recordEvent(ctx, kind, local.id, events.OpSyncPush)
	}

	if dry {
		report.Pulled++
		return nil
	}
	if err := c.applyRemote(ctx, local.id, current); err != nil {
		return err
	}
	report.Pulled++
	return s.recordEvent(ctx, kind, local.id, events.OpSyncPull)
}

// syncRemoteOnly applies the kind's policy to an unlinked remote row:
// inbox tasks are adopted locally, everything else is archived remotely
// because templates and projects are authored locally.
func (s *Service) syncRemoteOnly(ctx context.Context, c collection, m *remote.Mirror, dry bool, report *Report) error {
	kind := c.kind()

	if dry {
		if c.adopts() {
			report.Adopted++
		} else {
			report.Archived++
		}
		return nil
	}

	localID, adopted, err := c.adopt(ctx, m)
	if err != nil {
		return err
	}
	if !adopted {
		if err := s.client.ArchiveMirror(ctx, kind, m.RemoteID); err != nil {
			return err
		}
		report.Archived++
		return nil
	}

	link := domain.NewSyncLink(kind, localID, m.RemoteID)
	if err := s.saveLink(ctx, link); err != nil {
		return err
	}
	report.Adopted++
	return s.recordEvent(ctx, kind, localID, events.OpSyncAdopt)
}

func selected(kinds []domain.EntityKind, kind domain.EntityKind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, candidate := range kinds {
		if candidate == kind {
			return true
		}
	}
	return false
}

func (s *Service) saveLink(ctx context.Context, link *domain.SyncLink) error {
	return s.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
		return tx.Links.Upsert(ctx, link)
	})
}

func (s *Service) recordEvent(ctx context.Context, kind domain.EntityKind, entityID uuid.UUID, op events.Op) error {
	event, err := events.New(kind, entityID, op, nil)
	if err != nil {
		return err
	}
	return s.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
		return tx.Events.Append(ctx, event)
	})
}

// mirrorsEqual compares the synced field projection of two mirrors,
// ignoring identity and bookkeeping fields.
func mirrorsEqual(a, b remote.Mirror) bool {
	return a.Name == b.Name &&
		a.Archived == b.Archived &&
		a.Status == b.Status &&
		a.Difficulty == b.Difficulty &&
		a.Eisenhower == b.Eisenhower &&
		a.Period == b.Period &&
		a.Suspended == b.Suspended &&
		equalTimePtr(a.ActionableDate, b.ActionableDate) &&
		equalTimePtr(a.DueDate, b.DueDate) &&
		equalTimePtr(a.StartDate, b.StartDate) &&
		equalTimePtr(a.EndDate, b.EndDate)
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
