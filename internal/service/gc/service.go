// Package gc implements the garbage collector: done inbox tasks are
// archived, their remote mirrors follow, and local rows are purged only
// once the mirror is confirmed archived or absent. A mirror that cannot
// be confirmed keeps its local row until a later run.
package gc

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/events"
	"github.com/phrazzld/almanac/internal/platform/logger"
	"github.com/phrazzld/almanac/internal/remote"
	"github.com/phrazzld/almanac/internal/store"
)

// RunOptions narrows a collection run. Empty Kinds sweeps every
// collectable kind.
type RunOptions struct {
	Kinds []domain.EntityKind
}

// Report summarizes one collection run.
type Report struct {
	// Archived counts done tasks moved to archived.
	Archived int
	// Purged counts archived rows permanently removed.
	Purged int
	// Failed counts entities the sweep could not process; they are
	// retried on the next run.
	Failed int
}

// Service is the garbage collector. client may be nil when no remote
// workspace is configured; linked rows are then never purged.
type Service struct {
	txm    store.TxManager
	client remote.MirrorClient
	now    func() time.Time
	logger *slog.Logger
}

// NewService creates a garbage collector.
// If log is nil, a default logger will be used.
func NewService(txm store.TxManager, client remote.MirrorClient, log *slog.Logger) *Service {
	if txm == nil {
		panic("txm cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		txm:    txm,
		client: client,
		now:    time.Now,
		logger: log.With(slog.String("component", "gc")),
	}
}

// Run sweeps the selected kinds. Running twice in a row leaves the
// second report empty.
func (s *Service) Run(ctx context.Context, opts RunOptions) (Report, error) {
	ctx = logger.WithLogger(ctx, s.logger)

	var report Report
	if s.sweeps(opts.Kinds, domain.KindInboxTask) {
		if err := s.sweepTasks(ctx, &report); err != nil {
			return report, err
		}
	}

	s.logger.Info("gc run finished",
		slog.Int("archived", report.Archived),
		slog.Int("purged", report.Purged),
		slog.Int("failed", report.Failed))
	return report, nil
}

// sweepTasks archives done tasks, then purges archived tasks whose
// mirrors are confirmed gone.
func (s *Service) sweepTasks(ctx context.Context, report *Report) error {
	st := s.txm.Stores()

	done, err := st.Tasks.List(ctx, store.TaskFilter{Statuses: []domain.TaskStatus{domain.TaskStatusDone}})
	if err != nil {
		return err
	}
	for _, task := range done {
		if err := s.archiveTask(ctx, task); err != nil {
			s.logger.Error("failed to archive task",
				slog.String("task_id", task.ID.String()),
				slog.String("error", err.Error()))
			report.Failed++
			continue
		}
		report.Archived++
	}

	archived, err := st.Tasks.List(ctx, store.TaskFilter{
		Statuses:        []domain.TaskStatus{domain.TaskStatusArchived},
		IncludeArchived: true,
	})
	if err != nil {
		return err
	}
	for _, task := range archived {
		purged, err := s.purgeTask(ctx, task.ID)
		if err != nil {
			s.logger.Error("failed to purge task",
				slog.String("task_id", task.ID.String()),
				slog.String("error", err.Error()))
			report.Failed++
			continue
		}
		if purged {
			report.Purged++
		}
	}
	return nil
}

func (s *Service) archiveTask(ctx context.Context, task *domain.InboxTask) error {
	task.Archive()
	return s.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
		if err := tx.Tasks.Update(ctx, task); err != nil {
			return err
		}
		event, err := events.New(domain.KindInboxTask, task.ID, events.OpArchive, nil)
		if err != nil {
			return err
		}
		return tx.Events.Append(ctx, event)
	})
}

// purgeTask removes one archived task if its mirror is confirmed
// archived or absent. A live or unreachable mirror defers the purge.
func (s *Service) purgeTask(ctx context.Context, taskID uuid.UUID) (bool, error) {
	st := s.txm.Stores()

	link, err := st.Links.GetByLocal(ctx, domain.KindInboxTask, taskID)
	switch {
	case store.IsNotFoundError(err):
		// Never mirrored, nothing to confirm.
	case err != nil:
		return false, err
	case link.Archived:
		// Already confirmed on an earlier run.
	default:
		if s.client == nil {
			return false, nil
		}
		if err := s.client.ArchiveMirror(ctx, domain.KindInboxTask, link.RemoteID); err != nil {
			return false, err
		}
		link.Archived = true
		link.UpdatedAt = s.now().UTC()
		if err := s.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
			return tx.Links.Upsert(ctx, link)
		}); err != nil {
			return false, err
		}
	}

	err = s.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
		if err := tx.Tasks.Purge(ctx, taskID); err != nil {
			return err
		}
		if err := tx.Links.Delete(ctx, domain.KindInboxTask, taskID); err != nil {
			return err
		}
		event, err := events.New(domain.KindInboxTask, taskID, events.OpPurge, nil)
		if err != nil {
			return err
		}
		return tx.Events.Append(ctx, event)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) sweeps(kinds []domain.EntityKind, kind domain.EntityKind) bool {
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
