package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/remote"
	"github.com/phrazzld/almanac/internal/store"
)

// adoptedTasksProject is the project remote-only inbox tasks land in.
const adoptedTasksProject = "Inbox"

// localRecord is the sync engine's view of one local entity: its mirror
// projection plus the bookkeeping needed for archival and drift
// resolution.
type localRecord struct {
	id         uuid.UUID
	archived   bool
	modifiedAt time.Time
	mirror     remote.Mirror
}

// collection adapts one entity kind to the sync engine. listLocal
// includes archived entities so their mirrors can follow. adopts names
// the kind's remote-only policy: import the row locally, or archive it
// remotely; adopt performs the import.
type collection interface {
	kind() domain.EntityKind
	listLocal(ctx context.Context) ([]localRecord, error)
	applyRemote(ctx context.Context, localID uuid.UUID, m *remote.Mirror) error
	adopts() bool
	adopt(ctx context.Context, m *remote.Mirror) (uuid.UUID, bool, error)
}

// Projects.

type projectCollection struct {
	txm store.TxManager
}

func (c *projectCollection) kind() domain.EntityKind { return domain.KindProject }

func (c *projectCollection) listLocal(ctx context.Context) ([]localRecord, error) {
	projects, err := c.txm.Stores().Projects.List(ctx, true)
	if err != nil {
		return nil, err
	}
	records := make([]localRecord, 0, len(projects))
	for _, p := range projects {
		records = append(records, localRecord{
			id:         p.ID,
			archived:   p.Archived,
			modifiedAt: p.UpdatedAt,
			mirror: remote.Mirror{
				Kind:     domain.KindProject,
				LocalID:  p.ID,
				Name:     p.Name,
				Archived: p.Archived,
			},
		})
	}
	return records, nil
}

func (c *projectCollection) applyRemote(ctx context.Context, localID uuid.UUID, m *remote.Mirror) error {
	return c.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
		if m.Archived {
			return tx.Projects.Archive(ctx, localID)
		}
		project, err := tx.Projects.GetByID(ctx, localID)
		if err != nil {
			return err
		}
		if err := project.Rename(m.Name); err != nil {
			return err
		}
		return tx.Projects.Update(ctx, project)
	})
}

// Projects are authored locally; a remote-only project row is stale.
func (c *projectCollection) adopts() bool { return false }

func (c *projectCollection) adopt(ctx context.Context, m *remote.Mirror) (uuid.UUID, bool, error) {
	return uuid.Nil, false, nil
}

// Habits.

type habitCollection struct {
	txm store.TxManager
}

func (c *habitCollection) kind() domain.EntityKind { return domain.KindHabit }

func (c *habitCollection) listLocal(ctx context.Context) ([]localRecord, error) {
	habits, err := c.txm.Stores().Habits.List(ctx, store.TemplateFilter{IncludeArchived: true})
	if err != nil {
		return nil, err
	}
	records := make([]localRecord, 0, len(habits))
	for _, h := range habits {
		records = append(records, localRecord{
			id:         h.ID,
			archived:   h.Archived,
			modifiedAt: h.UpdatedAt,
			mirror: remote.Mirror{
				Kind:      domain.KindHabit,
				LocalID:   h.ID,
				Name:      h.Name,
				Archived:  h.Archived,
				Period:    string(h.Params.Period),
				Suspended: h.Suspended,
			},
		})
	}
	return records, nil
}

func (c *habitCollection) applyRemote(ctx context.Context, localID uuid.UUID, m *remote.Mirror) error {
	return c.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
		if m.Archived {
			return tx.Habits.Archive(ctx, localID)
		}
		habit, err := tx.Habits.GetByID(ctx, localID)
		if err != nil {
			return err
		}
		params := habit.Params
		if m.Period != "" {
			period, err := domain.ParsePeriod(m.Period)
			if err != nil {
				return fmt.Errorf("remote row has invalid period: %w", err)
			}
			params.Period = period
		}
		if err := habit.Update(m.Name, params); err != nil {
			return err
		}
		habit.Suspended = m.Suspended
		return tx.Habits.Update(ctx, habit)
	})
}

func (c *habitCollection) adopts() bool { return false }

func (c *habitCollection) adopt(ctx context.Context, m *remote.Mirror) (uuid.UUID, bool, error) {
	return uuid.Nil, false, nil
}

// Chores.

type choreCollection struct {
	txm store.TxManager
}

func (c *choreCollection) kind() domain.EntityKind { return domain.KindChore }

func (c *choreCollection) listLocal(ctx context.Context) ([]localRecord, error) {
	chores, err := c.txm.Stores().Chores.List(ctx, store.TemplateFilter{IncludeArchived: true})
	if err != nil {
		return nil, err
	}
	records := make([]localRecord, 0, len(chores))
	for _, ch := range chores {
		records = append(records, localRecord{
			id:         ch.ID,
			archived:   ch.Archived,
			modifiedAt: ch.UpdatedAt,
			mirror: remote.Mirror{
				Kind:      domain.KindChore,
				LocalID:   ch.ID,
				Name:      ch.Name,
				Archived:  ch.Archived,
				Period:    string(ch.Params.Period),
				Suspended: ch.Suspended,
				StartDate: ch.ActiveFrom,
				EndDate:   ch.ActiveUntil,
			},
		})
	}
	return records, nil
}

func (c *choreCollection) applyRemote(ctx context.Context, localID uuid.UUID, m *remote.Mirror) error {
	return c.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
		if m.Archived {
			return tx.Chores.Archive(ctx, localID)
		}
		chore, err := tx.Chores.GetByID(ctx, localID)
		if err != nil {
			return err
		}
		params := chore.Params
		if m.Period != "" {
			period, err := domain.ParsePeriod(m.Period)
			if err != nil {
				return fmt.Errorf("remote row has invalid period: %w", err)
			}
			params.Period = period
		}
		if err := chore.Update(m.Name, params, chore.MustDo, m.StartDate, m.EndDate); err != nil {
			return err
		}
		chore.Suspended = m.Suspended
		return tx.Chores.Update(ctx, chore)
	})
}

func (c *choreCollection) adopts() bool { return false }

func (c *choreCollection) adopt(ctx context.Context, m *remote.Mirror) (uuid.UUID, bool, error) {
	return uuid.Nil, false, nil
}

// Metrics.

type metricCollection struct {
	txm store.TxManager
}

func (c *metricCollection) kind() domain.EntityKind { return domain.KindMetric }

func (c *metricCollection) listLocal(ctx context.Context) ([]localRecord, error) {
	metrics, err := c.txm.Stores().Metrics.List(ctx, store.TemplateFilter{IncludeArchived: true})
	if err != nil {
		return nil, err
	}
	records := make([]localRecord, 0, len(metrics))
	for _, metric := range metrics {
		mirror := remote.Mirror{
			Kind:     domain.KindMetric,
			LocalID:  metric.ID,
			Name:     metric.Name,
			Archived: metric.Archived,
		}
		if metric.CollectionParams != nil {
			mirror.Period = string(metric.CollectionParams.Period)
		}
		records = append(records, localRecord{
			id:         metric.ID,
			archived:   metric.Archived,
			modifiedAt: metric.UpdatedAt,
			mirror:     mirror,
		})
	}
	return records, nil
}

func (c *metricCollection) applyRemote(ctx context.Context, localID uuid.UUID, m *remote.Mirror) error {
	return c.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
		if m.Archived {
			return tx.Metrics.Archive(ctx, localID)
		}
		metric, err := tx.Metrics.GetByID(ctx, localID)
		if err != nil {
			return err
		}
		params := metric.CollectionParams
		if m.Period != "" && params != nil {
			period, err := domain.ParsePeriod(m.Period)
			if err != nil {
				return fmt.Errorf("remote row has invalid period: %w", err)
			}
			updated := *params
			updated.Period = period
			params = &updated
		}
		if err := metric.Update(m.Name, metric.Unit, params); err != nil {
			return err
		}
		return tx.Metrics.Update(ctx, metric)
	})
}

func (c *metricCollection) adopts() bool { return false }

func (c *metricCollection) adopt(ctx context.Context, m *remote.Mirror) (uuid.UUID, bool, error) {
	return uuid.Nil, false, nil
}

// Persons.

type personCollection struct {
	txm store.TxManager
}

func (c *personCollection) kind() domain.EntityKind { return domain.KindPerson }

func (c *personCollection) listLocal(ctx context.Context) ([]localRecord, error) {
	persons, err := c.txm.Stores().Persons.List(ctx, store.TemplateFilter{IncludeArchived: true})
	if err != nil {
		return nil, err
	}
	records := make([]localRecord, 0, len(persons))
	for _, p := range persons {
		mirror := remote.Mirror{
			Kind:     domain.KindPerson,
			LocalID:  p.ID,
			Name:     p.Name,
			Archived: p.Archived,
		}
		if p.CatchUpParams != nil {
			mirror.Period = string(p.CatchUpParams.Period)
		}
		records = append(records, localRecord{
			id:         p.ID,
			archived:   p.Archived,
			modifiedAt: p.UpdatedAt,
			mirror:     mirror,
		})
	}
	return records, nil
}

func (c *personCollection) applyRemote(ctx context.Context, localID uuid.UUID, m *remote.Mirror) error {
	return c.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
		if m.Archived {
			return tx.Persons.Archive(ctx, localID)
		}
		person, err := tx.Persons.GetByID(ctx, localID)
		if err != nil {
			return err
		}
		params := person.CatchUpParams
		if m.Period != "" && params != nil {
			period, err := domain.ParsePeriod(m.Period)
			if err != nil {
				return fmt.Errorf("remote row has invalid period: %w", err)
			}
			updated := *params
			updated.Period = period
			params = &updated
		}
		if err := person.Update(m.Name, person.Relationship, params, person.Birthday); err != nil {
			return err
		}
		return tx.Persons.Update(ctx, person)
	})
}

func (c *personCollection) adopts() bool { return false }

func (c *personCollection) adopt(ctx context.Context, m *remote.Mirror) (uuid.UUID, bool, error) {
	return uuid.Nil, false, nil
}

// Vacations.

type vacationCollection struct {
	txm store.TxManager
}

func (c *vacationCollection) kind() domain.EntityKind { return domain.KindVacation }

func (c *vacationCollection) listLocal(ctx context.Context) ([]localRecord, error) {
	vacations, err := c.txm.Stores().Vacations.List(ctx, true)
	if err != nil {
		return nil, err
	}
	records := make([]localRecord, 0, len(vacations))
	for _, v := range vacations {
		start, end := v.StartDate, v.EndDate
		records = append(records, localRecord{
			id:         v.ID,
			archived:   v.Archived,
			modifiedAt: v.UpdatedAt,
			mirror: remote.Mirror{
				Kind:      domain.KindVacation,
				LocalID:   v.ID,
				Name:      v.Name,
				Archived:  v.Archived,
				StartDate: &start,
				EndDate:   &end,
			},
		})
	}
	return records, nil
}

func (c *vacationCollection) applyRemote(ctx context.Context, localID uuid.UUID, m *remote.Mirror) error {
	return c.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
		if m.Archived {
			return tx.Vacations.Archive(ctx, localID)
		}
		vacation, err := tx.Vacations.GetByID(ctx, localID)
		if err != nil {
			return err
		}
		start, end := vacation.StartDate, vacation.EndDate
		if m.StartDate != nil {
			start = *m.StartDate
		}
		if m.EndDate != nil {
			end = *m.EndDate
		}
		if err := vacation.Update(m.Name, start, end); err != nil {
			return err
		}
		return tx.Vacations.Update(ctx, vacation)
	})
}

func (c *vacationCollection) adopts() bool { return false }

func (c *vacationCollection) adopt(ctx context.Context, m *remote.Mirror) (uuid.UUID, bool, error) {
	return uuid.Nil, false, nil
}

// Inbox tasks.

type taskCollection struct {
	txm store.TxManager
}

func (c *taskCollection) kind() domain.EntityKind { return domain.KindInboxTask }

func (c *taskCollection) listLocal(ctx context.Context) ([]localRecord, error) {
	tasks, err := c.txm.Stores().Tasks.List(ctx, store.TaskFilter{IncludeArchived: true})
	if err != nil {
		return nil, err
	}
	records := make([]localRecord, 0, len(tasks))
	for _, t := range tasks {
		due := t.DueDate
		mirror := remote.Mirror{
			Kind:           domain.KindInboxTask,
			LocalID:        t.ID,
			Name:           t.Name,
			Archived:       t.Status == domain.TaskStatusArchived,
			Status:         string(t.Status),
			ActionableDate: t.ActionableDate,
			Difficulty:     string(t.Difficulty),
			Eisenhower:     string(t.Eisenhower),
		}
		if !due.IsZero() {
			mirror.DueDate = &due
		}
		records = append(records, localRecord{
			id:         t.ID,
			archived:   t.Status == domain.TaskStatusArchived,
			modifiedAt: t.UpdatedAt,
			mirror:     mirror,
		})
	}
	return records, nil
}

func (c *taskCollection) applyRemote(ctx context.Context, localID uuid.UUID, m *remote.Mirror) error {
	return c.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
		task, err := tx.Tasks.GetByID(ctx, localID)
		if err != nil {
			return err
		}
		if m.Name != "" {
			task.Name = m.Name
		}
		if m.Status != "" {
			status, err := domain.ParseTaskStatus(m.Status)
			if err != nil {
				return fmt.Errorf("remote row has invalid status: %w", err)
			}
			task.Status = status
		}
		if m.Archived {
			task.Status = domain.TaskStatusArchived
		}
		task.ActionableDate = m.ActionableDate
		if m.DueDate != nil {
			task.DueDate = *m.DueDate
		}
		task.Difficulty = domain.Difficulty(m.Difficulty)
		task.Eisenhower = domain.Eisenhower(m.Eisenhower)
		task.UpdatedAt = time.Now().UTC()
		return tx.Tasks.Update(ctx, task)
	})
}

func (c *taskCollection) adopts() bool { return true }

// adopt imports a remote-only row as a manual task in the default inbox
// project, creating that project on first use.
func (c *taskCollection) adopt(ctx context.Context, m *remote.Mirror) (uuid.UUID, bool, error) {
	var taskID uuid.UUID
	err := c.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
		project, err := tx.Projects.GetByName(ctx, adoptedTasksProject)
		if store.IsNotFoundError(err) {
			project, err = domain.NewProject(adoptedTasksProject)
			if err != nil {
				return err
			}
			if err := tx.Projects.Create(ctx, project); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		var due time.Time
		if m.DueDate != nil {
			due = *m.DueDate
		}
		task, err := domain.NewManualTask(project.ID, m.Name, m.ActionableDate, due)
		if err != nil {
			return err
		}
		if m.Status == string(domain.TaskStatusDone) {
			task.MarkDone()
		}
		task.Difficulty = domain.Difficulty(m.Difficulty)
		task.Eisenhower = domain.Eisenhower(m.Eisenhower)
		if err := tx.Tasks.Create(ctx, task); err != nil {
			return err
		}
		taskID = task.ID
		return nil
	})
	if err != nil {
		return uuid.Nil, false, err
	}
	return taskID, true, nil
}
