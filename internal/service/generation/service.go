// Package generation implements the recurring task generator: for each
// active template and the period interval containing the target moment,
// it creates the missing inbox task, patches a drifted one, or skips.
// Generation is idempotent over the (template, origin, interval) key.
package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/domain/schedule"
	"github.com/phrazzld/almanac/internal/events"
	"github.com/phrazzld/almanac/internal/platform/logger"
	"github.com/phrazzld/almanac/internal/store"
)

// Target selects which template kinds a generation run covers.
type Target string

// The generation targets.
const (
	TargetHabits  Target = "habits"
	TargetChores  Target = "chores"
	TargetMetrics Target = "metrics"
	TargetPersons Target = "persons"
)

// ParseTarget converts a string into a Target.
func ParseTarget(s string) (Target, error) {
	switch Target(s) {
	case TargetHabits, TargetChores, TargetMetrics, TargetPersons:
		return Target(s), nil
	default:
		return "", fmt.Errorf("unknown generation target %q", s)
	}
}

// RunOptions narrows a generation run. Zero-value fields do not filter;
// a zero Date means now.
type RunOptions struct {
	Date         time.Time
	Periods      []domain.Period
	Targets      []Target
	ProjectNames []string
	TemplateIDs  []uuid.UUID
}

// Report summarizes a generation run. Failed counts templates whose
// recurrence configuration could not be resolved; they never abort the
// rest of the batch.
type Report struct {
	Created int
	Updated int
	Skipped int
	Failed  int
}

// Service is the generator. It only writes to the local store; mirroring
// the created tasks is the sync engine's job.
type Service struct {
	txm    store.TxManager
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

// NewService creates a generator.
// If log is nil, a default logger will be used.
func NewService(txm store.TxManager, loc *time.Location, log *slog.Logger) *Service {
	if txm == nil {
		panic("txm cannot be nil")
	}
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		txm:    txm,
		loc:    loc,
		now:    time.Now,
		logger: log.With(slog.String("component", "generator")),
	}
}

// Run generates inbox tasks for the period intervals containing the
// target moment. Calling Run twice with the same arguments and no
// intervening template edits yields zero additional creates.
func (s *Service) Run(ctx context.Context, opts RunOptions) (Report, error) {
	ctx = logger.WithLogger(ctx, s.logger)

	moment := opts.Date
	if moment.IsZero() {
		moment = s.now()
	}

	st := s.txm.Stores()

	vacations, err := st.Vacations.List(ctx, false)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list vacations: %w", err)
	}

	filter := store.TemplateFilter{IDs: opts.TemplateIDs}
	filter.ProjectIDs, err = resolveProjects(ctx, st.Projects, opts.ProjectNames)
	if err != nil {
		return Report{}, err
	}

	var report Report

	if s.targeted(opts.Targets, TargetHabits) {
		habits, err := st.Habits.List(ctx, filter)
		if err != nil {
			return report, fmt.Errorf("failed to list habits: %w", err)
		}
		for _, habit := range habits {
			s.generateForTemplate(ctx, &report, habit, domain.OriginHabit, habit.GenParams(), moment, opts, nil)
		}
	}

	if s.targeted(opts.Targets, TargetChores) {
		chores, err := st.Chores.List(ctx, filter)
		if err != nil {
			return report, fmt.Errorf("failed to list chores: %w", err)
		}
		for _, chore := range chores {
			s.generateForTemplate(ctx, &report, chore, domain.OriginChore, chore.GenParams(), moment, opts, vacations)
		}
	}

	if s.targeted(opts.Targets, TargetMetrics) {
		metrics, err := st.Metrics.List(ctx, filter)
		if err != nil {
			return report, fmt.Errorf("failed to list metrics: %w", err)
		}
		for _, metric := range metrics {
			s.generateForTemplate(ctx, &report, metric, domain.OriginMetric, metric.GenParams(), moment, opts, nil)
		}
	}

	if s.targeted(opts.Targets, TargetPersons) {
		persons, err := st.Persons.List(ctx, filter)
		if err != nil {
			return report, fmt.Errorf("failed to list persons: %w", err)
		}
		for _, person := range persons {
			s.generateForTemplate(ctx, &report, person, domain.OriginPersonCatchUp, person.GenParams(), moment, opts, nil)
			if person.Birthday != nil {
				birthdayParams := domain.RecurringParams{
					Period:     domain.PeriodYearly,
					DueAtMonth: int(person.Birthday.Month),
					DueAtDay:   person.Birthday.Day,
				}
				s.generateForTemplate(ctx, &report, person, domain.OriginPersonBirthday, &birthdayParams, moment, opts, nil)
			}
		}
	}

	s.logger.Info("generation run finished",
		slog.Time("moment", moment),
		slog.Int("created", report.Created),
		slog.Int("updated", report.Updated),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed))
	return report, nil
}

// generateForTemplate runs the per-template gates and instantiation for
// one origin. Configuration errors fail this template only.
func (s *Service) generateForTemplate(
	ctx context.Context,
	report *Report,
	tpl domain.Template,
	origin domain.TaskOrigin,
	params *domain.RecurringParams,
	moment time.Time,
	opts RunOptions,
	vacations []*domain.Vacation,
) {
	if params == nil {
		return
	}
	if len(opts.Periods) > 0 && !containsPeriod(opts.Periods, params.Period) {
		return
	}
	if tpl.IsSuspended() {
		report.Skipped++
		return
	}

	sched, err := schedule.Compute(tpl.TemplateName(), *params, moment, s.loc)
	if err != nil {
		// An unresolvable offset fails fast for this template only.
		s.logger.Warn("template configuration invalid, skipping",
			slog.String("template_id", tpl.TemplateID().String()),
			slog.String("origin", string(origin)),
			slog.String("error", err.Error()))
		report.Failed++
		return
	}

	if sched.Skipped {
		report.Skipped++
		return
	}
	if !domain.InActiveInterval(tpl, sched.Interval.Span) {
		report.Skipped++
		return
	}
	if !tpl.IsMustDo() && domain.VacationExcluded(vacations, sched.Interval.Span) {
		report.Skipped++
		return
	}

	fields := domain.TemplateFields{
		ProjectID:      tpl.TemplateProjectID(),
		Name:           sched.FullName,
		ActionableDate: sched.ActionableDate,
		DueDate:        sched.DueDate,
		Difficulty:     params.Difficulty,
		Eisenhower:     params.Eisenhower,
	}

	if err := s.instantiate(ctx, report, tpl.TemplateID(), origin, sched.Interval.ID, fields); err != nil {
		s.logger.Error("failed to instantiate task",
			slog.String("template_id", tpl.TemplateID().String()),
			slog.String("interval_id", sched.Interval.ID),
			slog.String("error", err.Error()))
		report.Failed++
	}
}

// instantiate creates, patches or skips the single instance for a
// (template, origin, interval) key.
func (s *Service) instantiate(
	ctx context.Context,
	report *Report,
	templateID uuid.UUID,
	origin domain.TaskOrigin,
	intervalID string,
	fields domain.TemplateFields,
) error {
	st := s.txm.Stores()
	now := s.now().UTC()

	existing, err := st.Tasks.FindByTemplateInterval(ctx, templateID, origin, intervalID)
	switch {
	case store.IsNotFoundError(err):
		task, err := domain.NewGeneratedTask(origin, templateID, intervalID, fields, now)
		if err != nil {
			return err
		}
		err = s.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
			if err := tx.Tasks.Create(ctx, task); err != nil {
				return err
			}
			return appendEvent(ctx, tx, task.ID, events.OpGenerate, task)
		})
		if err != nil {
			return err
		}
		report.Created++
		return nil

	case err != nil:
		return err

	case existing.Status == domain.TaskStatusArchived:
		// The user removed this instance on purpose; idempotence defers
		// to that.
		report.Skipped++
		return nil

	default:
		if !existing.ApplyTemplateFields(fields, now) {
			report.Skipped++
			return nil
		}
		err = s.txm.WithinTx(ctx, func(ctx context.Context, tx store.Stores) error {
			if err := tx.Tasks.Update(ctx, existing); err != nil {
				return err
			}
			return appendEvent(ctx, tx, existing.ID, events.OpGenerate, existing)
		})
		if err != nil {
			return err
		}
		report.Updated++
		return nil
	}
}

func (s *Service) targeted(targets []Target, t Target) bool {
	if len(targets) == 0 {
		return true
	}
	for _, candidate := range targets {
		if candidate == t {
			return true
		}
	}
	return false
}

func appendEvent(ctx context.Context, tx store.Stores, taskID uuid.UUID, op events.Op, payload any) error {
	event, err := events.New(domain.KindInboxTask, taskID, op, payload)
	if err != nil {
		return err
	}
	return tx.Events.Append(ctx, event)
}

func containsPeriod(periods []domain.Period, p domain.Period) bool {
	for _, candidate := range periods {
		if candidate == p {
			return true
		}
	}
	return false
}

// resolveProjects maps project names to ids for filtering. An unknown
// name is a setup error and aborts the run.
func resolveProjects(ctx context.Context, projects store.ProjectStore, names []string) ([]uuid.UUID, error) {
	if len(names) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		project, err := projects.GetByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve project %q: %w", name, err)
		}
		ids = append(ids, project.ID)
	}
	return ids, nil
}
