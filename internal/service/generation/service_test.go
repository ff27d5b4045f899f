package generation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/events"
	"github.com/phrazzld/almanac/internal/store"
	"github.com/phrazzld/almanac/internal/storetest"
)

// March 5th 2020, a Thursday in ISO week 10.
var moment = time.Date(2020, time.March, 5, 9, 0, 0, 0, time.UTC)

func newTestService(mem *storetest.Memory) *Service {
	svc := NewService(mem, time.UTC, nil)
	svc.now = func() time.Time { return moment }
	return svc
}

func seedProject(t *testing.T, mem *storetest.Memory, name string) *domain.Project {
	t.Helper()
	project, err := domain.NewProject(name)
	require.NoError(t, err)
	require.NoError(t, mem.Stores().Projects.Create(context.Background(), project))
	return project
}

func seedHabit(t *testing.T, mem *storetest.Memory, projectID uuid.UUID, name string, params domain.RecurringParams) *domain.Habit {
	t.Helper()
	habit, err := domain.NewHabit(projectID, name, params)
	require.NoError(t, err)
	require.NoError(t, mem.Stores().Habits.Create(context.Background(), habit))
	return habit
}

func seedChore(t *testing.T, mem *storetest.Memory, projectID uuid.UUID, name string, params domain.RecurringParams) *domain.Chore {
	t.Helper()
	chore, err := domain.NewChore(projectID, name, params)
	require.NoError(t, err)
	require.NoError(t, mem.Stores().Chores.Create(context.Background(), chore))
	return chore
}

func listTasks(t *testing.T, mem *storetest.Memory) []*domain.InboxTask {
	t.Helper()
	tasks, err := mem.Stores().Tasks.List(context.Background(), store.TaskFilter{IncludeArchived: true})
	require.NoError(t, err)
	return tasks
}

func TestRunCreatesHabitTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	project := seedProject(t, mem, "Health")
	habit := seedHabit(t, mem, project.ID, "Meditate", domain.RecurringParams{Period: domain.PeriodDaily})

	report, err := newTestService(mem).Run(ctx, RunOptions{Date: moment})
	require.NoError(t, err)
	assert.Equal(t, Report{Created: 1}, report)

	tasks := listTasks(t, mem)
	require.Len(t, tasks, 1)
	task := tasks[0]
	assert.Equal(t, "MeditateMar05", task.Name)
	assert.Equal(t, domain.OriginHabit, task.Origin)
	assert.Equal(t, habit.ID, task.TemplateID)
	assert.Equal(t, "D2020-065", task.IntervalID)
	assert.Equal(t, project.ID, task.ProjectID)
	assert.Equal(t, time.Date(2020, time.March, 6, 0, 0, 0, 0, time.UTC), task.DueDate)

	recorded := mem.Events()
	require.Len(t, recorded, 1)
	assert.Equal(t, events.OpGenerate, recorded[0].Op)
	assert.Equal(t, task.ID, recorded[0].EntityID)
}

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	project := seedProject(t, mem, "Health")
	seedHabit(t, mem, project.ID, "Meditate", domain.RecurringParams{Period: domain.PeriodDaily})

	svc := newTestService(mem)
	_, err := svc.Run(ctx, RunOptions{Date: moment})
	require.NoError(t, err)

	report, err := svc.Run(ctx, RunOptions{Date: moment})
	require.NoError(t, err)
	assert.Equal(t, Report{Skipped: 1}, report)
	assert.Len(t, listTasks(t, mem), 1)
}

func TestRunRepairsDriftedInstance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	project := seedProject(t, mem, "Health")
	habit := seedHabit(t, mem, project.ID, "Meditate", domain.RecurringParams{Period: domain.PeriodDaily})

	svc := newTestService(mem)
	_, err := svc.Run(ctx, RunOptions{Date: moment})
	require.NoError(t, err)

	// The user completes the instance, then renames the template.
	task := listTasks(t, mem)[0]
	task.MarkDone()
	require.NoError(t, mem.Stores().Tasks.Update(ctx, task))
	require.NoError(t, habit.Update("Sit still", habit.Params))
	require.NoError(t, mem.Stores().Habits.Update(ctx, habit))

	report, err := svc.Run(ctx, RunOptions{Date: moment})
	require.NoError(t, err)
	assert.Equal(t, Report{Updated: 1}, report)

	repaired, err := mem.Stores().Tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sit stillMar05", repaired.Name)
	assert.Equal(t, domain.TaskStatusDone, repaired.Status, "completion survives drift repair")
}

func TestRunLeavesArchivedInstanceAlone(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	project := seedProject(t, mem, "Health")
	seedHabit(t, mem, project.ID, "Meditate", domain.RecurringParams{Period: domain.PeriodDaily})

	svc := newTestService(mem)
	_, err := svc.Run(ctx, RunOptions{Date: moment})
	require.NoError(t, err)

	task := listTasks(t, mem)[0]
	task.Archive()
	require.NoError(t, mem.Stores().Tasks.Update(ctx, task))

	report, err := svc.Run(ctx, RunOptions{Date: moment})
	require.NoError(t, err)
	assert.Equal(t, Report{Skipped: 1}, report)
	assert.Len(t, listTasks(t, mem), 1)
}

func TestVacationExcludesChoresButNotHabits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	project := seedProject(t, mem, "Home")
	seedHabit(t, mem, project.ID, "Meditate", domain.RecurringParams{Period: domain.PeriodDaily})
	seedChore(t, mem, project.ID, "Vacuum", domain.RecurringParams{Period: domain.PeriodDaily})
	medicate := seedChore(t, mem, project.ID, "Feed cat", domain.RecurringParams{Period: domain.PeriodDaily})
	medicate.MustDo = true
	require.NoError(t, mem.Stores().Chores.Update(ctx, medicate))

	vacation, err := domain.NewVacation("trip",
		time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, time.March, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, mem.Stores().Vacations.Create(ctx, vacation))

	report, err := newTestService(mem).Run(ctx, RunOptions{Date: moment})
	require.NoError(t, err)
	assert.Equal(t, Report{Created: 2, Skipped: 1}, report)

	names := map[string]bool{}
	for _, task := range listTasks(t, mem) {
		names[task.Name] = true
	}
	assert.True(t, names["MeditateMar05"])
	assert.True(t, names["Feed catMar05"], "must-do chores ignore vacations")
	assert.False(t, names["VacuumMar05"])
}

func TestSuspendedTemplateIsSkipped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	project := seedProject(t, mem, "Health")
	habit := seedHabit(t, mem, project.ID, "Meditate", domain.RecurringParams{Period: domain.PeriodDaily})
	habit.Suspend()
	require.NoError(t, mem.Stores().Habits.Update(ctx, habit))

	report, err := newTestService(mem).Run(ctx, RunOptions{Date: moment})
	require.NoError(t, err)
	assert.Equal(t, Report{Skipped: 1}, report)
	assert.Empty(t, listTasks(t, mem))
}

func TestSkipRuleSkipsInterval(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	project := seedProject(t, mem, "Home")
	seedChore(t, mem, project.ID, "Water plants", domain.RecurringParams{
		Period: domain.PeriodWeekly,
		Skip:   domain.SkipRule{Parity: "even"}, // week 10
	})

	report, err := newTestService(mem).Run(ctx, RunOptions{Date: moment})
	require.NoError(t, err)
	assert.Equal(t, Report{Skipped: 1}, report)
}

func TestChoreOutsideActiveIntervalIsSkipped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	project := seedProject(t, mem, "Garden")
	chore := seedChore(t, mem, project.ID, "Mow lawn", domain.RecurringParams{Period: domain.PeriodWeekly})

	summerStart := time.Date(2020, time.May, 1, 0, 0, 0, 0, time.UTC)
	summerEnd := time.Date(2020, time.October, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, chore.Update(chore.Name, chore.Params, false, &summerStart, &summerEnd))
	require.NoError(t, mem.Stores().Chores.Update(ctx, chore))

	report, err := newTestService(mem).Run(ctx, RunOptions{Date: moment})
	require.NoError(t, err)
	assert.Equal(t, Report{Skipped: 1}, report)

	// Inside the active range the chore generates again.
	report, err = newTestService(mem).Run(ctx, RunOptions{Date: time.Date(2020, time.June, 3, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, Report{Created: 1}, report)
}

func TestTemplatesWithoutParamsGenerateNothing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	project := seedProject(t, mem, "Life")
	metric, err := domain.NewMetric(project.ID, "Weight", "kg", nil)
	require.NoError(t, err)
	require.NoError(t, mem.Stores().Metrics.Create(ctx, metric))
	person, err := domain.NewPerson(project.ID, "Alice", "friend", nil, nil)
	require.NoError(t, err)
	require.NoError(t, mem.Stores().Persons.Create(ctx, person))

	report, err := newTestService(mem).Run(ctx, RunOptions{Date: moment})
	require.NoError(t, err)
	assert.Equal(t, Report{}, report, "templates without a cadence are not even counted")
}

func TestPersonGeneratesCatchUpAndBirthday(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	project := seedProject(t, mem, "People")
	catchUp := &domain.RecurringParams{Period: domain.PeriodMonthly}
	birthday := &domain.Birthday{Month: time.March, Day: 10}
	person, err := domain.NewPerson(project.ID, "Alice", "friend", catchUp, birthday)
	require.NoError(t, err)
	require.NoError(t, mem.Stores().Persons.Create(ctx, person))

	report, err := newTestService(mem).Run(ctx, RunOptions{Date: moment})
	require.NoError(t, err)
	assert.Equal(t, Report{Created: 2}, report)

	byOrigin := map[domain.TaskOrigin]*domain.InboxTask{}
	for _, task := range listTasks(t, mem) {
		byOrigin[task.Origin] = task
	}
	require.Contains(t, byOrigin, domain.OriginPersonCatchUp)
	require.Contains(t, byOrigin, domain.OriginPersonBirthday)

	assert.Equal(t, "AliceMar", byOrigin[domain.OriginPersonCatchUp].Name)
	assert.Equal(t, "M2020-03", byOrigin[domain.OriginPersonCatchUp].IntervalID)

	assert.Equal(t, "Alice2020", byOrigin[domain.OriginPersonBirthday].Name)
	assert.Equal(t, "Y2020", byOrigin[domain.OriginPersonBirthday].IntervalID)
	assert.Equal(t, time.Date(2020, time.March, 11, 0, 0, 0, 0, time.UTC),
		byOrigin[domain.OriginPersonBirthday].DueDate)
}

func TestConfigurationErrorFailsOnlyThatTemplate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	project := seedProject(t, mem, "Health")
	seedHabit(t, mem, project.ID, "Meditate", domain.RecurringParams{Period: domain.PeriodDaily})

	// A template whose offset cannot resolve in the current interval.
	broken := seedHabit(t, mem, project.ID, "Review", domain.RecurringParams{Period: domain.PeriodMonthly, DueAtDay: 28})
	broken.Params.DueAtDay = 31
	require.NoError(t, mem.Stores().Habits.Update(ctx, broken))

	report, err := newTestService(mem).Run(ctx, RunOptions{Date: time.Date(2020, time.April, 10, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Created, "the healthy template still generates")
}

func TestRunFilters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	health := seedProject(t, mem, "Health")
	home := seedProject(t, mem, "Home")
	seedHabit(t, mem, health.ID, "Meditate", domain.RecurringParams{Period: domain.PeriodDaily})
	seedHabit(t, mem, home.ID, "Tidy desk", domain.RecurringParams{Period: domain.PeriodWeekly})
	seedChore(t, mem, home.ID, "Vacuum", domain.RecurringParams{Period: domain.PeriodWeekly})

	report, err := newTestService(mem).Run(ctx, RunOptions{Date: moment, Periods: []domain.Period{domain.PeriodDaily}})
	require.NoError(t, err)
	assert.Equal(t, Report{Created: 1}, report)

	report, err = newTestService(storetestClone(t, mem)).Run(ctx, RunOptions{Date: moment, Targets: []Target{TargetChores}})
	require.NoError(t, err)
	assert.Equal(t, Report{Created: 1}, report)

	report, err = newTestService(storetestClone(t, mem)).Run(ctx, RunOptions{Date: moment, ProjectNames: []string{"Health"}})
	require.NoError(t, err)
	assert.Equal(t, Report{Created: 1}, report)
}

func TestRunAbortsOnUnknownProjectName(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	_, err := newTestService(mem).Run(ctx, RunOptions{Date: moment, ProjectNames: []string{"nope"}})
	require.Error(t, err)
	assert.True(t, store.IsNotFoundError(err))
}

// storetestClone rebuilds a fresh Memory with the same templates so
// filter tests do not see instances created by earlier runs.
func storetestClone(t *testing.T, src *storetest.Memory) *storetest.Memory {
	t.Helper()
	ctx := context.Background()
	dst := storetest.NewMemory()

	projects, err := src.Stores().Projects.List(ctx, true)
	require.NoError(t, err)
	for _, p := range projects {
		require.NoError(t, dst.Stores().Projects.Create(ctx, p))
	}
	habits, err := src.Stores().Habits.List(ctx, store.TemplateFilter{IncludeArchived: true})
	require.NoError(t, err)
	for _, h := range habits {
		require.NoError(t, dst.Stores().Habits.Create(ctx, h))
	}
	chores, err := src.Stores().Chores.List(ctx, store.TemplateFilter{IncludeArchived: true})
	require.NoError(t, err)
	for _, c := range chores {
		require.NoError(t, dst.Stores().Chores.Create(ctx, c))
	}
	return dst
}
