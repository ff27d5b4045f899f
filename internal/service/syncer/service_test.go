package syncer_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/events"
	"github.com/phrazzld/almanac/internal/remote"
	"github.com/phrazzld/almanac/internal/service/syncer"
	"github.com/phrazzld/almanac/internal/store"
	"github.com/phrazzld/almanac/internal/storetest"
)

func seedProject(t *testing.T, mem *storetest.Memory, name string) *domain.Project {
	t.Helper()
	project, err := domain.NewProject(name)
	require.NoError(t, err)
	require.NoError(t, mem.Stores().Projects.Create(context.Background(), project))
	return project
}

func seedDailyHabit(t *testing.T, mem *storetest.Memory, project *domain.Project, name string) *domain.Habit {
	t.Helper()
	habit, err := domain.NewHabit(project.ID, name, domain.RecurringParams{Period: domain.PeriodDaily})
	require.NoError(t, err)
	require.NoError(t, mem.Stores().Habits.Create(context.Background(), habit))
	return habit
}

func habitLink(t *testing.T, mem *storetest.Memory, habitID uuid.UUID) *domain.SyncLink {
	t.Helper()
	link, err := mem.Stores().Links.GetByLocal(context.Background(), domain.KindHabit, habitID)
	require.NoError(t, err)
	return link
}

func TestRunPushesLocalEntities(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	client := storetest.NewFakeMirrorClient()
	project := seedProject(t, mem, "Health")
	habit := seedDailyHabit(t, mem, project, "Meditate")

	report, err := syncer.NewService(mem, client, nil).Run(ctx, syncer.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, syncer.Report{Pushed: 2}, report)

	assert.Equal(t, 1, client.Count(domain.KindProject))
	assert.Equal(t, 1, client.Count(domain.KindHabit))

	link := habitLink(t, mem, habit.ID)
	row := client.Get(domain.KindHabit, link.RemoteID)
	require.NotNil(t, row)
	assert.Equal(t, "Meditate", row.Name)
	assert.Equal(t, habit.ID, row.LocalID, "mirrors carry the local id for re-association")
	assert.Equal(t, "daily", row.Period)

	var pushes int
	for _, event := range mem.Events() {
		if event.Op == events.OpSyncPush {
			pushes++
		}
	}
	assert.Equal(t, 2, pushes)
}

func TestSecondRunIsUnchanged(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	client := storetest.NewFakeMirrorClient()
	project := seedProject(t, mem, "Health")
	seedDailyHabit(t, mem, project, "Meditate")

	svc := syncer.NewService(mem, client, nil)
	_, err := svc.Run(ctx, syncer.RunOptions{})
	require.NoError(t, err)

	report, err := svc.Run(ctx, syncer.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, syncer.Report{Unchanged: 2}, report)
	assert.Equal(t, 1, client.Count(domain.KindHabit), "no duplicate mirrors")
}

func TestLocalArchivalFollowsToRemote(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	client := storetest.NewFakeMirrorClient()
	project := seedProject(t, mem, "Health")
	habit := seedDailyHabit(t, mem, project, "Meditate")

	svc := syncer.NewService(mem, client, nil)
	_, err := svc.Run(ctx, syncer.RunOptions{})
	require.NoError(t, err)

	require.NoError(t, mem.Stores().Habits.Archive(ctx, habit.ID))

	report, err := svc.Run(ctx, syncer.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Archived)

	link := habitLink(t, mem, habit.ID)
	assert.True(t, link.Archived)
	row := client.Get(domain.KindHabit, link.RemoteID)
	require.NotNil(t, row)
	assert.True(t, row.Archived)

	// Once the link is marked, the archived habit settles as unchanged.
	report, err = svc.Run(ctx, syncer.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Archived)
}

func TestBrokenLinkIsRepaired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	client := storetest.NewFakeMirrorClient()
	project := seedProject(t, mem, "Health")
	habit := seedDailyHabit(t, mem, project, "Meditate")

	svc := syncer.NewService(mem, client, nil)
	_, err := svc.Run(ctx, syncer.RunOptions{})
	require.NoError(t, err)

	// The remote row disappears out from under the link.
	oldRemoteID := habitLink(t, mem, habit.ID).RemoteID
	client.Remove(domain.KindHabit, oldRemoteID)

	report, err := svc.Run(ctx, syncer.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Repaired)

	link := habitLink(t, mem, habit.ID)
	assert.NotEqual(t, oldRemoteID, link.RemoteID)
	require.NotNil(t, client.Get(domain.KindHabit, link.RemoteID))
	assert.Equal(t, 1, client.Count(domain.KindHabit))
}

func TestNewerRemoteEditIsPulled(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	client := storetest.NewFakeMirrorClient()
	project := seedProject(t, mem, "Health")
	habit := seedDailyHabit(t, mem, project, "Meditate")

	svc := syncer.NewService(mem, client, nil)
	_, err := svc.Run(ctx, syncer.RunOptions{})
	require.NoError(t, err)

	// Age the local side, then rename the row remotely.
	habit, err = mem.Stores().Habits.GetByID(ctx, habit.ID)
	require.NoError(t, err)
	habit.UpdatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, mem.Stores().Habits.Update(ctx, habit))

	link := habitLink(t, mem, habit.ID)
	row := client.Get(domain.KindHabit, link.RemoteID)
	require.NotNil(t, row)
	row.Name = "Sit still"
	require.NoError(t, client.UpdateMirror(ctx, link.RemoteID, *row))

	report, err := svc.Run(ctx, syncer.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Pulled)

	pulled, err := mem.Stores().Habits.GetByID(ctx, habit.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sit still", pulled.Name)
}

func TestNewerLocalEditIsPushed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	client := storetest.NewFakeMirrorClient()
	project := seedProject(t, mem, "Health")
	habit := seedDailyHabit(t, mem, project, "Meditate")

	svc := syncer.NewService(mem, client, nil)
	_, err := svc.Run(ctx, syncer.RunOptions{})
	require.NoError(t, err)

	habit, err = mem.Stores().Habits.GetByID(ctx, habit.ID)
	require.NoError(t, err)
	require.NoError(t, habit.Update("Sit still", habit.Params))
	habit.UpdatedAt = time.Now().UTC().Add(time.Hour)
	require.NoError(t, mem.Stores().Habits.Update(ctx, habit))

	report, err := svc.Run(ctx, syncer.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Pushed)

	link := habitLink(t, mem, habit.ID)
	row := client.Get(domain.KindHabit, link.RemoteID)
	require.NotNil(t, row)
	assert.Equal(t, "Sit still", row.Name)
}

func TestRemoteOnlyTaskIsAdopted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	client := storetest.NewFakeMirrorClient()
	client.Put(remote.Mirror{
		Kind:   domain.KindInboxTask,
		Name:   "Buy milk",
		Status: string(domain.TaskStatusOpen),
	})

	svc := syncer.NewService(mem, client, nil)
	report, err := svc.Run(ctx, syncer.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Adopted)

	tasks, err := mem.Stores().Tasks.List(ctx, store.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	task := tasks[0]
	assert.Equal(t, "Buy milk", task.Name)
	assert.Equal(t, domain.OriginManual, task.Origin)

	inbox, err := mem.Stores().Projects.GetByName(ctx, "Inbox")
	require.NoError(t, err)
	assert.Equal(t, inbox.ID, task.ProjectID, "adopted tasks land in the inbox project")

	_, err = mem.Stores().Links.GetByLocal(ctx, domain.KindInboxTask, task.ID)
	require.NoError(t, err)

	// The next run pushes the freshly created inbox project and settles.
	report, err = svc.Run(ctx, syncer.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, syncer.Report{Pushed: 1, Unchanged: 1}, report)
}

func TestRemoteOnlyTemplateIsArchivedRemotely(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	client := storetest.NewFakeMirrorClient()
	remoteID := client.Put(remote.Mirror{
		Kind:   domain.KindHabit,
		Name:   "Made up remotely",
		Period: "daily",
	})

	report, err := syncer.NewService(mem, client, nil).Run(ctx, syncer.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Archived)

	row := client.Get(domain.KindHabit, remoteID)
	require.NotNil(t, row)
	assert.True(t, row.Archived, "templates are authored locally; stray rows are retired")

	habits, err := mem.Stores().Habits.List(ctx, store.TemplateFilter{IncludeArchived: true})
	require.NoError(t, err)
	assert.Empty(t, habits)
}

func TestArchivedRemoteOnlyRowIsIgnored(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	client := storetest.NewFakeMirrorClient()
	client.Put(remote.Mirror{
		Kind:     domain.KindInboxTask,
		Name:     "Old clutter",
		Status:   string(domain.TaskStatusOpen),
		Archived: true,
	})

	report, err := syncer.NewService(mem, client, nil).Run(ctx, syncer.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, syncer.Report{}, report)
}

func TestLostLinkIsReassociatedByLocalID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	client := storetest.NewFakeMirrorClient()
	project := seedProject(t, mem, "Health")
	habit := seedDailyHabit(t, mem, project, "Meditate")

	// A mirror stamped with the habit's id exists, but the links table
	// knows nothing about it.
	remoteID := client.Put(remote.Mirror{
		Kind:    domain.KindHabit,
		LocalID: habit.ID,
		Name:    habit.Name,
		Period:  "daily",
	})

	report, err := syncer.NewService(mem, client, nil).Run(ctx, syncer.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Repaired)
	assert.Equal(t, 1, client.Count(domain.KindHabit), "re-association prevents a duplicate mirror")

	link := habitLink(t, mem, habit.ID)
	assert.Equal(t, remoteID, link.RemoteID)
}

func TestInterruptedRunResumes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	client := storetest.NewFakeMirrorClient()
	project := seedProject(t, mem, "Health")
	seedDailyHabit(t, mem, project, "Meditate")
	seedDailyHabit(t, mem, project, "Stretch")

	// The remote goes away after the first successful create.
	client.FailAfterCreates = 1

	svc := syncer.NewService(mem, client, nil)
	report, err := svc.Run(ctx, syncer.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Pushed)
	assert.Equal(t, 2, report.Failed)

	client.FailAfterCreates = 0
	report, err = svc.Run(ctx, syncer.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, syncer.Report{Pushed: 2, Unchanged: 1}, report)
	assert.Equal(t, 1, client.Count(domain.KindProject))
	assert.Equal(t, 2, client.Count(domain.KindHabit), "resume completes without duplicating pushed rows")
}

func TestDryRunWritesNothing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	client := storetest.NewFakeMirrorClient()
	project := seedProject(t, mem, "Health")
	habit := seedDailyHabit(t, mem, project, "Meditate")
	client.Put(remote.Mirror{
		Kind:   domain.KindInboxTask,
		Name:   "Buy milk",
		Status: string(domain.TaskStatusOpen),
	})

	report, err := syncer.NewService(mem, client, nil).Run(ctx, syncer.RunOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, syncer.Report{Pushed: 2, Adopted: 1}, report)

	assert.Equal(t, 0, client.Count(domain.KindProject))
	assert.Equal(t, 0, client.Count(domain.KindHabit))
	tasks, err := mem.Stores().Tasks.List(ctx, store.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks, "dry run adopts nothing")
	_, err = mem.Stores().Links.GetByLocal(ctx, domain.KindHabit, habit.ID)
	assert.True(t, store.IsNotFoundError(err))
	assert.Empty(t, mem.Events())
}

func TestKindFilterLimitsTheRun(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	client := storetest.NewFakeMirrorClient()
	project := seedProject(t, mem, "Health")
	seedDailyHabit(t, mem, project, "Meditate")

	report, err := syncer.NewService(mem, client, nil).Run(ctx,
		syncer.RunOptions{Kinds: []domain.EntityKind{domain.KindProject}})
	require.NoError(t, err)
	assert.Equal(t, syncer.Report{Pushed: 1}, report)
	assert.Equal(t, 1, client.Count(domain.KindProject))
	assert.Equal(t, 0, client.Count(domain.KindHabit))
}
