package gc_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/events"
	"github.com/phrazzld/almanac/internal/remote"
	"github.com/phrazzld/almanac/internal/service/gc"
	"github.com/phrazzld/almanac/internal/store"
	"github.com/phrazzld/almanac/internal/storetest"
)

func seedTask(t *testing.T, mem *storetest.Memory, name string, status domain.TaskStatus) *domain.InboxTask {
	t.Helper()
	ctx := context.Background()
	project, err := mem.Stores().Projects.GetByName(ctx, "Inbox")
	if store.IsNotFoundError(err) {
		project, err = domain.NewProject("Inbox")
		require.NoError(t, err)
		require.NoError(t, mem.Stores().Projects.Create(ctx, project))
	} else {
		require.NoError(t, err)
	}
	task, err := domain.NewManualTask(project.ID, name, nil, time.Now().UTC())
	require.NoError(t, err)
	task.Status = status
	require.NoError(t, mem.Stores().Tasks.Create(ctx, task))
	return task
}

func TestRunArchivesAndPurgesDoneTasks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	client := storetest.NewFakeMirrorClient()
	done := seedTask(t, mem, "Buy milk", domain.TaskStatusDone)
	open := seedTask(t, mem, "Call plumber", domain.TaskStatusOpen)

	report, err := gc.NewService(mem, client, nil).Run(ctx, gc.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, gc.Report{Archived: 1, Purged: 1}, report)

	_, err = mem.Stores().Tasks.GetByID(ctx, done.ID)
	assert.True(t, store.IsNotFoundError(err), "the done task is gone")
	_, err = mem.Stores().Tasks.GetByID(ctx, open.ID)
	assert.NoError(t, err, "open tasks are untouched")

	var archives, purges int
	for _, event := range mem.Events() {
		switch event.Op {
		case events.OpArchive:
			archives++
		case events.OpPurge:
			purges++
		}
	}
	assert.Equal(t, 1, archives)
	assert.Equal(t, 1, purges)
}

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	seedTask(t, mem, "Buy milk", domain.TaskStatusDone)

	svc := gc.NewService(mem, storetest.NewFakeMirrorClient(), nil)
	_, err := svc.Run(ctx, gc.RunOptions{})
	require.NoError(t, err)

	report, err := svc.Run(ctx, gc.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, gc.Report{}, report)
}

func TestPurgeArchivesTheMirrorFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	client := storetest.NewFakeMirrorClient()
	task := seedTask(t, mem, "Buy milk", domain.TaskStatusArchived)
	remoteID := client.Put(remote.Mirror{
		Kind:   domain.KindInboxTask,
		Name:   task.Name,
		Status: string(domain.TaskStatusOpen),
	})
	require.NoError(t, mem.Stores().Links.Upsert(ctx, domain.NewSyncLink(domain.KindInboxTask, task.ID, remoteID)))

	report, err := gc.NewService(mem, client, nil).Run(ctx, gc.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, gc.Report{Purged: 1}, report)

	row := client.Get(domain.KindInboxTask, remoteID)
	require.NotNil(t, row)
	assert.True(t, row.Archived)

	_, err = mem.Stores().Links.GetByLocal(ctx, domain.KindInboxTask, task.ID)
	assert.True(t, store.IsNotFoundError(err), "the link is removed with the row")
}

func TestUnconfirmableMirrorDefersPurge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	client := storetest.NewFakeMirrorClient()
	client.ArchiveErr = remote.ErrRemoteUnavailable
	task := seedTask(t, mem, "Buy milk", domain.TaskStatusArchived)
	remoteID := client.Put(remote.Mirror{
		Kind:   domain.KindInboxTask,
		Name:   task.Name,
		Status: string(domain.TaskStatusOpen),
	})
	require.NoError(t, mem.Stores().Links.Upsert(ctx, domain.NewSyncLink(domain.KindInboxTask, task.ID, remoteID)))

	svc := gc.NewService(mem, client, nil)
	report, err := svc.Run(ctx, gc.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, gc.Report{Failed: 1}, report)

	_, err = mem.Stores().Tasks.GetByID(ctx, task.ID)
	assert.NoError(t, err, "the row survives until the mirror is confirmed")

	// The remote comes back; the deferred purge completes.
	client.ArchiveErr = nil
	report, err = svc.Run(ctx, gc.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, gc.Report{Purged: 1}, report)
}

func TestNilClientNeverPurgesLinkedRows(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	linked := seedTask(t, mem, "Buy milk", domain.TaskStatusArchived)
	require.NoError(t, mem.Stores().Links.Upsert(ctx, domain.NewSyncLink(domain.KindInboxTask, linked.ID, "rem-1")))
	unlinked := seedTask(t, mem, "Call plumber", domain.TaskStatusArchived)

	report, err := gc.NewService(mem, nil, nil).Run(ctx, gc.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, gc.Report{Purged: 1}, report)

	_, err = mem.Stores().Tasks.GetByID(ctx, linked.ID)
	assert.NoError(t, err, "a linked row waits for a configured remote")
	_, err = mem.Stores().Tasks.GetByID(ctx, unlinked.ID)
	assert.True(t, store.IsNotFoundError(err))
}

func TestLinkAlreadyConfirmedAllowsPurge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	task := seedTask(t, mem, "Buy milk", domain.TaskStatusArchived)
	link := domain.NewSyncLink(domain.KindInboxTask, task.ID, "rem-1")
	link.Archived = true
	require.NoError(t, mem.Stores().Links.Upsert(ctx, link))

	// No client at all: the earlier confirmation is enough.
	report, err := gc.NewService(mem, nil, nil).Run(ctx, gc.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, gc.Report{Purged: 1}, report)
}

func TestKindFilterSkipsTasks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := storetest.NewMemory()
	seedTask(t, mem, "Buy milk", domain.TaskStatusDone)

	report, err := gc.NewService(mem, nil, nil).Run(ctx, gc.RunOptions{Kinds: []domain.EntityKind{domain.KindProject}})
	require.NoError(t, err)
	assert.Equal(t, gc.Report{}, report)
}
