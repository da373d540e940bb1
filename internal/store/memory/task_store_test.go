package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/tasktracker/internal/models"
	"github.com/wolfeidau/tasktracker/internal/store"
)

func newTask(t *testing.T, projectID uuid.UUID, title string, createdAt time.Time) *models.Task {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return &models.Task{
		ID:        id,
		ProjectID: projectID,
		Title:     title,
		Status:    models.TaskStatusToDo,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestTaskStore_ListByProject(t *testing.T) {
	st := NewTaskStore()
	ctx := context.Background()

	p1, p2 := uuid.New(), uuid.New()
	now := time.Now()
	require.NoError(t, st.Create(ctx, newTask(t, p1, "b", now.Add(time.Second))))
	require.NoError(t, st.Create(ctx, newTask(t, p1, "a", now)))
	require.NoError(t, st.Create(ctx, newTask(t, p2, "other", now)))

	tasks, err := st.ListByProject(ctx, p1)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, "a", tasks[0].Title)
	require.Equal(t, "b", tasks[1].Title)

	tasks, err = st.ListByProject(ctx, uuid.New())
	require.NoError(t, err)
	require.Empty(t, tasks)
}

func TestTaskStore_UpdateStatus(t *testing.T) {
	st := NewTaskStore()
	ctx := context.Background()

	task := newTask(t, uuid.New(), "t", time.Now().Add(-time.Minute))
	require.NoError(t, st.Create(ctx, task))

	updated, err := st.UpdateStatus(ctx, task.ID, models.TaskStatusDone)
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusDone, updated.Status)
	require.True(t, updated.UpdatedAt.After(task.UpdatedAt))

	got, err := st.Get(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusDone, got.Status)

	_, err = st.UpdateStatus(ctx, uuid.New(), models.TaskStatusDone)
	require.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskStore_Delete(t *testing.T) {
	st := NewTaskStore()
	ctx := context.Background()

	projectID := uuid.New()
	task := newTask(t, projectID, "t", time.Now())
	require.NoError(t, st.Create(ctx, task))

	deleted, err := st.Delete(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, task.ID, deleted.ID)

	tasks, err := st.ListByProject(ctx, projectID)
	require.NoError(t, err)
	require.Empty(t, tasks)

	_, err = st.Delete(ctx, task.ID)
	require.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskStore_DeleteByProject(t *testing.T) {
	st := NewTaskStore()
	ctx := context.Background()

	p1, p2 := uuid.New(), uuid.New()
	for range 3 {
		require.NoError(t, st.Create(ctx, newTask(t, p1, "t", time.Now())))
	}
	keep := newTask(t, p2, "keep", time.Now())
	require.NoError(t, st.Create(ctx, keep))

	n, err := st.DeleteByProject(ctx, p1)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	n, err = st.DeleteByProject(ctx, p1)
	require.NoError(t, err)
	require.Zero(t, n)

	_, err = st.Get(ctx, keep.ID)
	require.NoError(t, err)
}

func TestStores_Clear(t *testing.T) {
	stores := NewStores()
	ctx := context.Background()

	project := newProject(t, "P1", time.Now())
	require.NoError(t, stores.Projects.Create(ctx, project))
	require.NoError(t, stores.Tasks.Create(ctx, newTask(t, project.ID, "t", time.Now())))
	require.NoError(t, stores.Users.Create(ctx, newUser(t, "alice")))

	require.NoError(t, stores.Clear(ctx))

	projects, err := stores.Projects.List(ctx)
	require.NoError(t, err)
	require.Empty(t, projects)

	tasks, err := stores.Tasks.ListByProject(ctx, project.ID)
	require.NoError(t, err)
	require.Empty(t, tasks)

	_, err = stores.Users.GetByUsername(ctx, "alice")
	require.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestMemoryTaskStoreImplementsInterface(t *testing.T) {
	var _ store.TaskStore = (*TaskStore)(nil)
}
