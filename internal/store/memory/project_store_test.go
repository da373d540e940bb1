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

func newProject(t *testing.T, title string, createdAt time.Time) *models.Project {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return &models.Project{
		ID:          id,
		Title:       title,
		Description: title + " description",
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func TestProjectStore_CreateAndGet(t *testing.T) {
	st := NewProjectStore()
	ctx := context.Background()

	project := newProject(t, "P1", time.Now())
	require.NoError(t, st.Create(ctx, project))

	got, err := st.Get(ctx, project.ID)
	require.NoError(t, err)
	require.Equal(t, "P1", got.Title)

	_, err = st.Get(ctx, uuid.New())
	require.ErrorIs(t, err, store.ErrProjectNotFound)
}

func TestProjectStore_List(t *testing.T) {
	st := NewProjectStore()
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		projects, err := st.List(ctx)
		require.NoError(t, err)
		require.Empty(t, projects)
	})

	t.Run("ordered by creation time", func(t *testing.T) {
		now := time.Now()
		require.NoError(t, st.Create(ctx, newProject(t, "second", now.Add(time.Second))))
		require.NoError(t, st.Create(ctx, newProject(t, "first", now)))
		require.NoError(t, st.Create(ctx, newProject(t, "third", now.Add(2*time.Second))))

		projects, err := st.List(ctx)
		require.NoError(t, err)
		require.Len(t, projects, 3)
		require.Equal(t, "first", projects[0].Title)
		require.Equal(t, "second", projects[1].Title)
		require.Equal(t, "third", projects[2].Title)
	})
}

func TestProjectStore_Update(t *testing.T) {
	st := NewProjectStore()
	ctx := context.Background()

	created := time.Now().Add(-time.Hour)
	project := newProject(t, "P1", created)
	require.NoError(t, st.Create(ctx, project))

	t.Run("updates title and description", func(t *testing.T) {
		update := &models.Project{ID: project.ID, Title: "renamed", Description: "new"}
		require.NoError(t, st.Update(ctx, update))

		require.Equal(t, "renamed", update.Title)
		require.True(t, update.CreatedAt.Equal(created))
		require.True(t, update.UpdatedAt.After(created))

		got, err := st.Get(ctx, project.ID)
		require.NoError(t, err)
		require.Equal(t, "renamed", got.Title)
		require.Equal(t, "new", got.Description)
	})

	t.Run("unknown project", func(t *testing.T) {
		err := st.Update(ctx, &models.Project{ID: uuid.New(), Title: "x"})
		require.ErrorIs(t, err, store.ErrProjectNotFound)
	})
}

func TestProjectStore_Delete(t *testing.T) {
	st := NewProjectStore()
	ctx := context.Background()

	project := newProject(t, "P1", time.Now())
	require.NoError(t, st.Create(ctx, project))

	deleted, err := st.Delete(ctx, project.ID)
	require.NoError(t, err)
	require.Equal(t, project.ID, deleted.ID)

	_, err = st.Delete(ctx, project.ID)
	require.ErrorIs(t, err, store.ErrProjectNotFound)
}

func TestMemoryProjectStoreImplementsInterface(t *testing.T) {
	var _ store.ProjectStore = (*ProjectStore)(nil)
}
