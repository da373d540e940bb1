package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "user", err: ErrUserNotFound, want: true},
		{name: "project", err: ErrProjectNotFound, want: true},
		{name: "wrapped task", err: fmt.Errorf("lookup: %w", ErrTaskNotFound), want: true},
		{name: "already exists", err: ErrUserAlreadyExists, want: false},
		{name: "other", err: errors.New("boom"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsNotFound(tt.err))
		})
	}
}

type recordingClearer struct {
	name  string
	order *[]string
	err   error
}

func (r *recordingClearer) Clear(ctx context.Context) error {
	*r.order = append(*r.order, r.name)
	return r.err
}

type clearableUsers struct {
	UserStore
	recordingClearer
}

type clearableProjects struct {
	ProjectStore
	recordingClearer
}

type clearableTasks struct {
	TaskStore
	recordingClearer
}

func TestStoresClear(t *testing.T) {
	t.Run("clears tasks before projects before users", func(t *testing.T) {
		var order []string
		stores := Stores{
			Users:    &clearableUsers{recordingClearer: recordingClearer{name: "users", order: &order}},
			Projects: &clearableProjects{recordingClearer: recordingClearer{name: "projects", order: &order}},
			Tasks:    &clearableTasks{recordingClearer: recordingClearer{name: "tasks", order: &order}},
		}

		require.NoError(t, stores.Clear(context.Background()))
		require.Equal(t, []string{"tasks", "projects", "users"}, order)
	})

	t.Run("stops at first error", func(t *testing.T) {
		var order []string
		boom := errors.New("boom")
		stores := Stores{
			Users:    &clearableUsers{recordingClearer: recordingClearer{name: "users", order: &order}},
			Projects: &clearableProjects{recordingClearer: recordingClearer{name: "projects", order: &order, err: boom}},
			Tasks:    &clearableTasks{recordingClearer: recordingClearer{name: "tasks", order: &order}},
		}

		require.ErrorIs(t, stores.Clear(context.Background()), boom)
		require.Equal(t, []string{"tasks", "projects"}, order)
	})
}
