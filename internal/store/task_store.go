package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/tasktracker/internal/models"
)

// TaskStore defines the interface for task storage operations.
type TaskStore interface {
	// Create stores a new task.
	// Returns ErrProjectNotFound if the store can detect that the project does not exist.
	Create(ctx context.Context, task *models.Task) error

	// Get retrieves a task by ID.
	// Returns ErrTaskNotFound if the task doesn't exist.
	Get(ctx context.Context, taskID uuid.UUID) (*models.Task, error)

	// ListByProject returns the tasks of a project ordered by creation time.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error)

	// UpdateStatus sets the status of a task and returns the updated record.
	// Returns ErrTaskNotFound if the task doesn't exist.
	UpdateStatus(ctx context.Context, taskID uuid.UUID, status models.TaskStatus) (*models.Task, error)

	// Delete removes a task and returns the deleted record.
	// Returns ErrTaskNotFound if the task doesn't exist.
	Delete(ctx context.Context, taskID uuid.UUID) (*models.Task, error)

	// DeleteByProject removes all tasks belonging to a project and returns how many were removed.
	DeleteByProject(ctx context.Context, projectID uuid.UUID) (int, error)
}
