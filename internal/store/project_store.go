package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/tasktracker/internal/models"
)

// ProjectStore defines the interface for project storage operations.
type ProjectStore interface {
	// Create stores a new project.
	Create(ctx context.Context, project *models.Project) error

	// Get retrieves a project by ID.
	// Returns ErrProjectNotFound if the project doesn't exist.
	Get(ctx context.Context, projectID uuid.UUID) (*models.Project, error)

	// List returns all projects ordered by creation time.
	List(ctx context.Context) ([]*models.Project, error)

	// Update replaces the title and description of an existing project and
	// refreshes UpdatedAt on the passed in value.
	// Returns ErrProjectNotFound if the project doesn't exist.
	Update(ctx context.Context, project *models.Project) error

	// Delete removes a project and returns the deleted record.
	// Returns ErrProjectNotFound if the project doesn't exist.
	Delete(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
}
