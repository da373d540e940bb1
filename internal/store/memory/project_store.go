package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/tasktracker/internal/models"
	"github.com/wolfeidau/tasktracker/internal/store"
)

// ProjectStore implements store.ProjectStore using in-memory storage.
// This implementation is for development and testing - data is lost on restart.
type ProjectStore struct {
	mu sync.RWMutex

	projects map[uuid.UUID]*models.Project // project_id -> Project
}

// NewProjectStore creates a new in-memory project store.
func NewProjectStore() *ProjectStore {
	return &ProjectStore{
		projects: make(map[uuid.UUID]*models.Project),
	}
}

// Create creates a new project in memory.
func (s *ProjectStore) Create(ctx context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *project
	s.projects[project.ID] = &clone

	return nil
}

// Get retrieves a project by ID.
func (s *ProjectStore) Get(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, exists := s.projects[projectID]
	if !exists {
		return nil, store.ErrProjectNotFound
	}

	clone := *project
	return &clone, nil
}

// List returns all projects ordered by creation time.
func (s *ProjectStore) List(ctx context.Context) ([]*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		clone := *p
		result = append(result, &clone)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID.String() < result[j].ID.String()
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

// Update updates the mutable fields of an existing project.
func (s *ProjectStore) Update(ctx context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.projects[project.ID]
	if !exists {
		return store.ErrProjectNotFound
	}

	existing.Title = project.Title
	existing.Description = project.Description
	existing.UpdatedAt = time.Now()

	*project = *existing

	return nil
}

// Delete removes a project and returns the deleted record.
func (s *ProjectStore) Delete(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, exists := s.projects[projectID]
	if !exists {
		return nil, store.ErrProjectNotFound
	}

	delete(s.projects, projectID)

	return project, nil
}

// Clear removes all projects.
func (s *ProjectStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects = make(map[uuid.UUID]*models.Project)
	return nil
}
