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

// TaskStore implements store.TaskStore using in-memory storage.
// This implementation is for development and testing - data is lost on restart.
type TaskStore struct {
	mu sync.RWMutex

	tasks          map[uuid.UUID]*models.Task // task_id -> Task
	tasksByProject map[uuid.UUID][]uuid.UUID  // project_id -> []task_id
}

// NewTaskStore creates a new in-memory task store.
func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks:          make(map[uuid.UUID]*models.Task),
		tasksByProject: make(map[uuid.UUID][]uuid.UUID),
	}
}

// Create creates a new task in memory.
func (s *TaskStore) Create(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *task
	s.tasks[task.ID] = &clone

	// Update project index
	s.tasksByProject[task.ProjectID] = append(s.tasksByProject[task.ProjectID], task.ID)

	return nil
}

// Get retrieves a task by ID.
func (s *TaskStore) Get(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return nil, store.ErrTaskNotFound
	}

	clone := *task
	return &clone, nil
}

// ListByProject returns the tasks of a project ordered by creation time.
func (s *TaskStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.tasksByProject[projectID]
	result := make([]*models.Task, 0, len(ids))
	for _, id := range ids {
		if task, ok := s.tasks[id]; ok {
			clone := *task
			result = append(result, &clone)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

// UpdateStatus sets the status of a task.
func (s *TaskStore) UpdateStatus(ctx context.Context, taskID uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return nil, store.ErrTaskNotFound
	}

	task.Status = status
	task.UpdatedAt = time.Now()

	clone := *task
	return &clone, nil
}

// Delete removes a task and returns the deleted record.
func (s *TaskStore) Delete(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return nil, store.ErrTaskNotFound
	}

	s.removeFromProjectIndex(task.ProjectID, taskID)
	delete(s.tasks, taskID)

	return task, nil
}

// DeleteByProject removes all tasks for a project.
func (s *TaskStore) DeleteByProject(ctx context.Context, projectID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, exists := s.tasksByProject[projectID]
	if !exists {
		return 0, nil
	}

	for _, id := range ids {
		delete(s.tasks, id)
	}
	delete(s.tasksByProject, projectID)

	return len(ids), nil
}

// Clear removes all tasks.
func (s *TaskStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = make(map[uuid.UUID]*models.Task)
	s.tasksByProject = make(map[uuid.UUID][]uuid.UUID)
	return nil
}

// removeFromProjectIndex removes a task ID from the project's task list.
func (s *TaskStore) removeFromProjectIndex(projectID, taskID uuid.UUID) {
	ids := s.tasksByProject[projectID]
	for i, id := range ids {
		if id == taskID {
			s.tasksByProject[projectID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	// Clean up empty entries
	if len(s.tasksByProject[projectID]) == 0 {
		delete(s.tasksByProject, projectID)
	}
}
