package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/tasktracker/internal/models"
	"github.com/wolfeidau/tasktracker/internal/store"
)

const taskColumns = `task_id, project_id, title, description, status, created_at, updated_at`

// TaskStore implements store.TaskStore using PostgreSQL.
type TaskStore struct {
	pool *pgxpool.Pool
}

// NewTaskStore creates a new PostgreSQL-backed task store.
func NewTaskStore(pool *pgxpool.Pool) *TaskStore {
	return &TaskStore{
		pool: pool,
	}
}

// Create creates a new task in the database.
// Returns store.ErrProjectNotFound when the referenced project does not exist.
func (s *TaskStore) Create(ctx context.Context, task *models.Task) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, task.ID, task.ProjectID, task.Title, task.Description, string(task.Status), task.CreatedAt, task.UpdatedAt)
	if err != nil {
		err = mapPostgresError(err)
		if errors.Is(err, store.ErrProjectNotFound) {
			return store.ErrProjectNotFound
		}
		return fmt.Errorf("failed to create task: %w", err)
	}

	log.Debug().
		Str("task_id", task.ID.String()).
		Str("project_id", task.ProjectID.String()).
		Msg("Created task")

	return nil
}

// Get retrieves a task by ID.
func (s *TaskStore) Get(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE task_id = $1
	`, taskID)

	return scanTask(row, "get")
}

// ListByProject returns the tasks of a project ordered by creation time.
func (s *TaskStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE project_id = $1
		ORDER BY created_at, task_id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", mapPostgresError(err))
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows, "list")
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// UpdateStatus sets the status of a task.
func (s *TaskStore) UpdateStatus(ctx context.Context, taskID uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE tasks
		SET status = $2, updated_at = NOW()
		WHERE task_id = $1
		RETURNING `+taskColumns,
		taskID, string(status))

	return scanTask(row, "update")
}

// Delete removes a task and returns the deleted record.
func (s *TaskStore) Delete(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	row := s.pool.QueryRow(ctx, `
		DELETE FROM tasks
		WHERE task_id = $1
		RETURNING `+taskColumns,
		taskID)

	return scanTask(row, "delete")
}

// DeleteByProject removes all tasks for a project.
func (s *TaskStore) DeleteByProject(ctx context.Context, projectID uuid.UUID) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE project_id = $1`, projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks: %w", mapPostgresError(err))
	}
	return int(tag.RowsAffected()), nil
}

// Clear removes all tasks.
func (s *TaskStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("failed to clear tasks: %w", mapPostgresError(err))
	}
	return nil
}

func scanTask(row pgx.Row, op string) (*models.Task, error) {
	var t models.Task
	var status string
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to %s task: %w", op, mapPostgresError(err))
	}
	t.Status = models.TaskStatus(status)
	return &t, nil
}
