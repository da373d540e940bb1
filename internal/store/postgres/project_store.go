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

const projectColumns = `project_id, title, description, created_at, updated_at`

// ProjectStore implements store.ProjectStore using PostgreSQL.
type ProjectStore struct {
	pool *pgxpool.Pool
}

// NewProjectStore creates a new PostgreSQL-backed project store.
func NewProjectStore(pool *pgxpool.Pool) *ProjectStore {
	return &ProjectStore{
		pool: pool,
	}
}

// Create creates a new project in the database.
func (s *ProjectStore) Create(ctx context.Context, project *models.Project) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES ($1, $2, $3, $4, $5)
	`, project.ID, project.Title, project.Description, project.CreatedAt, project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("project_id", project.ID.String()).
		Msg("Created project")

	return nil
}

// Get retrieves a project by ID.
func (s *ProjectStore) Get(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE project_id = $1
	`, projectID)

	return scanProject(row, "get")
}

// List returns all projects ordered by creation time.
func (s *ProjectStore) List(ctx context.Context) ([]*models.Project, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		ORDER BY created_at, project_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", mapPostgresError(err))
	}
	defer rows.Close()

	projects := make([]*models.Project, 0)
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

// Update updates the title and description of an existing project.
// On success project is refreshed with the stored values.
func (s *ProjectStore) Update(ctx context.Context, project *models.Project) error {
	row := s.pool.QueryRow(ctx, `
		UPDATE projects
		SET title = $2, description = $3, updated_at = NOW()
		WHERE project_id = $1
		RETURNING `+projectColumns,
		project.ID, project.Title, project.Description)

	updated, err := scanProject(row, "update")
	if err != nil {
		return err
	}

	*project = *updated
	return nil
}

// Delete removes a project and returns the deleted record.
// Tasks belonging to the project are removed by the ON DELETE CASCADE constraint.
func (s *ProjectStore) Delete(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	row := s.pool.QueryRow(ctx, `
		DELETE FROM projects
		WHERE project_id = $1
		RETURNING `+projectColumns,
		projectID)

	return scanProject(row, "delete")
}

// Clear removes all projects.
func (s *ProjectStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM projects`); err != nil {
		return fmt.Errorf("failed to clear projects: %w", mapPostgresError(err))
	}
	return nil
}

func scanProject(row pgx.Row, op string) (*models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to %s project: %w", op, mapPostgresError(err))
	}
	return &p, nil
}
