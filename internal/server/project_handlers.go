package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	httpmiddleware "github.com/wolfeidau/tasktracker/internal/http"
	"github.com/wolfeidau/tasktracker/internal/models"
	"github.com/wolfeidau/tasktracker/internal/store"
	"github.com/wolfeidau/tasktracker/internal/telemetry"
)

type projectRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type projectResponse struct {
	Message string          `json:"message"`
	Project *models.Project `json:"project"`
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) error {
	projects, err := s.stores.Projects.List(r.Context())
	if err != nil {
		return err
	}

	httpmiddleware.WriteJSON(w, r, http.StatusOK, projects)
	return nil
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) error {
	var req projectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		return badRequest("Title is required")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	project := &models.Project{
		ID:        id,
		Title:     strings.TrimSpace(*req.Title),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Description != nil {
		project.Description = *req.Description
	}

	if err := s.stores.Projects.Create(r.Context(), project); err != nil {
		return err
	}

	telemetry.GetMetrics().ProjectsCreatedTotal.Add(r.Context(), 1)

	httpmiddleware.WriteJSON(w, r, http.StatusCreated, projectResponse{
		Message: "Project created successfully",
		Project: project,
	})
	return nil
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id", store.ErrProjectNotFound)
	if err != nil {
		return err
	}

	project, err := s.stores.Projects.Get(r.Context(), id)
	if err != nil {
		return err
	}

	httpmiddleware.WriteJSON(w, r, http.StatusOK, project)
	return nil
}

// updateProject applies the fields present in the body. Omitted fields keep
// their stored values.
func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id", store.ErrProjectNotFound)
	if err != nil {
		return err
	}

	var req projectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	if req.Title == nil && req.Description == nil {
		return badRequest("Title or description is required")
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return badRequest("Title must not be empty")
	}

	project, err := s.stores.Projects.Get(r.Context(), id)
	if err != nil {
		return err
	}

	if req.Title != nil {
		project.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		project.Description = *req.Description
	}

	if err := s.stores.Projects.Update(r.Context(), project); err != nil {
		return err
	}

	httpmiddleware.WriteJSON(w, r, http.StatusOK, projectResponse{
		Message: "Project updated successfully",
		Project: project,
	})
	return nil
}

// deleteProject removes the project and then its tasks.
func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id", store.ErrProjectNotFound)
	if err != nil {
		return err
	}

	project, err := s.stores.Projects.Delete(r.Context(), id)
	if err != nil {
		return err
	}

	removed, err := s.stores.Tasks.DeleteByProject(r.Context(), id)
	if err != nil {
		return err
	}

	zerolog.Ctx(r.Context()).Info().
		Str("project_id", id.String()).
		Int("tasks_removed", removed).
		Msg("Deleted project")

	httpmiddleware.WriteJSON(w, r, http.StatusOK, projectResponse{
		Message: "Project deleted successfully",
		Project: project,
	})
	return nil
}
