package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	httpmiddleware "github.com/wolfeidau/tasktracker/internal/http"
	"github.com/wolfeidau/tasktracker/internal/models"
	"github.com/wolfeidau/tasktracker/internal/store"
	"github.com/wolfeidau/tasktracker/internal/telemetry"
)

type createTaskRequest struct {
	ProjectID   string            `json:"projectId"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
}

type updateTaskRequest struct {
	Status models.TaskStatus `json:"status"`
}

type taskResponse struct {
	Message string       `json:"message"`
	Task    *models.Task `json:"task"`
}

type projectTasksResponse struct {
	Project *models.Project `json:"project"`
	Tasks   []*models.Task  `json:"tasks"`
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) error {
	projectID, err := pathID(r, "projectId", store.ErrProjectNotFound)
	if err != nil {
		return err
	}

	project, err := s.stores.Projects.Get(r.Context(), projectID)
	if err != nil {
		return err
	}

	tasks, err := s.stores.Tasks.ListByProject(r.Context(), projectID)
	if err != nil {
		return err
	}

	httpmiddleware.WriteJSON(w, r, http.StatusOK, projectTasksResponse{
		Project: project,
		Tasks:   tasks,
	})
	return nil
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) error {
	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	if req.ProjectID == "" || strings.TrimSpace(req.Title) == "" {
		return badRequest("Project ID and title are required")
	}

	status := models.TaskStatusToDo
	if req.Status != "" {
		if !req.Status.Valid() {
			return badRequest("Invalid status")
		}
		status = req.Status
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return store.ErrProjectNotFound
	}

	if _, err := s.stores.Projects.Get(r.Context(), projectID); err != nil {
		return err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:          id,
		ProjectID:   projectID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.stores.Tasks.Create(r.Context(), task); err != nil {
		return err
	}

	telemetry.GetMetrics().TasksCreatedTotal.Add(r.Context(), 1)

	httpmiddleware.WriteJSON(w, r, http.StatusCreated, taskResponse{
		Message: "Task created successfully",
		Task:    task,
	})
	return nil
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) error {
	taskID, err := pathID(r, "taskId", store.ErrTaskNotFound)
	if err != nil {
		return err
	}

	var req updateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	if req.Status == "" {
		return badRequest("Status is required")
	}
	if !req.Status.Valid() {
		return badRequest("Invalid status")
	}

	task, err := s.stores.Tasks.UpdateStatus(r.Context(), taskID, req.Status)
	if err != nil {
		return err
	}

	httpmiddleware.WriteJSON(w, r, http.StatusOK, taskResponse{
		Message: "Task status updated successfully",
		Task:    task,
	})
	return nil
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) error {
	taskID, err := pathID(r, "taskId", store.ErrTaskNotFound)
	if err != nil {
		return err
	}

	task, err := s.stores.Tasks.Delete(r.Context(), taskID)
	if err != nil {
		return err
	}

	httpmiddleware.WriteJSON(w, r, http.StatusOK, taskResponse{
		Message: "Task deleted successfully",
		Task:    task,
	})
	return nil
}
