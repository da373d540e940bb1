package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wolfeidau/tasktracker/internal/models"
)

// TaskCmd manages the tasks of a project.
type TaskCmd struct {
	List   TaskListCmd   `cmd:"" help:"List the tasks of a project"`
	Create TaskCreateCmd `cmd:"" help:"Add a task to a project"`
	Update TaskUpdateCmd `cmd:"" help:"Change the status of a task"`
	Delete TaskDeleteCmd `cmd:"" help:"Delete a task"`
}

type TaskListCmd struct {
	ProjectID uuid.UUID `arg:"" help:"project id"`
}

func (c *TaskListCmd) Run(ctx context.Context, globals *Globals) error {
	s, err := globals.authenticated(ctx)
	if err != nil {
		return err
	}

	list, err := s.client.ListTasks(ctx, c.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	return printTasks(globals, list.Tasks)
}

type TaskCreateCmd struct {
	ProjectID   uuid.UUID `arg:"" help:"project id"`
	Title       string    `arg:"" help:"task title"`
	Description string    `help:"task description" short:"d"`
	Status      string    `help:"initial status" enum:"ToDo,InProgress,Done" default:"ToDo"`
}

func (c *TaskCreateCmd) Run(ctx context.Context, globals *Globals) error {
	s, err := globals.authenticated(ctx)
	if err != nil {
		return err
	}

	task, err := s.client.CreateTask(ctx, c.ProjectID, c.Title, c.Description, models.TaskStatus(c.Status))
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	fmt.Fprintf(globals.out(), "Created task %s\n", task.ID)
	return nil
}

type TaskUpdateCmd struct {
	ID     uuid.UUID `arg:"" help:"task id"`
	Status string    `arg:"" help:"new status" enum:"ToDo,InProgress,Done"`
}

func (c *TaskUpdateCmd) Run(ctx context.Context, globals *Globals) error {
	s, err := globals.authenticated(ctx)
	if err != nil {
		return err
	}

	task, err := s.client.UpdateTaskStatus(ctx, c.ID, models.TaskStatus(c.Status))
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	fmt.Fprintf(globals.out(), "Task %s is now %s\n", task.ID, task.Status)
	return nil
}

type TaskDeleteCmd struct {
	ID uuid.UUID `arg:"" help:"task id"`
}

func (c *TaskDeleteCmd) Run(ctx context.Context, globals *Globals) error {
	s, err := globals.authenticated(ctx)
	if err != nil {
		return err
	}

	task, err := s.client.DeleteTask(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	fmt.Fprintf(globals.out(), "Deleted task %q\n", task.Title)
	return nil
}
