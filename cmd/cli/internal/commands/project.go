package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/wolfeidau/tasktracker/internal/models"
)

const timeFormat = "2006-01-02 15:04:05"

// ProjectCmd manages projects.
type ProjectCmd struct {
	List   ProjectListCmd   `cmd:"" help:"List projects"`
	Create ProjectCreateCmd `cmd:"" help:"Create a project"`
	Get    ProjectGetCmd    `cmd:"" help:"Show a project and its tasks"`
	Update ProjectUpdateCmd `cmd:"" help:"Update a project"`
	Delete ProjectDeleteCmd `cmd:"" help:"Delete a project and its tasks"`
}

type ProjectListCmd struct{}

func (c *ProjectListCmd) Run(ctx context.Context, globals *Globals) error {
	s, err := globals.authenticated(ctx)
	if err != nil {
		return err
	}

	projects, err := s.client.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	if len(projects) == 0 {
		fmt.Fprintln(globals.out(), "No projects found.")
		return nil
	}

	w := tabwriter.NewWriter(globals.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDESCRIPTION\tCREATED")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Title, truncate(p.Description, 40), p.CreatedAt.Local().Format(timeFormat))
	}
	return w.Flush()
}

type ProjectCreateCmd struct {
	Title       string `arg:"" help:"project title"`
	Description string `help:"project description" short:"d"`
}

func (c *ProjectCreateCmd) Run(ctx context.Context, globals *Globals) error {
	s, err := globals.authenticated(ctx)
	if err != nil {
		return err
	}

	project, err := s.client.CreateProject(ctx, c.Title, c.Description)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	fmt.Fprintf(globals.out(), "Created project %s\n", project.ID)
	return nil
}

type ProjectGetCmd struct {
	ID uuid.UUID `arg:"" help:"project id"`
}

func (c *ProjectGetCmd) Run(ctx context.Context, globals *Globals) error {
	s, err := globals.authenticated(ctx)
	if err != nil {
		return err
	}

	list, err := s.client.ListTasks(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}

	out := globals.out()
	fmt.Fprintf(out, "Title:       %s\n", list.Project.Title)
	fmt.Fprintf(out, "Description: %s\n", list.Project.Description)
	fmt.Fprintf(out, "Created:     %s\n", list.Project.CreatedAt.Local().Format(timeFormat))
	fmt.Fprintf(out, "Updated:     %s\n", list.Project.UpdatedAt.Local().Format(timeFormat))
	fmt.Fprintln(out)

	return printTasks(globals, list.Tasks)
}

type ProjectUpdateCmd struct {
	ID          uuid.UUID `arg:"" help:"project id"`
	Title       *string   `help:"new title"`
	Description *string   `help:"new description" short:"d"`
}

func (c *ProjectUpdateCmd) Run(ctx context.Context, globals *Globals) error {
	if c.Title == nil && c.Description == nil {
		return errors.New("nothing to update, pass --title and/or --description")
	}

	s, err := globals.authenticated(ctx)
	if err != nil {
		return err
	}

	project, err := s.client.UpdateProject(ctx, c.ID, c.Title, c.Description)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	fmt.Fprintf(globals.out(), "Updated project %s\n", project.ID)
	return nil
}

type ProjectDeleteCmd struct {
	ID uuid.UUID `arg:"" help:"project id"`
}

func (c *ProjectDeleteCmd) Run(ctx context.Context, globals *Globals) error {
	s, err := globals.authenticated(ctx)
	if err != nil {
		return err
	}

	project, err := s.client.DeleteProject(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	fmt.Fprintf(globals.out(), "Deleted project %q\n", project.Title)
	return nil
}

func printTasks(globals *Globals, tasks []models.Task) error {
	if len(tasks) == 0 {
		fmt.Fprintln(globals.out(), "No tasks found.")
		return nil
	}

	w := tabwriter.NewWriter(globals.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTITLE\tUPDATED")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Status, truncate(t.Title, 40), t.UpdatedAt.Local().Format(timeFormat))
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
