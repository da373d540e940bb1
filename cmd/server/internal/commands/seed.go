package commands

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/wolfeidau/tasktracker/internal/auth"
	"github.com/wolfeidau/tasktracker/internal/logger"
	"github.com/wolfeidau/tasktracker/internal/models"
	"github.com/wolfeidau/tasktracker/internal/store"
)

//go:embed seed.yaml
var defaultSeed []byte

// SeedCmd clears the stores and loads a fixture of users, projects and tasks.
type SeedCmd struct {
	File       string     `help:"seed fixture file (defaults to the built in fixture)" default:"" env:"TASKTRACKER_SEED_FILE"`
	BcryptCost int        `help:"bcrypt cost factor for seeded passwords" default:"10" env:"TASKTRACKER_BCRYPT_COST"`
	Stores     StoreFlags `embed:""`
}

// SeedData is the fixture format.
type SeedData struct {
	Users    []SeedUser    `yaml:"users"`
	Projects []SeedProject `yaml:"projects"`
}

type SeedUser struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type SeedProject struct {
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Tasks       []SeedTask `yaml:"tasks"`
}

type SeedTask struct {
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Status      models.TaskStatus `yaml:"status"`
}

// SeedResult counts the records created by a seed run.
type SeedResult struct {
	Users    int
	Projects int
	Tasks    int
}

func (c *SeedCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	raw := defaultSeed
	if c.File != "" {
		var err error
		raw, err = os.ReadFile(c.File)
		if err != nil {
			return fmt.Errorf("failed to read seed file: %w", err)
		}
	}

	data, err := parseSeed(raw)
	if err != nil {
		return err
	}

	stores, closeStores, err := c.Stores.openStores(ctx, log)
	if err != nil {
		return err
	}
	defer closeStores()

	result, err := applySeed(ctx, log, stores, auth.NewBcryptHasher(c.BcryptCost), data)
	if err != nil {
		return err
	}

	log.Info().
		Int("users", result.Users).
		Int("projects", result.Projects).
		Int("tasks", result.Tasks).
		Msg("Seed data loaded")

	if c.Stores.StoreType == "memory" {
		log.Warn().Msg("Seeded in-memory stores are discarded when this command exits")
	}
	return nil
}

func parseSeed(raw []byte) (*SeedData, error) {
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}

	for _, u := range data.Users {
		if u.Username == "" || u.Password == "" {
			return nil, errors.New("seed users need a username and password")
		}
	}
	for _, p := range data.Projects {
		if p.Title == "" {
			return nil, errors.New("seed projects need a title")
		}
		for _, t := range p.Tasks {
			if t.Title == "" {
				return nil, fmt.Errorf("seed task in project %q needs a title", p.Title)
			}
			if t.Status != "" && !t.Status.Valid() {
				return nil, fmt.Errorf("seed task %q has invalid status %q", t.Title, t.Status)
			}
		}
	}

	return &data, nil
}

// applySeed clears every store then creates the records in data.
func applySeed(ctx context.Context, log zerolog.Logger, stores store.Stores, hasher auth.PasswordHasher, data *SeedData) (SeedResult, error) {
	var result SeedResult

	if err := stores.Clear(ctx); err != nil {
		return result, fmt.Errorf("failed to clear stores: %w", err)
	}
	log.Info().Msg("Old data cleared")

	for _, u := range data.Users {
		hash, err := hasher.Hash(u.Password)
		if err != nil {
			return result, fmt.Errorf("failed to hash password for %q: %w", u.Username, err)
		}

		id, err := uuid.NewV7()
		if err != nil {
			return result, err
		}

		user := &models.User{
			ID:           id,
			Username:     u.Username,
			PasswordHash: hash,
			CreatedAt:    time.Now().UTC(),
		}
		if err := stores.Users.Create(ctx, user); err != nil {
			return result, fmt.Errorf("failed to create user %q: %w", u.Username, err)
		}
		log.Debug().Str("username", user.Username).Msg("User created")
		result.Users++
	}

	for _, p := range data.Projects {
		id, err := uuid.NewV7()
		if err != nil {
			return result, err
		}

		now := time.Now().UTC()
		project := &models.Project{
			ID:          id,
			Title:       p.Title,
			Description: p.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := stores.Projects.Create(ctx, project); err != nil {
			return result, fmt.Errorf("failed to create project %q: %w", p.Title, err)
		}
		result.Projects++

		for _, t := range p.Tasks {
			id, err := uuid.NewV7()
			if err != nil {
				return result, err
			}

			status := t.Status
			if status == "" {
				status = models.TaskStatusToDo
			}

			now := time.Now().UTC()
			task := &models.Task{
				ID:          id,
				ProjectID:   project.ID,
				Title:       t.Title,
				Description: t.Description,
				Status:      status,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := stores.Tasks.Create(ctx, task); err != nil {
				return result, fmt.Errorf("failed to create task %q: %w", t.Title, err)
			}
			result.Tasks++
		}
		log.Debug().Str("title", project.Title).Int("tasks", len(p.Tasks)).Msg("Project created")
	}

	return result, nil
}
