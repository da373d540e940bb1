package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/tasktracker/internal/logger"
	postgresstore "github.com/wolfeidau/tasktracker/internal/store/postgres"
)

// MigrateCmd applies pending PostgreSQL schema migrations and exits.
type MigrateCmd struct {
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

func (c *MigrateCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	if err := c.PostgresStore.Validate(); err != nil {
		return fmt.Errorf("failed to validate postgres flags: %w", err)
	}

	pool, err := postgresstore.NewPool(ctx, c.PostgresStore.poolConfig())
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	applied, err := postgresstore.RunMigrations(ctx, pool)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Int("applied", applied).Msg("Database migrations completed")
	return nil
}
