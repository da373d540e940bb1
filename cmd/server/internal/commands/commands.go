package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/tasktracker/internal/store"
	memorystore "github.com/wolfeidau/tasktracker/internal/store/memory"
	postgresstore "github.com/wolfeidau/tasktracker/internal/store/postgres"
)

type Globals struct {
	Debug   bool
	Version string
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	// Create HTTP server
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`
	PingAttempts    uint  `help:"attempts to reach the database on startup" default:"5" env:"TASKTRACKER_POSTGRES_PING_ATTEMPTS"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"TASKTRACKER_POSTGRES_AUTO_MIGRATE"`
}

func (s *PostgresStoreFlags) Validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

func (s *PostgresStoreFlags) poolConfig() *postgresstore.PoolConfig {
	return &postgresstore.PoolConfig{
		ConnString:      s.ConnString,
		MaxConns:        s.MaxConns,
		MinConns:        s.MinConns,
		MaxConnLifetime: s.MaxConnLifetime,
		MaxConnIdleTime: s.MaxConnIdleTime,
		PingAttempts:    s.PingAttempts,
	}
}

// StoreFlags selects and configures the backing stores.
type StoreFlags struct {
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"TASKTRACKER_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

// openStores creates the configured stores. The returned close function
// releases any connections and is always non-nil when err is nil.
func (f *StoreFlags) openStores(ctx context.Context, log zerolog.Logger) (store.Stores, func(), error) {
	switch f.StoreType {
	case "postgres":
		if err := f.PostgresStore.Validate(); err != nil {
			return store.Stores{}, nil, fmt.Errorf("failed to validate postgres flags: %w", err)
		}

		pool, err := postgresstore.NewPool(ctx, f.PostgresStore.poolConfig())
		if err != nil {
			return store.Stores{}, nil, fmt.Errorf("failed to create connection pool: %w", err)
		}

		if f.PostgresStore.AutoMigrate {
			applied, err := postgresstore.RunMigrations(ctx, pool)
			if err != nil {
				pool.Close()
				return store.Stores{}, nil, fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Info().Int("applied", applied).Msg("Database migrations completed")
		}

		log.Info().Msg("Using PostgreSQL stores with shared connection pool")
		return postgresstore.NewStores(pool), pool.Close, nil

	default:
		log.Info().Msg("Using in-memory stores")
		return memorystore.NewStores(), func() {}, nil
	}
}
