package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/tasktracker/internal/store"
)

// NewStores creates the user, project and task stores over one shared pool.
func NewStores(pool *pgxpool.Pool) store.Stores {
	return store.Stores{
		Users:    NewUserStore(pool),
		Projects: NewProjectStore(pool),
		Tasks:    NewTaskStore(pool),
	}
}
