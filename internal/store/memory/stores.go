package memory

import "github.com/wolfeidau/tasktracker/internal/store"

// NewStores creates a full set of in-memory stores.
func NewStores() store.Stores {
	return store.Stores{
		Users:    NewUserStore(),
		Projects: NewProjectStore(),
		Tasks:    NewTaskStore(),
	}
}
