package models

import (
	"time"

	"github.com/google/uuid"
)

// Project groups tasks.
type Project struct {
	ID          uuid.UUID `json:"id"` // UUIDv7
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
