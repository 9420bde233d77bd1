// Package models contains shared data models used across the todo API.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is a tenant: an external integrator issued exactly one API key.
// Only the key digest is persisted; the raw key is shown once at creation.
type Company struct {
	ID           uuid.UUID `db:"id"             json:"id"`
	Name         string    `db:"name"           json:"name"`
	APIKeyDigest string    `db:"api_key_digest" json:"-"`
	CreatedAt    time.Time `db:"created_at"     json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"     json:"updated_at"`

	// APIKey is the raw credential the company authenticated with on the
	// current request. It is never loaded from storage nor serialized.
	APIKey string `db:"-" json:"-"`
}
