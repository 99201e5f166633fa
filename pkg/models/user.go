package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account referenced (loosely, by username) from diagnosis records.
type User struct {
	ID           uuid.UUID `db:"id"            json:"id"`
	Username     string    `db:"username"      json:"username"`
	Name         *string   `db:"name"          json:"name,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
}
