package models

import (
	"time"

	"github.com/google/uuid"
)

// DiagnosisRecord is a persisted diagnosis, keyed to a user by a free-form
// identifier string (no FK to the users table).
type DiagnosisRecord struct {
	ID         uuid.UUID `db:"id"         json:"id"`
	Username   string    `db:"username"   json:"user"`
	Filename   string    `db:"filename"   json:"filename"`
	Disease    string    `db:"disease"    json:"disease"`
	Confidence float64   `db:"confidence" json:"confidence"`
	Record     CDDM      `db:"record"     json:"record"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
