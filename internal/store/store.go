package store

import (
	"context"
	"errors"

	"github.com/cropcareai/cropcare/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// CreateDiagnosis persists one record atomically. Records are never
	// updated after insert.
	CreateDiagnosis(ctx context.Context, rec *models.DiagnosisRecord) error
	// ListDiagnosesByUser returns records for a user ordered by creation
	// time descending. limit <= 0 means no cap. An empty username matches
	// no rows.
	ListDiagnosesByUser(ctx context.Context, username string, limit int) ([]*models.DiagnosisRecord, error)
	// DeleteDiagnosesByUser removes every record for the user and returns
	// how many were removed. Idempotent.
	DeleteDiagnosesByUser(ctx context.Context, username string) (int64, error)
	// CountDiagnosesByUser groups all records by owning user.
	CountDiagnosesByUser(ctx context.Context) (map[string]int, error)
}
