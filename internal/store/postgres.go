package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cropcareai/cropcare/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Users ---

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username, name, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Username, user.Name, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, name, password_hash, created_at FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &u, nil
}

// --- Diagnoses ---

func (s *PostgresStore) CreateDiagnosis(ctx context.Context, rec *models.DiagnosisRecord) error {
	record, err := json.Marshal(rec.Record)
	if err != nil {
		return fmt.Errorf("marshal cddm record: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO diagnoses (id, username, filename, disease, confidence, record, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.Username, rec.Filename, rec.Disease, rec.Confidence, record, rec.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create diagnosis: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListDiagnosesByUser(ctx context.Context, username string, limit int) ([]*models.DiagnosisRecord, error) {
	query := `SELECT id, username, filename, disease, confidence, record, created_at
	          FROM diagnoses WHERE username = $1 ORDER BY created_at DESC`
	args := []any{username}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list diagnoses: %w", err)
	}
	defer rows.Close()

	records := []*models.DiagnosisRecord{}
	for rows.Next() {
		var rec models.DiagnosisRecord
		var record []byte
		if err := rows.Scan(&rec.ID, &rec.Username, &rec.Filename, &rec.Disease,
			&rec.Confidence, &record, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan diagnosis: %w", err)
		}
		if err := json.Unmarshal(record, &rec.Record); err != nil {
			return nil, fmt.Errorf("unmarshal cddm record: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func (s *PostgresStore) DeleteDiagnosesByUser(ctx context.Context, username string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM diagnoses WHERE username = $1`, username)
	if err != nil {
		return 0, fmt.Errorf("delete diagnoses: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) CountDiagnosesByUser(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT username, COUNT(*) FROM diagnoses GROUP BY username`)
	if err != nil {
		return nil, fmt.Errorf("count diagnoses: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var username string
		var count int
		if err := rows.Scan(&username, &count); err != nil {
			return nil, fmt.Errorf("scan diagnosis count: %w", err)
		}
		counts[username] = count
	}
	return counts, rows.Err()
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
