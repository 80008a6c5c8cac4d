package postgres

import (
	"context"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5"

	"land-registry-workflow/internal/domain"
	"land-registry-workflow/internal/storage"
)

// AttemptStore implements storage.AttemptStore using PostgreSQL. Values are
// stored as NUMERIC(78,0): minor-unit amounts exceed bigint range.
type AttemptStore struct {
	pool *Pool
}

// NewAttemptStore creates a new AttemptStore.
func NewAttemptStore(pool *Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AttemptStore = (*AttemptStore)(nil)

// Insert adds a new attempt. Returns ErrDuplicateKey if attempt_id exists.
func (s *AttemptStore) Insert(ctx context.Context, a *domain.WorkflowAttempt) error {
	if a == nil || a.AttemptID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO workflow_attempts (
			attempt_id, kind, account, land_id, location, value, pinned_ref, outcome, reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.pool.Exec(ctx, query,
		a.AttemptID,
		string(a.Kind),
		a.Account,
		a.LandID,
		a.Location,
		valueString(a.Value),
		a.PinnedRef,
		a.Outcome,
		a.Reason,
		a.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// GetByID retrieves an attempt by its ID. Returns ErrNotFound if not exists.
func (s *AttemptStore) GetByID(ctx context.Context, attemptID string) (*domain.WorkflowAttempt, error) {
	query := `
		SELECT attempt_id, kind, account, land_id, location, value, pinned_ref, outcome, reason, created_at
		FROM workflow_attempts
		WHERE attempt_id = $1
	`

	row := s.pool.QueryRow(ctx, query, attemptID)
	a, err := scanAttempt(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get attempt by id: %w", err)
	}
	return a, nil
}

// GetByAccount retrieves all attempts by an account, ordered by created_at ASC.
func (s *AttemptStore) GetByAccount(ctx context.Context, account string) ([]*domain.WorkflowAttempt, error) {
	query := `
		SELECT attempt_id, kind, account, land_id, location, value, pinned_ref, outcome, reason, created_at
		FROM workflow_attempts
		WHERE account = $1
		ORDER BY created_at ASC, attempt_id ASC
	`

	rows, err := s.pool.Query(ctx, query, account)
	if err != nil {
		return nil, fmt.Errorf("get attempts by account: %w", err)
	}
	defer rows.Close()

	return scanAttempts(rows)
}

// GetByKind retrieves all attempts of a kind, ordered by created_at ASC.
func (s *AttemptStore) GetByKind(ctx context.Context, kind domain.AttemptKind) ([]*domain.WorkflowAttempt, error) {
	query := `
		SELECT attempt_id, kind, account, land_id, location, value, pinned_ref, outcome, reason, created_at
		FROM workflow_attempts
		WHERE kind = $1
		ORDER BY created_at ASC, attempt_id ASC
	`

	rows, err := s.pool.Query(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("get attempts by kind: %w", err)
	}
	defer rows.Close()

	return scanAttempts(rows)
}

// GetByLand retrieves all attempts targeting a record, ordered by created_at ASC.
func (s *AttemptStore) GetByLand(ctx context.Context, landID int64) ([]*domain.WorkflowAttempt, error) {
	query := `
		SELECT attempt_id, kind, account, land_id, location, value, pinned_ref, outcome, reason, created_at
		FROM workflow_attempts
		WHERE land_id = $1
		ORDER BY created_at ASC, attempt_id ASC
	`

	rows, err := s.pool.Query(ctx, query, landID)
	if err != nil {
		return nil, fmt.Errorf("get attempts by land: %w", err)
	}
	defer rows.Close()

	return scanAttempts(rows)
}

// scanAttempt scans a single row into a WorkflowAttempt.
func scanAttempt(row pgx.Row) (*domain.WorkflowAttempt, error) {
	var a domain.WorkflowAttempt
	var kindStr string
	var valueStr *string

	err := row.Scan(
		&a.AttemptID,
		&kindStr,
		&a.Account,
		&a.LandID,
		&a.Location,
		&valueStr,
		&a.PinnedRef,
		&a.Outcome,
		&a.Reason,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Kind = domain.AttemptKind(kindStr)
	if err := setValue(&a, valueStr); err != nil {
		return nil, err
	}
	return &a, nil
}

// scanAttempts scans multiple rows into a slice of WorkflowAttempt.
func scanAttempts(rows pgx.Rows) ([]*domain.WorkflowAttempt, error) {
	var attempts []*domain.WorkflowAttempt

	for rows.Next() {
		var a domain.WorkflowAttempt
		var kindStr string
		var valueStr *string

		err := rows.Scan(
			&a.AttemptID,
			&kindStr,
			&a.Account,
			&a.LandID,
			&a.Location,
			&valueStr,
			&a.PinnedRef,
			&a.Outcome,
			&a.Reason,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan attempt row: %w", err)
		}

		a.Kind = domain.AttemptKind(kindStr)
		if err := setValue(&a, valueStr); err != nil {
			return nil, err
		}
		attempts = append(attempts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempt rows: %w", err)
	}

	return attempts, nil
}

// valueString renders a minor-unit amount for NUMERIC storage; nil stays NULL.
func valueString(v *big.Int) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}

func setValue(a *domain.WorkflowAttempt, s *string) error {
	if s == nil {
		return nil
	}
	v, ok := new(big.Int).SetString(*s, 10)
	if !ok {
		return fmt.Errorf("attempt %s has malformed value %q", a.AttemptID, *s)
	}
	a.Value = v
	return nil
}
