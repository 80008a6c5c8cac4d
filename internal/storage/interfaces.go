// Package storage defines the audit-trail persistence contracts. One
// WorkflowAttempt row is written per registration or purchase attempt, so a
// failed draft is never silently discarded and orphaned pins stay traceable.
package storage

import (
	"context"

	"land-registry-workflow/internal/domain"
)

// AttemptStore provides access to workflow_attempts storage.
type AttemptStore interface {
	// Insert adds a new attempt. Returns ErrDuplicateKey if attempt_id exists.
	Insert(ctx context.Context, a *domain.WorkflowAttempt) error

	// GetByID retrieves an attempt by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, attemptID string) (*domain.WorkflowAttempt, error)

	// GetByAccount retrieves all attempts by an account, ordered by created_at ASC.
	GetByAccount(ctx context.Context, account string) ([]*domain.WorkflowAttempt, error)

	// GetByKind retrieves all attempts of a kind, ordered by created_at ASC.
	GetByKind(ctx context.Context, kind domain.AttemptKind) ([]*domain.WorkflowAttempt, error)

	// GetByLand retrieves all attempts targeting a record, ordered by created_at ASC.
	GetByLand(ctx context.Context, landID int64) ([]*domain.WorkflowAttempt, error)
}
