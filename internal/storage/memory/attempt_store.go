package memory

import (
	"context"
	"math/big"
	"sort"
	"sync"

	"land-registry-workflow/internal/domain"
	"land-registry-workflow/internal/storage"
)

// AttemptStore is an in-memory implementation of storage.AttemptStore.
type AttemptStore struct {
	mu   sync.RWMutex
	data map[string]*domain.WorkflowAttempt // keyed by attempt_id
}

// NewAttemptStore creates a new in-memory attempt store.
func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		data: make(map[string]*domain.WorkflowAttempt),
	}
}

// Compile-time interface check.
var _ storage.AttemptStore = (*AttemptStore)(nil)

// Insert adds a new attempt. Returns ErrDuplicateKey if attempt_id exists.
func (s *AttemptStore) Insert(_ context.Context, a *domain.WorkflowAttempt) error {
	if a == nil || a.AttemptID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[a.AttemptID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[a.AttemptID] = cloneAttempt(a)
	return nil
}

// GetByID retrieves an attempt by its ID. Returns ErrNotFound if not exists.
func (s *AttemptStore) GetByID(_ context.Context, attemptID string) (*domain.WorkflowAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.data[attemptID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return cloneAttempt(a), nil
}

// GetByAccount retrieves all attempts by an account, ordered by created_at ASC.
func (s *AttemptStore) GetByAccount(_ context.Context, account string) ([]*domain.WorkflowAttempt, error) {
	return s.collect(func(a *domain.WorkflowAttempt) bool {
		return a.Account == account
	}), nil
}

// GetByKind retrieves all attempts of a kind, ordered by created_at ASC.
func (s *AttemptStore) GetByKind(_ context.Context, kind domain.AttemptKind) ([]*domain.WorkflowAttempt, error) {
	return s.collect(func(a *domain.WorkflowAttempt) bool {
		return a.Kind == kind
	}), nil
}

// GetByLand retrieves all attempts targeting a record, ordered by created_at ASC.
func (s *AttemptStore) GetByLand(_ context.Context, landID int64) ([]*domain.WorkflowAttempt, error) {
	return s.collect(func(a *domain.WorkflowAttempt) bool {
		return a.LandID == landID
	}), nil
}

func (s *AttemptStore) collect(match func(*domain.WorkflowAttempt) bool) []*domain.WorkflowAttempt {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.WorkflowAttempt
	for _, a := range s.data {
		if match(a) {
			result = append(result, cloneAttempt(a))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].AttemptID < result[j].AttemptID
	})

	return result
}

// cloneAttempt copies an attempt, including its big.Int value, so stored
// state cannot be mutated through returned pointers.
func cloneAttempt(a *domain.WorkflowAttempt) *domain.WorkflowAttempt {
	c := *a
	if a.Value != nil {
		c.Value = new(big.Int).Set(a.Value)
	}
	return &c
}
