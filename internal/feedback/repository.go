package feedback

import (
	"context"
	"slices"
	"sync"
)

// Repository defines the interface for feedback persistence.
type Repository interface {
	// Create stores a new entry.
	Create(ctx context.Context, entry *Entry) error

	// ListByUser returns up to limit entries, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
type InMemoryRepository struct {
	mu     sync.RWMutex
	byUser map[string][]Entry // append order is creation order
}

// NewInMemoryRepository creates a new in-memory feedback repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byUser: make(map[string][]Entry),
	}
}

// Create stores a new entry.
func (r *InMemoryRepository) Create(_ context.Context, entry *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := *entry
	e.AllergySymptoms = slices.Clone(entry.AllergySymptoms)
	r.byUser[entry.UserID] = append(r.byUser[entry.UserID], e)
	return nil
}

// ListByUser returns up to limit entries, newest first.
func (r *InMemoryRepository) ListByUser(_ context.Context, userID string, limit int) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.byUser[userID]
	n := len(stored)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Entry, 0, n)
	for i := len(stored) - 1; i >= 0 && len(out) < n; i-- {
		e := stored[i]
		e.AllergySymptoms = slices.Clone(e.AllergySymptoms)
		out = append(out, e)
	}
	return out, nil
}
