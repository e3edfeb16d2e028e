package user

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// Repository errors.
var (
	ErrProfileNotFound = errors.New("profile not found")
)

// Repository defines the interface for profile persistence.
type Repository interface {
	// Get retrieves a stored profile. It returns ErrProfileNotFound when none exists.
	Get(ctx context.Context, userID string) (*Profile, error)

	// Upsert creates or replaces a profile.
	Upsert(ctx context.Context, profile *Profile) error
}

// InMemoryRepository is an in-memory implementation of Repository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewInMemoryRepository creates a new in-memory profile repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		profiles: make(map[string]*Profile),
	}
}

// Get retrieves a profile by user ID.
func (r *InMemoryRepository) Get(_ context.Context, userID string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return copyProfile(p), nil
}

// Upsert creates or replaces a profile.
func (r *InMemoryRepository) Upsert(_ context.Context, profile *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles[profile.UserID] = copyProfile(profile)
	return nil
}

func copyProfile(p *Profile) *Profile {
	c := *p
	c.PreferredStyles = slices.Clone(p.PreferredStyles)
	if c.PreferredStyles == nil {
		c.PreferredStyles = []string{}
	}
	return &c
}
