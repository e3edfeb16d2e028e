package user

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/breezyday/breezyday/internal/auth"
)

// Accounts resolves the account behind a profile.
type Accounts interface {
	GetUser(ctx context.Context, userID string) (*auth.User, error)
}

// Service provides profile operations.
type Service struct {
	repo     Repository
	accounts Accounts
	logger   zerolog.Logger
	now      func() time.Time
}

// ServiceConfig holds configuration for the profile service.
type ServiceConfig struct {
	Repository Repository
	Accounts   Accounts
	Logger     zerolog.Logger

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewService creates a new profile service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:     cfg.Repository,
		accounts: cfg.Accounts,
		logger:   cfg.Logger,
		now:      now,
	}
}

// GetProfile returns the stored profile, or defaults when none has been saved.
func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	account, err := s.accounts.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrProfileNotFound) {
		p = DefaultProfile(userID)
	} else if err != nil {
		return nil, err
	}

	p.Email = account.Email
	return p, nil
}

// UpdateProfile validates and stores the profile.
func (s *Service) UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*Profile, error) {
	account, err := s.accounts.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	input.Normalize()
	if errs := input.Validate(s.now()); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	p := &Profile{
		UserID:          userID,
		Username:        input.Username,
		Gender:          input.Gender,
		DateOfBirth:     input.DateOfBirth,
		PreferredStyles: input.PreferredStyles,
		UpdatedAt:       s.now().UTC(),
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Debug().Str("user_id", userID).Msg("profile updated")

	p.Email = account.Email
	return p, nil
}
