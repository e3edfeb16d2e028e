package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service provides feedback operations.
type Service struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time
	loc    *time.Location
}

// ServiceConfig holds configuration for the feedback service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger

	// Location decides the default feedback date. Defaults to Asia/Taipei,
	// falling back to UTC when the zone database is unavailable.
	Location *time.Location

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewService creates a new feedback service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	loc := cfg.Location
	if loc == nil {
		var err error
		if loc, err = time.LoadLocation("Asia/Taipei"); err != nil {
			loc = time.UTC
		}
	}
	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
		now:    now,
		loc:    loc,
	}
}

// Submit validates and stores a new entry.
func (s *Service) Submit(ctx context.Context, userID string, input Input) (*Entry, error) {
	input.Normalize()
	if errs := input.Validate(); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	now := s.now()
	date := input.FeedbackDate
	if date == "" {
		date = now.In(s.loc).Format(DateLayout)
	}

	entry := &Entry{
		ID:                   "fb_" + uuid.New().String(),
		UserID:               userID,
		FeedbackDate:         date,
		CreatedAt:            now.UTC(),
		OutfitTop:            input.OutfitTop,
		OutfitBottom:         input.OutfitBottom,
		OutfitAccessories:    input.OutfitAccessories,
		OutfitShoes:          input.OutfitShoes,
		TemperatureFeel:      input.TemperatureFeel,
		ChangeOutfit:         input.ChangeOutfit,
		AllergyFeel:          input.AllergyFeel,
		AllergyImpact:        input.AllergyImpact,
		AllergySymptoms:      input.AllergySymptoms,
		AllergyMed:           input.AllergyMed,
		RecommendationRating: input.RecommendationRating,
		EnvAQI:               input.EnvAQI,
		EnvAQISite:           input.EnvAQISite,
		EnvMaxTemp:           input.EnvMaxTemp,
		EnvMinTemp:           input.EnvMinTemp,
		EnvTempDiff:          input.EnvTempDiff,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("storing feedback: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("feedback_id", entry.ID).
		Str("allergy_feel", string(entry.AllergyFeel)).
		Msg("feedback submitted")

	return entry, nil
}

// List returns up to limit entries, newest first. A non-positive limit
// uses DefaultListCap.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListCap
	}
	entries, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing feedback: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Recent returns the n most recent entries.
func (s *Service) Recent(ctx context.Context, userID string, n int) ([]Entry, error) {
	if n <= 0 {
		return []Entry{}, nil
	}
	return s.List(ctx, userID, n)
}

// Summary aggregates the user's stored history.
func (s *Service) Summary(ctx context.Context, userID string) (Summary, error) {
	entries, err := s.List(ctx, userID, DefaultListCap)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(entries), nil
}
