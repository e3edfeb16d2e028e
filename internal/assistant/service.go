package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/breezyday/breezyday/internal/feedback"
)

// MaxTips is the number of suggestion lines returned.
const MaxTips = 5

// Errors returned by the service.
var (
	ErrMissingAPIKey = errors.New("generative model api key is not configured")
	ErrUnavailable   = errors.New("generative model unavailable")
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, apiKey, prompt string) (string, error)
}

// History supplies a user's recent feedback, newest first.
type History interface {
	Recent(ctx context.Context, userID string, n int) ([]feedback.Entry, error)
}

// Service produces allergy tips.
type Service struct {
	generator  Generator
	history    History
	defaultKey string
	logger     zerolog.Logger
}

// ServiceConfig holds configuration for the assistant service.
type ServiceConfig struct {
	Generator Generator
	History   History
	Logger    zerolog.Logger

	// APIKey is used when the request does not carry its own key.
	APIKey string
}

// NewService creates a new assistant service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		generator:  cfg.Generator,
		history:    cfg.History,
		defaultKey: cfg.APIKey,
		logger:     cfg.Logger,
	}
}

// Tips is the result of AllergyTips.
type Tips struct {
	Tips   []string `json:"tips"`
	Prompt string   `json:"-"`
}

// AllergyTips builds a prompt from the user's recent history and env and
// returns at most MaxTips non-empty lines. A non-empty apiKey overrides the
// configured key.
func (s *Service) AllergyTips(ctx context.Context, userID, apiKey string, env Env) (*Tips, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		key = s.defaultKey
	}
	if key == "" {
		return nil, ErrMissingAPIKey
	}

	entries, err := s.history.Recent(ctx, userID, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("loading feedback history: %w", err)
	}

	prompt := BuildPrompt(env, entries)
	text, err := s.generator.Generate(ctx, key, prompt)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("allergy tips generation failed")
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	tips := SplitTips(text)
	s.logger.Debug().
		Str("user_id", userID).
		Int("history", len(entries)).
		Int("tips", len(tips)).
		Msg("allergy tips generated")

	return &Tips{Tips: tips, Prompt: prompt}, nil
}

// SplitTips splits model output into trimmed non-empty lines, keeping at
// most MaxTips.
func SplitTips(text string) []string {
	tips := []string{}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		tips = append(tips, line)
		if len(tips) == MaxTips {
			break
		}
	}
	return tips
}
