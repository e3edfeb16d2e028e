package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/breezyday/breezyday/internal/metrics"
	"github.com/breezyday/breezyday/pkg/geo"
)

const (
	countyCacheName = "weather_county"
	townCacheName   = "weather_town"
)

// Provider defines the interface for weather data providers.
type Provider interface {
	// GetCountyForecast fetches the current 12-hour window for a county.
	GetCountyForecast(ctx context.Context, locationName string) (*TodayRange, error)

	// GetTownshipForecast fetches every township forecast point.
	GetTownshipForecast(ctx context.Context) ([]ForecastPoint, error)

	// Name returns the provider name for logging.
	Name() string
}

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	// Provider is the weather data provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// Metrics records cache results. Optional.
	Metrics *metrics.Metrics

	// CacheTTL is how long to cache weather data (default: 10 minutes).
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving stale data on provider errors (default: 1 hour).
	StaleIfErrorTTL time.Duration

	// DefaultCounty is used by TodayRange when no location is given.
	// Default: 臺北市
	DefaultCounty string
}

// Service provides weather data with caching.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	metrics         *metrics.Metrics
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration
	defaultCounty   string

	mu          sync.RWMutex
	countyCache map[string]*cachedRange
	townCache   *cachedPoints
}

type cachedRange struct {
	value     *TodayRange
	fetchedAt time.Time
	expiresAt time.Time
}

type cachedPoints struct {
	points    []ForecastPoint
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a new weather service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = time.Hour
	}

	defaultCounty := cfg.DefaultCounty
	if defaultCounty == "" {
		defaultCounty = "臺北市"
	}

	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
		cacheTTL:        cacheTTL,
		staleIfErrorTTL: staleIfErrorTTL,
		defaultCounty:   defaultCounty,
		countyCache:     make(map[string]*cachedRange),
	}
}

// TodayRange returns the county forecast for locationName. An empty name
// uses the configured default county.
func (s *Service) TodayRange(ctx context.Context, locationName string) (*TodayRange, error) {
	name := normalizeLocation(locationName)
	if name == "" {
		name = s.defaultCounty
	}
	if len([]rune(name)) > 20 {
		return nil, ErrInvalidLocation
	}

	s.mu.RLock()
	if cached, ok := s.countyCache[name]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		s.metrics.CacheHit(countyCacheName)
		return cached.value, nil
	}
	s.mu.RUnlock()

	return s.fetchCounty(ctx, name)
}

// TownshipForecast returns all township forecast points.
func (s *Service) TownshipForecast(ctx context.Context) ([]ForecastPoint, error) {
	s.mu.RLock()
	if s.townCache != nil && time.Now().Before(s.townCache.expiresAt) {
		points := s.townCache.points
		s.mu.RUnlock()
		s.metrics.CacheHit(townCacheName)
		return points, nil
	}
	s.mu.RUnlock()

	return s.fetchTownship(ctx, false)
}

// NearestForecast returns a summary of the township forecast point closest
// to coord.
func (s *Service) NearestForecast(ctx context.Context, coord geo.Coordinate) (PointSummary, error) {
	if !coord.InRange() {
		return PointSummary{}, ErrInvalidCoordinates
	}

	points, err := s.TownshipForecast(ctx)
	if err != nil {
		return PointSummary{}, err
	}

	idx, dist, ok := geo.Nearest(coord, points, ForecastPoint.Location)
	if !ok {
		return PointSummary{}, ErrNoForecastPoints
	}

	summary := points[idx].Summarize()
	summary.DistanceKm = &dist
	return summary, nil
}

// Refresh re-fetches the township feed and the default county.
func (s *Service) Refresh(ctx context.Context) error {
	_, townErr := s.fetchTownship(ctx, true)

	s.mu.Lock()
	delete(s.countyCache, s.defaultCounty)
	s.mu.Unlock()
	_, countyErr := s.fetchCounty(ctx, s.defaultCounty)

	return errors.Join(townErr, countyErr)
}

func (s *Service) fetchCounty(ctx context.Context, name string) (*TodayRange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.countyCache[name]; ok && time.Now().Before(cached.expiresAt) {
		s.metrics.CacheHit(countyCacheName)
		return cached.value, nil
	}

	s.metrics.CacheMiss(countyCacheName)
	s.logger.Debug().
		Str("location", name).
		Str("provider", s.provider.Name()).
		Msg("fetching county forecast from provider")

	value, err := s.provider.GetCountyForecast(ctx, name)
	if err != nil {
		if errors.Is(err, ErrLocationNotFound) || errors.Is(err, ErrMissingAPIKey) {
			return nil, err
		}

		s.logger.Error().Err(err).Str("location", name).Msg("failed to fetch county forecast")

		if cached, ok := s.countyCache[name]; ok && time.Now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			s.logger.Warn().
				Time("fetched_at", cached.fetchedAt).
				Msg("serving stale county forecast due to provider error")
			s.metrics.CacheStale(countyCacheName)
			return cached.value, nil
		}

		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	now := time.Now()
	s.countyCache[name] = &cachedRange{
		value:     value,
		fetchedAt: now,
		expiresAt: now.Add(s.cacheTTL),
	}
	s.cleanupLocked(now)

	return value, nil
}

func (s *Service) fetchTownship(ctx context.Context, force bool) ([]ForecastPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !force && s.townCache != nil && time.Now().Before(s.townCache.expiresAt) {
		s.metrics.CacheHit(townCacheName)
		return s.townCache.points, nil
	}

	s.metrics.CacheMiss(townCacheName)
	s.logger.Debug().Str("provider", s.provider.Name()).Msg("fetching township forecast from provider")

	points, err := s.provider.GetTownshipForecast(ctx)
	if err != nil {
		if errors.Is(err, ErrMissingAPIKey) {
			return nil, err
		}

		s.logger.Error().Err(err).Msg("failed to fetch township forecast")

		if s.townCache != nil && time.Now().Before(s.townCache.fetchedAt.Add(s.staleIfErrorTTL)) {
			s.logger.Warn().
				Time("fetched_at", s.townCache.fetchedAt).
				Msg("serving stale township forecast due to provider error")
			s.metrics.CacheStale(townCacheName)
			return s.townCache.points, nil
		}

		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	now := time.Now()
	s.townCache = &cachedPoints{
		points:    points,
		fetchedAt: now,
		expiresAt: now.Add(s.cacheTTL),
	}
	s.metrics.SetCatalogSize(townCacheName, len(points))

	s.logger.Info().
		Int("points", len(points)).
		Time("expires_at", s.townCache.expiresAt).
		Msg("township forecast refreshed")

	return points, nil
}

// cleanupLocked drops county entries past their stale window. Caller holds mu.
func (s *Service) cleanupLocked(now time.Time) {
	for key, cached := range s.countyCache {
		if now.After(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.countyCache, key)
		}
	}
}

// InvalidateCache clears all cached data.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countyCache = make(map[string]*cachedRange)
	s.townCache = nil
}

// CacheStats returns cache statistics.
func (s *Service) CacheStats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	stats := CacheStats{
		CountyEntries: len(s.countyCache),
		Provider:      s.provider.Name(),
	}
	for _, c := range s.countyCache {
		if now.Before(c.expiresAt) {
			stats.CountyFreshEntries++
		}
	}
	if s.townCache != nil {
		stats.TownshipPoints = len(s.townCache.points)
		stats.TownshipFetchedAt = s.townCache.fetchedAt
		stats.TownshipFresh = now.Before(s.townCache.expiresAt)
	}
	return stats
}

// CacheStats contains cache statistics.
type CacheStats struct {
	CountyEntries      int
	CountyFreshEntries int
	TownshipPoints     int
	TownshipFetchedAt  time.Time
	TownshipFresh      bool
	Provider           string
}

// normalizeLocation trims the name and folds 台 to 臺, which the feed uses.
func normalizeLocation(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), "台", "臺")
}
