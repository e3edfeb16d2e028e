package airquality

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/breezyday/breezyday/internal/metrics"
	"github.com/breezyday/breezyday/pkg/geo"
)

const cacheName = "aqi"

// Provider defines the interface for air quality data providers.
type Provider interface {
	// FetchCatalog fetches the current list of stations and readings.
	FetchCatalog(ctx context.Context) (*Catalog, error)
}

// ServiceConfig holds configuration for the air quality service.
type ServiceConfig struct {
	// Provider is the air quality data provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// Metrics records cache results and catalog size. Optional.
	Metrics *metrics.Metrics

	// CacheTTL is how long to cache the catalog (default: 5 minutes).
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving stale data on provider errors (default: 30 minutes).
	StaleIfErrorTTL time.Duration
}

// Service provides air quality data with caching.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	metrics         *metrics.Metrics
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration

	mu          sync.RWMutex
	catalog     *Catalog
	cacheExpiry time.Time
}

// NewService creates a new air quality service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 30 * time.Minute
	}

	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
		cacheTTL:        cacheTTL,
		staleIfErrorTTL: staleIfErrorTTL,
	}
}

// GetCatalog returns the current station catalog, fetching it when the
// cached copy has expired. Callers must treat the result as read-only.
func (s *Service) GetCatalog(ctx context.Context) (*Catalog, error) {
	s.mu.RLock()
	if s.catalog != nil && time.Now().Before(s.cacheExpiry) {
		catalog := s.catalog
		s.mu.RUnlock()
		s.metrics.CacheHit(cacheName)
		return catalog, nil
	}
	s.mu.RUnlock()

	return s.refresh(ctx, false)
}

// ListStations returns the classified stations matching q.
func (s *Service) ListStations(ctx context.Context, q StationQuery) ([]StationResult, error) {
	catalog, err := s.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return FilterStations(catalog.Stations, q), nil
}

// Nearest returns the station closest to coord.
func (s *Service) Nearest(ctx context.Context, coord geo.Coordinate) (StationResult, error) {
	catalog, err := s.GetCatalog(ctx)
	if err != nil {
		return StationResult{}, err
	}
	if catalog.Len() == 0 {
		return StationResult{}, ErrNoStations
	}

	station, dist, ok := FindNearestStationWithDistance(coord, catalog.Stations)
	if !ok {
		return StationResult{}, ErrNoCoordinates
	}

	result := NewStationResult(station)
	result.DistanceKm = &dist
	return result, nil
}

// DefaultStation returns the station used when the caller has no location.
func (s *Service) DefaultStation(ctx context.Context) (StationResult, error) {
	catalog, err := s.GetCatalog(ctx)
	if err != nil {
		return StationResult{}, err
	}

	station, ok := DefaultStation(catalog.Stations)
	if !ok {
		return StationResult{}, ErrNoStations
	}
	return NewStationResult(station), nil
}

// Refresh forces a cache refresh.
func (s *Service) Refresh(ctx context.Context) error {
	_, err := s.refresh(ctx, true)
	return err
}

// Invalidate clears the cached catalog.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = nil
	s.cacheExpiry = time.Time{}
}

// CacheStatus returns information about the current cache state.
func (s *Service) CacheStatus() CacheStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.catalog == nil {
		return CacheStatus{
			HasData: false,
		}
	}

	now := time.Now()
	return CacheStatus{
		HasData:      true,
		FetchedAt:    s.catalog.FetchedAt,
		ExpiresAt:    s.cacheExpiry,
		IsExpired:    now.After(s.cacheExpiry),
		IsStale:      now.After(s.catalog.FetchedAt.Add(s.staleIfErrorTTL)),
		StationCount: len(s.catalog.Stations),
		Provider:     s.catalog.Provider,
	}
}

// CacheStatus represents the current state of the cache.
type CacheStatus struct {
	HasData      bool
	FetchedAt    time.Time
	ExpiresAt    time.Time
	IsExpired    bool
	IsStale      bool
	StationCount int
	Provider     string
}

func (s *Service) refresh(ctx context.Context, force bool) (*Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	if !force && s.catalog != nil && time.Now().Before(s.cacheExpiry) {
		s.metrics.CacheHit(cacheName)
		return s.catalog, nil
	}

	s.metrics.CacheMiss(cacheName)
	s.logger.Debug().Msg("refreshing air quality catalog")

	catalog, err := s.provider.FetchCatalog(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to fetch air quality catalog")

		if s.catalog != nil && time.Now().Before(s.catalog.FetchedAt.Add(s.staleIfErrorTTL)) {
			s.logger.Warn().
				Time("fetched_at", s.catalog.FetchedAt).
				Msg("serving stale air quality data due to provider error")
			s.metrics.CacheStale(cacheName)
			return s.catalog, nil
		}

		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	s.catalog = catalog
	s.cacheExpiry = time.Now().Add(s.cacheTTL)
	s.metrics.SetCatalogSize(cacheName, len(catalog.Stations))

	s.logger.Info().
		Int("stations", len(catalog.Stations)).
		Str("provider", catalog.Provider).
		Time("expires_at", s.cacheExpiry).
		Msg("air quality catalog refreshed")

	return catalog, nil
}
