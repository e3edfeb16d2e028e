package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/breezyday/breezyday/internal/airquality"
	"github.com/breezyday/breezyday/internal/api/models"
	"github.com/breezyday/breezyday/internal/api/response"
	"github.com/breezyday/breezyday/internal/provider/resilience"
	"github.com/breezyday/breezyday/internal/weather"
)

// Pinger checks a dependency. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Snapshotter reports background job statistics.
type Snapshotter interface {
	Snapshot() map[string]any
}

// OpsConfig holds the dependencies of the operational endpoints. Every
// field except the version fields is optional.
type OpsConfig struct {
	Version    string
	BuildTime  string
	Database   Pinger
	Registry   *resilience.Registry
	AirQuality *airquality.Service
	Weather    *weather.Service
	Refresh    Snapshotter
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	cfg          OpsConfig
	readyTimeout time.Duration
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{cfg: cfg, readyTimeout: 2 * time.Second}
}

// HealthCheck handles GET /v1/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]any{
			"version":   h.cfg.Version,
			"buildTime": h.cfg.BuildTime,
		},
	})
}

// ReadinessCheck handles GET /v1/ready. It fails when the database is
// configured and does not answer a ping.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status:  models.HealthStatusOK,
		Time:    models.Timestamp(time.Now()),
		Details: map[string]any{"storage": "memory"},
	}

	if h.cfg.Database != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.readyTimeout)
		defer cancel()

		health.Details["storage"] = "postgres"
		if err := h.cfg.Database.Ping(ctx); err != nil {
			health.Status = models.HealthStatusFail
			health.Details["error"] = err.Error()
			response.JSON(w, r, http.StatusServiceUnavailable, health)
			return
		}
	}

	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/status - provider circuit, cache and
// refresh status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       models.Timestamp(time.Now()),
		Version:    h.cfg.Version,
		Subsystems: []models.SubsystemStatus{},
		Providers:  []models.ProviderStatus{},
		Caches:     []models.CacheStatus{},
	}

	if h.cfg.Database != nil {
		sub := models.SubsystemStatus{Name: "postgres", Status: models.HealthStatusOK}
		ctx, cancel := context.WithTimeout(r.Context(), h.readyTimeout)
		if err := h.cfg.Database.Ping(ctx); err != nil {
			detail := err.Error()
			sub.Status = models.HealthStatusFail
			sub.Detail = &detail
		}
		cancel()
		status.Subsystems = append(status.Subsystems, sub)
	}

	if h.cfg.Registry != nil {
		for _, p := range h.cfg.Registry.GetAllHealth() {
			status.Providers = append(status.Providers, providerStatus(p))
		}
	}

	if h.cfg.AirQuality != nil {
		cs := h.cfg.AirQuality.CacheStatus()
		c := models.CacheStatus{
			Name:     "aqi",
			HasData:  cs.HasData,
			Fresh:    cs.HasData && !cs.IsExpired,
			Entries:  cs.StationCount,
			Provider: cs.Provider,
		}
		if cs.HasData {
			c.FetchedAt = models.TimestampPtr(&cs.FetchedAt)
		}
		status.Caches = append(status.Caches, c)
	}

	if h.cfg.Weather != nil {
		ws := h.cfg.Weather.CacheStats()
		status.Caches = append(status.Caches, models.CacheStatus{
			Name:     "weather_county",
			HasData:  ws.CountyEntries > 0,
			Fresh:    ws.CountyFreshEntries > 0,
			Entries:  ws.CountyEntries,
			Provider: ws.Provider,
		})
		town := models.CacheStatus{
			Name:     "weather_town",
			HasData:  ws.TownshipPoints > 0,
			Fresh:    ws.TownshipFresh,
			Entries:  ws.TownshipPoints,
			Provider: ws.Provider,
		}
		if !ws.TownshipFetchedAt.IsZero() {
			town.FetchedAt = models.TimestampPtr(&ws.TownshipFetchedAt)
		}
		status.Caches = append(status.Caches, town)
	}

	if h.cfg.Refresh != nil {
		status.Refresh = h.cfg.Refresh.Snapshot()
	}

	status.Status = overallStatus(status)
	response.JSON(w, r, http.StatusOK, status)
}

func providerStatus(p *resilience.ProviderHealth) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:            p.Name,
		Status:              models.HealthStatusOK,
		CircuitState:        p.CircuitState.String(),
		ConsecutiveFailures: p.Counts.ConsecutiveFailures,
		LastSuccessAt:       models.TimestampPtr(p.LastSuccessAt),
		LastFailureAt:       models.TimestampPtr(p.LastFailureAt),
	}
	switch {
	case p.IsUnhealthy():
		ps.Status = models.HealthStatusFail
	case p.IsDegraded():
		ps.Status = models.HealthStatusDegraded
	}
	if p.LastError != "" {
		msg := p.LastError
		ps.Message = &msg
	}
	return ps
}

// overallStatus is FAIL when a subsystem fails and DEGRADED when any
// provider is not healthy.
func overallStatus(s models.SystemStatus) models.HealthStatus {
	for _, sub := range s.Subsystems {
		if sub.Status == models.HealthStatusFail {
			return models.HealthStatusFail
		}
	}
	for _, p := range s.Providers {
		if p.Status != models.HealthStatusOK {
			return models.HealthStatusDegraded
		}
	}
	return models.HealthStatusOK
}
