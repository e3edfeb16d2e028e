package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/breezyday/breezyday/internal/metrics"
)

// ErrUnknownJobType is returned for messages naming no known target.
var ErrUnknownJobType = errors.New("unknown job type")

// Refresher reloads one upstream cache. Both the AQI and weather services
// satisfy it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshJob refreshes the configured caches.
type RefreshJob struct {
	config   RefreshConfig
	logger   zerolog.Logger
	metrics  *metrics.Metrics
	targets  map[Target]Refresher
	stats    *RefreshStats
	runMutex sync.Mutex
}

// RefreshStats tracks job statistics.
type RefreshStats struct {
	mu sync.RWMutex

	Runs               int64
	Successful         int64
	Failed             int64
	LastRunAt          time.Time
	LastRunDuration    time.Duration
	LastErrorsByTarget map[Target]string
	RefreshesByTarget  map[Target]int64
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config  RefreshConfig
	Logger  zerolog.Logger
	Metrics *metrics.Metrics

	// AirQuality and Weather are optional; nil targets are skipped.
	AirQuality Refresher
	Weather    Refresher
}

// NewRefreshJob creates a new refresh job.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	config := cfg.Config
	defaults := DefaultRefreshConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	targets := make(map[Target]Refresher)
	if cfg.AirQuality != nil {
		targets[TargetAQI] = cfg.AirQuality
	}
	if cfg.Weather != nil {
		targets[TargetWeather] = cfg.Weather
	}

	return &RefreshJob{
		config:  config,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		targets: targets,
		stats: &RefreshStats{
			LastErrorsByTarget: make(map[Target]string),
			RefreshesByTarget:  make(map[Target]int64),
		},
	}
}

// TargetResult is the outcome of refreshing one target.
type TargetResult struct {
	Target   Target        `json:"target"`
	Duration time.Duration `json:"duration"`
	Skipped  bool          `json:"skipped,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// RefreshResult contains the result of a run.
type RefreshResult struct {
	StartTime  time.Time
	Duration   time.Duration
	Targets    []TargetResult
	Successful int
	Failed     int
}

// Err returns an error when more targets failed than succeeded.
func (r *RefreshResult) Err() error {
	if r.Failed > 0 && r.Failed >= r.Successful {
		return fmt.Errorf("refresh failed for %s", strings.Join(r.failedTargets(), ", "))
	}
	return nil
}

func (r *RefreshResult) failedTargets() []string {
	var names []string
	for _, t := range r.Targets {
		if t.Error != "" {
			names = append(names, string(t.Target))
		}
	}
	return names
}

// Run refreshes the given targets concurrently. With no targets it refreshes
// all of them. Targets without a configured service are reported as skipped.
// Overlapping runs are serialized.
func (j *RefreshJob) Run(ctx context.Context, targets ...Target) *RefreshResult {
	j.runMutex.Lock()
	defer j.runMutex.Unlock()

	if len(targets) == 0 {
		targets = []Target{TargetAQI, TargetWeather}
	}

	start := time.Now()
	result := &RefreshResult{
		StartTime: start,
		Targets:   make([]TargetResult, len(targets)),
	}

	j.logger.Info().
		Int("targets", len(targets)).
		Msg("starting cache refresh")

	var wg sync.WaitGroup
	for i, target := range targets {
		refresher, ok := j.targets[target]
		if !ok {
			result.Targets[i] = TargetResult{Target: target, Skipped: true}
			continue
		}

		wg.Add(1)
		go func(i int, target Target, r Refresher) {
			defer wg.Done()
			result.Targets[i] = j.refreshTarget(ctx, target, r)
		}(i, target, refresher)
	}
	wg.Wait()

	for _, tr := range result.Targets {
		switch {
		case tr.Skipped:
		case tr.Error != "":
			result.Failed++
		default:
			result.Successful++
		}
	}

	result.Duration = time.Since(start)
	j.updateStats(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("cache refresh completed")

	return result
}

func (j *RefreshJob) refreshTarget(ctx context.Context, target Target, r Refresher) TargetResult {
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	start := time.Now()
	err := r.Refresh(ctx)
	j.metrics.RefreshRun(string(target), err)

	tr := TargetResult{Target: target, Duration: time.Since(start)}
	if err != nil {
		tr.Error = err.Error()
		j.logger.Warn().Err(err).Str("target", string(target)).Msg("cache refresh failed")
	}
	return tr
}

// Schedule runs all targets immediately and then on every tick until ctx
// is done. It returns at once when the interval is zero.
func (j *RefreshJob) Schedule(ctx context.Context) {
	if j.config.Interval <= 0 {
		return
	}

	j.Run(ctx)

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Debug().Msg("refresh scheduler stopped")
			return
		case <-ticker.C:
			j.Run(ctx)
		}
	}
}

func (j *RefreshJob) updateStats(result *RefreshResult) {
	j.stats.mu.Lock()
	defer j.stats.mu.Unlock()

	j.stats.Runs++
	j.stats.Successful += int64(result.Successful)
	j.stats.Failed += int64(result.Failed)
	j.stats.LastRunAt = result.StartTime.Add(result.Duration)
	j.stats.LastRunDuration = result.Duration
	for _, tr := range result.Targets {
		if tr.Skipped {
			continue
		}
		if tr.Error != "" {
			j.stats.LastErrorsByTarget[tr.Target] = tr.Error
			continue
		}
		delete(j.stats.LastErrorsByTarget, tr.Target)
		j.stats.RefreshesByTarget[tr.Target]++
	}
}

// Snapshot returns the job statistics as a map for the status endpoint.
func (j *RefreshJob) Snapshot() map[string]any {
	j.stats.mu.RLock()
	defer j.stats.mu.RUnlock()

	refreshes := make(map[string]int64, len(j.stats.RefreshesByTarget))
	for t, n := range j.stats.RefreshesByTarget {
		refreshes[string(t)] = n
	}
	lastErrors := make(map[string]string, len(j.stats.LastErrorsByTarget))
	for t, e := range j.stats.LastErrorsByTarget {
		lastErrors[string(t)] = e
	}

	snap := map[string]any{
		"runs":                  j.stats.Runs,
		"successful":            j.stats.Successful,
		"failed":                j.stats.Failed,
		"refreshes_by_target":   refreshes,
		"last_errors":           lastErrors,
		"last_refresh_duration": j.stats.LastRunDuration.String(),
	}
	if !j.stats.LastRunAt.IsZero() {
		snap["last_refresh_at"] = j.stats.LastRunAt
	}
	return snap
}
