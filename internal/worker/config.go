// Package worker keeps the upstream caches warm in the background.
package worker

import (
	"fmt"
	"strings"
	"time"
)

// Target names a cache the job can refresh.
type Target string

// Refresh targets.
const (
	TargetAQI     Target = "aqi"
	TargetWeather Target = "weather"
)

// JobTypeAll refreshes every configured target.
const JobTypeAll = "all"

// ParseJobType maps a message job type to targets. An empty job type is
// treated as "all".
func ParseJobType(jobType string) ([]Target, error) {
	switch strings.ToLower(strings.TrimSpace(jobType)) {
	case "", JobTypeAll:
		return []Target{TargetAQI, TargetWeather}, nil
	case string(TargetAQI):
		return []Target{TargetAQI}, nil
	case string(TargetWeather):
		return []Target{TargetWeather}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownJobType, jobType)
	}
}

// RefreshConfig holds configuration for the refresh job.
type RefreshConfig struct {
	// Timeout bounds each target's refresh.
	// Default: 30 seconds
	Timeout time.Duration

	// Interval is the ticker period used by Schedule. Zero disables the ticker.
	// Default: 10 minutes
	Interval time.Duration
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Timeout:  30 * time.Second,
		Interval: 10 * time.Minute,
	}
}
