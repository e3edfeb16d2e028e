package weather_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breezyday/breezyday/internal/weather"
	"github.com/breezyday/breezyday/pkg/geo"
)

type mockProvider struct {
	mu          sync.Mutex
	ranges      map[string]*weather.TodayRange
	points      []weather.ForecastPoint
	err         error
	countyCalls atomic.Int32
	townCalls   atomic.Int32
}

func (m *mockProvider) GetCountyForecast(_ context.Context, name string) (*weather.TodayRange, error) {
	m.countyCalls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.ranges[name]
	if !ok {
		return nil, weather.ErrLocationNotFound
	}
	return r, nil
}

func (m *mockProvider) GetTownshipForecast(_ context.Context) ([]weather.ForecastPoint, error) {
	m.townCalls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.points, nil
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func fp(v float64) *float64 { return &v }

func newProvider() *mockProvider {
	return &mockProvider{
		ranges: map[string]*weather.TodayRange{
			"臺北市": weather.NewTodayRange("臺北市", fp(22), fp(29), fp(30), "多雲", "", ""),
		},
		points: []weather.ForecastPoint{
			{County: "臺北市", Town: "北投區", Coordinate: &geo.Coordinate{Lat: 25.1322, Lon: 121.5026}},
			{County: "臺北市", Town: "信義區", Coordinate: &geo.Coordinate{Lat: 25.0306, Lon: 121.5718},
				Rows: []weather.ForecastRow{{Temp: fp(27), Weather: "晴"}, {Temp: fp(25)}, {Temp: fp(30)}}},
			{County: "臺北市", Town: "無座標"},
		},
	}
}

func newService(p weather.Provider, ttl time.Duration) *weather.Service {
	return weather.NewService(weather.ServiceConfig{
		Provider:        p,
		Logger:          zerolog.New(io.Discard),
		CacheTTL:        ttl,
		StaleIfErrorTTL: time.Hour,
	})
}

func TestService_TodayRange_Caches(t *testing.T) {
	p := newProvider()
	svc := newService(p, time.Minute)
	ctx := context.Background()

	r, err := svc.TodayRange(ctx, "臺北市")
	require.NoError(t, err)
	assert.Equal(t, 7.0, *r.TempDiff)

	_, err = svc.TodayRange(ctx, " 台北市 ")
	require.NoError(t, err)
	assert.Equal(t, int32(1), p.countyCalls.Load())
}

func TestService_TodayRange_DefaultCounty(t *testing.T) {
	svc := newService(newProvider(), time.Minute)

	r, err := svc.TodayRange(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "臺北市", r.LocationName)
}

func TestService_TodayRange_InvalidLocation(t *testing.T) {
	svc := newService(newProvider(), time.Minute)

	_, err := svc.TodayRange(context.Background(), "這是一個名稱過長而不可能存在於預報資料中的縣市名稱")
	assert.ErrorIs(t, err, weather.ErrInvalidLocation)
}

func TestService_TodayRange_NotFoundIsNotWrapped(t *testing.T) {
	svc := newService(newProvider(), time.Minute)

	_, err := svc.TodayRange(context.Background(), "火星市")
	assert.ErrorIs(t, err, weather.ErrLocationNotFound)
	assert.NotErrorIs(t, err, weather.ErrProviderUnavailable)
}

func TestService_TodayRange_StaleOnError(t *testing.T) {
	p := newProvider()
	svc := newService(p, 20*time.Millisecond)
	ctx := context.Background()

	_, err := svc.TodayRange(ctx, "臺北市")
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	p.fail(errors.New("timeout"))

	r, err := svc.TodayRange(ctx, "臺北市")
	require.NoError(t, err)
	assert.Equal(t, "臺北市", r.LocationName)
	assert.Equal(t, int32(2), p.countyCalls.Load())
}

func TestService_TodayRange_ErrorWithoutCache(t *testing.T) {
	p := newProvider()
	p.fail(errors.New("down"))
	svc := newService(p, time.Minute)

	_, err := svc.TodayRange(context.Background(), "臺北市")
	assert.ErrorIs(t, err, weather.ErrProviderUnavailable)
}

func TestService_NearestForecast(t *testing.T) {
	p := newProvider()
	svc := newService(p, time.Minute)

	s, err := svc.NearestForecast(context.Background(), geo.Coordinate{Lat: 25.0330, Lon: 121.5654})
	require.NoError(t, err)

	assert.Equal(t, "信義區", s.Town)
	require.NotNil(t, s.NowTemp)
	assert.Equal(t, 27.0, *s.NowTemp)
	assert.Equal(t, 25.0, *s.RangeMin)
	assert.Equal(t, 30.0, *s.RangeMax)
	assert.Equal(t, "晴", s.NowWeather)
	require.NotNil(t, s.DistanceKm)
	assert.Less(t, *s.DistanceKm, 2.0)

	_, err = svc.NearestForecast(context.Background(), geo.Coordinate{Lat: 25.1, Lon: 121.5})
	require.NoError(t, err)
	assert.Equal(t, int32(1), p.townCalls.Load())
}

func TestService_NearestForecast_InvalidCoordinates(t *testing.T) {
	svc := newService(newProvider(), time.Minute)

	_, err := svc.NearestForecast(context.Background(), geo.Coordinate{Lat: 95, Lon: 0})
	assert.ErrorIs(t, err, weather.ErrInvalidCoordinates)
}

func TestService_NearestForecast_NoPoints(t *testing.T) {
	p := newProvider()
	p.points = []weather.ForecastPoint{{Town: "x"}}
	svc := newService(p, time.Minute)

	_, err := svc.NearestForecast(context.Background(), geo.Coordinate{Lat: 25, Lon: 121})
	assert.ErrorIs(t, err, weather.ErrNoForecastPoints)
}

func TestService_RefreshAndStats(t *testing.T) {
	p := newProvider()
	svc := newService(p, time.Minute)
	ctx := context.Background()

	require.NoError(t, svc.Refresh(ctx))
	require.NoError(t, svc.Refresh(ctx))
	assert.Equal(t, int32(2), p.townCalls.Load())
	assert.Equal(t, int32(2), p.countyCalls.Load())

	stats := svc.CacheStats()
	assert.Equal(t, 3, stats.TownshipPoints)
	assert.True(t, stats.TownshipFresh)
	assert.Equal(t, 1, stats.CountyEntries)
	assert.Equal(t, "mock", stats.Provider)

	svc.InvalidateCache()
	stats = svc.CacheStats()
	assert.Zero(t, stats.TownshipPoints)
	assert.Zero(t, stats.CountyEntries)
}

func TestService_MissingKeyIsNotWrapped(t *testing.T) {
	p := newProvider()
	p.fail(weather.ErrMissingAPIKey)
	svc := newService(p, time.Minute)

	_, err := svc.TownshipForecast(context.Background())
	assert.ErrorIs(t, err, weather.ErrMissingAPIKey)
	assert.NotErrorIs(t, err, weather.ErrProviderUnavailable)
}
