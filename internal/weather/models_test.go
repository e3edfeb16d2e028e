package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestRainInfoFor(t *testing.T) {
	tests := []struct {
		pop   *float64
		level RainLevel
		label string
	}{
		{nil, RainUnknown, "N/A"},
		{ptr(0), RainVeryLow, "Very Low"},
		{ptr(19.9), RainVeryLow, "Very Low"},
		{ptr(20), RainLow, "Low"},
		{ptr(49), RainLow, "Low"},
		{ptr(50), RainMedium, "Medium"},
		{ptr(79), RainMedium, "Medium"},
		{ptr(80), RainHigh, "High"},
		{ptr(100), RainHigh, "High"},
	}

	for _, tt := range tests {
		got := RainInfoFor(tt.pop)
		assert.Equal(t, tt.level, got.Level)
		assert.Equal(t, tt.label, got.Label)
		assert.NotEmpty(t, got.Suggestion)
	}
}

func TestNewTodayRange(t *testing.T) {
	r := NewTodayRange("臺北市", ptr(20), ptr(31), nil, "晴", "", "")
	require.NotNil(t, r.TempDiff)
	assert.Equal(t, 11.0, *r.TempDiff)

	r = NewTodayRange("臺北市", nil, ptr(31), nil, "", "", "")
	assert.Nil(t, r.TempDiff)
}

func TestForecastPoint_Summarize(t *testing.T) {
	rows := make([]ForecastRow, 30)
	for i := range rows {
		rows[i] = ForecastRow{Temp: ptr(float64(20 + i))}
	}
	rows[0].Temp = nil
	rows[0].Weather = "雨"

	s := ForecastPoint{County: "臺北市", Town: "中正區", Rows: rows}.Summarize()

	assert.Len(t, s.Rows, maxSummaryRows)
	require.NotNil(t, s.NowTemp)
	assert.Equal(t, 21.0, *s.NowTemp)
	assert.Equal(t, 21.0, *s.RangeMin)
	assert.Equal(t, 43.0, *s.RangeMax)
	assert.Equal(t, "雨", s.NowWeather)
}

func TestForecastPoint_SummarizeEmpty(t *testing.T) {
	s := ForecastPoint{Town: "x"}.Summarize()
	assert.Nil(t, s.NowTemp)
	assert.Nil(t, s.RangeMin)
	assert.Equal(t, "-", s.NowWeather)
	assert.Empty(t, s.Rows)
}
