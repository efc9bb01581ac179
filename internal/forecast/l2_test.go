package forecast_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakamo-wni/weathercomment/internal/domain"
	"github.com/sakamo-wni/weathercomment/internal/forecast"
)

func TestFileL2Cache_WriteThenGet(t *testing.T) {
	dir := t.TempDir()
	l2, err := forecast.NewFileL2Cache(dir, time.Hour)
	require.NoError(t, err)

	target := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	fc := domain.NewForecastCollection("tokyo", []domain.WeatherForecast{
		{LocationID: "tokyo", DatetimeUTC: target, Condition: domain.ConditionClear, TemperatureC: 20},
		{LocationID: "tokyo", DatetimeUTC: target.Add(time.Hour), Condition: domain.ConditionCloudy, TemperatureC: 19},
	})

	require.NoError(t, l2.Write("tokyo", fc, time.Now()))

	got, ok := l2.Get("tokyo", target, time.Now())
	require.True(t, ok)
	assert.Len(t, got.Samples, 2)
}

func TestFileL2Cache_StaleRowsAreIgnored(t *testing.T) {
	dir := t.TempDir()
	l2, err := forecast.NewFileL2Cache(dir, time.Minute)
	require.NoError(t, err)

	target := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	fc := domain.NewForecastCollection("tokyo", []domain.WeatherForecast{
		{LocationID: "tokyo", DatetimeUTC: target},
	})
	require.NoError(t, l2.Write("tokyo", fc, time.Now().Add(-2*time.Hour)))

	_, ok := l2.Get("tokyo", target, time.Now())
	assert.False(t, ok)
}

func TestFileL2Cache_MissingLocationIsMiss(t *testing.T) {
	dir := t.TempDir()
	l2, err := forecast.NewFileL2Cache(dir, time.Hour)
	require.NoError(t, err)

	_, ok := l2.Get("nowhere", time.Now(), time.Now())
	assert.False(t, ok)
}
