package workflow_test

import (
	"context"
	"errors"
	"time"

	"github.com/sakamo-wni/weathercomment/internal/domain"
	"github.com/sakamo-wni/weathercomment/internal/llm"
)

// assertTestError is a shared sentinel used by tests that only care whether
// an adapter call failed, not why.
var assertTestError = errors.New("backend unavailable")

// fakeBackend is a scripted llm.Backend test double: each call returns the
// next entry in replies (or repeats the last one); when err is set, every
// call returns err.
type fakeBackend struct {
	provider llm.Provider
	replies  []string
	calls    int
	err      error
}

func (f *fakeBackend) Provider() llm.Provider { return f.provider }

func (f *fakeBackend) Generate(_ context.Context, _ string, _ llm.Options) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	idx := f.calls
	if idx >= len(f.replies) {
		idx = len(f.replies) - 1
	}
	f.calls++
	if idx < 0 {
		return "", nil
	}
	return f.replies[idx], nil
}

type fakeExternalAdapter struct {
	fc func(locationID string, target time.Time) domain.ForecastCollection
}

func (a *fakeExternalAdapter) Fetch(_ context.Context, _, _ float64, target time.Time) (domain.ForecastCollection, error) {
	return a.fc("test-loc", target), nil
}

func sampleForecastCollection(locationID string, target time.Time, condition domain.ConditionEnum, tempC, humidityPct float64) domain.ForecastCollection {
	samples := make([]domain.WeatherForecast, 0, 25)
	for h := -12; h <= 12; h++ {
		samples = append(samples, domain.WeatherForecast{
			LocationID:   locationID,
			DatetimeUTC:  target.Add(time.Duration(h) * time.Hour),
			Condition:    condition,
			TemperatureC: tempC,
			HumidityPct:  humidityPct,
		})
	}
	return domain.NewForecastCollection(locationID, samples)
}
