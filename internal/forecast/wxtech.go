package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sakamo-wni/weathercomment/internal/apperrors"
	"github.com/sakamo-wni/weathercomment/internal/domain"
)

const defaultWxtechBaseURL = "https://api.wxtech.example/v1/forecast"

// WxtechAdapter is the one concrete ExternalAdapter: a plain net/http GET
// against the WxTech hourly-forecast endpoint. The wire format is kept to
// the minimum needed to satisfy the adapter contract (spec §1 explicitly
// excludes the provider's concrete wire format from scope), shaped the
// same way llm.OpenAIBackend talks to its own HTTP endpoint.
type WxtechAdapter struct {
	apiKey     string
	baseURL    string
	hoursAhead int
	client     *http.Client
}

// NewWxtechAdapter builds the adapter. hoursAhead bounds how far past
// target the requested window extends (spec §4.8
// WEATHER_FORECAST_HOURS_AHEAD).
func NewWxtechAdapter(apiKey string, hoursAhead int) (*WxtechAdapter, error) {
	if apiKey == "" {
		return nil, &apperrors.ConfigError{Msg: "WXTECH_API_KEY is required to construct the wxtech adapter"}
	}
	if hoursAhead <= 0 {
		hoursAhead = 24
	}
	return &WxtechAdapter{
		apiKey:     apiKey,
		baseURL:    defaultWxtechBaseURL,
		hoursAhead: hoursAhead,
		client:     &http.Client{Timeout: 20 * time.Second},
	}, nil
}

func (a *WxtechAdapter) Fetch(ctx context.Context, lat, lon float64, target time.Time) (domain.ForecastCollection, error) {
	if a == nil {
		return domain.ForecastCollection{}, &apperrors.WeatherFetchError{Kind: apperrors.WeatherFetchAPIKeyInvalid, Err: fmt.Errorf("forecast/wxtech: adapter not configured")}
	}
	url := fmt.Sprintf("%s?lat=%s&lon=%s&hours=%d",
		a.baseURL, strconv.FormatFloat(lat, 'f', 6, 64), strconv.FormatFloat(lon, 'f', 6, 64), a.hoursAhead)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.ForecastCollection{}, fmt.Errorf("forecast/wxtech: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return domain.ForecastCollection{}, &apperrors.WeatherFetchError{Kind: apperrors.WeatherFetchNetwork, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ForecastCollection{}, &apperrors.WeatherFetchError{Kind: apperrors.WeatherFetchNetwork, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return domain.ForecastCollection{}, &apperrors.WeatherFetchError{Kind: apperrors.WeatherFetchRateLimited, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.ForecastCollection{}, &apperrors.WeatherFetchError{Kind: apperrors.WeatherFetchAPIKeyInvalid, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode >= 500:
		return domain.ForecastCollection{}, &apperrors.WeatherFetchError{Kind: apperrors.WeatherFetchTimeout, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return domain.ForecastCollection{}, &apperrors.WeatherFetchError{Kind: apperrors.WeatherFetchUnknown, Err: fmt.Errorf("status %d: %s", resp.StatusCode, body)}
	}

	var payload wxtechResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.ForecastCollection{}, &apperrors.WeatherFetchError{Kind: apperrors.WeatherFetchUnknown, Err: err}
	}

	samples := make([]domain.WeatherForecast, 0, len(payload.Hourly))
	for _, h := range payload.Hourly {
		ts, err := time.Parse(time.RFC3339, h.DatetimeUTC)
		if err != nil {
			continue
		}
		samples = append(samples, domain.WeatherForecast{
			DatetimeUTC:      ts,
			Condition:        domain.ConditionEnum(h.Condition).Normalize(),
			PrecipitationMM:  h.PrecipitationMM,
			TemperatureC:     h.TemperatureC,
			FeelsLikeC:       h.FeelsLikeC,
			HumidityPct:      h.HumidityPct,
			PressureHPa:      h.PressureHPa,
			WindSpeedMPS:     h.WindSpeedMPS,
			WindDirection:    domain.WindDirectionFromDegrees(h.WindDegrees),
			CloudCoveragePct: h.CloudCoveragePct,
			VisibilityKM:     h.VisibilityKM,
			UVIndex:          h.UVIndex,
		})
	}
	if len(samples) == 0 {
		return domain.ForecastCollection{}, &apperrors.WeatherFetchError{Kind: apperrors.WeatherFetchUnknown, Err: fmt.Errorf("empty forecast payload")}
	}

	locationID := fmt.Sprintf("%.6f,%.6f", lat, lon)
	for i := range samples {
		samples[i].LocationID = locationID
	}
	return domain.NewForecastCollection(locationID, samples), nil
}

type wxtechResponse struct {
	Hourly []wxtechHourly `json:"hourly"`
}

type wxtechHourly struct {
	DatetimeUTC      string  `json:"datetime_utc"`
	Condition        string  `json:"condition"`
	PrecipitationMM  float64 `json:"precipitation_mm"`
	TemperatureC     float64 `json:"temperature_c"`
	FeelsLikeC       float64 `json:"feels_like_c"`
	HumidityPct      float64 `json:"humidity_pct"`
	PressureHPa      float64 `json:"pressure_hpa"`
	WindSpeedMPS     float64 `json:"wind_speed_mps"`
	WindDegrees      float64 `json:"wind_degrees"`
	CloudCoveragePct float64 `json:"cloud_coverage_pct"`
	VisibilityKM     float64 `json:"visibility_km"`
	UVIndex          float64 `json:"uv_index"`
}
