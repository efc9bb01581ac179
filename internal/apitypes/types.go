// Package apitypes defines the wire-shape DTOs of spec §6.1's service-level
// HTTP API. No net/http server is implemented (out of scope); these plain
// structs with json tags exist so OutputBuild's product can be serialized
// by a thin adapter without that adapter inventing its own shape.
package apitypes

import "time"

// Location is the §6.1 GET /api/locations element and the location
// sub-object embedded in GenerateRequest/GenerateResponse.
type Location struct {
	ID         string `json:"id"`
	Name       string `json:"name" validate:"required"`
	Prefecture string `json:"prefecture"`
	Region     string `json:"region,omitempty"`
}

// GenerateRequest is the POST /api/generate request body.
type GenerateRequest struct {
	Location        Location   `json:"location" validate:"required"`
	LLMProvider     string     `json:"llmProvider" validate:"omitempty,oneof=openai anthropic gemini"`
	Temperature     *float64   `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	TargetDateTime  *time.Time `json:"targetDateTime,omitempty"`
	ExcludePrevious bool       `json:"excludePrevious,omitempty"`
}

// WeatherTimeline is the metadata.weather_timeline sub-object: a summary
// line plus the past-12h and future +3/+6/+9/+12h samples.
type WeatherTimeline struct {
	Summary         string           `json:"summary"`
	PastForecasts   []ForecastPoint  `json:"past_forecasts"`
	FutureForecasts []ForecastPoint  `json:"future_forecasts"`
}

// ForecastPoint is one sample inside a WeatherTimeline, trimmed to the
// fields a front-end timeline widget actually plots.
type ForecastPoint struct {
	DatetimeUTC  time.Time `json:"datetime_utc"`
	Condition    string    `json:"condition"`
	TemperatureC float64   `json:"temperature_c"`
}

// WeatherBlock is the generate response's top-level "weather" field:
// current conditions, the short forecast tail, and an optional trend note.
type WeatherBlock struct {
	Current  ForecastPoint   `json:"current"`
	Forecast []ForecastPoint `json:"forecast"`
	Trend    string          `json:"trend,omitempty"`
}

// GenerateMetadata is the generate response's "metadata" field (spec §6.1).
type GenerateMetadata struct {
	Temperature          float64           `json:"temperature"`
	WeatherCondition      string            `json:"weather_condition"`
	WindSpeed             float64           `json:"wind_speed"`
	Humidity              float64           `json:"humidity"`
	WeatherForecastTime    time.Time         `json:"weather_forecast_time"`
	WeatherTimeline        WeatherTimeline   `json:"weather_timeline"`
	SelectedWeatherComment string            `json:"selected_weather_comment"`
	SelectedAdviceComment  string            `json:"selected_advice_comment"`
	NodeExecutionTimes     map[string]int64  `json:"node_execution_times"`
}

// Settings echoes the effective generation settings back to the caller.
type Settings struct {
	UseUnifiedPath bool `json:"use_unified_path"`
	MaxRetries     int  `json:"max_retries"`
}

// GenerateResponse is the POST /api/generate response body (spec §6.1).
type GenerateResponse struct {
	ID             string           `json:"id"`
	Comment        string           `json:"comment"`
	AdviceComment  string           `json:"adviceComment"`
	Weather        WeatherBlock     `json:"weather"`
	Metadata       GenerateMetadata `json:"metadata"`
	Timestamp      time.Time        `json:"timestamp"`
	Confidence     float64          `json:"confidence"`
	Location       Location         `json:"location"`
	Settings       Settings         `json:"settings"`
}

// HistoryResponse is the GET /api/history?limit=N response body.
type HistoryResponse struct {
	Records []HistoryRecord `json:"records"`
}

// HistoryRecord mirrors domain.HistoryRecord with API-facing json tags.
type HistoryRecord struct {
	TimestampUTC time.Time `json:"timestamp_utc"`
	LocationID   string    `json:"location_id"`
	LLMProvider  string    `json:"llm_provider"`
	Success      bool      `json:"success"`
	WeatherText  string    `json:"weather_text,omitempty"`
	AdviceText   string    `json:"advice_text,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// WeatherResponse is the GET /api/weather/{locationId} response body.
type WeatherResponse struct {
	Current  ForecastPoint   `json:"current"`
	Forecast []ForecastPoint `json:"forecast"`
}

// HealthResponse is the GET /health response body.
type HealthResponse struct {
	Status string `json:"status"`
}

// Error codes (spec §6.1 closing paragraph).
const (
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeRateLimit      = "RATE_LIMIT"
	ErrCodeWeatherFetch   = "WEATHER_FETCH"
	ErrCodeLLMError       = "LLM_ERROR"
	ErrCodeTimeout        = "TIMEOUT"
	ErrCodeInternal       = "INTERNAL"
)

// ErrorDetail is the "error" sub-object of ErrorResponse.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorResponse is the uniform error body for every failing endpoint.
type ErrorResponse struct {
	Error     ErrorDetail `json:"error"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewErrorResponse builds an ErrorResponse stamped at now.
func NewErrorResponse(code, message, details string, now time.Time) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message, Details: details}, Timestamp: now}
}
