package apitypes

import (
	"time"

	"github.com/google/uuid"

	"github.com/sakamo-wni/weathercomment/internal/domain"
	"github.com/sakamo-wni/weathercomment/internal/workflow"
)

// LocationFromDomain adapts a domain.Location to its wire shape.
func LocationFromDomain(l domain.Location) Location {
	return Location{ID: l.ID, Name: l.Name, Prefecture: l.Prefecture, Region: l.Region}
}

func forecastPointFromDomain(f domain.WeatherForecast) ForecastPoint {
	return ForecastPoint{DatetimeUTC: f.DatetimeUTC, Condition: string(f.Condition.Normalize()), TemperatureC: f.TemperatureC}
}

func timelineFromDomain(tl domain.Timeline) WeatherTimeline {
	past := make([]ForecastPoint, 0, len(tl.Past))
	for _, s := range tl.Past {
		past = append(past, forecastPointFromDomain(s))
	}
	future := make([]ForecastPoint, 0, len(tl.Future))
	for _, s := range tl.Future {
		future = append(future, forecastPointFromDomain(s))
	}
	return WeatherTimeline{
		Summary:         timelineSummary(tl.Target),
		PastForecasts:   past,
		FutureForecasts: future,
	}
}

func timelineSummary(target domain.WeatherForecast) string {
	if target.DatetimeUTC.IsZero() {
		return ""
	}
	return string(target.Condition.Normalize())
}

// GenerateResponseOptions carries the remaining pieces a workflow.Result
// doesn't itself hold: the request's location/settings and the fetched
// forecast used to fill the weather/metadata blocks.
type GenerateResponseOptions struct {
	Location       domain.Location
	Forecast       domain.ForecastCollection
	TargetDatetime time.Time
	Settings       Settings
}

// BuildGenerateResponse maps a completed workflow.Result plus the request's
// location and forecast context into the §6.1 POST /api/generate response
// shape. It reuses domain.ForecastCollection.Timeline for the
// metadata.weather_timeline field rather than re-deriving the past/future
// windows.
func BuildGenerateResponse(result *workflow.Result, opts GenerateResponseOptions, now time.Time) GenerateResponse {
	tl := opts.Forecast.Timeline(opts.TargetDatetime)
	current := forecastPointFromDomain(tl.Target)

	forecastTail := make([]ForecastPoint, 0, len(tl.Future))
	for _, s := range tl.Future {
		forecastTail = append(forecastTail, forecastPointFromDomain(s))
	}

	confidence := result.Validation.Score
	if forced, _ := result.Metadata["forced"].(bool); forced {
		confidence = 1.0
	}

	nodeTimes := map[string]int64{}
	if raw, ok := result.Metadata["node_execution_times"]; ok {
		if times, ok := raw.(map[string]int64); ok {
			nodeTimes = times
		}
	}

	return GenerateResponse{
		ID:            uuid.NewString(),
		Comment:       result.FinalWeather,
		AdviceComment: result.FinalAdvice,
		Weather: WeatherBlock{
			Current:  current,
			Forecast: forecastTail,
		},
		Metadata: GenerateMetadata{
			Temperature:            tl.Target.TemperatureC,
			WeatherCondition:       string(tl.Target.Condition.Normalize()),
			WindSpeed:              tl.Target.WindSpeedMPS,
			Humidity:               tl.Target.HumidityPct,
			WeatherForecastTime:    tl.Target.DatetimeUTC,
			WeatherTimeline:        timelineFromDomain(tl),
			SelectedWeatherComment: result.SelectedWeather,
			SelectedAdviceComment:  result.SelectedAdvice,
			NodeExecutionTimes:     nodeTimes,
		},
		Timestamp:  now,
		Confidence: confidence,
		Location:   LocationFromDomain(opts.Location),
		Settings:   opts.Settings,
	}
}

// BuildHistoryResponse adapts a slice of domain.HistoryRecord into the
// §6.1 GET /api/history response shape.
func BuildHistoryResponse(records []domain.HistoryRecord) HistoryResponse {
	out := make([]HistoryRecord, 0, len(records))
	for _, r := range records {
		out = append(out, HistoryRecord{
			TimestampUTC: r.TimestampUTC,
			LocationID:   r.LocationID,
			LLMProvider:  r.LLMProvider,
			Success:      r.Success,
			WeatherText:  r.WeatherText,
			AdviceText:   r.AdviceText,
			Error:        r.Error,
		})
	}
	return HistoryResponse{Records: out}
}

// BuildWeatherResponse adapts a forecast collection into the §6.1
// GET /api/weather/{locationId} response shape: the sample nearest now,
// plus the remaining samples at or after it as the forecast tail.
func BuildWeatherResponse(forecast domain.ForecastCollection, now time.Time) WeatherResponse {
	current, _ := forecast.At(now)
	var tail []ForecastPoint
	for _, s := range forecast.Samples {
		if s.DatetimeUTC.After(now) {
			tail = append(tail, forecastPointFromDomain(s))
		}
	}
	return WeatherResponse{Current: forecastPointFromDomain(current), Forecast: tail}
}
