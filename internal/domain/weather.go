package domain

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// ConditionEnum is the normalized weather condition vocabulary.
type ConditionEnum string

const (
	ConditionClear     ConditionEnum = "clear"
	ConditionCloudy    ConditionEnum = "cloudy"
	ConditionThinCloud ConditionEnum = "thin_cloud"
	ConditionRainy     ConditionEnum = "rainy"
	ConditionHeavyRain ConditionEnum = "heavy_rain"
	ConditionThunder   ConditionEnum = "thunder"
	ConditionSnow      ConditionEnum = "snow"
	ConditionSleet     ConditionEnum = "sleet"
	ConditionFog       ConditionEnum = "fog"
	ConditionStorm     ConditionEnum = "storm"
	ConditionOther     ConditionEnum = "other"
)

// Normalize folds locale-specific "thin cloud" spellings into ConditionCloudy,
// the single place this decision is made (spec §9 Open Question: treat thin
// cloud as cloudy everywhere, never as clear).
func (c ConditionEnum) Normalize() ConditionEnum {
	switch c {
	case ConditionThinCloud, "thin cloud", "薄曇り", "usugumori":
		return ConditionCloudy
	case "":
		return ConditionOther
	default:
		return c
	}
}

// WindDirection is one of the 16 compass points.
type WindDirection string

const (
	WindN   WindDirection = "N"
	WindNNE WindDirection = "NNE"
	WindNE  WindDirection = "NE"
	WindENE WindDirection = "ENE"
	WindE   WindDirection = "E"
	WindESE WindDirection = "ESE"
	WindSE  WindDirection = "SE"
	WindSSE WindDirection = "SSE"
	WindS   WindDirection = "S"
	WindSSW WindDirection = "SSW"
	WindSW  WindDirection = "SW"
	WindWSW WindDirection = "WSW"
	WindW   WindDirection = "W"
	WindWNW WindDirection = "WNW"
	WindNW  WindDirection = "NW"
	WindNNW WindDirection = "NNW"
)

var compass = [16]WindDirection{
	WindN, WindNNE, WindNE, WindENE, WindE, WindESE, WindSE, WindSSE,
	WindS, WindSSW, WindSW, WindWSW, WindW, WindWNW, WindNW, WindNNW,
}

// WindDirectionFromDegrees derives one of the 16 compass values from a
// meteorological bearing in degrees (0 = north, clockwise).
func WindDirectionFromDegrees(deg float64) WindDirection {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	idx := int(math.Round(deg/22.5)) % 16
	return compass[idx]
}

// WeatherForecast is a single forecast sample for a location at a time.
type WeatherForecast struct {
	LocationID       string
	DatetimeUTC      time.Time
	Condition        ConditionEnum
	PrecipitationMM  float64
	TemperatureC     float64
	FeelsLikeC       float64
	HumidityPct      float64
	PressureHPa      float64
	WindSpeedMPS     float64
	WindDirection    WindDirection
	CloudCoveragePct float64
	VisibilityKM     float64
	UVIndex          float64
}

// Validate checks the numeric invariants from spec §3.
func (f WeatherForecast) Validate() error {
	if f.TemperatureC < -50 || f.TemperatureC > 60 {
		return fmt.Errorf("domain: temperature_c out of range: %v", f.TemperatureC)
	}
	if f.HumidityPct < 0 || f.HumidityPct > 100 {
		return fmt.Errorf("domain: humidity out of range: %v", f.HumidityPct)
	}
	if f.PrecipitationMM < 0 {
		return fmt.Errorf("domain: precipitation_mm negative: %v", f.PrecipitationMM)
	}
	if f.WindSpeedMPS < 0 || f.WindSpeedMPS > 200 {
		return fmt.Errorf("domain: wind_speed_mps out of range: %v", f.WindSpeedMPS)
	}
	return nil
}

// IsHeavyRain classifies precipitation at or above the heavy-rain boundary.
// Spec §8 boundary behavior: "10.0 mm/h counts as heavy_rain" (rounded-up
// classification at the threshold).
func (f WeatherForecast) IsHeavyRain(thresholdMMPerHour float64) bool {
	return f.PrecipitationMM >= thresholdMMPerHour
}

// IsRainy classifies a forecast as rainy either by measured precipitation
// at or above thresholdMMPerHour, or by a rain-bearing normalized condition
// (rainy, heavy_rain, thunder) regardless of the reported precipitation
// value.
func (f WeatherForecast) IsRainy(thresholdMMPerHour float64) bool {
	if f.PrecipitationMM >= thresholdMMPerHour {
		return true
	}
	switch f.Condition.Normalize() {
	case ConditionRainy, ConditionHeavyRain, ConditionThunder:
		return true
	default:
		return false
	}
}

// ForecastCollection is an ordered, single-location sequence of forecasts.
type ForecastCollection struct {
	LocationID string
	Samples    []WeatherForecast // sorted ascending by DatetimeUTC
}

// NewForecastCollection sorts samples and returns a collection. All samples
// must share LocationID; callers own that invariant (the adapter layer
// only ever builds collections for a single location).
func NewForecastCollection(locationID string, samples []WeatherForecast) ForecastCollection {
	sorted := make([]WeatherForecast, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].DatetimeUTC.Before(sorted[j].DatetimeUTC)
	})
	return ForecastCollection{LocationID: locationID, Samples: sorted}
}

// At returns the sample whose DatetimeUTC is closest to t.
func (c ForecastCollection) At(t time.Time) (WeatherForecast, bool) {
	if len(c.Samples) == 0 {
		return WeatherForecast{}, false
	}
	best := c.Samples[0]
	bestDiff := absDuration(best.DatetimeUTC.Sub(t))
	for _, s := range c.Samples[1:] {
		d := absDuration(s.DatetimeUTC.Sub(t))
		if d < bestDiff {
			best, bestDiff = s, d
		}
	}
	return best, true
}

// Around returns every sample within +/- window of t.
func (c ForecastCollection) Around(t time.Time, window time.Duration) []WeatherForecast {
	var out []WeatherForecast
	for _, s := range c.Samples {
		if absDuration(s.DatetimeUTC.Sub(t)) <= window {
			out = append(out, s)
		}
	}
	return out
}

// Timeline is the past-12h / target / future (+3/+6/+9/+12h) view used by
// the output DTO's weather_timeline field.
type Timeline struct {
	Past   []WeatherForecast
	Target WeatherForecast
	Future []WeatherForecast
}

// Timeline builds the spec §3 timeline: past-12h, t, and future
// +3h/+6h/+9h/+12h samples (nearest available sample per offset).
func (c ForecastCollection) Timeline(t time.Time) Timeline {
	tl := Timeline{}
	if target, ok := c.At(t); ok {
		tl.Target = target
	}
	tl.Past = c.Around(t.Add(-12*time.Hour), time.Hour)
	for _, h := range []int{3, 6, 9, 12} {
		if s, ok := c.At(t.Add(time.Duration(h) * time.Hour)); ok {
			tl.Future = append(tl.Future, s)
		}
	}
	return tl
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
