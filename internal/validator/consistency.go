package validator

import (
	"time"

	"github.com/sakamo-wni/weathercomment/internal/domain"
)

// ConsistencyChecker runs pairwise checks between the weather line and the
// advice line of the same candidate (spec §4.3 checker 6).
type ConsistencyChecker struct{}

func (ConsistencyChecker) Name() string { return "consistency" }

var toneWarn = []string{"careful", "caution", "be careful"}
var toneRelax = []string{"relax", "take it easy", "no worries"}
var umbrellaWord = "umbrella"
var coldSymptomWords = []string{"sweat", "sweating", "heat stroke"}
var hotSymptomWords = []string{"shiver", "shivering", "frostbite"}
var nightWords = []string{"night", "evening"}
var daytimeHeatWords = []string{"scorching", "sweltering"}

func (ConsistencyChecker) Check(pair domain.CommentPair, f domain.WeatherForecast, _ domain.Location, _ time.Time) (bool, string) {
	weatherText := pair.Weather.Text
	adviceText := pair.Advice.Text
	combined := weatherText + " " + adviceText

	// (a) weather-reality contradiction: condition says rain but weather line denies it.
	if f.IsRainy(0.1) {
		if _, ok := containsAny(weatherText, "no rain", "dry all day"); ok {
			return false, "consistency: weather line denies rain under rainy forecast"
		}
	}

	// (b) temperature-symptom contradiction.
	if f.TemperatureC >= 30 {
		if match, ok := containsAny(combined, hotSymptomWords...); ok {
			return false, "consistency: cold-weather symptom " + match + " under high temperature"
		}
	}
	if f.TemperatureC < 12 {
		if match, ok := containsAny(combined, coldSymptomWords...); ok {
			return false, "consistency: hot-weather symptom " + match + " under low temperature"
		}
	}

	// (c) tone opposition.
	if _, warns := containsAny(combined, toneWarn...); warns {
		if match, ok := containsAny(combined, toneRelax...); ok {
			return false, "consistency: opposing tone, warning alongside " + match
		}
	}

	// (d) umbrella redundancy.
	if _, wOK := containsAny(weatherText, umbrellaWord); wOK {
		if _, aOK := containsAny(adviceText, umbrellaWord); aOK {
			return false, "consistency: umbrella mentioned in both weather and advice lines"
		}
	}

	// (e) time-of-day vs temperature phrasing.
	if _, night := containsAny(combined, nightWords...); night {
		if match, ok := containsAny(combined, daytimeHeatWords...); ok {
			return false, "consistency: daytime heat phrasing " + match + " alongside night reference"
		}
	}

	return true, ""
}
