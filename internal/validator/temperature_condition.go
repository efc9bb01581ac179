package validator

import (
	"strconv"
	"time"

	"github.com/sakamo-wni/weathercomment/internal/config"
	"github.com/sakamo-wni/weathercomment/internal/domain"
)

// TemperatureConditionChecker enforces spec §4.3 checker 2's temperature
// band rules. Thresholds come exclusively from config.Thresholds, never a
// literal in this file.
type TemperatureConditionChecker struct {
	Thresholds config.Thresholds
}

func (TemperatureConditionChecker) Name() string { return "temperature_condition" }

var coldWords = []string{"cold", "chilly"}
var hotWords = []string{"hot", "sweltering"}
var heatStrokeWords = []string{"heat stroke", "heatstroke", "heat-stroke"}
var warningWords = []string{"warning", "caution", "careful", "be careful", "watch out"}
var extremeColdWords = []string{"extreme cold"}
var scorchingWords = []string{"scorching"}

func (c TemperatureConditionChecker) Check(pair domain.CommentPair, f domain.WeatherForecast, _ domain.Location, _ time.Time) (bool, string) {
	temp := f.TemperatureC
	text := pair.Weather.Text + " " + pair.Advice.Text

	if temp >= c.Thresholds.HighTempForbidColdC {
		if match, ok := containsAny(text, coldWords...); ok {
			return false, "temperature_condition: forbidden word " + match + " at temp >= " + formatC(c.Thresholds.HighTempForbidColdC)
		}
	}
	if temp < c.Thresholds.LowTempForbidHotC {
		if match, ok := containsAny(text, hotWords...); ok {
			return false, "temperature_condition: forbidden word " + match + " at temp < " + formatC(c.Thresholds.LowTempForbidHotC)
		}
	}
	if temp >= c.Thresholds.HeatStrokeAdvisoryC && temp < c.Thresholds.HeatStrokeRequiredC {
		if _, warns := containsAny(text, warningWords...); warns {
			if _, ok := containsAny(text, heatStrokeWords...); !ok {
				return false, "temperature_condition: warning phrasing missing heat-stroke caution vocabulary"
			}
		}
	}
	if temp >= c.Thresholds.HeatStrokeRequiredC {
		if _, warns := containsAny(text, warningWords...); warns {
			if _, ok := containsAny(text, heatStrokeWords...); !ok {
				return false, "temperature_condition: any warning at this temperature requires heat-stroke caution vocabulary"
			}
		}
	}
	if temp >= c.Thresholds.ExtremeBandLowC && temp <= c.Thresholds.ExtremeBandHighC {
		if match, ok := containsAny(text, extremeColdWords...); ok {
			return false, "temperature_condition: forbidden word " + match + " in moderate band"
		}
		if match, ok := containsAny(text, scorchingWords...); ok {
			return false, "temperature_condition: forbidden word " + match + " in moderate band"
		}
	}
	return true, ""
}

func formatC(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "C"
}
