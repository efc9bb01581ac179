package validator

import (
	"time"

	"github.com/sakamo-wni/weathercomment/internal/config"
	"github.com/sakamo-wni/weathercomment/internal/domain"
)

// HumidityChecker enforces spec §4.3 checker 3's humidity band rules.
type HumidityChecker struct {
	Thresholds config.Thresholds
}

func (HumidityChecker) Name() string { return "humidity" }

var dryAirWords = []string{"dry air", "dry skin", "moisturize"}
var dehumidifyWords = []string{"dehumidify", "muggy"}

func (c HumidityChecker) Check(pair domain.CommentPair, f domain.WeatherForecast, _ domain.Location, _ time.Time) (bool, string) {
	text := pair.Weather.Text + " " + pair.Advice.Text

	if f.HumidityPct >= c.Thresholds.HighHumidityPct {
		if match, ok := containsAny(text, dryAirWords...); ok {
			return false, "humidity: forbidden word " + match + " at high humidity"
		}
	}
	if f.HumidityPct < c.Thresholds.LowHumidityPct {
		if match, ok := containsAny(text, dehumidifyWords...); ok {
			return false, "humidity: forbidden word " + match + " at low humidity"
		}
	}
	return true, ""
}
