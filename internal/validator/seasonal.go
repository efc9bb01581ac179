package validator

import (
	"time"

	"github.com/sakamo-wni/weathercomment/internal/domain"
)

// SeasonalChecker rejects pollen vocabulary outside of pollen season, and
// always rejects it under rainy conditions (spec §4.3 checker 5).
type SeasonalChecker struct{}

func (SeasonalChecker) Name() string { return "seasonal" }

var pollenWords = []string{"pollen", "hay fever"}

func (SeasonalChecker) Check(pair domain.CommentPair, f domain.WeatherForecast, _ domain.Location, _ time.Time) (bool, string) {
	text := pair.Weather.Text + " " + pair.Advice.Text

	switch f.Condition.Normalize() {
	case domain.ConditionRainy, domain.ConditionHeavyRain, domain.ConditionThunder:
		if match, ok := containsAny(text, pollenWords...); ok {
			return false, "seasonal: forbidden word " + match + " under rainy conditions"
		}
	}

	if !inPollenSeason(jstMonth(f.DatetimeUTC)) {
		if match, ok := containsAny(text, pollenWords...); ok {
			return false, "seasonal: forbidden word " + match + " outside pollen season"
		}
	}
	return true, ""
}

// inPollenSeason reports whether month falls in February-May, the window
// the spec leaves implicit by naming its complement (June-January forbidden).
func inPollenSeason(m time.Month) bool {
	return m >= time.February && m <= time.May
}

// jst mirrors the fixed zone domain.DeriveSeason uses to key season off
// target_datetime, so checker 5's month band reads the same local month.
var jst = time.FixedZone("JST", 9*60*60)

func jstMonth(t time.Time) time.Month {
	return t.In(jst).Month()
}
