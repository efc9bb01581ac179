package validator

import (
	"fmt"
	"time"

	"github.com/sakamo-wni/weathercomment/internal/domain"
)

// WeatherConditionChecker rejects comments that contradict the forecast
// condition (spec §4.3 checker 1).
type WeatherConditionChecker struct{}

func (WeatherConditionChecker) Name() string { return "weather_condition" }

var rainForbidden = []string{"clear sky", "sunny", "pleasant outdoors", "great for a walk"}
var heavyRainForbidden = append(append([]string{}, rainForbidden...), "light rain", "changing sky")
var rainAdviceRequired = []string{"umbrella", "rain gear", "caution", "indoors"}
var clearForbidden = []string{"rainy", "damp", "gloomy", "umbrella required"}
var cloudyForbidden = []string{"blue sky", "dazzling", "laundry day"}
var stableCloudyForbidden = []string{"sudden change", "unstable sky"}

func (WeatherConditionChecker) Check(pair domain.CommentPair, f domain.WeatherForecast, _ domain.Location, _ time.Time) (bool, string) {
	condition := f.Condition.Normalize()
	weatherText := pair.Weather.Text
	adviceText := pair.Advice.Text

	switch condition {
	case domain.ConditionRainy, domain.ConditionHeavyRain, domain.ConditionThunder:
		forbidden := rainForbidden
		if condition == domain.ConditionHeavyRain {
			forbidden = heavyRainForbidden
		}
		if match, ok := containsAny(weatherText, forbidden...); ok {
			return false, fmt.Sprintf("weather_condition: forbidden phrase %q for condition %s", match, condition)
		}
		if match, ok := containsAny(adviceText, forbidden...); ok {
			return false, fmt.Sprintf("weather_condition: forbidden phrase %q for condition %s", match, condition)
		}
		if _, ok := containsAny(adviceText, rainAdviceRequired...); !ok {
			return false, "weather_condition: advice missing required rain-precaution vocabulary"
		}

	case domain.ConditionClear:
		if match, ok := containsAny(weatherText, clearForbidden...); ok {
			return false, fmt.Sprintf("weather_condition: forbidden phrase %q for condition clear", match)
		}
		if match, ok := containsAny(adviceText, clearForbidden...); ok {
			return false, fmt.Sprintf("weather_condition: forbidden phrase %q for condition clear", match)
		}

	case domain.ConditionCloudy:
		if match, ok := containsAny(weatherText, cloudyForbidden...); ok {
			return false, fmt.Sprintf("weather_condition: forbidden phrase %q for condition cloudy", match)
		}
		if match, ok := containsAny(adviceText, cloudyForbidden...); ok {
			return false, fmt.Sprintf("weather_condition: forbidden phrase %q for condition cloudy", match)
		}
		if isStableCloudy(f) {
			if match, ok := containsAny(weatherText, stableCloudyForbidden...); ok {
				return false, fmt.Sprintf("weather_condition: forbidden phrase %q for stable cloudy weather", match)
			}
		}
	}
	return true, ""
}

// isStableCloudy treats low precipitation and low cloud-coverage
// variability (approximated here as low precipitation under cloudy skies)
// as "stable" — the spec leaves the exact stability signal unspecified,
// so low precipitation is used as the proxy available on a single sample.
func isStableCloudy(f domain.WeatherForecast) bool {
	return f.Condition.Normalize() == domain.ConditionCloudy && f.PrecipitationMM == 0
}
