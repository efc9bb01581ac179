package validator

import (
	"time"

	"github.com/sakamo-wni/weathercomment/internal/domain"
)

// RegionalChecker rejects comment vocabulary that is climatically implausible
// for the location's prefecture (spec §4.3 checker 4).
type RegionalChecker struct{}

func (RegionalChecker) Name() string { return "regional" }

var okinawaForbidden = []string{"snow", "freezing", "frost"}
var hokkaidoForbidden = []string{"scorching", "tropical night"}

func (RegionalChecker) Check(pair domain.CommentPair, _ domain.WeatherForecast, loc domain.Location, _ time.Time) (bool, string) {
	text := pair.Weather.Text + " " + pair.Advice.Text

	switch loc.Prefecture {
	case "Okinawa":
		if match, ok := containsAny(text, okinawaForbidden...); ok {
			return false, "regional: forbidden word " + match + " for Okinawa"
		}
	case "Hokkaido":
		if match, ok := containsAny(text, hokkaidoForbidden...); ok {
			return false, "regional: forbidden word " + match + " for Hokkaido"
		}
	}
	return true, ""
}
