package forecast

import (
	"context"
	"time"

	"github.com/sakamo-wni/weathercomment/internal/domain"
)

// ExternalAdapter is the C5.1 weather-provider adapter contract: takes
// (lat, lon, target-window) and returns a normalized ForecastCollection
// spanning >= 24h hourly (or the provider's native period) centered on
// target. Concrete wire formats are out of scope (spec §1); production
// wiring supplies one real implementation per external provider.
type ExternalAdapter interface {
	Fetch(ctx context.Context, lat, lon float64, target time.Time) (domain.ForecastCollection, error)
}
