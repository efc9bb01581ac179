// Package forecast implements the three-tier cache hierarchy, external
// adapter, and cache warming described by spec §4.5 (C5). The cache
// tiers are grounded on weather-alert-service/internal/cache/cache.go's
// map+TTL shape; the circuit breaker is adapted from
// weather-alert-service/internal/circuitbreaker/circuitbreaker.go; the
// shared backoff policy is internal/retry, reused from the LLM Adapter.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sakamo-wni/weathercomment/internal/apperrors"
	"github.com/sakamo-wni/weathercomment/internal/domain"
	"github.com/sakamo-wni/weathercomment/internal/geo"
	"github.com/sakamo-wni/weathercomment/internal/observability"
	"github.com/sakamo-wni/weathercomment/internal/retry"
)

// Stats holds the exposed counters: hit and miss counts per tier (from
// which a hit rate follows), the spatial-borrow count and the API-call
// count. It carries no estimate of memory usage.
type Stats struct {
	L1Hits, L1Misses int64
	L2Hits, L2Misses int64
	L3Hits, L3Misses int64
	SpatialBorrows   int64
	APICalls         int64
}

// Service implements the C5 Forecast Service.
type Service struct {
	l1       L1Cache
	l2       *FileL2Cache
	spatial  *geo.SpatialIndex
	adapter  ExternalAdapter
	breaker  *circuitBreaker
	policy   retry.Policy
	l1TTL    time.Duration
	l2TTL    time.Duration
	radiusKM float64
	k        int

	group   singleflight.Group
	log     *zap.Logger
	metrics *observability.Metrics
	stats   Stats
}

// Option configures a Service.
type Option func(*Service)

func WithL1TTL(ttl time.Duration) Option { return func(s *Service) { s.l1TTL = ttl } }
func WithSpatialRadiusKM(km float64) Option {
	return func(s *Service) { s.radiusKM = km }
}
func WithSpatialK(k int) Option { return func(s *Service) { s.k = k } }
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService wires the three cache tiers around adapter.
func NewService(l1 L1Cache, l2 *FileL2Cache, spatial *geo.SpatialIndex, adapter ExternalAdapter, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		l1:       l1,
		l2:       l2,
		spatial:  spatial,
		adapter:  adapter,
		breaker:  newCircuitBreaker(5, 2, 30*time.Second),
		policy:   retry.DefaultPolicy(),
		l1TTL:    300 * time.Second,
		l2TTL:    6 * time.Hour,
		radiusKM: 10,
		k:        5,
		log:      log,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Get resolves a forecast collection for (location, target) through L1 ->
// L2 -> L3 spatial borrow -> external fetch, in that order, writing
// through to L1 and L2 on an external fetch. The returned borrow source id
// is non-empty only on an L3 spatial-borrow hit (spec §4.5, §6.1
// metadata.spatial_borrow), naming the neighbor location id the collection
// was served from.
func (s *Service) Get(ctx context.Context, loc domain.Location, target time.Time) (domain.ForecastCollection, string, error) {
	hourFloor := HourFloor(target)

	if fc, ok := s.l1.Get(ctx, loc.ID, hourFloor); ok {
		s.recordHit(&s.stats.L1Hits, "l1")
		return fc, "", nil
	}
	s.recordMiss(&s.stats.L1Misses, "l1")

	if s.l2 != nil {
		if fc, ok := s.l2.Get(loc.ID, target, time.Now()); ok {
			s.recordHit(&s.stats.L2Hits, "l2")
			s.l1.Set(ctx, loc.ID, hourFloor, fc, s.l1TTL)
			return fc, "", nil
		}
		s.recordMiss(&s.stats.L2Misses, "l2")
	}

	if fc, srcID, ok := s.trySpatialBorrow(ctx, loc, hourFloor); ok {
		s.recordHit(&s.stats.L3Hits, "l3")
		s.stats.SpatialBorrows++
		if s.metrics != nil {
			s.metrics.SpatialBorrows.Inc()
		}
		borrowed := domain.ForecastCollection{LocationID: loc.ID, Samples: fc.Samples}
		s.l1.Set(ctx, loc.ID, hourFloor, borrowed, s.l1TTL)
		if s.log != nil {
			s.log.Info("forecast served via spatial borrow", zap.String("location_id", loc.ID), zap.String("source_location_id", srcID))
		}
		return borrowed, srcID, nil
	}
	s.recordMiss(&s.stats.L3Misses, "l3")

	fc, err := s.fetchExternal(ctx, loc, target, hourFloor)
	return fc, "", err
}

func (s *Service) trySpatialBorrow(ctx context.Context, loc domain.Location, hourFloor time.Time) (domain.ForecastCollection, string, bool) {
	if s.spatial == nil {
		return domain.ForecastCollection{}, "", false
	}
	neighbors := s.spatial.Nearest(loc.Latitude, loc.Longitude, s.radiusKM, s.k, loc.ID)
	for _, n := range neighbors {
		if fc, ok := s.l1.Get(ctx, n.LocationID, hourFloor); ok {
			return fc, n.LocationID, true
		}
		if s.l2 != nil {
			if fc, ok := s.l2.Get(n.LocationID, hourFloor, time.Now()); ok {
				return fc, n.LocationID, true
			}
		}
	}
	return domain.ForecastCollection{}, "", false
}

// fetchExternal issues a single in-flight-coalesced external call per
// (location_id, target_hour), with retry/backoff and circuit breaker
// protection, writing the result through to L1 and L2 on success.
func (s *Service) fetchExternal(ctx context.Context, loc domain.Location, target, hourFloor time.Time) (domain.ForecastCollection, error) {
	key := fmt.Sprintf("%s:%d", loc.ID, hourFloor.Unix())

	v, err, _ := s.group.Do(key, func() (any, error) {
		var fc domain.ForecastCollection
		s.stats.APICalls++
		if s.metrics != nil {
			s.metrics.APICalls.WithLabelValues("weather").Inc()
		}

		retryErr := retry.Do(ctx, s.policy, classifyWeatherRetryable, func(ctx context.Context, _ int) error {
			return s.breaker.call(ctx, func() error {
				result, fetchErr := s.adapter.Fetch(ctx, loc.Latitude, loc.Longitude, target)
				if fetchErr != nil {
					return fetchErr
				}
				fc = result
				return nil
			})
		})
		if retryErr != nil {
			return domain.ForecastCollection{}, classifyWeatherError(retryErr)
		}
		return fc, nil
	})
	if err != nil {
		return domain.ForecastCollection{}, err
	}

	fc := v.(domain.ForecastCollection)
	s.l1.Set(ctx, loc.ID, hourFloor, fc, s.l1TTL)
	if s.l2 != nil {
		if werr := s.l2.Write(loc.ID, fc, time.Now()); werr != nil && s.log != nil {
			s.log.Warn("forecast L2 write failed", zap.Error(werr))
		}
	}
	return fc, nil
}

func classifyWeatherRetryable(err error) bool {
	var wfe *apperrors.WeatherFetchError
	if errors.As(err, &wfe) {
		return wfe.Kind == apperrors.WeatherFetchTimeout || wfe.Kind == apperrors.WeatherFetchNetwork
	}
	return true
}

// classifyWeatherError maps an exhausted-retry error into the spec §7
// tagged WeatherFetchError, unless it already is one.
func classifyWeatherError(err error) error {
	var wfe *apperrors.WeatherFetchError
	if errors.As(err, &wfe) {
		return wfe
	}
	return &apperrors.WeatherFetchError{Kind: apperrors.WeatherFetchUnknown, Err: err}
}

func (s *Service) recordHit(counter *int64, tier string) {
	*counter++
	if s.metrics != nil {
		s.metrics.CacheHits.WithLabelValues(tier).Inc()
	}
}

func (s *Service) recordMiss(counter *int64, tier string) {
	*counter++
	if s.metrics != nil {
		s.metrics.CacheMisses.WithLabelValues(tier).Inc()
	}
}

// StatsSnapshot returns a copy of the current counters.
func (s *Service) StatsSnapshot() Stats { return s.stats }
