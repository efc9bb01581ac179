package forecast

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/sakamo-wni/weathercomment/internal/domain"
)

// PopularLocationSource supplies the "popular locations" list read by the
// cache warmer (spec §4.5: "a background task reads a file listing
// popular locations (by recent access count) and preloads them").
type PopularLocationSource interface {
	PopularLocations(ctx context.Context) ([]domain.Location, error)
}

// Warmer periodically preloads popular locations into the Service, best
// effort: failures are logged, never surfaced (spec §4.5). Scheduling is
// done with github.com/robfig/cron/v3: Start takes the interval as a
// time.Duration and registers it as an "@every <interval>" schedule.
type Warmer struct {
	svc    *Service
	source PopularLocationSource
	log    *zap.Logger

	mu      sync.Mutex
	running bool
}

// NewWarmer builds a Warmer bound to svc and source.
func NewWarmer(svc *Service, source PopularLocationSource, log *zap.Logger) *Warmer {
	return &Warmer{svc: svc, source: source, log: log}
}

// WarmOnce runs a single warming pass, fetching each popular location
// concurrently, matching weather-alert-service's CacheWarmer.Warm
// fan-out/fan-in shape.
func (w *Warmer) WarmOnce(ctx context.Context) {
	locs, err := w.source.PopularLocations(ctx)
	if err != nil {
		if w.log != nil {
			w.log.Warn("cache warming: could not read popular locations", zap.Error(err))
		}
		return
	}

	start := time.Now()
	var wg sync.WaitGroup
	var failures int
	var mu sync.Mutex
	for _, loc := range locs {
		loc := loc
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := w.svc.Get(ctx, loc, time.Now().Add(time.Hour)); err != nil {
				mu.Lock()
				failures++
				mu.Unlock()
				if w.log != nil {
					w.log.Warn("cache warming: location failed", zap.String("location_id", loc.ID), zap.Error(err))
				}
			}
		}()
	}
	wg.Wait()

	if w.log != nil {
		w.log.Info("cache warming complete",
			zap.Int("locations", len(locs)), zap.Int("failures", failures),
			zap.Duration("duration", time.Since(start)))
	}
}

// Start schedules WarmOnce on a cron.Cron running at the given interval
// (spec default 1h) and runs one pass immediately. Returns a stop
// function; Start is a no-op (returns a no-op stop) if already running.
func (w *Warmer) Start(ctx context.Context, interval time.Duration) (stop func()) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return func() {}
	}
	w.running = true
	w.mu.Unlock()

	if interval <= 0 {
		interval = time.Hour
	}

	c := cron.New()
	spec := "@every " + interval.String()
	_, _ = c.AddFunc(spec, func() { w.WarmOnce(ctx) })
	c.Start()

	go w.WarmOnce(ctx)

	return func() {
		c.Stop()
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}
}
