package forecast

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sakamo-wni/weathercomment/internal/memstat"
)

// PressureEvictor polls host memory usage and trims MemoryL1 under load,
// the optional degrade-under-pressure path from spec §5. It is a no-op
// wherever memstat.UsageRatio is unavailable (non-Linux), matching the
// spec's stated "degrades to a no-op on non-Linux."
type PressureEvictor struct {
	cache     *MemoryL1
	threshold float64
	fraction  float64
	interval  time.Duration
	log       *zap.Logger
}

// NewPressureEvictor builds an evictor trimming fraction of each shard once
// host memory usage exceeds threshold, checked every interval.
func NewPressureEvictor(cache *MemoryL1, threshold, fraction float64, interval time.Duration, log *zap.Logger) *PressureEvictor {
	if threshold <= 0 {
		threshold = 0.85
	}
	if fraction <= 0 {
		fraction = 0.25
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &PressureEvictor{cache: cache, threshold: threshold, fraction: fraction, interval: interval, log: log}
}

// Run polls until ctx is cancelled. Intended to be launched with `go`.
func (p *PressureEvictor) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.checkOnce()
		}
	}
}

func (p *PressureEvictor) checkOnce() {
	ratio, err := memstat.UsageRatio()
	if err != nil {
		return
	}
	if ratio < p.threshold {
		return
	}
	evicted := p.cache.Trim(p.fraction)
	if evicted > 0 && p.log != nil {
		p.log.Warn("memory pressure eviction triggered",
			zap.Float64("usage_ratio", ratio),
			zap.Int("entries_evicted", evicted),
		)
	}
}
