package forecast

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sakamo-wni/weathercomment/internal/domain"
)

// FileL2Cache is the append-only per-location CSV cache (spec §4.5 L2):
// rows are (forecast_time, fetched_at, payload) where payload is one
// JSON-encoded domain.WeatherForecast sample. Grounded on the same
// append-write idiom as internal/history's generation log, generalized
// here to one file per location so a read only ever scans that
// location's own rows.
type FileL2Cache struct {
	dir string
	ttl time.Duration
	mu  sync.Mutex
}

// NewFileL2Cache ensures dir exists and returns a cache that treats rows
// older than ttl (default 6h) as stale.
func NewFileL2Cache(dir string, ttl time.Duration) (*FileL2Cache, error) {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("forecast: create L2 cache dir: %w", err)
	}
	return &FileL2Cache{dir: dir, ttl: ttl}, nil
}

func (c *FileL2Cache) path(locationID string) string {
	return filepath.Join(c.dir, locationID+".csv")
}

// Write appends one row per sample in fc, stamped with fetchedAt.
func (c *FileL2Cache) Write(locationID string, fc domain.ForecastCollection, fetchedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.OpenFile(c.path(locationID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("forecast: open L2 file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, sample := range fc.Samples {
		payload, err := json.Marshal(sample)
		if err != nil {
			continue
		}
		row := []string{
			sample.DatetimeUTC.Format(time.RFC3339),
			fetchedAt.Format(time.RFC3339),
			string(payload),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("forecast: write L2 row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// Get reads every fresh row (fetched_at within ttl of now) for locationID
// and reassembles a ForecastCollection from them. Returns ok=false if the
// file is absent or has no fresh row covering target's hour.
func (c *FileL2Cache) Get(locationID string, target time.Time, now time.Time) (domain.ForecastCollection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.Open(c.path(locationID))
	if err != nil {
		return domain.ForecastCollection{}, false
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return domain.ForecastCollection{}, false
	}

	cutoff := now.Add(-c.ttl)
	targetHour := HourFloor(target)

	latestBySample := make(map[int64]freshSample)
	var haveTargetHour bool
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		forecastTime, err1 := time.Parse(time.RFC3339, row[0])
		fetchedAt, err2 := time.Parse(time.RFC3339, row[1])
		if err1 != nil || err2 != nil || fetchedAt.Before(cutoff) {
			continue
		}
		var sample domain.WeatherForecast
		if err := json.Unmarshal([]byte(row[2]), &sample); err != nil {
			continue
		}
		key := forecastTime.Unix()
		if existing, ok := latestBySample[key]; !ok || fetchedAt.After(existing.fetchedAt) {
			latestBySample[key] = freshSample{sample: sample, fetchedAt: fetchedAt}
		}
		if HourFloor(forecastTime).Equal(targetHour) {
			haveTargetHour = true
		}
	}
	if !haveTargetHour {
		return domain.ForecastCollection{}, false
	}

	samples := make([]domain.WeatherForecast, 0, len(latestBySample))
	for _, fs := range latestBySample {
		samples = append(samples, fs.sample)
	}
	return domain.NewForecastCollection(locationID, samples), true
}

type freshSample struct {
	sample    domain.WeatherForecast
	fetchedAt time.Time
}
