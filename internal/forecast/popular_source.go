package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/sakamo-wni/weathercomment/internal/domain"
)

// popularLocationRecord is the spec §6.3 popular-locations file shape:
// "JSON list {name, latitude, longitude, priority, access_count}".
type popularLocationRecord struct {
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Priority    int     `json:"priority"`
	AccessCount int     `json:"access_count"`
}

// FilePopularLocationSource implements PopularLocationSource by reading a
// flat JSON file, ranked by priority then access_count (spec §4.5:
// "by recent access count").
type FilePopularLocationSource struct {
	path string
}

// NewFilePopularLocationSource builds a source over the file at path.
func NewFilePopularLocationSource(path string) *FilePopularLocationSource {
	return &FilePopularLocationSource{path: path}
}

func (s *FilePopularLocationSource) PopularLocations(_ context.Context) ([]domain.Location, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("forecast: read popular locations file: %w", err)
	}
	var records []popularLocationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("forecast: parse popular locations file: %w", err)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Priority != records[j].Priority {
			return records[i].Priority > records[j].Priority
		}
		return records[i].AccessCount > records[j].AccessCount
	})
	out := make([]domain.Location, 0, len(records))
	for _, r := range records {
		out = append(out, domain.Location{Name: r.Name, Latitude: r.Latitude, Longitude: r.Longitude})
	}
	return out, nil
}
