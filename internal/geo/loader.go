package geo

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sakamo-wni/weathercomment/internal/domain"
)

// locationRecord is the on-disk shape of one static location table entry.
// Spec §6.3 only names the JSON shape of the sibling popular-locations
// file; the static table loaded at startup is given the same field names
// here for consistency rather than inventing a second schema.
type locationRecord struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Prefecture string  `json:"prefecture"`
	Region     string  `json:"region"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// LoadLocationsFromJSON reads the static location table (spec §3 Location,
// "loaded once from a static table") from a JSON array file at path.
func LoadLocationsFromJSON(path string) ([]domain.Location, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("geo: read locations file: %w", err)
	}
	var records []locationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("geo: parse locations file: %w", err)
	}
	locations := make([]domain.Location, 0, len(records))
	for _, r := range records {
		locations = append(locations, domain.Location{
			ID:         r.ID,
			Name:       r.Name,
			Prefecture: r.Prefecture,
			Region:     r.Region,
			Latitude:   r.Latitude,
			Longitude:  r.Longitude,
		})
	}
	return locations, nil
}
