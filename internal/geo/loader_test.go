package geo_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakamo-wni/weathercomment/internal/geo"
)

func TestLoadLocationsFromJSON_ParsesRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "locations.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id":"tokyo","name":"Tokyo","prefecture":"Tokyo","region":"Kanto","latitude":35.6895,"longitude":139.6917},
		{"id":"osaka","name":"Osaka","prefecture":"Osaka","region":"Kansai","latitude":34.6937,"longitude":135.5023}
	]`), 0o644))

	locations, err := geo.LoadLocationsFromJSON(path)
	require.NoError(t, err)
	require.Len(t, locations, 2)
	assert.Equal(t, "Tokyo", locations[0].Name)
	assert.Equal(t, "osaka", locations[1].ID)
}

func TestLoadLocationsFromJSON_MissingFileErrors(t *testing.T) {
	_, err := geo.LoadLocationsFromJSON("/nonexistent/locations.json")
	require.Error(t, err)
}
