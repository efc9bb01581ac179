package history_test

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakamo-wni/weathercomment/internal/domain"
	"github.com/sakamo-wni/weathercomment/internal/history"
)

func TestStore_AppendAndLast(t *testing.T) {
	dir := t.TempDir()
	store, err := history.NewStore(filepath.Join(dir, "generation_history.json"), 100)
	require.NoError(t, err)

	base := time.Date(2026, 7, 15, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Append(domain.HistoryRecord{
			TimestampUTC: base.Add(time.Duration(i) * time.Minute),
			LocationID:   "tokyo",
			LLMProvider:  "openai",
			Success:      true,
			WeatherText:  "clear skies",
		}))
	}

	records, err := store.Last(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, base.Add(1*time.Minute), records[0].TimestampUTC)
	assert.Equal(t, base.Add(2*time.Minute), records[1].TimestampUTC)
}

func TestStore_LastWithNoLimitReturnsAll(t *testing.T) {
	dir := t.TempDir()
	store, err := history.NewStore(filepath.Join(dir, "generation_history.json"), 100)
	require.NoError(t, err)

	require.NoError(t, store.Append(domain.HistoryRecord{TimestampUTC: time.Now(), LocationID: "tokyo"}))
	require.NoError(t, store.Append(domain.HistoryRecord{TimestampUTC: time.Now(), LocationID: "osaka"}))

	records, err := store.Last(0)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestStore_LastOnEmptyFileReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	store, err := history.NewStore(filepath.Join(dir, "generation_history.json"), 100)
	require.NoError(t, err)

	records, err := store.Last(10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_AppendIsAtomicOnDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "generation_history.json")
	store, err := history.NewStore(path, 100)
	require.NoError(t, err)

	require.NoError(t, store.Append(domain.HistoryRecord{TimestampUTC: time.Now(), LocationID: "tokyo", Success: true}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []domain.HistoryRecord
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Len(t, records, 1)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should not survive a successful append")
}

func TestStore_ArchiveRotationProducesReadableGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "generation_history.json")

	store, err := history.NewStore(path, 1) // 1 MB ceiling, easy to exceed with many records
	require.NoError(t, err)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 1100; i++ {
		require.NoError(t, store.Append(domain.HistoryRecord{
			TimestampUTC: base.Add(time.Duration(i) * time.Minute),
			LocationID:   "tokyo",
			LLMProvider:  "openai",
			Success:      true,
			WeatherText:  strings.Repeat("a fairly long weather comment used to inflate record size for the archive rotation test ", 12),
		}))
	}

	archiveDir := filepath.Join(dir, "archive")
	entries, err := os.ReadDir(archiveDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries, "expected at least one archive file once the live file exceeded its size ceiling")

	f, err := os.Open(filepath.Join(archiveDir, entries[0].Name()))
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	raw, err := io.ReadAll(gz)
	require.NoError(t, err)
	var archived []domain.HistoryRecord
	require.NoError(t, json.Unmarshal(raw, &archived))
	assert.NotEmpty(t, archived)

	remaining, err := store.Last(0)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(remaining), 1000)
}
