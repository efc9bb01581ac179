// Package corpus implements the lazy, per-season, per-type phrase store
// (spec §4.4, C4): files are listed at construction but read on first
// query, then cached in an LRU with TTL.
//
// CSV parsing is grounded on the teacher's
// pkg/executor/builtin/csv_to_json.go (trim, lenient field counts via
// encoding/csv with FieldsPerRecord = -1, header handling, empty-row
// skip), generalized here from "CSV -> []map[string]any" to
// "CSV -> []domain.PastComment" with count-parsing and the 200-char
// truncation/drop rules from spec §3.
package corpus

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sakamo-wni/weathercomment/internal/apperrors"
	"github.com/sakamo-wni/weathercomment/internal/domain"
)

const filenameSuffix = "_enhanced100.csv"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type cacheKey struct {
	season domain.Season
	typ    domain.CommentType
}

type cacheValue struct {
	comments []domain.PastComment
	loadedAt time.Time
}

// Repository is the lazy corpus store described by spec §4.4.
type Repository struct {
	dir      string
	log      *zap.Logger
	ttl      time.Duration
	capacity int

	mu      sync.Mutex
	cache   map[cacheKey]cacheValue
	lruList []cacheKey // most-recently-used at the end
}

// Option configures a Repository.
type Option func(*Repository)

// WithTTL overrides the default 60-minute cache TTL.
func WithTTL(ttl time.Duration) Option { return func(r *Repository) { r.ttl = ttl } }

// WithCapacity overrides the default 12-entry cache cap.
func WithCapacity(n int) Option { return func(r *Repository) { r.capacity = n } }

// NewRepository lists (but does not read) the corpus directory. Returns
// CorpusNotFound if dir does not exist.
func NewRepository(dir string, log *zap.Logger, opts ...Option) (*Repository, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, &apperrors.CorpusNotFound{Dir: dir}
		}
		return nil, fmt.Errorf("corpus: stat %s: %w", dir, err)
	}
	r := &Repository{
		dir:      dir,
		log:      log,
		ttl:      60 * time.Minute,
		capacity: 12,
		cache:    make(map[cacheKey]cacheValue),
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// GetBySeasonAndType returns comments for (season, type), sorted by count
// descending, served from the LRU cache when fresh.
func (r *Repository) GetBySeasonAndType(season domain.Season, typ domain.CommentType) ([]domain.PastComment, error) {
	key := cacheKey{season: season, typ: typ}

	r.mu.Lock()
	if v, ok := r.cache[key]; ok && time.Since(v.loadedAt) < r.ttl {
		r.touch(key)
		r.mu.Unlock()
		return v.comments, nil
	}
	r.mu.Unlock()

	comments, err := r.loadFile(season, typ)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.store(key, comments)
	r.mu.Unlock()

	return comments, nil
}

// GetBySeason returns both weather and advice comments for a season.
func (r *Repository) GetBySeason(season domain.Season) (weather, advice []domain.PastComment, err error) {
	weather, err = r.GetBySeasonAndType(season, domain.CommentWeather)
	if err != nil {
		return nil, nil, err
	}
	advice, err = r.GetBySeasonAndType(season, domain.CommentAdvice)
	if err != nil {
		return nil, nil, err
	}
	return weather, advice, nil
}

// Preload eagerly reads both types for a season.
func (r *Repository) Preload(season domain.Season) error {
	_, _, err := r.GetBySeason(season)
	return err
}

// Search performs a linear scan over the requested (season, type)
// partitions, stopping as soon as limit matches are collected.
func (r *Repository) Search(keyword string, season *domain.Season, typ *domain.CommentType, limit int) ([]domain.PastComment, error) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	seasons := allSeasons()
	if season != nil {
		seasons = []domain.Season{*season}
	}
	types := []domain.CommentType{domain.CommentWeather, domain.CommentAdvice}
	if typ != nil {
		types = []domain.CommentType{*typ}
	}

	var out []domain.PastComment
	for _, s := range seasons {
		for _, t := range types {
			comments, err := r.GetBySeasonAndType(s, t)
			if err != nil {
				continue
			}
			for _, c := range comments {
				if keyword == "" || strings.Contains(strings.ToLower(c.Text), keyword) {
					out = append(out, c)
					if limit > 0 && len(out) >= limit {
						return out, nil
					}
				}
			}
		}
	}
	return out, nil
}

// RefreshCache empties the LRU, forcing the next query to re-read from
// disk.
func (r *Repository) RefreshCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[cacheKey]cacheValue)
	r.lruList = nil
}

func (r *Repository) touch(key cacheKey) {
	for i, k := range r.lruList {
		if k == key {
			r.lruList = append(r.lruList[:i], r.lruList[i+1:]...)
			break
		}
	}
	r.lruList = append(r.lruList, key)
}

func (r *Repository) store(key cacheKey, comments []domain.PastComment) {
	if _, exists := r.cache[key]; !exists && len(r.cache) >= r.capacity {
		// Evict least-recently-used.
		if len(r.lruList) > 0 {
			oldest := r.lruList[0]
			r.lruList = r.lruList[1:]
			delete(r.cache, oldest)
		}
	}
	r.cache[key] = cacheValue{comments: comments, loadedAt: time.Now()}
	r.touch(key)
}

// loadFile reads and normalizes one CSV file. A missing file returns an
// empty list with a warning, not an error (spec §4.4).
func (r *Repository) loadFile(season domain.Season, typ domain.CommentType) ([]domain.PastComment, error) {
	path := filepath.Join(r.dir, fmt.Sprintf("%s_%s%s", season, typeFilename(typ), filenameSuffix))

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			if r.log != nil {
				r.log.Warn("corpus file missing, returning empty list", zap.String("path", path))
			}
			return []domain.PastComment{}, nil
		}
		return nil, fmt.Errorf("corpus: open %s: %w", path, err)
	}
	defer f.Close()

	bf := bufio.NewReader(f)
	if bom, err := bf.Peek(len(utf8BOM)); err == nil && bytes.Equal(bom, utf8BOM) {
		_, _ = bf.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(bf)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("corpus: parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		return []domain.PastComment{}, nil
	}

	var comments []domain.PastComment
	for _, row := range rows[1:] { // skip header row
		if len(row) < 2 {
			continue
		}
		text := strings.TrimSpace(row[0])
		countStr := strings.TrimSpace(row[1])
		count, err := strconv.Atoi(countStr)
		if err != nil || count < 0 {
			if r.log != nil {
				r.log.Warn("corpus row dropped: non-integer count",
					zap.String("path", path), zap.String("row_text", text), zap.String("count", countStr))
			}
			continue
		}
		pc, truncated, ok := domain.NewPastComment(text, typ, season, count)
		if !ok {
			continue
		}
		if truncated && r.log != nil {
			r.log.Warn("corpus row truncated to max length", zap.String("path", path), zap.Int("max_len", domain.MaxCommentLen))
		}
		comments = append(comments, pc)
	}

	sort.SliceStable(comments, func(i, j int) bool { return comments[i].Count > comments[j].Count })
	if comments == nil {
		comments = []domain.PastComment{}
	}
	return comments, nil
}

func typeFilename(typ domain.CommentType) string {
	if typ == domain.CommentWeather {
		return "weather_comment"
	}
	return "advice"
}

func allSeasons() []domain.Season {
	return []domain.Season{
		domain.SeasonSpring, domain.SeasonSummer, domain.SeasonAutumn,
		domain.SeasonWinter, domain.SeasonRainySeason, domain.SeasonTyphoon,
	}
}
