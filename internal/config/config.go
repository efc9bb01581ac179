// Package config loads typed configuration from the environment, with
// defaults and bounds validation (spec §4.8, C8). Thresholds exposed here
// are the only source consumed by the Validator Pipeline (internal/validator)
// — literal thresholds in checker code are forbidden by spec.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Env is the application environment (spec §6.4 APP_ENV).
type Env string

const (
	EnvDevelopment Env = "development"
	EnvStaging     Env = "staging"
	EnvProduction  Env = "production"
)

// LLMKeys holds the provider API keys (spec §6.4).
type LLMKeys struct {
	OpenAI    string
	Anthropic string
	Gemini    string
}

// LLMConfig configures the LLM Adapter (C6).
type LLMConfig struct {
	Keys             LLMKeys
	DefaultProvider  string
	PerformanceMode  bool
	MaxWorkers       int
	MaxTokens        int
	Temperature      float64
	TimeoutSeconds   int
}

// ForecastConfig configures the Forecast Service (C5).
type ForecastConfig struct {
	WxtechAPIKey      string
	ForecastHoursAhead int
	CacheTTL          time.Duration
	MemoryCacheSize   int
	MemoryCacheTTL    time.Duration
	EnableSpatialCache bool
	SpatialRadiusKM   float64
	SpatialK          int
	L2CacheTTL        time.Duration
	CacheBackend      string // "memory" or "redis"
	RedisAddr         string
	WarmingInterval   time.Duration

	EnableMemoryPressureEviction bool
	MemoryPressureThreshold      float64
	MemoryPressureEvictFraction  float64
	MemoryPressureCheckInterval  time.Duration
}

// WorkflowConfig configures the Workflow Engine (C1).
type WorkflowConfig struct {
	MaxEvaluationRetries int
	UseUnifiedPath        bool
	UseExprConditions     bool
}

// BatchConfig configures the Batch Orchestrator (C7).
type BatchConfig struct {
	MaxParallelWorkers    int
	PerItemTimeout        time.Duration
	MaxParallelLocations  int
}

// Thresholds are the domain-specific numeric bounds consumed exclusively by
// the Validator Pipeline (spec §4.8 closing rule).
type Thresholds struct {
	HeatStrokeAdvisoryC float64 // 34.0
	HeatStrokeRequiredC float64 // 35.0
	HighTempForbidColdC float64 // 30.0
	LowTempForbidHotC   float64 // 12.0
	ExtremeBandLowC     float64 // 10.0
	ExtremeBandHighC    float64 // 30.0
	HighHumidityPct     float64 // 80.0
	LowHumidityPct      float64 // 30.0
	HeavyRainMMPerHour  float64 // 10.0
	WeatherChangePct    float64
}

// PathsConfig names the on-disk static files and directories spec §6.3
// describes: the corpus directory, the forecast L2 cache directory, the
// append-only history file, the static location table, and the
// popular-locations file the cache warmer reads.
type PathsConfig struct {
	CorpusDir             string
	ForecastCacheDir       string
	HistoryFile            string
	GenerationHistoryMaxMB int
	LocationsFile          string
	PopularLocationsFile   string
}

// Config is the fully-loaded, validated application configuration.
type Config struct {
	AppEnv   Env
	LogLevel string

	APIHost     string
	APIPort     int
	CORSOrigins []string

	LLM        LLMConfig
	Forecast   ForecastConfig
	Workflow   WorkflowConfig
	Batch      BatchConfig
	Thresholds Thresholds
	Paths      PathsConfig
}

// Load reads configuration from the environment (optionally pre-populated
// from a .env file via godotenv, matching the teacher's local-dev
// convenience), applies defaults, and validates bounds.
func Load() (*Config, error) {
	_ = godotenv.Load() // best-effort; absence of .env is not an error

	cfg := &Config{
		AppEnv:   Env(getEnvDefault("APP_ENV", string(EnvDevelopment))),
		LogLevel: getEnvDefault("LOG_LEVEL", "info"),

		APIHost:     getEnvDefault("API_HOST", "0.0.0.0"),
		APIPort:     getEnvInt("API_PORT", 8080),
		CORSOrigins: getEnvList("CORS_ORIGINS", nil),

		LLM: LLMConfig{
			Keys: LLMKeys{
				OpenAI:    os.Getenv("OPENAI_API_KEY"),
				Anthropic: os.Getenv("ANTHROPIC_API_KEY"),
				Gemini:    os.Getenv("GEMINI_API_KEY"),
			},
			DefaultProvider: getEnvDefault("DEFAULT_LLM_PROVIDER", "openai"),
			PerformanceMode: getEnvBool("LLM_PERFORMANCE_MODE", false),
			MaxWorkers:      getEnvInt("MAX_LLM_WORKERS", 4),
			MaxTokens:       clampInt(getEnvInt("LLM_MAX_TOKENS", 1000), 100, 4000),
			Temperature:     clampFloat(getEnvFloat("LLM_TEMPERATURE", 0.7), 0.0, 2.0),
			TimeoutSeconds:  getEnvInt("LLM_TIMEOUT_SECONDS", 30),
		},

		Forecast: ForecastConfig{
			WxtechAPIKey:       os.Getenv("WXTECH_API_KEY"),
			ForecastHoursAhead: getEnvInt("WEATHER_FORECAST_HOURS_AHEAD", 24),
			CacheTTL:           getEnvDuration("WEATHER_CACHE_TTL", 6*time.Hour),
			MemoryCacheSize:    getEnvInt("MEMORY_CACHE_SIZE", 500),
			MemoryCacheTTL:     getEnvDuration("MEMORY_CACHE_TTL", 300*time.Second),
			EnableSpatialCache: getEnvBool("ENABLE_SPATIAL_CACHE", true),
			SpatialRadiusKM:    getEnvFloat("SPATIAL_CACHE_RADIUS_KM", 10),
			SpatialK:           getEnvInt("SPATIAL_CACHE_K", 5),
			L2CacheTTL:         getEnvDuration("WEATHER_L2_CACHE_TTL", 6*time.Hour),
			CacheBackend:       getEnvDefault("FORECAST_CACHE_BACKEND", "memory"),
			RedisAddr:          getEnvDefault("FORECAST_REDIS_ADDR", "localhost:6379"),
			WarmingInterval:    getEnvDuration("CACHE_WARMING_INTERVAL", time.Hour),

			EnableMemoryPressureEviction: getEnvBool("ENABLE_MEMORY_PRESSURE_EVICTION", false),
			MemoryPressureThreshold:      getEnvFloat("MEMORY_PRESSURE_THRESHOLD", 0.85),
			MemoryPressureEvictFraction:  getEnvFloat("MEMORY_PRESSURE_EVICT_FRACTION", 0.25),
			MemoryPressureCheckInterval:  getEnvDuration("MEMORY_PRESSURE_CHECK_INTERVAL", 30*time.Second),
		},

		Workflow: WorkflowConfig{
			MaxEvaluationRetries: getEnvInt("MAX_EVALUATION_RETRIES", 5),
			UseUnifiedPath:       getEnvBool("USE_UNIFIED_PATH", true),
			UseExprConditions:    getEnvBool("USE_EXPR_CONDITIONS", false),
		},

		Batch: BatchConfig{
			MaxParallelWorkers:   getEnvInt("MAX_PARALLEL_WORKERS", 4),
			PerItemTimeout:       getEnvDuration("COMMENT_TIMEOUT_SECONDS_DURATION", 30*time.Second),
			MaxParallelLocations: getEnvInt("MAX_PARALLEL_LOCATIONS", 20),
		},

		Thresholds: Thresholds{
			HeatStrokeAdvisoryC: getEnvFloat("TEMP_HEATSTROKE_ADVISORY_C", 34.0),
			HeatStrokeRequiredC: getEnvFloat("TEMP_HEATSTROKE_REQUIRED_C", 35.0),
			HighTempForbidColdC: getEnvFloat("TEMP_HIGH_FORBID_COLD_C", 30.0),
			LowTempForbidHotC:   getEnvFloat("TEMP_LOW_FORBID_HOT_C", 12.0),
			ExtremeBandLowC:     getEnvFloat("TEMP_EXTREME_BAND_LOW_C", 10.0),
			ExtremeBandHighC:    getEnvFloat("TEMP_EXTREME_BAND_HIGH_C", 30.0),
			HighHumidityPct:     getEnvFloat("HUMIDITY_HIGH_PCT", 80.0),
			LowHumidityPct:      getEnvFloat("HUMIDITY_LOW_PCT", 30.0),
			HeavyRainMMPerHour:  getEnvFloat("PRECIP_HEAVY_RAIN_MM_H", 10.0),
			WeatherChangePct:    getEnvFloat("WEATHER_CHANGE_THRESHOLD", 0.3),
		},

		Paths: PathsConfig{
			CorpusDir:              getEnvDefault("CORPUS_DIR", "output"),
			ForecastCacheDir:       getEnvDefault("FORECAST_CACHE_DIR", "data/forecast_cache"),
			HistoryFile:            getEnvDefault("GENERATION_HISTORY_FILE", "data/generation_history.json"),
			GenerationHistoryMaxMB: getEnvInt("GENERATION_HISTORY_MAX_SIZE_MB", 100),
			LocationsFile:          getEnvDefault("GEO_LOCATIONS_FILE", "data/locations.json"),
			PopularLocationsFile:   getEnvDefault("POPULAR_LOCATIONS_FILE", "data/popular_locations.json"),
		},
	}

	// COMMENT_TIMEOUT_SECONDS (spec §6.4) is seconds; accept it directly
	// too, taking precedence over the duration-form override above.
	if v := os.Getenv("COMMENT_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Batch.PerItemTimeout = time.Duration(secs) * time.Second
		}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate enforces spec §4.8's startup checks: in production, require at
// least one LLM key and a weather API key; reject out-of-range numerics.
func validate(cfg *Config) error {
	if cfg.AppEnv == EnvProduction {
		if cfg.LLM.Keys.OpenAI == "" && cfg.LLM.Keys.Anthropic == "" && cfg.LLM.Keys.Gemini == "" {
			return fmt.Errorf("config: production requires at least one LLM provider key")
		}
		if cfg.Forecast.WxtechAPIKey == "" {
			return fmt.Errorf("config: production requires WXTECH_API_KEY")
		}
	}
	switch cfg.LLM.DefaultProvider {
	case "openai", "anthropic", "gemini":
	default:
		return fmt.Errorf("config: DEFAULT_LLM_PROVIDER must be one of openai|anthropic|gemini, got %q", cfg.LLM.DefaultProvider)
	}
	switch cfg.Forecast.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: FORECAST_CACHE_BACKEND must be memory or redis, got %q", cfg.Forecast.CacheBackend)
	}
	if cfg.Batch.MaxParallelWorkers <= 0 {
		return fmt.Errorf("config: MAX_PARALLEL_WORKERS must be positive")
	}
	if cfg.Workflow.MaxEvaluationRetries < 0 {
		return fmt.Errorf("config: MAX_EVALUATION_RETRIES must be >= 0")
	}
	return nil
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func getEnvDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getEnvList(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
