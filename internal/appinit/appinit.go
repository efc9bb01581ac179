// Package appinit wires the C1-C8 components into a running Engine, the
// same construction both cmd/ entrypoints need, grounded on the teacher's
// cmd/server/main.go (sequential, fail-fast component construction with
// graceful degradation for optional pieces like the Redis cache).
package appinit

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sakamo-wni/weathercomment/internal/config"
	"github.com/sakamo-wni/weathercomment/internal/corpus"
	"github.com/sakamo-wni/weathercomment/internal/forecast"
	"github.com/sakamo-wni/weathercomment/internal/geo"
	"github.com/sakamo-wni/weathercomment/internal/history"
	"github.com/sakamo-wni/weathercomment/internal/llm"
	"github.com/sakamo-wni/weathercomment/internal/observability"
	"github.com/sakamo-wni/weathercomment/internal/validator"
	"github.com/sakamo-wni/weathercomment/internal/workflow"
)

// App bundles every long-lived component a cmd/ entrypoint drives.
type App struct {
	Config    *config.Config
	Log       *zap.Logger
	Metrics   *observability.Metrics
	Locations *geo.LocationTable
	Corpus    *corpus.Repository
	Forecast  *forecast.Service
	Warmer    *forecast.Warmer
	LLM       *llm.Adapter
	Validator *validator.Pipeline
	Engine    *workflow.Engine
	History   *history.Store
}

// Build constructs every component from cfg, choosing the default LLM
// provider's backend and the configured cache backend (memory or redis).
func Build(cfg *config.Config, log *zap.Logger) (*App, error) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	locationRecords, err := geo.LoadLocationsFromJSON(cfg.Paths.LocationsFile)
	if err != nil {
		return nil, fmt.Errorf("appinit: load locations: %w", err)
	}
	locations, err := geo.NewLocationTable(locationRecords)
	if err != nil {
		return nil, fmt.Errorf("appinit: build location table: %w", err)
	}
	spatial := geo.NewSpatialIndex(locations.SpatialEntries())

	corpusRepo, err := corpus.NewRepository(cfg.Paths.CorpusDir, log)
	if err != nil {
		return nil, fmt.Errorf("appinit: build corpus repository: %w", err)
	}

	l2, err := forecast.NewFileL2Cache(cfg.Paths.ForecastCacheDir, cfg.Forecast.L2CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("appinit: build forecast L2 cache: %w", err)
	}

	var l1 forecast.L1Cache
	switch cfg.Forecast.CacheBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Forecast.RedisAddr})
		l1 = forecast.NewRedisL1(client)
	default:
		memoryL1 := forecast.NewMemoryL1(cfg.Forecast.MemoryCacheSize)
		l1 = memoryL1
		if cfg.Forecast.EnableMemoryPressureEviction {
			evictor := forecast.NewPressureEvictor(memoryL1,
				cfg.Forecast.MemoryPressureThreshold,
				cfg.Forecast.MemoryPressureEvictFraction,
				cfg.Forecast.MemoryPressureCheckInterval,
				log,
			)
			go evictor.Run(context.Background())
		}
	}

	adapter, err := forecast.NewWxtechAdapter(cfg.Forecast.WxtechAPIKey, cfg.Forecast.ForecastHoursAhead)
	if err != nil {
		log.Warn("wxtech adapter unavailable, forecast fetches will fail", zap.Error(err))
	}

	forecastSvc := forecast.NewService(l1, l2, spatial, adapter, log,
		forecast.WithL1TTL(cfg.Forecast.MemoryCacheTTL),
		forecast.WithSpatialRadiusKM(cfg.Forecast.SpatialRadiusKM),
		forecast.WithSpatialK(cfg.Forecast.SpatialK),
		forecast.WithMetrics(metrics),
	)

	popularSource := forecast.NewFilePopularLocationSource(cfg.Paths.PopularLocationsFile)
	warmer := forecast.NewWarmer(forecastSvc, popularSource, log)

	backend, err := selectLLMBackend(cfg)
	if err != nil {
		log.Warn("LLM backend unavailable, generation will run without LLM assistance", zap.Error(err))
	}
	var adapterLLM *llm.Adapter
	if backend != nil {
		adapterLLM = llm.NewAdapter(backend)
	}

	pipeline := validator.NewPipeline(cfg.Thresholds)

	historyStore, err := history.NewStore(cfg.Paths.HistoryFile, cfg.Paths.GenerationHistoryMaxMB)
	if err != nil {
		return nil, fmt.Errorf("appinit: build history store: %w", err)
	}

	llmOpts := llm.Options{
		Temperature:     cfg.LLM.Temperature,
		MaxTokens:       cfg.LLM.MaxTokens,
		TimeoutSeconds:  cfg.LLM.TimeoutSeconds,
		PerformanceMode: cfg.LLM.PerformanceMode,
	}

	nodes := []workflow.Node{
		&workflow.InputNode{Locations: locations},
		&workflow.FetchForecastNode{Service: forecastSvc},
		&workflow.RetrieveCorpusNode{Repository: corpusRepo},
		&workflow.SelectPairNode{Adapter: adapterLLM, Options: llmOpts},
		&workflow.EvaluateCandidateNode{Pipeline: pipeline, Mode: validator.ModeStrict},
		&workflow.GenerateCommentNode{Adapter: adapterLLM, Options: llmOpts, Pipeline: pipeline, Mode: validator.ModeStrict},
		&workflow.UnifiedSelectGenerateNode{Adapter: adapterLLM, Options: llmOpts},
		workflow.OutputBuildNode{},
	}

	engineOpts := []workflow.EngineOption{workflow.WithNotifier(workflow.NewLoggerNotifier(log))}
	if cfg.Workflow.UseExprConditions {
		engineOpts = append(engineOpts, workflow.WithConditionEvaluator(workflow.NewExprEvaluator(100)))
	}
	engine := workflow.NewEngine(nodes, log, engineOpts...)

	return &App{
		Config:    cfg,
		Log:       log,
		Metrics:   metrics,
		Locations: locations,
		Corpus:    corpusRepo,
		Forecast:  forecastSvc,
		Warmer:    warmer,
		LLM:       adapterLLM,
		Validator: pipeline,
		Engine:    engine,
		History:   historyStore,
	}, nil
}

func selectLLMBackend(cfg *config.Config) (llm.Backend, error) {
	switch cfg.LLM.DefaultProvider {
	case "anthropic":
		return llm.NewAnthropicBackend(cfg.LLM.Keys.Anthropic, "", "")
	case "gemini":
		return llm.NewGeminiBackend(cfg.LLM.Keys.Gemini, "", "")
	default:
		return llm.NewOpenAIBackend(cfg.LLM.Keys.OpenAI, "", "")
	}
}
