// Command weathercomment-batch drives the Batch Orchestrator over a list of
// locations (or every location in the static table) and prints each item's
// result as it settles, followed by a summary, mirroring the teacher's
// cmd/cli batch-mode flag handling.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sakamo-wni/weathercomment/internal/appinit"
	"github.com/sakamo-wni/weathercomment/internal/batch"
	"github.com/sakamo-wni/weathercomment/internal/config"
	"github.com/sakamo-wni/weathercomment/internal/domain"
	"github.com/sakamo-wni/weathercomment/internal/observability"
	"github.com/sakamo-wni/weathercomment/internal/workflow"
)

func main() {
	locationsFlag := flag.String("locations", "", "comma-separated location names (default: every location in the static table)")
	targetFlag := flag.String("target", "", "target datetime, RFC3339 (default: now)")
	provider := flag.String("provider", "", "LLM provider override (openai|anthropic|gemini)")
	flag.Parse()

	target := time.Now().UTC()
	if *targetFlag != "" {
		parsed, err := time.Parse(time.RFC3339, *targetFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "weathercomment-batch: invalid -target: %v\n", err)
			os.Exit(2)
		}
		target = parsed
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "weathercomment-batch: config: %v\n", err)
		os.Exit(1)
	}

	log, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "weathercomment-batch: logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	providerName := cfg.LLM.DefaultProvider
	if *provider != "" {
		providerName = *provider
	}

	app, err := appinit.Build(cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}

	names := locationNames(*locationsFlag, app)
	if len(names) == 0 {
		fmt.Fprintln(os.Stderr, "weathercomment-batch: no locations to run")
		os.Exit(2)
	}

	inputs := make([]batch.Input, len(names))
	for i, name := range names {
		inputs[i] = batch.Input{LocationName: name, TargetDatetime: target, LLMProviderName: providerName}
	}

	orchestrator := batch.New(app.Engine, batch.Options{
		MaxParallelWorkers:   cfg.Batch.MaxParallelWorkers,
		PerItemTimeout:       cfg.Batch.PerItemTimeout,
		MaxParallelLocations: cfg.Batch.MaxParallelLocations,
	}, log)

	wfOpts := workflow.Options{
		UseUnifiedPath:   cfg.Workflow.UseUnifiedPath,
		UseIndexedCorpus: len(inputs) > cfg.Batch.MaxParallelLocations,
		MaxRetries:       cfg.Workflow.MaxEvaluationRetries,
	}

	results, stats := orchestrator.Run(context.Background(), inputs, wfOpts, func(r batch.Result) {
		loc, _ := app.Locations.ByName(r.LocationName)
		record := domain.HistoryRecord{
			TimestampUTC: time.Now().UTC(),
			LocationID:   loc.ID,
			LLMProvider:  providerName,
			Success:      r.Success,
			WeatherText:  r.FinalWeather,
			AdviceText:   r.FinalAdvice,
			Error:        r.Error,
		}
		if err := app.History.Append(record); err != nil {
			log.Warn("failed to append generation history", zap.String("location", r.LocationName), zap.Error(err))
		}
		fmt.Fprintf(os.Stderr, "weathercomment-batch: %s success=%v duration_ms=%d\n", r.LocationName, r.Success, r.DurationMs)
	})

	out, err := json.MarshalIndent(struct {
		Stats   batch.Stats    `json:"stats"`
		Results []batch.Result `json:"results"`
	}{Stats: stats, Results: results}, "", "  ")
	if err != nil {
		log.Fatal("failed to marshal batch output", zap.Error(err))
	}
	fmt.Println(string(out))

	if stats.Errored > 0 || stats.TimedOut > 0 {
		os.Exit(1)
	}
}

func locationNames(flagValue string, app *appinit.App) []string {
	if flagValue == "" {
		all := app.Locations.All()
		names := make([]string, 0, len(all))
		for _, loc := range all {
			names = append(names, loc.Name)
		}
		return names
	}
	parts := strings.Split(flagValue, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
