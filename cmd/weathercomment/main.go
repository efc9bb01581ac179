// Command weathercomment runs a single comment-generation request end to
// end and prints the result as JSON, wiring every C1-C8 component the way
// the teacher's cmd/server wires its own subsystems at startup.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/sakamo-wni/weathercomment/internal/apitypes"
	"github.com/sakamo-wni/weathercomment/internal/appinit"
	"github.com/sakamo-wni/weathercomment/internal/config"
	"github.com/sakamo-wni/weathercomment/internal/domain"
	"github.com/sakamo-wni/weathercomment/internal/observability"
	"github.com/sakamo-wni/weathercomment/internal/workflow"
)

func main() {
	locationName := flag.String("location", "", "location name to generate a comment for (required)")
	targetFlag := flag.String("target", "", "target datetime, RFC3339 (default: now)")
	provider := flag.String("provider", "", "LLM provider override (openai|anthropic|gemini)")
	flag.Parse()

	if *locationName == "" {
		fmt.Fprintln(os.Stderr, "weathercomment: -location is required")
		os.Exit(2)
	}

	target := time.Now().UTC()
	if *targetFlag != "" {
		parsed, err := time.Parse(time.RFC3339, *targetFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "weathercomment: invalid -target: %v\n", err)
			os.Exit(2)
		}
		target = parsed
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "weathercomment: config: %v\n", err)
		os.Exit(1)
	}

	log, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "weathercomment: logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	providerName := cfg.LLM.DefaultProvider
	if *provider != "" {
		providerName = *provider
	}

	if err := apitypes.ValidateGenerateRequest(apitypes.GenerateRequest{
		Location:       apitypes.Location{Name: *locationName},
		LLMProvider:    providerName,
		TargetDateTime: &target,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "weathercomment: invalid request: %v\n", err)
		os.Exit(2)
	}

	app, err := appinit.Build(cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}

	result, err := app.Engine.Run(context.Background(), workflow.Input{
		LocationName:    *locationName,
		TargetDatetime:  target,
		LLMProviderName: providerName,
	}, workflow.Options{
		UseUnifiedPath:   cfg.Workflow.UseUnifiedPath,
		UseIndexedCorpus: false,
		MaxRetries:       cfg.Workflow.MaxEvaluationRetries,
	})
	if err != nil {
		log.Fatal("engine run returned an error", zap.Error(err))
	}

	loc, _ := app.Locations.ByName(*locationName)
	forecastCollection, _, ferr := app.Forecast.Get(context.Background(), loc, target)
	if ferr != nil {
		log.Warn("forecast re-fetch for response building failed", zap.Error(ferr))
	}

	response := apitypes.BuildGenerateResponse(result, apitypes.GenerateResponseOptions{
		Location:       loc,
		Forecast:       forecastCollection,
		TargetDatetime: target,
		Settings: apitypes.Settings{
			UseUnifiedPath: cfg.Workflow.UseUnifiedPath,
			MaxRetries:     cfg.Workflow.MaxEvaluationRetries,
		},
	}, time.Now().UTC())

	record := domain.HistoryRecord{
		TimestampUTC: time.Now().UTC(),
		LocationID:   loc.ID,
		LLMProvider:  providerName,
		Success:      result.Success,
		WeatherText:  result.FinalWeather,
		AdviceText:   result.FinalAdvice,
	}
	if len(result.Errors) > 0 {
		record.Error = result.Errors[len(result.Errors)-1]
	}
	if err := app.History.Append(record); err != nil {
		log.Warn("failed to append generation history", zap.Error(err))
	}

	out, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		log.Fatal("failed to marshal response", zap.Error(err))
	}
	fmt.Println(string(out))

	if !result.Success {
		os.Exit(1)
	}
}
