package validator

import (
	"time"

	"github.com/sakamo-wni/weathercomment/internal/config"
	"github.com/sakamo-wni/weathercomment/internal/domain"
)

// Mode selects one of the three evaluation strictness levels (spec §4.3).
type Mode string

const (
	ModeStrict   Mode = "strict"
	ModeModerate Mode = "moderate"
	ModeRelaxed  Mode = "relaxed"
)

// Result is the outcome of running the pipeline against one candidate.
type Result struct {
	OK      bool
	Reasons []string
	Score   float64
}

// Pipeline is the chain of checkers evaluated against a (comment pair,
// forecast, location, time) tuple under one of three strictness modes.
type Pipeline struct {
	checkers map[Mode][]Checker
}

// NewPipeline builds the three mode-specific checker subsets from the
// Thresholds loaded once at startup.
func NewPipeline(thresholds config.Thresholds) *Pipeline {
	weather := WeatherConditionChecker{}
	temperature := TemperatureConditionChecker{Thresholds: thresholds}
	humidity := HumidityChecker{Thresholds: thresholds}
	regional := RegionalChecker{}
	seasonal := SeasonalChecker{}
	consistency := ConsistencyChecker{}
	lengthAndBanned := LengthAndBannedWordChecker{}
	ngWordOnly := LengthAndBannedWordChecker{SkipLengthPartial: true}

	return &Pipeline{
		checkers: map[Mode][]Checker{
			ModeStrict:   {weather, temperature, humidity, regional, seasonal, consistency, lengthAndBanned},
			ModeModerate: {weather, temperature, humidity, regional, seasonal, consistency, ngWordOnly},
			ModeRelaxed:  {weather, ngWordOnly},
		},
	}
}

func (p *Pipeline) thresholdFor(mode Mode) float64 {
	switch mode {
	case ModeStrict:
		return 0.6
	case ModeModerate:
		return 0.45
	case ModeRelaxed:
		return 0.3
	default:
		return 0.6
	}
}

// Evaluate runs the checker subset for mode against the candidate. Strict
// and moderate short-circuit on the first failing checker; relaxed always
// runs every checker in its subset to accumulate a partial-credit score.
func (p *Pipeline) Evaluate(mode Mode, pair domain.CommentPair, forecast domain.WeatherForecast, loc domain.Location, t time.Time) Result {
	checkers, ok := p.checkers[mode]
	if !ok {
		checkers = p.checkers[ModeStrict]
		mode = ModeStrict
	}
	threshold := p.thresholdFor(mode)

	if mode != ModeRelaxed {
		for _, c := range checkers {
			if ok, reason := c.Check(pair, forecast, loc, t); !ok {
				return Result{OK: false, Reasons: []string{reason}, Score: 0}
			}
		}
		return Result{OK: true, Score: 1}
	}

	var reasons []string
	passed := 0
	for _, c := range checkers {
		if ok, reason := c.Check(pair, forecast, loc, t); ok {
			passed++
		} else {
			reasons = append(reasons, reason)
		}
	}
	score := float64(passed) / float64(len(checkers))
	return Result{OK: score >= threshold, Reasons: reasons, Score: score}
}
