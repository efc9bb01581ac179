package domain

import "time"

// Validation is the result of a single Validator Pipeline evaluation.
type Validation struct {
	OK      bool
	Reasons []string
	Score   float64
}

// GenerationState is the workflow's shared record (spec §3). The Workflow
// Engine owns the state; each node mutates it through named slots.
type GenerationState struct {
	LocationName     string
	TargetDatetime   time.Time
	LLMProviderName  string
	Location         *Location

	Forecast         *ForecastCollection
	ForecastAtTarget *WeatherForecast

	CorpusWeather []PastComment
	CorpusAdvice  []PastComment

	Candidate  *CommentPair
	Validation Validation

	RetryCount int

	FinalWeather string
	FinalAdvice  string

	Metadata map[string]any
	Errors   []string

	UseUnifiedPath    bool
	UseIndexedCorpus  bool
	ExcludePrevious   map[string]bool

	// PreviousCandidateTexts accumulates every candidate text rejected so
	// far in the retry loop, merged into ExcludePrevious before each retry
	// of RetrieveCorpus/SelectPair (spec §4.1 EDGE_retry).
	PreviousCandidateTexts []string

	ExecutedNodes []string
	Success       bool
}

// NewGenerationState builds the initial state for a request.
func NewGenerationState(locationName string, target time.Time, provider string) *GenerationState {
	return &GenerationState{
		LocationName:     locationName,
		TargetDatetime:   target,
		LLMProviderName:  provider,
		Metadata:         map[string]any{},
		ExcludePrevious:  map[string]bool{},
		UseUnifiedPath:   true,
	}
}

// AddError appends a node failure to the error list without panicking the
// workflow (spec §4.1 Failure semantics).
func (s *GenerationState) AddError(nodeName string, err error) {
	s.Errors = append(s.Errors, nodeName+": "+err.Error())
}

// MarkNodeExecuted records a node's execution for the
// metadata.node_execution_times observability requirement (spec §8
// invariant: len >= 3).
func (s *GenerationState) MarkNodeExecuted(name string) {
	s.ExecutedNodes = append(s.ExecutedNodes, name)
}
