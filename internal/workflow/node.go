package workflow

import (
	"context"

	"github.com/sakamo-wni/weathercomment/internal/domain"
)

// NodeName identifies one of the eight fixed stage handlers (spec §4.2).
// Dispatch is a closed map[NodeName]Node, never a dynamically registered
// graph, per the teacher's own design note against emulating a general
// graph library for a fixed eight-node pipeline.
type NodeName string

const (
	NodeInput               NodeName = "input"
	NodeFetchForecast        NodeName = "fetch_forecast"
	NodeRetrieveCorpus       NodeName = "retrieve_corpus"
	NodeSelectPair           NodeName = "select_pair"
	NodeEvaluateCandidate    NodeName = "evaluate_candidate"
	NodeGenerateComment      NodeName = "generate_comment"
	NodeOutputBuild          NodeName = "output_build"
	NodeUnifiedSelectGenerate NodeName = "unified_select_generate"
)

// Node is one stage handler, mirroring the teacher's NodeExecutor.Execute
// shape narrowed to this engine's single shared state value (no fan-in
// merge logic is needed: every node here has exactly one predecessor).
type Node interface {
	Name() NodeName
	Run(ctx context.Context, st *domain.GenerationState) error
}
