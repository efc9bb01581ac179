package workflow

import (
	"context"

	"github.com/sakamo-wni/weathercomment/internal/corpus"
	"github.com/sakamo-wni/weathercomment/internal/domain"
)

// defaultCorpusLimit is the truncation N from spec §4.2 RetrieveCorpus.
const defaultCorpusLimit = 100

// RetrieveCorpusNode asks the Corpus Repository for the season-filtered
// weather/advice lists, drops entries already excluded by a prior retry,
// and truncates each to N by count descending (spec §4.2 RetrieveCorpus).
type RetrieveCorpusNode struct {
	Repository *corpus.Repository
	Limit      int
}

func (RetrieveCorpusNode) Name() NodeName { return NodeRetrieveCorpus }

func (n *RetrieveCorpusNode) Run(_ context.Context, st *domain.GenerationState) error {
	limit := n.Limit
	if limit <= 0 {
		limit = defaultCorpusLimit
	}

	season := domain.DeriveSeason(st.TargetDatetime)
	weather, advice, err := n.Repository.GetBySeason(season)
	if err != nil {
		return err
	}

	st.CorpusWeather = filterAndTruncate(weather, st.ExcludePrevious, limit)
	st.CorpusAdvice = filterAndTruncate(advice, st.ExcludePrevious, limit)
	return nil
}

func filterAndTruncate(comments []domain.PastComment, exclude map[string]bool, limit int) []domain.PastComment {
	out := make([]domain.PastComment, 0, len(comments))
	for _, c := range comments {
		if exclude[c.Text] {
			continue
		}
		out = append(out, c)
		if len(out) >= limit {
			break
		}
	}
	return out
}
