package workflow

import (
	"context"
	"fmt"

	"github.com/sakamo-wni/weathercomment/internal/domain"
	"github.com/sakamo-wni/weathercomment/internal/forecast"
)

// FetchForecastNode asks the Forecast Service for the location's
// [target-12h, target+12h] collection and the sample nearest target
// (spec §4.2 FetchForecast).
type FetchForecastNode struct {
	Service *forecast.Service
}

func (FetchForecastNode) Name() NodeName { return NodeFetchForecast }

func (n *FetchForecastNode) Run(ctx context.Context, st *domain.GenerationState) error {
	if st.Location == nil {
		return fmt.Errorf("fetch_forecast: location not resolved")
	}
	collection, srcID, err := n.Service.Get(ctx, *st.Location, st.TargetDatetime)
	if err != nil {
		return err
	}
	st.Forecast = &collection
	if at, ok := collection.At(st.TargetDatetime); ok {
		st.ForecastAtTarget = &at
	}
	if srcID != "" {
		st.Metadata["spatial_borrow"] = srcID
	}
	return nil
}
