package workflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakamo-wni/weathercomment/internal/apperrors"
	"github.com/sakamo-wni/weathercomment/internal/domain"
	"github.com/sakamo-wni/weathercomment/internal/geo"
	"github.com/sakamo-wni/weathercomment/internal/workflow"
)

func newTestLocationTable(t *testing.T) *geo.LocationTable {
	t.Helper()
	table, err := geo.NewLocationTable([]domain.Location{
		{ID: "tokyo", Name: "Tokyo", Prefecture: "Tokyo", Latitude: 35.68, Longitude: 139.69},
	})
	require.NoError(t, err)
	return table
}

func TestInputNode_ResolvesKnownLocation(t *testing.T) {
	node := &workflow.InputNode{Locations: newTestLocationTable(t)}
	st := domain.NewGenerationState("Tokyo", time.Time{}, "")

	err := node.Run(context.Background(), st)

	require.NoError(t, err)
	require.NotNil(t, st.Location)
	assert.Equal(t, "tokyo", st.Location.ID)
	assert.False(t, st.TargetDatetime.IsZero())
}

func TestInputNode_UnknownLocationFails(t *testing.T) {
	node := &workflow.InputNode{Locations: newTestLocationTable(t)}
	st := domain.NewGenerationState("Nowhere", time.Time{}, "")

	err := node.Run(context.Background(), st)

	require.Error(t, err)
	var notFound *apperrors.LocationNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestInputNode_KeepsExplicitTargetDatetime(t *testing.T) {
	node := &workflow.InputNode{Locations: newTestLocationTable(t)}
	target := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	st := domain.NewGenerationState("Tokyo", target, "")

	err := node.Run(context.Background(), st)

	require.NoError(t, err)
	assert.True(t, st.TargetDatetime.Equal(target))
}
