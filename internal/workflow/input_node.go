package workflow

import (
	"context"
	"time"

	"github.com/sakamo-wni/weathercomment/internal/apperrors"
	"github.com/sakamo-wni/weathercomment/internal/domain"
	"github.com/sakamo-wni/weathercomment/internal/geo"
)

// InputNode resolves the location name against the static table and picks
// a default target datetime when the caller left it unset (spec §4.2
// Input).
type InputNode struct {
	Locations *geo.LocationTable
}

func (InputNode) Name() NodeName { return NodeInput }

// Run validates location_name against the loaded table and defaults
// target_datetime. The exact point within "next day 09:00-18:00 JST"
// the spec leaves to the node's own choice; noon JST is used as the
// single representative instant.
func (n *InputNode) Run(_ context.Context, st *domain.GenerationState) error {
	loc, ok := n.Locations.ByName(st.LocationName)
	if !ok {
		return &apperrors.LocationNotFound{Name: st.LocationName}
	}
	st.Location = &loc

	if st.TargetDatetime.IsZero() {
		st.TargetDatetime = defaultTargetDatetime(time.Now().UTC())
	}
	return nil
}

var jstZone = time.FixedZone("JST", 9*60*60)

// defaultTargetDatetime picks noon JST on the day after now.
func defaultTargetDatetime(now time.Time) time.Time {
	local := now.In(jstZone)
	nextDay := local.AddDate(0, 0, 1)
	return time.Date(nextDay.Year(), nextDay.Month(), nextDay.Day(), 12, 0, 0, 0, jstZone)
}
