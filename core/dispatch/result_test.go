package dispatch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultPartialFailure(t *testing.T) {
	r := Result{Errors: map[string]error{}}
	assert.False(t, r.PartialFailure())
	r.Errors["d1"] = fmt.Errorf("send failed")
	assert.True(t, r.PartialFailure())
}

func TestResultUnderFulfilled(t *testing.T) {
	r := Result{Selected: rankedFixture(2)}
	assert.False(t, r.UnderFulfilled(2))
	assert.True(t, r.UnderFulfilled(3))
}

func TestResultSelectedStats(t *testing.T) {
	r := Result{Selected: []RankedDonor{
		{DistanceKM: 1},
		{DistanceKM: 2},
		{DistanceKM: 3},
		{DistanceKM: 10},
	}}
	stats := r.SelectedStats()
	assert.InDelta(t, 4.0, stats.MeanKM, 1e-9)
	assert.Equal(t, 10.0, stats.P90KM)
}

func TestResultSelectedStatsEmpty(t *testing.T) {
	assert.Zero(t, Result{}.SelectedStats())
}
