package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raktsetu/core/model"
)

func donorAt(id string, lat, lon float64) model.Donor {
	return model.Donor{ID: id, Location: model.Coordinates{Lat: lat, Lon: lon}, Active: true, Notify: true}
}

func TestRankByDistance_Ascending(t *testing.T) {
	hospital := model.Coordinates{Lat: 12.97, Lon: 77.59}
	donors := []model.Donor{
		donorAt("far", 13.20, 77.70),
		donorAt("near", 12.98, 77.60),
		donorAt("mid", 13.05, 77.62),
	}
	ranked := RankByDistance(donors, hospital)
	require.Len(t, ranked, 3)
	assert.Equal(t, "near", ranked[0].Donor.ID)
	assert.Equal(t, "mid", ranked[1].Donor.ID)
	assert.Equal(t, "far", ranked[2].Donor.ID)
	for i := 1; i < len(ranked); i++ {
		assert.LessOrEqual(t, ranked[i-1].DistanceKM, ranked[i].DistanceKM)
	}
}

func TestRankByDistance_TieBreakByDonorID(t *testing.T) {
	hospital := model.Coordinates{Lat: 12.97, Lon: 77.59}
	// All donors at the hospital itself: distance 0 for everyone.
	donors := []model.Donor{
		donorAt("c", 12.97, 77.59),
		donorAt("a", 12.97, 77.59),
		donorAt("b", 12.97, 77.59),
	}
	ranked := RankByDistance(donors, hospital)
	require.Len(t, ranked, 3)
	assert.Equal(t, "a", ranked[0].Donor.ID)
	assert.Equal(t, "b", ranked[1].Donor.ID)
	assert.Equal(t, "c", ranked[2].Donor.ID)
	assert.Equal(t, 0.0, ranked[0].DistanceKM)
}

func TestRankByDistance_Empty(t *testing.T) {
	ranked := RankByDistance(nil, model.Coordinates{Lat: 12.97, Lon: 77.59})
	assert.Empty(t, ranked)
}
