package dispatch

import (
	"sort"

	"raktsetu/core/geo"
	"raktsetu/core/model"
)

// RankedDonor pairs a donor with its distance to the requesting hospital.
type RankedDonor struct {
	Donor      model.Donor
	DistanceKM float64
}

// RankByDistance orders eligible donors by ascending distance to the
// hospital. Equal distances (including the 0 km degenerate case) are broken
// by donor ID ascending so the ranking is reproducible.
func RankByDistance(donors []model.Donor, hospital model.Coordinates) []RankedDonor {
	ranked := make([]RankedDonor, 0, len(donors))
	for _, d := range donors {
		ranked = append(ranked, RankedDonor{
			Donor:      d,
			DistanceKM: geo.Distance(hospital, d.Location),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].DistanceKM != ranked[j].DistanceKM {
			return ranked[i].DistanceKM < ranked[j].DistanceKM
		}
		return ranked[i].Donor.ID < ranked[j].Donor.ID
	})
	return ranked
}
