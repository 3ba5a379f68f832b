package dispatch

import (
	"time"

	"raktsetu/core/model"
)

// Partition splits a ranked donor sequence into the selected top N and the
// not-selected remainder.
type Partition struct {
	Selected    []RankedDonor
	NotSelected []RankedDonor
}

// Select partitions ranked donors by units needed. If fewer than units
// donors exist the whole sequence is selected; insufficient supply is never
// an error and is visible to the caller through the partition sizes. A
// non-positive units value yields an empty partition.
func Select(ranked []RankedDonor, units int) Partition {
	if units <= 0 || len(ranked) == 0 {
		return Partition{}
	}
	if units >= len(ranked) {
		return Partition{Selected: ranked}
	}
	return Partition{Selected: ranked[:units], NotSelected: ranked[units:]}
}

// Decisions produces one immutable decision record per donor in the
// partition, with the distance at decision time. newID supplies record
// identities so the function stays deterministic under test.
func (p Partition) Decisions(requestID string, at time.Time, newID func() string) []model.DonorDecision {
	decisions := make([]model.DonorDecision, 0, len(p.Selected)+len(p.NotSelected))
	for _, rd := range p.Selected {
		decisions = append(decisions, model.DonorDecision{
			ID:         newID(),
			RequestID:  requestID,
			DonorID:    rd.Donor.ID,
			Verdict:    model.VerdictSelected,
			DistanceKM: rd.DistanceKM,
			DecidedAt:  at,
		})
	}
	for _, rd := range p.NotSelected {
		decisions = append(decisions, model.DonorDecision{
			ID:         newID(),
			RequestID:  requestID,
			DonorID:    rd.Donor.ID,
			Verdict:    model.VerdictNotSelected,
			DistanceKM: rd.DistanceKM,
			DecidedAt:  at,
		})
	}
	return decisions
}
