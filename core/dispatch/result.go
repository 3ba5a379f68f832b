package dispatch

import (
	"gonum.org/v1/gonum/stat"
)

// Result aggregates the outcome of one dispatch run.
type Result struct {
	RequestID   string
	Eligible    int
	Selected    []RankedDonor
	NotSelected []RankedDonor
	// Sent maps donor ID to whether the notification was delivered to the
	// transport successfully.
	Sent map[string]bool
	// Errors holds per-donor send failures. A failed send never rolls back
	// persisted decisions.
	Errors map[string]error
	// Skipped lists selected donors with notifications disabled.
	Skipped []string
}

// DistanceStats summarizes the distances of the selected donors.
type DistanceStats struct {
	MeanKM float64
	P90KM  float64
}

// PartialFailure reports whether at least one notification send failed.
func (r Result) PartialFailure() bool { return len(r.Errors) > 0 }

// UnderFulfilled reports whether fewer donors were selected than units
// requested. It is the hospital's cue to widen the search.
func (r Result) UnderFulfilled(units int) bool { return len(r.Selected) < units }

// SelectedStats computes distance statistics over the selected donors.
// Selected is sorted ascending by construction, which Quantile requires.
func (r Result) SelectedStats() DistanceStats {
	if len(r.Selected) == 0 {
		return DistanceStats{}
	}
	xs := make([]float64, len(r.Selected))
	for i, rd := range r.Selected {
		xs[i] = rd.DistanceKM
	}
	return DistanceStats{
		MeanKM: stat.Mean(xs, nil),
		P90KM:  stat.Quantile(0.9, stat.Empirical, xs, nil),
	}
}
