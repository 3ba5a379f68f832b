package model

import (
	"fmt"
	"time"
)

// Verdict is the outcome recorded for a (request, donor) pair.
type Verdict int

const (
	// VerdictSelected marks a donor in the top-N closest for a request.
	VerdictSelected Verdict = iota
	// VerdictNotSelected marks an eligible donor outside the top N.
	VerdictNotSelected
	// VerdictRespondedAvailable is appended when a donor self-reports as
	// available after being notified.
	VerdictRespondedAvailable
	// VerdictRespondedUnavailable is appended when a donor self-reports as
	// unavailable.
	VerdictRespondedUnavailable
)

// String returns the verdict name as persisted.
func (v Verdict) String() string {
	switch v {
	case VerdictSelected:
		return "selected"
	case VerdictNotSelected:
		return "not_selected"
	case VerdictRespondedAvailable:
		return "donor_responded_available"
	case VerdictRespondedUnavailable:
		return "donor_responded_unavailable"
	default:
		return "unknown"
	}
}

// ParseVerdict converts a persisted verdict string into a Verdict.
func ParseVerdict(s string) (Verdict, error) {
	switch s {
	case "selected":
		return VerdictSelected, nil
	case "not_selected":
		return VerdictNotSelected, nil
	case "donor_responded_available":
		return VerdictRespondedAvailable, nil
	case "donor_responded_unavailable":
		return VerdictRespondedUnavailable, nil
	default:
		return 0, fmt.Errorf("unknown verdict %q", s)
	}
}

// DonorDecision is one immutable entry in the decision log for a
// (request, donor) pair. Later donor responses append new entries rather
// than mutating earlier ones.
type DonorDecision struct {
	ID        string
	RequestID string
	DonorID   string
	Verdict   Verdict
	// DistanceKM is the donor's distance to the hospital at decision time.
	// Recorded for selected and not_selected verdicts, zero otherwise.
	DistanceKM float64
	DecidedAt  time.Time
}

// CurrentVerdicts reduces a decision history to the latest verdict per
// donor. Entries must be ordered by decision time ascending, which is the
// order stores return them in.
func CurrentVerdicts(history []DonorDecision) map[string]Verdict {
	cur := make(map[string]Verdict, len(history))
	for _, d := range history {
		cur[d.DonorID] = d.Verdict
	}
	return cur
}
