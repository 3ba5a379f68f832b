package dispatch

import (
	"fmt"

	"raktsetu/core/model"
)

// defaultIndicator is used when the urgency level is not one of the four
// known values. An unrecognized urgency must not fail the request.
const defaultIndicator = "🩸"

// UrgencyIndicator maps an urgency level to the symbol embedded in the
// notification text.
func UrgencyIndicator(u model.Urgency) string {
	switch u {
	case model.UrgencyLow:
		return "🟢"
	case model.UrgencyMedium:
		return "🟡"
	case model.UrgencyHigh:
		return "🔴"
	case model.UrgencyCritical:
		return "🚨"
	default:
		return defaultIndicator
	}
}

// BuildMessage renders the notification text for one selected donor. The
// distance is shown with one decimal place. The request's optional free-text
// message is appended when present.
func BuildMessage(hospital model.Hospital, req model.BloodRequest, distanceKM float64) string {
	msg := fmt.Sprintf(
		"%s URGENT: %s needs %s blood (%d units). Distance: %.1fkm. We've selected you as a top priority. Please contact the hospital at %s.",
		UrgencyIndicator(req.Urgency), hospital.Name, req.BloodType, req.UnitsNeeded, distanceKM, hospital.Phone,
	)
	if req.Message != "" {
		msg += " " + req.Message
	}
	return msg
}
