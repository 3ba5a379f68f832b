package model

import (
	"fmt"
	"time"
)

// Urgency defines how pressing a blood request is.
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyMedium
	UrgencyHigh
	UrgencyCritical
)

// String returns a human-readable representation of the urgency level.
func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyMedium:
		return "medium"
	case UrgencyHigh:
		return "high"
	case UrgencyCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParseUrgency converts a string into an Urgency.
func ParseUrgency(s string) (Urgency, error) {
	switch s {
	case "low":
		return UrgencyLow, nil
	case "medium":
		return UrgencyMedium, nil
	case "high":
		return UrgencyHigh, nil
	case "critical":
		return UrgencyCritical, nil
	default:
		return 0, fmt.Errorf("unknown urgency %q", s)
	}
}

// RequestStatus is the lifecycle state of a blood request.
type RequestStatus int

const (
	StatusActive RequestStatus = iota
	StatusExpired
	StatusClosed
)

// String returns the status name as persisted.
func (s RequestStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusExpired:
		return "expired"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ParseRequestStatus converts a persisted status string into a RequestStatus.
func ParseRequestStatus(s string) (RequestStatus, error) {
	switch s {
	case "active":
		return StatusActive, nil
	case "expired":
		return StatusExpired, nil
	case "closed":
		return StatusClosed, nil
	default:
		return 0, fmt.Errorf("unknown request status %q", s)
	}
}

// BloodRequest is an urgent demand for blood issued by a hospital.
type BloodRequest struct {
	ID          string
	HospitalID  string
	BloodType   BloodType
	UnitsNeeded int
	Urgency     Urgency
	Message     string // optional free text appended to notifications
	Status      RequestStatus
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Validate checks that the request is well formed.
func (r BloodRequest) Validate() error {
	if r.UnitsNeeded < 1 {
		return fmt.Errorf("units needed must be at least 1, got %d", r.UnitsNeeded)
	}
	if r.HospitalID == "" {
		return fmt.Errorf("hospital id is required")
	}
	return nil
}

// ExpiredAt reports whether the request has passed its expiry at the given
// time. Expiry is computed on read; the stored status may lag behind.
func (r BloodRequest) ExpiredAt(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
