// Package store defines the persistence capabilities consumed by the
// dispatch engine. Implementations live under infra.
package store

import (
	"context"
	"errors"
	"time"

	"raktsetu/core/model"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// DonorStore reads the donor pool.
type DonorStore interface {
	// ListActiveDonorsByType returns active donors whose blood type matches
	// exactly. An empty result is valid.
	ListActiveDonorsByType(ctx context.Context, bt model.BloodType) ([]model.Donor, error)
	GetDonor(ctx context.Context, id string) (model.Donor, error)
}

// HospitalStore reads hospitals.
type HospitalStore interface {
	GetHospital(ctx context.Context, id string) (model.Hospital, error)
}

// RequestStore persists blood requests. The lifecycle manager is the sole
// writer of the status field.
type RequestStore interface {
	CreateRequest(ctx context.Context, r model.BloodRequest) error
	GetRequest(ctx context.Context, id string) (model.BloodRequest, error)
	// ListActiveExpiredBefore returns requests still marked active whose
	// expiry has passed. Used by the optional sweeper.
	ListActiveExpiredBefore(ctx context.Context, cutoff time.Time) ([]model.BloodRequest, error)
	UpdateRequestStatus(ctx context.Context, id string, status model.RequestStatus) error
}

// DecisionStore appends to the per-request decision log. Rows are immutable;
// donor responses append new rows rather than updating earlier ones.
type DecisionStore interface {
	AppendDecisions(ctx context.Context, decisions []model.DonorDecision) error
	// ListDecisionsByRequest returns the full decision history ordered by
	// decision time ascending.
	ListDecisionsByRequest(ctx context.Context, requestID string) ([]model.DonorDecision, error)
}

// Store composes all persistence capabilities behind one handle.
type Store interface {
	DonorStore
	HospitalStore
	RequestStore
	DecisionStore

	// WithinTx runs fn inside one transaction boundary so the eligibility
	// read, the request insert and the decision append either all land or
	// none do. Implementations without transactional semantics may run fn
	// directly.
	WithinTx(ctx context.Context, fn func(Store) error) error
}
