// Package lifecycle owns blood request state: creation, expiry, closing and
// the append-only donor response log. It is the sole writer of a request's
// status field.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"raktsetu/core/clock"
	"raktsetu/core/dispatch"
	"raktsetu/core/logger"
	"raktsetu/core/model"
	"raktsetu/core/store"
)

// ErrRequestExpired is returned when a donor response arrives for a request
// past its expiry.
var ErrRequestExpired = errors.New("request expired")

// ErrRequestClosed is returned when a donor response arrives for a closed
// request.
var ErrRequestClosed = errors.New("request closed")

// CreateParams carries the validated intake fields for a new request.
type CreateParams struct {
	HospitalID  string
	BloodType   model.BloodType
	UnitsNeeded int
	Urgency     model.Urgency
	Message     string
	// TTLHours overrides the configured default when positive.
	TTLHours int
}

// Manager owns request lifecycle and delegates the dispatch pipeline to the
// engine.
type Manager struct {
	eng   *dispatch.Engine
	db    store.Store
	clk   clock.Clock
	ttl   time.Duration
	log   logger.Logger
	newID func() string
}

// NewManager creates a Manager. defaultTTL is applied to requests that do
// not override it; if non-positive, 24 hours is used.
func NewManager(eng *dispatch.Engine, db store.Store, clk clock.Clock, defaultTTL time.Duration, log logger.Logger) (*Manager, error) {
	if eng == nil || db == nil || clk == nil || log == nil {
		return nil, fmt.Errorf("lifecycle: nil parameter provided to NewManager")
	}
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	return &Manager{
		eng:   eng,
		db:    db,
		clk:   clk,
		ttl:   defaultTTL,
		log:   log,
		newID: uuid.NewString,
	}, nil
}

// Create builds an active request with an expiry derived from the TTL and
// runs the dispatch pipeline. A missing hospital surfaces as
// store.ErrNotFound before any decision is written or notification sent.
func (m *Manager) Create(ctx context.Context, p CreateParams) (model.BloodRequest, dispatch.Result, error) {
	ttl := m.ttl
	if p.TTLHours > 0 {
		ttl = time.Duration(p.TTLHours) * time.Hour
	}
	now := m.clk.Now()
	req := model.BloodRequest{
		ID:          m.newID(),
		HospitalID:  p.HospitalID,
		BloodType:   p.BloodType,
		UnitsNeeded: p.UnitsNeeded,
		Urgency:     p.Urgency,
		Message:     p.Message,
		Status:      model.StatusActive,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
	res, err := m.eng.Dispatch(ctx, req)
	if err != nil {
		return model.BloodRequest{}, dispatch.Result{}, err
	}
	return req, res, nil
}

// IsExpired is a pure predicate over the injected clock's notion of now.
// Expiry is computed on read; the stored status may lag until a sweep runs.
func (m *Manager) IsExpired(req model.BloodRequest, now time.Time) bool {
	return req.ExpiredAt(now)
}

// Close marks a request closed.
func (m *Manager) Close(ctx context.Context, requestID string) error {
	if _, err := m.db.GetRequest(ctx, requestID); err != nil {
		return fmt.Errorf("request %s: %w", requestID, err)
	}
	return m.db.UpdateRequestStatus(ctx, requestID, model.StatusClosed)
}

// RecordDonorResponse appends a donor-initiated availability response to the
// decision log. The original selected/not_selected rows stay untouched; the
// latest entry reflects current known status. Responses to expired or closed
// requests are rejected.
func (m *Manager) RecordDonorResponse(ctx context.Context, requestID, donorID string, available bool) error {
	req, err := m.db.GetRequest(ctx, requestID)
	if err != nil {
		return fmt.Errorf("request %s: %w", requestID, err)
	}
	if req.Status == model.StatusClosed {
		return ErrRequestClosed
	}
	now := m.clk.Now()
	if req.ExpiredAt(now) {
		if req.Status == model.StatusActive {
			if uerr := m.db.UpdateRequestStatus(ctx, requestID, model.StatusExpired); uerr != nil {
				m.log.Errorf("persist expired status for %s: %v", requestID, uerr)
			}
		}
		return ErrRequestExpired
	}
	if _, err := m.db.GetDonor(ctx, donorID); err != nil {
		return fmt.Errorf("donor %s: %w", donorID, err)
	}
	verdict := model.VerdictRespondedUnavailable
	if available {
		verdict = model.VerdictRespondedAvailable
	}
	dec := model.DonorDecision{
		ID:        m.newID(),
		RequestID: requestID,
		DonorID:   donorID,
		Verdict:   verdict,
		DecidedAt: now,
	}
	if err := m.db.AppendDecisions(ctx, []model.DonorDecision{dec}); err != nil {
		return fmt.Errorf("append response: %w", err)
	}
	m.log.Infof("request %s: donor %s responded %s", requestID, donorID, verdict)
	return nil
}

// ExpireDue persists the expired status for active requests past their
// expiry and returns how many were transitioned. The lazy predicate remains
// authoritative; this only aligns stored status for external listings.
func (m *Manager) ExpireDue(ctx context.Context) (int, error) {
	due, err := m.db.ListActiveExpiredBefore(ctx, m.clk.Now())
	if err != nil {
		return 0, fmt.Errorf("list expired: %w", err)
	}
	n := 0
	for _, req := range due {
		if err := m.db.UpdateRequestStatus(ctx, req.ID, model.StatusExpired); err != nil {
			return n, fmt.Errorf("expire %s: %w", req.ID, err)
		}
		n++
	}
	if n > 0 {
		m.log.Infof("expired %d requests", n)
	}
	return n, nil
}
