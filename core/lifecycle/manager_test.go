package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raktsetu/core/clock"
	"raktsetu/core/dispatch"
	"raktsetu/core/model"
	"raktsetu/core/store"
	"raktsetu/infra/logger"
	"raktsetu/infra/memory"
	"raktsetu/infra/notify"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T, st store.Store, now time.Time) *Manager {
	t.Helper()
	eng, err := dispatch.NewEngine(dispatch.ExactMatchFilter{}, st, notify.NewMockTransport(), clock.Fixed{T: now}, time.Second, logger.NopLogger{}, nil, nil)
	require.NoError(t, err)
	mgr, err := NewManager(eng, st, clock.Fixed{T: now}, 0, logger.NopLogger{})
	require.NoError(t, err)
	return mgr
}

func seedPool(st *memory.Store) {
	st.AddHospital(model.Hospital{ID: "h1", Name: "City General", Phone: "080-1234", Location: model.Coordinates{Lat: 12.97, Lon: 77.59}})
	st.AddDonor(model.Donor{ID: "d1", Phone: "p1", BloodType: model.OPositive, Location: model.Coordinates{Lat: 12.98, Lon: 77.59}, Active: true, Notify: true})
}

func TestManagerCreate(t *testing.T) {
	st := memory.New()
	seedPool(st)
	mgr := newTestManager(t, st, testNow)

	req, res, err := mgr.Create(context.Background(), CreateParams{
		HospitalID:  "h1",
		BloodType:   model.OPositive,
		UnitsNeeded: 1,
		Urgency:     model.UrgencyCritical,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, req.ID)
	assert.Equal(t, model.StatusActive, req.Status)
	assert.Equal(t, testNow, req.CreatedAt)
	assert.Equal(t, testNow.Add(24*time.Hour), req.ExpiresAt, "default TTL is 24 hours")
	assert.Len(t, res.Selected, 1)

	stored, err := st.GetRequest(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, stored.ID)
}

func TestManagerCreateTTLOverride(t *testing.T) {
	st := memory.New()
	seedPool(st)
	mgr := newTestManager(t, st, testNow)

	req, _, err := mgr.Create(context.Background(), CreateParams{
		HospitalID:  "h1",
		BloodType:   model.OPositive,
		UnitsNeeded: 1,
		Urgency:     model.UrgencyLow,
		TTLHours:    6,
	})
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(6*time.Hour), req.ExpiresAt)
}

func TestManagerCreateUnknownHospital(t *testing.T) {
	st := memory.New()
	seedPool(st)
	mgr := newTestManager(t, st, testNow)

	_, _, err := mgr.Create(context.Background(), CreateParams{
		HospitalID:  "ghost",
		BloodType:   model.OPositive,
		UnitsNeeded: 1,
	})
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestManagerIsExpired(t *testing.T) {
	mgr := newTestManager(t, memory.New(), testNow)
	req := model.BloodRequest{ExpiresAt: testNow.Add(time.Hour)}
	assert.False(t, mgr.IsExpired(req, testNow))
	assert.False(t, mgr.IsExpired(req, testNow.Add(time.Hour-time.Nanosecond)))
	assert.True(t, mgr.IsExpired(req, testNow.Add(time.Hour)), "expiry boundary is inclusive")
}

func seedRequest(t *testing.T, st *memory.Store, id string, status model.RequestStatus, expiresAt time.Time) {
	t.Helper()
	err := st.CreateRequest(context.Background(), model.BloodRequest{
		ID:          id,
		HospitalID:  "h1",
		BloodType:   model.OPositive,
		UnitsNeeded: 1,
		Status:      status,
		CreatedAt:   testNow.Add(-time.Hour),
		ExpiresAt:   expiresAt,
	})
	require.NoError(t, err)
}

func TestManagerRecordDonorResponse(t *testing.T) {
	st := memory.New()
	seedPool(st)
	mgr := newTestManager(t, st, testNow)
	seedRequest(t, st, "r1", model.StatusActive, testNow.Add(time.Hour))

	require.NoError(t, mgr.RecordDonorResponse(context.Background(), "r1", "d1", true))
	require.NoError(t, mgr.RecordDonorResponse(context.Background(), "r1", "d1", false))

	decisions, err := st.ListDecisionsByRequest(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, decisions, 2, "responses append, never overwrite")
	assert.Equal(t, model.VerdictRespondedAvailable, decisions[0].Verdict)
	assert.Equal(t, model.VerdictRespondedUnavailable, decisions[1].Verdict)

	current := model.CurrentVerdicts(decisions)
	assert.Equal(t, model.VerdictRespondedUnavailable, current["d1"], "latest response wins")
}

func TestManagerRecordDonorResponseExpired(t *testing.T) {
	st := memory.New()
	seedPool(st)
	mgr := newTestManager(t, st, testNow)
	seedRequest(t, st, "r1", model.StatusActive, testNow.Add(-time.Minute))

	err := mgr.RecordDonorResponse(context.Background(), "r1", "d1", true)
	assert.True(t, errors.Is(err, ErrRequestExpired))

	// The lazy check also persists the status transition.
	stored, gerr := st.GetRequest(context.Background(), "r1")
	require.NoError(t, gerr)
	assert.Equal(t, model.StatusExpired, stored.Status)

	decisions, derr := st.ListDecisionsByRequest(context.Background(), "r1")
	require.NoError(t, derr)
	assert.Empty(t, decisions)
}

func TestManagerRecordDonorResponseClosed(t *testing.T) {
	st := memory.New()
	seedPool(st)
	mgr := newTestManager(t, st, testNow)
	seedRequest(t, st, "r1", model.StatusClosed, testNow.Add(time.Hour))

	err := mgr.RecordDonorResponse(context.Background(), "r1", "d1", true)
	assert.True(t, errors.Is(err, ErrRequestClosed))
}

func TestManagerRecordDonorResponseUnknowns(t *testing.T) {
	st := memory.New()
	seedPool(st)
	mgr := newTestManager(t, st, testNow)
	seedRequest(t, st, "r1", model.StatusActive, testNow.Add(time.Hour))

	err := mgr.RecordDonorResponse(context.Background(), "missing", "d1", true)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	err = mgr.RecordDonorResponse(context.Background(), "r1", "ghost", true)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestManagerClose(t *testing.T) {
	st := memory.New()
	seedPool(st)
	mgr := newTestManager(t, st, testNow)
	seedRequest(t, st, "r1", model.StatusActive, testNow.Add(time.Hour))

	require.NoError(t, mgr.Close(context.Background(), "r1"))
	stored, err := st.GetRequest(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, stored.Status)

	err = mgr.Close(context.Background(), "missing")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestManagerExpireDue(t *testing.T) {
	st := memory.New()
	seedPool(st)
	mgr := newTestManager(t, st, testNow)
	seedRequest(t, st, "overdue", model.StatusActive, testNow.Add(-time.Minute))
	seedRequest(t, st, "live", model.StatusActive, testNow.Add(time.Hour))
	seedRequest(t, st, "closed", model.StatusClosed, testNow.Add(-time.Minute))

	n, err := mgr.ExpireDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	overdue, _ := st.GetRequest(context.Background(), "overdue")
	assert.Equal(t, model.StatusExpired, overdue.Status)
	live, _ := st.GetRequest(context.Background(), "live")
	assert.Equal(t, model.StatusActive, live.Status)
	closed, _ := st.GetRequest(context.Background(), "closed")
	assert.Equal(t, model.StatusClosed, closed.Status, "closed requests are not swept")
}

func TestNewSweeperRejectsBadSchedule(t *testing.T) {
	mgr := newTestManager(t, memory.New(), testNow)
	_, err := NewSweeper(mgr, "not a cron expr", logger.NopLogger{})
	assert.Error(t, err)

	s, err := NewSweeper(mgr, "@every 1h", logger.NopLogger{})
	require.NoError(t, err)
	s.Start()
	s.Stop()
}

func TestNewManagerNilParameters(t *testing.T) {
	_, err := NewManager(nil, nil, nil, 0, nil)
	assert.Error(t, err)
}
