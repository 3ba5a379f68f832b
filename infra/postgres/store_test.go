package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raktsetu/core/model"
	"raktsetu/core/store"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewStore(db), mock
}

func donorColumns() []string {
	return []string{"id", "name", "phone", "blood_type", "lat", "lon", "active", "notify"}
}

func TestListActiveDonorsByType(t *testing.T) {
	st, mock := newMockStore(t)
	rows := sqlmock.NewRows(donorColumns()).
		AddRow("d1", "Asha", "p1", "O+", 12.98, 77.59, true, true).
		AddRow("d2", "Ravi", "p2", "O+", 13.01, 77.60, true, false)
	mock.ExpectQuery("SELECT id, name, phone, blood_type, lat, lon, active, notify").
		WithArgs("O+").
		WillReturnRows(rows)

	donors, err := st.ListActiveDonorsByType(context.Background(), model.OPositive)
	require.NoError(t, err)
	require.Len(t, donors, 2)
	assert.Equal(t, model.OPositive, donors[0].BloodType)
	assert.False(t, donors[1].Notify)
}

func TestListActiveDonorsByTypeBadBloodType(t *testing.T) {
	st, mock := newMockStore(t)
	rows := sqlmock.NewRows(donorColumns()).
		AddRow("d1", "Asha", "p1", "X?", 12.98, 77.59, true, true)
	mock.ExpectQuery("SELECT id, name, phone, blood_type").WillReturnRows(rows)

	_, err := st.ListActiveDonorsByType(context.Background(), model.OPositive)
	assert.Error(t, err)
}

func TestGetDonorNotFound(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectQuery("SELECT id, name, phone, blood_type").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(donorColumns()))

	_, err := st.GetDonor(context.Background(), "ghost")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestGetHospital(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectQuery("SELECT id, name, phone, lat, lon FROM hospitals").
		WithArgs("h1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "phone", "lat", "lon"}).
			AddRow("h1", "City General", "080-1234", 12.97, 77.59))

	h, err := st.GetHospital(context.Background(), "h1")
	require.NoError(t, err)
	assert.Equal(t, "City General", h.Name)
	assert.Equal(t, 12.97, h.Location.Lat)
}

func TestUpsertDonor(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO donors")).
		WithArgs("d1", "Asha", "p1", "A-", 12.98, 77.59, true, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := st.UpsertDonor(context.Background(), model.Donor{
		ID: "d1", Name: "Asha", Phone: "p1", BloodType: model.ANegative,
		Location: model.Coordinates{Lat: 12.98, Lon: 77.59}, Active: true, Notify: true,
	})
	assert.NoError(t, err)
}

func TestCreateAndGetRequest(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO blood_requests")).
		WithArgs("r1", "h1", "O+", 2, "high", "", "active", now, now.Add(time.Hour)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, hospital_id, blood_type").
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "hospital_id", "blood_type", "units_needed", "urgency", "message", "status", "created_at", "expires_at"}).
			AddRow("r1", "h1", "O+", 2, "high", "", "active", now, now.Add(time.Hour)))

	req := model.BloodRequest{
		ID: "r1", HospitalID: "h1", BloodType: model.OPositive, UnitsNeeded: 2,
		Urgency: model.UrgencyHigh, Status: model.StatusActive,
		CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, st.CreateRequest(context.Background(), req))

	got, err := st.GetRequest(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestUpdateRequestStatusNotFound(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE blood_requests SET status")).
		WithArgs("expired", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := st.UpdateRequestStatus(context.Background(), "ghost", model.StatusExpired)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestAppendAndListDecisions(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO donor_decisions")).
		WithArgs("dec1", "r1", "d1", "selected", 2.5, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, request_id, donor_id, verdict").
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "request_id", "donor_id", "verdict", "distance_km", "decided_at"}).
			AddRow("dec1", "r1", "d1", "selected", 2.5, now))

	dec := model.DonorDecision{ID: "dec1", RequestID: "r1", DonorID: "d1", Verdict: model.VerdictSelected, DistanceKM: 2.5, DecidedAt: now}
	require.NoError(t, st.AppendDecisions(context.Background(), []model.DonorDecision{dec}))

	got, err := st.ListDecisionsByRequest(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, dec, got[0])
}

func TestWithinTxCommitsOnSuccess(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE blood_requests SET status")).
		WithArgs("closed", "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := st.WithinTx(context.Background(), func(tx store.Store) error {
		return tx.UpdateRequestStatus(context.Background(), "r1", model.StatusClosed)
	})
	assert.NoError(t, err)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	wantErr := errors.New("boom")
	err := st.WithinTx(context.Background(), func(store.Store) error { return wantErr })
	assert.True(t, errors.Is(err, wantErr))
}

func TestEnsureSchema(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS donors").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, st.EnsureSchema(context.Background()))
}
