package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"raktsetu/core/model"
	"raktsetu/core/store"
)

func scanRequest(scan func(dest ...any) error) (model.BloodRequest, error) {
	var r model.BloodRequest
	var bt, urgency, status string
	if err := scan(&r.ID, &r.HospitalID, &bt, &r.UnitsNeeded, &urgency, &r.Message, &status, &r.CreatedAt, &r.ExpiresAt); err != nil {
		return model.BloodRequest{}, err
	}
	var err error
	if r.BloodType, err = model.ParseBloodType(bt); err != nil {
		return model.BloodRequest{}, err
	}
	if r.Urgency, err = model.ParseUrgency(urgency); err != nil {
		return model.BloodRequest{}, err
	}
	if r.Status, err = model.ParseRequestStatus(status); err != nil {
		return model.BloodRequest{}, err
	}
	return r, nil
}

func (s *Store) CreateRequest(ctx context.Context, r model.BloodRequest) error {
	query := `INSERT INTO blood_requests
	          (id, hospital_id, blood_type, units_needed, urgency, message, status, created_at, expires_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.q.ExecContext(ctx, query,
		r.ID, r.HospitalID, r.BloodType.String(), r.UnitsNeeded, r.Urgency.String(),
		r.Message, r.Status.String(), r.CreatedAt, r.ExpiresAt)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

func (s *Store) GetRequest(ctx context.Context, id string) (model.BloodRequest, error) {
	query := `SELECT id, hospital_id, blood_type, units_needed, urgency, message, status, created_at, expires_at
	          FROM blood_requests WHERE id = $1`
	r, err := scanRequest(s.q.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BloodRequest{}, store.ErrNotFound
	}
	if err != nil {
		return model.BloodRequest{}, fmt.Errorf("get request: %w", err)
	}
	return r, nil
}

func (s *Store) ListActiveExpiredBefore(ctx context.Context, cutoff time.Time) ([]model.BloodRequest, error) {
	query := `SELECT id, hospital_id, blood_type, units_needed, urgency, message, status, created_at, expires_at
	          FROM blood_requests WHERE status = 'active' AND expires_at <= $1 ORDER BY expires_at`
	rows, err := s.q.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expired: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var res []model.BloodRequest
	for rows.Next() {
		r, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

func (s *Store) UpdateRequestStatus(ctx context.Context, id string, status model.RequestStatus) error {
	query := `UPDATE blood_requests SET status = $1 WHERE id = $2`
	result, err := s.q.ExecContext(ctx, query, status.String(), id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}
