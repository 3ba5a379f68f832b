package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"raktsetu/core/model"
	"raktsetu/core/store"
)

func (s *Store) GetHospital(ctx context.Context, id string) (model.Hospital, error) {
	query := `SELECT id, name, phone, lat, lon FROM hospitals WHERE id = $1`
	var h model.Hospital
	err := s.q.QueryRowContext(ctx, query, id).
		Scan(&h.ID, &h.Name, &h.Phone, &h.Location.Lat, &h.Location.Lon)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Hospital{}, store.ErrNotFound
	}
	if err != nil {
		return model.Hospital{}, fmt.Errorf("get hospital: %w", err)
	}
	return h, nil
}

// UpsertHospital inserts or updates a hospital for seeding and tooling.
func (s *Store) UpsertHospital(ctx context.Context, h model.Hospital) error {
	query := `INSERT INTO hospitals (id, name, phone, lat, lon)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (id) DO UPDATE SET
	              name = EXCLUDED.name, phone = EXCLUDED.phone,
	              lat = EXCLUDED.lat, lon = EXCLUDED.lon`
	_, err := s.q.ExecContext(ctx, query, h.ID, h.Name, h.Phone, h.Location.Lat, h.Location.Lon)
	if err != nil {
		return fmt.Errorf("upsert hospital: %w", err)
	}
	return nil
}
