package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"raktsetu/core/model"
	"raktsetu/core/store"
)

func scanDonor(scan func(dest ...any) error) (model.Donor, error) {
	var d model.Donor
	var bt string
	if err := scan(&d.ID, &d.Name, &d.Phone, &bt, &d.Location.Lat, &d.Location.Lon, &d.Active, &d.Notify); err != nil {
		return model.Donor{}, err
	}
	parsed, err := model.ParseBloodType(bt)
	if err != nil {
		return model.Donor{}, err
	}
	d.BloodType = parsed
	return d, nil
}

func (s *Store) ListActiveDonorsByType(ctx context.Context, bt model.BloodType) ([]model.Donor, error) {
	query := `SELECT id, name, phone, blood_type, lat, lon, active, notify
	          FROM donors WHERE blood_type = $1 AND active ORDER BY id`
	rows, err := s.q.QueryContext(ctx, query, bt.String())
	if err != nil {
		return nil, fmt.Errorf("list donors: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var donors []model.Donor
	for rows.Next() {
		d, err := scanDonor(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan donor: %w", err)
		}
		donors = append(donors, d)
	}
	return donors, rows.Err()
}

func (s *Store) GetDonor(ctx context.Context, id string) (model.Donor, error) {
	query := `SELECT id, name, phone, blood_type, lat, lon, active, notify
	          FROM donors WHERE id = $1`
	d, err := scanDonor(s.q.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Donor{}, store.ErrNotFound
	}
	if err != nil {
		return model.Donor{}, fmt.Errorf("get donor: %w", err)
	}
	return d, nil
}

// UpsertDonor inserts or updates a donor. Registration lives outside the
// engine; this supports seeding and tooling.
func (s *Store) UpsertDonor(ctx context.Context, d model.Donor) error {
	query := `INSERT INTO donors (id, name, phone, blood_type, lat, lon, active, notify)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          ON CONFLICT (id) DO UPDATE SET
	              name = EXCLUDED.name, phone = EXCLUDED.phone,
	              blood_type = EXCLUDED.blood_type, lat = EXCLUDED.lat,
	              lon = EXCLUDED.lon, active = EXCLUDED.active,
	              notify = EXCLUDED.notify`
	_, err := s.q.ExecContext(ctx, query,
		d.ID, d.Name, d.Phone, d.BloodType.String(), d.Location.Lat, d.Location.Lon, d.Active, d.Notify)
	if err != nil {
		return fmt.Errorf("upsert donor: %w", err)
	}
	return nil
}
