package postgres

import (
	"context"
	"fmt"

	"raktsetu/core/model"
)

func (s *Store) AppendDecisions(ctx context.Context, decisions []model.DonorDecision) error {
	query := `INSERT INTO donor_decisions (id, request_id, donor_id, verdict, distance_km, decided_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	for _, d := range decisions {
		if _, err := s.q.ExecContext(ctx, query,
			d.ID, d.RequestID, d.DonorID, d.Verdict.String(), d.DistanceKM, d.DecidedAt); err != nil {
			return fmt.Errorf("append decision for donor %s: %w", d.DonorID, err)
		}
	}
	return nil
}

func (s *Store) ListDecisionsByRequest(ctx context.Context, requestID string) ([]model.DonorDecision, error) {
	query := `SELECT id, request_id, donor_id, verdict, distance_km, decided_at
	          FROM donor_decisions WHERE request_id = $1 ORDER BY decided_at, id`
	rows, err := s.q.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var res []model.DonorDecision
	for rows.Next() {
		var d model.DonorDecision
		var verdict string
		if err := rows.Scan(&d.ID, &d.RequestID, &d.DonorID, &verdict, &d.DistanceKM, &d.DecidedAt); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		if d.Verdict, err = model.ParseVerdict(verdict); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}
