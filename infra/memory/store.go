// Package memory provides an in-memory Store used by tests and the demo
// CLI. It is safe for concurrent use.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"raktsetu/core/model"
	"raktsetu/core/store"
)

// Store keeps all entities in process memory.
type Store struct {
	mu        sync.RWMutex
	donors    map[string]model.Donor
	hospitals map[string]model.Hospital
	requests  map[string]model.BloodRequest
	decisions []model.DonorDecision
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		donors:    make(map[string]model.Donor),
		hospitals: make(map[string]model.Hospital),
		requests:  make(map[string]model.BloodRequest),
	}
}

// AddDonor seeds a donor.
func (s *Store) AddDonor(d model.Donor) {
	s.mu.Lock()
	s.donors[d.ID] = d
	s.mu.Unlock()
}

// AddHospital seeds a hospital.
func (s *Store) AddHospital(h model.Hospital) {
	s.mu.Lock()
	s.hospitals[h.ID] = h
	s.mu.Unlock()
}

func (s *Store) ListActiveDonorsByType(_ context.Context, bt model.BloodType) ([]model.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []model.Donor
	for _, d := range s.donors {
		if d.Active && d.BloodType == bt {
			res = append(res, d)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *Store) GetDonor(_ context.Context, id string) (model.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.donors[id]
	if !ok {
		return model.Donor{}, store.ErrNotFound
	}
	return d, nil
}

func (s *Store) GetHospital(_ context.Context, id string) (model.Hospital, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hospitals[id]
	if !ok {
		return model.Hospital{}, store.ErrNotFound
	}
	return h, nil
}

func (s *Store) CreateRequest(_ context.Context, r model.BloodRequest) error {
	s.mu.Lock()
	s.requests[r.ID] = r
	s.mu.Unlock()
	return nil
}

func (s *Store) GetRequest(_ context.Context, id string) (model.BloodRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return model.BloodRequest{}, store.ErrNotFound
	}
	return r, nil
}

func (s *Store) ListActiveExpiredBefore(_ context.Context, cutoff time.Time) ([]model.BloodRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []model.BloodRequest
	for _, r := range s.requests {
		if r.Status == model.StatusActive && !cutoff.Before(r.ExpiresAt) {
			res = append(res, r)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *Store) UpdateRequestStatus(_ context.Context, id string, status model.RequestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return store.ErrNotFound
	}
	r.Status = status
	s.requests[id] = r
	return nil
}

func (s *Store) AppendDecisions(_ context.Context, decisions []model.DonorDecision) error {
	s.mu.Lock()
	s.decisions = append(s.decisions, decisions...)
	s.mu.Unlock()
	return nil
}

func (s *Store) ListDecisionsByRequest(_ context.Context, requestID string) ([]model.DonorDecision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []model.DonorDecision
	for _, d := range s.decisions {
		if d.RequestID == requestID {
			res = append(res, d)
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].DecidedAt.Before(res[j].DecidedAt) })
	return res, nil
}

// WithinTx runs fn against the store. The in-memory implementation has no
// transactional isolation; fn runs directly.
func (s *Store) WithinTx(_ context.Context, fn func(store.Store) error) error {
	return fn(s)
}
