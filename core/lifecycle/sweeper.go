package lifecycle

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"raktsetu/core/logger"
)

// Sweeper periodically persists the expired status for overdue requests.
// It is optional: the lazy expiry predicate stays authoritative whether or
// not a sweeper runs.
type Sweeper struct {
	c   *cron.Cron
	mgr *Manager
	log logger.Logger
}

// NewSweeper schedules ExpireDue on the given cron expression.
func NewSweeper(mgr *Manager, schedule string, log logger.Logger) (*Sweeper, error) {
	if mgr == nil || log == nil {
		return nil, fmt.Errorf("lifecycle: nil parameter provided to NewSweeper")
	}
	s := &Sweeper{c: cron.New(), mgr: mgr, log: log}
	if _, err := s.c.AddFunc(schedule, s.sweep); err != nil {
		return nil, fmt.Errorf("sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Sweeper) sweep() {
	if _, err := s.mgr.ExpireDue(context.Background()); err != nil {
		s.log.Errorf("expiry sweep: %v", err)
	}
}

// Start begins the cron loop in its own goroutine.
func (s *Sweeper) Start() { s.c.Start() }

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.c.Stop()
	<-ctx.Done()
}
