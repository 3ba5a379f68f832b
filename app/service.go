// Package app wires configuration into a running dispatch service.
package app

import (
	"context"
	"fmt"
	"time"

	"raktsetu/config"
	"raktsetu/core/clock"
	"raktsetu/core/dispatch"
	"raktsetu/core/lifecycle"
	corenotify "raktsetu/core/notify"
	"raktsetu/core/store"
	"raktsetu/infra/logger"
	"raktsetu/infra/memory"
	"raktsetu/infra/metrics"
	"raktsetu/infra/notify"
	"raktsetu/infra/postgres"
	"raktsetu/internal/eventbus"
)

// Service orchestrates the dispatch engine, lifecycle manager and sweeper.
type Service struct {
	Engine  *dispatch.Engine
	Manager *lifecycle.Manager
	Store   store.Store

	sweeper     *lifecycle.Sweeper
	bus         *eventbus.Bus
	log         logger.Logger
	promEnabled bool
	promPort    int
	closers     []func() error
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	db, closeStore, err := newStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	transport, closeTransport, err := newTransport(cfg.Notifier)
	if err != nil {
		return nil, err
	}

	sink, err := metrics.NewFromConfig(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	bus := eventbus.New()
	clk := clock.System{}
	sendTimeout := time.Duration(cfg.Dispatch.SendTimeoutSeconds) * time.Second
	eng, err := dispatch.NewEngine(dispatch.ExactMatchFilter{}, db, transport, clk, sendTimeout, logg, sink, bus)
	if err != nil {
		return nil, fmt.Errorf("dispatch engine: %w", err)
	}

	ttl := time.Duration(cfg.Lifecycle.DefaultTTLHours) * time.Hour
	mgr, err := lifecycle.NewManager(eng, db, clk, ttl, logg)
	if err != nil {
		return nil, fmt.Errorf("lifecycle manager: %w", err)
	}

	svc := &Service{
		Engine:      eng,
		Manager:     mgr,
		Store:       db,
		bus:         bus,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}
	if closeStore != nil {
		svc.closers = append(svc.closers, closeStore)
	}
	if closeTransport != nil {
		svc.closers = append(svc.closers, closeTransport)
	}

	if cfg.Lifecycle.SweepSchedule != "" {
		sweeper, err := lifecycle.NewSweeper(mgr, cfg.Lifecycle.SweepSchedule, logg)
		if err != nil {
			return nil, fmt.Errorf("sweeper: %w", err)
		}
		svc.sweeper = sweeper
	}
	return svc, nil
}

func newStore(cfg config.StoreConfig) (store.Store, func() error, error) {
	switch cfg.Backend {
	case "postgres":
		pg, err := postgres.Open(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres store: %w", err)
		}
		if err := pg.EnsureSchema(context.Background()); err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	default:
		return memory.New(), nil, nil
	}
}

func newTransport(cfg config.NotifierConfig) (corenotify.Transport, func() error, error) {
	switch cfg.Backend {
	case "mqtt":
		gw, err := notify.NewGatewayTransport(cfg.MQTT)
		if err != nil {
			return nil, nil, fmt.Errorf("mqtt transport: %w", err)
		}
		return gw, func() error { gw.Close(); return nil }, nil
	default:
		return notify.NewConsoleTransport(), nil, nil
	}
}

// Run starts background components and blocks until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.sweeper != nil {
		s.sweeper.Start()
	}
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	go s.logEvents(ctx)
	<-ctx.Done()
	return nil
}

// logEvents surfaces bus events in the service log.
func (s *Service) logEvents(ctx context.Context) {
	events := s.bus.Subscribe()
	defer s.bus.Unsubscribe(events)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch e := ev.(type) {
			case dispatch.DecisionEvent:
				s.log.Debugw("decisions recorded", map[string]any{
					"request_id":   e.RequestID,
					"selected":     e.Selected,
					"not_selected": e.NotSelected,
				})
			case dispatch.SendEvent:
				if !e.Sent {
					s.log.Warnf("send to donor %s failed: %v", e.DonorID, e.Err)
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.sweeper != nil {
		s.sweeper.Stop()
	}
	s.bus.Close()
	for _, c := range s.closers {
		if err := c(); err != nil {
			return err
		}
	}
	return nil
}
