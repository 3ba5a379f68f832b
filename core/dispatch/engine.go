package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"raktsetu/core/clock"
	"raktsetu/core/logger"
	"raktsetu/core/metrics"
	"raktsetu/core/model"
	"raktsetu/core/notify"
	"raktsetu/core/store"
	"raktsetu/internal/eventbus"
)

// Engine runs the proximity-ranked dispatch pipeline for one blood request:
// filter eligible donors, rank by distance, partition into selected and
// not-selected, persist the decision set and fan notifications out to the
// selected donors.
type Engine struct {
	filter      DonorFilter
	db          store.Store
	transport   notify.Transport
	clk         clock.Clock
	sendTimeout time.Duration
	log         logger.Logger
	sink        metrics.Sink
	bus         eventbus.EventBus
	newID       func() string
}

// NewEngine creates a new engine. sendTimeout bounds each notification send;
// if zero, a default of five seconds is used.
func NewEngine(filter DonorFilter, db store.Store, transport notify.Transport, clk clock.Clock, sendTimeout time.Duration, log logger.Logger, sink metrics.Sink, bus eventbus.EventBus) (*Engine, error) {
	if filter == nil || db == nil || transport == nil || clk == nil || log == nil {
		return nil, fmt.Errorf("dispatch: nil parameter provided to NewEngine")
	}
	if sendTimeout <= 0 {
		sendTimeout = 5 * time.Second
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Engine{
		filter:      filter,
		db:          db,
		transport:   transport,
		clk:         clk,
		sendTimeout: sendTimeout,
		log:         log,
		sink:        sink,
		bus:         bus,
		newID:       uuid.NewString,
	}, nil
}

// Dispatch runs the pipeline for a validated request. The hospital lookup
// happens before any side effect: a missing hospital aborts with
// store.ErrNotFound and leaves no decisions and no notifications behind.
// The eligibility read, request insert and decision append share one
// transaction; the notification fan-out runs only after it commits, and
// individual send failures are aggregated in the result rather than
// returned as an error.
func (e *Engine) Dispatch(ctx context.Context, req model.BloodRequest) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	hospital, err := e.db.GetHospital(ctx, req.HospitalID)
	if err != nil {
		return Result{}, fmt.Errorf("hospital %s: %w", req.HospitalID, err)
	}

	var part Partition
	var eligible []model.Donor
	err = e.db.WithinTx(ctx, func(tx store.Store) error {
		if err := tx.CreateRequest(ctx, req); err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		donors, err := tx.ListActiveDonorsByType(ctx, req.BloodType)
		if err != nil {
			return fmt.Errorf("list donors: %w", err)
		}
		eligible = e.filter.Filter(donors, req.BloodType)
		ranked := RankByDistance(eligible, hospital.Location)
		part = Select(ranked, req.UnitsNeeded)
		decisions := part.Decisions(req.ID, e.clk.Now(), e.newID)
		if len(decisions) == 0 {
			return nil
		}
		if err := tx.AppendDecisions(ctx, decisions); err != nil {
			return fmt.Errorf("append decisions: %w", err)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if e.bus != nil {
		e.bus.Publish(RequestEvent{Request: req, Eligible: len(eligible)})
		e.bus.Publish(DecisionEvent{
			RequestID:   req.ID,
			Selected:    len(part.Selected),
			NotSelected: len(part.NotSelected),
		})
	}
	e.log.Infof("request %s: %d eligible, %d selected, %d not selected",
		req.ID, len(eligible), len(part.Selected), len(part.NotSelected))

	res := Result{
		RequestID:   req.ID,
		Eligible:    len(eligible),
		Selected:    part.Selected,
		NotSelected: part.NotSelected,
		Sent:        make(map[string]bool),
		Errors:      make(map[string]error),
	}
	recs := e.notifySelected(ctx, &res, hospital, req)
	if err := e.sink.RecordNotificationResult(recs); err != nil {
		e.log.Errorf("metrics error: %v", err)
	}
	if res.PartialFailure() {
		e.log.Warnf("request %s: %d of %d notification sends failed",
			req.ID, len(res.Errors), len(part.Selected))
	}
	return res, nil
}

// notifySelected fans notifications out to the selected donors. Sends to
// distinct donors are independent and run concurrently; each is bounded by
// the engine's send timeout so a hung transport cannot stall the batch.
func (e *Engine) notifySelected(ctx context.Context, res *Result, hospital model.Hospital, req model.BloodRequest) []metrics.NotificationResult {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		recs    []metrics.NotificationResult
		sentCnt int
	)
	urgency := req.Urgency.String()
	update := func(rd RankedDonor, err error, dur time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		id := rd.Donor.ID
		if err != nil {
			res.Errors[id] = err
			transportFailure.Inc()
		} else {
			res.Sent[id] = true
			transportSuccess.Inc()
			sentCnt++
		}
		donorsNotified.WithLabelValues(urgency).Inc()
		sendLatency.WithLabelValues(urgency).Observe(dur.Seconds())
		if e.bus != nil {
			e.bus.Publish(SendEvent{
				RequestID: req.ID,
				DonorID:   id,
				Sent:      err == nil,
				Err:       err,
				Latency:   dur,
			})
		}
		recs = append(recs, metrics.NotificationResult{
			RequestID:  req.ID,
			DonorID:    id,
			BloodType:  req.BloodType,
			Urgency:    req.Urgency,
			DistanceKM: rd.DistanceKM,
			Sent:       err == nil,
			Latency:    dur,
			Time:       e.clk.Now(),
		})
	}

	// Split out opted-out donors before spawning sends so the shared slices
	// are only touched under the mutex once goroutines are running.
	var toSend []RankedDonor
	for _, rd := range res.Selected {
		if !rd.Donor.Notify {
			res.Skipped = append(res.Skipped, rd.Donor.ID)
			recs = append(recs, metrics.NotificationResult{
				RequestID:  req.ID,
				DonorID:    rd.Donor.ID,
				BloodType:  req.BloodType,
				Urgency:    req.Urgency,
				DistanceKM: rd.DistanceKM,
				Skipped:    true,
				Time:       e.clk.Now(),
			})
			continue
		}
		toSend = append(toSend, rd)
	}
	for _, rd := range toSend {
		wg.Add(1)
		go func(rd RankedDonor) {
			defer wg.Done()
			msg := BuildMessage(hospital, req, rd.DistanceKM)
			sendCtx, cancel := context.WithTimeout(ctx, e.sendTimeout)
			defer cancel()
			start := time.Now()
			err := e.transport.Send(sendCtx, rd.Donor.Phone, msg)
			update(rd, err, time.Since(start))
		}(rd)
	}
	wg.Wait()
	if len(toSend) > 0 {
		deliveryRate.WithLabelValues(urgency).Set(float64(sentCnt) / float64(len(toSend)))
	}
	return recs
}
