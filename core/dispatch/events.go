package dispatch

import (
	"time"

	"raktsetu/core/model"
)

// RequestEvent is published on the bus when a request enters the pipeline.
type RequestEvent struct {
	Request  model.BloodRequest
	Eligible int
}

// DecisionEvent is published after the decision set for a request has been
// persisted.
type DecisionEvent struct {
	RequestID   string
	Selected    int
	NotSelected int
}

// SendEvent captures the outcome of one notification send.
type SendEvent struct {
	RequestID string
	DonorID   string
	Sent      bool
	Err       error
	Latency   time.Duration
}
