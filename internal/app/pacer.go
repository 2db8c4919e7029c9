package app

import (
	"context"
	"time"
)

// Pacer inserts the mandatory wait between consecutive outbound sends so the
// gateway's rate limits are respected. Implementations must return early
// when the context is canceled so a shutting-down dispatch can drain.
type Pacer interface {
	Wait(ctx context.Context)
}

// FixedDelayPacer waits a constant duration between sends.
type FixedDelayPacer struct {
	Delay time.Duration
}

func NewFixedDelayPacer(delay time.Duration) *FixedDelayPacer {
	return &FixedDelayPacer{Delay: delay}
}

func (p *FixedDelayPacer) Wait(ctx context.Context) {
	if p.Delay <= 0 {
		return
	}
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
