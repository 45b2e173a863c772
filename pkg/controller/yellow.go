package controller

import (
	"context"
	"errors"
	"time"

	"github.com/anggasct/tlc"
	"go.uber.org/zap"
)

// YellowStage receives timer expiries. It moves GREEN to YELLOW, holds YELLOW
// and then moves to RED and hands the walk permit to the countdown.
type YellowStage struct {
	isect   *tlc.Intersection
	wake    <-chan tlc.Ticket
	permit  *Permit
	timings Timings
	logger  *zap.Logger
}

// Run loops until ctx is done
func (y *YellowStage) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-y.wake:
			if err := y.advance(ctx, t); err != nil {
				return err
			}
		}
	}
}

func (y *YellowStage) advance(ctx context.Context, t tlc.Ticket) error {
	logger := y.logger.With(zap.Uint64("cycle", t.Cycle))

	if res := y.isect.ExpireTimer(t); !res.Success() {
		logger.Debug("timer expiry rejected", zap.String("reason", res.RejectionReason))
		return nil
	}

	err := holdWhileCurrent(ctx, y.isect, t, y.timings.YellowHold, y.timings.Quantum)
	if errors.Is(err, tlc.ErrStaleTicket) {
		logger.Info("yellow abandoned")
		return nil
	}
	if err != nil {
		return err
	}

	if res := y.isect.ElapseYellow(t); !res.Success() {
		logger.Debug("yellow completion rejected", zap.String("reason", res.RejectionReason))
		return nil
	}
	if !y.permit.Release(t) {
		logger.Warn("walk permit already pending")
	}
	return nil
}

// holdWhileCurrent waits for d in quantum steps. It returns ErrStaleTicket as
// soon as the cycle of t has ended.
func holdWhileCurrent(ctx context.Context, isect *tlc.Intersection, t tlc.Ticket, d, quantum time.Duration) error {
	deadline := time.Now().Add(d)
	for {
		if isect.Ticket() != t {
			return tlc.ErrStaleTicket
		}
		left := time.Until(deadline)
		if left <= 0 {
			return nil
		}
		if left > quantum {
			left = quantum
		}
		if err := sleep(ctx, left); err != nil {
			return err
		}
	}
}
