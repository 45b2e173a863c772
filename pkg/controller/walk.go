package controller

import (
	"context"
	"errors"

	"github.com/anggasct/tlc"
	"go.uber.org/zap"
)

// Walk runs the pedestrian countdown once per walk permit. The walk
// indicators stay solid while more than WarnBelow units remain, then blink
// with an audible cue when the press-and-hold extension was granted.
type Walk struct {
	isect     *tlc.Intersection
	sig       signals
	permit    *Permit
	warnBelow int
	intensity uint8
	logger    *zap.Logger
}

// Run loops until ctx is done
func (w *Walk) Run(ctx context.Context) error {
	defer w.sig.walk(false)

	for {
		t, err := w.permit.Acquire(ctx)
		if err != nil {
			return err
		}
		if err := w.cross(ctx, t); err != nil {
			return err
		}
	}
}

func (w *Walk) cross(ctx context.Context, t tlc.Ticket) error {
	logger := w.logger.With(zap.Uint64("cycle", t.Cycle))
	logger.Info("walk started", zap.Int("time", w.isect.Snapshot().PedestrianTime))

	for {
		remaining, ok, err := w.isect.Countdown(t)
		if errors.Is(err, tlc.ErrStaleTicket) || errors.Is(err, tlc.ErrHalted) {
			w.sig.walk(false)
			logger.Info("walk aborted", zap.Error(err))
			return nil
		}
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		if remaining > w.warnBelow {
			w.sig.walk(true)
		} else {
			if w.isect.HoldLatched() {
				if err := w.sig.pulseBuzzers(ctx, w.intensity); err != nil {
					return err
				}
			}
			if err := w.sig.warnWalk(ctx); err != nil {
				return err
			}
		}

		if err := sleep(ctx, w.sig.timings.WalkTick); err != nil {
			return err
		}
	}

	w.sig.walk(false)
	if res := w.isect.CompleteWalk(t); !res.Success() {
		logger.Debug("walk completion rejected", zap.String("reason", res.RejectionReason))
		return nil
	}
	logger.Info("walk complete")
	return nil
}
