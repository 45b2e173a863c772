package controller

import (
	"context"
	"errors"

	"github.com/anggasct/tlc"
	"github.com/anggasct/tlc/pkg/hal"
	"go.uber.org/zap"
)

// buttons samples the pedestrian buttons of both approaches
type buttons struct {
	driver     hal.Driver
	approaches [2]tlc.Approach
}

// sample reports whether any approach is pressed and whether both are
func (b buttons) sample() (pressed, both bool) {
	first := b.driver.Pressed(b.approaches[0])
	second := b.driver.Pressed(b.approaches[1])
	return first || second, first && second
}

// RequestHandler turns single-approach presses into crossing requests. The
// first press of a GREEN cycle arms the yellow timer; a press still held at
// the end of the hold window extends the crossing time once per cycle.
type RequestHandler struct {
	isect   *tlc.Intersection
	buttons buttons
	timer   *OneShot
	timings Timings
	logger  *zap.Logger
}

// Run loops until ctx is done
func (h *RequestHandler) Run(ctx context.Context) error {
	for {
		if err := h.poll(ctx); err != nil {
			return err
		}
	}
}

func (h *RequestHandler) poll(ctx context.Context) error {
	before := h.isect.Ticket()
	pressed, both := h.buttons.sample()
	if !pressed {
		h.isect.ButtonsReleased(before)
		return sleep(ctx, h.timings.Quantum)
	}
	// a dual press belongs to the override
	if both {
		return sleep(ctx, h.timings.Quantum)
	}

	snap := h.isect.Snapshot()
	// presses left over from a halt toggle wait for a full release
	if snap.Halted || snap.Suppressed {
		return sleep(ctx, h.timings.Quantum)
	}

	if snap.Phase == tlc.Green && !snap.Armed {
		if res := h.isect.RequestCrossing(); res.Success() {
			h.timer.Arm(h.timings.ArmDelay, res.Ticket)
			h.logger.Info("crossing requested", zap.Uint64("cycle", res.Ticket.Cycle))
		}
	}

	t, ok := h.isect.BeginHoldCheck()
	if !ok {
		return sleep(ctx, h.timings.Quantum)
	}
	if err := sleep(ctx, h.timings.HoldWindow); err != nil {
		return err
	}

	still, both := h.buttons.sample()
	extended, err := h.isect.ConfirmHold(t, still && !both)
	switch {
	case errors.Is(err, tlc.ErrStaleTicket):
		h.logger.Debug("hold window spanned end of cycle", zap.Uint64("cycle", t.Cycle))
	case err != nil:
		h.logger.Warn("hold check failed", zap.Error(err))
	case extended:
		h.logger.Info("crossing time extended", zap.Int("time", h.isect.Snapshot().PedestrianTime))
	}
	return nil
}

// OverrideHandler toggles the halt when both approaches press at once
type OverrideHandler struct {
	isect   *tlc.Intersection
	buttons buttons
	timer   *OneShot
	timings Timings
	logger  *zap.Logger
}

// Run loops until ctx is done
func (o *OverrideHandler) Run(ctx context.Context) error {
	for {
		if err := o.poll(ctx); err != nil {
			return err
		}
	}
}

func (o *OverrideHandler) poll(ctx context.Context) error {
	if _, both := o.buttons.sample(); !both {
		return sleep(ctx, o.timings.Quantum)
	}

	res := o.isect.ToggleHalt()
	if !res.Success() {
		o.logger.Warn("halt toggle rejected", zap.String("reason", res.RejectionReason))
		return sleep(ctx, o.timings.Quantum)
	}

	o.timer.Stop()
	if o.isect.Halted() {
		o.logger.Info("halt engaged")
	} else {
		o.logger.Info("halt released")
	}
	return sleep(ctx, o.timings.HaltCooldown)
}
