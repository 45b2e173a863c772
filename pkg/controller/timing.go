package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/anggasct/tlc"
	"go.uber.org/multierr"
)

// Timings holds every delay the tasks use. The quantum is the polling
// resolution of the whole controller; tests run with scaled timings.
type Timings struct {
	Quantum      time.Duration `mapstructure:"quantum"`
	ArmDelay     time.Duration `mapstructure:"armDelay"`
	YellowHold   time.Duration `mapstructure:"yellowHold"`
	YellowBlink  time.Duration `mapstructure:"yellowBlink"`
	YellowBlinks int           `mapstructure:"yellowBlinks"`
	HoldWindow   time.Duration `mapstructure:"holdWindow"`
	HaltCooldown time.Duration `mapstructure:"haltCooldown"`
	WalkTick     time.Duration `mapstructure:"walkTick"`
	WarnBlink    time.Duration `mapstructure:"warnBlink"`
	WarnBlinks   int           `mapstructure:"warnBlinks"`
	BuzzerPulse  time.Duration `mapstructure:"buzzerPulse"`
}

// DefaultTimings returns the production timings
func DefaultTimings() Timings {
	return Timings{
		Quantum:      100 * time.Millisecond,
		ArmDelay:     3 * time.Second,
		YellowHold:   5 * time.Second,
		YellowBlink:  250 * time.Millisecond,
		YellowBlinks: 10,
		HoldWindow:   2 * time.Second,
		HaltCooldown: time.Second,
		WalkTick:     500 * time.Millisecond,
		WarnBlink:    100 * time.Millisecond,
		WarnBlinks:   4,
		BuzzerPulse:  100 * time.Millisecond,
	}
}

// Scale multiplies every duration by f, leaving the blink counts alone
func (t Timings) Scale(f float64) Timings {
	scale := func(d time.Duration) time.Duration {
		return time.Duration(float64(d) * f)
	}
	t.Quantum = scale(t.Quantum)
	t.ArmDelay = scale(t.ArmDelay)
	t.YellowHold = scale(t.YellowHold)
	t.YellowBlink = scale(t.YellowBlink)
	t.HoldWindow = scale(t.HoldWindow)
	t.HaltCooldown = scale(t.HaltCooldown)
	t.WalkTick = scale(t.WalkTick)
	t.WarnBlink = scale(t.WarnBlink)
	t.BuzzerPulse = scale(t.BuzzerPulse)
	return t
}

// Validate checks that every delay is positive
func (t Timings) Validate() error {
	var err error
	for name, d := range map[string]time.Duration{
		"quantum":      t.Quantum,
		"armDelay":     t.ArmDelay,
		"yellowHold":   t.YellowHold,
		"yellowBlink":  t.YellowBlink,
		"holdWindow":   t.HoldWindow,
		"haltCooldown": t.HaltCooldown,
		"walkTick":     t.WalkTick,
		"warnBlink":    t.WarnBlink,
		"buzzerPulse":  t.BuzzerPulse,
	} {
		if d <= 0 {
			err = multierr.Append(err, tlc.NewConfigurationError("Timings", fmt.Sprintf("%s must be positive, got %s", name, d)))
		}
	}
	if t.YellowBlinks < 1 {
		err = multierr.Append(err, tlc.NewConfigurationError("Timings", "yellowBlinks must be at least 1"))
	}
	if t.WarnBlinks < 1 {
		err = multierr.Append(err, tlc.NewConfigurationError("Timings", "warnBlinks must be at least 1"))
	}
	return err
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
