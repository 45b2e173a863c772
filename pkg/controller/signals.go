package controller

import (
	"context"

	"github.com/anggasct/tlc"
	"github.com/anggasct/tlc/pkg/hal"
)

// signals drives the compound outputs of both approaches
type signals struct {
	driver     hal.Driver
	approaches [2]tlc.Approach
	timings    Timings
}

func (s signals) show(p tlc.Phase) {
	for _, a := range s.approaches {
		hal.ShowPhase(s.driver, a, p)
	}
}

func (s signals) lamp(p tlc.Phase, on bool) {
	for _, a := range s.approaches {
		s.driver.SetLamp(a, p, on)
	}
}

// blinkYellow blinks the yellow lamps with green and red dark. It stops early
// when still reports false.
func (s signals) blinkYellow(ctx context.Context, still func() bool) error {
	s.lamp(tlc.Green, false)
	s.lamp(tlc.Red, false)

	for i := 0; i < s.timings.YellowBlinks; i++ {
		s.lamp(tlc.Yellow, true)
		if err := sleep(ctx, s.timings.YellowBlink); err != nil {
			return err
		}
		s.lamp(tlc.Yellow, false)
		if err := sleep(ctx, s.timings.YellowBlink); err != nil {
			return err
		}
		if !still() {
			return nil
		}
	}
	return nil
}

func (s signals) walk(on bool) {
	for _, a := range s.approaches {
		s.driver.SetWalk(a, on)
	}
}

func (s signals) warnWalk(ctx context.Context) error {
	for i := 0; i < s.timings.WarnBlinks; i++ {
		s.walk(true)
		if err := sleep(ctx, s.timings.WarnBlink); err != nil {
			return err
		}
		s.walk(false)
		if err := sleep(ctx, s.timings.WarnBlink); err != nil {
			return err
		}
	}
	return nil
}

// pulseBuzzers sounds each approach's buzzer in turn
func (s signals) pulseBuzzers(ctx context.Context, intensity uint8) error {
	for _, a := range s.approaches {
		s.driver.SetBuzzer(a, intensity)
		err := sleep(ctx, s.timings.BuzzerPulse)
		s.driver.SetBuzzer(a, 0)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s signals) dark() {
	for _, a := range s.approaches {
		for _, p := range tlc.Phases() {
			s.driver.SetLamp(a, p, false)
		}
		s.driver.SetWalk(a, false)
		s.driver.SetBuzzer(a, 0)
	}
}
