package hal

import (
	"fmt"

	"github.com/anggasct/tlc"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// BuzzerFrequency is the PWM carrier used to drive the buzzers
const BuzzerFrequency = 2 * physic.KiloHertz

// Periph drives the approaches through periph.io GPIO. Pins are addressed by
// their GPIO numbers. Buzzer intensity is rendered as PWM duty.
type Periph struct {
	logger *zap.Logger
	pins   map[tlc.Pin]gpio.PinIO
}

var _ Driver = (*Periph)(nil)

// NewPeriph initialises the host and configures every pin of both approaches.
// Lamps, walk indicators and buzzers start low; buttons are pulled down.
func NewPeriph(approaches [2]tlc.Approach, logger *zap.Logger) (*Periph, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	return newPeriph(approaches, logger)
}

// newPeriph configures pins already present in gpioreg
func newPeriph(approaches [2]tlc.Approach, logger *zap.Logger) (*Periph, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Periph{
		logger: logger,
		pins:   make(map[tlc.Pin]gpio.PinIO),
	}

	for _, a := range approaches {
		outputs := append(a.Lamps[:], a.Walk, a.Buzzer)
		for _, n := range outputs {
			pin, err := p.lookup(n)
			if err != nil {
				return nil, err
			}
			if err := pin.Out(gpio.Low); err != nil {
				return nil, fmt.Errorf("configure %s as output: %w", pin, err)
			}
		}
		for _, n := range a.Buttons {
			pin, err := p.lookup(n)
			if err != nil {
				return nil, err
			}
			if err := pin.In(gpio.PullDown, gpio.NoEdge); err != nil {
				return nil, fmt.Errorf("configure %s as input: %w", pin, err)
			}
		}
	}

	return p, nil
}

func (p *Periph) lookup(n tlc.Pin) (gpio.PinIO, error) {
	if pin, ok := p.pins[n]; ok {
		return pin, nil
	}
	pin := gpioreg.ByName(fmt.Sprintf("GPIO%d", n))
	if pin == nil {
		return nil, fmt.Errorf("gpio %d not found", n)
	}
	p.pins[n] = pin
	return pin, nil
}

func (p *Periph) out(n tlc.Pin, on bool) {
	pin, ok := p.pins[n]
	if !ok {
		return
	}
	level := gpio.Low
	if on {
		level = gpio.High
	}
	if err := pin.Out(level); err != nil {
		p.logger.Warn("gpio write failed", zap.Int("pin", int(n)), zap.Error(err))
	}
}

// SetLamp implements Driver
func (p *Periph) SetLamp(a tlc.Approach, lamp tlc.Phase, on bool) {
	if lamp.Valid() {
		p.out(a.Lamp(lamp), on)
	}
}

// Pressed implements Driver
func (p *Periph) Pressed(a tlc.Approach) bool {
	for _, n := range a.Buttons {
		if pin, ok := p.pins[n]; ok && pin.Read() == gpio.High {
			return true
		}
	}
	return false
}

// SetBuzzer implements Driver
func (p *Periph) SetBuzzer(a tlc.Approach, intensity uint8) {
	pin, ok := p.pins[a.Buzzer]
	if !ok {
		return
	}
	if intensity == 0 {
		p.out(a.Buzzer, false)
		return
	}
	duty := gpio.Duty(intensity) * (gpio.DutyMax / 255)
	if err := pin.PWM(duty, BuzzerFrequency); err != nil {
		// not every pin can do PWM; fall back to a plain tone gate
		p.logger.Debug("buzzer pwm unavailable", zap.Int("pin", int(a.Buzzer)), zap.Error(err))
		p.out(a.Buzzer, true)
	}
}

// SetWalk implements Driver
func (p *Periph) SetWalk(a tlc.Approach, on bool) {
	p.out(a.Walk, on)
}
