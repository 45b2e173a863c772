// Package telemetry samples the traffic density input, maps it to a car count
// and reports it on the serial stream through a bounded queue.
package telemetry

import (
	"fmt"

	"github.com/anggasct/tlc"
	"go.uber.org/multierr"
)

// Mapping linearly maps raw density readings onto a car count
type Mapping struct {
	InMin  int `mapstructure:"inMin"`
	InMax  int `mapstructure:"inMax"`
	OutMin int `mapstructure:"outMin"`
	OutMax int `mapstructure:"outMax"`
}

// DefaultMapping maps the 12-bit input range onto 0..25 cars
func DefaultMapping() Mapping {
	return Mapping{InMin: 0, InMax: 4096, OutMin: 0, OutMax: 25}
}

// Validate checks the bounds
func (m Mapping) Validate() error {
	var err error
	if m.InMax == m.InMin {
		err = multierr.Append(err, tlc.NewConfigurationError("Mapping",
			fmt.Sprintf("input range is empty (%d..%d)", m.InMin, m.InMax)))
	}
	if m.OutMax < m.OutMin {
		err = multierr.Append(err, tlc.NewConfigurationError("Mapping",
			fmt.Sprintf("output range is inverted (%d..%d)", m.OutMin, m.OutMax)))
	}
	return err
}

// Apply maps x
func (m Mapping) Apply(x int) int {
	return Map(x, m.InMin, m.InMax, m.OutMin, m.OutMax)
}

// Heavy reports whether n cars is above half the output range
func (m Mapping) Heavy(n int) bool {
	return n > m.OutMax/2
}

// Map is the integer linear interpolation used for density readings. The
// result is truncated toward zero.
func Map(x, inMin, inMax, outMin, outMax int) int {
	return (x-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}
