// Package hal is the boundary to the signal hardware: lamps, pedestrian
// buttons, buzzers, walk indicators and the density sensor.
package hal

import "github.com/anggasct/tlc"

// DensityMax is the largest raw value a 12-bit density sensor reports
const DensityMax = 4095

// Driver drives the outputs and samples the inputs of the approaches. The
// controller assumes reads always succeed; writes are fire and forget.
type Driver interface {
	// SetLamp switches the lamp for the given phase on one approach
	SetLamp(a tlc.Approach, lamp tlc.Phase, on bool)

	// Pressed reports whether either pedestrian button of the approach is down
	Pressed(a tlc.Approach) bool

	// SetBuzzer drives the accessibility buzzer; zero silences it
	SetBuzzer(a tlc.Approach, intensity uint8)

	// SetWalk switches the walk indicator
	SetWalk(a tlc.Approach, on bool)
}

// DensitySensor samples the traffic density input
type DensitySensor interface {
	ReadDensity() uint16
}

// ShowPhase lights exactly the lamp for phase p on approach a
func ShowPhase(d Driver, a tlc.Approach, p tlc.Phase) {
	for _, lamp := range tlc.Phases() {
		d.SetLamp(a, lamp, lamp == p)
	}
}
