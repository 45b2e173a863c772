package tlc

import (
	"fmt"
	"strings"
)

// Direction identifies the side of the intersection an approach faces
type Direction uint8

const (
	None  Direction = 0x00
	North Direction = 0x01
	East  Direction = 0x02
	South Direction = 0x03
	West  Direction = 0x04
)

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return "none"
	}
}

// Orientation selects the direction pair handled by the controller
type Orientation int

const (
	NorthSouth Orientation = iota
	EastWest
)

func (o Orientation) String() string {
	if o == EastWest {
		return "east-west"
	}
	return "north-south"
}

// Directions returns the directions of approach 0 and approach 1
func (o Orientation) Directions() (Direction, Direction) {
	if o == EastWest {
		return East, West
	}
	return North, South
}

// ParseOrientation accepts "north-south", "ns", "east-west" or "ew"
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north-south", "north_south", "northsouth", "ns":
		return NorthSouth, nil
	case "east-west", "east_west", "eastwest", "ew":
		return EastWest, nil
	default:
		return NorthSouth, fmt.Errorf("unknown orientation %q", s)
	}
}

// Pin is a hardware channel number as understood by the driver
type Pin int

// Approach is the static wiring of one side of the intersection. It does not
// change after startup.
type Approach struct {
	Direction Direction
	Lamps     [3]Pin // indexed by Phase
	Buttons   [2]Pin
	Buzzer    Pin
	Walk      Pin
}

// Lamp returns the pin driving the lamp for phase p
func (a Approach) Lamp(p Phase) Pin {
	return a.Lamps[p]
}

func (a Approach) String() string {
	return a.Direction.String()
}

// InitialPhase returns the phase the intersection starts in: GREEN when
// approach 0 faces north, RED otherwise.
func InitialPhase(approaches [2]Approach) Phase {
	if approaches[0].Direction == North {
		return Green
	}
	return Red
}

func validateApproaches(approaches [2]Approach) error {
	for i, a := range approaches {
		if a.Direction == None || a.Direction > West {
			return NewConfigurationError("Approach", fmt.Sprintf("approach %d has no direction", i))
		}
	}
	if approaches[0].Direction == approaches[1].Direction {
		return NewConfigurationError("Approach", "both approaches face "+approaches[0].Direction.String())
	}
	return nil
}
