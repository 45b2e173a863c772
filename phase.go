package tlc

import (
	"fmt"
	"strings"
)

// Phase is the light colour shown by both approaches at the same time.
type Phase int

const (
	Green Phase = iota
	Yellow
	Red
)

var phaseNames = [...]string{"GREEN", "YELLOW", "RED"}

// Phases returns every phase in cycle order
func Phases() []Phase {
	return []Phase{Green, Yellow, Red}
}

func (p Phase) String() string {
	if p.Valid() {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Valid reports whether p is one of Green, Yellow or Red
func (p Phase) Valid() bool {
	return p >= Green && p <= Red
}

// Next returns the phase that follows p in the normal cycle
func (p Phase) Next() Phase {
	return (p + 1) % 3
}

// ParsePhase converts a phase name, case-insensitively, into a Phase
func ParsePhase(s string) (Phase, error) {
	for i, name := range phaseNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Phase(i), nil
		}
	}
	return Green, fmt.Errorf("unknown phase %q", s)
}
