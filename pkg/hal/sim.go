package hal

import (
	"sync"

	"github.com/anggasct/tlc"
)

type simApproach struct {
	lamps        [3]bool
	pressed      bool
	buzzer       uint8
	buzzerPulses int
	walk         bool
	walkEdges    int
}

// Sim is an in-memory Driver and DensitySensor. Buttons and the density input
// are set by the caller; outputs are recorded for inspection.
type Sim struct {
	mu         sync.Mutex
	approaches map[tlc.Direction]*simApproach
	density    uint16
}

var (
	_ Driver        = (*Sim)(nil)
	_ DensitySensor = (*Sim)(nil)
)

// NewSim creates a simulated board with every output off
func NewSim() *Sim {
	return &Sim{approaches: make(map[tlc.Direction]*simApproach)}
}

func (s *Sim) get(d tlc.Direction) *simApproach {
	a, ok := s.approaches[d]
	if !ok {
		a = &simApproach{}
		s.approaches[d] = a
	}
	return a
}

// SetLamp implements Driver
func (s *Sim) SetLamp(a tlc.Approach, lamp tlc.Phase, on bool) {
	if !lamp.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(a.Direction).lamps[lamp] = on
}

// Pressed implements Driver
func (s *Sim) Pressed(a tlc.Approach) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(a.Direction).pressed
}

// SetBuzzer implements Driver
func (s *Sim) SetBuzzer(a tlc.Approach, intensity uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.get(a.Direction)
	if st.buzzer == 0 && intensity > 0 {
		st.buzzerPulses++
	}
	st.buzzer = intensity
}

// SetWalk implements Driver
func (s *Sim) SetWalk(a tlc.Approach, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.get(a.Direction)
	if !st.walk && on {
		st.walkEdges++
	}
	st.walk = on
}

// ReadDensity implements DensitySensor
func (s *Sim) ReadDensity() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.density
}

// Press holds the buttons of the given directions down
func (s *Sim) Press(dirs ...tlc.Direction) {
	s.setPressed(true, dirs)
}

// Release lets go of the buttons of the given directions
func (s *Sim) Release(dirs ...tlc.Direction) {
	s.setPressed(false, dirs)
}

func (s *Sim) setPressed(pressed bool, dirs []tlc.Direction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range dirs {
		s.get(d).pressed = pressed
	}
}

// SetDensity sets the raw value returned by ReadDensity
func (s *Sim) SetDensity(v uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.density = v
}

// Lamp reports whether the lamp for phase p is on
func (s *Sim) Lamp(d tlc.Direction, p tlc.Phase) bool {
	if !p.Valid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(d).lamps[p]
}

// Lit returns the single lamp that is on, or false when zero or several are
func (s *Sim) Lit(d tlc.Direction) (tlc.Phase, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.get(d)

	lit, n := tlc.Green, 0
	for _, p := range tlc.Phases() {
		if st.lamps[p] {
			lit = p
			n++
		}
	}
	return lit, n == 1
}

// Walk reports whether the walk indicator is on
func (s *Sim) Walk(d tlc.Direction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(d).walk
}

// WalkEdges counts how often the walk indicator was switched on
func (s *Sim) WalkEdges(d tlc.Direction) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(d).walkEdges
}

// Buzzer returns the current buzzer intensity
func (s *Sim) Buzzer(d tlc.Direction) uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(d).buzzer
}

// BuzzerPulses counts how often the buzzer was switched on
func (s *Sim) BuzzerPulses(d tlc.Direction) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(d).buzzerPulses
}
