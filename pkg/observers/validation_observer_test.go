package observers

import (
	"testing"

	"github.com/anggasct/tlc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationObserverCleanCycle(t *testing.T) {
	v := NewValidationObserver(tlc.DefaultDefinition())
	i, err := tlc.NewIntersection(tlc.NorthSouthApproaches(), tlc.WithObserver(v))
	require.NoError(t, err)

	tlc.RunCycle(t, i)
	i.ToggleHalt()
	i.ToggleHalt()

	assert.False(t, v.HasViolations(), v.GetViolations())
	for _, p := range tlc.Phases() {
		assert.True(t, v.Visited(p), p.String())
	}
}

func TestValidationObserverFlags(t *testing.T) {
	v := NewValidationObserver(tlc.DefaultDefinition())

	v.OnTransition(tlc.Yellow, tlc.Green, tlc.NewEvent("skip", tlc.Ticket{}))
	v.OnPedestrianTime(-1)
	v.OnPedestrianTime(0)

	violations := v.GetViolations()
	require.Len(t, violations, 2)
	assert.Contains(t, violations[0], "YELLOW to GREEN")
	assert.Contains(t, violations[1], "negative")

	v.AddAllowedTransition(tlc.Yellow, tlc.Green)
	v.Reset()
	v.OnTransition(tlc.Yellow, tlc.Green, tlc.NewEvent("skip", tlc.Ticket{}))
	assert.False(t, v.HasViolations())
}
