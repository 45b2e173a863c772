package controller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestDefaultTimingsValid(t *testing.T) {
	require.NoError(t, DefaultTimings().Validate())
	require.NoError(t, DefaultConfig().Validate())
}

func TestTimingsScale(t *testing.T) {
	d := DefaultTimings()
	s := d.Scale(0.1)

	assert.Equal(t, 300*time.Millisecond, s.ArmDelay)
	assert.Equal(t, 500*time.Millisecond, s.YellowHold)
	assert.Equal(t, 10*time.Millisecond, s.Quantum)
	assert.Equal(t, d.YellowBlinks, s.YellowBlinks)
	assert.Equal(t, d.WarnBlinks, s.WarnBlinks)

	// the blink pattern still covers the yellow hold
	assert.Equal(t, s.YellowHold, time.Duration(2*s.YellowBlinks)*s.YellowBlink)
}

func TestTimingsValidate(t *testing.T) {
	tm := DefaultTimings()
	tm.Quantum = 0
	tm.WalkTick = -time.Second
	tm.WarnBlinks = 0

	err := tm.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WarnBelow = -1
	cfg.BuzzerIntensity = 0

	assert.Len(t, multierr.Errors(cfg.Validate()), 2)
}

func TestSleep(t *testing.T) {
	assert.NoError(t, sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, sleep(ctx, 0), context.Canceled)
	assert.NoError(t, sleep(context.Background(), 0))
}
