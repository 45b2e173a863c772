package hal

import (
	"fmt"
	"testing"

	"github.com/anggasct/tlc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func registerFakePins(t *testing.T, approaches [2]tlc.Approach) map[tlc.Pin]*gpiotest.Pin {
	t.Helper()
	pins := make(map[tlc.Pin]*gpiotest.Pin)
	for _, a := range approaches {
		all := append(a.Lamps[:], a.Walk, a.Buzzer, a.Buttons[0], a.Buttons[1])
		for _, n := range all {
			name := fmt.Sprintf("GPIO%d", n)
			if existing := gpioreg.ByName(name); existing != nil {
				pins[n] = existing.(*gpiotest.Pin)
				continue
			}
			p := &gpiotest.Pin{N: name, Num: int(n)}
			require.NoError(t, gpioreg.Register(p))
			pins[n] = p
		}
	}
	return pins
}

func TestPeriphDriver(t *testing.T) {
	ns := tlc.NorthSouthApproaches()
	pins := registerFakePins(t, ns)

	d, err := newPeriph(ns, nil)
	require.NoError(t, err)

	d.SetLamp(ns[0], tlc.Green, true)
	assert.Equal(t, gpio.High, pins[16].Read())
	d.SetLamp(ns[0], tlc.Green, false)
	assert.Equal(t, gpio.Low, pins[16].Read())

	d.SetWalk(ns[1], true)
	assert.Equal(t, gpio.High, pins[33].Read())

	assert.False(t, d.Pressed(ns[0]))
	pins[15].Lock()
	pins[15].L = gpio.High
	pins[15].Unlock()
	assert.True(t, d.Pressed(ns[0]))
	assert.False(t, d.Pressed(ns[1]))

	d.SetBuzzer(ns[0], 255)
	pins[25].Lock()
	duty := pins[25].D
	pins[25].Unlock()
	assert.Equal(t, gpio.DutyMax/255*255, duty)

	d.SetBuzzer(ns[0], 0)
	assert.Equal(t, gpio.Low, pins[25].Read())
}
