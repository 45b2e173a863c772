package hal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestIIOSensor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in_voltage0_raw")
	require.NoError(t, os.WriteFile(path, []byte("2048\n"), 0o644))

	s, err := NewIIOSensor(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, uint16(2048), s.ReadDensity())

	testCases := map[string]uint16{
		"9000":  DensityMax,
		"-3":    0,
		"noise": 0,
	}
	for raw, expected := range testCases {
		require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))
		assert.Equal(t, expected, s.ReadDensity(), raw)
	}

	require.NoError(t, os.Remove(path))
	assert.Zero(t, s.ReadDensity())
}

func TestIIOSensorMissing(t *testing.T) {
	_, err := NewIIOSensor(filepath.Join(t.TempDir(), "absent"), zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestIIOSensorNilLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in_voltage0_raw")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	s, err := NewIIOSensor(path, nil)
	require.NoError(t, err)
	assert.NotPanics(t, func() { assert.Zero(t, s.ReadDensity()) })

	require.NoError(t, os.Remove(path))
	assert.NotPanics(t, func() { assert.Zero(t, s.ReadDensity()) })
}
