package camera

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-ar/engine/ar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSunny16Exposure(t *testing.T) {
	ev := EV100(16, 1.0/125.0, 100)
	assert.InDelta(t, 15, ev, 0.05)
	assert.InDelta(t, 1.0/15.0, ExposureFactor(ev), 0.001)

	c := NewCamera()
	assert.InDelta(t, ev, c.EV100(), 1e-6)
	assert.InDelta(t, ExposureFactor(ev), c.ExposureFactor(), 1e-6)
}

func TestExposureHelpers(t *testing.T) {
	assert.InDelta(t, 2.5*1024, Illuminance(10), 1e-3)
	assert.InDelta(t, 128, Luminance(10), 1e-3)

	// Doubling the sensitivity drops EV100 by one stop.
	assert.InDelta(t, EV100(8, 1.0/60.0, 100)-1, EV100(8, 1.0/60.0, 200), 1e-4)
}

func TestExposureFactorAtZeroEV(t *testing.T) {
	ev := EV100(1, 1, 100)
	require.Equal(t, float32(0), ev)
	assert.True(t, math.IsInf(float64(ExposureFactor(ev)), 1))
}

func TestCameraOptions(t *testing.T) {
	c := NewCamera(
		WithName("render"),
		WithAperture(1.8),
		WithShutterSpeed(1.0/60.0),
		WithSensitivity(400),
	)
	assert.Equal(t, "render", c.Name())
	assert.Equal(t, float32(1.8), c.Aperture())
	assert.Equal(t, float32(1.0/60.0), c.ShutterSpeed())
	assert.Equal(t, float32(400), c.Sensitivity())

	c.SetExposureSettings(ar.ExposureSettings{Aperture: 16, ShutterSpeed: 1.0 / 125.0, Sensitivity: 100})
	assert.InDelta(t, 15, c.EV100(), 0.05)

	a, b := NewCamera(), NewCamera()
	assert.NotEqual(t, a.Name(), b.Name())
}

func TestGPUExposureUniform(t *testing.T) {
	c := NewCamera(WithExposureSettings(ar.ExposureSettings{Aperture: 1, ShutterSpeed: 1, Sensitivity: 100}))
	u := NewGPUExposureUniform(c)
	assert.Equal(t, float32(0), u.EV100)
	assert.InDelta(t, 1/1.2, u.Exposure, 1e-6)
	assert.InDelta(t, 2.5, u.Illuminance, 1e-6)
	assert.InDelta(t, 0.125, u.Luminance, 1e-6)

	buf := u.Marshal()
	assert.Len(t, buf, u.Size())
	assert.Len(t, buf, 16)
	assert.Contains(t, GPUExposureUniformSource, "struct")
}
