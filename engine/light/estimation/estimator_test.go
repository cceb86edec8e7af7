package estimation

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-ar/common"
	"github.com/Carmen-Shannon/oxy-ar/engine/ar"
	"github.com/Carmen-Shannon/oxy-ar/engine/ar/artest"
	"github.com/Carmen-Shannon/oxy-ar/engine/camera"
	"github.com/Carmen-Shannon/oxy-ar/engine/light"
	"github.com/Carmen-Shannon/oxy-ar/engine/renderer"
	"github.com/Carmen-Shannon/oxy-ar/engine/renderer/renderertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ones(n int) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = 1
	}
	return s
}

func hdrEstimate(ts int64) *artest.LightEstimate {
	faces := markedFaces(2, 2)
	return &artest.LightEstimate{
		EstimateState:      ar.LightEstimateStateValid,
		EstimateTimestamp:  ts,
		SphericalHarmonics: ones(light.SphericalHarmonicsLen),
		Direction:          &[3]float32{0, 0.6, 0.8},
		Intensity:          &[3]float32{2, 1, 0.5},
		Faces:              faces,
	}
}

func ambientEstimate(ts int64) *artest.LightEstimate {
	return &artest.LightEstimate{
		EstimateState:     ar.LightEstimateStateValid,
		EstimateTimestamp: ts,
		Correction:        [4]float32{1, 0.5, 0.25, 1},
	}
}

func frameOf(est ar.LightEstimate) ar.Frame {
	return &artest.Frame{FrameTimestamp: est.Timestamp(), Estimate: est}
}

func baseSphericalHarmonics() [light.SphericalHarmonicsLen]float32 {
	var sh [light.SphericalHarmonicsLen]float32
	for i := range sh {
		sh[i] = float32(i+1) / 10
	}
	return sh
}

type swapFilter struct {
	out   renderer.Cubemap
	err   error
	calls int
}

func (f *swapFilter) Filter(src renderer.Cubemap) (renderer.Cubemap, error) {
	f.calls++
	return f.out, f.err
}

func TestUpdateDeduplicatesTimestamps(t *testing.T) {
	e := NewEstimator()
	session := artest.NewSession(ar.LightEstimationModeAmbientIntensity)
	frame := frameOf(ambientEstimate(10))

	est, err := e.Update(session, frame, nil)
	require.NoError(t, err)
	require.NotNil(t, est)

	est, err = e.Update(session, frame, nil)
	require.NoError(t, err)
	assert.Nil(t, est)

	est, err = e.Update(session, frameOf(ambientEstimate(11)), nil)
	require.NoError(t, err)
	assert.NotNil(t, est)

	assert.Equal(t, Stats{Updates: 2, Skipped: 1}, e.Stats())
}

func TestUpdateIgnoresInvalidEstimates(t *testing.T) {
	e := NewEstimator()
	session := artest.NewSession(ar.LightEstimationModeAmbientIntensity)

	invalid := ambientEstimate(5)
	invalid.EstimateState = ar.LightEstimateStateNotValid
	est, err := e.Update(session, frameOf(invalid), nil)
	require.NoError(t, err)
	assert.Nil(t, est)

	// The invalid estimate did not consume its timestamp.
	est, err = e.Update(session, frameOf(ambientEstimate(5)), nil)
	require.NoError(t, err)
	assert.NotNil(t, est)

	est, err = e.Update(session, &artest.Frame{}, nil)
	require.NoError(t, err)
	assert.Nil(t, est)
}

func TestUpdateDisabled(t *testing.T) {
	backend := renderertest.New()
	e := NewEstimator(WithTextureBackend(backend))

	est, err := e.Update(artest.NewSession(ar.LightEstimationModeDisabled), frameOf(hdrEstimate(1)), nil)
	require.NoError(t, err)
	assert.Nil(t, est)

	unwired := artest.NewSession(ar.LightEstimationModeEnvironmentalHDR)
	unwired.Unwired = true
	est, err = e.Update(unwired, frameOf(hdrEstimate(2)), nil)
	require.NoError(t, err)
	assert.Nil(t, est)

	est, err = e.Update(nil, frameOf(hdrEstimate(3)), nil)
	require.NoError(t, err)
	assert.Nil(t, est)

	e.SetEnabled(false)
	est, err = e.Update(artest.NewSession(ar.LightEstimationModeEnvironmentalHDR), frameOf(hdrEstimate(4)), nil)
	require.NoError(t, err)
	assert.Nil(t, est)

	assert.Empty(t, backend.Created)
	assert.Equal(t, 4, e.Stats().Skipped)
}

func TestUpdateAmbientIntensity(t *testing.T) {
	base := &renderertest.Cubemap{Name: "base", W: 16, H: 16}
	e := NewEstimator()
	e.SetBaseIndirectLight(1000, base)
	e.SetBaseSphericalHarmonics(baseSphericalHarmonics())

	res, err := e.Update(artest.NewSession(ar.LightEstimationModeAmbientIntensity), frameOf(ambientEstimate(1)), nil)
	require.NoError(t, err)
	ambient, ok := res.(*AmbientEstimation)
	require.True(t, ok)
	assert.Equal(t, ar.LightEstimationModeAmbientIntensity, ambient.Mode())

	color, intensity := DecodeColorCorrection(ambientEstimate(1).Correction)
	assert.Equal(t, color, ambient.ColorFactor)
	assert.Equal(t, intensity, ambient.IntensityFactor)

	env := ambient.Environment()
	require.True(t, env.HasSphericalHarmonics)
	sh := baseSphericalHarmonics()
	for c := 0; c < 3; c++ {
		assert.InDelta(t, sh[c]*color[c], env.SphericalHarmonics[c], 1e-6)
	}
	assert.Equal(t, sh[3:], env.SphericalHarmonics[3:])

	assert.Same(t, base, env.Cubemap)
	require.NotNil(t, env.IndirectLight)
	assert.InDelta(t, 1000*intensity, env.IndirectLight.Intensity(), 1e-3)
	assert.Equal(t, renderer.Cubemap(base), env.IndirectLight.Reflections())
}

func TestUpdateAmbientWithoutBaseSphericalHarmonics(t *testing.T) {
	e := NewEstimator()
	res, err := e.Update(artest.NewSession(ar.LightEstimationModeAmbientIntensity), frameOf(ambientEstimate(1)), nil)
	require.NoError(t, err)

	env := res.Environment()
	assert.False(t, env.HasSphericalHarmonics)
	_, ok := env.IndirectLight.Irradiance()
	assert.False(t, ok)
}

func TestUpdateEnvironmentalHDR(t *testing.T) {
	backend := renderertest.New()
	e := NewEstimator(WithTextureBackend(backend))
	e.SetBaseIndirectLight(1200, nil)

	estimate := hdrEstimate(1)
	res, err := e.Update(artest.NewSession(ar.LightEstimationModeEnvironmentalHDR), frameOf(estimate), nil)
	require.NoError(t, err)
	hdr, ok := res.(*HDREstimation)
	require.True(t, ok)
	assert.Equal(t, ar.LightEstimationModeEnvironmentalHDR, hdr.Mode())

	require.True(t, hdr.HasDirection)
	assert.Equal(t, [3]float32{0, -0.6, -0.8}, hdr.Direction)

	exposure := camera.ExposureFactor(camera.EV100(16, 1.0/125.0, 100))
	require.True(t, hdr.HasMainLight)
	assert.InDelta(t, exposure, hdr.ColorFactor[0], 1e-6)
	assert.InDelta(t, 0.5*exposure, hdr.ColorFactor[1], 1e-6)
	assert.InDelta(t, 0.25*exposure, hdr.ColorFactor[2], 1e-6)
	assert.InDelta(t, 2*exposure, hdr.IntensityFactor, 1e-6)

	env := hdr.Environment()
	require.True(t, env.HasSphericalHarmonics)
	for band := 0; band < light.SphericalHarmonicsBands; band++ {
		assert.InDelta(t, SphericalHarmonicsFactors[band], env.SphericalHarmonics[band*3], 1e-6)
	}

	require.Len(t, backend.Created, 1)
	assert.Same(t, backend.Created[0], env.Cubemap)
	assert.Equal(t, 1, estimate.Acquisitions)
	for _, f := range estimate.Faces {
		assert.True(t, f.Released)
	}
	assert.InDelta(t, 1200*common.Average3([3]float32{1, 0.5, 0.25}), env.IndirectLight.Intensity(), 1e-3)
	assert.Equal(t, 1, e.Stats().CubemapRebuilds)
}

func TestUpdateEnvironmentalHDRUsesRenderCamera(t *testing.T) {
	e := NewEstimator()
	cam := camera.NewCamera(camera.WithExposureSettings(ar.ExposureSettings{Aperture: 2, ShutterSpeed: 1.0 / 50.0, Sensitivity: 100}))

	res, err := e.Update(artest.NewSession(ar.LightEstimationModeEnvironmentalHDR), frameOf(hdrEstimate(1)), cam)
	require.NoError(t, err)
	hdr := res.(*HDREstimation)
	assert.InDelta(t, 2*cam.ExposureFactor(), hdr.IntensityFactor, 1e-6)
}

func TestEstimatorFlagSetters(t *testing.T) {
	e := NewEstimator()
	assert.Equal(t, DefaultConfig(), e.Config())

	e.SetEnabled(false)
	e.SetHDRReflections(false)
	e.SetDefaultReflections(false)
	e.SetSphericalHarmonics(false)
	e.SetSpecularFilter(false)
	e.SetMainLightDirection(false)
	e.SetMainLightIntensity(false)

	want := Config{FaceWorkers: DefaultConfig().FaceWorkers}
	assert.Equal(t, want, e.Config())
}

func TestUpdateEnvironmentalHDRMainLightFlags(t *testing.T) {
	e := NewEstimator()
	e.SetMainLightDirection(false)
	e.SetMainLightIntensity(false)
	e.SetBaseIndirectLight(900, nil)

	res, err := e.Update(artest.NewSession(ar.LightEstimationModeEnvironmentalHDR), frameOf(hdrEstimate(1)), nil)
	require.NoError(t, err)
	hdr := res.(*HDREstimation)
	assert.False(t, hdr.HasDirection)
	assert.False(t, hdr.HasMainLight)
	assert.Equal(t, float32(900), hdr.Environment().IndirectLight.Intensity())
}

func TestUpdateEnvironmentalHDRFallsBackToBaseSphericalHarmonics(t *testing.T) {
	e := NewEstimator()
	e.SetBaseSphericalHarmonics(baseSphericalHarmonics())

	estimate := hdrEstimate(1)
	estimate.SphericalHarmonics = nil
	res, err := e.Update(artest.NewSession(ar.LightEstimationModeEnvironmentalHDR), frameOf(estimate), nil)
	require.NoError(t, err)
	assert.Equal(t, baseSphericalHarmonics(), res.Environment().SphericalHarmonics)

	estimate = hdrEstimate(2)
	estimate.SphericalHarmonics = ones(5)
	res, err = e.Update(artest.NewSession(ar.LightEstimationModeEnvironmentalHDR), frameOf(estimate), nil)
	require.NoError(t, err)
	assert.Equal(t, baseSphericalHarmonics(), res.Environment().SphericalHarmonics)

	e.SetSphericalHarmonics(false)
	res, err = e.Update(artest.NewSession(ar.LightEstimationModeEnvironmentalHDR), frameOf(hdrEstimate(3)), nil)
	require.NoError(t, err)
	assert.False(t, res.Environment().HasSphericalHarmonics)
}

func TestUpdateEnvironmentalHDRCubemapFallback(t *testing.T) {
	base := &renderertest.Cubemap{Name: "base", W: 16, H: 16}
	backend := renderertest.New()
	e := NewEstimator(WithTextureBackend(backend))
	e.SetBaseIndirectLight(1000, base)
	session := artest.NewSession(ar.LightEstimationModeEnvironmentalHDR)

	failing := hdrEstimate(1)
	failing.CubemapErr = errors.New("tracking lost")
	res, err := e.Update(session, frameOf(failing), nil)
	require.NoError(t, err)
	assert.Same(t, base, res.Environment().Cubemap)

	e.SetDefaultReflections(false)
	failing = hdrEstimate(2)
	failing.CubemapErr = errors.New("tracking lost")
	res, err = e.Update(session, frameOf(failing), nil)
	require.NoError(t, err)
	assert.Nil(t, res.Environment().Cubemap)
	assert.Nil(t, res.Environment().IndirectLight.Reflections())

	malformed := hdrEstimate(3)
	malformed.Faces[2] = markedFaces(4, 4)[2]
	res, err = e.Update(session, frameOf(malformed), nil)
	require.NoError(t, err)
	assert.Nil(t, res.Environment().Cubemap)

	assert.Equal(t, 3, e.Stats().CubemapFallbacks)
	assert.Empty(t, backend.Uploads)
}

func TestUpdateHDRReflectionsDisabled(t *testing.T) {
	base := &renderertest.Cubemap{Name: "base", W: 16, H: 16}
	backend := renderertest.New()
	e := NewEstimator(WithTextureBackend(backend))
	e.SetBaseIndirectLight(1000, base)
	e.SetHDRReflections(false)

	estimate := hdrEstimate(1)
	res, err := e.Update(artest.NewSession(ar.LightEstimationModeEnvironmentalHDR), frameOf(estimate), nil)
	require.NoError(t, err)
	assert.Same(t, base, res.Environment().Cubemap)
	assert.Zero(t, estimate.Acquisitions)

	// Without a texture backend there is nothing to rebuild into either.
	res, err = NewEstimator().Update(artest.NewSession(ar.LightEstimationModeEnvironmentalHDR), frameOf(hdrEstimate(2)), nil)
	require.NoError(t, err)
	assert.Nil(t, res.Environment().Cubemap)
}

func TestUpdateSpecularFilter(t *testing.T) {
	filtered := &renderertest.Cubemap{Name: "filtered"}
	filter := &swapFilter{out: filtered}
	e := NewEstimator(WithTextureBackend(renderertest.New()), WithSpecularFilter(filter))
	session := artest.NewSession(ar.LightEstimationModeEnvironmentalHDR)

	res, err := e.Update(session, frameOf(hdrEstimate(1)), nil)
	require.NoError(t, err)
	assert.Same(t, filtered, res.Environment().Cubemap)

	filter.err = errors.New("no prefilter pipeline")
	res, err = e.Update(session, frameOf(hdrEstimate(2)), nil)
	require.NoError(t, err)
	assert.Same(t, e.Reconstructor().Cubemap(), res.Environment().Cubemap)

	e.SetSpecularFilter(false)
	_, err = e.Update(session, frameOf(hdrEstimate(3)), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, filter.calls)
}

func TestEstimatorDestroy(t *testing.T) {
	backend := renderertest.New()
	base := &renderertest.Cubemap{Name: "base", W: 16, H: 16}
	e := NewEstimator(WithTextureBackend(backend), WithFaceWorkers(3))
	e.SetBaseIndirectLight(1000, base)

	_, err := e.Update(artest.NewSession(ar.LightEstimationModeEnvironmentalHDR), frameOf(hdrEstimate(1)), nil)
	require.NoError(t, err)

	e.Destroy()
	e.Destroy()
	assert.Empty(t, backend.Live())
	assert.False(t, base.Destroyed())

	_, err = e.Update(artest.NewSession(ar.LightEstimationModeEnvironmentalHDR), frameOf(hdrEstimate(2)), nil)
	assert.ErrorIs(t, err, ErrDestroyed)
}

func TestEstimatorDestroyStopsFaceWorkers(t *testing.T) {
	before := runtime.NumGoroutine()
	session := artest.NewSession(ar.LightEstimationModeEnvironmentalHDR)

	for i := range 20 {
		e := NewEstimator(WithTextureBackend(renderertest.New()), WithFaceWorkers(6))
		_, err := e.Update(session, frameOf(hdrEstimate(int64(i))), nil)
		require.NoError(t, err)
		e.Destroy()
	}

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, time.Second, 10*time.Millisecond)
}

func TestUpdateEnvironmentalHDRTintsSphericalHarmonics(t *testing.T) {
	e := NewEstimator()
	estimate := hdrEstimate(1)
	estimate.Correction = [4]float32{1, 0.5, 0.25, 1}
	for c := range 3 {
		estimate.SphericalHarmonics[c] = 2
	}

	res, err := e.Update(artest.NewSession(ar.LightEstimationModeEnvironmentalHDR), frameOf(estimate), nil)
	require.NoError(t, err)
	hdr, ok := res.(*HDREstimation)
	require.True(t, ok)

	env := hdr.Environment()
	require.True(t, env.HasSphericalHarmonics)

	color, _ := DecodeColorCorrection(estimate.Correction)
	for c := range 3 {
		assert.InDelta(t, SphericalHarmonicsFactors[0]*2*color[c], env.SphericalHarmonics[c], 1e-6)
	}
	for band := 1; band < light.SphericalHarmonicsBands; band++ {
		for c := range 3 {
			assert.InDelta(t, SphericalHarmonicsFactors[band], env.SphericalHarmonics[band*3+c], 1e-6)
		}
	}
}

func TestApply(t *testing.T) {
	assert.Nil(t, Apply(nil, light.NewLight(), [3]float32{1, 1, 1}, 10))

	l := light.NewLight()
	env := &Environment{}
	got := Apply(&AmbientEstimation{ColorFactor: ColorFactor{1, 0.5, 0.25}, IntensityFactor: 2, Env: env}, l, [3]float32{1, 1, 0.5}, 10)
	assert.Same(t, env, got)
	assert.Equal(t, [3]float32{1, 0.5, 0.125}, l.Color())
	assert.Equal(t, float32(20), l.Intensity())
	assert.Equal(t, [3]float32{0, -1, 0}, l.Direction())

	Apply(&HDREstimation{
		ColorFactor:     ColorFactor{0.5, 0.5, 0.5},
		IntensityFactor: 3,
		HasMainLight:    true,
		Direction:       [3]float32{0, 0, -2},
		HasDirection:    true,
	}, l, [3]float32{1, 1, 1}, 10)
	assert.Equal(t, [3]float32{0.5, 0.5, 0.5}, l.Color())
	assert.Equal(t, float32(30), l.Intensity())
	assert.Equal(t, [3]float32{0, 0, -1}, l.Direction())

	// Without main light data only the environment is returned.
	Apply(&HDREstimation{}, l, [3]float32{1, 1, 1}, 99)
	assert.Equal(t, float32(30), l.Intensity())
}

func TestEnvironmentDestroy(t *testing.T) {
	cubemap := &renderertest.Cubemap{Name: "shared"}
	il := light.NewIndirectLight(light.WithReflections(cubemap))
	env := &Environment{IndirectLight: il, Cubemap: cubemap}

	env.Destroy()
	assert.True(t, il.Destroyed())
	assert.False(t, cubemap.Destroyed())

	var none *Environment
	assert.NotPanics(t, none.Destroy)
}
