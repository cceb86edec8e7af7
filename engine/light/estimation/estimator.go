package estimation

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-ar/common"
	"github.com/Carmen-Shannon/oxy-ar/engine/ar"
	"github.com/Carmen-Shannon/oxy-ar/engine/camera"
	"github.com/Carmen-Shannon/oxy-ar/engine/light"
	"github.com/Carmen-Shannon/oxy-ar/engine/renderer"
	"go.uber.org/zap"
)

// SpecularFilter prefilters a reflections cubemap for rough specular lookups.
// The returned cubemap is owned by the filter.
type SpecularFilter interface {
	Filter(src renderer.Cubemap) (renderer.Cubemap, error)
}

// Stats counts what the estimator did since it was created.
type Stats struct {
	// Updates is the number of Update calls that produced an estimation.
	Updates int
	// Skipped is the number of Update calls that produced nothing: disabled, invalid or stale.
	Skipped int
	// CubemapRebuilds is the number of reflections cubemaps reconstructed from the session.
	CubemapRebuilds int
	// CubemapFallbacks is the number of HDR frames that fell back to the base reflections or none.
	CubemapFallbacks int
}

// Estimator turns the session's per-frame light estimate into renderer lighting state.
//
// It holds the base lighting captured from the scene, the cached reflections cubemap and
// the timestamp of the last consumed estimate. An Estimator is driven by the render loop
// only; Update, the setters and Destroy must not be called concurrently.
type Estimator struct {
	cfg            Config
	logger         *zap.SugaredLogger
	backend        renderer.TextureBackend
	specularFilter SpecularFilter
	faceWorkers    int
	reconstructor  *CubemapReconstructor

	baseIntensity   float32
	baseReflections renderer.Cubemap
	baseSH          [light.SphericalHarmonicsLen]float32
	hasBaseSH       bool

	lastTimestamp int64
	hasTimestamp  bool

	stats     Stats
	destroyed bool
}

// NewEstimator creates an Estimator with DefaultConfig, the default indirect light intensity
// and any provided options applied.
//
// Parameters:
//   - opts: variadic list of EstimatorBuilderOption functions
//
// Returns:
//   - *Estimator: the estimator
func NewEstimator(opts ...EstimatorBuilderOption) *Estimator {
	e := &Estimator{
		cfg:           DefaultConfig(),
		logger:        zap.NewNop().Sugar(),
		baseIntensity: light.DefaultIndirectLightIntensity,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.backend != nil {
		workers := common.Coalesce(e.faceWorkers, e.cfg.FaceWorkers)
		e.reconstructor = NewCubemapReconstructor(e.backend, workers, e.logger)
	}
	return e
}

// SetBaseIndirectLight captures the scene's baseline indirect light. Estimations scale
// intensity and fall back to reflections.
//
// Parameters:
//   - intensity: the base indirect light intensity
//   - reflections: the base reflections cubemap, or nil
func (e *Estimator) SetBaseIndirectLight(intensity float32, reflections renderer.Cubemap) {
	e.baseIntensity = intensity
	e.baseReflections = reflections
}

// SetBaseSphericalHarmonics sets the irradiance used when the session provides none.
//
// Parameters:
//   - sh: 9 RGB triplets in renderer basis order
func (e *Estimator) SetBaseSphericalHarmonics(sh [light.SphericalHarmonicsLen]float32) {
	e.baseSH = sh
	e.hasBaseSH = true
}

// BaseIntensity returns the base indirect light intensity.
func (e *Estimator) BaseIntensity() float32 {
	return e.baseIntensity
}

// BaseReflections returns the base reflections cubemap.
func (e *Estimator) BaseReflections() renderer.Cubemap {
	return e.baseReflections
}

// Config returns the current feature flags.
func (e *Estimator) Config() Config {
	return e.cfg
}

// SetEnabled turns light estimation on or off. Disabled estimators skip every frame.
func (e *Estimator) SetEnabled(enabled bool) {
	e.cfg.Enabled = enabled
}

// SetHDRReflections toggles rebuilding the reflections cubemap from the session in HDR mode.
func (e *Estimator) SetHDRReflections(enabled bool) {
	e.cfg.HDRReflections = enabled
}

// SetDefaultReflections toggles falling back to the base reflections when no cubemap is rebuilt.
func (e *Estimator) SetDefaultReflections(enabled bool) {
	e.cfg.DefaultReflections = enabled
}

// SetSphericalHarmonics toggles producing irradiance spherical harmonics.
func (e *Estimator) SetSphericalHarmonics(enabled bool) {
	e.cfg.SphericalHarmonics = enabled
}

// SetSpecularFilter toggles running the specular filter over rebuilt cubemaps.
func (e *Estimator) SetSpecularFilter(enabled bool) {
	e.cfg.SpecularFilter = enabled
}

// SetMainLightDirection toggles applying the estimated main light direction.
func (e *Estimator) SetMainLightDirection(enabled bool) {
	e.cfg.MainLightDirection = enabled
}

// SetMainLightIntensity toggles applying the estimated main light color and intensity.
func (e *Estimator) SetMainLightIntensity(enabled bool) {
	e.cfg.MainLightIntensity = enabled
}

// Stats returns the running counters.
func (e *Estimator) Stats() Stats {
	return e.stats
}

// Update consumes the frame's light estimate.
//
// The result is nil when estimation is disabled, the session mode is disabled, the
// estimate is not valid, or its timestamp equals the last one consumed. In that case
// the caller keeps its current lighting. Cubemap failures never fail the update; they
// fall back to the base reflections (when DefaultReflections is set) or to none.
//
// Parameters:
//   - session: the tracking session
//   - frame: the current frame
//   - cam: the render camera whose exposure scales HDR intensities; nil uses the session's camera exposure
//
// Returns:
//   - Estimation: an *AmbientEstimation, an *HDREstimation or nil
//   - error: ErrDestroyed after Destroy
func (e *Estimator) Update(session ar.Session, frame ar.Frame, cam camera.Camera) (Estimation, error) {
	if e.destroyed {
		return nil, ErrDestroyed
	}

	mode := modeOf(e.cfg.Enabled, session)
	if mode == ar.LightEstimationModeDisabled || frame == nil {
		e.stats.Skipped++
		return nil, nil
	}

	estimate := frame.LightEstimate()
	if estimate == nil || estimate.State() != ar.LightEstimateStateValid {
		e.stats.Skipped++
		return nil, nil
	}
	ts := estimate.Timestamp()
	if e.hasTimestamp && ts == e.lastTimestamp {
		e.stats.Skipped++
		return nil, nil
	}
	e.lastTimestamp = ts
	e.hasTimestamp = true
	e.stats.Updates++

	switch mode {
	case ar.LightEstimationModeAmbientIntensity:
		return e.ambient(estimate), nil
	default:
		return e.environmentalHDR(estimate, e.exposureFactor(session, cam)), nil
	}
}

func (e *Estimator) ambient(estimate ar.LightEstimate) *AmbientEstimation {
	color, intensity := DecodeColorCorrection(estimate.ColorCorrection())

	env := &Environment{Cubemap: e.baseReflections}
	opts := []light.IndirectLightBuilderOption{
		light.WithLabel("ambient_indirect_light"),
		light.WithIndirectIntensity(e.baseIntensity * intensity),
		light.WithReflections(e.baseReflections),
	}
	if e.cfg.SphericalHarmonics && e.hasBaseSH {
		env.SphericalHarmonics = TintBaseBand(e.baseSH, color)
		env.HasSphericalHarmonics = true
		opts = append(opts, light.WithIrradiance(env.SphericalHarmonics))
	}
	env.IndirectLight = light.NewIndirectLight(opts...)

	e.logger.Debugw("ambient light estimate", "color", color, "intensity", intensity)
	return &AmbientEstimation{
		ColorFactor:     color,
		IntensityFactor: intensity,
		Env:             env,
	}
}

func (e *Estimator) environmentalHDR(estimate ar.LightEstimate, exposure float32) *HDREstimation {
	result := &HDREstimation{}

	// Average of the normalized main light color; 1 leaves the base intensity unchanged.
	colorWeight := float32(1)
	if e.cfg.MainLightIntensity {
		if rgb, ok := estimate.MainLightIntensity(); ok {
			normalized, peak := NormalizeChannels(rgb)
			result.ColorFactor = ColorFactor(common.Scale3(normalized, exposure))
			result.IntensityFactor = peak * exposure
			result.HasMainLight = true
			colorWeight = common.Average3(normalized)
		}
	}
	if e.cfg.MainLightDirection {
		if dir, ok := estimate.MainLightDirection(); ok {
			result.Direction = common.Negate3(dir)
			result.HasDirection = true
		}
	}

	env := &Environment{}
	if e.cfg.SphericalHarmonics {
		env.SphericalHarmonics, env.HasSphericalHarmonics = e.hdrSphericalHarmonics(estimate)
	}
	env.Cubemap = e.hdrReflections(estimate)

	opts := []light.IndirectLightBuilderOption{
		light.WithLabel("hdr_indirect_light"),
		light.WithIndirectIntensity(e.baseIntensity * colorWeight),
		light.WithReflections(env.Cubemap),
	}
	if env.HasSphericalHarmonics {
		opts = append(opts, light.WithIrradiance(env.SphericalHarmonics))
	}
	env.IndirectLight = light.NewIndirectLight(opts...)
	result.Env = env

	e.logger.Debugw("environmental hdr light estimate",
		"exposure", exposure,
		"mainLight", result.HasMainLight,
		"direction", result.Direction,
		"reflections", env.Cubemap != nil,
	)
	return result
}

// hdrSphericalHarmonics remaps the session's irradiance, or returns the base irradiance
// when the session provides none or a malformed set.
func (e *Estimator) hdrSphericalHarmonics(estimate ar.LightEstimate) ([light.SphericalHarmonicsLen]float32, bool) {
	if src := estimate.AmbientSphericalHarmonics(); src != nil {
		tint := ColorFactor{1, 1, 1}
		if cc := estimate.ColorCorrection(); cc[0] > 0 || cc[1] > 0 || cc[2] > 0 {
			tint, _ = DecodeColorCorrection(cc)
		}
		sh, err := RemapSphericalHarmonics(src, tint)
		if err == nil {
			return sh, true
		}
		e.logger.Warnw("ignoring session spherical harmonics", "error", err)
	}
	return e.baseSH, e.hasBaseSH
}

// hdrReflections rebuilds the reflections cubemap from the session, falling back on any failure.
func (e *Estimator) hdrReflections(estimate ar.LightEstimate) renderer.Cubemap {
	if !e.cfg.HDRReflections || e.reconstructor == nil {
		return e.fallbackReflections()
	}

	faces, err := estimate.AcquireCubemap()
	if err != nil {
		releaseFaces(faces)
		e.logger.Warnw("falling back from hdr reflections", "error", fmt.Errorf("%w: %w", ErrCubemapUnavailable, err))
		return e.fallbackReflections()
	}
	cubemap, err := e.reconstructor.Reconstruct(faces)
	if err != nil {
		e.logger.Warnw("falling back from hdr reflections", "error", err)
		return e.fallbackReflections()
	}
	e.stats.CubemapRebuilds++

	if e.cfg.SpecularFilter && e.specularFilter != nil {
		filtered, err := e.specularFilter.Filter(cubemap)
		if err != nil {
			e.logger.Warnw("using unfiltered reflections", "error", err)
			return cubemap
		}
		return filtered
	}
	return cubemap
}

func (e *Estimator) fallbackReflections() renderer.Cubemap {
	e.stats.CubemapFallbacks++
	if e.cfg.DefaultReflections {
		return e.baseReflections
	}
	return nil
}

// exposureFactor prefers the render camera's exposure and falls back to the session's camera.
func (e *Estimator) exposureFactor(session ar.Session, cam camera.Camera) float32 {
	if cam != nil {
		return cam.ExposureFactor()
	}
	s := session.CameraExposure()
	return camera.ExposureFactor(camera.EV100(s.Aperture, s.ShutterSpeed, s.Sensitivity))
}

// Reconstructor returns the cubemap reconstructor, or nil without a texture backend.
func (e *Estimator) Reconstructor() *CubemapReconstructor {
	return e.reconstructor
}

// Destroy releases the cached cubemap and staging buffer. Update returns ErrDestroyed afterwards.
// The base reflections belong to the caller and are left alone.
func (e *Estimator) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	if e.reconstructor != nil {
		e.reconstructor.Destroy()
	}
	e.logger.Debugw("destroyed light estimator", "stats", e.stats)
}
