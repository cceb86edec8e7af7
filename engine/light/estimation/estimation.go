package estimation

import (
	"github.com/Carmen-Shannon/oxy-ar/engine/ar"
	"github.com/Carmen-Shannon/oxy-ar/engine/light"
	"github.com/Carmen-Shannon/oxy-ar/engine/renderer"
)

// Estimation is the result of one Update call. It is either an *AmbientEstimation or an
// *HDREstimation; the set is closed, so a type switch over the two is exhaustive.
type Estimation interface {
	// Mode returns the session mode the estimation was produced in.
	Mode() ar.LightEstimationMode

	// Environment returns the indirect lighting built for this frame.
	Environment() *Environment

	estimation()
}

// Environment bundles the indirect light built for one frame with the data it was built from.
//
// The indirect light belongs to the Environment. The cubemap is shared with the estimator
// (or is the base reflections) and is not released by Destroy.
type Environment struct {
	IndirectLight light.IndirectLight

	// SphericalHarmonics holds 9 RGB triplets in renderer basis order. Only meaningful
	// when HasSphericalHarmonics is set.
	SphericalHarmonics    [light.SphericalHarmonicsLen]float32
	HasSphericalHarmonics bool

	// Cubemap is the reflections source, or nil.
	Cubemap renderer.Cubemap
}

// Destroy releases the indirect light. The cubemap stays alive. Safe on a nil Environment.
func (e *Environment) Destroy() {
	if e == nil || e.IndirectLight == nil {
		return
	}
	e.IndirectLight.Destroy()
}

// AmbientEstimation is produced in ambient intensity mode: a single color correction and
// pixel intensity applied to the base lighting.
type AmbientEstimation struct {
	// ColorFactor is the normalized linear color correction.
	ColorFactor ColorFactor
	// IntensityFactor is the linear pixel intensity times PixelIntensityGain.
	IntensityFactor float32

	Env *Environment
}

func (*AmbientEstimation) Mode() ar.LightEstimationMode {
	return ar.LightEstimationModeAmbientIntensity
}

func (a *AmbientEstimation) Environment() *Environment {
	return a.Env
}

func (*AmbientEstimation) estimation() {}

// HDREstimation is produced in environmental HDR mode.
type HDREstimation struct {
	// ColorFactor and IntensityFactor modulate the main light. Both are scaled by the
	// camera exposure factor. They are only set when HasMainLight is.
	ColorFactor     ColorFactor
	IntensityFactor float32
	HasMainLight    bool

	// Direction is the direction the main light travels in, the negation of the
	// session's direction towards the light. Only set when HasDirection is.
	Direction    [3]float32
	HasDirection bool

	Env *Environment
}

func (*HDREstimation) Mode() ar.LightEstimationMode {
	return ar.LightEstimationModeEnvironmentalHDR
}

func (h *HDREstimation) Environment() *Environment {
	return h.Env
}

func (*HDREstimation) estimation() {}

// Apply writes the main light part of est onto mainLight and returns the environment to install.
// The main light color and intensity are always derived from the given base values, so applying
// estimations frame after frame never compounds.
//
// Parameters:
//   - est: the estimation, may be nil
//   - mainLight: the scene's main light, may be nil
//   - baseColor: the authored main light color
//   - baseIntensity: the authored main light intensity
//
// Returns:
//   - *Environment: the environment to install, or nil when est is nil
func Apply(est Estimation, mainLight light.Light, baseColor [3]float32, baseIntensity float32) *Environment {
	if est == nil {
		return nil
	}
	if mainLight != nil {
		switch e := est.(type) {
		case *AmbientEstimation:
			setColor(mainLight, baseColor, e.ColorFactor)
			mainLight.SetIntensity(baseIntensity * e.IntensityFactor)
		case *HDREstimation:
			if e.HasMainLight {
				setColor(mainLight, baseColor, e.ColorFactor)
				mainLight.SetIntensity(baseIntensity * e.IntensityFactor)
			}
			if e.HasDirection {
				mainLight.SetDirection(e.Direction[0], e.Direction[1], e.Direction[2])
			}
		}
	}
	return est.Environment()
}

func setColor(l light.Light, base [3]float32, factor ColorFactor) {
	l.SetColor(base[0]*factor[0], base[1]*factor[1], base[2]*factor[2])
}
