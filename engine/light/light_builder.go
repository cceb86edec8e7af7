package light

import (
	"github.com/Carmen-Shannon/oxy-ar/common"
	"github.com/Carmen-Shannon/oxy-ar/engine/renderer"
)

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithDirection is an option builder that sets the direction of the light.
// The direction is normalized before storing.
//
// Parameters:
//   - x: the x direction component
//   - y: the y direction component
//   - z: the z direction component
//
// Returns:
//   - LightBuilderOption: a function that applies the direction option to a lightImpl
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.direction = common.Normalize3([3]float32{x, y, z})
	}
}

// WithColor is an option builder that sets the RGB color of the light.
//
// Parameters:
//   - r: the red color component
//   - g: the green color component
//   - b: the blue color component
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = [3]float32{r, g, b}
	}
}

// WithIntensity is an option builder that sets the illuminance of the light.
//
// Parameters:
//   - intensity: the intensity value
//
// Returns:
//   - LightBuilderOption: a function that applies the intensity option to a lightImpl
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithEnabled is an option builder that sets whether the light is active for rendering.
//
// Parameters:
//   - enabled: true to enable the light
//
// Returns:
//   - LightBuilderOption: a function that applies the enabled option to a lightImpl
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}

// WithCastsShadows is an option builder that sets whether the light is eligible for
// shadow map generation.
//
// Parameters:
//   - castsShadows: true to enable shadow casting
//
// Returns:
//   - LightBuilderOption: a function that applies the shadow casting option to a lightImpl
func WithCastsShadows(castsShadows bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.castsShadows = castsShadows
	}
}

// IndirectLightBuilderOption is a function that configures an IndirectLight during construction.
type IndirectLightBuilderOption func(*indirectLightImpl)

// WithIndirectIntensity sets the indirect light intensity in lux.
//
// Parameters:
//   - intensity: the intensity value
//
// Returns:
//   - IndirectLightBuilderOption: a function that applies the intensity option
func WithIndirectIntensity(intensity float32) IndirectLightBuilderOption {
	return func(il *indirectLightImpl) {
		il.intensity = intensity
	}
}

// WithIrradiance sets the 9-band spherical harmonics irradiance, 27 floats as 9 RGB triplets.
//
// Parameters:
//   - sh: the irradiance coefficients
//
// Returns:
//   - IndirectLightBuilderOption: a function that applies the irradiance option
func WithIrradiance(sh [SphericalHarmonicsLen]float32) IndirectLightBuilderOption {
	return func(il *indirectLightImpl) {
		il.irradiance = sh
		il.hasIrradiance = true
	}
}

// WithReflections sets the reflections cubemap. The indirect light does not take ownership.
//
// Parameters:
//   - reflections: the cubemap, or nil
//
// Returns:
//   - IndirectLightBuilderOption: a function that applies the reflections option
func WithReflections(reflections renderer.Cubemap) IndirectLightBuilderOption {
	return func(il *indirectLightImpl) {
		il.reflections = reflections
	}
}

// WithLabel names the indirect light for logging.
func WithLabel(label string) IndirectLightBuilderOption {
	return func(il *indirectLightImpl) {
		il.label = label
	}
}
