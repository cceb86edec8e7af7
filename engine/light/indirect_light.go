package light

import (
	"github.com/Carmen-Shannon/oxy-ar/engine/renderer"
)

// SphericalHarmonicsBands is the number of spherical harmonics coefficients per color channel (3 bands).
const SphericalHarmonicsBands = 9

// SphericalHarmonicsLen is the number of floats in an RGB spherical harmonics array.
const SphericalHarmonicsLen = SphericalHarmonicsBands * 3

// DefaultIndirectLightIntensity matches the renderer's default environment intensity.
const DefaultIndirectLightIntensity float32 = 30_000

type indirectLightImpl struct {
	label         string
	intensity     float32
	irradiance    [SphericalHarmonicsLen]float32
	hasIrradiance bool
	reflections   renderer.Cubemap
	destroyed     bool
}

// IndirectLight is the image based lighting term of the scene: diffuse irradiance
// expressed as spherical harmonics plus an optional specular reflections cubemap.
//
// An IndirectLight references its reflections cubemap but does not own it;
// Destroy releases the indirect light only.
type IndirectLight interface {
	// Label returns the name of the indirect light.
	Label() string

	// Intensity returns the intensity multiplier in lux.
	//
	// Returns:
	//   - float32: the intensity
	Intensity() float32

	// Irradiance returns the spherical harmonics irradiance and whether one was set.
	//
	// Returns:
	//   - [SphericalHarmonicsLen]float32: 9 RGB triplets in renderer basis order
	//   - bool: false when the light only carries reflections
	Irradiance() ([SphericalHarmonicsLen]float32, bool)

	// Reflections returns the reflections cubemap, or nil.
	//
	// Returns:
	//   - renderer.Cubemap: the reflections source
	Reflections() renderer.Cubemap

	// Destroyed reports whether Destroy has been called.
	Destroyed() bool

	// Destroy releases the indirect light. The reflections cubemap is left untouched.
	// Calling Destroy more than once has no effect.
	Destroy()
}

var _ IndirectLight = &indirectLightImpl{}

// NewIndirectLight creates an IndirectLight with the default intensity and any provided options applied.
//
// Parameters:
//   - opts: variadic list of IndirectLightBuilderOption functions
//
// Returns:
//   - IndirectLight: a new IndirectLight instance
func NewIndirectLight(opts ...IndirectLightBuilderOption) IndirectLight {
	il := &indirectLightImpl{
		label:     "indirect_light",
		intensity: DefaultIndirectLightIntensity,
	}
	for _, opt := range opts {
		opt(il)
	}
	return il
}

func (il *indirectLightImpl) Label() string {
	return il.label
}

func (il *indirectLightImpl) Intensity() float32 {
	return il.intensity
}

func (il *indirectLightImpl) Irradiance() ([SphericalHarmonicsLen]float32, bool) {
	return il.irradiance, il.hasIrradiance
}

func (il *indirectLightImpl) Reflections() renderer.Cubemap {
	return il.reflections
}

func (il *indirectLightImpl) Destroyed() bool {
	return il.destroyed
}

func (il *indirectLightImpl) Destroy() {
	il.destroyed = true
	il.reflections = nil
}
