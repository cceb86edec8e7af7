// Package estimation fuses the tracking session's per-frame lighting estimate into
// renderer lighting state: main light modulation, spherical harmonics irradiance
// and an HDR reflections cubemap.
package estimation

import (
	"github.com/Carmen-Shannon/oxy-ar/common"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	// PixelIntensityGain compensates for the conservative scale of the ambient intensity estimate.
	PixelIntensityGain float32 = 1.8

	// colorFactorEpsilon replaces an all-black color correction.
	colorFactorEpsilon float32 = 0.0001
)

// ColorFactor is a per-channel RGB multiplier.
type ColorFactor [3]float32

// epsilonColorFactor is returned in place of a degenerate all-zero color.
var epsilonColorFactor = ColorFactor{colorFactorEpsilon, colorFactorEpsilon, colorFactorEpsilon}

// DecodeColorCorrection converts a gamma-encoded ambient color correction (r, g, b, pixel intensity)
// to linear space and splits it into a normalized color factor and an intensity factor.
//
// The dominant channel of the color factor is 1. When all three channels are zero the
// epsilon triplet (0.0001, 0.0001, 0.0001) is returned instead. The intensity factor is the
// linear pixel intensity times PixelIntensityGain.
//
// Parameters:
//   - correction: the gamma-encoded (r, g, b, pixelIntensity) vector
//
// Returns:
//   - ColorFactor: normalized linear color
//   - float32: intensity factor
func DecodeColorCorrection(correction [4]float32) (ColorFactor, float32) {
	r, g, b := colorful.Color{
		R: float64(correction[0]),
		G: float64(correction[1]),
		B: float64(correction[2]),
	}.LinearRgb()
	linear := [3]float32{float32(r), float32(g), float32(b)}
	intensity := toLinear(correction[3]) * PixelIntensityGain

	factor, _ := NormalizeChannels(linear)
	return factor, intensity
}

// NormalizeChannels divides rgb by its largest channel so the dominant channel becomes 1.
// A non-positive maximum yields the epsilon triplet.
//
// Parameters:
//   - rgb: the linear color
//
// Returns:
//   - ColorFactor: the normalized color
//   - float32: the maximum channel value before normalization
func NormalizeChannels(rgb [3]float32) (ColorFactor, float32) {
	m := common.Max3(rgb)
	if m <= 0 {
		return epsilonColorFactor, m
	}
	return ColorFactor{rgb[0] / m, rgb[1] / m, rgb[2] / m}, m
}

// toLinear applies the sRGB electro-optical transfer function to a single value.
func toLinear(v float32) float32 {
	l, _, _ := colorful.Color{R: float64(v)}.LinearRgb()
	return float32(l)
}
