package estimation

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-ar/common"
	"github.com/Carmen-Shannon/oxy-ar/engine/light"
)

// naiveSphericalHarmonicsFactors holds, per band in the session's basis order, the product of the
// SH normalization, the sqrt(2) real-basis factor, the 1/pi Lambertian factor and the irradiance
// convolution factor.
var naiveSphericalHarmonicsFactors = [light.SphericalHarmonicsBands]float32{
	0.282095,
	-0.325735,
	0.325735,
	-0.325735,
	0.273137,
	-0.273137,
	-0.273137,
	0.078848,
	0.136569,
}

// SphericalHarmonicsFactors is the per-band scale from the session's irradiance basis to the
// renderer's. Bands 6 and 7 are ordered differently by the two conventions, so their factors
// are swapped relative to naiveSphericalHarmonicsFactors.
var SphericalHarmonicsFactors = func() [light.SphericalHarmonicsBands]float32 {
	f := naiveSphericalHarmonicsFactors
	common.Swap(f[:], 6, 7)
	return f
}()

// RemapSphericalHarmonics rescales the session's 27 irradiance coefficients into the renderer's
// convention and tints the DC band (the first RGB triplet) by color.
//
// Parameters:
//   - src: 9 RGB triplets in the session's basis
//   - color: the ambient color factor applied to the DC band
//
// Returns:
//   - [light.SphericalHarmonicsLen]float32: 9 RGB triplets in renderer order
//   - error: an error if src does not hold exactly 27 values
func RemapSphericalHarmonics(src []float32, color ColorFactor) ([light.SphericalHarmonicsLen]float32, error) {
	var out [light.SphericalHarmonicsLen]float32
	if len(src) != light.SphericalHarmonicsLen {
		return out, fmt.Errorf("spherical harmonics: want %d coefficients, got %d", light.SphericalHarmonicsLen, len(src))
	}
	for i := range light.SphericalHarmonicsBands {
		for c := range 3 {
			out[i*3+c] = src[i*3+c] * SphericalHarmonicsFactors[i]
		}
	}
	return TintBaseBand(out, color), nil
}

// TintBaseBand multiplies the DC band of sh channel-wise by color and leaves the other bands untouched.
//
// Parameters:
//   - sh: 9 RGB triplets
//   - color: the per-channel tint
//
// Returns:
//   - [light.SphericalHarmonicsLen]float32: the tinted copy
func TintBaseBand(sh [light.SphericalHarmonicsLen]float32, color ColorFactor) [light.SphericalHarmonicsLen]float32 {
	for c := range 3 {
		sh[c] *= color[c]
	}
	return sh
}
