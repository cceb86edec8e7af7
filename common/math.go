package common

import (
	"github.com/chewxy/math32"
)

// Normalize3 returns v scaled to unit length. Returns a zero vector if v has zero length.
//
// Parameters:
//   - v: the vector to normalize
//
// Returns:
//   - [3]float32: the normalized vector
func Normalize3(v [3]float32) [3]float32 {
	length := math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if length == 0 {
		return [3]float32{0, 0, 0}
	}
	inv := 1.0 / length
	return [3]float32{v[0] * inv, v[1] * inv, v[2] * inv}
}

// Negate3 returns the component-wise negation of v.
//
// Parameters:
//   - v: the vector to negate
//
// Returns:
//   - [3]float32: (-x, -y, -z)
func Negate3(v [3]float32) [3]float32 {
	return [3]float32{-v[0], -v[1], -v[2]}
}

// Scale3 multiplies every component of v by s.
//
// Parameters:
//   - v: the vector to scale
//   - s: the scalar factor
//
// Returns:
//   - [3]float32: the scaled vector
func Scale3(v [3]float32, s float32) [3]float32 {
	return [3]float32{v[0] * s, v[1] * s, v[2] * s}
}

// Max3 returns the largest component of v.
//
// Parameters:
//   - v: the vector to inspect
//
// Returns:
//   - float32: max(x, y, z)
func Max3(v [3]float32) float32 {
	return math32.Max(v[0], math32.Max(v[1], v[2]))
}

// Average3 returns the arithmetic mean of the components of v.
//
// Parameters:
//   - v: the vector to average
//
// Returns:
//   - float32: (x + y + z) / 3
func Average3(v [3]float32) float32 {
	return (v[0] + v[1] + v[2]) / 3
}
