package common

import (
	"math"
)

// HalfOne is the IEEE 754 binary16 encoding of 1.0.
const HalfOne uint16 = 0x3C00

// Float32ToHalf converts a float32 to its IEEE 754 binary16 bit pattern using
// round-to-nearest-even. Values too large for binary16 become infinity, values
// too small flush to signed zero, NaN stays NaN.
//
// Parameters:
//   - f: the value to convert
//
// Returns:
//   - uint16: the half-float bit pattern
func Float32ToHalf(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16(bits>>16) & 0x8000
	exp := int32(bits>>23) & 0xff
	mant := bits & 0x7fffff

	if exp == 0xff {
		if mant != 0 {
			return sign | 0x7e00
		}
		return sign | 0x7c00
	}

	e := exp - 127 + 15
	if e >= 0x1f {
		return sign | 0x7c00
	}

	if e <= 0 {
		// subnormal half, or zero
		if e < -10 {
			return sign
		}
		mant |= 0x800000
		shift := uint32(14 - e)
		half := uint16(mant >> shift)
		rem := mant & ((1 << shift) - 1)
		mid := uint32(1) << (shift - 1)
		if rem > mid || (rem == mid && half&1 == 1) {
			half++
		}
		return sign | half
	}

	// a carry out of the mantissa correctly bumps the exponent
	half := uint16(e)<<10 | uint16(mant>>13)
	rem := mant & 0x1fff
	if rem > 0x1000 || (rem == 0x1000 && half&1 == 1) {
		half++
	}
	return sign | half
}

// HalfToFloat32 converts an IEEE 754 binary16 bit pattern to a float32. The
// conversion is exact.
//
// Parameters:
//   - h: the half-float bit pattern
//
// Returns:
//   - float32: the decoded value
func HalfToFloat32(h uint16) float32 {
	sign := uint32(h&0x8000) << 16
	exp := uint32(h>>10) & 0x1f
	mant := uint32(h & 0x3ff)

	switch exp {
	case 0:
		if mant == 0 {
			return math.Float32frombits(sign)
		}
		e := uint32(127 - 15 + 1)
		for mant&0x400 == 0 {
			mant <<= 1
			e--
		}
		mant &= 0x3ff
		return math.Float32frombits(sign | e<<23 | mant<<13)
	case 0x1f:
		return math.Float32frombits(sign | 0x7f800000 | mant<<13)
	}
	return math.Float32frombits(sign | (exp+112)<<23 | mant<<13)
}
