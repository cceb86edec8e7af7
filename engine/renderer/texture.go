package renderer

import (
	"encoding/binary"
	"math/bits"

	"github.com/Carmen-Shannon/oxy-ar/common"
)

// rgba16BytesPerTexel is the size of one RGBA16Float texel.
const rgba16BytesPerTexel = 8

// FullMipChain requests every mip level down to 1×1 when creating a texture.
// Larger requests are clamped to the real chain length.
const FullMipChain uint32 = 0xFF

// Cubemap is a six-layer texture usable as a reflections source.
//
// A Cubemap is owned by whoever created it through a TextureBackend and must be
// destroyed exactly once by that owner.
type Cubemap interface {
	// Label returns the debug label the cubemap was created with.
	Label() string

	// Width returns the width of one face in pixels.
	//
	// Returns:
	//   - uint32: face width
	Width() uint32

	// Height returns the height of one face in pixels.
	//
	// Returns:
	//   - uint32: face height
	Height() uint32

	// Levels returns the number of mip levels allocated.
	//
	// Returns:
	//   - uint32: mip level count
	Levels() uint32

	// Destroyed reports whether Destroy has been called.
	Destroyed() bool

	// Destroy releases the GPU resources held by the cubemap. Calling it more than once has no effect.
	Destroy()
}

// MipLevels returns the length of the full mip chain for a width×height texture.
//
// Parameters:
//   - width, height: the base level size in pixels
//
// Returns:
//   - uint32: floor(log2(max(width, height))) + 1, or 1 for empty sizes
func MipLevels(width, height uint32) uint32 {
	size := max(width, height)
	if size == 0 {
		return 1
	}
	return uint32(bits.Len32(size))
}

// ClampMipLevels clamps a requested level count to the full chain of a width×height texture.
// A request of zero is treated as a single level.
func ClampMipLevels(requested, width, height uint32) uint32 {
	full := MipLevels(width, height)
	if requested == 0 {
		return 1
	}
	return min(requested, full)
}

// MipSize returns the size of a mip level of a width×height texture. Neither side drops below 1.
func MipSize(width, height, level uint32) (uint32, uint32) {
	return max(width>>level, 1), max(height>>level, 1)
}

// DownsampleRGBA16 box-filters an RGBA half-float image into the next mip level.
// Each destination texel averages the 2×2 source block under it; odd edges reuse the last row or column.
//
// Parameters:
//   - dst: the destination level, sized for MipSize(width, height, 1)
//   - src: the source level of width×height texels
//   - width, height: the source size in pixels
func DownsampleRGBA16(dst, src []byte, width, height uint32) {
	dw, dh := MipSize(width, height, 1)
	texel := func(x, y uint32) int {
		return int(y*width+x) * rgba16BytesPerTexel
	}
	for y := range dh {
		y0, y1 := min(2*y, height-1), min(2*y+1, height-1)
		for x := range dw {
			x0, x1 := min(2*x, width-1), min(2*x+1, width-1)
			d := int(y*dw+x) * rgba16BytesPerTexel
			for c := 0; c < rgba16BytesPerTexel; c += 2 {
				var sum float32
				for _, s := range [4]int{texel(x0, y0), texel(x1, y0), texel(x0, y1), texel(x1, y1)} {
					sum += common.HalfToFloat32(binary.LittleEndian.Uint16(src[s+c:]))
				}
				binary.LittleEndian.PutUint16(dst[d+c:], common.Float32ToHalf(sum/4))
			}
		}
	}
}
