// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// CubeFaceCount is the number of faces in a cubemap.
const CubeFaceCount = 6

// CubemapStagingData holds packed RGB half-float pixel data for all six faces of a cubemap pending GPU upload.
// This is produced by the light estimation cubemap reconstructor and consumed by the renderer's texture backend.
type CubemapStagingData struct {
	// Pixels is the packed texel data for all faces, 3 channels of 2 bytes each (6 bytes per texel), no alpha.
	Pixels []byte
	// Width is the width of a single face in pixels.
	Width uint32
	// Height is the height of a single face in pixels.
	Height uint32
	// FaceOffsets holds the byte offset of each face within Pixels, in +X, -X, +Y, -Y, +Z, -Z order.
	FaceOffsets [CubeFaceCount]int
	// OnUploaded is invoked by the backend once the pixel data has been handed to the GPU and Pixels may be reused.
	OnUploaded func()
}

// FaceSize returns the size in bytes of a single face of the staged cubemap.
//
// Returns:
//   - int: width * height * 6 bytes
func (s CubemapStagingData) FaceSize() int {
	return int(s.Width) * int(s.Height) * 6
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// This is primarily used by the texture backend when creating the reflections sampler.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}
