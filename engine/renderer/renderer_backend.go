package renderer

import (
	"github.com/Carmen-Shannon/oxy-ar/common"
)

// RendererBackendType identifies the GPU backend implementation used for textures.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based backend.
	BackendTypeWGPU RendererBackendType = iota
)

// TextureBackend is the slice of the rendering backend the light estimation pipeline needs:
// creating, filling and destroying reflection cubemaps.
type TextureBackend interface {
	// CreateCubemap allocates a half-float cubemap with six width×height faces.
	//
	// Parameters:
	//   - label: a debug label for the texture
	//   - width, height: the size of one face in pixels
	//   - levels: the number of mip levels, FullMipChain for all of them
	//
	// Returns:
	//   - Cubemap: the new cubemap
	//   - error: an error if the GPU texture could not be created
	CreateCubemap(label string, width, height, levels uint32) (Cubemap, error)

	// UploadCubemap writes the packed RGB half-float faces in data into level 0 of the cubemap
	// using data.FaceOffsets to locate each face, then invokes data.OnUploaded.
	//
	// Parameters:
	//   - cubemap: a cubemap created by this backend
	//   - data: the staged face data
	//
	// Returns:
	//   - error: an error if the sizes do not match or the cubemap was not created by this backend
	UploadCubemap(cubemap Cubemap, data common.CubemapStagingData) error

	// Release releases the backend's own GPU objects. Cubemaps must be destroyed first.
	Release()
}
