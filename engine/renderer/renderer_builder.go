package renderer

import (
	"github.com/Carmen-Shannon/oxy-ar/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// TextureBackendOption is a functional option applied to a texture backend during construction via NewTextureBackend.
type TextureBackendOption func(*textureBackendConfig)

// WithDevice makes the backend use an existing device and queue instead of requesting its own.
// The backend does not release a device it did not create.
//
// Parameters:
//   - device: the device to create textures on
//   - queue: the queue to upload through
//
// Returns:
//   - TextureBackendOption: a function that applies the device option
func WithDevice(device *wgpu.Device, queue *wgpu.Queue) TextureBackendOption {
	return func(c *textureBackendConfig) {
		c.device = device
		c.queue = queue
	}
}

// WithForceFallbackAdapter forces the software fallback adapter when the backend requests its own device.
//
// Parameters:
//   - force: true to force the fallback adapter
//
// Returns:
//   - TextureBackendOption: a function that applies the fallback adapter option
func WithForceFallbackAdapter(force bool) TextureBackendOption {
	return func(c *textureBackendConfig) {
		c.forceFallbackAdapter = force
	}
}

// WithReflectionsSampler overrides the sampler used to read reflection cubemaps.
// Zero fields fall back to clamp-to-edge addressing with linear filtering.
//
// Parameters:
//   - sampler: the sampler configuration
//
// Returns:
//   - TextureBackendOption: a function that applies the sampler option
func WithReflectionsSampler(sampler common.SamplerStagingData) TextureBackendOption {
	return func(c *textureBackendConfig) {
		c.sampler = sampler
	}
}
