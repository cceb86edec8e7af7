package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-ar/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// textureBackendConfig collects builder options before the backend is created.
type textureBackendConfig struct {
	device               *wgpu.Device
	queue                *wgpu.Queue
	forceFallbackAdapter bool
	sampler              common.SamplerStagingData
}

// NewTextureBackend creates a TextureBackend of the given type.
//
// Without WithDevice the WebGPU backend requests its own headless adapter and device;
// with WithDevice it shares the device of an existing renderer.
//
// Parameters:
//   - backendType: the backend implementation to use
//   - options: variadic list of TextureBackendOption functions
//
// Returns:
//   - TextureBackend: the new backend
//   - error: an error if no adapter or device could be obtained
func NewTextureBackend(backendType RendererBackendType, options ...TextureBackendOption) (TextureBackend, error) {
	cfg := &textureBackendConfig{
		sampler: common.SamplerStagingData{
			AddressModeU: wgpu.AddressModeClampToEdge,
			AddressModeV: wgpu.AddressModeClampToEdge,
			AddressModeW: wgpu.AddressModeClampToEdge,
			MipmapFilter: wgpu.MipmapFilterModeLinear,
		},
	}
	for _, opt := range options {
		opt(cfg)
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		b, err := newWGPUTextureBackend(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create wgpu texture backend: %w", err)
		}
		return b, nil
	}
}
