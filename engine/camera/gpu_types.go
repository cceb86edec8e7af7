package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUExposureUniformSource is the canonical WGSL definition of the ExposureUniform struct.
// Matches GPUExposureUniform layout exactly (16 bytes, std140 aligned).
//
//go:embed assets/exposure_uniform.wgsl
var GPUExposureUniformSource string

// GPUExposureUniform is the GPU-aligned representation of the camera exposure uniform.
// Shaders multiply their output by Exposure so that virtual content matches the photometric
// scale of the estimated real-world lighting.
// Size: 16 bytes.
type GPUExposureUniform struct {
	EV100       float32 // offset  0
	Exposure    float32 // offset  4: 1 / (1.2 * 2^EV100), the sensor saturation based exposure
	Illuminance float32 // offset  8
	Luminance   float32 // offset 12
}

// NewGPUExposureUniform builds the uniform for the camera's current settings.
//
// Parameters:
//   - c: the camera to read
//
// Returns:
//   - GPUExposureUniform: the populated uniform
func NewGPUExposureUniform(c Camera) GPUExposureUniform {
	ev100 := c.EV100()
	return GPUExposureUniform{
		EV100:       ev100,
		Exposure:    float32(1.0 / (1.2 * math.Pow(2, float64(ev100)))),
		Illuminance: Illuminance(ev100),
		Luminance:   Luminance(ev100),
	}
}

// Size returns the size of the GPUExposureUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUExposureUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUExposureUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUExposureUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(g.EV100))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(g.Exposure))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(g.Illuminance))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(g.Luminance))
	return buf
}
