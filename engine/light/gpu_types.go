package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// MaxGPULights is the maximum number of directional lights marshaled into the
// GPU storage buffer per frame.
const MaxGPULights = 16

// GPULightSource is the canonical WGSL definition of the Light struct.
// Matches GPULight layout exactly (32 bytes, std430 aligned).
//
//go:embed assets/light.wgsl
var GPULightSource string

// GPULight is the GPU-aligned representation of a directional light.
// Matches the WGSL Light struct layout exactly (see GPULightSource).
// Size: 32 bytes (std430 / WGSL aligned).
type GPULight struct {
	Direction    [3]float32 // offset  0: normalized direction of travel
	Intensity    float32    // offset 12: illuminance in lux
	Color        [3]float32 // offset 16: RGB color
	CastsShadows uint32     // offset 28: 1 = casts shadows, 0 = does not
}

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Direction[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Direction[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Direction[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Intensity))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Color[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Color[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.Color[2]))
	binary.LittleEndian.PutUint32(buf[28:32], g.CastsShadows)
	return buf
}

// GPULightHeaderSource is the canonical WGSL definition of the LightHeader struct.
// Matches GPULightHeader layout exactly (16 bytes, std430 aligned).
//
//go:embed assets/light_header.wgsl
var GPULightHeaderSource string

// GPULightHeader is the header prepended to the light storage buffer.
// Contains the ambient color and the active light count.
// Size: 16 bytes (vec3 + u32, std430 aligned).
type GPULightHeader struct {
	AmbientColor [3]float32 // offset 0: scene ambient RGB
	LightCount   uint32     // offset 12: number of active lights following the header
}

// Size returns the size of the GPULightHeader struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (h *GPULightHeader) Size() int {
	return int(unsafe.Sizeof(*h))
}

// Marshal serializes the GPULightHeader struct into a byte buffer suitable for
// GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (h *GPULightHeader) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(h.AmbientColor[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(h.AmbientColor[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(h.AmbientColor[2]))
	binary.LittleEndian.PutUint32(buf[12:16], h.LightCount)
	return buf
}

// GPUIndirectLightSource is the canonical WGSL definition of the IndirectLight struct.
// Matches GPUIndirectLight layout exactly (160 bytes, std140 aligned).
//
//go:embed assets/indirect_light.wgsl
var GPUIndirectLightSource string

// GPUIndirectLight is the uniform representation of an IndirectLight.
// Each spherical harmonics triplet is padded to a vec4.
// Size: 160 bytes.
type GPUIndirectLight struct {
	Irradiance     [SphericalHarmonicsBands][4]float32 // offset   0: 9 × vec4 (rgb + pad)
	Intensity      float32                             // offset 144
	HasIrradiance  uint32                              // offset 148
	HasReflections uint32                              // offset 152
	_pad           uint32                              // offset 156
}

// Size returns the size of the GPUIndirectLight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (160)
func (g *GPUIndirectLight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUIndirectLight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 160-byte buffer ready for GPU upload
func (g *GPUIndirectLight) Marshal() []byte {
	buf := make([]byte, 160)
	for i := range SphericalHarmonicsBands {
		for c := range 4 {
			binary.LittleEndian.PutUint32(buf[i*16+c*4:], math.Float32bits(g.Irradiance[i][c]))
		}
	}
	binary.LittleEndian.PutUint32(buf[144:148], math.Float32bits(g.Intensity))
	binary.LittleEndian.PutUint32(buf[148:152], g.HasIrradiance)
	binary.LittleEndian.PutUint32(buf[152:156], g.HasReflections)
	binary.LittleEndian.PutUint32(buf[156:160], 0) // padding
	return buf
}

// ToGPULight converts a Light into its GPU-aligned representation.
//
// Parameters:
//   - l: the Light to convert
//
// Returns:
//   - GPULight: the GPU-aligned representation
func ToGPULight(l Light) GPULight {
	shadowVal := uint32(0)
	if l.CastsShadows() {
		shadowVal = 1
	}
	return GPULight{
		Direction:    l.Direction(),
		Intensity:    l.Intensity(),
		Color:        l.Color(),
		CastsShadows: shadowVal,
	}
}

// ToGPUIndirectLight converts an IndirectLight into its uniform representation.
// A nil or destroyed light yields a zeroed uniform, which shades as no indirect light.
//
// Parameters:
//   - il: the IndirectLight to convert
//
// Returns:
//   - GPUIndirectLight: the uniform representation
func ToGPUIndirectLight(il IndirectLight) GPUIndirectLight {
	var g GPUIndirectLight
	if il == nil || il.Destroyed() {
		return g
	}
	g.Intensity = il.Intensity()
	if sh, ok := il.Irradiance(); ok {
		g.HasIrradiance = 1
		for i := range SphericalHarmonicsBands {
			g.Irradiance[i] = [4]float32{sh[i*3], sh[i*3+1], sh[i*3+2], 0}
		}
	}
	if il.Reflections() != nil {
		g.HasReflections = 1
	}
	return g
}

// MarshalLightBuffer marshals a slice of enabled lights into a byte buffer
// suitable for GPU upload. The buffer layout is:
//
//	[GPULightHeader (16 bytes)] [GPULight × count (32 bytes each)]
//
// Only enabled lights are included, up to MaxGPULights.
//
// Parameters:
//   - lights: the full slice of lights to marshal (only enabled lights are included)
//   - ambient: the scene ambient color as RGB
//
// Returns:
//   - []byte: the marshaled buffer ready for GPU upload
func MarshalLightBuffer(lights []Light, ambient [3]float32) []byte {
	headerSize := (&GPULightHeader{}).Size()
	lightSize := (&GPULight{}).Size()

	enabledCount := 0
	for _, l := range lights {
		if l.Enabled() {
			enabledCount++
			if enabledCount >= MaxGPULights {
				break
			}
		}
	}

	buf := make([]byte, headerSize+enabledCount*lightSize)
	header := GPULightHeader{AmbientColor: ambient, LightCount: uint32(enabledCount)}
	copy(buf[:headerSize], header.Marshal())

	offset := headerSize
	written := 0
	for _, l := range lights {
		if !l.Enabled() {
			continue
		}
		if written >= MaxGPULights {
			break
		}
		gpu := ToGPULight(l)
		copy(buf[offset:offset+lightSize], gpu.Marshal())
		offset += lightSize
		written++
	}

	return buf
}
