package renderer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-ar/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// rgb16BytesPerTexel is the size of one packed RGB half-float texel.
const rgb16BytesPerTexel = 6

type wgpuTextureBackendImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	ownsGPU  bool

	sampler *wgpu.Sampler

	// staging is the RGBA16Float upload buffer, reused across uploads of equal size.
	staging []byte
	// mips holds one RGBA16Float buffer per level below the base, reused like staging.
	mips [][]byte
}

type wgpuCubemap struct {
	owner     *wgpuTextureBackendImpl
	label     string
	width     uint32
	height    uint32
	levels    uint32
	texture   *wgpu.Texture
	view      *wgpu.TextureView
	destroyed bool
}

var _ TextureBackend = &wgpuTextureBackendImpl{}
var _ Cubemap = &wgpuCubemap{}

func newWGPUTextureBackend(cfg *textureBackendConfig) (*wgpuTextureBackendImpl, error) {
	b := &wgpuTextureBackendImpl{
		mu:     &sync.Mutex{},
		device: cfg.device,
		queue:  cfg.queue,
	}

	if b.device == nil {
		b.instance = wgpu.CreateInstance(nil)
		a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
			ForceFallbackAdapter: cfg.forceFallbackAdapter,
		})
		if err != nil {
			b.instance.Release()
			return nil, fmt.Errorf("failed to request adapter: %w", err)
		}
		b.adapter = a

		d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
			Label: "Light Estimation Device",
		})
		if err != nil {
			a.Release()
			b.instance.Release()
			return nil, fmt.Errorf("failed to request device: %w", err)
		}
		b.device = d
		b.queue = d.GetQueue()
		b.ownsGPU = true
	}
	if b.queue == nil {
		return nil, errors.New("a queue must accompany the provided device")
	}

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Reflections Sampler",
		AddressModeU:  common.Coalesce(cfg.sampler.AddressModeU, wgpu.AddressModeClampToEdge),
		AddressModeV:  common.Coalesce(cfg.sampler.AddressModeV, wgpu.AddressModeClampToEdge),
		AddressModeW:  common.Coalesce(cfg.sampler.AddressModeW, wgpu.AddressModeClampToEdge),
		MagFilter:     common.Coalesce(cfg.sampler.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(cfg.sampler.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(cfg.sampler.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   cfg.sampler.LodMinClamp,
		LodMaxClamp:   common.Coalesce(cfg.sampler.LodMaxClamp, 32),
		MaxAnisotropy: common.Coalesce(cfg.sampler.MaxAnisotropy, 1),
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to create reflections sampler: %w", err)
	}
	b.sampler = samp

	return b, nil
}

// Sampler returns the sampler reflection cubemaps created by this backend should be read with.
func (b *wgpuTextureBackendImpl) Sampler() *wgpu.Sampler {
	return b.sampler
}

func (b *wgpuTextureBackendImpl) CreateCubemap(label string, width, height, levels uint32) (Cubemap, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width == 0 || height == 0 {
		return nil, fmt.Errorf("cubemap %q has an empty face size %dx%d", label, width, height)
	}
	levels = ClampMipLevels(levels, width, height)

	// WebGPU has no three-channel half-float format; RGB faces are widened on upload.
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: common.CubeFaceCount,
		},
		Format:        wgpu.TextureFormatRGBA16Float,
		MipLevelCount: levels,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cubemap texture %q: %w", label, err)
	}

	view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           label + " View",
		Format:          wgpu.TextureFormatRGBA16Float,
		Dimension:       wgpu.TextureViewDimensionCube,
		BaseMipLevel:    0,
		MipLevelCount:   levels,
		BaseArrayLayer:  0,
		ArrayLayerCount: common.CubeFaceCount,
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create cubemap view %q: %w", label, err)
	}

	return &wgpuCubemap{
		owner:   b,
		label:   label,
		width:   width,
		height:  height,
		levels:  levels,
		texture: tex,
		view:    view,
	}, nil
}

func (b *wgpuTextureBackendImpl) UploadCubemap(cubemap Cubemap, data common.CubemapStagingData) error {
	c, ok := cubemap.(*wgpuCubemap)
	if !ok || c.owner != b {
		return errors.New("cubemap was not created by this backend")
	}
	if c.destroyed {
		return fmt.Errorf("cubemap %q is destroyed", c.label)
	}
	if data.Width != c.width || data.Height != c.height {
		return fmt.Errorf("staged faces are %dx%d but cubemap %q is %dx%d", data.Width, data.Height, c.label, c.width, c.height)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	srcFace := data.FaceSize()
	dstFace := int(data.Width) * int(data.Height) * rgba16BytesPerTexel
	if cap(b.staging) != dstFace*common.CubeFaceCount {
		b.staging = make([]byte, dstFace*common.CubeFaceCount)
	}
	b.staging = b.staging[:dstFace*common.CubeFaceCount]

	for face, off := range data.FaceOffsets {
		if off < 0 || off+srcFace > len(data.Pixels) {
			return fmt.Errorf("face %d offset %d is out of range for %d staged bytes", face, off, len(data.Pixels))
		}
		ExpandRGBToRGBA(b.staging[face*dstFace:(face+1)*dstFace], data.Pixels[off:off+srcFace])
	}

	// Faces are laid out layer after layer, so one write per level covers all six.
	if err := b.writeLevel(c, 0, b.staging, data.Width, data.Height); err != nil {
		return err
	}
	if err := b.writeMipChain(c); err != nil {
		return err
	}

	if data.OnUploaded != nil {
		data.OnUploaded()
	}
	return nil
}

// writeMipChain box-filters every level below the base from the level above it, so minified
// lookups never read unwritten texels.
func (b *wgpuTextureBackendImpl) writeMipChain(c *wgpuCubemap) error {
	if len(b.mips) != int(c.levels)-1 {
		b.mips = make([][]byte, c.levels-1)
	}
	src := b.staging
	for level := uint32(1); level < c.levels; level++ {
		srcW, srcH := MipSize(c.width, c.height, level-1)
		w, h := MipSize(c.width, c.height, level)
		srcFace := int(srcW*srcH) * rgba16BytesPerTexel
		dstFace := int(w*h) * rgba16BytesPerTexel

		dst := b.mips[level-1]
		if len(dst) != dstFace*common.CubeFaceCount {
			dst = make([]byte, dstFace*common.CubeFaceCount)
			b.mips[level-1] = dst
		}
		for face := range common.CubeFaceCount {
			DownsampleRGBA16(dst[face*dstFace:(face+1)*dstFace], src[face*srcFace:(face+1)*srcFace], srcW, srcH)
		}
		if err := b.writeLevel(c, level, dst, w, h); err != nil {
			return err
		}
		src = dst
	}
	return nil
}

// writeLevel writes all six faces of one mip level.
func (b *wgpuTextureBackendImpl) writeLevel(c *wgpuCubemap, level uint32, pixels []byte, width, height uint32) error {
	err := b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  c.texture,
			MipLevel: level,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  width * rgba16BytesPerTexel,
			RowsPerImage: height,
		},
		&wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: common.CubeFaceCount,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to write mip level %d of cubemap %q: %w", level, c.label, err)
	}
	return nil
}

func (b *wgpuTextureBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sampler != nil {
		b.sampler.Release()
		b.sampler = nil
	}
	b.staging = nil
	b.mips = nil
	if !b.ownsGPU {
		return
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// ExpandRGBToRGBA widens packed RGB half-float texels (6 bytes) into RGBA half-float
// texels (8 bytes) with alpha set to 1.0. dst must hold len(src)/6*8 bytes.
//
// Parameters:
//   - dst: the RGBA destination
//   - src: the packed RGB source
func ExpandRGBToRGBA(dst, src []byte) {
	texels := len(src) / rgb16BytesPerTexel
	for i := 0; i < texels; i++ {
		s := i * rgb16BytesPerTexel
		d := i * rgba16BytesPerTexel
		copy(dst[d:d+rgb16BytesPerTexel], src[s:s+rgb16BytesPerTexel])
		binary.LittleEndian.PutUint16(dst[d+rgb16BytesPerTexel:d+rgba16BytesPerTexel], common.HalfOne)
	}
}

func (c *wgpuCubemap) Label() string { return c.label }
func (c *wgpuCubemap) Width() uint32 { return c.width }
func (c *wgpuCubemap) Height() uint32 { return c.height }
func (c *wgpuCubemap) Levels() uint32 { return c.levels }
func (c *wgpuCubemap) Destroyed() bool { return c.destroyed }

// View returns the cube view of the texture for binding.
func (c *wgpuCubemap) View() *wgpu.TextureView {
	return c.view
}

func (c *wgpuCubemap) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	if c.view != nil {
		c.view.Release()
		c.view = nil
	}
	if c.texture != nil {
		c.texture.Release()
		c.texture = nil
	}
}
