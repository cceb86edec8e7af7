// Package renderertest provides an in-memory TextureBackend that records every call.
package renderertest

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-ar/common"
	"github.com/Carmen-Shannon/oxy-ar/engine/renderer"
)

// Cubemap is a CPU-side cubemap.
type Cubemap struct {
	Name          string
	W, H          uint32
	MipLevels     uint32
	DestroyCalls  int
	UploadedBytes []byte
}

var _ renderer.Cubemap = &Cubemap{}

func (c *Cubemap) Label() string { return c.Name }
func (c *Cubemap) Width() uint32 { return c.W }
func (c *Cubemap) Height() uint32 { return c.H }
func (c *Cubemap) Levels() uint32 { return c.MipLevels }
func (c *Cubemap) Destroyed() bool { return c.DestroyCalls > 0 }
func (c *Cubemap) Destroy() { c.DestroyCalls++ }

// Upload is a copy of one UploadCubemap call.
type Upload struct {
	Target      *Cubemap
	Pixels      []byte
	Width       uint32
	Height      uint32
	FaceOffsets [common.CubeFaceCount]int
}

// Backend is a TextureBackend that keeps everything in memory.
type Backend struct {
	Created  []*Cubemap
	Uploads  []Upload
	Released bool

	// CreateErr, when set, is returned by CreateCubemap.
	CreateErr error
	// SkipUploadCallback suppresses the OnUploaded callback, as a backend that has not finished yet would.
	SkipUploadCallback bool
}

var _ renderer.TextureBackend = &Backend{}

// New returns an empty Backend.
func New() *Backend {
	return &Backend{}
}

func (b *Backend) CreateCubemap(label string, width, height, levels uint32) (renderer.Cubemap, error) {
	if b.CreateErr != nil {
		return nil, b.CreateErr
	}
	c := &Cubemap{
		Name:      label,
		W:         width,
		H:         height,
		MipLevels: renderer.ClampMipLevels(levels, width, height),
	}
	b.Created = append(b.Created, c)
	return c, nil
}

func (b *Backend) UploadCubemap(cubemap renderer.Cubemap, data common.CubemapStagingData) error {
	c, ok := cubemap.(*Cubemap)
	if !ok {
		return errors.New("renderertest: foreign cubemap")
	}
	if c.Destroyed() {
		return fmt.Errorf("renderertest: cubemap %q is destroyed", c.Name)
	}
	if data.Width != c.W || data.Height != c.H {
		return fmt.Errorf("renderertest: size mismatch %dx%d vs %dx%d", data.Width, data.Height, c.W, c.H)
	}
	pix := make([]byte, len(data.Pixels))
	copy(pix, data.Pixels)
	c.UploadedBytes = pix
	b.Uploads = append(b.Uploads, Upload{
		Target:      c,
		Pixels:      pix,
		Width:       data.Width,
		Height:      data.Height,
		FaceOffsets: data.FaceOffsets,
	})
	if data.OnUploaded != nil && !b.SkipUploadCallback {
		data.OnUploaded()
	}
	return nil
}

func (b *Backend) Release() {
	b.Released = true
}

// Live returns the cubemaps that have not been destroyed.
func (b *Backend) Live() []*Cubemap {
	var live []*Cubemap
	for _, c := range b.Created {
		if !c.Destroyed() {
			live = append(live, c)
		}
	}
	return live
}
