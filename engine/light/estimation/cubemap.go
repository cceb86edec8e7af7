package estimation

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-ar/common"
	"github.com/Carmen-Shannon/oxy-ar/engine/ar"
	"github.com/Carmen-Shannon/oxy-ar/engine/renderer"
	"go.uber.org/zap"
)

const (
	// srcBytesPerTexel is one RGBA half-float texel as produced by the session.
	srcBytesPerTexel = 8
	// dstBytesPerTexel is one RGB half-float texel as uploaded.
	dstBytesPerTexel = 6
)

// CubemapReconstructor rebuilds the session's HDR environment faces into a reflections cubemap.
//
// It owns one staging buffer and one cubemap which are reused across frames while the face
// size stays the same. It is not safe for concurrent use; Reconstruct and Destroy must be
// called from the render loop only.
type CubemapReconstructor struct {
	backend renderer.TextureBackend
	logger  *zap.SugaredLogger
	label   string

	pool        worker.DynamicWorkerPool
	poolWorkers int

	buffer  []byte
	cubemap renderer.Cubemap

	bufferAllocations  int
	cubemapAllocations int
}

// NewCubemapReconstructor creates a reconstructor uploading through backend.
//
// Parameters:
//   - backend: the texture backend cubemaps are created on
//   - faceWorkers: number of workers stripping faces concurrently; 1 or less strips serially
//   - logger: the logger for allocation events
//
// Returns:
//   - *CubemapReconstructor: the reconstructor
func NewCubemapReconstructor(backend renderer.TextureBackend, faceWorkers int, logger *zap.SugaredLogger) *CubemapReconstructor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	r := &CubemapReconstructor{
		backend: backend,
		logger:  logger,
		label:   "Environmental HDR Reflections",
	}
	if faceWorkers > 1 {
		r.poolWorkers = min(faceWorkers, common.CubeFaceCount)
		r.pool = worker.NewDynamicWorkerPool(r.poolWorkers, common.CubeFaceCount, 1*time.Second)
		logger.Debugw("stripping cubemap faces concurrently", "workers", r.poolWorkers)
	}
	return r
}

// Reconstruct strips the alpha channel from the six RGBA half-float faces, packs them into the
// staging buffer and uploads them into the cached cubemap. Every face is released once its
// bytes are consumed, including on error.
//
// Parameters:
//   - faces: the six faces in +X, -X, +Y, -Y, +Z, -Z order
//
// Returns:
//   - renderer.Cubemap: the filled cubemap
//   - error: ErrMalformedCubemap for inconsistent faces, or a backend error
func (r *CubemapReconstructor) Reconstruct(faces [common.CubeFaceCount]ar.Image) (renderer.Cubemap, error) {
	if err := validateFaces(faces); err != nil {
		releaseFaces(faces)
		return nil, err
	}

	width, height := faces[0].Width(), faces[0].Height()
	faceSize := width * height * dstBytesPerTexel
	size := faceSize * common.CubeFaceCount

	if cap(r.buffer) != size {
		r.buffer = make([]byte, size)
		r.bufferAllocations++
		r.logger.Debugw("allocated cubemap staging buffer", "bytes", size)
	}
	r.buffer = r.buffer[:size]

	var offsets [common.CubeFaceCount]int
	for i := range faces {
		offsets[i] = i * faceSize
	}
	if err := r.packFaces(faces, offsets, faceSize); err != nil {
		return nil, err
	}

	if err := r.ensureCubemap(uint32(width), uint32(height)); err != nil {
		return nil, err
	}

	err := r.backend.UploadCubemap(r.cubemap, common.CubemapStagingData{
		Pixels:      r.buffer,
		Width:       uint32(width),
		Height:      uint32(height),
		FaceOffsets: offsets,
		OnUploaded: func() {
			r.buffer = r.buffer[:0]
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload cubemap: %w", err)
	}
	return r.cubemap, nil
}

// packFaces strips every face into its slot of the staging buffer, on the worker pool when one is configured.
func (r *CubemapReconstructor) packFaces(faces [common.CubeFaceCount]ar.Image, offsets [common.CubeFaceCount]int, faceSize int) error {
	var errs [common.CubeFaceCount]error
	strip := func(i int) {
		defer faces[i].Release()
		dst := r.buffer[offsets[i] : offsets[i]+faceSize]
		if n := StripAlpha(dst, faces[i].Bytes()); n*dstBytesPerTexel != faceSize {
			errs[i] = fmt.Errorf("%w: face %d holds %d of %d texels", ErrMalformedCubemap, i, n, faceSize/dstBytesPerTexel)
		}
	}

	if r.poolWorkers == 0 {
		for i := range faces {
			strip(i)
		}
		return errors.Join(errs[:]...)
	}

	// Faces write disjoint ranges of the buffer; the WaitGroup is the per-frame barrier.
	var wg sync.WaitGroup
	for i := range faces {
		wg.Add(1)
		face := i
		r.pool.SubmitTask(worker.Task{
			ID: face,
			Do: func() (any, error) {
				defer wg.Done()
				strip(face)
				return nil, errs[face]
			},
		})
	}
	wg.Wait()
	return errors.Join(errs[:]...)
}

// ensureCubemap reuses the cached cubemap when the face size matches, otherwise destroys it and creates a new one.
func (r *CubemapReconstructor) ensureCubemap(width, height uint32) error {
	if r.cubemap != nil && r.cubemap.Width() == width && r.cubemap.Height() == height {
		return nil
	}
	if r.cubemap != nil {
		r.cubemap.Destroy()
		r.cubemap = nil
	}
	c, err := r.backend.CreateCubemap(r.label, width, height, renderer.FullMipChain)
	if err != nil {
		return fmt.Errorf("failed to create cubemap: %w", err)
	}
	r.cubemap = c
	r.cubemapAllocations++
	r.logger.Debugw("created reflections cubemap", "width", width, "height", height, "levels", c.Levels())
	return nil
}

// Cubemap returns the cached cubemap, or nil before the first successful reconstruction.
func (r *CubemapReconstructor) Cubemap() renderer.Cubemap {
	return r.cubemap
}

// BufferAllocations returns how many times the staging buffer has been allocated.
func (r *CubemapReconstructor) BufferAllocations() int {
	return r.bufferAllocations
}

// CubemapAllocations returns how many cubemaps have been created.
func (r *CubemapReconstructor) CubemapAllocations() int {
	return r.cubemapAllocations
}

// Destroy releases the cached cubemap and staging buffer, and shuts down the face workers.
func (r *CubemapReconstructor) Destroy() {
	if r.cubemap != nil {
		r.cubemap.Destroy()
		r.cubemap = nil
	}
	r.buffer = nil
	r.stopWorkers()
}

// stopWorkers blocks until every face worker goroutine has exited.
// A pool worker only exits on its own id and Stop hands ids to whichever worker reads first,
// so each worker is retired from inside a task instead.
func (r *CubemapReconstructor) stopWorkers() {
	if r.poolWorkers == 0 {
		return
	}
	r.pool.ClearTaskQueue()

	var wg sync.WaitGroup
	for i := range r.poolWorkers {
		wg.Add(1)
		r.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				runtime.Goexit()
				return nil, nil
			},
		})
	}
	wg.Wait()
	r.pool.Stop()

	r.logger.Debugw("stopped cubemap face workers", "workers", r.poolWorkers)
	r.poolWorkers = 0
	r.pool = nil
}

// StripAlpha copies RGBA half-float texels from src into dst as RGB half-float texels,
// reading 6 bytes and skipping the 2 alpha bytes of every source texel. It stops when
// either src or dst runs out.
//
// Parameters:
//   - dst: the packed RGB destination
//   - src: the interleaved RGBA source
//
// Returns:
//   - int: the number of texels copied
func StripAlpha(dst, src []byte) int {
	texels := min(len(src)/srcBytesPerTexel, len(dst)/dstBytesPerTexel)
	for i := 0; i < texels; i++ {
		s := i * srcBytesPerTexel
		d := i * dstBytesPerTexel
		copy(dst[d:d+dstBytesPerTexel], src[s:s+dstBytesPerTexel])
	}
	return texels
}

func validateFaces(faces [common.CubeFaceCount]ar.Image) error {
	for i, f := range faces {
		if f == nil {
			return fmt.Errorf("%w: face %d is missing", ErrMalformedCubemap, i)
		}
	}
	width, height := faces[0].Width(), faces[0].Height()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: empty face size %dx%d", ErrMalformedCubemap, width, height)
	}
	for i, f := range faces[1:] {
		if f.Width() != width || f.Height() != height {
			return fmt.Errorf("%w: face %d is %dx%d, face 0 is %dx%d", ErrMalformedCubemap, i+1, f.Width(), f.Height(), width, height)
		}
	}
	return nil
}

func releaseFaces(faces [common.CubeFaceCount]ar.Image) {
	for _, f := range faces {
		if f != nil {
			f.Release()
		}
	}
}
