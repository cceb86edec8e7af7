package estimation

import (
	"runtime"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-ar/common"
	"github.com/Carmen-Shannon/oxy-ar/engine/ar"
	"github.com/Carmen-Shannon/oxy-ar/engine/ar/artest"
	"github.com/Carmen-Shannon/oxy-ar/engine/renderer/renderertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alphaMarker = 0xAA

// markedFaces builds six w×h faces whose RGB bytes encode (face, texel, byte) and whose
// alpha bytes are all alphaMarker.
func markedFaces(w, h int) [6]*artest.Image {
	var faces [6]*artest.Image
	for f := range faces {
		pix := make([]byte, w*h*srcBytesPerTexel)
		for i := 0; i < w*h; i++ {
			for b := 0; b < srcBytesPerTexel; b++ {
				if b >= dstBytesPerTexel {
					pix[i*srcBytesPerTexel+b] = alphaMarker
					continue
				}
				pix[i*srcBytesPerTexel+b] = byte(f*24 + i*6 + b)
			}
		}
		faces[f] = &artest.Image{W: w, H: h, Pix: pix}
	}
	return faces
}

func asImages(faces [6]*artest.Image) [6]ar.Image {
	var out [6]ar.Image
	for i, f := range faces {
		out[i] = f
	}
	return out
}

func TestStripAlpha(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6, 0xAA, 0xAA, 7, 8, 9, 10, 11, 12, 0xAA, 0xAA}
	dst := make([]byte, 12)
	require.Equal(t, 2, StripAlpha(dst, src))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, dst)

	assert.Equal(t, 1, StripAlpha(make([]byte, 6), src))
	assert.Equal(t, 0, StripAlpha(dst, src[:7]))
}

func TestReconstructPacksFacesWithoutAlpha(t *testing.T) {
	backend := renderertest.New()
	r := NewCubemapReconstructor(backend, 1, nil)
	faces := markedFaces(2, 2)

	c, err := r.Reconstruct(asImages(faces))
	require.NoError(t, err)
	require.Len(t, backend.Uploads, 1)

	up := backend.Uploads[0]
	assert.Same(t, c, up.Target)
	require.Len(t, up.Pixels, 2*2*6*6)
	assert.NotContains(t, up.Pixels, byte(alphaMarker))

	faceSize := 2 * 2 * dstBytesPerTexel
	for f := 0; f < common.CubeFaceCount; f++ {
		assert.Equal(t, f*faceSize, up.FaceOffsets[f])
		for i := 0; i < 4; i++ {
			for b := 0; b < dstBytesPerTexel; b++ {
				assert.Equal(t, byte(f*24+i*6+b), up.Pixels[f*faceSize+i*dstBytesPerTexel+b])
			}
		}
	}

	for _, f := range faces {
		assert.True(t, f.Released)
	}
	// The post-upload callback clears the staging buffer but keeps its storage.
	assert.Empty(t, r.buffer)
	assert.Equal(t, 2*2*6*6, cap(r.buffer))
}

func TestReconstructReusesBufferAndCubemap(t *testing.T) {
	backend := renderertest.New()
	r := NewCubemapReconstructor(backend, 1, nil)

	first, err := r.Reconstruct(asImages(markedFaces(2, 2)))
	require.NoError(t, err)
	second, err := r.Reconstruct(asImages(markedFaces(2, 2)))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, r.BufferAllocations())
	assert.Equal(t, 1, r.CubemapAllocations())
	assert.Len(t, backend.Created, 1)
	assert.Equal(t, uint32(2), first.Levels())

	third, err := r.Reconstruct(asImages(markedFaces(4, 4)))
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.True(t, first.Destroyed())
	assert.False(t, third.Destroyed())
	assert.Equal(t, 2, r.BufferAllocations())
	assert.Equal(t, 2, r.CubemapAllocations())
	assert.Len(t, backend.Live(), 1)
	assert.Same(t, third, r.Cubemap())
}

func TestReconstructWithoutUploadCallbackKeepsBuffer(t *testing.T) {
	backend := renderertest.New()
	backend.SkipUploadCallback = true
	r := NewCubemapReconstructor(backend, 1, nil)

	_, err := r.Reconstruct(asImages(markedFaces(2, 2)))
	require.NoError(t, err)
	assert.Len(t, r.buffer, 2*2*6*6)

	_, err = r.Reconstruct(asImages(markedFaces(2, 2)))
	require.NoError(t, err)
	assert.Equal(t, 1, r.BufferAllocations())
}

func TestReconstructRejectsMalformedFaces(t *testing.T) {
	backend := renderertest.New()
	r := NewCubemapReconstructor(backend, 1, nil)

	faces := markedFaces(2, 2)
	faces[3] = markedFaces(4, 4)[3]
	_, err := r.Reconstruct(asImages(faces))
	assert.ErrorIs(t, err, ErrMalformedCubemap)
	for _, f := range faces {
		assert.True(t, f.Released)
	}

	faces = markedFaces(2, 2)
	faces[5].Pix = faces[5].Pix[:8]
	_, err = r.Reconstruct(asImages(faces))
	assert.ErrorIs(t, err, ErrMalformedCubemap)
	for _, f := range faces {
		assert.True(t, f.Released)
	}

	images := asImages(markedFaces(2, 2))
	images[1] = nil
	_, err = r.Reconstruct(images)
	assert.ErrorIs(t, err, ErrMalformedCubemap)

	assert.Empty(t, backend.Uploads)
	assert.Nil(t, r.Cubemap())
}

func TestReconstructOnWorkerPool(t *testing.T) {
	serialBackend := renderertest.New()
	_, err := NewCubemapReconstructor(serialBackend, 1, nil).Reconstruct(asImages(markedFaces(8, 8)))
	require.NoError(t, err)

	pooledBackend := renderertest.New()
	faces := markedFaces(8, 8)
	pooled := NewCubemapReconstructor(pooledBackend, 4, nil)
	defer pooled.Destroy()
	_, err = pooled.Reconstruct(asImages(faces))
	require.NoError(t, err)

	assert.Equal(t, serialBackend.Uploads[0].Pixels, pooledBackend.Uploads[0].Pixels)
	for _, f := range faces {
		assert.True(t, f.Released)
	}
}

func TestReconstructorDestroy(t *testing.T) {
	backend := renderertest.New()
	r := NewCubemapReconstructor(backend, 1, nil)
	c, err := r.Reconstruct(asImages(markedFaces(2, 2)))
	require.NoError(t, err)

	r.Destroy()
	assert.True(t, c.Destroyed())
	assert.Nil(t, r.Cubemap())
	r.Destroy()
	assert.Equal(t, 1, c.(*renderertest.Cubemap).DestroyCalls)
}

func TestReconstructorDestroyStopsFaceWorkers(t *testing.T) {
	before := runtime.NumGoroutine()

	for range 10 {
		r := NewCubemapReconstructor(renderertest.New(), common.CubeFaceCount, nil)
		_, err := r.Reconstruct(asImages(markedFaces(4, 4)))
		require.NoError(t, err)
		r.Destroy()
		r.Destroy()
	}

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, time.Second, 10*time.Millisecond)
}

func TestReconstructAfterDestroyRunsSerially(t *testing.T) {
	backend := renderertest.New()
	r := NewCubemapReconstructor(backend, 3, nil)
	r.Destroy()

	faces := markedFaces(2, 2)
	c, err := r.Reconstruct(asImages(faces))
	require.NoError(t, err)
	assert.NotNil(t, c)
	for _, f := range faces {
		assert.True(t, f.Released)
	}
	r.Destroy()
}
