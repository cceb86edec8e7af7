package renderertest

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-ar/common"
	"github.com/Carmen-Shannon/oxy-ar/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendRecordsUploads(t *testing.T) {
	b := New()
	c, err := b.CreateCubemap("env", 4, 4, renderer.FullMipChain)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), c.Levels())

	uploaded := false
	pix := make([]byte, 4*4*6*common.CubeFaceCount)
	pix[0] = 9
	err = b.UploadCubemap(c, common.CubemapStagingData{
		Pixels:     pix,
		Width:      4,
		Height:     4,
		OnUploaded: func() { uploaded = true },
	})
	require.NoError(t, err)
	assert.True(t, uploaded)
	require.Len(t, b.Uploads, 1)
	pix[0] = 0
	assert.Equal(t, byte(9), b.Uploads[0].Pixels[0])

	c.Destroy()
	assert.Empty(t, b.Live())
	assert.Error(t, b.UploadCubemap(c, common.CubemapStagingData{Width: 4, Height: 4}))
}

func TestBackendCreateError(t *testing.T) {
	b := New()
	b.CreateErr = errors.New("out of memory")
	_, err := b.CreateCubemap("env", 4, 4, 1)
	assert.ErrorIs(t, err, b.CreateErr)
}
