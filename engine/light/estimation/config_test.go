package estimation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigKeepsDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("hdr_reflections = false\nface_workers = 3\n"))
	require.NoError(t, err)

	want := DefaultConfig()
	want.HDRReflections = false
	want.FaceWorkers = 3
	assert.Equal(t, want, cfg)
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpecularFilter = false
	cfg.MainLightDirection = false

	data, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "specular_filter = false")

	path := filepath.Join(t.TempDir(), "estimation.toml")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = ParseConfig([]byte("enabled = maybe"))
	assert.Error(t, err)
}
