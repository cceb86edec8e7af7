package estimation

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the estimator's feature flags.
type Config struct {
	// Enabled turns estimation on. When false Update always returns nil.
	Enabled bool `toml:"enabled"`

	// HDRReflections rebuilds the reflections cubemap from the session every HDR frame.
	HDRReflections bool `toml:"hdr_reflections"`

	// DefaultReflections falls back to the base reflections when HDR reflections are off or unavailable.
	DefaultReflections bool `toml:"default_reflections"`

	// SphericalHarmonics installs estimated (or base) irradiance on the indirect light.
	SphericalHarmonics bool `toml:"spherical_harmonics"`

	// SpecularFilter runs the reconstructed cubemap through the configured SpecularFilter.
	SpecularFilter bool `toml:"specular_filter"`

	// MainLightDirection lets HDR estimates steer the main light.
	MainLightDirection bool `toml:"main_light_direction"`

	// MainLightIntensity lets HDR estimates modulate the main light color and intensity.
	MainLightIntensity bool `toml:"main_light_intensity"`

	// FaceWorkers is the number of workers stripping cubemap faces. 1 or less strips serially.
	FaceWorkers int `toml:"face_workers"`
}

// DefaultConfig returns a Config with every feature enabled and faces stripped serially.
func DefaultConfig() Config {
	return Config{
		Enabled:            true,
		HDRReflections:     true,
		DefaultReflections: true,
		SphericalHarmonics: true,
		SpecularFilter:     true,
		MainLightDirection: true,
		MainLightIntensity: true,
		FaceWorkers:        1,
	}
}

// LoadConfig reads a TOML file over DefaultConfig. Keys missing from the file keep their defaults.
//
// Parameters:
//   - path: the TOML file path
//
// Returns:
//   - Config: the loaded configuration
//   - error: an error if the file cannot be read or parsed
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read estimation config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes TOML over DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse estimation config: %w", err)
	}
	return cfg, nil
}

// Marshal encodes the configuration as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
