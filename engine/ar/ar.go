// Package ar declares the tracking-session collaborators consumed by the light estimation pipeline.
// Nothing in this package tracks anything; implementations are provided by the platform binding.
package ar

// LightEstimationMode is the lighting estimation mode a session is configured with.
type LightEstimationMode int

const (
	// LightEstimationModeDisabled turns lighting estimation off.
	LightEstimationModeDisabled LightEstimationMode = iota

	// LightEstimationModeAmbientIntensity provides a single color correction and pixel intensity estimate per frame.
	LightEstimationModeAmbientIntensity

	// LightEstimationModeEnvironmentalHDR provides spherical harmonics irradiance, a main directional light
	// and an HDR environment cubemap per frame.
	LightEstimationModeEnvironmentalHDR
)

// String returns a readable name for the mode.
func (m LightEstimationMode) String() string {
	switch m {
	case LightEstimationModeDisabled:
		return "disabled"
	case LightEstimationModeAmbientIntensity:
		return "ambient_intensity"
	case LightEstimationModeEnvironmentalHDR:
		return "environmental_hdr"
	default:
		return "unknown"
	}
}

// LightEstimateState reports whether a light estimate may be used.
type LightEstimateState int

const (
	LightEstimateStateNotValid LightEstimateState = iota
	LightEstimateStateValid
)

// Config is the subset of session configuration the light estimation pipeline reads.
type Config struct {
	LightEstimationMode LightEstimationMode
}

// ExposureSettings holds the physical exposure parameters of the device camera.
type ExposureSettings struct {
	// Aperture is the f-number (e.g. 16 for f/16).
	Aperture float32
	// ShutterSpeed is the exposure time in seconds.
	ShutterSpeed float32
	// Sensitivity is the ISO sensitivity.
	Sensitivity float32
}

// Image is one face of an environment cubemap.
// Pixels are interleaved RGBA half-float texels, 8 bytes each, row-major without padding.
type Image interface {
	// Width returns the width of the image in pixels.
	Width() int

	// Height returns the height of the image in pixels.
	Height() int

	// Bytes returns the raw RGBA half-float texel data. The slice is only valid until Release is called.
	Bytes() []byte

	// Release returns the image to the session. Bytes must not be accessed afterwards.
	Release()
}

// LightEstimate is the lighting estimate produced by the session for one frame.
type LightEstimate interface {
	// State returns whether the estimate is valid.
	State() LightEstimateState

	// Timestamp returns the monotonic timestamp of the estimate in nanoseconds.
	Timestamp() int64

	// ColorCorrection returns the gamma-encoded ambient color correction (r, g, b) scale
	// and the average pixel intensity as the fourth component.
	ColorCorrection() [4]float32

	// AmbientSphericalHarmonics returns the 27 irradiance coefficients (9 RGB triplets),
	// or nil when the session does not provide them.
	AmbientSphericalHarmonics() []float32

	// MainLightDirection returns the direction towards the main light, if available.
	MainLightDirection() ([3]float32, bool)

	// MainLightIntensity returns the RGB intensity of the main light, if available.
	MainLightIntensity() ([3]float32, bool)

	// AcquireCubemap acquires the six environment cubemap faces in +X, -X, +Y, -Y, +Z, -Z order.
	// Each acquired image must be released by the caller.
	//
	// Returns:
	//   - [6]Image: the faces
	//   - error: non-nil when the images cannot be acquired, e.g. tracking is too poor
	AcquireCubemap() ([6]Image, error)
}

// Frame is a single tracked camera frame.
type Frame interface {
	Timestamp() int64
	LightEstimate() LightEstimate
}

// Session is the tracking session.
type Session interface {
	// Config returns the current session configuration.
	Config() Config

	// IsConfiguredForLightEstimation reports whether the session has lighting estimation configured at all.
	IsConfiguredForLightEstimation() bool

	// CameraExposure returns the exposure settings of the device camera.
	CameraExposure() ExposureSettings
}
