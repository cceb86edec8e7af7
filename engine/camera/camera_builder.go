package camera

import (
	"github.com/Carmen-Shannon/oxy-ar/engine/ar"
)

type CameraBuilderOption func(*cameraImpl)

// WithAperture sets the camera's f-number.
//
// Parameters:
//   - aperture: the f-number
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aperture
func WithAperture(aperture float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.aperture = aperture
	}
}

// WithShutterSpeed sets the camera's exposure time in seconds.
//
// Parameters:
//   - shutterSpeed: exposure time in seconds
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's shutter speed
func WithShutterSpeed(shutterSpeed float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.shutterSpeed = shutterSpeed
	}
}

// WithSensitivity sets the camera's ISO sensitivity.
//
// Parameters:
//   - sensitivity: ISO sensitivity
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's sensitivity
func WithSensitivity(sensitivity float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.sensitivity = sensitivity
	}
}

// WithExposureSettings copies all three exposure parameters from a tracking session report.
//
// Parameters:
//   - settings: the device camera exposure settings
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's exposure
func WithExposureSettings(settings ar.ExposureSettings) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.aperture = settings.Aperture
		c.shutterSpeed = settings.ShutterSpeed
		c.sensitivity = settings.Sensitivity
	}
}

// WithName overrides the generated camera name.
func WithName(name string) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.name = name
	}
}
