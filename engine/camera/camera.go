package camera

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-ar/engine/ar"
	"github.com/chewxy/math32"
)

// cameraCount is an atomic counter used to generate unique camera names.
var cameraCount atomic.Uint64

const (
	// DefaultAperture is the default f-number (sunny 16).
	DefaultAperture float32 = 16.0
	// DefaultShutterSpeed is the default exposure time in seconds.
	DefaultShutterSpeed float32 = 1.0 / 125.0
	// DefaultSensitivity is the default ISO sensitivity.
	DefaultSensitivity float32 = 100.0
)

// EV100 computes the exposure value at ISO 100 for the given camera settings:
// log2((aperture² / shutterSpeed) * (100 / sensitivity)).
//
// Parameters:
//   - aperture: the f-number
//   - shutterSpeed: exposure time in seconds
//   - sensitivity: ISO sensitivity
//
// Returns:
//   - float32: the EV100 value
func EV100(aperture, shutterSpeed, sensitivity float32) float32 {
	return math32.Log2((aperture * aperture) / shutterSpeed * 100.0 / sensitivity)
}

// ExposureFactor returns 1 / ev100, the factor used to convert unit-less AR light
// estimates into the renderer's photometric units. An ev100 of zero yields +Inf.
//
// Parameters:
//   - ev100: the exposure value at ISO 100
//
// Returns:
//   - float32: the exposure factor
func ExposureFactor(ev100 float32) float32 {
	return 1.0 / ev100
}

// Illuminance returns the illuminance in lux that yields a mid-grey exposure at ev100.
func Illuminance(ev100 float32) float32 {
	return 2.5 * math32.Pow(2.0, ev100)
}

// Luminance returns the luminance in cd/m² that yields a mid-grey exposure at ev100.
func Luminance(ev100 float32) float32 {
	return math32.Pow(2.0, ev100-3.0)
}

type cameraImpl struct {
	mu   *sync.Mutex
	name string

	aperture     float32
	shutterSpeed float32
	sensitivity  float32
}

// Camera defines the exposure model of the render camera.
// The light estimation pipeline reads it to keep estimated light intensities
// consistent with how the renderer exposes virtual content.
type Camera interface {
	// Name returns the unique name of this camera.
	Name() string

	// Aperture returns the f-number.
	//
	// Returns:
	//   - float32: the aperture
	Aperture() float32

	// ShutterSpeed returns the exposure time in seconds.
	//
	// Returns:
	//   - float32: the shutter speed
	ShutterSpeed() float32

	// Sensitivity returns the ISO sensitivity.
	//
	// Returns:
	//   - float32: the sensitivity
	Sensitivity() float32

	// SetExposure sets all three exposure parameters at once.
	//
	// Parameters:
	//   - aperture: the f-number
	//   - shutterSpeed: exposure time in seconds
	//   - sensitivity: ISO sensitivity
	SetExposure(aperture, shutterSpeed, sensitivity float32)

	// SetExposureSettings copies the exposure parameters reported by the tracking session.
	//
	// Parameters:
	//   - settings: the device camera exposure settings
	SetExposureSettings(settings ar.ExposureSettings)

	// EV100 returns the exposure value at ISO 100 of the current settings.
	EV100() float32

	// ExposureFactor returns 1 / EV100 of the current settings.
	ExposureFactor() float32

	// Illuminance returns the illuminance matching the current exposure.
	Illuminance() float32

	// Luminance returns the luminance matching the current exposure.
	Luminance() float32
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with sunny-16 exposure defaults and any provided options applied.
//
// Parameters:
//   - options: variadic list of CameraBuilderOption functions to configure the camera
//
// Returns:
//   - Camera: a new Camera instance
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:           &sync.Mutex{},
		name:         "camera_" + strconv.FormatUint(cameraCount.Load(), 10),
		aperture:     DefaultAperture,
		shutterSpeed: DefaultShutterSpeed,
		sensitivity:  DefaultSensitivity,
	}
	for _, option := range options {
		option(c)
	}
	cameraCount.Add(1)
	return c
}

func (c *cameraImpl) Name() string {
	return c.name
}

func (c *cameraImpl) Aperture() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aperture
}

func (c *cameraImpl) ShutterSpeed() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shutterSpeed
}

func (c *cameraImpl) Sensitivity() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sensitivity
}

func (c *cameraImpl) SetExposure(aperture, shutterSpeed, sensitivity float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aperture = aperture
	c.shutterSpeed = shutterSpeed
	c.sensitivity = sensitivity
}

func (c *cameraImpl) SetExposureSettings(settings ar.ExposureSettings) {
	c.SetExposure(settings.Aperture, settings.ShutterSpeed, settings.Sensitivity)
}

func (c *cameraImpl) EV100() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return EV100(c.aperture, c.shutterSpeed, c.sensitivity)
}

func (c *cameraImpl) ExposureFactor() float32 {
	return ExposureFactor(c.EV100())
}

func (c *cameraImpl) Illuminance() float32 {
	return Illuminance(c.EV100())
}

func (c *cameraImpl) Luminance() float32 {
	return Luminance(c.EV100())
}
