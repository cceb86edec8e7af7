package light

import (
	"github.com/Carmen-Shannon/oxy-ar/common"
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	direction    [3]float32
	color        [3]float32
	intensity    float32
	enabled      bool
	castsShadows bool
}

// Light defines the interface for the scene's main directional light.
//
// The main light stands in for the dominant real-world light source (the sun,
// a ceiling lamp). Its base color and intensity are authored by the application;
// light estimation modulates them every frame through SetColor, SetIntensity and
// SetDirection.
type Light interface {
	// Direction returns the normalized direction the light travels in.
	//
	// Returns:
	//   - [3]float32: normalized direction as (x, y, z)
	Direction() [3]float32

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Intensity returns the illuminance of the light in lux.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// Enabled returns whether this light is active for rendering.
	// Disabled lights are skipped during GPU buffer marshaling.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// CastsShadows returns whether this light is eligible for shadow map generation.
	//
	// Returns:
	//   - bool: true if the light casts shadows
	CastsShadows() bool

	// SetDirection sets the direction of the light and normalizes it.
	//
	// Parameters:
	//   - x, y, z: direction components (will be normalized)
	SetDirection(x, y, z float32)

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - r, g, b: color components
	SetColor(r, g, b float32)

	// SetIntensity sets the illuminance of the light.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)

	// SetEnabled enables or disables the light for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetCastsShadows sets whether the light is eligible for shadow mapping.
	//
	// Parameters:
	//   - castsShadows: true to enable shadow casting
	SetCastsShadows(castsShadows bool)
}

var _ Light = &lightImpl{}

// DefaultMainLightIntensity is the illuminance of an overcast day, a neutral starting point for AR scenes.
const DefaultMainLightIntensity float32 = 100_000

// NewLight creates a new directional Light pointing straight down with sensible defaults and
// any provided options applied.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(opts ...LightBuilderOption) Light {
	l := &lightImpl{
		direction:    [3]float32{0, -1, 0},
		color:        [3]float32{1, 1, 1},
		intensity:    DefaultMainLightIntensity,
		enabled:      true,
		castsShadows: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Direction() [3]float32 {
	return l.direction
}

func (l *lightImpl) Color() [3]float32 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) CastsShadows() bool {
	return l.castsShadows
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.direction = common.Normalize3([3]float32{x, y, z})
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

func (l *lightImpl) SetCastsShadows(castsShadows bool) {
	l.castsShadows = castsShadows
}
