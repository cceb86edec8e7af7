package scene

import (
	"github.com/Carmen-Shannon/oxy-ar/engine/camera"
	"github.com/Carmen-Shannon/oxy-ar/engine/light"
	"github.com/Carmen-Shannon/oxy-ar/engine/light/estimation"
	"github.com/Carmen-Shannon/oxy-ar/engine/profiler"
	"go.uber.org/zap"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene consumes frames. Scenes are active by default.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithCamera sets the render camera whose exposure scales HDR estimates.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCamera(cam camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		s.cam = cam
	}
}

// WithMainLight sets the main directional light. Its color and intensity at construction
// become the base values estimations are applied to.
//
// Parameters:
//   - l: the main light
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMainLight(l light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.mainLight = l
	}
}

// WithAmbientColor sets the ambient color written into the light buffer header.
//
// Parameters:
//   - r, g, b: the ambient color
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAmbientColor(r, g, b float32) SceneBuilderOption {
	return func(s *scene) {
		s.ambientColor = [3]float32{r, g, b}
	}
}

// WithSessionExposure copies the session's camera exposure onto the render camera before
// every estimation, so virtual content is exposed like the camera feed.
//
// Parameters:
//   - enabled: whether to copy the exposure
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSessionExposure(enabled bool) SceneBuilderOption {
	return func(s *scene) {
		s.syncExposure = enabled
	}
}

// WithEstimatorOptions configures the scene's light estimator.
//
// Parameters:
//   - opts: the estimator options
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithEstimatorOptions(opts ...estimation.EstimatorBuilderOption) SceneBuilderOption {
	return func(s *scene) {
		s.estimatorOptions = append(s.estimatorOptions, opts...)
	}
}

// WithLogger sets the logger shared by the scene and its estimator.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(logger *zap.SugaredLogger) SceneBuilderOption {
	return func(s *scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithProfiler attaches a profiler ticked after every estimation.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) SceneBuilderOption {
	return func(s *scene) {
		s.profiler = p
	}
}
