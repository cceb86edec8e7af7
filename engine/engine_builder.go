package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-ar/engine/scene"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithFrameRate sets how often the frame source is polled, in frames per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target frames per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.frameRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithFrameSource sets the tracking session the engine pulls frames from.
//
// Parameters:
//   - source: the frame source
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameSource(source FrameSource) EngineBuilderOption {
	return func(e *engine) {
		e.source = source
	}
}

// WithLogger sets the logger for frame failures.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *zap.SugaredLogger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithScene registers a scene at the given z-index key during engine construction.
// Scenes are processed in ascending key order.
//
// Parameters:
//   - key: the z-index determining processing order (lower runs first)
//   - s: the Scene to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scenes[key] = s
	}
}
