package estimation

import (
	"github.com/Carmen-Shannon/oxy-ar/engine/renderer"
	"go.uber.org/zap"
)

// EstimatorBuilderOption is a function that configures an Estimator during construction.
type EstimatorBuilderOption func(*Estimator)

// WithConfig replaces the feature flags. The default is DefaultConfig.
//
// Parameters:
//   - cfg: the configuration
//
// Returns:
//   - EstimatorBuilderOption: a function that applies the configuration
func WithConfig(cfg Config) EstimatorBuilderOption {
	return func(e *Estimator) {
		e.cfg = cfg
	}
}

// WithLogger sets the logger. The default discards everything.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - EstimatorBuilderOption: a function that applies the logger
func WithLogger(logger *zap.SugaredLogger) EstimatorBuilderOption {
	return func(e *Estimator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTextureBackend sets the backend HDR reflections cubemaps are built on.
// Without a backend HDR frames fall back as if the cubemap were unavailable.
//
// Parameters:
//   - backend: the texture backend
//
// Returns:
//   - EstimatorBuilderOption: a function that applies the backend
func WithTextureBackend(backend renderer.TextureBackend) EstimatorBuilderOption {
	return func(e *Estimator) {
		e.backend = backend
	}
}

// WithSpecularFilter sets the filter reconstructed cubemaps are passed through when
// Config.SpecularFilter is set.
//
// Parameters:
//   - filter: the specular filter
//
// Returns:
//   - EstimatorBuilderOption: a function that applies the filter
func WithSpecularFilter(filter SpecularFilter) EstimatorBuilderOption {
	return func(e *Estimator) {
		e.specularFilter = filter
	}
}

// WithFaceWorkers overrides Config.FaceWorkers.
func WithFaceWorkers(n int) EstimatorBuilderOption {
	return func(e *Estimator) {
		e.faceWorkers = n
	}
}
