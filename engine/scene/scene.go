package scene

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-ar/engine/ar"
	"github.com/Carmen-Shannon/oxy-ar/engine/camera"
	"github.com/Carmen-Shannon/oxy-ar/engine/light"
	"github.com/Carmen-Shannon/oxy-ar/engine/light/estimation"
	"github.com/Carmen-Shannon/oxy-ar/engine/profiler"
	"github.com/Carmen-Shannon/oxy-ar/engine/renderer"
	"go.uber.org/zap"
)

// Scene owns the lighting state of an AR view: the main directional light, the render
// camera's exposure and the indirect light currently installed. Each tracked frame is
// passed to OnFrame, which runs light estimation and swaps in the new lighting.
// Thread-safe for concurrent access; OnFrame calls are serialized.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene consumes frames.
	Active() bool

	// SetActive sets whether this scene consumes frames. Inactive scenes ignore OnFrame.
	SetActive(active bool)

	// Camera returns the render camera.
	Camera() camera.Camera

	// MainLight returns the main directional light.
	MainLight() light.Light

	// Estimator returns the light estimator driven by OnFrame.
	Estimator() *estimation.Estimator

	// SetBaseIndirectLight captures the scene's baseline indirect light and installs it
	// until the first estimation arrives.
	//
	// Parameters:
	//   - intensity: the base indirect light intensity
	//   - reflections: the base reflections cubemap, or nil
	SetBaseIndirectLight(intensity float32, reflections renderer.Cubemap)

	// SetBaseSphericalHarmonics sets the baseline irradiance.
	//
	// Parameters:
	//   - sh: 9 RGB triplets in renderer basis order
	SetBaseSphericalHarmonics(sh [light.SphericalHarmonicsLen]float32)

	// Environment returns the installed environment, or nil before any was installed.
	Environment() *estimation.Environment

	// IndirectLight returns the installed indirect light, or nil.
	IndirectLight() light.IndirectLight

	// OnFrame runs light estimation for one frame and applies the result. When nothing new
	// was estimated the current lighting stays in place. The replaced environment's indirect
	// light is destroyed.
	//
	// Parameters:
	//   - session: the tracking session
	//   - frame: the tracked frame
	//
	// Returns:
	//   - estimation.Estimation: the applied estimation, or nil
	//   - error: an error if the estimator has been destroyed
	OnFrame(session ar.Session, frame ar.Frame) (estimation.Estimation, error)

	// LightBuffer marshals the main light and the ambient color for GPU upload.
	//
	// Returns:
	//   - []byte: header followed by the enabled main light
	LightBuffer() []byte

	// IndirectLightBuffer marshals the installed indirect light for GPU upload.
	//
	// Returns:
	//   - []byte: the 160-byte indirect light uniform
	IndirectLightBuffer() []byte

	// ExposureBuffer marshals the camera exposure for GPU upload.
	//
	// Returns:
	//   - []byte: the exposure uniform
	ExposureBuffer() []byte

	// Destroy releases the installed environment and the estimator. Later calls have no effect.
	Destroy()
}

type scene struct {
	mu     *sync.RWMutex
	name   string
	active bool
	logger *zap.SugaredLogger

	cam       camera.Camera
	mainLight light.Light
	estimator *estimation.Estimator
	profiler  *profiler.Profiler

	// Authored main light values; estimations modulate these, never the live light values.
	baseColor     [3]float32
	baseIntensity float32
	ambientColor  [3]float32

	// syncExposure copies the session's camera exposure onto cam before every update.
	syncExposure bool

	estimatorOptions []estimation.EstimatorBuilderOption

	env       *estimation.Environment
	destroyed bool
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new Scene with a default camera, a default main light and an estimator
// configured by the provided options.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:     &sync.RWMutex{},
		name:   name,
		active: true,
		logger: zap.NewNop().Sugar(),
	}
	for _, option := range options {
		option(s)
	}

	if s.cam == nil {
		s.cam = camera.NewCamera()
	}
	if s.mainLight == nil {
		s.mainLight = light.NewLight()
	}
	s.baseColor = s.mainLight.Color()
	s.baseIntensity = s.mainLight.Intensity()

	// Logger goes first so an explicit estimation.WithLogger still wins.
	opts := append([]estimation.EstimatorBuilderOption{estimation.WithLogger(s.logger)}, s.estimatorOptions...)
	s.estimator = estimation.NewEstimator(opts...)
	s.estimatorOptions = nil

	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) MainLight() light.Light {
	return s.mainLight
}

func (s *scene) Estimator() *estimation.Estimator {
	return s.estimator
}

func (s *scene) SetBaseIndirectLight(intensity float32, reflections renderer.Cubemap) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.estimator.SetBaseIndirectLight(intensity, reflections)
	if s.env == nil {
		s.install(s.baseEnvironment())
	}
}

func (s *scene) SetBaseSphericalHarmonics(sh [light.SphericalHarmonicsLen]float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.estimator.SetBaseSphericalHarmonics(sh)
}

func (s *scene) Environment() *estimation.Environment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.env
}

func (s *scene) IndirectLight() light.IndirectLight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.env == nil {
		return nil
	}
	return s.env.IndirectLight
}

func (s *scene) OnFrame(session ar.Session, frame ar.Frame) (estimation.Estimation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active || s.destroyed {
		return nil, nil
	}
	if s.syncExposure && session != nil {
		s.cam.SetExposureSettings(session.CameraExposure())
	}

	start := time.Now()
	est, err := s.estimator.Update(session, frame, s.cam)
	if s.profiler != nil {
		s.profiler.Tick(s.estimator.Stats(), time.Since(start))
	}
	if err != nil {
		return nil, err
	}

	if env := estimation.Apply(est, s.mainLight, s.baseColor, s.baseIntensity); env != nil {
		s.install(env)
	}
	return est, nil
}

// install replaces the current environment, destroying the previous indirect light.
func (s *scene) install(env *estimation.Environment) {
	if s.env == env {
		return
	}
	s.env.Destroy()
	s.env = env
}

// baseEnvironment builds an environment from the estimator's base lighting.
func (s *scene) baseEnvironment() *estimation.Environment {
	env := &estimation.Environment{Cubemap: s.estimator.BaseReflections()}
	env.IndirectLight = light.NewIndirectLight(
		light.WithLabel("base_indirect_light"),
		light.WithIndirectIntensity(s.estimator.BaseIntensity()),
		light.WithReflections(env.Cubemap),
	)
	return env
}

func (s *scene) LightBuffer() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return light.MarshalLightBuffer([]light.Light{s.mainLight}, s.ambientColor)
}

func (s *scene) IndirectLightBuffer() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var il light.IndirectLight
	if s.env != nil {
		il = s.env.IndirectLight
	}
	gpu := light.ToGPUIndirectLight(il)
	return gpu.Marshal()
}

func (s *scene) ExposureBuffer() []byte {
	gpu := camera.NewGPUExposureUniform(s.cam)
	return gpu.Marshal()
}

func (s *scene) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return
	}
	s.destroyed = true
	s.env.Destroy()
	s.env = nil
	s.estimator.Destroy()
	s.logger.Debugw("destroyed scene", "name", s.name)
}
