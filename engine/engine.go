package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-ar/engine/ar"
	"github.com/Carmen-Shannon/oxy-ar/engine/scene"
	"go.uber.org/zap"
)

// ErrNoFrameSource is returned by Step and Run when the engine has no FrameSource.
var ErrNoFrameSource = errors.New("engine: no frame source")

// FrameSource is the tracking session as seen by the frame loop.
type FrameSource interface {
	// Session returns the session frames belong to.
	Session() ar.Session

	// Update returns the latest tracked frame, or nil when no new camera frame is ready.
	Update() (ar.Frame, error)
}

// engine implements the Engine interface.
// A single goroutine pulls frames and drives every scene, so each scene's estimator
// only ever has one caller.
type engine struct {
	frameRateChannel chan time.Duration // Channel for dynamic frame rate updates

	mu      *sync.Mutex
	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	logger *zap.SugaredLogger
	source FrameSource

	frameRate     time.Duration
	frameCallback func(frame ar.Frame, deltaTime float32)

	scenes map[int]scene.Scene
}

// Engine is the frame loop of an AR view.
// It pulls frames from the FrameSource and runs every active scene's light estimation in
// ascending z-index order.
type Engine interface {
	// SetFrameRate sets how often the frame source is polled, in frames per second.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetFrameRate(fps float64)

	// SetFrameCallback registers the function called after every processed frame.
	//
	// Parameters:
	//   - callback: function receiving the frame and the delta time in seconds
	SetFrameCallback(callback func(frame ar.Frame, deltaTime float32))

	// AddScene registers a scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index determining processing order (lower runs first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Step processes one frame synchronously. A nil frame from the source is not an error;
	// the scenes are simply not run.
	//
	// Returns:
	//   - ar.Frame: the processed frame, or nil
	//   - error: a frame source error, or the joined scene errors
	Step() (ar.Frame, error)

	// Run starts the frame loop and blocks until Quit is called.
	//
	// Returns:
	//   - error: ErrNoFrameSource when the engine has no source
	Run() error

	// Quit signals the frame loop to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// The frame rate defaults to 60 frames per second.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		frameRateChannel: make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		mu:               &sync.Mutex{},
		logger:           zap.NewNop().Sugar(),
		scenes:           make(map[int]scene.Scene),
		frameRate:        time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	return e
}

func (e *engine) Run() error {
	if e.source == nil {
		return ErrNoFrameSource
	}
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()

	e.wg.Add(1)
	go e.handleFrames()
	e.wg.Wait()

	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
	return nil
}

// Quit signals the frame goroutine to exit.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handleFrames runs the fixed-rate frame loop in its own goroutine.
// Listens for dynamic rate changes via frameRateChannel and exits when the quit channel is closed.
func (e *engine) handleFrames() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.frameRate)
	defer ticker.Stop()

	lastFrame := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastFrame).Seconds())
			lastFrame = now

			e.processFrame(dt)
		case newRate := <-e.frameRateChannel:
			ticker.Reset(newRate)
			e.frameRate = newRate
		}
	}
}

// processFrame steps one frame and hands it to the frame callback.
// A panic is recovered and logged so a single bad frame never stops the loop.
func (e *engine) processFrame(dt float32) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorw("frame recovered from panic", "panic", r)
		}
	}()

	frame, err := e.Step()
	if err != nil {
		e.logger.Warnw("frame failed", "error", err)
	}
	if frame != nil && e.frameCallback != nil {
		e.frameCallback(frame, dt)
	}
}

func (e *engine) Step() (ar.Frame, error) {
	if e.source == nil {
		return nil, ErrNoFrameSource
	}
	frame, err := e.source.Update()
	if err != nil {
		return nil, fmt.Errorf("failed to update frame source: %w", err)
	}
	if frame == nil {
		return nil, nil
	}

	session := e.source.Session()
	var errs []error
	for _, s := range e.orderedScenes() {
		if !s.Active() {
			continue
		}
		if _, err := s.OnFrame(session, frame); err != nil {
			errs = append(errs, fmt.Errorf("scene %q: %w", s.Name(), err))
		}
	}
	return frame, errors.Join(errs...)
}

// orderedScenes returns the registered scenes in ascending z-index order.
func (e *engine) orderedScenes() []scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()

	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	ordered := make([]scene.Scene, 0, len(keys))
	for _, k := range keys {
		ordered = append(ordered, e.scenes[k])
	}
	return ordered
}

// SetFrameRate sets the frame rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetFrameRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	e.mu.Lock()
	running := e.running
	e.mu.Unlock()

	if running {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.frameRateChannel <- newRate:
		default:
			select {
			case <-e.frameRateChannel:
			default:
			}
			e.frameRateChannel <- newRate
		}
	} else {
		e.frameRate = newRate
	}
}

func (e *engine) SetFrameCallback(callback func(frame ar.Frame, deltaTime float32)) {
	e.frameCallback = callback
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}
