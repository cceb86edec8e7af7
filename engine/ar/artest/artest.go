// Package artest provides in-memory implementations of the ar collaborators for tests and demos.
package artest

import (
	"encoding/binary"
	"errors"

	"github.com/Carmen-Shannon/oxy-ar/common"
	"github.com/Carmen-Shannon/oxy-ar/engine/ar"
)

// ErrNoCubemap is returned by LightEstimate.AcquireCubemap when no faces were configured.
var ErrNoCubemap = errors.New("artest: no cubemap faces")

// Image is an in-memory cubemap face.
type Image struct {
	W, H     int
	Pix      []byte
	Released bool
}

var _ ar.Image = &Image{}

// NewFaceImage creates a w×h face whose every texel is the given RGBA color, stored as half floats.
func NewFaceImage(w, h int, rgba [4]float32) *Image {
	pix := make([]byte, w*h*8)
	for i := 0; i < w*h; i++ {
		for c := 0; c < 4; c++ {
			binary.LittleEndian.PutUint16(pix[i*8+c*2:], common.Float32ToHalf(rgba[c]))
		}
	}
	return &Image{W: w, H: h, Pix: pix}
}

// NewFaceImageFunc creates a w×h face whose texels are produced by fn(x, y).
func NewFaceImageFunc(w, h int, fn func(x, y int) [4]float32) *Image {
	pix := make([]byte, w*h*8)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			rgba := fn(x, y)
			off := (y*w + x) * 8
			for c := 0; c < 4; c++ {
				binary.LittleEndian.PutUint16(pix[off+c*2:], common.Float32ToHalf(rgba[c]))
			}
		}
	}
	return &Image{W: w, H: h, Pix: pix}
}

func (i *Image) Width() int { return i.W }
func (i *Image) Height() int { return i.H }
func (i *Image) Bytes() []byte { return i.Pix }
func (i *Image) Release() { i.Released = true }

// LightEstimate is a configurable light estimate.
type LightEstimate struct {
	EstimateState      ar.LightEstimateState
	EstimateTimestamp  int64
	Correction         [4]float32
	SphericalHarmonics []float32
	Direction          *[3]float32
	Intensity          *[3]float32

	// Faces are handed out by AcquireCubemap. A nil first face means no cubemap.
	Faces [6]*Image
	// CubemapErr, when set, is returned by AcquireCubemap.
	CubemapErr error
	// Acquisitions counts AcquireCubemap calls.
	Acquisitions int
}

var _ ar.LightEstimate = &LightEstimate{}

func (l *LightEstimate) State() ar.LightEstimateState { return l.EstimateState }
func (l *LightEstimate) Timestamp() int64 { return l.EstimateTimestamp }
func (l *LightEstimate) ColorCorrection() [4]float32 { return l.Correction }
func (l *LightEstimate) AmbientSphericalHarmonics() []float32 { return l.SphericalHarmonics }

func (l *LightEstimate) MainLightDirection() ([3]float32, bool) {
	if l.Direction == nil {
		return [3]float32{}, false
	}
	return *l.Direction, true
}

func (l *LightEstimate) MainLightIntensity() ([3]float32, bool) {
	if l.Intensity == nil {
		return [3]float32{}, false
	}
	return *l.Intensity, true
}

func (l *LightEstimate) AcquireCubemap() ([6]ar.Image, error) {
	l.Acquisitions++
	var faces [6]ar.Image
	if l.CubemapErr != nil {
		return faces, l.CubemapErr
	}
	if l.Faces[0] == nil {
		return faces, ErrNoCubemap
	}
	for i, f := range l.Faces {
		faces[i] = f
	}
	return faces, nil
}

// Frame is a fixed frame.
type Frame struct {
	FrameTimestamp int64
	Estimate       ar.LightEstimate
}

var _ ar.Frame = &Frame{}

func (f *Frame) Timestamp() int64 { return f.FrameTimestamp }
func (f *Frame) LightEstimate() ar.LightEstimate { return f.Estimate }

// Session is a session with mutable configuration.
type Session struct {
	Cfg      ar.Config
	Exposure ar.ExposureSettings
	Unwired  bool // when true IsConfiguredForLightEstimation reports false
}

var _ ar.Session = &Session{}

// NewSession creates a session configured with the given mode and sunny-16 exposure.
func NewSession(mode ar.LightEstimationMode) *Session {
	return &Session{
		Cfg:      ar.Config{LightEstimationMode: mode},
		Exposure: ar.ExposureSettings{Aperture: 16, ShutterSpeed: 1.0 / 125.0, Sensitivity: 100},
	}
}

func (s *Session) Config() ar.Config { return s.Cfg }
func (s *Session) IsConfiguredForLightEstimation() bool { return !s.Unwired }
func (s *Session) CameraExposure() ar.ExposureSettings { return s.Exposure }

// Source replays a fixed list of frames, one per Update call.
type Source struct {
	Sess   ar.Session
	Frames []ar.Frame
	// Err, when set, is returned by every Update call.
	Err error
	// Updates counts Update calls.
	Updates int
}

// Session returns the session frames belong to.
func (s *Source) Session() ar.Session { return s.Sess }

// Update returns the next frame, or nil once all frames were handed out.
func (s *Source) Update() (ar.Frame, error) {
	s.Updates++
	if s.Err != nil {
		return nil, s.Err
	}
	if len(s.Frames) == 0 {
		return nil, nil
	}
	f := s.Frames[0]
	s.Frames = s.Frames[1:]
	return f, nil
}
