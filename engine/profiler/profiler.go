package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-ar/engine/light/estimation"
	"go.uber.org/zap"
)

// Report is one interval of light estimation statistics.
type Report struct {
	Frames           int
	Updates          int
	Skipped          int
	CubemapRebuilds  int
	CubemapFallbacks int
	MeanUpdate       time.Duration
	MaxUpdate        time.Duration
	AllocRateMB      float64
	HeapMB           float64
}

// Profiler tracks the cost of the light estimation loop.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	logger         *zap.SugaredLogger
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastTotalAlloc uint64
	now            func() time.Time

	totalUpdate time.Duration
	maxUpdate   time.Duration
	lastStats   estimation.Stats
	last        Report
}

// NewProfiler creates a new Profiler logging through logger.
// Update interval defaults to 1 second.
//
// Parameters:
//   - logger: the logger; nil discards the reports
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *zap.SugaredLogger) *Profiler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Profiler{
		logger:         logger,
		lastTime:       time.Now(),
		updateInterval: time.Second,
		now:            time.Now,
	}
}

// SetInterval changes how often reports are produced.
func (p *Profiler) SetInterval(d time.Duration) {
	p.updateInterval = d
}

// Tick should be called once per frame after the estimator ran.
// Logs a Report when the update interval has elapsed. Counts are the difference between
// stats and the snapshot of the previous report.
//
// Parameters:
//   - stats: the estimator's running counters
//   - updateTime: how long the estimator took this frame
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(stats estimation.Stats, updateTime time.Duration) bool {
	p.frameCount++
	p.totalUpdate += updateTime
	p.maxUpdate = max(p.maxUpdate, updateTime)

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc

	r := Report{
		Frames:           p.frameCount,
		Updates:          stats.Updates - p.lastStats.Updates,
		Skipped:          stats.Skipped - p.lastStats.Skipped,
		CubemapRebuilds:  stats.CubemapRebuilds - p.lastStats.CubemapRebuilds,
		CubemapFallbacks: stats.CubemapFallbacks - p.lastStats.CubemapFallbacks,
		MeanUpdate:       p.totalUpdate / time.Duration(p.frameCount),
		MaxUpdate:        p.maxUpdate,
		AllocRateMB:      float64(allocDelta) / 1024 / 1024 / elapsed.Seconds(),
		HeapMB:           float64(p.memStats.Alloc) / 1024 / 1024,
	}
	p.logger.Infow("light estimation",
		"frames", r.Frames,
		"updates", r.Updates,
		"skipped", r.Skipped,
		"cubemapRebuilds", r.CubemapRebuilds,
		"cubemapFallbacks", r.CubemapFallbacks,
		"meanUpdate", r.MeanUpdate,
		"maxUpdate", r.MaxUpdate,
		"allocRateMB", r.AllocRateMB,
		"heapMB", r.HeapMB,
	)

	p.last = r
	p.frameCount = 0
	p.totalUpdate = 0
	p.maxUpdate = 0
	p.lastTime = currentTime
	p.lastStats = stats
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recently logged report.
func (p *Profiler) Last() Report {
	return p.last
}
