package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// Stats is one reporting window of a Profiler.
type Stats struct {
	// FPS is the rate of presented frames.
	FPS float64
	// UPS is the rate of content updates.
	UPS float64
	// Skipped is the number of frames dropped in the window.
	Skipped int
	// HeapMB is the live heap size.
	HeapMB float64
	// AllocRateMB is the heap allocation rate in MB per second.
	AllocRateMB float64
	// GCCount is the total number of completed collections.
	GCCount uint32
	// MaxPauseUs is the longest collection pause in the window.
	MaxPauseUs uint64
}

// Profiler tracks update, render and skipped-frame rates plus memory statistics.
// Outputs stats to the engine logger at a configurable interval.
type Profiler struct {
	updates  int
	renders  int
	skipped  int
	lastTime time.Time
	interval time.Duration
	now      func() time.Time

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		interval: time.Second,
		now:      time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Update records one content update.
func (p *Profiler) Update() { p.updates++ }

// Render records one presented frame.
func (p *Profiler) Render() { p.renders++ }

// Skip records one frame that was dropped instead of presented.
func (p *Profiler) Skip() { p.skipped++ }

// Tick should be called once per display tick.
// Logs performance statistics when the update interval has elapsed.
//
// Returns:
//   - Stats: the statistics of the window that just closed
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() (Stats, bool) {
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.interval || elapsed <= 0 {
		return Stats{}, false
	}
	seconds := elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	stats := Stats{
		FPS:         float64(p.renders) / seconds,
		UPS:         float64(p.updates) / seconds,
		Skipped:     p.skipped,
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / seconds,
		GCCount:     p.memStats.NumGC,
	}

	// PauseNs is a circular buffer of the last 256 GC pauses.
	startIdx := p.lastGCCount
	if stats.GCCount-startIdx > 256 {
		startIdx = stats.GCCount - 256
	}
	for i := startIdx; i < stats.GCCount; i++ {
		stats.MaxPauseUs = max(stats.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
	}

	common.Logger().Info("profiler",
		"fps", stats.FPS,
		"ups", stats.UPS,
		"skipped", stats.Skipped,
		"heap_mb", stats.HeapMB,
		"alloc_mb_s", stats.AllocRateMB,
		"gc", stats.GCCount,
		"max_pause_us", stats.MaxPauseUs,
	)

	p.updates, p.renders, p.skipped = 0, 0, 0
	p.lastTime = currentTime
	p.lastGCCount = stats.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return stats, true
}
