// Package bench records frame statistics for single shaders and runs
// benchmarks over all of them.
package bench

import (
	"runtime"
	"time"
)

// MemoryInterval is the number of frames between memory snapshots.
const MemoryInterval = 30

// ErrNoData is reported in Results when nothing was recorded.
const ErrNoData = "no data collected during test"

// MemorySnapshot is the Go heap state at one point during a recording.
type MemorySnapshot struct {
	Time   time.Time `json:"timestamp"`
	HeapMB float64   `json:"used"`
	SysMB  float64   `json:"total"`
	NumGC  uint32    `json:"gcCount"`
}

// Results are the statistics of one recording.
type Results struct {
	FPS       Stats            `json:"fps"`
	FrameTime Stats            `json:"frameTime"` // Milliseconds.
	Frames    int              `json:"frames"`
	Duration  float64          `json:"duration"` // Seconds.
	Memory    []MemorySnapshot `json:"memoryUsage"`
	Error     string           `json:"error,omitempty"`
}

// Recorder collects frame measurements between Start and Stop.
type Recorder struct {
	now       func() time.Time
	readMem   func() MemorySnapshot
	recording bool
	start     time.Time
	stop      time.Time
	fps       []float64
	frameTime []float64
	memory    []MemorySnapshot
}

// NewRecorder creates a recorder reading time from now. A nil now uses
// time.Now.
func NewRecorder(now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	r := &Recorder{now: now}
	r.readMem = r.memStats
	return r
}

// Start discards previous data and begins recording.
func (r *Recorder) Start() {
	r.recording = true
	r.start = r.now()
	r.fps = r.fps[:0]
	r.frameTime = r.frameTime[:0]
	r.memory = nil
}

// Stop ends the recording and returns its results.
func (r *Recorder) Stop() Results {
	if r.recording {
		r.recording = false
		r.stop = r.now()
	}
	return r.Results()
}

// Recording returns true between Start and Stop.
func (r *Recorder) Recording() bool {
	return r.recording
}

// RecordFrame adds a frame measurement. It does nothing when not recording.
func (r *Recorder) RecordFrame(fps, frameTimeMs float64) {
	if !r.recording {
		return
	}

	r.fps = append(r.fps, fps)
	r.frameTime = append(r.frameTime, frameTimeMs)

	if len(r.fps)%MemoryInterval == 0 {
		r.memory = append(r.memory, r.readMem())
	}
}

// Results returns the statistics recorded so far.
func (r *Recorder) Results() Results {
	end := r.stop
	if r.recording {
		end = r.now()
	}

	res := Results{
		Frames: len(r.fps),
		Memory: append([]MemorySnapshot(nil), r.memory...),
	}
	if !r.start.IsZero() {
		res.Duration = end.Sub(r.start).Seconds()
	}

	if len(r.fps) == 0 {
		res.Error = ErrNoData
		return res
	}

	res.FPS = Summarize(r.fps)
	res.FrameTime = Summarize(r.frameTime)
	return res
}

func (r *Recorder) memStats() MemorySnapshot {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	const mb = 1 << 20
	return MemorySnapshot{
		Time:   r.now(),
		HeapMB: float64(ms.HeapAlloc) / mb,
		SysMB:  float64(ms.Sys) / mb,
		NumGC:  ms.NumGC,
	}
}
