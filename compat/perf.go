package compat

import (
	"fmt"
	"math"
	"time"
)

// PerfWindow is the number of samples kept per shader.
const PerfWindow = 60

// Sample is one frame measurement.
type Sample struct {
	FPS         float64   `json:"fps"`
	FrameTimeMs float64   `json:"frameTime"`
	Time        time.Time `json:"timestamp"`
}

// PerfIssue is a performance problem seen on one shader. Consecutive
// frames with the same problem update a single entry.
type PerfIssue struct {
	Type    string    `json:"type"`
	Message string    `json:"message"`
	Time    time.Time `json:"timestamp"` // Last occurrence.
	Count   int       `json:"count"`
}

// Performance holds the recent frame data of one shader.
type Performance struct {
	Samples []Sample
	Avg     float64
	Min     float64 // Over all samples ever recorded.
	Max     float64 // Over all samples ever recorded.
	Issues  []PerfIssue
	Start   time.Time
}

// PerfReport is the exported form of Performance.
type PerfReport struct {
	SampleCount       int         `json:"sampleCount"`
	RecordingDuration float64     `json:"recordingDuration"` // Seconds.
	Avg               float64     `json:"avgFps"`
	Min               float64     `json:"minFps"`
	Max               float64     `json:"maxFps"`
	Issues            []PerfIssue `json:"issues"`
	Samples           []Sample    `json:"samples"`
}

func (p *Performance) report(now time.Time) PerfReport {
	return PerfReport{
		SampleCount:       len(p.Samples),
		RecordingDuration: now.Sub(p.Start).Seconds(),
		Avg:               p.Avg,
		Min:               p.Min,
		Max:               p.Max,
		Issues:            append([]PerfIssue(nil), p.Issues...),
		Samples:           append([]Sample(nil), p.Samples...),
	}
}

// TrackPerformance records a frame of the given shader. A low-fps issue is
// added when the frame and the average of the last ten frames are both
// below 30.
func (m *Monitor) TrackPerformance(shaderID string, fps, frameTimeMs float64) {
	now := m.now()

	p, ok := m.perf[shaderID]
	if !ok {
		p = &Performance{Min: math.Inf(1), Start: now}
		m.perf[shaderID] = p
	}

	p.Samples = append(p.Samples, Sample{FPS: fps, FrameTimeMs: frameTimeMs, Time: now})
	if len(p.Samples) > PerfWindow {
		p.Samples = p.Samples[1:]
	}

	p.Min = math.Min(p.Min, fps)
	p.Max = math.Max(p.Max, fps)
	p.Avg = mean(p.Samples)

	if fps < 30 && len(p.Samples) > 10 {
		recent := mean(p.Samples[len(p.Samples)-10:])
		if recent < 30 {
			p.addIssue("low_fps", fmt.Sprintf("Consistently low FPS (%.1f) on %s", recent, shaderID), now)
		}
	}
}

// addIssue records a problem, merging it into the latest issue when that
// one has the same type.
func (p *Performance) addIssue(kind, msg string, now time.Time) {
	if n := len(p.Issues); n > 0 && p.Issues[n-1].Type == kind {
		last := &p.Issues[n-1]
		last.Message = msg
		last.Time = now
		last.Count++
		return
	}
	p.Issues = append(p.Issues, PerfIssue{Type: kind, Message: msg, Time: now, Count: 1})
}

// Performance returns a copy of the data recorded for the shader.
func (m *Monitor) Performance(shaderID string) (Performance, bool) {
	p, ok := m.perf[shaderID]
	if !ok {
		return Performance{}, false
	}
	out := *p
	out.Samples = append([]Sample(nil), p.Samples...)
	out.Issues = append([]PerfIssue(nil), p.Issues...)
	return out, true
}

func mean(s []Sample) float64 {
	if len(s) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s {
		sum += v.FPS
	}
	return sum / float64(len(s))
}
