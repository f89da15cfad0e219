package main

import (
	"time"
)

// maxFrameTime caps the measured time of a single frame, so a stall (window
// drag, breakpoint) does not count as one extremely slow frame.
const maxFrameTime = 250 * time.Millisecond

// FrameClock measures the frame rate of the render loop.
type FrameClock struct {
	start      time.Time
	last       time.Time
	frameCount uint64
	fps        float64
	frameTime  float64
	elapsed    time.Duration
}

// Reset restarts the measurement at now.
func (c *FrameClock) Reset(now time.Time) {
	c.start = now
	c.last = now
	c.frameCount = 0
	c.fps = 0
	c.frameTime = 0
	c.elapsed = 0
}

// Tick marks the end of a frame and returns its duration in seconds.
func (c *FrameClock) Tick(now time.Time) float64 {
	if c.last.IsZero() {
		c.Reset(now)
	}

	dt := now.Sub(c.last)
	if dt > maxFrameTime {
		dt = maxFrameTime
	}
	c.last = now
	c.frameCount++
	c.elapsed += dt

	c.frameTime = float64(dt) / float64(time.Millisecond)
	if dt > 0 {
		c.fps = 1 / dt.Seconds()
	}
	return dt.Seconds()
}

// FPS returns the frame rate of the last frame.
func (c *FrameClock) FPS() float64 {
	return c.fps
}

// FrameTime returns the duration of the last frame in milliseconds.
func (c *FrameClock) FrameTime() float64 {
	return c.frameTime
}

// Elapsed returns the accumulated frame time since the last Reset.
func (c *FrameClock) Elapsed() time.Duration {
	return c.elapsed
}

// Average returns the mean frame rate since the last Reset.
func (c *FrameClock) Average() float64 {
	if c.elapsed <= 0 {
		return 0
	}
	return float64(c.frameCount) / c.elapsed.Seconds()
}

// Frames returns the number of frames since the last Reset.
func (c *FrameClock) Frames() uint64 {
	return c.frameCount
}
