// Package quality implements adaptive rendering quality.
//
// A Controller receives one frame rate sample per frame. Samples are
// collected in non-overlapping batches; at the end of each batch the mean
// frame rate moves the quality level at most one step up or down.
// Degrading and upgrading use different thresholds so the level does not
// oscillate around the target.
package quality

import (
	"log"

	"github.com/hexaflex/shadercube/device"
)

// Default controller settings.
const (
	DefaultTargetFPS = 60
	DefaultThreshold = 10
)

// Hysteresis thresholds, relative to the target frame rate.
const (
	DegradeRatio = 0.8
	UpgradeRatio = 0.95
)

// ChangeFunc is called when the quality level changes.
// It receives the new level and the mean frame rate which caused the change.
type ChangeFunc func(level Level, fps float64)

// Config defines controller settings.
type Config struct {
	TargetFPS float64 // Frame rate the controller tries to maintain.
	Threshold int     // Number of frames in one analysis batch.
}

// DefaultConfig returns the default controller settings.
func DefaultConfig() Config {
	return Config{
		TargetFPS: DefaultTargetFPS,
		Threshold: DefaultThreshold,
	}
}

// Controller tracks frame rate and owns the current quality level.
// It is not safe for concurrent use; it is meant to be driven from the
// render loop.
type Controller struct {
	config   Config
	profile  device.Profile
	level    Level
	batch    []float64
	handlers []ChangeFunc
}

// New creates a controller starting at High quality.
func New(config Config) *Controller {
	if config.TargetFPS <= 0 {
		config.TargetFPS = DefaultTargetFPS
	}
	if config.Threshold <= 0 {
		config.Threshold = DefaultThreshold
	}

	return &Controller{
		config: config,
		level:  High,
		batch:  make([]float64, 0, config.Threshold),
	}
}

// NewForDevice creates a controller whose initial level is derived from
// the given device profile. The classification is done once.
func NewForDevice(config Config, profile device.Profile) *Controller {
	c := New(config)
	c.profile = profile
	c.level = Classify(profile)
	log.Printf("quality: initial level %s (%s)", c.level, profile)
	return c
}

// Classify returns the starting level for a device.
func Classify(p device.Profile) Level {
	switch {
	case !p.Available:
		return Low
	case p.IsMobile || p.MemoryGB < 4 || p.Cores < 4:
		return Low
	case p.MaxTextureSize < 4096 || p.MemoryGB < 8:
		return Medium
	default:
		return High
	}
}

// OnChange registers a handler for level changes.
func (c *Controller) OnChange(f ChangeFunc) {
	c.handlers = append(c.handlers, f)
}

// Level returns the current quality level.
func (c *Controller) Level() Level {
	return c.level
}

// SetLevel overrides the current level and discards the pending batch.
// Change handlers are not called.
func (c *Controller) SetLevel(l Level) {
	c.level = l
	c.batch = c.batch[:0]
}

// TargetFPS returns the frame rate the controller aims for.
func (c *Controller) TargetFPS() float64 {
	return c.config.TargetFPS
}

// Pending returns the number of samples in the current batch.
func (c *Controller) Pending() int {
	return len(c.batch)
}

// Profile returns the device profile the controller was created for.
func (c *Controller) Profile() device.Profile {
	return c.profile
}

// RecordFrame adds a frame rate sample. When the batch is full it is
// analyzed and cleared.
func (c *Controller) RecordFrame(fps float64) {
	c.batch = append(c.batch, fps)

	if len(c.batch) >= c.config.Threshold {
		c.analyze()
		c.batch = c.batch[:0]
	}
}

// analyze moves the level by at most one step based on the batch mean.
func (c *Controller) analyze() {
	if len(c.batch) == 0 {
		return
	}

	var sum float64
	for _, v := range c.batch {
		sum += v
	}
	mean := sum / float64(len(c.batch))

	prev := c.level
	switch {
	case mean < c.config.TargetFPS*DegradeRatio:
		c.level = prev.degrade()
	case mean > c.config.TargetFPS*UpgradeRatio:
		c.level = prev.upgrade()
	}

	if c.level == prev {
		return
	}

	log.Printf("quality: %s -> %s (%.1f fps, target %.0f)", prev, c.level, mean, c.config.TargetFPS)
	for _, f := range c.handlers {
		f(c.level, mean)
	}
}
