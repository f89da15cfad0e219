// Package optimizer rewrites live shader source when a shader runs slowly.
//
// The render loop reports one sample per frame for the active shader. When
// the rolling average drops below a severity threshold, the optimizer
// reloads the unmodified source, runs the registered rules over it and swaps
// the result into the live material. A shader is optimized at most once per
// cooldown period and never has more than one rewrite in flight.
//
// All methods except Close must be called from the render loop. Only the
// source fetch runs on a separate goroutine; its result is applied by Poll.
package optimizer

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/hexaflex/shadercube/device"
)

// ErrNotConnected is returned when a rewrite is attempted before a source
// and material were connected.
var ErrNotConnected = errors.New("optimizer: no source or material connected")

// Source loads the unmodified source of a shader.
type Source interface {
	Load(ctx context.Context, shaderID string) (string, error)
}

// Material is the live shader the optimizer rewrites.
type Material interface {
	// ShaderID returns the id of the fragment shader currently in use.
	ShaderID() string

	// SetFragmentShader replaces the fragment shader source.
	SetFragmentShader(src string)

	// MarkDirty schedules the material for recompilation.
	MarkDirty()
}

// Config defines optimizer settings.
type Config struct {
	Cooldown    time.Duration    // Minimum time between rewrites of one shader.
	HistorySize int              // Samples kept per shader.
	Window      int              // Samples the rolling statistics cover.
	Thresholds  Thresholds       // Severity thresholds.
	Now         func() time.Time // Clock; defaults to time.Now.
}

// DefaultConfig returns the default optimizer settings.
func DefaultConfig() Config {
	return Config{
		Cooldown:    5 * time.Second,
		HistorySize: 100,
		Window:      20,
		Thresholds:  DefaultThresholds(),
		Now:         time.Now,
	}
}

// PerformanceSample is a single frame measurement.
type PerformanceSample struct {
	FPS         float64   `json:"fps"`
	FrameTimeMs float64   `json:"frameTime"`
	Time        time.Time `json:"timestamp"`
}

// Metrics holds the rolling performance state of one shader.
type Metrics struct {
	Samples           []PerformanceSample
	Current           float64
	Avg               float64
	Min               float64
	Max               float64
	FirstSample       time.Time
	LastOptimization  time.Time
	OptimizationCount int
	inFlight          bool
	retryAt           time.Time // No trigger before this time after a refused one.
}

// Record describes one optimization attempt.
type Record struct {
	ShaderID    string    `json:"shaderId"`
	Time        time.Time `json:"timestamp"`
	Severity    Severity  `json:"severity"`
	Selected    []RuleID  `json:"selected"`
	Applied     []Applied `json:"optimizations"`
	SizeBefore  int       `json:"originalSize"`
	SizeAfter   int       `json:"optimizedSize"`
	AvgFPS      float64   `json:"avgFps"`
	FrameTimeMs float64   `json:"frameTime"`
	Swapped     bool      `json:"actuallyApplied"`
}

// result is a finished rewrite waiting to be applied by Poll.
type result struct {
	record Record
	source string
	err    error
}

// Optimizer watches shader performance and rewrites slow shaders.
type Optimizer struct {
	config    Config
	profile   device.Profile
	rules     []Rule
	source    Source
	material  Material
	metrics   map[string]*Metrics
	history   map[string][]Record
	baselines map[string]Baseline
	active    map[RuleID]bool
	results   chan result
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// New creates an optimizer using the default rules.
func New(config Config, profile device.Profile) *Optimizer {
	def := DefaultConfig()
	if config.Cooldown <= 0 {
		config.Cooldown = def.Cooldown
	}
	if config.HistorySize <= 0 {
		config.HistorySize = def.HistorySize
	}
	if config.Window <= 0 {
		config.Window = def.Window
	}
	if config.Thresholds == (Thresholds{}) {
		config.Thresholds = def.Thresholds
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Optimizer{
		config:    config,
		profile:   profile,
		rules:     DefaultRules(),
		metrics:   make(map[string]*Metrics),
		history:   make(map[string][]Record),
		baselines: make(map[string]Baseline),
		active:    make(map[RuleID]bool),
		results:   make(chan result, 16),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Connect attaches the shader source and the live material.
func (o *Optimizer) Connect(src Source, mat Material) {
	o.source = src
	o.material = mat
}

// Name implements systems.System.
func (o *Optimizer) Name() string { return "optimizer" }

// Startup implements systems.System.
func (o *Optimizer) Startup() error { return nil }

// Shutdown implements systems.System.
func (o *Optimizer) Shutdown() error {
	o.Close()
	return nil
}

// Close abandons outstanding rewrites and waits for their goroutines.
func (o *Optimizer) Close() {
	o.cancel()
	o.wg.Wait()
}

// Rules returns the registered rules in the order they run.
func (o *Optimizer) Rules() []Rule {
	return o.rules
}

// Optimize runs the rule pipeline over src using the device profile and the
// given average frame rate. It does not modify any optimizer state.
func (o *Optimizer) Optimize(src string, avgFPS float64) Result {
	return Run(o.rules, src, Input{
		Device: &o.profile,
		Perf:   &Snapshot{AvgFPS: avgFPS},
	})
}

// RecordSample adds a frame measurement for the given shader and starts a
// rewrite if the shader needs one.
func (o *Optimizer) RecordSample(shaderID string, fps, frameTimeMs float64) {
	now := o.config.Now()

	m, ok := o.metrics[shaderID]
	if !ok {
		m = &Metrics{FirstSample: now}
		o.metrics[shaderID] = m
	}

	m.Samples = append(m.Samples, PerformanceSample{FPS: fps, FrameTimeMs: frameTimeMs, Time: now})
	if n := len(m.Samples) - o.config.HistorySize; n > 0 {
		m.Samples = append(m.Samples[:0], m.Samples[n:]...)
	}

	m.Current = fps
	m.Avg, m.Min, m.Max = stats(m.Samples, o.config.Window)

	if len(m.Samples) == o.config.Window {
		o.trackBaseline(shaderID, m.Avg)
	}

	o.checkTrigger(shaderID, m, now)
}

// stats returns avg, min and max fps over the last window samples.
func stats(samples []PerformanceSample, window int) (avg, min, max float64) {
	if len(samples) > window {
		samples = samples[len(samples)-window:]
	}
	if len(samples) == 0 {
		return
	}

	min, max = samples[0].FPS, samples[0].FPS
	var sum float64
	for _, s := range samples {
		sum += s.FPS
		if s.FPS < min {
			min = s.FPS
		}
		if s.FPS > max {
			max = s.FPS
		}
	}
	avg = sum / float64(len(samples))
	return
}

// checkTrigger starts a rewrite when the severity calls for one, the
// cooldown has passed and no rewrite is pending for the shader.
func (o *Optimizer) checkTrigger(shaderID string, m *Metrics, now time.Time) {
	if m.inFlight || now.Before(m.retryAt) {
		return
	}
	if !m.LastOptimization.IsZero() && now.Sub(m.LastOptimization) < o.config.Cooldown {
		return
	}

	sev := o.config.Thresholds.Severity(m.Avg)
	if sev == None {
		return
	}

	if err := o.trigger(shaderID, sev, m, now); err != nil {
		log.Println(err)
	}
}

// trigger marks the shader as busy and starts fetching its source.
func (o *Optimizer) trigger(shaderID string, sev Severity, m *Metrics, now time.Time) error {
	if o.source == nil || o.material == nil {
		m.retryAt = now.Add(o.config.Cooldown)
		return ErrNotConnected
	}

	log.Printf("optimizer: %s needs %s optimization (%.1f fps)", shaderID, sev, m.Avg)

	m.inFlight = true
	m.LastOptimization = now
	m.OptimizationCount++

	rec := Record{
		ShaderID:    shaderID,
		Time:        now,
		Severity:    sev,
		Selected:    SelectRules(sev),
		AvgFPS:      m.Avg,
		FrameTimeMs: frameTime(m.Avg),
	}

	o.wg.Add(1)
	go o.rewrite(rec)
	return nil
}

// rewrite fetches the unmodified source and runs the pipeline over it.
// It runs on its own goroutine and only touches immutable optimizer state.
func (o *Optimizer) rewrite(rec Record) {
	defer o.wg.Done()

	src, err := o.source.Load(o.ctx, rec.ShaderID)
	if err != nil {
		o.post(result{record: rec, err: errors.Wrapf(err, "optimizer: load %s", rec.ShaderID)})
		return
	}

	res := o.Optimize(src, rec.AvgFPS)
	rec.Applied = res.Applied
	rec.SizeBefore = res.SizeBefore
	rec.SizeAfter = res.SizeAfter
	o.post(result{record: rec, source: res.Source})
}

func (o *Optimizer) post(r result) {
	select {
	case o.results <- r:
	case <-o.ctx.Done():
	}
}

// Poll applies finished rewrites to the live material and returns the
// number of results it handled. It never blocks.
func (o *Optimizer) Poll() int {
	var n int
	for {
		select {
		case r := <-o.results:
			o.apply(r)
			n++
		default:
			return n
		}
	}
}

// Flush waits until all outstanding rewrites finished and applies them.
func (o *Optimizer) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r := <-o.results:
			o.apply(r)
		case <-done:
			o.Poll()
			return nil
		}
	}
}

// apply swaps a finished rewrite into the material and records it.
func (o *Optimizer) apply(r result) {
	id := r.record.ShaderID
	if m, ok := o.metrics[id]; ok {
		m.inFlight = false
	}

	if r.err != nil {
		log.Println(r.err)
		return
	}

	rec := r.record
	if len(rec.Applied) > 0 {
		if o.material.ShaderID() == id {
			o.material.SetFragmentShader(r.source)
			o.material.MarkDirty()
			rec.Swapped = true
			for _, a := range rec.Applied {
				o.active[a.Rule] = true
			}
			log.Printf("optimizer: applied %d rules to %s (%+d bytes)", len(rec.Applied), id, rec.SizeAfter-rec.SizeBefore)
		} else {
			log.Printf("optimizer: %s is no longer active; dropping rewrite", id)
		}
	}

	o.history[id] = append(o.history[id], rec)
}

// Metrics returns a copy of the metrics for the given shader.
func (o *Optimizer) Metrics(shaderID string) (Metrics, bool) {
	m, ok := o.metrics[shaderID]
	if !ok {
		return Metrics{}, false
	}
	out := *m
	out.Samples = append([]PerformanceSample(nil), m.Samples...)
	return out, true
}

// InFlight returns true if a rewrite of the shader is pending.
func (o *Optimizer) InFlight(shaderID string) bool {
	m, ok := o.metrics[shaderID]
	return ok && m.inFlight
}

// History returns the optimization records for the given shader.
func (o *Optimizer) History(shaderID string) []Record {
	return append([]Record(nil), o.history[shaderID]...)
}

// ActiveRules returns the rules which have changed a live shader, in
// registration order.
func (o *Optimizer) ActiveRules() []RuleID {
	out := make([]RuleID, 0, len(o.active))
	for id := range o.active {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// frameTime converts a frame rate to milliseconds per frame.
func frameTime(fps float64) float64 {
	if fps <= 0 {
		return 0
	}
	return 1000 / fps
}
