package optimizer

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexaflex/shadercube/device"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeSource struct {
	mu    sync.Mutex
	text  map[string]string
	err   error
	loads int
	gate  chan struct{} // When set, Load blocks until it is closed.
}

func (s *fakeSource) Load(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	s.loads++
	gate := s.gate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	return s.text[id], nil
}

func (s *fakeSource) Loads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

type fakeMaterial struct {
	id     string
	text   string
	dirty  int
	writes int
}

func (m *fakeMaterial) ShaderID() string { return m.id }
func (m *fakeMaterial) SetFragmentShader(s string) { m.text = s; m.writes++ }
func (m *fakeMaterial) MarkDirty() { m.dirty++ }

type fixture struct {
	clock *fakeClock
	src   *fakeSource
	mat   *fakeMaterial
	opt   *Optimizer
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		clock: &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		src:   &fakeSource{text: map[string]string{"fragment_heavy": heavyShader}},
		mat:   &fakeMaterial{id: "fragment_heavy", text: heavyShader},
	}

	cfg := DefaultConfig()
	cfg.Now = f.clock.Now
	profile := device.Profile{Available: true, GPU: device.GPU{MaxTextureSize: 8192}}
	f.opt = New(cfg, profile)
	f.opt.Connect(f.src, f.mat)
	t.Cleanup(f.opt.Close)
	return f
}

func (f *fixture) flush(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.opt.Flush(ctx))
}

// frames records n samples, advancing the clock by one 60th of a second each.
func (f *fixture) frames(t *testing.T, n int, fps float64) {
	for i := 0; i < n; i++ {
		f.opt.RecordSample("fragment_heavy", fps, 1000/fps)
		f.flush(t)
		f.clock.Advance(time.Second / 60)
	}
}

func TestCriticalTrigger(t *testing.T) {
	f := newFixture(t)
	f.frames(t, 1, 20)

	h := f.opt.History("fragment_heavy")
	require.Len(t, h, 1)

	rec := h[0]
	assert.Equal(t, Critical, rec.Severity)
	assert.Equal(t, SelectRules(Critical), rec.Selected)
	assert.Less(t, appliedRule(t, rec, LoopReduction).SizeDiff, 0)
	assert.Less(t, appliedRule(t, rec, EffectStripping).SizeDiff, 0)
	assert.True(t, rec.Swapped)
	assert.InDelta(t, 50, rec.FrameTimeMs, 1e-9)

	assert.Equal(t, 1, f.mat.writes)
	assert.Equal(t, 1, f.mat.dirty)
	assert.Contains(t, f.mat.text, "#define SAMPLES 6")
	assert.Contains(t, f.opt.ActiveRules(), LoopReduction)
}

func appliedRule(t *testing.T, rec Record, id RuleID) Applied {
	for _, a := range rec.Applied {
		if a.Rule == id {
			return a
		}
	}
	t.Fatalf("rule %s not applied; have %v", id, rec.Applied)
	return Applied{}
}

func TestCooldown(t *testing.T) {
	f := newFixture(t)

	// Just under 5 seconds of critical frames: one trigger only.
	f.frames(t, 299, 20)
	assert.Equal(t, 1, f.src.Loads())
	assert.Len(t, f.opt.History("fragment_heavy"), 1)

	// Past the cooldown the next frame triggers again.
	f.clock.Advance(time.Second)
	f.frames(t, 1, 20)
	assert.Equal(t, 2, f.src.Loads())

	h := f.opt.History("fragment_heavy")
	require.Len(t, h, 2)
	assert.GreaterOrEqual(t, h[1].Time.Sub(h[0].Time), 5*time.Second)

	m, ok := f.opt.Metrics("fragment_heavy")
	require.True(t, ok)
	assert.Equal(t, 2, m.OptimizationCount)
}

func TestNoTriggerWhenHealthy(t *testing.T) {
	f := newFixture(t)
	f.frames(t, 200, 59)
	assert.Equal(t, 0, f.src.Loads())
	assert.Empty(t, f.opt.History("fragment_heavy"))
}

func TestRollingWindow(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 150; i++ {
		f.opt.RecordSample("other", float64(50+i%10), 20)
	}

	m, ok := f.opt.Metrics("other")
	require.True(t, ok)
	assert.Len(t, m.Samples, 100)
	assert.Equal(t, 50.0, m.Min)
	assert.Equal(t, 59.0, m.Max)
	assert.InDelta(t, 54.5, m.Avg, 1e-9)
	assert.Equal(t, float64(50+149%10), m.Current)
}

func TestFetchFailureAbandons(t *testing.T) {
	f := newFixture(t)
	f.src.err = errors.New("not found")

	f.frames(t, 1, 20)
	assert.Equal(t, heavyShader, f.mat.text)
	assert.Equal(t, 0, f.mat.dirty)
	assert.Empty(t, f.opt.History("fragment_heavy"))
	assert.False(t, f.opt.InFlight("fragment_heavy"))

	// No retry until the cooldown elapsed.
	f.frames(t, 100, 20)
	assert.Equal(t, 1, f.src.Loads())
}

func TestSingleRewriteInFlight(t *testing.T) {
	f := newFixture(t)
	f.src.gate = make(chan struct{})

	for i := 0; i < 10; i++ {
		f.opt.RecordSample("fragment_heavy", 20, 50)
		f.clock.Advance(10 * time.Second)
		f.opt.Poll()
	}
	assert.True(t, f.opt.InFlight("fragment_heavy"))

	close(f.src.gate)
	f.flush(t)

	assert.Equal(t, 1, f.src.Loads())
	assert.Equal(t, 1, f.mat.writes)
	assert.False(t, f.opt.InFlight("fragment_heavy"))
}

func TestSwitchedShaderIsNotOverwritten(t *testing.T) {
	f := newFixture(t)
	f.src.gate = make(chan struct{})

	f.opt.RecordSample("fragment_heavy", 20, 50)
	f.mat.id = "fragment_wave"
	f.mat.text = "wave"
	close(f.src.gate)
	f.flush(t)

	assert.Equal(t, "wave", f.mat.text)
	h := f.opt.History("fragment_heavy")
	require.Len(t, h, 1)
	assert.False(t, h[0].Swapped)
	assert.Empty(t, f.opt.ActiveRules())
}

func TestNotConnected(t *testing.T) {
	opt := New(DefaultConfig(), device.Profile{})
	defer opt.Close()

	opt.RecordSample("x", 10, 100)
	assert.False(t, opt.InFlight("x"))
	assert.Empty(t, opt.History("x"))
}

func TestNotConnectedHonoursCooldown(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	cfg := DefaultConfig()
	cfg.Now = clock.Now
	opt := New(cfg, device.Profile{Available: true})
	defer opt.Close()

	for i := 0; i < 120; i++ {
		opt.RecordSample("fragment_heavy", 10, 100)
		clock.Advance(time.Second / 60)
	}
	assert.Equal(t, 1, strings.Count(buf.String(), ErrNotConnected.Error()))

	// Connecting does not bypass the pending cooldown.
	src := &fakeSource{text: map[string]string{"fragment_heavy": heavyShader}}
	opt.Connect(src, &fakeMaterial{id: "fragment_heavy", text: heavyShader})
	opt.RecordSample("fragment_heavy", 10, 100)
	assert.False(t, opt.InFlight("fragment_heavy"))
	assert.Equal(t, 0, src.Loads())

	clock.Advance(4 * time.Second)
	opt.RecordSample("fragment_heavy", 10, 100)
	assert.True(t, opt.InFlight("fragment_heavy"))
	assert.Equal(t, 1, strings.Count(buf.String(), ErrNotConnected.Error()))
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	f.frames(t, 30, 20)
	f.opt.RecordSample("fragment_fast", 60, 16.6)

	rep := f.opt.Export()
	assert.Equal(t, 1, rep.Summary.ShadersOptimized)
	assert.Equal(t, 1, rep.Summary.OptimizationsApplied)
	assert.Equal(t, 31, rep.Summary.Samples)
	assert.Len(t, rep.Rules, 6)
	assert.InDelta(t, 20, rep.Metrics["fragment_heavy"].Avg, 1e-9)
	assert.NotNil(t, rep.Metrics["fragment_heavy"].LastOptimization)
	assert.Nil(t, rep.Metrics["fragment_fast"].LastOptimization)
	assert.Contains(t, rep.Baselines, "fragment_heavy")

	require.NotEmpty(t, rep.Summary.MostCommon)
	assert.Equal(t, 1, rep.Summary.MostCommon[0].Count)

	latest, ok := f.opt.Latest("fragment_heavy")
	require.True(t, ok)
	assert.Equal(t, len(latest.Applied), latest.Total)
	assert.Equal(t, 3, latest.Impacts[ImpactPerformance])
	assert.Equal(t, 1, latest.Impacts[ImpactVisual])
	assert.Equal(t, 0, latest.Impacts[ImpactCompatibility])
}

func TestAnalyze(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 20; i++ {
		f.opt.RecordSample("s", 60, 16)
	}
	for i := 0; i < 20; i++ {
		f.opt.RecordSample("s", 40, 25)
	}

	a := f.opt.Analyze("s")
	assert.Equal(t, 60.0, a.Baseline)
	assert.InDelta(t, 1.0/3, a.PerformanceDrop, 1e-9)
	assert.True(t, a.NeedsOptimization)
	assert.Equal(t, Medium, a.Severity)
}

func TestSuggestions(t *testing.T) {
	opt := New(DefaultConfig(), device.Profile{IsMobile: true})
	defer opt.Close()
	opt.RecordSample("s", 10, 100)

	var titles []string
	for _, s := range opt.Suggestions("s") {
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{"Mobile Optimization", "Critical Performance Issue", "Compatibility Issue", "Uniform Limit Warning"}, titles)
}
