package bench

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{5, 5, 5}))
	assert.InDelta(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{30, 60, 45})
	assert.Equal(t, 45.0, s.Avg)
	assert.Equal(t, 30.0, s.Min)
	assert.Equal(t, 60.0, s.Max)
	assert.InDelta(t, math.Sqrt(150), s.Std, 1e-9)

	assert.Equal(t, Stats{}, Summarize(nil))
}

func TestRecorderEmpty(t *testing.T) {
	r := NewRecorder(newClock().Now)
	r.Start()
	res := r.Stop()
	assert.Equal(t, ErrNoData, res.Error)
	assert.Equal(t, Stats{}, res.FPS)
	assert.Equal(t, Stats{}, res.FrameTime)
	assert.Zero(t, res.Frames)
}

func TestRecorderIgnoresFramesWhenStopped(t *testing.T) {
	r := NewRecorder(newClock().Now)
	r.RecordFrame(60, 16)
	assert.Equal(t, ErrNoData, r.Results().Error)
}

func TestRecorder(t *testing.T) {
	clk := newClock()
	r := NewRecorder(clk.Now)

	var snaps int
	r.readMem = func() MemorySnapshot {
		snaps++
		return MemorySnapshot{Time: clk.now, HeapMB: float64(snaps)}
	}

	r.Start()
	assert.True(t, r.Recording())
	for i := 0; i < 65; i++ {
		fps := 50.0
		if i%2 == 1 {
			fps = 70
		}
		r.RecordFrame(fps, 1000/fps)
		clk.now = clk.now.Add(time.Second / 60)
	}
	res := r.Stop()
	assert.False(t, r.Recording())

	assert.Empty(t, res.Error)
	assert.Equal(t, 65, res.Frames)
	assert.Equal(t, 50.0, res.FPS.Min)
	assert.Equal(t, 70.0, res.FPS.Max)
	assert.InDelta(t, (33*50.0+32*70.0)/65, res.FPS.Avg, 1e-9)
	assert.InDelta(t, 1000.0/70, res.FrameTime.Min, 1e-9)
	assert.Len(t, res.Memory, 2)
	assert.InDelta(t, 65.0/60, res.Duration, 1e-3)
}

func TestMemStats(t *testing.T) {
	r := NewRecorder(nil)
	m := r.memStats()
	assert.Greater(t, m.SysMB, 0.0)
}

func TestSuite(t *testing.T) {
	clk := newClock()
	var switched []string
	s := NewSuite([]string{"a", "broken", "b"}, time.Second, func(id string) error {
		switched = append(switched, id)
		if id == "broken" {
			return errors.New("compile failed")
		}
		return nil
	}, clk.Now)

	s.Start()
	assert.Equal(t, "a", s.Current())

	frames := 0
	for s.Frame(60, 16.6) {
		clk.now = clk.now.Add(100 * time.Millisecond)
		frames++
		require.Less(t, frames, 100)
	}

	assert.False(t, s.Running())
	assert.Equal(t, []string{"a", "broken", "b"}, switched)

	res := s.Results()
	require.Len(t, res, 3)
	assert.Equal(t, 60.0, res["a"].FPS.Avg)
	assert.Equal(t, 11, res["a"].Frames)
	assert.Equal(t, 60.0, res["b"].FPS.Avg)
	assert.Contains(t, res["broken"].Error, "compile failed")
}

func TestSuiteCancel(t *testing.T) {
	clk := newClock()
	s := NewSuite([]string{"a", "b"}, time.Second, func(string) error { return nil }, clk.Now)
	s.Start()
	s.Frame(60, 16)
	s.Cancel()

	assert.False(t, s.Running())
	assert.False(t, s.Frame(60, 16))
	assert.Empty(t, s.Results())
	assert.Equal(t, "", s.Current())
}
