package quality

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexaflex/shadercube/device"
)

type change struct {
	level Level
	fps   float64
}

func feed(c *Controller, fps float64, n int) {
	for i := 0; i < n; i++ {
		c.RecordFrame(fps)
	}
}

func TestDegradeOnceAndReset(t *testing.T) {
	c := New(DefaultConfig())

	var changes []change
	c.OnChange(func(l Level, fps float64) { changes = append(changes, change{l, fps}) })

	feed(c, 30, 9)
	assert.Equal(t, 9, c.Pending())
	assert.Equal(t, High, c.Level())
	assert.Empty(t, changes)

	c.RecordFrame(30)
	assert.Equal(t, Medium, c.Level())
	assert.Equal(t, 0, c.Pending())
	require.Len(t, changes, 1)
	assert.Equal(t, Medium, changes[0].level)
	assert.InDelta(t, 30, changes[0].fps, 1e-9)
}

func TestHysteresisBand(t *testing.T) {
	c := New(DefaultConfig())
	c.level = Medium

	// Inside the hysteresis band: neither degrade nor upgrade.
	feed(c, 48.1, 10)
	assert.Equal(t, Medium, c.Level())
	feed(c, 56.9, 10)
	assert.Equal(t, Medium, c.Level())

	feed(c, 57.1, 10)
	assert.Equal(t, High, c.Level())

	feed(c, 47.9, 10)
	assert.Equal(t, Medium, c.Level())
}

func TestLevelsSaturate(t *testing.T) {
	c := New(DefaultConfig())
	feed(c, 120, 50)
	assert.Equal(t, High, c.Level())

	feed(c, 5, 30)
	assert.Equal(t, Low, c.Level())
	feed(c, 5, 30)
	assert.Equal(t, Low, c.Level())
}

func TestSetLevel(t *testing.T) {
	c := New(DefaultConfig())
	c.OnChange(func(Level, float64) { t.Fatal("handler called") })

	feed(c, 30, 5)
	c.SetLevel(Low)
	assert.Equal(t, Low, c.Level())
	assert.Zero(t, c.Pending())
}

func TestOnlyAdjacentTransitions(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	c := New(Config{TargetFPS: 60, Threshold: 4})

	prev := c.Level()
	c.OnChange(func(l Level, _ float64) {
		d := int(l) - int(prev)
		if d != 1 && d != -1 {
			t.Fatalf("non-adjacent transition %s -> %s", prev, l)
		}
		prev = l
	})

	for i := 0; i < 10000; i++ {
		c.RecordFrame(rng.Float64() * 120)
		if c.Pending() > 4 {
			t.Fatalf("batch exceeds capacity: %d", c.Pending())
		}
	}
}

func TestClassify(t *testing.T) {
	hi := device.Profile{Available: true, MemoryGB: 16, Cores: 8, GPU: device.GPU{MaxTextureSize: 16384}}

	for _, v := range []struct {
		name string
		edit func(*device.Profile)
		want Level
	}{
		{"high-end", func(*device.Profile) {}, High},
		{"no backend", func(p *device.Profile) { p.Available = false }, Low},
		{"mobile", func(p *device.Profile) { p.IsMobile = true }, Low},
		{"low memory", func(p *device.Profile) { p.MemoryGB = 2 }, Low},
		{"few cores", func(p *device.Profile) { p.Cores = 2 }, Low},
		{"small textures", func(p *device.Profile) { p.MaxTextureSize = 2048 }, Medium},
		{"mid memory", func(p *device.Profile) { p.MemoryGB = 6 }, Medium},
		{"8GB usable as 7.6", func(p *device.Profile) { p.MemoryGB = device.MemoryBucket(7.6) }, High},
	} {
		p := hi
		v.edit(&p)
		assert.Equal(t, v.want, Classify(p), v.name)
	}

	c := NewForDevice(DefaultConfig(), device.Profile{})
	assert.Equal(t, Low, c.Level())
}

func TestParseLevel(t *testing.T) {
	for _, l := range []Level{High, Medium, Low} {
		have, err := ParseLevel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, have)
	}
	_, err := ParseLevel("ultra")
	assert.EqualError(t, err, `unknown quality level "ultra"`)
}
