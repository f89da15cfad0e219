package optimizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hexaflex/shadercube/device"
)

func TestReducePrecision(t *testing.T) {
	src := "precision highp float;\nvoid main() {}\n"
	have := reducePrecision(src)
	assert.Equal(t, "precision mediump float;\nvoid main() {}\n", have)
	assert.Equal(t, len(src)+len("mediump")-len("highp"), len(have))

	// Already reduced text is left alone.
	assert.Equal(t, have, reducePrecision(have))
}

func TestApproximateTrig(t *testing.T) {
	few := "float a = sin(x) + sin(y) + sin(z);"
	assert.Equal(t, few, approximateTrig(few))

	many := "float a = sin(x) + sin(y) + sin(z) + sin(w); float b = asin(q);"
	have := approximateTrig(many)
	assert.Equal(t, "float a = (0.9998*x) + (0.9998*y) + (0.9998*z) + (0.9998*w); float b = asin(q);", have)
}

func TestReduceLoops(t *testing.T) {
	for _, v := range []struct{ in, want string }{
		{"#define SAMPLES 20\n", "#define SAMPLES 12\n"},
		{"#define SAMPLES 10\n", "#define SAMPLES 6\n"},
		{"#define SAMPLES 5\n", "#define SAMPLES 4\n"},
		{"#define SAMPLES 2\n", "#define SAMPLES 4\n"},
		{"#define STEPS 20\n", "#define STEPS 20\n"},
	} {
		assert.Equal(t, v.want, reduceLoops(v.in), v.in)
	}
}

func TestSimplifyColor(t *testing.T) {
	call := "smoothstep(0.0, 1.0, v)"
	few := strings.Repeat(call+";\n", 5)
	assert.Equal(t, few, simplifyColor(few))

	many := strings.Repeat(call+";\n", 6)
	assert.Equal(t, strings.Repeat("mix(0.0, 1.0, v);\n", 6), simplifyColor(many))
}

func TestStripEffects(t *testing.T) {
	src := "vec3 c = base;\n// expensive glow\nc += glow;\n"
	assert.Equal(t, "vec3 c = base;\n\nc += glow;\n", stripEffects(src))

	pows := "c = pow(c, vec3(0.45));\n" + strings.Repeat("d = pow(d, 2.0);\n", 3)
	have := stripEffects(pows)
	assert.True(t, strings.HasPrefix(have, "c = c;\n"), have)
	assert.Contains(t, have, "d = pow(d, 2.0);")

	few := "c = pow(c, vec3(0.45));\n"
	assert.Equal(t, few, stripEffects(few))
}

func TestLegacyTexture(t *testing.T) {
	assert.Equal(t, "texture2D(tex, uv) + texture2D(a, b)", legacyTexture("texture(tex, uv) + texture2D(a, b)"))
}

func TestRulePredicates(t *testing.T) {
	rules := DefaultRules()
	want := []RuleID{Precision, TrigApprox, LoopReduction, ColorSimplification, EffectStripping, TextureCompat}
	for i, r := range rules {
		assert.Equal(t, want[i], r.ID)
	}

	mobile := device.Profile{IsMobile: true, GPU: device.GPU{MaxTextureSize: 8192}}
	desktop := device.Profile{GPU: device.GPU{MaxTextureSize: 8192}}
	small := device.Profile{GPU: device.GPU{MaxTextureSize: 2048}}

	assert.True(t, rules[Precision].Applies(Input{Device: &mobile}))
	assert.False(t, rules[Precision].Applies(Input{Device: &desktop}))
	assert.True(t, rules[Precision].Applies(Input{Device: &desktop, Perf: &Snapshot{AvgFPS: 29}}))
	assert.False(t, rules[TrigApprox].Applies(Input{Perf: &Snapshot{AvgFPS: 40}}))
	assert.True(t, rules[TrigApprox].Applies(Input{Perf: &Snapshot{AvgFPS: 39.9}}))
	assert.True(t, rules[EffectStripping].Applies(Input{Perf: &Snapshot{AvgFPS: 27}}))
	assert.False(t, rules[EffectStripping].Applies(Input{Perf: &Snapshot{AvgFPS: 28}}))
	assert.True(t, rules[TextureCompat].Applies(Input{Device: &small}))
	assert.False(t, rules[TextureCompat].Applies(Input{Device: &desktop, Perf: &Snapshot{AvgFPS: 1}}))
	assert.False(t, rules[LoopReduction].Applies(Input{}))
}

func TestRuleIDText(t *testing.T) {
	for _, r := range DefaultRules() {
		p, err := r.ID.MarshalText()
		assert.NoError(t, err)

		var id RuleID
		assert.NoError(t, id.UnmarshalText(p))
		assert.Equal(t, r.ID, id)
	}

	var id RuleID
	assert.EqualError(t, id.UnmarshalText([]byte("Unrolling")), `unknown rule "Unrolling"`)

	var sev Severity
	assert.NoError(t, sev.UnmarshalText([]byte("high")))
	assert.Equal(t, High, sev)
	assert.EqualError(t, sev.UnmarshalText([]byte("severe")), `unknown severity "severe"`)
}
