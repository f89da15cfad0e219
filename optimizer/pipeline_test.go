package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hexaflex/shadercube/device"
)

const heavyShader = `precision highp float;
#define SAMPLES 10
uniform float u_time;
void main() {
    float a = sin(u_time) + sin(u_time * 2.0) + sin(u_time * 3.0) + sin(u_time * 4.0);
    vec3 c = vec3(a);
    // expensive bloom approximation
    c = pow(c, vec3(0.4545));
    c.r = pow(c.r, 2.0);
    c.g = pow(c.g, 2.0);
    c.b = pow(c.b, 2.0);
    gl_FragColor = vec4(c, 1.0);
}
`

func TestRunCritical(t *testing.T) {
	profile := device.Profile{Available: true, GPU: device.GPU{MaxTextureSize: 8192}}
	res := Run(DefaultRules(), heavyShader, Input{Device: &profile, Perf: &Snapshot{AvgFPS: 20}})

	assert.Equal(t, []RuleID{Precision, TrigApprox, LoopReduction, EffectStripping}, res.Rules())
	assert.Equal(t, len(heavyShader), res.SizeBefore)
	assert.Equal(t, len(res.Source), res.SizeAfter)
	assert.Contains(t, res.Source, "precision mediump float;")
	assert.Contains(t, res.Source, "#define SAMPLES 6")
	assert.Contains(t, res.Source, "c = c;")
	assert.NotContains(t, res.Source, "expensive")
	assert.NotContains(t, res.Source, "sin(")

	var total int
	for _, a := range res.Applied {
		assert.NotZero(t, a.SizeDiff)
		total += a.SizeDiff
	}
	assert.Equal(t, res.SizeAfter-res.SizeBefore, total)
}

func TestRunHealthy(t *testing.T) {
	profile := device.Profile{Available: true, GPU: device.GPU{MaxTextureSize: 8192}}
	res := Run(DefaultRules(), heavyShader, Input{Device: &profile, Perf: &Snapshot{AvgFPS: 60}})
	assert.Empty(t, res.Applied)
	assert.Equal(t, heavyShader, res.Source)
}

func TestRunFeedsOutputForward(t *testing.T) {
	// The second rule only fires on the output of the first.
	rules := []Rule{
		{ID: Precision, Perf: func(Snapshot) bool { return true }, Transform: func(s string) string { return s + "b" }},
		{ID: TrigApprox, Perf: func(Snapshot) bool { return true }, Transform: func(s string) string {
			if s == "ab" {
				return "abc"
			}
			return s
		}},
		{ID: LoopReduction, Perf: func(Snapshot) bool { return true }, Transform: func(s string) string { return s }},
	}

	res := Run(rules, "a", Input{Perf: &Snapshot{}})
	assert.Equal(t, "abc", res.Source)
	assert.Equal(t, []RuleID{Precision, TrigApprox}, res.Rules())
}

func TestSeverity(t *testing.T) {
	th := DefaultThresholds()
	for _, v := range []struct {
		fps  float64
		want Severity
	}{
		{10, Critical}, {24.9, Critical}, {25, High}, {34.9, High},
		{35, Medium}, {44.9, Medium}, {45, None}, {120, None},
	} {
		assert.Equal(t, v.want, th.Severity(v.fps), "%v fps", v.fps)
	}

	assert.Equal(t, []RuleID{LoopReduction, EffectStripping, Precision}, SelectRules(Critical))
	assert.Equal(t, []RuleID{LoopReduction, TrigApprox}, SelectRules(High))
	assert.Equal(t, []RuleID{Precision}, SelectRules(Medium))
	assert.Empty(t, SelectRules(None))
}
