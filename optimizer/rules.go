package optimizer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/hexaflex/shadercube/device"
)

// RuleID identifies an optimization rule. The numeric order is the order in
// which rules run.
type RuleID int

// Known rules.
const (
	Precision RuleID = iota
	TrigApprox
	LoopReduction
	ColorSimplification
	EffectStripping
	TextureCompat
)

var ruleNames = [...]string{
	Precision:           "precision",
	TrigApprox:          "trigApproximation",
	LoopReduction:       "loopReduction",
	ColorSimplification: "colorSimplification",
	EffectStripping:     "effectStripping",
	TextureCompat:       "textureCompat",
}

func (id RuleID) String() string {
	if id >= 0 && int(id) < len(ruleNames) {
		return ruleNames[id]
	}
	return fmt.Sprintf("RuleID(%d)", int(id))
}

// MarshalText implements encoding.TextMarshaler.
func (id RuleID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *RuleID) UnmarshalText(p []byte) error {
	for i, name := range ruleNames {
		if name == string(p) {
			*id = RuleID(i)
			return nil
		}
	}
	return errors.Errorf("unknown rule %q", p)
}

// Impact describes what a rule trades away.
type Impact string

// Known impacts.
const (
	ImpactPerformance   Impact = "performance"
	ImpactVisual        Impact = "visual"
	ImpactCompatibility Impact = "compatibility"
)

// Snapshot holds the performance values rule predicates look at.
type Snapshot struct {
	AvgFPS float64 `json:"avgFps"`
}

// Input is what rule predicates are evaluated against.
// Either field may be nil.
type Input struct {
	Device *device.Profile
	Perf   *Snapshot
}

// Rule is a conditionally applied rewrite of shader source.
//
// A rule applies when its device predicate accepts the device profile, or
// its performance predicate accepts the performance snapshot. Predicates
// must not have side effects.
type Rule struct {
	ID          RuleID
	Description string
	Impact      Impact
	Device      func(device.Profile) bool
	Perf        func(Snapshot) bool
	Transform   func(src string) string
}

// Applies returns true if the rule should run for the given input.
func (r *Rule) Applies(in Input) bool {
	if r.Device != nil && in.Device != nil && r.Device(*in.Device) {
		return true
	}
	return r.Perf != nil && in.Perf != nil && r.Perf(*in.Perf)
}

// Rule tuning values.
const (
	trigMinCalls       = 3   // sin calls needed before approximating.
	trigScale          = "0.9998"
	loopFactor         = 0.6 // Applied to SAMPLES.
	loopFloor          = 4
	smoothstepMinCalls = 5
	powMinCalls        = 3
	compatTextureSize  = 4096
)

var (
	reHighp       = regexp.MustCompile(`\bprecision\s+highp\b`)
	reSin         = regexp.MustCompile(`\bsin\(`)
	reSamples     = regexp.MustCompile(`#define\s+SAMPLES\s+(\d+)`)
	reSmoothstep  = regexp.MustCompile(`smoothstep`)
	reSmoothCall  = regexp.MustCompile(`smoothstep\(([^,]+),\s*([^,]+),\s*([^)]+)\)`)
	reExpensive   = regexp.MustCompile(`(?i)//.*expensive.*`)
	rePow         = regexp.MustCompile(`pow\(`)
	rePowVec3     = regexp.MustCompile(`pow\(([^,]+),\s*vec3\(([^)]+)\)\)`)
	reTextureCall = regexp.MustCompile(`\btexture\(`)
)

// DefaultRules returns the built-in rules in registration order.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:          Precision,
			Description: "Reduce precision to mediump for better performance",
			Impact:      ImpactPerformance,
			Device:      func(p device.Profile) bool { return p.IsMobile },
			Perf:        func(s Snapshot) bool { return s.AvgFPS < 30 },
			Transform:   reducePrecision,
		},
		{
			ID:          TrigApprox,
			Description: "Optimize trigonometric functions",
			Impact:      ImpactPerformance,
			Perf:        func(s Snapshot) bool { return s.AvgFPS < 40 },
			Transform:   approximateTrig,
		},
		{
			ID:          LoopReduction,
			Description: "Reduce loop iterations for better performance",
			Impact:      ImpactPerformance,
			Perf:        func(s Snapshot) bool { return s.AvgFPS < 35 },
			Transform:   reduceLoops,
		},
		{
			ID:          ColorSimplification,
			Description: "Simplify color calculations",
			Impact:      ImpactVisual,
			Perf:        func(s Snapshot) bool { return s.AvgFPS < 38 },
			Transform:   simplifyColor,
		},
		{
			ID:          EffectStripping,
			Description: "Remove expensive visual effects",
			Impact:      ImpactVisual,
			Perf:        func(s Snapshot) bool { return s.AvgFPS < 28 },
			Transform:   stripEffects,
		},
		{
			ID:          TextureCompat,
			Description: "Use compatible texture sampling functions",
			Impact:      ImpactCompatibility,
			Device:      func(p device.Profile) bool { return p.MaxTextureSize < compatTextureSize },
			Transform:   legacyTexture,
		},
	}
}

// reducePrecision lowers highp precision declarations to mediump.
func reducePrecision(src string) string {
	return reHighp.ReplaceAllLiteralString(src, "precision mediump")
}

// approximateTrig replaces sin(x) with a scaled (x) once a shader makes
// enough sin calls for it to matter.
func approximateTrig(src string) string {
	if len(reSin.FindAllStringIndex(src, -1)) <= trigMinCalls {
		return src
	}
	return reSin.ReplaceAllLiteralString(src, "("+trigScale+"*")
}

// reduceLoops scales the SAMPLES iteration count down.
func reduceLoops(src string) string {
	return reSamples.ReplaceAllStringFunc(src, func(m string) string {
		sub := reSamples.FindStringSubmatch(m)
		n, err := strconv.Atoi(sub[1])
		if err != nil {
			return m
		}
		reduced := int(math.Max(loopFloor, math.Floor(float64(n)*loopFactor)))
		return "#define SAMPLES " + strconv.Itoa(reduced)
	})
}

// simplifyColor turns smoothstep interpolation into linear mix once a
// shader uses it heavily.
func simplifyColor(src string) string {
	if !strings.Contains(src, "smoothstep") {
		return src
	}
	if len(reSmoothstep.FindAllStringIndex(src, -1)) <= smoothstepMinCalls {
		return src
	}
	return reSmoothCall.ReplaceAllString(src, "mix(${1}, ${2}, ${3})")
}

// stripEffects drops sections marked expensive and flattens pow(x, vec3(..))
// to x in pow heavy shaders.
func stripEffects(src string) string {
	out := reExpensive.ReplaceAllLiteralString(src, "")
	if len(rePow.FindAllStringIndex(src, -1)) > powMinCalls {
		out = rePowVec3.ReplaceAllString(out, "${1}")
	}
	return out
}

// legacyTexture switches to the texture2D sampling call.
func legacyTexture(src string) string {
	return reTextureCall.ReplaceAllLiteralString(src, "texture2D(")
}
