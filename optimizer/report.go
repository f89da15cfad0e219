package optimizer

import (
	"sort"
	"time"

	"github.com/hexaflex/shadercube/device"
)

// Baseline tracks how a shader performed when it first had a full window
// of samples.
type Baseline struct {
	InitialFPS float64 `json:"initialFps"`
}

// Analysis compares current shader performance against its baseline.
type Analysis struct {
	NeedsOptimization bool     `json:"needsOptimization"`
	Severity          Severity `json:"severity"`
	PerformanceDrop   float64  `json:"performanceDrop"` // Fraction of the baseline lost.
	Baseline          float64  `json:"baseline"`
}

func (o *Optimizer) trackBaseline(shaderID string, avg float64) {
	if _, ok := o.baselines[shaderID]; ok {
		return
	}
	o.baselines[shaderID] = Baseline{InitialFPS: avg}
}

// Analyze compares the shader's rolling average against its baseline.
// A shader without a baseline is compared against its current average.
func (o *Optimizer) Analyze(shaderID string) Analysis {
	m, ok := o.metrics[shaderID]
	if !ok {
		return Analysis{}
	}

	base := m.Avg
	if b, ok := o.baselines[shaderID]; ok {
		base = b.InitialFPS
	}

	var drop float64
	if base > 0 {
		drop = (base - m.Avg) / base
	}

	return Analysis{
		NeedsOptimization: m.Avg < o.config.Thresholds.Medium || drop > 0.3,
		Severity:          o.config.Thresholds.Severity(m.Avg),
		PerformanceDrop:   drop,
		Baseline:          base,
	}
}

// LatestReport summarizes the last optimization of a shader.
type LatestReport struct {
	ShaderID       string         `json:"shaderName"`
	Total          int            `json:"totalOptimizations"`
	Impacts        map[Impact]int `json:"impacts"`
	SizeDifference int            `json:"sizeDifference"`
	Applied        []Applied      `json:"optimizations"`
}

// Latest returns a summary of the most recent record for the shader.
func (o *Optimizer) Latest(shaderID string) (LatestReport, bool) {
	h := o.history[shaderID]
	if len(h) == 0 {
		return LatestReport{}, false
	}

	rec := h[len(h)-1]
	rep := LatestReport{
		ShaderID: shaderID,
		Total:    len(rec.Applied),
		Impacts: map[Impact]int{
			ImpactPerformance:   0,
			ImpactVisual:        0,
			ImpactCompatibility: 0,
		},
		SizeDifference: rec.SizeAfter - rec.SizeBefore,
		Applied:        rec.Applied,
	}
	for _, a := range rec.Applied {
		rep.Impacts[a.Impact]++
	}
	return rep, true
}

// RuleCount pairs a rule with the number of times it was applied.
type RuleCount struct {
	Rule  RuleID `json:"rule"`
	Count int    `json:"count"`
}

// MostCommon returns up to n rules ordered by how often they were applied.
func (o *Optimizer) MostCommon(n int) []RuleCount {
	counts := make(map[RuleID]int)
	for _, h := range o.history {
		for _, rec := range h {
			for _, a := range rec.Applied {
				counts[a.Rule]++
			}
		}
	}

	out := make([]RuleCount, 0, len(counts))
	for id, c := range counts {
		out = append(out, RuleCount{Rule: id, Count: c})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Rule < out[j].Rule
	})

	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Suggestion is a human-readable tuning hint.
type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Impact      Impact `json:"impact"`
}

// Suggestions returns tuning hints for the device and the given shader.
func (o *Optimizer) Suggestions(shaderID string) []Suggestion {
	var out []Suggestion
	p := o.profile

	if p.IsMobile {
		out = append(out, Suggestion{
			Title:       "Mobile Optimization",
			Description: "Reduce shader precision and complexity for mobile devices",
			Priority:    "high",
			Impact:      ImpactPerformance,
		})
	}

	if m, ok := o.metrics[shaderID]; ok && m.Avg < 30 {
		out = append(out, Suggestion{
			Title:       "Critical Performance Issue",
			Description: "Shader performance is critically low - apply aggressive optimizations",
			Priority:    "critical",
			Impact:      ImpactPerformance,
		})
	}

	if !p.Features.FloatTextures {
		out = append(out, Suggestion{
			Title:       "Compatibility Issue",
			Description: "Float textures not supported - use alternative techniques",
			Priority:    "high",
			Impact:      ImpactCompatibility,
		})
	}

	if p.MaxFragmentUniforms < 64 {
		out = append(out, Suggestion{
			Title:       "Uniform Limit Warning",
			Description: "Limited uniform support - simplify shader parameters",
			Priority:    "medium",
			Impact:      ImpactCompatibility,
		})
	}

	return out
}

// ShaderMetrics is the exported form of Metrics.
type ShaderMetrics struct {
	SampleCount       int        `json:"sampleCount"`
	RecordingDuration float64    `json:"recordingDuration"` // Seconds.
	Current           float64    `json:"currentFps"`
	Avg               float64    `json:"avgFps"`
	Min               float64    `json:"minFps"`
	Max               float64    `json:"maxFps"`
	OptimizationCount int        `json:"optimizationCount"`
	LastOptimization  *time.Time `json:"lastOptimization"`
}

// Summary aggregates optimizer activity over all shaders.
type Summary struct {
	ShadersOptimized     int         `json:"totalShadersOptimized"`
	OptimizationsApplied int         `json:"totalOptimizationsApplied"`
	MostCommon           []RuleCount `json:"mostCommonOptimizations"`
	Samples              int         `json:"realDataSamples"`
}

// Report is the diagnostic export of the optimizer state.
type Report struct {
	Timestamp   time.Time                `json:"timestamp"`
	Device      device.Profile           `json:"device"`
	History     map[string][]Record      `json:"optimizationHistory"`
	ActiveRules []RuleID                 `json:"activeOptimizations"`
	Metrics     map[string]ShaderMetrics `json:"realTimePerformanceMetrics"`
	Baselines   map[string]Baseline      `json:"performanceBaselines"`
	Rules       []RuleID                 `json:"optimizationRules"`
	Summary     Summary                  `json:"summary"`
}

// Export returns the current optimizer state.
func (o *Optimizer) Export() Report {
	now := o.config.Now()

	rep := Report{
		Timestamp:   now,
		Device:      o.profile,
		History:     make(map[string][]Record, len(o.history)),
		ActiveRules: o.ActiveRules(),
		Metrics:     make(map[string]ShaderMetrics, len(o.metrics)),
		Baselines:   make(map[string]Baseline, len(o.baselines)),
	}

	for _, r := range o.rules {
		rep.Rules = append(rep.Rules, r.ID)
	}

	for id, h := range o.history {
		rep.History[id] = append([]Record(nil), h...)
		rep.Summary.OptimizationsApplied += len(h)
	}
	rep.Summary.ShadersOptimized = len(o.history)
	rep.Summary.MostCommon = o.MostCommon(5)

	for id, b := range o.baselines {
		rep.Baselines[id] = b
	}

	for id, m := range o.metrics {
		if len(m.Samples) == 0 {
			continue
		}
		sm := ShaderMetrics{
			SampleCount:       len(m.Samples),
			RecordingDuration: now.Sub(m.FirstSample).Seconds(),
			Current:           m.Current,
			Avg:               m.Avg,
			Min:               m.Min,
			Max:               m.Max,
			OptimizationCount: m.OptimizationCount,
		}
		if !m.LastOptimization.IsZero() {
			t := m.LastOptimization
			sm.LastOptimization = &t
		}
		rep.Metrics[id] = sm
		rep.Summary.Samples += len(m.Samples)
	}

	return rep
}
