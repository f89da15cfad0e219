// Package compat tracks compatibility problems of the device and the
// shaders running on it.
package compat

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/hexaflex/shadercube/device"
)

// Monitor collects issues, warnings and per-shader performance data.
type Monitor struct {
	profile      device.Profile
	now          func() time.Time
	issues       []Issue
	warnings     []Warning
	shaderErrors map[string][]ShaderError
	perf         map[string]*Performance
}

// New creates a monitor and runs the device checks once.
func New(profile device.Profile) *Monitor {
	return NewWithClock(profile, time.Now)
}

// NewWithClock is like New but reads time from now.
func NewWithClock(profile device.Profile, now func() time.Time) *Monitor {
	if now == nil {
		now = time.Now
	}
	m := &Monitor{
		profile:      profile,
		now:          now,
		shaderErrors: make(map[string][]ShaderError),
		perf:         make(map[string]*Performance),
	}
	m.check()
	return m
}

// check inspects the device profile for known problems.
func (m *Monitor) check() {
	p := m.profile
	if !p.Available {
		m.AddIssue(Critical, "Graphics backend not available", "This device does not provide a usable OpenGL context")
		return
	}

	if p.IsMobile {
		m.AddWarning("Mobile device - recommend using quality settings for better performance")
		if p.MaxFragmentUniforms < 64 {
			m.AddIssue(Medium, "Limited fragment uniforms", "Complex shaders may hit uniform limits")
		}
	}

	r := strings.ToLower(p.Renderer)
	if strings.Contains(r, "intel") && (strings.Contains(r, "3000") || strings.Contains(r, "4000")) {
		m.AddIssue(High, "Old Intel GPU detected", "Performance may be significantly reduced")
	}

	if p.MemoryGB > 0 && p.MemoryGB < 4 {
		m.AddWarning("Low device memory detected - consider reducing quality settings")
	}

	if p.PixelRatio > 2 {
		m.AddWarning("High pixel ratio detected - may impact performance on complex shaders")
	}

	if !p.Features.FloatTextures {
		m.AddIssue(High, "Float textures not supported", "Some advanced effects may not work")
	}
}

// AddIssue records a compatibility issue.
func (m *Monitor) AddIssue(sev Severity, title, desc string) {
	now := m.now()
	for i := range m.issues {
		v := &m.issues[i]
		if v.Severity == sev && v.Title == title && v.Description == desc {
			v.Count++
			v.Time = now
			return
		}
	}

	m.issues = append(m.issues, Issue{
		Severity:    sev,
		Title:       title,
		Description: desc,
		Time:        now,
		Count:       1,
		Renderer:    m.profile.Renderer,
		Mobile:      m.profile.IsMobile,
	})

	switch sev {
	case Critical, High:
		log.Printf("compat: %s: %s: %s", sev, title, desc)
	}
}

// AddWarning records an informational message.
func (m *Monitor) AddWarning(msg string) {
	m.warnings = append(m.warnings, Warning{Message: msg, Time: m.now()})
	log.Println("compat: warning:", msg)
}

// TrackGLError records a GL error code reported during rendering.
func (m *Monitor) TrackGLError(code uint32) {
	m.AddIssue(High, "GL Error: "+GLErrorName(code), "A GL error occurred during rendering")
}

// TrackShaderError records a failed compilation of src.
func (m *Monitor) TrackShaderError(src, infoLog string) {
	kind := ShaderKind(src)
	m.shaderErrors[kind] = append(m.shaderErrors[kind], ShaderError{
		Log:    infoLog,
		Source: excerpt(src),
		Time:   m.now(),
	})
	m.AddIssue(Critical, "Shader compilation failed: "+kind, infoLog)
}

// Issues returns the recorded issues.
func (m *Monitor) Issues() []Issue {
	return append([]Issue(nil), m.issues...)
}

// Warnings returns the recorded warnings.
func (m *Monitor) Warnings() []Warning {
	return append([]Warning(nil), m.warnings...)
}

// Count returns the number of issues with the given severity.
func (m *Monitor) Count(sev Severity) int {
	var n int
	for _, i := range m.issues {
		if i.Severity == sev {
			n++
		}
	}
	return n
}

// Recommendations returns remedies for the detected problems.
func (m *Monitor) Recommendations() []string {
	var out []string
	p := m.profile

	if p.IsMobile {
		out = append(out,
			"Use low quality settings for mobile devices",
			"Reduce shader complexity on mobile")
	}
	if m.Count(Critical) > 0 {
		out = append(out, "Critical issues detected - consider fallback rendering")
	}
	if p.PixelRatio > 2 {
		out = append(out, "High DPR detected - consider resolution scaling")
	}
	if !p.Features.FloatTextures {
		out = append(out, "Float textures not supported - use alternative techniques")
	}
	return out
}

// Summary is a short human-readable status line.
func (m *Monitor) Summary() string {
	c, h, md := m.Count(Critical), m.Count(High), m.Count(Medium)
	if c+h+md == 0 {
		return "no issues detected"
	}
	return fmt.Sprintf("%d critical, %d high, %d medium", c, h, md)
}

// Report is the diagnostic export of the monitor state.
type Report struct {
	Timestamp       time.Time                `json:"timestamp"`
	Device          device.Profile           `json:"deviceInfo"`
	Issues          []Issue                  `json:"issues"`
	Warnings        []Warning                `json:"warnings"`
	ShaderErrors    map[string][]ShaderError `json:"shaderErrors"`
	Performance     map[string]PerfReport    `json:"realPerformanceMetrics"`
	Recommendations []string                 `json:"recommendations"`
}

// Report returns the current monitor state.
func (m *Monitor) Report() Report {
	now := m.now()
	rep := Report{
		Timestamp:       now,
		Device:          m.profile,
		Issues:          m.Issues(),
		Warnings:        m.Warnings(),
		ShaderErrors:    make(map[string][]ShaderError, len(m.shaderErrors)),
		Performance:     make(map[string]PerfReport, len(m.perf)),
		Recommendations: m.Recommendations(),
	}

	for k, v := range m.shaderErrors {
		rep.ShaderErrors[k] = append([]ShaderError(nil), v...)
	}
	for id, p := range m.perf {
		if len(p.Samples) == 0 {
			continue
		}
		rep.Performance[id] = p.report(now)
	}
	return rep
}

// Shaders returns the ids with recorded performance data, sorted.
func (m *Monitor) Shaders() []string {
	out := make([]string, 0, len(m.perf))
	for id := range m.perf {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
