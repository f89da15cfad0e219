// Package render draws the shaded cube.
//
// Everything in this package which touches OpenGL must run on the thread
// owning the GL context. Material keeps its GL calls behind a compile
// function so the shader bookkeeping can be used without a context.
package render

import (
	"log"
	"sort"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/pkg/errors"
)

// CompileFunc builds a program from vertex and fragment source.
type CompileFunc func(vertex, fragment string) (uint32, error)

// DefaultUniforms returns the initial value of every float uniform the
// bundled shaders read.
func DefaultUniforms() map[string]float32 {
	return map[string]float32{
		"u_colorSpeed":        1.5,
		"u_gradientScale":     0.1,
		"u_brightness":        0.0,
		"u_contrast":          1.1,
		"u_hueShift":          1.0,
		"u_colorPalette":      0.0,
		"u_waveFrequency":     8.0,
		"u_waveAmplitude":     0.6,
		"u_waveSpeed":         1.5,
		"u_waveDirection":     0.3,
		"u_colorIntensity":    1.2,
		"u_noiseIntensity":    1.5,
		"u_noiseScale":        3.0,
		"u_animationSpeed":    0.8,
		"u_colorMix":          0.4,
		"u_glitchIntensity":   0.4,
		"u_glitchFrequency":   3.0,
		"u_colorSeparation":   0.02,
		"u_blockSize":         20.0,
		"u_scanlineIntensity": 1.0,
		"u_noiseAmount":       1.2,
		"u_segments":          6.0,
		"u_rotationSpeed":     1.0,
		"u_mirrorIntensity":   0.8,
		"u_centerOffsetX":     0.0,
		"u_centerOffsetY":     0.0,
		"u_zoom":              1.0,
		"u_saturation":        1.0,
		"u_colorMode":         0.0,
		"u_blurIntensity":     2.0,
		"u_blurDirection":     0.0,
		"u_focusPoint":        0.5,
		"u_falloffRange":      0.5,
		"u_colorShift":        0.0,
		"u_samples":           16.0,
		"u_effects":           1.0,
	}
}

// brightness holds shader specific defaults for u_brightness.
var brightness = map[string]float32{
	"fragment_colorspace": 1.0,
}

// Material is the live shader program of the cube.
type Material struct {
	shaderID  string
	vertex    string
	fragment  string
	uniforms  map[string]float32
	defaults  map[string]float32
	locations map[string]int32
	dirty     bool
	program   uint32
	compile   CompileFunc
	release   func(uint32)
	onError   func(*CompileError)
}

// NewMaterial creates a material with the given vertex shader. It compiles
// through OpenGL.
func NewMaterial(vertex string) *Material {
	return newMaterial(vertex, compileProgram, func(p uint32) { gl.DeleteProgram(p) })
}

func newMaterial(vertex string, compile CompileFunc, release func(uint32)) *Material {
	m := &Material{
		vertex:   vertex,
		defaults: DefaultUniforms(),
		compile:  compile,
		release:  release,
	}
	m.ResetUniforms()
	return m
}

// OnCompileError registers a handler called with every failed compilation.
func (m *Material) OnCompileError(f func(*CompileError)) {
	m.onError = f
}

// SetShader replaces the fragment shader with the source of shader id and
// restores the uniform defaults for it.
func (m *Material) SetShader(id, src string) {
	m.shaderID = id
	m.defaults = shaderDefaults(id)
	m.ResetUniforms()
	m.SetFragmentShader(src)
	m.MarkDirty()
}

// Activate is SetShader followed by an immediate Sync, so that the cost
// and failure of the compilation are seen by the caller.
func (m *Material) Activate(id, src string) error {
	m.SetShader(id, src)
	return m.Sync()
}

func shaderDefaults(id string) map[string]float32 {
	d := DefaultUniforms()
	if b, ok := brightness[id]; ok {
		d["u_brightness"] = b
	}
	return d
}

// ShaderID returns the id of the current fragment shader.
func (m *Material) ShaderID() string {
	return m.shaderID
}

// FragmentShader returns the current fragment shader source.
func (m *Material) FragmentShader() string {
	return m.fragment
}

// SetFragmentShader replaces the fragment source. The program is rebuilt by
// the next Sync after MarkDirty.
func (m *Material) SetFragmentShader(src string) {
	m.fragment = src
}

// MarkDirty schedules recompilation.
func (m *Material) MarkDirty() {
	m.dirty = true
}

// Dirty returns true if the program is out of date.
func (m *Material) Dirty() bool {
	return m.dirty
}

// Program returns the current program. It is zero until the first
// successful Sync.
func (m *Material) Program() uint32 {
	return m.program
}

// Sync rebuilds the program if the material is dirty. On failure the
// previous program stays in use.
func (m *Material) Sync() error {
	if !m.dirty {
		return nil
	}
	m.dirty = false

	prog, err := m.compile(m.vertex, m.fragment)
	if err != nil {
		var ce *CompileError
		if errors.As(err, &ce) && m.onError != nil {
			m.onError(ce)
		}
		return errors.Wrapf(err, "material %s", m.shaderID)
	}

	if m.program != 0 {
		m.release(m.program)
	}
	m.program = prog
	m.locations = make(map[string]int32)
	log.Printf("render: compiled %s (%d bytes)", m.shaderID, len(m.fragment))
	return nil
}

// Release deletes the program.
func (m *Material) Release() {
	if m.program != 0 {
		m.release(m.program)
		m.program = 0
	}
}

// Default returns the default value of a uniform.
func (m *Material) Default(name string) (float32, bool) {
	v, ok := m.defaults[name]
	return v, ok
}

// Uniform returns the current value of a uniform.
func (m *Material) Uniform(name string) (float32, bool) {
	v, ok := m.uniforms[name]
	return v, ok
}

// Set assigns a uniform value. Unknown names are ignored.
func (m *Material) Set(name string, v float32) {
	if _, ok := m.uniforms[name]; ok {
		m.uniforms[name] = v
	}
}

// ResetUniforms restores every uniform to its default.
func (m *Material) ResetUniforms() {
	m.uniforms = make(map[string]float32, len(m.defaults))
	for k, v := range m.defaults {
		m.uniforms[k] = v
	}
}

// UniformNames returns the names of all uniforms, sorted.
func (m *Material) UniformNames() []string {
	out := make([]string, 0, len(m.uniforms))
	for k := range m.uniforms {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// bind makes the program current and uploads all uniforms.
func (m *Material) bind(time float32) {
	gl.UseProgram(m.program)
	gl.Uniform1f(m.location("u_time"), time)
	for name, v := range m.uniforms {
		if loc := m.location(name); loc >= 0 {
			gl.Uniform1f(loc, v)
		}
	}
}

func (m *Material) location(name string) int32 {
	if loc, ok := m.locations[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(m.program, glStr(name))
	m.locations[name] = loc
	return loc
}
