package render

import (
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/pkg/errors"
)

// ErrCompile is wrapped by all shader compile and link failures.
var ErrCompile = errors.New("shader compilation failed")

// CompileError describes a failed shader stage.
type CompileError struct {
	Stage  string // "vertex", "fragment" or "link".
	Log    string // Driver info log.
	Source string
}

func (e *CompileError) Error() string {
	return ErrCompile.Error() + ": " + e.Stage + ": " + strings.TrimSpace(e.Log)
}

// Unwrap returns ErrCompile.
func (e *CompileError) Unwrap() error {
	return ErrCompile
}

// glStr returns v as a C string, suitable for use with opengl.
func glStr(v string) *uint8 {
	return gl.Str(v + "\x00")
}

// compileProgram compiles the given shader sources into a program.
func compileProgram(vertex, fragment string) (uint32, error) {
	vs, err := compileShader(vertex, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vs)

	fs, err := compileShader(fragment, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fs)

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		return 0, &CompileError{Stage: "link", Log: strings.TrimRight(log, "\x00"), Source: fragment}
	}

	return program, nil
}

// compileShader compiles the given shader source.
func compileShader(source string, stype uint32) (uint32, error) {
	shader := gl.CreateShader(stype)

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		stage := "fragment"
		if stype == gl.VERTEX_SHADER {
			stage = "vertex"
		}
		return 0, &CompileError{Stage: stage, Log: strings.TrimRight(log, "\x00"), Source: source}
	}

	return shader, nil
}

// GLErrors drains the GL error queue and returns the codes found.
func GLErrors() []uint32 {
	var out []uint32
	for i := 0; i < 16; i++ {
		code := gl.GetError()
		if code == gl.NO_ERROR {
			break
		}
		out = append(out, code)
	}
	return out
}
