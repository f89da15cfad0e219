package render

import (
	"log"
	"math"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

const fallbackVertex = `
#version 330 core

layout (location = 0) in vec3 position;

uniform mat4 u_model;
uniform mat4 u_view;
uniform mat4 u_projection;

void main() {
    gl_Position = u_projection * u_view * u_model * vec4(position, 1.0);
}
`

const fallbackFragment = `
#version 330 core

uniform vec4 u_color;

out vec4 fragColor;

void main() {
    fragColor = u_color;
}
`

// FallbackColor is the colour of the wireframe drawn when the material has
// no program.
var FallbackColor = [4]float32{1, 0, 0, 1}

// MinScale is the smallest supported render scale.
const MinScale = 0.25

// Renderer draws the cube with the live material. If the material never
// compiled, a red wireframe is drawn instead.
//
// With a render scale below 1 the cube is drawn into an offscreen target of
// the reduced size and stretched onto the window.
type Renderer struct {
	material *Material
	fallback uint32
	vao      uint32
	vbo      uint32
	count    int32
	scale    float64
	fbo      uint32
	color    uint32
	depth    uint32
	size     [2]int // Size of the offscreen target.
}

// NewRenderer creates a renderer for the given material.
func NewRenderer(material *Material) *Renderer {
	return &Renderer{material: material, scale: 1}
}

// SetScale sets the fraction of the window resolution the cube is rendered
// at. Values are clamped to [MinScale, 1].
func (r *Renderer) SetScale(scale float64) {
	r.scale = math.Max(MinScale, math.Min(1, scale))
}

// Scale returns the current render scale.
func (r *Renderer) Scale() float64 {
	return r.scale
}

// ScaledSize returns the render target size for a framebuffer of the given
// size. Neither dimension drops below one pixel.
func ScaledSize(width, height int, scale float64) (int, int) {
	w := int(math.Round(float64(width) * scale))
	h := int(math.Round(float64(height) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Name implements systems.System.
func (r *Renderer) Name() string { return "renderer" }

// Startup uploads the cube mesh and builds the initial program.
// A material which fails to compile is not an error; the wireframe
// fallback is used until a later Sync succeeds.
func (r *Renderer) Startup() error {
	var err error
	r.fallback, err = compileProgram(fallbackVertex, fallbackFragment)
	if err != nil {
		return errors.Wrapf(err, "failed to compile fallback shader")
	}

	vertices := Cube(1)
	r.count = int32(len(vertices) / Stride)

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, Stride*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, Stride*4, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, Stride*4, gl.PtrOffset(6*4))

	if err := r.material.Sync(); err != nil {
		log.Println("render: using wireframe fallback:", err)
	}
	return nil
}

// Shutdown releases GL resources.
func (r *Renderer) Shutdown() error {
	r.deleteTarget()
	r.material.Release()
	gl.DeleteProgram(r.fallback)
	gl.DeleteBuffers(1, &r.vbo)
	gl.DeleteVertexArrays(1, &r.vao)
	return nil
}

// Fallback returns true if the wireframe fallback is in use.
func (r *Renderer) Fallback() bool {
	return r.material.Program() == 0
}

// Draw renders one frame into the default framebuffer of the given size.
// The material is rebuilt first if it is dirty. A failed rebuild is
// returned after drawing with the previous program.
func (r *Renderer) Draw(model mgl32.Mat4, cam *Camera, width, height int, time float32) error {
	if width <= 0 || height <= 0 {
		return nil
	}

	w, h := ScaledSize(width, height, r.scale)
	scaled := w != width || h != height
	if scaled {
		if err := r.target(w, h); err != nil {
			log.Println("render: disabling render scale:", err)
			r.deleteTarget()
			r.scale = 1
			w, h, scaled = width, height, false
		}
	}

	if scaled {
		gl.BindFramebuffer(gl.FRAMEBUFFER, r.fbo)
	} else {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	}

	gl.Viewport(0, 0, int32(w), int32(h))
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	err := r.drawCube(model, cam, float32(w)/float32(h), time)

	if scaled {
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.fbo)
		gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
		gl.BlitFramebuffer(0, 0, int32(w), int32(h), 0, 0, int32(width), int32(height), gl.COLOR_BUFFER_BIT, gl.LINEAR)
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	}
	return err
}

// target makes sure the offscreen target exists with the given size.
func (r *Renderer) target(w, h int) error {
	if r.fbo != 0 && r.size == [2]int{w, h} {
		return nil
	}
	r.deleteTarget()

	gl.GenFramebuffers(1, &r.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, r.fbo)

	gl.GenRenderbuffers(1, &r.color)
	gl.BindRenderbuffer(gl.RENDERBUFFER, r.color)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.RGBA8, int32(w), int32(h))
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.RENDERBUFFER, r.color)

	gl.GenRenderbuffers(1, &r.depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, r.depth)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(w), int32(h))
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, r.depth)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return errors.Errorf("offscreen target incomplete (0x%04x)", status)
	}

	r.size = [2]int{w, h}
	return nil
}

func (r *Renderer) deleteTarget() {
	if r.fbo == 0 {
		return
	}
	gl.DeleteFramebuffers(1, &r.fbo)
	gl.DeleteRenderbuffers(1, &r.color)
	gl.DeleteRenderbuffers(1, &r.depth)
	r.fbo, r.color, r.depth = 0, 0, 0
	r.size = [2]int{}
}

// drawCube issues the draw call for the cube into the bound framebuffer.
func (r *Renderer) drawCube(model mgl32.Mat4, cam *Camera, aspect, time float32) error {
	err := r.material.Sync()

	view := cam.View()
	proj := cam.Projection(aspect)

	program := r.material.Program()
	if program == 0 {
		program = r.fallback
		gl.UseProgram(program)
		gl.Uniform4fv(gl.GetUniformLocation(program, glStr("u_color")), 1, &FallbackColor[0])
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		r.material.bind(time)
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	setMat4(program, "u_model", model)
	setMat4(program, "u_view", view)
	setMat4(program, "u_projection", proj)

	gl.BindVertexArray(r.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, r.count)
	return err
}

func setMat4(program uint32, name string, m mgl32.Mat4) {
	loc := gl.GetUniformLocation(program, glStr(name))
	gl.UniformMatrix4fv(loc, 1, false, &m[0])
}
