package device

import (
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
)

// GLQuerier queries the current OpenGL context.
// It must be used from the thread owning the context, after gl.Init.
type GLQuerier struct {
	window *glfw.Window
}

var _ Querier = &GLQuerier{}

// NewGLQuerier creates a querier for the context of the given window.
func NewGLQuerier(window *glfw.Window) *GLQuerier {
	return &GLQuerier{window: window}
}

// Query implements Querier.
func (p *GLQuerier) Query() (GPU, error) {
	var g GPU

	if p.window == nil {
		return g, errors.New("no window")
	}

	g.Renderer = glString(gl.RENDERER)
	if g.Renderer == "" {
		return g, errors.New("no current GL context")
	}

	g.Vendor = glString(gl.VENDOR)
	g.Version = glString(gl.VERSION)
	g.GLSLVersion = glString(gl.SHADING_LANGUAGE_VERSION)
	g.MaxTextureSize = glInt(gl.MAX_TEXTURE_SIZE)
	g.MaxVertexAttribs = glInt(gl.MAX_VERTEX_ATTRIBS)
	g.MaxFragmentUniforms = glInt(gl.MAX_FRAGMENT_UNIFORM_COMPONENTS) / 4
	g.MaxVertexUniforms = glInt(gl.MAX_VERTEX_UNIFORM_COMPONENTS) / 4

	var dims [2]int32
	gl.GetIntegerv(gl.MAX_VIEWPORT_DIMS, &dims[0])
	g.MaxViewportDims = [2]int{int(dims[0]), int(dims[1])}

	sx, _ := p.window.GetContentScale()
	g.PixelRatio = float64(sx)
	if g.PixelRatio <= 0 {
		g.PixelRatio = 1
	}

	modern := glInt(gl.MAJOR_VERSION) >= 3
	g.Features = DetectFeatures(modern, ParseExtensions(glExtensions()))

	if code := gl.GetError(); code != gl.NO_ERROR {
		return g, errors.Errorf("capability query raised GL error 0x%04x", code)
	}

	return g, nil
}

func glString(name uint32) string {
	s := gl.GetString(name)
	if s == nil {
		return ""
	}
	return gl.GoStr(s)
}

func glInt(name uint32) int {
	var v int32
	gl.GetIntegerv(name, &v)
	return int(v)
}

func glExtensions() []string {
	n := glInt(gl.NUM_EXTENSIONS)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if s := gl.GetStringi(gl.EXTENSIONS, uint32(i)); s != nil {
			out = append(out, gl.GoStr(s))
		}
	}
	return out
}
