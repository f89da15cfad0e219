package device

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubQuerier struct {
	gpu GPU
	err error
}

func (s stubQuerier) Query() (GPU, error) { return s.gpu, s.err }

func TestDetectWithoutBackend(t *testing.T) {
	p := Detect(nil)
	assert.False(t, p.Available)
	assert.NotEmpty(t, p.Reason)
	assert.GreaterOrEqual(t, p.Cores, 1)
	assert.Greater(t, p.MemoryGB, 0.0)
}

func TestDetectFailingQuery(t *testing.T) {
	p := Detect(stubQuerier{err: errors.New("lost context")})
	assert.False(t, p.Available)
	assert.Contains(t, p.Reason, "lost context")
}

func TestDetectWithBackend(t *testing.T) {
	p := Detect(stubQuerier{gpu: GPU{Renderer: "TestGPU", MaxTextureSize: 8192}})
	assert.True(t, p.Available)
	assert.Equal(t, "TestGPU", p.Renderer)
	assert.Equal(t, 8192, p.MaxTextureSize)
}

func TestDetectFeatures(t *testing.T) {
	f := DetectFeatures(true, nil)
	assert.True(t, f.FloatTextures)
	assert.True(t, f.Derivatives)
	assert.False(t, f.Anisotropic)

	ext := ParseExtensions([]string{"GL_OES_texture_float", "OES_standard_derivatives", "GL_EXT_texture_filter_anisotropic", ""})
	f = DetectFeatures(false, ext)
	assert.True(t, f.FloatTextures)
	assert.True(t, f.Derivatives)
	assert.True(t, f.Anisotropic)
	assert.False(t, f.DepthTextures)
	assert.False(t, f.Modern)
}

func TestTrimVendor(t *testing.T) {
	for _, v := range []struct{ in, want string }{
		{"GL_ARB_texture_float", "texture_float"},
		{"OES_texture_float", "texture_float"},
		{"WEBGL_depth_texture", "depth_texture"},
		{"texture_float", "texture_float"},
	} {
		assert.Equal(t, v.want, trimVendor(v.in), v.in)
	}
}

func TestMemoryBucket(t *testing.T) {
	for _, v := range []struct {
		have float64
		want float64
	}{
		{7.6, 8},
		{15.5, 16},
		{3.8, 4},
		{6, 4},
		{12, 8},
		{32, 32},
		{1.4, 1},
		{0.3, 0.25},
		{0, 0},
	} {
		assert.Equal(t, v.want, MemoryBucket(v.have), "%v GB", v.have)
	}
}
