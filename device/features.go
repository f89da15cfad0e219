package device

import "strings"

// Extensions is a set of extension names reported by the backend.
type Extensions map[string]bool

// ParseExtensions builds a set from a list of extension names.
// Names are matched without their vendor prefix (GL_ARB_, GL_EXT_, ...).
func ParseExtensions(names []string) Extensions {
	set := make(Extensions, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		set[trimVendor(name)] = true
	}
	return set
}

// Has returns true if any of the given extensions is present.
func (e Extensions) Has(names ...string) bool {
	for _, name := range names {
		if e[trimVendor(name)] {
			return true
		}
	}
	return false
}

// trimVendor strips the API and vendor prefix, so that GL_ARB_texture_float
// and OES_texture_float both become texture_float.
func trimVendor(name string) string {
	name = strings.TrimPrefix(name, "GL_")
	if i := strings.IndexByte(name, '_'); i > 0 && strings.ToUpper(name[:i]) == name[:i] {
		name = name[i+1:]
	}
	return name
}

// DetectFeatures derives the feature set. A modern context gets every
// feature which is core in GL 3.x; older ones depend on extensions.
func DetectFeatures(modern bool, ext Extensions) Features {
	return Features{
		Modern:                modern,
		FloatTextures:         modern || ext.Has("texture_float"),
		HalfFloatTextures:     modern || ext.Has("texture_half_float"),
		DepthTextures:         modern || ext.Has("depth_texture"),
		Derivatives:           modern || ext.Has("standard_derivatives"),
		VertexArrayObject:     modern || ext.Has("vertex_array_object"),
		InstancedArrays:       modern || ext.Has("instanced_arrays"),
		MultipleRenderTargets: modern || ext.Has("draw_buffers"),
		ColorBufferFloat:      modern || ext.Has("color_buffer_float"),
		Anisotropic:           ext.Has("texture_filter_anisotropic"),
	}
}
