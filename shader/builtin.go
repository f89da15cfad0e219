package shader

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed glsl/*.glsl
var builtin embed.FS

// VertexID names the shared vertex shader.
const VertexID = "vertex"

// DefaultID names the fragment shader shown at startup.
const DefaultID = "fragment_gradient"

// Builtin returns the file system holding the bundled shaders.
func Builtin() fs.FS {
	sub, err := fs.Sub(builtin, "glsl")
	if err != nil {
		panic(err)
	}
	return sub
}

// DefaultPaths maps the bundled shader ids to their file names in Builtin.
func DefaultPaths() map[string]string {
	entries, err := fs.ReadDir(builtin, "glsl")
	if err != nil {
		panic(err)
	}

	paths := make(map[string]string, len(entries))
	for _, e := range entries {
		name := e.Name()
		paths[strings.TrimSuffix(name, Ext)] = name
	}
	return paths
}

// Ext is the file extension of shader sources.
const Ext = ".glsl"

// IDs returns the fragment shader ids in paths, sorted.
func IDs(paths map[string]string) []string {
	out := make([]string, 0, len(paths))
	for id := range paths {
		if id != VertexID {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// DisplayName returns the short upper-case name of a shader id.
func DisplayName(id string) string {
	return strings.ToUpper(strings.TrimPrefix(id, "fragment_"))
}
