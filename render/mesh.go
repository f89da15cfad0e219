package render

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Stride is the number of floats per cube vertex: position, normal, uv.
const Stride = 8

// faces lists the outward normal, up and right vectors of each cube face.
var faces = [6][3]mgl32.Vec3{
	{{0, 0, 1}, {0, 1, 0}, {1, 0, 0}},
	{{0, 0, -1}, {0, 1, 0}, {-1, 0, 0}},
	{{1, 0, 0}, {0, 1, 0}, {0, 0, -1}},
	{{-1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	{{0, 1, 0}, {0, 0, -1}, {1, 0, 0}},
	{{0, -1, 0}, {0, 0, 1}, {1, 0, 0}},
}

// Cube returns the triangles of a cube with edge length 2*half, centered at
// the origin. Every face maps the full [0,1] uv range.
func Cube(half float32) []float32 {
	corners := [6][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 0}, {1, 1}, {0, 1}}

	out := make([]float32, 0, 6*6*Stride)
	for _, f := range faces {
		n, up, right := f[0], f[1], f[2]
		for _, uv := range corners {
			p := n.Add(right.Mul(uv[0]*2 - 1)).Add(up.Mul(uv[1]*2 - 1)).Mul(half)
			out = append(out, p[0], p[1], p[2], n[0], n[1], n[2], uv[0], uv[1])
		}
	}
	return out
}
