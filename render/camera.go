package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera zoom limits.
const (
	MinDistance = 1
	MaxDistance = 20
)

// DefaultDistance is the initial distance between camera and cube.
const DefaultDistance = 3

// Camera orbits a target point from a fixed direction.
type Camera struct {
	Target   mgl32.Vec3
	Distance float32
	FovY     float32 // Degrees.
	Near     float32
	Far      float32
}

// NewCamera returns a camera looking at the origin.
func NewCamera() *Camera {
	return &Camera{
		Distance: DefaultDistance,
		FovY:     75,
		Near:     0.1,
		Far:      1000,
	}
}

// Pan moves the target in the view plane. dx and dy are in pixels of a
// viewport with the given height.
func (c *Camera) Pan(dx, dy, viewportHeight float32) {
	if viewportHeight <= 0 {
		return
	}
	scale := 2 * c.Distance * tan(mgl32.DegToRad(c.FovY)/2) / viewportHeight
	c.Target = c.Target.Add(mgl32.Vec3{-dx * scale, dy * scale, 0})
}

// Zoom moves the camera closer for positive delta, clamped to
// [MinDistance, MaxDistance].
func (c *Camera) Zoom(delta float32) {
	c.Distance = mgl32.Clamp(c.Distance-delta, MinDistance, MaxDistance)
}

// Reset restores target and distance.
func (c *Camera) Reset() {
	c.Target = mgl32.Vec3{}
	c.Distance = DefaultDistance
}

// Eye returns the camera position.
func (c *Camera) Eye() mgl32.Vec3 {
	return c.Target.Add(mgl32.Vec3{0, 0, c.Distance})
}

// View returns the view matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.Target, mgl32.Vec3{0, 1, 0})
}

// Projection returns the projection matrix for the given aspect ratio.
func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

// Orientation is the rotation of the cube.
type Orientation struct {
	X, Y float32 // Radians.
	Auto bool    // Spin around both axes every frame.
}

// Auto rotation speed in radians per second.
const (
	autoSpeedX = 0.6
	autoSpeedY = 1.2
)

// dragSpeed converts mouse pixels to radians.
const dragSpeed = 0.01

// Update advances the automatic rotation by dt seconds.
func (o *Orientation) Update(dt float32) {
	if o.Auto {
		o.X += autoSpeedX * dt
		o.Y += autoSpeedY * dt
	}
}

// Drag rotates the cube by a mouse movement in pixels.
func (o *Orientation) Drag(dx, dy float32) {
	o.Y += dx * dragSpeed
	o.X += dy * dragSpeed
}

// Reset zeroes the rotation.
func (o *Orientation) Reset() {
	o.X, o.Y = 0, 0
}

// Model returns the model matrix.
func (o *Orientation) Model() mgl32.Mat4 {
	return mgl32.HomogRotate3DX(o.X).Mul4(mgl32.HomogRotate3DY(o.Y))
}

func tan(v float32) float32 {
	return float32(math.Tan(float64(v)))
}
