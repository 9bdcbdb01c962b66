// Package camera provides camera implementations for 3D rendering.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera produces a view matrix and the eye position used for lighting.
type Camera interface {
	ViewMatrix() mgl32.Mat4
	Position() mgl32.Vec3
	// Front is the unit viewing direction.
	Front() mgl32.Vec3
}

var worldUp = mgl32.Vec3{0, 1, 0}

// Projection returns a perspective projection for the given vertical field of
// view in degrees.
func Projection(fovDeg float32, width, height int, near, far float32) mgl32.Mat4 {
	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	return mgl32.Perspective(mgl32.DegToRad(fovDeg), aspect, near, far)
}

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center mgl32.Vec3

	// Spherical coordinates
	Distance  float32
	RotationX float32 // pitch, radians
	RotationY float32 // yaw, radians

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        5.0,
		RotationX:       0.4,
		MinDistance:     0.5,
		MaxDistance:     500.0,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	sx, cx := sincos(c.RotationX)
	sy, cy := sincos(c.RotationY)
	return c.Center.Add(mgl32.Vec3{cx * sy, sx, cx * cy}.Mul(c.Distance))
}

// Front returns the direction from the eye to the center.
func (c *OrbitCamera) Front() mgl32.Vec3 {
	return c.Center.Sub(c.Position()).Normalize()
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Center, worldUp)
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX = mgl32.Clamp(c.RotationX+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance = mgl32.Clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// FitToBounds centres the camera on a box and backs off far enough to see it.
func (c *OrbitCamera) FitToBounds(min, max mgl32.Vec3) {
	c.Center = min.Add(max).Mul(0.5)
	size := max.Sub(min).Len()
	c.Distance = mgl32.Clamp(size*1.2, c.MinDistance, c.MaxDistance)
	c.RotationX = 0.4
	c.RotationY = 0
}

// FlyCamera moves freely with yaw/pitch mouse look.
type FlyCamera struct {
	Pos   mgl32.Vec3
	Yaw   float32 // degrees, -90 looks down -Z
	Pitch float32 // degrees
	Zoom  float32 // field of view in degrees

	Speed       float32
	Sensitivity float32

	front mgl32.Vec3
	right mgl32.Vec3
	up    mgl32.Vec3
}

// NewFlyCamera creates a camera at pos looking down -Z.
func NewFlyCamera(pos mgl32.Vec3) *FlyCamera {
	c := &FlyCamera{
		Pos:         pos,
		Yaw:         -90,
		Zoom:        45,
		Speed:       2.5,
		Sensitivity: 0.1,
	}
	c.updateVectors()
	return c
}

func (c *FlyCamera) updateVectors() {
	sy, cy := sincos(mgl32.DegToRad(c.Yaw))
	sp, cp := sincos(mgl32.DegToRad(c.Pitch))
	c.front = mgl32.Vec3{cy * cp, sp, sy * cp}.Normalize()
	c.right = c.front.Cross(worldUp).Normalize()
	c.up = c.right.Cross(c.front).Normalize()
}

// Position returns the eye position.
func (c *FlyCamera) Position() mgl32.Vec3 {
	return c.Pos
}

// Front returns the viewing direction.
func (c *FlyCamera) Front() mgl32.Vec3 {
	return c.front
}

// ViewMatrix returns the view matrix for this camera.
func (c *FlyCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Pos, c.Pos.Add(c.front), c.up)
}

// HandleMovement moves along the view axes; arguments are -1..1 and dt is in seconds.
func (c *FlyCamera) HandleMovement(forward, right, up, dt float32) {
	v := c.Speed * dt
	c.Pos = c.Pos.
		Add(c.front.Mul(forward * v)).
		Add(c.right.Mul(right * v)).
		Add(worldUp.Mul(up * v))
}

// HandleLook turns the camera by a mouse delta. Pitch is clamped to avoid flipping.
func (c *FlyCamera) HandleLook(deltaX, deltaY float32) {
	c.Yaw += deltaX * c.Sensitivity
	c.Pitch = mgl32.Clamp(c.Pitch-deltaY*c.Sensitivity, -89, 89)
	c.updateVectors()
}

// Face turns the camera to look along dir.
func (c *FlyCamera) Face(dir mgl32.Vec3) {
	if dir.Len() == 0 {
		return
	}
	dir = dir.Normalize()
	c.Yaw = mgl32.RadToDeg(float32(gomath.Atan2(float64(dir.Z()), float64(dir.X()))))
	c.Pitch = mgl32.Clamp(mgl32.RadToDeg(float32(gomath.Asin(float64(dir.Y())))), -89, 89)
	c.updateVectors()
}

// HandleZoom narrows or widens the field of view.
func (c *FlyCamera) HandleZoom(delta float32) {
	c.Zoom = mgl32.Clamp(c.Zoom-delta, 1, 45)
}

func sincos(rad float32) (sin, cos float32) {
	s, c := gomath.Sincos(float64(rad))
	return float32(s), float32(c)
}
