package engine

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/lumen/internal/engine/camera"
)

// Drawable is anything the game can draw with a model transform.
type Drawable interface {
	Draw(transform mgl32.Mat4)
}

// Renderer3D holds the camera state shared by every 3D draw of a frame.
type Renderer3D struct {
	view       mgl32.Mat4
	projection mgl32.Mat4
	cameraPos  mgl32.Vec3

	fov       float32
	near, far float32
	width     int
	height    int
}

// NewRenderer3D creates a renderer with identity view and a perspective for the given size.
func NewRenderer3D(fov, near, far float32, width, height int) *Renderer3D {
	r := &Renderer3D{
		view: mgl32.Ident4(),
		fov:  fov,
		near: near,
		far:  far,
	}
	r.Resize(width, height)
	return r
}

// View returns the view matrix.
func (r *Renderer3D) View() mgl32.Mat4 { return r.view }

// Projection returns the projection matrix.
func (r *Renderer3D) Projection() mgl32.Mat4 { return r.projection }

// CameraPos returns the eye position used for specular lighting.
func (r *Renderer3D) CameraPos() mgl32.Vec3 { return r.cameraPos }

// SetView sets the view matrix and the eye position.
func (r *Renderer3D) SetView(view mgl32.Mat4, eye mgl32.Vec3) {
	r.view = view
	r.cameraPos = eye
}

// UseCamera copies the camera's view and position.
func (r *Renderer3D) UseCamera(c camera.Camera) {
	r.SetView(c.ViewMatrix(), c.Position())
}

// SetFOV changes the vertical field of view in degrees.
func (r *Renderer3D) SetFOV(fov float32) {
	r.fov = fov
	r.updateProjection()
}

// Resize rebuilds the projection for a new framebuffer size.
func (r *Renderer3D) Resize(width, height int) {
	r.width, r.height = width, height
	r.updateProjection()
}

// Size returns the framebuffer size.
func (r *Renderer3D) Size() (int, int) {
	return r.width, r.height
}

func (r *Renderer3D) updateProjection() {
	r.projection = camera.Projection(r.fov, r.width, r.height, r.near, r.far)
}
