// Package skybox draws a cube map behind the scene.
package skybox

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/engine/glsl"
	"github.com/Faultbox/lumen/internal/engine/gpu"
	"github.com/Faultbox/lumen/internal/engine/resource"
	"github.com/Faultbox/lumen/internal/engine/shader"
	"github.com/Faultbox/lumen/internal/engine/texture"
	"github.com/Faultbox/lumen/internal/logger"
)

// ShaderName is the resource name of the skybox program.
const ShaderName = "skybox"

// Viewer supplies the camera matrices.
type Viewer interface {
	View() mgl32.Mat4
	Projection() mgl32.Mat4
}

// Skybox is a unit cube sampled with a cube map at maximum depth.
type Skybox struct {
	dev     gpu.Device
	view    Viewer
	shader  *shader.Shader
	cube    texture.Texture
	buffers gpu.MeshBuffers
}

// VertexSource returns the skybox vertex stage. Writing xyww puts every
// fragment on the far plane.
func VertexSource() *glsl.Source {
	s := &glsl.Source{}
	s.Add(
		glsl.Attribute(glsl.LocPosition, "vec3", "aPos"),
		glsl.Out("vec3", "TexCoords"),
		glsl.Uniform("mat4", glsl.UniformProjection),
		glsl.Uniform("mat4", glsl.UniformView),
	)
	s.Body(
		"TexCoords = aPos;",
		"vec4 pos = projection * view * vec4(aPos, 1.0);",
		"gl_Position = pos.xyww;",
	)
	return s
}

// FragmentSource returns the skybox fragment stage writing to out.
func FragmentSource(out string) *glsl.Source {
	if out == "" {
		out = glsl.DefaultOutColour
	}
	s := &glsl.Source{}
	s.Add(
		glsl.Out("vec4", out),
		glsl.In("vec3", "TexCoords"),
		glsl.Uniform("samplerCube", "skybox"),
	)
	s.Body(out + " = texture(skybox, TexCoords);")
	return s
}

// cube corners and the 12 triangles facing inwards
var (
	corners = []float32{
		-1, -1, -1,
		1, -1, -1,
		1, 1, -1,
		-1, 1, -1,
		-1, -1, 1,
		1, -1, 1,
		1, 1, 1,
		-1, 1, 1,
	}
	cubeIndices = []uint32{
		0, 2, 1, 0, 3, 2, // back
		4, 5, 6, 4, 6, 7, // front
		0, 4, 7, 0, 7, 3, // left
		1, 2, 6, 1, 6, 5, // right
		3, 7, 6, 3, 6, 2, // top
		0, 1, 5, 0, 5, 4, // bottom
	}
)

// New loads the six faces (+X, -X, +Y, -Y, +Z, -Z) as a cube map named name
// and builds the skybox program through res.
func New(res *resource.Manager, view Viewer, faces [6]string, name, outColour string) (*Skybox, error) {
	if _, err := res.LoadCubeMap(faces, false, name); err != nil {
		return nil, fmt.Errorf("skybox: %w", err)
	}
	cube, err := res.GetCubeMap(name)
	if err != nil {
		return nil, fmt.Errorf("skybox: %w", err)
	}

	res.LoadShaderSource(VertexSource().String(), FragmentSource(outColour).String(), ShaderName)
	sh, err := res.GetShader(ShaderName)
	if err != nil {
		return nil, fmt.Errorf("skybox: %w", err)
	}
	if !sh.Valid() {
		return nil, fmt.Errorf("skybox: shader invalid: %w", sh.Err())
	}

	dev := res.Device()
	sb := &Skybox{
		dev:    dev,
		view:   view,
		shader: sh,
		cube:   cube,
	}
	sb.buffers = dev.UploadMesh(corners, 3*4, []gpu.Attrib{{Location: glsl.LocPosition, Size: 3}}, cubeIndices)
	logger.Debug("skybox created", zap.String("cubemap", name), zap.Int("size", cube.Width))
	return sb, nil
}

// Draw renders the sky. transform rotates the sky; the camera translation is
// dropped so the cube stays centred on the eye.
func (s *Skybox) Draw(transform mgl32.Mat4) {
	view := s.view.View().Mul4(transform).Mat3().Mat4()

	s.dev.DepthLessEqual(true)
	s.shader.Use().
		SetMat4(glsl.UniformView, view).
		SetMat4(glsl.UniformProjection, s.view.Projection()).
		SetInt("skybox", 0)
	s.dev.BindCubeMap(0, s.cube.ID)
	s.dev.Draw(s.buffers)
	s.dev.DepthLessEqual(false)
}

// CubeMap returns the sampled cube map.
func (s *Skybox) CubeMap() texture.Texture {
	return s.cube
}

// Cleanup releases the cube geometry. The cube map and program belong to the
// resource manager.
func (s *Skybox) Cleanup() {
	s.dev.DeleteMesh(s.buffers)
}
