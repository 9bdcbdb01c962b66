package model

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/engine/glsl"
	"github.com/Faultbox/lumen/internal/engine/gpu"
	"github.com/Faultbox/lumen/internal/engine/lighting"
	"github.com/Faultbox/lumen/internal/engine/shader"
	"github.com/Faultbox/lumen/internal/engine/texture"
	"github.com/Faultbox/lumen/internal/logger"
)

// Viewer supplies the camera state bound by UpdatePerspective.
type Viewer interface {
	View() mgl32.Mat4
	Projection() mgl32.Mat4
	CameraPos() mgl32.Vec3
}

// Mesh is geometry plus a shader synthesized from its textures and the scene lights.
//
// Textures are copies of handles owned by the resource manager; the mesh
// never deletes them.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Textures []texture.Texture
	Material Material

	// Roles and OutColour feed shader synthesis; change them before AutoCreateShader.
	Roles     RoleNames
	OutColour string
	// Debug dumps the synthesized sources when a program fails to build.
	Debug bool

	dev        gpu.Device
	counts     [4]int
	shader     *shader.Shader
	vertexSrc  *glsl.Source
	fragSrc    *glsl.Source
	buffers    gpu.MeshBuffers
	uploaded   bool
	bounds     Bounds
	boundsDone bool
}

// NewMesh creates a mesh. Nothing touches the GPU until AutoCreateShader and Init.
func NewMesh(dev gpu.Device, vertices []Vertex, indices []uint32, textures []texture.Texture, material Material) *Mesh {
	return &Mesh{
		Vertices:  vertices,
		Indices:   indices,
		Textures:  textures,
		Material:  material,
		Roles:     DefaultRoles(),
		OutColour: glsl.DefaultOutColour,
		dev:       dev,
	}
}

// UseTextures reports whether any texture is attached.
func (m *Mesh) UseTextures() bool {
	return len(m.Textures) > 0
}

func (m *Mesh) countRoles() {
	roles := m.Roles.list()
	m.counts = [4]int{}
	for _, t := range m.Textures {
		for i, desc := range roles {
			if t.Desc == desc {
				m.counts[i]++
				break
			}
		}
	}
}

// RoleCounts returns the number of textures per role, in the order
// diffuse, specular, normal, height.
func (m *Mesh) RoleCounts() []glsl.RoleCount {
	m.countRoles()
	roles := m.Roles.list()
	out := make([]glsl.RoleCount, len(roles))
	for i, desc := range roles {
		out[i] = glsl.RoleCount{Desc: desc, Count: m.counts[i]}
	}
	return out
}

func lightCounts(lights *lighting.Manager) glsl.LightCounts {
	if lights == nil {
		return glsl.LightCounts{}
	}
	c := lights.Counts()
	return glsl.LightCounts{Dir: c.Dir, Point: c.Point, Spot: c.Spots()}
}

// AutoCreateShader synthesizes sources for the current textures and lights and
// replaces the mesh's program. It reports whether the new program is valid; an
// invalid program is kept and Draw skips it.
func (m *Mesh) AutoCreateShader(lights *lighting.Manager) bool {
	useTextures := m.UseTextures()
	m.vertexSrc = glsl.Vertex(glsl.VertexOptions{UseTextures: useTextures})
	m.fragSrc = glsl.Fragment(glsl.FragmentOptions{
		OutColour:    m.OutColour,
		UseTextures:  useTextures,
		Roles:        m.RoleCounts(),
		DiffuseDesc:  m.Roles.Diffuse,
		SpecularDesc: m.Roles.Specular,
		Lights:       lightCounts(lights),
	})

	vs, fs := m.vertexSrc.String(), m.fragSrc.String()
	if m.shader != nil {
		m.shader.Delete()
	}
	m.shader = shader.New(m.dev, vs, fs)

	if !m.shader.Valid() {
		if m.Debug {
			logger.Warn("computed shader invalid",
				zap.String("vertex", vs),
				zap.String("fragment", fs),
				zap.Error(m.shader.Err()))
		}
		return false
	}
	logger.Debug("mesh shader compiled", zap.Uint32("program", uint32(m.shader.ID())))
	return true
}

// Init uploads the interleaved geometry. Texture coordinate and tangent
// attributes are only enabled when the mesh has textures.
func (m *Mesh) Init() {
	if m.uploaded {
		m.dev.DeleteMesh(m.buffers)
	}
	data := make([]float32, 0, len(m.Vertices)*vertexFloats)
	for _, v := range m.Vertices {
		data = append(data, v.Position[:]...)
		data = append(data, v.Normal[:]...)
		data = append(data, v.TexCoords[:]...)
		data = append(data, v.Tangent[:]...)
		data = append(data, v.Bitangent[:]...)
	}

	attribs := []gpu.Attrib{
		{Location: glsl.LocPosition, Size: 3, Offset: 0},
		{Location: glsl.LocNormal, Size: 3, Offset: 3 * 4},
	}
	if m.UseTextures() {
		attribs = append(attribs,
			gpu.Attrib{Location: glsl.LocTexCoords, Size: 2, Offset: 6 * 4},
			gpu.Attrib{Location: glsl.LocTangent, Size: 3, Offset: 8 * 4},
			gpu.Attrib{Location: glsl.LocBitangent, Size: 3, Offset: 11 * 4},
		)
	}
	m.buffers = m.dev.UploadMesh(data, vertexFloats*4, attribs, m.Indices)
	m.uploaded = true
}

// UpdatePerspective binds the camera and every light of the registry. Array
// element i of each light uniform array is taken from element i of the
// registry category; flash lights follow the spot lights in spotLights.
func (m *Mesh) UpdatePerspective(view Viewer, lights *lighting.Manager) {
	if !m.shader.Valid() {
		return
	}
	s := m.shader.Use()
	if view != nil {
		s.SetMat4(glsl.UniformProjection, view.Projection()).
			SetMat4(glsl.UniformView, view.View()).
			SetVec3(glsl.UniformViewPos, view.CameraPos())
	}
	if lights == nil {
		return
	}

	for i, l := range lights.DirLights() {
		name := func(f string) string { return glsl.UniformName(glsl.DirLightArray, i, f) }
		s.SetVec3(name("direction"), l.Direction).
			SetVec3(name("ambient"), l.Ambient).
			SetVec3(name("diffuse"), l.Diffuse).
			SetVec3(name("specular"), l.Specular)
	}
	for i, l := range lights.PointLights() {
		name := func(f string) string { return glsl.UniformName(glsl.PointLightArray, i, f) }
		s.SetVec3(name("position"), l.Position).
			SetFloat(name("constant"), l.Constant).
			SetFloat(name("linear"), l.Linear).
			SetFloat(name("quadratic"), l.Quadratic).
			SetVec3(name("ambient"), l.Ambient).
			SetVec3(name("diffuse"), l.Diffuse).
			SetVec3(name("specular"), l.Specular)
	}
	for i, l := range lights.Spots() {
		name := func(f string) string { return glsl.UniformName(glsl.SpotLightArray, i, f) }
		s.SetVec3(name("position"), l.Position).
			SetVec3(name("direction"), l.Direction).
			SetFloat(name("cutOff"), l.CutOff).
			SetFloat(name("outerCutOff"), l.OuterCutOff).
			SetFloat(name("constant"), l.Constant).
			SetFloat(name("linear"), l.Linear).
			SetFloat(name("quadratic"), l.Quadratic).
			SetVec3(name("ambient"), l.Ambient).
			SetVec3(name("diffuse"), l.Diffuse).
			SetVec3(name("specular"), l.Specular)
	}
}

// Draw renders the mesh with the given model transform. Textures are bound to
// units 0..n-1 in stored order and each sampler gets its role's running
// 1-based index, matching the synthesized declarations. A mesh without a
// valid shader is skipped.
func (m *Mesh) Draw(transform mgl32.Mat4) {
	if !m.shader.Valid() || !m.uploaded {
		return
	}
	s := m.shader.Use()
	s.SetMat4(glsl.UniformModel, transform)

	mat := m.Material
	s.SetVec3(glsl.MaterialField("ambient"), mat.Ambient).
		SetVec3(glsl.MaterialField("diffuse"), mat.Diffuse).
		SetVec3(glsl.MaterialField("specular"), mat.Specular).
		SetFloat(glsl.MaterialField("shininess"), mat.Shininess).
		SetFloat(glsl.MaterialField("ambientMix"), 1-mat.AmbientTexBlend).
		SetFloat(glsl.MaterialField("diffuseMix"), 1-mat.DiffuseTexBlend).
		SetFloat(glsl.MaterialField("specularMix"), 1-mat.SpecularTexBlend)

	if m.UseTextures() {
		next := make(map[string]int, 4)
		for i, tex := range m.Textures {
			unit := uint32(i)
			next[tex.Desc]++
			s.SetInt(glsl.SamplerName(tex.Desc, next[tex.Desc]), int32(unit))
			m.dev.BindTexture(unit, tex.ID)
		}
	}

	m.dev.Draw(m.buffers)
}

// Cleanup releases the geometry buffers and the mesh's own shader. Textures
// belong to the resource manager and are left alone.
func (m *Mesh) Cleanup() {
	if m.uploaded {
		m.dev.DeleteMesh(m.buffers)
		m.uploaded = false
	}
	if m.shader != nil {
		m.shader.Delete()
	}
}

// Shader returns the current program, nil before AutoCreateShader.
func (m *Mesh) Shader() *shader.Shader {
	return m.shader
}

// VertexSource returns the last synthesized vertex stage.
func (m *Mesh) VertexSource() *glsl.Source {
	return m.vertexSrc
}

// FragmentSource returns the last synthesized fragment stage.
func (m *Mesh) FragmentSource() *glsl.Source {
	return m.fragSrc
}

// Bounds returns the bounding box of the vertex positions.
func (m *Mesh) Bounds() Bounds {
	if !m.boundsDone {
		m.bounds = emptyBounds()
		for _, v := range m.Vertices {
			m.bounds.add(v.Position)
		}
		m.boundsDone = true
	}
	return m.bounds
}

// Description lists the texture count of each role.
func (m *Mesh) Description() string {
	m.countRoles()
	var b strings.Builder
	labels := [4]string{"Diffuse", "Specular", "Normal", "Height"}
	for i, desc := range m.Roles.list() {
		fmt.Fprintf(&b, "Num %s: (%s) - %d\n", labels[i], desc, m.counts[i])
	}
	return b.String()
}
