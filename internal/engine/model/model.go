package model

import (
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/engine/asset"
	"github.com/Faultbox/lumen/internal/engine/gpu"
	"github.com/Faultbox/lumen/internal/engine/lighting"
	"github.com/Faultbox/lumen/internal/engine/resource"
	"github.com/Faultbox/lumen/internal/engine/texture"
	"github.com/Faultbox/lumen/internal/logger"
)

// Context is the part of the engine a model needs.
type Context interface {
	Device() gpu.Device
	Resources() *resource.Manager
	Lights() *lighting.Manager
	Renderer() Viewer
}

// texturePrefix namespaces model textures in the resource cache.
const texturePrefix = "model_"

// Model is an ordered list of meshes loaded from one asset file.
type Model struct {
	Path string

	meshes    []*Mesh
	dir       string
	debug     bool
	importer  asset.Importer
	roles     RoleNames
	outColour string

	prevLightCount int
	prevVersion    uint64
	regenerations  int
}

// Option configures LoadModel.
type Option func(*Model)

// WithImporter replaces the default extension-based importer.
func WithImporter(imp asset.Importer) Option {
	return func(m *Model) { m.importer = imp }
}

// WithRoles overrides the texture role names of every mesh.
func WithRoles(r RoleNames) Option {
	return func(m *Model) { m.roles = r }
}

// WithOutColour renames the fragment output of every mesh.
func WithOutColour(name string) Option {
	return func(m *Model) { m.outColour = name }
}

// LoadModel imports the file at path and builds one mesh per imported mesh,
// walking the node tree depth first. Textures are loaded through the resource
// cache under "model_<dir>/<file>" so meshes and models share them. A file
// that fails to import is logged and yields a model without meshes.
func LoadModel(ctx Context, path string, opts ...Option) *Model {
	m := &Model{
		Path:     path,
		dir:      filepath.Dir(path),
		debug:    ctx.Resources().Debug(),
		importer: asset.DefaultImporters(),
		roles:    DefaultRoles(),
	}
	for _, opt := range opts {
		opt(m)
	}

	scene, err := m.importer.Import(path)
	if err != nil {
		logger.Error("model import failed", zap.String("path", path), zap.Error(err))
		return m
	}
	if scene.Root == nil {
		for i := range scene.Meshes {
			m.meshes = append(m.meshes, m.processMesh(ctx, scene, i))
		}
	} else {
		m.processNode(ctx, scene, scene.Root)
	}
	logger.Info("model loaded", zap.String("path", path), zap.Int("meshes", len(m.meshes)))
	return m
}

func (m *Model) processNode(ctx Context, scene *asset.Scene, node *asset.Node) {
	for _, idx := range node.Meshes {
		if idx < 0 || idx >= len(scene.Meshes) {
			logger.Warn("node references missing mesh", zap.String("node", node.Name), zap.Int("mesh", idx))
			continue
		}
		m.meshes = append(m.meshes, m.processMesh(ctx, scene, idx))
	}
	for _, child := range node.Children {
		m.processNode(ctx, scene, child)
	}
}

func (m *Model) processMesh(ctx Context, scene *asset.Scene, idx int) *Mesh {
	data := scene.Meshes[idx]

	vertices := make([]Vertex, len(data.Positions))
	for i, p := range data.Positions {
		v := Vertex{Position: p}
		if i < len(data.Normals) {
			v.Normal = data.Normals[i]
		}
		if i < len(data.TexCoords) {
			v.TexCoords = data.TexCoords[i]
		}
		if i < len(data.Tangents) {
			v.Tangent = data.Tangents[i]
		}
		if i < len(data.Bitangents) {
			v.Bitangent = data.Bitangents[i]
		}
		vertices[i] = v
	}

	md := scene.Material(idx)
	material := Material{
		Ambient:          md.Ambient,
		Diffuse:          md.Diffuse,
		Specular:         md.Specular,
		Emissive:         md.Emissive,
		Transparent:      md.Transparent,
		Shininess:        md.Shininess,
		AmbientTexBlend:  md.AmbientTexBlend,
		DiffuseTexBlend:  md.DiffuseTexBlend,
		SpecularTexBlend: md.SpecularTexBlend,
	}

	// height slots carry normal maps and ambient slots height maps in the
	// formats we import, so they feed the normal and height roles
	var textures []texture.Texture
	for _, slot := range []struct {
		typ  asset.TextureType
		desc string
	}{
		{asset.TextureDiffuse, m.roles.Diffuse},
		{asset.TextureSpecular, m.roles.Specular},
		{asset.TextureHeight, m.roles.Normal},
		{asset.TextureAmbient, m.roles.Height},
	} {
		textures = append(textures, m.loadTextures(ctx.Resources(), md.Textures[slot.typ], slot.desc)...)
	}

	mesh := NewMesh(ctx.Device(), vertices, data.Indices, textures, material)
	mesh.Roles = m.roles
	if m.outColour != "" {
		mesh.OutColour = m.outColour
	}
	mesh.Debug = m.debug
	return mesh
}

// loadTextures returns handles for the given material texture paths, tagged
// with desc. Paths already cached are reused; others are loaded with mipmaps
// and without flipping.
func (m *Model) loadTextures(res *resource.Manager, paths []string, desc string) []texture.Texture {
	var out []texture.Texture
	for _, rel := range paths {
		path := filepath.Join(m.dir, rel)
		name := texturePrefix + path

		var (
			tex texture.Texture
			err error
		)
		if res.TextureLoaded(name) {
			tex, err = res.GetTexture(name)
		} else {
			tex, err = res.LoadTexture(path, name, false, true)
			res.MarkTextureUsed(name)
		}
		if err != nil {
			logger.Warn("model texture skipped", zap.String("model", m.Path), zap.String("path", path), zap.Error(err))
			continue
		}
		out = append(out, tex.WithDesc(desc))
	}
	return out
}

// Init builds each mesh's shader for the current lights and uploads its geometry.
func (m *Model) Init(ctx Context) {
	lights := ctx.Lights()
	for _, mesh := range m.meshes {
		mesh.AutoCreateShader(lights)
		mesh.Init()
	}
	m.prevLightCount = lights.Count()
	m.prevVersion = lights.Version()
}

// UpdatePerspective regenerates every mesh shader when the number of lights
// changed since the last call, then binds camera and light uniforms.
//
// Only the total count is compared, so moving a light between categories
// without changing the total keeps the old shaders.
func (m *Model) UpdatePerspective(ctx Context) {
	lights := ctx.Lights()
	if v := lights.Version(); v != m.prevVersion {
		m.prevVersion = v
		if count := lights.Count(); count != m.prevLightCount {
			m.prevLightCount = count
			m.regenerate(lights)
		}
	}

	view := ctx.Renderer()
	for _, mesh := range m.meshes {
		mesh.UpdatePerspective(view, lights)
	}
}

func (m *Model) regenerate(lights *lighting.Manager) {
	m.regenerations++
	if m.debug && lights.Count() == 0 {
		logger.Warn("model has no lights, output will be black", zap.String("path", m.Path))
	}
	for _, mesh := range m.meshes {
		mesh.AutoCreateShader(lights)
	}
	logger.Debug("model shaders regenerated",
		zap.String("path", m.Path),
		zap.String("lights", lights.Signature()))
}

// Draw draws every mesh with transform.
func (m *Model) Draw(transform mgl32.Mat4) {
	for _, mesh := range m.meshes {
		mesh.Draw(transform)
	}
}

// NumMeshes returns the number of meshes.
func (m *Model) NumMeshes() int {
	return len(m.meshes)
}

// Mesh returns mesh i.
func (m *Model) Mesh(i int) *Mesh {
	return m.meshes[i]
}

// Regenerations counts shader rebuilds triggered by light count changes.
func (m *Model) Regenerations() int {
	return m.regenerations
}

// Bounds returns the box around all meshes.
func (m *Model) Bounds() Bounds {
	b := emptyBounds()
	for _, mesh := range m.meshes {
		b.merge(mesh.Bounds())
	}
	return b
}

// Cleanup releases mesh buffers and shaders. Textures stay in the resource cache.
func (m *Model) Cleanup() {
	for _, mesh := range m.meshes {
		mesh.Cleanup()
	}
}
