// Package asset turns 3D model files into a format-independent scene graph of
// nodes, mesh geometry and materials with texture references.
package asset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnsupportedFormat is returned for file extensions no importer handles.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// TextureType is a material texture slot.
type TextureType int

const (
	TextureDiffuse TextureType = iota
	TextureSpecular
	TextureHeight
	TextureAmbient
	TextureNormal
	TextureEmissive
)

func (t TextureType) String() string {
	switch t {
	case TextureDiffuse:
		return "diffuse"
	case TextureSpecular:
		return "specular"
	case TextureHeight:
		return "height"
	case TextureAmbient:
		return "ambient"
	case TextureNormal:
		return "normal"
	case TextureEmissive:
		return "emissive"
	default:
		return fmt.Sprintf("TextureType(%d)", int(t))
	}
}

// MeshData is triangle geometry. All per-vertex slices that are present have
// the same length as Positions.
type MeshData struct {
	Name       string
	Positions  []mgl32.Vec3
	Normals    []mgl32.Vec3
	TexCoords  []mgl32.Vec2
	Tangents   []mgl32.Vec3
	Bitangents []mgl32.Vec3
	Indices    []uint32
	// Material indexes Scene.Materials, -1 for none.
	Material int
}

// MaterialData describes surface colours and texture references. Texture
// paths are relative to the model file's directory.
type MaterialData struct {
	Name string

	Ambient     mgl32.Vec3
	Diffuse     mgl32.Vec3
	Specular    mgl32.Vec3
	Emissive    mgl32.Vec3
	Transparent mgl32.Vec3
	Shininess   float32

	AmbientTexBlend  float32
	DiffuseTexBlend  float32
	SpecularTexBlend float32

	Textures map[TextureType][]string
}

// DefaultMaterial returns a plain grey Phong material.
func DefaultMaterial() MaterialData {
	return MaterialData{
		Name:      "default",
		Ambient:   mgl32.Vec3{1, 1, 1},
		Diffuse:   mgl32.Vec3{0.8, 0.8, 0.8},
		Specular:  mgl32.Vec3{0.3, 0.3, 0.3},
		Shininess: 32,
		Textures:  make(map[TextureType][]string),
	}
}

// AddTexture appends a texture reference for slot t.
func (m *MaterialData) AddTexture(t TextureType, path string) {
	if m.Textures == nil {
		m.Textures = make(map[TextureType][]string)
	}
	m.Textures[t] = append(m.Textures[t], path)
}

// Node is one element of the scene hierarchy. Meshes index Scene.Meshes.
type Node struct {
	Name     string
	Meshes   []int
	Children []*Node
}

// Scene is the importer output.
type Scene struct {
	Root      *Node
	Meshes    []MeshData
	Materials []MaterialData
}

// Material returns the material of mesh i, or the default material.
func (s *Scene) Material(i int) MaterialData {
	idx := s.Meshes[i].Material
	if idx < 0 || idx >= len(s.Materials) {
		return DefaultMaterial()
	}
	return s.Materials[idx]
}

// Importer parses a model file.
type Importer interface {
	Import(path string) (*Scene, error)
}

// ByExtension dispatches to an importer by lower-case file extension.
type ByExtension map[string]Importer

// DefaultImporters handles glTF (.gltf, .glb) and Wavefront OBJ.
func DefaultImporters() ByExtension {
	return ByExtension{
		".gltf": GLTFImporter{},
		".glb":  GLTFImporter{},
		".obj":  OBJImporter{},
	}
}

// Import picks the importer for path's extension.
func (b ByExtension) Import(path string) (*Scene, error) {
	ext := strings.ToLower(filepath.Ext(path))
	imp, ok := b[ext]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	return imp.Import(path)
}
