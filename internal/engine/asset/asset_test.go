package asset

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const twoQuadsOBJ = `# two quads sharing one material
mtllib scene.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
o left
usemtl wood
f 1/1/1 2/2/1 3/3/1 4/4/1
o right
usemtl wood
f -4/-4/-1 -3/-3/-1 -2/-2/-1
`

const sceneMTL = `newmtl wood
Ka 0.1 0.1 0.1
Kd 0.6 0.4 0.2
Ks 0.5 0.5 0.5
Ns 64
d 0.5
map_Kd tex.png
map_Ks -bm 1 spec.png
map_Bump normal.png
map_Ka ao.png

newmtl unused
Kd 1 1 1
`

func TestOBJImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scene.mtl", sceneMTL)
	path := writeFile(t, dir, "scene.obj", twoQuadsOBJ)

	scene, err := DefaultImporters().Import(path)
	require.NoError(t, err)

	require.Len(t, scene.Meshes, 2)
	assert.Equal(t, []int{0, 1}, scene.Root.Meshes)

	left := scene.Meshes[0]
	assert.Equal(t, "left", left.Name)
	assert.Len(t, left.Positions, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, left.Indices)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, left.Normals[0])
	assert.Equal(t, mgl32.Vec2{1, 1}, left.TexCoords[2])
	require.Len(t, left.Tangents, 4)
	assert.InDelta(t, 1, left.Tangents[0].X(), 1e-5)

	right := scene.Meshes[1]
	assert.Equal(t, []uint32{0, 1, 2}, right.Indices)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, right.Positions[0])

	require.Len(t, scene.Materials, 2)
	assert.Equal(t, left.Material, right.Material)
	mat := scene.Material(0)
	assert.Equal(t, "wood", mat.Name)
	assert.Equal(t, mgl32.Vec3{0.6, 0.4, 0.2}, mat.Diffuse)
	assert.Equal(t, float32(64), mat.Shininess)
	assert.Equal(t, mgl32.Vec3{0.5, 0.5, 0.5}, mat.Transparent)
	assert.Equal(t, []string{"tex.png"}, mat.Textures[TextureDiffuse])
	assert.Equal(t, []string{"spec.png"}, mat.Textures[TextureSpecular])
	assert.Equal(t, []string{"normal.png"}, mat.Textures[TextureHeight])
	assert.Equal(t, []string{"ao.png"}, mat.Textures[TextureAmbient])
}

func TestOBJWithoutNormalsOrMaterials(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tri.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")

	scene, err := OBJImporter{}.Import(path)
	require.NoError(t, err)
	require.Len(t, scene.Meshes, 1)

	m := scene.Meshes[0]
	assert.Equal(t, -1, m.Material)
	assert.Nil(t, m.TexCoords)
	assert.Nil(t, m.Tangents)
	for _, n := range m.Normals {
		assert.InDelta(t, 1, n.Z(), 1e-5)
	}
	assert.Equal(t, "default", scene.Material(0).Name)
}

func TestOBJMissingMTLIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.obj", "mtllib nope.mtl\nusemtl x\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")

	scene, err := OBJImporter{}.Import(path)
	require.NoError(t, err)
	assert.Empty(t, scene.Materials)
	assert.Equal(t, -1, scene.Meshes[0].Material)
}

func TestOBJErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := OBJImporter{}.Import(filepath.Join(dir, "missing.obj"))
	assert.Error(t, err)

	empty := writeFile(t, dir, "empty.obj", "# nothing\nv 0 0 0\n")
	_, err = OBJImporter{}.Import(empty)
	assert.Error(t, err)
}

func TestUnsupportedExtension(t *testing.T) {
	_, err := DefaultImporters().Import("model.fbx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

// gltfTriangle returns a glTF document with one indexed triangle used by two
// nodes, a textured base colour and an embedded normal map.
func gltfTriangle() string {
	var buf bytes.Buffer
	for _, f := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		_ = binary.Write(&buf, binary.LittleEndian, f)
	}
	for _, i := range []uint16{0, 1, 2, 0} {
		_ = binary.Write(&buf, binary.LittleEndian, i)
	}
	data := base64.StdEncoding.EncodeToString(buf.Bytes())

	return fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "buffers": [{"byteLength": %d, "uri": "data:application/octet-stream;base64,%s"}],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "images": [{"uri": "tex%%20a.png"}, {"uri": "data:image/png;base64,AAAA"}],
  "textures": [{"source": 0}, {"source": 1}],
  "materials": [{
    "name": "red",
    "pbrMetallicRoughness": {"baseColorFactor": [1, 0, 0, 1], "baseColorTexture": {"index": 0}, "roughnessFactor": 1},
    "normalTexture": {"index": 1}
  }],
  "meshes": [{"name": "tri", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1, "material": 0}]}],
  "nodes": [{"name": "a", "mesh": 0, "children": [1]}, {"name": "b", "mesh": 0}],
  "scenes": [{"nodes": [0]}],
  "scene": 0
}`, buf.Len(), data)
}

func TestGLTFImport(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tri.gltf", gltfTriangle())

	scene, err := DefaultImporters().Import(path)
	require.NoError(t, err)

	require.Len(t, scene.Meshes, 1)
	m := scene.Meshes[0]
	assert.Equal(t, "tri_p0", m.Name)
	assert.Equal(t, []uint32{0, 1, 2}, m.Indices)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, m.Positions[1])
	require.Len(t, m.Normals, 3)
	assert.InDelta(t, 1, m.Normals[0].Z(), 1e-5)
	assert.Equal(t, 0, m.Material)

	mat := scene.Material(0)
	assert.Equal(t, "red", mat.Name)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, mat.Diffuse)
	assert.Equal(t, float32(1), mat.Shininess)
	assert.Equal(t, []string{"tex a.png"}, mat.Textures[TextureDiffuse])
	assert.Empty(t, mat.Textures[TextureHeight])

	require.Len(t, scene.Root.Children, 1)
	a := scene.Root.Children[0]
	assert.Equal(t, "a", a.Name)
	assert.Equal(t, []int{0}, a.Meshes)
	require.Len(t, a.Children, 1)
	assert.Equal(t, "b", a.Children[0].Name)
	assert.Equal(t, []int{0}, a.Children[0].Meshes)
}

// saveGLB writes one mesh per index list, all sharing a three-vertex
// position accessor.
func saveGLB(t *testing.T, dir string, indices ...[]uint16) string {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	for i, idx := range indices {
		ind := modeler.WriteIndices(doc, idx)
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: fmt.Sprintf("m%d", i),
			Primitives: []*gltf.Primitive{{
				Attributes: gltf.PrimitiveAttributes{gltf.POSITION: pos},
				Indices:    gltf.Index(ind),
			}},
		})
		doc.Nodes = append(doc.Nodes, &gltf.Node{Mesh: gltf.Index(i)})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, i)
	}
	path := filepath.Join(dir, "mesh.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))
	return path
}

func TestGLTFIndexOutOfRange(t *testing.T) {
	path := saveGLB(t, t.TempDir(), []uint16{0, 1, 7}, []uint16{0, 1, 2})

	var scene *Scene
	var err error
	require.NotPanics(t, func() { scene, err = DefaultImporters().Import(path) })
	require.NoError(t, err)

	require.Len(t, scene.Meshes, 1, "the primitive with a bad index is skipped")
	assert.Equal(t, "m1_p0", scene.Meshes[0].Name)
	assert.Equal(t, []uint32{0, 1, 2}, scene.Meshes[0].Indices)
}

func TestGLTFAccessorOutOfRange(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	n := len(doc.Accessors)

	tests := []struct {
		name string
		prim *gltf.Primitive
	}{
		{"position", &gltf.Primitive{Attributes: gltf.PrimitiveAttributes{gltf.POSITION: n}}},
		{"indices", &gltf.Primitive{Attributes: gltf.PrimitiveAttributes{gltf.POSITION: pos}, Indices: gltf.Index(n + 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() { _, err = gltfPrimitive(doc, "m", 0, tt.prim) })
			assert.ErrorContains(t, err, "out of range")
		})
	}

	prim := &gltf.Primitive{Attributes: gltf.PrimitiveAttributes{gltf.POSITION: pos, gltf.NORMAL: n + 2}}
	md, err := gltfPrimitive(doc, "m", 0, prim)
	require.NoError(t, err)
	require.Len(t, md.Normals, 3, "a missing normal accessor falls back to generated normals")
}

func TestGenerateNormalsIgnoresMissingVertices(t *testing.T) {
	m := MeshData{
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Indices:   []uint32{0, 1, 2, 0, 1, 9},
	}
	require.NotPanics(t, func() { generateNormals(&m) })
	require.Len(t, m.Normals, 3)
	assert.InDelta(t, 1, m.Normals[0].Z(), 1e-5)
}

func TestComputeTangentsSkipsUntextured(t *testing.T) {
	m := MeshData{
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals:   []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Indices:   []uint32{0, 1, 2},
	}
	ComputeTangents(&m)
	assert.Nil(t, m.Tangents)

	m.TexCoords = []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}}
	ComputeTangents(&m)
	require.Len(t, m.Tangents, 3)
	assert.InDelta(t, 1, m.Tangents[0].X(), 1e-5)
	assert.InDelta(t, 1, m.Bitangents[0].Y(), 1e-5)
}

func TestTextureTypeString(t *testing.T) {
	assert.Equal(t, "diffuse", TextureDiffuse.String())
	assert.Equal(t, "height", TextureHeight.String())
	assert.Equal(t, "TextureType(42)", TextureType(42).String())
}
