package asset

import (
	"fmt"
	"net/url"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/logger"
)

// GLTFImporter reads .gltf and .glb files. Only externally referenced images
// become texture references; images embedded in buffers are skipped.
//
// Metallic-roughness materials are approximated with Phong colours. The
// texture slots map as base colour -> diffuse, metallic-roughness ->
// specular, normal -> height and occlusion -> ambient.
type GLTFImporter struct{}

// Import parses path into a Scene.
func (GLTFImporter) Import(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	log := logger.Named("asset")

	// texture index -> relative image path ("" when embedded or missing)
	texPaths := make([]string, len(doc.Textures))
	for i, gt := range doc.Textures {
		if gt.Source == nil || *gt.Source >= len(doc.Images) {
			continue
		}
		img := doc.Images[*gt.Source]
		if img.URI == "" || img.IsEmbeddedResource() {
			log.Debug("embedded gltf image skipped", zap.String("path", path), zap.Int("image", *gt.Source))
			continue
		}
		uri, err := url.PathUnescape(img.URI)
		if err != nil {
			uri = img.URI
		}
		texPaths[i] = uri
	}
	texRef := func(idx int) string {
		if idx >= 0 && idx < len(texPaths) {
			return texPaths[idx]
		}
		return ""
	}

	scene := &Scene{}
	for _, gm := range doc.Materials {
		scene.Materials = append(scene.Materials, gltfMaterial(gm, texRef))
	}

	// glTF mesh index -> scene mesh indices, one per primitive
	meshPrims := make([][]int, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			md, err := gltfPrimitive(doc, gm.Name, pi, prim)
			if err != nil {
				log.Warn("gltf primitive skipped", zap.String("path", path), zap.Int("mesh", mi), zap.Int("primitive", pi), zap.Error(err))
				continue
			}
			meshPrims[mi] = append(meshPrims[mi], len(scene.Meshes))
			scene.Meshes = append(scene.Meshes, md)
		}
	}

	nodes := make([]*Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		name := gn.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}
		n := &Node{Name: name}
		if gn.Mesh != nil && *gn.Mesh < len(meshPrims) {
			n.Meshes = append(n.Meshes, meshPrims[*gn.Mesh]...)
		}
		nodes[i] = n
	}
	hasParent := make([]bool, len(nodes))
	for i, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(nodes) {
				nodes[i].Children = append(nodes[i].Children, nodes[c])
				hasParent[c] = true
			}
		}
	}

	root := &Node{Name: "root"}
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		for _, idx := range doc.Scenes[*doc.Scene].Nodes {
			if idx < len(nodes) {
				root.Children = append(root.Children, nodes[idx])
			}
		}
	} else {
		for i, n := range nodes {
			if !hasParent[i] {
				root.Children = append(root.Children, n)
			}
		}
	}
	scene.Root = root
	return scene, nil
}

func gltfMaterial(gm *gltf.Material, texRef func(int) string) MaterialData {
	mat := DefaultMaterial()
	mat.Name = gm.Name

	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		cf := pbr.BaseColorFactorOrDefault()
		mat.Diffuse = mgl32.Vec3{float32(cf[0]), float32(cf[1]), float32(cf[2])}
		mat.Ambient = mat.Diffuse
		mat.Transparent = mgl32.Vec3{float32(cf[3]), float32(cf[3]), float32(cf[3])}

		// smooth surfaces get high shininess, metallic ones a stronger highlight
		roughness := float32(pbr.RoughnessFactorOrDefault())
		metallic := float32(pbr.MetallicFactorOrDefault())
		mat.Shininess = (1-roughness)*(1-roughness)*128 + 1
		s := 0.04 + metallic*0.66
		mat.Specular = mgl32.Vec3{s, s, s}

		if pbr.BaseColorTexture != nil {
			if p := texRef(pbr.BaseColorTexture.Index); p != "" {
				mat.AddTexture(TextureDiffuse, p)
			}
		}
		if pbr.MetallicRoughnessTexture != nil {
			if p := texRef(pbr.MetallicRoughnessTexture.Index); p != "" {
				mat.AddTexture(TextureSpecular, p)
			}
		}
	}
	if gm.NormalTexture != nil && gm.NormalTexture.Index != nil {
		if p := texRef(*gm.NormalTexture.Index); p != "" {
			mat.AddTexture(TextureHeight, p)
		}
	}
	if gm.OcclusionTexture != nil && gm.OcclusionTexture.Index != nil {
		if p := texRef(*gm.OcclusionTexture.Index); p != "" {
			mat.AddTexture(TextureAmbient, p)
		}
	}
	if gm.EmissiveTexture != nil {
		if p := texRef(gm.EmissiveTexture.Index); p != "" {
			mat.AddTexture(TextureEmissive, p)
		}
	}
	ef := gm.EmissiveFactor
	mat.Emissive = mgl32.Vec3{float32(ef[0]), float32(ef[1]), float32(ef[2])}
	return mat
}

func gltfPrimitive(doc *gltf.Document, meshName string, primIdx int, prim *gltf.Primitive) (MeshData, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}
	md := MeshData{Name: name, Material: -1}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return md, fmt.Errorf("no POSITION attribute")
	}
	if posIdx >= len(doc.Accessors) {
		return md, fmt.Errorf("POSITION accessor %d out of range", posIdx)
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return md, fmt.Errorf("positions: %w", err)
	}
	md.Positions = make([]mgl32.Vec3, len(positions))
	for i, p := range positions {
		md.Positions[i] = mgl32.Vec3(p)
	}

	if prim.Indices != nil {
		if *prim.Indices >= len(doc.Accessors) {
			return md, fmt.Errorf("indices accessor %d out of range", *prim.Indices)
		}
		md.Indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return md, fmt.Errorf("indices: %w", err)
		}
		for _, idx := range md.Indices {
			if int(idx) >= len(positions) {
				return md, fmt.Errorf("index %d out of range (%d vertices)", idx, len(positions))
			}
		}
	} else {
		md.Indices = make([]uint32, len(positions))
		for i := range md.Indices {
			md.Indices[i] = uint32(i)
		}
	}

	if idx, ok := prim.Attributes["NORMAL"]; ok && idx < len(doc.Accessors) {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err == nil && len(normals) == len(positions) {
			md.Normals = make([]mgl32.Vec3, len(normals))
			for i, n := range normals {
				md.Normals[i] = mgl32.Vec3(n)
			}
		}
	}
	if md.Normals == nil {
		generateNormals(&md)
	}

	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok && idx < len(doc.Accessors) {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err == nil && len(uvs) == len(positions) {
			md.TexCoords = make([]mgl32.Vec2, len(uvs))
			for i, uv := range uvs {
				md.TexCoords[i] = mgl32.Vec2(uv)
			}
		}
	}
	ComputeTangents(&md)

	if prim.Material != nil {
		md.Material = *prim.Material
	}
	return md, nil
}
