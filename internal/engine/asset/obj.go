package asset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/logger"
)

// OBJImporter reads Wavefront .obj files and their .mtl libraries. Each
// object or group becomes one mesh; polygons are fan-triangulated.
type OBJImporter struct{}

// objCorner is one face corner: 0-based position, UV and normal indices (-1 = absent).
type objCorner struct{ v, vt, vn int }

type objObject struct {
	name    string
	matName string
	corners []objCorner // three per triangle
}

// Import parses path into a Scene.
func (OBJImporter) Import(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	dir := filepath.Dir(path)
	log := logger.Named("asset")

	var (
		positions []mgl32.Vec3
		normals   []mgl32.Vec3
		uvs       []mgl32.Vec2
		objects   []objObject
	)
	materials := map[string]MaterialData{}
	var matOrder []string
	cur := &objObject{name: "default"}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			if len(fields) >= 4 {
				positions = append(positions, parseVec3(fields[1:4]))
			}
		case "vn":
			if len(fields) >= 4 {
				normals = append(normals, parseVec3(fields[1:4]))
			}
		case "vt":
			if len(fields) >= 3 {
				u, _ := strconv.ParseFloat(fields[1], 32)
				v, _ := strconv.ParseFloat(fields[2], 32)
				uvs = append(uvs, mgl32.Vec2{float32(u), float32(v)})
			}
		case "o", "g":
			if len(cur.corners) > 0 {
				objects = append(objects, *cur)
			}
			name := "default"
			if len(fields) > 1 {
				name = fields[1]
			}
			cur = &objObject{name: name, matName: cur.matName}
		case "usemtl":
			if len(fields) > 1 {
				if len(cur.corners) > 0 && cur.matName != fields[1] {
					// material switch inside an object starts a new mesh
					objects = append(objects, *cur)
					cur = &objObject{name: cur.name}
				}
				cur.matName = fields[1]
			}
		case "mtllib":
			for _, lib := range fields[1:] {
				loaded, order, err := loadMTL(filepath.Join(dir, lib))
				if err != nil {
					log.Warn("mtl library not loaded", zap.String("path", lib), zap.Error(err))
					continue
				}
				for _, name := range order {
					if _, seen := materials[name]; !seen {
						matOrder = append(matOrder, name)
					}
					materials[name] = loaded[name]
				}
			}
		case "f":
			if len(fields) < 4 {
				continue
			}
			corners := make([]objCorner, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				corners = append(corners, parseCorner(tok, len(positions), len(uvs), len(normals)))
			}
			for i := 1; i+1 < len(corners); i++ {
				cur.corners = append(cur.corners, corners[0], corners[i], corners[i+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan obj %q: %w", path, err)
	}
	if len(cur.corners) > 0 {
		objects = append(objects, *cur)
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("no geometry found in %q", path)
	}

	scene := &Scene{Root: &Node{Name: filepath.Base(path)}}
	matIndex := make(map[string]int, len(matOrder))
	for _, name := range matOrder {
		matIndex[name] = len(scene.Materials)
		scene.Materials = append(scene.Materials, materials[name])
	}

	for _, obj := range objects {
		md := buildOBJMesh(obj, positions, normals, uvs)
		md.Material = -1
		if idx, ok := matIndex[obj.matName]; ok {
			md.Material = idx
		}
		scene.Root.Meshes = append(scene.Root.Meshes, len(scene.Meshes))
		scene.Meshes = append(scene.Meshes, md)
	}
	return scene, nil
}

func parseVec3(fields []string) mgl32.Vec3 {
	var v mgl32.Vec3
	for i := 0; i < 3; i++ {
		f, _ := strconv.ParseFloat(fields[i], 32)
		v[i] = float32(f)
	}
	return v
}

// parseCorner parses "v", "v/vt", "v//vn" or "v/vt/vn". OBJ indices are
// 1-based; negative values count back from the end of each list.
func parseCorner(tok string, nv, nvt, nvn int) objCorner {
	parseIdx := func(s string, n int) int {
		if s == "" {
			return -1
		}
		i, err := strconv.Atoi(s)
		switch {
		case err != nil:
			return -1
		case i > 0:
			return i - 1
		case i < 0:
			return n + i
		default:
			return -1
		}
	}
	parts := strings.Split(tok, "/")
	c := objCorner{v: -1, vt: -1, vn: -1}
	c.v = parseIdx(parts[0], nv)
	if len(parts) > 1 {
		c.vt = parseIdx(parts[1], nvt)
	}
	if len(parts) > 2 {
		c.vn = parseIdx(parts[2], nvn)
	}
	return c
}

// buildOBJMesh deduplicates face corners into indexed vertices.
func buildOBJMesh(obj objObject, positions, normals []mgl32.Vec3, uvs []mgl32.Vec2) MeshData {
	md := MeshData{Name: obj.name}
	seen := make(map[objCorner]uint32)
	hasNormals, hasUVs := true, true

	for _, c := range obj.corners {
		if idx, ok := seen[c]; ok {
			md.Indices = append(md.Indices, idx)
			continue
		}
		idx := uint32(len(md.Positions))
		seen[c] = idx
		md.Indices = append(md.Indices, idx)

		var p mgl32.Vec3
		if c.v >= 0 && c.v < len(positions) {
			p = positions[c.v]
		}
		md.Positions = append(md.Positions, p)

		n := mgl32.Vec3{0, 1, 0}
		if c.vn >= 0 && c.vn < len(normals) {
			n = normals[c.vn]
		} else {
			hasNormals = false
		}
		md.Normals = append(md.Normals, n)

		var uv mgl32.Vec2
		if c.vt >= 0 && c.vt < len(uvs) {
			uv = uvs[c.vt]
		} else {
			hasUVs = false
		}
		md.TexCoords = append(md.TexCoords, uv)
	}

	if !hasNormals {
		generateNormals(&md)
	}
	if !hasUVs {
		md.TexCoords = nil
	}
	ComputeTangents(&md)
	return md
}

// loadMTL reads a material library. The second result lists material names
// in file order.
func loadMTL(path string) (map[string]MaterialData, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	mats := map[string]MaterialData{}
	var order []string
	var cur *MaterialData
	flush := func() {
		if cur != nil {
			mats[cur.Name] = *cur
		}
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if fields[0] == "newmtl" {
			flush()
			if len(fields) < 2 {
				cur = nil
				continue
			}
			m := DefaultMaterial()
			m.Name = fields[1]
			cur = &m
			order = append(order, m.Name)
			continue
		}
		if cur == nil {
			continue
		}

		switch fields[0] {
		case "Ka":
			if len(fields) >= 4 {
				cur.Ambient = parseVec3(fields[1:4])
			}
		case "Kd":
			if len(fields) >= 4 {
				cur.Diffuse = parseVec3(fields[1:4])
			}
		case "Ks":
			if len(fields) >= 4 {
				cur.Specular = parseVec3(fields[1:4])
			}
		case "Ke":
			if len(fields) >= 4 {
				cur.Emissive = parseVec3(fields[1:4])
			}
		case "Tf":
			if len(fields) >= 4 {
				cur.Transparent = parseVec3(fields[1:4])
			}
		case "d":
			if len(fields) >= 2 {
				d, _ := strconv.ParseFloat(fields[1], 32)
				cur.Transparent = mgl32.Vec3{float32(d), float32(d), float32(d)}
			}
		case "Ns":
			if len(fields) >= 2 {
				ns, _ := strconv.ParseFloat(fields[1], 32)
				cur.Shininess = max(1, float32(ns))
			}
		case "map_Kd":
			addMapTexture(cur, TextureDiffuse, fields)
		case "map_Ks":
			addMapTexture(cur, TextureSpecular, fields)
		case "map_Bump", "map_bump", "bump":
			addMapTexture(cur, TextureHeight, fields)
		case "map_Ka":
			addMapTexture(cur, TextureAmbient, fields)
		case "norm":
			addMapTexture(cur, TextureNormal, fields)
		case "map_Ke":
			addMapTexture(cur, TextureEmissive, fields)
		}
	}
	flush()
	return mats, order, scanner.Err()
}

// addMapTexture records the file name of a map statement. Options such as
// "-bm 0.5" precede the file name, which is always the last field.
func addMapTexture(m *MaterialData, t TextureType, fields []string) {
	if len(fields) < 2 {
		return
	}
	m.AddTexture(t, filepath.FromSlash(strings.ReplaceAll(fields[len(fields)-1], `\`, "/")))
}
