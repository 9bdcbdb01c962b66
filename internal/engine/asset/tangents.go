package asset

import "github.com/go-gl/mathgl/mgl32"

// ComputeTangents fills Tangents and Bitangents from positions, normals and
// texture coordinates. Meshes without texture coordinates are left unchanged.
// Triangles with a degenerate UV area are skipped.
func ComputeTangents(m *MeshData) {
	n := len(m.Positions)
	if n == 0 || len(m.TexCoords) != n || len(m.Normals) != n {
		return
	}
	tangents := make([]mgl32.Vec3, n)
	bitangents := make([]mgl32.Vec3, n)

	accum := func(i0, i1, i2 uint32) {
		if int(i0) >= n || int(i1) >= n || int(i2) >= n {
			return
		}
		e1 := m.Positions[i1].Sub(m.Positions[i0])
		e2 := m.Positions[i2].Sub(m.Positions[i0])
		d1 := m.TexCoords[i1].Sub(m.TexCoords[i0])
		d2 := m.TexCoords[i2].Sub(m.TexCoords[i0])

		denom := d1.X()*d2.Y() - d2.X()*d1.Y()
		if denom == 0 {
			return
		}
		r := 1 / denom
		t := e1.Mul(d2.Y() * r).Sub(e2.Mul(d1.Y() * r))
		b := e2.Mul(d1.X() * r).Sub(e1.Mul(d2.X() * r))
		for _, i := range [3]uint32{i0, i1, i2} {
			tangents[i] = tangents[i].Add(t)
			bitangents[i] = bitangents[i].Add(b)
		}
	}

	if len(m.Indices) > 0 {
		for i := 0; i+2 < len(m.Indices); i += 3 {
			accum(m.Indices[i], m.Indices[i+1], m.Indices[i+2])
		}
	} else {
		for i := 0; i+2 < n; i += 3 {
			accum(uint32(i), uint32(i+1), uint32(i+2))
		}
	}

	// Gram-Schmidt against the normal
	for i := range tangents {
		nrm := m.Normals[i]
		t := tangents[i].Sub(nrm.Mul(nrm.Dot(tangents[i])))
		if t.LenSqr() < 1e-8 {
			if abs(nrm.X()) < 0.9 {
				t = mgl32.Vec3{1, 0, 0}.Sub(nrm.Mul(nrm.X()))
			} else {
				t = mgl32.Vec3{0, 1, 0}.Sub(nrm.Mul(nrm.Y()))
			}
		}
		tangents[i] = t.Normalize()

		b := bitangents[i]
		if b.LenSqr() < 1e-8 {
			b = nrm.Cross(tangents[i])
		}
		bitangents[i] = b.Normalize()
	}
	m.Tangents = tangents
	m.Bitangents = bitangents
}

// generateNormals computes area-weighted smooth normals. Triangles that
// reference a missing vertex are ignored.
func generateNormals(m *MeshData) {
	n := uint32(len(m.Positions))
	accum := make([]mgl32.Vec3, n)
	for i := 0; i+2 < len(m.Indices); i += 3 {
		i0, i1, i2 := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		p0, p1, p2 := m.Positions[i0], m.Positions[i1], m.Positions[i2]
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		accum[i0] = accum[i0].Add(n)
		accum[i1] = accum[i1].Add(n)
		accum[i2] = accum[i2].Add(n)
	}
	for i := range accum {
		if accum[i].LenSqr() > 0 {
			accum[i] = accum[i].Normalize()
		} else {
			accum[i] = mgl32.Vec3{0, 1, 0}
		}
	}
	m.Normals = accum
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
