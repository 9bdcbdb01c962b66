// Package model provides meshes with synthesized lighting shaders and models
// loaded from asset files.
package model

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is one interleaved mesh vertex.
type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	TexCoords mgl32.Vec2
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
}

// vertexFloats is the number of float32 values per interleaved vertex.
const vertexFloats = 3 + 3 + 2 + 3 + 3

// Material holds the Phong colours of a mesh. The tex blend values are the
// weights of the material colour against its texture; the shader mixes with
// 1 - blend.
type Material struct {
	Ambient     mgl32.Vec3
	Diffuse     mgl32.Vec3
	Specular    mgl32.Vec3
	Emissive    mgl32.Vec3
	Transparent mgl32.Vec3
	Shininess   float32

	AmbientTexBlend  float32
	DiffuseTexBlend  float32
	SpecularTexBlend float32
}

// DefaultMaterial is a neutral grey material.
func DefaultMaterial() Material {
	return Material{
		Ambient:   mgl32.Vec3{1, 1, 1},
		Diffuse:   mgl32.Vec3{0.8, 0.8, 0.8},
		Specular:  mgl32.Vec3{0.5, 0.5, 0.5},
		Shininess: 32,
	}
}

// RoleNames are the role descriptions that tag textures and prefix sampler names.
type RoleNames struct {
	Diffuse  string
	Specular string
	Normal   string
	Height   string
}

// DefaultRoles returns texture_diffuse, texture_specular, texture_normal and texture_height.
func DefaultRoles() RoleNames {
	return RoleNames{
		Diffuse:  "texture_diffuse",
		Specular: "texture_specular",
		Normal:   "texture_normal",
		Height:   "texture_height",
	}
}

func (r RoleNames) list() [4]string {
	return [4]string{r.Diffuse, r.Specular, r.Normal, r.Height}
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

func emptyBounds() Bounds {
	return Bounds{
		Min: mgl32.Vec3{1e10, 1e10, 1e10},
		Max: mgl32.Vec3{-1e10, -1e10, -1e10},
	}
}

// Empty reports whether no point was ever added.
func (b Bounds) Empty() bool {
	return b.Min.X() > b.Max.X()
}

// Center returns the box centre.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box extent on each axis.
func (b Bounds) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

func (b *Bounds) add(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

func (b *Bounds) merge(o Bounds) {
	if o.Empty() {
		return
	}
	b.add(o.Min)
	b.add(o.Max)
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%v .. %v]", b.Min, b.Max)
}
