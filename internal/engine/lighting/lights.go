// Package lighting holds the scene's light registry. Meshes read it to size
// their shader light arrays and to bind light uniforms each frame.
package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DirLight is a directional light such as the sun.
type DirLight struct {
	Direction mgl32.Vec3

	Ambient  mgl32.Vec3
	Diffuse  mgl32.Vec3
	Specular mgl32.Vec3
}

// PointLight emits in all directions with distance attenuation.
type PointLight struct {
	Position mgl32.Vec3

	Constant  float32
	Linear    float32
	Quadratic float32

	Ambient  mgl32.Vec3
	Diffuse  mgl32.Vec3
	Specular mgl32.Vec3
}

// SpotLight is a cone light. CutOff and OuterCutOff are cosines of the inner
// and outer cone angles.
type SpotLight struct {
	Position    mgl32.Vec3
	Direction   mgl32.Vec3
	CutOff      float32
	OuterCutOff float32

	Constant  float32
	Linear    float32
	Quadratic float32

	Ambient  mgl32.Vec3
	Diffuse  mgl32.Vec3
	Specular mgl32.Vec3
}

// FlashLight is a spot light usually attached to the camera. In shaders it
// shares the spotLights array, placed after the true spot lights.
type FlashLight = SpotLight

// attenuation table: (range, linear, quadratic) with a constant term of 1.
var attenuationTable = [...][3]float32{
	{7, 0.7, 1.8},
	{13, 0.35, 0.44},
	{20, 0.22, 0.20},
	{32, 0.14, 0.07},
	{50, 0.09, 0.032},
	{65, 0.07, 0.017},
	{100, 0.045, 0.0075},
	{160, 0.027, 0.0028},
	{200, 0.022, 0.0019},
	{325, 0.014, 0.0007},
	{600, 0.007, 0.0002},
	{3250, 0.0014, 0.000007},
}

// Attenuation returns constant, linear and quadratic terms for a light that
// should fade out at roughly the given range.
func Attenuation(lightRange float32) (constant, linear, quadratic float32) {
	if lightRange <= 0 {
		lightRange = 100 // Default range
	}
	for _, row := range attenuationTable {
		if lightRange <= row[0] {
			return 1, row[1], row[2]
		}
	}
	last := attenuationTable[len(attenuationTable)-1]
	return 1, last[1], last[2]
}

// NewPointLight builds a point light of the given colour whose attenuation fits lightRange.
func NewPointLight(position, colour mgl32.Vec3, lightRange float32) PointLight {
	c, l, q := Attenuation(lightRange)
	return PointLight{
		Position:  position,
		Constant:  c,
		Linear:    l,
		Quadratic: q,
		Ambient:   colour.Mul(0.05),
		Diffuse:   colour.Mul(0.8),
		Specular:  colour,
	}
}

// NewSpotLight builds a spot light with cone angles given in degrees.
func NewSpotLight(position, direction, colour mgl32.Vec3, innerDeg, outerDeg, lightRange float32) SpotLight {
	c, l, q := Attenuation(lightRange)
	return SpotLight{
		Position:    position,
		Direction:   direction.Normalize(),
		CutOff:      cosDeg(innerDeg),
		OuterCutOff: cosDeg(outerDeg),
		Constant:    c,
		Linear:      l,
		Quadratic:   q,
		Diffuse:     colour,
		Specular:    colour,
	}
}

func cosDeg(deg float32) float32 {
	return float32(math.Cos(float64(mgl32.DegToRad(deg))))
}
