package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SunDirection converts azimuth/elevation angles in degrees to the direction
// sunlight travels. Azimuth rotates around Y, elevation is measured from the
// horizon, so the result points from the sun towards the scene.
func SunDirection(azimuth, elevation float32) mgl32.Vec3 {
	lonRad := float64(mgl32.DegToRad(azimuth))
	latRad := float64(mgl32.DegToRad(elevation))

	// Spherical to Cartesian, towards the sun
	x := float32(math.Cos(latRad) * math.Sin(lonRad))
	y := float32(math.Sin(latRad))
	z := float32(math.Cos(latRad) * math.Cos(lonRad))

	return mgl32.Vec3{-x, -y, -z}
}

// NewSun builds a directional light from sun angles and a colour.
func NewSun(azimuth, elevation float32, colour mgl32.Vec3) DirLight {
	return DirLight{
		Direction: SunDirection(azimuth, elevation),
		Ambient:   colour.Mul(0.1),
		Diffuse:   colour.Mul(0.7),
		Specular:  colour.Mul(0.5),
	}
}
