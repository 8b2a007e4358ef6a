// Package light defines the light sources fed to the render queue and the
// rules deciding which of them illuminate a given object.
package light

import (
	gomath "math"

	"github.com/Faultbox/bifrost/internal/engine/device"
	"github.com/Faultbox/bifrost/pkg/math"
)

// Type identifies a light kind in shader uniforms.
type Type int32

const (
	// TypeNone marks a disabled light slot.
	TypeNone Type = iota - 1
	// TypeDirectional reaches every object from a fixed direction.
	TypeDirectional
	// TypePoint radiates in all directions within a radius.
	TypePoint
	// TypeSpot radiates from a position within a cone.
	TypeSpot
)

const (
	defaultAmbientFactor = 0.2
	defaultDiffuseFactor = 1.0
	defaultAttenuation   = 0.9
	defaultRadius        = 5.0
)

// DirectionalLight illuminates the whole scene from a direction.
type DirectionalLight struct {
	Color         math.Color
	AmbientFactor float32
	DiffuseFactor float32
	Direction     math.Vec3 // normalized, pointing away from the source

	// ShadowMap and TransformMatrix are set when the light casts shadows;
	// the matrix maps world space into the shadow map's clip space.
	ShadowMap       device.Texture
	TransformMatrix math.Mat4
}

// NewDirectionalLight returns a white light shining along direction.
func NewDirectionalLight(direction math.Vec3) DirectionalLight {
	return DirectionalLight{
		Color:         math.ColorWhite,
		AmbientFactor: defaultAmbientFactor,
		DiffuseFactor: defaultDiffuseFactor,
		Direction:     direction.Normalize(),
	}
}

// PointLight radiates from Position out to Radius.
type PointLight struct {
	Color         math.Color
	AmbientFactor float32
	DiffuseFactor float32
	Position      math.Vec3
	Radius        float32
	Attenuation   float32

	ShadowMap device.Texture
}

// NewPointLight returns a white light at position with default falloff.
func NewPointLight(position math.Vec3) PointLight {
	return PointLight{
		Color:         math.ColorWhite,
		AmbientFactor: defaultAmbientFactor,
		DiffuseFactor: defaultDiffuseFactor,
		Position:      position,
		Radius:        defaultRadius,
		Attenuation:   defaultAttenuation,
	}
}

// InvRadius returns 1/Radius, the falloff scale shaders consume.
func (l PointLight) InvRadius() float32 {
	if l.Radius <= 0 {
		return 0
	}
	return 1 / l.Radius
}

// Suitable reports whether the light can affect a bounding sphere: the
// light's sphere of influence must intersect it.
func (l PointLight) Suitable(s math.Sphere) bool {
	return s.Intersect(math.Sphere{Center: l.Position, Radius: l.Radius})
}

// Score ranks the light against others competing for the same object;
// lower is better. Positional lights rank by squared distance to the
// object's center.
func (l PointLight) Score(s math.Sphere) float32 {
	return l.Position.SquaredDistance(s.Center)
}

// SpotLight radiates from Position along Direction within a cone.
type SpotLight struct {
	Color         math.Color
	AmbientFactor float32
	DiffuseFactor float32
	Position      math.Vec3
	Direction     math.Vec3 // normalized, pointing away from the source
	Radius        float32
	Attenuation   float32

	// Cone bounds stored as cosines of the half angles, the form the
	// shader compares against.
	InnerAngleCos float32
	OuterAngleCos float32

	ShadowMap       device.Texture
	TransformMatrix math.Mat4
}

// NewSpotLight returns a white spot light with a 15/45 degree cone.
func NewSpotLight(position, direction math.Vec3) SpotLight {
	l := SpotLight{
		Color:         math.ColorWhite,
		AmbientFactor: defaultAmbientFactor,
		DiffuseFactor: defaultDiffuseFactor,
		Position:      position,
		Direction:     direction.Normalize(),
		Radius:        defaultRadius,
		Attenuation:   defaultAttenuation,
	}
	l.SetConeAngles(15, 45)
	return l
}

// SetConeAngles sets the inner and outer cone half angles in degrees.
func (l *SpotLight) SetConeAngles(innerDeg, outerDeg float32) {
	l.InnerAngleCos = cosDeg(innerDeg)
	l.OuterAngleCos = cosDeg(outerDeg)
}

// InvRadius returns 1/Radius, the falloff scale shaders consume.
func (l SpotLight) InvRadius() float32 {
	if l.Radius <= 0 {
		return 0
	}
	return 1 / l.Radius
}

// Suitable reports whether the light can affect a bounding sphere. The
// cone is ignored; the radius test alone keeps the check cheap and only
// ever errs on the inclusive side.
func (l SpotLight) Suitable(s math.Sphere) bool {
	return s.Intersect(math.Sphere{Center: l.Position, Radius: l.Radius})
}

// Score ranks the light against others competing for the same object;
// lower is better.
func (l SpotLight) Score(s math.Sphere) float32 {
	return l.Position.SquaredDistance(s.Center)
}

func cosDeg(deg float32) float32 {
	return float32(gomath.Cos(float64(deg) * gomath.Pi / 180))
}
