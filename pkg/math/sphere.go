package math

// Sphere is a bounding sphere.
type Sphere struct {
	Center Vec3
	Radius float32
}

// NewSphere returns a sphere with the given center and radius.
func NewSphere(center Vec3, radius float32) Sphere {
	return Sphere{Center: center, Radius: radius}
}

// Distance returns the signed distance from the sphere surface to a point.
// Negative values mean the point lies inside the sphere.
func (s Sphere) Distance(p Vec3) float32 {
	return s.Center.Distance(p) - s.Radius
}

// Contains reports whether the point lies inside or on the sphere.
func (s Sphere) Contains(p Vec3) bool {
	return s.Center.SquaredDistance(p) <= s.Radius*s.Radius
}

// Intersect reports whether the two spheres overlap or touch.
func (s Sphere) Intersect(other Sphere) bool {
	return s.Center.Distance(other.Center)-other.Radius <= s.Radius
}

// Transform returns the sphere moved by the translation part of m.
// Scale and rotation are ignored; bounding spheres in the render queue
// are pre-sized by the collector.
func (s Sphere) Transform(m Mat4) Sphere {
	return Sphere{Center: s.Center.Add(m.Translation()), Radius: s.Radius}
}
