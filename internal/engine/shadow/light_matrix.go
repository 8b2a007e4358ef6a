package shadow

import (
	gomath "math"

	"github.com/Faultbox/bifrost/pkg/math"
)

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the center point of the AABB.
func (b AABB) Center() math.Vec3 {
	return math.Vec3{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
		Z: (b.Min.Z + b.Max.Z) / 2,
	}
}

// Radius returns the distance from center to corner (half-diagonal).
func (b AABB) Radius() float32 {
	dx := (b.Max.X - b.Min.X) / 2
	dy := (b.Max.Y - b.Min.Y) / 2
	dz := (b.Max.Z - b.Min.Z) / 2
	return sqrt32(dx*dx + dy*dy + dz*dz)
}

// DirectionalLightMatrix computes the view-projection a directional
// light renders its shadow map with. lightDir points from the scene
// towards the light; focus is the box the shadows must cover. The
// result is the matrix the light carries into its shader slot.
func DirectionalLightMatrix(lightDir math.Vec3, focus AABB) math.Mat4 {
	center := focus.Center()
	radius := focus.Radius()

	// Position light far enough to encompass the whole box
	lightDistance := radius * 2.0

	lightPos := center.Add(lightDir.Scale(lightDistance))

	// Choose an up vector that is not parallel with the light direction
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	if abs32(lightDir.Y) > 0.99 {
		up = math.Vec3{X: 0, Y: 0, Z: 1}
	}

	view := math.LookAt(lightPos, center, up)

	// Orthographic extents sized to the box, padded against edge artifacts
	padding := radius * 0.1
	halfSize := radius + padding
	near := float32(0.1)
	far := lightDistance + radius + padding

	proj := math.Ortho(-halfSize, halfSize, -halfSize, halfSize, near, far)

	return proj.Mul(view)
}

// FocusedLightMatrix computes a tighter light matrix following the
// viewer, so nearby shadows get more of the map's resolution. The box
// bounds the shadow area when the viewer backs far away.
func FocusedLightMatrix(lightDir math.Vec3, focus AABB, eye math.Vec3, eyeDistance float32) math.Mat4 {
	center := focus.Center()

	// Follow the viewer on the ground plane, keep the box's height
	focusCenter := math.Vec3{X: eye.X, Y: center.Y, Z: eye.Z}

	// Closer viewer, tighter shadows
	shadowRadius := eyeDistance * 1.5
	if shadowRadius > focus.Radius() {
		shadowRadius = focus.Radius()
	}

	height := focus.Max.Y - focus.Min.Y
	lightDistance := shadowRadius + height

	lightPos := focusCenter.Add(lightDir.Scale(lightDistance))

	up := math.Vec3{X: 0, Y: 1, Z: 0}
	if abs32(lightDir.Y) > 0.99 {
		up = math.Vec3{X: 0, Y: 0, Z: 1}
	}

	view := math.LookAt(lightPos, focusCenter, up)

	padding := shadowRadius * 0.1
	halfSize := shadowRadius + padding
	near := float32(0.1)
	far := lightDistance + height + padding

	proj := math.Ortho(-halfSize, halfSize, -halfSize, halfSize, near, far)

	return proj.Mul(view)
}

// sqrt32 returns the square root of a float32.
func sqrt32(x float32) float32 {
	return float32(gomath.Sqrt(float64(x)))
}

// abs32 returns the absolute value of a float32.
func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
