package shadow

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/bifrost/pkg/math"
)

func almostEqual(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-3
}

func TestAABBCenter(t *testing.T) {
	b := AABB{
		Min: math.Vec3{X: -10, Y: 0, Z: -10},
		Max: math.Vec3{X: 10, Y: 4, Z: 10},
	}

	got := b.Center()
	want := math.Vec3{X: 0, Y: 2, Z: 0}
	if got != want {
		t.Errorf("Center() = %v, want %v", got, want)
	}
}

func TestAABBRadius(t *testing.T) {
	b := AABB{
		Min: math.Vec3{X: -3, Y: -4, Z: 0},
		Max: math.Vec3{X: 3, Y: 4, Z: 0},
	}

	// Half extents (3, 4, 0) give a half-diagonal of 5
	if got := b.Radius(); !almostEqual(got, 5) {
		t.Errorf("Radius() = %f, want 5", got)
	}
}

func TestDirectionalLightMatrixCoversBox(t *testing.T) {
	box := AABB{
		Min: math.Vec3{X: -20, Y: 0, Z: -20},
		Max: math.Vec3{X: 20, Y: 10, Z: 20},
	}
	lightDir := math.Vec3{X: 0.3, Y: 1, Z: 0.2}.Normalize()

	m := DirectionalLightMatrix(lightDir, box)

	// Every corner of the box must land inside the ortho clip volume.
	corners := []math.Vec3{
		{X: box.Min.X, Y: box.Min.Y, Z: box.Min.Z},
		{X: box.Max.X, Y: box.Min.Y, Z: box.Min.Z},
		{X: box.Min.X, Y: box.Max.Y, Z: box.Min.Z},
		{X: box.Min.X, Y: box.Min.Y, Z: box.Max.Z},
		{X: box.Max.X, Y: box.Max.Y, Z: box.Min.Z},
		{X: box.Max.X, Y: box.Min.Y, Z: box.Max.Z},
		{X: box.Min.X, Y: box.Max.Y, Z: box.Max.Z},
		{X: box.Max.X, Y: box.Max.Y, Z: box.Max.Z},
	}
	for _, c := range corners {
		clip := m.MulVec4(math.Vec4{c.X, c.Y, c.Z, 1})
		for axis := 0; axis < 3; axis++ {
			if clip[axis] < -clip[3]-1e-3 || clip[axis] > clip[3]+1e-3 {
				t.Errorf("corner %v outside clip volume: axis %d = %f, w = %f", c, axis, clip[axis], clip[3])
			}
		}
	}
}

func TestDirectionalLightMatrixCentersBox(t *testing.T) {
	box := AABB{
		Min: math.Vec3{X: 10, Y: 0, Z: -6},
		Max: math.Vec3{X: 30, Y: 8, Z: 6},
	}
	lightDir := math.Vec3{X: 0, Y: 1, Z: 0.5}.Normalize()

	m := DirectionalLightMatrix(lightDir, box)

	center := box.Center()
	clip := m.MulVec4(math.Vec4{center.X, center.Y, center.Z, 1})
	if !almostEqual(clip[0]/clip[3], 0) || !almostEqual(clip[1]/clip[3], 0) {
		t.Errorf("box center projects to (%f, %f), want (0, 0)", clip[0]/clip[3], clip[1]/clip[3])
	}
}

func TestFocusedLightMatrixFollowsViewer(t *testing.T) {
	box := AABB{
		Min: math.Vec3{X: -100, Y: 0, Z: -100},
		Max: math.Vec3{X: 100, Y: 10, Z: 100},
	}
	lightDir := math.Vec3{X: 0, Y: 1, Z: 0}

	eye := math.Vec3{X: 40, Y: 20, Z: -30}
	m := FocusedLightMatrix(lightDir, box, eye, 10)

	// The point under the viewer must sit at the middle of the map.
	under := math.Vec3{X: eye.X, Y: box.Center().Y, Z: eye.Z}
	clip := m.MulVec4(math.Vec4{under.X, under.Y, under.Z, 1})
	if !almostEqual(clip[0]/clip[3], 0) || !almostEqual(clip[1]/clip[3], 0) {
		t.Errorf("focus point projects to (%f, %f), want (0, 0)", clip[0]/clip[3], clip[1]/clip[3])
	}
}
