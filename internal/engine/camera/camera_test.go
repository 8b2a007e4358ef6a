package camera

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/bifrost/internal/engine/scene"
	"github.com/Faultbox/bifrost/pkg/math"
)

var _ scene.Viewer = (*OrbitCamera)(nil)

func almostEqual(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-4
}

func TestEyePosition(t *testing.T) {
	tests := []struct {
		name     string
		pitch    float32
		yaw      float32
		distance float32
		want     math.Vec3
	}{
		{"looking down +Z", 0, 0, 10, math.Vec3{X: 0, Y: 0, Z: 10}},
		{"quarter turn", 0, gomath.Pi / 2, 10, math.Vec3{X: 10, Y: 0, Z: 0}},
		{"straight up", gomath.Pi / 2, 0, 10, math.Vec3{X: 0, Y: 10, Z: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewOrbitCamera()
			c.RotationX = tt.pitch
			c.RotationY = tt.yaw
			c.Distance = tt.distance

			got := c.EyePosition()
			if !almostEqual(got.X, tt.want.X) || !almostEqual(got.Y, tt.want.Y) || !almostEqual(got.Z, tt.want.Z) {
				t.Errorf("EyePosition() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEyePositionFollowsCenter(t *testing.T) {
	c := NewOrbitCamera()
	c.RotationX = 0
	c.RotationY = 0
	c.Distance = 5
	c.Center = math.Vec3{X: 1, Y: 2, Z: 3}

	got := c.EyePosition()
	want := math.Vec3{X: 1, Y: 2, Z: 8}
	if !almostEqual(got.X, want.X) || !almostEqual(got.Y, want.Y) || !almostEqual(got.Z, want.Z) {
		t.Errorf("EyePosition() = %v, want %v", got, want)
	}
}

func TestHandleZoomClamps(t *testing.T) {
	c := NewOrbitCamera()
	c.MinDistance = 5
	c.MaxDistance = 50
	c.Distance = 10

	// Zoom in hard; must not go below the minimum
	for i := 0; i < 100; i++ {
		c.HandleZoom(1)
	}
	if c.Distance < c.MinDistance {
		t.Errorf("Distance = %f, want >= %f", c.Distance, c.MinDistance)
	}

	// Zoom out hard; must not exceed the maximum
	for i := 0; i < 100; i++ {
		c.HandleZoom(-1)
	}
	if c.Distance > c.MaxDistance {
		t.Errorf("Distance = %f, want <= %f", c.Distance, c.MaxDistance)
	}
}

func TestHandleDragClampsPitch(t *testing.T) {
	c := NewOrbitCamera()

	c.HandleDrag(0, 10000)
	if c.RotationX > c.MaxPitch {
		t.Errorf("RotationX = %f, want <= %f", c.RotationX, c.MaxPitch)
	}

	c.HandleDrag(0, -10000)
	if c.RotationX < c.MinPitch {
		t.Errorf("RotationX = %f, want >= %f", c.RotationX, c.MinPitch)
	}
}

func TestSetViewport(t *testing.T) {
	c := NewOrbitCamera()

	c.SetViewport(800, 400)
	if !almostEqual(c.Aspect, 2.0) {
		t.Errorf("Aspect = %f, want 2.0", c.Aspect)
	}

	// Zero height must not divide by zero
	c.SetViewport(800, 0)
	if !almostEqual(c.Aspect, 2.0) {
		t.Errorf("Aspect = %f, want unchanged 2.0", c.Aspect)
	}
}

func TestViewProjMatrixCentersTarget(t *testing.T) {
	c := NewOrbitCamera()
	c.Center = math.Vec3{X: 3, Y: 1, Z: -2}
	c.Distance = 20

	// The orbit center must project to the middle of the screen.
	vp := c.ViewProjMatrix()
	clip := vp.MulVec4(math.Vec4{c.Center.X, c.Center.Y, c.Center.Z, 1})
	if clip[3] == 0 {
		t.Fatal("projected center has w = 0")
	}
	ndcX := clip[0] / clip[3]
	ndcY := clip[1] / clip[3]
	if !almostEqual(ndcX, 0) || !almostEqual(ndcY, 0) {
		t.Errorf("center projects to (%f, %f), want (0, 0)", ndcX, ndcY)
	}
}
