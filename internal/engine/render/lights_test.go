package render

import (
	"testing"

	"github.com/Faultbox/bifrost/internal/engine/light"
	"github.com/Faultbox/bifrost/pkg/math"
)

func TestChooseLightsFiltersAndSorts(t *testing.T) {
	var q Queue
	q.AddDirectionalLight(light.NewDirectionalLight(math.Vec3{Y: -1}))

	far := light.NewPointLight(math.Vec3{X: 9})
	far.Radius = 4
	q.AddPointLight(far) // index 0: distance 9, radius 4, cannot reach

	near := light.NewPointLight(math.Vec3{X: 2})
	near.Radius = 4
	q.AddPointLight(near) // index 1: suitable, score 4

	spot := light.NewSpotLight(math.Vec3{X: 3}, math.Vec3{X: -1})
	spot.Radius = 5
	q.AddSpotLight(spot) // index 0: suitable, score 9

	object := math.NewSphere(math.Vec3{}, 1)
	refs := ChooseLights(nil, &q, object, true)

	if len(refs) != 3 {
		t.Fatalf("ChooseLights() returned %d lights, want 3", len(refs))
	}

	// Directional scores 0 and ranks first; then the nearer point light,
	// then the spot.
	if refs[0].Type != light.TypeDirectional || refs[0].Score != 0 {
		t.Errorf("refs[0] = {%v %f}, want directional with score 0", refs[0].Type, refs[0].Score)
	}
	if refs[1].Type != light.TypePoint || refs[1].Index != 1 {
		t.Errorf("refs[1] = {%v index %d}, want point light 1", refs[1].Type, refs[1].Index)
	}
	if refs[2].Type != light.TypeSpot || refs[2].Index != 0 {
		t.Errorf("refs[2] = {%v index %d}, want spot light 0", refs[2].Type, refs[2].Index)
	}

	for i := 1; i < len(refs); i++ {
		if refs[i].Score < refs[i-1].Score {
			t.Errorf("scores not ascending: refs[%d] = %f after %f", i, refs[i].Score, refs[i-1].Score)
		}
	}
}

func TestChooseLightsExcludesUnreachable(t *testing.T) {
	var q Queue
	for i := 0; i < 4; i++ {
		l := light.NewPointLight(math.Vec3{X: float32(100 + i)})
		l.Radius = 1
		q.AddPointLight(l)
	}
	reachable := light.NewPointLight(math.Vec3{X: 2})
	reachable.Radius = 3
	q.AddPointLight(reachable)

	refs := ChooseLights(nil, &q, math.NewSphere(math.Vec3{}, 1), true)

	if len(refs) != 1 {
		t.Fatalf("ChooseLights() returned %d lights, want 1", len(refs))
	}
	if refs[0].Index != 4 {
		t.Errorf("refs[0].Index = %d, want 4", refs[0].Index)
	}
}

func TestChooseLightsSkipsDirectionalOnRequest(t *testing.T) {
	var q Queue
	q.AddDirectionalLight(light.NewDirectionalLight(math.Vec3{Y: -1}))
	q.AddDirectionalLight(light.NewDirectionalLight(math.Vec3{X: -1}))

	p := light.NewPointLight(math.Vec3{X: 1})
	p.Radius = 5
	q.AddPointLight(p)

	refs := ChooseLights(nil, &q, math.NewSphere(math.Vec3{}, 1), false)

	if len(refs) != 1 {
		t.Fatalf("ChooseLights() returned %d lights, want 1", len(refs))
	}
	if refs[0].Type != light.TypePoint {
		t.Errorf("refs[0].Type = %v, want point", refs[0].Type)
	}
}

func TestChooseLightsTiesKeepEncounterOrder(t *testing.T) {
	var q Queue
	q.AddDirectionalLight(light.NewDirectionalLight(math.Vec3{Y: -1}))
	q.AddDirectionalLight(light.NewDirectionalLight(math.Vec3{X: -1}))

	// Two point lights at the same distance tie on score.
	a := light.NewPointLight(math.Vec3{X: 3})
	a.Radius = 10
	q.AddPointLight(a)
	b := light.NewPointLight(math.Vec3{X: -3})
	b.Radius = 10
	q.AddPointLight(b)

	// A spot at the same distance ties as well and must come after the
	// points, matching encounter order.
	s := light.NewSpotLight(math.Vec3{Z: 3}, math.Vec3{Z: -1})
	s.Radius = 10
	q.AddSpotLight(s)

	refs := ChooseLights(nil, &q, math.NewSphere(math.Vec3{}, 1), true)

	if len(refs) != 5 {
		t.Fatalf("ChooseLights() returned %d lights, want 5", len(refs))
	}

	wantOrder := []struct {
		typ   light.Type
		index int
	}{
		{light.TypeDirectional, 0},
		{light.TypeDirectional, 1},
		{light.TypePoint, 0},
		{light.TypePoint, 1},
		{light.TypeSpot, 0},
	}
	for i, want := range wantOrder {
		if refs[i].Type != want.typ || refs[i].Index != want.index {
			t.Errorf("refs[%d] = {%v index %d}, want {%v index %d}",
				i, refs[i].Type, refs[i].Index, want.typ, want.index)
		}
	}
}

func TestChooseLightsReusesScratch(t *testing.T) {
	var q Queue
	p := light.NewPointLight(math.Vec3{X: 1})
	p.Radius = 5
	q.AddPointLight(p)

	scratch := make([]LightRef, 0, 8)
	refs := ChooseLights(scratch, &q, math.NewSphere(math.Vec3{}, 1), true)

	if len(refs) != 1 {
		t.Fatalf("ChooseLights() returned %d lights, want 1", len(refs))
	}
	if cap(refs) != cap(scratch) {
		t.Error("ChooseLights() reallocated instead of reusing scratch capacity")
	}
}
