package main

import (
	"fmt"
	gomath "math"
	"unsafe"

	"github.com/Faultbox/bifrost/internal/engine/device"
	"github.com/Faultbox/bifrost/internal/engine/light"
	"github.com/Faultbox/bifrost/internal/engine/material"
	"github.com/Faultbox/bifrost/internal/engine/render"
	"github.com/Faultbox/bifrost/internal/engine/shadow"
	"github.com/Faultbox/bifrost/pkg/math"
)

// meshVertex is the static geometry layout of the demo scene.
type meshVertex struct {
	position math.Vec3
	normal   math.Vec3
	uv       math.Vec2
}

const (
	groundExtent = 40.0
	pillarCount  = 24
	grassCount   = 5000
)

// demoScene is the procedural content the viewer renders: a ground slab,
// a ring of pillars drawn through the instanced path, floating sprite
// chains and a billboard grass field.
type demoScene struct {
	ground       render.MeshData
	groundSphere math.Sphere

	pillar       render.MeshData
	pillarSphere math.Sphere
	pillars      []math.Mat4

	groundMat    *material.Material
	pillarMat    *material.Material
	spriteMat    *material.Material
	billboardMat *material.Material

	sprites    [][]render.SpriteVertex
	billboards []render.BillboardData

	buffers []interface{ Destroy() }
}

func buildScene(dev device.Device) (*demoScene, error) {
	s := &demoScene{
		groundMat:    material.New(),
		pillarMat:    material.New(),
		spriteMat:    material.New(),
		billboardMat: material.New(),
	}
	s.spriteMat.EnableDepthSorting(true)

	var err error
	s.ground, err = s.buildMesh(dev, groundVertices(), quadIndices(1))
	if err != nil {
		return nil, fmt.Errorf("failed to build ground mesh: %w", err)
	}
	s.groundSphere = math.NewSphere(math.Vec3{}, groundExtent*sqrt2)

	s.pillar, err = s.buildMesh(dev, boxVertices(1, 6, 1), boxIndices())
	if err != nil {
		return nil, fmt.Errorf("failed to build pillar mesh: %w", err)
	}
	s.pillarSphere = math.NewSphere(math.Vec3{Y: 3}, 3.3)

	for i := 0; i < pillarCount; i++ {
		angle := float64(i) / pillarCount * 2 * gomath.Pi
		x := float32(gomath.Cos(angle)) * 25
		z := float32(gomath.Sin(angle)) * 25
		s.pillars = append(s.pillars, math.Translate(x, 0, z))
	}

	s.sprites = buildSpriteChains()
	s.billboards = buildGrassField()

	return s, nil
}

const sqrt2 = 1.41421356

// buildMesh uploads vertices and indices into static buffers.
func (s *demoScene) buildMesh(dev device.Device, verts []meshVertex, indices []uint16) (render.MeshData, error) {
	vb, err := dev.NewVertexBuffer(len(verts)*int(unsafe.Sizeof(verts[0])), device.UsageStatic)
	if err != nil {
		return render.MeshData{}, err
	}
	s.buffers = append(s.buffers, vb)
	if err := vb.Fill(unsafe.Pointer(&verts[0]), 0, len(verts)*int(unsafe.Sizeof(verts[0])), false); err != nil {
		return render.MeshData{}, err
	}
	vb.SetDeclaration(meshDeclaration())

	ib, err := dev.NewIndexBuffer(len(indices), device.IndexUint16, device.UsageStatic)
	if err != nil {
		return render.MeshData{}, err
	}
	s.buffers = append(s.buffers, ib)
	if err := ib.Fill(unsafe.Pointer(&indices[0]), 0, len(indices)*2, false); err != nil {
		return render.MeshData{}, err
	}

	return render.MeshData{
		VertexBuffer: vb,
		IndexBuffer:  ib,
		Primitive:    device.TriangleList,
	}, nil
}

func meshDeclaration() *device.VertexDeclaration {
	var v meshVertex
	return device.NewDeclaration(int(unsafe.Sizeof(v)), device.RatePerVertex,
		device.VertexAttribute{Location: device.AttribPosition, Components: 3, Type: device.AttribFloat, Offset: int(unsafe.Offsetof(v.position))},
		device.VertexAttribute{Location: device.AttribNormal, Components: 3, Type: device.AttribFloat, Offset: int(unsafe.Offsetof(v.normal))},
		device.VertexAttribute{Location: device.AttribTexCoord, Components: 2, Type: device.AttribFloat, Offset: int(unsafe.Offsetof(v.uv))},
	)
}

func groundVertices() []meshVertex {
	up := math.Vec3{Y: 1}
	e := float32(groundExtent)
	return []meshVertex{
		{position: math.Vec3{X: -e, Z: -e}, normal: up, uv: math.Vec2{X: 0, Y: 0}},
		{position: math.Vec3{X: e, Z: -e}, normal: up, uv: math.Vec2{X: 8, Y: 0}},
		{position: math.Vec3{X: -e, Z: e}, normal: up, uv: math.Vec2{X: 0, Y: 8}},
		{position: math.Vec3{X: e, Z: e}, normal: up, uv: math.Vec2{X: 8, Y: 8}},
	}
}

// quadIndices emits two triangles per quad in the renderer's winding.
func quadIndices(quads int) []uint16 {
	indices := make([]uint16, 0, quads*6)
	for i := 0; i < quads; i++ {
		base := uint16(i * 4)
		indices = append(indices, base, base+2, base+1, base+2, base+3, base+1)
	}
	return indices
}

// boxVertices builds an axis-aligned box standing on the origin, with
// per-face normals.
func boxVertices(w, h, d float32) []meshVertex {
	hw, hd := w/2, d/2

	type face struct {
		normal  math.Vec3
		corners [4]math.Vec3
	}
	faces := []face{
		{math.Vec3{Z: 1}, [4]math.Vec3{{-hw, 0, hd}, {hw, 0, hd}, {-hw, h, hd}, {hw, h, hd}}},
		{math.Vec3{Z: -1}, [4]math.Vec3{{hw, 0, -hd}, {-hw, 0, -hd}, {hw, h, -hd}, {-hw, h, -hd}}},
		{math.Vec3{X: 1}, [4]math.Vec3{{hw, 0, hd}, {hw, 0, -hd}, {hw, h, hd}, {hw, h, -hd}}},
		{math.Vec3{X: -1}, [4]math.Vec3{{-hw, 0, -hd}, {-hw, 0, hd}, {-hw, h, -hd}, {-hw, h, hd}}},
		{math.Vec3{Y: 1}, [4]math.Vec3{{-hw, h, hd}, {hw, h, hd}, {-hw, h, -hd}, {hw, h, -hd}}},
		{math.Vec3{Y: -1}, [4]math.Vec3{{-hw, 0, -hd}, {hw, 0, -hd}, {-hw, 0, hd}, {hw, 0, hd}}},
	}

	uvs := [4]math.Vec2{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 0, Y: 0}, {X: 1, Y: 0}}

	verts := make([]meshVertex, 0, len(faces)*4)
	for _, f := range faces {
		for i, c := range f.corners {
			verts = append(verts, meshVertex{position: c, normal: f.normal, uv: uvs[i]})
		}
	}
	return verts
}

func boxIndices() []uint16 {
	return quadIndices(6)
}

// buildSpriteChains builds a few translucent sprite ribbons floating
// above the ground, exercising the depth-sorted sprite path.
func buildSpriteChains() [][]render.SpriteVertex {
	chains := make([][]render.SpriteVertex, 0, 6)
	for c := 0; c < 6; c++ {
		angle := float64(c) / 6 * 2 * gomath.Pi
		center := math.Vec3{
			X: float32(gomath.Cos(angle)) * 12,
			Y: 4,
			Z: float32(gomath.Sin(angle)) * 12,
		}
		tint := math.Color{
			R: 0.5 + 0.5*float32(gomath.Cos(angle)),
			G: 0.7,
			B: 0.5 + 0.5*float32(gomath.Sin(angle)),
			A: 0.8,
		}

		var chain []render.SpriteVertex
		for q := 0; q < 5; q++ {
			pos := center.Add(math.Vec3{Y: float32(q) * 1.2})
			chain = append(chain, spriteQuad(pos, 1.0, tint)...)
		}
		chains = append(chains, chain)
	}
	return chains
}

// spriteQuad emits four pre-transformed corners of a horizontal sprite.
func spriteQuad(center math.Vec3, size float32, tint math.Color) []render.SpriteVertex {
	h := size / 2
	return []render.SpriteVertex{
		{Position: center.Add(math.Vec3{X: -h, Z: h}), Color: tint, UV: math.Vec2{X: 0, Y: 1}},
		{Position: center.Add(math.Vec3{X: h, Z: h}), Color: tint, UV: math.Vec2{X: 1, Y: 1}},
		{Position: center.Add(math.Vec3{X: -h, Z: -h}), Color: tint, UV: math.Vec2{X: 0, Y: 0}},
		{Position: center.Add(math.Vec3{X: h, Z: -h}), Color: tint, UV: math.Vec2{X: 1, Y: 0}},
	}
}

// buildGrassField scatters billboards over the ground with a cheap
// deterministic hash, so every run shows the same field.
func buildGrassField() []render.BillboardData {
	bbs := make([]render.BillboardData, 0, grassCount)
	seed := uint32(0x9e3779b9)
	next := func() float32 {
		seed = seed*1664525 + 1013904223
		return float32(seed>>8) / float32(1<<24)
	}

	for i := 0; i < grassCount; i++ {
		x := (next()*2 - 1) * (groundExtent - 2)
		z := (next()*2 - 1) * (groundExtent - 2)
		h := 0.4 + next()*0.6
		rot := (next()*2 - 1) * 0.4

		bbs = append(bbs, render.BillboardData{
			Center: math.Vec3{X: x, Y: h / 2, Z: z},
			Size:   math.Vec2{X: 0.25 + next()*0.2, Y: h},
			SinCos: math.Vec2{X: sin32(rot), Y: cos32(rot)},
			Color: math.Color{
				R: 0.2 + next()*0.2,
				G: 0.5 + next()*0.4,
				B: 0.2,
				A: 1,
			},
		})
	}
	return bbs
}

func sin32(x float32) float32 { return float32(gomath.Sin(float64(x))) }
func cos32(x float32) float32 { return float32(gomath.Cos(float64(x))) }

// populate fills the render queue for one frame. The sun carries the
// shadow map when one is rendered; the colored point lights orbit the
// pillar ring so the per-object light selection keeps changing.
func (s *demoScene) populate(q *render.Queue, shaders *shaderSet, shadowMap *shadow.Map, sunMatrix math.Mat4, elapsed float64) {
	sun := light.NewDirectionalLight(math.Vec3{X: -0.4, Y: -1, Z: -0.3})
	sun.Color = math.Color{R: 1, G: 0.96, B: 0.9, A: 1}
	if shadowMap != nil {
		sun.ShadowMap = shadowMap.Texture()
		sun.TransformMatrix = sunMatrix
	}
	q.AddDirectionalLight(sun)

	for i := 0; i < 5; i++ {
		angle := elapsed*0.5 + float64(i)/5*2*gomath.Pi
		p := light.NewPointLight(math.Vec3{
			X: float32(gomath.Cos(angle)) * 18,
			Y: 3,
			Z: float32(gomath.Sin(angle)) * 18,
		})
		p.Radius = 14
		p.Color = math.Color{
			R: 0.5 + 0.5*float32(gomath.Cos(angle)),
			G: 0.4,
			B: 0.5 + 0.5*float32(gomath.Sin(angle)),
			A: 1,
		}
		q.AddPointLight(p)
	}

	spot := light.NewSpotLight(math.Vec3{Y: 14}, math.Vec3{Y: -1})
	spot.Radius = 25
	spot.SetConeAngles(20, 35)
	q.AddSpotLight(spot)

	q.AddMesh(0, shaders.model, s.groundMat, s.ground, s.groundSphere, math.Identity())
	for _, m := range s.pillars {
		q.AddMesh(0, shaders.model, s.pillarMat, s.pillar, s.pillarSphere, m)
	}

	for _, chain := range s.sprites {
		q.AddSprites(1, shaders.sprite, s.spriteMat, nil, chain, chain[0].Position)
	}

	q.AddBillboards(0, shaders.billboard, s.billboardMat, s.billboards)
}

// shadowGeometry lists the meshes the shadow pass renders.
func (s *demoScene) shadowGeometry() []struct {
	Mesh       render.MeshData
	Transforms []math.Mat4
} {
	return []struct {
		Mesh       render.MeshData
		Transforms []math.Mat4
	}{
		{Mesh: s.pillar, Transforms: s.pillars},
	}
}

// focusBounds is the world region the sun's shadow map covers.
func (s *demoScene) focusBounds() shadow.AABB {
	return shadow.AABB{
		Min: math.Vec3{X: -groundExtent, Y: 0, Z: -groundExtent},
		Max: math.Vec3{X: groundExtent, Y: 8, Z: groundExtent},
	}
}

func (s *demoScene) destroy() {
	for _, b := range s.buffers {
		b.Destroy()
	}
	s.buffers = nil
}
