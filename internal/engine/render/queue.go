package render

import (
	"sort"

	"github.com/Faultbox/bifrost/internal/engine/device"
	"github.com/Faultbox/bifrost/internal/engine/light"
	"github.com/Faultbox/bifrost/internal/engine/material"
	"github.com/Faultbox/bifrost/internal/engine/scene"
	"github.com/Faultbox/bifrost/pkg/math"
)

// SpriteChain is a contiguous run of pre-built sprite vertices, four per
// sprite. The slice stays owned by the caller and must remain untouched
// until the frame's draw pass completes.
type SpriteChain struct {
	Vertices []SpriteVertex
}

func (c SpriteChain) spriteCount() int {
	return len(c.Vertices) / 4
}

// UnbatchedModel is one depth-sorted mesh entry, drawn in sort order
// without re-batching.
type UnbatchedModel struct {
	Pipeline  *material.Pipeline
	Material  *material.Material
	Mesh      MeshData
	Transform math.Mat4
	Sphere    math.Sphere // local-space bounds
}

// UnbatchedSprite is one depth-sorted sprite chain entry.
type UnbatchedSprite struct {
	Pipeline *material.Pipeline
	Material *material.Material
	Overlay  device.Texture
	Vertices []SpriteVertex
	Position math.Vec3 // depth reference for sorting
}

// Queue collects everything to draw in one frame, grouped per layer. The
// scene collector populates it, the technique sorts and consumes it, and
// Clear readies it for the next frame. During drawing the technique only
// mutates the depth-sort orderings and empties billboard lists.
type Queue struct {
	layers map[int]*Layer

	DirectionalLights []light.DirectionalLight
	PointLights       []light.PointLight
	SpotLights        []light.SpotLight
}

// Layer holds one render order's batches.
type Layer struct {
	opaqueModels map[*material.Pipeline]*modelPipelineEntry

	depthSortedModels    []int
	depthSortedModelData []UnbatchedModel

	opaqueSprites map[*material.Pipeline]*spritePipelineEntry

	depthSortedSprites    []int
	depthSortedSpriteData []UnbatchedSprite

	billboards map[*material.Pipeline]map[*material.Material]*billboardEntry

	otherDrawables []scene.Drawable
}

type modelPipelineEntry struct {
	// maxInstanceCount is the largest instance list across the entry's
	// meshes, deciding whether the instanced path pays off.
	maxInstanceCount int
	materials        map[*material.Material]*modelMaterialEntry
}

type modelMaterialEntry struct {
	meshes map[MeshData]*meshEntry
}

func (e *modelMaterialEntry) hasContent() bool {
	for _, mesh := range e.meshes {
		if len(mesh.instances) > 0 {
			return true
		}
	}
	return false
}

type meshEntry struct {
	// boundingSphere bounds the mesh in local space, shared by instances.
	boundingSphere math.Sphere
	instances      []math.Mat4
}

type spritePipelineEntry struct {
	materials map[*material.Material]*spriteMaterialEntry
}

func (e *spritePipelineEntry) hasContent() bool {
	for _, me := range e.materials {
		if me.hasContent() {
			return true
		}
	}
	return false
}

type spriteMaterialEntry struct {
	overlays map[device.Texture]*spriteOverlayEntry
}

func (e *spriteMaterialEntry) hasContent() bool {
	for _, oe := range e.overlays {
		if len(oe.chains) > 0 {
			return true
		}
	}
	return false
}

type spriteOverlayEntry struct {
	chains []SpriteChain
}

type billboardEntry struct {
	billboards []BillboardData
}

// Layer returns the layer for a render order, creating it on first use.
func (q *Queue) Layer(order int) *Layer {
	if q.layers == nil {
		q.layers = make(map[int]*Layer)
	}
	l, ok := q.layers[order]
	if !ok {
		l = &Layer{
			opaqueModels:  make(map[*material.Pipeline]*modelPipelineEntry),
			opaqueSprites: make(map[*material.Pipeline]*spritePipelineEntry),
			billboards:    make(map[*material.Pipeline]map[*material.Material]*billboardEntry),
		}
		q.layers[order] = l
	}
	return l
}

// AddMesh queues one mesh instance. Meshes with a depth-sorted material
// join the far-to-near list; all others batch by pipeline, material and
// geometry so instances of the same mesh draw together.
func (q *Queue) AddMesh(order int, pipeline *material.Pipeline, mat *material.Material, mesh MeshData, localSphere math.Sphere, transform math.Mat4) {
	l := q.Layer(order)

	if mat.IsDepthSorted() {
		l.depthSortedModelData = append(l.depthSortedModelData, UnbatchedModel{
			Pipeline:  pipeline,
			Material:  mat,
			Mesh:      mesh,
			Transform: transform,
			Sphere:    localSphere,
		})
		l.depthSortedModels = append(l.depthSortedModels, len(l.depthSortedModelData)-1)
		return
	}

	pe, ok := l.opaqueModels[pipeline]
	if !ok {
		pe = &modelPipelineEntry{materials: make(map[*material.Material]*modelMaterialEntry)}
		l.opaqueModels[pipeline] = pe
	}
	me, ok := pe.materials[mat]
	if !ok {
		me = &modelMaterialEntry{meshes: make(map[MeshData]*meshEntry)}
		pe.materials[mat] = me
	}
	entry, ok := me.meshes[mesh]
	if !ok {
		entry = &meshEntry{boundingSphere: localSphere}
		me.meshes[mesh] = entry
	}
	entry.instances = append(entry.instances, transform)
	if len(entry.instances) > pe.maxInstanceCount {
		pe.maxInstanceCount = len(entry.instances)
	}
}

// AddSprites queues a chain of pre-built sprite vertices, four per sprite.
// The slice must stay valid until the draw pass ends. Materials with depth
// sorting enabled go to the ordered path using position as the depth
// reference; position is ignored otherwise. Chains shorter than one sprite
// are dropped.
func (q *Queue) AddSprites(order int, pipeline *material.Pipeline, mat *material.Material, overlay device.Texture, vertices []SpriteVertex, position math.Vec3) {
	if len(vertices) < 4 {
		return
	}
	l := q.Layer(order)

	if mat.IsDepthSorted() {
		l.depthSortedSpriteData = append(l.depthSortedSpriteData, UnbatchedSprite{
			Pipeline: pipeline,
			Material: mat,
			Overlay:  overlay,
			Vertices: vertices,
			Position: position,
		})
		l.depthSortedSprites = append(l.depthSortedSprites, len(l.depthSortedSpriteData)-1)
		return
	}

	pe, ok := l.opaqueSprites[pipeline]
	if !ok {
		pe = &spritePipelineEntry{materials: make(map[*material.Material]*spriteMaterialEntry)}
		l.opaqueSprites[pipeline] = pe
	}
	me, ok := pe.materials[mat]
	if !ok {
		me = &spriteMaterialEntry{overlays: make(map[device.Texture]*spriteOverlayEntry)}
		pe.materials[mat] = me
	}
	oe, ok := me.overlays[overlay]
	if !ok {
		oe = &spriteOverlayEntry{}
		me.overlays[overlay] = oe
	}
	oe.chains = append(oe.chains, SpriteChain{Vertices: vertices})
}

// AddBillboards appends billboard records to the (pipeline, material)
// batch. Records are copied; the caller's slice is free to reuse.
func (q *Queue) AddBillboards(order int, pipeline *material.Pipeline, mat *material.Material, billboards []BillboardData) {
	if len(billboards) == 0 {
		return
	}
	l := q.Layer(order)

	mats, ok := l.billboards[pipeline]
	if !ok {
		mats = make(map[*material.Material]*billboardEntry)
		l.billboards[pipeline] = mats
	}
	entry, ok := mats[mat]
	if !ok {
		entry = &billboardEntry{}
		mats[mat] = entry
	}
	entry.billboards = append(entry.billboards, billboards...)
}

// AddBillboard queues a single billboard record.
func (q *Queue) AddBillboard(order int, pipeline *material.Pipeline, mat *material.Material, billboard BillboardData) {
	l := q.Layer(order)

	mats, ok := l.billboards[pipeline]
	if !ok {
		mats = make(map[*material.Material]*billboardEntry)
		l.billboards[pipeline] = mats
	}
	entry, ok := mats[mat]
	if !ok {
		entry = &billboardEntry{}
		mats[mat] = entry
	}
	entry.billboards = append(entry.billboards, billboard)
}

// AddDirectionalLight queues a directional light for the frame.
func (q *Queue) AddDirectionalLight(l light.DirectionalLight) {
	q.DirectionalLights = append(q.DirectionalLights, l)
}

// AddPointLight queues a point light for the frame.
func (q *Queue) AddPointLight(l light.PointLight) {
	q.PointLights = append(q.PointLights, l)
}

// AddSpotLight queues a spot light for the frame.
func (q *Queue) AddSpotLight(l light.SpotLight) {
	q.SpotLights = append(q.SpotLights, l)
}

// AddDrawable queues an object drawing itself after the layer's batches.
func (q *Queue) AddDrawable(order int, d scene.Drawable) {
	l := q.Layer(order)
	l.otherDrawables = append(l.otherDrawables, d)
}

// Sort orders the depth-sorted entries of every layer far to near
// relative to the viewer.
func (q *Queue) Sort(viewer scene.Viewer) {
	eye := viewer.EyePosition()

	for _, l := range q.layers {
		models := l.depthSortedModelData
		order := l.depthSortedModels
		sort.SliceStable(order, func(i, j int) bool {
			a := &models[order[i]]
			b := &models[order[j]]
			da := eye.SquaredDistance(a.Transform.Translation().Add(a.Sphere.Center))
			db := eye.SquaredDistance(b.Transform.Translation().Add(b.Sphere.Center))
			return da > db
		})

		sprites := l.depthSortedSpriteData
		spriteOrder := l.depthSortedSprites
		sort.SliceStable(spriteOrder, func(i, j int) bool {
			return eye.SquaredDistance(sprites[spriteOrder[i]].Position) >
				eye.SquaredDistance(sprites[spriteOrder[j]].Position)
		})
	}
}

// Clear readies the queue for the next frame. A soft clear keeps the
// batch maps so steady-state frames reuse their allocations; a full clear
// drops everything.
func (q *Queue) Clear(fully bool) {
	q.DirectionalLights = q.DirectionalLights[:0]
	q.PointLights = q.PointLights[:0]
	q.SpotLights = q.SpotLights[:0]

	if fully {
		q.layers = nil
		return
	}
	for _, l := range q.layers {
		l.clear()
	}
}

func (l *Layer) clear() {
	for _, pe := range l.opaqueModels {
		pe.maxInstanceCount = 0
		for _, me := range pe.materials {
			for _, mesh := range me.meshes {
				mesh.instances = mesh.instances[:0]
			}
		}
	}
	for _, pe := range l.opaqueSprites {
		for _, me := range pe.materials {
			for _, oe := range me.overlays {
				oe.chains = oe.chains[:0]
			}
		}
	}
	for _, mats := range l.billboards {
		for _, entry := range mats {
			entry.billboards = entry.billboards[:0]
		}
	}
	l.depthSortedModels = l.depthSortedModels[:0]
	l.depthSortedModelData = l.depthSortedModelData[:0]
	l.depthSortedSprites = l.depthSortedSprites[:0]
	l.depthSortedSpriteData = l.depthSortedSpriteData[:0]
	l.otherDrawables = l.otherDrawables[:0]
}

// layersInOrder returns the layers ascending by render order.
func (q *Queue) layersInOrder() []*Layer {
	orders := make([]int, 0, len(q.layers))
	for order := range q.layers {
		orders = append(orders, order)
	}
	sort.Ints(orders)

	layers := make([]*Layer, len(orders))
	for i, order := range orders {
		layers[i] = q.layers[order]
	}
	return layers
}
