// Package render implements the forward rendering pass: lit opaque and
// depth-sorted meshes, batched sprite chains and billboards, drawn from a
// per-frame render queue through a graphics device.
package render

import (
	"fmt"
	"unsafe"

	"github.com/Faultbox/bifrost/internal/engine/device"
	"github.com/Faultbox/bifrost/pkg/math"
)

// maxQuads is the quad capacity of the shared index buffer and the upper
// bound of one streaming chunk. 4*maxQuads vertex indices stay inside the
// 16-bit index range.
const maxQuads = 10923

// defaultStreamBytes sizes the per-technique streaming vertex buffer.
const defaultStreamBytes = 4 << 20

// SpriteVertex is one corner of a sprite quad, pre-built by the caller.
// Chains of these are handed to the queue and copied to the GPU unchanged.
type SpriteVertex struct {
	Position math.Vec3
	Color    math.Color
	UV       math.Vec2
}

// BillboardData is one billboard record. Its memory layout matches the
// instanced billboard declaration so whole batches copy to the instance
// buffer without repacking.
type BillboardData struct {
	Center math.Vec3
	Size   math.Vec2
	SinCos math.Vec2 // rotation as (sin, cos); uploads with Size as one vec4
	Color  math.Color
}

// billboardPoint is one corner of a CPU-expanded billboard, used when
// instancing is unavailable.
type billboardPoint struct {
	color    math.Color
	position math.Vec3
	size     math.Vec2
	sinCos   math.Vec2 // uploads with size as one vec4
	uv       math.Vec2
}

// MeshData identifies draw geometry: entries with the same buffers and
// topology batch together. A nil IndexBuffer selects non-indexed drawing
// over the whole vertex buffer.
type MeshData struct {
	VertexBuffer device.VertexBuffer
	IndexBuffer  device.IndexBuffer
	Primitive    device.Topology
}

// SharedResources are the process-wide GPU objects every technique
// instance draws with. The rendering subsystem creates them once, injects
// them into techniques and destroys them at shutdown; no technique may
// draw after a creation error.
type SharedResources struct {
	// QuadIndices addresses up to maxQuads quads as two triangles each.
	QuadIndices device.IndexBuffer

	// QuadVertices is a unit quad (XY only, extents ±0.5) serving as the
	// base geometry for instanced billboards. UVs are derived in the shader.
	QuadVertices device.VertexBuffer

	// SpriteDecl lays out SpriteVertex streams.
	SpriteDecl *device.VertexDeclaration

	// BillboardPointDecl lays out billboardPoint streams for the
	// CPU-expansion path.
	BillboardPointDecl *device.VertexDeclaration

	// BillboardInstanceDecl lays out BillboardData records for the
	// instanced path.
	BillboardInstanceDecl *device.VertexDeclaration

	// InstanceMatrixDecl lays out per-instance world matrices as four
	// vec4 columns.
	InstanceMatrixDecl *device.VertexDeclaration

	// ShadowSampler samples shadow maps: bilinear, clamped.
	ShadowSampler device.Sampler

	// WhiteTexture is a 1x1 opaque white fallback for materials and
	// overlays without a texture.
	WhiteTexture device.Texture

	// Uniforms caches resolved uniform locations across shaders.
	Uniforms *UniformCache
}

// NewSharedResources builds the shared GPU objects. On failure everything
// already created is released and the error reported; initialization is
// not retried.
func NewSharedResources(dev device.Device) (*SharedResources, error) {
	s := &SharedResources{
		SpriteDecl:            spriteDeclaration(),
		BillboardPointDecl:    billboardPointDeclaration(),
		BillboardInstanceDecl: billboardInstanceDeclaration(),
		InstanceMatrixDecl:    instanceMatrixDeclaration(),
		Uniforms:              NewUniformCache(),
	}

	indices := make([]uint16, maxQuads*6)
	for i := 0; i < maxQuads; i++ {
		base := uint16(i * 4)
		indices[i*6+0] = base
		indices[i*6+1] = base + 2
		indices[i*6+2] = base + 1
		indices[i*6+3] = base + 2
		indices[i*6+4] = base + 3
		indices[i*6+5] = base + 1
	}

	quadIndices, err := dev.NewIndexBuffer(len(indices), device.IndexUint16, device.UsageStatic)
	if err != nil {
		return nil, fmt.Errorf("failed to create quad index buffer: %w", err)
	}
	s.QuadIndices = quadIndices
	if err := quadIndices.Fill(unsafe.Pointer(&indices[0]), 0, len(indices)*2, false); err != nil {
		s.Destroy()
		return nil, fmt.Errorf("failed to fill quad index buffer: %w", err)
	}

	corners := []float32{
		-0.5, -0.5,
		0.5, -0.5,
		-0.5, 0.5,
		0.5, 0.5,
	}
	quadVertices, err := dev.NewVertexBuffer(len(corners)*4, device.UsageStatic)
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("failed to create quad vertex buffer: %w", err)
	}
	s.QuadVertices = quadVertices
	if err := quadVertices.Fill(unsafe.Pointer(&corners[0]), 0, len(corners)*4, false); err != nil {
		s.Destroy()
		return nil, fmt.Errorf("failed to fill quad vertex buffer: %w", err)
	}
	quadVertices.SetDeclaration(device.NewDeclaration(8, device.RatePerVertex,
		device.VertexAttribute{Location: device.AttribPosition, Components: 2, Type: device.AttribFloat},
	))

	shadowSampler, err := dev.NewSampler(device.SamplerDesc{
		MinFilter: device.FilterLinear,
		MagFilter: device.FilterLinear,
		WrapU:     device.WrapClampToEdge,
		WrapV:     device.WrapClampToEdge,
	})
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("failed to create shadow sampler: %w", err)
	}
	s.ShadowSampler = shadowSampler

	white, err := dev.NewTexture(1, 1, []byte{255, 255, 255, 255})
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("failed to create white texture: %w", err)
	}
	s.WhiteTexture = white

	return s, nil
}

// Destroy releases the shared GPU objects.
func (s *SharedResources) Destroy() {
	if s.QuadIndices != nil {
		s.QuadIndices.Destroy()
		s.QuadIndices = nil
	}
	if s.QuadVertices != nil {
		s.QuadVertices.Destroy()
		s.QuadVertices = nil
	}
	if s.ShadowSampler != nil {
		s.ShadowSampler.Destroy()
		s.ShadowSampler = nil
	}
	if s.WhiteTexture != nil {
		s.WhiteTexture.Destroy()
		s.WhiteTexture = nil
	}
}

func spriteDeclaration() *device.VertexDeclaration {
	var v SpriteVertex
	return device.NewDeclaration(int(unsafe.Sizeof(v)), device.RatePerVertex,
		device.VertexAttribute{Location: device.AttribPosition, Components: 3, Type: device.AttribFloat, Offset: int(unsafe.Offsetof(v.Position))},
		device.VertexAttribute{Location: device.AttribColor, Components: 4, Type: device.AttribFloat, Offset: int(unsafe.Offsetof(v.Color))},
		device.VertexAttribute{Location: device.AttribTexCoord, Components: 2, Type: device.AttribFloat, Offset: int(unsafe.Offsetof(v.UV))},
	)
}

func billboardPointDeclaration() *device.VertexDeclaration {
	var v billboardPoint
	return device.NewDeclaration(int(unsafe.Sizeof(v)), device.RatePerVertex,
		device.VertexAttribute{Location: device.AttribColor, Components: 4, Type: device.AttribFloat, Offset: int(unsafe.Offsetof(v.color))},
		device.VertexAttribute{Location: device.AttribPosition, Components: 3, Type: device.AttribFloat, Offset: int(unsafe.Offsetof(v.position))},
		device.VertexAttribute{Location: device.AttribTexCoord, Components: 2, Type: device.AttribFloat, Offset: int(unsafe.Offsetof(v.uv))},
		// size and sinCos upload as a single vec4.
		device.VertexAttribute{Location: device.AttribData0, Components: 4, Type: device.AttribFloat, Offset: int(unsafe.Offsetof(v.size))},
	)
}

func billboardInstanceDeclaration() *device.VertexDeclaration {
	var v BillboardData
	return device.NewDeclaration(int(unsafe.Sizeof(v)), device.RatePerInstance,
		device.VertexAttribute{Location: device.AttribData0, Components: 3, Type: device.AttribFloat, Offset: int(unsafe.Offsetof(v.Center))},
		// Size and SinCos upload as a single vec4.
		device.VertexAttribute{Location: device.AttribData1, Components: 4, Type: device.AttribFloat, Offset: int(unsafe.Offsetof(v.Size))},
		device.VertexAttribute{Location: device.AttribData2, Components: 4, Type: device.AttribFloat, Offset: int(unsafe.Offsetof(v.Color))},
	)
}

func instanceMatrixDeclaration() *device.VertexDeclaration {
	const vec4Bytes = 16
	return device.NewDeclaration(4*vec4Bytes, device.RatePerInstance,
		device.VertexAttribute{Location: device.AttribData0, Components: 4, Type: device.AttribFloat, Offset: 0 * vec4Bytes},
		device.VertexAttribute{Location: device.AttribData1, Components: 4, Type: device.AttribFloat, Offset: 1 * vec4Bytes},
		device.VertexAttribute{Location: device.AttribData2, Components: 4, Type: device.AttribFloat, Offset: 2 * vec4Bytes},
		device.VertexAttribute{Location: device.AttribData3, Components: 4, Type: device.AttribFloat, Offset: 3 * vec4Bytes},
	)
}
