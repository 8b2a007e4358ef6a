package render

import (
	"unsafe"

	"github.com/Faultbox/bifrost/internal/engine/device"
	"github.com/Faultbox/bifrost/internal/engine/material"
	"github.com/Faultbox/bifrost/internal/engine/scene"
	"github.com/Faultbox/bifrost/pkg/math"
)

// billboardCorners are the per-corner texture coordinates, matching the
// winding of the shared quad vertices.
var billboardCorners = [4]math.Vec2{
	{X: 0, Y: 1},
	{X: 1, Y: 1},
	{X: 0, Y: 0},
	{X: 1, Y: 0},
}

// drawBillboards draws the layer's billboards grouped by pipeline and
// material. With instancing the billboard records stream to the GPU
// as-is, four shared quad corners expanded per instance; without it each
// record is expanded on the CPU into four stream vertices and drawn
// through the quad index buffer. Drawn billboards are consumed.
func (t *Technique) drawBillboards(data *scene.Data, l *Layer) {
	if t.instancingEnabled {
		t.drawInstancedBillboards(data, l)
	} else {
		t.drawExpandedBillboards(data, l)
	}
}

func (t *Technique) drawInstancedBillboards(data *scene.Data, l *Layer) {
	instanceBuffer := t.dev.InstanceBuffer()
	instanceBuffer.SetDeclaration(t.shared.BillboardInstanceDecl)
	t.dev.SetInstanceBuffer(instanceBuffer)
	t.dev.SetVertexBuffer(t.shared.QuadVertices)
	t.dev.SetIndexBuffer(nil)

	maxBillboards := instanceBuffer.VertexCount()

	var lastShader device.Shader

	for pipeline, mats := range l.billboards {
		flags := material.ShaderBillboard | material.ShaderInstancing | material.ShaderVertexColor
		shader := pipeline.Apply(t.dev, flags)
		if shader != lastShader {
			uniforms := t.shared.Uniforms.Resolve(shader)
			t.sendSceneUniforms(shader, uniforms, data)
			lastShader = shader
		}

		for mat, entry := range mats {
			if len(entry.billboards) == 0 {
				continue
			}
			mat.Apply(t.dev, t.shared.WhiteTexture)

			remaining := entry.billboards
			for len(remaining) > 0 {
				count := min(len(remaining), maxBillboards)
				chunk := remaining[:count]

				t.fillStream(instanceBuffer, unsafe.Pointer(&chunk[0]), 0, count*int(unsafe.Sizeof(chunk[0])), true)
				t.dev.DrawArraysInstanced(device.TriangleStrip, 0, 4, count)
				t.streamDrawn(instanceBuffer)

				remaining = remaining[count:]
			}
			entry.billboards = entry.billboards[:0]
		}
	}

	t.dev.SetInstanceBuffer(nil)
}

func (t *Technique) drawExpandedBillboards(data *scene.Data, l *Layer) {
	t.streamBuffer.SetDeclaration(t.shared.BillboardPointDecl)
	t.dev.SetIndexBuffer(t.shared.QuadIndices)
	t.dev.SetVertexBuffer(t.streamBuffer)

	maxBillboards := min(maxQuads, t.streamBuffer.VertexCount()/4)

	var lastShader device.Shader

	for pipeline, mats := range l.billboards {
		flags := material.ShaderBillboard | material.ShaderVertexColor
		shader := pipeline.Apply(t.dev, flags)
		if shader != lastShader {
			uniforms := t.shared.Uniforms.Resolve(shader)
			t.sendSceneUniforms(shader, uniforms, data)
			lastShader = shader
		}

		for mat, entry := range mats {
			if len(entry.billboards) == 0 {
				continue
			}
			mat.Apply(t.dev, t.shared.WhiteTexture)

			remaining := entry.billboards
			for len(remaining) > 0 {
				count := min(len(remaining), maxBillboards)

				points := t.pointScratch[:0]
				for i := range remaining[:count] {
					b := &remaining[i]
					for corner := 0; corner < 4; corner++ {
						points = append(points, billboardPoint{
							color:    b.Color,
							position: b.Center,
							size:     b.Size,
							sinCos:   b.SinCos,
							uv:       billboardCorners[corner],
						})
					}
				}
				t.pointScratch = points

				t.fillStream(t.streamBuffer, unsafe.Pointer(&points[0]), 0, len(points)*int(unsafe.Sizeof(points[0])), true)
				t.dev.DrawIndexed(device.TriangleList, 0, count*6)
				t.streamDrawn(t.streamBuffer)

				remaining = remaining[count:]
			}
			entry.billboards = entry.billboards[:0]
		}
	}
}
