package render

import (
	"unsafe"

	"github.com/Faultbox/bifrost/internal/engine/device"
	"github.com/Faultbox/bifrost/internal/engine/light"
	"github.com/Faultbox/bifrost/internal/engine/material"
	"github.com/Faultbox/bifrost/internal/engine/scene"
	"github.com/Faultbox/bifrost/pkg/math"
)

// instancingMinCount is the instance count a batch must exceed before the
// instanced path pays for its buffer fills.
const instancingMinCount = 2

// drawCall resolves a mesh's submission parameters once per batch instead
// of per instance.
type drawCall struct {
	indexed bool
	count   int
}

func resolveDrawCall(mesh MeshData) drawCall {
	if mesh.IndexBuffer != nil {
		return drawCall{indexed: true, count: mesh.IndexBuffer.Count()}
	}
	return drawCall{count: mesh.VertexBuffer.VertexCount()}
}

func (t *Technique) submit(mesh MeshData, call drawCall) {
	if call.indexed {
		t.dev.DrawIndexed(mesh.Primitive, 0, call.count)
	} else {
		t.dev.DrawArrays(mesh.Primitive, 0, call.count)
	}
}

func (t *Technique) submitInstanced(mesh MeshData, call drawCall, instanceCount int) {
	if call.indexed {
		t.dev.DrawIndexedInstanced(mesh.Primitive, 0, call.count, instanceCount)
	} else {
		t.dev.DrawArraysInstanced(mesh.Primitive, 0, call.count, instanceCount)
	}
}

// drawOpaqueModels draws the batched meshes of one layer, grouped by
// pipeline, material and geometry. A pipeline whose largest batch exceeds
// instancingMinCount draws through the shared instance buffer; smaller
// batches draw per object, with per-object light selection when the
// shader consumes lights.
func (t *Technique) drawOpaqueModels(data *scene.Data, l *Layer) {
	var lastShader device.Shader

	for pipeline, pe := range l.opaqueModels {
		if pe.maxInstanceCount == 0 {
			continue
		}

		instancing := t.instancingEnabled && pe.maxInstanceCount > instancingMinCount

		var flags material.ShaderFlags
		if instancing {
			flags = material.ShaderInstancing
		}
		shader := pipeline.Apply(t.dev, flags)

		uniforms := t.shared.Uniforms.Resolve(shader)
		if shader != lastShader {
			t.sendSceneUniforms(shader, uniforms, data)
			lastShader = shader
		}

		for mat, me := range pe.materials {
			if !me.hasContent() {
				continue
			}
			mat.Apply(t.dev, t.shared.WhiteTexture)

			for mesh, entry := range me.meshes {
				if len(entry.instances) == 0 {
					continue
				}
				call := resolveDrawCall(mesh)
				t.dev.SetVertexBuffer(mesh.VertexBuffer)
				t.dev.SetIndexBuffer(mesh.IndexBuffer)

				switch {
				case instancing:
					t.drawInstancedMeshes(shader, uniforms, mesh, call, entry.instances)
				case uniforms.HasLightUniforms:
					t.drawLitMeshes(shader, uniforms, mesh, call, entry)
				default:
					for i := range entry.instances {
						t.dev.SetMatrix(device.MatrixWorld, entry.instances[i])
						t.submit(mesh, call)
					}
				}
			}
		}
	}
}

// drawInstancedMeshes draws one batch through the shared instance buffer,
// splitting the matrices into buffer-sized chunks. Per-object light
// selection is impossible here, so only directional lights apply, three
// per pass; passes after the first draw additively on equal depth.
func (t *Technique) drawInstancedMeshes(shader device.Shader, uniforms *ShaderUniforms, mesh MeshData, call drawCall, matrices []math.Mat4) {
	instanceBuffer := t.dev.InstanceBuffer()
	instanceBuffer.SetDeclaration(t.shared.InstanceMatrixDecl)
	t.dev.SetInstanceBuffer(instanceBuffer)

	maxInstances := instanceBuffer.VertexCount()

	refs := t.lights[:0]
	for i := range t.queue.DirectionalLights {
		refs = append(refs, LightRef{Type: light.TypeDirectional, Index: i})
	}
	t.lights = refs

	passCount := 1
	if uniforms.HasLightUniforms && len(refs) > 0 {
		passCount = (len(refs)-1)/maxLightsPerPass + 1
	}

	oldDepthFunc := t.dev.DepthFunc()
	lightIndex := 0

	for pass := 0; pass < passCount; pass++ {
		if uniforms.HasLightUniforms {
			if pass == 1 {
				// later passes add their lights' contribution onto the
				// first pass without re-testing depth
				t.dev.Enable(device.StateBlend, true)
				t.dev.SetBlendFunc(device.BlendOne, device.BlendOne)
				t.dev.SetDepthFunc(device.CompareEqual)
			}
			for slot := 0; slot < maxLightsPerPass; slot++ {
				var ref *LightRef
				if lightIndex < len(refs) {
					ref = &refs[lightIndex]
				}
				t.sendLight(shader, uniforms, slot, ref)
				lightIndex++
			}
		}

		remaining := matrices
		for len(remaining) > 0 {
			count := min(len(remaining), maxInstances)
			chunk := remaining[:count]
			t.fillStream(instanceBuffer, unsafe.Pointer(&chunk[0]), 0, count*int(unsafe.Sizeof(chunk[0])), true)
			t.submitInstanced(mesh, call, count)
			t.streamDrawn(instanceBuffer)
			remaining = remaining[count:]
		}
	}

	if passCount > 1 {
		t.dev.Enable(device.StateBlend, false)
		t.dev.SetDepthFunc(oldDepthFunc)
	}

	t.dev.SetInstanceBuffer(nil)
}

// drawLitMeshes draws one batch object by object, choosing the most
// relevant lights for each instance from its world-space bounds.
func (t *Technique) drawLitMeshes(shader device.Shader, uniforms *ShaderUniforms, mesh MeshData, call drawCall, entry *meshEntry) {
	for i := range entry.instances {
		matrix := &entry.instances[i]

		sphere := math.Sphere{
			Center: entry.boundingSphere.Center.Add(matrix.Translation()),
			Radius: entry.boundingSphere.Radius,
		}
		t.lights = ChooseLights(t.lights, &t.queue, sphere, true)
		refs := t.lights

		t.dev.SetMatrix(device.MatrixWorld, *matrix)

		passCount := 1
		if len(refs) > 0 {
			passCount = (len(refs)-1)/maxLightsPerPass + 1
		}

		oldDepthFunc := t.dev.DepthFunc()
		lightIndex := 0

		for pass := 0; pass < passCount; pass++ {
			if pass == 1 {
				t.dev.Enable(device.StateBlend, true)
				t.dev.SetBlendFunc(device.BlendOne, device.BlendOne)
				t.dev.SetDepthFunc(device.CompareEqual)
			}
			for slot := 0; slot < maxLightsPerPass; slot++ {
				var ref *LightRef
				if lightIndex < len(refs) {
					ref = &refs[lightIndex]
				}
				t.sendLight(shader, uniforms, slot, ref)
				lightIndex++
			}
			t.submit(mesh, call)
		}

		if passCount > 1 {
			t.dev.Enable(device.StateBlend, false)
			t.dev.SetDepthFunc(oldDepthFunc)
		}
	}
}

// drawTransparentModels draws the layer's depth-sorted meshes in sorted
// order, far to near. Entries are drawn one by one, so state only changes
// when consecutive entries disagree; each object gets a single pass with
// up to three directional lights prefilled per shader and the remaining
// slots filled from the lights nearest to it.
func (t *Technique) drawTransparentModels(data *scene.Data, l *Layer) {
	var lastPipeline *material.Pipeline
	var lastShader device.Shader
	var uniforms *ShaderUniforms
	directionalCount := 0

	for _, idx := range l.depthSortedModels {
		entry := &l.depthSortedModelData[idx]

		if entry.Pipeline != lastPipeline {
			shader := entry.Pipeline.Apply(t.dev, 0)
			if shader != lastShader {
				uniforms = t.shared.Uniforms.Resolve(shader)
				t.sendSceneUniforms(shader, uniforms, data)

				// directional lights apply to every object; keep them
				// resident in the leading slots for this shader
				directionalCount = 0
				if uniforms.HasLightUniforms {
					directionalCount = min(len(t.queue.DirectionalLights), maxLightsPerPass)
					for slot := 0; slot < directionalCount; slot++ {
						ref := LightRef{Type: light.TypeDirectional, Index: slot}
						t.sendLight(shader, uniforms, slot, &ref)
					}
				}
				lastShader = shader
			}
			lastPipeline = entry.Pipeline
		}

		entry.Material.Apply(t.dev, t.shared.WhiteTexture)

		if uniforms != nil && uniforms.HasLightUniforms && directionalCount < maxLightsPerPass {
			sphere := math.Sphere{
				Center: entry.Sphere.Center.Add(entry.Transform.Translation()),
				Radius: entry.Sphere.Radius,
			}
			t.lights = ChooseLights(t.lights, &t.queue, sphere, false)

			for slot := directionalCount; slot < maxLightsPerPass; slot++ {
				var ref *LightRef
				if i := slot - directionalCount; i < len(t.lights) {
					ref = &t.lights[i]
				}
				t.sendLight(lastShader, uniforms, slot, ref)
			}
		}

		call := resolveDrawCall(entry.Mesh)
		t.dev.SetVertexBuffer(entry.Mesh.VertexBuffer)
		t.dev.SetIndexBuffer(entry.Mesh.IndexBuffer)
		t.dev.SetMatrix(device.MatrixWorld, entry.Transform)
		t.submit(entry.Mesh, call)
	}
}

// sendSceneUniforms refreshes the per-program scene uniforms after a
// shader change. Uniform values live per program, so the view-projection
// matrix has to follow every bind as well.
func (t *Technique) sendSceneUniforms(shader device.Shader, uniforms *ShaderUniforms, data *scene.Data) {
	if uniforms.EyePosition >= 0 {
		shader.SendVec3(uniforms.EyePosition, data.Viewer.EyePosition())
	}
	if uniforms.SceneAmbient >= 0 {
		shader.SendColor(uniforms.SceneAmbient, data.AmbientColor)
	}
	t.dev.SetMatrix(device.MatrixViewProj, data.Viewer.ViewProjMatrix())
}
