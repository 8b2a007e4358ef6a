// Package device defines the graphics device abstraction the renderer draws through.
package device

import "github.com/Faultbox/bifrost/pkg/math"

// Caps describes optional device capabilities.
type Caps struct {
	// Instancing reports whether instanced draw calls and the shared
	// instance buffer are available.
	Instancing bool

	// MaxTextureUnits is the number of simultaneously bound textures.
	MaxTextureUnits int
}

// Device is the rendering backend. All calls must happen on the thread
// owning the graphics context; no method is safe for concurrent use.
type Device interface {
	// Caps returns the device capabilities, fixed after creation.
	Caps() Caps

	// NewVertexBuffer allocates a vertex buffer of sizeBytes.
	NewVertexBuffer(sizeBytes int, usage Usage) (VertexBuffer, error)

	// NewIndexBuffer allocates an index buffer holding count indices of the
	// given format.
	NewIndexBuffer(count int, format IndexFormat, usage Usage) (IndexBuffer, error)

	// NewShader compiles and links a shader program.
	NewShader(vertexSrc, fragmentSrc string) (Shader, error)

	// NewTexture creates an RGBA8 texture from pixels (len = width*height*4).
	NewTexture(width, height int, pixels []byte) (Texture, error)

	// NewDepthTarget creates a square depth-only render target for shadow
	// map rendering.
	NewDepthTarget(size int) (RenderTarget, error)

	// NewSampler creates a sampler object.
	NewSampler(desc SamplerDesc) (Sampler, error)

	// InstanceBuffer returns the device-owned per-instance stream buffer,
	// or nil when instancing is unsupported. Callers fill it with discard
	// semantics and bind it via SetInstanceBuffer.
	InstanceBuffer() VertexBuffer

	// BindShader makes the shader current. Passing nil unbinds.
	BindShader(s Shader)

	// SetVertexBuffer binds the per-vertex stream. The buffer's declaration
	// must have been set.
	SetVertexBuffer(vb VertexBuffer)

	// SetIndexBuffer binds the index stream. Passing nil unbinds.
	SetIndexBuffer(ib IndexBuffer)

	// SetInstanceBuffer binds the per-instance stream. The buffer's
	// declaration must use RatePerInstance. Passing nil unbinds.
	SetInstanceBuffer(vb VertexBuffer)

	// SetTexture binds a texture to a unit. Passing nil unbinds the unit.
	SetTexture(unit int, tex Texture)

	// SetSampler attaches a sampler to a texture unit.
	SetSampler(unit int, s Sampler)

	// SetMatrix uploads one of the engine matrices to the bound shader.
	SetMatrix(slot MatrixType, m math.Mat4)

	// Enable toggles a render state.
	Enable(state RenderState, enabled bool)

	// SetBlendFunc sets source and destination blend factors.
	SetBlendFunc(src, dst BlendFunc)

	// SetDepthFunc sets the depth comparison function.
	SetDepthFunc(fn Comparison)

	// DepthFunc returns the depth comparison currently in effect, so a pass
	// that overrides it can restore the previous value afterwards.
	DepthFunc() Comparison

	// SetFaceCulling selects which triangle side is culled when
	// StateCullFace is enabled.
	SetFaceCulling(mode CullMode)

	// SetClearColor sets the color used by Clear.
	SetClearColor(c math.Color)

	// Clear clears the selected buffers of the current render target.
	Clear(mask ClearMask)

	// SetViewport sets the render viewport in pixels.
	SetViewport(x, y, width, height int)

	// SetRenderTarget redirects rendering to an offscreen target, adjusting
	// the viewport to cover it. Passing nil restores the default framebuffer
	// and the last viewport set through SetViewport.
	SetRenderTarget(rt RenderTarget)

	// DrawIndexed draws indexCount indices from the bound index buffer
	// starting at firstIndex.
	DrawIndexed(topology Topology, firstIndex, indexCount int)

	// DrawArrays draws vertexCount vertices from the bound vertex buffer
	// starting at firstVertex.
	DrawArrays(topology Topology, firstVertex, vertexCount int)

	// DrawIndexedInstanced draws instanceCount instances of an indexed range.
	DrawIndexedInstanced(topology Topology, firstIndex, indexCount, instanceCount int)

	// DrawArraysInstanced draws instanceCount instances of a vertex range.
	DrawArraysInstanced(topology Topology, firstVertex, vertexCount, instanceCount int)

	// Destroy releases device-owned resources. The device is unusable after.
	Destroy()
}
