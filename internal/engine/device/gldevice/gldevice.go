// Package gldevice implements the device abstraction on OpenGL 4.1 core.
package gldevice

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/Faultbox/bifrost/internal/engine/device"
	"github.com/Faultbox/bifrost/internal/logger"
	"github.com/Faultbox/bifrost/pkg/math"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// Config holds device creation options.
type Config struct {
	// InstanceBufferBytes sizes the shared per-instance stream buffer.
	// Zero selects the 1 MiB default.
	InstanceBufferBytes int
}

const defaultInstanceBufferBytes = 1 << 20

// Device is the OpenGL implementation of device.Device.
// Must be created and used on the thread owning the GL context.
type Device struct {
	caps device.Caps

	// Single VAO reconfigured on every stream bind; GL core profile
	// requires one to be bound for vertex specification.
	vao uint32

	instanceBuffer *vertexBuffer

	current *shader

	// Attribute locations enabled for each stream, disabled on rebind.
	vertexAttribs   []uint32
	instanceAttribs []uint32

	// Last viewport set through SetViewport, restored when leaving an
	// offscreen render target.
	viewport [4]int32

	// Element type and size of the bound index buffer.
	indexType uint32
	indexSize int

	depthFunc device.Comparison
}

// New initializes OpenGL and creates the device.
// Must be called after a GL context is made current.
func New(cfg Config) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	var maxUnits int32
	gl.GetIntegerv(gl.MAX_COMBINED_TEXTURE_IMAGE_UNITS, &maxUnits)

	d := &Device{
		caps: device.Caps{
			// Instanced draws are core since 3.3.
			Instancing:      true,
			MaxTextureUnits: int(maxUnits),
		},
		depthFunc: device.CompareLess,
	}

	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	instanceBytes := cfg.InstanceBufferBytes
	if instanceBytes <= 0 {
		instanceBytes = defaultInstanceBufferBytes
	}
	ib, err := d.NewVertexBuffer(instanceBytes, device.UsageStream)
	if err != nil {
		gl.DeleteVertexArrays(1, &d.vao)
		return nil, fmt.Errorf("failed to create instance buffer: %w", err)
	}
	d.instanceBuffer = ib.(*vertexBuffer)

	var vp [4]int32
	gl.GetIntegerv(gl.VIEWPORT, &vp[0])
	d.viewport = vp

	return d, nil
}

// Caps returns the device capabilities.
func (d *Device) Caps() device.Caps {
	return d.caps
}

// InstanceBuffer returns the shared per-instance stream buffer.
func (d *Device) InstanceBuffer() device.VertexBuffer {
	return d.instanceBuffer
}

// BindShader makes the shader program current.
func (d *Device) BindShader(s device.Shader) {
	if s == nil {
		d.current = nil
		gl.UseProgram(0)
		return
	}
	sh := s.(*shader)
	d.current = sh
	gl.UseProgram(sh.program)
}

// SetVertexBuffer binds the per-vertex stream.
func (d *Device) SetVertexBuffer(vb device.VertexBuffer) {
	buf := vb.(*vertexBuffer)
	d.vertexAttribs = d.bindStream(buf, d.vertexAttribs, 0)
}

// SetInstanceBuffer binds the per-instance stream.
func (d *Device) SetInstanceBuffer(vb device.VertexBuffer) {
	if vb == nil {
		for _, loc := range d.instanceAttribs {
			gl.DisableVertexAttribArray(loc)
		}
		d.instanceAttribs = d.instanceAttribs[:0]
		return
	}
	buf := vb.(*vertexBuffer)
	d.instanceAttribs = d.bindStream(buf, d.instanceAttribs, 1)
}

// bindStream points the buffer's declared attributes into the VAO,
// disabling whatever the stream had enabled before.
func (d *Device) bindStream(buf *vertexBuffer, prev []uint32, divisor uint32) []uint32 {
	for _, loc := range prev {
		gl.DisableVertexAttribArray(loc)
	}
	prev = prev[:0]

	decl := buf.decl
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.id)
	for _, attr := range decl.Attributes {
		gl.EnableVertexAttribArray(attr.Location)
		gl.VertexAttribPointer(
			attr.Location,
			int32(attr.Components),
			glAttribType(attr.Type),
			attr.Normalized,
			int32(decl.Stride),
			unsafe.Pointer(uintptr(attr.Offset)),
		)
		gl.VertexAttribDivisor(attr.Location, divisor)
		prev = append(prev, attr.Location)
	}
	return prev
}

// SetIndexBuffer binds the index stream.
func (d *Device) SetIndexBuffer(ib device.IndexBuffer) {
	if ib == nil {
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
		return
	}
	buf := ib.(*indexBuffer)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, buf.id)
	if buf.format == device.IndexUint32 {
		d.indexType = gl.UNSIGNED_INT
	} else {
		d.indexType = gl.UNSIGNED_SHORT
	}
	d.indexSize = buf.format.ByteSize()
}

// SetTexture binds a texture to a unit.
func (d *Device) SetTexture(unit int, tex device.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	if tex == nil {
		gl.BindTexture(gl.TEXTURE_2D, 0)
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, tex.(*texture).id)
}

// SetSampler attaches a sampler to a texture unit.
func (d *Device) SetSampler(unit int, s device.Sampler) {
	if s == nil {
		gl.BindSampler(uint32(unit), 0)
		return
	}
	gl.BindSampler(uint32(unit), s.(*sampler).id)
}

// SetMatrix uploads an engine matrix to the bound shader.
func (d *Device) SetMatrix(slot device.MatrixType, m math.Mat4) {
	if d.current == nil {
		return
	}
	var loc int32
	switch slot {
	case device.MatrixWorld:
		loc = d.current.locWorld
	case device.MatrixViewProj:
		loc = d.current.locViewProj
	}
	if loc >= 0 {
		gl.UniformMatrix4fv(loc, 1, false, &m[0])
	}
}

// Enable toggles a render state.
func (d *Device) Enable(state device.RenderState, enabled bool) {
	switch state {
	case device.StateDepthWrite:
		gl.DepthMask(enabled)
	case device.StateBlend:
		glToggle(gl.BLEND, enabled)
	case device.StateDepthTest:
		glToggle(gl.DEPTH_TEST, enabled)
	case device.StateCullFace:
		glToggle(gl.CULL_FACE, enabled)
	}
}

// SetBlendFunc sets the blend factors.
func (d *Device) SetBlendFunc(src, dst device.BlendFunc) {
	gl.BlendFunc(glBlendFunc(src), glBlendFunc(dst))
}

// SetDepthFunc sets the depth comparison.
func (d *Device) SetDepthFunc(fn device.Comparison) {
	d.depthFunc = fn
	gl.DepthFunc(glComparison(fn))
}

// DepthFunc returns the depth comparison currently in effect.
func (d *Device) DepthFunc() device.Comparison {
	return d.depthFunc
}

// SetFaceCulling selects the culled side.
func (d *Device) SetFaceCulling(mode device.CullMode) {
	if mode == device.CullFront {
		gl.CullFace(gl.FRONT)
	} else {
		gl.CullFace(gl.BACK)
	}
}

// SetClearColor sets the clear color.
func (d *Device) SetClearColor(c math.Color) {
	gl.ClearColor(c.R, c.G, c.B, c.A)
}

// Clear clears the selected buffers.
func (d *Device) Clear(mask device.ClearMask) {
	var bits uint32
	if mask&device.ClearColor != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&device.ClearDepth != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(bits)
}

// SetViewport sets the window viewport.
func (d *Device) SetViewport(x, y, width, height int) {
	d.viewport = [4]int32{int32(x), int32(y), int32(width), int32(height)}
	gl.Viewport(d.viewport[0], d.viewport[1], d.viewport[2], d.viewport[3])
}

// SetRenderTarget switches between the default framebuffer and an
// offscreen depth target.
func (d *Device) SetRenderTarget(rt device.RenderTarget) {
	if rt == nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Viewport(d.viewport[0], d.viewport[1], d.viewport[2], d.viewport[3])
		return
	}
	t := rt.(*depthTarget)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Viewport(0, 0, int32(t.size), int32(t.size))
}

// DrawIndexed draws from the bound index buffer.
func (d *Device) DrawIndexed(topology device.Topology, firstIndex, indexCount int) {
	gl.DrawElements(glTopology(topology), int32(indexCount), d.indexType, unsafe.Pointer(uintptr(firstIndex*d.indexSize)))
}

// DrawArrays draws from the bound vertex buffer.
func (d *Device) DrawArrays(topology device.Topology, firstVertex, vertexCount int) {
	gl.DrawArrays(glTopology(topology), int32(firstVertex), int32(vertexCount))
}

// DrawIndexedInstanced draws instanceCount instances of an indexed range.
func (d *Device) DrawIndexedInstanced(topology device.Topology, firstIndex, indexCount, instanceCount int) {
	gl.DrawElementsInstanced(glTopology(topology), int32(indexCount), d.indexType, unsafe.Pointer(uintptr(firstIndex*d.indexSize)), int32(instanceCount))
}

// DrawArraysInstanced draws instanceCount instances of a vertex range.
func (d *Device) DrawArraysInstanced(topology device.Topology, firstVertex, vertexCount, instanceCount int) {
	gl.DrawArraysInstanced(glTopology(topology), int32(firstVertex), int32(vertexCount), int32(instanceCount))
}

// Destroy releases device-owned resources.
func (d *Device) Destroy() {
	logger.Info("closing GL device")
	if d.instanceBuffer != nil {
		d.instanceBuffer.Destroy()
		d.instanceBuffer = nil
	}
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
}

func glToggle(cap uint32, enabled bool) {
	if enabled {
		gl.Enable(cap)
	} else {
		gl.Disable(cap)
	}
}

func glTopology(t device.Topology) uint32 {
	switch t {
	case device.TriangleStrip:
		return gl.TRIANGLE_STRIP
	case device.LineList:
		return gl.LINES
	case device.PointList:
		return gl.POINTS
	default:
		return gl.TRIANGLES
	}
}

func glBlendFunc(f device.BlendFunc) uint32 {
	switch f {
	case device.BlendZero:
		return gl.ZERO
	case device.BlendSrcAlpha:
		return gl.SRC_ALPHA
	case device.BlendInvSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case device.BlendDstAlpha:
		return gl.DST_ALPHA
	case device.BlendInvDstAlpha:
		return gl.ONE_MINUS_DST_ALPHA
	default:
		return gl.ONE
	}
}

func glComparison(c device.Comparison) uint32 {
	switch c {
	case device.CompareLessEqual:
		return gl.LEQUAL
	case device.CompareEqual:
		return gl.EQUAL
	case device.CompareGreater:
		return gl.GREATER
	case device.CompareGreaterEqual:
		return gl.GEQUAL
	case device.CompareNotEqual:
		return gl.NOTEQUAL
	case device.CompareAlways:
		return gl.ALWAYS
	case device.CompareNever:
		return gl.NEVER
	default:
		return gl.LESS
	}
}

func glAttribType(t device.AttribType) uint32 {
	if t == device.AttribUnsignedByte {
		return gl.UNSIGNED_BYTE
	}
	return gl.FLOAT
}
