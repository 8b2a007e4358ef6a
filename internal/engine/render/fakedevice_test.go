package render

import (
	"errors"
	"unsafe"

	"github.com/Faultbox/bifrost/internal/engine/device"
	"github.com/Faultbox/bifrost/pkg/math"
)

// The fake device records every buffer fill, state change and draw call
// so the drawing strategies can be verified without a GPU.

type bufferFill struct {
	offset  int
	size    int
	discard bool
	data    []byte
}

type fakeVertexBuffer struct {
	size      int
	decl      *device.VertexDeclaration
	fills     []bufferFill
	destroyed bool
}

func (b *fakeVertexBuffer) Fill(data unsafe.Pointer, offsetBytes, sizeBytes int, discard bool) error {
	cp := make([]byte, sizeBytes)
	copy(cp, unsafe.Slice((*byte)(data), sizeBytes))
	b.fills = append(b.fills, bufferFill{offset: offsetBytes, size: sizeBytes, discard: discard, data: cp})
	return nil
}

func (b *fakeVertexBuffer) SetDeclaration(decl *device.VertexDeclaration) { b.decl = decl }
func (b *fakeVertexBuffer) Declaration() *device.VertexDeclaration       { return b.decl }
func (b *fakeVertexBuffer) SizeBytes() int                               { return b.size }

func (b *fakeVertexBuffer) VertexCount() int {
	if b.decl == nil || b.decl.Stride == 0 {
		return 0
	}
	return b.size / b.decl.Stride
}

func (b *fakeVertexBuffer) Destroy() { b.destroyed = true }

type fakeIndexBuffer struct {
	count     int
	format    device.IndexFormat
	fills     []bufferFill
	destroyed bool
}

func (b *fakeIndexBuffer) Fill(data unsafe.Pointer, offsetBytes, sizeBytes int, discard bool) error {
	cp := make([]byte, sizeBytes)
	copy(cp, unsafe.Slice((*byte)(data), sizeBytes))
	b.fills = append(b.fills, bufferFill{offset: offsetBytes, size: sizeBytes, discard: discard, data: cp})
	return nil
}

func (b *fakeIndexBuffer) Format() device.IndexFormat { return b.format }
func (b *fakeIndexBuffer) Count() int                 { return b.count }
func (b *fakeIndexBuffer) Destroy()                   { b.destroyed = true }

type intSend struct {
	loc   int32
	value int32
}

type fakeShader struct {
	id       uint32
	uniforms map[string]int32
	queries  map[string]int

	ints     []intSend
	vecSends int
	matrices int
}

func (s *fakeShader) ID() uint32 { return s.id }

func (s *fakeShader) UniformLocation(name string) int32 {
	if s.queries == nil {
		s.queries = make(map[string]int)
	}
	s.queries[name]++
	if loc, ok := s.uniforms[name]; ok {
		return loc
	}
	return -1
}

func (s *fakeShader) SendInt(loc int32, v int32) {
	s.ints = append(s.ints, intSend{loc: loc, value: v})
}

func (s *fakeShader) SendFloat(loc int32, v float32)   { s.vecSends++ }
func (s *fakeShader) SendVec2(loc int32, v math.Vec2)  { s.vecSends++ }
func (s *fakeShader) SendVec3(loc int32, v math.Vec3)  { s.vecSends++ }
func (s *fakeShader) SendVec4(loc int32, v math.Vec4)  { s.vecSends++ }
func (s *fakeShader) SendColor(loc int32, c math.Color) { s.vecSends++ }
func (s *fakeShader) SendMatrix(loc int32, m math.Mat4) { s.matrices++ }
func (s *fakeShader) Destroy()                          {}

// intsAt returns the values sent to a uniform location, in send order.
func (s *fakeShader) intsAt(loc int32) []int32 {
	var vals []int32
	for _, send := range s.ints {
		if send.loc == loc {
			vals = append(vals, send.value)
		}
	}
	return vals
}

// lightUniformStride is the location stride between light slots in the
// lit fake shaders.
const lightUniformStride = 10

// newLitShader builds a fake shader exposing the full light uniform array.
func newLitShader(id uint32) *fakeShader {
	return &fakeShader{
		id: id,
		uniforms: map[string]int32{
			"EyePosition":             1,
			"SceneAmbient":            2,
			"TextureOverlay":          3,
			"Lights[0].type":          100,
			"Lights[1].type":          100 + lightUniformStride,
			"Lights[0].color":         101,
			"Lights[0].factors":       102,
			"Lights[0].parameters1":   103,
			"Lights[0].parameters2":   104,
			"Lights[0].parameters3":   105,
			"Lights[0].shadowMapping": 106,
			"LightViewProjMatrix[0]":  200,
		},
	}
}

// newUnlitShader builds a fake shader without light uniforms.
func newUnlitShader(id uint32) *fakeShader {
	return &fakeShader{
		id: id,
		uniforms: map[string]int32{
			"EyePosition":    1,
			"SceneAmbient":   2,
			"TextureOverlay": 3,
		},
	}
}

type fakeTexture struct {
	w, h      int
	destroyed bool
}

func (t *fakeTexture) Width() int  { return t.w }
func (t *fakeTexture) Height() int { return t.h }
func (t *fakeTexture) Destroy()    { t.destroyed = true }

type fakeSampler struct {
	desc      device.SamplerDesc
	destroyed bool
}

func (s *fakeSampler) Destroy() { s.destroyed = true }

type fakeDepthTarget struct {
	size int
	tex  *fakeTexture
}

func (t *fakeDepthTarget) Texture() device.Texture { return t.tex }
func (t *fakeDepthTarget) Size() int               { return t.size }
func (t *fakeDepthTarget) Destroy()                {}

type recordedDraw struct {
	indexed   bool
	instanced bool
	topology  device.Topology
	first     int
	count     int
	instances int
}

type fakeDevice struct {
	caps           device.Caps
	instanceBuffer *fakeVertexBuffer

	draws        []recordedDraw
	clears       []device.ClearMask
	clearColor   math.Color
	blendLog     []bool
	depthFuncLog []device.Comparison
	depthFunc    device.Comparison
	states       map[device.RenderState]bool

	boundShader   device.Shader
	boundVertex   device.VertexBuffer
	boundIndex    device.IndexBuffer
	boundInstance device.VertexBuffer
	renderTarget  device.RenderTarget
	textures      map[int]device.Texture
	samplers      map[int]device.Sampler
	matrices      map[device.MatrixType]math.Mat4

	failIndexBuffer  bool
	failVertexBuffer bool
	failTexture      bool
	failSampler      bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		caps:      device.Caps{Instancing: true, MaxTextureUnits: 16},
		depthFunc: device.CompareLess,
		states:    make(map[device.RenderState]bool),
		textures:  make(map[int]device.Texture),
		samplers:  make(map[int]device.Sampler),
		matrices:  make(map[device.MatrixType]math.Mat4),
	}
}

// withInstanceBuffer gives the device an instance buffer holding
// sizeBytes of per-instance data.
func (d *fakeDevice) withInstanceBuffer(sizeBytes int) *fakeDevice {
	d.instanceBuffer = &fakeVertexBuffer{size: sizeBytes}
	return d
}

func (d *fakeDevice) Caps() device.Caps { return d.caps }

func (d *fakeDevice) NewVertexBuffer(sizeBytes int, usage device.Usage) (device.VertexBuffer, error) {
	if d.failVertexBuffer {
		return nil, errors.New("out of memory")
	}
	return &fakeVertexBuffer{size: sizeBytes}, nil
}

func (d *fakeDevice) NewIndexBuffer(count int, format device.IndexFormat, usage device.Usage) (device.IndexBuffer, error) {
	if d.failIndexBuffer {
		return nil, errors.New("out of memory")
	}
	return &fakeIndexBuffer{count: count, format: format}, nil
}

func (d *fakeDevice) NewShader(vertexSrc, fragmentSrc string) (device.Shader, error) {
	return nil, errors.New("fake device cannot compile shaders")
}

func (d *fakeDevice) NewTexture(width, height int, pixels []byte) (device.Texture, error) {
	if d.failTexture {
		return nil, errors.New("out of memory")
	}
	return &fakeTexture{w: width, h: height}, nil
}

func (d *fakeDevice) NewDepthTarget(size int) (device.RenderTarget, error) {
	return &fakeDepthTarget{size: size, tex: &fakeTexture{w: size, h: size}}, nil
}

func (d *fakeDevice) NewSampler(desc device.SamplerDesc) (device.Sampler, error) {
	if d.failSampler {
		return nil, errors.New("out of memory")
	}
	return &fakeSampler{desc: desc}, nil
}

func (d *fakeDevice) InstanceBuffer() device.VertexBuffer {
	if d.instanceBuffer == nil {
		return nil
	}
	return d.instanceBuffer
}

func (d *fakeDevice) BindShader(s device.Shader)             { d.boundShader = s }
func (d *fakeDevice) SetVertexBuffer(vb device.VertexBuffer) { d.boundVertex = vb }
func (d *fakeDevice) SetIndexBuffer(ib device.IndexBuffer)   { d.boundIndex = ib }

func (d *fakeDevice) SetInstanceBuffer(vb device.VertexBuffer) { d.boundInstance = vb }

func (d *fakeDevice) SetTexture(unit int, tex device.Texture) { d.textures[unit] = tex }
func (d *fakeDevice) SetSampler(unit int, s device.Sampler)   { d.samplers[unit] = s }

func (d *fakeDevice) SetMatrix(slot device.MatrixType, m math.Mat4) { d.matrices[slot] = m }

func (d *fakeDevice) Enable(state device.RenderState, enabled bool) {
	if state == device.StateBlend {
		d.blendLog = append(d.blendLog, enabled)
	}
	d.states[state] = enabled
}

func (d *fakeDevice) SetBlendFunc(src, dst device.BlendFunc) {}

func (d *fakeDevice) SetDepthFunc(fn device.Comparison) {
	d.depthFunc = fn
	d.depthFuncLog = append(d.depthFuncLog, fn)
}

func (d *fakeDevice) DepthFunc() device.Comparison { return d.depthFunc }

func (d *fakeDevice) SetFaceCulling(mode device.CullMode) {}

func (d *fakeDevice) SetClearColor(c math.Color) { d.clearColor = c }

func (d *fakeDevice) Clear(mask device.ClearMask) { d.clears = append(d.clears, mask) }

func (d *fakeDevice) SetViewport(x, y, width, height int) {}

func (d *fakeDevice) SetRenderTarget(rt device.RenderTarget) { d.renderTarget = rt }

func (d *fakeDevice) DrawIndexed(topology device.Topology, firstIndex, indexCount int) {
	d.draws = append(d.draws, recordedDraw{indexed: true, topology: topology, first: firstIndex, count: indexCount})
}

func (d *fakeDevice) DrawArrays(topology device.Topology, firstVertex, vertexCount int) {
	d.draws = append(d.draws, recordedDraw{topology: topology, first: firstVertex, count: vertexCount})
}

func (d *fakeDevice) DrawIndexedInstanced(topology device.Topology, firstIndex, indexCount, instanceCount int) {
	d.draws = append(d.draws, recordedDraw{indexed: true, instanced: true, topology: topology, first: firstIndex, count: indexCount, instances: instanceCount})
}

func (d *fakeDevice) DrawArraysInstanced(topology device.Topology, firstVertex, vertexCount, instanceCount int) {
	d.draws = append(d.draws, recordedDraw{instanced: true, topology: topology, first: firstVertex, count: vertexCount, instances: instanceCount})
}

func (d *fakeDevice) Destroy() {}

// blendEnables counts Enable(StateBlend, true) events.
func (d *fakeDevice) blendEnables() int {
	n := 0
	for _, enabled := range d.blendLog {
		if enabled {
			n++
		}
	}
	return n
}

// depthFuncSets counts SetDepthFunc events with the given comparison.
func (d *fakeDevice) depthFuncSets(fn device.Comparison) int {
	n := 0
	for _, set := range d.depthFuncLog {
		if set == fn {
			n++
		}
	}
	return n
}

type fakeViewer struct {
	eye math.Vec3
}

func (v fakeViewer) EyePosition() math.Vec3    { return v.eye }
func (v fakeViewer) ViewProjMatrix() math.Mat4 { return math.Identity() }
