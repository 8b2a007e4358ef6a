// Package material describes how surfaces are shaded, blended and textured.
package material

import (
	"github.com/Faultbox/bifrost/internal/engine/device"
)

// ShaderFlags select a shader variant of a pipeline.
type ShaderFlags uint32

const (
	// ShaderInstancing reads the world transform from per-instance
	// attributes instead of the world matrix uniform.
	ShaderInstancing ShaderFlags = 1 << iota

	// ShaderBillboard expands camera-facing quads in the vertex stage.
	ShaderBillboard

	// ShaderTextureOverlay modulates the diffuse color by the overlay
	// texture unit.
	ShaderTextureOverlay

	// ShaderVertexColor multiplies by the per-vertex color attribute.
	ShaderVertexColor
)

// RenderStates are the fixed-function states a pipeline applies before
// drawing. The zero value disables blending and depth handling entirely;
// use OpaqueStates or TranslucentStates for the common configurations.
type RenderStates struct {
	Blending bool
	SrcBlend device.BlendFunc
	DstBlend device.BlendFunc

	DepthTest  bool
	DepthWrite bool
	DepthFunc  device.Comparison

	FaceCulling bool
	CullMode    device.CullMode
}

// OpaqueStates returns the states for solid geometry: depth tested and
// written, back faces culled, no blending.
func OpaqueStates() RenderStates {
	return RenderStates{
		DepthTest:   true,
		DepthWrite:  true,
		DepthFunc:   device.CompareLess,
		FaceCulling: true,
		CullMode:    device.CullBack,
	}
}

// TranslucentStates returns the states for alpha-blended geometry: depth
// tested but not written, standard alpha blending.
func TranslucentStates() RenderStates {
	return RenderStates{
		Blending:    true,
		SrcBlend:    device.BlendSrcAlpha,
		DstBlend:    device.BlendInvSrcAlpha,
		DepthTest:   true,
		DepthFunc:   device.CompareLess,
		FaceCulling: true,
		CullMode:    device.CullBack,
	}
}

// Pipeline bundles render states with a shader and its flag variants.
// Materials sharing a pipeline are drawn consecutively so the states and
// shader are applied once per group.
type Pipeline struct {
	states   RenderStates
	base     device.Shader
	variants map[ShaderFlags]device.Shader
}

// NewPipeline creates a pipeline around a base shader. The base is used
// for every flag combination without a registered variant.
func NewPipeline(base device.Shader, states RenderStates) *Pipeline {
	return &Pipeline{
		states:   states,
		base:     base,
		variants: make(map[ShaderFlags]device.Shader),
	}
}

// SetVariant registers the shader compiled for a flag combination.
func (p *Pipeline) SetVariant(flags ShaderFlags, s device.Shader) {
	p.variants[flags] = s
}

// Shader returns the variant for the flags, falling back to the base.
func (p *Pipeline) Shader(flags ShaderFlags) device.Shader {
	if s, ok := p.variants[flags]; ok {
		return s
	}
	return p.base
}

// States returns the pipeline's render states.
func (p *Pipeline) States() RenderStates {
	return p.states
}

// Apply sets the pipeline's render states and binds the shader variant for
// the flags, returning the bound shader.
func (p *Pipeline) Apply(dev device.Device, flags ShaderFlags) device.Shader {
	st := p.states

	dev.Enable(device.StateBlend, st.Blending)
	if st.Blending {
		dev.SetBlendFunc(st.SrcBlend, st.DstBlend)
	}
	dev.Enable(device.StateDepthTest, st.DepthTest)
	dev.Enable(device.StateDepthWrite, st.DepthWrite)
	if st.DepthTest {
		dev.SetDepthFunc(st.DepthFunc)
	}
	dev.Enable(device.StateCullFace, st.FaceCulling)
	if st.FaceCulling {
		dev.SetFaceCulling(st.CullMode)
	}

	sh := p.Shader(flags)
	dev.BindShader(sh)
	return sh
}

// Material carries the per-surface textures and sampling for a pipeline.
type Material struct {
	diffuse device.Texture
	sampler device.Sampler

	depthSorted bool
}

// New creates an untextured material. Drawing falls back to the shared
// white texture until a diffuse map is set.
func New() *Material {
	return &Material{}
}

// SetDiffuse sets the diffuse map. Passing nil restores the fallback.
func (m *Material) SetDiffuse(tex device.Texture) {
	m.diffuse = tex
}

// Diffuse returns the diffuse map, nil when unset.
func (m *Material) Diffuse() device.Texture {
	return m.diffuse
}

// SetDiffuseSampler sets the sampler used with the diffuse map.
func (m *Material) SetDiffuseSampler(s device.Sampler) {
	m.sampler = s
}

// DiffuseSampler returns the diffuse sampler, nil when unset.
func (m *Material) DiffuseSampler() device.Sampler {
	return m.sampler
}

// EnableDepthSorting routes geometry using this material to the
// depth-sorted far-to-near path instead of the batched opaque path.
func (m *Material) EnableDepthSorting(enabled bool) {
	m.depthSorted = enabled
}

// IsDepthSorted reports whether geometry is drawn far to near.
func (m *Material) IsDepthSorted() bool {
	return m.depthSorted
}

// Apply binds the material's diffuse map and sampler. A material without
// a diffuse map binds the fallback texture instead.
func (m *Material) Apply(dev device.Device, fallback device.Texture) {
	tex := m.diffuse
	if tex == nil {
		tex = fallback
	}
	dev.SetTexture(device.TextureUnitDiffuse, tex)
	dev.SetSampler(device.TextureUnitDiffuse, m.sampler)
}
