package device

// Texture unit assignments shared between materials, the renderer and
// the shader sources.
const (
	TextureUnitDiffuse = 0
	TextureUnitOverlay = 1
	// TextureUnitShadow is the first shadow map unit; light slot i binds
	// its map at TextureUnitShadow + i.
	TextureUnitShadow = 2
)

// Texture is a GPU texture.
type Texture interface {
	Width() int
	Height() int

	// Destroy releases the texture.
	Destroy()
}

// RenderTarget is an offscreen depth-only target for shadow rendering.
type RenderTarget interface {
	// Texture returns the depth texture the target renders into.
	Texture() Texture

	// Size returns the target's edge length in pixels.
	Size() int

	// Destroy releases the target and its texture.
	Destroy()
}

// Filter is a texture filtering mode.
type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
)

// Wrap is a texture addressing mode.
type Wrap int

const (
	WrapRepeat Wrap = iota
	WrapClampToEdge
)

// SamplerDesc describes a sampler object.
type SamplerDesc struct {
	MinFilter Filter
	MagFilter Filter
	WrapU     Wrap
	WrapV     Wrap
}

// Sampler holds fixed sampling state bindable to a texture unit.
type Sampler interface {
	// Destroy releases the sampler.
	Destroy()
}
