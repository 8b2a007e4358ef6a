package render

import "github.com/Faultbox/bifrost/internal/engine/device"

// LightLocations are the uniform locations of light slot 0. Slot i is
// addressed as location + LightOffset*i; the shadow matrix array is
// addressed as ViewProjMatrix + i.
type LightLocations struct {
	Type           int32
	Color          int32
	Factors        int32
	Parameters1    int32
	Parameters2    int32
	Parameters3    int32
	ShadowMapping  int32
	ViewProjMatrix int32
}

// ShaderUniforms are the resolved uniform locations the technique feeds.
// A shader without an indexed light array has HasLightUniforms false, a
// valid configuration for unlit shaders.
type ShaderUniforms struct {
	EyePosition    int32
	SceneAmbient   int32
	TextureOverlay int32

	HasLightUniforms bool

	// LightOffset is the location stride between consecutive light slots.
	LightOffset int32

	Lights LightLocations
}

// UniformCache resolves uniform locations once per shader and caches them
// keyed by the shader's stable id. Shared across technique instances;
// safe only under the single rendering thread.
type UniformCache struct {
	entries map[uint32]*ShaderUniforms
}

// NewUniformCache returns an empty cache.
func NewUniformCache() *UniformCache {
	return &UniformCache{entries: make(map[uint32]*ShaderUniforms)}
}

// Resolve returns the uniform locations for a shader, querying them on
// first use and from the cache afterwards.
func (c *UniformCache) Resolve(sh device.Shader) *ShaderUniforms {
	if u, ok := c.entries[sh.ID()]; ok {
		return u
	}
	u := resolveUniforms(sh)
	c.entries[sh.ID()] = u
	return u
}

// Invalidate drops the entry for a shader id. The shader lifecycle owner
// must call this when a shader is destroyed or relinked, before the id is
// handed to any further Resolve call.
func (c *UniformCache) Invalidate(id uint32) {
	delete(c.entries, id)
}

func resolveUniforms(sh device.Shader) *ShaderUniforms {
	u := &ShaderUniforms{
		EyePosition:    sh.UniformLocation("EyePosition"),
		SceneAmbient:   sh.UniformLocation("SceneAmbient"),
		TextureOverlay: sh.UniformLocation("TextureOverlay"),
	}

	type0 := sh.UniformLocation("Lights[0].type")
	type1 := sh.UniformLocation("Lights[1].type")
	if type0 >= 0 && type1 >= 0 {
		u.HasLightUniforms = true
		u.LightOffset = type1 - type0
		u.Lights = LightLocations{
			Type:           type0,
			Color:          sh.UniformLocation("Lights[0].color"),
			Factors:        sh.UniformLocation("Lights[0].factors"),
			Parameters1:    sh.UniformLocation("Lights[0].parameters1"),
			Parameters2:    sh.UniformLocation("Lights[0].parameters2"),
			Parameters3:    sh.UniformLocation("Lights[0].parameters3"),
			ShadowMapping:  sh.UniformLocation("Lights[0].shadowMapping"),
			ViewProjMatrix: sh.UniformLocation("LightViewProjMatrix[0]"),
		}
	}

	return u
}
