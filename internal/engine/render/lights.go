package render

import (
	"sort"

	"github.com/Faultbox/bifrost/internal/engine/device"
	"github.com/Faultbox/bifrost/internal/engine/light"
	"github.com/Faultbox/bifrost/pkg/math"
)

// LightRef points back into the queue's light lists, scored by relevance
// to the object being lit. Lower scores rank first.
type LightRef struct {
	Type  light.Type
	Score float32
	Index int
}

// ChooseLights ranks the queue's lights against an object's world-space
// bounding sphere and returns them best first, reusing scratch. Lights
// that cannot reach the sphere are skipped. Directional lights always
// apply and score 0, so they rank ahead of every positional light; the
// sort keeps encounter order between equal scores, making selection
// deterministic within a frame.
func ChooseLights(scratch []LightRef, q *Queue, object math.Sphere, includeDirectional bool) []LightRef {
	refs := scratch[:0]

	if includeDirectional {
		for i := range q.DirectionalLights {
			refs = append(refs, LightRef{Type: light.TypeDirectional, Score: 0, Index: i})
		}
	}
	for i := range q.PointLights {
		if l := &q.PointLights[i]; l.Suitable(object) {
			refs = append(refs, LightRef{Type: light.TypePoint, Score: l.Score(object), Index: i})
		}
	}
	for i := range q.SpotLights {
		if l := &q.SpotLights[i]; l.Suitable(object) {
			refs = append(refs, LightRef{Type: light.TypeSpot, Score: l.Score(object), Index: i})
		}
	}

	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].Score < refs[j].Score
	})
	return refs
}

// sendLight writes one light into the shader's uniform slot. A nil ref
// clears the slot by sending the empty light type, which the shader reads
// as the end of the light list.
func (t *Technique) sendLight(sh device.Shader, u *ShaderUniforms, slot int, ref *LightRef) {
	offset := u.LightOffset * int32(slot)

	if ref == nil {
		sh.SendInt(u.Lights.Type+offset, int32(light.TypeNone))
		return
	}

	sh.SendInt(u.Lights.Type+offset, int32(ref.Type))

	switch ref.Type {
	case light.TypeDirectional:
		l := &t.queue.DirectionalLights[ref.Index]
		sh.SendColor(u.Lights.Color+offset, l.Color)
		sh.SendVec2(u.Lights.Factors+offset, math.Vec2{X: l.AmbientFactor, Y: l.DiffuseFactor})
		sh.SendVec4(u.Lights.Parameters1+offset, math.Vec4{l.Direction.X, l.Direction.Y, l.Direction.Z, 0})

		sh.SendInt(u.Lights.ShadowMapping+offset, shadowFlag(l.ShadowMap))
		if l.ShadowMap != nil {
			unit := device.TextureUnitShadow + slot
			t.dev.SetTexture(unit, l.ShadowMap)
			t.dev.SetSampler(unit, t.shared.ShadowSampler)
			sh.SendMatrix(u.Lights.ViewProjMatrix+int32(slot), l.TransformMatrix)
		}

	case light.TypePoint:
		l := &t.queue.PointLights[ref.Index]
		sh.SendColor(u.Lights.Color+offset, l.Color)
		sh.SendVec2(u.Lights.Factors+offset, math.Vec2{X: l.AmbientFactor, Y: l.DiffuseFactor})
		sh.SendVec4(u.Lights.Parameters1+offset, math.Vec4{l.Position.X, l.Position.Y, l.Position.Z, l.Attenuation})
		sh.SendVec4(u.Lights.Parameters2+offset, math.Vec4{0, 0, 0, l.InvRadius()})

		sh.SendInt(u.Lights.ShadowMapping+offset, shadowFlag(l.ShadowMap))
		if l.ShadowMap != nil {
			unit := device.TextureUnitShadow + slot
			t.dev.SetTexture(unit, l.ShadowMap)
			t.dev.SetSampler(unit, t.shared.ShadowSampler)
		}

	case light.TypeSpot:
		l := &t.queue.SpotLights[ref.Index]
		sh.SendColor(u.Lights.Color+offset, l.Color)
		sh.SendVec2(u.Lights.Factors+offset, math.Vec2{X: l.AmbientFactor, Y: l.DiffuseFactor})
		sh.SendVec4(u.Lights.Parameters1+offset, math.Vec4{l.Position.X, l.Position.Y, l.Position.Z, l.Attenuation})
		sh.SendVec4(u.Lights.Parameters2+offset, math.Vec4{l.Direction.X, l.Direction.Y, l.Direction.Z, l.InvRadius()})
		sh.SendVec2(u.Lights.Parameters3+offset, math.Vec2{X: l.InnerAngleCos, Y: l.OuterAngleCos})

		sh.SendInt(u.Lights.ShadowMapping+offset, shadowFlag(l.ShadowMap))
		if l.ShadowMap != nil {
			unit := device.TextureUnitShadow + slot
			t.dev.SetTexture(unit, l.ShadowMap)
			t.dev.SetSampler(unit, t.shared.ShadowSampler)
			sh.SendMatrix(u.Lights.ViewProjMatrix+int32(slot), l.TransformMatrix)
		}
	}
}

func shadowFlag(tex device.Texture) int32 {
	if tex != nil {
		return 1
	}
	return 0
}
