package render

import (
	"unsafe"

	"github.com/Faultbox/bifrost/internal/engine/device"
	"github.com/Faultbox/bifrost/internal/engine/material"
	"github.com/Faultbox/bifrost/internal/engine/scene"
	"github.com/Faultbox/bifrost/pkg/math"
)

const spriteFlags = material.ShaderTextureOverlay | material.ShaderVertexColor

// drawBasicSprites draws the layer's batched sprites grouped by pipeline,
// material and overlay. Each group's chains are packed back to back into
// the stream buffer and drawn one buffer-sized chunk at a time, so a
// group costs as few draw calls as its sprite count allows.
func (t *Technique) drawBasicSprites(data *scene.Data, l *Layer) {
	t.streamBuffer.SetDeclaration(t.shared.SpriteDecl)
	t.dev.SetIndexBuffer(t.shared.QuadIndices)
	t.dev.SetVertexBuffer(t.streamBuffer)

	maxSpriteCount := min(maxQuads, t.streamBuffer.VertexCount()/4)

	var lastShader device.Shader

	for pipeline, pe := range l.opaqueSprites {
		if !pe.hasContent() {
			continue
		}
		shader := pipeline.Apply(t.dev, spriteFlags)
		if shader != lastShader {
			uniforms := t.shared.Uniforms.Resolve(shader)
			t.sendSceneUniforms(shader, uniforms, data)
			if uniforms.TextureOverlay >= 0 {
				shader.SendInt(uniforms.TextureOverlay, device.TextureUnitOverlay)
			}
			// sprite vertices are pre-transformed
			t.dev.SetMatrix(device.MatrixWorld, math.Identity())
			lastShader = shader
		}

		for mat, me := range pe.materials {
			if !me.hasContent() {
				continue
			}
			mat.Apply(t.dev, t.shared.WhiteTexture)

			for overlay, oe := range me.overlays {
				if len(oe.chains) == 0 {
					continue
				}
				tex := overlay
				if tex == nil {
					tex = t.shared.WhiteTexture
				}
				t.dev.SetTexture(device.TextureUnitOverlay, tex)

				t.drawSpriteChains(oe.chains, maxSpriteCount)
			}
		}
	}
}

// drawSpriteChains streams one group's chains through the shared buffer.
// Every chunk is one discarding fill followed by one draw; a chain longer
// than the buffer simply continues in the next chunk.
func (t *Technique) drawSpriteChains(chains []SpriteChain, maxSpriteCount int) {
	chain := 0
	chainOffset := 0 // sprites of chains[chain] already copied

	for chain < len(chains) {
		verts := t.spriteScratch[:0]
		spriteCount := 0

		for spriteCount < maxSpriteCount && chain < len(chains) {
			current := chains[chain]
			count := min(maxSpriteCount-spriteCount, current.spriteCount()-chainOffset)

			verts = append(verts, current.Vertices[chainOffset*4:(chainOffset+count)*4]...)
			spriteCount += count
			chainOffset += count

			if chainOffset == current.spriteCount() {
				chain++
				chainOffset = 0
			}
		}
		t.spriteScratch = verts

		t.fillStream(t.streamBuffer, unsafe.Pointer(&verts[0]), 0, len(verts)*int(unsafe.Sizeof(verts[0])), true)
		t.dev.DrawIndexed(device.TriangleList, 0, spriteCount*6)
		t.streamDrawn(t.streamBuffer)
	}
}

// drawOrderedSprites draws the layer's depth-sorted sprites in sorted
// order. Consecutive entries share the stream buffer: a refill copies as
// many entries as fit, then each entry draws its own index range after
// its state is applied. An entry cut off by the end of the buffer draws
// its copied prefix, triggers a refill resuming at its remainder, and
// continues until fully drawn.
func (t *Technique) drawOrderedSprites(data *scene.Data, l *Layer) {
	order := l.depthSortedSprites
	if len(order) == 0 {
		return
	}
	entries := l.depthSortedSpriteData

	t.streamBuffer.SetDeclaration(t.shared.SpriteDecl)
	t.dev.SetIndexBuffer(t.shared.QuadIndices)
	t.dev.SetVertexBuffer(t.streamBuffer)

	maxSpriteCount := min(maxQuads, t.streamBuffer.VertexCount()/4)

	var (
		fillPos    int // next entry to copy
		fillOffset int // sprites of it already copied
		splitIndex int // entry cut off by the current fill, -1 if none

		spriteIndex int // sprites of the current fill already drawn
	)

	refill := func() {
		verts := t.spriteScratch[:0]
		filled := 0
		splitIndex = -1

		for fillPos < len(order) && filled < maxSpriteCount {
			e := &entries[order[fillPos]]
			total := len(e.Vertices) / 4

			count := min(maxSpriteCount-filled, total-fillOffset)
			verts = append(verts, e.Vertices[fillOffset*4:(fillOffset+count)*4]...)
			filled += count
			fillOffset += count

			if fillOffset != total {
				splitIndex = fillPos
				break
			}
			fillPos++
			fillOffset = 0
		}
		t.spriteScratch = verts

		t.fillStream(t.streamBuffer, unsafe.Pointer(&verts[0]), 0, len(verts)*int(unsafe.Sizeof(verts[0])), true)
		spriteIndex = 0
	}

	var lastPipeline *material.Pipeline
	var lastMaterial *material.Material
	var lastShader device.Shader
	var lastOverlay device.Texture
	overlayBound := false

	refill()

	pos := 0
	alreadyDrawn := 0 // sprites of entries[order[pos]] drawn by previous fills

	for pos < len(order) {
		e := &entries[order[pos]]

		if e.Material != lastMaterial {
			if e.Pipeline != lastPipeline {
				shader := e.Pipeline.Apply(t.dev, spriteFlags)
				if shader != lastShader {
					uniforms := t.shared.Uniforms.Resolve(shader)
					t.sendSceneUniforms(shader, uniforms, data)
					if uniforms.TextureOverlay >= 0 {
						shader.SendInt(uniforms.TextureOverlay, device.TextureUnitOverlay)
					}
					t.dev.SetMatrix(device.MatrixWorld, math.Identity())
					lastShader = shader
				}
				lastPipeline = e.Pipeline
			}
			e.Material.Apply(t.dev, t.shared.WhiteTexture)
			lastMaterial = e.Material
		}

		if !overlayBound || e.Overlay != lastOverlay {
			tex := e.Overlay
			if tex == nil {
				tex = t.shared.WhiteTexture
			}
			t.dev.SetTexture(device.TextureUnitOverlay, tex)
			lastOverlay = e.Overlay
			overlayBound = true
		}

		if pos == splitIndex {
			// draw the copied prefix, then resume the entry's remainder
			// in a fresh fill
			spriteCount := fillOffset - alreadyDrawn
			t.dev.DrawIndexed(device.TriangleList, spriteIndex*6, spriteCount*6)
			t.streamDrawn(t.streamBuffer)
			alreadyDrawn = fillOffset
			refill()
			continue
		}

		spriteCount := len(e.Vertices)/4 - alreadyDrawn
		t.dev.DrawIndexed(device.TriangleList, spriteIndex*6, spriteCount*6)
		t.streamDrawn(t.streamBuffer)
		spriteIndex += spriteCount
		alreadyDrawn = 0
		pos++

		if pos < len(order) && spriteIndex >= maxSpriteCount {
			refill()
		}
	}
}
