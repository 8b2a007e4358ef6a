package gldevice

import (
	"fmt"
	"unsafe"

	"github.com/Faultbox/bifrost/internal/engine/device"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// texture is a GL 2D texture.
type texture struct {
	id     uint32
	width  int
	height int
}

// NewTexture creates an RGBA8 texture from pixels.
func (d *Device) NewTexture(width, height int, pixels []byte) (device.Texture, error) {
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("texture pixels length %d, want %d", len(pixels), width*height*4)
	}
	t := &texture{width: width, height: height}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if err := glError("texture creation"); err != nil {
		gl.DeleteTextures(1, &t.id)
		return nil, err
	}
	return t, nil
}

// Width returns the texture width.
func (t *texture) Width() int {
	return t.width
}

// Height returns the texture height.
func (t *texture) Height() int {
	return t.height
}

// Destroy releases the texture.
func (t *texture) Destroy() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

// sampler is a GL sampler object.
type sampler struct {
	id uint32
}

// NewSampler creates a sampler object.
func (d *Device) NewSampler(desc device.SamplerDesc) (device.Sampler, error) {
	s := &sampler{}
	gl.GenSamplers(1, &s.id)
	gl.SamplerParameteri(s.id, gl.TEXTURE_MIN_FILTER, glFilter(desc.MinFilter))
	gl.SamplerParameteri(s.id, gl.TEXTURE_MAG_FILTER, glFilter(desc.MagFilter))
	gl.SamplerParameteri(s.id, gl.TEXTURE_WRAP_S, glWrap(desc.WrapU))
	gl.SamplerParameteri(s.id, gl.TEXTURE_WRAP_T, glWrap(desc.WrapV))
	if err := glError("sampler creation"); err != nil {
		gl.DeleteSamplers(1, &s.id)
		return nil, err
	}
	return s, nil
}

// Destroy releases the sampler.
func (s *sampler) Destroy() {
	if s.id != 0 {
		gl.DeleteSamplers(1, &s.id)
		s.id = 0
	}
}

// depthTarget is a depth-only framebuffer for shadow passes.
type depthTarget struct {
	fbo  uint32
	tex  *texture
	size int
}

// NewDepthTarget creates a square depth-only render target.
func (d *Device) NewDepthTarget(size int) (device.RenderTarget, error) {
	t := &depthTarget{size: size, tex: &texture{width: size, height: size}}

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)

	gl.GenTextures(1, &t.tex.id)
	gl.BindTexture(gl.TEXTURE_2D, t.tex.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, int32(size), int32(size), 0,
		gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	// White border so samples outside the light frustum read as unshadowed.
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
	borderColor := []float32{1.0, 1.0, 1.0, 1.0}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &borderColor[0])

	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, t.tex.id, 0)

	// Depth-only pass, no color attachment.
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteFramebuffers(1, &t.fbo)
		gl.DeleteTextures(1, &t.tex.id)
		return nil, fmt.Errorf("depth target incomplete: status 0x%04x", status)
	}

	return t, nil
}

// Texture returns the depth texture.
func (t *depthTarget) Texture() device.Texture {
	return t.tex
}

// Size returns the target edge length.
func (t *depthTarget) Size() int {
	return t.size
}

// Destroy releases the target and its texture.
func (t *depthTarget) Destroy() {
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
		t.fbo = 0
	}
	t.tex.Destroy()
}

func glFilter(f device.Filter) int32 {
	if f == device.FilterNearest {
		return gl.NEAREST
	}
	return gl.LINEAR
}

func glWrap(w device.Wrap) int32 {
	if w == device.WrapClampToEdge {
		return gl.CLAMP_TO_EDGE
	}
	return gl.REPEAT
}
