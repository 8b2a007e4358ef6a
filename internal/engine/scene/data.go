package scene

import (
	"github.com/Faultbox/bifrost/internal/engine/device"
	"github.com/Faultbox/bifrost/pkg/math"
)

// Viewer supplies the camera state a frame is rendered with.
type Viewer interface {
	// EyePosition returns the camera position in world space.
	EyePosition() math.Vec3

	// ViewProjMatrix returns the combined view-projection matrix.
	ViewProjMatrix() math.Mat4
}

// Background paints the backdrop during the clear pass, before any queued
// geometry is drawn.
type Background interface {
	Draw(dev device.Device, viewer Viewer)
}

// Drawable renders itself directly, outside the batched paths. Drawables
// run last within their layer and must leave device state consistent.
type Drawable interface {
	Draw(dev device.Device)
}

// Data is the scene state a render technique consumes for one frame.
type Data struct {
	AmbientColor math.Color
	Viewer       Viewer
	Background   Background
}

// ColorBackground clears the framebuffer to a solid color.
type ColorBackground struct {
	Color math.Color
}

// NewColorBackground returns a background clearing to the given color.
func NewColorBackground(c math.Color) *ColorBackground {
	return &ColorBackground{Color: c}
}

// Draw clears the color buffer.
func (b *ColorBackground) Draw(dev device.Device, viewer Viewer) {
	dev.SetClearColor(b.Color)
	dev.Clear(device.ClearColor)
}
