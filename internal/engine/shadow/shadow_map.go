// Package shadow renders directional shadow maps the forward pass
// samples from its light slots.
package shadow

import (
	"fmt"

	"github.com/Faultbox/bifrost/internal/engine/device"
)

// DefaultResolution is the default shadow map resolution.
const DefaultResolution = 1024

// Map owns a depth-only render target a light's shadow pass draws into.
// The resulting texture and light matrix travel with the light through
// the render queue.
type Map struct {
	dev    device.Device
	target device.RenderTarget
}

// NewMap creates a shadow map of the given resolution. Resolution should
// be a power of two; zero or negative selects the default.
func NewMap(dev device.Device, resolution int) (*Map, error) {
	if resolution <= 0 {
		resolution = DefaultResolution
	}

	target, err := dev.NewDepthTarget(resolution)
	if err != nil {
		return nil, fmt.Errorf("failed to create %dx%d shadow target: %w", resolution, resolution, err)
	}

	return &Map{dev: dev, target: target}, nil
}

// Begin redirects rendering into the shadow map and clears its depth.
// Front faces are culled during the pass to reduce shadow acne.
func (m *Map) Begin() {
	m.dev.SetRenderTarget(m.target)
	m.dev.Enable(device.StateDepthTest, true)
	m.dev.Enable(device.StateDepthWrite, true)
	m.dev.SetDepthFunc(device.CompareLess)
	m.dev.Clear(device.ClearDepth)

	m.dev.Enable(device.StateCullFace, true)
	m.dev.SetFaceCulling(device.CullFront)
}

// End restores the default render target and back-face culling.
func (m *Map) End() {
	m.dev.SetRenderTarget(nil)
	m.dev.SetFaceCulling(device.CullBack)
}

// Texture returns the depth texture to bind on a light's shadow unit.
func (m *Map) Texture() device.Texture {
	return m.target.Texture()
}

// Resolution returns the map's edge length in pixels.
func (m *Map) Resolution() int {
	return m.target.Size()
}

// Destroy releases the render target.
func (m *Map) Destroy() {
	if m.target != nil {
		m.target.Destroy()
		m.target = nil
	}
}
