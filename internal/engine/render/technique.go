package render

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/Faultbox/bifrost/internal/engine/device"
	"github.com/Faultbox/bifrost/internal/engine/scene"
	"github.com/Faultbox/bifrost/internal/logger"
)

// maxLightsPerPass is the number of light slots the forward shaders
// expose; objects touched by more lights draw additional additive passes.
const maxLightsPerPass = 3

// defaultMaxLightPassPerObject bounds those additive passes by default.
const defaultMaxLightPassPerObject = 3

// Config tunes a Technique at creation time.
type Config struct {
	// StreamBufferBytes sizes the shared streaming buffer used for sprite
	// and billboard geometry. Zero selects the 4 MiB default.
	StreamBufferBytes int

	// Instancing enables the instanced model and billboard paths when the
	// device supports them.
	Instancing bool

	// MaxLightPassPerObject overrides the additive pass bound advertised
	// through MaxLightPassPerObject. Zero selects the default.
	MaxLightPassPerObject int

	// DebugChecks verifies the stream buffer discipline on every fill:
	// discarding a fill whose chunk has not been drawn yet aborts with a
	// diagnostic instead of silently corrupting geometry.
	DebugChecks bool
}

// Technique renders a frame's queue in a fixed pass order per layer:
// opaque models, depth-sorted models, sprites, depth-sorted sprites,
// billboards, then self-drawing objects. Not safe for concurrent use;
// all methods must run on the device's thread.
type Technique struct {
	dev    device.Device
	shared *SharedResources

	queue Queue

	streamBuffer device.VertexBuffer

	instancingEnabled     bool
	maxLightPassPerObject int
	debugChecks           bool

	// scratch reused across draws to keep steady state allocation-free
	lights        []LightRef
	spriteScratch []SpriteVertex
	pointScratch  []billboardPoint

	pendingStream map[device.VertexBuffer]bool
}

// New creates a technique drawing through dev. The shared resources stay
// owned by the caller and may serve several techniques.
func New(dev device.Device, shared *SharedResources, cfg Config) (*Technique, error) {
	streamBytes := cfg.StreamBufferBytes
	if streamBytes == 0 {
		streamBytes = defaultStreamBytes
	}
	if minBytes := 4 * int(unsafe.Sizeof(billboardPoint{})); streamBytes < minBytes {
		return nil, fmt.Errorf("stream buffer of %d bytes cannot hold a single quad (minimum %d)", streamBytes, minBytes)
	}

	streamBuffer, err := dev.NewVertexBuffer(streamBytes, device.UsageStream)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream buffer: %w", err)
	}

	maxLightPass := cfg.MaxLightPassPerObject
	if maxLightPass == 0 {
		maxLightPass = defaultMaxLightPassPerObject
	}

	t := &Technique{
		dev:                   dev,
		shared:                shared,
		streamBuffer:          streamBuffer,
		instancingEnabled:     cfg.Instancing && dev.Caps().Instancing,
		maxLightPassPerObject: maxLightPass,
		debugChecks:           cfg.DebugChecks,
	}
	if cfg.DebugChecks {
		t.pendingStream = make(map[device.VertexBuffer]bool)
	}
	return t, nil
}

// Queue returns the technique's render queue for the scene to fill.
func (t *Technique) Queue() *Queue {
	return &t.queue
}

// EnableInstancing toggles the instanced paths. It has no effect on
// devices without instancing support.
func (t *Technique) EnableInstancing(enabled bool) {
	t.instancingEnabled = enabled && t.dev.Caps().Instancing
}

// IsInstancingEnabled reports whether the instanced paths are active.
func (t *Technique) IsInstancingEnabled() bool {
	return t.instancingEnabled
}

// SetMaxLightPassPerObject sets the advertised bound on additive light
// passes per object.
func (t *Technique) SetMaxLightPassPerObject(n int) {
	t.maxLightPassPerObject = n
}

// MaxLightPassPerObject returns the advertised bound on additive light
// passes per object.
func (t *Technique) MaxLightPassPerObject() int {
	return t.maxLightPassPerObject
}

// Clear prepares the frame: depth is cleared with testing and writing
// enabled, then the scene background paints over the color buffer.
func (t *Technique) Clear(data *scene.Data) {
	t.dev.Enable(device.StateDepthTest, true)
	t.dev.Enable(device.StateDepthWrite, true)
	t.dev.Clear(device.ClearDepth)

	if data.Background != nil {
		data.Background.Draw(t.dev, data.Viewer)
	}
}

// Draw sorts the queue and renders every layer in ascending order. The
// queue keeps its contents; callers clear it once the frame is done.
func (t *Technique) Draw(data *scene.Data) bool {
	if data.Viewer == nil {
		logger.Fatal("scene data has no viewer")
		return false
	}

	t.queue.Sort(data.Viewer)

	for _, l := range t.queue.layersInOrder() {
		if len(l.opaqueModels) > 0 {
			t.drawOpaqueModels(data, l)
		}
		if len(l.depthSortedModels) > 0 {
			t.drawTransparentModels(data, l)
		}
		if len(l.opaqueSprites) > 0 {
			t.drawBasicSprites(data, l)
		}
		if len(l.depthSortedSprites) > 0 {
			t.drawOrderedSprites(data, l)
		}
		if len(l.billboards) > 0 {
			t.drawBillboards(data, l)
		}
		for _, d := range l.otherDrawables {
			d.Draw(t.dev)
		}
	}
	return true
}

// Destroy releases the technique's stream buffer. Shared resources are
// left to their owner.
func (t *Technique) Destroy() {
	if t.streamBuffer != nil {
		t.streamBuffer.Destroy()
		t.streamBuffer = nil
	}
}

// fillStream writes one chunk into a streaming buffer, enforcing the
// fill-then-draw discipline when debug checks are on.
func (t *Technique) fillStream(buf device.VertexBuffer, data unsafe.Pointer, offsetBytes, sizeBytes int, discard bool) {
	if t.debugChecks && discard && t.pendingStream[buf] {
		logger.Fatal("stream buffer discarded before its previous chunk was drawn")
	}
	if err := buf.Fill(data, offsetBytes, sizeBytes, discard); err != nil {
		logger.Error("stream buffer fill failed", zap.Error(err))
		return
	}
	if t.debugChecks {
		t.pendingStream[buf] = true
	}
}

// streamDrawn records that the buffer's pending chunk has been consumed
// by a draw call.
func (t *Technique) streamDrawn(buf device.VertexBuffer) {
	if t.debugChecks {
		delete(t.pendingStream, buf)
	}
}
