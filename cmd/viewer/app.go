package main

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/bifrost/internal/config"
	"github.com/Faultbox/bifrost/internal/engine/camera"
	"github.com/Faultbox/bifrost/internal/engine/device"
	"github.com/Faultbox/bifrost/internal/engine/device/gldevice"
	"github.com/Faultbox/bifrost/internal/engine/render"
	"github.com/Faultbox/bifrost/internal/engine/scene"
	"github.com/Faultbox/bifrost/internal/engine/shadow"
	"github.com/Faultbox/bifrost/internal/engine/window"
	"github.com/Faultbox/bifrost/internal/logger"
	"github.com/Faultbox/bifrost/pkg/math"
)

// App owns the window, device and render technique and runs the frame loop.
type App struct {
	cfg *config.Config

	window  *window.Window
	dev     *gldevice.Device
	shared  *render.SharedResources
	tech    *render.Technique
	shaders *shaderSet
	scene   *demoScene

	cam       *camera.OrbitCamera
	shadowMap *shadow.Map

	running  bool
	dragging bool
}

// New creates the viewer. The GL context must not exist yet; window
// creation provides it.
func New(cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	var err error
	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	a.dev, err = gldevice.New(gldevice.Config{})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	a.shared, err = render.NewSharedResources(a.dev)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create shared render resources: %w", err)
	}

	a.tech, err = render.New(a.dev, a.shared, render.Config{
		StreamBufferBytes:     cfg.Renderer.StreamBufferBytes,
		Instancing:            cfg.Renderer.Instancing,
		MaxLightPassPerObject: cfg.Renderer.MaxLightPassPerObject,
		DebugChecks:           cfg.Renderer.DebugChecks,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create render technique: %w", err)
	}

	a.shaders, err = buildShaders(a.dev)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.scene, err = buildScene(a.dev)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Shadows.Enabled {
		a.shadowMap, err = shadow.NewMap(a.dev, cfg.Shadows.Resolution)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create shadow map: %w", err)
		}
	}

	a.cam = camera.NewOrbitCamera()
	a.cam.Distance = cfg.Camera.Distance
	a.cam.RotationX = cfg.Camera.Pitch
	a.cam.RotationY = cfg.Camera.Yaw
	w, h := a.window.GetSize()
	a.cam.SetViewport(w, h)
	a.dev.SetViewport(0, 0, w, h)

	logger.Info("viewer initialized",
		zap.Bool("instancing", a.tech.IsInstancingEnabled()),
		zap.Bool("shadows", a.shadowMap != nil),
	)
	return a, nil
}

// Run drives the frame loop until quit.
func (a *App) Run() error {
	a.running = true
	start := time.Now()

	frameCount := 0
	fpsTimer := time.Now()

	for a.running {
		a.handleEvents()

		a.frame(time.Since(start).Seconds())
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

func (a *App) handleEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			a.running = false

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Keysym.Scancode == sdl.SCANCODE_ESCAPE {
				a.running = false
			}

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				w, h := int(e.Data1), int(e.Data2)
				a.dev.SetViewport(0, 0, w, h)
				a.cam.SetViewport(w, h)
			}

		case *sdl.MouseButtonEvent:
			if e.Button == sdl.BUTTON_LEFT {
				a.dragging = e.Type == sdl.MOUSEBUTTONDOWN
			}

		case *sdl.MouseMotionEvent:
			if a.dragging {
				a.cam.HandleDrag(float32(e.XRel), float32(e.YRel))
			}

		case *sdl.MouseWheelEvent:
			a.cam.HandleZoom(float32(e.Y))
		}
	}
}

// frame renders one frame: optional shadow pass, then queue population
// and the forward pass.
func (a *App) frame(elapsed float64) {
	var sunMatrix math.Mat4
	if a.shadowMap != nil {
		sunMatrix = a.renderShadowPass()
	}

	q := a.tech.Queue()
	a.scene.populate(q, a.shaders, a.shadowMap, sunMatrix, elapsed)

	data := &scene.Data{
		AmbientColor: math.Color{R: 0.35, G: 0.35, B: 0.4, A: 1},
		Viewer:       a.cam,
		Background:   scene.NewColorBackground(math.Color{R: 0.05, G: 0.07, B: 0.12, A: 1}),
	}

	a.tech.Clear(data)
	a.tech.Draw(data)
	q.Clear(false)
}

// renderShadowPass draws the shadow casters into the sun's depth map and
// returns the light matrix the forward pass samples with.
func (a *App) renderShadowPass() math.Mat4 {
	sunDir := math.Vec3{X: -0.4, Y: -1, Z: -0.3}
	sunMatrix := shadow.DirectionalLightMatrix(sunDir, a.scene.focusBounds())

	a.shadowMap.Begin()
	a.dev.BindShader(a.shaders.depth)
	a.dev.SetMatrix(device.MatrixViewProj, sunMatrix)

	for _, g := range a.scene.shadowGeometry() {
		a.dev.SetVertexBuffer(g.Mesh.VertexBuffer)
		a.dev.SetIndexBuffer(g.Mesh.IndexBuffer)
		for _, m := range g.Transforms {
			a.dev.SetMatrix(device.MatrixWorld, m)
			a.dev.DrawIndexed(g.Mesh.Primitive, 0, g.Mesh.IndexBuffer.Count())
		}
	}
	a.shadowMap.End()

	return sunMatrix
}

// Close releases everything in reverse creation order.
func (a *App) Close() {
	if a.shadowMap != nil {
		a.shadowMap.Destroy()
		a.shadowMap = nil
	}
	if a.scene != nil {
		a.scene.destroy()
		a.scene = nil
	}
	if a.shaders != nil {
		a.shaders.destroy()
		a.shaders = nil
	}
	if a.tech != nil {
		a.tech.Destroy()
		a.tech = nil
	}
	if a.shared != nil {
		a.shared.Destroy()
		a.shared = nil
	}
	if a.dev != nil {
		a.dev.Destroy()
		a.dev = nil
	}
	if a.window != nil {
		a.window.Close()
		a.window = nil
	}
}
