// Package viewer implements the terrain viewer loop: LOD selection, the
// shadow and main render passes, and the camera and debug controls.
package viewer

import (
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/veldt-gl/veldt/internal/config"
	"github.com/veldt-gl/veldt/internal/engine/camera"
	"github.com/veldt-gl/veldt/internal/engine/debug"
	"github.com/veldt-gl/veldt/internal/engine/geom"
	"github.com/veldt-gl/veldt/internal/engine/heightfield"
	"github.com/veldt-gl/veldt/internal/engine/input"
	"github.com/veldt-gl/veldt/internal/engine/lighting"
	"github.com/veldt-gl/veldt/internal/engine/scene"
	"github.com/veldt-gl/veldt/internal/engine/shadow"
	"github.com/veldt-gl/veldt/internal/engine/terrain"
	"github.com/veldt-gl/veldt/internal/engine/window"
	"github.com/veldt-gl/veldt/internal/logger"
)

// Viewer owns the window, the terrain pipeline and the interaction state.
type Viewer struct {
	cfg     *config.Config
	running bool

	win   *window.Window
	input *input.Input
	scene *scene.Scene

	field    heightfield.Field
	selector *terrain.Selector
	terrain  *terrain.Renderer
	cascades *shadow.Cascades
	boxes    *debug.BoxRenderer
	shots    *debug.ScreenshotCapture

	lens  camera.Lens
	fly   *camera.Fly
	orbit *camera.Orbit
	sun   lighting.Sun

	// Interaction toggles
	orbitMode bool
	wireframe bool
	showBoxes bool
	shadowsOn bool
	dragging  bool

	// Per-frame results, written during the frame and read by the HUD log.
	patches   []terrain.Patch
	drawCalls int

	// Scratch for the LOD box overlay, reused across frames.
	boxScratch []geom.AABB
}

// New builds the full pipeline. The window comes first; everything else
// needs its GL context.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg:       cfg,
		sun:       lighting.Default(),
		shadowsOn: cfg.Shadow.Enabled,
	}

	var err error
	v.win, err = window.New(window.Config{
		Title:      "Veldt",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	v.field, err = loadField(cfg.Terrain)
	if err != nil {
		v.Close()
		return nil, err
	}
	logger.Info("height field ready",
		zap.Int("width", v.field.W()),
		zap.Int("height", v.field.H()),
		zap.String("source", fieldSource(cfg.Terrain)),
	)

	v.selector, err = terrain.NewSelector(v.field, terrain.SelectorConfig{
		MaxDepth:        cfg.Terrain.LODDepth,
		VisibleRange:    cfg.Terrain.VisibleRange,
		MorphStartRatio: cfg.Terrain.MorphStartRatio,
		HeightScale:     cfg.Terrain.HeightScale,
	})
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("creating LOD selector: %w", err)
	}

	v.terrain, err = terrain.NewRenderer(v.field, cfg.Terrain.GridDimension, cfg.Terrain.HeightScale)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("creating terrain renderer: %w", err)
	}

	if cfg.Shadow.Enabled {
		v.cascades, err = shadow.NewCascades(int32(cfg.Shadow.Resolution), cfg.Shadow.Cascades)
		if err != nil {
			v.Close()
			return nil, fmt.Errorf("creating shadow cascades: %w", err)
		}
	}

	v.boxes, err = debug.NewBoxRenderer()
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("creating box renderer: %w", err)
	}

	v.shots = debug.NewScreenshotCapture("screenshots", "veldt")
	v.input = input.New()

	v.lens = camera.Lens{
		FOVDegrees: cfg.Camera.FOVDegrees,
		Aspect:     v.win.AspectRatio(),
		Near:       cfg.Camera.Near,
		Far:        cfg.Camera.Far,
	}

	bounds := v.terrainBounds()
	start := bounds.Center()
	start[1] = cfg.Terrain.HeightScale * 1.2
	v.fly = camera.NewFly(start)
	v.fly.MoveSpeed = cfg.Camera.MoveSpeed
	v.fly.Sensitivity = cfg.Camera.Sensitivity

	v.orbit = camera.NewOrbit()
	v.orbit.FitToBounds(bounds)

	v.scene = buildScene(v)

	// Fly mode captures the mouse for looking around.
	v.win.SetRelativeMouseMode(true)

	return v, nil
}

func loadField(cfg config.TerrainConfig) (heightfield.Field, error) {
	if cfg.HeightmapPath != "" {
		field, err := heightfield.Load(cfg.HeightmapPath)
		if err != nil {
			return nil, fmt.Errorf("loading heightmap: %w", err)
		}
		return field, nil
	}

	gen := heightfield.DefaultProceduralConfig()
	gen.Seed = cfg.Seed
	field, err := heightfield.NewProcedural(cfg.Size, cfg.Size, gen)
	if err != nil {
		return nil, fmt.Errorf("generating terrain: %w", err)
	}
	return field, nil
}

func fieldSource(cfg config.TerrainConfig) string {
	if cfg.HeightmapPath != "" {
		return cfg.HeightmapPath
	}
	return fmt.Sprintf("procedural seed=%d", cfg.Seed)
}

// terrainBounds is the world-space box of the whole terrain.
func (v *Viewer) terrainBounds() geom.AABB {
	return geom.AABB{
		Min: mgl32.Vec3{0, 0, 0},
		Max: mgl32.Vec3{
			float32(v.field.W()),
			v.cfg.Terrain.HeightScale,
			float32(v.field.H()),
		},
	}
}

// buildScene wires the viewer's behaviors: controls consume their keys
// first, then the cameras, then the render records.
func buildScene(v *Viewer) *scene.Scene {
	s := scene.New()

	s.Add(scene.NewEntity("controls").OnInput(v.handleControlKey))

	s.Add(scene.NewEntity("camera").
		OnUpdate(v.updateCamera).
		OnInput(v.handleCameraInput))

	s.Add(scene.NewEntity("terrain").OnRender(func(ctx scene.RenderContext) {
		params := terrain.FrameParams{
			View:       ctx.View,
			Projection: ctx.Projection,
			CameraPos:  ctx.CameraPos,
			Sun:        v.sun,
			Wireframe:  v.wireframe,
		}
		if v.shadowsOn && v.cascades != nil {
			params.Shadows = v.cascades
		}
		v.drawCalls = v.terrain.Render(params, v.patches)
	}))

	s.Add(scene.NewEntity("lod-boxes").OnRender(func(ctx scene.RenderContext) {
		if v.showBoxes {
			v.renderLODBoxes(ctx.ViewProj)
		}
	}))

	return s
}

func (v *Viewer) handleControlKey(ev input.Event) bool {
	if ev.Type != input.EventKeyDown {
		return false
	}

	switch ev.Key {
	case sdl.SCANCODE_ESCAPE:
		v.running = false
	case sdl.SCANCODE_TAB:
		v.orbitMode = !v.orbitMode
		v.win.SetRelativeMouseMode(!v.orbitMode)
		logger.Info("camera mode", zap.Bool("orbit", v.orbitMode))
	case sdl.SCANCODE_F1:
		v.wireframe = !v.wireframe
	case sdl.SCANCODE_F2:
		v.showBoxes = !v.showBoxes
	case sdl.SCANCODE_F3:
		if v.cascades != nil {
			v.shadowsOn = !v.shadowsOn
			logger.Info("shadows", zap.Bool("enabled", v.shadowsOn))
		}
	case sdl.SCANCODE_F12:
		v.captureScreenshot()
	default:
		return false
	}
	return true
}

func (v *Viewer) handleCameraInput(ev input.Event) bool {
	if v.orbitMode {
		switch ev.Type {
		case input.EventMouseDown:
			if ev.Button == sdl.BUTTON_LEFT {
				v.dragging = true
				return true
			}
		case input.EventMouseUp:
			if ev.Button == sdl.BUTTON_LEFT {
				v.dragging = false
				return true
			}
		case input.EventMouseMove:
			if v.dragging {
				v.orbit.HandleDrag(float32(ev.RelX), float32(ev.RelY))
				return true
			}
		case input.EventMouseWheel:
			v.orbit.HandleZoom(float32(ev.Wheel))
			return true
		}
		return false
	}

	if ev.Type == input.EventMouseMove && v.win.RelativeMouseMode() {
		v.fly.HandleMouse(float32(ev.RelX), float32(ev.RelY))
		return true
	}
	return false
}

func (v *Viewer) updateCamera(dt float32) {
	if v.orbitMode {
		return
	}
	v.fly.Move(
		v.input.Axis(sdl.SCANCODE_S, sdl.SCANCODE_W),
		v.input.Axis(sdl.SCANCODE_A, sdl.SCANCODE_D),
		v.input.Axis(sdl.SCANCODE_LCTRL, sdl.SCANCODE_SPACE),
		dt,
	)
}

// cameraState returns the active camera's view matrix, position and
// frustum.
func (v *Viewer) cameraState() (mgl32.Mat4, mgl32.Vec3, geom.Frustum) {
	if v.orbitMode {
		return v.orbit.ViewMatrix(), v.orbit.Position(), v.orbit.Frustum(v.lens)
	}
	return v.fly.ViewMatrix(), v.fly.Position, v.fly.Frustum(v.lens)
}

// Run drives the frame loop until quit.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frames := 0
	statTimer := time.Now()

	logger.Info("entering frame loop")

	for v.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if v.input.Update() {
			break
		}
		for _, ev := range v.input.Events() {
			if ev.Type == input.EventWindowResize {
				v.resize(ev.Width, ev.Height)
				continue
			}
			v.scene.DispatchInput(ev)
		}

		v.scene.Update(dt)

		view, camPos, frustum := v.cameraState()
		proj := v.lens.Projection()

		v.patches = v.selector.Select(camPos, frustum)

		if v.shadowsOn && v.cascades != nil {
			v.shadowPass(camPos)
		}

		v.renderFrame(scene.RenderContext{
			View:       view,
			Projection: proj,
			ViewProj:   proj.Mul4(view),
			CameraPos:  camPos,
			Frustum:    frustum,
			Delta:      dt,
		})

		v.win.SwapBuffers()

		frames++
		if time.Since(statTimer) >= time.Second {
			v.win.SetTitle(fmt.Sprintf("Veldt | %d fps, %d patches, %d draws",
				frames, len(v.patches), v.drawCalls))
			logger.Debug("frame stats",
				zap.Int("fps", frames),
				zap.Int("patches", len(v.patches)),
				zap.Int("draw_calls", v.drawCalls),
			)
			frames = 0
			statTimer = time.Now()
		}
	}

	return nil
}

// shadowPass renders the selected patches into each cascade, finest first.
// The same patch list as the main pass keeps shadow geometry morph-exact
// with the visible geometry.
func (v *Viewer) shadowPass(camPos mgl32.Vec3) {
	base := v.cfg.Terrain.VisibleRange / float32(uint(1)<<uint(v.cfg.Shadow.Cascades))
	radii := shadow.CascadeRadii(v.cfg.Shadow.Cascades, base)
	lightDir := v.sun.Direction()

	v.cascades.Begin()
	for i, radius := range radii {
		if i > 0 {
			if err := v.cascades.Push(); err != nil {
				logger.Warn("shadow cascade push failed", zap.Error(err))
				break
			}
		}

		focus := shadow.SnapToTexels(camPos, radius, v.cascades.Resolution())
		lightVP := shadow.LightMatrix(lightDir, focus, radius)
		v.cascades.SetMatrix(shadow.BiasMatrix().Mul4(lightVP))
		v.terrain.RenderDepth(lightVP, camPos, v.patches)
	}
	v.cascades.End()
}

func (v *Viewer) renderFrame(ctx scene.RenderContext) {
	gl.ClearColor(0.53, 0.72, 0.9, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)

	v.scene.Render(ctx)
}

// renderLODBoxes draws the selected patches' bounding boxes, one color per
// quadtree level.
func (v *Viewer) renderLODBoxes(viewProj mgl32.Mat4) {
	for level := 0; level <= v.cfg.Terrain.LODDepth; level++ {
		v.boxScratch = v.boxScratch[:0]
		for _, p := range v.patches {
			if p.Level != level {
				continue
			}
			v.boxScratch = append(v.boxScratch, geom.AABB{
				Min: mgl32.Vec3{p.CenterX - p.Size/2, p.MinHeight, p.CenterZ - p.Size/2},
				Max: mgl32.Vec3{p.CenterX + p.Size/2, p.MaxHeight, p.CenterZ + p.Size/2},
			})
		}
		if len(v.boxScratch) > 0 {
			v.boxes.Render(viewProj, v.boxScratch, debug.LevelColor(level))
		}
	}
}

func (v *Viewer) captureScreenshot() {
	w, h := v.win.GetSize()
	pixels := make([]byte, w*h*4)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))

	file, err := v.shots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		logger.Error("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("file", file))
}

func (v *Viewer) resize(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	if height > 0 {
		v.lens.Aspect = float32(width) / float32(height)
	}
	logger.Debug("window resized", zap.Int("width", width), zap.Int("height", height))
}

// Close releases everything in reverse construction order. Safe to call on
// a partially constructed viewer.
func (v *Viewer) Close() {
	if v.boxes != nil {
		v.boxes.Destroy()
	}
	if v.cascades != nil {
		v.cascades.Destroy()
	}
	if v.terrain != nil {
		v.terrain.Destroy()
	}
	if v.win != nil {
		v.win.Close()
	}
}
