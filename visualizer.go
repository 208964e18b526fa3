package codeviz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// statusDuration is how long a HUD status message stays visible.
const statusDuration = 3 * time.Second

// glowTint brightens the texture toward ColorEmissive.
var glowTint = Color{
	R: 0.8 + 0.2*ColorEmissive.R,
	G: 0.8 + 0.2*ColorEmissive.G,
	B: 0.8 + 0.2*ColorEmissive.B,
	A: 1,
}

// Visualizer is the ebiten.Game that streams code from a TextSource onto a
// rotating shape. All methods must be called from the game goroutine; only
// the text source runs elsewhere and it talks to the Coalescer.
type Visualizer struct {
	ctx context.Context
	src TextSource
	cfg Config

	mode      Mode
	coalescer *Coalescer
	stream    *streamSession
	pending   *promptSession
	lastErr   error

	desc     ShapeDescriptor
	geometry *Geometry
	raster   *Rasterizer
	texture  *Texture
	reveal   *RevealAnimator
	orient   *OrientationIntegrator
	zoom     *Zoom
	camera   Camera
	clock    Clock
	batch    MeshBatch

	renderedVersion uint64
	rendered        bool

	input        inputFrame
	clip         textClipboard
	settingsOpen bool
	prompt       string
	status       string
	statusUntil  time.Time
	hud          *hud

	screenW, screenH int

	debug       bool
	debugFrames int
	stats       debugStats
}

// NewVisualizer builds a visualizer for cfg. In auto mode the stream starts
// immediately and appends to the welcome text. The stream and any prompt
// request stop when ctx is cancelled or Close is called.
func NewVisualizer(ctx context.Context, src TextSource, cfg Config) (*Visualizer, error) {
	if src == nil {
		return nil, errors.New("codeviz: nil text source")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cfg = cfg.Normalize()
	v := &Visualizer{
		ctx:       ctx,
		src:       src,
		cfg:       cfg,
		mode:      ModePrompt,
		coalescer: NewCoalescer(WelcomeText),
		texture:   NewTexture(),
		reveal:    NewRevealAnimator(DefaultMaskHeight),
		zoom:      NewZoom(DefaultCameraDistance, cfg.ZoomEnabled),
		camera:    DefaultCamera(),
		clip:      &systemClipboard{},
		debug:     cfg.Debug,
		screenW:   cfg.Width,
		screenH:   cfg.Height,
	}
	if err := v.applyShape(cfg.Shape); err != nil {
		return nil, err
	}
	if cfg.AutoMode {
		v.mode = ModeAuto
		v.stream = startStream(v.ctx, v.src, v.coalescer.Sink())
	}
	return v, nil
}

// applyShape swaps geometry, rasterizer, and rotation weights. The current
// text is redrawn with the new layout on the next step.
func (v *Visualizer) applyShape(k ShapeKind) error {
	desc := Describe(k)
	raster, err := NewRasterizer(desc.Layout)
	if err != nil {
		return fmt.Errorf("codeviz: shape %s: %w", desc.Name, err)
	}
	if v.raster != nil {
		v.raster.Close()
	}
	v.desc = desc
	v.cfg.Shape = desc.Kind
	v.geometry = desc.Geometry()
	v.raster = raster
	v.orient = NewOrientationIntegrator(desc.Weights, desc.Layout.ScrollRate)
	v.reveal.ResetEpoch()
	v.rendered = false
	return nil
}

// Config returns the current settings.
func (v *Visualizer) Config() Config {
	return v.cfg
}

// Mode returns the active text mode.
func (v *Visualizer) Mode() Mode {
	return v.mode
}

// DisplayText returns the text currently shown on the shape.
func (v *Visualizer) DisplayText() string {
	return v.coalescer.Text()
}

// Loading reports whether a prompt completion is in flight.
func (v *Visualizer) Loading() bool {
	return v.pending != nil
}

// Err returns the last error reported by the text source, if any.
func (v *Visualizer) Err() error {
	return v.lastErr
}

// SetShape switches the displayed geometry. Failures keep the old shape.
func (v *Visualizer) SetShape(k ShapeKind) {
	if k >= shapeCount || (k == v.desc.Kind && v.geometry != nil) {
		return
	}
	if err := v.applyShape(k); err != nil {
		warnf("%v", err)
		return
	}
	v.debugf("shape: %s", v.desc.Name)
}

// SetRotationSpeed sets the rotation speed, clamped to [0, 1].
func (v *Visualizer) SetRotationSpeed(speed float64) {
	v.cfg.RotationSpeed = clamp01(speed)
}

// SetZoomEnabled turns mouse-wheel zoom on or off.
func (v *Visualizer) SetZoomEnabled(enabled bool) {
	v.cfg.ZoomEnabled = enabled
	v.zoom.Enabled = enabled
}

// SetDebugMode enables per-frame stats on stderr and the FPS readout.
func (v *Visualizer) SetDebugMode(enabled bool) {
	v.debug = enabled
	v.cfg.Debug = enabled
}

// SetAutoMode switches between streaming and prompt mode. Turning auto mode
// on clears the text, cancels any prompt, and starts a fresh stream. Turning
// it off cancels the stream and keeps whatever text has arrived.
func (v *Visualizer) SetAutoMode(auto bool) {
	if auto == (v.mode == ModeAuto) {
		return
	}
	v.cfg.AutoMode = auto
	if !auto {
		v.mode = ModePrompt
		v.stopStream()
		return
	}
	v.mode = ModeAuto
	v.stopPrompt()
	v.lastErr = nil
	v.coalescer.Reset()
	v.coalescer.SetText(AutoStartText)
	v.reveal.ResetEpoch()
	v.stream = startStream(v.ctx, v.src, v.coalescer.Sink())
}

// SubmitPrompt requests a one-shot completion for prompt. It is ignored in
// auto mode, while another request is loading, or when prompt is blank.
// Reports whether a request was started.
func (v *Visualizer) SubmitPrompt(prompt string) bool {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" || v.mode != ModePrompt || v.pending != nil {
		return false
	}
	v.lastErr = nil
	v.coalescer.Reset()
	v.coalescer.SetText(promptPendingPrefix + prompt)
	v.reveal.ResetEpoch()
	v.pending = startPrompt(v.ctx, v.src, prompt, v.coalescer.Sink())
	return true
}

func (v *Visualizer) stopStream() {
	if v.stream != nil {
		v.stream.Stop()
		v.stream = nil
	}
}

func (v *Visualizer) stopPrompt() {
	if v.pending != nil {
		v.pending.Stop()
		v.pending = nil
	}
}

// pollSessions collects finished stream and prompt goroutines without
// blocking. A failed stream turns auto mode off.
func (v *Visualizer) pollSessions() {
	if v.stream != nil {
		if done, err := v.stream.Poll(); done {
			v.stream = nil
			if err != nil {
				v.lastErr = err
				warnf("%v", err)
				v.mode = ModePrompt
				v.cfg.AutoMode = false
			}
		}
	}
	if v.pending != nil {
		if done, err := v.pending.Poll(); done {
			v.pending = nil
			if err != nil {
				v.lastErr = err
				warnf("%v", err)
			}
		}
	}
}

// Update implements ebiten.Game.
func (v *Visualizer) Update() error {
	if v.ctx.Err() != nil {
		return ebiten.Termination
	}
	readInput(&v.input)
	v.applyInput(&v.input)
	v.step(time.Now())
	return nil
}

// step advances the visualizer to now: collect source results, flush the
// coalescer, redraw the texture when the text changed, and advance every
// animation.
func (v *Visualizer) step(now time.Time) Frame {
	v.pollSessions()
	frame := v.clock.Advance(now)

	v.coalescer.Tick(now)
	if ver := v.coalescer.Version(); !v.rendered || ver != v.renderedVersion {
		v.redraw(v.coalescer.Text())
		v.renderedVersion = ver
		v.rendered = true
	}

	safeTick("orientation", func() {
		v.orient.Tick(frame.Delta, v.cfg.RotationSpeed)
	})
	if v.desc.Layout.Reveal {
		start := time.Now()
		safeTick("reveal", func() {
			v.reveal.Tick(frame.Elapsed)
		})
		v.stats.revealTime = time.Since(start)
	}
	v.zoom.Update(frame.Delta)
	v.camera.Distance = v.zoom.Distance()

	if !v.statusUntil.IsZero() && now.After(v.statusUntil) {
		v.status = ""
		v.statusUntil = time.Time{}
	}
	return frame
}

// redraw rasterizes text into the pixel buffer.
func (v *Visualizer) redraw(text string) {
	start := time.Now()
	v.raster.Render(text)
	v.reveal.SetLineCount(v.raster.LineCount())
	v.stats.rasterTime = time.Since(start)
}

// Draw implements ebiten.Game.
func (v *Visualizer) Draw(screen *ebiten.Image) {
	screen.Fill(ColorClear.toRGBA())
	if v.texture.Upload(v.raster.Buffer()) {
		v.stats.uploads = v.texture.Uploads()
	}

	start := time.Now()
	ok := safeTick("project", func() {
		v.batch.Project(v.geometry, v.projectParams())
	})
	v.stats.projectTime = time.Since(start)

	start = time.Now()
	if ok && v.batch.TriangleCount() > 0 && v.texture.Image() != nil {
		screen.DrawTriangles(v.batch.Vertices, v.batch.Indices, v.texture.Image(), v.batch.DrawOptions())
	}
	if v.hud == nil {
		h, err := newHUD()
		if err != nil {
			warnf("hud: %v", err)
		}
		v.hud = h
	}
	if v.hud != nil {
		v.hud.draw(screen, v)
	}
	v.stats.drawTime = time.Since(start)

	v.stats.triangles = v.batch.TriangleCount()
	v.stats.lines = v.raster.LineCount()
	v.stats.textureHeight = v.raster.Buffer().Height()
	v.debugLog(v.stats)
}

func (v *Visualizer) projectParams() ProjectParams {
	p := ProjectParams{
		Model:     v.orient.Orientation.Matrix(),
		Camera:    v.camera,
		ViewportW: float64(v.screenW),
		ViewportH: float64(v.screenH),
		TextureW:  float64(v.raster.Buffer().Width()),
		TextureH:  float64(v.raster.Buffer().Height()),
		Scroll:    v.orient.Orientation.Scroll,
		Tint:      glowTint,
	}
	if v.desc.Layout.Reveal {
		p.Mask = v.reveal.Alpha
	}
	return p
}

// Layout implements ebiten.Game.
func (v *Visualizer) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.screenW, v.screenH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// setStatus shows msg in the HUD for a few seconds.
func (v *Visualizer) setStatus(msg string) {
	v.status = msg
	v.statusUntil = time.Now().Add(statusDuration)
	v.debugf("%s", msg)
}

// Close stops the text source and releases GPU resources.
func (v *Visualizer) Close() error {
	v.stopStream()
	v.stopPrompt()
	v.texture.Dispose()
	return v.raster.Close()
}

// Run opens a window and runs the visualizer until the window is closed or
// ctx is cancelled.
func Run(ctx context.Context, src TextSource, cfg Config) error {
	v, err := NewVisualizer(ctx, src, cfg)
	if err != nil {
		return err
	}
	defer v.Close()

	cfg = v.Config()
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(v); err != nil {
		return fmt.Errorf("codeviz: run: %w", err)
	}
	return nil
}
