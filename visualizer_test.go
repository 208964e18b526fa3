package codeviz

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

type fakeClipboard struct {
	text    string
	written string
}

func (c *fakeClipboard) ReadText() (string, bool) { return c.text, c.text != "" }
func (c *fakeClipboard) WriteText(s string) bool { c.written = s; return true }

type testRig struct {
	t   *testing.T
	v   *Visualizer
	now time.Time
}

func newTestRig(t *testing.T, src TextSource, cfg Config) *testRig {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	v, err := NewVisualizer(ctx, src, cfg)
	if err != nil {
		cancel()
		t.Fatalf("NewVisualizer: %v", err)
	}
	v.clip = &fakeClipboard{}
	t.Cleanup(func() {
		cancel()
		v.Close()
	})
	return &testRig{t: t, v: v, now: time.Unix(1700000000, 0)}
}

// step advances one flush interval.
func (r *testRig) step() Frame {
	r.now = r.now.Add(FlushInterval)
	return r.v.step(r.now)
}

// stepUntil steps until cond holds or two seconds of wall time pass.
func (r *testRig) stepUntil(what string, cond func() bool) {
	r.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			r.t.Fatalf("timed out waiting for %s; text = %q", what, r.v.DisplayText())
		}
		r.step()
		time.Sleep(time.Millisecond)
	}
}

func promptConfig() Config {
	cfg := DefaultConfig()
	cfg.AutoMode = false
	return cfg
}

func TestNewVisualizerRejectsNilSource(t *testing.T) {
	if _, err := NewVisualizer(context.Background(), nil, DefaultConfig()); err == nil {
		t.Error("expected error for nil source")
	}
}

func TestVisualizerAutoModeStreams(t *testing.T) {
	src := &fakeSource{fragments: []string{"\nfunc a() {}", "\nfunc b() {}"}, block: true}
	r := newTestRig(t, src, DefaultConfig())
	if r.v.Mode() != ModeAuto {
		t.Fatalf("Mode = %v, want auto", r.v.Mode())
	}
	r.stepUntil("streamed text", func() bool {
		return strings.HasSuffix(r.v.DisplayText(), "func b() {}")
	})
	if !strings.HasPrefix(r.v.DisplayText(), WelcomeText) {
		t.Errorf("text = %q, want it to start with the welcome text", r.v.DisplayText())
	}
	if r.v.raster.LineCount() != 4 {
		t.Errorf("rasterized %d lines, want 4", r.v.raster.LineCount())
	}
}

func TestVisualizerStreamErrorStopsAutoMode(t *testing.T) {
	src := &fakeSource{fragments: []string{"x"}, err: errors.New("bad key")}
	r := newTestRig(t, src, DefaultConfig())
	r.stepUntil("auto mode off", func() bool { return r.v.Mode() == ModePrompt })
	if !errors.Is(r.v.Err(), ErrSourceUnavailable) {
		t.Errorf("Err = %v, want ErrSourceUnavailable", r.v.Err())
	}
	r.step()
	if !strings.HasSuffix(r.v.DisplayText(), StreamErrorText) {
		t.Errorf("text = %q, want the stream error message", r.v.DisplayText())
	}
	if r.v.Config().AutoMode {
		t.Error("Config().AutoMode still true")
	}
}

func TestVisualizerSetAutoMode(t *testing.T) {
	src := &fakeSource{fragments: []string{"live"}, block: true}
	r := newTestRig(t, src, promptConfig())
	r.step()
	if r.v.DisplayText() != WelcomeText {
		t.Fatalf("text = %q, want welcome", r.v.DisplayText())
	}

	r.v.SetAutoMode(true)
	if r.v.DisplayText() != AutoStartText {
		t.Errorf("text = %q, want auto start text", r.v.DisplayText())
	}
	r.stepUntil("stream", func() bool { return r.v.DisplayText() == AutoStartText+"live" })

	r.v.SetAutoMode(false)
	if r.v.Mode() != ModePrompt || r.v.stream != nil {
		t.Error("stream still running after leaving auto mode")
	}
	r.step()
	if r.v.DisplayText() != AutoStartText+"live" {
		t.Errorf("text = %q, want text kept after stop", r.v.DisplayText())
	}
}

func TestVisualizerSubmitPrompt(t *testing.T) {
	src := &fakeSource{completion: "SELECT 1;"}
	r := newTestRig(t, src, promptConfig())

	if r.v.SubmitPrompt("   ") {
		t.Error("blank prompt accepted")
	}
	if !r.v.SubmitPrompt("a query") {
		t.Fatal("prompt rejected")
	}
	if r.v.DisplayText() != "// Generating code for: a query" {
		t.Errorf("pending text = %q", r.v.DisplayText())
	}
	r.stepUntil("completion", func() bool { return r.v.DisplayText() == "SELECT 1;" })
	r.stepUntil("loading cleared", func() bool { return !r.v.Loading() })
}

func TestVisualizerSubmitPromptIgnoredInAutoMode(t *testing.T) {
	src := &fakeSource{block: true, completion: "x"}
	r := newTestRig(t, src, DefaultConfig())
	if r.v.SubmitPrompt("hello") {
		t.Error("prompt accepted in auto mode")
	}
}

func TestVisualizerPromptError(t *testing.T) {
	src := &fakeSource{completionErr: errors.New("quota")}
	r := newTestRig(t, src, promptConfig())
	r.v.SubmitPrompt("x")
	r.stepUntil("error text", func() bool { return r.v.DisplayText() == PromptErrorText })
	r.stepUntil("error reported", func() bool { return r.v.Err() != nil })
}

func TestVisualizerSettings(t *testing.T) {
	r := newTestRig(t, &fakeSource{block: true}, promptConfig())

	r.v.SetRotationSpeed(3)
	if r.v.Config().RotationSpeed != 1 {
		t.Errorf("speed = %f, want clamped to 1", r.v.Config().RotationSpeed)
	}
	r.v.SetZoomEnabled(false)
	if r.v.zoom.Enabled {
		t.Error("zoom still enabled")
	}

	r.step()
	r.step()
	if r.v.orient.Yaw == 0 {
		t.Fatal("no rotation after two steps")
	}
	r.v.SetShape(ShapeSphere)
	if r.v.Config().Shape != ShapeSphere || r.v.orient.Yaw != 0 {
		t.Errorf("shape = %v, yaw = %f", r.v.Config().Shape, r.v.orient.Yaw)
	}
	if r.v.raster.Layout().FontSize != 40 {
		t.Errorf("font size = %f, want sphere layout", r.v.raster.Layout().FontSize)
	}
	r.step()
	if r.v.raster.LineCount() != 2 {
		t.Errorf("text not redrawn after shape change: %d lines", r.v.raster.LineCount())
	}
}

func TestVisualizerZeroSpeedHoldsAngles(t *testing.T) {
	cfg := promptConfig()
	cfg.RotationSpeed = 0
	r := newTestRig(t, &fakeSource{block: true}, cfg)
	for range 5 {
		r.step()
	}
	o := r.v.orient.Orientation
	if o.Yaw != 0 || o.Pitch != 0 || o.Roll != 0 {
		t.Errorf("angles moved at speed 0: %+v", o)
	}
}

func TestVisualizerSphereRevealResets(t *testing.T) {
	cfg := promptConfig()
	cfg.Shape = ShapeSphere
	r := newTestRig(t, &fakeSource{completion: strings.Repeat("line\n", 80)}, cfg)
	r.step()
	r.step()
	if _, ok := r.v.reveal.Epoch(); !ok {
		t.Fatal("epoch not established")
	}
	r.v.SubmitPrompt("many lines")
	r.stepUntil("completion", func() bool { return r.v.raster.LineCount() > 60 })
	epoch, ok := r.v.reveal.Epoch()
	if !ok || epoch != r.v.clock.Elapsed() {
		t.Errorf("epoch = %f (%v), want reset to %f", epoch, ok, r.v.clock.Elapsed())
	}
}

func TestVisualizerInput(t *testing.T) {
	r := newTestRig(t, &fakeSource{block: true, completion: "ok"}, promptConfig())
	clip := r.v.clip.(*fakeClipboard)

	r.v.applyInput(&inputFrame{chars: []rune("hi")})
	r.v.applyInput(&inputFrame{chars: []rune("x"), keys: []ebiten.Key{ebiten.KeyBackspace}})
	if r.v.prompt != "hi" {
		t.Errorf("prompt = %q, want hi", r.v.prompt)
	}

	clip.text = " there\n"
	r.v.applyInput(&inputFrame{keys: []ebiten.Key{ebiten.KeyV}, mods: ModCtrl})
	if r.v.prompt != "hi there " {
		t.Errorf("prompt after paste = %q", r.v.prompt)
	}

	r.v.applyInput(&inputFrame{keys: []ebiten.Key{ebiten.KeyEnter}})
	if r.v.prompt != "" || !r.v.Loading() {
		t.Errorf("Enter did not submit: prompt %q, loading %v", r.v.prompt, r.v.Loading())
	}
	r.stepUntil("completion", func() bool { return r.v.DisplayText() == "ok" })

	r.v.applyInput(&inputFrame{keys: []ebiten.Key{ebiten.KeyC}, mods: ModCtrl})
	if clip.written != "ok" {
		t.Errorf("copied %q, want ok", clip.written)
	}

	// Settings panel captures keys.
	r.v.applyInput(&inputFrame{keys: []ebiten.Key{ebiten.KeyTab}})
	if !r.v.settingsOpen {
		t.Fatal("Tab did not open settings")
	}
	r.v.applyInput(&inputFrame{keys: []ebiten.Key{ebiten.KeyArrowRight, ebiten.KeyArrowUp}, chars: []rune("q")})
	if r.v.Config().Shape != ShapeBlockLetter {
		t.Errorf("shape = %v, want block", r.v.Config().Shape)
	}
	if !approxEqual(r.v.Config().RotationSpeed, 0.2, 1e-9) {
		t.Errorf("speed = %f, want 0.2", r.v.Config().RotationSpeed)
	}
	if r.v.prompt != "" {
		t.Errorf("typing leaked into the prompt: %q", r.v.prompt)
	}
	r.v.applyInput(&inputFrame{keys: []ebiten.Key{ebiten.KeyDigit4}})
	if r.v.Config().Shape != ShapeSphere {
		t.Errorf("shape = %v, want sphere", r.v.Config().Shape)
	}
	r.v.applyInput(&inputFrame{keys: []ebiten.Key{ebiten.KeyA}})
	if r.v.Mode() != ModeAuto {
		t.Error("A did not enable auto mode")
	}
	r.v.applyInput(&inputFrame{keys: []ebiten.Key{ebiten.KeyEscape}})
	if r.v.settingsOpen {
		t.Error("Escape did not close settings")
	}
}

func TestVisualizerWheelZoom(t *testing.T) {
	r := newTestRig(t, &fakeSource{block: true}, promptConfig())
	r.v.applyInput(&inputFrame{wheelY: 2})
	for range 10 {
		r.step()
	}
	if r.v.camera.Distance != DefaultCameraDistance-2*zoomStep {
		t.Errorf("camera distance = %f", r.v.camera.Distance)
	}
}

func TestSafeTickRecovers(t *testing.T) {
	ran := false
	ok := safeTick("test", func() {
		ran = true
		panic("boom")
	})
	if ok || !ran {
		t.Errorf("safeTick = %v, ran = %v", ok, ran)
	}
	if !safeTick("test", func() {}) {
		t.Error("safeTick reported failure without panic")
	}
}

func TestVisualizerLayoutAndProjectParams(t *testing.T) {
	r := newTestRig(t, &fakeSource{block: true}, promptConfig())
	w, h := r.v.Layout(800, 600)
	if w != 800 || h != 600 {
		t.Errorf("Layout = %d x %d", w, h)
	}
	p := r.v.projectParams()
	if p.ViewportW != 800 || p.ViewportH != 600 {
		t.Errorf("viewport = %f x %f", p.ViewportW, p.ViewportH)
	}
	if p.Mask != nil {
		t.Error("letter shape should not use the reveal mask")
	}
	r.v.SetShape(ShapeSphere)
	if r.v.projectParams().Mask == nil {
		t.Error("sphere should use the reveal mask")
	}
}
