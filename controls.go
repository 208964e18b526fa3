package codeviz

import (
	"strings"
	"sync"
	"unicode"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"
)

const (
	speedStep      = 0.05
	maxPromptRunes = 500
	maxPasteRunes  = 4096
)

// KeyModifiers is a bitmask of modifier keys held during a frame.
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// inputFrame is the keyboard and wheel state gathered once per Update.
// Keeping it separate from ebiten polling lets tests drive the controls.
type inputFrame struct {
	keys   []ebiten.Key // pressed this frame
	chars  []rune
	mods   KeyModifiers
	wheelY float64
}

func (in *inputFrame) pressed(k ebiten.Key) bool {
	for _, p := range in.keys {
		if p == k {
			return true
		}
	}
	return false
}

// shortcut reports a Ctrl (or Cmd) chord with key k.
func (in *inputFrame) shortcut(k ebiten.Key) bool {
	return in.mods&(ModCtrl|ModMeta) != 0 && in.pressed(k)
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// readInput fills in from Ebitengine, reusing its slices.
func readInput(in *inputFrame) {
	in.keys = inpututil.AppendJustPressedKeys(in.keys[:0])
	// Held backspace repeats.
	if d := inpututil.KeyPressDuration(ebiten.KeyBackspace); d > 30 && d%4 == 0 {
		in.keys = append(in.keys, ebiten.KeyBackspace)
	}
	in.chars = ebiten.AppendInputChars(in.chars[:0])
	in.mods = readModifiers()
	_, in.wheelY = ebiten.Wheel()
}

// textClipboard is the system clipboard as seen by the controls.
type textClipboard interface {
	ReadText() (string, bool)
	WriteText(s string) bool
}

// systemClipboard initializes golang.design/x/clipboard on first use. When
// the platform has no clipboard every call is a no-op.
type systemClipboard struct {
	once sync.Once
	ok   bool
}

func (c *systemClipboard) init() bool {
	c.once.Do(func() {
		c.ok = clipboard.Init() == nil
		if !c.ok {
			warnf("clipboard unavailable")
		}
	})
	return c.ok
}

func (c *systemClipboard) ReadText() (string, bool) {
	if !c.init() {
		return "", false
	}
	data := clipboard.Read(clipboard.FmtText)
	return string(data), len(data) > 0
}

func (c *systemClipboard) WriteText(s string) bool {
	if !c.init() {
		return false
	}
	clipboard.Write(clipboard.FmtText, []byte(s))
	return true
}

// shapeKeys maps the digit row to shapes in menu order.
var shapeKeys = []ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
	ebiten.KeyDigit5, ebiten.KeyDigit6, ebiten.KeyDigit7,
}

// applyInput runs one frame of controls. Global shortcuts work everywhere;
// the settings panel captures keys while open; otherwise typed characters go
// to the prompt bar in prompt mode.
func (v *Visualizer) applyInput(in *inputFrame) {
	if in.wheelY != 0 {
		v.zoom.Scroll(in.wheelY)
	}

	switch {
	case in.pressed(ebiten.KeyTab), in.pressed(ebiten.KeyF1):
		v.settingsOpen = !v.settingsOpen
		return
	case in.pressed(ebiten.KeyF12):
		v.exportSnapshot()
		return
	case in.shortcut(ebiten.KeyC):
		if v.clip != nil && v.clip.WriteText(v.coalescer.Text()) {
			v.setStatus("copied code to clipboard")
		}
		return
	case in.shortcut(ebiten.KeyV):
		if v.mode == ModePrompt && !v.settingsOpen && v.clip != nil {
			if s, ok := v.clip.ReadText(); ok {
				v.appendPrompt(clipRunes(s, maxPasteRunes))
			}
		}
		return
	}

	if v.settingsOpen {
		v.applySettingsKeys(in)
		return
	}
	if v.mode == ModePrompt {
		v.applyPromptKeys(in)
	}
}

func (v *Visualizer) applySettingsKeys(in *inputFrame) {
	for _, k := range in.keys {
		switch k {
		case ebiten.KeyEscape:
			v.settingsOpen = false
		case ebiten.KeyA:
			v.SetAutoMode(v.mode != ModeAuto)
		case ebiten.KeyZ:
			v.SetZoomEnabled(!v.cfg.ZoomEnabled)
		case ebiten.KeyD:
			v.SetDebugMode(!v.debug)
		case ebiten.KeyArrowLeft:
			v.SetShape(v.cfg.Shape.Next(-1))
		case ebiten.KeyArrowRight:
			v.SetShape(v.cfg.Shape.Next(1))
		case ebiten.KeyArrowUp:
			v.SetRotationSpeed(v.cfg.RotationSpeed + speedStep)
		case ebiten.KeyArrowDown:
			v.SetRotationSpeed(v.cfg.RotationSpeed - speedStep)
		default:
			for i, sk := range shapeKeys {
				if k == sk {
					v.SetShape(ShapeKind(i))
				}
			}
		}
	}
}

func (v *Visualizer) applyPromptKeys(in *inputFrame) {
	if in.mods&(ModCtrl|ModMeta) == 0 {
		v.appendPrompt(string(in.chars))
	}
	for _, k := range in.keys {
		switch k {
		case ebiten.KeyBackspace:
			if r := []rune(v.prompt); len(r) > 0 {
				v.prompt = string(r[:len(r)-1])
			}
		case ebiten.KeyEscape:
			v.prompt = ""
		case ebiten.KeyEnter, ebiten.KeyNumpadEnter:
			if v.SubmitPrompt(v.prompt) {
				v.prompt = ""
			}
		}
	}
}

// appendPrompt adds printable text to the prompt bar. Line breaks become
// spaces; the bar holds at most maxPromptRunes runes.
func (v *Visualizer) appendPrompt(s string) {
	if s == "" {
		return
	}
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case !unicode.IsPrint(r):
			return -1
		}
		return r
	}, s)
	p := []rune(v.prompt + s)
	if len(p) > maxPromptRunes {
		p = p[:maxPromptRunes]
	}
	v.prompt = string(p)
}

// exportSnapshot writes the current code texture to Config.SnapshotDir.
func (v *Visualizer) exportSnapshot() {
	path, err := SnapshotTexture(v.cfg.SnapshotDir, v.desc.Name, v.raster.Buffer())
	if err != nil {
		warnf("%v", err)
		v.setStatus("snapshot failed")
		return
	}
	v.setStatus("saved " + path)
}
