package codeviz

import (
	"bytes"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	hudFontSize  = 16
	hudPadding   = 12
	hudPanelW    = 360
	fpsRefresh   = 0.5
	caretBlinkMs = 500
)

var (
	hudPanelColor  = Color{10.0 / 255, 25.0 / 255, 47.0 / 255, 0.85}
	hudTextColor   = ColorCodeForeground
	hudMutedColor  = Color{0.6, 0.7, 0.75, 1}
	hudErrorColor  = Color{1, 0.45, 0.45, 1}
	hudPromptColor = ColorWhite
)

// hud draws the settings panel, the prompt bar, and status lines with
// Ebitengine's text/v2 using Go Regular.
type hud struct {
	face *text.GoTextFace
	lh   float64

	fps       *ebiten.Image
	fpsUpdate time.Time
}

func newHUD() (*hud, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("codeviz: failed to parse HUD font: %w", err)
	}
	face := &text.GoTextFace{Source: source, Size: hudFontSize}
	m := face.Metrics()
	return &hud{face: face, lh: m.HAscent + m.HDescent + m.HLineGap}, nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// settingsLines returns the settings panel contents.
func settingsLines(v *Visualizer) []string {
	return []string{
		"Settings",
		"[A] Auto mode: " + onOff(v.mode == ModeAuto),
		fmt.Sprintf("[Left/Right, 1-%d] Shape: %s", shapeCount, v.desc.Name),
		fmt.Sprintf("[Up/Down] Rotation speed: %.2f", v.cfg.RotationSpeed),
		"[Z] Zoom: " + onOff(v.cfg.ZoomEnabled),
		"[D] Debug: " + onOff(v.debug),
		"[F12] Export texture  [Ctrl+C] Copy code",
		"[Esc] Close",
	}
}

// promptLine returns the prompt bar contents, or "" when the bar is hidden.
func promptLine(v *Visualizer, now time.Time) string {
	if v.mode != ModePrompt {
		return ""
	}
	if v.pending != nil {
		return "Generating..."
	}
	caret := ""
	if (now.UnixMilli()/caretBlinkMs)%2 == 0 {
		caret = "_"
	}
	if v.prompt == "" {
		return "> Describe the code to generate, then press Enter" + caret
	}
	return "> " + v.prompt + caret
}

func (h *hud) draw(screen *ebiten.Image, v *Visualizer) {
	w := float64(screen.Bounds().Dx())
	sh := float64(screen.Bounds().Dy())
	now := time.Now()

	y := float64(hudPadding)
	if v.settingsOpen {
		lines := settingsLines(v)
		panelH := float64(len(lines))*h.lh + 2*hudPadding
		fillRect(screen, hudPadding, y, hudPanelW, panelH, hudPanelColor)
		for i, line := range lines {
			c := hudTextColor
			if i > 0 {
				c = hudPromptColor
			}
			h.text(screen, line, 2*hudPadding, y+hudPadding+float64(i)*h.lh, c)
		}
		y += panelH + hudPadding
	} else {
		h.text(screen, "[Tab] Settings", hudPadding, y, hudMutedColor)
		y += h.lh + hudPadding
	}

	if v.status != "" {
		h.text(screen, v.status, hudPadding, y, hudMutedColor)
		y += h.lh
	}
	if v.lastErr != nil {
		h.text(screen, v.lastErr.Error(), hudPadding, y, hudErrorColor)
	}

	if line := promptLine(v, now); line != "" {
		barH := h.lh + 2*hudPadding
		barY := sh - barH - hudPadding
		fillRect(screen, hudPadding, barY, w-2*hudPadding, barH, hudPanelColor)
		h.text(screen, line, 2*hudPadding, barY+hudPadding, hudPromptColor)
	}

	if v.debug {
		h.drawFPS(screen, now)
	}
}

func (h *hud) text(dst *ebiten.Image, s string, x, y float64, c Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c.toRGBA())
	op.LineSpacing = h.lh
	text.Draw(dst, s, h.face, op)
}

// drawFPS shows FPS and TPS in the top-right corner, refreshed every half
// second.
func (h *hud) drawFPS(screen *ebiten.Image, now time.Time) {
	if h.fps == nil {
		// 100x32 is enough for "FPS: 60.0\nTPS: 60.0"
		h.fps = ebiten.NewImage(100, 32)
	}
	if now.Sub(h.fpsUpdate).Seconds() >= fpsRefresh {
		h.fpsUpdate = now
		h.fps.Clear()
		h.fps.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(h.fps, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(screen.Bounds().Dx()-100-hudPadding), hudPadding)
	screen.DrawImage(h.fps, op)
}

// fillRect draws a solid rectangle by scaling the shared white pixel.
func fillRect(dst *ebiten.Image, x, y, w, h float64, c Color) {
	if w <= 0 || h <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c.toRGBA())
	dst.DrawImage(ensureWhitePixel(), op)
}
