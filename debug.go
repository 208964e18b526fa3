package codeviz

import (
	"fmt"
	"os"
	"time"
)

// debugLogEvery throttles the per-frame stats line.
const debugLogEvery = 60

// debugStats holds per-frame timing and geometry metrics.
// Only populated when debug mode is on.
type debugStats struct {
	rasterTime    time.Duration
	revealTime    time.Duration
	projectTime   time.Duration
	drawTime      time.Duration
	triangles     int
	lines         int
	textureHeight int
	uploads       int
}

// debugLog prints timing and geometry stats to stderr.
func (v *Visualizer) debugLog(stats debugStats) {
	if !v.debug {
		return
	}
	v.debugFrames++
	if v.debugFrames%debugLogEvery != 0 {
		return
	}
	total := stats.rasterTime + stats.revealTime + stats.projectTime + stats.drawTime
	_, _ = fmt.Fprintf(os.Stderr,
		"[codeviz] raster: %v | reveal: %v | project: %v | draw: %v | total: %v\n",
		stats.rasterTime, stats.revealTime, stats.projectTime, stats.drawTime, total)
	_, _ = fmt.Fprintf(os.Stderr,
		"[codeviz] shape: %s | triangles: %d | lines: %d | texture: %dpx | uploads: %d\n",
		v.desc.Name, stats.triangles, stats.lines, stats.textureHeight, stats.uploads)
}

// warnf prints a warning to stderr regardless of debug mode.
func warnf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "[codeviz] warning: "+format+"\n", args...)
}

// debugf prints to stderr only in debug mode.
func (v *Visualizer) debugf(format string, args ...any) {
	if !v.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "[codeviz] "+format+"\n", args...)
}

// safeTick runs one per-tick stage. A panic skips the stage for this tick
// and is logged; the loop keeps running.
func safeTick(stage string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			warnf("%s: tick skipped: %v", stage, r)
			ok = false
		}
	}()
	fn()
	return true
}
