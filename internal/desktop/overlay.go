package desktop

import (
	"fmt"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	fontSize   = 20
	padding    = 12
	lineHeight = fontSize + 4
	logSize    = 14
	logLine    = logSize + 2
	// updateInterval: only refresh the stats text every N frames to reduce allocations.
	updateInterval = 30
)

var controlsHelp = []string{
	"left: WASD stick  Q click  E grow  R shrink  Z x/a  X y/b",
	"right: IJKL stick  U click  O grow  P shrink  N x/a  M y/b",
	"head: arrows move  right-drag look  Esc quit",
}

// overlay draws status text over the mirrored eye views.
type overlay struct {
	showFPS   bool
	showLog   bool
	lines     func() []string
	frames    uint32
	statsText string
	memStats  runtime.MemStats
}

func newOverlay(opts Options) *overlay {
	return &overlay{showFPS: opts.ShowFPS, showLog: opts.ShowLog && opts.LogLines != nil, lines: opts.LogLines}
}

// draw renders the enabled overlays. Call between BeginDrawing and EndDrawing.
func (o *overlay) draw(running, rendered bool) {
	o.frames++
	screenW := int32(rl.GetScreenWidth())
	screenH := int32(rl.GetScreenHeight())

	if o.showFPS {
		if o.statsText == "" || o.frames%updateInterval == 0 {
			runtime.ReadMemStats(&o.memStats)
			mb := float64(o.memStats.Alloc) / (1024 * 1024)
			o.statsText = fmt.Sprintf("FPS: %d  Mem: %.1f MiB", rl.GetFPS(), mb)
		}
		w := rl.MeasureText(o.statsText, fontSize)
		rl.DrawText(o.statsText, screenW-w-padding, padding, fontSize, rl.Green)
	}

	status := "session idle"
	switch {
	case running && rendered:
		status = ""
	case running:
		status = "not rendering"
	}
	if status != "" {
		w := rl.MeasureText(status, fontSize)
		rl.DrawText(status, (screenW-w)/2, screenH/2-fontSize/2, fontSize, rl.LightGray)
	}

	y := int32(padding)
	if !rl.IsGamepadAvailable(gamepad) {
		for _, line := range controlsHelp {
			rl.DrawText(line, padding, y, logSize, rl.LightGray)
			y += logLine
		}
	}

	if o.showLog {
		lines := o.lines()
		y = screenH - padding - int32(len(lines))*logLine
		for _, line := range lines {
			rl.DrawText(line, padding, y, logSize, rl.Fade(rl.RayWhite, 0.8))
			y += logLine
		}
	}
}
