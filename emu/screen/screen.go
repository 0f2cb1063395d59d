// Package screen presents the Chip-8 frame buffer in a pixelgl window
// and samples the 16-key pad from the window's keyboard state. It is a
// collaborator of the emulator core, not part of it: the core only
// ever hands it a pixel buffer and receives key snapshots back.
package screen

import (
	"github.com/faiface/pixel"
	"github.com/faiface/pixel/imdraw"
	"github.com/faiface/pixel/pixelgl"
	"golang.org/x/image/colornames"

	"chirp8/emu/display"
)

// Window wraps the pixelgl window the emulator renders into. Every
// frame buffer pixel becomes a scale x scale rectangle.
type Window struct {
	win   *pixelgl.Window
	scale float64
}

// New opens the emulator window. scale is the pixel size multiplier;
// at 10 the 64x32 frame becomes a 640x320 window. Must run on the
// main thread, inside pixelgl.Run.
func New(title string, scale float64) (*Window, error) {
	cfg := pixelgl.WindowConfig{
		Title:     title,
		Bounds:    pixel.R(0, 0, display.Width*scale, display.Height*scale),
		Resizable: false,
		// frame pacing is done by the emulator clock, not vsync
		VSync: false,
	}
	win, err := pixelgl.NewWindow(cfg)
	if err != nil {
		return nil, err
	}
	return &Window{win: win, scale: scale}, nil
}

// Closed reports whether the user closed the window or hit escape.
func (w *Window) Closed() bool {
	return w.win.Closed() || w.win.JustPressed(pixelgl.KeyEscape)
}

// Render draws the frame buffer and flushes the window. buf is the
// row-major 64x32 byte-per-pixel buffer with row 0 at the top; the
// window's origin is bottom-left, so rows flip during drawing.
func (w *Window) Render(buf []uint8) {
	w.win.Clear(colornames.Black)

	imd := imdraw.New(nil)
	imd.Color = colornames.White
	for row := 0; row < display.Height; row++ {
		for col := 0; col < display.Width; col++ {
			if buf[row*display.Width+col] == 0 {
				continue
			}
			x := float64(col) * w.scale
			y := float64(display.Height-1-row) * w.scale
			imd.Push(pixel.V(x, y), pixel.V(x+w.scale, y+w.scale))
			imd.Rectangle(0)
		}
	}
	imd.Draw(w.win)

	w.win.Update()
}

// Keys samples the keyboard into a fresh 16-key snapshot.
func (w *Window) Keys() [16]bool {
	var keys [16]bool
	for k, btn := range keyMap {
		keys[k] = w.win.Pressed(btn)
	}
	return keys
}
