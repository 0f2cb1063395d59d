// Package display implements the monochrome frame buffer of the Chip-8.
// The buffer is a fixed 64x32 grid stored row-major with one byte per
// pixel; only the low bit of each byte carries meaning.
package display

const (
	// Width is the horizontal resolution in pixels.
	Width = 64
	// Height is the vertical resolution in pixels.
	Height = 32
)

// FrameBuffer holds the pixel grid. The zero value is a cleared screen
// ready for use; no allocation happens after construction.
type FrameBuffer struct {
	pixels [Width * Height]uint8
}

// New returns a cleared frame buffer.
func New() *FrameBuffer {
	return &FrameBuffer{}
}

// SetAll writes v to every pixel. CLS uses it with 0.
func (fb *FrameBuffer) SetAll(v uint8) {
	for i := range fb.pixels {
		fb.pixels[i] = v
	}
}

// Pixel reads the pixel at (col, row). Coordinates are not wrapped
// here; callers wrap before calling.
func (fb *FrameBuffer) Pixel(col, row int) uint8 {
	return fb.pixels[row*Width+col]
}

// SetPixel writes the pixel at (col, row). Coordinates are not wrapped.
func (fb *FrameBuffer) SetPixel(col, row int, v uint8) {
	fb.pixels[row*Width+col] = v
}

// XORSprite draws a sprite of up to 8x15 pixels at (col, row) by
// xoring each sprite bit into the buffer. Coordinates that fall
// outside the grid wrap around the opposite edge. Sprite bytes are one
// row each, most significant bit leftmost. The returned flag is true
// if any pixel was flipped from set to unset.
func (fb *FrameBuffer) XORSprite(col, row int, sprite []uint8) bool {
	collision := false
	for dy, b := range sprite {
		y := (row + dy) % Height
		for dx := 0; dx < 8; dx++ {
			bit := (b >> (7 - dx)) & 1
			if bit == 0 {
				continue
			}
			x := (col + dx) % Width
			i := y*Width + x
			if fb.pixels[i] == 1 {
				collision = true
			}
			fb.pixels[i] ^= 1
		}
	}
	return collision
}

// Buffer exposes the raw pixel grid to the presentation layer. The
// returned slice aliases the buffer and must only be read between
// emulation batches.
func (fb *FrameBuffer) Buffer() []uint8 {
	return fb.pixels[:]
}

// Snapshot returns a copy of the pixel grid, for presentation layers
// that run outside the emulation thread.
func (fb *FrameBuffer) Snapshot() []uint8 {
	out := make([]uint8, len(fb.pixels))
	copy(out, fb.pixels[:])
	return out
}
