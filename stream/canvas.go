package stream

import (
	"github.com/asamonik/colorlight4go"
)

// Canvas is a cols x rows framebuffer in the card's wire format: BGR, one
// byte per channel, row major, so every row slices straight into a pixel
// row frame.
type Canvas struct {
	cols int
	rows int
	data []byte
}

func NewCanvas(cols, rows int) *Canvas {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}

	return &Canvas{
		cols: cols,
		rows: rows,
		data: make([]byte, cols*rows*3),
	}
}

// NewCanvasFor sizes a canvas to a detected card's panel geometry.
func NewCanvasFor(info colorlight4go.ReceiverCardInfo) *Canvas {
	return NewCanvas(int(info.PixelColumns), int(info.PixelRows))
}

func (canvas *Canvas) Cols() int {
	return canvas.cols
}

func (canvas *Canvas) Rows() int {
	return canvas.rows
}

// SetRGB paints one pixel. Out of range coordinates are ignored.
func (canvas *Canvas) SetRGB(x, y int, r, g, b byte) {
	if x < 0 || x >= canvas.cols || y < 0 || y >= canvas.rows {
		return
	}

	offset := (y*canvas.cols + x) * 3

	canvas.data[offset] = b
	canvas.data[offset+1] = g
	canvas.data[offset+2] = r
}

// Fill paints every pixel one color.
func (canvas *Canvas) Fill(r, g, b byte) {
	for offset := 0; offset < len(canvas.data); offset += 3 {
		canvas.data[offset] = b
		canvas.data[offset+1] = g
		canvas.data[offset+2] = r
	}
}

// Row returns row y as wire ready BGR bytes. The slice aliases the canvas,
// callers must not hold it across repaints.
func (canvas *Canvas) Row(y int) []byte {
	if y < 0 || y >= canvas.rows {
		return nil
	}

	offset := y * canvas.cols * 3

	return canvas.data[offset : offset+canvas.cols*3]
}
