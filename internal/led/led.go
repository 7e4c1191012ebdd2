package led

import "fmt"

// Color is one RGB pixel value.
type Color struct {
	R, G, B uint8
}

var (
	Off   = Color{}
	White = Color{R: 255, G: 255, B: 255}
)

func (c Color) String() string {
	return fmt.Sprintf("R:%d, G:%d, B:%d", c.R, c.G, c.B)
}

// Strip is an addressable light strip. Writes land in a buffer; Show commits
// the buffer to hardware. There is no readback from the device.
type Strip interface {
	Len() int
	SetPixel(i int, c Color)
	Fill(c Color)
	Show() error
}

// Buffer is an in-memory Strip. Hardware backends embed it and add Show.
type Buffer struct {
	px    []Color
	shows int
}

func NewBuffer(n int) *Buffer {
	if n < 0 {
		n = 0
	}
	return &Buffer{px: make([]Color, n)}
}

func (b *Buffer) Len() int { return len(b.px) }

// SetPixel ignores out of range indexes.
func (b *Buffer) SetPixel(i int, c Color) {
	if i < 0 || i >= len(b.px) {
		return
	}
	b.px[i] = c
}

func (b *Buffer) Fill(c Color) {
	for i := range b.px {
		b.px[i] = c
	}
}

func (b *Buffer) Show() error {
	b.shows++
	return nil
}

// Pixel returns the buffered value, Off when out of range.
func (b *Buffer) Pixel(i int) Color {
	if i < 0 || i >= len(b.px) {
		return Off
	}
	return b.px[i]
}

// Shows counts commits.
func (b *Buffer) Shows() int { return b.shows }

// Lit counts pixels that are not Off.
func (b *Buffer) Lit() int {
	n := 0
	for _, c := range b.px {
		if c != Off {
			n++
		}
	}
	return n
}

// RGB appends the buffer as packed R,G,B bytes.
func (b *Buffer) RGB(dst []byte) []byte {
	for _, c := range b.px {
		dst = append(dst, c.R, c.G, c.B)
	}
	return dst
}
