// internal/label/draw.go
package label

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"label-service/internal/model"
	"label-service/internal/raster"
)

// fitSample covers ascenders and descenders so every line gets the same size
const fitSample = "bdfhkltgjpgyfz"

const maxFontSize = 512

// textHeight is the distance from the top of the ascent to the lowest ink of text
func textHeight(face font.Face, text string) int {
	bounds, _ := font.BoundString(face, text)
	return (face.Metrics().Ascent + bounds.Max.Y).Ceil()
}

func textWidth(face font.Face, text string) int {
	return font.MeasureString(face, text).Ceil()
}

// fitSize returns the largest font size whose measure stays under limit
func fitSize(f *opentype.Font, limit float64, measure func(font.Face) int) (int, error) {
	size := 1
	for ; size < maxFontSize; size++ {
		face, err := newFace(f, size)
		if err != nil {
			return 0, err
		}
		m := measure(face)
		face.Close()

		if float64(m) >= limit {
			break
		}
	}

	if size > 1 {
		size--
	}
	return size, nil
}

func fitHeight(f *opentype.Font, limit float64) (int, error) {
	return fitSize(f, limit, func(face font.Face) int {
		return textHeight(face, fitSample)
	})
}

func fitWidth(f *opentype.Font, limit float64, text string) (int, error) {
	return fitSize(f, limit, func(face font.Face) int {
		return textWidth(face, text)
	})
}

// canvas is a white grayscale image that text is drawn onto
type canvas struct {
	img  *image.Gray
	face font.Face
}

func newCanvas(width, height int, face font.Face) *canvas {
	img := image.NewGray(image.Rect(0, 0, max(width, 1), max(height, 1)))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return &canvas{img: img, face: face}
}

// text draws s with the top of its ascent at (x, y)
func (c *canvas) text(x, y int, s string) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.Black,
		Face: c.face,
	}
	d.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + c.face.Metrics().Ascent}
	d.DrawString(s)
}

func (c *canvas) bitmap() *raster.Bitmap {
	return raster.FromImage(c.img)
}

// horizontalTextBlock lays lines out top to bottom in equal rows of height
func horizontalTextBlock(f *opentype.Font, height int, size model.FontSize, lines []string, align model.HAlignment) (*raster.Bitmap, error) {
	rowHeight := float64(height) / float64(len(lines))
	fontHeight := rowHeight * size.Scale()

	fs, err := fitHeight(f, fontHeight)
	if err != nil {
		return nil, err
	}

	face, err := newFace(f, fs)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	lineOffset := int((rowHeight - fontHeight) / 2)

	width := 0
	for _, line := range lines {
		width = max(width, textWidth(face, line))
	}

	c := newCanvas(width, height, face)
	for idx, line := range lines {
		lineWidth := textWidth(face, line)

		var x int
		switch align {
		case model.AlignCenter:
			x = (width - lineWidth) / 2
		case model.AlignRight:
			x = width - lineWidth
		default:
			x = 0
		}

		c.text(x, int(float64(idx)*rowHeight)+lineOffset, line)
	}

	return c.bitmap(), nil
}

// verticalTextBlock repeats text down a block as wide as the tape and length
// pixels long, then turns it so it runs along the tape
func verticalTextBlock(f *opentype.Font, height, length int, text string, minCount int) (*raster.Bitmap, error) {
	fsWidth, err := fitWidth(f, float64(height), text)
	if err != nil {
		return nil, err
	}

	fsHeight, err := fitHeight(f, float64(length)/float64(minCount))
	if err != nil {
		return nil, err
	}

	face, err := newFace(f, min(fsWidth, fsHeight))
	if err != nil {
		return nil, err
	}
	defer face.Close()

	lineHeight := max(textHeight(face, text), 1)
	count := length / lineHeight

	c := newCanvas(height, length, face)
	for idx := 0; idx < count; idx++ {
		c.text(0, idx*lineHeight, text)
	}

	return rotateClockwise(c.bitmap()), nil
}

// rotateClockwise turns b a quarter turn clockwise
func rotateClockwise(b *raster.Bitmap) *raster.Bitmap {
	w, h := b.Width(), b.Height()
	out := raster.NewBitmap(h, w)
	for y := 0; y < w; y++ {
		for x := 0; x < h; x++ {
			out.SetBit(x, y, b.Bit(y, h-1-x))
		}
	}
	return out
}

// verticalLine clears column x over the whole height
func verticalLine(b *raster.Bitmap, x int) {
	if x < 0 || x >= b.Width() {
		return
	}
	for y := 0; y < b.Height(); y++ {
		b.SetBit(x, y, 0)
	}
}
