// internal/raster/bitmap.go
package raster

import (
	"fmt"
	"image"
	"image/color"
)

const bitsPerWord = 8

// Bitmap is a row-major 1 bit per pixel image packed MSB first.
// A set bit is blank (white), a clear bit is printed (black).
type Bitmap struct {
	data                  []byte
	width, height, stride int
}

// NewBitmap creates a blank bitmap
func NewBitmap(width, height int) *Bitmap {
	stride := (width + bitsPerWord - 1) / bitsPerWord
	data := make([]byte, stride*height)
	for i := range data {
		data[i] = 0xFF
	}
	return &Bitmap{data: data, width: width, height: height, stride: stride}
}

// FromPacked wraps already packed rows. The data is copied.
func FromPacked(width, height int, data []byte) (*Bitmap, error) {
	stride := (width + bitsPerWord - 1) / bitsPerWord
	if len(data) != stride*height {
		return nil, fmt.Errorf("packed data not consistent with %dx%d bitmap (got %d bytes, expecting %d)",
			width, height, len(data), stride*height)
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	return &Bitmap{data: copied, width: width, height: height, stride: stride}, nil
}

// FromImage thresholds an image at mid gray. Transparent pixels are blank.
func FromImage(img image.Image) *Bitmap {
	bounds := img.Bounds()
	b := NewBitmap(bounds.Dx(), bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			if a < 0x8000 {
				continue
			}
			gray := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			if gray.Y < 0x80 {
				b.SetBit(x-bounds.Min.X, y-bounds.Min.Y, 0)
			}
		}
	}
	return b
}

func (b *Bitmap) Width() int {
	return b.width
}

func (b *Bitmap) Height() int {
	return b.height
}

func (b *Bitmap) Stride() int {
	return b.stride
}

// Data returns the packed rows. Callers must not modify it.
func (b *Bitmap) Data() []byte {
	return b.data
}

// Bit returns 1 for a blank pixel and 0 for a printed one
func (b *Bitmap) Bit(x, y int) byte {
	index := y*b.stride + x/bitsPerWord
	return (b.data[index] >> (bitsPerWord - 1 - x%bitsPerWord)) & 1
}

// SetBit sets a single pixel, v is 0 or 1
func (b *Bitmap) SetBit(x, y int, v byte) {
	index := y*b.stride + x/bitsPerWord
	mask := byte(0x80) >> (x % bitsPerWord)
	if v&1 == 1 {
		b.data[index] |= mask
	} else {
		b.data[index] &^= mask
	}
}

// Paste copies src into b with its top left corner at (x0, y0), clipping at the edges
func (b *Bitmap) Paste(src *Bitmap, x0, y0 int) {
	for y := 0; y < src.height; y++ {
		ty := y0 + y
		if ty < 0 || ty >= b.height {
			continue
		}
		for x := 0; x < src.width; x++ {
			tx := x0 + x
			if tx < 0 || tx >= b.width {
				continue
			}
			b.SetBit(tx, ty, src.Bit(x, y))
		}
	}
}

// Image converts the bitmap to a grayscale image for previews
func (b *Bitmap) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.width, b.height))
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if b.Bit(x, y) == 1 {
				img.SetGray(x, y, color.Gray{Y: 0xFF})
			}
		}
	}
	return img
}

func (b *Bitmap) String() string {
	return fmt.Sprintf("Bitmap(%d,%d)", b.width, b.height)
}
