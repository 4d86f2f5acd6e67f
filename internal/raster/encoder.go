// internal/raster/encoder.go
package raster

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrInvalidHeight is returned when a bitmap was composed for the wrong head size
var ErrInvalidHeight = errors.New("bitmap height does not match print head")

// EncodedLength returns the size of a raster job with the given number of rows
func EncodedLength(rows int) int {
	return headerLength + rows*(len(Commands.RasterRowLiteral)+BytesPerRow) + len(Commands.PrintAndFeed)
}

// Encode converts a label bitmap into a raster job.
//
// The bitmap is laid out the way it reads: its width is the label length and
// its height must be exactly HeadPixels. Each bitmap column becomes one raster
// row, which is the bitmap rotated a quarter turn and flipped vertically. Bits
// are inverted since the printer treats a set bit as a printed dot.
func Encode(b *Bitmap) ([]byte, error) {
	if b.Height() != HeadPixels {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidHeight, b.Height(), HeadPixels)
	}

	rows := b.Width()
	buf := bytes.NewBuffer(make([]byte, 0, EncodedLength(rows)))

	buf.Write(Commands.Invalidate)
	buf.Write(Commands.Initialize)
	buf.Write(Commands.AutoCut)
	buf.Write(Commands.ExpandedMode)
	buf.Write(Commands.CompressionTIFF)

	row := make([]byte, BytesPerRow)
	for r := 0; r < rows; r++ {
		for i := range row {
			row[i] = 0
		}
		for x := 0; x < HeadPixels; x++ {
			if b.Bit(r, x) == 0 {
				row[x/bitsPerWord] |= 0x80 >> (x % bitsPerWord)
			}
		}

		buf.Write(Commands.RasterRowLiteral)
		buf.Write(row)
	}

	buf.Write(Commands.PrintAndFeed)
	return buf.Bytes(), nil
}
