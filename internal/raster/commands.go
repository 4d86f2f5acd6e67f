// internal/raster/commands.go
package raster

// Commands contains the raster command set understood by the label printer
var Commands = struct {
	// Stream control
	Invalidate    []byte
	Initialize    []byte
	StatusRequest []byte

	// Job setup
	AutoCut         []byte
	ExpandedMode    []byte
	CompressionTIFF []byte

	// Raster transfer
	RasterRowLiteral []byte // followed by BytesPerRow bytes

	// Printing
	PrintAndFeed []byte
}{
	// Stream control
	Invalidate:    make([]byte, 100),        // NUL x 100
	Initialize:    []byte{0x1B, 0x40},       // ESC @
	StatusRequest: []byte{0x1B, 0x69, 0x53}, // ESC i S

	// Job setup
	AutoCut:         []byte{0x1B, 0x69, 0x4D, 0x40}, // ESC i M, auto cut on
	ExpandedMode:    []byte{0x1B, 0x69, 0x4B, 0x08}, // ESC i K, no chain printing, low resolution
	CompressionTIFF: []byte{0x4D, 0x02},             // M 2

	// Raster transfer
	RasterRowLiteral: []byte{0x47, 0x11, 0x00, 0x0F}, // G n1 n2, run header: 16 literal bytes

	// Printing
	PrintAndFeed: []byte{0x1A}, // SUB
}

const (
	// HeadPixels is the raster width of the print head
	HeadPixels = 128

	// BytesPerRow is the packed size of one raster row
	BytesPerRow = HeadPixels / 8

	// StatusLength is the size of a status reply
	StatusLength = 32

	// StatusMediaWidthOffset is the byte holding the media width in mm
	StatusMediaWidthOffset = 10
)

// headerLength is the number of bytes emitted before the first raster row
var headerLength = len(Commands.Invalidate) + len(Commands.Initialize) +
	len(Commands.AutoCut) + len(Commands.ExpandedMode) + len(Commands.CompressionTIFF)

// StatusQuery returns the byte sequence that asks the printer for a status reply
func StatusQuery() []byte {
	query := make([]byte, 0, len(Commands.Invalidate)+len(Commands.StatusRequest))
	query = append(query, Commands.Invalidate...)
	query = append(query, Commands.StatusRequest...)
	return query
}
