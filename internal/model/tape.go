// internal/model/tape.go
package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// HeadHeight is the fixed raster width of the print head in pixels
const HeadHeight = 128

// TapeSize represents a supported label tape width
type TapeSize string

const (
	TapeNone TapeSize = ""
	Tape24mm TapeSize = "24mm"
	Tape12mm TapeSize = "12mm"
	Tape9mm  TapeSize = "9mm"
	Tape6mm  TapeSize = "6mm"
)

// TapeGeometry describes where a tape sits under the print head
type TapeGeometry struct {
	PrintableHeight int `json:"printable_height"`
	Offset          int `json:"offset"`
}

// Tapes maps each tape size to its printable area. Read-only.
var Tapes = map[TapeSize]TapeGeometry{
	Tape24mm: {PrintableHeight: 128, Offset: 0},
	Tape12mm: {PrintableHeight: 64, Offset: 32},
	Tape9mm:  {PrintableHeight: 48, Offset: 40},
	Tape6mm:  {PrintableHeight: 32, Offset: 48},
}

// tapeOrder is the order used when matching media descriptors and listing tapes
var tapeOrder = []TapeSize{Tape24mm, Tape12mm, Tape9mm, Tape6mm}

// ParseTapeSize validates a tape size string
func ParseTapeSize(s string) (TapeSize, error) {
	tape := TapeSize(s)
	if _, ok := Tapes[tape]; !ok {
		return TapeNone, fmt.Errorf("unknown tape size: %q", s)
	}
	return tape, nil
}

// TapeFromMillimeters maps a media width reported in mm to a tape size
func TapeFromMillimeters(mm int) (TapeSize, bool) {
	tape := TapeSize(fmt.Sprintf("%dmm", mm))
	_, ok := Tapes[tape]
	return tape, ok
}

// TapeSizes returns all tape sizes, widest first
func TapeSizes() []TapeSize {
	sizes := make([]TapeSize, len(tapeOrder))
	copy(sizes, tapeOrder)
	return sizes
}

// Geometry returns the printable area of the tape
func (t TapeSize) Geometry() (TapeGeometry, bool) {
	g, ok := Tapes[t]
	return g, ok
}

func (t TapeSize) String() string {
	return string(t)
}

// MarshalJSON encodes an unknown tape as null
func (t TapeSize) MarshalJSON() ([]byte, error) {
	if t == TapeNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

// MatchMediaDescriptor finds the tape whose label prefixes an SNMP media descriptor
func MatchMediaDescriptor(descriptor string) TapeSize {
	media := TapeNone
	for _, tape := range tapeOrder {
		if strings.HasPrefix(descriptor, string(tape)) {
			media = tape
		}
	}
	return media
}
