// internal/model/label.go
package model

// LabelType selects how a label request is rendered
type LabelType string

const (
	LabelTypeText  LabelType = "text"
	LabelTypeQR    LabelType = "qr"
	LabelTypeWrap  LabelType = "wrap"
	LabelTypeFlag  LabelType = "flag"
	LabelTypeImage LabelType = "image"
	LabelTypeRaw   LabelType = "raw"
)

// HAlignment represents horizontal text alignment
type HAlignment string

const (
	AlignLeft   HAlignment = "left"
	AlignCenter HAlignment = "center"
	AlignRight  HAlignment = "right"
)

// FontSize scales text relative to the height available per line
type FontSize string

const (
	FontSizeLarge  FontSize = "large"
	FontSizeMedium FontSize = "medium"
	FontSizeSmall  FontSize = "small"
)

// Scale returns the fraction of the line height used by glyphs
func (f FontSize) Scale() float64 {
	switch f {
	case FontSizeMedium:
		return 0.75
	case FontSizeSmall:
		return 0.5
	default:
		return 1.0
	}
}

// LabelRequest describes one label. Fields not used by LabelType are ignored.
type LabelRequest struct {
	LabelType LabelType  `json:"label_type" binding:"required"`
	Printer   string     `json:"printer"`
	Tape      TapeSize   `json:"tape"`
	Fontname  string     `json:"fontname"`
	Lines     []string   `json:"lines,omitempty"`
	Align     HAlignment `json:"align,omitempty"`
	Size      FontSize   `json:"size,omitempty"`
	QRText    string     `json:"qrtext,omitempty"`
	Padding   *int       `json:"padding,omitempty"`
	Label     string     `json:"label,omitempty"`
	Length    int        `json:"length,omitempty"`
	MinCount  int        `json:"min_count,omitempty"`
	B64Image  string     `json:"b64_image,omitempty"`
	B64Bytes  string     `json:"b64_bytes,omitempty"`
}

// PrintRequest is the body of PUT /print
type PrintRequest struct {
	Count int          `json:"count"`
	Label LabelRequest `json:"label"`
}

// PreviewResponse is the body returned by PUT /preview
type PreviewResponse struct {
	Preview string `json:"preview"`
	Width   string `json:"width"`
	Height  string `json:"height"`
}

// ServiceConfig is the body returned by GET /config
type ServiceConfig struct {
	Tapes    []TapeSize `json:"tapes"`
	Printers []string   `json:"printers"`
	Fonts    []string   `json:"fonts"`
}
