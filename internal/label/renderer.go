// internal/label/renderer.go
package label

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makeworld-the-better-one/dither/v2"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"label-service/internal/model"
	"label-service/internal/raster"
)

// ErrInvalidLabel is returned for label requests that cannot be rendered
var ErrInvalidLabel = errors.New("invalid label")

const (
	defaultQRPadding   = 10
	defaultFlagPadding = 96
	defaultWrapLength  = 128
	defaultWrapCount   = 7
)

// Renderer turns label requests into bitmaps as tall as the tape's printable area
type Renderer struct {
	fonts  *Fonts
	logger *zap.Logger
}

// NewRenderer creates a renderer using fonts
func NewRenderer(fonts *Fonts, logger *zap.Logger) *Renderer {
	return &Renderer{
		fonts:  fonts,
		logger: logger.With(zap.String("component", "label_renderer")),
	}
}

// Fonts returns the font set used by the renderer
func (r *Renderer) Fonts() *Fonts {
	return r.fonts
}

// Render draws req. Raw labels have no bitmap, use DecodeRaw for those.
func (r *Renderer) Render(req *model.LabelRequest) (*raster.Bitmap, error) {
	geometry, ok := req.Tape.Geometry()
	if !ok {
		return nil, fmt.Errorf("%w: unknown tape %q", ErrInvalidLabel, req.Tape)
	}
	height := geometry.PrintableHeight

	switch req.Align {
	case "", model.AlignLeft, model.AlignCenter, model.AlignRight:
	default:
		return nil, fmt.Errorf("%w: unknown alignment %q", ErrInvalidLabel, req.Align)
	}

	switch req.Size {
	case "", model.FontSizeLarge, model.FontSizeMedium, model.FontSizeSmall:
	default:
		return nil, fmt.Errorf("%w: unknown size %q", ErrInvalidLabel, req.Size)
	}

	var (
		img *raster.Bitmap
		err error
	)

	switch req.LabelType {
	case model.LabelTypeText:
		img, err = r.text(req, height)
	case model.LabelTypeQR:
		img, err = r.qr(req, height)
	case model.LabelTypeWrap:
		img, err = r.wrap(req, height)
	case model.LabelTypeFlag:
		img, err = r.flag(req, height)
	case model.LabelTypeImage:
		img, err = r.image(req, height)
	case model.LabelTypeRaw:
		return nil, fmt.Errorf("%w: raw labels carry encoded raster data", ErrInvalidLabel)
	default:
		return nil, fmt.Errorf("%w: unknown label type %q", ErrInvalidLabel, req.LabelType)
	}
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Label rendered",
		zap.String("label_type", string(req.LabelType)),
		zap.String("tape", req.Tape.String()),
		zap.Int("width", img.Width()),
		zap.Int("height", img.Height()),
	)
	return img, nil
}

// Compose places a rendered label on a head high canvas at the tape offset
func Compose(img *raster.Bitmap, tape model.TapeSize) (*raster.Bitmap, error) {
	geometry, ok := tape.Geometry()
	if !ok {
		return nil, fmt.Errorf("%w: unknown tape %q", ErrInvalidLabel, tape)
	}

	out := raster.NewBitmap(img.Width(), model.HeadHeight)
	out.Paste(img, 0, geometry.Offset)
	return out, nil
}

// DecodeRaw returns the encoded raster job carried by a raw label
func DecodeRaw(req *model.LabelRequest) ([]byte, error) {
	if req.B64Bytes == "" {
		return nil, fmt.Errorf("%w: b64_bytes is required", ErrInvalidLabel)
	}

	job, err := base64.StdEncoding.DecodeString(req.B64Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid b64_bytes: %v", ErrInvalidLabel, err)
	}
	return job, nil
}

func validateLines(lines []string) error {
	for _, line := range lines {
		if line == "" {
			return fmt.Errorf("%w: empty lines not allowed", ErrInvalidLabel)
		}
	}
	return nil
}

func (r *Renderer) text(req *model.LabelRequest, height int) (*raster.Bitmap, error) {
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: lines are required", ErrInvalidLabel)
	}
	if err := validateLines(req.Lines); err != nil {
		return nil, err
	}

	f, err := r.fonts.Load(req.Fontname)
	if err != nil {
		return nil, err
	}

	return horizontalTextBlock(f, height, req.Size, req.Lines, req.Align)
}

func (r *Renderer) qr(req *model.LabelRequest, height int) (*raster.Bitmap, error) {
	if req.QRText == "" {
		return nil, fmt.Errorf("%w: qrtext is required", ErrInvalidLabel)
	}
	if err := validateLines(req.Lines); err != nil {
		return nil, err
	}

	code, err := qrCode(req.QRText, height)
	if err != nil {
		return nil, err
	}

	if len(req.Lines) == 0 {
		return code, nil
	}

	f, err := r.fonts.Load(req.Fontname)
	if err != nil {
		return nil, err
	}

	text, err := horizontalTextBlock(f, height, req.Size, req.Lines, req.Align)
	if err != nil {
		return nil, err
	}

	padding := paddingOr(req.Padding, defaultQRPadding)

	out := raster.NewBitmap(code.Width()+padding+text.Width(), height)
	out.Paste(code, 0, 0)
	out.Paste(text, code.Width()+padding, 0)
	return out, nil
}

func (r *Renderer) wrap(req *model.LabelRequest, height int) (*raster.Bitmap, error) {
	if req.Label == "" {
		return nil, fmt.Errorf("%w: label is required", ErrInvalidLabel)
	}

	length := req.Length
	if length <= 0 {
		length = defaultWrapLength
	}

	minCount := req.MinCount
	if minCount <= 0 {
		minCount = defaultWrapCount
	}

	f, err := r.fonts.Load(req.Fontname)
	if err != nil {
		return nil, err
	}

	return verticalTextBlock(f, height, length, req.Label, minCount)
}

func (r *Renderer) flag(req *model.LabelRequest, height int) (*raster.Bitmap, error) {
	if req.Label == "" {
		return nil, fmt.Errorf("%w: label is required", ErrInvalidLabel)
	}

	f, err := r.fonts.Load(req.Fontname)
	if err != nil {
		return nil, err
	}

	text, err := horizontalTextBlock(f, height, req.Size, []string{req.Label}, model.AlignLeft)
	if err != nil {
		return nil, err
	}

	padding := paddingOr(req.Padding, defaultFlagPadding)

	out := raster.NewBitmap(text.Width()*2+padding, height)
	out.Paste(text, 0, 0)
	out.Paste(text, text.Width()+padding, 0)
	verticalLine(out, text.Width()+padding/2)
	return out, nil
}

func (r *Renderer) image(req *model.LabelRequest, height int) (*raster.Bitmap, error) {
	if req.B64Image == "" {
		return nil, fmt.Errorf("%w: b64_image is required", ErrInvalidLabel)
	}

	data, err := base64.StdEncoding.DecodeString(req.B64Image)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid b64_image: %v", ErrInvalidLabel, err)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %v", ErrInvalidLabel, err)
	}

	bounds := src.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidLabel)
	}

	width := max(bounds.Dx()*height/bounds.Dy(), 1)

	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(scaled, scaled.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, bounds, draw.Over, nil)

	ditherer := dither.NewDitherer([]color.Color{color.Black, color.White})
	ditherer.Matrix = dither.FloydSteinberg

	r.logger.Debug("Image label decoded",
		zap.String("format", format),
		zap.Int("source_width", bounds.Dx()),
		zap.Int("source_height", bounds.Dy()),
	)
	return raster.FromImage(ditherer.DitherPaletted(scaled)), nil
}

// qrCode renders text as a square QR code size pixels wide, without quiet zone
func qrCode(text string, size int) (*raster.Bitmap, error) {
	q, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode QR code: %v", ErrInvalidLabel, err)
	}
	q.DisableBorder = true

	src := q.Image(size)
	if src.Bounds().Dx() == size && src.Bounds().Dy() == size {
		return raster.FromImage(src), nil
	}

	scaled := image.NewGray(image.Rect(0, 0, size, size))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), src, src.Bounds(), draw.Src, nil)
	return raster.FromImage(scaled), nil
}

func paddingOr(padding *int, fallback int) int {
	if padding == nil || *padding < 0 {
		return fallback
	}
	return *padding
}
