// internal/label/fonts.go
package label

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DefaultFont is used when a request names no font
const DefaultFont = "mono"

// builtinFonts are compiled into the binary
var builtinFonts = map[string][]byte{
	"mono":  gomono.TTF,
	"sans":  goregular.TTF,
	"bold":  gobold.TTF,
	"serif": gomedium.TTF,
}

var builtinOrder = []string{"mono", "sans", "bold", "serif"}

// fontExtensions are the file types picked up from font directories
var fontExtensions = []string{".ttf", ".otf"}

// Fonts resolves font names to parsed fonts. Names are the built in aliases,
// file names found in the configured directories (with or without extension)
// or absolute paths.
type Fonts struct {
	dirs        []string
	defaultFont string
	logger      *zap.Logger

	scanOnce sync.Once
	files    map[string]string
	stems    []string

	mu     sync.Mutex
	parsed map[string]*opentype.Font
}

// NewFonts creates a font set over the built in fonts and dirs
func NewFonts(dirs []string, defaultFont string, logger *zap.Logger) *Fonts {
	if defaultFont == "" {
		defaultFont = DefaultFont
	}

	return &Fonts{
		dirs:        dirs,
		defaultFont: defaultFont,
		logger:      logger.With(zap.String("component", "fonts")),
		parsed:      make(map[string]*opentype.Font),
	}
}

// Names lists the fonts a request may use, built in aliases first
func (f *Fonts) Names() []string {
	f.scan()

	names := make([]string, 0, len(builtinOrder)+len(f.stems))
	names = append(names, builtinOrder...)
	return append(names, f.stems...)
}

// Load returns the parsed font for name
func (f *Fonts) Load(name string) (*opentype.Font, error) {
	if name == "" {
		name = f.defaultFont
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if parsed, ok := f.parsed[name]; ok {
		return parsed, nil
	}

	data, err := f.read(name)
	if err != nil {
		return nil, err
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", name, err)
	}

	f.parsed[name] = parsed
	return parsed, nil
}

func (f *Fonts) read(name string) ([]byte, error) {
	if data, ok := builtinFonts[name]; ok {
		return data, nil
	}

	path := name
	if !filepath.IsAbs(name) {
		f.scan()

		var ok bool
		if path, ok = f.files[name]; !ok {
			return nil, fmt.Errorf("%w: unknown font %q", ErrInvalidLabel, name)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read font %q: %v", ErrInvalidLabel, name, err)
	}
	return data, nil
}

// scan indexes the font directories once
func (f *Fonts) scan() {
	f.scanOnce.Do(func() {
		f.files = make(map[string]string)

		for _, dir := range f.dirs {
			entries, err := os.ReadDir(dir)
			if err != nil {
				f.logger.Warn("Failed to read font directory", zap.String("dir", dir), zap.Error(err))
				continue
			}

			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}

				fileName := entry.Name()
				ext := strings.ToLower(filepath.Ext(fileName))
				if !isFontExtension(ext) {
					continue
				}

				stem := strings.TrimSuffix(fileName, filepath.Ext(fileName))
				if _, seen := f.files[stem]; !seen {
					f.stems = append(f.stems, stem)
				}

				path := filepath.Join(dir, fileName)
				f.files[fileName] = path
				f.files[stem] = path
			}
		}
		sort.Strings(f.stems)

		f.logger.Debug("Font directories scanned", zap.Int("fonts", len(f.stems)))
	})
}

func isFontExtension(ext string) bool {
	for _, e := range fontExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// newFace creates a face where one point is one pixel
func newFace(f *opentype.Font, size int) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
