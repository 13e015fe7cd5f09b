package app

import (
	"image/color"
	"log"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	text "github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"pathkit/layout"
)

// baseFontSize is the text size at layout scale 1.
const baseFontSize = 9

// Global font cache keyed by size
var (
	fontCache        = make(map[float64]font.Face)
	fontCacheMux     sync.RWMutex
	parsedFont       *opentype.Font
	fontLoadOnce     sync.Once
	fontLoadError    error
	maxFontCacheSize = 20
)

func initFont() {
	parsedFont, fontLoadError = opentype.Parse(goregular.TTF)
	if fontLoadError != nil {
		log.Printf("Failed to parse UI font: %v, using default font", fontLoadError)
	}
}

// loadFont returns a face of the given size from the cache or creates it.
func loadFont(size float64) font.Face {
	fontLoadOnce.Do(initFont)

	// half-pixel steps keep the cache small while resizing
	size = math.Max(6, math.Round(size*2)/2)

	fontCacheMux.RLock()
	if cachedFont, exists := fontCache[size]; exists {
		fontCacheMux.RUnlock()
		return cachedFont
	}
	fontCacheMux.RUnlock()

	if fontLoadError != nil || parsedFont == nil {
		return createSimpleFont()
	}

	face, err := opentype.NewFace(parsedFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		log.Printf("Failed to create font face: %v, using default font", err)
		return createSimpleFont()
	}

	fontCacheMux.Lock()
	if len(fontCache) >= maxFontCacheSize {
		for key := range fontCache {
			delete(fontCache, key)
			break
		}
	}
	fontCache[size] = face
	fontCacheMux.Unlock()

	return face
}

// createSimpleFont creates a basic fallback font
func createSimpleFont() font.Face {
	return basicfont.Face7x13
}

// screenRenderer draws editor frames onto an ebiten image.
type screenRenderer struct {
	screen *ebiten.Image
}

func (r screenRenderer) FillRect(rect layout.Rect, c color.RGBA) {
	vector.DrawFilledRect(r.screen, float32(rect.X), float32(rect.Y), float32(rect.W), float32(rect.H), c, false)
}

// Text draws s with its top-left corner at (x, y).
func (r screenRenderer) Text(s string, x, y, scale float64, c color.RGBA) {
	face := loadFont(baseFontSize * scale)
	ascent := face.Metrics().Ascent.Ceil()
	text.Draw(r.screen, s, face, int(x), int(y)+ascent, c)
}

// drawText draws s at a baseline position with a face of the given size.
func drawText(screen *ebiten.Image, s string, size float64, x, y int, clr color.Color) {
	text.Draw(screen, s, loadFont(size), x, y, clr)
}

// lineHeight returns the pixel height of a line of text at size.
func lineHeight(size float64) int {
	metrics := loadFont(size).Metrics()
	return (metrics.Ascent + metrics.Descent).Round()
}
