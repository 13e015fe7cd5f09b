package app

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"pathkit/chat"
)

const (
	chatFontSize   = 16
	chatMargin     = 8
	chatMaxLines   = 10
	chatFadeWindow = 2 * time.Second
)

var (
	chatBackground    = color.RGBA{0, 0, 0, 128}
	chatText          = color.RGBA{255, 255, 255, 255}
	consoleBackground = color.RGBA{0, 0, 0, 170}
	hudText           = color.RGBA{220, 220, 220, 255}
)

// drawChat draws recent chat lines above the console row at the bottom-left.
// Every line is shown while the console is open.
func drawChat(screen *ebiten.Image, log *chat.Log, consoleOpen bool, now time.Time, ttl time.Duration) {
	lines := log.Visible()
	if consoleOpen {
		lines = log.History()
	}
	if len(lines) > chatMaxLines {
		lines = lines[len(lines)-chatMaxLines:]
	}

	lh := lineHeight(chatFontSize) + 2
	w := screen.Bounds().Dx() / 2
	y := screen.Bounds().Dy() - chatMargin - 2*lh
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		alpha := 1.0
		if !consoleOpen {
			if left := ttl - now.Sub(line.At); left < chatFadeWindow {
				alpha = float64(left) / float64(chatFadeWindow)
			}
		}
		if alpha <= 0 {
			continue
		}
		bg := fade(chatBackground, alpha)
		vector.DrawFilledRect(screen, chatMargin, float32(y-lh+4), float32(w), float32(lh), bg, false)
		drawText(screen, line.Text, chatFontSize, chatMargin+4, y, fade(chatText, alpha))
		y -= lh
	}
}

// drawConsole draws the input line with a caret.
func drawConsole(screen *ebiten.Image, c *chat.Console, frame int) {
	if !c.IsOpen() {
		return
	}
	lh := lineHeight(chatFontSize) + 2
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	y := sh - chatMargin - lh
	vector.DrawFilledRect(screen, chatMargin, float32(y), float32(sw-2*chatMargin), float32(lh), consoleBackground, false)
	s := c.Text()
	if (frame/30)%2 == 0 {
		s += "_"
	}
	drawText(screen, s, chatFontSize, chatMargin+4, y+lh-6, chatText)
}

func fade(c color.RGBA, alpha float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * alpha),
		G: uint8(float64(c.G) * alpha),
		B: uint8(float64(c.B) * alpha),
		A: uint8(float64(c.A) * alpha),
	}
}
