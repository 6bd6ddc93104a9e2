package canvas

import (
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	White    = drawing.ColorWhite
	GridGray = Hex("#e5e5e5")
	TextGray = Hex("#737373")
)

// Hex parses "#rrggbb" (leading '#' optional).
func Hex(s string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}

// RGBA builds a color from 8-bit channels and a 0..1 alpha.
func RGBA(r, g, b uint8, alpha float64) drawing.Color {
	a := math.Round(math.Max(0, math.Min(1, alpha)) * 255)
	return drawing.Color{R: r, G: g, B: b, A: uint8(a)}
}
