// Package canvas is a small 2D drawing surface for chart frames. Callers
// draw in logical pixels; the backing image is Ratio times denser.
package canvas

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DefaultRatio is the device pixel ratio frames are drawn at.
const DefaultRatio = 2

var ErrNoSurface = errors.New("canvas: surface has no area")

type Point struct {
	X, Y float64
}

type HAlign int

const (
	AlignLeft HAlign = iota
	AlignCenter
	AlignRight
)

type VAlign int

const (
	AlignBaseline VAlign = iota
	AlignMiddle
	AlignTop
)

type Canvas struct {
	img    *image.RGBA
	gc     *drawing.RasterGraphicContext
	width  int
	height int
	ratio  float64
	face   font.Face
}

// New allocates a width x height logical surface backed by an image ratio
// times larger in each dimension.
func New(width, height int, ratio float64) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrNoSurface
	}
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		ratio = DefaultRatio
	}

	img := image.NewRGBA(image.Rect(0, 0, int(math.Ceil(float64(width)*ratio)), int(math.Ceil(float64(height)*ratio))))
	gc, err := drawing.NewRasterGraphicContext(img)
	if err != nil {
		return nil, err
	}
	return &Canvas{
		img:    img,
		gc:     gc,
		width:  width,
		height: height,
		ratio:  ratio,
		face:   basicfont.Face7x13,
	}, nil
}

func (c *Canvas) Width() int { return c.width }
func (c *Canvas) Height() int { return c.height }
func (c *Canvas) Ratio() float64 { return c.ratio }
func (c *Canvas) Image() *image.RGBA { return c.img }
func (c *Canvas) px(v float64) float64 { return v * c.ratio }

// Clear paints the whole surface with col.
func (c *Canvas) Clear(col color.Color) {
	xdraw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, xdraw.Src)
}

// Line strokes a segment. A non-empty dash pattern is in logical pixels.
func (c *Canvas) Line(x1, y1, x2, y2 float64, col color.Color, width float64, dash ...float64) {
	c.gc.BeginPath()
	c.gc.MoveTo(c.px(x1), c.px(y1))
	c.gc.LineTo(c.px(x2), c.px(y2))
	c.stroke(col, width, dash)
}

// Polyline strokes connected segments through pts.
func (c *Canvas) Polyline(pts []Point, col color.Color, width float64) {
	if len(pts) < 2 {
		return
	}
	c.gc.BeginPath()
	c.gc.MoveTo(c.px(pts[0].X), c.px(pts[0].Y))
	for _, p := range pts[1:] {
		c.gc.LineTo(c.px(p.X), c.px(p.Y))
	}
	c.stroke(col, width, nil)
}

// Polygon closes pts into a shape; a nil fill or stroke skips that pass.
func (c *Canvas) Polygon(pts []Point, fill, stroke color.Color, width float64) {
	if len(pts) == 0 {
		return
	}
	c.gc.BeginPath()
	for i, p := range pts {
		if i == 0 {
			c.gc.MoveTo(c.px(p.X), c.px(p.Y))
		} else {
			c.gc.LineTo(c.px(p.X), c.px(p.Y))
		}
	}
	c.gc.Close()
	c.paint(fill, stroke, width)
}

func (c *Canvas) Circle(x, y, r float64, fill, stroke color.Color, width float64) {
	c.gc.BeginPath()
	c.gc.ArcTo(c.px(x), c.px(y), c.px(r), c.px(r), 0, 2*math.Pi)
	c.gc.Close()
	c.paint(fill, stroke, width)
}

// Wedge fills the pie slice between angles from and to (radians, clockwise
// from the positive x axis).
func (c *Canvas) Wedge(x, y, r, from, to float64, fill color.Color) {
	c.gc.BeginPath()
	c.gc.MoveTo(c.px(x), c.px(y))
	c.gc.ArcTo(c.px(x), c.px(y), c.px(r), c.px(r), from, to-from)
	c.gc.Close()
	c.paint(fill, nil, 0)
}

func (c *Canvas) FillRect(x, y, w, h float64, fill color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	c.Polygon([]Point{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}, fill, nil, 0)
}

// Text draws a single line of text anchored at (x, y). The built-in face is
// rasterized at logical size and scaled up, so labels keep their layout at
// any ratio.
func (c *Canvas) Text(s string, x, y float64, col color.Color, h HAlign, v VAlign) {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return
	}

	d := &font.Drawer{Face: c.face}
	tw := d.MeasureString(s).Ceil()
	m := c.face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	th := ascent + descent

	left := x
	switch h {
	case AlignCenter:
		left -= float64(tw) / 2
	case AlignRight:
		left -= float64(tw)
	}
	top := y
	switch v {
	case AlignBaseline:
		top -= float64(ascent)
	case AlignMiddle:
		top -= float64(th) / 2
	}

	glyphs := image.NewRGBA(image.Rect(0, 0, tw, th))
	d.Dst = glyphs
	d.Src = image.NewUniform(col)
	d.Dot = fixed.P(0, ascent)
	d.DrawString(s)

	dst := image.Rect(
		int(math.Round(c.px(left))), int(math.Round(c.px(top))),
		int(math.Round(c.px(left+float64(tw)))), int(math.Round(c.px(top+float64(th)))),
	)
	xdraw.NearestNeighbor.Scale(c.img, dst, glyphs, glyphs.Bounds(), xdraw.Over, nil)
}

// TextWidth is the logical width s occupies when drawn.
func (c *Canvas) TextWidth(s string) float64 {
	return float64(font.MeasureString(c.face, s).Ceil())
}

// EncodePNG writes the current frame as a PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, c.img)
}

func (c *Canvas) stroke(col color.Color, width float64, dash []float64) {
	if len(dash) > 0 {
		scaled := make([]float64, len(dash))
		for i, d := range dash {
			scaled[i] = c.px(d)
		}
		c.gc.SetLineDash(scaled, 0)
		defer c.gc.SetLineDash(nil, 0)
	}
	c.gc.SetStrokeColor(col)
	c.gc.SetLineWidth(c.px(width))
	c.gc.Stroke()
}

func (c *Canvas) paint(fill, stroke color.Color, width float64) {
	switch {
	case fill != nil && stroke != nil:
		c.gc.SetFillColor(fill)
		c.gc.SetStrokeColor(stroke)
		c.gc.SetLineWidth(c.px(width))
		c.gc.FillStroke()
	case fill != nil:
		c.gc.SetFillColor(fill)
		c.gc.Fill()
	case stroke != nil:
		c.gc.SetStrokeColor(stroke)
		c.gc.SetLineWidth(c.px(width))
		c.gc.Stroke()
	}
}
