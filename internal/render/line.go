package render

import (
	"fmt"
	"strconv"

	"github.com/vytor/enemresultados/internal/canvas"
	"github.com/vytor/enemresultados/internal/models"
	"github.com/vytor/enemresultados/internal/series"
)

const (
	lineGridRows  = 4
	lineTooltipW  = 220
	linePointSize = 4
)

var lineHoverRule = canvas.Hex("#d1d5db")

// Line plots the daily accuracy of each subject over the last week.
type Line struct {
	base
	data models.ChartSeries
	plot Rect
}

func NewLine(c *canvas.Canvas) *Line {
	return &Line{base: newBase(c)}
}

func (l *Line) Kind() Kind { return KindLine }

func (l *Line) RenderSnapshot(s *models.Snapshot) {
	if s == nil {
		l.Render(models.ChartSeries{})
		return
	}
	l.Render(s.Line)
}

func (l *Line) Render(data models.ChartSeries) {
	if l.c == nil {
		return
	}
	l.data = data
	l.hovered = -1
	l.hide()

	w, h := float64(l.c.Width()), float64(l.c.Height())
	l.plot = Rect{
		X: plotPadding.left,
		Y: plotPadding.top,
		W: w - plotPadding.left - plotPadding.right,
		H: h - plotPadding.top - plotPadding.bottom,
	}
	l.draw()
}

// PointerMove only tracks the pointer while it is inside the horizontal
// plot band; outside it the previous hover is kept.
func (l *Line) PointerMove(x, y float64) bool {
	if l.c == nil {
		return false
	}
	idx, ok := NearestIndex(x, l.plot.X, l.plot.W, len(l.data.DateKeys))
	if !ok || idx == l.hovered {
		return false
	}
	l.hovered = idx
	l.draw()

	hoverX := l.x(idx)
	items := make([]TooltipItem, 0, len(l.data.Subjects))
	for _, name := range l.data.Subjects {
		items = append(items, TooltipItem{
			Label: name,
			Value: fmt.Sprintf("%d%%", l.value(name, idx)),
			Color: series.ColorOf(name),
		})
	}
	l.tooltip = Tooltip{
		Visible: true,
		Left:    flipLeft(hoverX, 20, lineTooltipW, float64(l.c.Width())-plotPadding.right),
		Top:     plotPadding.top + 50,
		Title:   l.label(idx),
		Items:   items,
	}
	return true
}

func (l *Line) PointerLeave() {
	if l.c == nil || l.hovered < 0 {
		return
	}
	l.hovered = -1
	l.hide()
	l.draw()
}

func (l *Line) x(i int) float64 {
	n := len(l.data.DateKeys)
	if n <= 1 {
		return l.plot.X + l.plot.W/2
	}
	return l.plot.X + l.plot.W/float64(n-1)*float64(i)
}

func (l *Line) y(v int) float64 {
	return l.plot.Y + l.plot.H - float64(clampInt(v))/100*l.plot.H
}

func (l *Line) value(subject string, i int) int {
	vals := l.data.SeriesBySubject[subject]
	if i < len(vals) {
		return vals[i]
	}
	return 0
}

func (l *Line) label(i int) string {
	if i < len(l.data.Labels) {
		return l.data.Labels[i]
	}
	return l.data.DateKeys[i]
}

func (l *Line) draw() {
	l.c.Clear(canvas.White)
	n := len(l.data.DateKeys)
	p := l.plot

	for i := 0; i <= lineGridRows; i++ {
		y := p.Y + p.H/lineGridRows*float64(i)
		l.c.Line(p.X, y, p.X+p.W, y, canvas.GridGray, 1, 2, 2)
		l.c.Text(strconv.Itoa(100-i*100/lineGridRows), p.X-10, y, canvas.TextGray, canvas.AlignRight, canvas.AlignMiddle)
	}
	if n > 1 {
		for i := 0; i < n; i++ {
			x := l.x(i)
			l.c.Line(x, p.Y, x, p.Y+p.H, canvas.GridGray, 1, 2, 2)
		}
	}
	for i := 0; i < n; i++ {
		l.c.Text(l.label(i), l.x(i), p.Y+p.H+10, canvas.TextGray, canvas.AlignCenter, canvas.AlignTop)
	}
	if n == 0 {
		return
	}

	if l.hovered >= 0 {
		x := l.x(l.hovered)
		l.c.Line(x, p.Y, x, p.Y+p.H, lineHoverRule, 1.5)
	}

	for _, name := range l.data.Subjects {
		col := canvas.Hex(series.ColorOf(name))
		pts := make([]canvas.Point, n)
		for i := range pts {
			pts[i] = canvas.Point{X: l.x(i), Y: l.y(l.value(name, i))}
		}
		l.c.Polyline(pts, col, 2)
		for _, pt := range pts {
			l.c.Circle(pt.X, pt.Y, linePointSize, col, canvas.White, 2)
		}
	}
}
