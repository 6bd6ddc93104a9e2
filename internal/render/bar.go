package render

import (
	"math"
	"strconv"

	"github.com/vytor/enemresultados/internal/canvas"
	"github.com/vytor/enemresultados/internal/models"
	"github.com/vytor/enemresultados/internal/series"
)

const (
	barGroups    = 7
	barGridRows  = 4
	barTooltipW  = 180
	barMinScale  = 5
	barHeadroom  = 1.1
	barGroupFill = 0.3
)

var (
	barQuestionColor = canvas.Hex("#8b8bff")
	barMinuteColor   = canvas.Hex("#6ee7b7")
	barHoverFill     = canvas.RGBA(200, 200, 200, 0.2)
)

// Bar shows questions solved and minutes studied per weekday on two scales:
// questions on the left axis, minutes on the right.
type Bar struct {
	base
	data   models.BarSeries
	plot   Rect
	groups []Rect
	maxQ   float64
	scaleT float64
	maxVal float64
}

func NewBar(c *canvas.Canvas) *Bar {
	return &Bar{base: newBase(c)}
}

func (b *Bar) Kind() Kind { return KindBar }

func (b *Bar) RenderSnapshot(s *models.Snapshot) {
	if s == nil {
		b.Render(models.BarSeries{})
		return
	}
	b.Render(s.Bar)
}

func (b *Bar) Render(data models.BarSeries) {
	if b.c == nil {
		return
	}
	b.data = normalizeBar(data)
	b.hovered = -1
	b.hide()

	w, h := float64(b.c.Width()), float64(b.c.Height())
	b.plot = Rect{
		X: plotPadding.left,
		Y: plotPadding.top,
		W: w - plotPadding.left - plotPadding.right,
		H: h - plotPadding.top - plotPadding.bottom,
	}

	b.maxQ = math.Max(maxOf(b.data.Questions), barMinScale)
	maxT := math.Max(maxOf(b.data.Minutes), barMinScale)
	b.scaleT = b.maxQ / maxT
	b.maxVal = b.maxQ
	for _, t := range b.data.Minutes {
		b.maxVal = math.Max(b.maxVal, t*b.scaleT)
	}
	b.maxVal *= barHeadroom

	groupW := b.plot.W / barGroups
	b.groups = make([]Rect, barGroups)
	for i := range b.groups {
		b.groups[i] = Rect{X: b.plot.X + groupW*float64(i), Y: b.plot.Y, W: groupW, H: b.plot.H}
	}
	b.draw()
}

func (b *Bar) PointerMove(x, y float64) bool {
	if b.c == nil {
		return false
	}
	idx := GroupAt(b.groups, x, y)
	if idx == b.hovered {
		return false
	}
	b.hovered = idx
	b.draw()
	if idx < 0 {
		b.hide()
		return true
	}

	g := b.groups[idx]
	center := g.X + g.W/2
	b.tooltip = Tooltip{
		Visible: true,
		Left:    flipLeft(center, 20, barTooltipW, float64(b.c.Width())),
		Top:     plotPadding.top + 40,
		Title:   b.data.Labels[idx],
		Items: []TooltipItem{
			{Label: "Questões", Value: formatNumber(b.data.Questions[idx]), Color: "#8b8bff"},
			{Label: "Tempo", Value: formatNumber(b.data.Minutes[idx]) + " min", Color: "#6ee7b7"},
		},
	}
	return true
}

func (b *Bar) PointerLeave() {
	if b.c == nil || b.hovered < 0 {
		return
	}
	b.hovered = -1
	b.hide()
	b.draw()
}

func (b *Bar) height(v float64) float64 {
	if b.maxVal <= 0 {
		return 0
	}
	return v / b.maxVal * b.plot.H
}

func (b *Bar) draw() {
	b.c.Clear(canvas.White)
	p := b.plot

	for i := 0; i <= barGridRows; i++ {
		y := p.Y + p.H/barGridRows*float64(i)
		b.c.Line(p.X, y, p.X+p.W, y, canvas.GridGray, 1)
		valQ := b.maxVal * float64(barGridRows-i) / barGridRows
		b.c.Text(strconv.FormatFloat(valQ, 'f', 0, 64), p.X-10, y, canvas.TextGray, canvas.AlignRight, canvas.AlignMiddle)
		b.c.Text(strconv.FormatFloat(valQ/b.scaleT, 'f', 0, 64), p.X+p.W+10, y, canvas.TextGray, canvas.AlignLeft, canvas.AlignMiddle)
	}

	if b.hovered >= 0 {
		g := b.groups[b.hovered]
		b.c.FillRect(g.X, g.Y, g.W, g.H, barHoverFill)
	}

	for i, g := range b.groups {
		barW := g.W * barGroupFill
		center := g.X + g.W/2
		bottom := p.Y + p.H

		hq := b.height(b.data.Questions[i])
		b.c.FillRect(center-barW-2, bottom-hq, barW, hq, barQuestionColor)
		ht := b.height(b.data.Minutes[i] * b.scaleT)
		b.c.FillRect(center+2, bottom-ht, barW, ht, barMinuteColor)

		b.c.Text(b.data.Labels[i], center, bottom+15, canvas.TextGray, canvas.AlignCenter, canvas.AlignMiddle)
	}
}

// normalizeBar pads the series to a full week and replaces non-finite or
// negative counts with zero.
func normalizeBar(data models.BarSeries) models.BarSeries {
	out := models.BarSeries{
		Labels:    make([]string, barGroups),
		Questions: make([]float64, barGroups),
		Minutes:   make([]float64, barGroups),
	}
	for i := 0; i < barGroups; i++ {
		out.Labels[i] = series.WeekdayLabels[i]
		if i < len(data.Labels) && data.Labels[i] != "" {
			out.Labels[i] = data.Labels[i]
		}
		if i < len(data.Questions) {
			out.Questions[i] = math.Max(0, sanitize(data.Questions[i]))
		}
		if i < len(data.Minutes) {
			out.Minutes[i] = math.Max(0, sanitize(data.Minutes[i]))
		}
	}
	return out
}

func maxOf(vs []float64) float64 {
	m := 0.0
	for _, v := range vs {
		m = math.Max(m, v)
	}
	return m
}
