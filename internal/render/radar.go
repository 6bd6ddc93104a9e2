package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/vytor/enemresultados/internal/canvas"
	"github.com/vytor/enemresultados/internal/models"
	"github.com/vytor/enemresultados/internal/series"
)

const (
	radarRings       = 4
	radarLabelOffset = 35
	radarLineHeight  = 16
	radarTooltipW    = 200
	// twelve glyphs of the 7px label face
	radarLabelMaxWidth = 84
)

var (
	radarCurrentFill   = canvas.RGBA(147, 147, 255, 0.20)
	radarCurrentStroke = canvas.Hex("#8b8bff")
	radarPrevFill      = canvas.RGBA(147, 147, 255, 0.08)
	radarPrevStroke    = canvas.Hex("#c4c4ff")
	radarPrevPoint     = canvas.Hex("#6ee7b7")
	radarHoverFill     = canvas.RGBA(200, 200, 200, 0.06)
)

// Radar compares the current and previous period averages per knowledge area.
type Radar struct {
	base
	data   models.RadarSeries
	cx, cy float64
	radius float64
}

func NewRadar(c *canvas.Canvas) *Radar {
	return &Radar{base: newBase(c)}
}

func (r *Radar) Kind() Kind { return KindRadar }

func (r *Radar) RenderSnapshot(s *models.Snapshot) {
	if s == nil {
		r.Render(models.RadarSeries{})
		return
	}
	r.Render(s.Radar)
}

func (r *Radar) Render(data models.RadarSeries) {
	if r.c == nil {
		return
	}
	r.data = normalizeRadar(data)
	r.hovered = -1
	r.hide()

	w, h := float64(r.c.Width()), float64(r.c.Height())
	r.cx, r.cy = w/2, h/2+20
	r.radius = math.Max(0, math.Min(r.cx, r.cy)-80)
	r.draw()
}

func (r *Radar) PointerMove(x, y float64) bool {
	if r.c == nil {
		return false
	}
	idx, ok := RadarSector(x-r.cx, y-r.cy, r.radius, len(r.data.Labels))
	if !ok {
		idx = -1
	}
	if idx == r.hovered {
		return false
	}
	r.hovered = idx
	r.draw()
	if idx < 0 {
		r.hide()
		return true
	}

	p := r.point(idx, r.data.Current[idx])
	r.tooltip = Tooltip{
		Visible: true,
		Left:    flipLeft(p.X, 24, radarTooltipW, float64(r.c.Width())),
		Top:     p.Y - 40,
		Title:   r.data.Labels[idx],
		Items: []TooltipItem{
			{Label: "Atual", Value: fmt.Sprintf("%d%%", r.data.Current[idx]), Color: "#8b8bff"},
			{Label: "Anterior", Value: fmt.Sprintf("%d%%", r.data.Previous[idx]), Color: "#6ee7b7"},
		},
	}
	return true
}

func (r *Radar) PointerLeave() {
	if r.c == nil || r.hovered < 0 {
		return
	}
	r.hovered = -1
	r.hide()
	r.draw()
}

func (r *Radar) step() float64 {
	return 2 * math.Pi / float64(len(r.data.Labels))
}

func (r *Radar) angle(i int) float64 {
	return r.step()*float64(i) - math.Pi/2
}

func (r *Radar) point(i, value int) canvas.Point {
	dist := float64(value) / 100 * r.radius
	a := r.angle(i)
	return canvas.Point{X: r.cx + math.Cos(a)*dist, Y: r.cy + math.Sin(a)*dist}
}

func (r *Radar) polygon(values []int) []canvas.Point {
	pts := make([]canvas.Point, len(values))
	for i, v := range values {
		pts[i] = r.point(i, v)
	}
	return pts
}

func (r *Radar) draw() {
	r.c.Clear(canvas.White)
	n := len(r.data.Labels)

	for ring := 1; ring <= radarRings; ring++ {
		level := ring * 100 / radarRings
		ringPts := make([]canvas.Point, n)
		for i := range ringPts {
			ringPts[i] = r.point(i, level)
		}
		r.c.Polygon(ringPts, nil, canvas.GridGray, 1)
	}
	for i := 0; i < n; i++ {
		tip := r.point(i, 100)
		r.c.Line(r.cx, r.cy, tip.X, tip.Y, canvas.GridGray, 1)
	}

	if r.hovered >= 0 {
		step := r.step()
		from := step*(float64(r.hovered)-0.5) - math.Pi/2
		to := step*(float64(r.hovered)+0.5) - math.Pi/2
		r.c.Wedge(r.cx, r.cy, r.radius, from, to, radarHoverFill)
	}

	r.c.Polygon(r.polygon(r.data.Previous), radarPrevFill, radarPrevStroke, 2)
	r.c.Polygon(r.polygon(r.data.Current), radarCurrentFill, radarCurrentStroke, 2)

	for i := 0; i < n; i++ {
		prev := r.point(i, r.data.Previous[i])
		r.c.Circle(prev.X, prev.Y, 3, radarPrevPoint, nil, 0)
		cur := r.point(i, r.data.Current[i])
		r.c.Circle(cur.X, cur.Y, 3, radarCurrentStroke, nil, 0)
	}
	if r.hovered >= 0 {
		p := r.point(r.hovered, r.data.Current[r.hovered])
		r.c.Circle(p.X, p.Y, 5, canvas.GridGray, canvas.White, 2)
	}

	for i, label := range r.data.Labels {
		a := r.angle(i)
		lx := r.cx + math.Cos(a)*(r.radius+radarLabelOffset)
		ly := r.cy + math.Sin(a)*(r.radius+radarLabelOffset)
		lines := wrapLabel(label, r.c.TextWidth)
		offset := float64(len(lines)-1) * radarLineHeight / 2
		for j, line := range lines {
			r.c.Text(line, lx, ly-offset+float64(j)*radarLineHeight, canvas.TextGray, canvas.AlignCenter, canvas.AlignMiddle)
		}
	}
}

// normalizeRadar fills in the area labels and pads or clamps values so every
// axis has a current and previous value in 0..100.
func normalizeRadar(data models.RadarSeries) models.RadarSeries {
	labels := data.Labels
	if len(labels) == 0 {
		labels = series.AreaNames()
	}
	out := models.RadarSeries{
		Labels:   append([]string(nil), labels...),
		Current:  make([]int, len(labels)),
		Previous: make([]int, len(labels)),
	}
	for i := range labels {
		if i < len(data.Current) {
			out.Current[i] = clampInt(data.Current[i])
		}
		if i < len(data.Previous) {
			out.Previous[i] = clampInt(data.Previous[i])
		}
	}
	return out
}

func clampInt(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// wrapLabel breaks area names wider than radarLabelMaxWidth at their last
// space so they fit around the chart.
func wrapLabel(label string, width func(string) float64) []string {
	if width(label) <= radarLabelMaxWidth {
		return []string{label}
	}
	i := strings.LastIndex(label, " ")
	if i <= 0 {
		return []string{label}
	}
	return []string{label[:i], label[i+1:]}
}
