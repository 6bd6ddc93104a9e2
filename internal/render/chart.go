// Package render draws the results page charts onto a canvas and tracks
// pointer hover and tooltip state for each of them.
package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vytor/enemresultados/internal/canvas"
	"github.com/vytor/enemresultados/internal/models"
)

type Kind string

const (
	KindRadar Kind = "radar"
	KindLine  Kind = "line"
	KindBar   Kind = "bar"
)

var Kinds = []Kind{KindRadar, KindLine, KindBar}

func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

type TooltipItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Color string `json:"color,omitempty"`
}

// Tooltip is the floating legend next to the hovered element, positioned in
// logical pixels relative to the chart's top-left corner.
type Tooltip struct {
	Visible bool          `json:"visible"`
	Left    float64       `json:"left"`
	Top     float64       `json:"top"`
	Title   string        `json:"title,omitempty"`
	Items   []TooltipItem `json:"items,omitempty"`
}

// Chart is a renderer bound to one canvas. Every method is a no-op when the
// canvas is nil.
type Chart interface {
	Kind() Kind
	// RenderSnapshot redraws from the snapshot's series for this kind,
	// clearing hover and hiding the tooltip.
	RenderSnapshot(s *models.Snapshot)
	// PointerMove hit-tests a pointer position and reports whether the
	// hovered element, and so the frame, changed.
	PointerMove(x, y float64) bool
	PointerLeave()
	// HoveredIndex is -1 when nothing is hovered.
	HoveredIndex() int
	Tooltip() Tooltip
	Canvas() *canvas.Canvas
}

// New returns the renderer for kind.
func New(kind Kind, c *canvas.Canvas) (Chart, error) {
	switch kind {
	case KindRadar:
		return NewRadar(c), nil
	case KindLine:
		return NewLine(c), nil
	case KindBar:
		return NewBar(c), nil
	default:
		return nil, fmt.Errorf("unknown chart kind %q", kind)
	}
}

type padding struct {
	top, right, bottom, left float64
}

var plotPadding = padding{top: 30, right: 50, bottom: 50, left: 50}

type base struct {
	c       *canvas.Canvas
	hovered int
	tooltip Tooltip
}

func newBase(c *canvas.Canvas) base {
	return base{c: c, hovered: -1}
}

func (b *base) HoveredIndex() int { return b.hovered }

func (b *base) Canvas() *canvas.Canvas { return b.c }

func (b *base) Tooltip() Tooltip {
	t := b.tooltip
	t.Items = append([]TooltipItem(nil), b.tooltip.Items...)
	return t
}

func (b *base) hide() {
	b.tooltip = Tooltip{}
}

// flipLeft places a card of the given width right of anchorX, or left of it
// when it would cross limit.
func flipLeft(anchorX, gap, width, limit float64) float64 {
	left := anchorX + gap
	if left+width > limit {
		left = anchorX - width - gap
	}
	return left
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
