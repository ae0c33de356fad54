package gg

import (
	"github.com/gogpu/vgraph/internal/subpath"
)

// Graphics is an ordered collection of Shapes, rendered back to front,
// with a current drawing style carried forward the way the existing
// immediate-mode Context carries its current Paint between draw calls.
type Graphics struct {
	shapes []*Shape

	currentFill   *Paint
	currentStroke *Paint
	width, height float64
}

// NewGraphics returns an empty Graphics of the given logical size.
func NewGraphics(width, height float64) *Graphics {
	return &Graphics{
		width:         width,
		height:        height,
		currentFill:   NewPaint(),
		currentStroke: nil,
	}
}

// Width and Height report the logical canvas size.
func (g *Graphics) Width() float64  { return g.width }
func (g *Graphics) Height() float64 { return g.height }

// Shapes returns the graphics' shapes in back-to-front order.
func (g *Graphics) Shapes() []*Shape { return g.shapes }

// AddShape appends a shape, inheriting the graphics' current fill and
// stroke paint if the shape doesn't already set its own.
func (g *Graphics) AddShape(s *Shape) {
	if s.Fill == nil {
		s.Fill = g.currentFill
	}
	if s.Stroke == nil {
		s.Stroke = g.currentStroke
	}
	g.shapes = append(g.shapes, s)
}

// SetFillPaint sets the paint new shapes inherit unless they specify
// their own.
func (g *Graphics) SetFillPaint(p *Paint) { g.currentFill = p }

// SetStrokePaint sets the stroke paint new shapes inherit.
func (g *Graphics) SetStrokePaint(p *Paint) { g.currentStroke = p }

// HitTest returns the topmost shape whose fill contains (x, y), or nil
// if none does.
func (g *Graphics) HitTest(x, y float64) *Shape {
	for i := len(g.shapes) - 1; i >= 0; i-- {
		if g.shapes[i].Contains(x, y) {
			return g.shapes[i]
		}
	}
	return nil
}

// Bounds returns the union of every shape's bounding box.
func (g *Graphics) Bounds() subpath.Rect {
	r := subpath.Rect{}
	first := true
	for _, s := range g.shapes {
		b := s.Bounds()
		if first {
			r = b
			first = false
			continue
		}
		if b.X0 < r.X0 {
			r.X0 = b.X0
		}
		if b.Y0 < r.Y0 {
			r.Y0 = b.Y0
		}
		if b.X1 > r.X1 {
			r.X1 = b.X1
		}
		if b.Y1 > r.Y1 {
			r.Y1 = b.Y1
		}
	}
	return r
}
