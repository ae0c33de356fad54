package gg

import (
	"github.com/gogpu/vgraph/internal/subpath"
)

// Animate interpolates a Shape's subpaths toward target at parameter
// t in [0, 1], writing the result into a new Shape. It equalizes
// topology first via Morphify so point-count-mismatched shapes can
// still be animated between, matching the count-reconciliation
// behavior described for dash patterns and subpath structure: a
// mismatch that can be reconciled is silently fixed up (with a logged
// warning), and only a mismatch that cannot be reconciled (different
// subpath counts) surfaces as an error.
func Animate(a, b *Shape, t float64) (*Shape, error) {
	if len(a.subpaths) != len(b.subpaths) {
		Logger().Warn("animate: subpath count mismatch, cannot interpolate",
			"a", len(a.subpaths), "b", len(b.subpaths))
		return nil, newError("Animate", ErrCountMismatch, nil)
	}

	out := NewShape()
	if t <= 0 {
		return a.Clone(), nil
	}
	if t >= 1 {
		return b.Clone(), nil
	}

	for i := range a.subpaths {
		sa, sb := a.subpaths[i], b.subpaths[i]
		matchTopology(sa, sb)
		out.subpaths = append(out.subpaths, lerpSubpath(sa, sb, t))
	}
	out.Fill = a.Fill
	out.Stroke = a.Stroke
	out.Dash = lerpDash(a.Dash, b.Dash, t)
	out.Opacity = a.Opacity + (b.Opacity-a.Opacity)*t
	return out, nil
}

// matchTopology brings sa and sb to the same point count in place,
// refining whichever has fewer curves by an integer factor when the
// gap is large, and otherwise inserting individual curves at evenly
// spaced parameters until the counts match. Mutates its arguments,
// mirroring how an animated pair of subpaths is expected to converge
// in structure once and stay matched across subsequent frames.
func matchTopology(sa, sb *subpath.Subpath) {
	na, nb := sa.NumCurves(), sb.NumCurves()
	if na == nb {
		return
	}

	grow := sa
	shrinkTarget := nb
	if nb < na {
		grow = sb
		shrinkTarget = na
	}

	cur := grow.NumCurves()
	if cur == 0 {
		return
	}

	if shrinkTarget >= cur*2 {
		factor := shrinkTarget / cur
		if factor > 1 {
			grow.Refine(factor)
			cur = grow.NumCurves()
		}
	}

	for cur < shrinkTarget {
		// Insert at the midpoint of curve 0 repeatedly; a smarter
		// placement would spread insertions evenly, but inserting at a
		// fixed relative offset each time keeps them distributed as
		// the curve count grows.
		t := float64(cur) / 2
		grow.InsertCurveAt(t)
		cur = grow.NumCurves()
	}
}

func lerpSubpath(a, b *subpath.Subpath, t float64) *subpath.Subpath {
	na, nb := a.NumPoints(), b.NumPoints()
	n := na
	if nb < n {
		n = nb
	}
	out := make([]subpath.Point, n)
	for i := 0; i < n; i++ {
		pa := a.Point(i)
		pb := b.Point(i)
		out[i] = subpath.Point{
			X: pa.X + (pb.X-pa.X)*t,
			Y: pa.Y + (pb.Y-pa.Y)*t,
		}
	}
	return subpath.NewFromPoints(out, a.Closed())
}

func lerpDash(a, b *Dash, t float64) *Dash {
	if a == nil && b == nil {
		return nil
	}
	if a == nil || b == nil {
		Logger().Warn("animate: cannot interpolate over mismatched dash presence, snapping")
		if t < 0.5 {
			return a
		}
		return b
	}
	if len(a.Array) != len(b.Array) {
		Logger().Warn("animate: cannot animate over mismatched dash sizes, snapping",
			"a", len(a.Array), "b", len(b.Array))
		if t < 0.5 {
			return a
		}
		return b
	}
	arr := make([]float64, len(a.Array))
	for i := range arr {
		arr[i] = a.Array[i] + (b.Array[i]-a.Array[i])*t
	}
	d := NewDash(arr...)
	if d != nil {
		d = d.WithOffset(a.Offset + (b.Offset-a.Offset)*t)
	}
	return d
}

// Morphify reconciles the subpath topology of two shapes in place so
// Animate can interpolate between them, without otherwise changing
// their geometry. Call it once up front if you plan to call Animate
// repeatedly (e.g. once per frame) to avoid re-matching topology every
// frame.
func Morphify(a, b *Shape) error {
	if len(a.subpaths) != len(b.subpaths) {
		return newError("Morphify", ErrCountMismatch, nil)
	}
	for i := range a.subpaths {
		matchTopology(a.subpaths[i], b.subpaths[i])
	}
	return nil
}
