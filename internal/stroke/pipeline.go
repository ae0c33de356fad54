package stroke

// Pipeline ties dash walking and offset expansion into the sequence a
// stroked path actually needs: flatten to a polyline, split that
// polyline into dash runs (if a dash pattern is set), then run each
// run back through the per-segment offset expander to produce the
// filled outline that gets triangulated. Splitting into runs first and
// expanding each independently is what gives dashes correct caps at
// both ends of every dash, rather than only at the ends of the whole
// contour.
type Pipeline struct {
	Style     Stroke
	Dash      Dash
	Tolerance float64
}

// NewPipeline builds a Pipeline with the expander's default tolerance.
func NewPipeline(style Stroke, dash Dash) *Pipeline {
	return &Pipeline{Style: style, Dash: dash, Tolerance: 0.25}
}

// Expand flattens elements, applies the configured dash pattern, and
// returns one fill outline (as path elements) per resulting dash run.
// With no dash pattern it returns exactly one outline equivalent to a
// plain (undashed) stroke expansion.
func (p *Pipeline) Expand(elements []PathElement) [][]PathElement {
	polys, closedFlags := flattenToPolylines(elements, p.Tolerance)

	var outlines [][]PathElement
	for i, poly := range polys {
		closed := closedFlags[i]
		runs := ApplyDash(poly, closed, p.Dash)
		for _, run := range runs {
			if len(run) < 2 {
				continue
			}
			runClosed := closed && len(p.Dash.Array) == 0
			els := polylineToElements(run, runClosed)
			exp := NewStrokeExpander(p.Style)
			exp.SetTolerance(p.Tolerance)
			outlines = append(outlines, exp.Expand(els))
		}
	}
	return outlines
}

// flattenToPolylines splits a multi-subpath element list into one
// flattened polyline per subpath, alongside whether each was closed.
func flattenToPolylines(elements []PathElement, tolerance float64) ([][]Point, []bool) {
	var polys [][]Point
	var closedFlags []bool

	var cur []Point
	var start Point
	haveStart := false
	closed := false

	flush := func() {
		if len(cur) >= 2 {
			polys = append(polys, cur)
			closedFlags = append(closedFlags, closed)
		}
		cur = nil
		closed = false
	}

	e := &StrokeExpander{tolerance: tolerance}
	if tolerance <= 0 {
		e.tolerance = 0.25
	}

	var lastPt Point
	for _, el := range elements {
		switch v := el.(type) {
		case MoveTo:
			flush()
			cur = append(cur, v.Point)
			start = v.Point
			haveStart = true
			lastPt = v.Point
		case LineTo:
			if !haveStart {
				cur = append(cur, v.Point)
				start = v.Point
				haveStart = true
			} else {
				cur = append(cur, v.Point)
			}
			lastPt = v.Point
		case QuadTo:
			pts := e.flattenQuad(lastPt, v.Control, v.Point)
			cur = append(cur, pts...)
			lastPt = v.Point
		case CubicTo:
			pts := e.flattenCubic(lastPt, v.Control1, v.Control2, v.Point)
			cur = append(cur, pts...)
			lastPt = v.Point
		case Close:
			closed = true
			if haveStart {
				cur = append(cur, start)
			}
			flush()
			haveStart = false
		}
	}
	flush()
	return polys, closedFlags
}

func polylineToElements(poly []Point, closed bool) []PathElement {
	els := make([]PathElement, 0, len(poly)+1)
	els = append(els, MoveTo{poly[0]})
	for _, p := range poly[1:] {
		els = append(els, LineTo{p})
	}
	if closed {
		els = append(els, Close{})
	}
	return els
}
