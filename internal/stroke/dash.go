package stroke

import "math"

// Segment is one edge of a flattened polyline, carrying its arc-length
// offset from the start of the walk so a dash pattern can be applied
// by arc length rather than by vertex count.
type segment struct {
	begin, end Point
	at         float64 // cumulative length at the start of this segment
	length     float64
	dir        Vec2 // unit direction, begin -> end
}

func (s segment) pointAt(d float64) Point {
	if s.length <= 0 {
		return s.begin
	}
	t := d / s.length
	return s.begin.Lerp(s.end, t)
}

// buildSegments turns a closed or open polyline into an edge list
// rotated so it starts at the given arc-length offset (normalized into
// [0, totalLength)), splitting the segment straddling that offset into
// two so the walk always starts exactly on an edge boundary. This
// mirrors how a dash pattern's starting offset is applied against a
// flattened contour: distance is measured continuously along the
// polygon, not reset at each vertex.
func buildSegments(poly []Point, closed bool, offset float64) []segment {
	n := len(poly)
	if n < 2 {
		return nil
	}
	m := n - 1
	if closed {
		m = n
	}

	raw := make([]segment, 0, m)
	total := 0.0
	for i := 0; i < m; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		d := b.Sub(a)
		length := d.Length()
		dir := Vec2{}
		if length > 0 {
			dir = d.Scale(1 / length)
		}
		raw = append(raw, segment{begin: a, end: b, at: total, length: length, dir: dir})
		total += length
	}
	if total <= 0 {
		return raw
	}

	off := math.Mod(offset, total)
	if off < 0 {
		off += total
	}
	if off == 0 {
		return raw
	}

	// Find the segment straddling the offset and split it.
	idx := 0
	for idx < len(raw) && raw[idx].at+raw[idx].length < off {
		idx++
	}
	if idx >= len(raw) {
		return raw
	}
	s := raw[idx]
	localOff := off - s.at
	splitPoint := s.pointAt(localOff)

	head := segment{begin: splitPoint, end: s.end, at: 0, length: s.length - localOff, dir: s.dir}
	tail := segment{begin: s.begin, end: splitPoint, at: 0, length: localOff, dir: s.dir}

	rotated := make([]segment, 0, len(raw)+1)
	rotated = append(rotated, head)
	rotated = append(rotated, raw[idx+1:]...)
	rotated = append(rotated, raw[:idx]...)
	rotated = append(rotated, tail)

	at := 0.0
	for i := range rotated {
		rotated[i].at = at
		at += rotated[i].length
	}
	return rotated
}

// turtle walks a rotated segment list, alternately drawing (pen down)
// and skipping (pen up) arc-length spans, the way a dash pattern
// consumes a flattened contour.
type turtle struct {
	segs []segment
	idx  int
	t    float64 // distance already consumed within segs[idx]
	down bool
	cur  []Point // points accumulated for the current pen-down run
	runs [][]Point
}

func newTurtle(segs []segment, down bool) *turtle {
	return &turtle{segs: segs, down: down}
}

// push advances the turtle by arc-length d, recording polyline runs for
// every pen-down span it crosses.
func (tt *turtle) push(d float64) {
	for d > 0 && tt.idx < len(tt.segs) {
		seg := tt.segs[tt.idx]
		remaining := seg.length - tt.t
		if remaining <= 0 {
			tt.idx++
			tt.t = 0
			continue
		}
		step := math.Min(d, remaining)
		if tt.down {
			a := seg.pointAt(tt.t)
			b := seg.pointAt(tt.t + step)
			tt.draw(a, b)
		}
		tt.t += step
		d -= step
		if tt.t >= seg.length {
			tt.idx++
			tt.t = 0
		}
	}
}

func (tt *turtle) draw(a, b Point) {
	if len(tt.cur) == 0 {
		tt.cur = append(tt.cur, a)
	}
	tt.cur = append(tt.cur, b)
}

// toggle flips the pen state, closing out the current run if the pen
// was down.
func (tt *turtle) toggle() {
	if tt.down && len(tt.cur) > 1 {
		tt.runs = append(tt.runs, tt.cur)
	}
	tt.cur = nil
	tt.down = !tt.down
}

func (tt *turtle) finish() [][]Point {
	if tt.down && len(tt.cur) > 1 {
		tt.runs = append(tt.runs, tt.cur)
	}
	return tt.runs
}

// Dash describes a dash pattern applied to a flattened polyline: an
// alternating sequence of drawn/skipped arc-length spans plus a
// starting offset into that sequence.
type Dash struct {
	Array  []float64
	Offset float64
}

// ApplyDash walks poly (already flattened to straight segments) and
// returns the set of polylines that should actually be stroked, given
// d. An empty or degenerate dash pattern returns the input unchanged as
// a single run.
func ApplyDash(poly []Point, closed bool, d Dash) [][]Point {
	if len(d.Array) == 0 {
		return [][]Point{poly}
	}
	sum := 0.0
	for _, v := range d.Array {
		sum += v
	}
	if sum <= 1e-6 {
		return [][]Point{poly}
	}

	segs := buildSegments(poly, closed, d.Offset)
	if len(segs) == 0 {
		return nil
	}

	tt := newTurtle(segs, true)
	i := 0
	for {
		span := d.Array[i%len(d.Array)]
		if span <= 0 {
			i++
			if i > len(d.Array)*4 {
				break
			}
			tt.toggle()
			continue
		}
		tt.push(span)
		tt.toggle()
		i++
		if tt.idx >= len(tt.segs) {
			break
		}
	}
	return tt.finish()
}
