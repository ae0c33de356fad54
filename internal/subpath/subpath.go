// Package subpath implements the editable cubic-Bezier contour used by
// vgraph paths: a flat point array with knots at indices divisible by 3
// and two surrounding control points per knot (K C C K C C K ...), plus
// the direct-manipulation editing operations (insert, remove, mould,
// move, flatten, smooth) that operate on that layout in place.
package subpath

import "math"

// Point is a 2D point in subpath-local coordinates.
type Point struct {
	X, Y float64
}

func (p Point) add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) scale(s float64) Point { return Point{p.X * s, p.Y * s} }
func (p Point) lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}
func dist(p, q Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Handle selects how Move treats a control point relative to its knot.
type Handle int

const (
	// HandleFree moves only the dragged control point.
	HandleFree Handle = iota
	// HandleAligned also rotates the opposite control point to stay
	// collinear with the knot, preserving its distance.
	HandleAligned
)

// dirty bits mirror the original library's incremental invalidation:
// a mutation only marks what it actually disturbed.
type dirtyFlags uint32

const (
	dirtyBounds dirtyFlags = 1 << iota
	dirtyCommands
	dirtyCoefficients
	dirtyCurveBounds
)

const allDirty = dirtyBounds | dirtyCommands | dirtyCoefficients | dirtyCurveBounds

// Subpath is one closed-or-open cubic-Bezier contour.
type Subpath struct {
	pts    []Point
	closed bool
	dirty  dirtyFlags

	boundsValid bool
	bounds      Rect
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

func emptyRect() Rect {
	return Rect{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
}

func (r *Rect) extend(p Point) {
	if p.X < r.X0 {
		r.X0 = p.X
	}
	if p.Y < r.Y0 {
		r.Y0 = p.Y
	}
	if p.X > r.X1 {
		r.X1 = p.X
	}
	if p.Y > r.Y1 {
		r.Y1 = p.Y
	}
}

// New returns an empty open subpath.
func New() *Subpath {
	return &Subpath{dirty: allDirty}
}

// NewFromPoints wraps an existing K-C-C-K... point array. len(pts) must be
// 1 (mod 3) for an open subpath or a multiple of 3 for a closed one.
func NewFromPoints(pts []Point, closed bool) *Subpath {
	cp := make([]Point, len(pts))
	copy(cp, pts)
	return &Subpath{pts: cp, closed: closed, dirty: allDirty}
}

// Closed reports whether the subpath wraps around from its last knot to
// its first.
func (s *Subpath) Closed() bool { return s.closed }

// SetClosed sets the closed flag without touching the point array.
func (s *Subpath) SetClosed(closed bool) {
	if closed != s.closed {
		s.closed = closed
		s.dirty |= allDirty
	}
}

// NumPoints returns the length of the underlying point array.
func (s *Subpath) NumPoints() int { return len(s.pts) }

// NumCurves returns the number of cubic segments (0 if fewer than one
// knot pair exists).
func (s *Subpath) NumCurves() int {
	n := len(s.pts)
	if n < 4 {
		if n == 1 {
			return 0
		}
	}
	if s.closed {
		return n / 3
	}
	if n < 4 {
		return 0
	}
	return (n - 1) / 3
}

// Point returns the point at index i (no wraparound check beyond the
// current array bounds).
func (s *Subpath) Point(i int) Point { return s.pts[i] }

// Points returns the backing point array; callers must not retain it
// across a mutating call.
func (s *Subpath) Points() []Point { return s.pts }

func (s *Subpath) wrap(i int) int {
	n := len(s.pts)
	if n == 0 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func (s *Subpath) markDirty(f dirtyFlags) { s.dirty |= f }

// MoveTo starts the subpath at p, discarding any existing points.
func (s *Subpath) MoveTo(p Point) {
	s.pts = append(s.pts[:0], p)
	s.closed = false
	s.markDirty(allDirty)
}

// LineTo appends a straight segment to p, represented as a degenerate
// cubic whose controls sit at the 1/3 and 2/3 chord points.
func (s *Subpath) LineTo(p Point) {
	if len(s.pts) == 0 {
		s.MoveTo(p)
		return
	}
	p0 := s.pts[len(s.pts)-1]
	c1 := p0.lerp(p, 1.0/3.0)
	c2 := p0.lerp(p, 2.0/3.0)
	s.pts = append(s.pts, c1, c2, p)
	s.markDirty(allDirty)
}

// CurveTo appends a full cubic segment with explicit control points.
func (s *Subpath) CurveTo(c1, c2, p Point) {
	if len(s.pts) == 0 {
		s.MoveTo(Point{})
	}
	s.pts = append(s.pts, c1, c2, p)
	s.markDirty(allDirty)
}

// Close marks the subpath closed, implicitly connecting the last knot
// back to the first with whatever segment shape was last described (a
// straight closing line if the caller does not add one explicitly).
func (s *Subpath) Close() {
	s.closed = true
	s.markDirty(allDirty)
}

// --- curve evaluation -------------------------------------------------

func deCasteljauCubic(p0, p1, p2, p3 Point, t float64) Point {
	ab := p0.lerp(p1, t)
	bc := p1.lerp(p2, t)
	cd := p2.lerp(p3, t)
	abbc := ab.lerp(bc, t)
	bccd := bc.lerp(cd, t)
	return abbc.lerp(bccd, t)
}

// curvePoints returns the four control points of curve index k
// (0-based, wrapping for closed subpaths).
func (s *Subpath) curvePoints(k int) (p0, p1, p2, p3 Point, ok bool) {
	n := len(s.pts)
	if n < 4 {
		return
	}
	i0 := k * 3
	if s.closed {
		i0 = s.wrap(i0)
		return s.pts[i0], s.pts[s.wrap(i0+1)], s.pts[s.wrap(i0+2)], s.pts[s.wrap(i0+3)], true
	}
	if i0+3 >= n {
		return
	}
	return s.pts[i0], s.pts[i0+1], s.pts[i0+2], s.pts[i0+3], true
}

// Eval evaluates a global parameter t in [0, NumCurves()) (fractional
// part selects the position within the curve).
func (s *Subpath) Eval(t float64) Point {
	nc := s.NumCurves()
	if nc == 0 {
		if len(s.pts) > 0 {
			return s.pts[0]
		}
		return Point{}
	}
	if t < 0 {
		t = 0
	}
	max := float64(nc)
	if t > max {
		t = max
	}
	k := int(t)
	if k >= nc {
		k = nc - 1
	}
	local := t - float64(k)
	p0, p1, p2, p3, ok := s.curvePoints(k)
	if !ok {
		return Point{}
	}
	return deCasteljauCubic(p0, p1, p2, p3, local)
}

// Bounds returns the (lazily recomputed) control-polygon bounding box.
func (s *Subpath) Bounds() Rect {
	if s.dirty&dirtyBounds == 0 && s.boundsValid {
		return s.bounds
	}
	r := emptyRect()
	for _, p := range s.pts {
		r.extend(p)
	}
	s.bounds = r
	s.boundsValid = true
	s.dirty &^= dirtyBounds
	return r
}

// --- editing operations -----------------------------------------------

// InsertCurveAt subdivides the curve containing global parameter
// globalT at that position, inserting a new knot there. Returns the
// index of the newly created knot, matching the point-shuffle used by
// the original library's insertCurveAt: the curve is split into two
// cubics via de Casteljau subdivision and the seven resulting points
// replace the original four.
func (s *Subpath) InsertCurveAt(globalT float64) int {
	nc := s.NumCurves()
	if nc == 0 {
		return -1
	}
	if globalT < 0 {
		globalT = 0
	}
	max := float64(nc)
	if globalT >= max {
		globalT = max - 1e-9
	}
	curve := int(globalT)
	t := globalT - float64(curve)

	p0, p1, p2, p3, ok := s.curvePoints(curve)
	if !ok {
		return -1
	}

	p0_1 := p0.lerp(p1, t)
	p1_2 := p1.lerp(p2, t)
	p2_3 := p2.lerp(p3, t)
	p01_12 := p0_1.lerp(p1_2, t)
	p12_23 := p1_2.lerp(p2_3, t)
	p0112_1223 := p01_12.lerp(p12_23, t)

	i0 := curve * 3
	if s.closed {
		i0 = s.wrap(i0)
	}

	newPts := make([]Point, 0, len(s.pts)+3)
	// Walk the array starting at i0 for 4 points (wrapping), replacing
	// them with the 7-point subdivision, then append the remainder.
	if !s.closed {
		newPts = append(newPts, s.pts[:i0]...)
		newPts = append(newPts, p0, p0_1, p01_12, p0112_1223, p12_23, p2_3, p3)
		newPts = append(newPts, s.pts[i0+4:]...)
		s.pts = newPts
		s.fixLoop()
		s.markDirty(allDirty)
		return i0 + 3
	}

	// Closed subpath: i0..i0+3 may wrap around the array end.
	n := len(s.pts)
	rotated := make([]Point, n)
	for j := 0; j < n; j++ {
		rotated[j] = s.pts[s.wrap(i0+j)]
	}
	newPts = append(newPts, p0, p0_1, p01_12, p0112_1223, p12_23, p2_3, p3)
	newPts = append(newPts, rotated[4:]...)
	s.pts = newPts
	s.fixLoop()
	s.markDirty(allDirty)
	return 3
}

// isLineAt reports whether curve k is a straight segment (its controls
// sit at the 1/3 and 2/3 chord points within eps).
func (s *Subpath) isLineAt(k int) bool {
	p0, p1, p2, p3, ok := s.curvePoints(k)
	if !ok {
		return false
	}
	const eps = 1e-4
	e1 := p0.lerp(p3, 1.0/3.0)
	e2 := p0.lerp(p3, 2.0/3.0)
	return dist(p1, e1) < eps && dist(p2, e2) < eps
}

// RemoveCurve deletes curve index k, reshaping its neighbors so the
// contour passes through roughly the same path: a pure-line removal
// just drops the intervening knot, while a curved removal back-solves
// the two surviving control points from the chord subdivision so the
// remaining curve approximates the original shape.
func (s *Subpath) RemoveCurve(k int) {
	nc := s.NumCurves()
	if nc == 0 {
		return
	}
	k = ((k % nc) + nc) % nc

	if s.isLineAt(k) {
		s.remove(k*3+1, 3)
		return
	}

	p0, p1, p2, p3, ok := s.curvePoints(k)
	if !ok {
		return
	}

	// Estimate t via the chord subdivision relation, falling back to
	// the curve midpoint when the estimate is numerically unstable.
	est := func(a0, a1, a2, a3 float64) (float64, bool) {
		d1 := a1 - a0
		d2 := a2 - a3
		denom := d1 + d2
		if math.Abs(denom) < 1e-4 {
			return 0, false
		}
		return d1 / denom, true
	}
	tx, okx := est(p0.X, p1.X, p2.X, p3.X)
	ty, oky := est(p0.Y, p1.Y, p2.Y, p3.Y)
	var t float64
	switch {
	case okx && oky:
		t = (tx + ty) / 2
	case okx:
		t = tx
	case oky:
		t = ty
	default:
		t = 0.5
	}
	if t <= 0 || t >= 1 {
		t = 0.5
	}
	sInv := 1 - t

	// Back-solve the two surviving controls from the endpoint chords.
	newP1 := Point{
		X: (p0.lerp(p1, t).X - sInv*p0.X) / t,
		Y: (p0.lerp(p1, t).Y - sInv*p0.Y) / t,
	}
	newP2 := Point{
		X: (p2.lerp(p3, t).X - t*p3.X) / sInv,
		Y: (p2.lerp(p3, t).Y - t*p3.Y) / sInv,
	}

	i0 := k * 3
	if s.closed {
		i0 = s.wrap(i0)
	}
	s.setPoint(i0+1, newP1)
	s.setPoint(i0+2, newP2)
	s.remove(i0+4, 3)
}

func (s *Subpath) setPoint(i int, p Point) {
	s.pts[s.wrap(i)] = p
	s.markDirty(allDirty)
}

// remove deletes n points starting at (wrapped) index from, shrinking
// the array in place.
func (s *Subpath) remove(from, n int) {
	total := len(s.pts)
	if n >= total {
		s.pts = nil
		s.markDirty(allDirty)
		return
	}
	from = s.wrap(from)
	out := make([]Point, 0, total-n)
	for j := 0; j < total-n; j++ {
		out = append(out, s.pts[s.wrap(from+n+j)])
	}
	// out is now rotated so it starts right after the removed span;
	// rotate it back so index 0 still refers to the same knot that
	// preceded the removed span when the subpath isn't closed.
	if !s.closed {
		rot := total - n - from
		if rot < 0 {
			rot += len(out)
		}
		if len(out) > 0 {
			rot %= len(out)
			out = append(out[rot:], out[:rot]...)
		}
	}
	s.pts = out
	s.fixLoop()
	s.markDirty(allDirty)
}

// fixLoop keeps a closed subpath's point count a multiple of 3.
func (s *Subpath) fixLoop() {
	if !s.closed {
		return
	}
	for len(s.pts)%3 != 0 && len(s.pts) > 0 {
		s.pts = s.pts[:len(s.pts)-1]
	}
}

// Mould reshapes the curve containing globalT so it passes through
// (x, y) at that parameter, following the paper.js handle-reconstruction
// method: the new through-point B is blended into a control anchor C
// using the cubic weight u = s^3 / (t^3 + s^3), then the two adjacent
// handles are extrapolated back out from the de Casteljau waypoints
// that would have produced B.
func (s *Subpath) Mould(globalT, x, y float64) {
	nc := s.NumCurves()
	if nc == 0 {
		return
	}
	if globalT < 0 {
		globalT = 0
	}
	max := float64(nc)
	if globalT >= max {
		globalT = max - 1e-9
	}
	k := int(globalT)
	t := globalT - float64(k)
	if t <= 1e-9 || t >= 1-1e-9 {
		return
	}

	p0, p1, p2, p3, ok := s.curvePoints(k)
	if !ok {
		return
	}
	sInv := 1 - t

	t3 := t * t * t
	s3 := sInv * sInv * sInv
	denom := t3 + s3
	if denom == 0 {
		return
	}
	u := s3 / denom
	v := 1 - u
	ratio := math.Abs(denom-1) / denom

	start := p0
	end := p3
	C := Point{start.X*u + end.X*v, start.Y*u + end.Y*v}

	// De Casteljau waypoints for the original curve at t.
	ab := p0.lerp(p1, t)
	bc := p1.lerp(p2, t)
	cd := p2.lerp(p3, t)
	abbc := ab.lerp(bc, t)
	bccd := bc.lerp(cd, t)
	bOld := abbc.lerp(bccd, t)

	B := Point{x, y}
	e1 := Point{B.X + (abbc.X - bOld.X), B.Y + (abbc.Y - bOld.Y)}
	e2 := Point{B.X + (bccd.X - bOld.X), B.Y + (bccd.Y - bOld.Y)}

	if ratio == 0 {
		return
	}
	A := Point{B.X + (B.X-C.X)/ratio, B.Y + (B.Y-C.Y)/ratio}

	v1 := Point{A.X + (e1.X-A.X)/sInv, A.Y + (e1.Y-A.Y)/sInv}
	v2 := Point{A.X + (e2.X-A.X)/t, A.Y + (e2.Y-A.Y)/t}

	cp1 := Point{start.X + (v1.X-start.X)/t, start.Y + (v1.Y-start.Y)/t}
	cp2 := Point{end.X + (v2.X-end.X)/sInv, end.Y + (v2.Y-end.Y)/sInv}

	i0 := k * 3
	if s.closed {
		i0 = s.wrap(i0)
	}
	s.setPoint(i0+1, cp1)
	s.setPoint(i0+2, cp2)
}

// MakeFlat collapses the handle adjacent to knot k (dir < 0: the
// incoming handle, dir > 0: the outgoing handle) onto the 1/3 chord
// point toward the next-but-one knot, producing a straight segment on
// that side. k must index a knot (a multiple of 3); otherwise this is
// a no-op.
func (s *Subpath) MakeFlat(k int, dir int) {
	n := len(s.pts)
	if n == 0 || k%3 != 0 {
		return
	}
	if dir <= 0 {
		u := s.wrap(k - 3)
		w := s.wrap(k - 1)
		chord := s.pts[k].sub(s.pts[u])
		s.setPoint(w, s.pts[k].sub(chord.scale(1.0/3.0)))
	}
	if dir >= 0 {
		u := s.wrap(k + 3)
		w := s.wrap(k + 1)
		chord := s.pts[u].sub(s.pts[k])
		s.setPoint(w, s.pts[k].add(chord.scale(1.0 / 3.0)))
	}
}

// MakeSmooth reshapes the handles around knot k into a Catmull-Rom-like
// smooth join (paper.js Segment.smooth), with exponent a controlling
// how curvature is distributed by neighbor distance (a=1 is the
// standard centripetal-ish variant used here). Falls back to MakeFlat
// when the chord geometry degenerates (near-zero neighbor distance
// product).
func (s *Subpath) MakeSmooth(k int, dir int, a float64) {
	n := len(s.pts)
	if n == 0 || k%3 != 0 {
		return
	}
	hasPrev := s.closed || k > 0
	hasNext := s.closed || k+3 < n

	p0 := s.pts[s.wrap(k-3)]
	p1 := s.pts[k]
	p2 := s.pts[s.wrap(k+3)]

	if !hasPrev && hasNext {
		// Mirror the missing previous knot through p1.
		p0 = Point{2*p1.X - p2.X, 2*p1.Y - p2.Y}
	}
	if hasPrev && !hasNext {
		p2 = Point{2*p1.X - p0.X, 2*p1.Y - p0.Y}
	}
	if !hasPrev && !hasNext {
		return
	}

	d1 := dist(p0, p1)
	d2 := dist(p1, p2)
	d1a := math.Pow(d1, a)
	d2a := math.Pow(d2, a)
	d1_2a := d1a * d1a
	d2_2a := d2a * d2a

	if dir <= 0 {
		A := 2*d2_2a + 3*d2a*d1a + d1_2a
		N := 3 * d2a * (d2a + d1a)
		if math.Abs(N) < 1e-6 {
			s.MakeFlat(k, -1)
			return
		}
		ratio := A / N
		dx := p0.X - p2.X
		dy := p0.Y - p2.Y
		w := s.wrap(k - 1)
		s.setPoint(w, Point{p1.X - dx*ratio, p1.Y - dy*ratio})
	}
	if dir >= 0 {
		A := 2*d1_2a + 3*d1a*d2a + d2_2a
		N := 3 * d1a * (d1a + d2a)
		if math.Abs(N) < 1e-6 {
			s.MakeFlat(k, 1)
			return
		}
		ratio := A / N
		dx := p2.X - p0.X
		dy := p2.Y - p0.Y
		w := s.wrap(k + 1)
		s.setPoint(w, Point{p1.X + dx*ratio, p1.Y + dy*ratio})
	}
}

func alignHandle(knot, opposite, dragged Point) Point {
	mag := dist(opposite, knot)
	dx, dy := dragged.X-knot.X, dragged.Y-knot.Y
	phi := math.Atan2(dy, dx) + math.Pi
	return Point{knot.X + mag*math.Cos(phi), knot.Y + mag*math.Sin(phi)}
}

// Move drags the point at index i by (dx, dy). If i is a knot (i%3==0),
// its two adjacent control points move with it unless the segment on
// that side was a straight line, in which case the line is kept
// straight via MakeFlat instead of dragging the handle along. If i is
// a control point and handle is HandleAligned, the opposite control
// point around the same knot is rotated to stay collinear.
func (s *Subpath) Move(i int, dx, dy float64, handle Handle) {
	n := len(s.pts)
	if n == 0 {
		return
	}
	i = s.wrap(i)

	if i%3 == 0 {
		k1 := i
		f0 := s.closed || k1 >= 3
		f2 := s.closed || k1+3 < n
		lineBefore := f0 && s.isLineAt(((k1-3+n)/3)%max(1, s.NumCurves()))
		lineAfter := f2 && s.isLineAt((k1 / 3) % max(1, s.NumCurves()))

		s.setPoint(i, s.pts[i].add(Point{dx, dy}))

		if lineBefore {
			s.MakeFlat(k1, -1)
		} else if f0 {
			w := s.wrap(i - 1)
			s.setPoint(w, s.pts[w].add(Point{dx, dy}))
		}
		if lineAfter {
			s.MakeFlat(k1, 1)
		} else if f2 {
			w := s.wrap(i + 1)
			s.setPoint(w, s.pts[w].add(Point{dx, dy}))
		}
		return
	}

	newPos := s.pts[i].add(Point{dx, dy})
	s.setPoint(i, newPos)

	if handle != HandleAligned {
		return
	}
	// Find the owning knot and the opposite control index.
	var knotIdx, oppIdx int
	if i%3 == 1 {
		knotIdx = s.wrap(i - 1)
		oppIdx = s.wrap(i - 2)
	} else {
		knotIdx = s.wrap(i + 1)
		oppIdx = s.wrap(i + 2)
	}
	if oppIdx < 0 || oppIdx >= n {
		return
	}
	knot := s.pts[knotIdx]
	opp := s.pts[oppIdx]
	s.setPoint(oppIdx, alignHandle(knot, opp, newPos))
}

// Orientation returns +1 for a counter-clockwise contour and -1 for
// clockwise, evaluated via the shoelace sum over the control polygon.
func (s *Subpath) Orientation() int {
	n := len(s.pts)
	if n < 3 {
		return 1
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		a := s.pts[i]
		b := s.pts[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	if sum < 0 {
		return -1
	}
	return 1
}

// SetOrientation reverses the point array (and the direction every
// curve runs) if needed so Orientation() matches want.
func (s *Subpath) SetOrientation(want int) {
	if s.Orientation() == want {
		return
	}
	s.Invert()
}

// Invert reverses the direction of the whole contour in place.
func (s *Subpath) Invert() {
	n := len(s.pts)
	if n == 0 {
		return
	}
	out := make([]Point, n)
	for i := 0; i < n; i++ {
		out[i] = s.pts[n-1-i]
	}
	s.pts = out
	s.markDirty(allDirty)
}

// Clean removes consecutive duplicate points closer than eps, which
// can otherwise destabilize triangulation and offsetting after
// dashing or moulding.
func (s *Subpath) Clean(eps float64) {
	n := len(s.pts)
	if n < 2 {
		return
	}
	out := make([]Point, 0, n)
	out = append(out, s.pts[0])
	for i := 1; i < n; i++ {
		if dist(s.pts[i], out[len(out)-1]) > eps {
			out = append(out, s.pts[i])
		}
	}
	if s.closed && len(out) > 1 && dist(out[0], out[len(out)-1]) <= eps {
		out = out[:len(out)-1]
	}
	s.fixLoopTo(&out)
	s.pts = out
	s.markDirty(allDirty)
}

func (s *Subpath) fixLoopTo(pts *[]Point) {
	if !s.closed {
		return
	}
	for len(*pts)%3 != 0 && len(*pts) > 0 {
		*pts = (*pts)[:len(*pts)-1]
	}
}

// Refine subdivides every curve into factor equal-arclength-parameter
// pieces, increasing the knot count without changing the shape. Used
// to equalize topology before interpolating between two subpaths with
// a large point-count gap.
func (s *Subpath) Refine(factor int) {
	if factor <= 1 {
		return
	}
	nc := s.NumCurves()
	if nc == 0 {
		return
	}
	// Insert (factor-1) interior knots per original curve, working
	// back to front so earlier indices stay valid.
	for c := nc - 1; c >= 0; c-- {
		for j := factor - 1; j >= 1; j-- {
			t := float64(c) + float64(j)/float64(factor)
			s.InsertCurveAt(t)
		}
	}
}
