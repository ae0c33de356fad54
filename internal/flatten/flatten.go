// Package flatten converts cubic Bezier curves into polylines, the way
// a rasterizer or a stroke offsetter needs them. It offers two
// interchangeable strategies behind the Flattener interface: an
// adaptive tolerance-driven flattener (the default) and a fixed-depth
// flattener for callers that need a predictable point count (e.g.
// matching topology across an animation).
package flatten

import "math"

// Point is a plain 2D point, duplicated here to avoid an import cycle
// with the root package (mirrors the pattern used throughout this
// module's internal packages).
type Point struct {
	X, Y float64
}

// MaxSubdivisions caps recursive flattening depth regardless of the
// configured tolerance, preventing runaway subdivision on degenerate
// input (coincident control points, near-infinite curvature).
const MaxSubdivisions = 6

// Flattener turns a single cubic segment into a polyline, appending
// points (not including p0) to out and returning the extended slice.
type Flattener interface {
	Flatten(p0, p1, p2, p3 Point, out []Point) []Point
}

// AdaptiveFlattener implements the default curvature-driven subdivision
// test: at each recursion level it estimates the deviation of the
// curve from its chord using the second finite difference of the
// control polygon, and stops subdividing once that deviation falls
// under tolerance. This is cheaper than computing a true
// curve-to-chord distance and tracks it closely for curves without
// extreme loops.
type AdaptiveFlattener struct {
	// Tolerance is compared against the squared deviation estimate, so
	// it should be passed pre-squared (eps^2) by callers that think in
	// linear tolerance units.
	Tolerance float64
}

// NewAdaptiveFlattener builds an AdaptiveFlattener whose tolerance is
// derived from a target resolution (pixels per unit) and an
// integer working scale the way a rasterizer or polygon-offset engine
// fixed-point pipeline would configure it: eps = 1/(resolution*scale),
// tolerance = (eps*workingScale)^2.
func NewAdaptiveFlattener(resolution, scale float64) *AdaptiveFlattener {
	if resolution <= 0 {
		resolution = 1
	}
	if scale <= 0 {
		scale = 1
	}
	eps := 1.0 / (resolution * scale)
	workingScale := scale
	if workingScale < 2 {
		workingScale = 2
	}
	tol := eps * workingScale
	return &AdaptiveFlattener{Tolerance: tol * tol}
}

func (f *AdaptiveFlattener) Flatten(p0, p1, p2, p3 Point, out []Point) []Point {
	return f.flatten(p0, p1, p2, p3, out, 0)
}

func (f *AdaptiveFlattener) flatten(p0, p1, p2, p3 Point, out []Point, level int) []Point {
	ax := 3*p1.X - 2*p0.X - p3.X
	ay := 3*p1.Y - 2*p0.Y - p3.Y
	bx := 3*p2.X - p0.X - 2*p3.X
	by := 3*p2.Y - p0.Y - 2*p3.Y

	errv := math.Max(ax*ax, bx*bx) + math.Max(ay*ay, by*by)

	if errv <= f.Tolerance || level >= MaxSubdivisions {
		return append(out, p3)
	}

	p01 := mid(p0, p1)
	p12 := mid(p1, p2)
	p23 := mid(p2, p3)
	p012 := mid(p01, p12)
	p123 := mid(p12, p23)
	p0123 := mid(p012, p123)

	out = f.flatten(p0, p01, p012, p0123, out, level+1)
	out = f.flatten(p0123, p123, p23, p3, out, level+1)
	return out
}

func mid(a, b Point) Point {
	return Point{(a.X + b.X) / 2, (a.Y + b.Y) / 2}
}

// AntiGrainQuality configures AntiGrainFlattener's branch thresholds.
type AntiGrainQuality struct {
	DistanceTolerance  float64
	ColinearityEpsilon float64
	AngleEpsilon       float64
	AngleTolerance     float64
	CuspLimit          float64
	RecursionLimit     int
}

// DefaultAntiGrainQuality returns reasonable defaults matching common
// AntiGrain-style rasterizer presets.
func DefaultAntiGrainQuality() AntiGrainQuality {
	return AntiGrainQuality{
		DistanceTolerance:  0.1,
		ColinearityEpsilon: 1e-9,
		AngleEpsilon:       0.01,
		AngleTolerance:     0,
		CuspLimit:          0,
		RecursionLimit:     MaxSubdivisions,
	}
}

// AntiGrainFlattener is an alternative flattening strategy that
// classifies each subdivision step by how collinear its two midline
// chords are and, for non-collinear cases, by the turning angle at the
// middle control points — catching cusps and sharp corners that the
// pure second-difference test can under-subdivide.
type AntiGrainFlattener struct {
	Quality AntiGrainQuality
}

func NewAntiGrainFlattener(q AntiGrainQuality) *AntiGrainFlattener {
	if q.RecursionLimit <= 0 || q.RecursionLimit > MaxSubdivisions {
		q.RecursionLimit = MaxSubdivisions
	}
	return &AntiGrainFlattener{Quality: q}
}

func (f *AntiGrainFlattener) Flatten(p0, p1, p2, p3 Point, out []Point) []Point {
	return f.flatten(p0, p1, p2, p3, out, 0)
}

func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func (f *AntiGrainFlattener) flatten(p0, p1, p2, p3 Point, out []Point, level int) []Point {
	q := f.Quality
	if level >= q.RecursionLimit {
		return append(out, p3)
	}

	p01 := mid(p0, p1)
	p12 := mid(p1, p2)
	p23 := mid(p2, p3)
	p012 := mid(p01, p12)
	p123 := mid(p12, p23)
	p0123 := mid(p012, p123)

	dx := p3.X - p0.X
	dy := p3.Y - p0.Y

	d2 := math.Abs((p1.X-p3.X)*dy - (p1.Y-p3.Y)*dx)
	d3 := math.Abs((p2.X-p3.X)*dy - (p2.Y-p3.Y)*dx)

	c2 := d2 > q.ColinearityEpsilon
	c3 := d3 > q.ColinearityEpsilon

	switch {
	case !c2 && !c3:
		// Both control points are collinear with the chord, or the
		// curve has degenerated to a point: a single chord is enough.
		if p0 == p3 {
			return append(out, p3)
		}
		return append(out, p3)

	case !c2 && c3:
		// p1 collinear, p2 drives the curvature: test the deviation of
		// p2 from the chord directly.
		if d3*d3 <= q.DistanceTolerance*(dx*dx+dy*dy) {
			if q.AngleTolerance < 1e-6 {
				return append(out, p0123, p3)
			}
			a := math.Abs(math.Atan2(p3.Y-p2.Y, p3.X-p2.X) - math.Atan2(p2.Y-p1.Y, p2.X-p1.X))
			if a >= math.Pi {
				a = 2*math.Pi - a
			}
			if a < q.AngleTolerance {
				return append(out, p0123, p3)
			}
		}

	case c2 && !c3:
		if d2*d2 <= q.DistanceTolerance*(dx*dx+dy*dy) {
			if q.AngleTolerance < 1e-6 {
				return append(out, p0123, p3)
			}
			a := math.Abs(math.Atan2(p2.Y-p1.Y, p2.X-p1.X) - math.Atan2(p1.Y-p0.Y, p1.X-p0.X))
			if a >= math.Pi {
				a = 2*math.Pi - a
			}
			if a < q.AngleTolerance {
				return append(out, p0123, p3)
			}
		}

	default:
		k := (d2 + d3) * (d2 + d3)
		if k <= q.DistanceTolerance*(dx*dx+dy*dy) {
			if q.AngleTolerance < 1e-6 {
				return append(out, p0123, p3)
			}
			a1 := math.Atan2(p2.Y-p1.Y, p2.X-p1.X)
			a2 := math.Atan2(p1.Y-p0.Y, p1.X-p0.X)
			da1 := math.Abs(a1 - a2)
			if da1 >= math.Pi {
				da1 = 2*math.Pi - da1
			}
			if da1 < q.AngleTolerance {
				a3 := math.Atan2(p3.Y-p2.Y, p3.X-p2.X)
				da2 := math.Abs(a3 - a1)
				if da2 >= math.Pi {
					da2 = 2*math.Pi - da2
				}
				if da2 < q.AngleTolerance {
					return append(out, p0123, p3)
				}
				if q.CuspLimit != 0 {
					if da1 > q.CuspLimit {
						return append(out, p1)
					}
				}
			} else if q.CuspLimit != 0 {
				if da1 > q.CuspLimit {
					return append(out, p1)
				}
			}
		}
	}

	out = f.flatten(p0, p01, p012, p0123, out, level+1)
	out = f.flatten(p0123, p123, p23, p3, out, level+1)
	return out
}

// FixedFlattener subdivides every curve to exactly 2^Depth segments
// regardless of curvature, used where callers need a deterministic
// point count (e.g. matching topology across two morph endpoints).
type FixedFlattener struct {
	Depth int
}

func (f *FixedFlattener) Flatten(p0, p1, p2, p3 Point, out []Point) []Point {
	n := 1 << uint(f.Depth)
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		out = append(out, cubicEval(p0, p1, p2, p3, t))
	}
	return out
}

func cubicEval(p0, p1, p2, p3 Point, t float64) Point {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	c := 3 * mt * t * t
	d := t * t * t
	return Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}
