// Package intersect implements ray/cubic intersection and the
// triple-ray point-in-path test used to decide whether a point lies
// inside a filled contour without rasterizing it.
package intersect

import (
	"math"

	"github.com/gogpu/vgraph/internal/solve"
)

// Point is a plain 2D point, duplicated to avoid an import cycle.
type Point struct {
	X, Y float64
}

// FillRule selects how ray-crossing counts are turned into an
// inside/outside decision.
type FillRule int

const (
	// NonZero treats a point as inside when the signed crossing count
	// is non-zero.
	NonZero FillRule = iota
	// EvenOdd treats a point as inside when the crossing count is odd.
	EvenOdd
)

// ray is a directed test ray through a fixed origin, described by its
// implicit line coefficients (A*x + B*y + C = 0) and its direction
// sign pair, which selects which side of the line counts as "ahead"
// of the origin along the ray.
type ray struct {
	a, b, c float64
	dx, dy  float64 // direction sign: +1 or -1 per axis
}

func newRay(origin Point, dx, dy float64) ray {
	// The ray's line is x*dy - y*dx = origin.X*dy - origin.Y*dx,
	// i.e. A = dy, B = -dx, C = -(origin.X*dy - origin.Y*dx).
	return ray{a: dy, b: -dx, c: -(origin.X*dy - origin.Y*dx), dx: dx, dy: dy}
}

// cubicCoeffs returns the coefficients of A(t)*x(t) + B(t)*y(t) + C,
// evaluated along one axis of a cubic Bezier, as a cubic polynomial in
// t: P0 + P1*t + P2*t^2 + P3*t^3.
func cubicAxisCoeffs(p0, p1, p2, p3 float64) (c0, c1, c2, c3 float64) {
	c0 = p0
	c1 = 3 * (p1 - p0)
	c2 = 3 * (p0 - 2*p1 + p2)
	c3 = -p0 + 3*p1 - 3*p2 + p3
	return
}

// rayCubicRoots returns the parameter values t in [0, 1] where the
// cubic curve crosses the ray's line.
func rayCubicRoots(r ray, p0, p1, p2, p3 Point) []float64 {
	x0, x1, x2, x3 := cubicAxisCoeffs(p0.X, p1.X, p2.X, p3.X)
	y0, y1, y2, y3 := cubicAxisCoeffs(p0.Y, p1.Y, p2.Y, p3.Y)

	a := r.a*x3 + r.b*y3
	b := r.a*x2 + r.b*y2
	c := r.a*x1 + r.b*y1
	d := r.a*x0 + r.b*y0 + r.c

	if math.Abs(a) < 1e-9 {
		if math.Abs(b) < 1e-9 {
			if math.Abs(c) < 1e-9 {
				return nil
			}
			t := -d / c
			if t >= 0 && t <= 1 {
				return []float64{t}
			}
			return nil
		}
		return solve.QuadraticInUnitInterval(b, c, d)
	}
	return solve.CubicInUnitInterval(a, b, c, d)
}

func cubicEval(p0, p1, p2, p3 Point, t float64) Point {
	mt := 1 - t
	aa := mt * mt * mt
	bb := 3 * mt * mt * t
	cc := 3 * mt * t * t
	dd := t * t * t
	return Point{
		aa*p0.X + bb*p1.X + cc*p2.X + dd*p3.X,
		aa*p0.Y + bb*p1.Y + cc*p2.Y + dd*p3.Y,
	}
}

func cubicDeriv(p0, p1, p2, p3 Point, t float64) Point {
	mt := 1 - t
	return Point{
		3*mt*mt*(p1.X-p0.X) + 6*mt*t*(p2.X-p1.X) + 3*t*t*(p3.X-p2.X),
		3*mt*mt*(p1.Y-p0.Y) + 6*mt*t*(p2.Y-p1.Y) + 3*t*t*(p3.Y-p2.Y),
	}
}

// countCrossings counts ray crossings of one cubic segment against the
// origin, ahead of the ray's direction, signed by the curve's tangent
// direction at each crossing (for NonZero) or simply +1 per crossing
// (for EvenOdd).
func countCrossings(r ray, origin Point, p0, p1, p2, p3 Point, rule FillRule) int {
	count := 0
	for _, t := range rayCubicRoots(r, p0, p1, p2, p3) {
		pt := cubicEval(p0, p1, p2, p3, t)
		// Only count crossings strictly ahead of the origin along the
		// ray's direction.
		if r.dx*(pt.X-origin.X) < -1e-9 {
			continue
		}
		if r.dy*(pt.Y-origin.Y) < -1e-9 {
			continue
		}
		switch rule {
		case EvenOdd:
			count++
		default:
			d := cubicDeriv(p0, p1, p2, p3, t)
			s := r.a*d.X + r.b*d.Y
			if s > 0 {
				count++
			} else if s < 0 {
				count--
			}
		}
	}
	return count
}

// Contour is one closed cubic-Bezier contour as a flat K C C K ...
// point array, matching the subpath package's layout.
type Contour struct {
	Points []Point
}

func (c Contour) curve(k int) (p0, p1, p2, p3 Point, ok bool) {
	n := len(c.Points)
	if n < 3 || n%3 != 0 {
		return
	}
	i := (k * 3) % n
	return c.Points[i], c.Points[(i+1)%n], c.Points[(i+2)%n], c.Points[(i+3)%n], true
}

func (c Contour) numCurves() int {
	n := len(c.Points)
	if n < 3 || n%3 != 0 {
		return 0
	}
	return n / 3
}

var rayDirections = [3][2]float64{{1, 0}, {0, 1}, {1, 1}}

// Inside implements the triple-ray voting point-in-contour test: three
// rays are cast from the point in different directions ((1,0), (0,1),
// (1,1)) and the point is considered inside only if at least two of
// the three independent votes agree, which is more robust against a
// ray passing exactly through a vertex or along an edge than a single
// ray test.
func Inside(contours []Contour, p Point, rule FillRule) bool {
	votes := 0
	for _, dir := range rayDirections {
		r := newRay(p, dir[0], dir[1])
		count := 0
		for _, contour := range contours {
			nc := contour.numCurves()
			for k := 0; k < nc; k++ {
				p0, p1, p2, p3, ok := contour.curve(k)
				if !ok {
					continue
				}
				count += countCrossings(r, p, p0, p1, p2, p3, rule)
			}
		}
		switch rule {
		case EvenOdd:
			if count%2 != 0 {
				votes++
			}
		default:
			if count != 0 {
				votes++
			}
		}
	}
	return votes >= 2
}

// RayIntersections returns the parameter values where a ray from
// origin in direction (dx, dy) crosses the given cubic segment,
// ignoring the "ahead of origin" direction filter (used for general
// ray/curve intersection queries rather than point-in-path tests).
func RayIntersections(origin Point, dx, dy float64, p0, p1, p2, p3 Point) []float64 {
	r := newRay(origin, dx, dy)
	return rayCubicRoots(r, p0, p1, p2, p3)
}
