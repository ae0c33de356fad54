package triangulate

import "math"

// ConvexEpsilon is the signed-area slack allowed before a previously
// convex part is considered to have folded over and no longer trusted
// by Partition.Check.
const ConvexEpsilon = 0.1

// part is one convex polygon from a partition, recording the index
// (into the shared vertex array) it last failed its convexity check
// at, so the next check resumes scanning from there instead of vertex
// zero. A part that keeps failing at the same vertex (a hinge that's
// animating, say) gets re-detected in O(1) instead of re-scanning its
// whole outline.
type part struct {
	outline []int
	fail    int
}

// Partition holds the convex decomposition behind one cached
// triangulation and can cheaply re-validate it against a new vertex
// array: as long as every part is still convex, the cached
// triangulation remains usable without re-triangulating.
type Partition struct {
	parts   []part
	scratch []Point
}

// NewPartition builds a Partition from a convex decomposition (as
// produced by ConvexPartition).
func NewPartition(parts [][]int) *Partition {
	p := &Partition{parts: make([]part, len(parts))}
	maxN := 0
	for i, outline := range parts {
		cp := make([]int, len(outline))
		copy(cp, outline)
		p.parts[i] = part{outline: cp, fail: 0}
		if len(outline) > maxN {
			maxN = len(outline)
		}
	}
	p.scratch = make([]Point, maxN+2)
	return p
}

// Check reports whether every part is still convex given the current
// vertex positions. On the first part that fails, it records the
// failing index for next time and moves that part to the front of the
// list (so a persistently-failing hinge is checked, and found failing,
// before any other part on the next call), then returns false. A
// false result means the caller must re-triangulate; a true result
// means the existing triangulation can be reused as-is.
func (p *Partition) Check(vertices []Point) bool {
	if len(p.parts) == 0 {
		return false
	}

	for j := range p.parts {
		pt := &p.parts[j]
		n := len(pt.outline)
		if n < 3 {
			continue
		}

		if cap(p.scratch) < n+2 {
			p.scratch = make([]Point, n+2)
		}
		tmp := p.scratch[:n+2]
		for k := 0; k < n; k++ {
			tmp[k] = vertices[pt.outline[k]]
		}
		tmp[n] = tmp[0]
		tmp[n+1] = tmp[1]

		if !checkConvexFrom(tmp, n, pt.fail) {
			pt.fail = findFailIndex(tmp, n, pt.fail)
			if j != 0 {
				p.parts[0], p.parts[j] = p.parts[j], p.parts[0]
			}
			return false
		}
	}

	return true
}

// checkConvexFrom tests every triple starting at start (wrapping
// through the whole outline), matching the resume-from-last-failure
// optimization of the original scan.
func checkConvexFrom(tmp []Point, n, start int) bool {
	sign := 0.0
	for k := 0; k < n; k++ {
		i := (start + k) % n
		a, b, c := tmp[i], tmp[i+1], tmp[i+2]
		area := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
		if math.Abs(area) <= ConvexEpsilon {
			continue
		}
		if sign == 0 {
			sign = area
		} else if (area > 0) != (sign > 0) {
			return false
		}
	}
	return true
}

func findFailIndex(tmp []Point, n, start int) int {
	sign := 0.0
	for k := 0; k < n; k++ {
		i := (start + k) % n
		a, b, c := tmp[i], tmp[i+1], tmp[i+2]
		area := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
		if math.Abs(area) <= ConvexEpsilon {
			continue
		}
		if sign == 0 {
			sign = area
			continue
		}
		if (area > 0) != (sign > 0) {
			return i
		}
	}
	return start
}
