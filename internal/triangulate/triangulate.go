// Package triangulate turns a flattened, possibly multi-contour polygon
// into a triangle mesh, and caches the convex partition behind each
// triangulation so that a later change to only the vertex positions
// (not the topology) can be validated cheaply instead of
// re-triangulated from scratch.
package triangulate

import "math"

// Point is a plain 2D point, duplicated to avoid an import cycle.
type Point struct {
	X, Y float64
}

// Triangle is three indices into the vertex array that was
// triangulated.
type Triangle [3]int

func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// signedArea returns twice the signed area of the polygon described by
// vertices[outline[i]] for i in outline; positive for CCW.
func signedArea(vertices []Point, outline []int) float64 {
	n := len(outline)
	sum := 0.0
	for i := 0; i < n; i++ {
		a := vertices[outline[i]]
		b := vertices[outline[(i+1)%n]]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum
}

// Triangulate ear-clips a single simple polygon (given as indices into
// vertices) into triangles. It falls back to a fan from the first
// vertex if ear-clipping cannot make progress (nearly-degenerate
// input), which always terminates, though it may produce thin or
// overlapping triangles in that case.
func Triangulate(vertices []Point, outline []int) []Triangle {
	n := len(outline)
	if n < 3 {
		return nil
	}
	if signedArea(vertices, outline) < 0 {
		rev := make([]int, n)
		for i, v := range outline {
			rev[n-1-i] = v
		}
		outline = rev
	}

	remaining := make([]int, n)
	copy(remaining, outline)

	var tris []Triangle
	guard := 0
	for len(remaining) > 3 && guard < n*n+8 {
		guard++
		m := len(remaining)
		earFound := false
		for i := 0; i < m; i++ {
			ip := (i - 1 + m) % m
			in := (i + 1) % m
			a := vertices[remaining[ip]]
			b := vertices[remaining[i]]
			c := vertices[remaining[in]]
			if cross(a, b, c) <= 0 {
				continue // reflex vertex, not a candidate ear
			}
			if polyContainsAnyOtherVertex(vertices, remaining, a, b, c, i, ip, in) {
				continue
			}
			tris = append(tris, Triangle{remaining[ip], remaining[i], remaining[in]})
			remaining = append(remaining[:i], remaining[i+1:]...)
			earFound = true
			break
		}
		if !earFound {
			break // degenerate input: fall through to the fan below
		}
	}
	if len(remaining) >= 3 {
		for i := 1; i < len(remaining)-1; i++ {
			tris = append(tris, Triangle{remaining[0], remaining[i], remaining[i+1]})
		}
	}
	return tris
}

func polyContainsAnyOtherVertex(vertices []Point, remaining []int, a, b, c Point, i, ip, in int) bool {
	for j, idx := range remaining {
		if j == i || j == ip || j == in {
			continue
		}
		p := vertices[idx]
		if pointInTriangle(p, a, b, c) {
			return true
		}
	}
	return false
}

func pointInTriangle(p, a, b, c Point) bool {
	d1 := cross(a, b, p)
	d2 := cross(b, c, p)
	d3 := cross(c, a, p)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

// ConvexPartition merges ear-clipped triangles into maximal convex
// polygons (a Hertel-Mehlhorn-style greedy merge): adjacent triangles
// sharing an edge are combined whenever the merged outline stays
// convex, which keeps the partition-verification cache's per-part
// convexity check cheap (fewer, larger parts) while still degrading
// gracefully to individual triangles when nothing can be merged.
func ConvexPartition(vertices []Point, outline []int) [][]int {
	tris := Triangulate(vertices, outline)
	parts := make([][]int, len(tris))
	for i, t := range tris {
		parts[i] = []int{t[0], t[1], t[2]}
	}

	merged := true
	for merged {
		merged = false
		for i := 0; i < len(parts); i++ {
			for j := i + 1; j < len(parts); j++ {
				if combined, ok := tryMerge(vertices, parts[i], parts[j]); ok {
					parts[i] = combined
					parts = append(parts[:j], parts[j+1:]...)
					merged = true
					break
				}
			}
			if merged {
				break
			}
		}
	}
	return parts
}

// tryMerge attempts to splice two convex outlines sharing exactly one
// edge into a single convex outline.
func tryMerge(vertices []Point, a, b []int) ([]int, bool) {
	shared := sharedEdge(a, b)
	if shared == nil {
		return nil, false
	}
	ai, bi := shared[0], shared[1]
	na, nb := len(a), len(b)

	// Splice b (minus its two shared vertices) into a at the edge.
	out := make([]int, 0, na+nb-2)
	out = append(out, a[:ai+1]...)
	for k := 1; k < nb-1; k++ {
		out = append(out, b[(bi+k)%nb])
	}
	out = append(out, a[ai+1:]...)

	if !isConvex(vertices, out) {
		return nil, false
	}
	return out, true
}

func sharedEdge(a, b []int) []int {
	na, nb := len(a), len(b)
	for i := 0; i < na; i++ {
		v0, v1 := a[i], a[(i+1)%na]
		for j := 0; j < nb; j++ {
			w0, w1 := b[j], b[(j+1)%nb]
			if v0 == w1 && v1 == w0 {
				return []int{i, j}
			}
		}
	}
	return nil
}

func isConvex(vertices []Point, outline []int) bool {
	n := len(outline)
	if n < 3 {
		return false
	}
	sign := 0.0
	for i := 0; i < n; i++ {
		a := vertices[outline[i]]
		b := vertices[outline[(i+1)%n]]
		c := vertices[outline[(i+2)%n]]
		k := cross(a, b, c)
		if math.Abs(k) < 1e-9 {
			continue
		}
		if sign == 0 {
			sign = k
		} else if (k > 0) != (sign > 0) {
			return false
		}
	}
	return true
}
