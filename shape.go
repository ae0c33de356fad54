package gg

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/vgraph/gpufeed"
	"github.com/gogpu/vgraph/internal/flatten"
	"github.com/gogpu/vgraph/internal/intersect"
	"github.com/gogpu/vgraph/internal/stroke"
	"github.com/gogpu/vgraph/internal/subpath"
	"github.com/gogpu/vgraph/internal/triangulate"
)

// ChangeFlags describes what about a Shape changed since it was last
// consumed by a cache or a renderer, so callers can invalidate only
// what actually needs it (a point drag invalidates geometry and
// bounds but not the paint; a color change invalidates neither).
type ChangeFlags uint32

const (
	// ChangePoints marks that one or more subpath points moved without
	// changing the subpath's topology (knot/control count or order).
	ChangePoints ChangeFlags = 1 << iota
	// ChangeGeometry marks a topology change: a curve inserted or
	// removed, a subpath added, orientation flipped.
	ChangeGeometry
	// ChangeBounds marks that cached bounding boxes are stale.
	ChangeBounds
	// ChangeRecreate marks that cached derived meshes (triangulation,
	// stroke outline) must be rebuilt from scratch rather than patched.
	ChangeRecreate
	// ChangePaint marks that fill or stroke paint changed.
	ChangePaint

	changeAll = ChangePoints | ChangeGeometry | ChangeBounds | ChangeRecreate | ChangePaint
)

// Shape is a persistent, editable vector shape: one or more Subpaths
// plus the paint and stroke style used to render them. It is the
// spec-level analogue of a single drawable path object (see the
// "Naming note" in SPEC_FULL.md for why it isn't called Path).
type Shape struct {
	subpaths []*subpath.Subpath

	Fill   *Paint
	Stroke *Paint
	Dash   *Dash

	Opacity float64

	changes ChangeFlags

	boundsValid bool
	bounds      subpath.Rect

	triCache *triangulate.Cache[int]
	triKey   int
}

// NewShape returns an empty Shape with default fill/stroke paint and
// full opacity.
func NewShape() *Shape {
	return &Shape{
		Fill:    NewPaint(),
		Stroke:  nil,
		Opacity: 1.0,
		changes: changeAll,
	}
}

// Subpaths returns the shape's contours.
func (s *Shape) Subpaths() []*subpath.Subpath { return s.subpaths }

// AddSubpath appends a contour built elsewhere (e.g. from a shape
// builder or from Refine during morph topology matching).
func (s *Shape) AddSubpath(sp *subpath.Subpath) {
	s.subpaths = append(s.subpaths, sp)
	s.changes |= ChangeGeometry | ChangeBounds | ChangeRecreate
}

// Changes returns the accumulated change flags since the last
// ClearChanges call.
func (s *Shape) Changes() ChangeFlags { return s.changes }

// ClearChanges resets the accumulated change flags, typically called
// by a renderer or cache once it has reacted to them.
func (s *Shape) ClearChanges() { s.changes = 0 }

func (s *Shape) markChanged(f ChangeFlags) {
	s.changes |= f
	if f&(ChangeGeometry|ChangePoints) != 0 {
		s.boundsValid = false
	}
}

// Bounds returns the shape's axis-aligned bounding box across all
// subpaths, recomputing it only if ChangeBounds/ChangePoints/
// ChangeGeometry are pending.
func (s *Shape) Bounds() subpath.Rect {
	if s.boundsValid {
		return s.bounds
	}
	r := subpath.Rect{X0: 0, Y0: 0, X1: 0, Y1: 0}
	first := true
	for _, sp := range s.subpaths {
		b := sp.Bounds()
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
	s.bounds = r
	s.boundsValid = true
	s.changes &^= ChangeBounds
	return r
}

// MoveKnotOrControl moves point index i of subpath idx, following the
// same knot/control semantics as subpath.Subpath.Move.
func (s *Shape) MoveKnotOrControl(subpathIdx, pointIdx int, dx, dy float64, handle subpath.Handle) error {
	if subpathIdx < 0 || subpathIdx >= len(s.subpaths) {
		Logger().Warn("move: subpath index out of range", "index", subpathIdx, "count", len(s.subpaths))
		return nil
	}
	s.subpaths[subpathIdx].Move(pointIdx, dx, dy, handle)
	s.markChanged(ChangePoints)
	return nil
}

// InsertCurveAt inserts a knot into subpath idx at the given global
// curve parameter, returning the new knot's point index.
func (s *Shape) InsertCurveAt(subpathIdx int, globalT float64) int {
	if subpathIdx < 0 || subpathIdx >= len(s.subpaths) {
		Logger().Warn("insert_curve_at: subpath index out of range", "index", subpathIdx)
		return -1
	}
	idx := s.subpaths[subpathIdx].InsertCurveAt(globalT)
	s.markChanged(ChangeGeometry | ChangeRecreate)
	return idx
}

// RemoveCurve removes a curve from subpath idx.
func (s *Shape) RemoveCurve(subpathIdx, curve int) {
	if subpathIdx < 0 || subpathIdx >= len(s.subpaths) {
		Logger().Warn("remove_curve: subpath index out of range", "index", subpathIdx)
		return
	}
	s.subpaths[subpathIdx].RemoveCurve(curve)
	s.markChanged(ChangeGeometry | ChangeRecreate)
}

// Build walks every subpath's point array through MoveTo/CurveTo/Close
// calls, producing a flattenable/renderable Path compatible with the
// rest of the rendering pipeline.
func (s *Shape) Build() *Path {
	p := NewPath()
	for _, sp := range s.subpaths {
		pts := sp.Points()
		if len(pts) == 0 {
			continue
		}
		p.MoveTo(pts[0].X, pts[0].Y)
		nc := sp.NumCurves()
		n := len(pts)
		for k := 0; k < nc; k++ {
			i := k * 3
			c1 := pts[i+1]
			var c2, end subpath.Point
			if i+3 < n {
				c2 = pts[i+2]
				end = pts[i+3]
			} else {
				// Closed subpath's final curve wraps to index 0.
				c2 = pts[(i+2)%n]
				end = pts[0]
			}
			p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, end.X, end.Y)
		}
		if sp.Closed() {
			p.Close()
		}
	}
	return p
}

func toFlattenPoint(p subpath.Point) flatten.Point { return flatten.Point{X: p.X, Y: p.Y} }

// Flatten renders every subpath to a polyline using the given
// flattener (AdaptiveFlattener, AntiGrainFlattener, or FixedFlattener
// from internal/flatten), returning one polyline per subpath.
func (s *Shape) Flatten(f flatten.Flattener) [][]flatten.Point {
	out := make([][]flatten.Point, 0, len(s.subpaths))
	for _, sp := range s.subpaths {
		pts := sp.Points()
		if len(pts) == 0 {
			out = append(out, nil)
			continue
		}
		poly := []flatten.Point{toFlattenPoint(pts[0])}
		nc := sp.NumCurves()
		n := len(pts)
		for k := 0; k < nc; k++ {
			i := k * 3
			p0 := toFlattenPoint(pts[i])
			p1 := toFlattenPoint(pts[i+1])
			var p2, p3 flatten.Point
			if i+3 < n {
				p2 = toFlattenPoint(pts[i+2])
				p3 = toFlattenPoint(pts[i+3])
			} else {
				p2 = toFlattenPoint(pts[(i+2)%n])
				p3 = toFlattenPoint(pts[0])
			}
			poly = f.Flatten(p0, p1, p2, p3, poly)
		}
		out = append(out, poly)
	}
	return out
}

func toStrokePoint(p flatten.Point) stroke.Point { return stroke.Point{X: p.X, Y: p.Y} }

// StrokeOutline runs the stroke pipeline (dash walking plus per-run
// offset expansion) over the shape's flattened subpaths, returning one
// fill outline (as stroke.PathElement runs) per dash segment produced.
func (s *Shape) StrokeOutline(style stroke.Stroke, q Quality) [][]stroke.PathElement {
	var fl flatten.Flattener
	if q.AntiGrain {
		fl = flatten.NewAntiGrainFlattener(flatten.AntiGrainQuality(q.AntiGrainQuality))
	} else {
		fl = flatten.NewAdaptiveFlattener(q.Resolution, q.Scale)
	}

	var dash stroke.Dash
	if s.Dash != nil {
		dash = stroke.Dash{Array: s.Dash.Array, Offset: s.Dash.Offset}
	}
	pipeline := stroke.NewPipeline(style, dash)

	polys := s.Flatten(fl)
	var outlines [][]stroke.PathElement
	for i, sp := range s.subpaths {
		poly := polys[i]
		if len(poly) < 1 {
			continue
		}
		els := make([]stroke.PathElement, 0, len(poly)+1)
		first := toStrokePoint(poly[0])
		els = append(els, stroke.MoveTo{Point: first})
		for _, p := range poly[1:] {
			els = append(els, stroke.LineTo{Point: toStrokePoint(p)})
		}
		if sp.Closed() {
			els = append(els, stroke.Close{})
		}
		outlines = append(outlines, pipeline.Expand(els)...)
	}
	return outlines
}

func toIntersectPoint(p subpath.Point) intersect.Point { return intersect.Point{X: p.X, Y: p.Y} }

// Contains reports whether (x, y) lies inside the shape's fill area,
// using the triple-ray-vote intersection test rather than rasterizing.
func (s *Shape) Contains(x, y float64) bool {
	contours := make([]intersect.Contour, 0, len(s.subpaths))
	for _, sp := range s.subpaths {
		pts := sp.Points()
		ipts := make([]intersect.Point, len(pts))
		for i, p := range pts {
			ipts[i] = toIntersectPoint(p)
		}
		contours = append(contours, intersect.Contour{Points: ipts})
	}
	rule := intersect.NonZero
	if s.Fill != nil && s.Fill.FillRule == FillRuleEvenOdd {
		rule = intersect.EvenOdd
	}
	return intersect.Inside(contours, intersect.Point{X: x, Y: y}, rule)
}

// Triangulate returns a cached (or freshly computed) triangle mesh for
// the shape's combined fill area. The cache is checked against the
// current vertex positions via the partition-verification test before
// falling back to a full re-triangulation.
func (s *Shape) Triangulate() ([]triangulate.Triangle, error) {
	if s.triCache == nil {
		s.triCache = triangulate.NewCache[int](1)
	}
	verts, outline := s.flatVertexArray()
	if len(outline) < 3 {
		return nil, newError("Triangulate", ErrEmptyPath, nil)
	}

	if res, ok := s.triCache.Get(s.triKey, verts); ok {
		return res.Triangles, nil
	}

	tris := triangulate.Triangulate(verts, outline)
	if len(tris) == 0 {
		return nil, newError("Triangulate", ErrTriangulationFailed, nil)
	}
	parts := triangulate.ConvexPartition(verts, outline)
	s.triCache.Put(s.triKey, tris, parts, false)
	return tris, nil
}

// SetTriangulationKeyframe pins (or unpins) the shape's cached
// triangulation against soft-limit eviction, used to mark a shape's
// state at a named animation waypoint.
func (s *Shape) SetTriangulationKeyframe(keyframe bool) {
	if s.triCache != nil {
		s.triCache.SetKeyframe(s.triKey, keyframe)
	}
}

func (s *Shape) flatVertexArray() ([]triangulate.Point, []int) {
	var verts []triangulate.Point
	var outline []int
	for _, sp := range s.subpaths {
		for _, p := range sp.Points() {
			outline = append(outline, len(verts))
			verts = append(verts, triangulate.Point{X: p.X, Y: p.Y})
		}
	}
	return verts, outline
}

// Tessellate triangulates the shape's fill (and, if Stroke is set,
// its stroke outline) and submits the results to sink as packed GPU
// meshes, keeping the triangulation/cache machinery entirely on the
// core side of the MeshSink boundary.
func (s *Shape) Tessellate(sink gpufeed.MeshSink, q Quality, style stroke.Stroke) error {
	if s.Fill != nil {
		tris, err := s.Triangulate()
		if err != nil {
			return err
		}
		verts, _ := s.flatVertexArray()
		if err := sink.Submit(buildMesh(verts, tris, s.Fill.Pattern.ColorAt(0, 0))); err != nil {
			return err
		}
	}
	if s.Stroke != nil {
		for _, outline := range s.StrokeOutline(style, q) {
			verts, outlineIdx := strokeElementsToVerts(outline)
			tris := triangulate.Triangulate(verts, outlineIdx)
			if err := sink.Submit(buildMesh(verts, tris, s.Stroke.Pattern.ColorAt(0, 0))); err != nil {
				return err
			}
		}
	}
	return nil
}

func strokeElementsToVerts(els []stroke.PathElement) ([]triangulate.Point, []int) {
	var verts []triangulate.Point
	var outline []int
	for _, el := range els {
		switch v := el.(type) {
		case stroke.MoveTo:
			outline = append(outline, len(verts))
			verts = append(verts, triangulate.Point{X: v.Point.X, Y: v.Point.Y})
		case stroke.LineTo:
			outline = append(outline, len(verts))
			verts = append(verts, triangulate.Point{X: v.Point.X, Y: v.Point.Y})
		}
	}
	return verts, outline
}

func buildMesh(verts []triangulate.Point, tris []triangulate.Triangle, color RGBA) gpufeed.Mesh {
	mesh := gpufeed.Mesh{
		Vertices: make([]gpufeed.Vertex, len(verts)),
		Indices:  make([]uint32, 0, len(tris)*3),
		Color:    gputypes.Color{R: color.R, G: color.G, B: color.B, A: color.A},
	}
	for i, v := range verts {
		mesh.Vertices[i] = gpufeed.Vertex{X: v.X, Y: v.Y}
	}
	for _, t := range tris {
		mesh.Indices = append(mesh.Indices, uint32(t[0]), uint32(t[1]), uint32(t[2]))
	}
	return mesh
}

// Clone returns a deep copy of the shape, including its subpaths and
// paint, but with a fresh (unpopulated) triangulation cache.
func (s *Shape) Clone() *Shape {
	out := &Shape{
		Opacity: s.Opacity,
		changes: changeAll,
	}
	if s.Fill != nil {
		out.Fill = s.Fill.Clone()
	}
	if s.Stroke != nil {
		out.Stroke = s.Stroke.Clone()
	}
	if s.Dash != nil {
		out.Dash = s.Dash.Clone()
	}
	for _, sp := range s.subpaths {
		out.subpaths = append(out.subpaths, subpath.NewFromPoints(sp.Points(), sp.Closed()))
	}
	return out
}
