// Package gpufeed defines the hand-off boundary between the geometry
// pipeline's triangulated output and a GPU mesh consumer, without
// pulling the shader-feed/rendering subsystem into the geometry core.
// A MeshSink only ever sees packed vertex/index buffers and a uniform
// paint color; it has no dependency on Shape, Graphics, or any editing
// type.
package gpufeed

import "github.com/gogpu/gputypes"

// Vertex is one GPU-ready mesh vertex: position plus the barycentric-
// adjacent fields a stencil-then-cover or direct-coverage renderer
// would consume. Kept minimal since anything domain-specific (paint
// evaluation, gradients) happens on the consumer side.
type Vertex struct {
	X, Y float64
}

// Mesh is a triangle soup ready for upload: Vertices indexed in
// groups of three by Indices.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Color    gputypes.Color
}

// MeshSink receives a triangulated fill or stroke mesh. Submit may be
// called many times per frame (once per shape, or once per dash run
// for a stroke outline); implementations are expected to batch.
type MeshSink interface {
	Submit(mesh Mesh) error
}

// WGPUSink is a reference MeshSink that packs meshes into gputypes
// value types, ready to be handed to a gogpu/gpucontext-backed
// renderer. It does not open a GPU device itself: Collect drains
// whatever has been submitted since the last call, leaving device
// and pipeline setup to the host application, the same separation the
// teacher's own GPU backend keeps between a session and its renderer.
type WGPUSink struct {
	pending []Mesh
}

// NewWGPUSink returns an empty sink.
func NewWGPUSink() *WGPUSink { return &WGPUSink{} }

// Submit appends mesh to the pending batch.
func (s *WGPUSink) Submit(mesh Mesh) error {
	s.pending = append(s.pending, mesh)
	return nil
}

// Collect drains and returns every mesh submitted since the last
// Collect call.
func (s *WGPUSink) Collect() []Mesh {
	out := s.pending
	s.pending = nil
	return out
}
