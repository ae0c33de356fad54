package stroke

import "testing"

func squareElements() []PathElement {
	return []PathElement{
		MoveTo{Point{0, 0}},
		LineTo{Point{10, 0}},
		LineTo{Point{10, 10}},
		LineTo{Point{0, 10}},
		Close{},
	}
}

func TestPipelineExpandWithoutDashReturnsOneOutline(t *testing.T) {
	p := NewPipeline(DefaultStroke(), Dash{})
	outlines := p.Expand(squareElements())
	if len(outlines) != 1 {
		t.Fatalf("Expand without a dash pattern returned %d outlines, want 1", len(outlines))
	}
	if len(outlines[0]) == 0 {
		t.Errorf("Expand returned an empty outline")
	}
}

func TestPipelineExpandWithDashReturnsMultipleOutlines(t *testing.T) {
	p := NewPipeline(DefaultStroke(), Dash{Array: []float64{2, 2}})
	outlines := p.Expand(squareElements())
	if len(outlines) < 2 {
		t.Fatalf("Expand with a dash pattern returned %d outlines, want several", len(outlines))
	}
}

func TestFlattenToPolylinesTracksClosedFlag(t *testing.T) {
	polys, closedFlags := flattenToPolylines(squareElements(), 0.25)
	if len(polys) != 1 {
		t.Fatalf("flattenToPolylines returned %d polylines, want 1", len(polys))
	}
	if !closedFlags[0] {
		t.Errorf("closedFlags[0] = false, want true for a Close-terminated subpath")
	}
}
