package terrain

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestNewGridTopologyValidation(t *testing.T) {
	tests := []struct {
		name    string
		dim     int
		wantErr bool
	}{
		{"odd", 63, true},
		{"zero", 0, true},
		{"negative", -4, true},
		{"too small", 1, true},
		{"minimal", 2, false},
		{"typical", 64, false},
		{"largest under index budget", 254, false},
		{"over index budget", 256, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGridTopology(tt.dim)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewGridTopology(%d) error = %v, wantErr %v", tt.dim, err, tt.wantErr)
			}
		})
	}
}

func TestGridTopologyCounts(t *testing.T) {
	topo, err := NewGridTopology(16)
	if err != nil {
		t.Fatal(err)
	}

	dim2 := 8
	wantVerts := 4 * (dim2 + 1) * (dim2 + 1)
	if got := len(topo.Vertices) / 2; got != wantVerts {
		t.Errorf("vertex count = %d, want %d", got, wantVerts)
	}
	wantIndices := 4 * 6 * dim2 * dim2
	if got := len(topo.Indices); got != wantIndices {
		t.Errorf("index count = %d, want %d", got, wantIndices)
	}
	if topo.QuadIndexCount() != 6*dim2*dim2 {
		t.Errorf("QuadIndexCount = %d, want %d", topo.QuadIndexCount(), 6*dim2*dim2)
	}
}

func TestGridTopologyIndicesInRange(t *testing.T) {
	topo, err := NewGridTopology(64)
	if err != nil {
		t.Fatal(err)
	}
	vertexCount := len(topo.Vertices) / 2
	for i, idx := range topo.Indices {
		if int(idx) >= vertexCount {
			t.Fatalf("index %d at position %d exceeds vertex count %d", idx, i, vertexCount)
		}
	}
}

// Each quadrant's index range must only reference that quadrant's own
// vertex block; shared edges use duplicated vertices, never a neighbor's.
func TestGridTopologyQuadrantIsolation(t *testing.T) {
	topo, err := NewGridTopology(8)
	if err != nil {
		t.Fatal(err)
	}
	perQuadVerts := (4 + 1) * (4 + 1) // (dim2+1)^2 with dim2=4
	perQuadIdx := topo.QuadIndexCount()

	for quad := 0; quad < 4; quad++ {
		lo := quad * perQuadVerts
		hi := lo + perQuadVerts
		for _, idx := range topo.Indices[quad*perQuadIdx : (quad+1)*perQuadIdx] {
			if int(idx) < lo || int(idx) >= hi {
				t.Fatalf("quadrant %d references vertex %d outside its block [%d,%d)", quad, idx, lo, hi)
			}
		}
	}
}

// All triangles must share one winding orientation in the xz plane after
// the per-quadrant sign-flip compensation.
func TestGridTopologyWindingConsistency(t *testing.T) {
	for _, dim := range []int{2, 8, 64} {
		topo, err := NewGridTopology(dim)
		if err != nil {
			t.Fatal(err)
		}

		var reference float32
		for i := 0; i+2 < len(topo.Indices); i += 3 {
			ax, az := topo.VertexAt(topo.Indices[i])
			bx, bz := topo.VertexAt(topo.Indices[i+1])
			cx, cz := topo.VertexAt(topo.Indices[i+2])

			// Signed doubled area in the xz plane; sign encodes winding.
			area := float32(bx-ax)*float32(cz-az) - float32(bz-az)*float32(cx-ax)
			if area == 0 {
				t.Fatalf("dim %d: degenerate triangle at index %d", dim, i)
			}
			if reference == 0 {
				reference = area
				continue
			}
			if (area > 0) != (reference > 0) {
				t.Fatalf("dim %d: triangle at index %d has opposite winding", dim, i)
			}
		}
	}
}

func TestDrawPlanAllCombinations(t *testing.T) {
	for mask := 0; mask < 16; mask++ {
		bl := mask&(1<<QuadBottomLeft) != 0
		br := mask&(1<<QuadBottomRight) != 0
		tl := mask&(1<<QuadTopLeft) != 0
		tr := mask&(1<<QuadTopRight) != 0

		plan := DrawPlan(tl, tr, bl, br)

		if len(plan) > 2 {
			t.Errorf("mask %04b: %d draw calls, want <= 2", mask, len(plan))
		}
		if mask == 0 && len(plan) != 0 {
			t.Errorf("empty selection should produce no draws, got %v", plan)
		}

		// The spans must cover exactly the selected quadrants, in order,
		// without overlap.
		covered := [4]bool{}
		prevEnd := -1
		for _, span := range plan {
			if span.StartQuad < prevEnd {
				t.Errorf("mask %04b: spans overlap or are out of order: %v", mask, plan)
			}
			for q := span.StartQuad; q < span.StartQuad+span.QuadCount; q++ {
				covered[q] = true
			}
			prevEnd = span.StartQuad + span.QuadCount
		}
		want := [4]bool{QuadBottomLeft: bl, QuadBottomRight: br, QuadTopLeft: tl, QuadTopRight: tr}
		if covered != want {
			t.Errorf("mask %04b: plan covers %v, want %v", mask, covered, want)
		}
	}
}

func TestDrawPlanKnownCases(t *testing.T) {
	// All four quadrants: one span over the full buffer.
	plan := DrawPlan(true, true, true, true)
	if len(plan) != 1 || plan[0] != (DrawSpan{StartQuad: 0, QuadCount: 4}) {
		t.Errorf("all quadrants: got %v", plan)
	}

	// Alternating quadrants need the worst case of two spans.
	plan = DrawPlan(true, false, false, true) // quads 1 and 2
	if len(plan) != 2 {
		t.Errorf("alternating quadrants: got %v", plan)
	}

	// Three consecutive quadrants stay a single span.
	plan = DrawPlan(true, true, false, true) // quads 1,2,3
	if len(plan) != 1 || plan[0] != (DrawSpan{StartQuad: 1, QuadCount: 3}) {
		t.Errorf("three consecutive: got %v", plan)
	}
}

func TestMorphOffset(t *testing.T) {
	// Unmorphed offsets are unchanged.
	for _, v := range []int16{-7, -4, 0, 3, 8} {
		if got := MorphOffset(v, 0); got != float32(v) {
			t.Errorf("MorphOffset(%d, 0) = %f", v, got)
		}
	}

	// Fully morphed odd offsets collapse to the even value below; even
	// offsets stay put.
	cases := []struct {
		v    int16
		want float32
	}{
		{3, 2}, {-3, -4}, {1, 0}, {-1, -2}, {4, 4}, {-6, -6}, {0, 0},
	}
	for _, c := range cases {
		if got := MorphOffset(c.v, 1); got != c.want {
			t.Errorf("MorphOffset(%d, 1) = %f, want %f", c.v, got, c.want)
		}
	}
}

func TestMorphOffsetContinuity(t *testing.T) {
	// Position must vary continuously in the morph factor; check small
	// steps produce small movements near both ends.
	for _, v := range []int16{-5, -1, 3, 7} {
		prev := MorphOffset(v, 0)
		for _, m := range []float32{0.1, 0.2, 0.5, 0.9, 0.99, 1} {
			cur := MorphOffset(v, m)
			if math32.Abs(cur-prev) > 1.01 {
				t.Fatalf("offset %d jumped from %f to %f at morph %f", v, prev, cur, m)
			}
			prev = cur
		}
	}
}
