package heightfield

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
)

// gradientRaster builds a raster where height = x + y*w, so every texel has
// a distinct known value and extrema are trivial to compute by hand.
func gradientRaster(t *testing.T, w, h int) *Raster {
	t.Helper()
	data := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			data[y*w+x] = float32(x + y*w)
		}
	}
	r, err := NewRaster(w, h, data)
	if err != nil {
		t.Fatalf("NewRaster: %v", err)
	}
	return r
}

func TestNewRasterValidation(t *testing.T) {
	if _, err := NewRaster(0, 4, nil); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := NewRaster(4, -1, nil); err == nil {
		t.Error("expected error for negative height")
	}
	if _, err := NewRaster(4, 4, make([]float32, 15)); err == nil {
		t.Error("expected error for data length mismatch")
	}
	if _, err := NewRaster(4, 4, make([]float32, 16)); err != nil {
		t.Errorf("valid raster rejected: %v", err)
	}
}

func TestValid(t *testing.T) {
	r := gradientRaster(t, 8, 4)

	cases := []struct {
		x, y int
		want bool
	}{
		{0, 0, true},
		{7, 3, true},
		{8, 0, false},
		{0, 4, false},
		{-1, 0, false},
		{0, -1, false},
	}
	for _, c := range cases {
		if got := r.Valid(c.x, c.y); got != c.want {
			t.Errorf("Valid(%d,%d) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestSampleBilinearMatchesTexelsAtIntegers(t *testing.T) {
	r := gradientRaster(t, 8, 8)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			want := r.SampleNearest(x, y)
			got := r.SampleBilinear(float32(x), float32(y))
			if math32.Abs(got-want) > 1e-5 {
				t.Fatalf("bilinear at integer (%d,%d) = %f, want %f", x, y, got, want)
			}
		}
	}
}

func TestSampleBilinearContinuity(t *testing.T) {
	r := gradientRaster(t, 16, 16)

	// Approach integer coordinates from both sides; the two limits must
	// agree within float tolerance.
	const eps = 1e-3
	for _, x := range []float32{1, 5, 10} {
		below := r.SampleBilinear(x-eps, 7.3)
		above := r.SampleBilinear(x+eps, 7.3)
		if math32.Abs(above-below) > 0.1 {
			t.Errorf("discontinuity crossing x=%v: %f vs %f", x, below, above)
		}
	}
}

func TestSampleBilinearInterpolates(t *testing.T) {
	data := []float32{
		0, 1,
		2, 3,
	}
	r, err := NewRaster(2, 2, data)
	if err != nil {
		t.Fatal(err)
	}

	got := r.SampleBilinear(0.5, 0.5)
	if math32.Abs(got-1.5) > 1e-6 {
		t.Errorf("center of 2x2 block = %f, want 1.5", got)
	}
}

func TestAreaMinMaxTight(t *testing.T) {
	r := gradientRaster(t, 8, 8)

	// Whole raster.
	min, max := r.AreaMinMax(4, 4, 16, 16)
	if min != 0 || max != 63 {
		t.Errorf("whole raster extrema = (%f, %f), want (0, 63)", min, max)
	}

	// 3x3 window centered at (4,4): x in [3,5], y in [3,5].
	min, max = r.AreaMinMax(4, 4, 2, 2)
	if min != float32(3+3*8) || max != float32(5+5*8) {
		t.Errorf("window extrema = (%f, %f), want (27, 45)", min, max)
	}
}

func TestAreaMinMaxOutsideSentinel(t *testing.T) {
	r := gradientRaster(t, 8, 8)

	cases := []struct{ cx, cy, w, h int }{
		{-10, 4, 2, 2},
		{4, -10, 2, 2},
		{100, 4, 2, 2},
		{4, 100, 2, 2},
	}
	for _, c := range cases {
		min, max := r.AreaMinMax(c.cx, c.cy, c.w, c.h)
		if min != 0 || max != 0 {
			t.Errorf("AreaMinMax(%d,%d,%d,%d) = (%f,%f), want sentinel (0,0)",
				c.cx, c.cy, c.w, c.h, min, max)
		}
	}

	// Partially overlapping rectangles are not sentinel cases.
	min, max := r.AreaMinMax(0, 0, 4, 4)
	if min != 0 || max == 0 {
		t.Errorf("partially overlapping rect should scan valid texels, got (%f,%f)", min, max)
	}
}

func TestAreaMinMaxMonotonicity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	data := make([]float32, 32*32)
	for i := range data {
		data[i] = rng.Float32()
	}
	r, err := NewRaster(32, 32, data)
	if err != nil {
		t.Fatal(err)
	}

	// For rectangle A containing B: A.min <= B.min and A.max >= B.max.
	for i := 0; i < 200; i++ {
		cx := rng.Intn(32)
		cy := rng.Intn(32)
		w := 2 + rng.Intn(8)
		h := 2 + rng.Intn(8)

		bMin, bMax := r.AreaMinMax(cx, cy, w, h)
		aMin, aMax := r.AreaMinMax(cx, cy, w+4, h+4)

		if aMin > bMin {
			t.Fatalf("containing rect min %f > contained rect min %f", aMin, bMin)
		}
		if aMax < bMax {
			t.Fatalf("containing rect max %f < contained rect max %f", aMax, bMax)
		}
	}
}

func TestProceduralDeterministic(t *testing.T) {
	cfg := DefaultProceduralConfig()
	a, err := NewProcedural(64, 64, cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewProcedural(64, 64, cfg)
	if err != nil {
		t.Fatal(err)
	}

	for i := range a.Data() {
		if a.Data()[i] != b.Data()[i] {
			t.Fatalf("same seed produced different terrain at texel %d", i)
		}
	}

	cfg.Seed = 99
	c, err := NewProcedural(64, 64, cfg)
	if err != nil {
		t.Fatal(err)
	}
	same := true
	for i := range a.Data() {
		if a.Data()[i] != c.Data()[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical terrain")
	}
}

func TestProceduralRange(t *testing.T) {
	r, err := NewProcedural(32, 32, DefaultProceduralConfig())
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range r.Data() {
		if v < 0 || v > 1 {
			t.Fatalf("texel %d = %f outside [0,1]", i, v)
		}
	}
}

func TestNewFlat(t *testing.T) {
	r, err := NewFlat(16, 16, 0.25)
	if err != nil {
		t.Fatal(err)
	}
	min, max := r.AreaMinMax(8, 8, 16, 16)
	if min != 0.25 || max != 0.25 {
		t.Errorf("flat raster extrema = (%f, %f), want (0.25, 0.25)", min, max)
	}
}
