// Package heightfield provides the elevation raster that drives terrain
// geometry: point sampling, bilinear sampling and exact min/max queries
// over rectangular areas.
package heightfield

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Field is the sampling interface the terrain system consumes. Heights are
// normalized to [0,1]; vertical scaling happens at render time.
//
// Implementations must be immutable once handed to the terrain system.
type Field interface {
	// W and H are the raster dimensions in texels.
	W() int
	H() int

	// Valid reports whether (x, y) addresses a texel.
	Valid(x, y int) bool

	// SampleNearest fetches the texel at (x, y). Coordinates outside the
	// raster are clamped to the edge.
	SampleNearest(x, y int) float32

	// SampleBilinear interpolates the four texels around (x, y). The result
	// is continuous, including across integer coordinates.
	SampleBilinear(x, y float32) float32

	// AreaMinMax returns the exact elevation extrema over the rectangle
	// [cx-w/2, cx+w/2] x [cy-h/2, cy+h/2] (inclusive). It returns (0, 0)
	// only when the rectangle contains no valid texel. The LOD selector's
	// culling depends on these bounds being tight, not conservative.
	AreaMinMax(cx, cy, w, h int) (min, max float32)

	// Data exposes the raw raster, row-major, for GPU upload.
	Data() []float32
}

// Raster is an in-memory Field.
type Raster struct {
	w, h int
	data []float32
}

// NewRaster wraps row-major height data. The data length must be w*h and
// both dimensions must be positive.
func NewRaster(w, h int, data []float32) (*Raster, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("height field dimensions must be positive, got %dx%d", w, h)
	}
	if len(data) != w*h {
		return nil, fmt.Errorf("height data length %d does not match %dx%d raster", len(data), w, h)
	}
	return &Raster{w: w, h: h, data: data}, nil
}

// W returns the raster width in texels.
func (r *Raster) W() int { return r.w }

// H returns the raster height in texels.
func (r *Raster) H() int { return r.h }

// Valid reports whether (x, y) addresses a texel.
func (r *Raster) Valid(x, y int) bool {
	return x >= 0 && x < r.w && y >= 0 && y < r.h
}

// SampleNearest fetches the texel at (x, y), clamping to the raster edge.
func (r *Raster) SampleNearest(x, y int) float32 {
	x = clampi(x, 0, r.w-1)
	y = clampi(y, 0, r.h-1)
	return r.data[y*r.w+x]
}

// SampleBilinear interpolates the four texels surrounding (x, y).
func (r *Raster) SampleBilinear(x, y float32) float32 {
	fx := math32.Floor(x)
	fy := math32.Floor(y)
	tx := x - fx
	ty := y - fy

	x0, y0 := int(fx), int(fy)

	h00 := r.SampleNearest(x0, y0)
	h10 := r.SampleNearest(x0+1, y0)
	h01 := r.SampleNearest(x0, y0+1)
	h11 := r.SampleNearest(x0+1, y0+1)

	bottom := h00 + (h10-h00)*tx
	top := h01 + (h11-h01)*tx
	return bottom + (top-bottom)*ty
}

// AreaMinMax scans the rectangle centered on (cx, cy) and returns its exact
// elevation extrema, or (0, 0) if the rectangle lies entirely outside the
// raster.
func (r *Raster) AreaMinMax(cx, cy, w, h int) (float32, float32) {
	x0 := cx - w/2
	x1 := cx + w/2
	y0 := cy - h/2
	y1 := cy + h/2

	if x1 < 0 || y1 < 0 || x0 >= r.w || y0 >= r.h {
		return 0, 0
	}

	x0 = clampi(x0, 0, r.w-1)
	x1 = clampi(x1, 0, r.w-1)
	y0 = clampi(y0, 0, r.h-1)
	y1 = clampi(y1, 0, r.h-1)

	min := math32.Inf(1)
	max := math32.Inf(-1)
	for y := y0; y <= y1; y++ {
		row := r.data[y*r.w : y*r.w+r.w]
		for x := x0; x <= x1; x++ {
			v := row[x]
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	return min, max
}

// Data returns the raw row-major raster.
func (r *Raster) Data() []float32 { return r.data }

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
