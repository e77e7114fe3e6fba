package heightfield

import (
	"github.com/aquilax/go-perlin"
	"github.com/chewxy/math32"
)

// ProceduralConfig controls noise-based terrain generation.
type ProceduralConfig struct {
	Seed    int64
	Octaves int     // fractal octaves, each doubling frequency
	Scale   float64 // base noise frequency relative to the raster size
}

// DefaultProceduralConfig returns settings that produce rolling hills with
// a few ridges at any raster size.
func DefaultProceduralConfig() ProceduralConfig {
	return ProceduralConfig{
		Seed:    1,
		Octaves: 5,
		Scale:   4.0,
	}
}

// NewProcedural generates a w x h raster from fractal perlin noise. The
// result is deterministic for a given config.
func NewProcedural(w, h int, cfg ProceduralConfig) (*Raster, error) {
	if cfg.Octaves < 1 {
		cfg.Octaves = 1
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 4.0
	}

	p := perlin.NewPerlin(2, 2, int32(cfg.Octaves), cfg.Seed)

	data := make([]float32, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			nx := float64(x) / float64(w) * cfg.Scale
			ny := float64(y) / float64(h) * cfg.Scale
			// Perlin output is roughly [-1,1]; remap to [0,1].
			v := float32(p.Noise2D(nx, ny))*0.5 + 0.5
			data = append(data, math32.Min(math32.Max(v, 0), 1))
		}
	}

	return NewRaster(w, h, data)
}

// NewFlat returns a raster with every texel at the given height. Used by
// tests and as a fallback when generation is disabled.
func NewFlat(w, h int, height float32) (*Raster, error) {
	data := make([]float32, w*h)
	for i := range data {
		data[i] = height
	}
	return NewRaster(w, h, data)
}
