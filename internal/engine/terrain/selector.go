package terrain

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/veldt-gl/veldt/internal/engine/geom"
	"github.com/veldt-gl/veldt/internal/engine/heightfield"
)

// MaxTreeDepth is the hard ceiling on quadtree depth. Requesting more at
// construction is a configuration error; reaching the configured depth at
// runtime just stops recursion (the node renders at full density).
const MaxTreeDepth = 16

// Patch is one quadtree node selected for drawing this frame, with the
// quadrant subset that stitches it against coarser neighbors.
type Patch struct {
	Level        int
	GridX, GridZ int

	// Node footprint in world units.
	CenterX, CenterZ float32
	Size             float32

	// Vertical bounds from the height field, already height-scaled.
	MinHeight, MaxHeight float32

	// Morph factor for the whole node plus the distance bounds the vertex
	// shader uses for per-vertex morphing.
	Morph      float32
	MorphStart float32
	MorphEnd   float32

	// Quadrants to draw. A false quadrant is covered by a finer child.
	TL, TR, BL, BR bool
}

// WholeNode reports whether all four quadrants are drawn.
func (p Patch) WholeNode() bool { return p.TL && p.TR && p.BL && p.BR }

// SelectorConfig tunes the LOD quadtree.
type SelectorConfig struct {
	// MaxDepth is the finest level; level 0 is the whole-terrain root.
	MaxDepth int

	// VisibleRange is the level-0 distance range; each finer level covers
	// half the range of the one above it.
	VisibleRange float32

	// MorphStartRatio places the start of the morph region inside a
	// level's range band, 0..1 exclusive. Zero selects the default.
	MorphStartRatio float32

	// HeightScale converts normalized field heights to world units.
	HeightScale float32
}

// DefaultSelectorConfig returns the tuning used by the viewer.
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		MaxDepth:        6,
		VisibleRange:    8192,
		MorphStartRatio: 0.667,
		HeightScale:     256,
	}
}

// Selector walks the terrain quadtree each frame and picks the patches to
// draw. Nodes are computed on the fly; nothing is allocated per node.
type Selector struct {
	field    heightfield.Field
	cfg      SelectorConfig
	rootSize float32

	// Per-level floor on the morph band start. A level must draw its
	// unmorphed grid at every distance where the next finer level can
	// still be selected, because that is where a collapsed child edge
	// lands.
	minMorphStart []float32

	// Per-frame state, valid during one Select call.
	camPos  mgl32.Vec3
	frustum geom.Frustum
	patches []Patch
}

// NewSelector validates the configuration against the height field. All
// failures here are fatal configuration errors; the per-frame walk never
// returns one.
func NewSelector(field heightfield.Field, cfg SelectorConfig) (*Selector, error) {
	if field == nil || field.W() <= 0 || field.H() <= 0 {
		return nil, fmt.Errorf("height field is empty")
	}
	if cfg.MaxDepth < 0 || cfg.MaxDepth > MaxTreeDepth {
		return nil, fmt.Errorf("quadtree depth %d outside [0, %d]", cfg.MaxDepth, MaxTreeDepth)
	}
	if cfg.VisibleRange <= 0 {
		return nil, fmt.Errorf("visible range must be positive, got %f", cfg.VisibleRange)
	}
	if cfg.MorphStartRatio == 0 {
		cfg.MorphStartRatio = 0.667
	}
	if cfg.MorphStartRatio < 0 || cfg.MorphStartRatio >= 1 {
		return nil, fmt.Errorf("morph start ratio %f outside [0, 1)", cfg.MorphStartRatio)
	}
	if cfg.HeightScale < 0 {
		return nil, fmt.Errorf("height scale must not be negative, got %f", cfg.HeightScale)
	}

	// The root is the smallest power-of-two square covering the raster, so
	// node sizes stay integral all the way down.
	side := field.W()
	if field.H() > side {
		side = field.H()
	}
	rootSize := 1
	for rootSize < side {
		rootSize *= 2
	}

	s := &Selector{
		field:    field,
		cfg:      cfg,
		rootSize: float32(rootSize),
	}

	// A selected node keeps its vertices within its range boundary plus its
	// own bounding-box diagonal. The coarser level's morph band must start
	// beyond that reach; otherwise a parent could morph while a child it
	// borders is still drawn, and their shared edge would crack.
	extents := levelExtents(field, s.rootSize, cfg.MaxDepth)
	s.minMorphStart = make([]float32, cfg.MaxDepth)
	for level := 0; level < cfg.MaxDepth; level++ {
		childSize := s.rootSize / float32(uint(1)<<uint(level+1))
		reach := s.RangeAt(level+1) + math32.Sqrt(2)*childSize + extents[level+1]*cfg.HeightScale
		if reach >= s.RangeAt(level) {
			return nil, fmt.Errorf("no morph band at level %d: level-%d nodes stay selectable out to %.0f, at or past the level range %.0f (visible range too small for this depth and terrain)",
				level, level+1, reach, s.RangeAt(level))
		}
		s.minMorphStart[level] = reach
	}

	return s, nil
}

// levelExtents returns, per quadtree level, the largest vertical extent
// (max minus min, normalized) of any node on that level. Levels whose
// nodes cover fewer than two texels reuse the last scanned level: a deeper
// node covers a subset of some scanned node, so its extent is no larger.
func levelExtents(field heightfield.Field, rootSize float32, maxDepth int) []float32 {
	extents := make([]float32, maxDepth+1)
	if maxDepth < 1 {
		return extents
	}

	deep := maxDepth
	for deep > 1 && rootSize/float32(uint(1)<<uint(deep)) < 2 {
		deep--
	}

	n := 1 << uint(deep)
	size := rootSize / float32(n)
	mins := make([]float32, n*n)
	maxs := make([]float32, n*n)
	for gz := 0; gz < n; gz++ {
		for gx := 0; gx < n; gx++ {
			cx := (float32(gx) + 0.5) * size
			cz := (float32(gz) + 0.5) * size
			lo, hi := field.AreaMinMax(int(cx), int(cz), int(size), int(size))
			if lo > hi {
				lo, hi = 0, 0
			}
			mins[gz*n+gx] = lo
			maxs[gz*n+gx] = hi
		}
	}

	for level := deep; ; level-- {
		for i := 0; i < n*n; i++ {
			if e := maxs[i] - mins[i]; e > extents[level] {
				extents[level] = e
			}
		}
		if level == 1 {
			break
		}

		// Four children tile their parent's footprint exactly.
		half := n / 2
		pmins := make([]float32, half*half)
		pmaxs := make([]float32, half*half)
		for gz := 0; gz < half; gz++ {
			for gx := 0; gx < half; gx++ {
				i00 := (2 * gz * n) + 2*gx
				i10 := i00 + n
				lo := math32.Min(math32.Min(mins[i00], mins[i00+1]), math32.Min(mins[i10], mins[i10+1]))
				hi := math32.Max(math32.Max(maxs[i00], maxs[i00+1]), math32.Max(maxs[i10], maxs[i10+1]))
				pmins[gz*half+gx] = lo
				pmaxs[gz*half+gx] = hi
			}
		}
		mins, maxs, n = pmins, pmaxs, half
	}

	for level := deep + 1; level <= maxDepth; level++ {
		extents[level] = extents[deep]
	}
	return extents
}

// RootSize is the world-space side length of the level-0 node.
func (s *Selector) RootSize() float32 { return s.rootSize }

// RangeAt is the outer visibility distance of a level. Level 0 carries the
// configured range; each finer level halves it.
func (s *Selector) RangeAt(level int) float32 {
	return s.cfg.VisibleRange / float32(uint(1)<<uint(level))
}

// Select walks the quadtree and returns the patches to draw, reusing the
// selector's internal slice. The result is valid until the next call.
func (s *Selector) Select(camPos mgl32.Vec3, frustum geom.Frustum) []Patch {
	s.camPos = camPos
	s.frustum = frustum
	s.patches = s.patches[:0]

	// The root always renders what its children don't, regardless of the
	// range test: the system must produce a displayable result for any
	// camera position.
	s.selectNode(0, 0, 0)

	return s.patches
}

// selectNode reports whether the node handled its footprint (by drawing,
// delegating to children, or being culled). A false return means the node
// is out of its level's range and the parent must draw that quadrant
// coarser; that asymmetry is what stitches edges between LOD levels
// without neighbor bookkeeping.
func (s *Selector) selectNode(level, gx, gz int) bool {
	size := s.rootSize / float32(uint(1)<<uint(level))
	cx := (float32(gx) + 0.5) * size
	cz := (float32(gz) + 0.5) * size

	// Power-of-two padding nodes with no underlying samples contribute
	// nothing; the sentinel case of AreaMinMax.
	if cx-size/2 >= float32(s.field.W()) || cz-size/2 >= float32(s.field.H()) {
		return true
	}

	minH, maxH := s.field.AreaMinMax(int(cx), int(cz), int(size), int(size))
	if minH > maxH {
		// Malformed field data; treat as empty rather than crash.
		return true
	}

	box := geom.AABB{
		Min: mgl32.Vec3{cx - size/2, minH * s.cfg.HeightScale, cz - size/2},
		Max: mgl32.Vec3{cx + size/2, maxH * s.cfg.HeightScale, cz + size/2},
	}
	dist := box.Distance(s.camPos)

	if level > 0 && dist > s.RangeAt(level) {
		return false
	}

	if !s.frustum.IntersectsAABB(box) {
		return true
	}

	if level == s.cfg.MaxDepth || dist > s.RangeAt(level+1) {
		// No part of the node reaches the finer range (or the resolution
		// floor is hit): draw it whole at this level.
		s.emit(level, gx, gz, cx, cz, size, minH, maxH, dist, true, true, true, true)
		return true
	}

	// Part of the node is close enough for the next level; recurse. Each
	// child that declines (out of its own range) leaves its quadrant to
	// this node, drawn at the coarser density.
	bl := !s.selectNode(level+1, 2*gx, 2*gz)
	br := !s.selectNode(level+1, 2*gx+1, 2*gz)
	tl := !s.selectNode(level+1, 2*gx, 2*gz+1)
	tr := !s.selectNode(level+1, 2*gx+1, 2*gz+1)

	if tl || tr || bl || br {
		s.emit(level, gx, gz, cx, cz, size, minH, maxH, dist, tl, tr, bl, br)
	}
	return true
}

func (s *Selector) emit(level, gx, gz int, cx, cz, size, minH, maxH, dist float32, tl, tr, bl, br bool) {
	start, end := s.MorphBounds(level)
	morph := clamp01((dist - start) / (end - start))

	s.patches = append(s.patches, Patch{
		Level:      level,
		GridX:      gx,
		GridZ:      gz,
		CenterX:    cx,
		CenterZ:    cz,
		Size:       size,
		MinHeight:  minH * s.cfg.HeightScale,
		MaxHeight:  maxH * s.cfg.HeightScale,
		Morph:      morph,
		MorphStart: start,
		MorphEnd:   end,
		TL:         tl,
		TR:         tr,
		BL:         bl,
		BR:         br,
	})
}

// MorphBounds returns the distance band over which a level morphs toward
// its parent. The band ends exactly at the level's outer range, so a node
// about to be replaced by its coarser parent has fully collapsed onto the
// parent grid. The start is floored at the finer level's selection reach,
// so the level stays unmorphed everywhere a finer neighbor can still be
// drawn; the shared edge is therefore vertex-exact.
func (s *Selector) MorphBounds(level int) (start, end float32) {
	outer := s.RangeAt(level)
	inner := s.RangeAt(level + 1)
	start = inner + s.cfg.MorphStartRatio*(outer-inner)
	if level < len(s.minMorphStart) && start < s.minMorphStart[level] {
		start = s.minMorphStart[level]
	}
	return start, outer
}

func clamp01(v float32) float32 {
	return math32.Min(math32.Max(v, 0), 1)
}
