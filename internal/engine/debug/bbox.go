// Package debug provides debug visualization for the terrain LOD pass.
package debug

import (
	"github.com/veldt-gl/veldt/internal/engine/geom"
)

// BoxWireframeVertexCount is the number of vertices for one box wireframe
// (12 edges x 2 endpoints).
const BoxWireframeVertexCount = 24

// AppendBoxWireframe appends line vertices for a wireframe bounding box,
// format [x, y, z] per vertex, and returns the extended slice.
func AppendBoxWireframe(dst []float32, box geom.AABB) []float32 {
	minX, minY, minZ := box.Min.X(), box.Min.Y(), box.Min.Z()
	maxX, maxY, maxZ := box.Max.X(), box.Max.Y(), box.Max.Z()

	return append(dst,
		// Bottom face (4 edges)
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face (4 edges)
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges (4 edges)
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	)
}

// levelPalette colors quadtree levels so adjacent LOD transitions are easy
// to spot; levels beyond the palette wrap around.
var levelPalette = [][3]float32{
	{1.0, 0.2, 0.2},
	{1.0, 0.7, 0.2},
	{0.9, 1.0, 0.2},
	{0.3, 1.0, 0.3},
	{0.2, 0.9, 1.0},
	{0.3, 0.4, 1.0},
	{0.8, 0.3, 1.0},
}

// LevelColor returns the wireframe color for a quadtree level.
func LevelColor(level int) [3]float32 {
	if level < 0 {
		level = 0
	}
	return levelPalette[level%len(levelPalette)]
}
