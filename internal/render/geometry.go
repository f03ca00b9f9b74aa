package render

import (
	"errors"

	"cubesculpt/internal/world"
	"cubesculpt/internal/xr"
)

// CubeHalfExtent is half the side of the unit cube mesh. A hand at scale 1 is a 20 cm cube.
const CubeHalfExtent = 0.1

// CubeVertices holds the 8 corners as xyz triples: the -Z face first, then the +Z face,
// both wound the same way.
var CubeVertices = []float32{
	-CubeHalfExtent, -CubeHalfExtent, -CubeHalfExtent,
	CubeHalfExtent, -CubeHalfExtent, -CubeHalfExtent,
	CubeHalfExtent, CubeHalfExtent, -CubeHalfExtent,
	-CubeHalfExtent, CubeHalfExtent, -CubeHalfExtent,
	-CubeHalfExtent, -CubeHalfExtent, CubeHalfExtent,
	CubeHalfExtent, -CubeHalfExtent, CubeHalfExtent,
	CubeHalfExtent, CubeHalfExtent, CubeHalfExtent,
	-CubeHalfExtent, CubeHalfExtent, CubeHalfExtent,
}

// WireIndices draws the 12 edges: a loop around each Z face, then the 4 pillars between them.
var WireIndices = []uint32{
	0, 1, 2, 3,
	4, 5, 6, 7,
	0, 4, 1, 5, 2, 6, 3, 7,
}

// SolidIndices draws 12 counter-clockwise triangles, two per face.
var SolidIndices = []uint32{
	0, 2, 1, 0, 3, 2, // -Z
	4, 5, 6, 4, 6, 7, // +Z
	0, 1, 5, 0, 5, 4, // -Y
	3, 7, 6, 3, 6, 2, // +Y
	0, 4, 7, 0, 7, 3, // -X
	1, 2, 6, 1, 6, 5, // +X
}

// span is one indexed draw call within a mesh.
type span struct {
	topo  xr.Topology
	first int
	count int
}

var (
	wireSpans  = []span{{xr.TopologyLineLoop, 0, 4}, {xr.TopologyLineLoop, 4, 4}, {xr.TopologyLines, 8, 8}}
	solidSpans = []span{{xr.TopologyTriangles, 0, 36}}
)

// Geometry is the cube mesh uploaded once per session: one mesh per index buffer over the
// shared corner list.
type Geometry struct {
	Wire  xr.Mesh
	Solid xr.Mesh
}

// Upload sends both cube meshes to the draw surface. Nothing stays uploaded on failure.
func Upload(ds xr.DrawSurface) (Geometry, error) {
	var g Geometry
	var err error
	if g.Wire, err = ds.UploadMesh(CubeVertices, WireIndices); err != nil {
		return Geometry{}, xr.Check("Uploading the wireframe cube", err)
	}
	if g.Solid, err = ds.UploadMesh(CubeVertices, SolidIndices); err != nil {
		return Geometry{}, errors.Join(xr.Check("Uploading the solid cube", err), ds.ReleaseMesh(g.Wire))
	}
	return g, nil
}

// Release frees both meshes, reporting every failure.
func (g Geometry) Release(ds xr.DrawSurface) error {
	return errors.Join(ds.ReleaseMesh(g.Wire), ds.ReleaseMesh(g.Solid))
}

func (g Geometry) draw(ds xr.DrawSurface, t world.CubeType) {
	mesh, spans := g.Wire, wireSpans
	if t == world.Filled {
		mesh, spans = g.Solid, solidSpans
	}
	for _, s := range spans {
		ds.DrawIndexed(mesh, s.topo, s.first, s.count)
	}
}
