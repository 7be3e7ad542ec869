package ringseg

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MeshData is the geometry of one ring segment. Normals run parallel to
// Vertices and Triangles holds three vertex indices per triangle, wound
// counter-clockwise when seen from outside the solid.
//
// A MeshData is never modified after Build returns it; the transforming
// methods return new values.
type MeshData struct {
	Vertices  []mgl32.Vec3 `json:"vertices"`
	Normals   []mgl32.Vec3 `json:"normals"`
	Triangles []uint32     `json:"triangles"`
}

// VertexCount returns the number of vertices.
func (m *MeshData) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *MeshData) TriangleCount() int {
	return len(m.Triangles) / 3
}

// Bounds returns the axis-aligned bounding box of the vertices. An empty
// mesh yields two zero vectors.
func (m *MeshData) Bounds() (lo, hi mgl32.Vec3) {
	if len(m.Vertices) == 0 {
		return lo, hi
	}
	lo, hi = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], v[i])
			hi[i] = max(hi[i], v[i])
		}
	}
	return lo, hi
}

// RotatedZ returns a copy of m rotated by degrees around the Z axis.
// Vertices and normals are rotated together; triangles are shared.
func (m *MeshData) RotatedZ(degrees float32) *MeshData {
	rot := mgl32.Rotate3DZ(mgl32.DegToRad(degrees))
	out := &MeshData{
		Vertices:  make([]mgl32.Vec3, len(m.Vertices)),
		Normals:   make([]mgl32.Vec3, len(m.Normals)),
		Triangles: m.Triangles,
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = rot.Mul3x1(v)
	}
	for i, n := range m.Normals {
		out.Normals[i] = rot.Mul3x1(n).Normalize()
	}
	return out
}
