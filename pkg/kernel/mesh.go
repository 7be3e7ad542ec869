package kernel

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/holodemo/arcmesh/pkg/ringseg"
)

// Mesh is a triangle mesh in the flat buffer layout a renderer uploads.
// Vertices has 3 floats per vertex (x,y,z), normals has 3 floats per
// vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which scene node this came from
}

// FromMeshData flattens a ring segment mesh into render buffers.
func FromMeshData(m *ringseg.MeshData) *Mesh {
	out := &Mesh{
		Vertices: make([]float32, 0, len(m.Vertices)*3),
		Normals:  make([]float32, 0, len(m.Normals)*3),
		Indices:  make([]uint32, len(m.Triangles)),
	}
	for _, v := range m.Vertices {
		out.Vertices = append(out.Vertices, v[0], v[1], v[2])
	}
	for _, n := range m.Normals {
		out.Normals = append(out.Normals, n[0], n[1], n[2])
	}
	copy(out.Indices, m.Triangles)
	return out
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Vertex returns vertex i as a vector.
func (m *Mesh) Vertex(i int) mgl32.Vec3 {
	return mgl32.Vec3{m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2]}
}

// Transform returns a copy of m with positions transformed by xf and
// normals by its rotational part. Indices are copied unchanged.
func (m *Mesh) Transform(xf mgl32.Mat4) *Mesh {
	out := &Mesh{
		Vertices: make([]float32, len(m.Vertices)),
		Normals:  make([]float32, len(m.Normals)),
		Indices:  make([]uint32, len(m.Indices)),
		PartName: m.PartName,
	}
	copy(out.Indices, m.Indices)

	normalXf := mgl32.Mat4Normal(xf)
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		v := mgl32.TransformCoordinate(mgl32.Vec3{m.Vertices[i], m.Vertices[i+1], m.Vertices[i+2]}, xf)
		copy(out.Vertices[i:i+3], v[:])
	}
	for i := 0; i+2 < len(m.Normals); i += 3 {
		n := normalXf.Mul3x1(mgl32.Vec3{m.Normals[i], m.Normals[i+1], m.Normals[i+2]})
		if n.Len() > 0 {
			n = n.Normalize()
		}
		copy(out.Normals[i:i+3], n[:])
	}
	return out
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (m *Mesh) Bounds() (lo, hi [3]float32) {
	if m.IsEmpty() {
		return lo, hi
	}
	copy(lo[:], m.Vertices[:3])
	copy(hi[:], m.Vertices[:3])
	for i := 3; i+2 < len(m.Vertices); i += 3 {
		for a := 0; a < 3; a++ {
			lo[a] = min(lo[a], m.Vertices[i+a])
			hi[a] = max(hi[a], m.Vertices[i+a])
		}
	}
	return lo, hi
}
