// Package kernel defines the mesh buffers handed to renderers and the two
// ways of producing them for a ring segment: the exact procedural builder
// and a solid modeling kernel that reaches the same shape by boolean
// operations. The CSG route exists to cross-check the procedural
// geometry and to export watertight reference solids.
package kernel

import "github.com/holodemo/arcmesh/pkg/ringseg"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is a solid modeling backend. Primitives are centered on the
// origin; cylinders run along Z.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// Mesher turns a ring segment shape into render buffers at rotation 0.
type Mesher interface {
	SegmentMesh(cfg ringseg.ShapeConfig) (*Mesh, error)
}
