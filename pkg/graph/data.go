package graph

import "github.com/holodemo/arcmesh/pkg/ringseg"

// Vec3 is a position or a set of Euler angles in degrees.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// IsZero reports whether all components are zero.
func (v Vec3) IsZero() bool {
	return v == Vec3{}
}

// ---------------------------------------------------------------------------
// Segment
// ---------------------------------------------------------------------------

// SegmentData is a ring segment button. Shape.RotationDegrees is carried
// into a transform by the DSL and is zero on graph nodes.
type SegmentData struct {
	Shape       ringseg.ShapeConfig `json:"shape"`
	Label       string              `json:"label,omitempty"`
	Material    string              `json:"material,omitempty"`     // shown normally
	AltMaterial string              `json:"alt_material,omitempty"` // shown while focused
}

func (SegmentData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData places its children. Created by the (place ...) and
// (radial ...) forms.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupKind distinguishes free-form menus from radial layouts.
type GroupKind int

const (
	GroupMenu   GroupKind = iota // (menu ...): arbitrary children
	GroupRadial                  // (radial ...): copies tiled around the ring
)

func (k GroupKind) String() string {
	switch k {
	case GroupMenu:
		return "menu"
	case GroupRadial:
		return "radial"
	default:
		return "unknown"
	}
}

// GroupData is a logical grouping of placed segments.
type GroupData struct {
	Kind        GroupKind `json:"kind"`
	Description string    `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
