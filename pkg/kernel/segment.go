package kernel

import (
	"fmt"

	"github.com/holodemo/arcmesh/pkg/ringseg"
)

// Compile-time interface check.
var _ Mesher = CSG{}

// SegmentSolid models the arc described by cfg with k: an annulus cut
// from two cylinders and, for partial arcs, clipped to the wedge between
// the +X axis and the ray at cfg.SpanDegrees(). Like ringseg.Build it
// ignores cfg.RotationDegrees.
func SegmentSolid(k Kernel, cfg ringseg.ShapeConfig) (Solid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	depth := float64(cfg.Depth)
	outer := float64(cfg.OuterRadius)
	inner := float64(cfg.InnerRadius)

	// The hole is taller than the disc so the two never share a face.
	disc := k.Cylinder(depth, outer, cfg.TotalParts)
	hole := k.Cylinder(depth*2, inner, cfg.TotalParts)
	ring := k.Difference(disc, hole)

	if !cfg.Capped() {
		return ring, nil
	}

	// Spans never exceed 180 degrees for capped arcs, so the wedge is the
	// intersection of two half-planes.
	size := outer * 4
	left := k.Translate(k.Box(size, size, depth*2), 0, size/2, 0)
	right := k.Rotate(k.Translate(k.Box(size, size, depth*2), 0, -size/2, 0), 0, 0, float64(cfg.SpanDegrees()))
	wedge := k.Intersection(left, right)

	return k.Intersection(ring, wedge), nil
}

// CSG adapts a Kernel to the Mesher interface.
type CSG struct {
	Kernel Kernel
}

// SegmentMesh models cfg with SegmentSolid and tessellates it.
func (c CSG) SegmentMesh(cfg ringseg.ShapeConfig) (*Mesh, error) {
	s, err := SegmentSolid(c.Kernel, cfg)
	if err != nil {
		return nil, err
	}
	m, err := c.Kernel.ToMesh(s)
	if err != nil {
		return nil, fmt.Errorf("kernel: tessellating segment %d/%d: %w", cfg.SegmentCount, cfg.TotalParts, err)
	}
	return m, nil
}
