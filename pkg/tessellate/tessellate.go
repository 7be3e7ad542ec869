// Package tessellate walks a design graph and produces triangle meshes
// using a segment mesher. One mesh is produced per segment placement.
package tessellate

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/holodemo/arcmesh/pkg/graph"
	"github.com/holodemo/arcmesh/pkg/kernel"
	"github.com/holodemo/arcmesh/pkg/ringseg"
)

// transformStack accumulates spatial transforms during graph traversal.
// Each entry is the full local-to-world matrix at that depth.
type transformStack struct {
	xfs []mgl32.Mat4
}

func newTransformStack() *transformStack {
	return &transformStack{xfs: []mgl32.Mat4{mgl32.Ident4()}}
}

// push composes td with the current transform.
func (ts *transformStack) push(td graph.TransformData) {
	ts.xfs = append(ts.xfs, ts.current().Mul4(LocalMatrix(td)))
}

func (ts *transformStack) pop() {
	if len(ts.xfs) > 1 {
		ts.xfs = ts.xfs[:len(ts.xfs)-1]
	}
}

func (ts *transformStack) current() mgl32.Mat4 {
	return ts.xfs[len(ts.xfs)-1]
}

// LocalMatrix returns translation * Rz * Ry * Rx for td, with rotations
// in degrees. X is applied first.
func LocalMatrix(td graph.TransformData) mgl32.Mat4 {
	m := mgl32.Ident4()
	if td.Translation != nil {
		t := td.Translation
		m = mgl32.Translate3D(float32(t.X), float32(t.Y), float32(t.Z))
	}
	if r := td.Rotation; r != nil {
		m = m.Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(float32(r.Z)))).
			Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(float32(r.Y)))).
			Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(float32(r.X))))
	}
	return m
}

// Placement is one rendered occurrence of a segment.
type Placement struct {
	Node      *graph.Node
	Segment   graph.SegmentData
	Transform mgl32.Mat4
	Name      string // node name, suffixed with #n from the second occurrence on
}

// Placements walks the graph from its roots and returns every segment
// occurrence in traversal order with its world transform.
func Placements(g *graph.DesignGraph) ([]Placement, error) {
	if g == nil {
		return nil, nil
	}

	var out []Placement
	seen := make(map[graph.NodeID]int)
	ts := newTransformStack()

	var walk func(n *graph.Node, depth int) error
	walk = func(n *graph.Node, depth int) error {
		// A cycle would recurse forever; validation reports it.
		if depth > len(g.Nodes) {
			return fmt.Errorf("node %s: graph is too deep, check for cycles", n.ID.Short())
		}
		switch n.Kind {
		case graph.NodeSegment:
			sd, ok := n.Data.(graph.SegmentData)
			if !ok {
				return fmt.Errorf("segment node %s has unexpected data type %T", n.ID.Short(), n.Data)
			}
			name := n.DisplayName()
			if k := seen[n.ID]; k > 0 {
				name = fmt.Sprintf("%s#%d", name, k)
			}
			seen[n.ID]++
			out = append(out, Placement{Node: n, Segment: sd, Transform: ts.current(), Name: name})
			return nil

		case graph.NodeTransform:
			td, ok := n.Data.(graph.TransformData)
			if !ok {
				return fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
			}
			ts.push(td)
			defer ts.pop()

		case graph.NodeGroup:
			// Groups recurse into children transparently.

		default:
			return fmt.Errorf("unknown node kind: %v", n.Kind)
		}

		for _, child := range g.Children(n) {
			if err := walk(child, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		if err := walk(root, 0); err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
		}
	}
	return out, nil
}

// Tessellate walks the design graph and produces one triangle mesh per
// segment placement using the provided mesher. Each distinct shape is
// meshed once and then transformed per placement; the shape's own
// rotation is never consulted, only the transforms above it. The
// tessellator is read-only and never mutates the graph.
func Tessellate(g *graph.DesignGraph, m kernel.Mesher) ([]*kernel.Mesh, error) {
	placements, err := Placements(g)
	if err != nil {
		return nil, err
	}

	cache := make(map[ringseg.ShapeConfig]*kernel.Mesh)
	meshes := make([]*kernel.Mesh, 0, len(placements))

	for _, p := range placements {
		shape := p.Segment.Shape
		shape.RotationDegrees = 0

		base, ok := cache[shape]
		if !ok {
			base, err = m.SegmentMesh(shape)
			if err != nil {
				return nil, fmt.Errorf("tessellate: segment %q: %w", p.Node.DisplayName(), err)
			}
			cache[shape] = base
		}

		mesh := base.Transform(p.Transform)
		mesh.PartName = p.Name
		meshes = append(meshes, mesh)
	}

	return meshes, nil
}
