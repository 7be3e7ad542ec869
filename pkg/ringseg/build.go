package ringseg

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Each ring of the arc contributes four vertices in this order.
const (
	innerFront = iota
	innerBack
	outerFront
	outerBack
	vertsPerRing
)

// indices per slice: four quads of two triangles each.
const stripIndicesPerSlice = 4 * 6

var (
	frontNormal = mgl32.Vec3{0, 0, -1}
	backNormal  = mgl32.Vec3{0, 0, 1}
)

// Build generates the mesh of the arc described by cfg, at rotation 0.
//
// The arc is tessellated into cfg.SliceCount() slices bounded by
// SliceCount()+1 rings of four vertices. Ring k lies at angle
// k*2π/TotalParts, so the arc spans 2π/SegmentCount. Inner, outer, front
// and back walls are quad strips; partial arcs (SegmentCount > 1) are
// closed with an end cap at each side.
//
// An invalid cfg yields an error wrapping ErrInvalidConfig and no mesh.
func Build(cfg ShapeConfig) (*MeshData, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slices := cfg.SliceCount()
	numVerts := vertsPerRing*slices + vertsPerRing

	vertices := make([]mgl32.Vec3, numVerts)
	normals := make([]mgl32.Vec3, numVerts)
	halfDepth := cfg.Depth / 2

	for i := 0; i < numVerts; i += vertsPerRing {
		// i counts vertices, so i/parts/2 turns of π advances one ring
		// by 2π/parts.
		theta := float32(i) / float32(cfg.TotalParts) / 2 * math32.Pi

		vertices[i+innerFront] = ringVertex(theta, cfg.InnerRadius, -halfDepth)
		normals[i+innerFront] = frontNormal

		vertices[i+innerBack] = ringVertex(theta, cfg.InnerRadius, halfDepth)
		normals[i+innerBack] = backNormal

		vertices[i+outerFront] = ringVertex(theta, cfg.OuterRadius, -halfDepth)
		normals[i+outerFront] = frontNormal

		vertices[i+outerBack] = ringVertex(theta, cfg.OuterRadius, halfDepth)
		normals[i+outerBack] = backNormal
	}

	capIndices := 0
	if cfg.Capped() {
		capIndices = 2 * 6
	}
	triangles := make([]uint32, slices*stripIndicesPerSlice+capIndices)

	t := 0
	if cfg.Capped() {
		makeQuad(triangles, t, 3, 2, 1, 0)
		t += 6
	}

	for i := 0; i < numVerts-vertsPerRing; i += vertsPerRing {
		// bottom (inner wall)
		makeQuad(triangles, t, i+4, i+5, i, i+1)
		t += 6

		// left (front face)
		makeQuad(triangles, t, i+4, i, i+6, i+2)
		t += 6

		// right (back face)
		makeQuad(triangles, t, i+1, i+5, i+3, i+7)
		t += 6

		// top (outer wall)
		makeQuad(triangles, t, i+2, i+3, i+6, i+7)
		t += 6
	}

	if cfg.Capped() {
		last := numVerts - vertsPerRing
		makeQuad(triangles, t, last+innerFront, last+outerFront, last+innerBack, last+outerBack)
	}

	for i := range normals {
		normals[i] = normals[i].Normalize()
	}

	return &MeshData{
		Vertices:  vertices,
		Normals:   normals,
		Triangles: triangles,
	}, nil
}

// BuildPlaced builds cfg and rotates the result by cfg.RotationDegrees.
// Use it only when no outer transform applies the rotation as well.
func BuildPlaced(cfg ShapeConfig) (*MeshData, error) {
	m, err := Build(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.RotationDegrees == 0 {
		return m, nil
	}
	return m.RotatedZ(cfg.RotationDegrees), nil
}

func ringVertex(theta, radius, z float32) mgl32.Vec3 {
	sin, cos := math32.Sincos(theta)
	return mgl32.Vec3{radius * cos, radius * sin, z}
}

// makeQuad writes the two triangles (bl, tl, br) and (tl, tr, br) of a
// quad into indices at offset.
func makeQuad(indices []uint32, offset, bl, br, tl, tr int) {
	indices[offset+0] = uint32(bl)
	indices[offset+1] = uint32(tl)
	indices[offset+2] = uint32(br)

	indices[offset+3] = uint32(tl)
	indices[offset+4] = uint32(tr)
	indices[offset+5] = uint32(br)
}
