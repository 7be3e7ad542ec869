// Package procedural implements kernel.Mesher with the exact ring segment
// builder. It is the default mesher: vertex counts and winding follow
// ringseg.Build.
package procedural

import (
	"github.com/holodemo/arcmesh/pkg/kernel"
	"github.com/holodemo/arcmesh/pkg/ringseg"
)

// Compile-time interface check.
var _ kernel.Mesher = (*Mesher)(nil)

// Mesher builds segment meshes with ringseg.Build.
type Mesher struct{}

// New returns a procedural Mesher.
func New() *Mesher {
	return &Mesher{}
}

// SegmentMesh builds cfg and flattens the result.
func (p *Mesher) SegmentMesh(cfg ringseg.ShapeConfig) (*kernel.Mesh, error) {
	m, err := ringseg.Build(cfg)
	if err != nil {
		return nil, err
	}
	return kernel.FromMeshData(m), nil
}
