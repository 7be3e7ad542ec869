package ringseg

import "sync"

// Builder caches the mesh of the last shape it built so that an editing
// loop can call RebuildIfChanged on every change notification without
// regenerating identical geometry. It is safe for concurrent use.
type Builder struct {
	mu     sync.Mutex
	shape  ShapeConfig
	mesh   *MeshData
	builds int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// RebuildIfChanged returns the mesh for cfg, building it only when the
// shape differs from the last successful build. The bool reports whether
// a build happened. A change of RotationDegrees alone is not a change of
// shape. On error the cached mesh is kept.
func (b *Builder) RebuildIfChanged(cfg ShapeConfig) (*MeshData, bool, error) {
	key := cfg.shapeKey()

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mesh != nil && key == b.shape {
		return b.mesh, false, nil
	}

	m, err := Build(key)
	if err != nil {
		return nil, false, err
	}
	b.shape = key
	b.mesh = m
	b.builds++
	return m, true, nil
}

// Current returns the last built mesh and its shape, or nil if nothing
// has been built yet.
func (b *Builder) Current() (*MeshData, ShapeConfig) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mesh, b.shape
}

// Builds returns how many times the Builder regenerated geometry.
func (b *Builder) Builds() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.builds
}
