// Package ringseg generates the triangle mesh of a ring segment: an arc
// shaped prism with an inner and outer radius, extruded along Z. Several
// segments rotated around the ring axis tile the buttons of a radial menu.
//
// Build is a pure function of a ShapeConfig. It never rotates its output;
// placement rotation is applied with MeshData.RotatedZ or BuildPlaced.
package ringseg
