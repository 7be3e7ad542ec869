// Package export writes tessellated meshes to files: STL for printing and
// inspection in other tools, JSON in the format the front end renders.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hschendel/stl"

	"github.com/holodemo/arcmesh/pkg/kernel"
)

// Format selects an output encoding.
type Format string

const (
	FormatSTL      Format = "stl"       // binary STL
	FormatSTLASCII Format = "stl-ascii" // ASCII STL
	FormatJSON     Format = "json"      // front-end meshes
)

// ParseFormat accepts a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatSTL, FormatSTLASCII, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("export: unknown format %q (want stl, stl-ascii or json)", s)
}

// Ext returns the usual file extension for f.
func (f Format) Ext() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".stl"
}

// Write encodes meshes to w in format f. name labels the STL solid.
func Write(w io.Writer, f Format, name string, meshes []*kernel.Mesh) error {
	switch f {
	case FormatSTL:
		return WriteSTL(w, name, meshes, false)
	case FormatSTLASCII:
		return WriteSTL(w, name, meshes, true)
	case FormatJSON:
		return WriteJSON(w, meshes)
	}
	return fmt.Errorf("export: unknown format %q", f)
}

// ToSolid merges meshes into one STL solid. Facet normals are computed
// from the winding, since STL carries one normal per triangle.
func ToSolid(name string, meshes []*kernel.Mesh) *stl.Solid {
	n := 0
	for _, m := range meshes {
		n += m.TriangleCount()
	}
	s := &stl.Solid{Name: name, Triangles: make([]stl.Triangle, 0, n)}

	for _, m := range meshes {
		for t := 0; t+2 < len(m.Indices); t += 3 {
			a := m.Vertex(int(m.Indices[t]))
			b := m.Vertex(int(m.Indices[t+1]))
			c := m.Vertex(int(m.Indices[t+2]))

			normal := b.Sub(a).Cross(c.Sub(a))
			if normal.Len() > 0 {
				normal = normal.Normalize()
			}
			s.Triangles = append(s.Triangles, stl.Triangle{
				Normal:   toSTL(normal),
				Vertices: [3]stl.Vec3{toSTL(a), toSTL(b), toSTL(c)},
			})
		}
	}
	return s
}

func toSTL(v mgl32.Vec3) stl.Vec3 {
	return stl.Vec3{v[0], v[1], v[2]}
}

// WriteSTL writes meshes as a single STL solid.
func WriteSTL(w io.Writer, name string, meshes []*kernel.Mesh, ascii bool) error {
	s := ToSolid(name, meshes)
	s.IsAscii = ascii
	if err := s.WriteAll(w); err != nil {
		return fmt.Errorf("export: write stl: %w", err)
	}
	return nil
}

// colorPalette is a default palette used to assign distinct colors to meshes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// Color returns the palette color for the i-th mesh.
func Color(i int) string {
	return colorPalette[i%len(colorPalette)]
}

// MeshJSON is the JSON mesh format rendered by the front end.
type MeshJSON struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// ToJSON converts meshes to the front-end format with palette colors.
func ToJSON(meshes []*kernel.Mesh) []MeshJSON {
	out := make([]MeshJSON, 0, len(meshes))
	for i, m := range meshes {
		out = append(out, MeshJSON{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    Color(i),
		})
	}
	return out
}

// WriteJSON writes meshes as a JSON array of MeshJSON.
func WriteJSON(w io.Writer, meshes []*kernel.Mesh) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(ToJSON(meshes)); err != nil {
		return fmt.Errorf("export: write json: %w", err)
	}
	return nil
}
