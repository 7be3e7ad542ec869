package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hschendel/stl"

	"github.com/holodemo/arcmesh/pkg/kernel"
	"github.com/holodemo/arcmesh/pkg/ringseg"
)

func segmentMesh(t *testing.T, name string) *kernel.Mesh {
	t.Helper()
	md, err := ringseg.Build(ringseg.DefaultShape())
	if err != nil {
		t.Fatal(err)
	}
	m := kernel.FromMeshData(md)
	m.PartName = name
	return m
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"stl", FormatSTL, true},
		{" STL-ASCII ", FormatSTLASCII, true},
		{"json", FormatJSON, true},
		{"obj", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
	if FormatJSON.Ext() != ".json" || FormatSTLASCII.Ext() != ".stl" {
		t.Error("Ext is wrong")
	}
}

func TestToSolid(t *testing.T) {
	a := segmentMesh(t, "a")
	b := segmentMesh(t, "b")
	s := ToSolid("menu", []*kernel.Mesh{a, b})

	if s.Name != "menu" {
		t.Errorf("Name = %q", s.Name)
	}
	if want := a.TriangleCount() + b.TriangleCount(); len(s.Triangles) != want {
		t.Fatalf("triangles = %d, want %d", len(s.Triangles), want)
	}

	for i, tri := range s.Triangles {
		n := mgl32.Vec3{tri.Normal[0], tri.Normal[1], tri.Normal[2]}
		if l := n.Len(); l < 0.999 || l > 1.001 {
			t.Fatalf("triangle %d normal length %f", i, l)
		}
	}

	// The first strip triangle of the default shape lies on the inner wall,
	// whose facet normal points toward the axis.
	first := s.Triangles[2] // after the start cap's two triangles
	n := mgl32.Vec3{first.Normal[0], first.Normal[1], first.Normal[2]}
	c := mgl32.Vec3{first.Vertices[0][0], first.Vertices[0][1], 0}
	if n.Dot(c) >= 0 {
		t.Errorf("inner wall normal %v points away from the axis", n)
	}
}

func TestWriteSTLRoundTrip(t *testing.T) {
	meshes := []*kernel.Mesh{segmentMesh(t, "a")}
	for _, ascii := range []bool{false, true} {
		var buf bytes.Buffer
		if err := WriteSTL(&buf, "menu", meshes, ascii); err != nil {
			t.Fatal(err)
		}
		if ascii && !strings.HasPrefix(buf.String(), "solid") {
			t.Errorf("ASCII output starts with %q", buf.String()[:20])
		}
		back, err := stl.ReadAll(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("ascii=%v: ReadAll: %v", ascii, err)
		}
		if len(back.Triangles) != meshes[0].TriangleCount() {
			t.Errorf("ascii=%v: read %d triangles, want %d", ascii, len(back.Triangles), meshes[0].TriangleCount())
		}
	}
}

func TestWriteJSON(t *testing.T) {
	meshes := []*kernel.Mesh{segmentMesh(t, "a"), segmentMesh(t, "b")}
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, "ignored", meshes); err != nil {
		t.Fatal(err)
	}
	var got []MeshJSON
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d meshes", len(got))
	}
	if got[1].PartName != "b" || got[1].Color != Color(1) || got[0].Color == got[1].Color {
		t.Errorf("mesh 1 = %s %s", got[1].PartName, got[1].Color)
	}
	if len(got[0].Indices) != len(meshes[0].Indices) {
		t.Error("indices not preserved")
	}
	if !strings.Contains(buf.String(), `"partName":"a"`) {
		t.Error("JSON field names changed")
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, Format("obj"), "x", nil); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestColorWraps(t *testing.T) {
	if Color(0) != Color(len(colorPalette)) {
		t.Error("palette does not wrap")
	}
}
